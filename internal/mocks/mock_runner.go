// Package mocks holds testify mocks for swiftc-shim interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zjrosen/swiftcshim/internal/process"
)

// Compile-time check that MockRunner implements process.Runner.
var _ process.Runner = (*MockRunner)(nil)

// MockRunner is a mock of process.Runner.
type MockRunner struct {
	mock.Mock
}

// NewMockRunner creates a MockRunner whose expectations are asserted on cleanup.
func NewMockRunner(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRunner {
	m := &MockRunner{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Run records the call and returns the configured error.
func (m *MockRunner) Run(ctx context.Context, argv []string) error {
	ret := m.Called(ctx, argv)
	if fn, ok := ret.Get(0).(func(context.Context, []string) error); ok {
		return fn(ctx, argv)
	}
	return ret.Error(0)
}

// MockRunner_Run_Call wraps mock.Call for typed expectations.
type MockRunner_Run_Call struct {
	*mock.Call
}

// MockRunner_Expecter builds typed expectations.
type MockRunner_Expecter struct {
	mock *mock.Mock
}

// EXPECT returns the typed expectation builder.
func (m *MockRunner) EXPECT() *MockRunner_Expecter {
	return &MockRunner_Expecter{mock: &m.Mock}
}

// Run expects a call with the given context and argv matchers.
func (e *MockRunner_Expecter) Run(ctx any, argv any) *MockRunner_Run_Call {
	return &MockRunner_Run_Call{Call: e.mock.On("Run", ctx, argv)}
}

// Return sets the error returned by Run.
func (c *MockRunner_Run_Call) Return(err error) *MockRunner_Run_Call {
	c.Call.Return(err)
	return c
}

// RunAndReturn computes the result from the call arguments.
func (c *MockRunner_Run_Call) RunAndReturn(fn func(context.Context, []string) error) *MockRunner_Run_Call {
	c.Call.Return(fn)
	return c
}
