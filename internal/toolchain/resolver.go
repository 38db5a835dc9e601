// Package toolchain decides when a swiftc invocation must run on a
// different compiler and locates that compiler inside the developer root
// the SDK path belongs to.
package toolchain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zjrosen/swiftcshim/internal/args"
	"github.com/zjrosen/swiftcshim/internal/log"
)

// Defaults used when a Resolver field is empty.
const (
	DefaultCompiler           = "swiftc"
	DefaultRelativeCompiler   = "Toolchains/XcodeDefault.xctoolchain/usr/bin/swiftc"
	DefaultPreviewThunkSuffix = ".preview-thunk.swift"
)

const developerDirMarker = "/Contents/Developer"

// ErrDeveloperRoot is returned when the SDK path is not inside a developer root.
var ErrDeveloperRoot = errors.New("failed to parse developer root from SDK path")

// DeveloperRoot returns the prefix of sdkPath up to and including the first
// "/Contents/Developer" that is followed by a path separator.
//
//	DeveloperRoot("/A/Contents/Developer/B/C") == "/A/Contents/Developer"
func DeveloperRoot(sdkPath string) (string, error) {
	before, _, found := strings.Cut(sdkPath, developerDirMarker+"/")
	if !found {
		return "", fmt.Errorf("%w: %q", ErrDeveloperRoot, sdkPath)
	}
	return before + developerDirMarker, nil
}

// Resolver applies the toolchain rules.
type Resolver struct {
	// DefaultCompiler answers version queries.
	DefaultCompiler string
	// RelativeCompiler is the compiler path relative to the developer root.
	RelativeCompiler string
	// PreviewThunkSuffix identifies preview-thunk sources.
	PreviewThunkSuffix string
}

// NewResolver returns a Resolver with the stock Xcode layout.
func NewResolver() Resolver {
	return Resolver{
		DefaultCompiler:    DefaultCompiler,
		RelativeCompiler:   DefaultRelativeCompiler,
		PreviewThunkSuffix: DefaultPreviewThunkSuffix,
	}
}

// IsVersionQuery reports whether any argument after the executable is "-v"
// or "--version". Xcode 16 asks with "--version", older releases with "-v".
func (r Resolver) IsVersionQuery(inv args.Invocation) bool {
	return inv.Has(args.FlagVersion) || inv.Has(args.FlagVersionLong)
}

// VersionQuery returns the command that answers inv's version query. The
// flag the caller used is forwarded; "-v" wins when both are present.
func (r Resolver) VersionQuery(inv args.Invocation) []string {
	flag := args.FlagVersion
	if !inv.Has(args.FlagVersion) && inv.Has(args.FlagVersionLong) {
		flag = args.FlagVersionLong
	}
	return []string{r.defaultCompiler(), flag}
}

// IsPreviewThunkCompile reports whether inv compiles a preview thunk:
// an output file map is given and some argument ends with the thunk suffix.
func (r Resolver) IsPreviewThunkCompile(inv args.Invocation) bool {
	if inv.FlagValue(args.FlagOutputFileMap) == "" {
		return false
	}
	return args.AnyEndsWith(inv.Args(), r.previewThunkSuffix())
}

// AlternateCompiler returns the compiler inside the developer root of sdkPath.
func (r Resolver) AlternateCompiler(sdkPath string) (string, error) {
	root, err := DeveloperRoot(sdkPath)
	if err != nil {
		return "", err
	}
	compiler := root + "/" + strings.TrimPrefix(r.relativeCompiler(), "/")
	log.Debug(log.CatToolchain, "Resolved alternate compiler", "sdk", sdkPath, "root", root, "compiler", compiler)
	return compiler, nil
}

// PreviewRedispatch returns inv with its executable replaced by the
// alternate compiler for the invocation's -sdk value.
func (r Resolver) PreviewRedispatch(inv args.Invocation) (args.Invocation, error) {
	compiler, err := r.AlternateCompiler(inv.FlagValue(args.FlagSDK))
	if err != nil {
		return args.Invocation{}, err
	}
	return inv.WithExecutable(compiler), nil
}

func (r Resolver) defaultCompiler() string {
	if r.DefaultCompiler == "" {
		return DefaultCompiler
	}
	return r.DefaultCompiler
}

func (r Resolver) relativeCompiler() string {
	if r.RelativeCompiler == "" {
		return DefaultRelativeCompiler
	}
	return r.RelativeCompiler
}

func (r Resolver) previewThunkSuffix() string {
	if r.PreviewThunkSuffix == "" {
		return DefaultPreviewThunkSuffix
	}
	return r.PreviewThunkSuffix
}
