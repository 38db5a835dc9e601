// Package artifacts creates the placeholder outputs a build graph declares
// for a swiftc invocation but the compiler may not have written.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/zjrosen/swiftcshim/internal/args"
	"github.com/zjrosen/swiftcshim/internal/log"
	"github.com/zjrosen/swiftcshim/internal/outputmap"
	"github.com/zjrosen/swiftcshim/internal/touch"
)

// ModuleCompanionExts are touched next to the emitted module, in this order.
var ModuleCompanionExts = []string{"swiftdoc", "swiftsourceinfo", "swiftinterface"}

// OutputFileMapSuffix ends the output file map name swift-driver writes.
// Under whole-module optimization the master dependency file sits next to
// it with this suffix replaced by MasterDepsSuffix.
const (
	OutputFileMapSuffix = "-OutputFileMap.json"
	MasterDepsSuffix    = "-master.d"
)

// Missing -emit-module-path handling.
const (
	// MissingModuleSkip skips the module and companion touches.
	MissingModuleSkip = "skip"
	// MissingModuleRequire fails with ErrMissingModulePath.
	MissingModuleRequire = "require"
)

// ErrMissingModulePath is returned under MissingModuleRequire when the
// invocation has no -emit-module-path value.
var ErrMissingModulePath = errors.New("missing -emit-module-path value")

// Synthesizer touches declared outputs.
type Synthesizer struct {
	toucher       touch.Toucher
	missingModule string
}

// NewSynthesizer creates a Synthesizer. An empty missingModule means MissingModuleSkip.
func NewSynthesizer(toucher touch.Toucher, missingModule string) (*Synthesizer, error) {
	switch missingModule {
	case "":
		missingModule = MissingModuleSkip
	case MissingModuleSkip, MissingModuleRequire:
	default:
		return nil, fmt.Errorf("unknown module path policy %q", missingModule)
	}
	return &Synthesizer{toucher: toucher, missingModule: missingModule}, nil
}

// ModuleArtifactPaths returns the module path followed by its companions.
func ModuleArtifactPaths(modulePath string) []string {
	paths := make([]string, 0, len(ModuleCompanionExts)+1)
	paths = append(paths, modulePath)
	for _, ext := range ModuleCompanionExts {
		paths = append(paths, args.ReplaceExt(modulePath, ext))
	}
	return paths
}

// MasterDepsPath returns the whole-module dependency file for mapPath:
// "/o/X-OutputFileMap.json" becomes "/o/X-master.d". A map with another name
// loses its extension instead.
func MasterDepsPath(mapPath string) string {
	if base, ok := strings.CutSuffix(mapPath, OutputFileMapSuffix); ok {
		return base + MasterDepsSuffix
	}
	return strings.TrimSuffix(mapPath, filepath.Ext(mapPath)) + MasterDepsSuffix
}

// IsWholeModule reports whether inv compiles with whole-module optimization.
func IsWholeModule(inv args.Invocation) bool {
	return inv.Has(args.FlagWMO) || inv.Has(args.FlagWholeModuleOptimization)
}

// TouchDepsFiles touches every dependencies path in the invocation's
// output file map, and the master dependency file under whole-module
// optimization. Without -output-file-map there is nothing to do; a map
// that cannot be read or decoded is an error.
func (s *Synthesizer) TouchDepsFiles(ctx context.Context, inv args.Invocation) error {
	mapPath := inv.FlagValue(args.FlagOutputFileMap)
	if mapPath == "" {
		log.Debug(log.CatTouch, "No output file map")
		return nil
	}

	if IsWholeModule(inv) {
		master := MasterDepsPath(mapPath)
		log.Debug(log.CatTouch, "Touching master dependency file", "path", master)
		if err := s.toucher.Touch(ctx, master); err != nil {
			return err
		}
	}

	m, err := outputmap.Load(mapPath)
	if err != nil {
		return err
	}

	deps := m.DependencyPaths()
	log.Debug(log.CatTouch, "Touching dependency files", "map", mapPath, "count", len(deps))
	for _, path := range deps {
		if err := s.toucher.Touch(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// TouchSwiftmoduleArtifacts touches the emitted module, its companions and
// the generated Objective-C header when one is declared, then every
// separately declared module output (see ExtraModuleOutputs).
func (s *Synthesizer) TouchSwiftmoduleArtifacts(ctx context.Context, inv args.Invocation) error {
	modulePath := inv.FlagValue(args.FlagEmitModulePath)
	switch {
	case modulePath != "":
		for _, path := range ModuleArtifactPaths(modulePath) {
			if err := s.toucher.Touch(ctx, path); err != nil {
				return err
			}
		}
	case s.missingModule == MissingModuleRequire:
		return ErrMissingModulePath
	default:
		log.Debug(log.CatTouch, "No module path, skipping module artifacts")
	}

	if header := inv.FlagValue(args.FlagEmitObjCHeaderPath); header != "" {
		if err := s.toucher.Touch(ctx, header); err != nil {
			return err
		}
	}

	for _, path := range ExtraModuleOutputs(inv) {
		if err := s.toucher.Touch(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// ExtraModuleOutputs returns the paths given to -emit-module-source-info-path,
// -emit-dependencies-path, -emit-abi-descriptor-path and
// -emit-module-doc-path, every occurrence, in that flag order. Each module
// doc path is preceded by the .swiftmodule next to it. Empty values are
// dropped.
func ExtraModuleOutputs(inv args.Invocation) []string {
	var paths []string
	paths = append(paths, inv.FlagValues(args.FlagEmitModuleSourceInfoPath)...)
	paths = append(paths, inv.FlagValues(args.FlagEmitDependenciesPath)...)
	paths = append(paths, inv.FlagValues(args.FlagEmitABIDescriptorPath)...)
	for _, doc := range inv.FlagValues(args.FlagEmitModuleDocPath) {
		if doc != "" {
			paths = append(paths, args.ReplaceExt(doc, "swiftmodule"), doc)
		}
	}
	return slices.DeleteFunc(paths, func(p string) bool { return p == "" })
}
