// Package args inspects swiftc command lines.
// Scanning never fails; a missing flag is reported as an empty value rather
// than an error. Only response-file expansion touches the filesystem.
package args

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Recognized swiftc flags.
const (
	FlagVersion            = "-v"
	FlagVersionLong        = "--version"
	FlagOutputFileMap      = "-output-file-map"
	FlagEmitModulePath     = "-emit-module-path"
	FlagEmitObjCHeaderPath = "-emit-objc-header-path"
	FlagSDK                = "-sdk"

	FlagEmitModuleSourceInfoPath = "-emit-module-source-info-path"
	FlagEmitDependenciesPath     = "-emit-dependencies-path"
	FlagEmitABIDescriptorPath    = "-emit-abi-descriptor-path"
	FlagEmitModuleDocPath        = "-emit-module-doc-path"

	FlagWMO                     = "-wmo"
	FlagWholeModuleOptimization = "-whole-module-optimization"
)

// ResponseFilePrefix marks an argument naming a file of further arguments.
const ResponseFilePrefix = "@"

// Invocation is a captured compiler command line.
// Element 0 names the executable; it is only used as such on re-dispatch.
//
// argv is the command line as received and is what gets forwarded.
// scan is argv with response files expanded and is what flags are read from.
type Invocation struct {
	argv []string
	scan []string
}

// NewInvocation captures argv without expanding response files. The slice
// is copied so later mutation by the caller does not leak into the invocation.
func NewInvocation(argv []string) Invocation {
	return Invocation{argv: slices.Clone(argv), scan: slices.Clone(argv)}
}

// ReadInvocation captures argv and expands every "@path" argument after
// element 0 into the lines of that file for scanning. Argv still returns the
// unexpanded command line.
func ReadInvocation(argv []string) (Invocation, error) {
	inv := NewInvocation(argv)
	if len(argv) <= 1 {
		return inv, nil
	}
	scan := make([]string, 0, len(argv))
	scan = append(scan, argv[0])
	for _, arg := range argv[1:] {
		path, ok := strings.CutPrefix(arg, ResponseFilePrefix)
		if !ok {
			scan = append(scan, arg)
			continue
		}
		lines, err := ReadResponseFile(path)
		if err != nil {
			return Invocation{}, err
		}
		scan = append(scan, lines...)
	}
	inv.scan = scan
	return inv, nil
}

// ReadResponseFile returns one argument per line of path. A line wrapped in
// double quotes has the quotes removed. Nested "@" lines are not expanded.
func ReadResponseFile(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the compiler command line
	if err != nil {
		return nil, fmt.Errorf("reading response file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, unquote(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading response file %s: %w", path, err)
	}
	return lines, nil
}

func unquote(line string) string {
	if len(line) >= 2 && strings.HasPrefix(line, `"`) && strings.HasSuffix(line, `"`) {
		return line[1 : len(line)-1]
	}
	return line
}

// Argv returns a copy of the full argument vector.
func (i Invocation) Argv() []string {
	return slices.Clone(i.argv)
}

// Executable returns element 0, or "" for an empty invocation.
func (i Invocation) Executable() string {
	if len(i.argv) == 0 {
		return ""
	}
	return i.argv[0]
}

// Args returns the expanded arguments after element 0.
func (i Invocation) Args() []string {
	if len(i.scan) <= 1 {
		return nil
	}
	return slices.Clone(i.scan[1:])
}

// WithExecutable returns a copy of the invocation with element 0 replaced.
// An empty invocation gains exe as its only element.
func (i Invocation) WithExecutable(exe string) Invocation {
	if len(i.argv) == 0 {
		return Invocation{argv: []string{exe}, scan: []string{exe}}
	}
	argv := slices.Clone(i.argv)
	argv[0] = exe
	scan := slices.Clone(i.scan)
	scan[0] = exe
	return Invocation{argv: argv, scan: scan}
}

// FlagValue is FindFlagValue over the expanded invocation.
func (i Invocation) FlagValue(key string) string {
	return FindFlagValue(i.scan, key)
}

// FlagValues is FindFlagValues over the expanded invocation.
func (i Invocation) FlagValues(key string) []string {
	return FindFlagValues(i.scan, key)
}

// Has reports whether token appears among the expanded arguments.
func (i Invocation) Has(token string) bool {
	return Contains(i.Args(), token)
}

// FindFlagValue returns the argument immediately following the first
// occurrence of key. It returns "" when key is absent or is the last argument.
func FindFlagValue(args []string, key string) string {
	for idx, arg := range args {
		if arg != key {
			continue
		}
		if idx+1 < len(args) {
			return args[idx+1]
		}
		return ""
	}
	return ""
}

// FindFlagValues returns the argument following every occurrence of key, in
// order. A trailing key with no value contributes nothing.
func FindFlagValues(args []string, key string) []string {
	var values []string
	for idx := 0; idx+1 < len(args); idx++ {
		if args[idx] == key {
			values = append(values, args[idx+1])
			idx++
		}
	}
	return values
}

// EndsWith reports whether text ends with suffix. An empty suffix always matches.
func EndsWith(text, suffix string) bool {
	return strings.HasSuffix(text, suffix)
}

// Contains reports whether token appears as a whole argument.
func Contains(args []string, token string) bool {
	return slices.Contains(args, token)
}

// AnyEndsWith reports whether at least one argument ends with suffix.
func AnyEndsWith(args []string, suffix string) bool {
	return slices.ContainsFunc(args, func(arg string) bool {
		return EndsWith(arg, suffix)
	})
}

// ReplaceExt swaps the extension of the last path element for ext.
// A path without an extension gets ext appended. A leading dot does not
// start an extension, so a dot-file name is kept whole:
//
//	ReplaceExt("/tmp/X.swiftmodule", "swiftdoc") == "/tmp/X.swiftdoc"
//	ReplaceExt("/tmp/X", "swiftdoc")             == "/tmp/X.swiftdoc"
//	ReplaceExt("/tmp/.swiftmodule", "swiftdoc")  == "/tmp/.swiftmodule.swiftdoc"
func ReplaceExt(path, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return strings.TrimSuffix(path, extension(path)) + "." + ext
}

// extension is filepath.Ext except that the leading dot of a file name
// never counts.
func extension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	name := path[strings.LastIndexAny(path, `/`+string(filepath.Separator))+1:]
	if name == ext {
		return ""
	}
	return ext
}
