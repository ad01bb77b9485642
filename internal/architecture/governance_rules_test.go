package architecture_test

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const modulePath = "exodash"

type layerRule struct {
	sourcePrefix string
	forbidden    []string
	// testAllowed lists forbidden prefixes that _test.go files may still import.
	testAllowed []string
	hint        string
}

func internal(pkgs ...string) []string {
	out := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, modulePath+"/"+p)
	}
	return out
}

var architectureRules = []layerRule{
	{
		sourcePrefix: modulePath + "/internal/domain",
		forbidden: internal("internal/rv", "internal/archive", "internal/cache", "internal/engine",
			"internal/service", "internal/api", "internal/ui", "internal/middleware", "internal/observability",
			"internal/config", "internal/app", "internal/server", "pkg", "cmd"),
		hint: "domain may only import domain",
	},
	{
		sourcePrefix: modulePath + "/internal/rv",
		forbidden: internal("internal/archive", "internal/cache", "internal/engine", "internal/service",
			"internal/api", "internal/ui", "internal/middleware", "internal/observability",
			"internal/config", "internal/app", "internal/server", "pkg", "cmd"),
		hint: "rv is pure math over domain types",
	},
	{
		sourcePrefix: modulePath + "/internal/archive",
		forbidden: internal("internal/cache", "internal/engine", "internal/service", "internal/api",
			"internal/ui", "internal/middleware", "internal/config", "internal/app", "internal/server", "pkg", "cmd"),
		hint: "archive should depend on domain only",
	},
	{
		sourcePrefix: modulePath + "/internal/cache",
		forbidden: internal("internal/archive", "internal/engine", "internal/service", "internal/api",
			"internal/ui", "internal/middleware", "internal/config", "internal/app", "internal/server", "pkg", "cmd"),
		hint: "cache should depend on domain only",
	},
	{
		sourcePrefix: modulePath + "/internal/engine",
		forbidden: internal("internal/archive", "internal/cache", "internal/service", "internal/api",
			"internal/ui", "internal/middleware", "internal/config", "internal/app", "internal/server", "pkg", "cmd"),
		hint: "engine should depend on domain and rv",
	},
	{
		sourcePrefix: modulePath + "/internal/service",
		forbidden: internal("internal/archive", "internal/engine", "internal/api", "internal/ui",
			"internal/middleware", "internal/config", "internal/app", "internal/server", "pkg", "cmd"),
		hint: "service reaches the archive through domain.PlanetSource",
	},
	{
		sourcePrefix: modulePath + "/internal/api",
		forbidden: internal("internal/archive", "internal/cache", "internal/ui", "internal/middleware",
			"internal/config", "internal/app", "internal/server", "pkg", "cmd"),
		testAllowed: internal("internal/cache", "pkg/apilint"),
		hint:        "api should depend on service, engine and domain",
	},
	{
		sourcePrefix: modulePath + "/internal/ui",
		forbidden: internal("internal/archive", "internal/cache", "internal/api", "internal/middleware",
			"internal/config", "internal/app", "internal/server", "pkg", "cmd"),
		testAllowed: internal("internal/cache"),
		hint:        "ui should depend on service, engine and domain",
	},
	{
		sourcePrefix: modulePath + "/internal/middleware",
		forbidden: internal("internal/archive", "internal/cache", "internal/engine", "internal/service",
			"internal/api", "internal/ui", "internal/config", "internal/app", "internal/server", "pkg", "cmd"),
		hint: "middleware is transport-only",
	},
	{
		sourcePrefix: modulePath + "/internal/app",
		forbidden:    internal("internal/api", "internal/ui", "internal/server", "pkg", "cmd"),
		hint:         "app wires services; the HTTP layer sits above it",
	},
}

func collectGoFiles(root string) ([]string, error) {
	files := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".go") {
			files = append(files, filepath.ToSlash(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func repoRootDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "."
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

func internalRootDir() string {
	return filepath.Join(repoRootDir(), "internal")
}

func findRule(sourcePkg string) (layerRule, bool) {
	for _, rule := range architectureRules {
		if hasPathPrefix(sourcePkg, rule.sourcePrefix) {
			return rule, true
		}
	}
	return layerRule{}, false
}

func matchingForbiddenPrefix(importPath string, forbidden []string) string {
	for _, prefix := range forbidden {
		if hasPathPrefix(importPath, prefix) {
			return prefix
		}
	}
	return ""
}

func hasPathPrefix(value string, prefix string) bool {
	return value == prefix || strings.HasPrefix(value, prefix+"/")
}

func isTestFile(path string) bool {
	return strings.HasSuffix(path, "_test.go")
}

func packageImportPath(file string) string {
	return modulePath + "/" + filepath.ToSlash(filepath.Dir(relToRepoRoot(file)))
}

func parseImports(t *testing.T, file string) []string {
	t.Helper()

	fset := token.NewFileSet()
	parsed, err := parser.ParseFile(fset, file, nil, parser.ImportsOnly)
	require.NoErrorf(t, err, "parse imports for %s", file)

	imports := make([]string, 0, len(parsed.Imports))
	for _, imp := range parsed.Imports {
		imports = append(imports, strings.Trim(imp.Path.Value, "\""))
	}
	return imports
}

func relToRepoRoot(path string) string {
	rel, err := filepath.Rel(repoRootDir(), path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
