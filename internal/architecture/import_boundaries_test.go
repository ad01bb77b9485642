package architecture_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportBoundaries(t *testing.T) {
	files, err := collectGoFiles(internalRootDir())
	require.NoError(t, err)
	require.NotEmpty(t, files)

	violations := make([]string, 0)
	for _, file := range files {
		sourcePkg := packageImportPath(file)
		rule, ok := findRule(sourcePkg)
		if !ok {
			continue
		}

		for _, importPath := range parseImports(t, file) {
			if !strings.HasPrefix(importPath, modulePath+"/") {
				continue
			}
			if hasPathPrefix(importPath, rule.sourcePrefix) {
				continue
			}
			matched := matchingForbiddenPrefix(importPath, rule.forbidden)
			if matched == "" {
				continue
			}
			if isTestFile(file) && matchingForbiddenPrefix(importPath, rule.testAllowed) != "" {
				continue
			}
			kind := ""
			if isTestFile(file) {
				kind = "test "
			}
			violations = append(violations,
				"governance: "+kind+sourcePkg+" imports "+importPath+" via "+relToRepoRoot(file)+"; allowed direction: "+rule.hint,
			)
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		t.Fatalf("%s", strings.Join(violations, "\n"))
	}
}

func TestRulesCoverEveryInternalPackage(t *testing.T) {
	files, err := collectGoFiles(internalRootDir())
	require.NoError(t, err)

	unruled := map[string]bool{}
	for _, file := range files {
		pkg := packageImportPath(file)
		if _, ok := findRule(pkg); ok {
			continue
		}
		unruled[pkg] = true
	}

	// Composition roots and cross-cutting packages may import anything
	// below them.
	for _, pkg := range []string{
		modulePath + "/internal/architecture",
		modulePath + "/internal/config",
		modulePath + "/internal/observability",
		modulePath + "/internal/server",
	} {
		delete(unruled, pkg)
	}
	assert.Empty(t, unruled, "add a layer rule for new internal packages")
}

func TestRuleFixtures(t *testing.T) {
	rule, ok := findRule(modulePath + "/internal/service/dashboard")
	require.True(t, ok)
	assert.Equal(t, modulePath+"/internal/archive",
		matchingForbiddenPrefix(modulePath+"/internal/archive", rule.forbidden))
	assert.Empty(t, matchingForbiddenPrefix(modulePath+"/internal/rv", rule.forbidden))
	assert.False(t, hasPathPrefix(modulePath+"/internal/apiary", modulePath+"/internal/api"))
}
