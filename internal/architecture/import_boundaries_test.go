package architecture_test

import (
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const modulePath = "duck-sheets"

// moduleRoot is relative to this package's directory, where go test runs.
const moduleRoot = "../.."

type layerRule struct {
	sourcePrefix string
	forbidden    []string
	hint         string
}

var rules = []layerRule{
	{
		sourcePrefix: modulePath + "/internal/domain",
		forbidden: []string{
			modulePath + "/internal",
			modulePath + "/cmd",
			modulePath + "/pkg",
		},
		hint: "domain may only import domain",
	},
	{
		sourcePrefix: modulePath + "/internal/service",
		forbidden: []string{
			modulePath + "/internal/api",
			modulePath + "/internal/app",
			modulePath + "/internal/db",
			modulePath + "/internal/middleware",
			modulePath + "/internal/ui",
			modulePath + "/cmd",
			modulePath + "/pkg",
		},
		hint: "service depends on domain, engine and the storage-neutral helpers",
	},
	{
		sourcePrefix: modulePath + "/internal/api",
		forbidden: []string{
			modulePath + "/internal/app",
			modulePath + "/internal/db",
			modulePath + "/internal/engine",
			modulePath + "/internal/service",
			modulePath + "/internal/staging",
			modulePath + "/cmd",
			modulePath + "/pkg",
		},
		hint: "api talks to services through its own interfaces",
	},
	{
		sourcePrefix: modulePath + "/internal/ui",
		forbidden: []string{
			modulePath + "/internal/api",
			modulePath + "/internal/app",
			modulePath + "/internal/db",
			modulePath + "/internal/engine",
			modulePath + "/internal/service",
		},
		hint: "ui renders domain values only",
	},
	{
		sourcePrefix: modulePath + "/internal/db",
		forbidden: []string{
			modulePath + "/internal/api",
			modulePath + "/internal/app",
			modulePath + "/internal/service",
			modulePath + "/internal/middleware",
			modulePath + "/internal/ui",
			modulePath + "/cmd",
			modulePath + "/pkg",
		},
		hint: "db should depend on domain and db-local packages",
	},
	{
		sourcePrefix: modulePath + "/internal/engine",
		forbidden: []string{
			modulePath + "/internal/api",
			modulePath + "/internal/app",
			modulePath + "/internal/db",
			modulePath + "/internal/service",
			modulePath + "/cmd",
			modulePath + "/pkg",
		},
		hint: "engine should depend on domain and ddl",
	},
	{
		sourcePrefix: modulePath + "/internal/middleware",
		forbidden: []string{
			modulePath + "/internal/api",
			modulePath + "/internal/service",
			modulePath + "/internal/db",
			modulePath + "/internal/engine",
		},
		hint: "middleware should depend on domain and middleware-local packages",
	},
}

// leafPackages are helpers that must stay free of every layer above them.
var leafPackages = []string{"ddl", "naming", "discovery", "preview", "staging"}

func init() {
	for _, leaf := range leafPackages {
		rules = append(rules, layerRule{
			sourcePrefix: modulePath + "/internal/" + leaf,
			forbidden: []string{
				modulePath + "/internal/api",
				modulePath + "/internal/app",
				modulePath + "/internal/db",
				modulePath + "/internal/engine",
				modulePath + "/internal/service",
				modulePath + "/internal/ui",
			},
			hint: leaf + " is a leaf helper and may only import domain or ddl",
		})
	}
}

func TestImportBoundaries(t *testing.T) {
	files := goFiles(t)
	require.NotEmpty(t, files, "no Go files found under %s", moduleRoot)

	violations := make([]string, 0)
	fset := token.NewFileSet()
	checked := 0

	for _, file := range files {
		if shouldSkipFile(file) {
			continue
		}

		sourcePkg := packageImportPath(file)
		rule, ok := findRule(sourcePkg)
		if !ok {
			continue
		}
		checked++

		parsed, parseErr := parser.ParseFile(fset, filepath.Join(moduleRoot, file), nil, parser.ImportsOnly)
		require.NoErrorf(t, parseErr, "parse imports for %s", file)

		for _, imp := range parsed.Imports {
			importPath := strings.Trim(imp.Path.Value, "\"")
			if !strings.HasPrefix(importPath, modulePath+"/") {
				continue
			}
			if hasPathPrefix(importPath, rule.sourcePrefix) {
				continue
			}
			if violatesRule(importPath, rule.forbidden) {
				violations = append(violations,
					"governance: "+sourcePkg+" imports "+importPath+" via "+file+"; allowed direction: "+rule.hint,
				)
			}
		}
	}

	require.Positive(t, checked, "no files matched any layer rule")
	if len(violations) > 0 {
		sort.Strings(violations)
		t.Fatalf("%s", strings.Join(violations, "\n"))
	}
}

func TestModulePathMatchesGoMod(t *testing.T) {
	data, err := os.ReadFile(filepath.Join(moduleRoot, "go.mod"))
	require.NoError(t, err)
	first := strings.SplitN(string(data), "\n", 2)[0]
	require.Equal(t, "module "+modulePath, strings.TrimSpace(first))
}

// goFiles lists module-relative, slash-separated paths of the Go files
// under internal/, cmd/ and pkg/.
func goFiles(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, top := range []string{"internal", "cmd", "pkg"} {
		root := filepath.Join(moduleRoot, top)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || filepath.Ext(path) != ".go" {
				return nil
			}
			rel, err := filepath.Rel(moduleRoot, path)
			if err != nil {
				return err
			}
			out = append(out, filepath.ToSlash(rel))
			return nil
		})
		if os.IsNotExist(err) {
			continue
		}
		require.NoError(t, err)
	}
	return out
}

func shouldSkipFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), "_test.go")
}

func packageImportPath(file string) string {
	return modulePath + "/" + filepath.ToSlash(filepath.Dir(file))
}

func findRule(sourcePkg string) (layerRule, bool) {
	for _, rule := range rules {
		if hasPathPrefix(sourcePkg, rule.sourcePrefix) {
			return rule, true
		}
	}
	return layerRule{}, false
}

func violatesRule(importPath string, forbidden []string) bool {
	for _, prefix := range forbidden {
		if hasPathPrefix(importPath, prefix) {
			return true
		}
	}
	return false
}

func hasPathPrefix(value string, prefix string) bool {
	return value == prefix || strings.HasPrefix(value, prefix+"/")
}
