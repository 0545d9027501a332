package architecture_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestHexagonalLayerImports walks every module source file and rejects
// imports that point the wrong way: nothing depends on an adapter, inner
// layers never depend on outer ones, and modules couple to each other only
// through domain, dto and port packages.
func TestHexagonalLayerImports(t *testing.T) {
	t.Parallel()
	fset := token.NewFileSet()
	root := filepath.Join("..", "modules")
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		slash := filepath.ToSlash(path)
		module := moduleName(slash)
		layer := detectLayer(slash)
		if module == "" || layer == "" {
			return nil
		}
		node, parseErr := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if parseErr != nil {
			return parseErr
		}
		for _, imp := range node.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)
			if !strings.Contains(importPath, "posturetrack/internal/modules/") {
				continue
			}
			if violatesLayerRule(module, layer, importPath) {
				t.Fatalf("forbidden import in %s (%s): %s", slash, layer, importPath)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk modules: %v", err)
	}
}

func moduleName(path string) string {
	parts := strings.Split(path, "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "modules" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

func detectLayer(path string) string {
	for _, layer := range []string{"adapter/in", "adapter/out", "usecase", "service", "domain", "port/in", "port/out", "dto"} {
		if strings.Contains(path, "/"+layer+"/") {
			return layer
		}
	}
	return ""
}

func importsLayer(importPath, layer string) bool {
	return strings.Contains(importPath, "/"+layer+"/") || strings.HasSuffix(importPath, "/"+layer)
}

func violatesLayerRule(module, layer, importPath string) bool {
	sameModule := strings.Contains(importPath, "/internal/modules/"+module+"/")
	if !sameModule {
		// Cross-module coupling goes through contracts only.
		return importsLayer(importPath, "service") ||
			importsLayer(importPath, "usecase") ||
			importsLayer(importPath, "adapter/in") ||
			importsLayer(importPath, "adapter/out")
	}

	if importsLayer(importPath, "adapter/in") || importsLayer(importPath, "adapter/out") {
		return true
	}
	switch layer {
	case "domain":
		return importsLayer(importPath, "usecase") || importsLayer(importPath, "service") ||
			importsLayer(importPath, "port/in") || importsLayer(importPath, "port/out") ||
			importsLayer(importPath, "dto")
	case "dto":
		return importsLayer(importPath, "usecase") || importsLayer(importPath, "service")
	case "service":
		return importsLayer(importPath, "usecase")
	default:
		return false
	}
}
