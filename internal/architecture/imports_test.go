package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

type goImport struct {
	file string
	imp  string
}

func TestImportBoundaries(t *testing.T) {
	root, modulePath := moduleRoot(t)

	type violation struct {
		goImport
		rule string
	}
	var violations []violation

	walkImports(t, root, filepath.Join(root, "internal"), func(gi goImport) {
		if strings.HasSuffix(gi.file, "_test.go") {
			return
		}
		layer := layerFor(gi.file)
		if layer == "" {
			return
		}
		if layer == "pure" {
			if strings.HasPrefix(gi.imp, modulePath+"/") {
				violations = append(violations, violation{goImport: gi, rule: modulePath + "/..."})
			}
			return
		}
		for _, bad := range disallowedImports(modulePath, layer) {
			if strings.HasPrefix(gi.imp, bad) {
				violations = append(violations, violation{goImport: gi, rule: bad})
				return
			}
		}
	})

	if len(violations) > 0 {
		var b strings.Builder
		b.WriteString("import boundary violations:\n")
		for _, v := range violations {
			fmt.Fprintf(&b, "- %s imports %q (disallowed: %q)\n", v.file, v.imp, v.rule)
		}
		t.Fatal(b.String())
	}
}

func TestAppImportedOnlyFromCmd(t *testing.T) {
	root, modulePath := moduleRoot(t)
	appPath := modulePath + "/internal/app"

	var violations []goImport
	walkImports(t, root, root, func(gi goImport) {
		if gi.imp != appPath {
			return
		}
		if strings.HasPrefix(gi.file, "cmd/") || strings.HasPrefix(gi.file, "internal/app/") {
			return
		}
		violations = append(violations, gi)
	})

	if len(violations) > 0 {
		var b strings.Builder
		b.WriteString("internal/app imported outside cmd/:\n")
		for _, v := range violations {
			fmt.Fprintf(&b, "- %s\n", v.file)
		}
		t.Fatal(b.String())
	}
}

func layerFor(rel string) string {
	switch {
	case strings.HasPrefix(rel, "internal/braille/"), strings.HasPrefix(rel, "internal/story/"):
		return "pure"
	case strings.HasPrefix(rel, "internal/domain/"):
		return "domain"
	case strings.HasPrefix(rel, "internal/platform/"):
		return "platform"
	case strings.HasPrefix(rel, "internal/data/"):
		return "data"
	case strings.HasPrefix(rel, "internal/artifacts/"):
		return "artifacts"
	case strings.HasPrefix(rel, "internal/services/"):
		return "services"
	case strings.HasPrefix(rel, "internal/jobs/"):
		return "jobs"
	case strings.HasPrefix(rel, "internal/http/"):
		return "http"
	default:
		return ""
	}
}

func disallowedImports(modulePath string, layer string) []string {
	in := func(pkgs ...string) []string {
		out := make([]string, 0, len(pkgs))
		for _, p := range pkgs {
			out = append(out, modulePath+"/internal/"+p)
		}
		return out
	}
	switch layer {
	case "domain":
		return in("platform/", "data/", "artifacts/", "services", "jobs/", "http/", "app")
	case "platform":
		return in("data/", "artifacts/", "services", "jobs/", "http/", "app")
	case "data":
		return in("services", "jobs/", "http/", "app")
	case "artifacts":
		return in("services", "jobs/", "http/", "app")
	case "services":
		return in("jobs/", "http/", "app")
	case "jobs":
		return in("http/", "app")
	case "http":
		return in("data/", "jobs/", "app")
	default:
		return nil
	}
}

func walkImports(t *testing.T, root, dir string, visit func(goImport)) {
	t.Helper()
	fset := token.NewFileSet()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			switch name {
			case "vendor", "node_modules", "testdata":
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			if spec == nil || spec.Path == nil {
				continue
			}
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			visit(goImport{file: rel, imp: imp})
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
}

func moduleRoot(t *testing.T) (string, string) {
	t.Helper()
	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err := findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}
	return root, modulePath
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if !strings.HasPrefix(line, "module ") {
			continue
		}
		mp := strings.TrimSpace(strings.TrimPrefix(line, "module "))
		if mp == "" {
			return "", fmt.Errorf("empty module path in %s", goModPath)
		}
		return mp, nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}
