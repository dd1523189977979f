package loader

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"debtguardian/internal/logging"
)

func testLoader(maxSize int) *Loader {
	return New(maxSize, logging.NewLogger(logging.Config{
		Format: "human",
		Level:  "error",
		Output: io.Discard,
	}))
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"src/Order.java", "java"},
		{"cart.go", "go"},
		{"scripts/run.py", "python"},
		{"Order.JAVA", "java"},
		{"readme.md", ""},
		{"noext", ""},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.path); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestLoadDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/Order.java", "class Order {}")
	writeFile(t, root, "lib/cart.go", "package lib")
	writeFile(t, root, "tools/run.py", "x = 1")
	writeFile(t, root, "README.md", "docs")
	writeFile(t, root, "vendor/dep.go", "package dep")
	writeFile(t, root, "node_modules/pkg/index.go", "package pkg")
	writeFile(t, root, ".hidden/secret.py", "y = 2")

	inputs, err := testLoader(0).LoadDirectory(root)
	if err != nil {
		t.Fatalf("LoadDirectory failed: %v", err)
	}

	if len(inputs) != 3 {
		t.Fatalf("inputs = %d, want 3", len(inputs))
	}
	// Sorted, slash-separated, relative paths
	wantPaths := []string{"lib/cart.go", "src/Order.java", "tools/run.py"}
	for i, want := range wantPaths {
		if inputs[i].Path != want {
			t.Errorf("input %d = %q, want %q", i, inputs[i].Path, want)
		}
	}
	if inputs[1].Language != "java" || inputs[1].Text != "class Order {}" {
		t.Errorf("java input = %+v", inputs[1])
	}
}

func TestLoadDirectorySkipsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "small.py", "x = 1")
	writeFile(t, root, "big.py", "x = 1\n"+string(make([]byte, 2048)))

	inputs, err := testLoader(1024).LoadDirectory(root)
	if err != nil {
		t.Fatalf("LoadDirectory failed: %v", err)
	}
	if len(inputs) != 1 || inputs[0].Path != "small.py" {
		t.Errorf("inputs = %+v, want only small.py", inputs)
	}
}

func TestLoadFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Order.java", "class Order {}")

	in, err := testLoader(0).LoadFile(filepath.Join(root, "Order.java"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if in.Language != "java" {
		t.Errorf("language = %q, want java", in.Language)
	}
	if in.Text != "class Order {}" {
		t.Errorf("text = %q", in.Text)
	}
}
