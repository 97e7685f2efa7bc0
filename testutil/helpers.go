package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// repoRoot is resolved from this file so helpers work from any package.
func repoRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("testutil: cannot locate source file")
	}
	return filepath.Dir(filepath.Dir(file))
}

// SampleFlowPath is the account sync fixture used across packages.
func SampleFlowPath(t testing.TB) string {
	return filepath.Join(repoRoot(t), "parser", "testdata", "account_sync.flow-meta.xml")
}

// SampleFlow returns the account sync fixture document.
func SampleFlow(t testing.TB) string {
	t.Helper()
	return ReadFile(t, SampleFlowPath(t))
}

// Golden returns a rendering of the sample flow stored under graph/testdata.
func Golden(t testing.TB, name string) string {
	t.Helper()
	return ReadFile(t, filepath.Join(repoRoot(t), "graph", "testdata", name))
}

// ReadFile reads path or fails the test.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("testutil: %v", err)
	}
	return string(data)
}

// WriteFile creates dir/name with body and returns its path.
func WriteFile(t testing.TB, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("testutil: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("testutil: %v", err)
	}
	return path
}
