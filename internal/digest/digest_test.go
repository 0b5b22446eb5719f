package digest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestTree_Deterministic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/main/groovy/A.groovy", "class A {}")
	writeFile(t, dir, "build.gradle", "apply plugin: 'groovy'")

	first, err := Tree(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	second, err := Tree(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if first != second {
		t.Fatalf("digest not deterministic: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}
}

func TestTree_ChangeDetection(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "build.gradle", "apply plugin: 'groovy'")

	before, err := Tree(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	writeFile(t, dir, "build.gradle", "apply plugin: 'java'")
	after, err := Tree(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if before == after {
		t.Fatal("digest should change when file content changes")
	}
}

func TestTree_IgnoresBuildOutput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/A.groovy", "class A {}")

	before, err := Tree(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}

	// Build output and Gradle metadata must not influence the digest
	writeFile(t, dir, "build/libs/buildSrc.jar", "jar bytes")
	writeFile(t, dir, ".gradle/cache.bin", "cache")
	writeFile(t, dir, ".gradlex/state.json", "{}")

	after, err := Tree(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if before != after {
		t.Fatal("ignored directories changed the digest")
	}
}

func TestTree_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Tree(ctx, dir, nil); err == nil {
		t.Fatal("expected context error")
	}
}

func TestIgnoreRules(t *testing.T) {
	rules := NewIgnoreRules()

	tests := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{".git", true, true},
		{"build", true, true},
		{"sub/build", true, true},
		{"build.gradle", false, false},
		{"src/A.groovy", false, false},
		{"editor.swp", false, true},
		{"notes~", false, true},
	}
	for _, tt := range tests {
		if got := rules.ShouldIgnore(tt.path, tt.isDir); got != tt.want {
			t.Errorf("ShouldIgnore(%q, %v) = %v, want %v", tt.path, tt.isDir, got, tt.want)
		}
	}
}

func TestIgnoreRules_NegationAndFile(t *testing.T) {
	rules := NewIgnoreRules()
	if err := rules.AddPattern("*.jar"); err != nil {
		t.Fatal(err)
	}
	if err := rules.AddPattern("!keep.jar"); err != nil {
		t.Fatal(err)
	}

	if !rules.ShouldIgnore("libs/other.jar", false) {
		t.Error("*.jar should be ignored")
	}
	if rules.ShouldIgnore("libs/keep.jar", false) {
		t.Error("negated pattern should un-ignore keep.jar")
	}
}

func TestIgnoreRules_LoadFromFile(t *testing.T) {
	dir := t.TempDir()
	ignoreFile := filepath.Join(dir, ".gradlexignore")
	content := "# comment\n\n*.tmp\ndocs/generated/\n"
	if err := os.WriteFile(ignoreFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rules := NewIgnoreRules()
	if err := rules.LoadFromFile(ignoreFile); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if !rules.ShouldIgnore("x.tmp", false) {
		t.Error("*.tmp from file should be ignored")
	}
	if !rules.ShouldIgnore("docs/generated", true) {
		t.Error("docs/generated/ from file should be ignored")
	}

	// Missing file is not an error
	if err := rules.LoadFromFile(filepath.Join(dir, "missing")); err != nil {
		t.Fatalf("missing ignore file should be tolerated: %v", err)
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "hello")
	h1, err := File(filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	writeFile(t, dir, "b.txt", "hello")
	h2, err := File(filepath.Join(dir, "b.txt"))
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if h1 != h2 {
		t.Fatal("same content should produce same hash")
	}
	if _, err := File(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
