package buildsrc

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gradlex/internal/executer"
	e "gradlex/pkg/errors"
)

// recordingBackend fakes the Gradle sub-build. produce places build output
// into the buildSrc dir the way a real build would.
type recordingBackend struct {
	invocations []*executer.Invocation
	produce     func(buildSrcDir string)
	fail        bool
}

func (b *recordingBackend) DoRun(inv *executer.Invocation) (*executer.ExecutionResult, error) {
	b.invocations = append(b.invocations, inv)
	if b.fail {
		return nil, e.New(e.ErrExecFailed, "Build failed with exit code 1")
	}
	if b.produce != nil {
		b.produce(inv.WorkingDir)
	}
	return &executer.ExecutionResult{Output: "BUILD SUCCESSFUL"}, nil
}

func (b *recordingBackend) DoRunWithFailure(inv *executer.Invocation) (*executer.ExecutionFailure, error) {
	b.invocations = append(b.invocations, inv)
	return &executer.ExecutionFailure{ExitCode: 1}, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// newProject lays out a minimal project with a buildSrc source file.
func newProject(t *testing.T) string {
	t.Helper()
	projectDir := t.TempDir()
	writeFile(t, filepath.Join(projectDir, Dir, "build.gradle"), "apply plugin: 'groovy'\n")
	writeFile(t, filepath.Join(projectDir, Dir, "src", "main", "groovy", "Plugin.groovy"), "class Plugin {}\n")
	return projectDir
}

func produceJar(buildSrcDir string) {
	libsDir := filepath.Join(buildSrcDir, "build", "libs")
	_ = os.MkdirAll(libsDir, 0o755)
	_ = os.WriteFile(filepath.Join(libsDir, "buildSrc.jar"), []byte("jar"), 0o644)
}

func TestBuildClasspath_NoBuildSrcDir(t *testing.T) {
	backend := &recordingBackend{}
	builder := NewBuilder(backend)

	classpath, err := builder.BuildClasspath(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("BuildClasspath: %v", err)
	}
	if classpath != nil {
		t.Fatalf("expected nil classpath, got %v", classpath)
	}
	if len(backend.invocations) != 0 {
		t.Fatal("no build should run without a buildSrc dir")
	}
}

func TestBuildClasspath_FirstBuildRunsCleanBuild(t *testing.T) {
	projectDir := newProject(t)
	backend := &recordingBackend{produce: produceJar}
	builder := NewBuilder(backend)

	classpath, err := builder.BuildClasspath(context.Background(), projectDir)
	if err != nil {
		t.Fatalf("BuildClasspath: %v", err)
	}
	if len(classpath) != 1 || !strings.HasSuffix(classpath[0], "buildSrc.jar") {
		t.Fatalf("classpath = %v", classpath)
	}
	if len(backend.invocations) != 1 {
		t.Fatalf("expected one invocation, got %d", len(backend.invocations))
	}

	args := backend.invocations[0].Args
	last2 := args[len(args)-2:]
	if last2[0] != "clean" || last2[1] != "build" {
		t.Fatalf("first build should run clean build, args = %v", args)
	}
	var quiet, noSearch bool
	for _, arg := range args {
		switch arg {
		case "--quiet":
			quiet = true
		case "--no-search-upward":
			noSearch = true
		}
	}
	if !quiet || !noSearch {
		t.Fatalf("sub-build should run quietly and without upward search, args = %v", args)
	}
}

func TestBuildClasspath_CacheHitSkipsBuild(t *testing.T) {
	projectDir := newProject(t)
	backend := &recordingBackend{produce: produceJar}
	builder := NewBuilder(backend)

	first, err := builder.BuildClasspath(context.Background(), projectDir)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := builder.BuildClasspath(context.Background(), projectDir)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if len(backend.invocations) != 1 {
		t.Fatalf("unchanged sources should not rebuild, got %d invocations", len(backend.invocations))
	}
	if len(first) != len(second) || first[0] != second[0] {
		t.Fatalf("cache hit returned different classpath: %v vs %v", first, second)
	}
}

func TestBuildClasspath_SourceChangeRebuilds(t *testing.T) {
	projectDir := newProject(t)
	backend := &recordingBackend{produce: produceJar}
	builder := NewBuilder(backend)

	if _, err := builder.BuildClasspath(context.Background(), projectDir); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(projectDir, Dir, "src", "main", "groovy", "Plugin.groovy"), "class Plugin { def x }\n")
	if _, err := builder.BuildClasspath(context.Background(), projectDir); err != nil {
		t.Fatal(err)
	}
	if len(backend.invocations) != 2 {
		t.Fatalf("changed sources should rebuild, got %d invocations", len(backend.invocations))
	}

	// A rebuild after the first build runs plain build, not clean build
	args := backend.invocations[1].Args
	if args[len(args)-1] != "build" || args[len(args)-2] == "clean" {
		t.Fatalf("rebuild args = %v", args)
	}
}

func TestBuildClasspath_GradlexignoreExcludesFromDigest(t *testing.T) {
	projectDir := newProject(t)
	writeFile(t, filepath.Join(projectDir, Dir, ignoreFileName), "notes.md\n")
	writeFile(t, filepath.Join(projectDir, Dir, "notes.md"), "scratch\n")
	backend := &recordingBackend{produce: produceJar}
	builder := NewBuilder(backend)

	if _, err := builder.BuildClasspath(context.Background(), projectDir); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(projectDir, Dir, "notes.md"), "edited scratch\n")
	if _, err := builder.BuildClasspath(context.Background(), projectDir); err != nil {
		t.Fatal(err)
	}
	if len(backend.invocations) != 1 {
		t.Fatalf("change to an ignored file should not rebuild, got %d invocations", len(backend.invocations))
	}

	// A change to a non-ignored source still rebuilds
	writeFile(t, filepath.Join(projectDir, Dir, "src", "main", "groovy", "Plugin.groovy"), "class Plugin { def z }\n")
	if _, err := builder.BuildClasspath(context.Background(), projectDir); err != nil {
		t.Fatal(err)
	}
	if len(backend.invocations) != 2 {
		t.Fatal("source change should still rebuild with an ignore file present")
	}
}

func TestBuildClasspath_MissingCachedEntriesRebuild(t *testing.T) {
	projectDir := newProject(t)
	backend := &recordingBackend{produce: produceJar}
	builder := NewBuilder(backend)

	classpath, err := builder.BuildClasspath(context.Background(), projectDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(classpath[0]); err != nil {
		t.Fatal(err)
	}
	if _, err := builder.BuildClasspath(context.Background(), projectDir); err != nil {
		t.Fatal(err)
	}
	if len(backend.invocations) != 2 {
		t.Fatal("missing classpath entry should force a rebuild")
	}
}

func TestBuildClasspath_CorruptedState(t *testing.T) {
	projectDir := newProject(t)
	statePath := filepath.Join(projectDir, Dir, stateDirName, stateFileName)
	writeFile(t, statePath, "{not json")

	builder := NewBuilder(&recordingBackend{produce: produceJar})
	_, err := builder.BuildClasspath(context.Background(), projectDir)
	if err == nil {
		t.Fatal("expected corrupted state error")
	}
	gxErr, ok := err.(*e.GradlexError)
	if !ok || gxErr.Code != e.ErrBuildSrcCacheCorrupted {
		t.Fatalf("unexpected error: %v", err)
	}
	if gxErr.Context["state_dir"] == "" {
		t.Fatal("state dir context missing for recovery")
	}
	if !gxErr.Recoverable {
		t.Fatal("corrupted cache should be recoverable")
	}
}

func TestBuildClasspath_BuildFailure(t *testing.T) {
	projectDir := newProject(t)
	builder := NewBuilder(&recordingBackend{fail: true})

	_, err := builder.BuildClasspath(context.Background(), projectDir)
	if err == nil {
		t.Fatal("expected build failure")
	}
	gxErr, ok := err.(*e.GradlexError)
	if !ok {
		t.Fatalf("unexpected error type: %T", err)
	}
	if !strings.Contains(gxErr.Message, "buildSrc") {
		t.Fatalf("message = %q", gxErr.Message)
	}
}

func TestInvalidateState(t *testing.T) {
	projectDir := newProject(t)
	buildSrcDir := filepath.Join(projectDir, Dir)
	backend := &recordingBackend{produce: produceJar}
	builder := NewBuilder(backend)

	if _, err := builder.BuildClasspath(context.Background(), projectDir); err != nil {
		t.Fatal(err)
	}
	if err := InvalidateState(buildSrcDir); err != nil {
		t.Fatal(err)
	}
	if _, err := builder.BuildClasspath(context.Background(), projectDir); err != nil {
		t.Fatal(err)
	}
	if len(backend.invocations) != 2 {
		t.Fatal("invalidated state should force a rebuild")
	}

	if err := InvalidateState(filepath.Join(t.TempDir(), Dir)); err != nil {
		t.Fatalf("invalidating absent state should not fail: %v", err)
	}
}
