package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gradlex/internal/executer"
	e "gradlex/pkg/errors"
)

// stubBackend records the invocations the commands produce.
type stubBackend struct {
	invocations []*executer.Invocation
	output      string
	err         error
}

func (b *stubBackend) DoRun(inv *executer.Invocation) (*executer.ExecutionResult, error) {
	b.invocations = append(b.invocations, inv)
	if b.err != nil {
		return nil, b.err
	}
	return &executer.ExecutionResult{Output: b.output}, nil
}

func (b *stubBackend) DoRunWithFailure(inv *executer.Invocation) (*executer.ExecutionFailure, error) {
	b.invocations = append(b.invocations, inv)
	return &executer.ExecutionFailure{ExitCode: 1}, nil
}

// useStubBackend swaps the backend factory for the test's lifetime.
func useStubBackend(t *testing.T, backend *stubBackend) {
	t.Helper()
	original := backendFactory
	backendFactory = func() executer.Backend { return backend }
	t.Cleanup(func() { backendFactory = original })
}

func captureStdout(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func TestRun_NoTasks(t *testing.T) {
	useStubBackend(t, &stubBackend{})
	_ = captureStdout(func() {
		err := Run(nil)
		if err == nil {
			t.Error("expected error for missing tasks")
		}
	})
}

func TestRun_BuildsInvocation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	backend := &stubBackend{output: "BUILD SUCCESSFUL\n"}
	useStubBackend(t, backend)

	output := captureStdout(func() {
		if err := Run([]string{"--project-dir", "/proj", "--quiet", "--stacktrace", "clean", "build"}); err != nil {
			t.Errorf("Run: %v", err)
		}
	})
	if !strings.Contains(output, "BUILD SUCCESSFUL") {
		t.Fatalf("output = %q", output)
	}
	if len(backend.invocations) != 1 {
		t.Fatalf("got %d invocations", len(backend.invocations))
	}

	inv := backend.invocations[0]
	if inv.WorkingDir != "/proj" {
		t.Fatalf("working dir = %q", inv.WorkingDir)
	}
	args := inv.Args
	if !reflect.DeepEqual(args[len(args)-2:], []string{"clean", "build"}) {
		t.Fatalf("tasks not last: %v", args)
	}
	var quiet, projectDir, stacktrace bool
	for i, arg := range args {
		switch arg {
		case "--quiet":
			quiet = true
		case "--project-dir":
			projectDir = i+1 < len(args) && args[i+1] == "/proj"
		case "--stacktrace":
			stacktrace = true
		}
	}
	if !quiet || !projectDir || !stacktrace {
		t.Fatalf("flags not rendered: %v", args)
	}
}

func TestRun_DaemonRegistryFromEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GRADLEX_DAEMON_REGISTRY", "/var/registry")
	backend := &stubBackend{}
	useStubBackend(t, backend)

	_ = captureStdout(func() {
		if err := Run([]string{"build"}); err != nil {
			t.Errorf("Run: %v", err)
		}
	})
	var found bool
	for _, arg := range backend.invocations[0].Args {
		if arg == "-Dorg.gradle.daemon.registry.base=/var/registry" {
			found = true
		}
	}
	if !found {
		t.Fatalf("registry property missing: %v", backend.invocations[0].Args)
	}
}

func TestTasks_RendersTaskReport(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	backend := &stubBackend{output: "Build tasks\n"}
	useStubBackend(t, backend)

	_ = captureStdout(func() {
		if err := Tasks([]string{"--project-dir", "/proj"}); err != nil {
			t.Errorf("Tasks: %v", err)
		}
	})
	var hasTasks bool
	for _, arg := range backend.invocations[0].Args {
		if arg == "tasks" {
			hasTasks = true
		}
	}
	if !hasTasks {
		t.Fatalf("tasks report not requested: %v", backend.invocations[0].Args)
	}
}

func TestDependencies_RendersDependencyReport(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	backend := &stubBackend{output: "compileClasspath\n"}
	useStubBackend(t, backend)

	_ = captureStdout(func() {
		if err := Dependencies(nil); err != nil {
			t.Errorf("Dependencies: %v", err)
		}
	})
	var hasDeps bool
	for _, arg := range backend.invocations[0].Args {
		if arg == "dependencies" {
			hasDeps = true
		}
	}
	if !hasDeps {
		t.Fatalf("dependency report not requested: %v", backend.invocations[0].Args)
	}
}

func TestModel_PrintsModel(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	backend := &stubBackend{output: "Root project 'demo'\n\nbuild - Assembles this project.\n"}
	useStubBackend(t, backend)

	output := captureStdout(func() {
		if err := Model([]string{"--project-dir", "/proj"}); err != nil {
			t.Errorf("Model: %v", err)
		}
	})
	if !strings.Contains(output, "Project: demo") {
		t.Fatalf("output = %q", output)
	}
	if !strings.Contains(output, "build - Assembles this project.") {
		t.Fatalf("output = %q", output)
	}
}

func TestBuildSrc_NoBuildSrcDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	useStubBackend(t, &stubBackend{})

	output := captureStdout(func() {
		if err := BuildSrc([]string{"--project-dir", t.TempDir()}); err != nil {
			t.Errorf("BuildSrc: %v", err)
		}
	})
	if !strings.Contains(output, "No buildSrc directory found") {
		t.Fatalf("output = %q", output)
	}
}

func TestRepos_PrintsResolvers(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "repositories.yaml")
	content := "repositories:\n  - name: central\n    root_url: https://repo.maven.apache.org/maven2/\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	output := captureStdout(func() {
		if err := Repos([]string{path}); err != nil {
			t.Errorf("Repos: %v", err)
		}
	})
	if !strings.Contains(output, "central (maven2)") {
		t.Fatalf("output = %q", output)
	}
}

func TestRepos_NoDefinitionsFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_ = captureStdout(func() {
		err := Repos(nil)
		if err == nil {
			t.Error("expected error without a definitions file")
		}
		gxErr, ok := err.(*e.GradlexError)
		if !ok || gxErr.Code != e.ErrInvalidConfig {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestParseInvocationFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		want     invocationFlags
		wantRest []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-p", "/proj", "-b", "/proj/b.gradle", "-c", "/proj/s.gradle", "-I", "/i1.gradle", "-I", "/i2.gradle", "-q", "--search-upwards", "build"},
			want: invocationFlags{
				projectDir:    "/proj",
				buildFile:     "/proj/b.gradle",
				settingsFile:  "/proj/s.gradle",
				initScripts:   []string{"/i1.gradle", "/i2.gradle"},
				quiet:         true,
				searchUpwards: true,
			},
			wantRest: []string{"build"},
		},
		{
			name:     "passthrough only",
			args:     []string{"--stacktrace", "clean"},
			wantRest: []string{"--stacktrace", "clean"},
		},
		{
			name:    "missing value",
			args:    []string{"--project-dir"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags, rest, err := parseInvocationFlags(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseInvocationFlags: %v", err)
			}
			if !reflect.DeepEqual(flags, tt.want) {
				t.Fatalf("flags = %+v, want %+v", flags, tt.want)
			}
			if !reflect.DeepEqual(rest, tt.wantRest) {
				t.Fatalf("rest = %v, want %v", rest, tt.wantRest)
			}
		})
	}
}

func TestSplitTasks(t *testing.T) {
	rawArgs, tasks := splitTasks([]string{"--stacktrace", "clean", "-PsomeProp=1", "build"})
	if !reflect.DeepEqual(rawArgs, []string{"--stacktrace", "-PsomeProp=1"}) {
		t.Fatalf("rawArgs = %v", rawArgs)
	}
	if !reflect.DeepEqual(tasks, []string{"clean", "build"}) {
		t.Fatalf("tasks = %v", tasks)
	}
}
