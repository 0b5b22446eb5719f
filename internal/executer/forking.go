package executer

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	osexec "os/exec"
	"strings"

	"gradlex/internal/jvm"
	e "gradlex/pkg/errors"
	gxexec "gradlex/pkg/exec"
	"gradlex/pkg/logger"
)

// ForkingBackend runs builds by spawning the Gradle executable as a child
// process. It supports asynchronous starts.
type ForkingBackend struct {
	// Commander creates the child process; swap it in tests.
	Commander gxexec.Commander
}

// NewForkingBackend creates a backend using the default process launcher.
func NewForkingBackend() *ForkingBackend {
	return &ForkingBackend{Commander: gxexec.Default}
}

func (b *ForkingBackend) commander() gxexec.Commander {
	if b.Commander == nil {
		return gxexec.Default
	}
	return b.Commander
}

// prepare builds the child process for an invocation: executable
// resolution, working directory, environment and stdin.
func (b *ForkingBackend) prepare(inv *Invocation) *osexec.Cmd {
	name := inv.Executable
	if name == "" {
		name = gxexec.FindGradle(inv.WorkingDir)
	}
	logger.Verbosef("Executing: %s", gxexec.JoinArgs(append([]string{name}, inv.Args...)))

	cmd := b.commander().Command(name, inv.Args...)
	cmd.Dir = inv.WorkingDir
	cmd.Stdin = inv.Stdin

	env := os.Environ()
	javaHome := inv.JavaHome
	if javaHome == "" {
		if home, err := jvm.CurrentHome(); err == nil {
			javaHome = home
		}
	}
	if javaHome != "" {
		env = append(env, "JAVA_HOME="+javaHome)
	}
	opts := append([]string(nil), inv.GradleOpts...)
	if inv.CharacterEncoding != "" {
		opts = append(opts, "-Dfile.encoding="+inv.CharacterEncoding)
	}
	if len(opts) > 0 {
		env = append(env, "GRADLE_OPTS="+strings.Join(opts, " "))
	}
	// Explicit invocation vars layer last so they win
	for k, v := range inv.Env {
		env = append(env, k+"="+v)
	}
	cmd.Env = env
	return cmd
}

// DoRun executes the build and expects a zero exit.
func (b *ForkingBackend) DoRun(inv *Invocation) (*ExecutionResult, error) {
	cmd := b.prepare(inv)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := newResult(stdout.String(), stderr.String())
	if err != nil {
		return nil, classifyRunError(err, inv, result)
	}
	return result, nil
}

// DoRunWithFailure executes the build and expects a non-zero exit.
func (b *ForkingBackend) DoRunWithFailure(inv *Invocation) (*ExecutionFailure, error) {
	cmd := b.prepare(inv)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := newResult(stdout.String(), stderr.String())
	if err == nil {
		return nil, e.New(e.ErrUnexpectedSuccess, "Build was expected to fail but succeeded").
			WithDetails(result.Output)
	}
	var exitErr *osexec.ExitError
	if errors.As(err, &exitErr) {
		return &ExecutionFailure{ExecutionResult: *result, ExitCode: exitErr.ExitCode()}, nil
	}
	return nil, classifyRunError(err, inv, result)
}

// DoStart launches the build without waiting and returns a handle to it.
func (b *ForkingBackend) DoStart(inv *Invocation) (*Handle, error) {
	cmd := b.prepare(inv)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, classifyRunError(err, inv, newResult("", ""))
	}
	return newHandle(cmd, &stdout, &stderr), nil
}

// classifyRunError maps process launch and exit errors onto gradlex error
// codes with the captured output attached.
func classifyRunError(err error, inv *Invocation, result *ExecutionResult) error {
	executable := inv.Executable
	if executable == "" {
		executable = "gradle"
	}

	var exitErr *osexec.ExitError
	switch {
	case errors.Is(err, osexec.ErrNotFound) || strings.Contains(err.Error(), "executable file not found"):
		return e.New(e.ErrGradleNotFound, "Gradle executable not found").
			WithContext("executable", executable).
			WithCause(err)
	case errors.As(err, &exitErr):
		if strings.Contains(result.ErrorOutput, "Could not connect to the Gradle daemon") {
			return e.New(e.ErrDaemonUnreachable, "Could not connect to the Gradle daemon").
				WithContext("executable", executable).
				WithDetails(result.ErrorOutput)
		}
		return e.New(e.ErrExecFailed, fmt.Sprintf("Build failed with exit code %d", exitErr.ExitCode())).
			WithContext("executable", executable).
			WithDetails(result.ErrorOutput).
			WithCause(err)
	default:
		return e.Wrap(err, e.ErrUnknown, "Failed to run build").WithContext("executable", executable)
	}
}
