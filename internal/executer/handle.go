package executer

import (
	"bytes"
	"errors"
	"os"
	osexec "os/exec"

	"github.com/google/uuid"

	e "gradlex/pkg/errors"
)

// Handle represents a build that was started asynchronously. Output is
// available once the build completes; Wait and WaitForFailure block until
// then. A Handle is safe to wait on from a single goroutine only.
type Handle struct {
	// ID uniquely identifies this started build.
	ID string

	cmd     *osexec.Cmd
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	done    chan struct{}
	waitErr error
}

func newHandle(cmd *osexec.Cmd, stdout, stderr *bytes.Buffer) *Handle {
	h := &Handle{
		ID:     uuid.NewString(),
		cmd:    cmd,
		stdout: stdout,
		stderr: stderr,
		done:   make(chan struct{}),
	}
	go func() {
		h.waitErr = cmd.Wait()
		close(h.done)
	}()
	return h
}

// Wait blocks until the build completes and returns its result, expecting
// a zero exit.
func (h *Handle) Wait() (*ExecutionResult, error) {
	<-h.done
	result := newResult(h.stdout.String(), h.stderr.String())
	if h.waitErr != nil {
		var exitErr *osexec.ExitError
		if errors.As(h.waitErr, &exitErr) {
			return nil, e.New(e.ErrExecFailed, "Started build failed").
				WithDetails(result.ErrorOutput).
				WithCause(h.waitErr)
		}
		return nil, e.Wrap(h.waitErr, e.ErrUnknown, "Started build did not complete")
	}
	return result, nil
}

// WaitForFailure blocks until the build completes and returns the captured
// failure, expecting a non-zero exit.
func (h *Handle) WaitForFailure() (*ExecutionFailure, error) {
	<-h.done
	result := newResult(h.stdout.String(), h.stderr.String())
	if h.waitErr == nil {
		return nil, e.New(e.ErrUnexpectedSuccess, "Started build was expected to fail but succeeded").
			WithDetails(result.Output)
	}
	var exitErr *osexec.ExitError
	if errors.As(h.waitErr, &exitErr) {
		return &ExecutionFailure{ExecutionResult: *result, ExitCode: exitErr.ExitCode()}, nil
	}
	return nil, e.Wrap(h.waitErr, e.ErrUnknown, "Started build did not complete")
}

// Abort kills the underlying process. Wait still returns afterwards with
// the termination error. A process that finished on its own before the
// kill lands is not an error.
func (h *Handle) Abort() error {
	if h.cmd.Process == nil {
		return nil
	}
	select {
	case <-h.done:
		return nil
	default:
	}
	if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
