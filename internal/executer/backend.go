package executer

import "io"

// Invocation is the immutable snapshot of one configured execution, handed
// to a Backend. The Executer owns accumulation and rendering; the backend
// owns process or daemon mechanics.
type Invocation struct {
	// Executable overrides the Gradle binary; empty means backend default.
	Executable string
	// Args is the fully rendered argument list, in render order.
	Args []string
	// WorkingDir is the directory the build runs in.
	WorkingDir string
	// Env holds extra environment variables layered over the process env.
	Env map[string]string
	// Stdin is never nil; unset stdin arrives as an empty stream.
	Stdin io.Reader
	// JavaHome selects the JVM; empty means the backend picks the ambient one.
	JavaHome string
	// GradleOpts are JVM options forwarded via GRADLE_OPTS.
	GradleOpts []string
	// CharacterEncoding sets the forked JVM's file.encoding when non-empty.
	CharacterEncoding string
}

// Backend supplies the invocation mechanics behind an Executer. The two
// synchronous operations are mandatory capabilities of every backend.
type Backend interface {
	// DoRun executes the build and returns its result; a build that fails
	// is reported as an error.
	DoRun(inv *Invocation) (*ExecutionResult, error)
	// DoRunWithFailure executes a build that is expected to fail and
	// returns the captured failure; an unexpectedly passing build is
	// reported as an error.
	DoRunWithFailure(inv *Invocation) (*ExecutionFailure, error)
}

// Starter is the optional asynchronous capability of a Backend. Backends
// without it reject Executer.Start.
type Starter interface {
	DoStart(inv *Invocation) (*Handle, error)
}
