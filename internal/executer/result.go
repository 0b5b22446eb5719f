package executer

import (
	"strings"

	"gradlex/pkg/text"
)

// ExecutionResult captures the observable output of a completed build.
// Output streams are line-ending normalized.
type ExecutionResult struct {
	Output      string
	ErrorOutput string
}

// ExecutionFailure is the result of a build that failed as expected.
type ExecutionFailure struct {
	ExecutionResult
	ExitCode int
}

func newResult(stdout, stderr string) *ExecutionResult {
	return &ExecutionResult{
		Output:      text.Normalize(stdout),
		ErrorOutput: text.Normalize(stderr),
	}
}

// Description returns the first non-empty line of the error output, which
// Gradle uses for its failure summary.
func (f *ExecutionFailure) Description() string {
	for _, line := range strings.Split(f.ErrorOutput, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
