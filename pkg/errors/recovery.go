package errors

import (
	"fmt"
	"os"
	"os/exec"
	"time"
)

// RecoveryStrategy defines how to recover from an error
type RecoveryStrategy interface {
	CanRecover(err *GradlexError) bool
	Attempt(err *GradlexError) error
	Description() string
}

// Recoverer attempts to recover from errors
type Recoverer struct {
	strategies []RecoveryStrategy
	verbose    bool
}

// NewRecoverer creates a new error recoverer
func NewRecoverer(verbose bool) *Recoverer {
	return &Recoverer{
		strategies: []RecoveryStrategy{
			&DaemonStopStrategy{},
			&BuildSrcCacheClearStrategy{},
		},
		verbose: verbose,
	}
}

// Recover attempts to recover from an error
func (r *Recoverer) Recover(err *GradlexError) error {
	if !err.Recoverable {
		return err
	}
	for _, strategy := range r.strategies {
		if strategy.CanRecover(err) {
			if r.verbose {
				fmt.Printf("Attempting recovery: %s\n", strategy.Description())
			}
			if recErr := strategy.Attempt(err); recErr == nil {
				fmt.Println("Recovery successful, retry the command")
				return nil
			} else if r.verbose {
				fmt.Printf("Recovery failed: %v\n", recErr)
			}
		}
	}
	return err
}

// DaemonStopStrategy stops stale Gradle daemons so the next invocation
// starts a fresh one
type DaemonStopStrategy struct{}

func (s *DaemonStopStrategy) CanRecover(err *GradlexError) bool {
	return err.Code == ErrDaemonUnreachable
}

func (s *DaemonStopStrategy) Attempt(err *GradlexError) error {
	gradle := err.Context["executable"]
	if gradle == "" {
		gradle = "gradle"
	}
	fmt.Printf("Stopping Gradle daemons via %s --stop...\n", gradle)
	cmd := exec.Command(gradle, "--stop")
	if runErr := cmd.Run(); runErr != nil {
		return fmt.Errorf("failed to stop daemons: %w", runErr)
	}
	// Give the registry a moment to settle before the retry
	time.Sleep(time.Second)
	return nil
}

func (s *DaemonStopStrategy) Description() string { return "Stopping stale Gradle daemons" }

// BuildSrcCacheClearStrategy removes a corrupted buildSrc state cache
type BuildSrcCacheClearStrategy struct{}

func (s *BuildSrcCacheClearStrategy) CanRecover(err *GradlexError) bool {
	return err.Code == ErrBuildSrcCacheCorrupted
}

func (s *BuildSrcCacheClearStrategy) Attempt(err *GradlexError) error {
	stateDir := err.Context["state_dir"]
	if stateDir == "" {
		return fmt.Errorf("no state_dir recorded on error")
	}
	fmt.Printf("Clearing buildSrc cache at %s...\n", stateDir)
	if rmErr := os.RemoveAll(stateDir); rmErr != nil {
		return fmt.Errorf("failed to clear cache: %w", rmErr)
	}
	return nil
}

func (s *BuildSrcCacheClearStrategy) Description() string { return "Clearing buildSrc state cache" }
