// Package executer turns an accumulated execution configuration into an
// actual run of a Gradle build. An Executer collects parameters through
// chained setters, renders them into the flat argument list Gradle expects,
// and delegates the invocation to a Backend. After every invocation attempt
// the configuration is reset so the same instance can be reused.
//
// An Executer is not safe for concurrent use; callers must serialize
// configuration and invocation on one logical flow per instance.
package executer

import (
	"fmt"
	"io"
	"os"
	"strings"

	e "gradlex/pkg/errors"
	"gradlex/pkg/text"
)

// DefaultDaemonIdleTimeoutSecs is the daemon idle timeout applied when no
// explicit timeout is configured.
const DefaultDaemonIdleTimeoutSecs = 2 * 60

const (
	daemonIdleTimeoutProperty = "-Dorg.gradle.daemon.idletimeout="
	daemonRegistryProperty    = "-Dorg.gradle.daemon.registry.base="
)

// Executer accumulates execution parameters for one Gradle invocation.
// The zero value is not usable; construct instances with NewExecuter.
type Executer struct {
	backend Backend

	// defaultDaemonRegistry is supplied at construction and survives Reset.
	// It is the explicit replacement for the ambient system-property lookup
	// the registry dir would otherwise require at render time.
	defaultDaemonRegistry string

	workingDir               string
	projectDir               string
	buildScript              string
	settingsFile             string
	initScripts              []string
	args                     []string
	tasks                    []string
	envVars                  map[string]string
	executable               string
	userHomeDir              string
	javaHome                 string
	stdin                    io.Reader
	defaultCharacterEncoding string
	daemonIdleTimeoutSecs    int
	daemonBaseDir            string
	quiet                    bool
	taskList                 bool
	dependencyList           bool
	searchUpwards            bool
	gradleOpts               []string
}

// Option configures construction-time defaults of an Executer.
type Option func(*Executer)

// WithDefaultDaemonRegistry supplies the daemon registry directory used
// when no explicit daemon base dir is configured for an invocation.
func WithDefaultDaemonRegistry(dir string) Option {
	return func(ex *Executer) { ex.defaultDaemonRegistry = dir }
}

// NewExecuter creates an Executer that delegates invocations to backend.
func NewExecuter(backend Backend, opts ...Option) *Executer {
	ex := &Executer{backend: backend}
	ex.Reset()
	for _, opt := range opts {
		opt(ex)
	}
	return ex
}

// Reset restores every configuration field to its default. It runs after
// every invocation attempt regardless of outcome, so no configuration
// leaks into the next run unless explicitly copied forward.
func (ex *Executer) Reset() *Executer {
	ex.args = nil
	ex.tasks = nil
	ex.initScripts = nil
	ex.workingDir = ""
	ex.projectDir = ""
	ex.buildScript = ""
	ex.settingsFile = ""
	ex.quiet = false
	ex.taskList = false
	ex.dependencyList = false
	ex.searchUpwards = false
	ex.executable = ""
	ex.userHomeDir = ""
	ex.javaHome = ""
	ex.envVars = make(map[string]string)
	ex.stdin = nil
	ex.defaultCharacterEncoding = ""
	ex.daemonIdleTimeoutSecs = DefaultDaemonIdleTimeoutSecs
	ex.daemonBaseDir = ""
	ex.gradleOpts = nil
	return ex
}

// InDirectory sets the working directory of the invocation.
func (ex *Executer) InDirectory(dir string) *Executer {
	ex.workingDir = dir
	return ex
}

// WorkingDir returns the configured working directory.
func (ex *Executer) WorkingDir() string {
	return ex.workingDir
}

// UsingBuildScript selects an explicit build script file.
func (ex *Executer) UsingBuildScript(buildScript string) *Executer {
	ex.buildScript = buildScript
	return ex
}

// BuildScript returns the configured build script file.
func (ex *Executer) BuildScript() string {
	return ex.buildScript
}

// UsingProjectDirectory selects the project directory.
func (ex *Executer) UsingProjectDirectory(projectDir string) *Executer {
	ex.projectDir = projectDir
	return ex
}

// UsingSettingsFile selects an explicit settings file.
func (ex *Executer) UsingSettingsFile(settingsFile string) *Executer {
	ex.settingsFile = settingsFile
	return ex
}

// SettingsFile returns the configured settings file.
func (ex *Executer) SettingsFile() string {
	return ex.settingsFile
}

// UsingInitScript registers an init script. Init scripts accumulate and
// are applied in registration order.
func (ex *Executer) UsingInitScript(initScript string) *Executer {
	ex.initScripts = append(ex.initScripts, initScript)
	return ex
}

// UserHomeDir returns the configured Gradle user home directory.
func (ex *Executer) UserHomeDir() string {
	return ex.userHomeDir
}

// WithUserHomeDir sets the Gradle user home directory.
func (ex *Executer) WithUserHomeDir(userHomeDir string) *Executer {
	ex.userHomeDir = userHomeDir
	return ex
}

// JavaHome returns the configured JVM home, or empty when the backend
// should fall back to the ambient JVM.
func (ex *Executer) JavaHome() string {
	return ex.javaHome
}

// WithJavaHome sets the JVM home used for the forked build.
func (ex *Executer) WithJavaHome(javaHome string) *Executer {
	ex.javaHome = javaHome
	return ex
}

// UsingExecutable overrides the Gradle executable to invoke.
func (ex *Executer) UsingExecutable(executable string) *Executer {
	ex.executable = executable
	return ex
}

// Executable returns the configured executable override.
func (ex *Executer) Executable() string {
	return ex.executable
}

// WithStdinText supplies stdin content as text. Line endings are converted
// to the platform separator before the build consumes them.
func (ex *Executer) WithStdinText(stdin string) *Executer {
	ex.stdin = strings.NewReader(text.ToPlatformLineSeparators(stdin))
	return ex
}

// WithStdin supplies the stdin stream for the build.
func (ex *Executer) WithStdin(stdin io.Reader) *Executer {
	ex.stdin = stdin
	return ex
}

// Stdin returns the configured stdin stream, or an empty stream when unset.
func (ex *Executer) Stdin() io.Reader {
	if ex.stdin == nil {
		return strings.NewReader("")
	}
	return ex.stdin
}

// WithDefaultCharacterEncoding sets the file encoding the forked JVM runs with.
func (ex *Executer) WithDefaultCharacterEncoding(encoding string) *Executer {
	ex.defaultCharacterEncoding = encoding
	return ex
}

// DefaultCharacterEncoding returns the configured encoding. When unset it
// reports UTF-8, Go's effective platform encoding, rather than consulting
// any JVM-style locale default.
func (ex *Executer) DefaultCharacterEncoding() string {
	if ex.defaultCharacterEncoding == "" {
		return "UTF-8"
	}
	return ex.defaultCharacterEncoding
}

// WithSearchUpwards enables searching parent directories for a settings
// file. This is a one-way latch; only Reset turns it off again.
func (ex *Executer) WithSearchUpwards() *Executer {
	ex.searchUpwards = true
	return ex
}

// Quiet reports whether quiet logging is enabled.
func (ex *Executer) Quiet() bool {
	return ex.quiet
}

// WithQuietLogging enables Gradle's quiet log level.
func (ex *Executer) WithQuietLogging() *Executer {
	ex.quiet = true
	return ex
}

// WithTaskList makes the invocation render the project's task report.
func (ex *Executer) WithTaskList() *Executer {
	ex.taskList = true
	return ex
}

// WithDependencyList makes the invocation render the dependency report.
func (ex *Executer) WithDependencyList() *Executer {
	ex.dependencyList = true
	return ex
}

// WithArguments replaces the raw passthrough arguments.
func (ex *Executer) WithArguments(args ...string) *Executer {
	ex.args = append([]string(nil), args...)
	return ex
}

// WithEnvironmentVars replaces the environment variables applied to the build.
func (ex *Executer) WithEnvironmentVars(env map[string]string) *Executer {
	ex.envVars = make(map[string]string, len(env))
	for k, v := range env {
		ex.envVars[k] = v
	}
	return ex
}

// EnvironmentVars returns the configured environment variables.
func (ex *Executer) EnvironmentVars() map[string]string {
	return ex.envVars
}

// WithTasks replaces the task names to execute.
func (ex *Executer) WithTasks(names ...string) *Executer {
	ex.tasks = append([]string(nil), names...)
	return ex
}

// WithDaemonIdleTimeoutSecs sets the daemon idle timeout in seconds.
func (ex *Executer) WithDaemonIdleTimeoutSecs(secs int) *Executer {
	ex.daemonIdleTimeoutSecs = secs
	return ex
}

// DaemonIdleTimeoutSecs returns the configured daemon idle timeout.
func (ex *Executer) DaemonIdleTimeoutSecs() int {
	return ex.daemonIdleTimeoutSecs
}

// WithDaemonBaseDir sets the daemon registry base directory. The directory
// must exist; a missing or non-directory path is a programming error and
// panics rather than returning an error.
func (ex *Executer) WithDaemonBaseDir(dir string) *Executer {
	if dir == "" {
		panic("daemon base dir must not be empty")
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		panic(fmt.Sprintf("daemon base dir %q is not an existing directory", dir))
	}
	ex.daemonBaseDir = dir
	return ex
}

// DaemonBaseDir returns the explicitly configured daemon base directory.
func (ex *Executer) DaemonBaseDir() string {
	return ex.daemonBaseDir
}

// WithGradleOpts appends JVM options passed via GRADLE_OPTS.
func (ex *Executer) WithGradleOpts(opts ...string) *Executer {
	ex.gradleOpts = append(ex.gradleOpts, opts...)
	return ex
}

// CopyTo applies every non-default field of this executer to other. Tasks,
// arguments and environment variables are always propagated, even when
// empty, as is the daemon idle timeout.
func (ex *Executer) CopyTo(other *Executer) {
	if ex.workingDir != "" {
		other.InDirectory(ex.workingDir)
	}
	if ex.projectDir != "" {
		other.UsingProjectDirectory(ex.projectDir)
	}
	if ex.buildScript != "" {
		other.UsingBuildScript(ex.buildScript)
	}
	if ex.settingsFile != "" {
		other.UsingSettingsFile(ex.settingsFile)
	}
	if ex.javaHome != "" {
		other.WithJavaHome(ex.javaHome)
	}
	for _, initScript := range ex.initScripts {
		other.UsingInitScript(initScript)
	}
	other.WithTasks(ex.tasks...)
	other.WithArguments(ex.args...)
	other.WithEnvironmentVars(ex.envVars)
	if ex.executable != "" {
		other.UsingExecutable(ex.executable)
	}
	if ex.quiet {
		other.WithQuietLogging()
	}
	if ex.taskList {
		other.WithTaskList()
	}
	if ex.dependencyList {
		other.WithDependencyList()
	}
	if ex.searchUpwards {
		other.WithSearchUpwards()
	}
	if ex.userHomeDir != "" {
		other.WithUserHomeDir(ex.userHomeDir)
	}
	if ex.stdin != nil {
		other.WithStdin(ex.stdin)
	}
	if ex.defaultCharacterEncoding != "" {
		other.WithDefaultCharacterEncoding(ex.defaultCharacterEncoding)
	}
	other.WithGradleOpts(ex.gradleOpts...)
	other.WithDaemonIdleTimeoutSecs(ex.daemonIdleTimeoutSecs)
	if ex.daemonBaseDir != "" {
		other.WithDaemonBaseDir(ex.daemonBaseDir)
	}
}

// AllArgs renders the ordered, flattened command-line argument sequence for
// the current configuration. It is a pure function of current state:
// calling it repeatedly without intervening mutation yields identical
// sequences.
func (ex *Executer) AllArgs() []string {
	var allArgs []string
	if ex.buildScript != "" {
		allArgs = append(allArgs, "--build-file", ex.buildScript)
	}
	if ex.projectDir != "" {
		allArgs = append(allArgs, "--project-dir", ex.projectDir)
	}
	for _, initScript := range ex.initScripts {
		allArgs = append(allArgs, "--init-script", initScript)
	}
	if ex.settingsFile != "" {
		allArgs = append(allArgs, "--settings-file", ex.settingsFile)
	}
	if ex.quiet {
		allArgs = append(allArgs, "--quiet")
	}
	if ex.taskList {
		allArgs = append(allArgs, "tasks")
	}
	if ex.dependencyList {
		allArgs = append(allArgs, "dependencies")
	}
	if !ex.searchUpwards {
		allArgs = append(allArgs, "--no-search-upward")
	}
	if ex.userHomeDir != "" {
		allArgs = append(allArgs, "--gradle-user-home", ex.userHomeDir)
	}
	allArgs = append(allArgs, fmt.Sprintf("%s%d", daemonIdleTimeoutProperty, ex.daemonIdleTimeoutSecs*1000))

	// The registry property rides along with the raw arguments. It is
	// appended to a copy so rendering stays free of side effects.
	rawArgs := append([]string(nil), ex.args...)
	if registry := ex.daemonRegistryDir(); registry != "" {
		rawArgs = append(rawArgs, daemonRegistryProperty+registry)
	}
	allArgs = append(allArgs, rawArgs...)
	allArgs = append(allArgs, ex.tasks...)
	return allArgs
}

// daemonRegistryDir resolves the registry directory for this invocation:
// the explicitly configured base dir, falling back to the construction-time
// default.
func (ex *Executer) daemonRegistryDir() string {
	if ex.daemonBaseDir != "" {
		return ex.daemonBaseDir
	}
	return ex.defaultDaemonRegistry
}

// invocation snapshots the current configuration for a backend call.
func (ex *Executer) invocation() *Invocation {
	env := make(map[string]string, len(ex.envVars))
	for k, v := range ex.envVars {
		env[k] = v
	}
	return &Invocation{
		Executable:        ex.executable,
		Args:              ex.AllArgs(),
		WorkingDir:        ex.workingDir,
		Env:               env,
		Stdin:             ex.Stdin(),
		JavaHome:          ex.javaHome,
		GradleOpts:        append([]string(nil), ex.gradleOpts...),
		CharacterEncoding: ex.defaultCharacterEncoding,
	}
}

// Run executes the build and expects it to succeed. The configuration is
// reset before control returns to the caller, whether the backend returns
// a result, an error, or panics.
func (ex *Executer) Run() (*ExecutionResult, error) {
	defer ex.Reset()
	return ex.backend.DoRun(ex.invocation())
}

// RunWithFailure executes the build and expects it to fail, returning the
// captured failure. The configuration is reset on every exit path.
func (ex *Executer) RunWithFailure() (*ExecutionFailure, error) {
	defer ex.Reset()
	return ex.backend.DoRunWithFailure(ex.invocation())
}

// Start launches the build without waiting for completion. Backends that
// cannot run asynchronously cause an ErrStartUnsupported error naming the
// backend type. The configuration is reset on every exit path.
func (ex *Executer) Start() (*Handle, error) {
	defer ex.Reset()
	starter, ok := ex.backend.(Starter)
	if !ok {
		return nil, e.New(e.ErrStartUnsupported,
			fmt.Sprintf("%T does not support starting builds asynchronously", ex.backend))
	}
	return starter.DoStart(ex.invocation())
}
