// Package commands implements the gradlex subcommands. Each command
// resolves user configuration, assembles an executer over a forking
// backend, and drives one Gradle invocation.
package commands

import (
	"fmt"
	"os"
	"strings"

	"gradlex/internal/config"
	"gradlex/internal/executer"
)

// backendFactory creates the backend behind every command; swap in tests.
var backendFactory = func() executer.Backend { return executer.NewForkingBackend() }

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil || cfg == nil {
		return &config.Config{}
	}
	return cfg
}

// daemonRegistryDir resolves the default daemon registry directory.
// The environment variable takes priority over the configuration file.
func daemonRegistryDir(cfg *config.Config) string {
	if env := os.Getenv("GRADLEX_DAEMON_REGISTRY"); env != "" {
		return env
	}
	return cfg.DaemonRegistryDir
}

// executerOptions derives the construction-time options from configuration.
func executerOptions(cfg *config.Config) []executer.Option {
	var opts []executer.Option
	if registry := daemonRegistryDir(cfg); registry != "" {
		opts = append(opts, executer.WithDefaultDaemonRegistry(registry))
	}
	return opts
}

// newExecuter assembles a configured executer over the default backend.
func newExecuter(cfg *config.Config) *executer.Executer {
	ex := executer.NewExecuter(backendFactory(), executerOptions(cfg)...)
	if cfg.GradleExecutable != "" {
		ex.UsingExecutable(cfg.GradleExecutable)
	}
	if cfg.JavaHome != "" {
		ex.WithJavaHome(cfg.JavaHome)
	}
	if cfg.DaemonIdleTimeoutSecs > 0 {
		ex.WithDaemonIdleTimeoutSecs(cfg.DaemonIdleTimeoutSecs)
	}
	return ex
}

// invocationFlags are the project-selection flags shared by the build
// commands.
type invocationFlags struct {
	projectDir    string
	buildFile     string
	settingsFile  string
	initScripts   []string
	quiet         bool
	searchUpwards bool
}

// parseInvocationFlags splits the shared flags off the argument list and
// returns the remainder untouched.
func parseInvocationFlags(args []string) (invocationFlags, []string, error) {
	var flags invocationFlags
	var rest []string

	value := func(i int, name string) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("%s requires a value", name)
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		var err error
		switch arg {
		case "--project-dir", "-p":
			flags.projectDir, err = value(i, arg)
			i++
		case "--build-file", "-b":
			flags.buildFile, err = value(i, arg)
			i++
		case "--settings-file", "-c":
			flags.settingsFile, err = value(i, arg)
			i++
		case "--init-script", "-I":
			var script string
			script, err = value(i, arg)
			flags.initScripts = append(flags.initScripts, script)
			i++
		case "--quiet", "-q":
			flags.quiet = true
		case "--search-upwards":
			flags.searchUpwards = true
		default:
			rest = append(rest, arg)
		}
		if err != nil {
			return flags, nil, err
		}
	}
	return flags, rest, nil
}

// apply transfers the parsed flags onto an executer.
func (f invocationFlags) apply(ex *executer.Executer) *executer.Executer {
	if f.projectDir != "" {
		ex.UsingProjectDirectory(f.projectDir).InDirectory(f.projectDir)
	}
	if f.buildFile != "" {
		ex.UsingBuildScript(f.buildFile)
	}
	if f.settingsFile != "" {
		ex.UsingSettingsFile(f.settingsFile)
	}
	for _, script := range f.initScripts {
		ex.UsingInitScript(script)
	}
	if f.quiet {
		ex.WithQuietLogging()
	}
	if f.searchUpwards {
		ex.WithSearchUpwards()
	}
	return ex
}

// splitTasks separates raw Gradle options from task names: anything
// starting with a dash passes through verbatim, the rest are tasks.
func splitTasks(rest []string) (rawArgs, tasks []string) {
	for _, arg := range rest {
		if strings.HasPrefix(arg, "-") {
			rawArgs = append(rawArgs, arg)
		} else {
			tasks = append(tasks, arg)
		}
	}
	return rawArgs, tasks
}
