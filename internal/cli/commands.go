package cli

import (
	"gradlex/internal/cli/commands"
)

type runCmd struct{}

func (runCmd) Name() string        { return "run" }
func (runCmd) Description() string { return "Run Gradle tasks" }
func (runCmd) Run(args []string) error {
	return commands.Run(args)
}

type tasksCmd struct{}

func (tasksCmd) Name() string        { return "tasks" }
func (tasksCmd) Description() string { return "Show the project task report" }
func (tasksCmd) Run(args []string) error {
	return commands.Tasks(args)
}

type dependenciesCmd struct{}

func (dependenciesCmd) Name() string        { return "dependencies" }
func (dependenciesCmd) Description() string { return "Show the project dependency report" }
func (dependenciesCmd) Run(args []string) error {
	return commands.Dependencies(args)
}

type modelCmd struct{}

func (modelCmd) Name() string        { return "model" }
func (modelCmd) Description() string { return "Fetch and print the build model" }
func (modelCmd) Run(args []string) error {
	return commands.Model(args)
}

type buildSrcCmd struct{}

func (buildSrcCmd) Name() string        { return "buildsrc" }
func (buildSrcCmd) Description() string { return "Build buildSrc and print its classpath" }
func (buildSrcCmd) Run(args []string) error {
	return commands.BuildSrc(args)
}

type reposCmd struct{}

func (reposCmd) Name() string        { return "repos" }
func (reposCmd) Description() string { return "Validate repository definitions" }
func (reposCmd) Run(args []string) error {
	return commands.Repos(args)
}

// Command factory functions
func NewRunCommand() Command          { return runCmd{} }
func NewTasksCommand() Command        { return tasksCmd{} }
func NewDependenciesCommand() Command { return dependenciesCmd{} }
func NewModelCommand() Command        { return modelCmd{} }
func NewBuildSrcCommand() Command     { return buildSrcCmd{} }
func NewReposCommand() Command        { return reposCmd{} }
