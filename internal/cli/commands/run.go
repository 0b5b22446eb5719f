package commands

import (
	"fmt"

	e "gradlex/pkg/errors"
)

// Run executes the given Gradle tasks in the selected project.
func Run(args []string) error {
	flags, rest, err := parseInvocationFlags(args)
	if err != nil {
		return e.Wrap(err, e.ErrInvalidConfig, "Invalid run arguments")
	}
	rawArgs, tasks := splitTasks(rest)
	if len(tasks) == 0 {
		fmt.Println("Usage: gradlex run [flags] <task> [task...]")
		return e.New(e.ErrInvalidConfig, "No tasks specified").
			WithSuggestion("Run 'gradlex tasks' to list available tasks")
	}

	ex := flags.apply(newExecuter(loadConfig()))
	if len(rawArgs) > 0 {
		ex.WithArguments(rawArgs...)
	}
	result, err := ex.WithTasks(tasks...).Run()
	if err != nil {
		return err
	}
	fmt.Print(result.Output)
	return nil
}
