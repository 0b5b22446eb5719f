package commands

import (
	"fmt"

	e "gradlex/pkg/errors"
)

// Tasks prints the task report of the selected project.
func Tasks(args []string) error {
	flags, rest, err := parseInvocationFlags(args)
	if err != nil {
		return e.Wrap(err, e.ErrInvalidConfig, "Invalid tasks arguments")
	}
	rawArgs, _ := splitTasks(rest)

	ex := flags.apply(newExecuter(loadConfig())).WithTaskList()
	if len(rawArgs) > 0 {
		ex.WithArguments(rawArgs...)
	}
	result, err := ex.Run()
	if err != nil {
		return err
	}
	fmt.Print(result.Output)
	return nil
}

// Dependencies prints the dependency report of the selected project.
func Dependencies(args []string) error {
	flags, rest, err := parseInvocationFlags(args)
	if err != nil {
		return e.Wrap(err, e.ErrInvalidConfig, "Invalid dependencies arguments")
	}
	rawArgs, _ := splitTasks(rest)

	ex := flags.apply(newExecuter(loadConfig())).WithDependencyList()
	if len(rawArgs) > 0 {
		ex.WithArguments(rawArgs...)
	}
	result, err := ex.Run()
	if err != nil {
		return err
	}
	fmt.Print(result.Output)
	return nil
}
