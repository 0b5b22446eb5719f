package commands

import (
	"context"
	"fmt"

	"gradlex/internal/model"
	e "gradlex/pkg/errors"
	"gradlex/pkg/logger"
)

// Model fetches and prints the build model of the selected project.
func Model(args []string) error {
	flags, _, err := parseInvocationFlags(args)
	if err != nil {
		return e.Wrap(err, e.ErrInvalidConfig, "Invalid model arguments")
	}
	projectDir := flags.projectDir
	if projectDir == "" {
		projectDir = "."
	}

	cfg := loadConfig()
	builder := model.NewModelBuilder(projectDir, backendFactory(), executerOptions(cfg)...)
	if cfg.JavaHome != "" {
		builder.SetJavaHome(cfg.JavaHome)
	}
	builder.AddProgressListener(model.ProgressFunc(func(event model.ProgressEvent) {
		logger.Verbose(event.Description)
	}))

	buildModel, err := builder.Get(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Project: %s\n", buildModel.ProjectName)
	if buildModel.Description != "" {
		fmt.Printf("Description: %s\n", buildModel.Description)
	}
	fmt.Printf("Tasks (%d):\n", len(buildModel.Tasks))
	for _, task := range buildModel.Tasks {
		if task.Description != "" {
			fmt.Printf("  %s - %s\n", task.Name, task.Description)
		} else {
			fmt.Printf("  %s\n", task.Name)
		}
	}
	return nil
}
