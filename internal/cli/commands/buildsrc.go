package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"gradlex/internal/buildsrc"
	e "gradlex/pkg/errors"
	"gradlex/pkg/logger"
)

// BuildSrc builds the buildSrc sub-build of the selected project and
// prints its classpath. With --watch it keeps running and invalidates the
// cached state whenever a buildSrc source changes.
func BuildSrc(args []string) error {
	var watch bool
	var filtered []string
	for _, arg := range args {
		if arg == "--watch" {
			watch = true
			continue
		}
		filtered = append(filtered, arg)
	}

	flags, _, err := parseInvocationFlags(filtered)
	if err != nil {
		return e.Wrap(err, e.ErrInvalidConfig, "Invalid buildsrc arguments")
	}
	projectDir := flags.projectDir
	if projectDir == "" {
		projectDir = "."
	}

	cfg := loadConfig()
	builder := buildsrc.NewBuilder(backendFactory(), executerOptions(cfg)...)
	classpath, err := builder.BuildClasspath(context.Background(), projectDir)
	if err != nil {
		return err
	}
	if classpath == nil {
		fmt.Println("No buildSrc directory found")
		return nil
	}
	for _, entry := range classpath {
		fmt.Println(entry)
	}

	if watch {
		watcher, err := buildsrc.NewWatcher(projectDir)
		if err != nil {
			return e.Wrap(err, e.ErrBuildSrcFailed, "Failed to watch buildSrc")
		}
		defer watcher.Close()
		logger.Info("Watching buildSrc for changes, press Ctrl-C to stop")

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		<-interrupt
	}
	return nil
}
