// Package model fetches a lightweight build model from a Gradle project by
// running its task report and parsing the output. It mirrors the shape of a
// tooling-API model fetch without speaking the tooling wire protocol.
package model

import (
	"context"
	"io"
	"regexp"
	"strings"

	"gradlex/internal/executer"
	e "gradlex/pkg/errors"
	"gradlex/pkg/logger"
)

// Task is one invocable task of the build.
type Task struct {
	Name        string
	Description string
}

// BuildModel describes the queried build.
type BuildModel struct {
	ProjectName string
	Description string
	Tasks       []Task
}

// TaskNames returns the names of all tasks in report order.
func (m *BuildModel) TaskNames() []string {
	names := make([]string, len(m.Tasks))
	for i, task := range m.Tasks {
		names[i] = task.Name
	}
	return names
}

// ProgressEvent is a coarse phase notification during a fetch.
type ProgressEvent struct {
	Description string
}

// ProgressListener receives progress events during a fetch.
type ProgressListener interface {
	StatusChanged(event ProgressEvent)
}

// ProgressFunc adapts a function to the ProgressListener interface.
type ProgressFunc func(event ProgressEvent)

func (f ProgressFunc) StatusChanged(event ProgressEvent) { f(event) }

// ResultHandler receives the outcome of an asynchronous fetch. Exactly one
// of the two methods is called, from a separate goroutine.
type ResultHandler interface {
	OnComplete(model *BuildModel)
	OnFailure(err error)
}

// ModelBuilder configures and performs model fetches against one project.
// It is reusable across fetches but not safe for concurrent use.
type ModelBuilder struct {
	projectDir string
	backend    executer.Backend
	opts       []executer.Option

	arguments []string
	stdin     io.Reader
	javaHome  string
	jvmArgs   []string
	listeners []ProgressListener
}

// NewModelBuilder creates a builder for the project at projectDir, running
// Gradle through backend.
func NewModelBuilder(projectDir string, backend executer.Backend, opts ...executer.Option) *ModelBuilder {
	return &ModelBuilder{projectDir: projectDir, backend: backend, opts: opts}
}

// WithArguments replaces the extra build arguments passed to the fetch.
func (b *ModelBuilder) WithArguments(args ...string) *ModelBuilder {
	b.arguments = append([]string(nil), args...)
	return b
}

// SetStandardInput supplies the stdin stream for the fetch.
func (b *ModelBuilder) SetStandardInput(stdin io.Reader) *ModelBuilder {
	b.stdin = stdin
	return b
}

// SetJavaHome selects the JVM the fetch runs with.
func (b *ModelBuilder) SetJavaHome(javaHome string) *ModelBuilder {
	b.javaHome = javaHome
	return b
}

// SetJvmArguments replaces the JVM arguments for the forked build.
func (b *ModelBuilder) SetJvmArguments(args ...string) *ModelBuilder {
	b.jvmArgs = append([]string(nil), args...)
	return b
}

// AddProgressListener registers a listener for fetch progress events.
// Listeners accumulate.
func (b *ModelBuilder) AddProgressListener(listener ProgressListener) *ModelBuilder {
	b.listeners = append(b.listeners, listener)
	return b
}

func (b *ModelBuilder) notify(description string) {
	for _, listener := range b.listeners {
		listener.StatusChanged(ProgressEvent{Description: description})
	}
}

// Get fetches the build model, blocking until the underlying build
// completes or ctx is cancelled.
func (b *ModelBuilder) Get(ctx context.Context) (*BuildModel, error) {
	b.notify("Configuring build")

	ex := executer.NewExecuter(b.backend, b.opts...)
	ex.UsingProjectDirectory(b.projectDir).
		InDirectory(b.projectDir).
		WithQuietLogging().
		WithTaskList().
		WithArguments(append([]string{"--all"}, b.arguments...)...)
	if b.stdin != nil {
		ex.WithStdin(b.stdin)
	}
	if b.javaHome != "" {
		ex.WithJavaHome(b.javaHome)
	}
	ex.WithGradleOpts(b.jvmArgs...)

	type outcome struct {
		result *executer.ExecutionResult
		err    error
	}
	resultCh := make(chan outcome, 1)
	b.notify("Running task report")
	go func() {
		result, err := ex.Run()
		resultCh <- outcome{result, err}
	}()

	select {
	case <-ctx.Done():
		return nil, e.Wrap(ctx.Err(), e.ErrModelFetch, "Model fetch cancelled")
	case out := <-resultCh:
		if out.err != nil {
			return nil, e.Wrap(out.err, e.ErrModelFetch, "Failed to fetch build model").
				WithContext("project_dir", b.projectDir)
		}
		b.notify("Parsing task report")
		model := parseTaskReport(out.result.Output)
		b.notify("Done")
		logger.Debugf("Fetched model for %q with %d tasks", model.ProjectName, len(model.Tasks))
		return model, nil
	}
}

// Fetch performs the fetch asynchronously and delivers the outcome to
// handler from a separate goroutine.
func (b *ModelBuilder) Fetch(handler ResultHandler) {
	go func() {
		model, err := b.Get(context.Background())
		if err != nil {
			handler.OnFailure(err)
			return
		}
		handler.OnComplete(model)
	}()
}

var (
	rootProjectRe = regexp.MustCompile(`Root project '([^']+)'(?:\s*-\s*(.*))?`)
	taskLineRe    = regexp.MustCompile(`^([a-zA-Z][\w:]*)(?:\s+-\s+(.*))?$`)
)

// parseTaskReport extracts the project header and task lines from the
// output of a quiet "tasks --all" run.
func parseTaskReport(output string) *BuildModel {
	model := &BuildModel{}
	seen := make(map[string]bool)

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			continue
		}
		if m := rootProjectRe.FindStringSubmatch(line); m != nil {
			model.ProjectName = m[1]
			model.Description = strings.TrimSpace(m[2])
			continue
		}
		// Separator lines, section headers ("Build tasks") and the
		// trailing rules block are not task lines
		if strings.HasPrefix(line, "-") || strings.HasSuffix(line, "tasks") || line == "Rules" {
			continue
		}
		if m := taskLineRe.FindStringSubmatch(line); m != nil && !seen[m[1]] {
			seen[m[1]] = true
			model.Tasks = append(model.Tasks, Task{Name: m[1], Description: strings.TrimSpace(m[2])})
		}
	}
	return model
}
