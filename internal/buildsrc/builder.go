// Package buildsrc builds the buildSrc sub-build of a Gradle project and
// exposes its runtime classpath. Rebuilds are skipped when a content digest
// of the buildSrc sources matches the last successful build.
package buildsrc

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"gradlex/internal/digest"
	"gradlex/internal/executer"
	e "gradlex/pkg/errors"
	"gradlex/pkg/logger"
)

const (
	// Dir is the conventional name of the sub-build directory.
	Dir = "buildSrc"

	stateDirName   = ".gradlex"
	stateFileName  = "state.json"
	ignoreFileName = ".gradlexignore"
)

// state is the persisted rebuild-avoidance record.
type state struct {
	Digest    string   `json:"digest"`
	Classpath []string `json:"classpath"`
}

// Builder builds buildSrc and caches the resulting classpath keyed by a
// digest of the source tree.
type Builder struct {
	backend executer.Backend
	opts    []executer.Option
}

// NewBuilder creates a Builder that runs the sub-build through backend.
// Executer options, such as the default daemon registry, are applied to
// every sub-build invocation.
func NewBuilder(backend executer.Backend, opts ...executer.Option) *Builder {
	return &Builder{backend: backend, opts: opts}
}

// BuildClasspath ensures buildSrc is built and returns its runtime
// classpath. A project without a buildSrc directory yields a nil classpath
// and no error.
func (b *Builder) BuildClasspath(ctx context.Context, projectDir string) ([]string, error) {
	buildSrcDir := filepath.Join(projectDir, Dir)
	info, err := os.Stat(buildSrcDir)
	if err != nil || !info.IsDir() {
		logger.Debugf("No buildSrc directory at %s", buildSrcDir)
		return nil, nil
	}

	rules, err := ignoreRules(buildSrcDir)
	if err != nil {
		return nil, err
	}
	treeDigest, err := digest.Tree(ctx, buildSrcDir, rules)
	if err != nil {
		return nil, e.Wrap(err, e.ErrBuildSrcFailed, "Failed to digest buildSrc sources")
	}

	prev, firstBuild, err := loadState(buildSrcDir)
	if err != nil {
		return nil, err
	}
	if prev != nil && prev.Digest == treeDigest && entriesExist(prev.Classpath) {
		logger.Debugf("buildSrc unchanged, reusing classpath (%d entries)", len(prev.Classpath))
		return prev.Classpath, nil
	}

	logger.Info("Start building buildSrc")
	logger.StartTimer("buildSrc build")
	if err := b.runBuild(buildSrcDir, firstBuild); err != nil {
		return nil, err
	}
	logger.EndTimer("buildSrc build")

	classpath, err := collectClasspath(buildSrcDir)
	if err != nil {
		return nil, err
	}
	if err := saveState(buildSrcDir, &state{Digest: treeDigest, Classpath: classpath}); err != nil {
		// The build itself succeeded; a failed state write only costs a
		// rebuild next time.
		logger.Warnf("Failed to persist buildSrc state: %v", err)
	}
	return classpath, nil
}

// runBuild executes the sub-build. The first ever build runs clean first so
// stale output from other tools cannot leak into the classpath.
func (b *Builder) runBuild(buildSrcDir string, firstBuild bool) error {
	tasks := []string{"build"}
	if firstBuild {
		tasks = []string{"clean", "build"}
	}

	ex := executer.NewExecuter(b.backend, b.opts...)
	_, err := ex.InDirectory(buildSrcDir).
		UsingProjectDirectory(buildSrcDir).
		WithQuietLogging().
		WithTasks(tasks...).
		Run()
	if err != nil {
		return e.Wrap(err, e.ErrBuildSrcFailed, "buildSrc build failed").
			WithContext("buildsrc_dir", buildSrcDir)
	}
	return nil
}

// collectClasspath gathers the produced jars and, when present, the class
// and resource output directories.
func collectClasspath(buildSrcDir string) ([]string, error) {
	var classpath []string

	libsDir := filepath.Join(buildSrcDir, "build", "libs")
	jars, err := filepath.Glob(filepath.Join(libsDir, "*.jar"))
	if err == nil {
		sort.Strings(jars)
		classpath = append(classpath, jars...)
	}

	for _, dir := range []string{
		filepath.Join(buildSrcDir, "build", "classes", "java", "main"),
		filepath.Join(buildSrcDir, "build", "classes", "groovy", "main"),
		filepath.Join(buildSrcDir, "build", "resources", "main"),
	} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			classpath = append(classpath, dir)
		}
	}

	if len(classpath) == 0 {
		return nil, e.New(e.ErrBuildSrcFailed, "buildSrc build produced no output").
			WithContext("buildsrc_dir", buildSrcDir).
			WithSuggestion("Check that buildSrc applies a JVM plugin producing a jar")
	}
	return classpath, nil
}

// loadState reads the persisted state. It reports firstBuild when no state
// file exists yet. An unreadable or unparsable state file is a corrupted
// cache, surfaced as a recoverable error with the state dir attached.
func loadState(buildSrcDir string) (st *state, firstBuild bool, err error) {
	stateDir := filepath.Join(buildSrcDir, stateDirName)
	path := filepath.Join(stateDir, stateFileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, e.Wrap(err, e.ErrBuildSrcCacheCorrupted, "Failed to read buildSrc state").
			WithContext("state_dir", stateDir)
	}

	var loaded state
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, false, e.Wrap(err, e.ErrBuildSrcCacheCorrupted, "buildSrc state file is corrupted").
			WithContext("state_dir", stateDir)
	}
	return &loaded, false, nil
}

func saveState(buildSrcDir string, st *state) error {
	stateDir := filepath.Join(buildSrcDir, stateDirName)
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(stateDir, stateFileName), data, 0o644)
}

// InvalidateState removes the persisted state so the next BuildClasspath
// call rebuilds unconditionally.
func InvalidateState(buildSrcDir string) error {
	err := os.Remove(filepath.Join(buildSrcDir, stateDirName, stateFileName))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// ignoreRules builds the digest exclusion rules: the defaults plus any
// patterns from buildSrc/.gradlexignore.
func ignoreRules(buildSrcDir string) (*digest.IgnoreRules, error) {
	rules := digest.NewIgnoreRules()
	if err := rules.LoadFromFile(filepath.Join(buildSrcDir, ignoreFileName)); err != nil {
		return nil, e.Wrap(err, e.ErrBuildSrcFailed, "Failed to load "+ignoreFileName).
			WithContext("buildsrc_dir", buildSrcDir)
	}
	return rules, nil
}

func entriesExist(entries []string) bool {
	if len(entries) == 0 {
		return false
	}
	for _, entry := range entries {
		if _, err := os.Stat(entry); err != nil {
			return false
		}
	}
	return true
}
