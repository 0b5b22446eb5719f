package buildsrc

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"gradlex/internal/digest"
	"gradlex/pkg/logger"
)

// Watcher invalidates the persisted buildSrc state whenever a source file
// under buildSrc changes, so long-running tools pick up edits without
// digesting the tree on every invocation.
type Watcher struct {
	buildSrcDir string
	watcher     *fsnotify.Watcher
	rules       *digest.IgnoreRules
	done        chan struct{}
}

// NewWatcher starts watching the buildSrc directory of projectDir. Paths
// excluded from the digest, build output, Gradle metadata and anything in
// .gradlexignore, do not trigger invalidation.
func NewWatcher(projectDir string) (*Watcher, error) {
	buildSrcDir := filepath.Join(projectDir, Dir)
	rules, err := ignoreRules(buildSrcDir)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		buildSrcDir: buildSrcDir,
		watcher:     fsw,
		rules:       rules,
		done:        make(chan struct{}),
	}
	if err := w.addRecursive(buildSrcDir); err != nil {
		fsw.Close()
		return nil, err
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if skipWatch(d.Name()) {
			return filepath.SkipDir
		}
		if rel, relErr := filepath.Rel(w.buildSrcDir, path); relErr == nil && rel != "." {
			if w.rules.ShouldIgnore(rel, true) {
				return filepath.SkipDir
			}
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.ignored(event.Name) {
				continue
			}
			logger.Debugf("buildSrc change detected: %s", event)
			if err := InvalidateState(w.buildSrcDir); err != nil {
				logger.Warnf("Failed to invalidate buildSrc state: %v", err)
			}
			// New directories need watches of their own
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("buildSrc watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

// ignored filters events originating from paths the digest never sees:
// build output, metadata dirs and .gradlexignore exclusions.
func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.buildSrcDir, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if skipWatch(part) {
			return true
		}
	}
	info, statErr := os.Stat(path)
	isDir := statErr == nil && info.IsDir()
	return w.rules.ShouldIgnore(rel, isDir)
}

func skipWatch(name string) bool {
	switch name {
	case "build", ".gradle", stateDirName, ".git":
		return true
	}
	return false
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
