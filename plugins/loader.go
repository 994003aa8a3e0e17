package plugins

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("skillet.plugins")

// Loader discovers JavaScript hooks under a directory tree and registers
// them.
type Loader struct {
	HooksDir string
}

// NewLoader creates a loader for the given hooks directory.
func NewLoader(hooksDir string) *Loader {
	return &Loader{HooksDir: hooksDir}
}

// LoadFunctions walks the hooks directory recursively and parses every
// .js file. Invalid files are skipped with a warning; the directory is
// created if it does not exist.
func (l *Loader) LoadFunctions() ([]*Descriptor, error) {
	if _, err := os.Stat(l.HooksDir); os.IsNotExist(err) {
		if err := os.MkdirAll(l.HooksDir, 0o755); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var out []*Descriptor
	err := filepath.Walk(l.HooksDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".js") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			log.Warningf("failed to read hook %s: %v", path, err)
			return nil
		}
		d, err := ParseJSFunction(string(content))
		if err != nil {
			log.Warningf("skipping invalid hook %s: %v", path, err)
			return nil
		}
		out = append(out, d)
		return nil
	})
	return out, err
}

// AutoRegister loads every valid hook into the registry and returns the
// number registered.
func (l *Loader) AutoRegister(reg *Registry) (int, error) {
	fns, err := l.LoadFunctions()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, d := range fns {
		if err := reg.Register(d); err != nil {
			log.Warningf("failed to register hook %s: %v", d.Name, err)
			continue
		}
		count++
	}
	if count > 0 {
		log.Infof("loaded %d JavaScript hook(s) from %s", count, l.HooksDir)
	}
	return count, nil
}
