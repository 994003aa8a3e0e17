package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/zenbakiak/skillet"
	"github.com/zenbakiak/skillet/plugins"
)

// ---------------------------------------------------------------------------
// Hook management: upload, update, delete, list, reload
//
// Hooks live as .js files under the configured hooks directory; every
// mutation re-registers the function and clears the result cache, since
// cached values are only valid for an unchanged registry.
// ---------------------------------------------------------------------------

type uploadJSRequest struct {
	Filename string `json:"filename,omitempty"`
	Content  string `json:"content"`
}

// hookFilename derives a safe on-disk name for a hook.
func hookFilename(dir, requested, fnName string) string {
	name := filepath.Base(requested)
	if name == "" || name == "." || !strings.HasSuffix(name, ".js") {
		name = strings.ToLower(fnName) + ".js"
	}
	return filepath.Join(dir, name)
}

func (s *HTTPServer) handleUploadJS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.saveHook(w, r, false)
}

func (s *HTTPServer) handleUpdateJS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.saveHook(w, r, true)
}

func (s *HTTPServer) saveHook(w http.ResponseWriter, r *http.Request, mustExist bool) {
	var req uploadJSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false, "error": fmt.Sprintf("invalid JSON body: %v", err),
		})
		return
	}

	d, err := plugins.ParseJSFunction(req.Content)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false, "error": err.Error(),
		})
		return
	}

	path := hookFilename(s.cfg.Hooks.Dir, req.Filename, d.Name)
	if mustExist {
		if _, err := os.Stat(path); err != nil {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{
				"success": false, "error": fmt.Sprintf("hook file %s not found", filepath.Base(path)),
			})
			return
		}
	}
	if err := os.MkdirAll(s.cfg.Hooks.Dir, 0o755); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false, "error": err.Error(),
		})
		return
	}
	if err := os.WriteFile(path, []byte(req.Content), 0o644); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false, "error": err.Error(),
		})
		return
	}

	if err := skillet.RegisterPlugin(d); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false, "error": err.Error(),
		})
		return
	}

	log.Infof("registered hook %s from %s", d.Name, filepath.Base(path))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"function": d.Name,
		"file":     filepath.Base(path),
	})
}

func (s *HTTPServer) handleDeleteJS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := strings.ToUpper(r.URL.Query().Get("name"))
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false, "error": "missing name parameter",
		})
		return
	}

	removed := skillet.UnregisterPlugin(name)

	// Remove any hook file that declares this function name.
	filepath.Walk(s.cfg.Hooks.Dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !strings.HasSuffix(path, ".js") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if d, err := plugins.ParseJSFunction(string(content)); err == nil && d.Name == name {
			os.Remove(path)
		}
		return nil
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"removed": removed,
	})
}

func (s *HTTPServer) handleListJS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	reg := skillet.Registry()
	names := reg.List()
	functions := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		d, ok := reg.Get(name)
		if !ok {
			continue
		}
		entry := map[string]interface{}{
			"name":     d.Name,
			"min_args": d.MinArgs,
		}
		if d.MaxArgs >= 0 {
			entry["max_args"] = d.MaxArgs
		} else {
			entry["max_args"] = "unlimited"
		}
		if d.Description != "" {
			entry["description"] = d.Description
		}
		if d.Example != "" {
			entry["example"] = d.Example
		}
		functions = append(functions, entry)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"functions": functions,
	})
}

func (s *HTTPServer) handleReloadHooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	loader := plugins.NewLoader(s.cfg.Hooks.Dir)
	count, err := loader.AutoRegister(skillet.Registry())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false, "error": err.Error(),
		})
		return
	}
	skillet.ClearCache()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"loaded":  count,
	})
}
