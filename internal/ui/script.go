package ui

import (
	"encoding/json"
	"io/fs"
	"path"
	"strings"
	"sync"

	"exodash/internal/ui/assets"
)

const defaultScriptPrefix = "/ui/static/js/"

var (
	scriptManifestOnce sync.Once
	scriptManifest     map[string]string
)

// uiScriptHref resolves name through static/js/manifest.json when a hashed
// build exists, falling back to the plain file.
func uiScriptHref(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || path.Base(name) != name || path.Ext(name) != ".js" {
		return defaultScriptPrefix + "charts.js"
	}

	scriptManifestOnce.Do(func() {
		scriptManifest = readManifest("static/js/manifest.json")
	})

	if hashed := strings.TrimSpace(scriptManifest[name]); hashed != "" && path.Base(hashed) == hashed && path.Ext(hashed) == ".js" {
		return defaultScriptPrefix + hashed
	}
	return defaultScriptPrefix + name
}

func readManifest(file string) map[string]string {
	manifest := map[string]string{}
	raw, err := fs.ReadFile(assets.StaticFS(), file)
	if err != nil {
		return manifest
	}
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return map[string]string{}
	}
	return manifest
}
