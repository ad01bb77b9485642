package ui

import (
	"path"
	"strings"
	"sync"
)

const defaultStylesheetPath = "/ui/static/css/app.css"

var (
	stylesheetPathOnce sync.Once
	stylesheetPath     = defaultStylesheetPath
)

func uiStylesheetHref() string {
	stylesheetPathOnce.Do(func() {
		name := strings.TrimSpace(readManifest("static/css/manifest.json")["app.css"])
		if name == "" || path.Base(name) != name || path.Ext(name) != ".css" {
			return
		}
		stylesheetPath = "/ui/static/css/" + name
	})
	return stylesheetPath
}
