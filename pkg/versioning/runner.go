// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package versioning

import (
	"fmt"
	"strconv"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/content"
	"github.com/Project-Sylos/Sylos-Versioning/pkg/logging"
)

// ScriptLoader returns the raw bytes of the resource at an absolute path.
// A missing resource is reported with ok false, not an error.
type ScriptLoader interface {
	Load(path string) (data []byte, ok bool, err error)
}

// ScriptLoaderFunc adapts a function to ScriptLoader.
type ScriptLoaderFunc func(path string) ([]byte, bool, error)

func (f ScriptLoaderFunc) Load(path string) ([]byte, bool, error) { return f(path) }

// ScriptPath returns the location of the update script for version:
// <componentPath><basePath><version>.json, with duplicate slashes removed.
func ScriptPath(componentPath, basePath string, version int64) string {
	p := componentPath + "/" + basePath + "/" + strconv.FormatInt(version, 10) + ".json"
	return content.Join(content.RootPath, p)
}

// Runner loads and interprets the update scripts between two versions.
type Runner struct {
	Loader        ScriptLoader
	ComponentPath string
	BasePath      string
	Log           logging.Logger
}

// Run interprets the scripts for versions from+1 through to, in ascending
// order, against instance. Versions without a script are skipped. It returns
// the versions whose scripts ran.
func (r *Runner) Run(from, to int64, instance content.Node) ([]int64, error) {
	log := r.Log
	if log == nil {
		log = logging.Root
	}
	basePath := r.BasePath
	if basePath == "" {
		basePath = DefaultUpdateScriptBasePath
	}

	var ran []int64
	for v := from + 1; v <= to; v++ {
		path := ScriptPath(r.ComponentPath, basePath, v)
		data, ok, err := r.Loader.Load(path)
		if err != nil {
			return ran, fmt.Errorf("failed to load update script %s: %w", path, err)
		}
		if !ok {
			log.Warn("skipped update script: not found", "version", v, "script", path)
			continue
		}

		script, err := DecodeScript(v, path, data)
		if err != nil {
			return ran, err
		}
		log.Debug("running update script", "version", v, "script", path, "updates", len(script.Updates))
		if err := NewInterpreter(instance, v, log).Run(script.Updates); err != nil {
			return ran, err
		}
		ran = append(ran, v)
	}
	return ran, nil
}
