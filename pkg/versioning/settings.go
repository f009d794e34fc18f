// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package versioning

import (
	"encoding/json"
	"fmt"
)

const (
	DefaultVersionPropertyKey   = "version"
	DefaultUpdateScriptBasePath = "/version/updates/"
)

// Settings control what a migration run does.
type Settings struct {
	RunVersionUpdateScripts      bool
	AddMissingNodesAndProperties bool
	VersionPropertyKey           string
	UpdateScriptBasePath         string
}

// DefaultSettings returns settings with both phases disabled.
func DefaultSettings() Settings {
	return Settings{
		VersionPropertyKey:   DefaultVersionPropertyKey,
		UpdateScriptBasePath: DefaultUpdateScriptBasePath,
	}
}

// Overrides holds caller supplied settings. Nil fields and empty strings keep the base value.
type Overrides struct {
	RunVersionUpdateScripts      *bool   `json:"runVersionUpdateScripts,omitempty"`
	AddMissingNodesAndProperties *bool   `json:"addMissingNodesAndProperties,omitempty"`
	VersionPropertyKey           *string `json:"versionPropertyKey,omitempty"`
	UpdateScriptBasePath         *string `json:"updateScriptBasePath,omitempty"`
}

// Merge returns s with every supplied override applied.
func (s Settings) Merge(o Overrides) Settings {
	if o.RunVersionUpdateScripts != nil {
		s.RunVersionUpdateScripts = *o.RunVersionUpdateScripts
	}
	if o.AddMissingNodesAndProperties != nil {
		s.AddMissingNodesAndProperties = *o.AddMissingNodesAndProperties
	}
	if o.VersionPropertyKey != nil && *o.VersionPropertyKey != "" {
		s.VersionPropertyKey = *o.VersionPropertyKey
	}
	if o.UpdateScriptBasePath != nil && *o.UpdateScriptBasePath != "" {
		s.UpdateScriptBasePath = *o.UpdateScriptBasePath
	}
	return s
}

// legacySettings carries the older key names still found in deployed components.
type legacySettings struct {
	TemplateVersionKey   *string `json:"templateVersionKey"`
	UpdateScriptLocation *string `json:"updateScriptLocation"`
}

// ParseSettings decodes a JSON settings record into Overrides. The keys
// templateVersionKey and updateScriptLocation are accepted as aliases of
// versionPropertyKey and updateScriptBasePath; the current names win.
func ParseSettings(data []byte) (Overrides, error) {
	var o Overrides
	if err := json.Unmarshal(data, &o); err != nil {
		return Overrides{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	var legacy legacySettings
	if err := json.Unmarshal(data, &legacy); err != nil {
		return Overrides{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	if o.VersionPropertyKey == nil {
		o.VersionPropertyKey = legacy.TemplateVersionKey
	}
	if o.UpdateScriptBasePath == nil {
		o.UpdateScriptBasePath = legacy.UpdateScriptLocation
	}
	return o, nil
}

// Bool returns a pointer to b, for building Overrides.
func Bool(b bool) *bool { return &b }

// String returns a pointer to s, for building Overrides.
func String(s string) *string { return &s }
