// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package versioning

import (
	"errors"
	"fmt"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/content"
	"github.com/Project-Sylos/Sylos-Versioning/pkg/logging"
)

// Outcome is the result of a migration run that did not fail.
type Outcome int

const (
	// Disabled means migration is switched off in the current context.
	Disabled Outcome = iota
	// UpToDate means the instance already has the template version.
	UpToDate
	// Deferred means the instance could not be locked or the run failed;
	// a later run retries.
	Deferred
	// Applied means the migration was committed.
	Applied
)

func (o Outcome) String() string {
	switch o {
	case Disabled:
		return "disabled"
	case UpToDate:
		return "uptodate"
	case Deferred:
		return "deferred"
	case Applied:
		return "applied"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// TemplateLocator resolves the template of the component being migrated.
// An empty relPath addresses the template root.
type TemplateLocator interface {
	Template(relPath string) (content.Node, error)
}

// SessionLocator finds templates below Path in Session. Session is
// refreshed on every lookup and must not be shared between goroutines.
type SessionLocator struct {
	Session content.Session
	Path    string
}

// Template refreshes the session first so every call sees the committed
// template, never a copy cached by an earlier run.
func (l SessionLocator) Template(relPath string) (content.Node, error) {
	if err := l.Session.Refresh(true); err != nil {
		return nil, err
	}
	return l.Session.Node(content.Join(l.Path, relPath))
}

// ContextFlags reports whether the current context allows migrations,
// typically an authoring or edit mode.
type ContextFlags interface {
	MigrationEnabled() bool
}

// FlagFunc adapts a function to ContextFlags.
type FlagFunc func() bool

func (f FlagFunc) MigrationEnabled() bool { return f() }

// Enabled is a ContextFlags that always allows migration.
var Enabled ContextFlags = FlagFunc(func() bool { return true })

// StatsSink receives outcome counters.
type StatsSink interface {
	IncrementStat(key string) error
}

// Options configures a Migrator.
type Options struct {
	Settings  Overrides
	Templates TemplateLocator
	// Scripts loads update scripts; required when scripts are enabled.
	Scripts ScriptLoader
	// Flags gates every run. Nil disables migration.
	Flags ContextFlags
	// ComponentPath prefixes the update script location.
	ComponentPath string
	LockOwner     string
	Logger        logging.Logger
	Stats         StatsSink
}

// Migrator brings instances up to their template version.
type Migrator struct {
	settings      Settings
	templates     TemplateLocator
	scripts       ScriptLoader
	flags         ContextFlags
	componentPath string
	owner         string
	log           logging.Logger
	stats         StatsSink
}

// New validates opts and returns a Migrator.
func New(opts Options) (*Migrator, error) {
	m := &Migrator{
		settings:      DefaultSettings().Merge(opts.Settings),
		templates:     opts.Templates,
		scripts:       opts.Scripts,
		flags:         opts.Flags,
		componentPath: opts.ComponentPath,
		owner:         opts.LockOwner,
		log:           opts.Logger,
		stats:         opts.Stats,
	}
	if m.templates == nil {
		return nil, errors.New("template locator is required")
	}
	if m.settings.RunVersionUpdateScripts && m.scripts == nil {
		return nil, errors.New("script loader is required when update scripts are enabled")
	}
	if m.owner == "" {
		m.owner = DefaultLockOwner
	}
	if m.log == nil {
		m.log = logging.Root
	}
	return m, nil
}

// Settings returns the effective settings.
func (m *Migrator) Settings() Settings {
	return m.settings
}

// Migrate runs one migration decision for instance. The instance's session
// should carry no pending changes: they are committed with the migration,
// and discarded when the migration fails.
func (m *Migrator) Migrate(instance content.Node) (Outcome, error) {
	outcome, err := m.migrate(instance)
	if err != nil {
		m.count("migrations/failed")
		return outcome, err
	}
	m.count("migrations/" + outcome.String())
	return outcome, nil
}

func (m *Migrator) migrate(instance content.Node) (outcome Outcome, err error) {
	if m.flags == nil || !m.flags.MigrationEnabled() {
		return Disabled, nil
	}

	key := m.settings.VersionPropertyKey
	template, err := m.templates.Template("")
	if err != nil {
		return Deferred, fmt.Errorf("failed to load template: %w", err)
	}
	target, err := readVersion(template, key)
	if err != nil {
		return Deferred, err
	}
	current, err := readVersion(instance, key)
	if err != nil {
		return Deferred, err
	}
	if current >= target {
		return UpToDate, nil
	}

	path := instance.Path()
	log := m.log.With("path", path)
	session := instance.Session()

	res, err := AcquireLock(instance, m.owner, log)
	if err != nil {
		return Deferred, err
	}
	if res == LockDenied {
		return Deferred, nil
	}
	defer func() {
		if uerr := ReleaseLock(session, path); uerr != nil {
			err = errors.Join(err, uerr)
		}
	}()

	// Another run may have finished between the first check and the lock
	if err := session.Refresh(true); err != nil {
		return Deferred, err
	}
	if current, err = readVersion(instance, key); err != nil {
		return Deferred, err
	}
	if current >= target {
		log.Debug("migrated concurrently", "version", current)
		return UpToDate, nil
	}

	if err := m.apply(instance, template, current, target, log); err != nil {
		if derr := session.Refresh(false); derr != nil {
			err = errors.Join(err, derr)
		}
		return Deferred, err
	}
	log.Info("migrated instance", "from", current, "to", target)
	return Applied, nil
}

// apply runs the critical section: scripts, merge, stamp, commit.
func (m *Migrator) apply(instance, template content.Node, current, target int64, log logging.Logger) error {
	if m.settings.RunVersionUpdateScripts {
		r := &Runner{
			Loader:        m.scripts,
			ComponentPath: m.componentPath,
			BasePath:      m.settings.UpdateScriptBasePath,
			Log:           log,
		}
		if _, err := r.Run(current, target, instance); err != nil {
			return err
		}
	}
	if m.settings.AddMissingNodesAndProperties {
		res, err := Merge(template, instance, log)
		if err != nil {
			return fmt.Errorf("failed to merge template: %w", err)
		}
		log.Debug("merged template", "properties", res.Properties, "nodes", res.Nodes)
	}
	if err := instance.SetProperty(m.settings.VersionPropertyKey, content.LongValue(target)); err != nil {
		return err
	}
	if err := instance.Session().Commit(); err != nil {
		return err
	}
	return nil
}

func (m *Migrator) count(key string) {
	if m.stats == nil {
		return
	}
	if err := m.stats.IncrementStat(key); err != nil {
		m.log.Debug("failed to record stat", "key", key, "err", err)
	}
}
