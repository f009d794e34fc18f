// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package main

import (
	"fmt"
	"os"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/versioning"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate an instance to its template version",
	Long: `Run one migration decision for --instance against --template.

When the template version is newer the instance is locked, the update
scripts of the component are run (--scripts), missing template content is
copied (--merge), and the new version is stamped and committed. An instance
locked elsewhere is deferred.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

var (
	migrateInstance  string
	migrateTemplate  string
	migrateComponent string
	migrateSettings  string
	migrateScripts   bool
	migrateMerge     bool
	migrateEdit      bool
	migrateKey       string
	migrateBase      string
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	f := migrateCmd.Flags()
	f.StringVar(&migrateInstance, "instance", "", "Instance node path (required)")
	f.StringVar(&migrateTemplate, "template", "", "Template node path (required)")
	f.StringVar(&migrateComponent, "component", "", "Component path the update scripts live under")
	f.StringVar(&migrateSettings, "settings", "", "JSON settings file")
	f.BoolVar(&migrateScripts, "scripts", false, "Run version update scripts")
	f.BoolVar(&migrateMerge, "merge", false, "Add missing nodes and properties from the template")
	f.BoolVar(&migrateEdit, "edit", true, "Run in an authoring context; false makes migrate a no-op")
	f.StringVar(&migrateKey, "version-key", "", "Version property key")
	f.StringVar(&migrateBase, "script-base", "", "Update script location below the component")
	migrateCmd.MarkFlagRequired("instance")
	migrateCmd.MarkFlagRequired("template")
}

// migrateOverrides reads --settings and applies explicitly set flags on top.
func migrateOverrides(cmd *cobra.Command) (versioning.Overrides, error) {
	var o versioning.Overrides
	if migrateSettings != "" {
		data, err := os.ReadFile(migrateSettings)
		if err != nil {
			return o, err
		}
		if o, err = versioning.ParseSettings(data); err != nil {
			return o, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("scripts") {
		o.RunVersionUpdateScripts = versioning.Bool(migrateScripts)
	}
	if flags.Changed("merge") {
		o.AddMissingNodesAndProperties = versioning.Bool(migrateMerge)
	}
	if flags.Changed("version-key") {
		o.VersionPropertyKey = versioning.String(migrateKey)
	}
	if flags.Changed("script-base") {
		o.UpdateScriptBasePath = versioning.String(migrateBase)
	}
	return o, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	overrides, err := migrateOverrides(cmd)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	m, err := versioning.New(versioning.Options{
		Settings:      overrides,
		Templates:     versioning.SessionLocator{Session: st.NewSession(), Path: migrateTemplate},
		Scripts:       st,
		Flags:         versioning.FlagFunc(func() bool { return migrateEdit }),
		ComponentPath: migrateComponent,
		Logger:        logger(st, "migrator"),
		Stats:         st,
	})
	if err != nil {
		return err
	}

	s := st.NewSession()
	defer s.Logout()
	instance, err := s.Node(migrateInstance)
	if err != nil {
		return err
	}
	outcome, err := m.Migrate(instance)
	if err != nil {
		return fmt.Errorf("migration of %s failed: %w", migrateInstance, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", migrateInstance, outcome)
	return nil
}
