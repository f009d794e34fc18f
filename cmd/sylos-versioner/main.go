// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

// Command sylos-versioner manages a content database and migrates component
// instances to the version of their template.
package main

import (
	"fmt"
	"os"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/logging"
	"github.com/Project-Sylos/Sylos-Versioning/pkg/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sylos-versioner",
	Short: "Migrate content instances to their template version",
	Long: `sylos-versioner operates on a bbolt content database.

Trees are imported and exported as JSON, update scripts are stored as
resources, and migrate runs one migration decision for an instance.`,
	SilenceUsage: true,
}

var (
	dbPath  string
	verbose bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Content database path (required)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openStore opens the database named by --db.
func openStore() (*store.Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path not specified (use --db)")
	}
	st, err := store.Open(store.Options{Path: dbPath})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return st, nil
}

// logger writes to stderr and persists entries for entity in the database.
func logger(st *store.Store, entity string) logging.Logger {
	return st.Logger(entity, &logging.Default{Verbose: verbose})
}
