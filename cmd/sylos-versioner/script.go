// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/versioning"
	"github.com/spf13/cobra"
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Manage update scripts",
}

var scriptPutCmd = &cobra.Command{
	Use:   "put VERSION FILE.json",
	Short: "Validate and store the update script for a version",
	Args:  cobra.ExactArgs(2),
	RunE:  runScriptPut,
}

var scriptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored update scripts of a component",
	Args:  cobra.NoArgs,
	RunE:  runScriptList,
}

var (
	scriptComponent string
	scriptBasePath  string
)

func init() {
	rootCmd.AddCommand(scriptCmd)
	scriptCmd.AddCommand(scriptPutCmd, scriptListCmd)
	scriptCmd.PersistentFlags().StringVar(&scriptComponent, "component", "", "Component path the scripts belong to")
	scriptCmd.PersistentFlags().StringVar(&scriptBasePath, "base", versioning.DefaultUpdateScriptBasePath, "Script location below the component")
}

func runScriptPut(cmd *cobra.Command, args []string) error {
	version, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || version < 1 {
		return fmt.Errorf("invalid version %q", args[0])
	}
	data, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}

	path := versioning.ScriptPath(scriptComponent, scriptBasePath, version)
	script, err := versioning.DecodeScript(version, path, data)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.PutResource(path, data); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d updates\n", path, len(script.Updates))
	return nil
}

func runScriptList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	// Version 1 shares its directory with every other version
	prefix := versioning.ScriptPath(scriptComponent, scriptBasePath, 1)
	prefix = prefix[:len(prefix)-len("1.json")]
	paths, err := st.ListResources(prefix)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
