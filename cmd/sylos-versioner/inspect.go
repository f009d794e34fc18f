// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print persisted log entries",
	Args:  cobra.NoArgs,
	RunE:  runLogs,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print migration counters",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var (
	logsLevel string
	logsLimit int
)

func init() {
	rootCmd.AddCommand(logsCmd, statsCmd)
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Only entries of this level (debug, info, warning, error)")
	logsCmd.Flags().IntVar(&logsLimit, "limit", 0, "Maximum number of entries, 0 for all")
}

func runLogs(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.QueryLogs(logsLevel, logsLimit)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %-7s %s %s %s\n", e.Timestamp, e.Level, e.Entity, e.EntityID, e.Message)
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	counters, err := st.Stats()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(counters))
	for k := range counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", k, counters[k])
	}
	return nil
}

var locksCmd = &cobra.Command{
	Use:   "locks",
	Short: "List stored locks",
	Args:  cobra.NoArgs,
	RunE:  runLocks,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the database and find unreachable nodes",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

var checkRepair bool

func init() {
	rootCmd.AddCommand(locksCmd, checkCmd)
	checkCmd.Flags().BoolVar(&checkRepair, "repair", false, "Delete unreachable nodes")
}

func runLocks(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	locks, err := st.Locks()
	if err != nil {
		return err
	}
	for _, l := range locks {
		state := "live"
		if l.Expired {
			state = "expired"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\tdeep=%t\n", l.Path, state, l.Owner, l.SessionID, l.Deep)
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	report, err := st.Check(checkRepair)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, o := range report.Orphans {
		fmt.Fprintf(out, "orphan %s %q parent=%s created=%s\n", o.ID, o.Name, o.ParentID, o.Created.Format("2006-01-02T15:04:05Z07:00"))
	}
	fmt.Fprintf(out, "%d nodes, %d unreachable, %d deleted\n", report.Nodes, len(report.Orphans), report.Repaired)
	return nil
}
