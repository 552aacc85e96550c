//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"go.bug.st/fetcher/history"
)

// TabWidth is the padding of the columns in tabular output.
const TabWidth = 2

// NewHistoryCmd creates the history command with subcommands
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past transfers",
		Long:  "List and inspect the transfers recorded by the get command",
	}

	cmd.AddCommand(
		newHistoryListCmd(),
		newHistoryShowCmd(),
	)

	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded transfers",
		Long:  "List the recorded transfers, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryList(cmd, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of transfers to show (0 for all)")

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a recorded transfer",
		Long:  "Display all the details of a recorded transfer as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryShow(cmd, args[0])
		},
	}

	return cmd
}

func runHistoryList(cmd *cobra.Command, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No transfers recorded")
		return nil
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	w := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATE\tSTATUS\tSIZE\tSTARTED\tURL")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID, r.State, r.StatusCode,
			humanize.IBytes(uint64(max(r.BytesWritten, 0))),
			r.StartedAt.Local().Format(time.DateTime),
			r.URL)
	}
	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, id string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.GetRecord(id)
	if errors.Is(err, history.ErrRecordNotFound) {
		return fmt.Errorf("no transfer with ID %s", id)
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(TabWidth)
	if err := enc.Encode(rec); err != nil {
		return err
	}
	return enc.Close()
}
