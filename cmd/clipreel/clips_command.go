package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/five82/clipreel/internal/queue"
)

func newClipsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clips",
		Short: "Inspect persisted clips",
	}

	var episodeID string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List clips for an episode",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open clips database: %w", err)
			}
			defer func() { _ = store.Close() }()

			clips, err := store.ListByEpisode(cmd.Context(), episodeID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if ctx.JSONMode() {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(clips)
			}
			if len(clips) == 0 {
				fmt.Fprintln(out, "No clips found")
				return nil
			}

			rows := make([][]string, 0, len(clips))
			for _, c := range clips {
				rows = append(rows, []string{
					shortID(c.ID),
					formatTimeRange(c.StartMS, c.EndMS),
					colorScore(c.Score),
					string(c.Status),
					c.Title,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Range", "Score", "Status", "Title"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	listCmd.Flags().StringVarP(&episodeID, "episode-id", "e", "", "Episode identifier")
	_ = listCmd.MarkFlagRequired("episode-id")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show clip counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open clips database: %w", err)
			}
			defer func() { _ = store.Close() }()

			counts, err := store.CountByStatus(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(counts) == 0 {
				fmt.Fprintln(out, "No clips recorded")
				return nil
			}

			statuses := make([]string, 0, len(counts))
			for status := range counts {
				statuses = append(statuses, string(status))
			}
			sort.Strings(statuses)
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				rows = append(rows, []string{status, fmt.Sprintf("%d", counts[queue.ClipStatus(status)])})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Status", "Count"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	})

	return cmd
}
