package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the embedding cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached embedding files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			entries, err := os.ReadDir(cfg.CacheDir)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Fprintln(cmd.OutOrStdout(), "Cache is empty")
					return nil
				}
				return fmt.Errorf("read cache directory: %w", err)
			}

			rows := make([][]string, 0, len(entries))
			var totalBytes int64
			for _, entry := range entries {
				if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".cache") {
					continue
				}
				info, infoErr := entry.Info()
				if infoErr != nil {
					continue
				}
				totalBytes += info.Size()
				rows = append(rows, []string{
					entry.Name(),
					formatBytes(info.Size()),
					info.ModTime().UTC().Format("2006-01-02 15:04"),
				})
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "Cache is empty")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"File", "Size", "Modified"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d entries, %s total\n", len(rows), formatBytes(totalBytes))
			return nil
		},
	})

	var clearEpisodeID string
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached embedding files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			entries, err := os.ReadDir(cfg.CacheDir)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Fprintln(cmd.OutOrStdout(), "Cache is empty")
					return nil
				}
				return fmt.Errorf("read cache directory: %w", err)
			}

			removed := 0
			for _, entry := range entries {
				if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".cache") {
					continue
				}
				if clearEpisodeID != "" && !strings.HasPrefix(entry.Name(), clearEpisodeID+"_") {
					continue
				}
				if err := os.Remove(filepath.Join(cfg.CacheDir, entry.Name())); err != nil {
					return fmt.Errorf("remove %s: %w", entry.Name(), err)
				}
				removed++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cache entries\n", removed)
			return nil
		},
	}
	clearCmd.Flags().StringVarP(&clearEpisodeID, "episode-id", "e", "", "Only remove entries for this episode")
	cmd.AddCommand(clearCmd)

	return cmd
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
