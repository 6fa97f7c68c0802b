package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/five82/clipreel/internal/logging"
	"github.com/five82/clipreel/internal/pipeline"
	"github.com/five82/clipreel/internal/queue"
	"github.com/five82/clipreel/internal/transcript"
)

var (
	scoreHigh = color.New(color.FgGreen)
	scoreMid  = color.New(color.FgYellow)
	scoreLow  = color.New(color.FgRed)
)

func newDiscoverCommand(ctx *commandContext) *cobra.Command {
	var episodeID string
	var platform string
	var maxClips int
	var minDurationMS int
	var maxDurationMS int
	var scoreThreshold float64
	var aspectRatios []string
	var noStore bool

	cmd := &cobra.Command{
		Use:   "discover <transcript.json>",
		Short: "Run clip discovery over a word-timed transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			tr, err := transcript.LoadFile(args[0])
			if err != nil {
				return err
			}

			id := strings.TrimSpace(episodeID)
			if id == "" {
				base := filepath.Base(args[0])
				id = strings.TrimSuffix(base, filepath.Ext(base))
			}
			if id == "" {
				return errors.New("episode id is required")
			}

			logger := logging.New(cfg.LogFormat, ctx.effectiveLogLevel())

			var store *queue.Store
			if !noStore {
				store, err = queue.Open(cfg)
				if err != nil {
					return fmt.Errorf("open clips database: %w", err)
				}
				defer func() { _ = store.Close() }()
			}

			p := pipeline.New(cfg, logger, store)
			defer p.Close()

			started := time.Now()
			clips, err := p.Discover(cmd.Context(), id, tr, pipeline.Options{
				MaxClips:       maxClips,
				MinDurationMS:  minDurationMS,
				MaxDurationMS:  maxDurationMS,
				ScoreThreshold: scoreThreshold,
				AspectRatios:   aspectRatios,
				Platform:       platform,
			})
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
				fmt.Fprintf(out, "No clips discovered for %s\n", id)
				return nil
			}

			rows := make([][]string, 0, len(clips))
			for _, c := range clips {
				rows = append(rows, []string{
					shortID(c.ID),
					formatTimeRange(c.StartMS, c.EndMS),
					formatDuration(c.DurationMS),
					colorScore(c.Score),
					c.BucketName,
					c.Title,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Range", "Length", "Score", "Bucket", "Title"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "%d clips in %s; sidecar: %s\n",
				len(clips), time.Since(started).Round(time.Millisecond),
				pipeline.SidecarPath(cfg.DataDir, id))
			return nil
		},
	}

	cmd.Flags().StringVarP(&episodeID, "episode-id", "e", "", "Episode identifier (defaults to the transcript file name)")
	cmd.Flags().StringVarP(&platform, "platform", "p", "", "Platform preset (tiktok, instagram_reels, youtube_shorts, twitter, linkedin, facebook)")
	cmd.Flags().IntVar(&maxClips, "max-clips", 0, "Override max clips per episode")
	cmd.Flags().IntVar(&minDurationMS, "min-duration-ms", 0, "Override minimum segment duration")
	cmd.Flags().IntVar(&maxDurationMS, "max-duration-ms", 0, "Override maximum segment duration")
	cmd.Flags().Float64Var(&scoreThreshold, "score-threshold", 0, "Override minimum clip score")
	cmd.Flags().StringSliceVar(&aspectRatios, "aspect-ratio", nil, "Override aspect ratios (repeatable)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Skip writing clip rows to the database")

	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatTimeRange(startMS, endMS int64) string {
	return fmt.Sprintf("%s - %s", formatClock(startMS), formatClock(endMS))
}

func formatClock(ms int64) string {
	total := ms / 1000
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

func formatDuration(ms int64) string {
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}

func colorScore(score float64) string {
	formatted := fmt.Sprintf("%.2f", score)
	switch {
	case score >= 0.6:
		return scoreHigh.Sprint(formatted)
	case score >= 0.4:
		return scoreMid.Sprint(formatted)
	default:
		return scoreLow.Sprint(formatted)
	}
}
