package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const clipColumns = "id, episode_id, start_ms, end_ms, duration_ms, score, title, caption, hashtags_json, status, created_at"

// InsertClip persists a new clip row inside a transaction, retrying on
// transient busy/lock errors (spec.md §5, §4.7). The transaction uses
// SQLite's default deferred mode; no exclusive lock is taken up front.
func (s *Store) InsertClip(ctx context.Context, clip Clip, hashtags []string) error {
	hashtagsJSON, err := json.Marshal(hashtags)
	if err != nil {
		return fmt.Errorf("marshal hashtags: %w", err)
	}
	if clip.CreatedAt.IsZero() {
		clip.CreatedAt = time.Now().UTC()
	}
	if clip.Status == "" {
		clip.Status = StatusPending
	}

	return s.withRetry(ctx, func() error {
		return s.inTx(ctx, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO clips (id, episode_id, start_ms, end_ms, duration_ms, score, title, caption, hashtags_json, status, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				clip.ID, clip.EpisodeID, clip.StartMS, clip.EndMS, clip.DurationMS, clip.Score,
				clip.Title, clip.Caption, string(hashtagsJSON), string(clip.Status), clip.CreatedAt.Format(time.RFC3339),
			)
			return err
		})
	})
}

// InsertAsset persists a rendered (or pending) clip asset row.
func (s *Store) InsertAsset(ctx context.Context, asset ClipAsset) error {
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = time.Now().UTC()
	}
	return s.withRetry(ctx, func() error {
		return s.inTx(ctx, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO clip_assets (clip_id, path, variant, aspect_ratio, size_bytes, created_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				asset.ClipID, asset.Path, string(asset.Variant), string(asset.AspectRatio), asset.SizeBytes,
				asset.CreatedAt.Format(time.RFC3339),
			)
			return err
		})
	})
}

// UpdateStatus transitions a clip's status.
func (s *Store) UpdateStatus(ctx context.Context, clipID string, status ClipStatus) error {
	return s.withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, "UPDATE clips SET status = ? WHERE id = ?", string(status), clipID)
		return err
	})
}

// ListByEpisode returns every clip row for an episode, ordered by score
// descending (spec.md §6's `score DESC` index).
func (s *Store) ListByEpisode(ctx context.Context, episodeID string) ([]Clip, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM clips WHERE episode_id = ? ORDER BY score DESC", clipColumns),
		episodeID,
	)
	if err != nil {
		return nil, fmt.Errorf("query clips: %w", err)
	}
	defer rows.Close()

	var clips []Clip
	for rows.Next() {
		clip, err := scanClip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		clips = append(clips, clip)
	}
	return clips, rows.Err()
}

// CountByStatus returns the number of clips in each status, for CLI/health
// reporting.
func (s *Store) CountByStatus(ctx context.Context) (map[ClipStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM clips GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("query clip status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[ClipStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[ClipStatus(status)] = count
	}
	return counts, rows.Err()
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func scanClip(scanner interface{ Scan(dest ...any) error }) (Clip, error) {
	var (
		id, episodeID, title, caption, hashtagsJSON, status, createdAt string
		startMS, endMS, durationMS                                    int64
		score                                                         float64
	)
	if err := scanner.Scan(&id, &episodeID, &startMS, &endMS, &durationMS, &score, &title, &caption, &hashtagsJSON, &status, &createdAt); err != nil {
		return Clip{}, err
	}
	createdTime, _ := time.Parse(time.RFC3339, createdAt)
	return Clip{
		ID:          id,
		EpisodeID:   episodeID,
		StartMS:     startMS,
		EndMS:       endMS,
		DurationMS:  durationMS,
		Score:       score,
		Title:       title,
		Caption:     caption,
		HashtagsRaw: hashtagsJSON,
		Status:      ClipStatus(status),
		CreatedAt:   createdTime,
	}, nil
}

// Hashtags unmarshals the clip's stored hashtag JSON array.
func (c Clip) Hashtags() []string {
	var tags []string
	_ = json.Unmarshal([]byte(c.HashtagsRaw), &tags)
	return tags
}
