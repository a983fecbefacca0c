// Package store persists batch analysis output to Postgres.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/chess-recap/internal/acpl"
	"github.com/park285/chess-recap/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveTags upserts the tag set of every game in the batch. Links are
// written in sorted order so retries touch rows deterministically.
func (r *Repository) SaveTags(ctx context.Context, username string, tags map[string][]string) error {
	if r == nil || r.db == nil || len(tags) == 0 {
		return nil
	}

	links := make([]string, 0, len(tags))
	for link := range tags {
		links = append(links, link)
	}
	sort.Strings(links)

	q := `INSERT INTO recap_tags (username, game_link, tags, updated_at)
      VALUES ($1, $2, $3, now())
      ON CONFLICT (username, game_link) DO UPDATE SET
        tags=EXCLUDED.tags,
        updated_at=EXCLUDED.updated_at`

	for _, link := range links {
		raw, err := json.Marshal(tags[link])
		if err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, q, username, link, string(raw)); err != nil {
			return fmt.Errorf("save tags for %s: %w", link, err)
		}
	}
	return nil
}

// SavePuzzles inserts extracted puzzle candidates. Re-running a batch
// re-extracts with fresh IDs, so existing rows for the same source game
// are left alone.
func (r *Repository) SavePuzzles(ctx context.Context, username string, puzzles []domain.PuzzleCandidate) error {
	if r == nil || r.db == nil || len(puzzles) == 0 {
		return nil
	}

	q := `INSERT INTO recap_puzzles (
        id, username, source_link, start_fen,
        mainline, themes, blunder_cp, solver_white, created_at
      ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
      ON CONFLICT (id) DO NOTHING`

	for _, p := range puzzles {
		mainline, err := json.Marshal(p.Mainline)
		if err != nil {
			return err
		}
		themes, err := json.Marshal(p.Themes)
		if err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, q,
			p.ID, username, p.SourceLink, p.StartFEN,
			string(mainline), string(themes), p.BlunderCP, p.SolverWhite,
		); err != nil {
			return fmt.Errorf("save puzzle %s: %w", p.ID, err)
		}
	}
	return nil
}

// SaveQuality upserts per-game move-quality summaries.
func (r *Repository) SaveQuality(ctx context.Context, username string, quality map[string]*acpl.GameSummary) error {
	if r == nil || r.db == nil || len(quality) == 0 {
		return nil
	}

	links := make([]string, 0, len(quality))
	for link := range quality {
		links = append(links, link)
	}
	sort.Strings(links)

	q := `INSERT INTO recap_quality (username, game_link, moves, acpl, accuracy, counts, updated_at)
      VALUES ($1, $2, $3, $4, $5, $6, now())
      ON CONFLICT (username, game_link) DO UPDATE SET
        moves=EXCLUDED.moves,
        acpl=EXCLUDED.acpl,
        accuracy=EXCLUDED.accuracy,
        counts=EXCLUDED.counts,
        updated_at=EXCLUDED.updated_at`

	for _, link := range links {
		s := quality[link]
		counts, err := json.Marshal(s.Counts)
		if err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, q,
			username, link, s.Moves, s.ACPL(), s.Accuracy(), string(counts),
		); err != nil {
			return fmt.Errorf("save quality for %s: %w", link, err)
		}
	}
	return nil
}

// Tags reads back every stored tag set for the player.
func (r *Repository) Tags(ctx context.Context, username string) (map[string][]string, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT game_link, tags FROM recap_tags WHERE username = $1`, username)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var link, raw string
		if err := rows.Scan(&link, &raw); err != nil {
			return nil, err
		}
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			return nil, fmt.Errorf("decode tags for %s: %w", link, err)
		}
		out[link] = tags
	}
	return out, rows.Err()
}

// SaveFailures records games that could not be replayed so they can be
// excluded from retries.
func (r *Repository) SaveFailures(ctx context.Context, username string, links []string) error {
	if r == nil || r.db == nil || len(links) == 0 {
		return nil
	}

	q := `INSERT INTO recap_failures (username, game_link, failed_at)
      VALUES ($1, $2, now())
      ON CONFLICT (username, game_link) DO UPDATE SET failed_at=EXCLUDED.failed_at`

	for _, link := range links {
		if _, err := r.db.ExecContext(ctx, q, username, link); err != nil {
			return fmt.Errorf("save failure for %s: %w", link, err)
		}
	}
	return nil
}
