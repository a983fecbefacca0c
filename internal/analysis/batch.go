package analysis

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/chess-recap/internal/acpl"
	"github.com/park285/chess-recap/internal/domain"
	"github.com/park285/chess-recap/internal/puzzle"
	"github.com/park285/chess-recap/internal/tagcat"
)

var ErrNilGames = errors.New("analysis: nil game list")

// AnalyzeBatch runs the detector catalog, puzzle extraction and move-quality
// scoring over a full batch for one subject. Evaluations are looked up per
// game link; games without evaluations skip puzzle extraction and quality
// scoring but still contribute tags. A nil game list is a caller error, an
// empty one is a valid empty batch.
func AnalyzeBatch(username string, games []*domain.GameRecord, evals map[string]*domain.GameEvals, cat *tagcat.Catalog) (*domain.BatchResult, error) {
	if games == nil {
		return nil, ErrNilGames
	}
	a, err := New(username, cat)
	if err != nil {
		return nil, err
	}

	tags, failed := a.Run(games)

	var puzzles []domain.PuzzleCandidate
	quality := make(map[string]*acpl.GameSummary)
	for _, rec := range games {
		subjectWhite, played := rec.PlayedBy(a.username)
		if !played {
			continue
		}
		if base := rec.BaseTimeSeconds(); base >= 0 && base < 60 {
			continue
		}
		ev := evals[rec.Link]
		got, err := puzzle.Extract(rec, ev, subjectWhite)
		if err != nil {
			if !errors.Is(err, puzzle.ErrMissingEvaluation) {
				a.log.Warn("puzzle extraction failed",
					zap.String("link", rec.Link), zap.Error(err))
			}
			continue
		}
		puzzles = append(puzzles, got...)
		if s := scoreQuality(rec, ev, subjectWhite); s != nil {
			quality[rec.Link] = s
		}
	}

	return &domain.BatchResult{Tags: tags, Puzzles: puzzles, Quality: quality, Failed: failed}, nil
}

// scoreQuality folds the subject's moves of one evaluated game into a
// move-quality summary. Evals are subject-relative; the eval before the
// first half-move is taken as level.
func scoreQuality(rec *domain.GameRecord, ev *domain.GameEvals, subjectWhite bool) *acpl.GameSummary {
	if ev == nil || len(ev.Evals) == 0 {
		return nil
	}
	mateAt := -1
	if n := len(rec.Moves); n > 0 && strings.Contains(rec.Moves[n-1], "#") {
		mateAt = n - 1
	}

	s := &acpl.GameSummary{}
	for i, cur := range ev.Evals {
		whiteMove := i%2 == 0
		if whiteMove != subjectWhite {
			continue
		}
		prev := 0
		if i > 0 {
			prev = ev.Evals[i-1]
		}
		mate := i == mateAt
		loss := acpl.CPLoss(prev, cur, true, mate)
		mb := acpl.IsMateBlunder(prev, cur, true, mate)
		s.Record(loss, acpl.Classify(loss, mb))
	}
	if s.Moves == 0 {
		return nil
	}
	return s
}
