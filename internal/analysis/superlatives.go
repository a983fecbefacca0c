package analysis

import (
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/chess-recap/internal/boardutil"
	"github.com/park285/chess-recap/internal/domain"
)

// bestGame collects every game the subject won. Downstream ranking picks
// from this pool.
type bestGame struct{ gameState }

func (*bestGame) Name() string { return "best_game" }

func (d *bestGame) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
}

func (d *bestGame) ProcessMove(_ *MoveContext) {}

func (d *bestGame) FinishGame() bool {
	d.matched = d.subjectWon()
	return d.commit()
}

// longestGame keeps the single game with the most half-moves seen so far.
// Ties keep the earlier game.
type longestGame struct {
	gameState
	bestPlies    int
	bestLink     string
	currentPlies int
}

func (*longestGame) Name() string { return "longest_game" }

func (d *longestGame) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
	d.currentPlies = 0
}

func (d *longestGame) ProcessMove(ctx *MoveContext) {
	d.currentPlies = ctx.Ply
}

func (d *longestGame) FinishGame() bool {
	if d.currentPlies > d.bestPlies {
		d.bestPlies = d.currentPlies
		d.bestLink = d.link
	}
	return false
}

func (d *longestGame) MatchedLinks() []string {
	if d.bestLink == "" {
		return nil
	}
	return []string{d.bestLink}
}

// quickestMate keeps the game with the earliest subject checkmate, skipping
// scholar's-mate wins (Qxf7#/Qf7# or the mirrored Qxf2#/Qf2# within eight
// half-moves).
type quickestMate struct {
	gameState
	bestPly      int
	bestLink     string
	matePly      int
	scholarsMate bool
}

func (*quickestMate) Name() string { return "quickest_mate" }

func (d *quickestMate) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
	d.matePly = 0
	d.scholarsMate = false
	if n := len(rec.Moves); n > 0 {
		last := rec.Moves[n-1]
		upper := strings.ToUpper(last)
		if (strings.Contains(upper, "QXF7") || strings.Contains(upper, "QF7") ||
			strings.Contains(upper, "QXF2") || strings.Contains(upper, "QF2")) &&
			strings.Contains(last, "#") && n <= 8 {
			d.scholarsMate = true
		}
	}
}

func (d *quickestMate) ProcessMove(ctx *MoveContext) {
	if !ctx.IsSubjectMove || d.scholarsMate {
		return
	}
	if ctx.After().Status() == nchess.Checkmate {
		d.matePly = ctx.Ply
	}
}

func (d *quickestMate) FinishGame() bool {
	if d.scholarsMate || d.matePly == 0 {
		return false
	}
	if d.bestPly == 0 || d.matePly < d.bestPly {
		d.bestPly = d.matePly
		d.bestLink = d.link
	}
	return false
}

func (d *quickestMate) MatchedLinks() []string {
	if d.bestLink == "" {
		return nil
	}
	return []string{d.bestLink}
}

// biggestComeback keeps the won game with the largest material deficit the
// subject dug out of.
type biggestComeback struct {
	gameState
	bestDeficit int
	bestLink    string
	minBalance  int
}

func (*biggestComeback) Name() string { return "biggest_comeback" }

func (d *biggestComeback) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
	d.minBalance = 0
}

func (d *biggestComeback) ProcessMove(ctx *MoveContext) {
	if bal := boardutil.MaterialBalance(ctx.Before.Board(), ctx.SubjectColor); bal < d.minBalance {
		d.minBalance = bal
	}
}

func (d *biggestComeback) FinishGame() bool {
	if !d.subjectWon() || d.minBalance >= 0 {
		return false
	}
	if deficit := -d.minBalance; deficit > d.bestDeficit {
		d.bestDeficit = deficit
		d.bestLink = d.link
	}
	return false
}

func (d *biggestComeback) MatchedLinks() []string {
	if d.bestLink == "" {
		return nil
	}
	return []string{d.bestLink}
}

// clutchWin matches wins in games that ran well past the usual length for
// their time control, a proxy for surviving the time scramble.
type clutchWin struct {
	gameState
	baseSecs   float64
	totalPlies int
}

func (*clutchWin) Name() string { return "clutch_win" }

func (d *clutchWin) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
	d.baseSecs = rec.BaseTimeSeconds()
	d.totalPlies = len(rec.Moves)
}

func (d *clutchWin) ProcessMove(_ *MoveContext) {}

func (d *clutchWin) FinishGame() bool {
	if !d.subjectWon() || d.baseSecs < 0 {
		return false
	}
	d.matched = d.totalPlies > expectedPlies(d.baseSecs)
	return d.commit()
}

// expectedPlies estimates the typical half-move count for a time control.
func expectedPlies(baseSecs float64) int {
	switch {
	case baseSecs <= 180:
		return 60
	case baseSecs <= 600:
		return 80
	default:
		return 100
	}
}
