package domain

import (
	"strconv"
	"strings"

	"github.com/park285/chess-recap/internal/acpl"
)

// GameRecord is one recorded game as ingested from an upstream source.
// It is immutable after ingestion; analysis never mutates it.
type GameRecord struct {
	White       string
	Black       string
	Result      string // "1-0", "0-1" or "1/2-1/2"
	Date        string
	TimeControl string // "base" or "base+increment", seconds
	ECO         string
	Event       string
	Link        string // stable identifier, used as the analysis key

	// Moves in SAN, in game order. MovesUCI is optional; when present it is
	// preferred for replay since it needs no disambiguation.
	Moves    []string
	MovesUCI []string
}

// PlayedBy reports whether the named player took part, and with which color.
func (g *GameRecord) PlayedBy(username string) (white bool, played bool) {
	if strings.EqualFold(g.White, username) {
		return true, true
	}
	if strings.EqualFold(g.Black, username) {
		return false, true
	}
	return false, false
}

// BaseTimeSeconds parses the base time out of the time control string.
// Returns -1 when the field is absent or unparsable.
func (g *GameRecord) BaseTimeSeconds() float64 {
	base, _, _ := strings.Cut(g.TimeControl, "+")
	v, err := strconv.ParseFloat(base, 64)
	if err != nil {
		return -1
	}
	return v
}

// GameEvals carries per-ply centipawn evaluations for one game,
// subject-relative (positive = subject better). Evals[i] is the evaluation
// after half-move i+1 has been played.
type GameEvals struct {
	Link  string `json:"link"`
	Evals []int  `json:"evals"`
}

// PuzzleMove is one half-move of a puzzle mainline with its evaluation.
type PuzzleMove struct {
	UCI    string `json:"uci"`
	EvalCP int    `json:"eval_cp"`
}

// PuzzleCandidate is an extracted, classified tactic ready for persistence.
type PuzzleCandidate struct {
	ID          string
	SourceLink  string
	StartFEN    string // position before the blunder move
	Mainline    []PuzzleMove
	Themes      []string
	BlunderCP   int // magnitude of the evaluation swing
	SolverWhite bool
}

// BatchResult is the final product of analyzing one batch of games.
type BatchResult struct {
	// Tags maps game link to the set of matched tag names.
	Tags map[string][]string
	// Puzzles holds every candidate extracted from evaluated games.
	Puzzles []PuzzleCandidate
	// Quality maps game link to the subject's move-quality summary, present
	// only for games that carried evaluations.
	Quality map[string]*acpl.GameSummary
	// Failed lists links of games whose replay was aborted.
	Failed []string
}
