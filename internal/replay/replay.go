// Package replay turns a recorded move list into a stream of per-ply board
// snapshots. Each game is replayed exactly once; every consumer reads the
// same snapshots.
package replay

import (
	"errors"
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/chess-recap/internal/domain"
)

var (
	// ErrMoveDecode reports notation that cannot be parsed.
	ErrMoveDecode = errors.New("cannot decode move notation")
	// ErrIllegalMove reports a decoded move that does not apply to the
	// current position.
	ErrIllegalMove = errors.New("move not legal in current position")
)

// Ply is one half-move of a replayed game. Before is the position prior to
// the move and must be treated as read-only.
type Ply struct {
	Index  int // 1-indexed half-move number
	Move   *nchess.Move
	Before *nchess.Position
	SAN    string
}

// After returns the position once the ply's move has been applied.
func (p *Ply) After() *nchess.Position {
	return p.Before.Update(p.Move)
}

// Game replays a full game record from the standard starting position.
// UCI moves are preferred when present; SAN otherwise. The returned game
// carries the final outcome and method.
func Game(rec *domain.GameRecord) ([]Ply, *nchess.Game, error) {
	if len(rec.MovesUCI) > 0 {
		return run(nchess.NewGame(), rec.MovesUCI, nchess.UCINotation{})
	}
	return run(nchess.NewGame(), rec.Moves, nchess.AlgebraicNotation{})
}

// FromFEN replays a UCI move list from an arbitrary position. Used by the
// puzzle engine to rebuild solver lines.
func FromFEN(fen string, uciMoves []string) ([]Ply, *nchess.Game, error) {
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, nil, fmt.Errorf("parse fen %q: %w", fen, err)
	}
	return run(nchess.NewGame(opt), uciMoves, nchess.UCINotation{})
}

func run(game *nchess.Game, moves []string, notation nchess.Notation) ([]Ply, *nchess.Game, error) {
	plies := make([]Ply, 0, len(moves))
	san := nchess.AlgebraicNotation{}
	for i, raw := range moves {
		raw = strings.TrimSpace(raw)
		if _, ok := notation.(nchess.UCINotation); ok {
			raw = strings.ToLower(raw)
		}
		pos := game.Position()
		move, err := notation.Decode(pos, raw)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: ply %d %q: %v", ErrMoveDecode, i+1, raw, err)
		}
		encoded := san.Encode(pos, move)
		if err := game.Move(move, nil); err != nil {
			return nil, nil, fmt.Errorf("%w: ply %d %q: %v", ErrIllegalMove, i+1, raw, err)
		}
		plies = append(plies, Ply{Index: i + 1, Move: move, Before: pos, SAN: encoded})
	}
	return plies, game, nil
}
