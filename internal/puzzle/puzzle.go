// Package puzzle extracts tactical puzzle candidates from evaluated games
// and classifies them with theme tags.
package puzzle

import (
	"errors"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// Extraction thresholds, in centipawns and half-moves.
const (
	BlunderThreshold = 200
	MinPuzzleCP      = 100
	MinPuzzleLength  = 2
	MaxPuzzleLength  = 20
)

var ErrBadUCI = errors.New("puzzle: malformed uci move")

// Node is one half-move of a puzzle mainline with its surrounding state.
type Node struct {
	Before *nchess.Position
	Move   *nchess.Move
	Ply    int // 0 = the mistake, odd plies are solver moves
}

// After returns the position with the node's move applied.
func (n *Node) After() *nchess.Position {
	return n.Before.Update(n.Move)
}

// Puzzle is a solvable line carved out of a game. Mainline[0] is the
// opponent's mistake; the solver plays the odd indices.
type Puzzle struct {
	ID         string
	SourceLink string
	Mainline   []Node
	Pov        nchess.Color // side solving the puzzle
	CP         int          // advantage after the mistake, solver-relative
	BlunderCP  int          // size of the evaluation swing
}

// SolverNodes returns the solver's moves, mainline indices 1, 3, 5...
func (p *Puzzle) SolverNodes() []*Node {
	var out []*Node
	for i := 1; i < len(p.Mainline); i += 2 {
		out = append(out, &p.Mainline[i])
	}
	return out
}

// End returns the position after the final mainline move.
func (p *Puzzle) End() *nchess.Position {
	return p.Mainline[len(p.Mainline)-1].After()
}

// Start returns the position before the mistake.
func (p *Puzzle) Start() *nchess.Position {
	return p.Mainline[0].Before
}

// ParseUCI decodes a coordinate move against a position. A trailing
// promotion character that is not q, r, b or n is dropped instead of
// rejected.
func ParseUCI(pos *nchess.Position, uci string) (*nchess.Move, error) {
	uci = strings.ToLower(strings.TrimSpace(uci))
	if len(uci) < 4 {
		return nil, ErrBadUCI
	}
	move := uci[:4]
	if len(uci) > 4 {
		switch uci[4] {
		case 'q', 'r', 'b', 'n':
			move = uci[:5]
		}
	}
	mv, err := nchess.UCINotation{}.Decode(pos, move)
	if err != nil {
		return nil, ErrBadUCI
	}
	return mv, nil
}
