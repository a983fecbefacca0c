package puzzle

import (
	nchess "github.com/corentings/chess/v2"

	"github.com/park285/chess-recap/internal/boardutil"
)

func kingsideAttack(p *Puzzle) bool {
	return sideAttack(p, 7, []int{5, 6}, 20)
}

func queensideAttack(p *Puzzle) bool {
	return sideAttack(p, 0, []int{0, 1, 2}, 18)
}

// sideAttack scores an assault on one wing of the defending king. The king
// must start on its back rank inside the wing's file range with enough
// material still on the board, and the solver must give at least one check.
// Each solver check scores +1, a capture landing near the attacked corner
// scores +1, and a move landing far from the corner scores -1; the theme
// needs a total of 2.
func sideAttack(p *Puzzle, cornerFile int, kingFiles []int, minPieces int) bool {
	backRank := 7
	if p.Pov == nchess.Black {
		backRank = 0
	}
	board := p.Mainline[0].After().Board()
	kingSq, ok := boardutil.KingSquare(board, boardutil.Opposite(p.Pov))
	if !ok || int(kingSq.Rank()) != backRank {
		return false
	}
	fileOK := false
	for _, f := range kingFiles {
		if int(kingSq.File()) == f {
			fileOK = true
			break
		}
	}
	if !fileOK {
		return false
	}
	if boardutil.PieceCount(board) < minPieces {
		return false
	}

	solver := p.SolverNodes()
	hasCheck := false
	for _, n := range solver {
		if len(checkers(n.After(), p.Pov)) > 0 {
			hasCheck = true
			break
		}
	}
	if !hasCheck {
		return false
	}

	corner := nchess.NewSquare(nchess.File(cornerFile), nchess.Rank(backRank))
	score := 0
	for _, n := range solver {
		dest := n.Move.S2()
		dist := boardutil.Chebyshev(corner, dest)
		if len(checkers(n.After(), p.Pov)) > 0 {
			score++
		}
		if n.Before.Board().Piece(dest) != nchess.NoPiece && dist <= 3 {
			score++
		} else if dist >= 5 {
			score--
		}
	}
	return score >= 2
}
