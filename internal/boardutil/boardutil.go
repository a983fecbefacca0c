// Package boardutil provides square geometry and attack lookups on top of
// the chess library's board type. The library validates moves but exposes no
// attack queries, so the handful detectors need are computed here.
package boardutil

import (
	nchess "github.com/corentings/chess/v2"
)

var pieceValues = map[nchess.PieceType]int{
	nchess.Pawn:   1,
	nchess.Knight: 3,
	nchess.Bishop: 3,
	nchess.Rook:   5,
	nchess.Queen:  9,
}

// PieceValue returns the conventional material value of a piece type.
// Kings are worth 0.
func PieceValue(pt nchess.PieceType) int {
	return pieceValues[pt]
}

// Opposite returns the other side.
func Opposite(c nchess.Color) nchess.Color {
	if c == nchess.White {
		return nchess.Black
	}
	return nchess.White
}

// BackRank returns the home rank of the given side.
func BackRank(c nchess.Color) nchess.Rank {
	if c == nchess.White {
		return nchess.Rank1
	}
	return nchess.Rank8
}

// Chebyshev returns the king-move distance between two squares.
func Chebyshev(a, b nchess.Square) int {
	df := int(a.File()) - int(b.File())
	if df < 0 {
		df = -df
	}
	dr := int(a.Rank()) - int(b.Rank())
	if dr < 0 {
		dr = -dr
	}
	if df > dr {
		return df
	}
	return dr
}

// KingSquare locates the king of the given color. ok is false for malformed
// positions without one.
func KingSquare(b *nchess.Board, c nchess.Color) (nchess.Square, bool) {
	for sq, piece := range b.SquareMap() {
		if piece.Type() == nchess.King && piece.Color() == c {
			return sq, true
		}
	}
	return 0, false
}

// PieceCount returns the number of pieces on the board, kings included.
func PieceCount(b *nchess.Board) int {
	return len(b.SquareMap())
}

// MaterialBalance sums piece values for c minus the opponent's.
func MaterialBalance(b *nchess.Board, c nchess.Color) int {
	balance := 0
	for _, piece := range b.SquareMap() {
		v := pieceValues[piece.Type()]
		if piece.Color() == c {
			balance += v
		} else {
			balance -= v
		}
	}
	return balance
}

func offsetSquares(sq nchess.Square, offsets [][2]int) []nchess.Square {
	out := make([]nchess.Square, 0, len(offsets))
	f, r := int(sq.File()), int(sq.Rank())
	for _, d := range offsets {
		nf, nr := f+d[0], r+d[1]
		if nf < 0 || nf > 7 || nr < 0 || nr > 7 {
			continue
		}
		out = append(out, nchess.NewSquare(nchess.File(nf), nchess.Rank(nr)))
	}
	return out
}

var knightOffsets = [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
var kingOffsets = [][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}

var diagonalRays = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
var straightRays = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// KnightAttacks returns the squares a knight on sq attacks.
func KnightAttacks(sq nchess.Square) []nchess.Square {
	return offsetSquares(sq, knightOffsets)
}

// KingNeighbors returns the squares adjacent to sq.
func KingNeighbors(sq nchess.Square) []nchess.Square {
	return offsetSquares(sq, kingOffsets)
}

// PawnAttacks returns the squares a pawn of color c on sq attacks.
func PawnAttacks(c nchess.Color, sq nchess.Square) []nchess.Square {
	if c == nchess.White {
		return offsetSquares(sq, [][2]int{{-1, 1}, {1, 1}})
	}
	return offsetSquares(sq, [][2]int{{-1, -1}, {1, -1}})
}

func rayAttacks(b *nchess.Board, sq nchess.Square, rays [][2]int) []nchess.Square {
	var out []nchess.Square
	f, r := int(sq.File()), int(sq.Rank())
	for _, d := range rays {
		nf, nr := f+d[0], r+d[1]
		for nf >= 0 && nf <= 7 && nr >= 0 && nr <= 7 {
			next := nchess.NewSquare(nchess.File(nf), nchess.Rank(nr))
			out = append(out, next)
			if b.Piece(next) != nchess.NoPiece {
				break
			}
			nf += d[0]
			nr += d[1]
		}
	}
	return out
}

// AttacksFrom returns the squares a piece of the given type and color on sq
// attacks, accounting for blockers on sliding rays.
func AttacksFrom(b *nchess.Board, pt nchess.PieceType, c nchess.Color, sq nchess.Square) []nchess.Square {
	switch pt {
	case nchess.Pawn:
		return PawnAttacks(c, sq)
	case nchess.Knight:
		return KnightAttacks(sq)
	case nchess.Bishop:
		return rayAttacks(b, sq, diagonalRays)
	case nchess.Rook:
		return rayAttacks(b, sq, straightRays)
	case nchess.Queen:
		return append(rayAttacks(b, sq, diagonalRays), rayAttacks(b, sq, straightRays)...)
	case nchess.King:
		return KingNeighbors(sq)
	}
	return nil
}

// Attacks reports whether the piece of type pt and color c on from attacks
// the target square.
func Attacks(b *nchess.Board, pt nchess.PieceType, c nchess.Color, from, target nchess.Square) bool {
	for _, sq := range AttacksFrom(b, pt, c, from) {
		if sq == target {
			return true
		}
	}
	return false
}

// Attackers returns the squares of all pieces of color c attacking target.
func Attackers(b *nchess.Board, c nchess.Color, target nchess.Square) []nchess.Square {
	var out []nchess.Square
	for sq, piece := range b.SquareMap() {
		if piece.Color() != c {
			continue
		}
		if Attacks(b, piece.Type(), c, sq, target) {
			out = append(out, sq)
		}
	}
	return out
}
