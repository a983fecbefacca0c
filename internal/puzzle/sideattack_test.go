package puzzle

import (
	"testing"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/chess-recap/internal/replay"
)

const kingsideFEN = "r1b2rk1/1p2pp1p/p1n5/8/8/P1N5/1P1B1PPP/R2Q2K1 b - - 0 1"

func puzzleFromFEN(t *testing.T, fen string, pov nchess.Color, uciMoves []string) *Puzzle {
	t.Helper()
	plys, _, err := replay.FromFEN(fen, uciMoves)
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	p := &Puzzle{Pov: pov, Mainline: make([]Node, len(plys))}
	for i := range plys {
		p.Mainline[i] = Node{Before: plys[i].Before, Move: plys[i].Move, Ply: i}
	}
	return p
}

func TestKingsideAttackScoring(t *testing.T) {
	// Two solver checks near the h8 corner: score 2, theme applies.
	p := puzzleFromFEN(t, kingsideFEN, nchess.White,
		[]string{"a6a5", "d1g4", "g8h8", "g4d4"})
	if !kingsideAttack(p) {
		t.Errorf("two checks near the corner must classify as kingside attack")
	}

	// Dropping the second check leaves the score below 2.
	q := puzzleFromFEN(t, kingsideFEN, nchess.White,
		[]string{"a6a5", "d1g4", "g8h8", "g4g3"})
	if kingsideAttack(q) {
		t.Errorf("single check must not classify as kingside attack")
	}
}

func TestKingsideAttackPreconditions(t *testing.T) {
	// Sparse board: piece count below the kingside minimum of 20.
	sparse := "r4rk1/1p3p1p/8/8/8/8/1P3PPP/R2Q2K1 b - - 0 1"
	p := puzzleFromFEN(t, sparse, nchess.White,
		[]string{"b7b6", "d1g4", "g8h8", "g4d4"})
	if kingsideAttack(p) {
		t.Errorf("kingside attack requires at least 20 pieces on the board")
	}
}

func TestCookEqualityAndLength(t *testing.T) {
	p := puzzleFromFEN(t, kingsideFEN, nchess.White,
		[]string{"a6a5", "d1g4", "g8h8", "g4g3"})
	p.CP = 50

	themes := Cook(p)
	if !hasTheme(themes, ThemeEquality) {
		t.Errorf("cp 50 should cook as equality: %v", themes)
	}
	if !hasTheme(themes, ThemeShort) {
		t.Errorf("4-ply mainline should cook as short: %v", themes)
	}
	if hasTheme(themes, ThemeMate) {
		t.Errorf("no mate in line: %v", themes)
	}
}

func TestCookCrushingBands(t *testing.T) {
	p := puzzleFromFEN(t, kingsideFEN, nchess.White,
		[]string{"a6a5", "d1g4", "g8h8", "g4g3"})

	p.CP = 601
	if themes := Cook(p); !hasTheme(themes, ThemeCrushing) {
		t.Errorf("cp 601 should be crushing: %v", themes)
	}
	p.CP = 201
	if themes := Cook(p); !hasTheme(themes, ThemeAdvantage) {
		t.Errorf("cp 201 should be advantage: %v", themes)
	}
}
