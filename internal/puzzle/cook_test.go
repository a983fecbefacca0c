package puzzle

import (
	"testing"

	nchess "github.com/corentings/chess/v2"
)

func TestCookSacrificePieceClass(t *testing.T) {
	// The solver offers the queen to the rook and plays on a piece down.
	p := puzzleFromFEN(t, "r5k1/8/8/8/8/3Q4/8/6K1 b - - 0 1", nchess.White,
		[]string{"g8h8", "d3a3", "a8a3", "g1g2"})

	pt, ok := sacrifice(p)
	if !ok {
		t.Fatal("queen offer left en prise must classify as a sacrifice")
	}
	if pt != nchess.Queen {
		t.Errorf("sacrificed piece = %v, want queen", pt)
	}

	themes := Cook(p)
	if !hasTheme(themes, ThemeSacrifice) || !hasTheme(themes, ThemeQueenSacrifice) {
		t.Errorf("themes = %v, want sacrifice and queenSacrifice", themes)
	}
	if hasTheme(themes, ThemeRookSacrifice) {
		t.Errorf("themes = %v, rookSacrifice must not apply", themes)
	}
}

func TestCookArabianMate(t *testing.T) {
	// Rook mates the cornered king, defended by the knight two squares out.
	p := puzzleFromFEN(t, "7k/R7/5N2/8/1p6/8/8/6K1 b - - 0 1", nchess.White,
		[]string{"b4b3", "a7h7"})

	themes := Cook(p)
	for _, want := range []string{"mateIn1", ThemeMate, ThemeArabianMate, ThemeOneMove} {
		if !hasTheme(themes, want) {
			t.Errorf("themes = %v, missing %q", themes, want)
		}
	}
	for _, reject := range []string{ThemeSmotheredMate, ThemeBackRankMate, ThemeHookMate} {
		if hasTheme(themes, reject) {
			t.Errorf("themes = %v, %q must not apply", themes, reject)
		}
	}
}

func TestMatePatternLadderRequiresCheckmate(t *testing.T) {
	// A quiet line matches none of the mate patterns.
	p := puzzleFromFEN(t, "r5k1/8/8/8/8/3Q4/8/6K1 b - - 0 1", nchess.White,
		[]string{"g8h8", "d3a3", "a8a3", "g1g2"})

	if anastasiaMate(p) || hookMate(p) || arabianMate(p) || dovetailMate(p) {
		t.Error("mate patterns require a checkmate at the end of the line")
	}
	if _, ok := bodenOrDoubleBishopMate(p); ok {
		t.Error("bishop mates require a checkmate at the end of the line")
	}
}
