package replay

import (
	"errors"
	"strings"
	"testing"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/chess-recap/internal/domain"
)

func TestGameReplaysSANMoves(t *testing.T) {
	rec := &domain.GameRecord{
		Moves: []string{
			"e4", "e6", "d4", "d5", "e5", "c5", "c3", "cxd4", "cxd4", "Bb4+",
			"Nc3", "Nc6", "Nf3", "Nge7", "Bd3", "O-O", "Bxh7+", "Kxh7", "Ng5+", "Kg6",
			"h4", "Nxd4", "Qg4", "f5", "h5+", "Kh6", "Nxe6+", "g5", "hxg6#",
		},
	}
	plys, game, err := Game(rec)
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	if len(plys) != 29 {
		t.Fatalf("plys = %d, want 29", len(plys))
	}
	if plys[0].Index != 1 || plys[28].Index != 29 {
		t.Errorf("ply indices wrong: first %d last %d", plys[0].Index, plys[28].Index)
	}
	if game.Method() != nchess.Checkmate {
		t.Errorf("method = %v, want Checkmate", game.Method())
	}

	// The mating move is an en passant capture.
	last := plys[28]
	if !last.Move.HasTag(nchess.EnPassant) {
		t.Errorf("final move should be en passant")
	}
	if last.After().Status() != nchess.Checkmate {
		t.Errorf("final position should be checkmate")
	}
	if last.SAN != "hxg6#" {
		t.Errorf("final SAN = %q, want hxg6#", last.SAN)
	}
}

func TestGamePrefersUCIMoves(t *testing.T) {
	rec := &domain.GameRecord{
		Moves:    []string{"ignored"},
		MovesUCI: []string{"e2e4", "e7e5", "g1f3"},
	}
	plys, _, err := Game(rec)
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	if len(plys) != 3 {
		t.Fatalf("plys = %d, want 3", len(plys))
	}
	if plys[2].SAN != "Nf3" {
		t.Errorf("derived SAN = %q, want Nf3", plys[2].SAN)
	}
}

func TestBeforePositionsChain(t *testing.T) {
	rec := &domain.GameRecord{Moves: []string{"e4", "e5", "Nf3", "Nc6"}}
	plys, _, err := Game(rec)
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	for i := 0; i < len(plys)-1; i++ {
		got := plys[i].After().String()
		want := plys[i+1].Before.String()
		if got != want {
			t.Errorf("ply %d: after %q != next before %q", i+1, got, want)
		}
	}
	if plys[0].Before.Turn() != nchess.White || plys[1].Before.Turn() != nchess.Black {
		t.Errorf("turn alternation broken")
	}
}

func TestGameDecodeError(t *testing.T) {
	rec := &domain.GameRecord{Moves: []string{"e4", "zz9"}}
	_, _, err := Game(rec)
	if !errors.Is(err, ErrMoveDecode) {
		t.Errorf("err = %v, want ErrMoveDecode", err)
	}
}

func TestFromFENCastling(t *testing.T) {
	plys, _, err := FromFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
		[]string{"e1g1", "e8c8"})
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	if !plys[0].Move.HasTag(nchess.KingSideCastle) {
		t.Errorf("e1g1 should be kingside castling")
	}
	if !plys[1].Move.HasTag(nchess.QueenSideCastle) {
		t.Errorf("e8c8 should be queenside castling")
	}
}

func TestFromFENPromotion(t *testing.T) {
	plys, _, err := FromFEN("4k3/1P6/8/8/8/8/8/4K3 w - - 0 1", []string{"b7b8q"})
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	if plys[0].Move.Promo() != nchess.Queen {
		t.Errorf("b7b8q promo = %v, want queen", plys[0].Move.Promo())
	}
	if !strings.Contains(plys[0].SAN, "=Q") {
		t.Errorf("promotion SAN = %q", plys[0].SAN)
	}
}

func TestFromFENBadFEN(t *testing.T) {
	if _, _, err := FromFEN("not a fen", nil); err == nil {
		t.Error("expected error for malformed fen")
	}
}
