package analysis

import "testing"

func TestCaptureSequenceRunOfThree(t *testing.T) {
	// White captures on three consecutive own moves; the result does not
	// matter since the detector is not gated on it.
	g := newGame("g1", "alice", "bob", "0-1",
		[]string{"e4", "d5", "exd5", "c6", "dxc6", "Nf6", "cxb7"})
	tags := runBatch(t, "alice", g)
	if !hasTag(tags, "g1", "capture_sequence") {
		t.Errorf("three captures in a row must tag: %v", tags["g1"])
	}
}

func TestCaptureSequenceResetOnQuietMove(t *testing.T) {
	g := newGame("g1", "alice", "bob", "0-1",
		[]string{"e4", "d5", "exd5", "c6", "dxc6", "Nf6", "Nc3", "e5", "d3"})
	tags := runBatch(t, "alice", g)
	if hasTag(tags, "g1", "capture_sequence") {
		t.Errorf("a quiet move must reset the capture run: %v", tags["g1"])
	}
}

func TestKnightForkOnKingAndRook(t *testing.T) {
	g := newGame("g1", "alice", "bob", "1-0",
		[]string{"Nc3", "e5", "Nd5", "d6", "Nxc7+"})
	tags := runBatch(t, "alice", g)
	if !hasTag(tags, "g1", "knight_fork") {
		t.Errorf("knight check hitting the rook must tag: %v", tags["g1"])
	}
}

func TestKnightForkNeedsQueenOrRook(t *testing.T) {
	// Same check, but the rook has left the corner: a bare check is no fork.
	g := newGame("g1", "alice", "bob", "1-0",
		[]string{"Nc3", "h5", "Nd5", "Rh6", "Nxc7+"})
	tags := runBatch(t, "alice", g)
	if hasTag(tags, "g1", "knight_fork") {
		t.Errorf("knight check without a major piece must not tag: %v", tags["g1"])
	}
}

// kingMarchMate walks the white king up the board with full cooperation
// and finishes with a supported queen mate.
var kingMarchMate = []string{
	"e4", "g5", "Ke2", "Bg7", "Kf3", "Bxb2", "Bxb2", "Nf6",
	"Kg3", "Nd5", "Kg4", "O-O", "Kh5", "d6", "Kh6", "a6",
	"Qh5", "b6", "Qxg5+", "Kh8", "Qg7#",
}

// kingRetreatMate is the same finish with the march cut short at g4.
var kingRetreatMate = []string{
	"e4", "g5", "Ke2", "Bg7", "Kf3", "Bxb2", "Bxb2", "Nf6",
	"Kg3", "Nd5", "Kg4", "O-O", "Kg3", "d6", "Qf3", "a6",
	"Qh5", "b6", "Qxg5+", "Kh8", "Qg7#",
}

func TestKingWalkDistanceThreshold(t *testing.T) {
	far := newGame("g1", "alice", "bob", "1-0", kingMarchMate)
	tags := runBatch(t, "alice", far)
	if !hasTag(tags, "g1", "king_walk") {
		t.Errorf("king reaching h6 must tag: %v", tags["g1"])
	}

	near := newGame("g2", "alice", "bob", "1-0", kingRetreatMate)
	tags = runBatch(t, "alice", near)
	if hasTag(tags, "g2", "king_walk") {
		t.Errorf("king stopping at g4 must not tag: %v", tags["g2"])
	}
}
