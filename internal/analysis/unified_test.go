package analysis

import (
	"errors"
	"strings"
	"testing"

	"github.com/park285/chess-recap/internal/domain"
)

// 1928 Gundersen vs Faul, the classic en passant checkmate.
var enPassantMateSAN = []string{
	"e4", "e6", "d4", "d5", "e5", "c5", "c3", "cxd4", "cxd4", "Bb4+",
	"Nc3", "Nc6", "Nf3", "Nge7", "Bd3", "O-O", "Bxh7+", "Kxh7", "Ng5+", "Kg6",
	"h4", "Nxd4", "Qg4", "f5", "h5+", "Kh6", "Nxe6+", "g5", "hxg6#",
}

var scholarsMateSAN = []string{"e4", "e5", "Bc4", "Bc5", "Qh5", "Nf6", "Qxf7#"}

func newGame(link, white, black, result string, moves []string) *domain.GameRecord {
	return &domain.GameRecord{
		White:       white,
		Black:       black,
		Result:      result,
		TimeControl: "600",
		Link:        link,
		Moves:       moves,
	}
}

func runBatch(t *testing.T, username string, games ...*domain.GameRecord) map[string][]string {
	t.Helper()
	a, err := New(username, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tags, failed := a.Run(games)
	if len(failed) != 0 {
		t.Fatalf("unexpected failed games: %v", failed)
	}
	return tags
}

func hasTag(tags map[string][]string, link, tag string) bool {
	for _, v := range tags[link] {
		if v == tag {
			return true
		}
	}
	return false
}

func TestEnPassantMateTags(t *testing.T) {
	g := newGame("g1", "alice", "bob", "1-0", enPassantMateSAN)
	tags := runBatch(t, "alice", g)

	for _, want := range []string{"en_passant_mate", "pawn_mate", "best_game"} {
		if !hasTag(tags, "g1", want) {
			t.Errorf("missing tag %q, got %v", want, tags["g1"])
		}
	}
	for _, reject := range []string{"smothered_mate", "king_mate", "promotion_mate", "stalemate"} {
		if hasTag(tags, "g1", reject) {
			t.Errorf("unexpected tag %q in %v", reject, tags["g1"])
		}
	}
}

func TestMateDetectorsSkipNonMateGames(t *testing.T) {
	// Same moves but without the final mating move and a decisive result:
	// no mate-family detector may fire.
	moves := enPassantMateSAN[:len(enPassantMateSAN)-1]
	g := newGame("g1", "alice", "bob", "1-0", moves)
	tags := runBatch(t, "alice", g)

	for _, tag := range tags["g1"] {
		if strings.Contains(tag, "mate") {
			t.Errorf("mate tag %q on game without checkmate", tag)
		}
	}
}

func TestLongestGameKeepsFirstOnTie(t *testing.T) {
	long := pawnShuffle42()
	games := []*domain.GameRecord{
		newGame("short", "alice", "bob", "1-0", []string{"e4", "e5", "Nf3", "Nc6", "Bc4", "Bc5", "b4"}),
		newGame("long1", "alice", "bob", "1-0", long),
		newGame("long2", "alice", "bob", "1-0", long),
		newGame("mid", "alice", "bob", "1-0", []string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6", "Ba4", "Nf6", "O-O", "Be7"}),
	}
	tags := runBatch(t, "alice", games...)

	if !hasTag(tags, "long1", "longest_game") {
		t.Errorf("longest_game missing on first longest game: %v", tags)
	}
	for _, link := range []string{"short", "long2", "mid"} {
		if hasTag(tags, link, "longest_game") {
			t.Errorf("longest_game leaked to %s", link)
		}
	}
}

func TestQuickestMateExcludesScholarsMate(t *testing.T) {
	games := []*domain.GameRecord{
		newGame("scholar", "alice", "bob", "1-0", scholarsMateSAN),
		newGame("real", "alice", "bob", "1-0", enPassantMateSAN),
	}
	tags := runBatch(t, "alice", games...)

	if hasTag(tags, "scholar", "quickest_mate") {
		t.Errorf("scholar's mate must not win quickest_mate: %v", tags["scholar"])
	}
	if !hasTag(tags, "real", "quickest_mate") {
		t.Errorf("quickest_mate missing on slower real mate: %v", tags["real"])
	}
}

func TestHyperBulletAndForeignGamesSkipped(t *testing.T) {
	hyper := newGame("hyper", "alice", "bob", "1-0", enPassantMateSAN)
	hyper.TimeControl = "30"
	foreign := newGame("foreign", "carol", "bob", "1-0", enPassantMateSAN)

	tags := runBatch(t, "alice", hyper, foreign)
	if len(tags) != 0 {
		t.Errorf("expected empty tag map, got %v", tags)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	games := []*domain.GameRecord{
		newGame("g1", "alice", "bob", "1-0", enPassantMateSAN),
		newGame("g2", "bob", "alice", "0-1", []string{"f3", "e5", "g4", "Qh4#"}),
	}
	first := runBatch(t, "alice", games...)
	second := runBatch(t, "alice", games...)

	if len(first) != len(second) {
		t.Fatalf("tag map size differs: %d vs %d", len(first), len(second))
	}
	for link, list := range first {
		other := second[link]
		if len(list) != len(other) {
			t.Fatalf("%s: %v vs %v", link, list, other)
		}
		for i := range list {
			if list[i] != other[i] {
				t.Errorf("%s[%d]: %q vs %q", link, i, list[i], other[i])
			}
		}
	}
}

func TestFoolsMateForBlackSubject(t *testing.T) {
	g := newGame("fool", "bob", "alice", "0-1", []string{"f3", "e5", "g4", "Qh4#"})
	tags := runBatch(t, "alice", g)

	for _, want := range []string{"quickest_mate", "best_game"} {
		if !hasTag(tags, "fool", want) {
			t.Errorf("missing tag %q, got %v", want, tags["fool"])
		}
	}
}

func TestReplayFailureReported(t *testing.T) {
	a, err := New("alice", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	bad := newGame("bad", "alice", "bob", "1-0", []string{"e4", "zz9"})
	tags, failed := a.Run([]*domain.GameRecord{bad})
	if len(tags) != 0 {
		t.Errorf("tags from broken game: %v", tags)
	}
	if len(failed) != 1 || failed[0] != "bad" {
		t.Errorf("failed = %v, want [bad]", failed)
	}
}

func TestAnalyzeBatchNilGames(t *testing.T) {
	if _, err := AnalyzeBatch("alice", nil, nil, nil); !errors.Is(err, ErrNilGames) {
		t.Errorf("err = %v, want ErrNilGames", err)
	}
}

func TestAnalyzeBatchCombinesTagsAndPuzzles(t *testing.T) {
	rec := newGame("g1", "alice", "bob", "1-0",
		[]string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6"})
	evals := map[string]*domain.GameEvals{
		"g1": {Link: "g1", Evals: []int{30, 150, -50, -40, -45, -50}},
	}

	res, err := AnalyzeBatch("alice", []*domain.GameRecord{rec}, evals, nil)
	if err != nil {
		t.Fatalf("AnalyzeBatch: %v", err)
	}
	if !hasTag(res.Tags, "g1", "best_game") {
		t.Errorf("missing best_game tag: %v", res.Tags)
	}
	if len(res.Puzzles) != 1 {
		t.Fatalf("puzzles = %d, want 1", len(res.Puzzles))
	}
	if res.Puzzles[0].SourceLink != "g1" {
		t.Errorf("puzzle source = %q", res.Puzzles[0].SourceLink)
	}
	if len(res.Failed) != 0 {
		t.Errorf("failed = %v", res.Failed)
	}

	q := res.Quality["g1"]
	if q == nil {
		t.Fatal("missing quality summary for g1")
	}
	// white plays half-moves 1, 3, 5: losses 0, 200, 5
	if q.Moves != 3 {
		t.Errorf("quality moves = %d, want 3", q.Moves)
	}
	if q.Counts.Blunder != 1 {
		t.Errorf("blunders = %d, want 1", q.Counts.Blunder)
	}
	if q.TotalCPLoss != 205 {
		t.Errorf("total cp loss = %d, want 205", q.TotalCPLoss)
	}
	if acc := q.Accuracy(); acc <= 0 || acc >= 100 {
		t.Errorf("accuracy = %v, want inside (0,100)", acc)
	}
}

func TestAnalyzeBatchWithoutEvalsStillTags(t *testing.T) {
	rec := newGame("g1", "alice", "bob", "1-0", enPassantMateSAN)

	res, err := AnalyzeBatch("alice", []*domain.GameRecord{rec}, nil, nil)
	if err != nil {
		t.Fatalf("AnalyzeBatch: %v", err)
	}
	if !hasTag(res.Tags, "g1", "en_passant_mate") {
		t.Errorf("tags missing without evals: %v", res.Tags)
	}
	if len(res.Puzzles) != 0 {
		t.Errorf("puzzles without evals: %d", len(res.Puzzles))
	}
	if len(res.Quality) != 0 {
		t.Errorf("quality without evals: %v", res.Quality)
	}
}

// pawnShuffle42 builds a quiet 42-ply game with no captures or checks.
func pawnShuffle42() []string {
	moves := make([]string, 0, 42)
	for _, f := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		moves = append(moves, f+"3", f+"6")
	}
	for _, f := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		moves = append(moves, f+"4", f+"5")
	}
	moves = append(moves, "Nc3", "Nc6", "Nf3", "Nf6", "Bd2", "Bd7", "Be2", "Be7", "Qc2", "Qc7")
	return moves
}
