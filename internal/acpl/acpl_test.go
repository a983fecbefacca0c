package acpl

import (
	"math"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		cpLoss      int
		mateBlunder bool
		want        string
	}{
		{0, false, "best"},
		{5, false, "excellent"},
		{25, false, "good"},
		{75, false, "inaccuracy"},
		{150, false, "mistake"},
		{250, false, "blunder"},
		{0, true, "blunder"},
	}
	for _, c := range cases {
		if got := Classify(c.cpLoss, c.mateBlunder); got != c.want {
			t.Errorf("Classify(%d, %v) = %q, want %q", c.cpLoss, c.mateBlunder, got, c.want)
		}
	}
}

func TestCPLoss(t *testing.T) {
	if got := CPLoss(100, 80, true, false); got != 20 {
		t.Errorf("white loss = %d, want 20", got)
	}
	if got := CPLoss(100, 120, false, false); got != 20 {
		t.Errorf("black loss = %d, want 20", got)
	}
	if got := CPLoss(100, 9990, true, true); got != 0 {
		t.Errorf("checkmate move loss = %d, want 0", got)
	}
	if got := CPLoss(9990, 9980, true, false); got != 0 {
		t.Errorf("same-side mate loss = %d, want 0", got)
	}
	if got := CPLoss(9990, -9990, true, false); got != 500 {
		t.Errorf("flipped mate loss = %d, want 500", got)
	}
	if got := CPLoss(800, 100, true, false); got != 500 {
		t.Errorf("loss should cap at 500, got %d", got)
	}
}

func TestIsMateBlunder(t *testing.T) {
	if IsMateBlunder(9990, 9990, true, true) {
		t.Error("delivering mate is not a blunder")
	}
	if !IsMateBlunder(9990, 100, true, false) {
		t.Error("losing a forced mate is a blunder")
	}
	if !IsMateBlunder(100, -9990, true, false) {
		t.Error("walking into mate is a blunder")
	}
	if IsMateBlunder(100, 80, true, false) {
		t.Error("ordinary move is not a mate blunder")
	}
}

func TestAccuracy(t *testing.T) {
	if got := Accuracy(0, 20); math.Abs(got-100.0) > 0.1 {
		t.Errorf("perfect play accuracy = %f", got)
	}
	if got := Accuracy(500, 20); math.Abs(got-89.4) > 1.0 {
		t.Errorf("acpl 25 accuracy = %f", got)
	}
	if got := Accuracy(2000, 20); math.Abs(got-70.7) > 1.0 {
		t.Errorf("acpl 100 accuracy = %f", got)
	}
	if got := Accuracy(0, 0); got != 100.0 {
		t.Errorf("no moves accuracy = %f, want 100", got)
	}
}

func TestClassificationsAdd(t *testing.T) {
	var c Classifications
	for _, class := range []string{"best", "best", "blunder", "book", "nonsense"} {
		c.Add(class)
	}
	if c.Best != 2 || c.Blunder != 1 || c.Book != 1 {
		t.Errorf("counts = %+v", c)
	}
}

func TestGameSummary(t *testing.T) {
	var s GameSummary
	if s.ACPL() != 0 || s.Accuracy() != 100.0 {
		t.Errorf("empty summary: acpl=%f accuracy=%f", s.ACPL(), s.Accuracy())
	}
	s.Record(0, "best")
	s.Record(200, "blunder")
	s.Record(5, "excellent")
	if s.Moves != 3 || s.TotalCPLoss != 205 {
		t.Errorf("summary = %+v", s)
	}
	if math.Abs(s.ACPL()-205.0/3.0) > 0.01 {
		t.Errorf("acpl = %f", s.ACPL())
	}
	if s.Counts.Blunder != 1 || s.Counts.Best != 1 || s.Counts.Excellent != 1 {
		t.Errorf("counts = %+v", s.Counts)
	}
}
