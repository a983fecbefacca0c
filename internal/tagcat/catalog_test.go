package tagcat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLabelFromEmbedded(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Label("queen_sacrifice")
	if err != nil {
		t.Fatalf("Label: %v", err)
	}
	if got != "Queen Sacrifice" {
		t.Fatalf("label = %q", got)
	}
	if c.LabelOr("no_such_tag") != "no_such_tag" {
		t.Fatal("LabelOr should fall back to the key")
	}
}

func TestOverrideDirWins(t *testing.T) {
	dir := t.TempDir()
	body := []byte("tags:\n  queen_sacrifice: \"Queen Sac\"\n")
	if err := os.WriteFile(filepath.Join(dir, "10-local.yaml"), body, 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.LabelOr("queen_sacrifice"); got != "Queen Sac" {
		t.Fatalf("label = %q, want override", got)
	}
	// untouched keys keep the embedded label
	if got := c.LabelOr("stalemate"); got != "Stalemate" {
		t.Fatalf("label = %q", got)
	}
}
