package chesscom

import (
	"fmt"
	"strings"
	"time"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/chess-recap/internal/domain"
)

type archivesResponse struct {
	Archives []string `json:"archives"`
}

type monthlyResponse struct {
	Games []gameDTO `json:"games"`
}

type playerDTO struct {
	Username string `json:"username"`
	Result   string `json:"result"`
	Rating   int    `json:"rating"`
}

type gameDTO struct {
	URL         string    `json:"url"`
	PGN         string    `json:"pgn"`
	TimeControl string    `json:"time_control"`
	TimeClass   string    `json:"time_class"`
	EndTime     int64     `json:"end_time"`
	Rated       bool      `json:"rated"`
	Rules       string    `json:"rules"`
	White       playerDTO `json:"white"`
	Black       playerDTO `json:"black"`
}

// toRecord maps one API game onto the internal record. Returns (nil, nil)
// for games filtered out on purpose: unrated games and variants.
func (g *gameDTO) toRecord() (*domain.GameRecord, error) {
	if !g.Rated {
		return nil, nil
	}
	if g.Rules != "" && g.Rules != "chess" {
		return nil, nil
	}
	if strings.TrimSpace(g.PGN) == "" {
		return nil, fmt.Errorf("game %s has no pgn", g.URL)
	}

	opt, err := nchess.PGN(strings.NewReader(g.PGN))
	if err != nil {
		return nil, fmt.Errorf("parse pgn: %w", err)
	}
	game := nchess.NewGame(opt)

	moves := game.Moves()
	positions := game.Positions()
	if len(positions) < len(moves)+1 {
		return nil, fmt.Errorf("pgn for %s yields %d positions for %d moves", g.URL, len(positions), len(moves))
	}

	sans := make([]string, len(moves))
	ucis := make([]string, len(moves))
	for i, m := range moves {
		sans[i] = nchess.AlgebraicNotation{}.Encode(positions[i], m)
		ucis[i] = nchess.UCINotation{}.Encode(positions[i], m)
	}

	rec := &domain.GameRecord{
		White:       g.White.Username,
		Black:       g.Black.Username,
		Result:      resultString(g.White.Result, g.Black.Result),
		Date:        time.Unix(g.EndTime, 0).UTC().Format("2006.01.02"),
		TimeControl: g.TimeControl,
		ECO:         game.GetTagPair("ECO"),
		Event:       game.GetTagPair("Event"),
		Link:        g.URL,
		Moves:       sans,
		MovesUCI:    ucis,
	}
	return rec, nil
}

// resultString folds the per-player result codes into a PGN result.
// Exactly one side carries "win" in decided games; everything else is a draw
// (agreed, repetition, stalemate, insufficient, 50move, timevsinsufficient).
func resultString(white, black string) string {
	switch {
	case white == "win":
		return "1-0"
	case black == "win":
		return "0-1"
	default:
		return "1/2-1/2"
	}
}
