package puzzle

import (
	"errors"

	nchess "github.com/corentings/chess/v2"
	"github.com/google/uuid"

	"github.com/park285/chess-recap/internal/domain"
	"github.com/park285/chess-recap/internal/replay"
)

var ErrMissingEvaluation = errors.New("puzzle: no evaluations for game")

// Extract scans an evaluated game for blunders and carves a puzzle
// candidate out of each one. Evaluations are subject-relative with entry i
// holding the score after half-move i+1; subjectWhite says which side the
// subject played. A game without evaluations returns ErrMissingEvaluation.
func Extract(rec *domain.GameRecord, evals *domain.GameEvals, subjectWhite bool) ([]domain.PuzzleCandidate, error) {
	if evals == nil || len(evals.Evals) == 0 {
		return nil, ErrMissingEvaluation
	}

	plys, _, err := replay.Game(rec)
	if err != nil {
		return nil, err
	}

	subject := nchess.White
	if !subjectWhite {
		subject = nchess.Black
	}

	n := len(plys)
	if len(evals.Evals) < n {
		n = len(evals.Evals)
	}

	var out []domain.PuzzleCandidate
	for p := 2; p <= n; p++ {
		ply := &plys[p-1]
		prev, cur := evals.Evals[p-2], evals.Evals[p-1]

		mover := ply.Before.Turn()
		swing := cur - prev
		if mover == subject {
			swing = prev - cur
		}
		if swing < BlunderThreshold {
			continue
		}
		if abs(prev) < MinPuzzleCP {
			continue
		}

		pz := carve(plys[:n], p, rec.Link)
		if pz == nil {
			continue
		}
		pz.Pov = mover.Other()
		pz.CP = cur
		if pz.Pov != subject {
			pz.CP = -cur
		}
		pz.BlunderCP = swing

		lineEvals := evals.Evals[p-1 : p-1+len(pz.Mainline)]
		out = append(out, candidate(pz, lineEvals))
	}
	return out, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// carve builds the mainline from the blunder ply forward, capped at
// MaxPuzzleLength half-moves. Lines shorter than MinPuzzleLength are not
// puzzles.
func carve(plys []replay.Ply, blunderPly int, link string) *Puzzle {
	end := blunderPly - 1 + MaxPuzzleLength
	if end > len(plys) {
		end = len(plys)
	}
	run := plys[blunderPly-1 : end]
	if len(run) < MinPuzzleLength {
		return nil
	}

	pz := &Puzzle{
		ID:         uuid.NewString(),
		SourceLink: link,
		Mainline:   make([]Node, len(run)),
	}
	for i := range run {
		pz.Mainline[i] = Node{Before: run[i].Before, Move: run[i].Move, Ply: i}
	}
	return pz
}

func candidate(pz *Puzzle, evals []int) domain.PuzzleCandidate {
	moves := make([]domain.PuzzleMove, len(pz.Mainline))
	for i := range pz.Mainline {
		node := &pz.Mainline[i]
		moves[i] = domain.PuzzleMove{
			UCI:    nchess.UCINotation{}.Encode(node.Before, node.Move),
			EvalCP: evals[i],
		}
	}
	return domain.PuzzleCandidate{
		ID:          pz.ID,
		SourceLink:  pz.SourceLink,
		StartFEN:    pz.Start().String(),
		Mainline:    moves,
		Themes:      Cook(pz),
		BlunderCP:   pz.BlunderCP,
		SolverWhite: pz.Pov == nchess.White,
	}
}
