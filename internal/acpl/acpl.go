// Package acpl classifies per-move centipawn loss and computes accuracy
// scores from engine evaluations. Evaluations are white-relative; mate
// scores are encoded as values beyond +-9000.
package acpl

import "math"

// Classification thresholds in centipawns of loss.
const (
	thresholdBest       = 0
	thresholdExcellent  = 10
	thresholdGood       = 50
	thresholdInaccuracy = 100
	thresholdMistake    = 200

	mateThreshold = 9000
	maxCPLoss     = 500
)

// Classifications counts verdicts across one game.
type Classifications struct {
	Best       uint32 `json:"best"`
	Excellent  uint32 `json:"excellent"`
	Good       uint32 `json:"good"`
	Inaccuracy uint32 `json:"inaccuracy"`
	Mistake    uint32 `json:"mistake"`
	Blunder    uint32 `json:"blunder"`
	Forced     uint32 `json:"forced"`
	Book       uint32 `json:"book"`
}

// Add counts one classification string.
func (c *Classifications) Add(class string) {
	switch class {
	case "best":
		c.Best++
	case "excellent":
		c.Excellent++
	case "good":
		c.Good++
	case "inaccuracy":
		c.Inaccuracy++
	case "mistake":
		c.Mistake++
	case "blunder":
		c.Blunder++
	case "forced":
		c.Forced++
	case "book":
		c.Book++
	}
}

// GameSummary accumulates per-move verdicts for one player in one game.
type GameSummary struct {
	Moves       uint32          `json:"moves"`
	TotalCPLoss int             `json:"total_cp_loss"`
	Counts      Classifications `json:"counts"`
}

// Record folds one move verdict into the summary.
func (s *GameSummary) Record(cpLoss int, class string) {
	s.Moves++
	s.TotalCPLoss += cpLoss
	s.Counts.Add(class)
}

// ACPL is the average centipawn loss so far.
func (s *GameSummary) ACPL() float64 {
	if s.Moves == 0 {
		return 0
	}
	return float64(s.TotalCPLoss) / float64(s.Moves)
}

// Accuracy is the 0-100 accuracy score for the recorded moves.
func (s *GameSummary) Accuracy() float64 {
	return Accuracy(s.TotalCPLoss, s.Moves)
}

func isMateScore(eval int) bool {
	if eval < 0 {
		eval = -eval
	}
	return eval > mateThreshold
}

// IsMateBlunder reports whether the played move threw away a forced mate
// or walked into one. Delivering the mate itself is never a blunder.
func IsMateBlunder(bestEval, afterEval int, isWhite, isCheckmate bool) bool {
	if isCheckmate {
		return false
	}

	bestIsMate := isMateScore(bestEval)
	afterIsMate := isMateScore(afterEval)

	if bestIsMate && !afterIsMate {
		return true
	}
	if !bestIsMate && afterIsMate {
		if isWhite {
			return afterEval < 0
		}
		return afterEval > 0
	}
	return false
}

// CPLoss computes the centipawn loss of the played move against the best
// line, capped at maxCPLoss. Staying inside the same forced mate costs
// nothing; flipping the mate to the other side costs the cap.
func CPLoss(bestEval, afterEval int, isWhite, isCheckmate bool) int {
	if isCheckmate {
		return 0
	}

	bestIsMate := isMateScore(bestEval)
	afterIsMate := isMateScore(afterEval)

	if bestIsMate && afterIsMate {
		if (bestEval > 0) == (afterEval > 0) {
			return 0
		}
		return maxCPLoss
	}

	loss := bestEval - afterEval
	if !isWhite {
		loss = afterEval - bestEval
	}
	if loss < 0 {
		loss = 0
	}
	if loss > maxCPLoss {
		loss = maxCPLoss
	}
	return loss
}

// Classify maps a centipawn loss to its verdict.
func Classify(cpLoss int, mateBlunder bool) string {
	switch {
	case mateBlunder:
		return "blunder"
	case cpLoss <= thresholdBest:
		return "best"
	case cpLoss < thresholdExcellent:
		return "excellent"
	case cpLoss < thresholdGood:
		return "good"
	case cpLoss < thresholdInaccuracy:
		return "inaccuracy"
	case cpLoss < thresholdMistake:
		return "mistake"
	default:
		return "blunder"
	}
}

// Accuracy converts a total centipawn loss over a move count into a 0-100
// score.
func Accuracy(totalCPLoss int, moveCount uint32) float64 {
	if moveCount == 0 {
		return 100.0
	}
	acpl := float64(totalCPLoss) / float64(moveCount)
	accuracy := 100.0 * math.Sqrt(1.0/(1.0+acpl/100.0))
	return math.Min(100.0, math.Max(0.0, accuracy))
}
