package analysis

import (
	nchess "github.com/corentings/chess/v2"

	"github.com/park285/chess-recap/internal/boardutil"
	"github.com/park285/chess-recap/internal/domain"
)

// queenSacrifice matches games where the subject's queen is captured and
// not answered by taking the opponent's queen on the very next subject
// move. Skipped when the subject was already up big material, counted only
// in wins.
type queenSacrifice struct {
	gameState
	queenLostPly int
}

func (*queenSacrifice) Name() string { return "queen_sacrifice" }

func (d *queenSacrifice) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
	d.queenLostPly = 0
}

func (d *queenSacrifice) ProcessMove(ctx *MoveContext) {
	if d.matched {
		return
	}
	if ctx.IsOpponentMove && ctx.CapturedPiece() == nchess.Queen {
		// Taking further queens while clearly ahead is not a sacrifice.
		if boardutil.MaterialBalance(ctx.Before.Board(), ctx.SubjectColor) >= 5 {
			return
		}
		d.queenLostPly = ctx.Ply
	}
	if ctx.IsSubjectMove && d.queenLostPly != 0 && ctx.Ply == d.queenLostPly+1 {
		if ctx.CapturedPiece() == nchess.Queen {
			// Queen trade, not a sacrifice.
			d.queenLostPly = 0
			return
		}
		d.matched = true
		d.queenLostPly = 0
	}
}

func (d *queenSacrifice) FinishGame() bool {
	// Queen lost on the final ply with no chance to answer counts too.
	if d.queenLostPly != 0 && !d.matched {
		d.matched = true
	}
	d.matched = d.matched && d.subjectWon()
	return d.commit()
}

// rookSacrifice matches a rook given up without an equal-value recapture on
// the subject's next move.
type rookSacrifice struct {
	gameState
	rookLostPly int
}

func (*rookSacrifice) Name() string { return "rook_sacrifice" }

func (d *rookSacrifice) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
	d.rookLostPly = 0
}

func (d *rookSacrifice) ProcessMove(ctx *MoveContext) {
	if d.matched {
		return
	}
	if ctx.IsOpponentMove && ctx.CapturedPiece() == nchess.Rook {
		d.rookLostPly = ctx.Ply
	}
	if ctx.IsSubjectMove && d.rookLostPly != 0 && ctx.Ply == d.rookLostPly+1 {
		if boardutil.PieceValue(ctx.CapturedPiece()) < 5 {
			d.matched = true
		}
		d.rookLostPly = 0
	}
}

func (d *rookSacrifice) FinishGame() bool {
	if d.rookLostPly != 0 && !d.matched {
		d.matched = true
	}
	return d.commit()
}

// knightFork matches a subject knight move that attacks the opponent king
// and a queen or rook at the same time.
type knightFork struct{ gameState }

func (*knightFork) Name() string { return "knight_fork" }

func (d *knightFork) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
}

func (d *knightFork) ProcessMove(ctx *MoveContext) {
	if d.matched || !ctx.IsSubjectMove || ctx.PieceMoved() != nchess.Knight {
		return
	}
	board := ctx.After().Board()
	attacks := boardutil.KnightAttacks(ctx.Move.S2())
	opp := boardutil.Opposite(ctx.SubjectColor)
	kingSq, ok := boardutil.KingSquare(board, opp)
	if !ok || !containsSquare(attacks, kingSq) {
		return
	}
	for _, sq := range attacks {
		p := board.Piece(sq)
		if p != nchess.NoPiece && p.Color() == opp &&
			(p.Type() == nchess.Queen || p.Type() == nchess.Rook) {
			d.matched = true
			return
		}
	}
}

func (d *knightFork) FinishGame() bool { return d.commit() }

func containsSquare(squares []nchess.Square, sq nchess.Square) bool {
	for _, s := range squares {
		if s == sq {
			return true
		}
	}
	return false
}

// hungQueen matches the subject capturing an opponent queen that no other
// opponent piece defended.
type hungQueen struct{ gameState }

func (*hungQueen) Name() string { return "hung_queen" }

func (d *hungQueen) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
}

func (d *hungQueen) ProcessMove(ctx *MoveContext) {
	if d.matched || !ctx.IsSubjectMove || ctx.CapturedPiece() != nchess.Queen {
		return
	}
	target := ctx.Move.S2()
	// Defenders are found on the position before the capture, where the
	// queen still occupies the target square and cannot defend itself.
	for _, sq := range boardutil.Attackers(ctx.Before.Board(), boardutil.Opposite(ctx.SubjectColor), target) {
		if sq != target {
			return
		}
	}
	d.matched = true
}

func (d *hungQueen) FinishGame() bool { return d.commit() }

// captureSequence matches three or more subject captures in a row.
// Opponent replies between them do not break the run.
type captureSequence struct {
	gameState
	run int
}

func (*captureSequence) Name() string { return "capture_sequence" }

func (d *captureSequence) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
	d.run = 0
}

func (d *captureSequence) ProcessMove(ctx *MoveContext) {
	if d.matched || !ctx.IsSubjectMove {
		return
	}
	if ctx.IsCapture() {
		d.run++
		if d.run >= 3 {
			d.matched = true
		}
	} else {
		d.run = 0
	}
}

func (d *captureSequence) FinishGame() bool { return d.commit() }

// windmill matches two or more consecutive discovered checks by the subject.
// A direct check keeps the streak alive without extending it; a quiet move
// resets it.
type windmill struct {
	gameState
	discoveredRun int
}

func (*windmill) Name() string { return "windmill" }

func (d *windmill) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
	d.discoveredRun = 0
}

func (d *windmill) ProcessMove(ctx *MoveContext) {
	if d.matched || !ctx.IsSubjectMove {
		return
	}
	if !ctx.GivesCheck() {
		d.discoveredRun = 0
		return
	}
	if isDiscoveredCheck(ctx) {
		d.discoveredRun++
		if d.discoveredRun >= 2 {
			d.matched = true
		}
	}
}

// isDiscoveredCheck reports whether the checking piece is not the one that
// moved. Promotions check with the promoted piece, castles never discover.
func isDiscoveredCheck(ctx *MoveContext) bool {
	if ctx.Kind() == MoveCastle {
		return false
	}
	board := ctx.After().Board()
	kingSq, ok := boardutil.KingSquare(board, boardutil.Opposite(ctx.SubjectColor))
	if !ok {
		return false
	}
	moved := ctx.PieceMoved()
	if promo := ctx.Move.Promo(); promo != nchess.NoPieceType {
		moved = promo
	}
	return !boardutil.Attacks(board, moved, ctx.SubjectColor, ctx.Move.S2(), kingSq)
}

func (d *windmill) FinishGame() bool { return d.commit() }

// kingWalk matches won games where the subject king strays five or more
// squares from its starting square.
type kingWalk struct {
	gameState
	maxDistance int
}

func (*kingWalk) Name() string { return "king_walk" }

func (d *kingWalk) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
	d.maxDistance = 0
}

func (d *kingWalk) ProcessMove(ctx *MoveContext) {
	if !ctx.IsSubjectMove {
		return
	}
	var dest nchess.Square
	switch {
	case ctx.Kind() == MoveCastle:
		sq, ok := boardutil.KingSquare(ctx.After().Board(), ctx.SubjectColor)
		if !ok {
			return
		}
		dest = sq
	case ctx.PieceMoved() == nchess.King:
		dest = ctx.Move.S2()
	default:
		return
	}
	start := nchess.E1
	if ctx.SubjectColor == nchess.Black {
		start = nchess.E8
	}
	if dist := boardutil.Chebyshev(start, dest); dist > d.maxDistance {
		d.maxDistance = dist
	}
}

func (d *kingWalk) FinishGame() bool {
	d.matched = d.maxDistance >= 5
	return d.commit()
}
