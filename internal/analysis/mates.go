package analysis

import (
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/chess-recap/internal/boardutil"
	"github.com/park285/chess-recap/internal/domain"
)

// subjectMates reports whether the subject's move ends the game in checkmate.
func subjectMates(ctx *MoveContext) bool {
	return ctx.IsSubjectMove && ctx.After().Status() == nchess.Checkmate
}

// backRankMate matches checkmates delivered while the losing king sits on
// its own back rank.
type backRankMate struct{ gameState }

func (*backRankMate) Name() string { return "back_rank_mate" }

func (d *backRankMate) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
}

func (d *backRankMate) ProcessMove(ctx *MoveContext) {
	if d.matched || !subjectMates(ctx) {
		return
	}
	kingSq, ok := boardutil.KingSquare(ctx.After().Board(), d.opponentColor())
	if ok && kingSq.Rank() == boardutil.BackRank(d.opponentColor()) {
		d.matched = true
	}
}

func (d *backRankMate) FinishGame() bool { return d.commit() }

// smotheredMate matches knight checkmates against a king fully boxed in by
// its own pieces.
type smotheredMate struct{ gameState }

func (*smotheredMate) Name() string { return "smothered_mate" }

func (d *smotheredMate) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
}

func (d *smotheredMate) ProcessMove(ctx *MoveContext) {
	if d.matched || !subjectMates(ctx) || ctx.PieceMoved() != nchess.Knight {
		return
	}
	board := ctx.After().Board()
	kingSq, ok := boardutil.KingSquare(board, d.opponentColor())
	if !ok {
		return
	}
	neighbors := boardutil.KingNeighbors(kingSq)
	if len(neighbors) == 0 {
		return
	}
	for _, sq := range neighbors {
		p := board.Piece(sq)
		if p == nchess.NoPiece || p.Color() != d.opponentColor() {
			return
		}
	}
	d.matched = true
}

func (d *smotheredMate) FinishGame() bool { return d.commit() }

// kingMate matches won games whose final move is a checkmating king move.
type kingMate struct {
	gameState
	lastKingMate bool
}

func (*kingMate) Name() string { return "king_mate" }

func (d *kingMate) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
	d.lastKingMate = false
}

func (d *kingMate) ProcessMove(ctx *MoveContext) {
	if !ctx.IsSubjectMove {
		return
	}
	d.lastKingMate = strings.HasPrefix(ctx.SAN, "K") && strings.Contains(ctx.SAN, "#")
}

func (d *kingMate) FinishGame() bool {
	d.matched = d.lastKingMate && d.subjectWon()
	return d.commit()
}

// castleMate matches checkmate delivered by the castling move itself.
type castleMate struct{ gameState }

func (*castleMate) Name() string { return "castle_mate" }

func (d *castleMate) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
}

func (d *castleMate) ProcessMove(ctx *MoveContext) {
	if d.matched || ctx.Kind() != MoveCastle {
		return
	}
	if subjectMates(ctx) {
		d.matched = true
	}
}

func (d *castleMate) FinishGame() bool { return d.commit() }

// pawnMate matches checkmate by a pawn move that is not a promotion.
type pawnMate struct{ gameState }

func (*pawnMate) Name() string { return "pawn_mate" }

func (d *pawnMate) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
}

func (d *pawnMate) ProcessMove(ctx *MoveContext) {
	if d.matched || ctx.PieceMoved() != nchess.Pawn || ctx.Move.Promo() != nchess.NoPieceType {
		return
	}
	if subjectMates(ctx) {
		d.matched = true
	}
}

func (d *pawnMate) FinishGame() bool { return d.commit() }

// promotionMate matches checkmate delivered by a promoting move.
type promotionMate struct{ gameState }

func (*promotionMate) Name() string { return "promotion_mate" }

func (d *promotionMate) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
}

func (d *promotionMate) ProcessMove(ctx *MoveContext) {
	if d.matched || ctx.Move.Promo() == nchess.NoPieceType {
		return
	}
	if subjectMates(ctx) {
		d.matched = true
	}
}

func (d *promotionMate) FinishGame() bool { return d.commit() }

// knightPromotionMate matches checkmate delivered by promoting to a knight.
type knightPromotionMate struct{ gameState }

func (*knightPromotionMate) Name() string { return "knight_promotion_mate" }

func (d *knightPromotionMate) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
}

func (d *knightPromotionMate) ProcessMove(ctx *MoveContext) {
	if d.matched || ctx.Move.Promo() != nchess.Knight {
		return
	}
	if subjectMates(ctx) {
		d.matched = true
	}
}

func (d *knightPromotionMate) FinishGame() bool { return d.commit() }

// enPassantMate matches checkmate delivered by an en passant capture.
type enPassantMate struct{ gameState }

func (*enPassantMate) Name() string { return "en_passant_mate" }

func (d *enPassantMate) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
}

func (d *enPassantMate) ProcessMove(ctx *MoveContext) {
	if d.matched || ctx.Kind() != MoveEnPassant {
		return
	}
	if subjectMates(ctx) {
		d.matched = true
	}
}

func (d *enPassantMate) FinishGame() bool { return d.commit() }

// knightBishopMate matches checkmates where a subject knight and bishop
// both bear on the mated king's area.
type knightBishopMate struct{ gameState }

func (*knightBishopMate) Name() string { return "knight_bishop_mate" }

func (d *knightBishopMate) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
}

func (d *knightBishopMate) ProcessMove(ctx *MoveContext) {
	if d.matched || !subjectMates(ctx) {
		return
	}
	board := ctx.After().Board()
	kingSq, ok := boardutil.KingSquare(board, d.opponentColor())
	if !ok {
		return
	}
	area := append(boardutil.KingNeighbors(kingSq), kingSq)
	var knightHits, bishopHits bool
	for sq, p := range board.SquareMap() {
		if p.Color() != d.subjectColor() {
			continue
		}
		switch p.Type() {
		case nchess.Knight:
			if !knightHits && attacksAny(board, nchess.Knight, d.subjectColor(), sq, area) {
				knightHits = true
			}
		case nchess.Bishop:
			if !bishopHits && attacksAny(board, nchess.Bishop, d.subjectColor(), sq, area) {
				bishopHits = true
			}
		}
	}
	if knightHits && bishopHits {
		d.matched = true
	}
}

func attacksAny(board *nchess.Board, pt nchess.PieceType, c nchess.Color, from nchess.Square, targets []nchess.Square) bool {
	for _, t := range targets {
		if boardutil.Attacks(board, pt, c, from, t) {
			return true
		}
	}
	return false
}

func (d *knightBishopMate) FinishGame() bool { return d.commit() }

// stalemateGame matches games ending in stalemate.
type stalemateGame struct {
	gameState
	lastCtx *MoveContext
}

func (*stalemateGame) Name() string { return "stalemate" }

func (d *stalemateGame) StartGame(rec *domain.GameRecord, subjectWhite bool) {
	d.reset(rec, subjectWhite)
	d.lastCtx = nil
}

func (d *stalemateGame) ProcessMove(ctx *MoveContext) {
	d.lastCtx = ctx
}

func (d *stalemateGame) FinishGame() bool {
	d.matched = d.lastCtx != nil && d.lastCtx.After().Status() == nchess.Stalemate
	return d.commit()
}
