// Package analysis replays recorded games once and evaluates a catalog of
// independent pattern detectors over the shared move stream.
package analysis

import (
	nchess "github.com/corentings/chess/v2"

	"github.com/park285/chess-recap/internal/boardutil"
	"github.com/park285/chess-recap/internal/domain"
)

// MoveKind is the explicit move classification detectors branch on.
type MoveKind int

const (
	MoveQuiet MoveKind = iota
	MoveCapture
	MoveEnPassant
	MoveCastle
	MovePromotion // may also capture
)

// MoveContext packages the per-ply facts shared by every detector. It is
// built once per ply and must be treated as read-only.
type MoveContext struct {
	Move           *nchess.Move
	Ply            int // 1-indexed half-move number
	Before         *nchess.Position
	SAN            string
	IsSubjectMove  bool
	IsOpponentMove bool
	SubjectColor   nchess.Color
	Game           *domain.GameRecord

	after *nchess.Position
}

// After returns the position with the move applied, computed lazily and
// shared by all detectors for this ply.
func (c *MoveContext) After() *nchess.Position {
	if c.after == nil {
		c.after = c.Before.Update(c.Move)
	}
	return c.after
}

// Kind classifies the move. Promotion wins over capture so that detectors
// treating promotions specially see them first; use IsCapture for the
// capture fact itself.
func (c *MoveContext) Kind() MoveKind {
	switch {
	case c.Move.HasTag(nchess.KingSideCastle) || c.Move.HasTag(nchess.QueenSideCastle):
		return MoveCastle
	case c.Move.HasTag(nchess.EnPassant):
		return MoveEnPassant
	case c.Move.Promo() != nchess.NoPieceType:
		return MovePromotion
	case c.Move.HasTag(nchess.Capture):
		return MoveCapture
	default:
		return MoveQuiet
	}
}

// PieceMoved returns the type of the piece being moved.
func (c *MoveContext) PieceMoved() nchess.PieceType {
	return c.Before.Board().Piece(c.Move.S1()).Type()
}

// IsCapture reports whether the move takes a piece, en passant included.
func (c *MoveContext) IsCapture() bool {
	return c.Move.HasTag(nchess.Capture) || c.Move.HasTag(nchess.EnPassant)
}

// CapturedPiece returns the type of the captured piece, or NoPieceType for
// non-captures. En passant always captures a pawn.
func (c *MoveContext) CapturedPiece() nchess.PieceType {
	if c.Move.HasTag(nchess.EnPassant) {
		return nchess.Pawn
	}
	if c.Move.HasTag(nchess.Capture) {
		return c.Before.Board().Piece(c.Move.S2()).Type()
	}
	return nchess.NoPieceType
}

// GivesCheck reports whether the move checks the opponent king.
func (c *MoveContext) GivesCheck() bool {
	return c.Move.HasTag(nchess.Check)
}

// Detector is the uniform contract every pattern detector implements.
// Lifecycle per game: StartGame, ProcessMove for each ply in ascending
// order, FinishGame. State between StartGame and FinishGame is scoped to
// that single game; MatchedLinks accumulates across the whole batch.
type Detector interface {
	// Name is the stable tag key for this detector.
	Name() string
	// StartGame resets per-game state and records subject color.
	StartGame(rec *domain.GameRecord, subjectWhite bool)
	// ProcessMove observes one ply. No externally visible effect.
	ProcessMove(ctx *MoveContext)
	// FinishGame reports whether the game matched and commits it.
	FinishGame() bool
	// MatchedLinks returns the identifiers of all games matched so far in
	// the batch. Superlative detectors return only the current winner.
	MatchedLinks() []string
}

// gameState is the per-game bookkeeping shared by all detectors.
type gameState struct {
	link         string
	result       string
	subjectWhite bool
	matched      bool
	links        []string
}

func (s *gameState) reset(rec *domain.GameRecord, subjectWhite bool) {
	s.link = rec.Link
	s.result = rec.Result
	s.subjectWhite = subjectWhite
	s.matched = false
}

func (s *gameState) subjectColor() nchess.Color {
	if s.subjectWhite {
		return nchess.White
	}
	return nchess.Black
}

func (s *gameState) opponentColor() nchess.Color {
	return boardutil.Opposite(s.subjectColor())
}

func (s *gameState) subjectWon() bool {
	return (s.result == "1-0" && s.subjectWhite) || (s.result == "0-1" && !s.subjectWhite)
}

// commit is the default FinishGame: record the link when matched.
func (s *gameState) commit() bool {
	if s.matched && s.link != "" {
		s.links = append(s.links, s.link)
	}
	return s.matched
}

func (s *gameState) MatchedLinks() []string {
	return append([]string(nil), s.links...)
}

// NewDetectors builds the full detector catalog for one batch run.
func NewDetectors() []Detector {
	return []Detector{
		&queenSacrifice{},
		&knightFork{},
		&rookSacrifice{},
		&backRankMate{},
		&smotheredMate{},
		&kingMate{},
		&castleMate{},
		&pawnMate{},
		&knightPromotionMate{},
		&promotionMate{},
		&quickestMate{},
		&enPassantMate{},
		&knightBishopMate{},
		&kingWalk{},
		&biggestComeback{},
		&clutchWin{},
		&bestGame{},
		&longestGame{},
		&hungQueen{},
		&captureSequence{},
		&stalemateGame{},
		&windmill{},
	}
}
