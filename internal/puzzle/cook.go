package puzzle

import (
	"fmt"
	"sort"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/chess-recap/internal/boardutil"
)

// Theme labels, lichess-style camelCase.
const (
	ThemeMate             = "mate"
	ThemeCrushing         = "crushing"
	ThemeAdvantage        = "advantage"
	ThemeEquality         = "equality"
	ThemeDoubleCheck      = "doubleCheck"
	ThemeEnPassant        = "enPassant"
	ThemeCastling         = "castling"
	ThemePromotion        = "promotion"
	ThemeUnderPromotion   = "underPromotion"
	ThemeAdvancedPawn     = "advancedPawn"
	ThemeDefensiveMove    = "defensiveMove"
	ThemeSacrifice        = "sacrifice"
	ThemeQueenSacrifice   = "queenSacrifice"
	ThemeRookSacrifice    = "rookSacrifice"
	ThemeBishopSacrifice  = "bishopSacrifice"
	ThemeKnightSacrifice  = "knightSacrifice"
	ThemeExposedKing      = "exposedKing"
	ThemeSmotheredMate    = "smotheredMate"
	ThemeBackRankMate     = "backRankMate"
	ThemeAnastasiaMate    = "anastasiaMate"
	ThemeHookMate         = "hookMate"
	ThemeArabianMate      = "arabianMate"
	ThemeBodenMate        = "bodenMate"
	ThemeDoubleBishopMate = "doubleBishopMate"
	ThemeDovetailMate     = "dovetailMate"
	ThemePawnEndgame      = "pawnEndgame"
	ThemeQueenEndgame     = "queenEndgame"
	ThemeRookEndgame      = "rookEndgame"
	ThemeBishopEndgame    = "bishopEndgame"
	ThemeKnightEndgame    = "knightEndgame"
	ThemeQueenRookEndgame = "queenRookEndgame"
	ThemeKingsideAttack   = "kingsideAttack"
	ThemeQueensideAttack  = "queensideAttack"
	ThemeOneMove          = "oneMove"
	ThemeShort            = "short"
	ThemeLong             = "long"
	ThemeVeryLong         = "veryLong"
)

// Cook classifies a puzzle and returns its theme tags in a stable order.
func Cook(p *Puzzle) []string {
	var tags []string

	if mateTag, ok := mateIn(p); ok {
		tags = append(tags, mateTag, ThemeMate)
		switch {
		case smotheredMate(p):
			tags = append(tags, ThemeSmotheredMate)
		case backRankMate(p):
			tags = append(tags, ThemeBackRankMate)
		case anastasiaMate(p):
			tags = append(tags, ThemeAnastasiaMate)
		case hookMate(p):
			tags = append(tags, ThemeHookMate)
		case arabianMate(p):
			tags = append(tags, ThemeArabianMate)
		default:
			if bishopTag, ok := bodenOrDoubleBishopMate(p); ok {
				tags = append(tags, bishopTag)
			} else if dovetailMate(p) {
				tags = append(tags, ThemeDovetailMate)
			}
		}
	} else if p.CP > 600 {
		tags = append(tags, ThemeCrushing)
	} else if p.CP > 200 {
		tags = append(tags, ThemeAdvantage)
	} else {
		tags = append(tags, ThemeEquality)
	}

	if advancedPawn(p) {
		tags = append(tags, ThemeAdvancedPawn)
	}
	if doubleCheck(p) {
		tags = append(tags, ThemeDoubleCheck)
	}
	if checkEscape(p) {
		tags = append(tags, ThemeDefensiveMove)
	}
	if pt, ok := sacrifice(p); ok {
		tags = append(tags, ThemeSacrifice)
		switch pt {
		case nchess.Queen:
			tags = append(tags, ThemeQueenSacrifice)
		case nchess.Rook:
			tags = append(tags, ThemeRookSacrifice)
		case nchess.Bishop:
			tags = append(tags, ThemeBishopSacrifice)
		case nchess.Knight:
			tags = append(tags, ThemeKnightSacrifice)
		}
	}
	if exposedKing(p) {
		tags = append(tags, ThemeExposedKing)
	}
	if anySolver(p, func(n *Node) bool { return n.Move.HasTag(nchess.EnPassant) }) {
		tags = append(tags, ThemeEnPassant)
	}
	if anySolver(p, isCastle) {
		tags = append(tags, ThemeCastling)
	}
	if anySolver(p, func(n *Node) bool { return n.Move.Promo() != nchess.NoPieceType }) {
		tags = append(tags, ThemePromotion)
	}
	if underPromotion(p) {
		tags = append(tags, ThemeUnderPromotion)
	}

	switch {
	case pieceEndgame(p, nchess.Pawn):
		tags = append(tags, ThemePawnEndgame)
	case pieceEndgame(p, nchess.Queen):
		tags = append(tags, ThemeQueenEndgame)
	case pieceEndgame(p, nchess.Rook):
		tags = append(tags, ThemeRookEndgame)
	case pieceEndgame(p, nchess.Bishop):
		tags = append(tags, ThemeBishopEndgame)
	case pieceEndgame(p, nchess.Knight):
		tags = append(tags, ThemeKnightEndgame)
	case queenRookEndgame(p):
		tags = append(tags, ThemeQueenRookEndgame)
	}

	if !contains(tags, ThemeBackRankMate) {
		switch {
		case kingsideAttack(p):
			tags = append(tags, ThemeKingsideAttack)
		case queensideAttack(p):
			tags = append(tags, ThemeQueensideAttack)
		}
	}

	switch n := len(p.Mainline); {
	case n == 2:
		tags = append(tags, ThemeOneMove)
	case n == 4:
		tags = append(tags, ThemeShort)
	case n >= 8:
		tags = append(tags, ThemeVeryLong)
	default:
		tags = append(tags, ThemeLong)
	}

	return tags
}

func contains(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func anySolver(p *Puzzle, pred func(*Node) bool) bool {
	for _, n := range p.SolverNodes() {
		if pred(n) {
			return true
		}
	}
	return false
}

func isCastle(n *Node) bool {
	return n.Move.HasTag(nchess.KingSideCastle) || n.Move.HasTag(nchess.QueenSideCastle)
}

// checkers returns the squares of pov pieces giving check in pos.
func checkers(pos *nchess.Position, pov nchess.Color) []nchess.Square {
	kingSq, ok := boardutil.KingSquare(pos.Board(), boardutil.Opposite(pov))
	if !ok {
		return nil
	}
	return boardutil.Attackers(pos.Board(), pov, kingSq)
}

// mateIn reports how many solver moves the mate takes. A truncated line
// with a forced-mate evaluation (cp >= 9900) is decoded from the score.
func mateIn(p *Puzzle) (string, bool) {
	var movesToMate int
	switch {
	case p.End().Status() == nchess.Checkmate:
		movesToMate = len(p.Mainline) / 2
	case p.CP >= 9900:
		movesToMate = (10000 - p.CP) / 10
	default:
		return "", false
	}

	switch {
	case movesToMate == 0:
		return "", false
	case movesToMate <= 4:
		return fmt.Sprintf("mateIn%d", movesToMate), true
	default:
		return "mateIn5", true
	}
}

func doubleCheck(p *Puzzle) bool {
	return anySolver(p, func(n *Node) bool {
		return len(checkers(n.After(), p.Pov)) > 1
	})
}

func underPromotion(p *Puzzle) bool {
	for _, n := range p.SolverNodes() {
		promo := n.Move.Promo()
		if promo == nchess.NoPieceType {
			continue
		}
		if n.After().Status() == nchess.Checkmate {
			return promo != nchess.Queen
		}
		if promo != nchess.Queen {
			return true
		}
	}
	return false
}

// advancedPawn matches a solver pawn reaching the seventh or eighth
// relative rank.
func advancedPawn(p *Puzzle) bool {
	return anySolver(p, func(n *Node) bool {
		if n.Before.Board().Piece(n.Move.S1()).Type() != nchess.Pawn {
			return false
		}
		rank := int(n.Move.S2().Rank())
		if p.Pov == nchess.Black {
			rank = 7 - rank
		}
		return rank >= 6
	})
}

// checkEscape matches a quiet solver move out of check with real choice:
// at least three legal moves, no capture, no counter-check.
func checkEscape(p *Puzzle) bool {
	for _, n := range p.SolverNodes() {
		if len(checkers(n.After(), p.Pov)) > 0 {
			return false
		}
		if n.Before.Board().Piece(n.Move.S2()) != nchess.NoPiece {
			return false
		}
		if len(n.Before.ValidMoves()) < 3 {
			return false
		}
		if len(checkers(n.Before, boardutil.Opposite(p.Pov))) > 0 {
			return true
		}
	}
	return false
}

// sacrifice matches the solver ending down two or more points of material
// against the post-mistake baseline, and reports the class of the piece
// given up. Lines where the opponent promotes later are excluded, and the
// first solver move of a longer line is given a pass.
func sacrifice(p *Puzzle) (nchess.PieceType, bool) {
	initial := boardutil.MaterialBalance(p.Mainline[0].After().Board(), p.Pov)

	solver := p.SolverNodes()
	diffs := make([]int, len(solver))
	for i, n := range solver {
		diffs[i] = boardutil.MaterialBalance(n.After().Board(), p.Pov)
	}
	check := diffs
	if len(diffs) > 1 {
		check = diffs[1:]
	}

	for _, d := range check {
		if d-initial > -2 {
			continue
		}
		for i := 2; i < len(p.Mainline); i += 2 {
			if p.Mainline[i].Move.Promo() != nchess.NoPieceType {
				return nchess.NoPieceType, false
			}
		}
		return sacrificedPiece(p), true
	}
	return nchess.NoPieceType, false
}

// sacrificedPiece is the most valuable solver piece the opponent captured
// during the line.
func sacrificedPiece(p *Puzzle) nchess.PieceType {
	best := nchess.NoPieceType
	bestValue := 0
	for i := 2; i < len(p.Mainline); i += 2 {
		n := &p.Mainline[i]
		pc := n.Before.Board().Piece(n.Move.S2())
		if pc == nchess.NoPiece || pc.Color() != p.Pov {
			continue
		}
		if v := boardutil.PieceValue(pc.Type()); v > bestValue {
			best = pc.Type()
			bestValue = v
		}
	}
	return best
}

// exposedKing matches a mid-board king with no pawn shelter getting
// checked in the middle of the line.
func exposedKing(p *Puzzle) bool {
	board := p.Mainline[0].After().Board()
	opp := boardutil.Opposite(p.Pov)
	kingSq, ok := boardutil.KingSquare(board, opp)
	if !ok {
		return false
	}
	kingRank := int(kingSq.Rank())
	effective := kingRank
	if p.Pov == nchess.Black {
		effective = 7 - kingRank
	}
	if effective < 5 {
		return false
	}

	frontRank := kingRank - 1
	if p.Pov == nchess.Black {
		frontRank = kingRank + 1
	}
	if frontRank < 0 || frontRank > 7 {
		return false
	}

	kingFile := int(kingSq.File())
	for df := -1; df <= 1; df++ {
		f := kingFile + df
		if f < 0 || f > 7 {
			continue
		}
		if hasPawnOf(board, opp, f, frontRank) {
			return false
		}
		if df != 0 && hasPawnOf(board, opp, f, kingRank) {
			return false
		}
	}

	solver := p.SolverNodes()
	if len(solver) < 3 {
		return false
	}
	for _, n := range solver[1 : len(solver)-1] {
		if len(checkers(n.After(), p.Pov)) > 0 {
			return true
		}
	}
	return false
}

func hasPawnOf(board *nchess.Board, c nchess.Color, file, rank int) bool {
	sq := nchess.NewSquare(nchess.File(file), nchess.Rank(rank))
	pc := board.Piece(sq)
	return pc != nchess.NoPiece && pc.Type() == nchess.Pawn && pc.Color() == c
}

// pieceEndgame reports an endgame of kings, pawns, and a single piece type
// present on the board in the opening two positions of the line.
func pieceEndgame(p *Puzzle, pt nchess.PieceType) bool {
	limit := 2
	if len(p.Mainline) < limit {
		limit = len(p.Mainline)
	}
	for i := 0; i < limit; i++ {
		board := p.Mainline[i].After().Board()
		var whiteHas, blackHas bool
		for _, piece := range board.SquareMap() {
			switch piece.Type() {
			case nchess.King, nchess.Pawn:
			case pt:
				if piece.Color() == nchess.White {
					whiteHas = true
				} else {
					blackHas = true
				}
			default:
				return false
			}
		}
		if !whiteHas && !blackHas {
			return false
		}
	}
	return true
}

// queenRookEndgame reports exactly one queen plus at least one rook with
// no minor pieces.
func queenRookEndgame(p *Puzzle) bool {
	limit := 2
	if len(p.Mainline) < limit {
		limit = len(p.Mainline)
	}
	for i := 0; i < limit; i++ {
		board := p.Mainline[i].After().Board()
		queens, rooks := 0, 0
		for _, piece := range board.SquareMap() {
			switch piece.Type() {
			case nchess.Queen:
				queens++
			case nchess.Rook:
				rooks++
			case nchess.King, nchess.Pawn:
			default:
				return false
			}
		}
		if queens != 1 || rooks == 0 {
			return false
		}
	}
	return true
}

// smotheredMate matches a knight mate against a fully self-blocked king.
func smotheredMate(p *Puzzle) bool {
	end := p.End()
	if end.Status() != nchess.Checkmate {
		return false
	}
	board := end.Board()
	opp := boardutil.Opposite(p.Pov)
	kingSq, ok := boardutil.KingSquare(board, opp)
	if !ok {
		return false
	}
	for _, checkerSq := range checkers(end, p.Pov) {
		if board.Piece(checkerSq).Type() != nchess.Knight {
			continue
		}
		smothered := true
		for _, sq := range boardutil.KingNeighbors(kingSq) {
			pc := board.Piece(sq)
			if pc == nchess.NoPiece || pc.Color() == p.Pov {
				smothered = false
				break
			}
		}
		if smothered {
			return true
		}
	}
	return false
}

// backRankMate matches a mate along the defender's back rank with the
// escape squares blocked by the defender's own pieces.
func backRankMate(p *Puzzle) bool {
	end := p.End()
	if end.Status() != nchess.Checkmate {
		return false
	}
	board := end.Board()
	opp := boardutil.Opposite(p.Pov)
	kingSq, ok := boardutil.KingSquare(board, opp)
	if !ok {
		return false
	}

	backRank := 7
	frontRank := 6
	if p.Pov == nchess.Black {
		backRank, frontRank = 0, 1
	}
	if int(kingSq.Rank()) != backRank {
		return false
	}

	kingFile := int(kingSq.File())
	for df := -1; df <= 1; df++ {
		f := kingFile + df
		if f < 0 || f > 7 {
			continue
		}
		sq := nchess.NewSquare(nchess.File(f), nchess.Rank(frontRank))
		pc := board.Piece(sq)
		if pc == nchess.NoPiece || pc.Color() == p.Pov {
			return false
		}
		if len(boardutil.Attackers(board, p.Pov, sq)) > 0 {
			return false
		}
	}

	for _, checkerSq := range checkers(end, p.Pov) {
		if int(checkerSq.Rank()) == backRank {
			return true
		}
	}
	return false
}

// anastasiaMate matches a rook or queen mating down the edge file with a
// knight covering the escape squares and a defender piece boxing the king.
func anastasiaMate(p *Puzzle) bool {
	end := p.End()
	if end.Status() != nchess.Checkmate {
		return false
	}
	board := end.Board()
	kingSq, ok := boardutil.KingSquare(board, boardutil.Opposite(p.Pov))
	if !ok {
		return false
	}
	kingFile, kingRank := int(kingSq.File()), int(kingSq.Rank())
	if (kingFile != 0 && kingFile != 7) || kingRank == 0 || kingRank == 7 {
		return false
	}

	last := &p.Mainline[len(p.Mainline)-1]
	moved := board.Piece(last.Move.S2())
	if moved.Type() != nchess.Rook && moved.Type() != nchess.Queen {
		return false
	}
	if int(last.Move.S2().File()) != kingFile {
		return false
	}

	innerFile := 1
	knightFile := 3
	if kingFile == 7 {
		innerFile, knightFile = 6, 4
	}
	blocker := board.Piece(nchess.NewSquare(nchess.File(innerFile), nchess.Rank(kingRank)))
	if blocker == nchess.NoPiece || blocker.Color() == p.Pov {
		return false
	}
	knight := board.Piece(nchess.NewSquare(nchess.File(knightFile), nchess.Rank(kingRank)))
	return knight != nchess.NoPiece && knight.Type() == nchess.Knight && knight.Color() == p.Pov
}

// hookMate matches a rook mating next to the king, defended by a knight
// that a pawn defends in turn.
func hookMate(p *Puzzle) bool {
	end := p.End()
	if end.Status() != nchess.Checkmate {
		return false
	}
	board := end.Board()
	kingSq, ok := boardutil.KingSquare(board, boardutil.Opposite(p.Pov))
	if !ok {
		return false
	}

	rookSq := p.Mainline[len(p.Mainline)-1].Move.S2()
	if board.Piece(rookSq).Type() != nchess.Rook {
		return false
	}
	if boardutil.Chebyshev(rookSq, kingSq) != 1 {
		return false
	}

	for _, defSq := range boardutil.Attackers(board, p.Pov, rookSq) {
		if board.Piece(defSq).Type() != nchess.Knight || boardutil.Chebyshev(defSq, kingSq) != 1 {
			continue
		}
		for _, pawnSq := range boardutil.Attackers(board, p.Pov, defSq) {
			if board.Piece(pawnSq).Type() == nchess.Pawn {
				return true
			}
		}
	}
	return false
}

// arabianMate matches a rook mating the cornered king with a knight on the
// long diagonal two squares out.
func arabianMate(p *Puzzle) bool {
	end := p.End()
	if end.Status() != nchess.Checkmate {
		return false
	}
	board := end.Board()
	kingSq, ok := boardutil.KingSquare(board, boardutil.Opposite(p.Pov))
	if !ok {
		return false
	}
	kingFile, kingRank := int(kingSq.File()), int(kingSq.Rank())
	if (kingFile != 0 && kingFile != 7) || (kingRank != 0 && kingRank != 7) {
		return false
	}

	rookSq := p.Mainline[len(p.Mainline)-1].Move.S2()
	if board.Piece(rookSq).Type() != nchess.Rook {
		return false
	}
	if boardutil.Chebyshev(rookSq, kingSq) != 1 {
		return false
	}

	for _, knightSq := range boardutil.Attackers(board, p.Pov, rookSq) {
		if board.Piece(knightSq).Type() != nchess.Knight {
			continue
		}
		rankDiff := int(knightSq.Rank()) - kingRank
		fileDiff := int(knightSq.File()) - kingFile
		if rankDiff < 0 {
			rankDiff = -rankDiff
		}
		if fileDiff < 0 {
			fileDiff = -fileDiff
		}
		if rankDiff == 2 && fileDiff == 2 {
			return true
		}
	}
	return false
}

// bodenOrDoubleBishopMate matches a mate where only bishops attack the
// king's area: bishops criss-crossing the king is Boden's mate, both on the
// same side is a double bishop mate.
func bodenOrDoubleBishopMate(p *Puzzle) (string, bool) {
	end := p.End()
	if end.Status() != nchess.Checkmate {
		return "", false
	}
	board := end.Board()
	kingSq, ok := boardutil.KingSquare(board, boardutil.Opposite(p.Pov))
	if !ok {
		return "", false
	}

	var bishops []nchess.Square
	for sq, pc := range board.SquareMap() {
		if pc.Type() == nchess.Bishop && pc.Color() == p.Pov {
			bishops = append(bishops, sq)
		}
	}
	if len(bishops) < 2 {
		return "", false
	}

	zone := append(boardutil.KingNeighbors(kingSq), kingSq)
	for _, sq := range zone {
		for _, atkSq := range boardutil.Attackers(board, p.Pov, sq) {
			if board.Piece(atkSq).Type() != nchess.Bishop {
				return "", false
			}
		}
	}

	sort.Slice(bishops, func(i, j int) bool { return bishops[i] < bishops[j] })
	kingFile := int(kingSq.File())
	b0, b1 := int(bishops[0].File()), int(bishops[1].File())
	if (b0 < kingFile) == (b1 > kingFile) {
		return ThemeBodenMate, true
	}
	return ThemeDoubleBishopMate, true
}

// dovetailMate matches a queen mating diagonally adjacent to a mid-board
// king whose remaining escape squares are all blocked by its own pieces.
func dovetailMate(p *Puzzle) bool {
	end := p.End()
	if end.Status() != nchess.Checkmate {
		return false
	}
	board := end.Board()
	kingSq, ok := boardutil.KingSquare(board, boardutil.Opposite(p.Pov))
	if !ok {
		return false
	}
	kingFile, kingRank := int(kingSq.File()), int(kingSq.Rank())
	if kingFile == 0 || kingFile == 7 || kingRank == 0 || kingRank == 7 {
		return false
	}

	queenSq := p.Mainline[len(p.Mainline)-1].Move.S2()
	if board.Piece(queenSq).Type() != nchess.Queen {
		return false
	}
	if int(queenSq.File()) == kingFile || int(queenSq.Rank()) == kingRank {
		return false
	}
	if boardutil.Chebyshev(queenSq, kingSq) > 1 {
		return false
	}

	for _, adj := range boardutil.KingNeighbors(kingSq) {
		if adj == queenSq {
			continue
		}
		attackers := boardutil.Attackers(board, p.Pov, adj)
		switch {
		case len(attackers) == 1 && attackers[0] == queenSq:
			// The queen alone covers an empty escape square.
			if board.Piece(adj) != nchess.NoPiece {
				return false
			}
		case len(attackers) > 0:
			return false
		}
	}
	return true
}
