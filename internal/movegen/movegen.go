/*
 * Corvid - a UCI and XBoard/CECP chess engine
 *
 * MIT License
 *
 * Copyright (c) 2026 The Corvid Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package movegen generates pseudo-legal moves for a Board. Legality with
// respect to king safety is not checked here - make() on the Board rejects
// moves that leave the mover's own king attacked. Every generator call takes
// a Filter (All, Captures or Quiet) so search can ask for exactly the moves
// it needs at a given node (full width at interior nodes, captures only in
// quiescence).
package movegen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/op/go-logging"

	"github.com/corvidchess/corvid/internal/board"
	"github.com/corvidchess/corvid/internal/history"
	myLogging "github.com/corvidchess/corvid/internal/logging"
	"github.com/corvidchess/corvid/internal/moveslice"
	. "github.com/corvidchess/corvid/internal/types"
)

var log *logging.Logger

// Filter selects which subset of pseudo-legal moves a generator call
// produces. Captures and Quiet are independent bits so All == Captures|Quiet.
type Filter int

const (
	// Quiet selects non-capturing moves (including quiet promotions and castling).
	Quiet Filter = 0b10
	// Captures selects capturing moves (including en-passant and capture promotions).
	Captures Filter = 0b01
	// All selects every pseudo-legal move.
	All Filter = Quiet | Captures
)

// Generator produces pseudo-legal moves for a Board. It owns no board state
// itself - the same Generator instance is reused across a whole search,
// threaded a PV move and killer moves for move ordering, and optionally
// driven one move at a time via Next instead of generating a full MoveList
// up front.
//
// Create one via NewGenerator(); the zero value is not usable.
type Generator struct {
	moves       *moveslice.MoveSlice // full-width buffer filled by Moves()
	legal       *moveslice.MoveSlice // legality-filtered buffer filled by LegalMoves()
	staged      *moveslice.MoveSlice // incrementally filled buffer used by Next()
	killers     [2]Move
	history     *history.History // quiet-move ordering data, shared with the search; nil until SetHistory
	stagedKey   board.Key
	takeIndex   int
	pvMove      Move
	stage       int8
	pvConsumed  bool
}

// SetHistory wires h into the generator's quiet-move ordering. Without it,
// quiet moves are ordered by piece-square value alone.
func (g *Generator) SetHistory(h *history.History) {
	g.history = h
}

// NewGenerator creates a ready-to-use move generator.
func NewGenerator() *Generator {
	if log == nil {
		log = myLogging.GetLog()
	}
	return &Generator{
		moves:      moveslice.NewMoveSlice(MaxMoves),
		legal:      moveslice.NewMoveSlice(MaxMoves),
		staged:     moveslice.NewMoveSlice(MaxMoves),
		killers:    [2]Move{MoveNone, MoveNone},
		pvMove:     MoveNone,
		stage:      stageNew,
		stagedKey:  0,
		pvConsumed: false,
		takeIndex:  0,
	}
}

// Moves fills and returns the generator's pseudo-legal move buffer for b
// under the given filter. The returned MoveList is owned by the generator
// and is invalidated by the next call to Moves, LegalMoves or Next.
func (g *Generator) Moves(b *board.Board, filter Filter) *moveslice.MoveSlice {
	g.moves.Clear()
	if filter&Captures != 0 {
		generatePawnMoves(b, Captures, g.moves)
		generateCastling(b, Captures, g.moves)
		generateNonSliders(b, Captures, g.moves)
		generateSliders(b, Captures, g.moves)
	}
	if filter&Quiet != 0 {
		generatePawnMoves(b, Quiet, g.moves)
		generateCastling(b, Quiet, g.moves)
		generateNonSliders(b, Quiet, g.moves)
		generateSliders(b, Quiet, g.moves)
		g.applyHistoryBonus(b, g.moves)
	}
	g.applyOrderingBonus(g.moves)
	g.moves.Sort()
	g.moves.ForEach(func(i int) {
		g.moves.Set(i, g.moves.At(i).MoveOf())
	})
	return g.moves
}

// LegalMoves fills and returns only the moves from Moves that make() accepts.
func (g *Generator) LegalMoves(b *board.Board, filter Filter) *moveslice.MoveSlice {
	g.legal.Clear()
	g.Moves(b, filter)
	g.moves.FilterCopy(g.legal, func(i int) bool {
		return b.IsLegalMove(g.moves.At(i))
	})
	return g.legal
}

// applyOrderingBonus tags the PV move and stored killers with a sort value
// large enough to float them to the front of the encoded-Move ordering used
// by MoveSlice.Sort / MoveSlice.PickMove.
func (g *Generator) applyOrderingBonus(ml *moveslice.MoveSlice) {
	ml.ForEach(func(i int) {
		m := ml.At(i)
		switch {
		case m.MoveOf() == g.pvMove:
			ml.Set(i, m.SetValue(ValueMax))
		case m.MoveOf() == g.killers[0]:
			ml.Set(i, m.SetValue(-4000))
		case m.MoveOf() == g.killers[1]:
			ml.Set(i, m.SetValue(-4001))
		}
	})
}

// Next hands back one move at a time for b under filter, generating lazily
// in phases (PV move, captures, quiet moves) so a cutoff can stop before the
// later, less-promising phases are ever produced. Calling Next on a
// different board resets the phase state automatically; call Reset to
// restart on the same board (e.g. between sibling nodes that share a key by
// coincidence, which never happens in practice but keeps the contract
// explicit).
func (g *Generator) Next(b *board.Board, filter Filter) Move {
	if b.ZobristKey() != g.stagedKey {
		g.staged.Clear()
		g.stage = stageNew
		g.pvConsumed = false
		g.takeIndex = 0
		g.stagedKey = b.ZobristKey()
	}

	if g.staged.Len() == 0 {
		g.fillStage(b, filter)
	}

	if g.staged.Len() == 0 {
		g.takeIndex = 0
		g.pvConsumed = false
		return MoveNone
	}

	if !g.pvConsumed && g.pvMove != MoveNone &&
		(*g.staged)[g.takeIndex].MoveOf() == g.pvMove.MoveOf() {
		g.takeIndex++
		g.pvConsumed = true
		if g.takeIndex >= g.staged.Len() {
			g.takeIndex = 0
			g.staged.Clear()
			g.fillStage(b, filter)
			if g.staged.Len() == 0 {
				return MoveNone
			}
		}
	}

	move := (*g.staged)[g.takeIndex].MoveOf()
	g.takeIndex++
	if g.takeIndex >= g.staged.Len() {
		g.takeIndex = 0
		g.staged.Clear()
	}
	return move
}

// Reset clears phase state, killers excluded; the PV move and killers
// survive a Reset since they are set once per ply and reused across the
// on-demand generation that ply performs.
func (g *Generator) Reset() {
	g.staged.Clear()
	g.stage = stageNew
	g.stagedKey = 0
	g.takeIndex = 0
	g.pvConsumed = false
}

// SetPvMove records the move Next should produce first on every subsequent
// call, until the generator moves on to a different board position.
func (g *Generator) SetPvMove(move Move) {
	g.pvMove = move.MoveOf()
}

// ClearPvMove drops the PV move set via SetPvMove.
func (g *Generator) ClearPvMove() {
	g.pvMove = MoveNone
}

// StoreKiller records move as a killer for the current ply, evicting the
// older of the two stored killers (FIFO of depth 2, as only two killers are
// kept per ply).
func (g *Generator) StoreKiller(move Move) {
	moveOf := move.MoveOf()
	switch {
	case g.killers[0] == moveOf:
		return
	case g.killers[1] == moveOf:
		g.killers[1] = g.killers[0]
		g.killers[0] = moveOf
	default:
		g.killers[1] = g.killers[0]
		g.killers[0] = moveOf
	}
}

// HasLegalMove reports whether the side to move has at least one legal
// move, stopping at the first one found instead of generating the whole
// list. Used for mate/stalemate detection where the actual moves are
// irrelevant. The search order (king, pawns, officers, en-passant) is
// chosen to hit a legal move as early as possible on typical positions.
func (g *Generator) HasLegalMove(b *board.Board) bool {
	us := b.NextPlayer()
	ownPieces := b.OccupiedBb(us)

	kingSquare := b.KingSquare(us)
	targets := GetPseudoAttacks(King, kingSquare) &^ ownPieces
	for targets != 0 {
		to := targets.PopLsb()
		if b.IsLegalMove(CreateMove(kingSquare, to, Normal, PtNone)) {
			return true
		}
	}

	myPawns := b.PiecesBb(us, Pawn)
	enemyPieces := b.OccupiedBb(us.Flip())

	captures := ShiftBitboard(myPawns, Direction(us.Direction())*North+West) & enemyPieces
	for captures != 0 {
		to := captures.PopLsb()
		from := to.To(Direction(us.Flip().Direction())*North + East)
		if b.IsLegalMove(CreateMove(from, to, Normal, PtNone)) {
			return true
		}
	}
	captures = ShiftBitboard(myPawns, Direction(us.Direction())*North+East) & enemyPieces
	for captures != 0 {
		to := captures.PopLsb()
		from := to.To(Direction(us.Flip().Direction())*North + West)
		if b.IsLegalMove(CreateMove(from, to, Normal, PtNone)) {
			return true
		}
	}

	occupied := b.OccupiedAll()
	pushes := ShiftBitboard(myPawns, Direction(us.Direction())*North) &^ occupied
	for pushes != 0 {
		to := pushes.PopLsb()
		from := to.To(Direction(us.Flip().Direction()) * North)
		if b.IsLegalMove(CreateMove(from, to, Normal, PtNone)) {
			return true
		}
	}

	for pt := Knight; pt <= Queen; pt++ {
		pieces := b.PiecesBb(us, pt)
		for pieces != 0 {
			from := pieces.PopLsb()
			targets := GetPseudoAttacks(pt, from) &^ ownPieces
			for targets != 0 {
				to := targets.PopLsb()
				if pt > Knight && Intermediate(from, to)&occupied != 0 {
					continue
				}
				if b.IsLegalMove(CreateMove(from, to, Normal, PtNone)) {
					return true
				}
			}
		}
	}

	if ep := b.GetEnPassantSquare(); ep != SqNone {
		left := ShiftBitboard(ep.Bb(), Direction(us.Flip().Direction())*North+West) & myPawns
		if left != 0 {
			from := left.PopLsb()
			if b.IsLegalMove(CreateMove(from, from.To(Direction(us.Direction())*North+East), EnPassant, PtNone)) {
				return true
			}
		}
		right := ShiftBitboard(ep.Bb(), Direction(us.Flip().Direction())*North+East) & myPawns
		if right != 0 {
			from := right.PopLsb()
			if b.IsLegalMove(CreateMove(from, from.To(Direction(us.Direction())*North+West), EnPassant, PtNone)) {
				return true
			}
		}
	}

	return false
}

var regexUciMove = regexp.MustCompile("([a-h][1-8][a-h][1-8])([NBRQnbrq])?")

// FromUci matches a UCI long-algebraic move string against the legal moves
// of b and returns the matching Move, or MoveNone if there is none.
func (g *Generator) FromUci(b *board.Board, uciMove string) Move {
	matches := regexUciMove.FindStringSubmatch(uciMove)
	if matches == nil {
		return MoveNone
	}

	movePart := matches[1]
	promotionPart := ""
	if len(matches) == 3 {
		promotionPart = strings.ToUpper(matches[2])
	}

	g.LegalMoves(b, All)
	for _, m := range *g.legal {
		if m.StringUci() == movePart+promotionPart {
			return m
		}
	}
	return MoveNone
}

var regexSanMove = regexp.MustCompile("([NBRQK])?([a-h])?([1-8])?x?([a-h][1-8]|O-O-O|O-O)(=?([NBRQ]))?([!?+#]*)?")

// FromSan matches a SAN move string against the legal moves of b and
// returns the matching Move, or MoveNone if there is none or the notation
// is ambiguous.
func (g *Generator) FromSan(b *board.Board, sanMove string) Move {
	matches := regexSanMove.FindStringSubmatch(sanMove)
	if matches == nil {
		return MoveNone
	}

	pieceType := matches[1]
	disambFile := matches[2]
	disambRank := matches[3]
	toSquare := matches[4]
	promotion := matches[6]

	found := 0
	match := MoveNone

	g.LegalMoves(b, All)
	for _, candidate := range *g.legal {
		if candidate.MoveType() == Castling {
			var castlingString string
			switch candidate.To() {
			case SqG1, SqG8:
				castlingString = "O-O"
			case SqC1, SqC8:
				castlingString = "O-O-O"
			default:
				log.Error("castling move with unexpected to-square: %s", candidate.To().String())
				continue
			}
			if castlingString == toSquare {
				match = candidate
				found++
			}
			continue
		}

		if candidate.To().String() != toSquare {
			continue
		}

		legalPt := b.GetPiece(candidate.From()).TypeOf()
		legalPtChar := legalPt.Char()
		if (len(pieceType) == 0 || legalPtChar != pieceType) &&
			(len(pieceType) != 0 || legalPt != Pawn) {
			continue
		}
		if len(disambFile) != 0 && candidate.From().FileOf().String() != disambFile {
			continue
		}
		if len(disambRank) != 0 && candidate.From().RankOf().String() != disambRank {
			continue
		}
		if (len(promotion) != 0 && candidate.PromotionType().Char() != promotion) ||
			(len(promotion) == 0 && candidate.MoveType() == Promotion) {
			continue
		}
		match = candidate
		found++
	}

	switch {
	case found > 1:
		log.Warningf("SAN move %s is ambiguous (%d matches) on %s!", sanMove, found, b.StringFen())
	case found == 0 || !match.IsValid():
		log.Warningf("SAN move not valid! SAN move %s not found on position: %s", sanMove, b.StringFen())
	default:
		return match
	}
	return MoveNone
}

// Validate reports whether move is a legal move on b.
func (g *Generator) Validate(b *board.Board, move Move) bool {
	if move == MoveNone {
		return false
	}
	ml := g.LegalMoves(b, All)
	for _, m := range *ml {
		if move.MoveOf() == m {
			return true
		}
	}
	return false
}

// PvMove returns the move set via SetPvMove.
func (g *Generator) PvMove() Move {
	return g.pvMove
}

// Killers returns a pointer to the two stored killer moves for the current ply.
func (g *Generator) Killers() *[2]Move {
	return &g.killers
}

// String returns a diagnostic summary of the generator's ordering state.
func (g *Generator) String() string {
	return fmt.Sprintf("Generator: { stage: %d, pv: %s, killer1: %s, killer2: %s }",
		g.stage, g.pvMove.String(), g.killers[0].String(), g.killers[1].String())
}

// Phases of the lazy, on-demand generator driven by Next. Roughly ordered
// most-promising-first: PV move, then captures (split by piece class for
// cheap early cutoffs), then quiet moves with killers resorted to the front
// of each batch as soon as they are actually generated.
const (
	stageNew = iota
	stagePv
	stageCaptures
	stageCapturesOfficers
	stageCapturesKing
	stageQuietSplit
	stageQuietPawns
	stageQuietCastling
	stageQuietOfficers
	stageQuietKing
	stageDone
)

func (g *Generator) fillStage(b *board.Board, filter Filter) {
	for g.staged.Len() == 0 && g.stage < stageDone {
		switch g.stage {
		case stageNew:
			g.stage = stagePv
			fallthrough
		case stagePv:
			if g.pvMove != MoveNone {
				switch filter {
				case All:
					g.pvConsumed = false
					g.staged.PushBack(g.pvMove)
				case Captures:
					if b.IsCapturingMove(g.pvMove) {
						g.pvConsumed = false
						g.staged.PushBack(g.pvMove)
					}
				case Quiet:
					if !b.IsCapturingMove(g.pvMove) {
						g.pvConsumed = false
						g.staged.PushBack(g.pvMove)
					}
				}
			}
			if filter&Captures != 0 {
				g.stage = stageCaptures
			} else {
				g.stage = stageQuietSplit
			}
		case stageCaptures:
			generatePawnMoves(b, Captures, g.staged)
			g.stage = stageCapturesOfficers
		case stageCapturesOfficers:
			generateSliders(b, Captures, g.staged)
			generateNonSliders(b, Captures, g.staged)
			g.stage = stageCapturesKing
		case stageCapturesKing:
			g.stage = stageQuietSplit
		case stageQuietSplit:
			if filter&Quiet != 0 {
				g.stage = stageQuietPawns
			} else {
				g.stage = stageDone
			}
		case stageQuietPawns:
			generatePawnMoves(b, Quiet, g.staged)
			g.applyHistoryBonus(b, g.staged)
			g.pushKillersToFront()
			g.stage = stageQuietCastling
		case stageQuietCastling:
			generateCastling(b, Quiet, g.staged)
			g.applyHistoryBonus(b, g.staged)
			g.pushKillersToFront()
			g.stage = stageQuietOfficers
		case stageQuietOfficers:
			generateSliders(b, Quiet, g.staged)
			generateNonSliders(b, Quiet, g.staged)
			g.applyHistoryBonus(b, g.staged)
			g.pushKillersToFront()
			g.stage = stageQuietKing
		case stageQuietKing:
			g.stage = stageDone
		}
		if g.staged.Len() > 0 {
			g.staged.Sort()
		}
	}
}

// pushKillersToFront re-sorts any stored killer move that happened to be
// generated into this batch to the top, without the expense of validating
// killers against positions where they are not even pseudo-legal - they are
// only ever considered once the normal generation already produced them.
func (g *Generator) pushKillersToFront() {
	for i := 0; i < g.staged.Len(); i++ {
		m := g.staged.At(i)
		if g.killers[1] == m.MoveOf() {
			g.staged.Set(i, m.SetValue(-4001))
		}
		if g.killers[0] == m.MoveOf() {
			g.staged.Set(i, m.SetValue(-4000))
		}
	}
}

// applyHistoryBonus reorders the quiet moves just generated into b using the
// history table: the counter move to the opponent's last move floats just
// below the killers, and every other quiet move gets its piece-square value
// nudged by how often it has caused a cutoff before, capped so history never
// outranks a killer.
func (g *Generator) applyHistoryBonus(b *board.Board, ml *moveslice.MoveSlice) {
	if g.history == nil {
		return
	}
	us := b.NextPlayer()
	counter := MoveNone
	if last := b.LastMove(); last != MoveNone {
		counter = g.history.CounterMoves[last.From()][last.To()].MoveOf()
	}
	for i := 0; i < ml.Len(); i++ {
		m := ml.At(i)
		mo := m.MoveOf()
		if mo == g.killers[0] || mo == g.killers[1] || mo == g.pvMove {
			continue
		}
		if counter != MoveNone && mo == counter {
			ml.Set(i, m.SetValue(-4100))
			continue
		}
		bonus := g.history.HistoryCount[us][mo.From()][mo.To()]
		if bonus <= 0 {
			continue
		}
		if bonus > 6000 {
			bonus = 6000
		}
		ml.Set(i, m.SetValue(m.ValueOf()+Value(bonus)))
	}
}

// generatePawnMoves covers pawn movement: single/double
// pushes into empty squares, diagonal captures (including en-passant) via
// pawn_captures, and {Q,R,B,N} promotion enumeration on the back rank. Sort
// values follow MVV-LVA for captures and a fixed quiet-move discount so
// captures are tried before quiet moves without a second sort pass.
func generatePawnMoves(b *board.Board, filter Filter, ml *moveslice.MoveSlice) {
	us := b.NextPlayer()
	myPawns := b.PiecesBb(us, Pawn)
	enemyPieces := b.OccupiedBb(us.Flip())
	gamePhase := b.GamePhase()
	piece := MakePiece(us, Pawn)

	if filter&Captures != 0 {
		var captures, promoCaptures Bitboard

		for _, dir := range []Direction{West, East} {
			captures = ShiftBitboard(myPawns, Direction(us.Direction())*North+dir) & enemyPieces
			promoCaptures = captures & us.PromotionRankBb()
			for promoCaptures != 0 {
				to := promoCaptures.PopLsb()
				from := to.To(Direction(us.Flip().Direction())*North - dir)
				value := b.GetPiece(to).ValueOf() - b.GetPiece(from).ValueOf() + PosValue(piece, to, gamePhase)
				ml.PushBack(CreateMoveValue(from, to, Promotion, Queen, value+Queen.ValueOf()))
				ml.PushBack(CreateMoveValue(from, to, Promotion, Knight, value+Knight.ValueOf()))
				ml.PushBack(CreateMoveValue(from, to, Promotion, Rook, value+Rook.ValueOf()-Value(2000)))
				ml.PushBack(CreateMoveValue(from, to, Promotion, Bishop, value+Bishop.ValueOf()-Value(2000)))
			}
			captures &= ^us.PromotionRankBb()
			for captures != 0 {
				to := captures.PopLsb()
				from := to.To(Direction(us.Flip().Direction())*North - dir)
				value := b.GetPiece(to).ValueOf() - b.GetPiece(from).ValueOf() + PosValue(piece, to, gamePhase)
				ml.PushBack(CreateMoveValue(from, to, Normal, PtNone, value))
			}
		}

		if ep := b.GetEnPassantSquare(); ep != SqNone {
			for _, dir := range []Direction{West, East} {
				epCapture := ShiftBitboard(ep.Bb(), Direction(us.Flip().Direction())*North+dir) & myPawns
				if epCapture != 0 {
					from := epCapture.PopLsb()
					to := from.To(Direction(us.Direction())*North - dir)
					value := PosValue(piece, to, gamePhase)
					ml.PushBack(CreateMoveValue(from, to, EnPassant, PtNone, value))
				}
			}
		}
	}

	if filter&Quiet != 0 {
		singleSteps := ShiftBitboard(myPawns, Direction(us.Direction())*North) & ^b.OccupiedAll()
		doubleSteps := ShiftBitboard(singleSteps&us.PawnDoubleRank(), Direction(us.Direction())*North) & ^b.OccupiedAll()

		promos := singleSteps & us.PromotionRankBb()
		for promos != 0 {
			to := promos.PopLsb()
			from := to.To(Direction(us.Flip().Direction()) * North)
			value := Value(-10_000)
			ml.PushBack(CreateMoveValue(from, to, Promotion, Queen, value+Queen.ValueOf()))
			ml.PushBack(CreateMoveValue(from, to, Promotion, Knight, value+Knight.ValueOf()))
			ml.PushBack(CreateMoveValue(from, to, Promotion, Rook, value+Rook.ValueOf()-Value(2000)))
			ml.PushBack(CreateMoveValue(from, to, Promotion, Bishop, value+Bishop.ValueOf()-Value(2000)))
		}
		for doubleSteps != 0 {
			to := doubleSteps.PopLsb()
			from := to.To(Direction(us.Flip().Direction())*North).To(Direction(us.Flip().Direction()) * North)
			value := Value(-10_000) + PosValue(piece, to, gamePhase)
			ml.PushBack(CreateMoveValue(from, to, Normal, PtNone, value))
		}
		singleSteps &= ^us.PromotionRankBb()
		for singleSteps != 0 {
			to := singleSteps.PopLsb()
			from := to.To(Direction(us.Flip().Direction()) * North)
			value := Value(-10_000) + PosValue(piece, to, gamePhase)
			ml.PushBack(CreateMoveValue(from, to, Normal, PtNone, value))
		}
	}
}

// generateCastling covers castling: the right
// must still be in the castling mask and the squares between king and rook
// must be empty. King-path attacked-square checks happen in make() via the
// normal legality test, since a castling move is only ever legal if every
// traversed king square survives b.IsLegalMove.
func generateCastling(b *board.Board, filter Filter, ml *moveslice.MoveSlice) {
	if filter&Quiet == 0 || b.CastlingRights() == CastlingNone {
		return
	}
	us := b.NextPlayer()
	occupied := b.OccupiedAll()
	cr := b.CastlingRights()

	if us == White {
		if cr.Has(CastlingWhiteOO) && Intermediate(SqE1, SqH1)&occupied == 0 {
			ml.PushBack(CreateMoveValue(SqE1, SqG1, Castling, PtNone, Value(-5000)))
		}
		if cr.Has(CastlingWhiteOOO) && Intermediate(SqE1, SqA1)&occupied == 0 {
			ml.PushBack(CreateMoveValue(SqE1, SqC1, Castling, PtNone, Value(-5000)))
		}
	} else {
		if cr.Has(CastlingBlackOO) && Intermediate(SqE8, SqH8)&occupied == 0 {
			ml.PushBack(CreateMoveValue(SqE8, SqG8, Castling, PtNone, Value(-5000)))
		}
		if cr.Has(CastlingBlackOOO) && Intermediate(SqE8, SqA8)&occupied == 0 {
			ml.PushBack(CreateMoveValue(SqE8, SqC8, Castling, PtNone, Value(-5000)))
		}
	}
}

// generateNonSliders covers king moves: targets =
// attack_table[from] &^ own, split into captures and quiet.
func generateNonSliders(b *board.Board, filter Filter, ml *moveslice.MoveSlice) {
	us := b.NextPlayer()
	piece := MakePiece(us, King)
	gamePhase := b.GamePhase()
	kingBb := b.PiecesBb(us, King)
	from := kingBb.PopLsb()

	targets := GetPseudoAttacks(King, from)

	if filter&Captures != 0 {
		captures := targets & b.OccupiedBb(us.Flip())
		for captures != 0 {
			to := captures.PopLsb()
			value := b.GetPiece(to).ValueOf() - b.GetPiece(from).ValueOf() + PosValue(piece, to, gamePhase)
			ml.PushBack(CreateMoveValue(from, to, Normal, PtNone, value))
		}
	}
	if filter&Quiet != 0 {
		quiet := targets &^ b.OccupiedAll()
		for quiet != 0 {
			to := quiet.PopLsb()
			value := Value(-10_000) + PosValue(piece, to, gamePhase)
			ml.PushBack(CreateMoveValue(from, to, Normal, PtNone, value))
		}
	}
}

// generateSliders covers knight/bishop/rook/queen moves: targets =
// magic_lookup(piece, from, occupancy) &^ own (the magic lookup degenerates
// to a plain attack-table lookup for the knight, which is not blockable),
// split into captures and quiet.
func generateSliders(b *board.Board, filter Filter, ml *moveslice.MoveSlice) {
	us := b.NextPlayer()
	gamePhase := b.GamePhase()
	occupied := b.OccupiedAll()

	for pt := Knight; pt <= Queen; pt++ {
		pieces := b.PiecesBb(us, pt)
		piece := MakePiece(us, pt)

		for pieces != 0 {
			from := pieces.PopLsb()
			targets := GetAttacksBb(pt, from, occupied)

			if filter&Captures != 0 {
				captures := targets & b.OccupiedBb(us.Flip())
				for captures != 0 {
					to := captures.PopLsb()
					value := b.GetPiece(to).ValueOf() - b.GetPiece(from).ValueOf() + PosValue(piece, to, gamePhase)
					ml.PushBack(CreateMoveValue(from, to, Normal, PtNone, value))
				}
			}
			if filter&Quiet != 0 {
				quiet := targets &^ occupied
				for quiet != 0 {
					to := quiet.PopLsb()
					value := Value(-10_000) + PosValue(piece, to, gamePhase)
					ml.PushBack(CreateMoveValue(from, to, Normal, PtNone, value))
				}
			}
		}
	}
}
