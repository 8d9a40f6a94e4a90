//
// Corvid - a UCI and XBoard/CECP chess engine
//
// MIT License
//
// Copyright (c) 2026 The Corvid Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//

// Package board is the authoritative chess position: bitboards, a piece
// list, material counters and the irreversible game state, all updated
// incrementally by put/remove-piece primitives and restored via a history
// stack on unmake.
//
// Build one with NewBoard() for the start position, or NewBoardFen(fen)
// for an arbitrary one.
package board

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/op/go-logging"

	"github.com/corvidchess/corvid/internal/assert"
	myLogging "github.com/corvidchess/corvid/internal/logging"
	. "github.com/corvidchess/corvid/internal/types"
)

var log *logging.Logger

var initialized = false

func init() {
	if !initialized {
		initZobrist()
		initialized = true
	}
}

const (
	// StartFen is a string with the fen position for a standard chess game
	StartFen string = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// Key hashes a Board for transposition-table and repetition lookups.
// Needs the full 64 bits for distribution.
type Key uint64

// gameState is the irreversible part of a position: active color,
// castling permissions, the en-passant target, the halfmove clock, the
// running ply count, the Zobrist key and the move that produced it. A
// snapshot of gameState is pushed to history before every move and
// restored verbatim on unmake.
type gameState struct {
	activeColor     Color
	castlingRights  CastlingRights
	enPassantSquare Square
	halfMoveClock   int
	plyCount        int // fullmove number = (plyCount+1)/2
	zobristKey      Key
	// pawnKey is not part of the irreversible state proper; it is carried
	// alongside zobristKey (same incremental-update discipline, pawns
	// only) so the evaluator can key its pawn-structure cache without
	// recomputing a hash over the whole board.
	pawnKey  Key
	lastMove Move
}

// historyState is one snapshot on the undo stack: the game state before
// the move, plus the bit of move information (moving/captured piece, and
// the cached in-check flag) needed to reverse the move's board mutation.
type historyState struct {
	state         gameState
	fromPiece     Piece
	capturedPiece Piece
	hasCheckFlag  int
}

const maxHistory int = MaxMoves

// cached in-check flag states
const (
	flagTBD   int = 0
	flagFalse int = 1
	flagTrue  int = 2
)

// Board is the authoritative chess position.
//
// Construct with NewBoard() or NewBoardFen(fen).
type Board struct {
	state gameState

	// pieceList maps a square to the occupying piece, or PieceNone.
	// Invariant: pieceList[sq] == p iff bit sq is set in bbSide[colorOf(p)][typeOf(p)].
	pieceList [SqLength]Piece

	// kingSquare caches each side's king square for O(1) attack queries.
	kingSquare [ColorLength]Square

	// bbSide holds one bitboard per (side, piece type). Exclusive per slot.
	bbSide [ColorLength][PtLength]Bitboard

	// bbPieces holds per-side occupancy.
	// Invariant: bbPieces[s] == OR over p of bbSide[s][p].
	bbPieces [ColorLength]Bitboard

	// history is the undo/repetition stack.
	historyCounter int
	history        [maxHistory]historyState

	// materialCount is kept incrementally in lock-step with put/removePiece.
	materialCount   [ColorLength]Value
	materialNonPawn [ColorLength]Value
	// psqMidValue/psqEndValue track incremental piece-square-table totals.
	psqMidValue [ColorLength]Value
	psqEndValue [ColorLength]Value
	// gamePhase interpolates between the mid/end piece-square tables.
	gamePhase int

	// hasCheckFlag caches HasCheck() for the current position; reset to
	// flagTBD on every move/unmove.
	hasCheckFlag int
}

// //////////////////////////////////////////////////////
// // Public
// //////////////////////////////////////////////////////

// NewBoard creates a board. With no argument it is the start position;
// an extra fen argument (only the first is used) builds that position
// instead.
func NewBoard(fen ...string) *Board {
	if len(fen) == 0 {
		b, _ := NewBoardFen(StartFen)
		return b
	}
	b, _ := NewBoardFen(fen[0])
	return b
}

// NewBoardFen creates a board from a fen string, or returns nil and an
// error if the fen is invalid.
func NewBoardFen(fen string) (*Board, error) {
	if log == nil {
		log = myLogging.GetLog()
	}
	b := &Board{}
	if e := b.setupBoard(fen); e != nil {
		log.Errorf("fen for board setup not valid and board can't be created: %s", e)
		return nil, e
	}
	return b, nil
}

// DoMove commits a move to the board without checking legality: callers
// using moves from a Generator should confirm legality via IsLegalMove
// beforehand, or via WasLegalMove after.
func (b *Board) DoMove(m Move) {
	fromSq := m.From()
	fromPc := b.pieceList[fromSq]
	myColor := fromPc.ColorOf()
	toSq := m.To()
	targetPc := b.pieceList[toSq]

	if assert.DEBUG {
		assert.Assert(m.IsValid(), "Board DoMove: invalid move %s", m.String())
		assert.Assert(fromPc != PieceNone, "Board DoMove: no piece on %s for move %s", fromPc.String(), m.StringUci())
		assert.Assert(myColor == b.state.activeColor, "Board DoMove: piece to move does not belong to active color %s", fromPc.String())
		assert.Assert(targetPc.TypeOf() != King, "Board DoMove: king cannot be captured yet target piece is %s", targetPc.String())
	}

	// snapshot the irreversible state before mutating anything
	h := b.historyCounter
	b.history[h].state = b.state
	b.history[h].fromPiece = fromPc
	b.history[h].capturedPiece = targetPc
	b.history[h].hasCheckFlag = b.hasCheckFlag
	b.historyCounter++

	switch m.MoveType() {
	case Normal:
		b.doNormalMove(fromSq, toSq, targetPc, fromPc, myColor)
	case Promotion:
		b.doPromotionMove(m, fromPc, myColor, toSq, targetPc, fromSq)
	case EnPassant:
		b.doEnPassantMove(toSq, myColor, fromPc, fromSq)
	case Castling:
		b.doCastlingMove(fromPc, myColor, toSq, fromSq)
	}

	b.hasCheckFlag = flagTBD
	b.state.plyCount++
	b.state.lastMove = m
	b.state.activeColor = b.state.activeColor.Flip()
	b.state.zobristKey ^= zobristBase.nextPlayer
}

// UndoMove restores the board to the state before the last DoMove call.
func (b *Board) UndoMove() {
	if assert.DEBUG {
		assert.Assert(b.historyCounter > 0, "Board UndoMove: cannot undo the initial position")
	}

	b.historyCounter--
	h := b.historyCounter
	move := b.state.lastMove

	switch move.MoveType() {
	case Normal:
		b.movePiece(move.To(), move.From())
		if b.history[h].capturedPiece != PieceNone {
			b.putPiece(b.history[h].capturedPiece, move.To())
		}
	case Promotion:
		b.removePiece(move.To())
		b.putPiece(MakePiece(b.history[h].state.activeColor, Pawn), move.From())
		if b.history[h].capturedPiece != PieceNone {
			b.putPiece(b.history[h].capturedPiece, move.To())
		}
	case EnPassant:
		b.movePiece(move.To(), move.From())
		b.putPiece(MakePiece(b.history[h].state.activeColor.Flip(), Pawn), move.To().To(b.history[h].state.activeColor.Flip().MoveDirection()))
	case Castling:
		b.movePiece(move.To(), move.From()) // king
		switch move.To() {
		case SqG1:
			b.movePiece(SqF1, SqH1)
		case SqC1:
			b.movePiece(SqD1, SqA1)
		case SqG8:
			b.movePiece(SqF8, SqH8)
		case SqC8:
			b.movePiece(SqD8, SqA8)
		default:
			panic("invalid castle move")
		}
	}

	b.state = b.history[h].state
	b.hasCheckFlag = b.history[h].hasCheckFlag
}

// DoNullMove records a pass: the active color flips but nothing moves on
// the board. Used by null-move pruning. UndoNullMove restores the exact
// prior game state (fen/zobrist before == fen/zobrist after the pair,
// even though the position value in between differs).
func (b *Board) DoNullMove() {
	h := b.historyCounter
	b.history[h].state = b.state
	b.history[h].fromPiece = PieceNone
	b.history[h].capturedPiece = PieceNone
	b.history[h].hasCheckFlag = b.hasCheckFlag
	b.historyCounter++

	b.hasCheckFlag = flagTBD
	b.clearEnPassant()
	b.state.plyCount++
	b.state.activeColor = b.state.activeColor.Flip()
	b.state.zobristKey ^= zobristBase.nextPlayer
}

// UndoNullMove reverses DoNullMove.
func (b *Board) UndoNullMove() {
	b.historyCounter--
	h := b.historyCounter
	b.state = b.history[h].state
	b.hasCheckFlag = b.history[h].hasCheckFlag
}

// IsAttacked reports whether sq is attacked by a piece of color by.
func (b *Board) IsAttacked(sq Square, by Color) bool {
	// reverse-attack from sq: if a piece of the probing type sitting on sq
	// would attack a piece of color `by`, that piece also attacks sq.
	if (GetPawnAttacks(by.Flip(), sq)&b.bbSide[by][Pawn] != 0) ||
		(GetPseudoAttacks(Knight, sq)&b.bbSide[by][Knight] != 0) ||
		(GetPseudoAttacks(King, sq)&b.bbSide[by][King] != 0) {
		return true
	}

	if GetAttacksBb(Bishop, sq, b.OccupiedAll())&b.bbSide[by][Bishop] > 0 ||
		GetAttacksBb(Rook, sq, b.OccupiedAll())&b.bbSide[by][Rook] > 0 ||
		GetAttacksBb(Queen, sq, b.OccupiedAll())&b.bbSide[by][Queen] > 0 {
		return true
	}

	if b.state.enPassantSquare != SqNone {
		switch by {
		case White:
			if b.pieceList[b.state.enPassantSquare.To(South)] == BlackPawn &&
				b.state.enPassantSquare.To(South) == sq {
				if b.pieceList[sq.To(West)] == WhitePawn {
					return true
				}
				return b.pieceList[sq.To(East)] == WhitePawn
			}
		case Black:
			if b.pieceList[b.state.enPassantSquare.To(North)] == WhitePawn &&
				b.state.enPassantSquare.To(North) == sq {
				if b.pieceList[sq.To(West)] == BlackPawn {
					return true
				}
				return b.pieceList[sq.To(East)] == BlackPawn
			}
		}
	}
	return false
}

// IsLegalMove reports whether move is legal on the current position:
// the moving side's king must not be left in check, and castling must
// not cross an attacked square.
func (b *Board) IsLegalMove(move Move) bool {
	if move.MoveType() == Castling {
		if b.IsAttacked(move.From(), b.state.activeColor.Flip()) {
			return false
		}
		switch move.To() {
		case SqG1:
			if b.IsAttacked(SqF1, b.state.activeColor.Flip()) {
				return false
			}
		case SqC1:
			if b.IsAttacked(SqD1, b.state.activeColor.Flip()) {
				return false
			}
		case SqG8:
			if b.IsAttacked(SqF8, b.state.activeColor.Flip()) {
				return false
			}
		case SqC8:
			if b.IsAttacked(SqD8, b.state.activeColor.Flip()) {
				return false
			}
		}
	}
	b.DoMove(move)
	legal := !b.IsAttacked(b.kingSquare[b.state.activeColor.Flip()], b.state.activeColor)
	b.UndoMove()
	return legal
}

// WasLegalMove reports whether the last move made was legal: that it
// didn't leave its own king in check, and if it was castling, that the
// king didn't cross or start from an attacked square. With no move
// history it only checks whether the opponent's king is now attacked.
func (b *Board) WasLegalMove() bool {
	if b.IsAttacked(b.kingSquare[b.state.activeColor.Flip()], b.state.activeColor) {
		return false
	}
	if b.historyCounter > 0 {
		move := b.state.lastMove
		if move.MoveType() == Castling {
			if b.IsAttacked(move.From(), b.state.activeColor) {
				return false
			}
			switch move.To() {
			case SqG1:
				if b.IsAttacked(SqF1, b.state.activeColor) {
					return false
				}
			case SqC1:
				if b.IsAttacked(SqD1, b.state.activeColor) {
					return false
				}
			case SqG8:
				if b.IsAttacked(SqF8, b.state.activeColor) {
					return false
				}
			case SqC8:
				if b.IsAttacked(SqD8, b.state.activeColor) {
					return false
				}
			}
		}
	}
	return true
}

// HasCheck reports whether the active color's king is attacked. Cached
// for the current position, so repeated calls are cheap.
func (b *Board) HasCheck() bool {
	if b.hasCheckFlag != flagTBD {
		return b.hasCheckFlag == flagTrue
	}
	check := b.IsAttacked(b.kingSquare[b.state.activeColor], b.state.activeColor.Flip())
	if check {
		b.hasCheckFlag = flagTrue
	} else {
		b.hasCheckFlag = flagFalse
	}
	return check
}

// IsCapturingMove reports whether move captures a piece on this
// position, including en passant.
func (b *Board) IsCapturingMove(move Move) bool {
	return b.bbPieces[b.state.activeColor.Flip()].Has(move.To()) || move.MoveType() == EnPassant
}

// CheckRepetitions reports whether the current position's Zobrist key
// has occurred at least reps times earlier in the reversible part of
// history (since the last halfmove-clock reset). Detecting a single
// earlier occurrence of the current key along the search line is used
// as a draw shortcut rather than waiting for a true threefold count.
func (b *Board) CheckRepetitions(reps int) bool {
	counter := 0
	i := b.historyCounter - 2
	lastHalfMove := b.state.halfMoveClock
	for i >= 0 {
		// a halfmove-clock reset means no position before it can repeat
		if b.history[i].state.halfMoveClock >= lastHalfMove {
			break
		}
		lastHalfMove = b.history[i].state.halfMoveClock
		if b.state.zobristKey == b.history[i].state.zobristKey {
			counter++
		}
		if counter >= reps {
			return true
		}
		i -= 2
	}
	return false
}

// HasInsufficientMaterial reports whether neither side has enough
// material to force mate. This does not exclude a helpmate (the
// opponent deliberately walking into one) and does not look at
// bishop-square color parity for same-colored-bishop draws.
func (b *Board) HasInsufficientMaterial() bool {
	if b.materialCount[White]+b.materialCount[Black] == 0 {
		return true
	}

	if b.bbSide[White][Pawn].PopCount() == 0 && b.bbSide[Black][Pawn].PopCount() == 0 {
		if b.bbSide[White][Rook]|b.bbSide[Black][Rook]|b.bbSide[White][Queen]|b.bbSide[Black][Queen] != 0 {
			return false
		}
		if b.materialNonPawn[White] < 400 && b.materialNonPawn[Black] < 400 {
			return true
		}
		if (b.materialNonPawn[White] == 2*Knight.ValueOf() && b.materialNonPawn[Black] <= Bishop.ValueOf()) ||
			(b.materialNonPawn[Black] == 2*Knight.ValueOf() && b.materialNonPawn[White] <= Bishop.ValueOf()) {
			return true
		}
		if (b.materialNonPawn[White] == 2*Bishop.ValueOf() && b.materialNonPawn[Black] == Bishop.ValueOf()) ||
			(b.materialNonPawn[Black] == 2*Bishop.ValueOf() && b.materialNonPawn[White] == Bishop.ValueOf()) {
			return true
		}
		if b.materialNonPawn[White] == 2*Bishop.ValueOf() || b.materialNonPawn[Black] == 2*Bishop.ValueOf() {
			return false
		}
		if (b.materialNonPawn[White] < 2*Bishop.ValueOf() && b.materialNonPawn[Black] <= Bishop.ValueOf()) ||
			(b.materialNonPawn[White] <= Bishop.ValueOf() && b.materialNonPawn[Black] < 2*Bishop.ValueOf()) {
			return true
		}
	}
	return false
}

// GivesCheck reports whether move, played on the current position,
// would check the opponent.
func (b *Board) GivesCheck(move Move) bool {
	us := b.state.activeColor
	them := us.Flip()
	kingSq := b.kingSquare[them]

	fromSq := move.From()
	toSq := move.To()
	fromPc := b.pieceList[fromSq]
	fromPt := fromPc.TypeOf()
	epTargetSq := SqNone
	moveType := move.MoveType()

	switch moveType {
	case Promotion:
		fromPt = move.PromotionType()
	case Castling:
		fromPt = Rook // king can't give check; no revealed check via castling
		switch toSq {
		case SqG1:
			toSq = SqF1
		case SqC1:
			toSq = SqD1
		case SqG8:
			toSq = SqF8
		case SqC8:
			toSq = SqD8
		}
	case EnPassant:
		epTargetSq = toSq.To(them.MoveDirection())
	}

	occAfter := b.OccupiedAll()
	occAfter.PopSquare(fromSq)
	occAfter.PushSquare(toSq)
	if moveType == EnPassant {
		occAfter.PopSquare(epTargetSq)
	}

	switch fromPt {
	case Pawn:
		if GetPawnAttacks(us, toSq).Has(kingSq) {
			return true
		}
	case King:
		// can't give check directly
	default:
		if GetAttacksBb(fromPt, toSq, occAfter).Has(kingSq) {
			return true
		}
	}

	// revealed checks: only sliders can be revealed (pawn/knight can't);
	// en passant is the one case where the vacated square is the capture
	// square rather than the from-square, handled via occAfter above.
	switch {
	case GetAttacksBb(Bishop, kingSq, occAfter)&b.bbSide[us][Bishop] > 0:
		return true
	case GetAttacksBb(Rook, kingSq, occAfter)&b.bbSide[us][Rook] > 0:
		return true
	case GetAttacksBb(Queen, kingSq, occAfter)&b.bbSide[us][Queen] > 0:
		return true
	}
	return false
}

// String renders the fen, a board matrix, game phase, material and
// piece-square totals.
func (b *Board) String() string {
	var s strings.Builder
	s.WriteString(b.StringFen())
	s.WriteString("\n")
	s.WriteString(b.StringBoard())
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("Active color   : %s\n", b.state.activeColor.String()))
	s.WriteString(fmt.Sprintf("Game Phase     : %d\n", b.gamePhase))
	s.WriteString(fmt.Sprintf("Material White : %d\n", b.materialCount[White]))
	s.WriteString(fmt.Sprintf("Material Black : %d\n", b.materialCount[Black]))
	s.WriteString(fmt.Sprintf("Pos value White: %d/%d\n", b.psqMidValue[White], b.psqEndValue[White]))
	s.WriteString(fmt.Sprintf("Pos value Black: %d/%d\n", b.psqMidValue[Black], b.psqEndValue[Black]))
	return s.String()
}

// StringFen returns the fen of the current position.
func (b *Board) StringFen() string {
	return b.fen()
}

// StringBoard returns a visual matrix of the board and pieces.
func (b *Board) StringBoard() string {
	var s strings.Builder
	s.WriteString("+---+---+---+---+---+---+---+---+\n")
	for r := Rank1; r <= Rank8; r++ {
		for f := FileA; f <= FileH; f++ {
			s.WriteString("| ")
			s.WriteString(b.pieceList[SquareOf(f, Rank8-r)].Char())
			s.WriteString(" ")
		}
		s.WriteString("|\n+---+---+---+---+---+---+---+---+\n")
	}
	return s.String()
}

// //////////////////////////////////////////////////////////
// Private
// //////////////////////////////////////////////////////////

func (b *Board) doNormalMove(fromSq Square, toSq Square, targetPc Piece, fromPc Piece, myColor Color) {
	if b.state.castlingRights != CastlingNone {
		cr := GetCastlingRights(fromSq) | GetCastlingRights(toSq)
		if cr != CastlingNone {
			b.state.zobristKey ^= zobristBase.castlingRights[b.state.castlingRights]
			b.state.castlingRights.Remove(cr)
			b.state.zobristKey ^= zobristBase.castlingRights[b.state.castlingRights]
		}
	}
	b.clearEnPassant()
	if targetPc != PieceNone {
		b.removePiece(toSq)
		b.state.halfMoveClock = 0
	} else if fromPc.TypeOf() == Pawn {
		b.state.halfMoveClock = 0
		if SquareDistance(fromSq, toSq) == 2 {
			b.state.enPassantSquare = toSq.To(myColor.Flip().MoveDirection())
			b.state.zobristKey ^= zobristBase.enPassantFile[b.state.enPassantSquare.FileOf()]
		}
	} else {
		b.state.halfMoveClock++
	}
	b.movePiece(fromSq, toSq)
}

func (b *Board) doCastlingMove(fromPc Piece, myColor Color, toSq Square, fromSq Square) {
	if assert.DEBUG {
		assert.Assert(fromPc == MakePiece(myColor, King), "Board DoMove: move type castling but from piece not king")
	}
	switch toSq {
	case SqG1:
		if assert.DEBUG {
			assert.Assert(b.state.castlingRights.Has(CastlingWhiteOO), "Board DoMove: white king side castling not available")
			assert.Assert(fromSq == SqE1, "Board DoMove: castling from square not correct")
			assert.Assert(b.pieceList[SqE1] == WhiteKing, "Board DoMove: e1 has no king for castling")
			assert.Assert(b.pieceList[SqH1] == WhiteRook, "Board DoMove: h1 has no rook for castling")
			assert.Assert(b.OccupiedAll()&Intermediate(SqE1, SqH1) == 0, "Board DoMove: king side castling blocked")
		}
		b.movePiece(fromSq, toSq)
		b.movePiece(SqH1, SqF1)
		b.state.zobristKey ^= zobristBase.castlingRights[b.state.castlingRights]
		b.state.castlingRights.Remove(CastlingWhite)
		b.state.zobristKey ^= zobristBase.castlingRights[b.state.castlingRights]
	case SqC1:
		if assert.DEBUG {
			assert.Assert(b.state.castlingRights.Has(CastlingWhiteOOO), "Board DoMove: white queen side castling not available")
			assert.Assert(fromSq == SqE1, "Board DoMove: castling from square not correct")
			assert.Assert(b.pieceList[SqE1] == WhiteKing, "Board DoMove: e1 has no king for castling")
			assert.Assert(b.pieceList[SqA1] == WhiteRook, "Board DoMove: a1 has no rook for castling")
			assert.Assert(b.OccupiedAll()&Intermediate(SqE1, SqA1) == 0, "Board DoMove: queen side castling blocked")
		}
		b.movePiece(fromSq, toSq)
		b.movePiece(SqA1, SqD1)
		b.state.zobristKey ^= zobristBase.castlingRights[b.state.castlingRights]
		b.state.castlingRights.Remove(CastlingWhite)
		b.state.zobristKey ^= zobristBase.castlingRights[b.state.castlingRights]
	case SqG8:
		if assert.DEBUG {
			assert.Assert(b.state.castlingRights.Has(CastlingBlackOO), "Board DoMove: black king side castling not available")
			assert.Assert(fromSq == SqE8, "Board DoMove: castling from square not correct")
			assert.Assert(b.pieceList[SqE8] == BlackKing, "Board DoMove: e8 has no king for castling")
			assert.Assert(b.pieceList[SqH8] == BlackRook, "Board DoMove: h8 has no rook for castling")
			assert.Assert(b.OccupiedAll()&Intermediate(SqE8, SqH8) == 0, "Board DoMove: king side castling blocked")
		}
		b.movePiece(fromSq, toSq)
		b.movePiece(SqH8, SqF8)
		b.state.zobristKey ^= zobristBase.castlingRights[b.state.castlingRights]
		b.state.castlingRights.Remove(CastlingBlack)
		b.state.zobristKey ^= zobristBase.castlingRights[b.state.castlingRights]
	case SqC8:
		if assert.DEBUG {
			assert.Assert(b.state.castlingRights.Has(CastlingBlackOOO), "Board DoMove: black queen side castling not available")
			assert.Assert(fromSq == SqE8, "Board DoMove: castling from square not correct")
			assert.Assert(b.pieceList[SqE8] == BlackKing, "Board DoMove: e8 has no king for castling")
			assert.Assert(b.pieceList[SqA8] == BlackRook, "Board DoMove: a8 has no rook for castling")
			assert.Assert(b.OccupiedAll()&Intermediate(SqE8, SqA8) == 0, "Board DoMove: queen side castling blocked")
		}
		b.movePiece(fromSq, toSq)
		b.movePiece(SqA8, SqD8)
		b.state.zobristKey ^= zobristBase.castlingRights[b.state.castlingRights]
		b.state.castlingRights.Remove(CastlingBlack)
		b.state.zobristKey ^= zobristBase.castlingRights[b.state.castlingRights]
	default:
		panic("invalid castle move")
	}
	b.clearEnPassant()
	b.state.halfMoveClock++
}

func (b *Board) doEnPassantMove(toSq Square, myColor Color, fromPc Piece, fromSq Square) {
	capSq := toSq.To(myColor.Flip().MoveDirection())
	if assert.DEBUG {
		assert.Assert(fromPc == MakePiece(myColor, Pawn), "Board DoMove: move type en passant but from piece not pawn")
		assert.Assert(b.state.enPassantSquare != SqNone, "Board DoMove: en passant move type without en passant target")
		assert.Assert(b.pieceList[capSq] == MakePiece(myColor.Flip(), Pawn), "Board DoMove: captured en passant piece invalid")
	}
	b.removePiece(capSq)
	b.movePiece(fromSq, toSq)
	b.clearEnPassant()
	b.state.halfMoveClock = 0
}

func (b *Board) doPromotionMove(m Move, fromPc Piece, myColor Color, toSq Square, targetPc Piece, fromSq Square) {
	if assert.DEBUG {
		assert.Assert(fromPc == MakePiece(myColor, Pawn), "Board DoMove: move type promotion but from piece not pawn")
		assert.Assert(myColor.PromotionRankBb().Has(toSq), "Board DoMove: promotion move but wrong rank")
	}
	if targetPc != PieceNone {
		b.removePiece(toSq)
	}
	if b.state.castlingRights != CastlingNone {
		cr := GetCastlingRights(fromSq) | GetCastlingRights(toSq)
		if cr != CastlingNone {
			b.state.zobristKey ^= zobristBase.castlingRights[b.state.castlingRights]
			b.state.castlingRights.Remove(cr)
			b.state.zobristKey ^= zobristBase.castlingRights[b.state.castlingRights]
		}
	}
	b.removePiece(fromSq)
	b.putPiece(MakePiece(myColor, m.PromotionType()), toSq)
	b.clearEnPassant()
	b.state.halfMoveClock = 0
}

func (b *Board) movePiece(fromSq Square, toSq Square) {
	b.putPiece(b.removePiece(fromSq), toSq)
}

// putPiece is one of the four primitives (with removePiece, movePiece and
// the ancillary state mutators) that incrementally keep every Board
// invariant - bitboards, piece list, material, Zobrist key - consistent.
// Search and move generation never touch bitboards directly; only
// make/unmake and the fen setup call this.
func (b *Board) putPiece(piece Piece, square Square) {
	color := piece.ColorOf()
	pieceType := piece.TypeOf()

	if assert.DEBUG {
		assert.Assert(b.pieceList[square] == PieceNone, "tried to put piece on an occupied square: %s", square.String())
		assert.Assert(!b.bbSide[color][pieceType].Has(square), "tried to set bit on bbSide which is already set: %s", square.String())
		assert.Assert(!b.bbPieces[color].Has(square), "tried to set bit on bbPieces which is already set: %s", square.String())
	}

	b.pieceList[square] = piece
	if pieceType == King {
		b.kingSquare[color] = square
	}
	b.bbSide[color][pieceType].PushSquare(square)
	b.bbPieces[color].PushSquare(square)

	b.state.zobristKey ^= zobristBase.pieces[piece][square]
	if pieceType == Pawn {
		b.state.pawnKey ^= zobristBase.pieces[piece][square]
	}

	b.gamePhase += pieceType.GamePhaseValue()
	if b.gamePhase > GamePhaseMax {
		b.gamePhase = GamePhaseMax
	}

	b.materialCount[color] += pieceType.ValueOf()
	if pieceType > Pawn {
		b.materialNonPawn[color] += pieceType.ValueOf()
	}

	b.psqMidValue[color] += PosMidValue(piece, square)
	b.psqEndValue[color] += PosEndValue(piece, square)
}

func (b *Board) removePiece(square Square) Piece {
	removed := b.pieceList[square]
	color := removed.ColorOf()
	pieceType := removed.TypeOf()

	if assert.DEBUG {
		assert.Assert(b.pieceList[square] != PieceNone, "tried to remove piece from an empty square: %s", square.String())
		assert.Assert(b.bbSide[color][pieceType].Has(square), "tried to clear bit from bbSide which is not set: %s", square.String())
		assert.Assert(b.bbPieces[color].Has(square), "tried to clear bit from bbPieces which is not set: %s", square.String())
	}

	b.pieceList[square] = PieceNone
	b.bbSide[color][pieceType].PopSquare(square)
	b.bbPieces[color].PopSquare(square)

	b.state.zobristKey ^= zobristBase.pieces[removed][square]
	if pieceType == Pawn {
		b.state.pawnKey ^= zobristBase.pieces[removed][square]
	}

	b.gamePhase -= pieceType.GamePhaseValue()
	if b.gamePhase < 0 {
		b.gamePhase = 0
	}

	b.materialCount[color] -= pieceType.ValueOf()
	if pieceType > Pawn {
		b.materialNonPawn[color] -= pieceType.ValueOf()
	}

	b.psqMidValue[color] -= PosMidValue(removed, square)
	b.psqEndValue[color] -= PosEndValue(removed, square)
	return removed
}

// clearEnPassant is an ancillary mutator: XOR is an involution, so
// clearing an already-empty en-passant square is a deliberate no-op
// rather than a double-XOR bug.
func (b *Board) clearEnPassant() {
	if b.state.enPassantSquare != SqNone {
		b.state.zobristKey ^= zobristBase.enPassantFile[b.state.enPassantSquare.FileOf()]
		b.state.enPassantSquare = SqNone
	}
}

func (b *Board) fen() string {
	var fen strings.Builder
	for r := Rank1; r <= Rank8; r++ {
		emptySquares := 0
		for f := FileA; f <= FileH; f++ {
			pc := b.pieceList[SquareOf(f, Rank8-r)]
			if pc == PieceNone {
				emptySquares++
			} else {
				if emptySquares > 0 {
					fen.WriteString(strconv.Itoa(emptySquares))
					emptySquares = 0
				}
				fen.WriteString(pc.String())
			}
		}
		if emptySquares > 0 {
			fen.WriteString(strconv.Itoa(emptySquares))
		}
		if r < Rank8 {
			fen.WriteString("/")
		}
	}
	fen.WriteString(" ")
	fen.WriteString(b.state.activeColor.String())
	fen.WriteString(" ")
	fen.WriteString(b.state.castlingRights.String())
	fen.WriteString(" ")
	fen.WriteString(b.state.enPassantSquare.String())
	fen.WriteString(" ")
	fen.WriteString(strconv.Itoa(b.state.halfMoveClock))
	fen.WriteString(" ")
	fen.WriteString(strconv.Itoa((b.state.plyCount + 1) / 2))

	return fen.String()
}

var regexFenPos = regexp.MustCompile("[0-8pPnNbBrRqQkK/]+")
var regexWorB = regexp.MustCompile("^[w|b]$")
var regexCastlingRights = regexp.MustCompile("^(K?Q?k?q?|-)$")
var regexEnPassant = regexp.MustCompile("^([a-h][1-8]|-)$")

// setupBoard decodes a fen in a single pass, deriving bitboards, piece
// list, material, game phase and Zobrist key entirely through putPiece
// and the ancillary mutators - there is no separate "rebuild from fen"
// code path distinct from normal incremental updates.
func (b *Board) setupBoard(fen string) error {
	fen = strings.TrimSpace(fen)
	fenParts := strings.Split(fen, " ")

	if len(fenParts) == 0 {
		return errors.New("fen must not be empty")
	}

	if !regexFenPos.MatchString(fenParts[0]) {
		return errors.New("fen position contains invalid characters")
	}

	currentSquare := SqA8
	for _, c := range fenParts[0] {
		if number, e := strconv.Atoi(string(c)); e == nil {
			currentSquare = Square(int(currentSquare) + (number * int(East)))
		} else if string(c) == "/" {
			currentSquare = Square(int(currentSquare) + 2*int(South))
		} else {
			piece := PieceFromChar(string(c))
			if piece == PieceNone {
				return fmt.Errorf("invalid piece character: %s", string(c))
			}
			b.putPiece(piece, currentSquare)
			currentSquare++
		}
	}
	if currentSquare != SqA2 {
		return errors.New("not reached last square (h1) after reading fen")
	}

	b.state.plyCount = 1
	b.state.enPassantSquare = SqNone

	if len(fenParts) >= 2 {
		if !regexWorB.MatchString(fenParts[1]) {
			return errors.New("fen next player contains invalid characters")
		}
		switch fenParts[1] {
		case "w":
			b.state.activeColor = White
		case "b":
			b.state.activeColor = Black
			b.state.zobristKey ^= zobristBase.nextPlayer
			b.state.plyCount++
		}
	}

	if len(fenParts) >= 3 {
		if !regexCastlingRights.MatchString(fenParts[2]) {
			return errors.New("fen castling rights contains invalid characters")
		}
		if fenParts[2] != "-" {
			for _, c := range fenParts[2] {
				switch string(c) {
				case "K":
					b.state.castlingRights.Add(CastlingWhiteOO)
				case "Q":
					b.state.castlingRights.Add(CastlingWhiteOOO)
				case "k":
					b.state.castlingRights.Add(CastlingBlackOO)
				case "q":
					b.state.castlingRights.Add(CastlingBlackOOO)
				}
			}
		}
		b.state.zobristKey ^= zobristBase.castlingRights[b.state.castlingRights]
	}

	if len(fenParts) >= 4 {
		if !regexEnPassant.MatchString(fenParts[3]) {
			return errors.New("fen en passant square contains invalid characters")
		}
		if fenParts[3] != "-" {
			b.state.enPassantSquare = MakeSquare(fenParts[3])
			b.state.zobristKey ^= zobristBase.enPassantFile[b.state.enPassantSquare.FileOf()]
		}
	}

	if len(fenParts) >= 5 {
		if number, e := strconv.Atoi(fenParts[4]); e == nil {
			b.state.halfMoveClock = number
		} else {
			return e
		}
	}

	if len(fenParts) >= 6 {
		if moveNumber, e := strconv.Atoi(fenParts[5]); e == nil {
			if moveNumber == 0 {
				moveNumber = 1
			}
			b.state.plyCount = 2*moveNumber - (1 - int(b.state.activeColor))
		} else {
			return e
		}
	}

	return nil
}

// //////////////////////////////////////////////////////
// // Getter and Setter functions
// //////////////////////////////////////////////////////

// ZobristKey returns the current Zobrist key for this board.
func (b *Board) ZobristKey() Key {
	return b.state.zobristKey
}

// PawnKey returns the current Zobrist subkey hashing only pawn
// placement, used to key the evaluator's pawn structure cache.
func (b *Board) PawnKey() Key {
	return b.state.pawnKey
}

// NextPlayer returns the active color.
func (b *Board) NextPlayer() Color {
	return b.state.activeColor
}

// GetPiece returns the piece on sq, or PieceNone if empty.
func (b *Board) GetPiece(sq Square) Piece {
	return b.pieceList[sq]
}

// PiecesBb returns the bitboard for (c, pt).
func (b *Board) PiecesBb(c Color, pt PieceType) Bitboard {
	return b.bbSide[c][pt]
}

// OccupiedAll returns the bitboard of all occupied squares.
func (b *Board) OccupiedAll() Bitboard {
	return b.bbPieces[White] | b.bbPieces[Black]
}

// OccupiedBb returns the occupancy bitboard for color c.
func (b *Board) OccupiedBb(c Color) Bitboard {
	return b.bbPieces[c]
}

// GamePhase returns the current game phase (24 at the start of the
// game, 0 once no officers remain).
func (b *Board) GamePhase() int {
	return b.gamePhase
}

// GamePhaseFactor returns GamePhase()/GamePhaseMax.
func (b *Board) GamePhaseFactor() float64 {
	return float64(b.gamePhase) / GamePhaseMax
}

// GetEnPassantSquare returns the en passant target square, or SqNone.
func (b *Board) GetEnPassantSquare() Square {
	return b.state.enPassantSquare
}

// CastlingRights returns the current castling rights.
func (b *Board) CastlingRights() CastlingRights {
	return b.state.castlingRights
}

// KingSquare returns the current square of color c's king.
func (b *Board) KingSquare(c Color) Square {
	return b.kingSquare[c]
}

// HalfMoveClock returns the halfmove clock (50-move-rule counter).
func (b *Board) HalfMoveClock() int {
	return b.state.halfMoveClock
}

// Material returns the material value for color c.
func (b *Board) Material(c Color) Value {
	return b.materialCount[c]
}

// MaterialNonPawn returns the non-pawn material value for color c.
func (b *Board) MaterialNonPawn(c Color) Value {
	return b.materialNonPawn[c]
}

// PsqMidValue returns the early-game piece-square total for color c.
func (b *Board) PsqMidValue(c Color) Value {
	return b.psqMidValue[c]
}

// PsqEndValue returns the late-game piece-square total for color c.
func (b *Board) PsqEndValue(c Color) Value {
	return b.psqEndValue[c]
}

// LastMove returns the last move made, or MoveNone with empty history.
func (b *Board) LastMove() Move {
	if b.historyCounter <= 0 {
		return MoveNone
	}
	return b.history[b.historyCounter-1].state.lastMove
}

// LastCapturedPiece returns the piece captured by the last move, or
// PieceNone if it was non-capturing or history is empty.
func (b *Board) LastCapturedPiece() Piece {
	if b.historyCounter <= 0 {
		return PieceNone
	}
	return b.history[b.historyCounter-1].capturedPiece
}

// WasCapturingMove reports whether the last move captured a piece.
func (b *Board) WasCapturingMove() bool {
	return b.LastCapturedPiece() != PieceNone
}
