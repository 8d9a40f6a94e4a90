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

package types

import (
	"fmt"
	"strings"
)

// MoveType classifies how a move changes the board beyond a plain
// from->to relocation.
type MoveType uint8

const (
	Normal MoveType = iota
	Promotion
	EnPassant
	Castling
)

// IsValid reports whether mt is one of the four known move types.
func (mt MoveType) IsValid() bool {
	return mt <= Castling
}

var moveTypeToString = [4]string{"n", "p", "e", "c"}

// String returns a one letter code for the move type.
func (mt MoveType) String() string {
	return moveTypeToString[mt]
}

// Move packs a chess move plus an optional ordering score into a single
// 32 bit word.
//  bit 0-5   to square
//  bit 6-11  from square
//  bit 12-13 promotion piece type - 2 (Knight..Queen -> 0..3)
//  bit 14-15 move type
//  bit 16-31 signed sort value, biased by -ValueNA so it stores unsigned
type Move uint32

// MoveNone is the zero value and represents "no move".
const MoveNone Move = 0

const (
	fromShift     uint = 6
	promTypeShift uint = 12
	typeShift     uint = 14
	valueShift    uint = 16

	squareMask   Move = 0x3F
	toMask            = squareMask
	fromMask          = squareMask << fromShift
	promTypeMask Move = 3 << promTypeShift
	moveTypeMask Move = 3 << typeShift
	moveMask     Move = 0xFFFF
	valueMask    Move = 0xFFFF << valueShift
)

// CreateMove packs a move with no sort value.
func CreateMove(from Square, to Square, t MoveType, promType PieceType) Move {
	if promType < Knight {
		promType = Knight
	}
	return Move(to) |
		Move(from)<<fromShift |
		Move(promType-Knight)<<promTypeShift |
		Move(t)<<typeShift
}

// CreateMoveValue packs a move together with an ordering score.
func CreateMoveValue(from Square, to Square, t MoveType, promType PieceType, value Value) Move {
	if promType < Knight {
		promType = Knight
	}
	return Move(value-ValueNA)<<valueShift |
		Move(to) |
		Move(from)<<fromShift |
		Move(promType-Knight)<<promTypeShift |
		Move(t)<<typeShift
}

// MoveType returns the move's MoveType.
func (m Move) MoveType() MoveType {
	return MoveType((m & moveTypeMask) >> typeShift)
}

// PromotionType returns the promotion piece type. Only meaningful when
// MoveType() == Promotion.
func (m Move) PromotionType() PieceType {
	return PieceType((m&promTypeMask)>>promTypeShift) + Knight
}

// To returns the destination square.
func (m Move) To() Square {
	return Square(m & toMask)
}

// From returns the origin square.
func (m Move) From() Square {
	return Square((m & fromMask) >> fromShift)
}

// MoveOf strips the sort value, leaving only the identity of the move.
func (m Move) MoveOf() Move {
	return m & moveMask
}

// ValueOf returns the move's sort value.
func (m Move) ValueOf() Value {
	return Value((m&valueMask)>>valueShift) + ValueNA
}

// SetValue encodes v as the move's sort value.
func (m *Move) SetValue(v Value) Move {
	if *m == MoveNone {
		return *m
	}
	*m = *m&moveMask | Move(v-ValueNA)<<valueShift
	return *m
}

// IsValid reports whether m has valid squares, promotion type and move
// type. MoveNone is never valid.
func (m Move) IsValid() bool {
	return m != MoveNone &&
		m.From().IsValid() &&
		m.To().IsValid() &&
		m.PromotionType().IsValid() &&
		m.MoveType().IsValid()
}

// String renders a move for diagnostics as uci string, move type,
// promotion type and sort value, e.g. "Move{e2e4 n N -15001}" for a
// normal move created without a sort value.
func (m Move) String() string {
	if m == MoveNone {
		return "Move{none}"
	}
	return fmt.Sprintf("Move{%s %s %s %d}", m.StringUci(), m.MoveType().String(), m.PromotionType().Char(), m.ValueOf())
}

// StringUci renders the move in UCI long algebraic form, e.g. "e7e8q".
func (m Move) StringUci() string {
	if m == MoveNone {
		return "0000"
	}
	var b strings.Builder
	b.WriteString(m.From().String())
	b.WriteString(m.To().String())
	if m.MoveType() == Promotion {
		b.WriteString(strings.ToLower(m.PromotionType().Char()))
	}
	return b.String()
}
