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

// Value is a centipawn evaluation or search score, from the perspective
// of the side being evaluated.
type Value int16

// Bounds and landmark scores. CheckMate is kept well below Infinite so
// that mate-distance adjustments (CheckMate - ply) never overflow or
// collide with ordinary evaluations.
const (
	ValueZero     Value = 0
	ValueDraw     Value = 0
	ValueInfinite Value = 15000
	ValueNA       Value = -ValueInfinite - 1
	ValueCheckMate      Value = 10000
	ValueCheckMateThreshold Value = ValueCheckMate - 1000
	// ValueMin/ValueMax are the full alpha/beta search window a root call
	// starts with, one shy of Infinite so a mate score found at the root
	// (CheckMate - ply) is still strictly inside the window.
	ValueMin Value = -ValueInfinite + 1
	ValueMax Value = ValueInfinite - 1
)

// IsValid reports whether v lies within the representable range.
func (v Value) IsValid() bool {
	return v >= -ValueInfinite && v <= ValueInfinite
}

// IsCheckMateValue reports whether v encodes a forced mate (for either side).
func (v Value) IsCheckMateValue() bool {
	return v >= ValueCheckMateThreshold || v <= -ValueCheckMateThreshold
}

// GamePhaseMax is the material-based game phase value of the starting
// position; 0 is a bare-kings endgame.
const GamePhaseMax = 24
