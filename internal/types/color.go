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

import "fmt"

// Color represents one of the two sides in a chess game.
type Color uint8

// Constants for the two sides. White always moves first.
const (
	White       Color = 0
	Black       Color = 1
	ColorLength int   = 2
)

// Flip returns the opposing color.
func (c Color) Flip() Color {
	return c ^ 1
}

// IsValid reports whether c is White or Black.
func (c Color) IsValid() bool {
	return c < 2
}

// String returns "w" or "b".
func (c Color) String() string {
	switch c {
	case White:
		return "w"
	case Black:
		return "b"
	default:
		panic(fmt.Sprintf("invalid color %d", c))
	}
}

var pawnMoveDirection = [2]Direction{North, South}

// PawnDirection returns the direction a pawn of this color advances.
func (c Color) PawnDirection() Direction {
	return pawnMoveDirection[c]
}

// MoveDirection returns the direction a pawn of this color advances.
func (c Color) MoveDirection() Direction {
	return pawnMoveDirection[c]
}

var directionFactor = [2]int{1, -1}

// Direction returns 1 for White and -1 for Black.
func (c Color) Direction() int {
	return directionFactor[c]
}

var promotionRankBb = [2]Bitboard{Rank8_Bb, Rank1_Bb}

// PromotionRankBb returns the bitboard of the rank on which this color promotes.
func (c Color) PromotionRankBb() Bitboard {
	return promotionRankBb[c]
}

// PromotionRank returns the bitboard of the rank on which this color promotes.
func (c Color) PromotionRank() Bitboard {
	return promotionRankBb[c]
}

var pawnDoubleRankBb = [2]Bitboard{Rank3_Bb, Rank6_Bb}

// PawnDoubleRank returns the rank from which a pawn of this color may
// advance two squares.
func (c Color) PawnDoubleRank() Bitboard {
	return pawnDoubleRankBb[c]
}
