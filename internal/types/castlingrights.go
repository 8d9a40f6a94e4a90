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

import "strings"

// CastlingRights is a 4-bit mask of the still-available castling rights.
//  CastlingWhiteOO  = 1 (K)
//  CastlingWhiteOOO = 2 (Q)
//  CastlingBlackOO  = 4 (k)
//  CastlingBlackOOO = 8 (q)
type CastlingRights uint8

const (
	CastlingNone         CastlingRights = 0
	CastlingWhiteOO      CastlingRights = 1
	CastlingWhiteOOO                    = CastlingWhiteOO << 1
	CastlingWhite                       = CastlingWhiteOO | CastlingWhiteOOO
	CastlingBlackOO                     = CastlingWhiteOO << 2
	CastlingBlackOOO                    = CastlingBlackOO << 1
	CastlingBlack                       = CastlingBlackOO | CastlingBlackOOO
	CastlingAny                         = CastlingWhite | CastlingBlack
	CastlingRightsLength CastlingRights = 16
)

// Has reports whether every bit set in rhs is also set in cr.
func (cr CastlingRights) Has(rhs CastlingRights) bool {
	return cr&rhs == rhs && rhs != CastlingNone
}

// Remove clears the given castling right(s) and returns the new state.
func (cr *CastlingRights) Remove(rhs CastlingRights) CastlingRights {
	*cr = *cr &^ rhs
	return *cr
}

// Add sets the given castling right(s) and returns the new state.
func (cr *CastlingRights) Add(rhs CastlingRights) CastlingRights {
	*cr = *cr | rhs
	return *cr
}

// String returns the FEN castling field (e.g. "KQkq", "-").
func (cr CastlingRights) String() string {
	if cr == CastlingNone {
		return "-"
	}
	var b strings.Builder
	if cr.Has(CastlingWhiteOO) {
		b.WriteString("K")
	}
	if cr.Has(CastlingWhiteOOO) {
		b.WriteString("Q")
	}
	if cr.Has(CastlingBlackOO) {
		b.WriteString("k")
	}
	if cr.Has(CastlingBlackOOO) {
		b.WriteString("q")
	}
	return b.String()
}
