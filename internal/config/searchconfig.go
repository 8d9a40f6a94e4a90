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

package config

import "time"

// searchConfiguration is a data structure to hold the configuration of an
// instance of a search. The search itself is a fail-hard negamax with
// quiescence - it does not carry the teacher's forward-pruning heuristics
// (null move, futility, late move reductions, aspiration windows, MTD(f)):
// those depend on a fail-soft, margin-tunable search this engine does not
// run. What remains are the knobs the fail-hard contract still has room
// for: move ordering, the transposition table, and time management.
type searchConfiguration struct {
	// Opening book
	UseBook    bool
	BookPath   string
	BookFile   string
	BookFormat string

	// Ponder
	UsePonder bool

	// Quiescence search
	UseQuiescence bool
	UseQSStandpat bool
	UseSEE        bool

	// Move ordering (PV/TT move first, then MVV-LVA captures, then killers)
	UseKiller         bool
	UseHistoryCounter bool
	UseCounterMoves   bool

	// Transposition table
	UseTT      bool
	TTSize     int
	UseTTMove  bool
	UseTTValue bool
	UseQSTT    bool
	UseEvalTT  bool

	// NodeCheckpoint is how often (in visited nodes) the search polls the
	// termination flag and may emit a SearchReport.
	NodeCheckpoint uint64

	// Overhead is subtracted from every computed time budget to leave
	// headroom for protocol and GC latency around the actual search loop.
	Overhead time.Duration

	// MaxMoveRule is the halfmove-clock threshold (in plies) for the
	// 50-move draw rule.
	MaxMoveRule int
}

// sets defaults which might be overwritten by config file
func init() {
	Settings.Search.UseBook = true
	Settings.Search.BookPath = "./assets/books"
	Settings.Search.BookFile = "book.txt"
	Settings.Search.BookFormat = "Simple"

	Settings.Search.UsePonder = true

	Settings.Search.UseQuiescence = true
	Settings.Search.UseQSStandpat = true
	Settings.Search.UseSEE = true

	Settings.Search.UseKiller = true
	Settings.Search.UseHistoryCounter = true
	Settings.Search.UseCounterMoves = true

	Settings.Search.UseTT = true
	Settings.Search.TTSize = 128
	Settings.Search.UseTTMove = true
	Settings.Search.UseTTValue = true
	Settings.Search.UseQSTT = true
	Settings.Search.UseEvalTT = false

	Settings.Search.NodeCheckpoint = 8192
	Settings.Search.Overhead = 25 * time.Millisecond
	Settings.Search.MaxMoveRule = 100
}

// set defaults for configurations here in case a configuration
// is not available from the config file
func setupSearch() {

}
