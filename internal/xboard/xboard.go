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

// Package xboard contains the Handler data structure and functionality to
// handle the XBoard/CECP v2 protocol communication between a chess GUI
// and the engine.
package xboard

import (
	"bufio"
	"bytes"
	"os"
	"strings"
	"time"

	"github.com/op/go-logging"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	myLogging "github.com/corvidchess/corvid/internal/logging"
	"github.com/corvidchess/corvid/internal/movegen"
	"github.com/corvidchess/corvid/internal/moveslice"
	"github.com/corvidchess/corvid/internal/board"
	"github.com/corvidchess/corvid/internal/search"
	. "github.com/corvidchess/corvid/internal/types"
	"github.com/corvidchess/corvid/internal/uciInterface"
	"github.com/corvidchess/corvid/internal/version"
)

var out = message.NewPrinter(language.German)
var log *logging.Logger

// defaultMoveTime is used for "go" when no time control has been
// negotiated with "level" or "st".
const defaultMoveTime = 2 * time.Second

// Handler handles all communication with the chess GUI via the
// XBoard/CECP v2 protocol and controls the shared search.
// Create an instance with NewHandler().
type Handler struct {
	InIo       *bufio.Scanner
	OutIo      *bufio.Writer
	myMoveGen  *movegen.Generator
	mySearch   *search.Search
	myPosition *board.Board
	forceMode  bool
	post       bool
	xboardLog  *logging.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler() *Handler {
	if log == nil {
		log = myLogging.GetLog()
	}
	h := &Handler{
		InIo:       bufio.NewScanner(os.Stdin),
		OutIo:      bufio.NewWriter(os.Stdout),
		myMoveGen:  movegen.NewGenerator(),
		mySearch:   search.NewSearch(),
		myPosition: board.NewBoard(),
		forceMode:  false,
		post:       true,
		xboardLog:  myLogging.GetXboardLog(),
	}
	var driver uciInterface.UciDriver
	driver = h
	h.mySearch.SetUciHandler(driver)
	return h
}

// Loop reads commands from InIo until "quit" is received or input ends.
func (h *Handler) Loop() {
	for h.InIo.Scan() {
		line := h.InIo.Text()
		h.xboardLog.Debugf("<< %s", line)
		if !h.handleCommand(line) {
			return
		}
	}
}

// Command handles a single line of XBoard protocol and returns whatever
// was written to OutIo while handling it. Useful for tests.
func (h *Handler) Command(cmd string) string {
	// not used by Loop; kept for symmetry/testability with the uci package.
	tmp := h.OutIo
	buffer := new(bytes.Buffer)
	h.OutIo = bufio.NewWriter(buffer)
	h.handleCommand(cmd)
	_ = h.OutIo.Flush()
	h.OutIo = tmp
	return buffer.String()
}

func (h *Handler) handleCommand(line string) bool {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return true
	}

	switch tokens[0] {
	case "xboard":
		// acknowledged, no reply required
	case "protover":
		h.send("feature myname=\"Corvid %s\" ping=1 setboard=1 usermove=1 san=0 sigint=0 sigterm=0 done=1", version.Version())
	case "new":
		h.forceMode = false
		h.myPosition = board.NewBoard()
		h.mySearch.NewGame()
	case "variant", "random", "easy", "hard", "computer", "name", "rating", "ics", "accepted", "rejected", "pause", "resume":
		// accepted but ignored
	case "force":
		h.forceMode = true
		h.mySearch.StopSearch()
	case "go":
		h.forceMode = false
		h.startSearch()
	case "level":
		// level MPS BASE INC - full time control negotiation is not
		// implemented; engine falls back to defaultMoveTime.
	case "st":
		// seconds per move - ignored, search still uses
		// defaultMoveTime since full time control isn't wired here.
	case "ping":
		if len(tokens) > 1 {
			h.send("pong %s", tokens[1])
		} else {
			h.send("pong")
		}
	case "setboard":
		fen := strings.TrimSpace(strings.TrimPrefix(line, "setboard"))
		p, err := board.NewBoardFen(fen)
		if err != nil {
			h.SendInfoString(out.Sprintf("Illegal position: %s", fen))
			return true
		}
		h.myPosition = p
	case "usermove":
		if len(tokens) < 2 {
			return true
		}
		h.applyUserMove(tokens[1])
	case "undo", "remove":
		h.myPosition.UndoMove()
	case "?":
		h.mySearch.StopSearch()
	case "post":
		h.post = true
	case "nopost":
		h.post = false
	case "analyze":
		sl := search.NewSearchLimits()
		sl.Infinite = true
		go h.mySearch.StartSearch(*h.myPosition, *sl)
	case "exit":
		h.mySearch.StopSearch()
	case "result":
		h.mySearch.StopSearch()
	case ".":
		h.sendStat01()
	case "quit":
		h.mySearch.StopSearch()
		return false
	default:
		// unknown commands are acknowledged with an error per CECP
		h.send("Error (unknown command): %s", tokens[0])
	}
	_ = h.OutIo.Flush()
	return true
}

func (h *Handler) applyUserMove(uciMove string) {
	move := h.myMoveGen.FromUci(h.myPosition, uciMove)
	if !move.IsValid() {
		h.send("Illegal move: %s", uciMove)
		return
	}
	h.myPosition.DoMove(move)
	if h.forceMode {
		return
	}
	h.startSearch()
}

func (h *Handler) startSearch() {
	sl := search.NewSearchLimits()
	sl.TimeControl = true
	sl.MoveTime = defaultMoveTime
	go h.mySearch.StartSearch(*h.myPosition, *sl)
}

func (h *Handler) sendStat01() {
	stats := h.mySearch.Statistics()
	h.send("stat01: %d %d %d 0 0", h.mySearch.LastSearchResult().SearchTime.Milliseconds()/10, h.mySearch.NodesVisited(), stats.CurrentIterationDepth)
}

func (h *Handler) send(format string, a ...interface{}) {
	msg := out.Sprintf(format, a...)
	h.xboardLog.Debugf(">> %s", msg)
	_, _ = h.OutIo.WriteString(msg + "\n")
	_ = h.OutIo.Flush()
}

// ///////////////////////////////////////////////////////////
// uciInterface.UciDriver implementation - reports search progress
// back to the GUI in CECP's "depth score time nodes pv" format.
// ///////////////////////////////////////////////////////////

func (h *Handler) SendReadyOk() {}

func (h *Handler) SendInfoString(info string) {
	h.send("# %s", info)
}

func (h *Handler) SendIterationEndInfo(depth int, _ int, value Value, nodes uint64, _ uint64, t time.Duration, pv moveslice.MoveSlice) {
	if !h.post {
		return
	}
	h.send("%d %d %d %d %s", depth, value, t.Milliseconds()/10, nodes, pv.StringUci())
}

func (h *Handler) SendCurrentRootMove(_ Move, _ int) {}

func (h *Handler) SendSearchUpdate(_ int, _ int, _ uint64, _ uint64, _ time.Duration, _ int) {}

func (h *Handler) SendCurrentLine(_ moveslice.MoveSlice) {}

func (h *Handler) SendResult(bestMove Move, _ Move) {
	if !bestMove.IsValid() {
		h.send("resign")
		return
	}
	h.myPosition.DoMove(bestMove)
	h.send("move %s", bestMove.StringUci())
	if h.myPosition.HasInsufficientMaterial() {
		h.send("1/2-1/2 {Draw by insufficient material}")
	}
}

