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

package search

import (
	golog "log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/op/go-logging"

	. "github.com/corvidchess/corvid/internal/config"
	"github.com/corvidchess/corvid/internal/movegen"
	"github.com/corvidchess/corvid/internal/moveslice"
	"github.com/corvidchess/corvid/internal/board"
	"github.com/corvidchess/corvid/internal/transpositiontable"
	. "github.com/corvidchess/corvid/internal/types"
	"github.com/corvidchess/corvid/internal/util"
)

var trace = false

// rootSearch is ply 0 of the negamax tree. Root moves get their own loop
// because the result has to be stored back into the root move list itself
// (for re-ordering before the next iteration) and into pv[0].
//
// Move selection at the root is pick_move driven: rootMoves carries each
// move's search value encoded in its high bits, and PickMove(i) selects the
// best remaining move into slot i before it is searched. Every slot gets
// overwritten with its freshly searched value as the loop goes, so the next
// iteration's PickMove calls select moves in the order of these fresh
// values - no separate sort pass needed. The slice itself is not left
// sorted by the fresh values, since each pick used the previous values.
func (s *Search) rootSearch(position *board.Board, depth int, alpha Value, beta Value) Value {
	if trace {
		s.slog.Debugf("Ply %-2.d Depth %-2.d start: %s", 0, depth, s.statistics.CurrentVariation.StringUci())
		defer s.slog.Debugf("Ply %-2.d Depth %-2.d end: %s", 0, depth, s.statistics.CurrentVariation.StringUci())
	}

	bestNodeValue := ValueNA

	for i := 0; i < s.rootMoves.Len(); i++ {
		m := s.rootMoves.PickMove(i)

		position.DoMove(m)
		s.nodesVisited++
		s.statistics.CurrentVariation.PushBack(m)
		s.statistics.CurrentRootMoveIndex = i
		s.statistics.CurrentRootMove = m

		var value Value
		if s.checkDrawRepAnd50(position, 1) {
			value = ValueDraw
		} else {
			value = -s.search(position, depth-1, 1, -beta, -alpha)
		}

		s.statistics.CurrentVariation.PopBack()
		position.UndoMove()

		// we want to do at least one complete search at depth 1; after that
		// we can stop any time since any new best move will have been saved
		// into pv[0] already.
		if s.stopConditions() && depth > 1 {
			return bestNodeValue
		}

		// store the value back into the move itself so the next iteration's
		// PickMove calls see it.
		s.rootMoves.Set(i, m.SetValue(value))

		if value > bestNodeValue {
			bestNodeValue = value
			savePV(m.SetValue(value), s.pv[1], s.pv[0])
			if value > alpha {
				alpha = value
			}
		}
	}

	return bestNodeValue
}

// search is the fail-hard negamax used below the root (ply > 0). It always
// returns a value relative to the side to move: a value >= beta is reported
// as exactly beta (the caller only knows the move is at least that good, not
// how much better), and a value <= the original alpha means none of this
// node's moves improved on what the ply above already had.
func (s *Search) search(p *board.Board, depth int, ply int, alpha Value, beta Value) Value {
	if trace {
		s.slog.Debugf("%0*s Ply %-2.d Depth %-2.d a:%-6.d b:%-6.d start:  %s", ply, "", ply, depth, alpha, beta, s.statistics.CurrentVariation.StringUci())
		defer s.slog.Debugf("%0*s Ply %-2.d Depth %-2.d a:%-6.d b:%-6.d end  :  %s", ply, "", ply, depth, alpha, beta, s.statistics.CurrentVariation.StringUci())
	}

	// Checkpoint: every NodeCheckpoint nodes we poll for a stop/node-limit
	// condition instead of on every single node, to keep the hot loop cheap.
	if s.nodesVisited%Settings.Search.NodeCheckpoint == 0 {
		s.statistics.CheckpointPolls++
		if s.stopConditions() {
			return ValueNA
		}
	}

	if depth == 0 {
		return s.qsearch(p, ply, alpha, beta)
	}
	if ply >= MaxDepth {
		return s.evaluate(p, ply)
	}

	us := p.NextPlayer()
	bestNodeValue := ValueNA
	bestNodeMove := MoveNone
	ttMove := MoveNone
	ttType := ALPHA

	// TT Lookup. A stored move from a previous (or shallower) search of this
	// position is tried first; a stored value deep enough to trust can cut
	// the node outright.
	var ttEntry *transpositiontable.TtEntry
	if Settings.Search.UseTT {
		ttEntry = s.tt.Probe(p.ZobristKey())
		if ttEntry != nil {
			s.statistics.TTHit++
			ttMove = ttEntry.Move()
			if int(ttEntry.Depth()) >= depth {
				ttValue := valueFromTT(ttEntry.Value(), ply)
				cut := false
				switch {
				case !ttValue.IsValid():
					cut = false
				case ttEntry.Vtype() == EXACT:
					cut = true
				case ttEntry.Vtype() == ALPHA && ttValue <= alpha:
					cut = true
				case ttEntry.Vtype() == BETA && ttValue >= beta:
					cut = true
				}
				if cut && Settings.Search.UseTTValue {
					s.getPVLine(p, s.pv[ply], depth)
					s.statistics.TTCuts++
					return ttValue
				}
				s.statistics.TTNoCuts++
			}
		} else {
			s.statistics.TTMiss++
		}
	}

	myMg := s.mg[ply]
	myMg.Reset()
	s.pv[ply].Clear()

	if Settings.Search.UseTTMove {
		if ttMove != MoveNone {
			s.statistics.TTMoveUsed++
			myMg.SetPvMove(ttMove)
		} else {
			s.statistics.NoTTMove++
		}
	}

	movesSearched := 0
	var value Value

	// MOVE LOOP. The generator hands back moves best-first (PV/TT move,
	// then captures by MVV-LVA, then killers, then the rest): this is the
	// lazy, staged equivalent of scoring every move and repeatedly calling
	// pick_move, without ever materializing moves from a phase a cutoff
	// never reaches.
	for move := myMg.Next(p, movegen.All); move != MoveNone; move = myMg.Next(p, movegen.All) {
		from := move.From()
		to := move.To()

		p.DoMove(move)
		if !p.WasLegalMove() {
			p.UndoMove()
			continue
		}

		s.nodesVisited++
		s.statistics.CurrentVariation.PushBack(move)
		s.sendSearchUpdateToUci()

		if s.checkDrawRepAnd50(p, 1) {
			value = ValueDraw
		} else {
			value = -s.search(p, depth-1, ply+1, -beta, -alpha)
		}

		movesSearched++
		s.statistics.CurrentVariation.PopBack()
		p.UndoMove()

		if s.stopConditions() {
			return ValueNA
		}

		if value > bestNodeValue {
			bestNodeValue = value
			bestNodeMove = move
			if value > alpha {
				savePV(move.SetValue(value), s.pv[ply+1], s.pv[ply])

				if value >= beta {
					s.statistics.BetaCuts++
					if movesSearched == 1 {
						s.statistics.BetaCuts1st++
					}
					if Settings.Search.UseKiller && !p.IsCapturingMove(move) {
						myMg.StoreKiller(move)
					}
					if Settings.Search.UseHistoryCounter {
						s.history.HistoryCount[us][from][to] += 1 << depth
					}
					if Settings.Search.UseCounterMoves {
						if lastMove := p.LastMove(); lastMove != MoveNone {
							s.history.CounterMoves[lastMove.From()][lastMove.To()] = move
						}
					}
					if Settings.Search.UseTT {
						s.storeTT(p, depth, ply, move, beta, BETA)
					}
					// fail-hard: report exactly beta, not the (possibly
					// higher) value actually found.
					return beta
				}

				alpha = value
				ttType = EXACT
			}
		}

		if Settings.Search.UseHistoryCounter {
			s.history.HistoryCount[us][from][to] -= 1 << depth
			if s.history.HistoryCount[us][from][to] < 0 {
				s.history.HistoryCount[us][from][to] = 0
			}
		}
	}

	// No legal move found: checkmate or stalemate.
	if movesSearched == 0 && !s.stopConditions() {
		if p.HasCheck() {
			s.statistics.Checkmates++
			bestNodeValue = -ValueCheckMate + Value(ply)
		} else {
			s.statistics.Stalemates++
			bestNodeValue = ValueDraw
		}
		ttType = EXACT
	}

	if Settings.Search.UseTT {
		s.storeTT(p, depth, ply, bestNodeMove, bestNodeValue, ttType)
	}

	return bestNodeValue
}

// qsearch extends the search along capturing lines past the nominal depth
// limit to avoid the horizon effect: a quiet position just beyond the
// horizon can hide a won or lost piece one capture away. Stand pat assumes
// there is always at least a null move available (the side to move could
// simply decline to capture), so the static evaluation is a lower bound
// unless the position is in check, where every reply must be considered.
func (s *Search) qsearch(p *board.Board, ply int, alpha Value, beta Value) Value {
	if trace {
		s.slog.Debugf("%0*s Ply %-2.d QSearch     a:%-6.d b:%-6.d start:  %s", ply, "", ply, alpha, beta, s.statistics.CurrentVariation.StringUci())
		defer s.slog.Debugf("%0*s Ply %-2.d QSearch     a:%-6.d b:%-6.d end  :  %s", ply, "", ply, alpha, beta, s.statistics.CurrentVariation.StringUci())
	}

	if s.statistics.CurrentExtraSearchDepth < ply {
		s.statistics.CurrentExtraSearchDepth = ply
	}

	if !Settings.Search.UseQuiescence || ply >= MaxDepth {
		return s.evaluate(p, ply)
	}

	bestNodeValue := ValueNA
	ttType := ALPHA
	ttMove := MoveNone
	hasCheck := p.HasCheck()

	if !hasCheck {
		staticEval := s.evaluate(p, ply)
		if Settings.Search.UseQSStandpat && staticEval > alpha {
			if staticEval >= beta {
				s.statistics.StandpatCuts++
				return beta
			}
			alpha = staticEval
		}
		bestNodeValue = staticEval
	}

	var ttEntry *transpositiontable.TtEntry
	if Settings.Search.UseQSTT {
		ttEntry = s.tt.Probe(p.ZobristKey())
		if ttEntry != nil {
			s.statistics.TTHit++
			ttMove = ttEntry.Move()
			ttValue := valueFromTT(ttEntry.Value(), ply)
			cut := false
			switch {
			case !ttValue.IsValid():
				cut = false
			case ttEntry.Vtype() == EXACT:
				cut = true
			case ttEntry.Vtype() == ALPHA && ttValue <= alpha:
				cut = true
			case ttEntry.Vtype() == BETA && ttValue >= beta:
				cut = true
			}
			if cut && Settings.Search.UseTTValue {
				s.statistics.TTCuts++
				return ttValue
			}
			s.statistics.TTNoCuts++
		} else {
			s.statistics.TTMiss++
		}
	}

	bestNodeMove := MoveNone
	myMg := s.mg[ply]
	myMg.Reset()
	s.pv[ply].Clear()

	if Settings.Search.UseQSTT {
		if ttMove != MoveNone {
			s.statistics.TTMoveUsed++
			myMg.SetPvMove(ttMove)
		} else {
			s.statistics.NoTTMove++
		}
	}

	movesSearched := 0
	var value Value

	// in check there is no stand pat so every reply has to be tried
	filter := movegen.Captures
	if hasCheck {
		s.statistics.CheckInQS++
		filter = movegen.All
	}

	for move := myMg.Next(p, filter); move != MoveNone; move = myMg.Next(p, filter) {
		if !hasCheck && !s.goodCapture(p, move) {
			continue
		}

		p.DoMove(move)
		if !p.WasLegalMove() {
			p.UndoMove()
			continue
		}

		s.nodesVisited++
		s.statistics.CurrentVariation.PushBack(move)
		s.sendSearchUpdateToUci()

		if hasCheck && s.checkDrawRepAnd50(p, 1) {
			value = ValueDraw
		} else {
			value = -s.qsearch(p, ply+1, -beta, -alpha)
		}

		movesSearched++
		s.statistics.CurrentVariation.PopBack()
		p.UndoMove()

		if s.stopConditions() {
			return ValueNA
		}

		if value > bestNodeValue {
			bestNodeValue = value
			bestNodeMove = move
			if value > alpha {
				savePV(move, s.pv[ply+1], s.pv[ply])
				if value >= beta {
					s.statistics.BetaCuts++
					if movesSearched == 1 {
						s.statistics.BetaCuts1st++
					}
					if Settings.Search.UseHistoryCounter {
						s.history.HistoryCount[p.NextPlayer()][move.From()][move.To()] += 2
					}
					if Settings.Search.UseCounterMoves {
						if lastMove := p.LastMove(); lastMove != MoveNone {
							s.history.CounterMoves[lastMove.From()][lastMove.To()] = move
						}
					}
					if Settings.Search.UseQSTT {
						s.storeTT(p, 1, ply, move, beta, BETA)
					}
					return beta
				}
				alpha = value
				ttType = EXACT
			}
		}
	}

	// A check with zero legal replies is mate; absence of legal replies
	// otherwise just means the position has no more captures worth trying
	// and bestNodeValue already holds the stand pat value.
	if movesSearched == 0 && !s.stopConditions() && p.HasCheck() {
		s.statistics.Checkmates++
		bestNodeValue = -ValueCheckMate + Value(ply)
		ttType = EXACT
	}

	if Settings.Search.UseQSTT {
		s.storeTT(p, 1, ply, bestNodeMove, bestNodeValue, ttType)
	}

	return bestNodeValue
}

// call evaluation on the position
func (s *Search) evaluate(position *board.Board, ply int) Value {
	s.statistics.LeafPositionsEvaluated++

	var value = ValueNA

	if Settings.Search.UseTT && Settings.Search.UseEvalTT {
		ttEntry := s.tt.Probe(position.ZobristKey())
		if ttEntry != nil {
			s.statistics.TTHit++
			s.statistics.EvaluationsFromTT++
			value = valueFromTT(ttEntry.Value(), ply)
		}
	}

	if value == ValueNA {
		s.statistics.Evaluations++
		value = s.eval.Evaluate(position)
	}

	if Settings.Search.UseTT && Settings.Search.UseEvalTT {
		s.storeTT(position, 0, ply, MoveNone, value, EXACT)
	}

	return value
}

// goodCapture filters which captures are worth extending quiescence search
// into. With SEE enabled it keeps only non-losing exchanges on the target
// square; otherwise it falls back to the cheaper heuristic of keeping
// recaptures, captures of an undefended piece, and captures by a lower-value
// attacker.
func (s *Search) goodCapture(p *board.Board, move Move) bool {
	if Settings.Search.UseSEE {
		return see(p, move) > 0
	}
	return p.GetPiece(move.From()).ValueOf()+50 < p.GetPiece(move.To()).ValueOf() ||
		(p.LastMove() != MoveNone && p.LastMove().To() == move.To() && p.LastCapturedPiece() != PieceNone) ||
		!p.IsAttacked(move.To(), p.NextPlayer().Flip())
}

// savePV adds the given move as first move to a cleared dest and the appends
// all src moves to dest
func savePV(move Move, src *moveslice.MoveSlice, dest *moveslice.MoveSlice) {
	dest.Clear()
	dest.PushBack(move)
	*dest = append(*dest, *src...)
}

// storeTT stores a position into the TT
func (s *Search) storeTT(p *board.Board, depth int, ply int, move Move, value Value, valueType ValueType) {
	s.tt.Put(p.ZobristKey(), move, int8(depth), valueToTT(value, ply), valueType, ValueNA)
}

// getPVLine fills the given pv move list with the pv move starting from the given
// depth as long as these position are in the TT
func (s *Search) getPVLine(p *board.Board, pv *moveslice.MoveSlice, depth int) {
	pv.Clear()
	counter := 0
	ttMatch := s.tt.GetEntry(p.ZobristKey())
	for ttMatch != nil && ttMatch.Move() != MoveNone && counter < depth {
		pv.PushBack(ttMatch.Move())
		p.DoMove(ttMatch.Move())
		counter++
		ttMatch = s.tt.GetEntry(p.ZobristKey())
	}
	for i := 0; i < counter; i++ {
		p.UndoMove()
	}
}

// correct the value for mate distance when storing to TT
func valueToTT(value Value, ply int) Value {
	if value.IsCheckMateValue() {
		if value > 0 {
			value = value + Value(ply)
		} else {
			value = value - Value(ply)
		}
	}
	return value
}

// correct the value for mate distance when reading from TT
func valueFromTT(value Value, ply int) Value {
	if value.IsCheckMateValue() {
		if value > 0 {
			value = value - Value(ply)
		} else {
			value = value + Value(ply)
		}
	}
	return value
}

// getSearchTraceLog returns an instance of a standard Logger preconfigured with a
// os.Stdout backend and a "normal" logging format (e.g. time - file - level)
// for usage in the search itself
func getSearchTraceLog() *logging.Logger {
	searchLog := logging.MustGetLogger("search")

	searchLogFormat := logging.MustStringFormatter(`%{time:15:04:05.000} %{level:-7.7s}:  %{message}`)

	backend1 := logging.NewLogBackend(os.Stdout, "", golog.Lmsgprefix)
	backend1Formatter := logging.NewBackendFormatter(backend1, searchLogFormat)
	searchBackEnd := logging.AddModuleLevel(backend1Formatter)
	searchBackEnd.SetLevel(logging.Level(SearchLogLevel), "")
	searchLog.SetBackend(searchBackEnd)

	// File backend
	programName, _ := os.Executable()
	exeName := strings.TrimSuffix(filepath.Base(programName), ".exe")

	// find log path
	logPath, err := util.ResolveFolder(Settings.Log.LogPath)
	if err != nil {
		golog.Println("Log folder could not be found:", err)
		return searchLog
	}
	searchLogFilePath := filepath.Join(logPath, exeName+"_search.log")

	// create file backend
	searchLogFile, err := os.OpenFile(searchLogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		golog.Println("Logfile could not be created:", err)
		return searchLog
	}
	backend2 := logging.NewLogBackend(searchLogFile, "", golog.Lmsgprefix)
	backend2Formatter := logging.NewBackendFormatter(backend2, searchLogFormat)
	searchBackEnd2 := logging.AddModuleLevel(backend2Formatter)
	searchBackEnd2.SetLevel(logging.DEBUG, "")
	searchLog.SetBackend(searchBackEnd2)
	searchLog.Infof("Log %s started at %s:", searchLogFile.Name(), time.Now().String())
	return searchLog
}
