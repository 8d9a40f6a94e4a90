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

// Package openingbook reads opening game databases of different formats
// into an in-memory lookup table keyed by Zobrist position key. It is
// consulted by the search before tree search starts; it never learns
// from games played, it is read-only.
//
// Supported formats:
//
// Simple - one game per line as from-square/to-square UCI moves
//
// San - one game per line in SAN notation
//
// Pgn - PGN formatted games, metadata ignored
package openingbook

import (
	"bufio"
	"encoding/gob"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/op/go-logging"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	myLogging "github.com/corvidchess/corvid/internal/logging"
	"github.com/corvidchess/corvid/internal/movegen"
	"github.com/corvidchess/corvid/internal/board"
	. "github.com/corvidchess/corvid/internal/types"
)

var out = message.NewPrinter(language.German)
var log *logging.Logger

// parallel controls whether lines/games are processed concurrently.
// Kept false in tests wanting deterministic counters is not required -
// counters only ever increment, order does not matter.
const parallel = true

// BookFormat identifies the textual format of an opening book file.
type BookFormat uint8

// Supported book formats.
const (
	Simple BookFormat = iota
	San
	Pgn
)

// FormatFromString maps configuration/CLI format names to BookFormat.
var FormatFromString = map[string]BookFormat{
	"Simple": Simple,
	"San":    San,
	"Pgn":    Pgn,
}

// Successor links a move to the Zobrist key of the position it leads to.
type Successor struct {
	Move      uint32
	NextEntry uint64
}

// Entry describes exactly one position, identified by its Zobrist key,
// and the moves known to follow it in the book.
type Entry struct {
	ZobristKey uint64
	Counter    int
	Moves      []Successor
}

// Book is an in-memory opening book built from one or more game files.
type Book struct {
	bookMap     map[uint64]Entry
	rootEntry   uint64
	initialized bool
	mu          sync.Mutex
}

// NewBook creates an empty, uninitialized Book.
func NewBook() *Book {
	if log == nil {
		log = myLogging.GetLog()
	}
	return &Book{bookMap: map[uint64]Entry{}}
}

// Initialize reads and indexes a book file. folderOrPath is either the
// full path to the book file (when file is empty) or the folder
// containing it (when file is non-empty). Initialize is a no-op if
// called again on an already-initialized Book; call Reset first.
func (b *Book) Initialize(folderOrPath string, file string, format BookFormat, useCache bool, recreateCache bool) error {
	if b.initialized {
		return nil
	}

	bookPath := folderOrPath
	if file != "" {
		bookPath = filepath.Join(folderOrPath, file)
	}

	log.Infof("Initializing opening book from %s", bookPath)
	startTotal := time.Now()

	if _, err := os.Stat(bookPath); err != nil {
		log.Errorf("file %q does not exist", bookPath)
		return err
	}

	if useCache && !recreateCache {
		startReading := time.Now()
		hasCache, err := b.loadFromCache(bookPath)
		elapsedReading := time.Since(startReading)
		if err != nil {
			log.Warningf("cache could not be loaded, reading original data from %q", bookPath)
		}
		if hasCache {
			log.Infof("finished reading cache from file in %d ms", elapsedReading.Milliseconds())
			log.Infof("book from cache contains %d entries", len(b.bookMap))
			b.initialized = true
			return nil
		}
	}

	log.Infof("reading opening book file: %s", bookPath)
	startReading := time.Now()
	lines, err := b.readFile(bookPath)
	if err != nil {
		log.Errorf("file %q could not be read: %s", bookPath, err)
		return err
	}
	elapsedReading := time.Since(startReading)
	log.Infof("finished reading %d lines from file in %d ms", len(*lines), elapsedReading.Milliseconds())

	startPosition := board.NewBoard()
	b.bookMap = make(map[uint64]Entry)
	b.rootEntry = uint64(startPosition.ZobristKey())
	b.bookMap[b.rootEntry] = Entry{ZobristKey: b.rootEntry, Counter: 0, Moves: nil}

	startProcessing := time.Now()
	if err := b.process(lines, format); err != nil {
		log.Errorf("error while processing: %s", err)
		return err
	}
	elapsedProcessing := time.Since(startProcessing)
	log.Infof("finished processing %d lines in %d ms", len(*lines), elapsedProcessing.Milliseconds())

	log.Infof("book contains %d entries", len(b.bookMap))
	log.Infof("total initialization time: %d ms", time.Since(startTotal).Milliseconds())

	if useCache {
		startSave := time.Now()
		cacheFile, nBytes, err := b.saveToCache(bookPath)
		if err != nil {
			log.Errorf("error while saving to cache: %s", err)
		} else {
			log.Infof("saved %s kB to cache %s in %d ms", out.Sprintf("%d", nBytes/1_024), cacheFile, time.Since(startSave).Milliseconds())
		}
	}

	b.initialized = true
	return nil
}

// NumberOfEntries returns the number of positions held in the book.
func (b *Book) NumberOfEntries() int {
	return len(b.bookMap)
}

// GetEntry returns the entry for the given Zobrist key, if present.
func (b *Book) GetEntry(key board.Key) (Entry, bool) {
	e, ok := b.bookMap[uint64(key)]
	return e, ok
}

// Reset clears the book so Initialize can be called again.
func (b *Book) Reset() {
	b.bookMap = map[uint64]Entry{}
	b.rootEntry = 0
	b.initialized = false
}

func (b *Book) readFile(bookPath string) (*[]string, error) {
	f, err := os.Open(bookPath)
	if err != nil {
		log.Errorf("file %q could not be opened: %s", bookPath, err)
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Errorf("file %q could not be closed: %s", bookPath, cerr)
		}
	}()
	var lines []string
	s := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	s.Buffer(buf, 1024*1024)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if err := s.Err(); err != nil {
		log.Errorf("error while reading file %q: %s", bookPath, err)
		return nil, err
	}
	return &lines, nil
}

func (b *Book) process(lines *[]string, format BookFormat) error {
	switch format {
	case Simple:
		b.processSimple(lines)
	case San:
		b.processSan(lines)
	case Pgn:
		b.processPgn(lines)
	}
	return nil
}

func (b *Book) processSimple(lines *[]string) {
	if parallel {
		var wg sync.WaitGroup
		wg.Add(len(*lines))
		for _, line := range *lines {
			go func(line string) {
				defer wg.Done()
				b.processSimpleLine(line)
			}(line)
		}
		wg.Wait()
		return
	}
	for _, line := range *lines {
		b.processSimpleLine(line)
	}
}

var regexSimpleUciMove = regexp.MustCompile(`([a-h][1-8][a-h][1-8])`)

func (b *Book) processSimpleLine(line string) {
	line = strings.TrimSpace(line)
	matches := regexSimpleUciMove.FindAllString(line, -1)
	if len(matches) == 0 {
		return
	}
	b.bumpRootCounter()
	pos := board.NewBoard()
	mg := movegen.NewGenerator()
	for _, moveString := range matches {
		if err := b.processSingleMove(moveString, mg, pos); err != nil {
			break
		}
	}
}

func (b *Book) processSan(lines *[]string) {
	if parallel {
		var wg sync.WaitGroup
		wg.Add(len(*lines))
		for _, line := range *lines {
			go func(line string) {
				defer wg.Done()
				b.processSanLine(line)
			}(line)
		}
		wg.Wait()
		return
	}
	for _, line := range *lines {
		b.processSanLine(line)
	}
}

var regexResult = regexp.MustCompile(`((1-0)|(0-1)|(1/2-1/2)|(\*))$`)

func (b *Book) processPgn(lines *[]string) {
	var gamesSlices [][]string
	start := 0
	for i, l := range *lines {
		if regexResult.MatchString(strings.TrimSpace(l)) {
			end := i + 1
			gamesSlices = append(gamesSlices, (*lines)[start:end])
			start = end
		}
	}
	log.Infof("found %d games in pgn file", len(gamesSlices))

	if parallel {
		var wg sync.WaitGroup
		wg.Add(len(gamesSlices))
		for _, gs := range gamesSlices {
			go func(gs []string) {
				defer wg.Done()
				b.processPgnGame(gs)
			}(gs)
		}
		wg.Wait()
		return
	}
	for _, gs := range gamesSlices {
		b.processPgnGame(gs)
	}
}

var (
	regexTrailingComments = regexp.MustCompile(`;.*$`)
	regexTagPairs         = regexp.MustCompile(`\[\w+ +".*?"\]`)
	regexNagAnnotation    = regexp.MustCompile(`(\$\d{1,3})`)
	regexBracketComments  = regexp.MustCompile(`{[^{}]*}`)
	regexReservedSymbols  = regexp.MustCompile(`<[^<>]*>`)
	regexRavVariants      = regexp.MustCompile(`\([^()]*\)`)
)

func (b *Book) processPgnGame(gameSlice []string) {
	var moveLine strings.Builder
	for _, l := range gameSlice {
		l = strings.TrimSpace(l)
		if strings.HasPrefix(l, "%") {
			continue
		}
		l = regexTagPairs.ReplaceAllString(l, "")
		l = regexResult.ReplaceAllString(l, "")
		l = regexTrailingComments.ReplaceAllString(l, "")
		l = strings.TrimSpace(l)
		if len(l) == 0 {
			continue
		}
		moveLine.WriteString(" ")
		moveLine.WriteString(l)
	}
	line := moveLine.String()
	line = regexNagAnnotation.ReplaceAllString(line, " ")
	line = regexBracketComments.ReplaceAllString(line, " ")
	line = regexReservedSymbols.ReplaceAllString(line, " ")
	for regexRavVariants.MatchString(line) {
		line = regexRavVariants.ReplaceAllString(line, " ")
	}
	b.processSanLine(line)
}

var (
	regexSanLineStart           = regexp.MustCompile(`^\d+\. ?`)
	regexSanLineCleanUpNumbers  = regexp.MustCompile(`(\d+\.{1,3} ?)`)
	regexSanLineCleanUpResults = regexp.MustCompile(`(1/2|1|0)-(1/2|1|0)`)
	regexWhiteSpace              = regexp.MustCompile(`\s+`)
)

func (b *Book) processSanLine(line string) {
	line = strings.TrimSpace(line)
	if !regexSanLineStart.MatchString(line) {
		return
	}

	line = regexSanLineCleanUpNumbers.ReplaceAllString(line, "")
	line = regexSanLineCleanUpResults.ReplaceAllString(line, "")
	line = strings.TrimSpace(line)

	moveStrings := regexWhiteSpace.Split(line, -1)
	if len(moveStrings) == 0 {
		return
	}

	b.bumpRootCounter()
	pos := board.NewBoard()
	mg := movegen.NewGenerator()
	for _, moveString := range moveStrings {
		if err := b.processSingleMove(moveString, mg, pos); err != nil {
			log.Warningf("move not valid %q on %s", moveString, pos.StringFen())
			break
		}
	}
}

func (b *Book) bumpRootCounter() {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, found := b.bookMap[b.rootEntry]
	if !found {
		panic("root entry of book map not found")
	}
	e.Counter++
	b.bookMap[b.rootEntry] = e
}

var (
	regexUciMove = regexp.MustCompile(`([a-h][1-8][a-h][1-8])([NBRQnbrq])?`)
	regexSanMove = regexp.MustCompile(`([NBRQK])?([a-h])?([1-8])?x?([a-h][1-8]|O-O-O|O-O)(=?([NBRQ]))?([!?+#]*)?`)
)

func (b *Book) processSingleMove(s string, mg *movegen.Generator, pos *board.Board) error {
	move := MoveNone
	switch {
	case regexUciMove.MatchString(s):
		move = mg.FromUci(pos, s)
	case regexSanMove.MatchString(s):
		move = mg.FromSan(pos, s)
	}
	if !move.IsValid() {
		return errors.New("invalid move " + s)
	}
	curPosKey := uint64(pos.ZobristKey())
	pos.DoMove(move)
	nextPosKey := uint64(pos.ZobristKey())
	b.addToBook(curPosKey, nextPosKey, uint32(move))
	return nil
}

func (b *Book) addToBook(curPosKey uint64, nextPosKey uint64, move uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	currentPosEntry, found := b.bookMap[curPosKey]
	if !found {
		log.Error("could not find current position in book")
		return
	}

	nextPosEntry, found := b.bookMap[nextPosKey]
	if found {
		nextPosEntry.Counter++
		b.bookMap[nextPosKey] = nextPosEntry
		return
	}
	b.bookMap[nextPosKey] = Entry{ZobristKey: nextPosKey, Counter: 1}
	currentPosEntry.Moves = append(currentPosEntry.Moves, Successor{Move: move, NextEntry: nextPosKey})
	b.bookMap[curPosKey] = currentPosEntry
}

func (b *Book) loadFromCache(bookPath string) (bool, error) {
	cachePath := bookPath + ".cache"

	decodeFile, err := os.Open(cachePath)
	if err != nil {
		return false, err
	}
	defer decodeFile.Close()

	decoder := gob.NewDecoder(decodeFile)

	b.mu.Lock()
	err = decoder.Decode(&b.bookMap)
	b.mu.Unlock()
	if err != nil {
		return false, err
	}

	p := board.NewBoard()
	b.rootEntry = uint64(p.ZobristKey())
	return true, nil
}

func (b *Book) saveToCache(bookPath string) (string, int64, error) {
	cachePath := bookPath + ".cache"

	encodeFile, err := os.Create(cachePath)
	if err != nil {
		return cachePath, 0, err
	}
	enc := gob.NewEncoder(encodeFile)

	b.mu.Lock()
	encErr := enc.Encode(b.bookMap)
	b.mu.Unlock()
	if encErr != nil {
		_ = encodeFile.Close()
		return cachePath, 0, encErr
	}

	if err := encodeFile.Close(); err != nil {
		return cachePath, 0, err
	}
	fileInfo, _ := os.Stat(cachePath)
	return cachePath, fileInfo.Size(), nil
}
