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

// Package logging is a thin helper around "github.com/op/go-logging" so
// each package can get a preconfigured Logger in one line.
package logging

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/op/go-logging"

	"github.com/corvidchess/corvid/internal/config"
)

var (
	standardLog *logging.Logger
	searchLog   *logging.Logger
	testLog     *logging.Logger
	uciLog      *logging.Logger
	xboardLog   *logging.Logger
	protoLogFile *os.File

	standardFormat = logging.MustStringFormatter(`%{time:15:04:05.000} %{shortpkg:-8.8s}:%{shortfile:-14.14s} %{level:-7.7s}:  %{message}`)

	protoLogFilePath string
)

func init() {
	programName, _ := os.Executable()
	exePath := filepath.Dir(programName)
	exeName := strings.TrimSuffix(filepath.Base(programName), ".exe")
	protoLogFilePath = exePath + "/../logs/" + exeName + "_protocol.log"

	standardLog = logging.MustGetLogger("standard")
	searchLog = logging.MustGetLogger("search")
	testLog = logging.MustGetLogger("test")
	uciLog = logging.MustGetLogger("UCI ")
	xboardLog = logging.MustGetLogger("XBRD")
}

// GetLog returns the standard Logger preconfigured with an os.Stdout
// backend and the common time/file/level format.
func GetLog() *logging.Logger {
	backend1 := logging.NewLogBackend(os.Stdout, "", log.Lmsgprefix)
	backend1Formatter := logging.NewBackendFormatter(backend1, standardFormat)
	standardBackEnd := logging.AddModuleLevel(backend1Formatter)
	standardBackEnd.SetLevel(logging.Level(config.LogLevel), "")
	standardLog.SetBackend(standardBackEnd)
	return standardLog
}

// GetSearchLog returns the Logger used by the search package.
func GetSearchLog() *logging.Logger {
	backend1 := logging.NewLogBackend(os.Stdout, "", log.Lmsgprefix)
	backend1Formatter := logging.NewBackendFormatter(backend1, standardFormat)
	searchBackEnd := logging.AddModuleLevel(backend1Formatter)
	searchBackEnd.SetLevel(logging.Level(config.SearchLogLevel), "")
	searchLog.SetBackend(searchBackEnd)
	return searchLog
}

// GetTestLog returns the Logger used by _test.go files.
func GetTestLog() *logging.Logger {
	backend1 := logging.NewLogBackend(os.Stdout, "", log.Lmsgprefix)
	backend1Formatter := logging.NewBackendFormatter(backend1, standardFormat)
	standardBackEnd := logging.AddModuleLevel(backend1Formatter)
	standardBackEnd.SetLevel(logging.Level(config.TestLogLevel), "")
	testLog.SetBackend(standardBackEnd)
	return testLog
}

// GetUciLog returns a Logger dedicated to raw UCI protocol traffic,
// logged to both stdout and a log file.
func GetUciLog() *logging.Logger {
	return getProtoLog(uciLog, `%{time:15:04:05.000} UCI %{message}`)
}

// GetXboardLog returns a Logger dedicated to raw XBoard/CECP protocol
// traffic, logged to both stdout and a log file.
func GetXboardLog() *logging.Logger {
	return getProtoLog(xboardLog, `%{time:15:04:05.000} XBRD %{message}`)
}

func getProtoLog(logger *logging.Logger, format string) *logging.Logger {
	protoFormat := logging.MustStringFormatter(format)
	backend1 := logging.NewLogBackend(os.Stdout, "", log.Lmsgprefix)
	backend1Formatter := logging.NewBackendFormatter(backend1, protoFormat)
	backEnd1 := logging.AddModuleLevel(backend1Formatter)
	backEnd1.SetLevel(logging.DEBUG, "")

	var err error
	protoLogFile, err = os.OpenFile(protoLogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Println("Logfile could not be created", err)
		logger.SetBackend(backEnd1)
		return logger
	}
	backend2 := logging.NewLogBackend(protoLogFile, "", log.Lmsgprefix)
	backend2Formatter := logging.NewBackendFormatter(backend2, protoFormat)
	backEnd2 := logging.AddModuleLevel(backend2Formatter)
	backEnd2.SetLevel(logging.DEBUG, "")
	multi := logging.SetBackend(backEnd1, backEnd2)
	logger.SetBackend(multi)
	return logger
}
