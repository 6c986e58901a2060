// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"io"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/NVIDIA/btreeindex/conf"
)

var (
	outputLock   sync.Mutex
	logFile      *os.File
	logToConsole bool
	logTargets   []io.Writer
)

func init() {
	log.SetFormatter(&log.TextFormatter{DisableColors: true})
	log.SetLevel(log.InfoLevel)
}

// Up configures logging from the [Logging] section of confMap:
//
//   LogFilePath       - append logs here (empty or missing means stderr only)
//   LogToConsole      - also log to stderr when LogFilePath is set
//   TraceLevelLogging - list of packages to trace, or "none"
//
func Up(confMap conf.ConfMap) (err error) {
	logFilePath, _ := confMap.FetchOptionValueString("Logging", "LogFilePath")

	outputLock.Lock()

	if nil != logFile {
		_ = logFile.Close()
		logFile = nil
	}

	if "" != logFilePath {
		logFile, err = os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if nil != err {
			outputLock.Unlock()
			log.Errorf("couldn't open log file: %v", err)
			return
		}
	}

	logToConsole, err = confMap.FetchOptionValueBool("Logging", "LogToConsole")
	if nil != err {
		logToConsole = false
	}

	resetOutput()

	outputLock.Unlock()

	traceConfSlice, _ := confMap.FetchOptionValueStringSlice("Logging", "TraceLevelLogging")
	setTraceLoggingLevel(traceConfSlice)

	err = nil
	return
}

// Down closes our log file (if any), drops extra log targets and returns
// logging to stderr with tracing disabled.
func Down() (err error) {
	outputLock.Lock()

	if nil != logFile {
		err = logFile.Close()
		logFile = nil
	}
	logToConsole = false
	logTargets = nil

	resetOutput()

	outputLock.Unlock()

	setTraceLoggingLevel(nil)

	return
}

func addLogTarget(writer io.Writer) {
	outputLock.Lock()
	logTargets = append(logTargets, writer)
	resetOutput()
	outputLock.Unlock()
}

// resetOutput must be called with outputLock held
func resetOutput() {
	writers := make([]io.Writer, 0, 2+len(logTargets))

	if nil == logFile {
		writers = append(writers, os.Stderr)
	} else {
		writers = append(writers, logFile)
		if logToConsole {
			writers = append(writers, os.Stderr)
		}
	}

	writers = append(writers, logTargets...)

	if 1 == len(writers) {
		log.SetOutput(writers[0])
	} else {
		log.SetOutput(io.MultiWriter(writers...))
	}
}
