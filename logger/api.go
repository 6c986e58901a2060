// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package logger provides logging wrappers
//
// These wrappers allow us to standardize logging while still using a third-party
// logging package.
//
// This package is currently implemented on top of the sirupsen/logrus package:
//   https://github.com/sirupsen/logrus
//
// The APIs here add package and calling function to all logs.
//
// Logging of trace logs is enabled/disabled on a per package basis.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/NVIDIA/btreeindex/utils"
)

type Level int

// Our logging levels.
//
// We have one more level than logrus (TraceLevel). Trace logs are emitted at
// logrus.InfoLevel but only for packages whose tracing has been enabled.
const (
	// PanicLevel corresponds to logrus.PanicLevel; Logrus will log and then call panic with the log message
	PanicLevel Level = iota
	// FatalLevel corresponds to logrus.FatalLevel; Logrus will log and then calls `os.Exit(1)`.
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	// TraceLevel traces the structural steps of a package (e.g. node splits).
	TraceLevel
)

// Flag to disable all logging, for performance testing.
var disableLoggingForPerfTesting = false

// Set if any package has tracing enabled. Lets us skip the
// call stack walk in the (common) all-disabled case.
var traceLevelEnabled = false

// packageTraceSettings controls whether tracing is enabled for particular packages.
//
// In order to enable tracing for a package using the "Logging.TraceLevelLogging"
// config variable, the package must be in this map.
//
var packageTraceSettings = map[string]bool{
	"avltree":    false,
	"btree":      false,
	"index":      false,
	"logger":     false,
	"rbtree":     false,
	"workoutpkg": false,
}

var packageTraceSettingsLock sync.Mutex

func setTraceLoggingLevel(confStrSlice []string) {
	packageTraceSettingsLock.Lock()

	for pkg := range packageTraceSettings {
		packageTraceSettings[pkg] = false
	}
	traceLevelEnabled = false

HandlePkgs:
	for _, pkg := range confStrSlice {
		switch pkg {
		case "none":
			for enabledPkg := range packageTraceSettings {
				packageTraceSettings[enabledPkg] = false
			}
			traceLevelEnabled = false
			break HandlePkgs
		default:
			if _, ok := packageTraceSettings[pkg]; ok {
				packageTraceSettings[pkg] = true
				traceLevelEnabled = true
			}
		}
	}

	enabledPkgs := make([]string, 0, len(packageTraceSettings))
	for pkg, isEnabled := range packageTraceSettings {
		if isEnabled {
			enabledPkgs = append(enabledPkgs, pkg)
		}
	}

	packageTraceSettingsLock.Unlock()

	for _, pkg := range enabledPkgs {
		Infof("Package %v trace logging is enabled.", pkg)
	}
}

// TraceEnabled returns whether tracing is enabled for pkg.
func TraceEnabled(pkg string) bool {
	if !traceLevelEnabled {
		return false
	}

	packageTraceSettingsLock.Lock()
	isEnabled := packageTraceSettings[pkg]
	packageTraceSettingsLock.Unlock()

	return isEnabled
}

// Log fields supported by logger:
const packageKey string = "package"
const functionKey string = "function"
const errorKey string = "error"
const gidKey string = "goroutine"

// FuncCtx holds the logrus entry decorated with the calling package and function.
type FuncCtx struct {
	funcContext *log.Entry
}

func (ctx *FuncCtx) getPackage() string {
	pkg, ok := ctx.funcContext.Data[packageKey].(string)
	if ok {
		return pkg
	}
	return ""
}

var nullCtx = FuncCtx{funcContext: nil}

// newFuncCtx creates a new function logging context, extracting the calling
// function from the call stack.
func newFuncCtx(level int, fields log.Fields) (ctx *FuncCtx) {
	if disableLoggingForPerfTesting {
		return &nullCtx
	}

	fn, pkg, gid := utils.GetFuncPackage(level + 1)

	if nil == fields {
		fields = make(log.Fields)
	}
	fields[functionKey] = fn
	fields[packageKey] = pkg
	fields[gidKey] = gid

	ctx = &FuncCtx{funcContext: log.WithFields(fields)}
	return ctx
}

var backtraceOneLevel int = 1

func logEnabled(level Level) bool {
	if disableLoggingForPerfTesting {
		return false
	}
	if (level == TraceLevel) && !traceLevelEnabled {
		return false
	}
	return true
}

func Error(args ...interface{}) {
	level := ErrorLevel
	if !logEnabled(level) {
		return
	}
	ctx := newFuncCtx(backtraceOneLevel, nil)
	ctx.log(level, fmt.Sprint(args...))
}

func Info(args ...interface{}) {
	level := InfoLevel
	if !logEnabled(level) {
		return
	}
	ctx := newFuncCtx(backtraceOneLevel, nil)
	ctx.log(level, fmt.Sprint(args...))
}

func Errorf(format string, args ...interface{}) {
	level := ErrorLevel
	if !logEnabled(level) {
		return
	}
	ctx := newFuncCtx(backtraceOneLevel, nil)
	ctx.log(level, fmt.Sprintf(format, args...))
}

func Fatalf(format string, args ...interface{}) {
	level := FatalLevel
	if !logEnabled(level) {
		return
	}
	ctx := newFuncCtx(backtraceOneLevel, nil)
	ctx.log(level, fmt.Sprintf(format, args...))
}

func Infof(format string, args ...interface{}) {
	level := InfoLevel
	if !logEnabled(level) {
		return
	}
	ctx := newFuncCtx(backtraceOneLevel, nil)
	ctx.log(level, fmt.Sprintf(format, args...))
}

// Tracef logs only if tracing has been enabled for the calling package.
func Tracef(format string, args ...interface{}) {
	level := TraceLevel
	if !logEnabled(level) {
		return
	}
	ctx := newFuncCtx(backtraceOneLevel, nil)
	ctx.log(level, fmt.Sprintf(format, args...))
}

func Warnf(format string, args ...interface{}) {
	level := WarnLevel
	if !logEnabled(level) {
		return
	}
	ctx := newFuncCtx(backtraceOneLevel, nil)
	ctx.log(level, fmt.Sprintf(format, args...))
}

func ErrorfWithError(err error, format string, args ...interface{}) {
	level := ErrorLevel
	if !logEnabled(level) {
		return
	}
	ctx := newFuncCtx(backtraceOneLevel, log.Fields{errorKey: err})
	ctx.log(level, fmt.Sprintf(format, args...))
}

func FatalfWithError(err error, format string, args ...interface{}) {
	level := FatalLevel
	if !logEnabled(level) {
		return
	}
	ctx := newFuncCtx(backtraceOneLevel, log.Fields{errorKey: err})
	ctx.log(level, fmt.Sprintf(format, args...))
}

func InfofWithError(err error, format string, args ...interface{}) {
	level := InfoLevel
	if !logEnabled(level) {
		return
	}
	ctx := newFuncCtx(backtraceOneLevel, log.Fields{errorKey: err})
	ctx.log(level, fmt.Sprintf(format, args...))
}

// PanicfWithError logs and then panics with the log message. Used for
// conditions that indicate a bug rather than a caller error.
func PanicfWithError(err error, format string, args ...interface{}) {
	level := PanicLevel
	if disableLoggingForPerfTesting {
		panic(fmt.Sprintf(format, args...))
	}
	ctx := newFuncCtx(backtraceOneLevel, log.Fields{errorKey: err})
	ctx.log(level, fmt.Sprintf(format, args...))
}

func WarnfWithError(err error, format string, args ...interface{}) {
	level := WarnLevel
	if !logEnabled(level) {
		return
	}
	ctx := newFuncCtx(backtraceOneLevel, log.Fields{errorKey: err})
	ctx.log(level, fmt.Sprintf(format, args...))
}

// log is our equivalent to logrus.entry.go's log function, and is intended to
// be the common low-level logging function used internal to this package.
//
// Following the example of logrus.entry.go's equivalent function, "this function
// is not declared with a pointer value because otherwise race conditions will
// occur when using multiple goroutines"
//
func (ctx FuncCtx) log(level Level, args ...interface{}) {
	if nil == ctx.funcContext {
		return
	}

	if (level == TraceLevel) && !TraceEnabled(ctx.getPackage()) {
		return
	}

	switch level {
	case PanicLevel:
		ctx.funcContext.Panic(args...)
	case FatalLevel:
		ctx.funcContext.Fatal(args...)
	case ErrorLevel:
		ctx.funcContext.Error(args...)
	case WarnLevel:
		ctx.funcContext.Warn(args...)
	case TraceLevel:
		ctx.funcContext.Info(args...)
	case InfoLevel:
		ctx.funcContext.Info(args...)
	}
}

// AddLogTarget adds another target for log messages to be written to. writer
// is called once for each log message.
//
func AddLogTarget(writer io.Writer) {
	addLogTarget(writer)
}

// LogBuffer captures the most recent log entries. Useful for writing test cases.
type LogBuffer struct {
	sync.Mutex
	LogEntries   []string // most recent log entry is [0]
	TotalEntries int      // count of all entries seen
}

type LogTarget struct {
	LogBuf *LogBuffer
}

// Init a LogTarget to hold up to nEntry log entries.
func (target *LogTarget) Init(nEntry int) {
	target.LogBuf = &LogBuffer{TotalEntries: 0}
	target.LogBuf.LogEntries = make([]string, nEntry)
}

// Write is called by logger for each log entry
func (target LogTarget) Write(p []byte) (n int, err error) {
	target.LogBuf.Lock()
	defer target.LogBuf.Unlock()

	target.LogBuf.TotalEntries++

	if 0 < len(target.LogBuf.LogEntries) {
		copy(target.LogBuf.LogEntries[1:], target.LogBuf.LogEntries[:len(target.LogBuf.LogEntries)-1])
		target.LogBuf.LogEntries[0] = strings.TrimRight(string(p), " \t\n")
	}

	return len(p), nil
}

// LatestEntry returns the most recent captured entry.
func (target LogTarget) LatestEntry() (entry string) {
	target.LogBuf.Lock()
	defer target.LogBuf.Unlock()

	if 0 < len(target.LogBuf.LogEntries) {
		entry = target.LogBuf.LogEntries[0]
	}
	return
}
