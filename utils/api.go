// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package utils provides miscellaneous utilities shared by the index packages.
package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"time"
)

var (
	fnNameRE      = regexp.MustCompile(`[^\/]*$`) // strip the module path
	pkgNameRE     = regexp.MustCompile(`^[^.]*`)  // beginning of string to first "."
	funcNameRE    = regexp.MustCompile(`[^.]*$`)  // last "." to end of string
	goroutinePfx  = []byte("goroutine ")
	unknownFnName = "unknown.unknown"
)

// GetGID returns the id of the calling goroutine.
//
// Only intended for log decoration. Do not build anything on top of it.
//
func GetGID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	b = bytes.TrimPrefix(b, goroutinePfx)
	i := bytes.IndexByte(b, ' ')
	if i < 0 {
		return 0
	}
	n, _ := strconv.ParseUint(string(b[:i]), 10, 64)
	return n
}

// GetAFnName returns "package.function" for the caller level frames above it.
func GetAFnName(level int) string {
	pc, _, _, ok := runtime.Caller(level + 1)
	if !ok {
		return unknownFnName
	}
	functionObject := runtime.FuncForPC(pc)
	if nil == functionObject {
		return unknownFnName
	}
	return fnNameRE.FindString(functionObject.Name())
}

// GetFuncPackage returns the function, package and goroutine id of the caller
// level frames above it.
func GetFuncPackage(level int) (fn string, pkg string, gid uint64) {
	funcPkg := GetAFnName(level + 1)

	pkg = pkgNameRE.FindString(funcPkg)
	fn = funcNameRE.FindString(funcPkg)
	gid = GetGID()

	return
}

// GetFnName returns a string containing the name of the running function and its package.
func GetFnName() string {
	return GetAFnName(1)
}

// GetCallerFnName returns a string containing the name of the calling function.
func GetCallerFnName() string {
	return GetAFnName(2)
}

type Stopwatch struct {
	StartTime   time.Time
	StopTime    time.Time
	ElapsedTime time.Duration
	IsRunning   bool
}

func NewStopwatch() *Stopwatch {
	return &Stopwatch{StartTime: time.Now(), IsRunning: true}
}

// Stop freezes the elapsed time. Stopping a stopped Stopwatch is a no-op.
func (sw *Stopwatch) Stop() time.Duration {
	sw.StopTime = time.Now()
	if sw.IsRunning {
		sw.ElapsedTime = sw.StopTime.Sub(sw.StartTime)
		sw.IsRunning = false
	}
	return sw.ElapsedTime
}

// Restart zeroes and starts a stopped Stopwatch. Restarting a running one is a no-op.
func (sw *Stopwatch) Restart() {
	if !sw.IsRunning {
		sw.ElapsedTime = 0
		sw.StartTime = time.Now()
		sw.StopTime = time.Time{}
		sw.IsRunning = true
	}
}

func (sw *Stopwatch) Elapsed() time.Duration {
	if !sw.IsRunning {
		return sw.ElapsedTime
	}
	return time.Since(sw.StartTime)
}

func (sw *Stopwatch) ElapsedUs() uint64 {
	return uint64(sw.Elapsed() / time.Microsecond)
}

func (sw *Stopwatch) ElapsedNs() uint64 {
	return uint64(sw.Elapsed() / time.Nanosecond)
}

func (sw *Stopwatch) ElapsedString() string {
	return sw.Elapsed().String()
}

func JSONify(input interface{}, indentify bool) (output string) {
	var (
		err             error
		inputJSON       bytes.Buffer
		inputJSONPacked []byte
	)

	inputJSONPacked, err = json.Marshal(input)
	if nil != err {
		output = fmt.Sprintf("<<<json.Marshal failed: %v>>>", err)
		return
	}

	if !indentify {
		output = string(inputJSONPacked)
		return
	}

	err = json.Indent(&inputJSON, inputJSONPacked, "", "\t")
	if nil == err {
		output = inputJSON.String()
	} else {
		output = fmt.Sprintf("<<<json.Indent failed: %v>>>", err)
	}

	return
}
