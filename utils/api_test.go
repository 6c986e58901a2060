// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testFuncPackageCaller() (fn string, pkg string) {
	fn, pkg, _ = GetFuncPackage(0)
	return
}

func TestGetFuncPackage(t *testing.T) {
	assert := assert.New(t)

	fn, pkg := testFuncPackageCaller()
	assert.Equal("testFuncPackageCaller", fn)
	assert.Equal("utils", pkg)

	assert.Equal("utils.TestGetFuncPackage", GetFnName())
	assert.NotEqual(uint64(0), GetGID())
}

func TestStopwatch(t *testing.T) {
	assert := assert.New(t)

	sw := NewStopwatch()
	assert.True(sw.IsRunning)
	time.Sleep(2 * time.Millisecond)
	elapsed := sw.Stop()
	assert.False(sw.IsRunning)
	assert.True(elapsed >= 2*time.Millisecond)
	assert.Equal(elapsed, sw.Elapsed(), "stopped Stopwatch must not advance")

	sw.Restart()
	assert.True(sw.IsRunning)
	assert.True(sw.Elapsed() < elapsed+time.Second)
}

func TestJSONify(t *testing.T) {
	assert := assert.New(t)

	type testStruct struct {
		Degree int
		Kinds  []string
	}

	packed := JSONify(testStruct{Degree: 3, Kinds: []string{"btree", "avl"}}, false)
	assert.Equal(`{"Degree":3,"Kinds":["btree","avl"]}`, packed)

	indented := JSONify(testStruct{Degree: 2}, true)
	assert.Contains(indented, "\t\"Degree\": 2")

	broken := JSONify(make(chan int), false)
	assert.Contains(broken, "json.Marshal failed")
}
