// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package workoutpkg races the index implementations against each other.
//
// Run is driven by the [TreeWorkout] section of a ConfMap:
//
//  [TreeWorkout]
//  Implementations: btree avl rbtree googlebtree
//  Degrees:         2 3 16
//  KeyCounts:       1000 100000
//  Repeat:          3
//  Seed:            0
//  DeleteFraction:  0.5
//
// Degree-taking Implementations run once per Degree. Repeat, Seed and
// DeleteFraction are optional and default to 1, 0 and 0.5.
//
// Each round hashes a fresh key set with cityhash, then times inserting all of
// them, searching for all of them, and deleting DeleteFraction of them in
// every contender. Contenders are ranked per round by total time.
package workoutpkg

import (
	"fmt"
	"io"
	"strings"

	"github.com/NVIDIA/btreeindex/conf"
)

// Result is one contender's timings for one round.
type Result struct {
	Name        string // Kind, suffixed with "-t<Degree>" for degree-taking kinds
	Kind        string
	Degree      int
	KeyCount    uint64
	Repeat      uint64
	InsertUsecs uint64
	SearchUsecs uint64
	DeleteUsecs uint64
	Rank        int // 1 is fastest in this round
}

// Standing summarizes a contender's ranks across every round.
type Standing struct {
	Name        string
	AverageRank float64
	Runs        uint64
}

// Report is what Run returns.
type Report struct {
	Results   []Result   // grouped by round, fastest first
	Standings []Standing // best AverageRank first
	Stats     string     // bucketstats of every contender
}

// Run executes every configured round. Any contender losing or miscounting a
// key fails the whole run with InvariantViolationError.
func Run(confMap conf.ConfMap) (report *Report, err error) {
	report, err = run(confMap)
	return
}

// GenerateKeys returns count 64-bit keys, the i-th being the cityhash of i
// under seed. Identical arguments always yield identical keys.
func GenerateKeys(count uint64, seed uint64) (keys []uint64) {
	keys = generateKeys(count, seed)
	return
}

// DumpTree builds a B-tree of the given degree from keys, applies deletes, and
// writes its structure followed by its three traversals to w.
func DumpTree(w io.Writer, degree int, keys []int, deletes []int) (err error) {
	err = dumpTree(w, degree, keys, deletes)
	return
}

func (result *Result) totalUsecs() uint64 {
	return result.InsertUsecs + result.SearchUsecs + result.DeleteUsecs
}

// Sprint renders the report as a results table, the standings, then the stats.
func (report *Report) Sprint() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%-16s %10s %6s %12s %12s %12s %4s\n",
		"contender", "keys", "round", "insert(us)", "search(us)", "delete(us)", "rank")
	for _, result := range report.Results {
		fmt.Fprintf(&sb, "%-16s %10d %6d %12d %12d %12d %4d\n",
			result.Name, result.KeyCount, result.Repeat,
			result.InsertUsecs, result.SearchUsecs, result.DeleteUsecs, result.Rank)
	}

	fmt.Fprintf(&sb, "\nstandings:\n")
	for i, standing := range report.Standings {
		fmt.Fprintf(&sb, "%3d. %-16s average rank %.2f over %d rounds\n",
			i+1, standing.Name, standing.AverageRank, standing.Runs)
	}

	fmt.Fprintf(&sb, "\n%s", report.Stats)

	return sb.String()
}
