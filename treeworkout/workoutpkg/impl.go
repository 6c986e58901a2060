// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package workoutpkg

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/NVIDIA/sortedmap"
	"github.com/creachadair/cityhash"

	"github.com/NVIDIA/btreeindex/blunder"
	"github.com/NVIDIA/btreeindex/btree"
	"github.com/NVIDIA/btreeindex/bucketstats"
	"github.com/NVIDIA/btreeindex/conf"
	"github.com/NVIDIA/btreeindex/index"
	"github.com/NVIDIA/btreeindex/logger"
	"github.com/NVIDIA/btreeindex/utils"
)

func run(confMap conf.ConfMap) (report *Report, err error) {
	err = initializeGlobals(confMap)
	if nil != err {
		uninitializeGlobals()
		return
	}
	defer uninitializeGlobals()

	report = &Report{
		Results:   make([]Result, 0),
		Standings: make([]Standing, 0, len(globals.contenders)),
	}

	rankSums := make(map[string]uint64)

	for _, keyCount := range globals.config.KeyCounts {
		for repeat := uint64(0); repeat < globals.config.Repeat; repeat++ {
			keys := generateKeys(keyCount, globals.config.Seed+repeat)
			deleteCount := uint64(float64(keyCount) * globals.config.DeleteFraction)

			roundResults := make([]Result, 0, len(globals.contenders))

			for _, contender := range globals.contenders {
				result, roundErr := runRound(contender, keys, deleteCount, repeat)
				if nil != roundErr {
					err = roundErr
					report = nil
					return
				}
				roundResults = append(roundResults, result)
			}

			// contender order breaks ties
			sort.SliceStable(roundResults, func(i, j int) bool {
				return roundResults[i].totalUsecs() < roundResults[j].totalUsecs()
			})
			for i := range roundResults {
				roundResults[i].Rank = i + 1
				rankSums[roundResults[i].Name] += uint64(i + 1)
			}
			for _, contender := range globals.contenders {
				for _, result := range roundResults {
					if result.Name == contender.name {
						contender.stats.Rank.Add(uint64(result.Rank))
					}
				}
			}

			logger.Infof("%d keys round %d won by %s (%d usecs)",
				keyCount, repeat, roundResults[0].Name, roundResults[0].totalUsecs())

			report.Results = append(report.Results, roundResults...)
		}
	}

	runs := uint64(len(globals.config.KeyCounts)) * globals.config.Repeat

	for _, contender := range globals.contenders {
		report.Standings = append(report.Standings, Standing{
			Name:        contender.name,
			AverageRank: float64(rankSums[contender.name]) / float64(runs),
			Runs:        runs,
		})
	}
	sort.SliceStable(report.Standings, func(i, j int) bool {
		return report.Standings[i].AverageRank < report.Standings[j].AverageRank
	})

	report.Stats = bucketstats.SprintStats(bucketstats.StatFormatParsable1, "treeworkout", "*")

	err = nil
	return
}

// runRound inserts every key, searches for every key, then deletes the first
// deleteCount of them, timing each phase.
func runRound(contender *contenderStruct, keys []uint64, deleteCount uint64, repeat uint64) (result Result, err error) {
	tree, err := index.New(contender.kind, contender.degree, sortedmap.CompareUint64)
	if nil != err {
		return
	}

	result = Result{
		Name:     contender.name,
		Kind:     contender.kind,
		Degree:   contender.degree,
		KeyCount: uint64(len(keys)),
		Repeat:   repeat,
	}

	stopwatch := utils.NewStopwatch()
	for _, key := range keys {
		err = tree.Insert(key)
		if nil != err {
			return
		}
	}
	stopwatch.Stop()
	result.InsertUsecs = stopwatch.ElapsedUs()
	contender.stats.InsertUsecs.Add(result.InsertUsecs)

	stopwatch.Restart()
	for _, key := range keys {
		found, searchErr := tree.Contains(key)
		if nil != searchErr {
			err = searchErr
			return
		}
		if !found {
			err = blunder.NewError(blunder.InvariantViolationError, "%s lost key %016X", contender.name, key)
			return
		}
	}
	stopwatch.Stop()
	result.SearchUsecs = stopwatch.ElapsedUs()
	contender.stats.SearchUsecs.Add(result.SearchUsecs)

	stopwatch.Restart()
	for _, key := range keys[:deleteCount] {
		ok, deleteErr := tree.Delete(key)
		if nil != deleteErr {
			err = deleteErr
			return
		}
		if !ok {
			err = blunder.NewError(blunder.InvariantViolationError, "%s could not delete key %016X", contender.name, key)
			return
		}
	}
	stopwatch.Stop()
	result.DeleteUsecs = stopwatch.ElapsedUs()
	contender.stats.DeleteUsecs.Add(result.DeleteUsecs)

	if uint64(tree.Len()) != result.KeyCount-deleteCount {
		err = blunder.NewError(blunder.InvariantViolationError, "%s holds %d keys but should hold %d",
			contender.name, tree.Len(), result.KeyCount-deleteCount)
		return
	}

	err = tree.Validate()
	if nil != err {
		return
	}

	logger.Tracef("%s %d keys: insert %d usecs search %d usecs delete %d usecs",
		contender.name, len(keys), result.InsertUsecs, result.SearchUsecs, result.DeleteUsecs)

	err = nil
	return
}

func generateKeys(count uint64, seed uint64) (keys []uint64) {
	var buf [8]byte

	keys = make([]uint64, count)
	for i := uint64(0); i < count; i++ {
		binary.LittleEndian.PutUint64(buf[:], i)
		keys[i] = cityhash.Hash64WithSeed(buf[:], seed)
	}

	return
}

func dumpTree(w io.Writer, degree int, keys []int, deletes []int) (err error) {
	tree, err := btree.New(degree, sortedmap.CompareInt)
	if nil != err {
		return
	}

	for _, key := range keys {
		err = tree.Insert(key)
		if nil != err {
			return
		}
	}
	for _, key := range deletes {
		ok, deleteErr := tree.Delete(key)
		if nil != deleteErr {
			err = deleteErr
			return
		}
		if !ok {
			_, err = fmt.Fprintf(w, "delete %d: not present\n", key)
			if nil != err {
				return
			}
		}
	}

	err = tree.Dump(w)
	if nil != err {
		return
	}

	for _, order := range []btree.Order{btree.PreOrder, btree.InOrder, btree.PostOrder} {
		orderedKeys, keysErr := tree.Keys(order)
		if nil != keysErr {
			err = keysErr
			return
		}
		_, err = fmt.Fprintf(w, "%s: %v\n", order, orderedKeys)
		if nil != err {
			return
		}
	}

	err = nil
	return
}
