// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package bucketstats

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// a structure containing all of the bucketstats statistics types and other
// fields; useful for testing
type allStatTypes struct {
	MyName   string // not a statistic
	bar      int    // also not a statistic
	Total1   Total
	Average1 Average
	Bucket1  BucketLog2Round
}

// verify that all of the bucketstats statistics types satisfy the appropriate
// interface (this is really a compile time test; it fails if they don't)
func TestBucketStatsInterfaces(t *testing.T) {
	var (
		Total1       Total
		Average1     Average
		Bucket2      BucketLog2Round
		TotalIface   Totaler
		AverageIface Averager
		BucketIface  Bucketer
	)

	TotalIface = &Total1
	TotalIface = &Average1
	TotalIface = &Bucket2

	AverageIface = &Average1
	AverageIface = &Bucket2

	BucketIface = &Bucket2

	AverageIface = BucketIface
	TotalIface = AverageIface
	_ = TotalIface
}

func TestRegister(t *testing.T) {
	assert := assert.New(t)

	var myStats allStatTypes = allStatTypes{
		Total1:   Total{Name: "mytotaler"},
		Average1: Average{Name: "First_Average"},
		Bucket1:  BucketLog2Round{Name: "bucket log2"},
	}
	Register("main", "myStats", &myStats)

	// names are assigned and scrubbed at registration
	assert.Equal("bucket_log2", myStats.Bucket1.Name)
	assert.Equal(uint(65), myStats.Bucket1.NBucket)

	// unregister-ing and re-register-ing myStats is also fine
	UnRegister("main", "myStats")
	Register("main", "myStats", &myStats)

	// its also OK to unregister stats that don't exist
	UnRegister("main", "neverStats")

	// but registering it twice should panic
	assert.Panics(func() { Register("main", "myStats", &myStats) })
	UnRegister("main", "myStats")

	Register("", "myStats", &myStats)
	UnRegister("", "myStats")

	Register("main", "", &myStats)
	UnRegister("main", "")

	// a statistics group must have at least one of package and group name
	assert.Panics(func() { Register("", "", &myStats) })

	// only pointers to structs can be registered
	assert.Panics(func() { Register("main", "notAStruct", myStats) })

	// statistics must have unique names
	dupStats := struct {
		First  Total
		Second Total
	}{
		First:  Total{Name: "same"},
		Second: Total{Name: "same"},
	}
	assert.Panics(func() { Register("main", "dupStats", &dupStats) })

	// unnamed statistics take their field name
	var unnamed allStatTypes
	Register("main", "unnamed", &unnamed)
	assert.Equal("Total1", unnamed.Total1.Name)
	assert.Equal("Average1", unnamed.Average1.Name)
	UnRegister("main", "unnamed")

	// unregistered groups can't be printed
	assert.Panics(func() { SprintStats(StatFormatParsable1, "main", "unnamed") })
}

func TestTotalAndAverage(t *testing.T) {
	assert := assert.New(t)

	var stats allStatTypes
	Register("test", "TotalAndAverage", &stats)
	defer UnRegister("test", "TotalAndAverage")

	assert.Equal(uint64(0), stats.Average1.AverageGet())

	for i := uint64(1); i <= 10; i++ {
		stats.Total1.Add(i)
		stats.Average1.Add(i)
	}
	stats.Total1.Increment()

	assert.Equal(uint64(56), stats.Total1.TotalGet())
	assert.Equal(uint64(55), stats.Average1.TotalGet())
	assert.Equal(uint64(10), stats.Average1.CountGet())
	assert.Equal(uint64(5), stats.Average1.AverageGet())

	out := SprintStats(StatFormatParsable1, "test", "TotalAndAverage")
	assert.Contains(out, "test.TotalAndAverage.Total1 total:56\n")
	assert.Contains(out, "test.TotalAndAverage.Average1 total:55 count:10 avg:5\n")
}

func TestLog2RoundIdx(t *testing.T) {
	assert := assert.New(t)

	expected := map[uint64]uint{
		0:  0,
		1:  1,
		2:  2,
		3:  3,
		5:  3,
		6:  4,
		11: 4,
		12: 5,
		22: 5,
		23: 6,
	}
	for value, idx := range expected {
		assert.Equal(idx, log2RoundIdx(value), "value %d", value)
	}

	assert.Equal(uint(65), log2RoundIdx(math.MaxUint64))

	// every bucket's RangeLow maps to that bucket and RangeLow-1 to the one before
	stats := struct {
		Bucket BucketLog2Round
	}{}
	Register("test", "Log2RoundIdx", &stats)
	defer UnRegister("test", "Log2RoundIdx")

	dist := stats.Bucket.DistGet()
	assert.Equal(65, len(dist))

	for idx, info := range dist[:40] {
		assert.Equal(uint(idx), log2RoundIdx(info.RangeLow), "bucket %d RangeLow %d", idx, info.RangeLow)
		if 1 < idx {
			assert.Equal(uint(idx-1), log2RoundIdx(info.RangeLow-1), "bucket %d RangeLow-1", idx)
		}
	}
}

func TestBucketLog2Round(t *testing.T) {
	assert := assert.New(t)

	stats := struct {
		Usecs BucketLog2Round
		Small BucketLog2Round
	}{
		Small: BucketLog2Round{NBucket: 3},
	}
	Register("test", "BucketLog2Round", &stats)
	defer UnRegister("test", "BucketLog2Round")

	// NBucket is raised to the minimum
	assert.Equal(uint(10), stats.Small.NBucket)
	assert.Equal(10, len(stats.Small.DistGet()))

	stats.Usecs.Add(1)
	stats.Usecs.Add(2)
	stats.Usecs.Add(4)
	stats.Usecs.Increment()

	dist := stats.Usecs.DistGet()
	assert.Equal(uint64(2), dist[1].Count)
	assert.Equal(uint64(1), dist[2].Count)
	assert.Equal(uint64(1), dist[3].Count)
	assert.Equal(uint64(4), stats.Usecs.CountGet())
	assert.Equal(uint64(1+1+2+4), stats.Usecs.TotalGet())
	assert.Equal(uint64(2), stats.Usecs.AverageGet())

	// large values land in the last bucket
	stats.Small.Add(math.MaxUint64)
	assert.Equal(uint64(1), stats.Small.DistGet()[9].Count)
	assert.Equal(uint64(math.MaxUint64), stats.Small.DistGet()[9].RangeHigh)

	out := SprintStats(StatFormatParsable1, "test", "*")
	assert.True(strings.HasPrefix(out, "test.BucketLog2Round.Usecs total:8 count:4 avg:2 0:0 1:2 2:1 4:1\n"), out)
}
