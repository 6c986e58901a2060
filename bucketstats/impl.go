// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package bucketstats

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"
)

var (
	pkgNameToGroupName map[string]map[string]interface{}
	statsNameMapLock   sync.Mutex
)

func isStatType(fieldAsType reflect.Type) bool {
	var (
		countStat      Total
		averageStat    Average
		bucketLog2Stat BucketLog2Round
	)

	return fieldAsType == reflect.TypeOf(countStat) ||
		fieldAsType == reflect.TypeOf(averageStat) ||
		fieldAsType == reflect.TypeOf(bucketLog2Stat)
}

func verifyStatsStruct(statsGroupName string, statsStruct interface{}) {
	if reflect.TypeOf(statsStruct).Kind() != reflect.Ptr ||
		reflect.ValueOf(statsStruct).Elem().Type().Kind() != reflect.Struct {
		panic(fmt.Sprintf("statsStruct for statistics group '%s' is (%s), should be (*struct)",
			statsGroupName, reflect.TypeOf(statsStruct)))
	}
}

// Register a set of statistics, where the statistics are one or more fields in
// the passed structure.
//
func register(pkgName string, statsGroupName string, statsStruct interface{}) {
	if pkgName == "" && statsGroupName == "" {
		panic("statistics group must have non-empty pkgName or statsGroupName")
	}

	verifyStatsStruct(statsGroupName, statsStruct)

	structAsValue := reflect.ValueOf(statsStruct).Elem()
	structAsType := structAsValue.Type()

	// find all the statistics fields and init them;
	// assign them a name if they don't have one;
	// verify each name is only used once
	names := make(map[string]struct{})

	for i := 0; i < structAsType.NumField(); i++ {
		fieldName := structAsType.Field(i).Name
		fieldAsType := structAsType.Field(i).Type
		fieldAsValue := structAsValue.Field(i)

		if !isStatType(fieldAsType) {
			continue
		}

		if !fieldAsValue.CanSet() {
			panic(fmt.Sprintf("statistics group '%s' field %s must be exported to be usable by bucketstats",
				statsGroupName, fieldName))
		}

		statNameValue := fieldAsValue.FieldByName("Name")
		if statNameValue.String() == "" {
			statNameValue.SetString(fieldName)
		} else {
			statNameValue.SetString(scrubName(statNameValue.String()))
		}
		if _, ok := names[statNameValue.String()]; ok {
			panic(fmt.Sprintf("stats '%s' field %s Name '%s' is already in use",
				statsGroupName, fieldName, statNameValue))
		}
		names[statNameValue.String()] = struct{}{}

		switch v := (fieldAsValue.Addr().Interface()).(type) {
		case *Total:
		case *Average:
		case *BucketLog2Round:
			if v.NBucket == 0 || v.NBucket > uint(len(v.statBuckets)) {
				v.NBucket = uint(len(v.statBuckets))
			} else if v.NBucket < 10 {
				v.NBucket = 10
			}
		default:
			panic(fmt.Sprintf("statistics Group '%s' field %s type '%v' unknown: internal error",
				statsGroupName, fieldName, fieldAsType))
		}
	}

	statsGroupName = scrubName(statsGroupName)
	pkgName = scrubName(pkgName)

	statsNameMapLock.Lock()
	defer statsNameMapLock.Unlock()

	if pkgNameToGroupName == nil {
		pkgNameToGroupName = make(map[string]map[string]interface{})
	}
	if pkgNameToGroupName[pkgName] == nil {
		pkgNameToGroupName[pkgName] = make(map[string]interface{})
	}

	if pkgNameToGroupName[pkgName][statsGroupName] != nil {
		panic(fmt.Sprintf("pkgName '%s' with statsGroupName '%s' is already registered",
			pkgName, statsGroupName))
	}
	pkgNameToGroupName[pkgName][statsGroupName] = statsStruct
}

func unRegister(pkgName string, statsGroupName string) {
	pkgName = scrubName(pkgName)
	statsGroupName = scrubName(statsGroupName)

	statsNameMapLock.Lock()
	defer statsNameMapLock.Unlock()

	// silently ignore groups that were never registered
	if pkgNameToGroupName[pkgName] != nil {
		delete(pkgNameToGroupName[pkgName], statsGroupName)

		if len(pkgNameToGroupName[pkgName]) == 0 {
			delete(pkgNameToGroupName, pkgName)
		}
	}
}

// Return the selected group(s) of statistics as a string.
//
func sprintStats(stringFmt StatStringFormat, pkgName string, statsGroupName string) (statValues string) {
	statsNameMapLock.Lock()
	defer statsNameMapLock.Unlock()

	var (
		pkgNameMap   map[string]map[string]interface{}
		groupNameMap map[string]interface{}
	)
	if pkgName == "*" {
		pkgNameMap = pkgNameToGroupName
	} else {
		pkgName = scrubName(pkgName)
		pkgNameMap = map[string]map[string]interface{}{pkgName: nil}
	}

	for _, pkg := range sortedKeys(pkgNameMap) {
		if statsGroupName == "*" {
			groupNameMap = pkgNameToGroupName[pkg]
		} else {
			groupNameMap = map[string]interface{}{scrubName(statsGroupName): nil}
		}

		groups := make([]string, 0, len(groupNameMap))
		for group := range groupNameMap {
			groups = append(groups, group)
		}
		sort.Strings(groups)

		for _, group := range groups {
			statsStruct, ok := pkgNameToGroupName[pkg][group]
			if !ok {
				panic(fmt.Sprintf(
					"bucketstats.sprintStats(): statistics group '%s.%s' is not registered",
					pkg, group))
			}
			statValues += sprintStatsStruct(stringFmt, pkg, group, statsStruct)
		}
	}
	return
}

func sortedKeys(m map[string]map[string]interface{}) (keys []string) {
	keys = make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return
}

func sprintStatsStruct(stringFmt StatStringFormat, pkgName string, statsGroupName string,
	statsStruct interface{}) (statValues string) {

	verifyStatsStruct(statsGroupName, statsStruct)

	structAsValue := reflect.ValueOf(statsStruct).Elem()
	structAsType := structAsValue.Type()

	for i := 0; i < structAsType.NumField(); i++ {
		if !isStatType(structAsType.Field(i).Type) {
			continue
		}

		statValues += structAsValue.Field(i).Addr().Interface().(Totaler).Sprint(stringFmt, pkgName, statsGroupName)
	}
	return
}

// Construct and return a statistics name (fully qualified field name) in the specified format.
//
func statisticName(stringFmt StatStringFormat, pkgName string, statsGroupName string, fieldName string) string {
	switch stringFmt {
	case StatFormatParsable1:
		switch {
		case pkgName == "":
			return statsGroupName + "." + fieldName
		case statsGroupName == "":
			return pkgName + "." + fieldName
		default:
			return pkgName + "." + statsGroupName + "." + fieldName
		}
	}

	return fmt.Sprintf("pkg: '%s' Stats Group '%s' field '%s': Unknown StatStringFormat: '%v'\n",
		pkgName, statsGroupName, fieldName, stringFmt)
}

// Return a string with the statistic's value in the specified format.
//
func (this *Total) sprint(stringFmt StatStringFormat, pkgName string, statsGroupName string) string {
	statName := statisticName(stringFmt, pkgName, statsGroupName, this.Name)

	switch stringFmt {
	case StatFormatParsable1:
		return fmt.Sprintf("%s total:%d\n", statName, this.TotalGet())
	}

	return fmt.Sprintf("statName '%s': Unknown StatStringFormat: '%v'\n", statName, stringFmt)
}

// Return a string with the statistic's value in the specified format.
//
func (this *Average) sprint(stringFmt StatStringFormat, pkgName string, statsGroupName string) string {
	statName := statisticName(stringFmt, pkgName, statsGroupName, this.Name)

	switch stringFmt {
	case StatFormatParsable1:
		return fmt.Sprintf("%s total:%d count:%d avg:%d\n",
			statName, this.TotalGet(), this.CountGet(), this.AverageGet())
	}

	return fmt.Sprintf("statName '%s': Unknown StatStringFormat: '%v'\n", statName, stringFmt)
}

// log2RoundIdx returns round(log2(value) + 1), with 0 mapping to 0.
//
// value lies in [2^(b-1), 2^b) where b is its bit length; it belongs in
// bucket b+1 once it reaches 2^(b-1) * sqrt(2), i.e. once value^2 reaches
// 2^(2b-1).  value^2 is computed as 128 bits so this never overflows.
//
func log2RoundIdx(value uint64) uint {
	if 0 == value {
		return 0
	}

	b := uint(bits.Len64(value))
	hi, lo := bits.Mul64(value, value)
	shift := 2*b - 1

	var below bool
	if shift >= 64 {
		below = hi < uint64(1)<<(shift-64)
	} else {
		below = (0 == hi) && (lo < uint64(1)<<shift)
	}

	if below {
		return b
	}
	return b + 1
}

// log2RoundLow returns the smallest value mapped to bucket idx.
func log2RoundLow(idx uint) uint64 {
	if idx < 2 {
		return uint64(idx)
	}

	low := math.Ceil(math.Exp2(float64(idx) - 1.5))
	if low >= math.Exp2(64) {
		return math.MaxUint64
	}
	return uint64(low)
}

// The canonical distribution for a bucketized statistic is an array of BucketInfo.
// Create one based on the information for this bucketstat.
//
func bucketDistMake(nBucket uint, statBuckets []uint32) []BucketInfo {
	bucketInfo := make([]BucketInfo, nBucket)

	for i := uint(0); i < nBucket; i++ {
		info := &bucketInfo[i]

		info.Count = uint64(statBuckets[i])
		info.RangeLow = log2RoundLow(i)
		if i == nBucket-1 {
			info.RangeHigh = math.MaxUint64
		} else {
			info.RangeHigh = log2RoundLow(i+1) - 1
		}
		if 0 != i {
			info.NominalVal = uint64(1) << (i - 1)
		}

		mean := info.RangeLow/2 + info.RangeHigh/2
		if 1 == info.RangeLow&info.RangeHigh&0x1 {
			mean++
		}
		info.MeanVal = mean
	}

	return bucketInfo
}

// Given the distribution ([]BucketInfo) for a bucketized statistic, calculate:
//
// o the index of the last entry with a non-zero count
// o the count (number things in buckets)
// o sum of counts * count_meanVal, and
// o mean (average)
//
func bucketCalcStat(bucketInfo []BucketInfo) (lastIdx int, count uint64, sum uint64, mean uint64) {
	var (
		bigSum     big.Int
		bigMean    big.Int
		bigTmp     big.Int
		bigProduct big.Int
	)

	for i := 0; i < len(bucketInfo); i++ {
		count += bucketInfo[i].Count

		bigTmp.SetUint64(bucketInfo[i].Count)
		bigProduct.SetUint64(bucketInfo[i].MeanVal)
		bigProduct.Mul(&bigProduct, &bigTmp)
		bigSum.Add(&bigSum, &bigProduct)

		if bucketInfo[i].Count > 0 {
			lastIdx = i
		}
	}
	if count > 0 {
		bigTmp.SetUint64(count)
		bigMean.Div(&bigSum, &bigTmp)
	}

	mean = bigMean.Uint64()
	if bigSum.IsUint64() {
		sum = bigSum.Uint64()
	} else {
		sum = math.MaxUint64
	}

	return
}

// Return a string with the bucketized statistic content in the specified format.
//
func bucketSprint(stringFmt StatStringFormat, pkgName string, statsGroupName string, fieldName string,
	bucketInfo []BucketInfo) string {

	lastIdx, count, sum, mean := bucketCalcStat(bucketInfo)
	statName := statisticName(stringFmt, pkgName, statsGroupName, fieldName)

	switch stringFmt {
	case StatFormatParsable1:
		line := fmt.Sprintf("%s total:%d count:%d avg:%d", statName, sum, count, mean)

		for idx := 0; idx < lastIdx+1; idx++ {
			if bucketInfo[idx].NominalVal < 1024 {
				line += fmt.Sprintf(" %d:%d", bucketInfo[idx].NominalVal, bucketInfo[idx].Count)
			} else {
				line += fmt.Sprintf(" 2^%d:%d", idx-1, bucketInfo[idx].Count)
			}
		}
		return line + "\n"
	}

	return fmt.Sprintf("StatisticName '%s': Unknown StatStringFormat: '%v'\n", statName, stringFmt)
}

// Replace illegal characters in names with underbar (`_`)
//
func scrubName(name string) string {
	replaceChar := func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return '_'
		case !unicode.IsPrint(r):
			return '_'
		case r == '*':
			return '_'
		case r == ':':
			return '_'
		case r == '#':
			return '_'
		}
		return r
	}

	return strings.Map(replaceChar, name)
}
