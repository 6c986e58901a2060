// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package btree

import (
	"github.com/NVIDIA/btreeindex/bucketstats"
)

type statsStruct struct {
	Inserts      bucketstats.Total
	Deletes      bucketstats.Total
	DeleteMisses bucketstats.Total
	Searches     bucketstats.Total

	Splits                bucketstats.Total
	RootSplits            bucketstats.Total
	Merges                bucketstats.Total
	RootShrinks           bucketstats.Total
	BorrowsFromLeft       bucketstats.Total
	BorrowsFromRight      bucketstats.Total
	PredecessorPromotions bucketstats.Total
	SuccessorPromotions   bucketstats.Total
}

// stats are shared by every Tree in the process
var stats statsStruct

func init() {
	bucketstats.Register("btree", "", &stats)
}

// SprintStats returns the btree package statistics, one per line.
func SprintStats() string {
	return bucketstats.SprintStats(bucketstats.StatFormatParsable1, "btree", "")
}
