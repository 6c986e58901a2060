// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/NVIDIA/btreeindex/treeworkout/workoutpkg"
)

var (
	dumpDegree  int
	dumpKeys    []int
	dumpCount   uint64
	dumpSeed    uint64
	dumpDeletes []int
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Build a B-tree from --keys (or --count hashed keys), apply --deletes, and print it",
	Args:  cobra.NoArgs,
	RunE:  dumpRunE,
}

func dumpRunE(cmd *cobra.Command, args []string) (err error) {
	keys := dumpKeys
	if 0 == len(keys) {
		keys = make([]int, 0, dumpCount)
		for _, key := range workoutpkg.GenerateKeys(dumpCount, dumpSeed) {
			keys = append(keys, int(key%(10*dumpCount+10)))
		}
	}

	err = workoutpkg.DumpTree(os.Stdout, dumpDegree, keys, dumpDeletes)
	return
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().IntVarP(&dumpDegree, "degree", "t", 2, "minimum degree of the B-tree")
	dumpCmd.Flags().IntSliceVarP(&dumpKeys, "keys", "k", nil, "keys to insert, in order")
	dumpCmd.Flags().Uint64VarP(&dumpCount, "count", "n", 20, "number of hashed keys to insert when --keys is absent")
	dumpCmd.Flags().Uint64VarP(&dumpSeed, "seed", "s", 0, "seed for hashed keys")
	dumpCmd.Flags().IntSliceVarP(&dumpDeletes, "deletes", "d", nil, "keys to delete after inserting")
}
