// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Program treeworkout races the index implementations and dumps B-trees.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/NVIDIA/btreeindex/conf"
	"github.com/NVIDIA/btreeindex/logger"
	"github.com/NVIDIA/btreeindex/treeworkout/workoutpkg"
)

var rootCmd = &cobra.Command{
	Use:          "treeworkout",
	Short:        "Benchmark and inspect ordered tree indexes",
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run conf-file [section.option=value]*",
	Short: "Race the implementations named in [TreeWorkout] and print the standings",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRunE,
}

func runRunE(cmd *cobra.Command, args []string) (err error) {
	confMap, err := conf.MakeConfMapFromFile(args[0])
	if nil != err {
		return
	}

	err = confMap.UpdateFromStrings(args[1:])
	if nil != err {
		err = fmt.Errorf("failed to apply config overrides: %v", err)
		return
	}

	err = logger.Up(confMap)
	if nil != err {
		return
	}
	defer func() {
		_ = logger.Down()
	}()

	report, err := workoutpkg.Run(confMap)
	if nil != err {
		logger.ErrorfWithError(err, "workout failed")
		return
	}

	fmt.Print(report.Sprint())

	return
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func main() {
	if nil != rootCmd.Execute() {
		os.Exit(1)
	}
}
