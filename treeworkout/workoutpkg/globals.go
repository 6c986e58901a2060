// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package workoutpkg

import (
	"fmt"

	"github.com/NVIDIA/btreeindex/bucketstats"
	"github.com/NVIDIA/btreeindex/conf"
	"github.com/NVIDIA/btreeindex/index"
	"github.com/NVIDIA/btreeindex/logger"
	"github.com/NVIDIA/btreeindex/utils"
)

type configStruct struct {
	Implementations []string // each one of index.Kinds()
	Degrees         []uint64 // applied to each Implementation for which index.UsesDegree()
	KeyCounts       []uint64
	Repeat          uint64  // rounds per KeyCount; defaults to 1
	Seed            uint64  // cityhash seed for key generation; defaults to 0
	DeleteFraction  float64 // of each round's keys deleted; defaults to 0.5
}

type statsStruct struct {
	InsertUsecs bucketstats.BucketLog2Round // per round
	SearchUsecs bucketstats.BucketLog2Round // per round
	DeleteUsecs bucketstats.BucketLog2Round // per round
	Rank        bucketstats.Average         // 1 is fastest
}

// contenderStruct is one Implementation at one degree.
type contenderStruct struct {
	name   string // e.g. "btree-t3" or "avl"
	kind   string
	degree int
	stats  *statsStruct
}

type globalsStruct struct {
	config     configStruct
	contenders []*contenderStruct
}

var globals globalsStruct

func initializeGlobals(confMap conf.ConfMap) (err error) {
	globals.config.Implementations, err = confMap.FetchOptionValueStringSlice("TreeWorkout", "Implementations")
	if nil != err {
		return
	}
	if 0 == len(globals.config.Implementations) {
		err = fmt.Errorf("[TreeWorkout]Implementations must not be empty")
		return
	}

	usesDegree := false
	for _, kind := range globals.config.Implementations {
		if !isKnownKind(kind) {
			err = fmt.Errorf("[TreeWorkout]Implementations contains unknown kind %q (must be one of %v)", kind, index.Kinds())
			return
		}
		usesDegree = usesDegree || index.UsesDegree(kind)
	}

	if usesDegree {
		globals.config.Degrees, err = confMap.FetchOptionValueUint64Slice("TreeWorkout", "Degrees")
		if nil != err {
			return
		}
		if 0 == len(globals.config.Degrees) {
			err = fmt.Errorf("[TreeWorkout]Degrees must not be empty when a B-tree Implementation is selected")
			return
		}
	} else {
		globals.config.Degrees = nil
	}

	globals.config.KeyCounts, err = confMap.FetchOptionValueUint64Slice("TreeWorkout", "KeyCounts")
	if nil != err {
		return
	}
	if 0 == len(globals.config.KeyCounts) {
		err = fmt.Errorf("[TreeWorkout]KeyCounts must not be empty")
		return
	}

	err = confMap.VerifyOptionIsMissing("TreeWorkout", "Repeat")
	if nil == err {
		globals.config.Repeat = 1
	} else {
		globals.config.Repeat, err = confMap.FetchOptionValueUint64("TreeWorkout", "Repeat")
		if nil != err {
			return
		}
		if 0 == globals.config.Repeat {
			err = fmt.Errorf("[TreeWorkout]Repeat must be positive")
			return
		}
	}

	err = confMap.VerifyOptionIsMissing("TreeWorkout", "Seed")
	if nil == err {
		globals.config.Seed = 0
	} else {
		globals.config.Seed, err = confMap.FetchOptionValueUint64("TreeWorkout", "Seed")
		if nil != err {
			return
		}
	}

	err = confMap.VerifyOptionIsMissing("TreeWorkout", "DeleteFraction")
	if nil == err {
		globals.config.DeleteFraction = 0.5
	} else {
		globals.config.DeleteFraction, err = confMap.FetchOptionValueFloat64("TreeWorkout", "DeleteFraction")
		if nil != err {
			return
		}
		if (0.0 > globals.config.DeleteFraction) || (1.0 < globals.config.DeleteFraction) {
			err = fmt.Errorf("[TreeWorkout]DeleteFraction (%v) must be between 0 and 1", globals.config.DeleteFraction)
			return
		}
	}

	globals.contenders = make([]*contenderStruct, 0)

	for _, kind := range globals.config.Implementations {
		if index.UsesDegree(kind) {
			for _, degree := range globals.config.Degrees {
				globals.contenders = append(globals.contenders, &contenderStruct{
					name:   fmt.Sprintf("%s-t%d", kind, degree),
					kind:   kind,
					degree: int(degree),
				})
			}
		} else {
			globals.contenders = append(globals.contenders, &contenderStruct{
				name: kind,
				kind: kind,
			})
		}
	}

	names := make(map[string]struct{})
	for _, contender := range globals.contenders {
		if _, ok := names[contender.name]; ok {
			err = fmt.Errorf("[TreeWorkout] lists %s more than once", contender.name)
			return
		}
		names[contender.name] = struct{}{}
	}

	for _, contender := range globals.contenders {
		contender.stats = &statsStruct{}
		bucketstats.Register("treeworkout", contender.name, contender.stats)
	}

	logger.Infof("workout config: %s", utils.JSONify(globals.config, false))

	err = nil
	return
}

func uninitializeGlobals() {
	for _, contender := range globals.contenders {
		bucketstats.UnRegister("treeworkout", contender.name)
	}

	globals.config = configStruct{}
	globals.contenders = nil
}

func isKnownKind(kind string) bool {
	for _, knownKind := range index.Kinds() {
		if knownKind == kind {
			return true
		}
	}
	return false
}
