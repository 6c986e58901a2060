// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package btree

import (
	"github.com/NVIDIA/btreeindex/blunder"
	"github.com/NVIDIA/btreeindex/logger"
)

func (tree *Tree) insert(key Key) (err error) {
	if nil == tree.root {
		tree.root = tree.newNode(true)
		tree.root.keys = append(tree.root.keys, key)
		tree.size++
		tree.generation++
		err = nil
		return
	}

	if tree.isFull(tree.root) {
		oldRoot := tree.root
		tree.root = tree.newNode(false)
		tree.root.children = append(tree.root.children, oldRoot)
		tree.splitChild(tree.root, 0)
		stats.RootSplits.Increment()
		logger.Tracef("root split: height now %d", tree.height())
	}

	n := tree.root

	for !n.leaf {
		index, upperBoundErr := tree.upperBound(n, key)
		if nil != upperBoundErr {
			err = upperBoundErr
			return
		}

		if tree.isFull(n.children[index]) {
			tree.splitChild(n, index)

			// equal keys stay left of the promoted median
			result, compareErr := tree.compareKeys(key, n.keys[index])
			if nil != compareErr {
				err = compareErr
				return
			}
			if result > 0 {
				index++
			}
		}

		n = n.children[index]
	}

	index, upperBoundErr := tree.upperBound(n, key)
	if nil != upperBoundErr {
		err = upperBoundErr
		return
	}

	n.insertKeyAt(index, key)
	tree.size++
	tree.generation++

	err = nil
	return
}

// splitChild splits the full parent.children[index]. The new right sibling
// takes the upper t-1 keys (and upper t children), the median moves up into
// parent.keys[index] and the child keeps its lower t-1 keys (and t children).
func (tree *Tree) splitChild(parent *node, index int) {
	t := tree.degree
	child := parent.children[index]

	if !tree.isFull(child) {
		err := blunder.NewError(blunder.InvariantViolationError, "child %d holds %d keys", index, len(child.keys))
		logger.PanicfWithError(err, "splitChild() of a non-full node")
	}

	sibling := tree.newNode(child.leaf)
	median := child.keys[t-1]

	sibling.keys = append(sibling.keys, child.keys[t:]...)
	if !child.leaf {
		sibling.children = append(sibling.children, child.children[t:]...)
	}
	child.truncate(t - 1)

	parent.insertKeyAt(index, median)
	parent.insertChildAt(index+1, sibling)

	tree.generation++
	stats.Splits.Increment()
	logger.Tracef("split child %d around median %v", index, median)
}
