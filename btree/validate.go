// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package btree

import (
	"github.com/NVIDIA/btreeindex/blunder"
)

type validateContext struct {
	leafDepth int // -1 until the first leaf is reached
	keyCount  int
}

type keyBound struct {
	key     Key
	present bool
}

func (tree *Tree) validate() (err error) {
	if nil == tree.root {
		if 0 != tree.size {
			err = blunder.NewError(blunder.InvariantViolationError, "empty tree has size %d", tree.size)
			return
		}
		err = nil
		return
	}

	context := &validateContext{leafDepth: -1}

	err = tree.validateNode(context, tree.root, 0, keyBound{}, keyBound{})
	if nil != err {
		return
	}

	if context.keyCount != tree.size {
		err = blunder.NewError(blunder.InvariantViolationError, "tree holds %d keys but has size %d", context.keyCount, tree.size)
		return
	}

	err = nil
	return
}

func (tree *Tree) validateNode(context *validateContext, n *node, depth int, low keyBound, high keyBound) (err error) {
	keyCount := len(n.keys)

	if keyCount > tree.maxKeys() {
		err = blunder.NewError(blunder.InvariantViolationError, "node at depth %d holds %d keys (max %d)", depth, keyCount, tree.maxKeys())
		return
	}
	if n == tree.root {
		if 0 == keyCount {
			err = blunder.NewError(blunder.InvariantViolationError, "non-empty tree has an empty root")
			return
		}
	} else if keyCount < tree.minKeys() {
		err = blunder.NewError(blunder.InvariantViolationError, "node at depth %d holds %d keys (min %d)", depth, keyCount, tree.minKeys())
		return
	}

	for i, key := range n.keys {
		if 0 < i {
			err = tree.validateOrder(n.keys[i-1], key, depth)
			if nil != err {
				return
			}
		}
		if low.present {
			err = tree.validateOrder(low.key, key, depth)
			if nil != err {
				return
			}
		}
		if high.present {
			err = tree.validateOrder(key, high.key, depth)
			if nil != err {
				return
			}
		}
	}

	context.keyCount += keyCount

	if n.leaf {
		if 0 != len(n.children) {
			err = blunder.NewError(blunder.InvariantViolationError, "leaf at depth %d has %d children", depth, len(n.children))
			return
		}
		if -1 == context.leafDepth {
			context.leafDepth = depth
		} else if depth != context.leafDepth {
			err = blunder.NewError(blunder.InvariantViolationError, "leaf at depth %d but first leaf at depth %d", depth, context.leafDepth)
			return
		}
		err = nil
		return
	}

	if len(n.children) != keyCount+1 {
		err = blunder.NewError(blunder.InvariantViolationError, "internal node at depth %d has %d keys but %d children", depth, keyCount, len(n.children))
		return
	}

	for i, child := range n.children {
		if nil == child {
			err = blunder.NewError(blunder.InvariantViolationError, "internal node at depth %d has nil child %d", depth, i)
			return
		}

		childLow := low
		if 0 < i {
			childLow = keyBound{key: n.keys[i-1], present: true}
		}
		childHigh := high
		if i < keyCount {
			childHigh = keyBound{key: n.keys[i], present: true}
		}

		err = tree.validateNode(context, child, depth+1, childLow, childHigh)
		if nil != err {
			return
		}
	}

	err = nil
	return
}

// validateOrder checks lesser <= greater.
func (tree *Tree) validateOrder(lesser Key, greater Key, depth int) (err error) {
	result, err := tree.compareKeys(lesser, greater)
	if nil != err {
		return
	}
	if result > 0 {
		err = blunder.NewError(blunder.InvariantViolationError, "keys %v and %v out of order at depth %d", lesser, greater, depth)
		return
	}

	err = nil
	return
}
