// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package btree

import (
	"github.com/NVIDIA/btreeindex/blunder"
	"github.com/NVIDIA/btreeindex/logger"
)

// delete descends from the root without ever entering a node that holds only
// t-1 keys, so removing a key from the node reached can never underflow it.
func (tree *Tree) delete(key Key) (ok bool, err error) {
	_, found, err := tree.search(key)
	if nil != err {
		return
	}
	if !found {
		ok = false
		return
	}

	n := tree.root

	for {
		index, equal, lowerBoundErr := tree.lowerBound(n, key)
		if nil != lowerBoundErr {
			err = lowerBoundErr
			return
		}

		if equal {
			if n.leaf {
				n.removeKeyAt(index)
				break
			}

			left := n.children[index]
			right := n.children[index+1]

			switch {
			case !tree.isMinimal(left):
				key = left.maxKey()
				n.keys[index] = key
				n = left
				stats.PredecessorPromotions.Increment()
			case !tree.isMinimal(right):
				key = right.minKey()
				n.keys[index] = key
				n = right
				stats.SuccessorPromotions.Increment()
			default:
				n = tree.mergeChildren(n, index)
			}

			continue
		}

		if n.leaf {
			err = blunder.NewError(blunder.InvariantViolationError, "key %v found by search but not by descent", key)
			logger.PanicfWithError(err, "delete() lost its key")
		}

		child := n.children[index]
		if tree.isMinimal(child) {
			child = tree.fillChild(n, index)
		}
		n = child
	}

	if (tree.root == n) && (0 == len(n.keys)) {
		tree.root = nil
	}

	tree.size--
	tree.generation++

	ok = true
	err = nil
	return
}

// fillChild brings parent.children[index], which holds t-1 keys, up to at
// least t keys before the descent enters it: borrow from the left sibling,
// else from the right sibling, else merge with a sibling (the left one when
// there is one). It returns the node now covering the child's key range.
func (tree *Tree) fillChild(parent *node, index int) (child *node) {
	if (0 < index) && !tree.isMinimal(parent.children[index-1]) {
		tree.borrowFromLeft(parent, index)
		child = parent.children[index]
		return
	}

	if (index < len(parent.keys)) && !tree.isMinimal(parent.children[index+1]) {
		tree.borrowFromRight(parent, index)
		child = parent.children[index]
		return
	}

	if 0 < index {
		child = tree.mergeChildren(parent, index-1)
	} else {
		child = tree.mergeChildren(parent, index)
	}

	return
}

// borrowFromLeft rotates the left sibling's last key up into the parent and
// the parent's separator down to the front of parent.children[index].
func (tree *Tree) borrowFromLeft(parent *node, index int) {
	child := parent.children[index]
	lender := parent.children[index-1]

	if tree.isMinimal(lender) {
		err := blunder.NewError(blunder.InvariantViolationError, "left sibling of child %d holds %d keys", index, len(lender.keys))
		logger.PanicfWithError(err, "borrowFromLeft() without a lender")
	}

	child.insertKeyAt(0, parent.keys[index-1])
	parent.keys[index-1] = lender.removeKeyAt(len(lender.keys) - 1)
	if !child.leaf {
		child.insertChildAt(0, lender.removeChildAt(len(lender.children)-1))
	}

	tree.generation++
	stats.BorrowsFromLeft.Increment()
	logger.Tracef("child %d borrowed from its left sibling", index)
}

// borrowFromRight is the mirror image of borrowFromLeft.
func (tree *Tree) borrowFromRight(parent *node, index int) {
	child := parent.children[index]
	lender := parent.children[index+1]

	if tree.isMinimal(lender) {
		err := blunder.NewError(blunder.InvariantViolationError, "right sibling of child %d holds %d keys", index, len(lender.keys))
		logger.PanicfWithError(err, "borrowFromRight() without a lender")
	}

	child.keys = append(child.keys, parent.keys[index])
	parent.keys[index] = lender.removeKeyAt(0)
	if !child.leaf {
		child.children = append(child.children, lender.removeChildAt(0))
	}

	tree.generation++
	stats.BorrowsFromRight.Increment()
	logger.Tracef("child %d borrowed from its right sibling", index)
}

// mergeChildren folds parent.keys[index] and parent.children[index+1] into
// parent.children[index], which is returned. An emptied root is replaced by
// the merged node.
func (tree *Tree) mergeChildren(parent *node, index int) (merged *node) {
	merged = parent.children[index]
	right := parent.children[index+1]

	if len(merged.keys)+1+len(right.keys) > tree.maxKeys() {
		err := blunder.NewError(blunder.InvariantViolationError, "children %d and %d hold %d and %d keys",
			index, index+1, len(merged.keys), len(right.keys))
		logger.PanicfWithError(err, "mergeChildren() would overflow")
	}

	merged.keys = append(merged.keys, parent.removeKeyAt(index))
	merged.keys = append(merged.keys, right.keys...)
	if !merged.leaf {
		merged.children = append(merged.children, right.children...)
	}
	parent.removeChildAt(index + 1)

	tree.generation++
	stats.Merges.Increment()
	logger.Tracef("merged children %d and %d", index, index+1)

	if (tree.root == parent) && (0 == len(parent.keys)) {
		tree.root = merged
		stats.RootShrinks.Increment()
		logger.Tracef("root shrink: height now %d", tree.height())
	}

	return
}
