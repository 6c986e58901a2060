// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package avltree

import (
	"github.com/NVIDIA/sortedmap"

	"github.com/NVIDIA/btreeindex/blunder"
	"github.com/NVIDIA/btreeindex/logger"
)

type node struct {
	key    sortedmap.Key
	count  int
	height int // of the subtree rooted here; a leaf is 1
	left   *node
	right  *node
}

func newTree(compare sortedmap.Compare) (tree *Tree, err error) {
	if nil == compare {
		err = blunder.NewError(blunder.InvalidArgError, "avltree.New(): compare must not be nil")
		return
	}

	tree = &Tree{compare: compare}

	err = nil
	return
}

func (tree *Tree) compareKeys(key1 sortedmap.Key, key2 sortedmap.Key) (result int, err error) {
	result, err = tree.compare(key1, key2)
	if nil != err {
		err = blunder.AddError(err, blunder.KeyTypeError)
	}
	return
}

func (n *node) getHeight() int {
	if nil == n {
		return 0
	}
	return n.height
}

func (n *node) updateHeight() {
	leftHeight := n.left.getHeight()
	rightHeight := n.right.getHeight()
	if leftHeight > rightHeight {
		n.height = leftHeight + 1
	} else {
		n.height = rightHeight + 1
	}
}

func (n *node) balanceFactor() int {
	return n.left.getHeight() - n.right.getHeight()
}

func (n *node) rotateRight() (pivot *node) {
	pivot = n.left
	n.left = pivot.right
	pivot.right = n
	n.updateHeight()
	pivot.updateHeight()
	return
}

func (n *node) rotateLeft() (pivot *node) {
	pivot = n.right
	n.right = pivot.left
	pivot.left = n
	n.updateHeight()
	pivot.updateHeight()
	return
}

// rebalance restores |balanceFactor| <= 1 at n after one of its subtrees
// changed height by one. It returns the new subtree root.
func (n *node) rebalance() *node {
	n.updateHeight()

	switch balance := n.balanceFactor(); {
	case balance > 1:
		if n.left.balanceFactor() < 0 {
			logger.Tracef("left-right rotation at %v", n.key)
			n.left = n.left.rotateLeft()
		} else {
			logger.Tracef("right rotation at %v", n.key)
		}
		return n.rotateRight()
	case balance < -1:
		if n.right.balanceFactor() > 0 {
			logger.Tracef("right-left rotation at %v", n.key)
			n.right = n.right.rotateRight()
		} else {
			logger.Tracef("left rotation at %v", n.key)
		}
		return n.rotateLeft()
	}

	return n
}

func (tree *Tree) insert(key sortedmap.Key) (err error) {
	root, added, err := tree.insertAt(tree.root, key)
	if nil != err {
		return
	}

	tree.root = root
	tree.size++
	if added {
		tree.nodes++
	}

	err = nil
	return
}

// insertAt returns the new root of the subtree at n. Nothing is modified if
// err is returned.
func (tree *Tree) insertAt(n *node, key sortedmap.Key) (subtree *node, added bool, err error) {
	if nil == n {
		subtree = &node{key: key, count: 1, height: 1}
		added = true
		err = nil
		return
	}

	result, err := tree.compareKeys(key, n.key)
	if nil != err {
		subtree = n
		return
	}

	switch {
	case result < 0:
		child, childAdded, childErr := tree.insertAt(n.left, key)
		if nil != childErr {
			subtree = n
			err = childErr
			return
		}
		n.left = child
		added = childAdded
	case result > 0:
		child, childAdded, childErr := tree.insertAt(n.right, key)
		if nil != childErr {
			subtree = n
			err = childErr
			return
		}
		n.right = child
		added = childAdded
	default:
		n.count++
		subtree = n
		added = false
		err = nil
		return
	}

	subtree = n.rebalance()
	err = nil
	return
}

func (tree *Tree) find(key sortedmap.Key) (n *node, err error) {
	n = tree.root

	for nil != n {
		result, compareErr := tree.compareKeys(key, n.key)
		if nil != compareErr {
			n = nil
			err = compareErr
			return
		}
		switch {
		case result < 0:
			n = n.left
		case result > 0:
			n = n.right
		default:
			err = nil
			return
		}
	}

	err = nil
	return
}

func (tree *Tree) contains(key sortedmap.Key) (found bool, err error) {
	n, err := tree.find(key)
	found = (nil != n)
	return
}

func (tree *Tree) delete(key sortedmap.Key) (ok bool, err error) {
	n, err := tree.find(key)
	if (nil != err) || (nil == n) {
		return
	}

	ok = true
	tree.size--

	if 1 < n.count {
		n.count--
		return
	}

	tree.root, err = tree.deleteAt(tree.root, key)
	tree.nodes--
	return
}

// deleteAt removes the node holding key (known to be present) from the
// subtree at n and returns the subtree's new root.
func (tree *Tree) deleteAt(n *node, key sortedmap.Key) (subtree *node, err error) {
	result, err := tree.compareKeys(key, n.key)
	if nil != err {
		logger.PanicfWithError(err, "deleteAt() compare failed after find() succeeded")
	}

	switch {
	case result < 0:
		n.left, err = tree.deleteAt(n.left, key)
	case result > 0:
		n.right, err = tree.deleteAt(n.right, key)
	default:
		if nil == n.left {
			subtree = n.right
			return
		}
		if nil == n.right {
			subtree = n.left
			return
		}

		// take over the in-order successor and unlink it from the right subtree
		successor := n.right
		for nil != successor.left {
			successor = successor.left
		}
		n.key = successor.key
		n.count = successor.count
		n.right = n.right.removeMin()
	}

	subtree = n.rebalance()
	return
}

func (n *node) removeMin() *node {
	if nil == n.left {
		return n.right
	}
	n.left = n.left.removeMin()
	return n.rebalance()
}

func (n *node) appendKeys(keys []sortedmap.Key) []sortedmap.Key {
	if nil == n {
		return keys
	}

	keys = n.left.appendKeys(keys)
	for i := 0; i < n.count; i++ {
		keys = append(keys, n.key)
	}
	keys = n.right.appendKeys(keys)

	return keys
}

func (tree *Tree) validate() (err error) {
	size, nodes, err := tree.validateNode(tree.root, nil, nil)
	if nil != err {
		return
	}

	if (size != tree.size) || (nodes != tree.nodes) {
		err = blunder.NewError(blunder.InvariantViolationError, "tree holds %d keys in %d nodes but records %d in %d",
			size, nodes, tree.size, tree.nodes)
		return
	}

	err = nil
	return
}

// validateNode checks the subtree at n, whose keys must lie strictly between
// the keys of low and high (either may be nil for unbounded).
func (tree *Tree) validateNode(n *node, low *node, high *node) (size int, nodes int, err error) {
	if nil == n {
		return
	}

	if 0 >= n.count {
		err = blunder.NewError(blunder.InvariantViolationError, "key %v has count %d", n.key, n.count)
		return
	}

	if nil != low {
		result, compareErr := tree.compareKeys(low.key, n.key)
		if nil != compareErr {
			err = compareErr
			return
		}
		if result >= 0 {
			err = blunder.NewError(blunder.InvariantViolationError, "key %v not above %v", n.key, low.key)
			return
		}
	}
	if nil != high {
		result, compareErr := tree.compareKeys(n.key, high.key)
		if nil != compareErr {
			err = compareErr
			return
		}
		if result >= 0 {
			err = blunder.NewError(blunder.InvariantViolationError, "key %v not below %v", n.key, high.key)
			return
		}
	}

	leftSize, leftNodes, err := tree.validateNode(n.left, low, n)
	if nil != err {
		return
	}
	rightSize, rightNodes, err := tree.validateNode(n.right, n, high)
	if nil != err {
		return
	}

	leftHeight := n.left.getHeight()
	rightHeight := n.right.getHeight()
	expectedHeight := leftHeight + 1
	if rightHeight > leftHeight {
		expectedHeight = rightHeight + 1
	}
	if n.height != expectedHeight {
		err = blunder.NewError(blunder.InvariantViolationError, "key %v records height %d but has height %d", n.key, n.height, expectedHeight)
		return
	}
	if balance := leftHeight - rightHeight; (balance < -1) || (balance > 1) {
		err = blunder.NewError(blunder.InvariantViolationError, "key %v has balance factor %d", n.key, balance)
		return
	}

	size = leftSize + n.count + rightSize
	nodes = leftNodes + 1 + rightNodes
	err = nil
	return
}
