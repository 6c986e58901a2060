// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package btree

import (
	"github.com/NVIDIA/btreeindex/blunder"
)

// node keys are non-decreasing. An internal node has len(keys)+1 children
// and keys[i-1] <= k <= keys[i] for every key k below children[i].
type node struct {
	keys     []Key
	children []*node
	leaf     bool
}

func newTree(degree int, compare Compare) (tree *Tree, err error) {
	if degree < MinDegree {
		err = blunder.NewError(blunder.InvalidDegreeError, "btree.New(): degree %d must be at least %d", degree, MinDegree)
		return
	}
	if nil == compare {
		err = blunder.NewError(blunder.InvalidArgError, "btree.New(): compare must not be nil")
		return
	}

	tree = &Tree{
		degree:  degree,
		compare: compare,
	}

	err = nil
	return
}

func (tree *Tree) maxKeys() int {
	return 2*tree.degree - 1
}

func (tree *Tree) minKeys() int {
	return tree.degree - 1
}

func (tree *Tree) newNode(leaf bool) (n *node) {
	n = &node{
		keys: make([]Key, 0, tree.maxKeys()),
		leaf: leaf,
	}
	if !leaf {
		n.children = make([]*node, 0, tree.maxKeys()+1)
	}
	return
}

func (tree *Tree) isFull(n *node) bool {
	return len(n.keys) == tree.maxKeys()
}

func (tree *Tree) isMinimal(n *node) bool {
	return len(n.keys) <= tree.minKeys()
}

func (n *node) insertKeyAt(index int, key Key) {
	n.keys = append(n.keys, nil)
	copy(n.keys[index+1:], n.keys[index:])
	n.keys[index] = key
}

func (n *node) removeKeyAt(index int) (key Key) {
	key = n.keys[index]
	copy(n.keys[index:], n.keys[index+1:])
	n.keys[len(n.keys)-1] = nil
	n.keys = n.keys[:len(n.keys)-1]
	return
}

func (n *node) insertChildAt(index int, child *node) {
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
}

func (n *node) removeChildAt(index int) (child *node) {
	child = n.children[index]
	copy(n.children[index:], n.children[index+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
	return
}

// truncate drops keys[keyCount:] and, for internal nodes, children[keyCount+1:]
// clearing the dropped slots so they can be collected.
func (n *node) truncate(keyCount int) {
	for i := keyCount; i < len(n.keys); i++ {
		n.keys[i] = nil
	}
	n.keys = n.keys[:keyCount]

	if !n.leaf {
		for i := keyCount + 1; i < len(n.children); i++ {
			n.children[i] = nil
		}
		n.children = n.children[:keyCount+1]
	}
}

func (tree *Tree) compareKeys(key1 Key, key2 Key) (result int, err error) {
	result, err = tree.compare(key1, key2)
	if nil != err {
		err = blunder.AddError(err, blunder.KeyTypeError)
	}
	return
}

// lowerBound returns the first index whose key is >= key and whether that key
// equals key.
func (tree *Tree) lowerBound(n *node, key Key) (index int, equal bool, err error) {
	low := 0
	high := len(n.keys)

	for low < high {
		mid := int(uint(low+high) >> 1)
		result, compareErr := tree.compareKeys(n.keys[mid], key)
		if nil != compareErr {
			err = compareErr
			return
		}
		if result < 0 {
			low = mid + 1
		} else {
			high = mid
		}
	}

	index = low
	if index < len(n.keys) {
		result, compareErr := tree.compareKeys(n.keys[index], key)
		if nil != compareErr {
			err = compareErr
			return
		}
		equal = (0 == result)
	}

	err = nil
	return
}

// upperBound returns the first index whose key is > key.
func (tree *Tree) upperBound(n *node, key Key) (index int, err error) {
	low := 0
	high := len(n.keys)

	for low < high {
		mid := int(uint(low+high) >> 1)
		result, compareErr := tree.compareKeys(n.keys[mid], key)
		if nil != compareErr {
			err = compareErr
			return
		}
		if result <= 0 {
			low = mid + 1
		} else {
			high = mid
		}
	}

	index = low
	err = nil
	return
}

func (tree *Tree) search(key Key) (location Location, found bool, err error) {
	n := tree.root

	for nil != n {
		index, equal, lowerBoundErr := tree.lowerBound(n, key)
		if nil != lowerBoundErr {
			err = lowerBoundErr
			return
		}
		if equal {
			location = Location{node: n, index: index}
			found = true
			err = nil
			return
		}
		if n.leaf {
			break
		}
		n = n.children[index]
	}

	found = false
	err = nil
	return
}

func (tree *Tree) height() (height int) {
	for n := tree.root; nil != n; n = n.firstChild() {
		height++
	}
	return
}

func (n *node) firstChild() *node {
	if n.leaf {
		return nil
	}
	return n.children[0]
}

func (tree *Tree) nodeCount() int {
	if nil == tree.root {
		return 0
	}
	return tree.root.count()
}

func (n *node) count() (nodes int) {
	nodes = 1
	for _, child := range n.children {
		nodes += child.count()
	}
	return
}

func (n *node) minKey() Key {
	for !n.leaf {
		n = n.children[0]
	}
	return n.keys[0]
}

func (n *node) maxKey() Key {
	for !n.leaf {
		n = n.children[len(n.children)-1]
	}
	return n.keys[len(n.keys)-1]
}

func (tree *Tree) min() (key Key, ok bool) {
	if nil == tree.root {
		return
	}
	key = tree.root.minKey()
	ok = true
	return
}

func (tree *Tree) max() (key Key, ok bool) {
	if nil == tree.root {
		return
	}
	key = tree.root.maxKey()
	ok = true
	return
}
