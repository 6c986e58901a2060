// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package avltree provides an AVL tree keyed by a sortedmap.Compare.
//
// The tree keeps one node per distinct key with a count of its copies, so
// Insert and Delete present the same multiset behavior as package btree.
package avltree

import (
	"github.com/NVIDIA/sortedmap"
)

// Tree is an AVL tree holding each distinct key once with a count of its copies.
type Tree struct {
	compare sortedmap.Compare
	root    *node
	size    int // counting duplicates
	nodes   int
}

// New returns an empty Tree ordered by compare.
func New(compare sortedmap.Compare) (tree *Tree, err error) {
	tree, err = newTree(compare)
	return
}

// Insert adds a copy of key.
func (tree *Tree) Insert(key sortedmap.Key) (err error) {
	err = tree.insert(key)
	return
}

// Contains reports whether at least one copy of key is present.
func (tree *Tree) Contains(key sortedmap.Key) (found bool, err error) {
	found, err = tree.contains(key)
	return
}

// Delete removes one copy of key. ok is false if key was not present.
func (tree *Tree) Delete(key sortedmap.Key) (ok bool, err error) {
	ok, err = tree.delete(key)
	return
}

// Len returns the number of keys, counting duplicates.
func (tree *Tree) Len() int {
	return tree.size
}

// Height returns the number of levels (0 when empty).
func (tree *Tree) Height() int {
	return tree.root.getHeight()
}

// NodeCount returns the number of distinct keys.
func (tree *Tree) NodeCount() int {
	return tree.nodes
}

// Keys returns every key, duplicates repeated, in non-decreasing order.
func (tree *Tree) Keys() (keys []sortedmap.Key) {
	keys = make([]sortedmap.Key, 0, tree.size)
	keys = tree.root.appendKeys(keys)
	return
}

// Validate checks ordering, stored heights, balance factors and counts.
func (tree *Tree) Validate() (err error) {
	err = tree.validate()
	return
}
