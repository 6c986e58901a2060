// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package btree provides an ordered, in-memory index over comparable keys
// backed by a B-tree of configurable minimum degree t.
//
// Every node other than the root holds between t-1 and 2t-1 keys and every
// leaf sits at the same depth. Insert splits any full node met on the way down
// (a full root first grows the tree by one level) so a leaf always has room
// for the new key. Delete repairs any node holding only t-1 keys, by borrowing
// from a sibling or merging with one, before descending into it, so the key can
// always be removed without a second pass back up the tree.
//
// Keys are ordered by a caller supplied Compare, the same comparator signature
// used by the sortedmap package, so sortedmap.CompareInt, sortedmap.CompareString
// and friends can be used directly. Duplicate keys are permitted: each Insert
// adds a copy and each Delete removes one.
//
// A Tree is not safe for concurrent use.
package btree

import (
	"io"

	"github.com/NVIDIA/sortedmap"
)

// Key is any value the Tree's Compare function accepts.
type Key = sortedmap.Key

// Compare returns <0 if key1 < key2, 0 if key1 == key2, >0 if key1 > key2.
type Compare = sortedmap.Compare

// Order selects the visiting order of a traversal.
type Order int

const (
	// PreOrder visits a node's keys, then each of its children left to right.
	PreOrder Order = iota
	// InOrder visits child 0, key 0, child 1, ... key n-1, child n. Keys come out non-decreasing.
	InOrder
	// PostOrder visits child 0, then child 1, key 0, child 2, key 1, ... child n, key n-1.
	PostOrder
)

// MinDegree is the smallest minimum degree a Tree may be created with.
const MinDegree = 2

// Tree is a B-tree of minimum degree Degree().
type Tree struct {
	degree     int
	compare    Compare
	root       *node // nil when the Tree is empty
	size       int
	generation uint64 // bumped by every structural change; see Cursor
}

// Location identifies a key found by Search: the node holding it and its
// index within that node. It is only meaningful until the Tree is next
// modified.
type Location struct {
	node  *node
	index int
}

// Cursor walks a Tree lazily in a fixed Order. See (*Tree).Traverse.
type Cursor struct {
	tree       *Tree
	order      Order
	generation uint64
	stack      []cursorFrame
}

// New returns an empty Tree of minimum degree degree ordered by compare.
//
// degree must be at least MinDegree (InvalidDegreeError) and compare must not
// be nil (InvalidArgError).
func New(degree int, compare Compare) (tree *Tree, err error) {
	tree, err = newTree(degree, compare)
	return
}

// Degree returns the minimum degree t the Tree was created with.
func (tree *Tree) Degree() int {
	return tree.degree
}

// Len returns the number of keys (counting duplicates) in the Tree.
func (tree *Tree) Len() int {
	return tree.size
}

// Height returns the number of levels in the Tree: 0 when empty, 1 when the
// root is a leaf.
func (tree *Tree) Height() int {
	return tree.height()
}

// NodeCount returns the number of nodes in the Tree.
func (tree *Tree) NodeCount() int {
	return tree.nodeCount()
}

// Min returns the smallest key in the Tree. ok is false if the Tree is empty.
func (tree *Tree) Min() (key Key, ok bool) {
	key, ok = tree.min()
	return
}

// Max returns the largest key in the Tree. ok is false if the Tree is empty.
func (tree *Tree) Max() (key Key, ok bool) {
	key, ok = tree.max()
	return
}

// Search looks for key. If found, location identifies the first copy of key
// met while descending from the root.
//
// err is non-nil (KeyTypeError) only if compare failed.
func (tree *Tree) Search(key Key) (location Location, found bool, err error) {
	stats.Searches.Increment()
	location, found, err = tree.search(key)
	return
}

// Contains reports whether at least one copy of key is in the Tree.
func (tree *Tree) Contains(key Key) (found bool, err error) {
	_, found, err = tree.Search(key)
	return
}

// Insert adds key to the Tree. Duplicates are kept.
//
// If compare fails err is KeyTypeError and key has not been added. Splits
// performed before the failure leave a valid Tree.
func (tree *Tree) Insert(key Key) (err error) {
	err = tree.insert(key)
	if nil == err {
		stats.Inserts.Increment()
	}
	return
}

// Delete removes one copy of key from the Tree. ok is false, and the Tree is
// unchanged, if key is not present.
func (tree *Tree) Delete(key Key) (ok bool, err error) {
	ok, err = tree.delete(key)
	if nil == err {
		if ok {
			stats.Deletes.Increment()
		} else {
			stats.DeleteMisses.Increment()
		}
	}
	return
}

// Traverse returns a Cursor positioned before the first key of a traversal in
// order. An unknown order returns InvalidOrderError.
//
// The Cursor is invalidated by any subsequent modification of the Tree; its
// Next then reports ok == false until Reset.
func (tree *Tree) Traverse(order Order) (cursor *Cursor, err error) {
	cursor, err = tree.traverse(order)
	return
}

// Keys returns every key of the Tree in order.
func (tree *Tree) Keys(order Order) (keys []Key, err error) {
	cursor, err := tree.Traverse(order)
	if nil != err {
		return
	}

	keys = make([]Key, 0, tree.size)
	for {
		key, ok := cursor.Next()
		if !ok {
			break
		}
		keys = append(keys, key)
	}

	return
}

// Validate walks the whole Tree checking the ordering, capacity, depth and
// size invariants. The first violation found is returned as an
// InvariantViolationError.
func (tree *Tree) Validate() (err error) {
	err = tree.validate()
	return
}

// Dump writes the structure of the Tree to w, one node per line in pre-order,
// indented by depth.
func (tree *Tree) Dump(w io.Writer) (err error) {
	err = tree.dump(w)
	return
}

// Key returns the key at location.
func (location Location) Key() Key {
	return location.node.keys[location.index]
}

// Index returns the position of the key within its node.
func (location Location) Index() int {
	return location.index
}

// NodeKeys returns a copy of all keys in the node holding the key.
func (location Location) NodeKeys() (keys []Key) {
	keys = make([]Key, len(location.node.keys))
	copy(keys, location.node.keys)
	return
}

// Next returns the next key of the traversal. ok is false once the traversal
// is exhausted or the Tree has been modified since the Cursor was created or
// last Reset.
func (cursor *Cursor) Next() (key Key, ok bool) {
	key, ok = cursor.next()
	return
}

// Reset restarts the traversal from the beginning of the Tree's current contents.
func (cursor *Cursor) Reset() {
	cursor.reset()
}

// Order returns the order the Cursor visits keys in.
func (cursor *Cursor) Order() Order {
	return cursor.order
}

func (order Order) String() string {
	switch order {
	case PreOrder:
		return "PreOrder"
	case InOrder:
		return "InOrder"
	case PostOrder:
		return "PostOrder"
	default:
		return "UnknownOrder"
	}
}

// ParseOrder maps "pre", "in" or "post" (or the Order names) to an Order.
func ParseOrder(orderAsString string) (order Order, err error) {
	order, err = parseOrder(orderAsString)
	return
}
