// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package rbtree provides a red-black tree index built on the left-leaning
// red-black tree of the sortedmap package.
//
// sortedmap maps each distinct key to a single value. Here that value is the
// number of copies of the key, so Insert and Delete present the same multiset
// behavior as package btree.
package rbtree

import (
	"fmt"

	"github.com/NVIDIA/sortedmap"

	"github.com/NVIDIA/btreeindex/blunder"
)

// Tree is a left-leaning red-black tree mapping each distinct key to its copy count.
type Tree struct {
	llrb sortedmap.LLRBTree
	size int // counting duplicates
}

// New returns an empty Tree ordered by compare.
func New(compare sortedmap.Compare) (tree *Tree, err error) {
	if nil == compare {
		err = blunder.NewError(blunder.InvalidArgError, "rbtree.New(): compare must not be nil")
		return
	}

	tree = &Tree{}
	tree.llrb = sortedmap.NewLLRBTree(compare, tree)

	err = nil
	return
}

// Insert adds a copy of key.
func (tree *Tree) Insert(key sortedmap.Key) (err error) {
	count, ok, err := tree.getCount(key)
	if nil != err {
		return
	}

	if ok {
		_, err = tree.llrb.PatchByKey(key, count+1)
	} else {
		_, err = tree.llrb.Put(key, 1)
	}
	if nil != err {
		err = blunder.AddError(err, blunder.KeyTypeError)
		return
	}

	tree.size++
	return
}

// Contains reports whether at least one copy of key is present.
func (tree *Tree) Contains(key sortedmap.Key) (found bool, err error) {
	_, found, err = tree.getCount(key)
	return
}

// Delete removes one copy of key. ok is false if key was not present.
func (tree *Tree) Delete(key sortedmap.Key) (ok bool, err error) {
	count, ok, err := tree.getCount(key)
	if (nil != err) || !ok {
		return
	}

	if 1 < count {
		_, err = tree.llrb.PatchByKey(key, count-1)
	} else {
		_, err = tree.llrb.DeleteByKey(key)
	}
	if nil != err {
		ok = false
		err = blunder.AddError(err, blunder.KeyTypeError)
		return
	}

	tree.size--
	return
}

// Len returns the number of keys, counting duplicates.
func (tree *Tree) Len() int {
	return tree.size
}

// NodeCount returns the number of distinct keys.
func (tree *Tree) NodeCount() (nodes int) {
	nodes, _ = tree.llrb.Len()
	return
}

// Keys returns every key, duplicates repeated, in non-decreasing order.
func (tree *Tree) Keys() (keys []sortedmap.Key, err error) {
	keys = make([]sortedmap.Key, 0, tree.size)

	nodes := tree.NodeCount()
	for index := 0; index < nodes; index++ {
		key, value, ok, getErr := tree.llrb.GetByIndex(index)
		if nil != getErr {
			err = getErr
			return
		}
		if !ok {
			err = blunder.NewError(blunder.InvariantViolationError, "GetByIndex(%d) of %d found nothing", index, nodes)
			return
		}
		for count := value.(int); 0 < count; count-- {
			keys = append(keys, key)
		}
	}

	err = nil
	return
}

// Validate checks the underlying tree's color and size invariants and that
// the per-key counts add up to Len().
func (tree *Tree) Validate() (err error) {
	err = tree.llrb.Validate()
	if nil != err {
		err = blunder.AddError(err, blunder.InvariantViolationError)
		return
	}

	total := 0
	nodes := tree.NodeCount()
	for index := 0; index < nodes; index++ {
		_, value, _, getErr := tree.llrb.GetByIndex(index)
		if nil != getErr {
			err = blunder.AddError(getErr, blunder.InvariantViolationError)
			return
		}
		count := value.(int)
		if 0 >= count {
			err = blunder.NewError(blunder.InvariantViolationError, "key at index %d has count %d", index, count)
			return
		}
		total += count
	}

	if total != tree.size {
		err = blunder.NewError(blunder.InvariantViolationError, "tree holds %d keys but has size %d", total, tree.size)
		return
	}

	err = nil
	return
}

// Dump prints the underlying tree to stdout.
func (tree *Tree) Dump() (err error) {
	err = tree.llrb.Dump()
	return
}

// DumpKey satisfies sortedmap.DumpCallbacks.
func (tree *Tree) DumpKey(key sortedmap.Key) (keyAsString string, err error) {
	keyAsString = fmt.Sprintf("%v", key)
	err = nil
	return
}

// DumpValue satisfies sortedmap.DumpCallbacks, rendering a count as x<count>.
func (tree *Tree) DumpValue(value sortedmap.Value) (valueAsString string, err error) {
	valueAsString = fmt.Sprintf("x%v", value)
	err = nil
	return
}

func (tree *Tree) getCount(key sortedmap.Key) (count int, ok bool, err error) {
	value, ok, err := tree.llrb.GetByKey(key)
	if nil != err {
		err = blunder.AddError(err, blunder.KeyTypeError)
		return
	}
	if ok {
		count = value.(int)
	}
	return
}
