// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package index

import (
	gbtree "github.com/google/btree"

	"github.com/NVIDIA/sortedmap"

	"github.com/NVIDIA/btreeindex/blunder"
)

// googleBTree adapts github.com/google/btree to Index. That tree holds
// distinct items, so each item carries the number of copies of its key.
type googleBTree struct {
	tree       *gbtree.BTree
	compare    sortedmap.Compare
	compareErr error // first compare failure seen by Less since the last reset
	size       int
}

// google/btree panics on degree <= 1
const googleBTreeMinDegree = 2

type countedItem struct {
	owner *googleBTree
	key   sortedmap.Key
	count int
}

func (item *countedItem) Less(than gbtree.Item) bool {
	result, err := item.owner.compare(item.key, than.(*countedItem).key)
	if nil != err {
		if nil == item.owner.compareErr {
			item.owner.compareErr = err
		}
		return false
	}
	return result < 0
}

func newGoogleBTree(degree int, compare sortedmap.Compare) (tree *googleBTree, err error) {
	if degree < googleBTreeMinDegree {
		err = blunder.NewError(blunder.InvalidDegreeError, "googlebtree: degree %d must be at least %d", degree, googleBTreeMinDegree)
		return
	}
	if nil == compare {
		err = blunder.NewError(blunder.InvalidArgError, "googlebtree: compare must not be nil")
		return
	}

	tree = &googleBTree{
		tree:    gbtree.New(degree),
		compare: compare,
	}

	err = nil
	return
}

// find returns the stored item for key, or nil.
func (tree *googleBTree) find(key sortedmap.Key) (item *countedItem, err error) {
	tree.compareErr = nil

	found := tree.tree.Get(&countedItem{owner: tree, key: key})
	if nil != tree.compareErr {
		err = blunder.AddError(tree.compareErr, blunder.KeyTypeError)
		tree.compareErr = nil
		return
	}

	if nil != found {
		item = found.(*countedItem)
	}

	err = nil
	return
}

func (tree *googleBTree) Insert(key sortedmap.Key) (err error) {
	item, err := tree.find(key)
	if nil != err {
		return
	}

	if nil != item {
		item.count++
	} else {
		tree.tree.ReplaceOrInsert(&countedItem{owner: tree, key: key, count: 1})
		if nil != tree.compareErr {
			err = blunder.AddError(tree.compareErr, blunder.KeyTypeError)
			tree.compareErr = nil
			return
		}
	}

	tree.size++

	err = nil
	return
}

func (tree *googleBTree) Contains(key sortedmap.Key) (found bool, err error) {
	item, err := tree.find(key)
	found = (nil != item)
	return
}

func (tree *googleBTree) Delete(key sortedmap.Key) (ok bool, err error) {
	item, err := tree.find(key)
	if (nil != err) || (nil == item) {
		return
	}

	if 1 < item.count {
		item.count--
	} else {
		tree.tree.Delete(item)
	}

	tree.size--

	ok = true
	err = nil
	return
}

func (tree *googleBTree) Len() int {
	return tree.size
}

func (tree *googleBTree) Keys() (keys []sortedmap.Key, err error) {
	keys = make([]sortedmap.Key, 0, tree.size)

	tree.tree.Ascend(func(i gbtree.Item) bool {
		item := i.(*countedItem)
		for count := 0; count < item.count; count++ {
			keys = append(keys, item.key)
		}
		return true
	})

	err = nil
	return
}

// Validate checks items ascend strictly and their counts add up to Len().
func (tree *googleBTree) Validate() (err error) {
	var (
		previous *countedItem
		total    int
	)

	tree.tree.Ascend(func(i gbtree.Item) bool {
		item := i.(*countedItem)

		if 0 >= item.count {
			err = blunder.NewError(blunder.InvariantViolationError, "key %v has count %d", item.key, item.count)
			return false
		}

		if nil != previous {
			result, compareErr := tree.compare(previous.key, item.key)
			if nil != compareErr {
				err = blunder.AddError(compareErr, blunder.KeyTypeError)
				return false
			}
			if result >= 0 {
				err = blunder.NewError(blunder.InvariantViolationError, "keys %v and %v out of order", previous.key, item.key)
				return false
			}
		}

		previous = item
		total += item.count
		return true
	})
	if nil != err {
		return
	}

	if (total != tree.size) || (tree.tree.Len() > tree.size) {
		err = blunder.NewError(blunder.InvariantViolationError, "tree holds %d keys in %d items but has size %d",
			total, tree.tree.Len(), tree.size)
		return
	}

	err = nil
	return
}
