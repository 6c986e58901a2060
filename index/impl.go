// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"github.com/NVIDIA/sortedmap"

	"github.com/NVIDIA/btreeindex/avltree"
	"github.com/NVIDIA/btreeindex/blunder"
	"github.com/NVIDIA/btreeindex/btree"
	"github.com/NVIDIA/btreeindex/logger"
	"github.com/NVIDIA/btreeindex/rbtree"
)

type btreeIndex struct {
	*btree.Tree
}

func (index *btreeIndex) Keys() (keys []sortedmap.Key, err error) {
	keys, err = index.Tree.Keys(btree.InOrder)
	return
}

type avlIndex struct {
	*avltree.Tree
}

func (index *avlIndex) Keys() (keys []sortedmap.Key, err error) {
	keys = index.Tree.Keys()
	err = nil
	return
}

func newIndex(kind string, degree int, compare sortedmap.Compare) (index Index, err error) {
	switch kind {
	case BTreeKind:
		tree, newErr := btree.New(degree, compare)
		if nil != newErr {
			err = newErr
			return
		}
		index = &btreeIndex{Tree: tree}
	case AVLKind:
		tree, newErr := avltree.New(compare)
		if nil != newErr {
			err = newErr
			return
		}
		index = &avlIndex{Tree: tree}
	case RBTreeKind:
		tree, newErr := rbtree.New(compare)
		if nil != newErr {
			err = newErr
			return
		}
		index = tree
	case GoogleBTreeKind:
		tree, newErr := newGoogleBTree(degree, compare)
		if nil != newErr {
			err = newErr
			return
		}
		index = tree
	default:
		err = blunder.NewError(blunder.NotFoundError, "index.New(): unknown kind %q", kind)
		return
	}

	logger.Tracef("created %s index (degree %d)", kind, degree)

	err = nil
	return
}
