// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package index gives every ordered tree implementation in this module, plus
// github.com/google/btree, a common Index interface so they can be driven
// and compared with identical key sequences.
package index

import (
	"github.com/NVIDIA/sortedmap"
)

// Index is the contract shared by every implementation. Keys may repeat:
// Insert adds a copy and Delete removes one.
type Index interface {
	Insert(key sortedmap.Key) (err error)
	Contains(key sortedmap.Key) (found bool, err error)
	Delete(key sortedmap.Key) (ok bool, err error)
	Len() int
	Keys() (keys []sortedmap.Key, err error) // non-decreasing, duplicates repeated
	Validate() (err error)
}

// Kinds accepted by New.
const (
	BTreeKind       = "btree"
	AVLKind         = "avl"
	RBTreeKind      = "rbtree"
	GoogleBTreeKind = "googlebtree"
)

// New returns an empty Index of the named kind ordered by compare. degree is
// only used by kinds for which UsesDegree is true.
//
// An unknown kind returns NotFoundError.
func New(kind string, degree int, compare sortedmap.Compare) (index Index, err error) {
	index, err = newIndex(kind, degree, compare)
	return
}

// Kinds returns every kind New accepts, sorted.
func Kinds() []string {
	return []string{AVLKind, BTreeKind, GoogleBTreeKind, RBTreeKind}
}

// UsesDegree reports whether kind is a B-tree parameterized by degree.
func UsesDegree(kind string) bool {
	return (BTreeKind == kind) || (GoogleBTreeKind == kind)
}
