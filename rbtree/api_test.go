// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package rbtree

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/NVIDIA/sortedmap"
	"github.com/stretchr/testify/assert"

	"github.com/NVIDIA/btreeindex/blunder"
)

func TestNew(t *testing.T) {
	assert := assert.New(t)

	tree, err := New(nil)
	assert.Nil(tree)
	assert.True(blunder.Is(err, blunder.InvalidArgError))

	tree, err = New(sortedmap.CompareInt)
	assert.Nil(err)
	assert.Equal(0, tree.Len())
	assert.Equal(0, tree.NodeCount())
	assert.Nil(tree.Validate())

	ok, err := tree.Delete(1)
	assert.Nil(err)
	assert.False(ok)
}

func TestInsertDelete(t *testing.T) {
	assert := assert.New(t)

	tree, err := New(sortedmap.CompareInt)
	assert.Nil(err)

	keys := rand.New(rand.NewSource(1)).Perm(500)
	for _, key := range keys {
		assert.Nil(tree.Insert(key))
	}
	assert.Nil(tree.Validate())
	assert.Equal(500, tree.Len())

	for _, key := range keys[:250] {
		ok, err := tree.Delete(key)
		assert.Nil(err)
		assert.True(ok)
	}
	assert.Nil(tree.Validate())

	expected := append([]int{}, keys[250:]...)
	sort.Ints(expected)

	actual, err := tree.Keys()
	assert.Nil(err)
	assert.Equal(len(expected), len(actual))
	for i, key := range actual {
		assert.Equal(expected[i], key)
	}

	found, err := tree.Contains(keys[0])
	assert.Nil(err)
	assert.False(found)
	found, err = tree.Contains(keys[499])
	assert.Nil(err)
	assert.True(found)
}

func TestDuplicates(t *testing.T) {
	assert := assert.New(t)

	tree, err := New(sortedmap.CompareInt)
	assert.Nil(err)

	for _, key := range []int{4, 4, 2, 4} {
		assert.Nil(tree.Insert(key))
	}
	assert.Equal(4, tree.Len())
	assert.Equal(2, tree.NodeCount())

	keys, err := tree.Keys()
	assert.Nil(err)
	assert.Equal([]sortedmap.Key{2, 4, 4, 4}, keys)

	for i := 0; i < 3; i++ {
		ok, err := tree.Delete(4)
		assert.Nil(err)
		assert.True(ok)
		assert.Nil(tree.Validate())
	}
	ok, err := tree.Delete(4)
	assert.Nil(err)
	assert.False(ok)
	assert.Equal(1, tree.Len())
	assert.Equal(1, tree.NodeCount())
}

func TestCompareFailure(t *testing.T) {
	assert := assert.New(t)

	tree, err := New(sortedmap.CompareInt)
	assert.Nil(err)
	assert.Nil(tree.Insert(1))

	err = tree.Insert("one")
	assert.True(blunder.Is(err, blunder.KeyTypeError))
	assert.Equal(1, tree.Len())

	_, err = tree.Contains("one")
	assert.True(blunder.Is(err, blunder.KeyTypeError))
	_, err = tree.Delete("one")
	assert.True(blunder.Is(err, blunder.KeyTypeError))
	assert.Nil(tree.Validate())
}

func TestDumpCallbacks(t *testing.T) {
	assert := assert.New(t)

	tree, err := New(sortedmap.CompareInt)
	assert.Nil(err)

	keyAsString, err := tree.DumpKey(42)
	assert.Nil(err)
	assert.Equal("42", keyAsString)

	valueAsString, err := tree.DumpValue(3)
	assert.Nil(err)
	assert.Equal("x3", valueAsString)
}
