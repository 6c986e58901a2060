// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package btree

import (
	"bytes"
	"math/rand"
	"sort"
	"testing"

	"github.com/NVIDIA/sortedmap"
	"github.com/stretchr/testify/assert"

	"github.com/NVIDIA/btreeindex/blunder"
)

const (
	pseudoRandomSeed = int64(0)
)

func testKnuthShuffledIntSlice(n int, seed int64) (intSlice []int) {
	randSource := rand.New(rand.NewSource(seed))

	intSlice = make([]int, n)
	for i := 0; i < n; i++ {
		intSlice[i] = i
	}
	for swapFrom := n - 1; swapFrom > 0; swapFrom-- {
		swapTo := randSource.Intn(swapFrom + 1)
		intSlice[swapFrom], intSlice[swapTo] = intSlice[swapTo], intSlice[swapFrom]
	}

	return
}

func testNewIntTree(t *testing.T, degree int, keys ...int) (tree *Tree) {
	tree, err := New(degree, sortedmap.CompareInt)
	if nil != err {
		t.Fatalf("New(%d) failed: %v", degree, err)
	}
	for _, key := range keys {
		err = tree.Insert(key)
		if nil != err {
			t.Fatalf("Insert(%d) failed: %v", key, err)
		}
	}
	return
}

func testKeysAsInts(t *testing.T, tree *Tree, order Order) (ints []int) {
	keys, err := tree.Keys(order)
	if nil != err {
		t.Fatalf("Keys(%v) failed: %v", order, err)
	}
	ints = make([]int, len(keys))
	for i, key := range keys {
		ints[i] = key.(int)
	}
	return
}

func testDump(t *testing.T, tree *Tree) string {
	var buf bytes.Buffer

	err := tree.Dump(&buf)
	if nil != err {
		t.Fatalf("Dump() failed: %v", err)
	}
	return buf.String()
}

func TestNew(t *testing.T) {
	assert := assert.New(t)

	for _, degree := range []int{-1, 0, 1} {
		tree, err := New(degree, sortedmap.CompareInt)
		assert.Nil(tree)
		assert.True(blunder.Is(err, blunder.InvalidDegreeError), "New(%d) returned %v", degree, err)
	}

	tree, err := New(2, nil)
	assert.Nil(tree)
	assert.True(blunder.Is(err, blunder.InvalidArgError))

	tree, err = New(2, sortedmap.CompareInt)
	assert.Nil(err)
	assert.Equal(2, tree.Degree())
	assert.Equal(0, tree.Len())
	assert.Equal(0, tree.Height())
	assert.Equal(0, tree.NodeCount())
	assert.Nil(tree.Validate())

	_, ok := tree.Min()
	assert.False(ok)
	_, ok = tree.Max()
	assert.False(ok)

	found, err := tree.Contains(1)
	assert.Nil(err)
	assert.False(found)

	ok, err = tree.Delete(1)
	assert.Nil(err)
	assert.False(ok)

	keys, err := tree.Keys(InOrder)
	assert.Nil(err)
	assert.Equal(0, len(keys))
}

func TestSmallScenario(t *testing.T) {
	assert := assert.New(t)

	tree := testNewIntTree(t, 2, 10, 20, 5, 6, 12, 30, 7, 17)
	assert.Nil(tree.Validate())
	assert.Equal(8, tree.Len())
	assert.Equal([]int{5, 6, 7, 10, 12, 17, 20, 30}, testKeysAsInts(t, tree, InOrder))

	ok, err := tree.Delete(6)
	assert.Nil(err)
	assert.True(ok)
	assert.Nil(tree.Validate())

	assert.Equal([]int{5, 7, 10, 12, 17, 20, 30}, testKeysAsInts(t, tree, InOrder))
	assert.Equal(7, tree.Len())

	rootKeys := len(tree.root.keys)
	assert.True((1 <= rootKeys) && (rootKeys <= 3), "root holds %d keys", rootKeys)

	location, found, err := tree.Search(17)
	assert.Nil(err)
	assert.True(found)
	assert.Equal(17, location.Key())
	assert.Contains(location.NodeKeys(), Key(17))
	assert.Equal(17, location.NodeKeys()[location.Index()])

	_, found, err = tree.Search(99)
	assert.Nil(err)
	assert.False(found)

	minKey, ok := tree.Min()
	assert.True(ok)
	assert.Equal(5, minKey)
	maxKey, ok := tree.Max()
	assert.True(ok)
	assert.Equal(30, maxKey)
}

func TestAscendingScenario(t *testing.T) {
	assert := assert.New(t)

	tree := testNewIntTree(t, 3)
	expected := make([]int, 0, 20)
	for key := 1; key <= 20; key++ {
		assert.Nil(tree.Insert(key))
		assert.Nil(tree.Validate())
		expected = append(expected, key)
	}

	assert.Equal(expected, testKeysAsInts(t, tree, InOrder))

	leafDepth := -1
	var walk func(n *node, depth int)
	walk = func(n *node, depth int) {
		if n != tree.root {
			assert.True((2 <= len(n.keys)) && (len(n.keys) <= 5), "node holds %d keys", len(n.keys))
		}
		if n.leaf {
			if -1 == leafDepth {
				leafDepth = depth
			}
			assert.Equal(leafDepth, depth)
			return
		}
		for _, child := range n.children {
			walk(child, depth+1)
		}
	}
	walk(tree.root, 0)
	assert.Equal(tree.Height()-1, leafDepth)
}

func TestStructure(t *testing.T) {
	assert := assert.New(t)

	tree := testNewIntTree(t, 2, 1, 2, 3)
	assert.Equal(1, tree.Height())
	assert.Equal("B-tree degree:2 len:3 height:1 nodes:1\nleaf [1 2 3]\n", testDump(t, tree))

	rootSplitsBefore := stats.RootSplits.TotalGet()
	splitsBefore := stats.Splits.TotalGet()

	assert.Nil(tree.Insert(4))
	assert.Equal(rootSplitsBefore+1, stats.RootSplits.TotalGet())
	assert.Equal(splitsBefore+1, stats.Splits.TotalGet())

	assert.Equal(2, tree.Height())
	assert.Equal(3, tree.NodeCount())
	assert.Equal("B-tree degree:2 len:4 height:2 nodes:3\ninternal [2]\n  leaf [1]\n  leaf [3 4]\n", testDump(t, tree))

	assert.Equal([]int{2, 1, 3, 4}, testKeysAsInts(t, tree, PreOrder))
	assert.Equal([]int{1, 2, 3, 4}, testKeysAsInts(t, tree, InOrder))
	assert.Equal([]int{1, 3, 4, 2}, testKeysAsInts(t, tree, PostOrder))
}

func TestDeleteCases(t *testing.T) {
	assert := assert.New(t)

	// borrow from the right sibling, then merge into the root
	tree := testNewIntTree(t, 2, 1, 2, 3, 4)
	borrowsBefore := stats.BorrowsFromRight.TotalGet()
	ok, err := tree.Delete(1)
	assert.Nil(err)
	assert.True(ok)
	assert.Nil(tree.Validate())
	assert.Equal(borrowsBefore+1, stats.BorrowsFromRight.TotalGet())
	assert.Equal("B-tree degree:2 len:3 height:2 nodes:3\ninternal [3]\n  leaf [2]\n  leaf [4]\n", testDump(t, tree))

	mergesBefore := stats.Merges.TotalGet()
	rootShrinksBefore := stats.RootShrinks.TotalGet()
	ok, err = tree.Delete(3)
	assert.Nil(err)
	assert.True(ok)
	assert.Nil(tree.Validate())
	assert.Equal(mergesBefore+1, stats.Merges.TotalGet())
	assert.Equal(rootShrinksBefore+1, stats.RootShrinks.TotalGet())
	assert.Equal(1, tree.Height())
	assert.Equal([]int{2, 4}, testKeysAsInts(t, tree, InOrder))

	// predecessor promotion
	tree = testNewIntTree(t, 2, 3, 4, 5, 1, 2)
	assert.Equal("B-tree degree:2 len:5 height:2 nodes:3\ninternal [4]\n  leaf [1 2 3]\n  leaf [5]\n", testDump(t, tree))
	predecessorsBefore := stats.PredecessorPromotions.TotalGet()
	ok, err = tree.Delete(4)
	assert.Nil(err)
	assert.True(ok)
	assert.Nil(tree.Validate())
	assert.Equal(predecessorsBefore+1, stats.PredecessorPromotions.TotalGet())
	assert.Equal([]int{1, 2, 3, 5}, testKeysAsInts(t, tree, InOrder))
	assert.Equal([]int{3, 1, 2, 5}, testKeysAsInts(t, tree, PreOrder))

	// borrow from the left sibling
	tree = testNewIntTree(t, 2, 3, 4, 5, 1, 2)
	borrowsBefore = stats.BorrowsFromLeft.TotalGet()
	ok, err = tree.Delete(5)
	assert.Nil(err)
	assert.True(ok)
	assert.Nil(tree.Validate())
	assert.Equal(borrowsBefore+1, stats.BorrowsFromLeft.TotalGet())
	assert.Equal("B-tree degree:2 len:4 height:2 nodes:3\ninternal [3]\n  leaf [1 2]\n  leaf [4]\n", testDump(t, tree))

	// successor promotion
	tree = testNewIntTree(t, 2, 1, 2, 3, 4, 5)
	successorsBefore := stats.SuccessorPromotions.TotalGet()
	ok, err = tree.Delete(2)
	assert.Nil(err)
	assert.True(ok)
	assert.Nil(tree.Validate())
	assert.Equal(successorsBefore+1, stats.SuccessorPromotions.TotalGet())
	assert.Equal("B-tree degree:2 len:4 height:2 nodes:3\ninternal [3]\n  leaf [1]\n  leaf [4 5]\n", testDump(t, tree))

	// emptying the tree
	for _, key := range []int{1, 3, 4, 5} {
		ok, err = tree.Delete(key)
		assert.Nil(err)
		assert.True(ok)
		assert.Nil(tree.Validate())
	}
	assert.Equal(0, tree.Len())
	assert.Equal(0, tree.Height())
	assert.Nil(tree.root)
}

func TestDeleteAbsent(t *testing.T) {
	assert := assert.New(t)

	tree := testNewIntTree(t, 2, 10, 20, 5, 6, 12, 30, 7, 17)
	before := testDump(t, tree)
	missesBefore := stats.DeleteMisses.TotalGet()

	ok, err := tree.Delete(11)
	assert.Nil(err)
	assert.False(ok)
	assert.Equal(missesBefore+1, stats.DeleteMisses.TotalGet())
	assert.Equal(before, testDump(t, tree))
	assert.Equal(8, tree.Len())
}

func TestInsertThenDelete(t *testing.T) {
	assert := assert.New(t)

	tree := testNewIntTree(t, 3, testKnuthShuffledIntSlice(50, pseudoRandomSeed)...)
	expected := testKeysAsInts(t, tree, InOrder)

	assert.Nil(tree.Insert(1000))
	ok, err := tree.Delete(1000)
	assert.Nil(err)
	assert.True(ok)
	assert.Nil(tree.Validate())
	assert.Equal(expected, testKeysAsInts(t, tree, InOrder))
}

func TestDuplicates(t *testing.T) {
	assert := assert.New(t)

	tree := testNewIntTree(t, 2)
	for i := 0; i < 10; i++ {
		assert.Nil(tree.Insert(5))
		assert.Nil(tree.Insert(i))
		assert.Nil(tree.Validate())
	}
	assert.Equal(20, tree.Len())

	expected := []int{0, 1, 2, 3, 4, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 6, 7, 8, 9}
	assert.Equal(expected, testKeysAsInts(t, tree, InOrder))

	for copies := 11; copies > 0; copies-- {
		found, err := tree.Contains(5)
		assert.Nil(err)
		assert.True(found)

		ok, err := tree.Delete(5)
		assert.Nil(err)
		assert.True(ok)
		assert.Nil(tree.Validate())
	}

	found, err := tree.Contains(5)
	assert.Nil(err)
	assert.False(found)
	assert.Equal([]int{0, 1, 2, 3, 4, 6, 7, 8, 9}, testKeysAsInts(t, tree, InOrder))
}

func TestShuffled(t *testing.T) {
	assert := assert.New(t)

	for _, degree := range []int{2, 3, 4, 7, 16} {
		tree := testNewIntTree(t, degree)
		inserted := testKnuthShuffledIntSlice(500, int64(degree))

		for i, key := range inserted {
			assert.Nil(tree.Insert(key))
			if 0 == i%25 {
				assert.Nil(tree.Validate())
			}
		}
		assert.Nil(tree.Validate())
		assert.Equal(len(inserted), tree.Len())

		for key := 0; key < len(inserted); key++ {
			found, err := tree.Contains(key)
			assert.Nil(err)
			assert.True(found, "degree %d key %d", degree, key)
		}

		remaining := make(map[int]struct{})
		for _, key := range inserted {
			remaining[key] = struct{}{}
		}

		for i, key := range testKnuthShuffledIntSlice(500, int64(degree)+100) {
			ok, err := tree.Delete(key)
			assert.Nil(err)
			assert.True(ok)
			delete(remaining, key)

			if 0 == i%10 {
				if !assert.Nil(tree.Validate(), "degree %d after deleting %d", degree, key) {
					return
				}

				expected := make([]int, 0, len(remaining))
				for remainingKey := range remaining {
					expected = append(expected, remainingKey)
				}
				sort.Ints(expected)
				actual := testKeysAsInts(t, tree, InOrder)
				if 0 == len(expected) {
					assert.Equal(0, len(actual))
				} else {
					assert.Equal(expected, actual)
				}
			}
		}

		assert.Equal(0, tree.Len())
		assert.Nil(tree.Validate())
	}
}

func TestTraversalOrders(t *testing.T) {
	assert := assert.New(t)

	tree := testNewIntTree(t, 2, testKnuthShuffledIntSlice(100, pseudoRandomSeed)...)

	// every order visits every key exactly once
	for _, order := range []Order{PreOrder, InOrder, PostOrder} {
		ints := testKeysAsInts(t, tree, order)
		sort.Ints(ints)
		for i, key := range ints {
			assert.Equal(i, key, "order %v", order)
		}
	}

	// pre-order starts with the root's keys
	rootKeyCount := len(tree.root.keys)
	preOrder := testKeysAsInts(t, tree, PreOrder)
	for i := 0; i < rootKeyCount; i++ {
		assert.Equal(tree.root.keys[i], preOrder[i])
	}

	// internal [10 20] over leaf [5 6 7], leaf [12 17], leaf [30]
	small := testNewIntTree(t, 2, 10, 20, 5, 6, 12, 30, 7, 17)
	assert.Equal("B-tree degree:2 len:8 height:2 nodes:4\ninternal [10 20]\n  leaf [5 6 7]\n  leaf [12 17]\n  leaf [30]\n", testDump(t, small))
	assert.Equal([]int{10, 20, 5, 6, 7, 12, 17, 30}, testKeysAsInts(t, small, PreOrder))
	assert.Equal([]int{5, 6, 7, 10, 12, 17, 20, 30}, testKeysAsInts(t, small, InOrder))
	assert.Equal([]int{5, 6, 7, 12, 17, 10, 30, 20}, testKeysAsInts(t, small, PostOrder))

	_, err := tree.Traverse(Order(42))
	assert.True(blunder.Is(err, blunder.InvalidOrderError))

	for _, orderAsString := range []string{"pre", "InOrder", "POST"} {
		_, err = ParseOrder(orderAsString)
		assert.Nil(err)
	}
	_, err = ParseOrder("level")
	assert.True(blunder.Is(err, blunder.InvalidArgError))
	assert.Equal("PostOrder", PostOrder.String())
}

func TestCursor(t *testing.T) {
	assert := assert.New(t)

	tree := testNewIntTree(t, 2, 3, 1, 2)

	cursor, err := tree.Traverse(InOrder)
	assert.Nil(err)
	assert.Equal(InOrder, cursor.Order())

	key, ok := cursor.Next()
	assert.True(ok)
	assert.Equal(1, key)

	// restartable
	cursor.Reset()
	collected := []Key{}
	for key, ok = cursor.Next(); ok; key, ok = cursor.Next() {
		collected = append(collected, key)
	}
	assert.Equal([]Key{1, 2, 3}, collected)

	// exhausted cursors stay exhausted
	_, ok = cursor.Next()
	assert.False(ok)

	// modification invalidates the cursor until Reset
	cursor.Reset()
	_, ok = cursor.Next()
	assert.True(ok)
	assert.Nil(tree.Insert(4))
	_, ok = cursor.Next()
	assert.False(ok)

	cursor.Reset()
	collected = []Key{}
	for key, ok = cursor.Next(); ok; key, ok = cursor.Next() {
		collected = append(collected, key)
	}
	assert.Equal([]Key{1, 2, 3, 4}, collected)

	// a failed delete leaves the cursor usable
	cursor.Reset()
	ok, err = tree.Delete(42)
	assert.Nil(err)
	assert.False(ok)
	key, ok = cursor.Next()
	assert.True(ok)
	assert.Equal(1, key)
}

func TestCompareFailure(t *testing.T) {
	assert := assert.New(t)

	tree := testNewIntTree(t, 2, 1, 2, 3)

	err := tree.Insert("not an int")
	assert.True(blunder.Is(err, blunder.KeyTypeError), "Insert() returned %v", err)
	assert.Equal(3, tree.Len())
	assert.Nil(tree.Validate())

	_, _, err = tree.Search("not an int")
	assert.True(blunder.Is(err, blunder.KeyTypeError))

	_, err = tree.Delete("not an int")
	assert.True(blunder.Is(err, blunder.KeyTypeError))
	assert.Equal([]int{1, 2, 3}, testKeysAsInts(t, tree, InOrder))
}

func TestStringKeys(t *testing.T) {
	assert := assert.New(t)

	tree, err := New(3, sortedmap.CompareString)
	assert.Nil(err)

	words := []string{"pear", "apple", "fig", "kiwi", "banana", "cherry", "date", "grape", "lemon", "mango", "apple"}
	for _, word := range words {
		assert.Nil(tree.Insert(word))
	}
	assert.Nil(tree.Validate())

	keys, err := tree.Keys(InOrder)
	assert.Nil(err)
	sorted := append([]string{}, words...)
	sort.Strings(sorted)
	for i, key := range keys {
		assert.Equal(sorted[i], key)
	}

	assert.Contains(SprintStats(), "btree.Inserts total:")
}

func TestValidateDetectsCorruption(t *testing.T) {
	assert := assert.New(t)

	tree := testNewIntTree(t, 2, 1, 2, 3, 4, 5, 6, 7)
	assert.Nil(tree.Validate())

	// append an out of order key to the leftmost leaf
	leaf := tree.root.children[0]
	for !leaf.leaf {
		leaf = leaf.children[0]
	}
	leaf.keys = append(leaf.keys, -1)
	err := tree.Validate()
	assert.True(blunder.Is(err, blunder.InvariantViolationError), "Validate() returned %v", err)
	leaf.keys = leaf.keys[:len(leaf.keys)-1]
	assert.Nil(tree.Validate())

	tree.size++
	err = tree.Validate()
	assert.True(blunder.Is(err, blunder.InvariantViolationError))
	tree.size--
}
