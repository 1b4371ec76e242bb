// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package btree

import "fmt"

func Example() {
	var btree BTree

	btree.Set("apple", "red")
	btree.Set("banana", "yellow")
	btree.Set("cherry", "red")

	rec, found := btree.Get("banana")
	fmt.Printf("banana: %s (found: %v)\n", rec.Val, found)

	// Tombstone keeps the key in place
	btree.Tombstone("banana")
	rec, found = btree.Get("banana")
	fmt.Printf("banana after tombstone: dead=%v (found: %v)\n", rec.Dead, found)
	fmt.Printf("Len: %d Live: %d\n", btree.Len(), btree.Live())

	// Compact drops it
	fmt.Printf("Reclaimed: %d\n", btree.Compact())
	_, found = btree.Get("banana")
	fmt.Printf("banana after compact: found=%v\n", found)

	// Output:
	// banana: yellow (found: true)
	// banana after tombstone: dead=true (found: true)
	// Len: 3 Live: 2
	// Reclaimed: 1
	// banana after compact: found=false
}

func ExampleBTree_Iter() {
	var btree BTree
	btree.Set("apple", "red")
	btree.Set("banana", "yellow")
	btree.Set("cherry", "red")
	btree.Tombstone("banana")

	iter := btree.Iter()
	iter.SeekFirst()
	for iter.Valid() {
		if iter.Tombstone() {
			fmt.Printf("%s: <dead>\n", iter.Key())
		} else {
			fmt.Printf("%s: %s\n", iter.Key(), iter.Val())
		}
		iter.Next()
	}

	// Output:
	// apple: red
	// banana: <dead>
	// cherry: red
}

func ExampleBTree_Items() {
	var btree BTree
	btree.Set("apple", "red")
	btree.Set("banana", "yellow")
	btree.Set("cherry", "red")
	btree.Tombstone("banana")
	btree.Set("banana", "green") // revived

	for key, rec := range btree.Items {
		fmt.Printf("%s: %s\n", key, rec.Val)
	}

	// Output:
	// apple: red
	// banana: green
	// cherry: red
}
