//go:build go1.23

// Copyright 2019, 2025 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"iter"

	errors "golang.org/x/xerrors"
)

// Items iterates over the elements of the collection, skipping holes.
func (O *Object) Items() iter.Seq2[interface{}, error] {
	return func(yield func(interface{}, error) bool) {
		curr, err := O.First()
		for ; err == nil; curr, err = O.Next(curr) {
			if !yield(O.Get(curr)) {
				return
			}
		}
		if !errors.Is(err, ErrNotExist) {
			yield(nil, err)
		}
	}
}

// Indexes iterates over the existing indexes of the collection.
func (O *Object) Indexes() iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		i, err := O.First()
		for ; err == nil; i, err = O.Next(i) {
			if !yield(i, nil) {
				return
			}
		}
		if !errors.Is(err, ErrNotExist) {
			yield(i, err)
		}
	}
}
