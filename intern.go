// Copyright 2022, 2024 The Godror Authors
// Copyright (c) 2019 Josh Bleecher Snyder
//
// SPDX-License-Identifier: MIT

// Interning is best effort only.
// Interned strings may be removed automatically
// at any time without notification.
// All functions may be called concurrently
// with themselves and each other.
package cxoracle

import "sync"

// internLimit bounds the size of one pooled map; a full map is dropped.
const internLimit = 1 << 12

var (
	internStringPool = sync.Pool{
		New: func() interface{} {
			return make(map[string]string)
		},
	}
	internNumberPool = sync.Pool{
		New: func() interface{} {
			return make(map[Number]Number)
		},
	}
)

// internBytes returns b converted to a string, interned.
// Used for ROWIDs, which repeat a lot within a fetch.
func internBytes(b []byte) string {
	m := internStringPool.Get().(map[string]string)
	if c, ok := m[string(b)]; ok {
		internStringPool.Put(m)
		return c
	}
	s := string(b)
	if len(m) >= internLimit {
		m = make(map[string]string)
	}
	m[s] = s
	internStringPool.Put(m)
	return s
}

// internNumberBytes returns b converted to a Number, interned.
func internNumberBytes(b []byte) Number {
	m := internNumberPool.Get().(map[Number]Number)
	if c, ok := m[Number(b)]; ok {
		internNumberPool.Put(m)
		return c
	}
	n := Number(b)
	if len(m) >= internLimit {
		m = make(map[Number]Number)
	}
	m[n] = n
	internNumberPool.Put(m)
	return n
}
