// Copyright 2020 The Godror Authors
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

// Version of this package
const Version = "v0.1.0"
