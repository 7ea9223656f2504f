// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package native

import "fmt"

// Error is the error information of a failed client call.
type Error struct {
	Message string
	Fn      string
	Action  string
	Offset  int
	Code    int
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Fn == "" {
		return fmt.Sprintf("ORA-%05d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: ORA-%05d: %s", e.Fn, e.Code, e.Message)
}
