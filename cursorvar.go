// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"context"

	errors "golang.org/x/xerrors"

	"github.com/oracle/python-cx-Oracle-sub001/native"
)

// cursorKind slots hold the statement of a REF CURSOR.
type cursorKind struct{}

func (cursorKind) initialize(v *Variable) error {
	if v.conn == nil {
		return errors.Errorf("%s variable needs a connection: %w", v.typ, ErrNotSupported)
	}
	v.cursors = make([]*Cursor, v.allocatedElements)
	for i := range v.cursors {
		cur, err := v.conn.newChildCursor(context.Background())
		if err != nil {
			return err
		}
		if v.cur != nil {
			cur.FetchArraySize = v.cur.FetchArraySize
			cur.OutputTypeHandler = v.cur.OutputTypeHandler
		}
		v.cursors[i] = cur
		if err = v.buf.SetHandle(i, cur.stmt); err != nil {
			return checkError(err, "newChildCursor")
		}
	}
	return nil
}

func (cursorKind) finalize(v *Variable) {
	for _, cur := range v.cursors {
		if cur != nil {
			_ = cur.Close()
		}
	}
	v.cursors = nil
}

// setValue adopts the statement of the cursor; the cursor stays owned by the caller.
func (cursorKind) setValue(v *Variable, pos int, value interface{}) error {
	cur, ok := value.(*Cursor)
	if !ok {
		return errors.Errorf("expected *Cursor, got %T: %w", value, ErrTypeMismatch)
	}
	if err := cur.check(); err != nil {
		return err
	}
	return checkError(v.buf.SetHandle(pos, cur.stmt), "setCursor")
}

func (cursorKind) getValue(v *Variable, pos int) (interface{}, error) {
	st, ok := v.buf.Handle(pos).(native.Statement)
	if !ok || st == nil {
		return nil, errors.Errorf("no statement at %d: %w", pos, ErrClosed)
	}
	if pos < len(v.cursors) && v.cursors[pos] != nil && v.cursors[pos].stmt == st {
		return v.cursors[pos], nil
	}
	return newCursor(v.conn, st, false), nil
}
