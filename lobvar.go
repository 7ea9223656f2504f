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

// lobKind keeps one LOB locator per slot.
type lobKind struct{}

func (lobKind) initialize(v *Variable) error {
	if v.conn == nil {
		return errors.Errorf("%s variable needs a connection: %w", v.typ, ErrNotSupported)
	}
	v.locators = make([]native.Lob, v.allocatedElements)
	for i := range v.locators {
		nl, err := v.conn.native.NewLobLocator(v.typ.oracleType)
		if err != nil {
			return checkError(err, "newLobLocator")
		}
		v.locators[i] = nl
		if err = v.buf.SetHandle(i, nl); err != nil {
			return checkError(err, "newLobLocator")
		}
	}
	return nil
}

func (lobKind) finalize(v *Variable) {
	for pos := range v.tempLobs {
		v.releaseSlot(pos)
	}
	for _, nl := range v.locators {
		if nl != nil {
			_ = nl.Close()
		}
	}
	v.locators = nil
}

func (k lobKind) setValue(v *Variable, pos int, value interface{}) error {
	if lob, ok := value.(*Lob); ok {
		if err := lob.check(); err != nil {
			return err
		}
		if lob.native != v.tempLobs[pos] {
			v.releaseSlot(pos)
		}
		return checkError(v.buf.SetHandle(pos, lob.native), "setLob")
	}
	if v.typ.oracleType == native.TypeBFile {
		return errors.Errorf("BFILE from %T: %w", value, ErrNotSupported)
	}

	var b buffer
	var err error
	switch x := value.(type) {
	case string:
		if v.typ.isCharData {
			b, err = v.env.newBuffer(x, v.typ.isNChar())
		} else {
			b = buffer{ptr: []byte(x), numChars: len(x)}
		}
	case []byte:
		b, err = v.env.newBuffer(x, false)
	default:
		return errors.Errorf("expected *Lob, string or []byte, got %T: %w", value, ErrTypeMismatch)
	}
	if err != nil {
		return err
	}
	defer b.release()

	tl, err := v.conn.native.NewTempLob(context.Background(), v.typ.oracleType)
	if err != nil {
		return checkError(err, "newTempLob")
	}
	if len(b.ptr) != 0 {
		if _, err = tl.WriteAt(b.ptr, 1); err != nil {
			_ = tl.Close()
			return checkError(err, "lobWrite")
		}
	}
	v.releaseSlot(pos)
	if err = v.buf.SetHandle(pos, tl); err != nil {
		_ = tl.Close()
		return checkError(err, "setLob")
	}
	if v.tempLobs == nil {
		v.tempLobs = make(map[int]native.Lob)
	}
	v.tempLobs[pos] = tl
	return nil
}

func (lobKind) getValue(v *Variable, pos int) (interface{}, error) {
	nl, ok := v.buf.Handle(pos).(native.Lob)
	if !ok || nl == nil {
		return nil, errors.Errorf("no LOB locator at %d: %w", pos, ErrClosed)
	}
	return newLob(v.conn, v.typ.oracleType, nl), nil
}
