// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	errors "golang.org/x/xerrors"
)

// stringKind serves every text and binary type: VARCHAR2, CHAR, NVARCHAR2, NCHAR, LONG, ROWID, RAW and LONG RAW.
type stringKind struct {
	rowid bool
}

func (k stringKind) setValue(v *Variable, pos int, value interface{}) error {
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
		if k.rowid {
			return errors.Errorf("expected a ROWID string, got %T: %w", value, ErrTypeMismatch)
		}
		return errors.Errorf("expected string or []byte, got %T: %w", value, ErrTypeMismatch)
	}
	if err != nil {
		return err
	}
	defer b.release()
	return v.setValueBytes(pos, b)
}

// setValueBytes writes the buffer into the slot at pos, growing every slot first
// if the value does not fit. Fixed width types never grow.
func (v *Variable) setValueBytes(pos int, b buffer) error {
	if n := b.size(); n > v.elementSize {
		if !v.typ.isVariableLength {
			return errors.Errorf("%d bytes into %s(%d bytes): %w", n, v.typ, v.elementSize, ErrValueTooLarge)
		}
		if err := v.resize(n); err != nil {
			return err
		}
	}
	return checkError(v.buf.SetBytes(pos, b.ptr), "setFromBytes")
}

func (k stringKind) getValue(v *Variable, pos int) (interface{}, error) {
	b, err := v.buf.Bytes(pos)
	if err != nil {
		return nil, checkError(err, "getBytes")
	}
	switch {
	case k.rowid:
		return internBytes(b), nil
	case !v.typ.isCharData:
		return append(make([]byte, 0, len(b)), b...), nil
	default:
		return v.env.decode(b, v.typ.isNChar())
	}
}
