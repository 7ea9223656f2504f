// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	errors "golang.org/x/xerrors"

	"github.com/oracle/python-cx-Oracle-sub001/native"
)

// boolKind is the PL/SQL BOOLEAN.
type boolKind struct{}

func (boolKind) setValue(v *Variable, pos int, value interface{}) error {
	b, ok := value.(bool)
	if !ok {
		return errors.Errorf("expected a bool, got %T: %w", value, ErrTypeMismatch)
	}
	var a [native.SizeBoolean]byte
	native.PutBool(a[:], b)
	return checkError(v.buf.SetBytes(pos, a[:]), "setBool")
}

func (boolKind) getValue(v *Variable, pos int) (interface{}, error) {
	b, err := v.buf.Bytes(pos)
	if err != nil {
		return nil, checkError(err, "getBool")
	}
	if len(b) < native.SizeBoolean {
		return nil, errors.Errorf("BOOLEAN slot of %d bytes: %w", len(b), ErrTypeMismatch)
	}
	return native.Bool(b), nil
}
