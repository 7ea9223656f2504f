// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	errors "golang.org/x/xerrors"

	"github.com/oracle/python-cx-Oracle-sub001/native"
)

// objectKind slots hold a native object instance.
type objectKind struct{}

func (objectKind) setValue(v *Variable, pos int, value interface{}) error {
	obj, ok := value.(*Object)
	if !ok {
		return errors.Errorf("expected *Object, got %T: %w", value, ErrTypeMismatch)
	}
	if obj.objectType != v.objectType {
		return errors.Errorf("object of %s into a variable of %s: %w", obj.objectType, v.objectType, ErrTypeMismatch)
	}
	if err := obj.check(); err != nil {
		return err
	}
	return checkError(v.buf.SetHandle(pos, obj.native), "setObject")
}

func (objectKind) getValue(v *Variable, pos int) (interface{}, error) {
	no, ok := v.buf.Handle(pos).(native.Object)
	if !ok || no == nil {
		return nil, errors.Errorf("no object at %d: %w", pos, ErrClosed)
	}
	return newObject(v.objectType, no, false), nil
}
