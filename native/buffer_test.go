// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package native

import (
	"errors"
	"testing"
)

func TestArrayBuffer(t *testing.T) {
	b, err := NewArrayBuffer(3, 4)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if !b.IsNull(i) {
			t.Errorf("%d. new slot is not null", i)
		}
	}
	if err = b.SetBytes(1, []byte("abcd")); err != nil {
		t.Fatal(err)
	}
	if b.IsNull(1) {
		t.Error("set slot is null")
	}
	if got, _ := b.Bytes(1); string(got) != "abcd" {
		t.Errorf("got %q", got)
	}

	var ne *Error
	if err = b.SetBytes(0, []byte("abcde")); !errors.As(err, &ne) || ne.Code != 1406 {
		t.Errorf("oversize: got %v, wanted ORA-01406", err)
	}
	if _, err = b.Bytes(3); err == nil {
		t.Error("position 3 of 3 accepted")
	}

	if err = b.SetReturnCode(1, 1406); err != nil {
		t.Fatal(err)
	}
	if err = b.SetHandle(1, "handle"); err != nil {
		t.Fatal(err)
	}
	wide, err := NewArrayBuffer(3, 8)
	if err != nil {
		t.Fatal(err)
	}
	if err = wide.CopySlot(2, b, 1); err != nil {
		t.Fatal(err)
	}
	if got, _ := wide.Bytes(2); string(got) != "abcd" {
		t.Errorf("copied %q", got)
	}
	if wide.ReturnCode(2) != 1406 || wide.Handle(2) != "handle" || wide.IsNull(2) {
		t.Errorf("copy lost the slot state: rc=%d handle=%v null=%t", wide.ReturnCode(2), wide.Handle(2), wide.IsNull(2))
	}

	if err = b.SetActualElements(4); err == nil {
		t.Error("actual elements over the allocated accepted")
	}
	if err = b.SetActualElements(2); err != nil || b.ActualElements() != 2 {
		t.Errorf("actual elements: %d, %+v", b.ActualElements(), err)
	}

	b.Free()
	b.Free()
	if !b.Freed() {
		t.Error("not freed")
	}
	if err = b.SetBytes(0, nil); !errors.Is(err, ErrFreed) {
		t.Errorf("set after free: got %v", err)
	}
}

func TestNewArrayBufferTooLarge(t *testing.T) {
	_, err := NewArrayBuffer(1<<16, 1<<16)
	var ne *Error
	if !errors.As(err, &ne) || ne.Code != 4030 {
		t.Errorf("got %v, wanted ORA-04030", err)
	}
}

func TestValueCopyFrom(t *testing.T) {
	src := NewValue(NativeInt64)
	src.SetInt64(42)
	dst := NewValue(NativeDouble)
	if err := dst.CopyFrom(src); err != nil {
		t.Fatal(err)
	}
	if dst.GetFloat64() != 42 || dst.NativeType != NativeDouble {
		t.Errorf("got %s", dst)
	}

	b := []byte("abc")
	src.SetBytes(b)
	dst = NewValue(NativeBytes)
	if err := dst.CopyFrom(src); err != nil {
		t.Fatal(err)
	}
	b[0] = 'x'
	if got := string(dst.GetBytes()); got != "abc" {
		t.Errorf("copy shares the bytes: %q", got)
	}

	dst = NewValue(NativeTimestamp)
	if err := dst.CopyFrom(src); err == nil {
		t.Error("bytes into timestamp accepted")
	}
}
