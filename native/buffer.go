// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package native

import (
	"fmt"
	"math"
)

// MaxBufferSize is the largest byte size one buffer may span (the client's ub4/sb4 length limit).
const MaxBufferSize = math.MaxInt32

// ErrFreed is returned when a freed ArrayBuffer is touched.
var ErrFreed = &Error{Code: 22, Message: "invalid OCI handle: buffer already released", Fn: "dpiVar"}

// ArrayBuffer is the slot storage of one variable: numElements slots of
// elementSize bytes, each with a null indicator, an actual length, a return code
// and an opaque handle.
//
// The statement a buffer is bound to keeps a pointer to it,
// so a freed buffer must never be written to or fetched into.
type ArrayBuffer struct {
	data        []byte
	indicator   []int16
	length      []uint32
	returnCode  []uint16
	handles     []interface{}
	elementSize int
	numElements int
	actual      int
	freed       bool
}

// NewArrayBuffer allocates numElements slots of elementSize bytes, all null.
func NewArrayBuffer(numElements, elementSize int) (*ArrayBuffer, error) {
	if numElements < 1 || elementSize < 0 {
		return nil, &Error{Code: 22, Fn: "dpiVar_create",
			Message: fmt.Sprintf("invalid dimensions %d*%d", numElements, elementSize)}
	}
	if int64(numElements)*int64(elementSize) > MaxBufferSize {
		return nil, &Error{Code: 4030, Fn: "dpiVar_create",
			Message: fmt.Sprintf("out of process memory when trying to allocate %d*%d bytes", numElements, elementSize)}
	}
	b := ArrayBuffer{
		data:        make([]byte, numElements*elementSize),
		indicator:   make([]int16, numElements),
		length:      make([]uint32, numElements),
		returnCode:  make([]uint16, numElements),
		handles:     make([]interface{}, numElements),
		elementSize: elementSize,
		numElements: numElements,
		actual:      numElements,
	}
	for i := range b.indicator {
		b.indicator[i] = IndicatorNull
	}
	return &b, nil
}

func (b *ArrayBuffer) check(pos int) error {
	if b == nil || b.freed {
		return ErrFreed
	}
	if pos < 0 || pos >= b.numElements {
		return &Error{Code: 1, Fn: "dpiVar_getData",
			Message: fmt.Sprintf("array position %d out of bounds [0,%d)", pos, b.numElements)}
	}
	return nil
}

// NumElements returns the allocated slot count.
func (b *ArrayBuffer) NumElements() int { return b.numElements }

// ElementSize returns the byte width of one slot.
func (b *ArrayBuffer) ElementSize() int { return b.elementSize }

// Freed reports whether Free has been called.
func (b *ArrayBuffer) Freed() bool { return b == nil || b.freed }

// Slot returns the whole slot at pos, elementSize bytes long.
func (b *ArrayBuffer) Slot(pos int) ([]byte, error) {
	if err := b.check(pos); err != nil {
		return nil, err
	}
	off := pos * b.elementSize
	return b.data[off : off+b.elementSize : off+b.elementSize], nil
}

// Bytes returns the written part of the slot at pos.
func (b *ArrayBuffer) Bytes(pos int) ([]byte, error) {
	if err := b.check(pos); err != nil {
		return nil, err
	}
	off := pos * b.elementSize
	return b.data[off : off+int(b.length[pos]) : off+b.elementSize], nil
}

// SetBytes copies p into the slot at pos, records its length and clears the null indicator.
func (b *ArrayBuffer) SetBytes(pos int, p []byte) error {
	if err := b.check(pos); err != nil {
		return err
	}
	if len(p) > b.elementSize {
		return &Error{Code: 1406, Fn: "dpiVar_setFromBytes",
			Message: fmt.Sprintf("value of %d bytes does not fit into %d bytes", len(p), b.elementSize)}
	}
	off := pos * b.elementSize
	copy(b.data[off:off+b.elementSize], p)
	b.length[pos] = uint32(len(p))
	b.indicator[pos] = IndicatorNotNull
	return nil
}

// Length returns the actual length of the slot at pos.
func (b *ArrayBuffer) Length(pos int) int {
	if b.check(pos) != nil {
		return 0
	}
	return int(b.length[pos])
}

// IsNull reports whether the slot at pos is null.
func (b *ArrayBuffer) IsNull(pos int) bool {
	if b.check(pos) != nil {
		return true
	}
	return b.indicator[pos] == IndicatorNull
}

// SetNull sets the null indicator of the slot at pos.
func (b *ArrayBuffer) SetNull(pos int, isNull bool) error {
	if err := b.check(pos); err != nil {
		return err
	}
	if isNull {
		b.indicator[pos] = IndicatorNull
	} else {
		b.indicator[pos] = IndicatorNotNull
	}
	return nil
}

// ReturnCode returns the column-level return code the client recorded for the slot at pos.
func (b *ArrayBuffer) ReturnCode(pos int) uint16 {
	if b.check(pos) != nil {
		return 0
	}
	return b.returnCode[pos]
}

// SetReturnCode is used by the client side to record a per-slot return code (e.g. 1406 on truncation).
func (b *ArrayBuffer) SetReturnCode(pos int, code uint16) error {
	if err := b.check(pos); err != nil {
		return err
	}
	b.returnCode[pos] = code
	return nil
}

// Handle returns the opaque handle stored in the slot at pos.
func (b *ArrayBuffer) Handle(pos int) interface{} {
	if b.check(pos) != nil {
		return nil
	}
	return b.handles[pos]
}

// SetHandle stores an opaque handle in the slot at pos.
func (b *ArrayBuffer) SetHandle(pos int, h interface{}) error {
	if err := b.check(pos); err != nil {
		return err
	}
	b.handles[pos] = h
	return nil
}

// ActualElements returns the number of populated elements of a PL/SQL table.
func (b *ArrayBuffer) ActualElements() int {
	if b == nil || b.freed {
		return 0
	}
	return b.actual
}

// SetActualElements sets the number of populated elements of a PL/SQL table.
func (b *ArrayBuffer) SetActualElements(n int) error {
	if b == nil || b.freed {
		return ErrFreed
	}
	if n < 0 || n > b.numElements {
		return &Error{Code: 1, Fn: "dpiVar_setNumElementsInArray",
			Message: fmt.Sprintf("array size %d exceeds the allocated %d", n, b.numElements)}
	}
	b.actual = n
	return nil
}

// CopySlot copies the slot srcPos of src into the slot dstPos of b:
// written bytes, length, indicator, return code and handle.
func (b *ArrayBuffer) CopySlot(dstPos int, src *ArrayBuffer, srcPos int) error {
	if err := b.check(dstPos); err != nil {
		return err
	}
	if err := src.check(srcPos); err != nil {
		return err
	}
	n := int(src.length[srcPos])
	if n > b.elementSize {
		return &Error{Code: 1406, Fn: "dpiVar_copyData",
			Message: fmt.Sprintf("source slot of %d bytes does not fit into %d bytes", n, b.elementSize)}
	}
	if n == 0 && src.elementSize <= b.elementSize {
		n = src.elementSize
	}
	off, srcOff := dstPos*b.elementSize, srcPos*src.elementSize
	copy(b.data[off:off+b.elementSize], src.data[srcOff:srcOff+n])
	b.length[dstPos] = src.length[srcPos]
	b.indicator[dstPos] = src.indicator[srcPos]
	b.returnCode[dstPos] = src.returnCode[srcPos]
	b.handles[dstPos] = src.handles[srcPos]
	return nil
}

// Free releases the storage. It is safe to call Free more than once.
func (b *ArrayBuffer) Free() {
	if b == nil || b.freed {
		return
	}
	b.freed = true
	b.data, b.indicator, b.length, b.returnCode, b.handles = nil, nil, nil, nil, nil
}
