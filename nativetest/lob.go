// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package nativetest

import (
	"github.com/oklog/ulid/v2"

	"github.com/oracle/python-cx-Oracle-sub001/native"
)

var _ native.Lob = (*Lob)(nil)

// Lob is an in-memory LOB.
type Lob struct {
	conn      *Conn
	data      []byte
	ID        ulid.ULID
	typ       native.OracleType
	temporary bool
	closed    bool
}

// NewLob returns a LOB locator holding data, such as a fetched one.
func NewLob(typ native.OracleType, data []byte) *Lob {
	return &Lob{ID: ulid.Make(), typ: typ, data: append([]byte(nil), data...)}
}

func (l *Lob) String() string { return "nativetest.Lob(" + l.ID.String() + ")" }

// Data returns the content.
func (l *Lob) Data() []byte { return l.data }

// Closed reports whether Close has been called.
func (l *Lob) Closed() bool { return l.closed }

func (l *Lob) check(fn string) error {
	if l.closed {
		return &native.Error{Code: 22275, Fn: fn, Message: "invalid LOB locator specified"}
	}
	return nil
}

func (l *Lob) OracleType() native.OracleType { return l.typ }
func (l *Lob) IsTemporary() bool             { return l.temporary }

func (l *Lob) Size() (int64, error) {
	if err := l.check("dpiLob_getSize"); err != nil {
		return 0, err
	}
	return int64(len(l.data)), nil
}

// ReadAt reads from the 1-based offset.
func (l *Lob) ReadAt(p []byte, offset int64) (int, error) {
	if err := l.check("dpiLob_readBytes"); err != nil {
		return 0, err
	}
	if offset < 1 {
		return 0, &native.Error{Code: 22923, Fn: "dpiLob_readBytes", Message: "amount of data specified in streaming LOB write is 0"}
	}
	if offset > int64(len(l.data)) {
		return 0, nil
	}
	return copy(p, l.data[offset-1:]), nil
}

// WriteAt writes at the 1-based offset, growing the LOB.
func (l *Lob) WriteAt(p []byte, offset int64) (int, error) {
	if err := l.check("dpiLob_writeBytes"); err != nil {
		return 0, err
	}
	if l.conn != nil && l.conn.FailLobWrite != nil {
		return 0, l.conn.FailLobWrite
	}
	if offset < 1 {
		return 0, &native.Error{Code: 22923, Fn: "dpiLob_writeBytes", Message: "invalid offset"}
	}
	if end := int(offset-1) + len(p); end > len(l.data) {
		l.data = append(l.data, make([]byte, end-len(l.data))...)
	}
	return copy(l.data[offset-1:], p), nil
}

func (l *Lob) Trim(newSize int64) error {
	if err := l.check("dpiLob_trim"); err != nil {
		return err
	}
	if newSize < 0 || newSize > int64(len(l.data)) {
		return &native.Error{Code: 22926, Fn: "dpiLob_trim", Message: "specified trim length is greater than current LOB value's length"}
	}
	l.data = l.data[:newSize]
	return nil
}

func (l *Lob) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	if l.temporary && l.conn != nil {
		l.conn.add(&l.conn.liveTempLobs, -1)
	}
	return nil
}
