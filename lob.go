// Copyright 2017, 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"context"
	"io"
	"sync"

	errors "golang.org/x/xerrors"

	"github.com/oracle/python-cx-Oracle-sub001/native"
)

// Lob is a LOB locator fetched from, or bound to, a variable.
//
// Offsets are 0-based byte offsets, as with io.ReaderAt;
// CLOB bytes are in the environment's (national) character set.
type Lob struct {
	conn       *Conn
	native     native.Lob
	oracleType native.OracleType
	// owned is set for temporary LOBs created by NewTempLob, which Close frees.
	owned  bool
	closed bool
}

func newLob(conn *Conn, oracleType native.OracleType, nl native.Lob) *Lob {
	return &Lob{conn: conn, native: nl, oracleType: oracleType}
}

// NewTempLob creates a temporary LOB of typ (CLOB or BLOB), freed by Close.
func (c *Conn) NewTempLob(ctx context.Context, typ *VarType) (*Lob, error) {
	if typ == nil || typ.nativeType != native.NativeLob || typ.oracleType == native.TypeBFile {
		return nil, errors.Errorf("temporary LOB of %s: %w", typ, ErrNotSupported)
	}
	nl, err := c.native.NewTempLob(ctx, typ.oracleType)
	if err != nil {
		return nil, checkError(err, "newTempLob")
	}
	lob := newLob(c, typ.oracleType, nl)
	lob.owned = true
	return lob, nil
}

// OracleType returns the wire type of the LOB.
func (lob *Lob) OracleType() native.OracleType { return lob.oracleType }

// IsClob reports whether the LOB holds character data.
func (lob *Lob) IsClob() bool { return lob.oracleType == native.TypeClob }

func (lob *Lob) check() error {
	if lob == nil || lob.native == nil || lob.closed {
		return errors.Errorf("LOB: %w", ErrClosed)
	}
	return nil
}

// Size returns the length in bytes.
func (lob *Lob) Size() (int64, error) {
	if err := lob.check(); err != nil {
		return 0, err
	}
	n, err := lob.native.Size()
	return n, checkError(err, "lobSize")
}

// ReadAt reads len(p) bytes from offset. It returns io.EOF at the end of the LOB.
func (lob *Lob) ReadAt(p []byte, offset int64) (int, error) {
	if err := lob.check(); err != nil {
		return 0, err
	}
	n, err := lob.native.ReadAt(p, offset+1)
	if err != nil {
		return n, checkError(err, "lobReadAt")
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt writes p at offset, growing the LOB as needed.
func (lob *Lob) WriteAt(p []byte, offset int64) (int, error) {
	if err := lob.check(); err != nil {
		return 0, err
	}
	if lob.oracleType == native.TypeBFile {
		return 0, errors.Errorf("write BFILE: %w", ErrNotSupported)
	}
	n, err := lob.native.WriteAt(p, offset+1)
	return n, checkError(err, "lobWriteAt")
}

// Trim shortens the LOB to size bytes.
func (lob *Lob) Trim(size int64) error {
	if err := lob.check(); err != nil {
		return err
	}
	return checkError(lob.native.Trim(size), "lobTrim")
}

// Read returns the whole content.
func (lob *Lob) Read() ([]byte, error) {
	size, err := lob.Size()
	if err != nil || size == 0 {
		return nil, err
	}
	p := make([]byte, size)
	n, err := lob.ReadAt(p, 0)
	if err == io.EOF {
		err = nil
	}
	return p[:n], err
}

// ReadString returns the whole content of a CLOB, decoded.
func (lob *Lob) ReadString() (string, error) {
	if !lob.IsClob() {
		return "", errors.Errorf("%s is not a CLOB: %w", lob.oracleType, ErrTypeMismatch)
	}
	b, err := lob.Read()
	if err != nil {
		return "", err
	}
	env := DefaultEnvironment()
	if lob.conn != nil {
		env = lob.conn.env
	}
	return env.decode(b, false)
}

// NewReader returns an io.Reader reading the LOB from the start.
func (lob *Lob) NewReader() io.Reader { return &lobReader{lob: lob} }

// Close frees a temporary LOB created by NewTempLob.
// Locators fetched from a variable belong to the variable.
func (lob *Lob) Close() error {
	if lob == nil || lob.closed {
		return nil
	}
	lob.closed = true
	if !lob.owned || lob.native == nil {
		return nil
	}
	return checkError(lob.native.Close(), "lobClose")
}

type lobReader struct {
	lob *Lob
	mu  sync.Mutex
	// sizePlusOne is the size read once, plus one; zero means unknown yet.
	sizePlusOne int64
	offset      int64
	finished    bool
}

func (lr *lobReader) Read(p []byte) (int, error) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if lr.finished {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, io.ErrShortBuffer
	}
	if lr.sizePlusOne == 0 {
		size, err := lr.lob.Size()
		if err != nil {
			return 0, errors.Errorf("getSize: %w", err)
		}
		lr.sizePlusOne = size + 1
	}
	if lr.offset+1 >= lr.sizePlusOne {
		lr.finished = true
		return 0, io.EOF
	}
	if rest := lr.sizePlusOne - 1 - lr.offset; int64(len(p)) > rest {
		p = p[:rest]
	}
	n, err := lr.lob.ReadAt(p, lr.offset)
	lr.offset += int64(n)
	if err == io.EOF || n == 0 || lr.offset+1 >= lr.sizePlusOne {
		lr.finished = true
		return n, io.EOF
	}
	if err != nil {
		return n, errors.Errorf("offset=%d n=%d: %w", lr.offset, len(p), err)
	}
	return n, nil
}
