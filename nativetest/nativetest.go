// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

// Package nativetest provides an in-memory implementation of the native client,
// for testing the code that marshals values into its buffers.
//
// Statements record their binds and serve preset rows into the defined buffers;
// LOBs, objects and collections live in memory. Handles are identified by ULIDs.
package nativetest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/oracle/python-cx-Oracle-sub001/native"
)

var _ native.Conn = (*Conn)(nil)

// Conn is an in-memory native connection.
type Conn struct {
	types map[string]*native.ObjectTypeInfo
	stmts []*Stmt

	// FailLobWrite, when set, is returned by every LOB WriteAt.
	FailLobWrite error
	// FailNewString, when set, is returned by NewString.
	FailNewString error

	ID ulid.ULID

	mu           sync.Mutex
	typeLookups  int
	liveStrings  int
	liveTempLobs int
	liveObjects  int
	closed       bool
}

// NewConn returns a new connection, which knows the given object types.
func NewConn(types ...*native.ObjectTypeInfo) *Conn {
	c := &Conn{ID: ulid.Make(), types: make(map[string]*native.ObjectTypeInfo)}
	for _, t := range types {
		c.AddObjectType(t)
	}
	return c
}

// AddObjectType registers t, under its full and its short name.
func (c *Conn) AddObjectType(t *native.ObjectTypeInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.Handle == nil {
		t.Handle = ulid.Make()
	}
	c.types[strings.ToUpper(t.FullName())] = t
	c.types[strings.ToUpper(t.Name)] = t
}

func (c *Conn) String() string { return "nativetest.Conn(" + c.ID.String() + ")" }

// Statements returns the statements created so far.
func (c *Conn) Statements() []*Stmt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Stmt(nil), c.stmts...)
}

// ObjectTypeLookups returns the number of ObjectType calls.
func (c *Conn) ObjectTypeLookups() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typeLookups
}

// LiveStrings returns the number of temporary strings not freed yet.
func (c *Conn) LiveStrings() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liveStrings
}

// LiveTempLobs returns the number of temporary LOBs not closed yet.
func (c *Conn) LiveTempLobs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liveTempLobs
}

// LiveObjects returns the number of objects created by NewObject (and copies) not closed yet.
func (c *Conn) LiveObjects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liveObjects
}

func (c *Conn) add(p *int, n int) {
	c.mu.Lock()
	*p += n
	c.mu.Unlock()
}

func (c *Conn) check(fn string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return &native.Error{Code: 3114, Fn: fn, Message: "not connected to ORACLE"}
	}
	return nil
}

// NewStatement returns a new, empty statement.
func (c *Conn) NewStatement(ctx context.Context) (native.Statement, error) {
	if err := c.check("dpiConn_newStmt"); err != nil {
		return nil, err
	}
	st := NewStmt()
	st.conn = c
	c.mu.Lock()
	c.stmts = append(c.stmts, st)
	c.mu.Unlock()
	return st, nil
}

// NewTempLob returns a new temporary LOB.
func (c *Conn) NewTempLob(ctx context.Context, typ native.OracleType) (native.Lob, error) {
	if err := c.check("dpiConn_newTempLob"); err != nil {
		return nil, err
	}
	switch typ {
	case native.TypeClob, native.TypeBlob:
	default:
		return nil, &native.Error{Code: 22275, Fn: "dpiConn_newTempLob", Message: "invalid LOB locator specified: " + typ.String()}
	}
	c.add(&c.liveTempLobs, 1)
	return &Lob{ID: ulid.Make(), conn: c, typ: typ, temporary: true}, nil
}

// NewLobLocator returns an empty locator.
func (c *Conn) NewLobLocator(typ native.OracleType) (native.Lob, error) {
	if err := c.check("dpiLob_new"); err != nil {
		return nil, err
	}
	return &Lob{ID: ulid.Make(), conn: c, typ: typ}, nil
}

// ObjectType returns the registered object type of the name.
func (c *Conn) ObjectType(ctx context.Context, name string) (*native.ObjectTypeInfo, error) {
	if err := c.check("dpiConn_getObjectType"); err != nil {
		return nil, err
	}
	// lookups are round trips
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Millisecond):
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.typeLookups++
	if t, ok := c.types[strings.ToUpper(name)]; ok {
		return t, nil
	}
	return nil, &native.Error{Code: 4043, Fn: "dpiConn_getObjectType", Message: fmt.Sprintf("object %s does not exist", name)}
}

// NewObject returns a new object or collection of typ.
func (c *Conn) NewObject(ctx context.Context, typ *native.ObjectTypeInfo) (native.Object, error) {
	if err := c.check("dpiObjectType_createObject"); err != nil {
		return nil, err
	}
	if typ == nil {
		return nil, &native.Error{Code: 22, Fn: "dpiObjectType_createObject", Message: "nil object type"}
	}
	c.add(&c.liveObjects, 1)
	return newObject(c, typ), nil
}

// NewString copies b into a temporary string.
func (c *Conn) NewString(b []byte) (native.TempString, error) {
	if c.FailNewString != nil {
		return nil, c.FailNewString
	}
	if err := c.check("OCIStringAssignText"); err != nil {
		return nil, err
	}
	c.add(&c.liveStrings, 1)
	return &TempString{conn: c, b: append([]byte(nil), b...)}, nil
}

// Close the connection.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// TempString is a temporary string.
type TempString struct {
	conn  *Conn
	b     []byte
	freed bool
}

func (s *TempString) Bytes() []byte { return s.b }

// Free the string. Freeing twice is an error.
func (s *TempString) Free() error {
	if s.freed {
		return &native.Error{Code: 22, Fn: "OCIStringResize", Message: "string already freed"}
	}
	s.freed = true
	s.b = nil
	if s.conn != nil {
		s.conn.add(&s.conn.liveStrings, -1)
	}
	return nil
}
