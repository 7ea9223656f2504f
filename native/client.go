// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package native

import "context"

// Bind is what a statement receives when a variable is attached to a placeholder or a column.
type Bind struct {
	Buffer      *ArrayBuffer
	ObjectType  *ObjectTypeInfo
	ElementSize int
	// MaxArrayElements is the capacity of a PL/SQL table bind, 0 for scalar binds.
	MaxArrayElements int
	OracleType       OracleType
	NativeType       NativeType
	CharsetForm      CharsetForm
}

// Statement is a prepared statement handle.
type Statement interface {
	// BindByName attaches b to the named placeholder (without the leading colon).
	BindByName(name string, b Bind) error
	// BindByPos attaches b to the 1-based placeholder position.
	BindByPos(pos int, b Bind) error
	// DefineByPos attaches b to the 1-based query column position.
	DefineByPos(pos int, b Bind) error
	// NumColumns returns the number of query columns, after Execute.
	NumColumns() (int, error)
	// Column describes the 1-based query column.
	Column(pos int) (ColumnInfo, error)
	Execute(ctx context.Context, numIters int) error
	// Fetch fetches at most maxRows rows into the defined buffers and returns the number fetched.
	Fetch(ctx context.Context, maxRows int) (int, error)
	Close() error
}

// Lob is a LOB locator. Offsets are 1-based byte positions.
type Lob interface {
	OracleType() OracleType
	Size() (int64, error)
	ReadAt(p []byte, offset int64) (int, error)
	WriteAt(p []byte, offset int64) (int, error)
	Trim(newSize int64) error
	IsTemporary() bool
	Close() error
}

// Object is an instance of an object or collection type.
//
// Getters fill v as the representation v.NativeType asks for.
type Object interface {
	TypeInfo() *ObjectTypeInfo
	GetAttr(attr *AttrInfo, v *Value) error
	SetAttr(attr *AttrInfo, v *Value) error

	Append(v *Value) error
	Get(i int, v *Value) error
	Set(i int, v *Value) error
	Delete(i int) error
	Exists(i int) (bool, error)
	// First returns the first index, and false for an empty collection.
	First() (int, bool, error)
	Last() (int, bool, error)
	Next(i int) (int, bool, error)
	Prev(i int) (int, bool, error)
	Len() (int, error)
	Trim(n int) error

	Copy() (Object, error)
	Close() error
}

// TempString is a client allocated string, valid until Free.
type TempString interface {
	Bytes() []byte
	Free() error
}

// Conn is the connection-level factory of the handles variables need.
type Conn interface {
	// NewStatement allocates an unprepared statement, used as a child cursor.
	NewStatement(ctx context.Context) (Statement, error)
	NewTempLob(ctx context.Context, typ OracleType) (Lob, error)
	// NewLobLocator allocates an empty locator a define can fetch into.
	NewLobLocator(typ OracleType) (Lob, error)
	ObjectType(ctx context.Context, name string) (*ObjectTypeInfo, error)
	NewObject(ctx context.Context, typ *ObjectTypeInfo) (Object, error)
	NewString(b []byte) (TempString, error)
	Close() error
}
