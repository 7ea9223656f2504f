// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

// Package native is the boundary to the Oracle client library.
//
// It holds the wire type tags, the in-memory representation tags,
// the slot array a variable owns, the codecs of the fixed native layouts,
// and the interfaces of the client handles (statements, LOBs, objects)
// the marshalling code talks to.
package native

import "fmt"

// OracleType is the wire type tag of the client library (OCI SQLT codes).
type OracleType uint16

const (
	TypeVarchar         OracleType = 1   // SQLT_CHR
	TypeNumber          OracleType = 2   // SQLT_NUM
	TypeInteger         OracleType = 3   // SQLT_INT
	TypeFloat           OracleType = 4   // SQLT_FLT
	TypeVarNum          OracleType = 6   // SQLT_VNU
	TypeLong            OracleType = 8   // SQLT_LNG
	TypeDate            OracleType = 12  // SQLT_DAT
	TypeRaw             OracleType = 23  // SQLT_BIN
	TypeLongRaw         OracleType = 24  // SQLT_LBI
	TypeChar            OracleType = 96  // SQLT_AFC
	TypeBinaryFloat     OracleType = 100 // SQLT_IBFLOAT
	TypeBinaryDouble    OracleType = 101 // SQLT_IBDOUBLE
	TypeRowid           OracleType = 104 // SQLT_RDD
	TypeObject          OracleType = 108 // SQLT_NTY
	TypeClob            OracleType = 112 // SQLT_CLOB
	TypeBlob            OracleType = 113 // SQLT_BLOB
	TypeBFile           OracleType = 114 // SQLT_BFILEE
	TypeCursor          OracleType = 116 // SQLT_RSET
	TypeNamedCollection OracleType = 122 // SQLT_NCO
	TypeODT             OracleType = 156 // SQLT_ODT
	TypeTimestamp       OracleType = 187 // SQLT_TIMESTAMP
	TypeTimestampTZ     OracleType = 188 // SQLT_TIMESTAMP_TZ
	TypeIntervalYM      OracleType = 189 // SQLT_INTERVAL_YM
	TypeIntervalDS      OracleType = 190 // SQLT_INTERVAL_DS
	TypeTimestampLTZ    OracleType = 232 // SQLT_TIMESTAMP_LTZ
	TypeBoolean         OracleType = 252 // SQLT_BOL
)

var oracleTypeNames = map[OracleType]string{
	TypeVarchar:         "VARCHAR2",
	TypeNumber:          "NUMBER",
	TypeInteger:         "BINARY_INTEGER",
	TypeFloat:           "FLOAT",
	TypeVarNum:          "VARNUM",
	TypeLong:            "LONG",
	TypeDate:            "DATE",
	TypeRaw:             "RAW",
	TypeLongRaw:         "LONG RAW",
	TypeChar:            "CHAR",
	TypeBinaryFloat:     "BINARY_FLOAT",
	TypeBinaryDouble:    "BINARY_DOUBLE",
	TypeRowid:           "ROWID",
	TypeObject:          "OBJECT",
	TypeClob:            "CLOB",
	TypeBlob:            "BLOB",
	TypeBFile:           "BFILE",
	TypeCursor:          "REF CURSOR",
	TypeNamedCollection: "COLLECTION",
	TypeODT:             "OCIDATE",
	TypeTimestamp:       "TIMESTAMP",
	TypeTimestampTZ:     "TIMESTAMP WITH TIME ZONE",
	TypeIntervalYM:      "INTERVAL YEAR TO MONTH",
	TypeIntervalDS:      "INTERVAL DAY TO SECOND",
	TypeTimestampLTZ:    "TIMESTAMP WITH LOCAL TIME ZONE",
	TypeBoolean:         "BOOLEAN",
}

func (t OracleType) String() string {
	if s, ok := oracleTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("OracleType(%d)", uint16(t))
}

// NativeType is the in-memory representation the client reads from and writes into.
type NativeType uint8

const (
	NativeBytes NativeType = iota + 1
	NativeInt64
	NativeDouble
	NativeTimestamp
	NativeIntervalDS
	NativeIntervalYM
	NativeBoolean
	NativeNumber
	NativeLob
	NativeObject
	NativeStmt
)

func (t NativeType) String() string {
	switch t {
	case NativeBytes:
		return "bytes"
	case NativeInt64:
		return "int64"
	case NativeDouble:
		return "double"
	case NativeTimestamp:
		return "timestamp"
	case NativeIntervalDS:
		return "intervalDS"
	case NativeIntervalYM:
		return "intervalYM"
	case NativeBoolean:
		return "boolean"
	case NativeNumber:
		return "number"
	case NativeLob:
		return "lob"
	case NativeObject:
		return "object"
	case NativeStmt:
		return "stmt"
	default:
		return fmt.Sprintf("NativeType(%d)", uint8(t))
	}
}

// IsHandle reports whether a slot of this representation holds an opaque handle.
func (t NativeType) IsHandle() bool {
	return t == NativeLob || t == NativeObject || t == NativeStmt
}

// CharsetForm tells whether character data is in the database or the national character set.
type CharsetForm uint8

const (
	CharsetImplicit CharsetForm = 1 // SQLCS_IMPLICIT
	CharsetNChar    CharsetForm = 2 // SQLCS_NCHAR
)

// Null indicator values.
const (
	IndicatorNull    int16 = -1
	IndicatorNotNull int16 = 0
)

// Byte sizes of the fixed native layouts.
const (
	SizeInt64       = 8
	SizeDouble      = 8
	SizeBoolean     = 1
	SizeDate        = 7
	SizeTimestamp   = 11
	SizeTimestampTZ = 13
	SizeIntervalDS  = 11
	SizeIntervalYM  = 5
	SizeNumber      = 22
	SizeHandle      = 8
)

// ColumnInfo describes a query column or a bind placeholder.
type ColumnInfo struct {
	ObjectType  *ObjectTypeInfo
	Name        string
	Size        int
	Precision   int16
	OracleType  OracleType
	Scale       int8
	CharsetForm CharsetForm
	Nullable    bool
}

// AttrInfo describes an attribute of an object type, or the element of a collection.
type AttrInfo struct {
	ObjectType  *ObjectTypeInfo
	Name        string
	Size        int
	Precision   int16
	OracleType  OracleType
	Scale       int8
	CharsetForm CharsetForm
}

// ObjectTypeInfo describes a named object or collection type.
type ObjectTypeInfo struct {
	Handle       interface{}
	Element      *AttrInfo
	Schema, Name string
	Attributes   []AttrInfo
	IsCollection bool
}

// FullName returns SCHEMA.NAME.
func (t *ObjectTypeInfo) FullName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}
