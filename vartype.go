// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"strings"

	"github.com/oracle/python-cx-Oracle-sub001/native"
)

const (
	// MaxStringChars is the largest VARCHAR2 bind in characters; longer strings are bound as LONG.
	MaxStringChars = 4000
	// MaxBinaryBytes is the largest RAW bind in bytes; longer values are bound as LONG RAW.
	MaxBinaryBytes = 4000
	// MaxVarcharBytes is the largest slot a VARCHAR2 or RAW variable grows to.
	MaxVarcharBytes = 32767
	// MaxLongBytes is the largest slot a LONG or LONG RAW variable grows to.
	MaxLongBytes = 1 << 30
	// DefaultLongSize is the default slot size of LONG and LONG RAW variables.
	DefaultLongSize = 128 << 10
	// RowidSize is the length of an extended ROWID.
	RowidSize = 18
)

// varKind is the set/get behaviour of one logical variable type.
//
// The implementations are the closed set of kinds in this package.
type varKind interface {
	setValue(v *Variable, pos int, value interface{}) error
	getValue(v *Variable, pos int) (interface{}, error)
}

// kindInitializer is implemented by kinds which need per-slot handles allocated
// after the buffer (LOB locators, child cursors).
type kindInitializer interface {
	initialize(v *Variable) error
}

// kindFinalizer is implemented by kinds which own per-slot resources.
type kindFinalizer interface {
	finalize(v *Variable)
}

// VarType describes one logical variable type: its wire type, in-memory representation,
// default element size and conversion.
//
// VarTypes are immutable and shared.
type VarType struct {
	kind             varKind
	name             string
	size             int
	maxSize          int
	oracleType       native.OracleType
	nativeType       native.NativeType
	charsetForm      native.CharsetForm
	isCharData       bool
	isVariableLength bool
	canBeInArray     bool
}

// Name of the type, as used by VarTypeByName.
func (t *VarType) Name() string { return t.name }

// OracleType is the wire type.
func (t *VarType) OracleType() native.OracleType { return t.oracleType }

// NativeType is the in-memory representation of a slot.
func (t *VarType) NativeType() native.NativeType { return t.nativeType }

// Size is the default size: characters for text, bytes for everything else.
func (t *VarType) Size() int { return t.size }

// MaxSize is the largest slot size in bytes.
func (t *VarType) MaxSize() int {
	if t.maxSize == 0 {
		return t.size
	}
	return t.maxSize
}
func (t *VarType) CharsetForm() native.CharsetForm { return t.charsetForm }
func (t *VarType) IsCharData() bool                { return t.isCharData }
func (t *VarType) IsVariableLength() bool          { return t.isVariableLength }
func (t *VarType) CanBeInArray() bool              { return t.canBeInArray }

func (t *VarType) isNChar() bool { return t.charsetForm == native.CharsetNChar }

func (t *VarType) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.name
}

var (
	StringVarType = &VarType{name: "STRING", kind: stringKind{},
		oracleType: native.TypeVarchar, nativeType: native.NativeBytes,
		size: MaxStringChars, maxSize: MaxVarcharBytes, charsetForm: native.CharsetImplicit,
		isCharData: true, isVariableLength: true, canBeInArray: true}
	FixedCharVarType = &VarType{name: "FIXED_CHAR", kind: stringKind{},
		oracleType: native.TypeChar, nativeType: native.NativeBytes,
		size: 2000, charsetForm: native.CharsetImplicit,
		isCharData: true, canBeInArray: true}
	NCharVarType = &VarType{name: "NCHAR", kind: stringKind{},
		oracleType: native.TypeVarchar, nativeType: native.NativeBytes,
		size: MaxStringChars, maxSize: MaxVarcharBytes, charsetForm: native.CharsetNChar,
		isCharData: true, isVariableLength: true, canBeInArray: true}
	FixedNCharVarType = &VarType{name: "FIXED_NCHAR", kind: stringKind{},
		oracleType: native.TypeChar, nativeType: native.NativeBytes,
		size: 2000, charsetForm: native.CharsetNChar,
		isCharData: true, canBeInArray: true}
	LongStringVarType = &VarType{name: "LONG_STRING", kind: stringKind{},
		oracleType: native.TypeLong, nativeType: native.NativeBytes,
		size: DefaultLongSize, maxSize: MaxLongBytes, charsetForm: native.CharsetImplicit,
		isCharData: true, isVariableLength: true}
	RowidVarType = &VarType{name: "ROWID", kind: stringKind{rowid: true},
		oracleType: native.TypeRowid, nativeType: native.NativeBytes,
		size: RowidSize, charsetForm: native.CharsetImplicit,
		isCharData: true, canBeInArray: true}
	BinaryVarType = &VarType{name: "BINARY", kind: stringKind{},
		oracleType: native.TypeRaw, nativeType: native.NativeBytes,
		size: MaxBinaryBytes, maxSize: MaxVarcharBytes,
		isVariableLength: true, canBeInArray: true}
	LongBinaryVarType = &VarType{name: "LONG_BINARY", kind: stringKind{},
		oracleType: native.TypeLongRaw, nativeType: native.NativeBytes,
		size: DefaultLongSize, maxSize: MaxLongBytes,
		isVariableLength: true}

	IntegerVarType = &VarType{name: "INTEGER", kind: integerKind{},
		oracleType: native.TypeNumber, nativeType: native.NativeInt64,
		size: native.SizeInt64, canBeInArray: true}
	LongIntegerVarType = &VarType{name: "LONG_INTEGER", kind: longIntegerKind{},
		oracleType: native.TypeNumber, nativeType: native.NativeBytes,
		size: numberTextSize, canBeInArray: true}
	DecimalVarType = &VarType{name: "DECIMAL", kind: decimalKind{},
		oracleType: native.TypeNumber, nativeType: native.NativeBytes,
		size: numberTextSize, canBeInArray: true}
	FloatVarType = &VarType{name: "FLOAT", kind: floatKind{},
		oracleType: native.TypeNumber, nativeType: native.NativeDouble,
		size: native.SizeDouble, canBeInArray: true}
	NativeFloatVarType = &VarType{name: "NATIVE_FLOAT", kind: floatKind{},
		oracleType: native.TypeBinaryDouble, nativeType: native.NativeDouble,
		size: native.SizeDouble, canBeInArray: true}
	NativeIntVarType = &VarType{name: "NATIVE_INT", kind: integerKind{},
		oracleType: native.TypeInteger, nativeType: native.NativeInt64,
		size: native.SizeInt64, canBeInArray: true}

	DateVarType = &VarType{name: "DATE", kind: dateKind{},
		oracleType: native.TypeDate, nativeType: native.NativeTimestamp,
		size: native.SizeDate, canBeInArray: true}
	DateTimeVarType = &VarType{name: "DATETIME", kind: dateKind{withTime: true},
		oracleType: native.TypeDate, nativeType: native.NativeTimestamp,
		size: native.SizeDate, canBeInArray: true}
	TimestampVarType = &VarType{name: "TIMESTAMP", kind: timestampKind{},
		oracleType: native.TypeTimestamp, nativeType: native.NativeTimestamp,
		size: native.SizeTimestamp, canBeInArray: true}
	TimestampTZVarType = &VarType{name: "TIMESTAMP_TZ", kind: timestampKind{withTZ: true},
		oracleType: native.TypeTimestampTZ, nativeType: native.NativeTimestamp,
		size: native.SizeTimestampTZ, canBeInArray: true}
	TimestampLTZVarType = &VarType{name: "TIMESTAMP_LTZ", kind: timestampKind{local: true},
		oracleType: native.TypeTimestampLTZ, nativeType: native.NativeTimestamp,
		size: native.SizeTimestamp, canBeInArray: true}
	IntervalVarType = &VarType{name: "INTERVAL", kind: intervalKind{},
		oracleType: native.TypeIntervalDS, nativeType: native.NativeIntervalDS,
		size: native.SizeIntervalDS, canBeInArray: true}
	IntervalYMVarType = &VarType{name: "INTERVAL_YM", kind: intervalYMKind{},
		oracleType: native.TypeIntervalYM, nativeType: native.NativeIntervalYM,
		size: native.SizeIntervalYM, canBeInArray: true}

	BooleanVarType = &VarType{name: "BOOLEAN", kind: boolKind{},
		oracleType: native.TypeBoolean, nativeType: native.NativeBoolean,
		size: native.SizeBoolean, canBeInArray: true}

	ClobVarType = &VarType{name: "CLOB", kind: lobKind{},
		oracleType: native.TypeClob, nativeType: native.NativeLob,
		size: native.SizeHandle, charsetForm: native.CharsetImplicit, isCharData: true}
	NClobVarType = &VarType{name: "NCLOB", kind: lobKind{},
		oracleType: native.TypeClob, nativeType: native.NativeLob,
		size: native.SizeHandle, charsetForm: native.CharsetNChar, isCharData: true}
	BlobVarType = &VarType{name: "BLOB", kind: lobKind{},
		oracleType: native.TypeBlob, nativeType: native.NativeLob,
		size: native.SizeHandle}
	BFileVarType = &VarType{name: "BFILE", kind: lobKind{},
		oracleType: native.TypeBFile, nativeType: native.NativeLob,
		size: native.SizeHandle}

	CursorVarType = &VarType{name: "CURSOR", kind: cursorKind{},
		oracleType: native.TypeCursor, nativeType: native.NativeStmt,
		size: native.SizeHandle}
	ObjectVarType = &VarType{name: "OBJECT", kind: objectKind{},
		oracleType: native.TypeObject, nativeType: native.NativeObject,
		size: native.SizeHandle}
)

var allVarTypes = []*VarType{
	StringVarType, FixedCharVarType, NCharVarType, FixedNCharVarType,
	LongStringVarType, RowidVarType, BinaryVarType, LongBinaryVarType,
	IntegerVarType, LongIntegerVarType, DecimalVarType, FloatVarType,
	NativeFloatVarType, NativeIntVarType,
	DateVarType, DateTimeVarType, TimestampVarType, TimestampTZVarType,
	TimestampLTZVarType, IntervalVarType, IntervalYMVarType,
	BooleanVarType,
	ClobVarType, NClobVarType, BlobVarType, BFileVarType,
	CursorVarType, ObjectVarType,
}

// VarTypes returns every registered variable type.
func VarTypes() []*VarType {
	return append([]*VarType(nil), allVarTypes...)
}

// VarTypeByName returns the variable type of the given name (case insensitive), or nil.
func VarTypeByName(name string) *VarType {
	for _, t := range allVarTypes {
		if strings.EqualFold(t.name, name) {
			return t
		}
	}
	return nil
}
