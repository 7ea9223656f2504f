// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package native

import (
	"fmt"
	"time"
)

// Value is the union the client uses for object attributes and collection elements.
//
// NativeType must be set before asking the client to fill a Value.
type Value struct {
	handle     interface{}
	bytes      []byte
	ts         Timestamp
	f          float64
	i          int64
	ds         IntervalDS
	ym         IntervalYM
	NativeType NativeType
	IsNull     bool
	b          bool
}

// NewValue returns a null Value of the given representation.
func NewValue(typ NativeType) *Value { return &Value{NativeType: typ, IsNull: true} }

func (v *Value) String() string {
	if v == nil || v.IsNull {
		return "<null>"
	}
	return fmt.Sprintf("%s(%v)", v.NativeType, v.Get())
}

// SetNull marks the value as null.
func (v *Value) SetNull() { v.IsNull = true; v.handle, v.bytes = nil, nil }

func (v *Value) GetBool() bool { return v.b }
func (v *Value) SetBool(b bool) {
	v.NativeType, v.IsNull, v.b = NativeBoolean, false, b
}

func (v *Value) GetInt64() int64 { return v.i }
func (v *Value) SetInt64(i int64) {
	v.NativeType, v.IsNull, v.i = NativeInt64, false, i
}

func (v *Value) GetFloat64() float64 { return v.f }
func (v *Value) SetFloat64(f float64) {
	v.NativeType, v.IsNull, v.f = NativeDouble, false, f
}

// GetBytes returns the byte payload of a bytes or NUMBER value.
func (v *Value) GetBytes() []byte {
	if v.IsNull {
		return nil
	}
	return v.bytes
}

// SetBytes sets a bytes value. A nil slice is null.
func (v *Value) SetBytes(b []byte) {
	v.NativeType = NativeBytes
	if b == nil {
		v.SetNull()
		return
	}
	v.IsNull, v.bytes = false, b
}

// SetString sets a bytes value from a temporary string handle; the handle stays owned by the caller.
func (v *Value) SetString(s TempString) {
	v.NativeType = NativeBytes
	if s == nil {
		v.SetNull()
		return
	}
	v.IsNull, v.bytes, v.handle = false, s.Bytes(), s
}

// GetNumber returns the internal NUMBER representation.
func (v *Value) GetNumber() []byte { return v.GetBytes() }

// SetNumber sets an internal NUMBER representation.
func (v *Value) SetNumber(b []byte) {
	v.NativeType, v.IsNull, v.bytes = NativeNumber, b == nil, b
}

func (v *Value) GetTimestamp() Timestamp { return v.ts }
func (v *Value) SetTimestamp(ts Timestamp) {
	v.NativeType, v.IsNull, v.ts = NativeTimestamp, false, ts
}

// GetTime returns the timestamp in loc (or its own offset, with withTZ).
func (v *Value) GetTime(loc *time.Location, withTZ bool) time.Time {
	return v.ts.Time(loc, withTZ)
}
func (v *Value) SetTime(t time.Time) { v.SetTimestamp(TimestampFromTime(t)) }

func (v *Value) GetIntervalDS() IntervalDS { return v.ds }
func (v *Value) SetIntervalDS(ds IntervalDS) {
	v.NativeType, v.IsNull, v.ds = NativeIntervalDS, false, ds
}

func (v *Value) GetIntervalYM() IntervalYM { return v.ym }
func (v *Value) SetIntervalYM(ym IntervalYM) {
	v.NativeType, v.IsNull, v.ym = NativeIntervalYM, false, ym
}

// GetLob returns the LOB locator, or nil.
func (v *Value) GetLob() Lob {
	l, _ := v.handle.(Lob)
	return l
}
func (v *Value) SetLob(l Lob) {
	v.NativeType, v.IsNull, v.handle = NativeLob, l == nil, l
}

// GetObject returns the object instance, or nil.
func (v *Value) GetObject() Object {
	o, _ := v.handle.(Object)
	return o
}
func (v *Value) SetObject(o Object) {
	v.NativeType, v.IsNull, v.handle = NativeObject, o == nil, o
}

// GetStmt returns the statement handle, or nil.
func (v *Value) GetStmt() Statement {
	s, _ := v.handle.(Statement)
	return s
}
func (v *Value) SetStmt(s Statement) {
	v.NativeType, v.IsNull, v.handle = NativeStmt, s == nil, s
}

// Get returns the payload matching NativeType, or nil when null.
func (v *Value) Get() interface{} {
	if v.IsNull {
		return nil
	}
	switch v.NativeType {
	case NativeBoolean:
		return v.b
	case NativeBytes, NativeNumber:
		return v.bytes
	case NativeDouble:
		return v.f
	case NativeInt64:
		return v.i
	case NativeIntervalDS:
		return v.ds
	case NativeIntervalYM:
		return v.ym
	case NativeTimestamp:
		return v.ts
	case NativeLob, NativeObject, NativeStmt:
		return v.handle
	default:
		return nil
	}
}

// CopyFrom copies the payload of o, converting to v.NativeType where the client would.
func (v *Value) CopyFrom(o *Value) error {
	want := v.NativeType
	*v = *o
	if want == 0 || want == o.NativeType || o.IsNull {
		if want != 0 {
			v.NativeType = want
		}
		if b := o.bytes; b != nil {
			v.bytes = append(make([]byte, 0, len(b)), b...)
		}
		return nil
	}
	switch {
	case want == NativeDouble && o.NativeType == NativeInt64:
		v.NativeType, v.f = want, float64(o.i)
	case want == NativeInt64 && o.NativeType == NativeDouble:
		v.NativeType, v.i = want, int64(o.f)
	default:
		return &Error{Code: 932, Fn: "dpiObject_getAttributeValue",
			Message: fmt.Sprintf("inconsistent datatypes: expected %s got %s", want, o.NativeType)}
	}
	return nil
}
