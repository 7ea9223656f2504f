// Copyright 2019, 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"context"
	"strings"
	"time"

	errors "golang.org/x/xerrors"

	"github.com/oracle/python-cx-Oracle-sub001/native"
	"github.com/oracle/python-cx-Oracle-sub001/num"
)

// ObjectType describes a named object or collection type.
//
// ObjectTypes are shared read-only by every Object and Variable of the type.
type ObjectType struct {
	conn *Conn
	info *native.ObjectTypeInfo

	Schema, Name string
	// Element is the element of a collection type.
	Element    *ObjectAttribute
	Attributes []ObjectAttribute
	attrIndex  map[string]int

	IsCollection bool
}

// ObjectAttribute is an attribute of an object type, or the element of a collection.
type ObjectAttribute struct {
	// VarType is the type values of the attribute resolve to.
	VarType *VarType
	// ObjectType is the type of object and collection attributes.
	ObjectType *ObjectType
	Name       string
	info       native.AttrInfo
	OracleType native.OracleType
}

// FullName returns SCHEMA.NAME.
func (t *ObjectType) FullName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

func (t *ObjectType) String() string { return t.FullName() }

// Attribute returns the attribute by name (case insensitive).
func (t *ObjectType) Attribute(name string) (*ObjectAttribute, error) {
	i, ok := t.attrIndex[strings.ToUpper(name)]
	if !ok {
		return nil, errors.Errorf("%s has no attribute %q: %w", t.FullName(), name, ErrNotExist)
	}
	return &t.Attributes[i], nil
}

// NewObject returns a new, independent Object of the type.
func (t *ObjectType) NewObject(ctx context.Context) (*Object, error) {
	if err := t.conn.checkOpen(); err != nil {
		return nil, err
	}
	no, err := t.conn.native.NewObject(ctx, t.info)
	if err != nil {
		return nil, checkError(err, "newObject")
	}
	return newObject(t, no, true), nil
}

// Object is an instance of an object or collection type.
//
// A null object is a nil *Object.
type Object struct {
	objectType *ObjectType
	native     native.Object
	// isIndependent objects own their instance; the others are views into a variable or a parent.
	isIndependent bool
	closed        bool
}

func newObject(ot *ObjectType, no native.Object, isIndependent bool) *Object {
	return &Object{objectType: ot, native: no, isIndependent: isIndependent}
}

// ObjectType returns the type of the object.
func (O *Object) ObjectType() *ObjectType { return O.objectType }

// IsCollection reports whether the object is a collection.
func (O *Object) IsCollection() bool { return O.objectType.IsCollection }

func (O *Object) String() string {
	if O == nil {
		return "<nil>"
	}
	return "<Object " + O.objectType.FullName() + ">"
}

func (O *Object) check() error {
	if O == nil || O.native == nil || O.closed {
		return errors.Errorf("object: %w", ErrClosed)
	}
	return nil
}

func (O *Object) checkCollection() error {
	if err := O.check(); err != nil {
		return err
	}
	if !O.objectType.IsCollection {
		return errors.Errorf("%s: %w", O.objectType.FullName(), ErrNotCollection)
	}
	return nil
}

// Attributes returns the attribute names in declaration order.
func (O *Object) Attributes() []string {
	names := make([]string, len(O.objectType.Attributes))
	for i, a := range O.objectType.Attributes {
		names[i] = a.Name
	}
	return names
}

// GetAttr returns the value of the named attribute (nil for null).
func (O *Object) GetAttr(name string) (interface{}, error) {
	if err := O.check(); err != nil {
		return nil, err
	}
	attr, err := O.objectType.Attribute(name)
	if err != nil {
		return nil, err
	}
	val := native.NewValue(attrNativeType(attr.OracleType))
	if err = O.native.GetAttr(&attr.info, val); err != nil {
		return nil, checkError(err, "getAttributeValue")
	}
	return O.objectType.conn.convertToHost(val, attr)
}

// SetAttr sets the named attribute.
func (O *Object) SetAttr(name string, value interface{}) error {
	if err := O.check(); err != nil {
		return err
	}
	attr, err := O.objectType.Attribute(name)
	if err != nil {
		return err
	}
	val, release, err := O.objectType.conn.convertFromHost(value, attr)
	if err != nil {
		return errors.Errorf("%s.%s: %w", O.objectType.FullName(), attr.Name, err)
	}
	defer release()
	return checkError(O.native.SetAttr(&attr.info, val), "setAttributeValue")
}

// AsMap returns the attributes as a map, sub-objects as maps and collections as slices.
func (O *Object) AsMap() (map[string]interface{}, error) {
	if err := O.check(); err != nil {
		return nil, err
	}
	if O.objectType.IsCollection {
		return nil, errors.Errorf("%s is a collection: %w", O.objectType.FullName(), ErrNotSupported)
	}
	m := make(map[string]interface{}, len(O.objectType.Attributes))
	for _, a := range O.objectType.Attributes {
		v, err := O.GetAttr(a.Name)
		if err != nil {
			return m, err
		}
		if m[a.Name], err = asPlain(v); err != nil {
			return m, err
		}
	}
	return m, nil
}

// asPlain converts Objects to maps and collections to slices.
func asPlain(v interface{}) (interface{}, error) {
	sub, ok := v.(*Object)
	if !ok || sub == nil {
		return v, nil
	}
	if sub.objectType.IsCollection {
		return sub.AsSlice()
	}
	return sub.AsMap()
}

// Copy returns an independent copy of the object.
func (O *Object) Copy() (*Object, error) {
	if err := O.check(); err != nil {
		return nil, err
	}
	no, err := O.native.Copy()
	if err != nil {
		return nil, checkError(err, "copy")
	}
	return newObject(O.objectType, no, true), nil
}

// Close releases an independent object. Views are only marked closed.
func (O *Object) Close() error {
	if O == nil || O.closed {
		return nil
	}
	O.closed = true
	if !O.isIndependent || O.native == nil {
		return nil
	}
	return checkError(O.native.Close(), "release")
}

// Append the value to the end of the collection.
func (O *Object) Append(value interface{}) error {
	if err := O.checkCollection(); err != nil {
		return err
	}
	val, release, err := O.objectType.conn.convertFromHost(value, O.objectType.Element)
	if err != nil {
		return err
	}
	defer release()
	return checkError(O.native.Append(val), "appendElement")
}

// Extend appends every value, stopping at the first error.
func (O *Object) Extend(values []interface{}) error {
	for i, v := range values {
		if err := O.Append(v); err != nil {
			return errors.Errorf("%d: %w", i, err)
		}
	}
	return nil
}

// Get returns the element at index i.
func (O *Object) Get(i int) (interface{}, error) {
	if err := O.checkCollection(); err != nil {
		return nil, err
	}
	if ok, err := O.Exists(i); err != nil {
		return nil, err
	} else if !ok {
		return nil, errors.Errorf("index %d: %w", i, ErrNotExist)
	}
	val := native.NewValue(attrNativeType(O.objectType.Element.OracleType))
	if err := O.native.Get(i, val); err != nil {
		return nil, checkError(err, "getElementValueByIndex")
	}
	return O.objectType.conn.convertToHost(val, O.objectType.Element)
}

// Set the element at index i.
func (O *Object) Set(i int, value interface{}) error {
	if err := O.checkCollection(); err != nil {
		return err
	}
	val, release, err := O.objectType.conn.convertFromHost(value, O.objectType.Element)
	if err != nil {
		return err
	}
	defer release()
	return checkError(O.native.Set(i, val), "setElementValueByIndex")
}

// Delete the element at index i, leaving a hole.
func (O *Object) Delete(i int) error {
	if err := O.checkCollection(); err != nil {
		return err
	}
	if ok, err := O.Exists(i); err != nil {
		return err
	} else if !ok {
		return errors.Errorf("index %d: %w", i, ErrNotExist)
	}
	return checkError(O.native.Delete(i), "deleteElementByIndex")
}

// Exists reports whether the element at index i exists.
func (O *Object) Exists(i int) (bool, error) {
	if err := O.checkCollection(); err != nil {
		return false, err
	}
	ok, err := O.native.Exists(i)
	return ok, checkError(err, "getElementExistsByIndex")
}

// Trim removes n elements from the end.
func (O *Object) Trim(n int) error {
	if err := O.checkCollection(); err != nil {
		return err
	}
	return checkError(O.native.Trim(n), "trim")
}

func (O *Object) index(f func() (int, bool, error), what string) (int, error) {
	if err := O.checkCollection(); err != nil {
		return 0, err
	}
	i, ok, err := f()
	if err != nil {
		return 0, checkError(err, what)
	}
	if !ok {
		return 0, ErrNotExist
	}
	return i, nil
}

// First returns the first index, or ErrNotExist for an empty collection.
func (O *Object) First() (int, error) {
	return O.index(func() (int, bool, error) { return O.native.First() }, "getFirstIndex")
}

// Last returns the last index, or ErrNotExist for an empty collection.
func (O *Object) Last() (int, error) {
	return O.index(func() (int, bool, error) { return O.native.Last() }, "getLastIndex")
}

// Next returns the index following i, or ErrNotExist at the end.
func (O *Object) Next(i int) (int, error) {
	return O.index(func() (int, bool, error) { return O.native.Next(i) }, "getNextIndex")
}

// Prev returns the index preceding i, or ErrNotExist at the start.
func (O *Object) Prev(i int) (int, error) {
	return O.index(func() (int, bool, error) { return O.native.Prev(i) }, "getPrevIndex")
}

// Len returns the number of elements, holes included.
func (O *Object) Len() (int, error) {
	if err := O.checkCollection(); err != nil {
		return 0, err
	}
	n, err := O.native.Len()
	return n, checkError(err, "getSize")
}

// AsSlice returns the elements of the collection (skipping holes), sub-objects converted as by AsMap.
func (O *Object) AsSlice() ([]interface{}, error) {
	n, err := O.Len()
	if err != nil {
		return nil, err
	}
	values := make([]interface{}, 0, n)
	i, err := O.First()
	for err == nil {
		v, gerr := O.Get(i)
		if gerr == nil {
			v, gerr = asPlain(v)
		}
		if gerr != nil {
			return values, gerr
		}
		values = append(values, v)
		i, err = O.Next(i)
	}
	if !errors.Is(err, ErrNotExist) {
		return values, err
	}
	return values, nil
}

// attrNativeType is the representation attribute values of typ are exchanged in.
func attrNativeType(typ native.OracleType) native.NativeType {
	switch typ {
	case native.TypeNumber, native.TypeVarNum:
		return native.NativeNumber
	case native.TypeInteger:
		return native.NativeInt64
	case native.TypeFloat, native.TypeBinaryFloat, native.TypeBinaryDouble:
		return native.NativeDouble
	case native.TypeDate, native.TypeTimestamp, native.TypeTimestampTZ, native.TypeTimestampLTZ:
		return native.NativeTimestamp
	case native.TypeIntervalDS:
		return native.NativeIntervalDS
	case native.TypeIntervalYM:
		return native.NativeIntervalYM
	case native.TypeBoolean:
		return native.NativeBoolean
	case native.TypeClob, native.TypeBlob, native.TypeBFile:
		return native.NativeLob
	case native.TypeObject, native.TypeNamedCollection:
		return native.NativeObject
	default:
		return native.NativeBytes
	}
}

func noRelease() {}

// convertFromHost converts value into the native value of attr.
// The returned release func frees the transient handles of the value and must be called
// on every path once the client has copied the value.
func (c *Conn) convertFromHost(value interface{}, attr *ObjectAttribute) (*native.Value, func(), error) {
	val := native.NewValue(attrNativeType(attr.OracleType))
	value, err := unwrapValuer(value)
	if err != nil {
		return nil, noRelease, err
	}
	if isNull(value) {
		return val, noRelease, nil
	}
	mismatch := func() error {
		return errors.Errorf("%s attribute %s from %T: %w", attr.OracleType, attr.Name, value, ErrTypeMismatch)
	}

	switch attr.OracleType {
	case native.TypeVarchar, native.TypeChar, native.TypeLong, native.TypeRowid,
		native.TypeRaw, native.TypeLongRaw:
		var b buffer
		switch x := value.(type) {
		case string:
			if attr.OracleType == native.TypeRaw || attr.OracleType == native.TypeLongRaw {
				b = buffer{ptr: []byte(x), numChars: len(x)}
			} else if b, err = c.env.newBuffer(x, attr.info.CharsetForm == native.CharsetNChar); err != nil {
				return nil, noRelease, err
			}
		case []byte:
			b = buffer{ptr: x, numChars: len(x)}
		default:
			return nil, noRelease, mismatch()
		}
		ts, err := c.native.NewString(b.ptr)
		b.release()
		if err != nil {
			return nil, noRelease, checkError(err, "newString")
		}
		val.SetString(ts)
		return val, func() { _ = ts.Free() }, nil

	case native.TypeInteger:
		i, ok, err := asInt64(value)
		if !ok {
			return nil, noRelease, mismatch()
		} else if err != nil {
			return nil, noRelease, err
		}
		val.SetInt64(i)

	case native.TypeNumber, native.TypeVarNum:
		n, err := hostToOCINum(value)
		if err != nil {
			return nil, noRelease, errors.Errorf("%s attribute %s: %w", attr.OracleType, attr.Name, err)
		}
		val.SetNumber(n)

	case native.TypeFloat, native.TypeBinaryFloat, native.TypeBinaryDouble:
		f, ok := asFloat64(value)
		if !ok {
			i, isInt, err := asInt64(value)
			if !isInt {
				return nil, noRelease, mismatch()
			} else if err != nil {
				return nil, noRelease, err
			}
			f = float64(i)
		}
		val.SetFloat64(f)

	case native.TypeDate, native.TypeTimestamp, native.TypeTimestampTZ, native.TypeTimestampLTZ:
		var t time.Time
		if d, ok := value.(Date); ok {
			if _, err := timestampOfDate(d); err != nil {
				return nil, noRelease, err
			}
			t = d.Time(c.env.Timezone())
		} else if t, ok = asTime(value); !ok {
			return nil, noRelease, mismatch()
		}
		if attr.OracleType != native.TypeTimestampTZ {
			t = t.In(c.env.Timezone())
		}
		ts, err := timestampOf(t)
		if err != nil {
			return nil, noRelease, err
		}
		val.SetTimestamp(ts)

	case native.TypeIntervalDS:
		d, ok := value.(time.Duration)
		if !ok {
			return nil, noRelease, mismatch()
		}
		val.SetIntervalDS(durationToInterval(d))

	case native.TypeIntervalYM:
		ym, ok := value.(IntervalYM)
		if !ok {
			return nil, noRelease, mismatch()
		}
		iv, err := intervalYMOf(ym)
		if err != nil {
			return nil, noRelease, err
		}
		val.SetIntervalYM(iv)

	case native.TypeBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, noRelease, mismatch()
		}
		val.SetBool(b)

	case native.TypeClob, native.TypeBlob, native.TypeBFile:
		lob, ok := value.(*Lob)
		if !ok {
			return nil, noRelease, mismatch()
		}
		if err := lob.check(); err != nil {
			return nil, noRelease, err
		}
		val.SetLob(lob.native)

	case native.TypeObject, native.TypeNamedCollection:
		obj, ok := value.(*Object)
		if !ok || obj.objectType != attr.ObjectType {
			return nil, noRelease, mismatch()
		}
		if err := obj.check(); err != nil {
			return nil, noRelease, err
		}
		val.SetObject(obj.native)

	default:
		return nil, noRelease, errors.Errorf("attribute %s of %s: %w", attr.Name, attr.OracleType, ErrNotSupported)
	}
	return val, noRelease, nil
}

// convertToHost is the mirror of convertFromHost.
func (c *Conn) convertToHost(val *native.Value, attr *ObjectAttribute) (interface{}, error) {
	if val.IsNull {
		return nil, nil
	}
	switch attr.OracleType {
	case native.TypeVarchar, native.TypeChar, native.TypeLong, native.TypeRowid:
		return c.env.decode(val.GetBytes(), attr.info.CharsetForm == native.CharsetNChar)
	case native.TypeRaw, native.TypeLongRaw:
		b := val.GetBytes()
		return append(make([]byte, 0, len(b)), b...), nil

	case native.TypeInteger:
		return val.GetInt64(), nil
	case native.TypeNumber, native.TypeVarNum:
		return numberToHost(attr.VarType, num.OCINum(val.GetNumber()))
	case native.TypeFloat, native.TypeBinaryFloat, native.TypeBinaryDouble:
		return val.GetFloat64(), nil

	case native.TypeDate:
		if attr.VarType == DateVarType {
			ts := val.GetTimestamp()
			return Date{Year: int(ts.Year), Month: time.Month(ts.Month), Day: int(ts.Day)}, nil
		}
		return val.GetTime(c.env.Timezone(), false), nil
	case native.TypeTimestamp, native.TypeTimestampLTZ:
		return val.GetTime(c.env.Timezone(), false), nil
	case native.TypeTimestampTZ:
		return val.GetTime(c.env.Timezone(), true), nil
	case native.TypeIntervalDS:
		return intervalToDuration(val.GetIntervalDS()), nil
	case native.TypeIntervalYM:
		ym := val.GetIntervalYM()
		return IntervalYM{Years: int(ym.Years), Months: int(ym.Months)}, nil
	case native.TypeBoolean:
		return val.GetBool(), nil

	case native.TypeClob, native.TypeBlob, native.TypeBFile:
		return newLob(c, attr.OracleType, val.GetLob()), nil
	case native.TypeObject, native.TypeNamedCollection:
		return newObject(attr.ObjectType, val.GetObject(), false), nil
	}
	return nil, errors.Errorf("attribute %s of %s: %w", attr.Name, attr.OracleType, ErrNotSupported)
}

// numberToHost converts an internal NUMBER into the host value typ produces.
func numberToHost(typ *VarType, n num.OCINum) (interface{}, error) {
	switch typ {
	case IntegerVarType, NativeIntVarType:
		return n.Int64()
	case FloatVarType, NativeFloatVarType:
		return n.Float64()
	case DecimalVarType:
		return Number(n.String()), nil
	}
	return parseLongInteger(n.String())
}

// hostToOCINum converts integer, float and decimal values to an internal NUMBER.
func hostToOCINum(value interface{}) (num.OCINum, error) {
	var n num.OCINum
	var err error
	if i, ok, ierr := asInt64(value); ok && ierr == nil {
		err = n.SetInt64(i)
	} else if s, ok := asBigIntText(value); ok {
		err = n.SetString(s)
	} else if f, ok := asFloat64(value); ok {
		err = n.SetFloat64(f)
	} else if d, ok := value.(decimalDecompose); ok {
		var N Number
		if N, err = numberFromDecimal(d); err == nil {
			err = n.SetString(string(N))
		}
	} else {
		return nil, errors.Errorf("NUMBER from %T: %w", value, ErrTypeMismatch)
	}
	if err != nil {
		return nil, errors.Errorf("%v: %w", value, err)
	}
	return n, nil
}
