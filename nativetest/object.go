// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package nativetest

import (
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/oracle/python-cx-Oracle-sub001/native"
)

var _ native.Object = (*Object)(nil)

// Object is an in-memory object or collection.
// Deleted collection elements are kept as holes, as in a nested table.
type Object struct {
	conn   *Conn
	typ    *native.ObjectTypeInfo
	attrs  map[string]*native.Value
	elems  []*native.Value
	ID     ulid.ULID
	closed bool
}

func newObject(c *Conn, typ *native.ObjectTypeInfo) *Object {
	return &Object{ID: ulid.Make(), conn: c, typ: typ, attrs: make(map[string]*native.Value)}
}

// NewObject returns an object which is not counted by any connection, such as a fetched one.
func NewObject(typ *native.ObjectTypeInfo) *Object { return newObject(nil, typ) }

func (o *Object) String() string {
	return fmt.Sprintf("nativetest.Object(%s %s)", o.typ.FullName(), o.ID)
}

// Closed reports whether Close has been called.
func (o *Object) Closed() bool { return o.closed }

func (o *Object) TypeInfo() *native.ObjectTypeInfo { return o.typ }

func (o *Object) check(fn string) error {
	if o.closed {
		return &native.Error{Code: 22, Fn: fn, Message: "invalid OCI handle: object already closed"}
	}
	return nil
}

func (o *Object) checkCollection(fn string) error {
	if err := o.check(fn); err != nil {
		return err
	}
	if !o.typ.IsCollection {
		return &native.Error{Code: 22, Fn: fn, Message: o.typ.FullName() + " is not a collection"}
	}
	return nil
}

func (o *Object) checkAttr(fn string, attr *native.AttrInfo) error {
	if err := o.check(fn); err != nil {
		return err
	}
	if attr == nil {
		return &native.Error{Code: 22, Fn: fn, Message: "nil attribute"}
	}
	for _, a := range o.typ.Attributes {
		if a.Name == attr.Name {
			return nil
		}
	}
	return &native.Error{Code: 22309, Fn: fn, Message: fmt.Sprintf("attribute %s not found in %s", attr.Name, o.typ.FullName())}
}

// stored copies v, without the temporary string handle it may carry.
func stored(v *native.Value) (*native.Value, error) {
	nv := native.NewValue(v.NativeType)
	if !v.IsNull && v.NativeType == native.NativeBytes {
		nv.SetBytes(append([]byte{}, v.GetBytes()...))
		return nv, nil
	}
	return nv, nv.CopyFrom(v)
}

func load(dst, src *native.Value) error {
	if src == nil {
		dst.SetNull()
		return nil
	}
	return dst.CopyFrom(src)
}

func (o *Object) GetAttr(attr *native.AttrInfo, v *native.Value) error {
	if err := o.checkAttr("dpiObject_getAttributeValue", attr); err != nil {
		return err
	}
	return load(v, o.attrs[attr.Name])
}

func (o *Object) SetAttr(attr *native.AttrInfo, v *native.Value) error {
	if err := o.checkAttr("dpiObject_setAttributeValue", attr); err != nil {
		return err
	}
	nv, err := stored(v)
	if err != nil {
		return err
	}
	o.attrs[attr.Name] = nv
	return nil
}

func (o *Object) Append(v *native.Value) error {
	if err := o.checkCollection("dpiObject_appendElement"); err != nil {
		return err
	}
	nv, err := stored(v)
	if err != nil {
		return err
	}
	o.elems = append(o.elems, nv)
	return nil
}

func (o *Object) exists(i int) bool { return i >= 0 && i < len(o.elems) && o.elems[i] != nil }

func notExist(fn string, i int) error {
	return &native.Error{Code: 22160, Fn: fn, Message: fmt.Sprintf("element at index [%d] does not exist", i)}
}

func (o *Object) Get(i int, v *native.Value) error {
	if err := o.checkCollection("dpiObject_getElementValueByIndex"); err != nil {
		return err
	}
	if !o.exists(i) {
		return notExist("dpiObject_getElementValueByIndex", i)
	}
	return load(v, o.elems[i])
}

func (o *Object) Set(i int, v *native.Value) error {
	if err := o.checkCollection("dpiObject_setElementValueByIndex"); err != nil {
		return err
	}
	if i < 0 || i >= len(o.elems) {
		return notExist("dpiObject_setElementValueByIndex", i)
	}
	nv, err := stored(v)
	if err != nil {
		return err
	}
	o.elems[i] = nv
	return nil
}

func (o *Object) Delete(i int) error {
	if err := o.checkCollection("dpiObject_deleteElementByIndex"); err != nil {
		return err
	}
	if !o.exists(i) {
		return notExist("dpiObject_deleteElementByIndex", i)
	}
	o.elems[i] = nil
	return nil
}

func (o *Object) Exists(i int) (bool, error) {
	if err := o.checkCollection("dpiObject_getElementExistsByIndex"); err != nil {
		return false, err
	}
	return o.exists(i), nil
}

func (o *Object) First() (int, bool, error) { return o.Next(-1) }

func (o *Object) Last() (int, bool, error) { return o.Prev(len(o.elems)) }

func (o *Object) Next(i int) (int, bool, error) {
	if err := o.checkCollection("dpiObject_getNextIndex"); err != nil {
		return 0, false, err
	}
	for j := i + 1; j < len(o.elems); j++ {
		if j >= 0 && o.elems[j] != nil {
			return j, true, nil
		}
	}
	return 0, false, nil
}

func (o *Object) Prev(i int) (int, bool, error) {
	if err := o.checkCollection("dpiObject_getPrevIndex"); err != nil {
		return 0, false, err
	}
	if i > len(o.elems) {
		i = len(o.elems)
	}
	for j := i - 1; j >= 0; j-- {
		if o.elems[j] != nil {
			return j, true, nil
		}
	}
	return 0, false, nil
}

// Len returns the size of the collection, holes included.
func (o *Object) Len() (int, error) {
	if err := o.checkCollection("dpiObject_getSize"); err != nil {
		return 0, err
	}
	return len(o.elems), nil
}

func (o *Object) Trim(n int) error {
	if err := o.checkCollection("dpiObject_trim"); err != nil {
		return err
	}
	if n < 0 || n > len(o.elems) {
		return &native.Error{Code: 22167, Fn: "dpiObject_trim", Message: fmt.Sprintf("given trim size [%d] must be less than or equal to [%d]", n, len(o.elems))}
	}
	o.elems = o.elems[:len(o.elems)-n]
	return nil
}

// Copy returns a deep copy, which the connection counts as a live object.
func (o *Object) Copy() (native.Object, error) {
	if err := o.check("dpiObject_copy"); err != nil {
		return nil, err
	}
	cp := newObject(o.conn, o.typ)
	for k, v := range o.attrs {
		nv, err := stored(v)
		if err != nil {
			return nil, err
		}
		cp.attrs[k] = nv
	}
	cp.elems = make([]*native.Value, len(o.elems))
	for i, v := range o.elems {
		if v == nil {
			continue
		}
		nv, err := stored(v)
		if err != nil {
			return nil, err
		}
		cp.elems[i] = nv
	}
	if o.conn != nil {
		o.conn.add(&o.conn.liveObjects, 1)
	}
	return cp, nil
}

func (o *Object) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true
	if o.conn != nil {
		o.conn.add(&o.conn.liveObjects, -1)
	}
	return nil
}
