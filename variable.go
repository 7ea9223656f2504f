// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"context"
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/exp/slog"
	errors "golang.org/x/xerrors"

	"github.com/oracle/python-cx-Oracle-sub001/native"
)

// Converter converts a value on its way into (InConverter) or out of (OutConverter) a Variable.
type Converter func(interface{}) (interface{}, error)

// Variable is an array of typed slots, each with a null indicator,
// which can be bound to a statement placeholder or defined for a query column.
//
// A Variable is not safe for concurrent use.
type Variable struct {
	typ        *VarType
	objectType *ObjectType
	env        *Environment
	conn       *Conn
	cur        *Cursor
	buf        *native.ArrayBuffer

	// InConverter is called with every value before it is set.
	InConverter Converter
	// OutConverter is called with every non-null value got.
	OutConverter Converter

	// handles owned by this variable, closed by Close
	cursors  []*Cursor
	locators []native.Lob
	tempLobs map[int]native.Lob

	binding           binding
	allocatedElements int
	size              int
	elementSize       int
	id                ulid.ULID
	isArray           bool
	closed            bool
}

// newVariable allocates a Variable of numElements slots of typ.
//
// size is in characters for text types, in bytes otherwise; 0 means the type's default.
func newVariable(ctx context.Context, env *Environment, conn *Conn, cur *Cursor, numElements int, typ *VarType, size int, isArray bool, objectType *ObjectType) (*Variable, error) {
	if typ == nil {
		return nil, errors.Errorf("nil variable type: %w", ErrNotSupported)
	}
	if env == nil {
		if conn != nil {
			env = conn.env
		} else {
			env = DefaultEnvironment()
		}
	}
	if numElements < 1 {
		numElements = 1
	}
	if isArray && !typ.canBeInArray {
		return nil, errors.Errorf("%s cannot be in an array: %w", typ, ErrNotSupported)
	}
	if typ.nativeType == native.NativeObject && objectType == nil {
		return nil, errors.Errorf("%s variable needs an object type: %w", typ, ErrNotSupported)
	}
	if size <= 0 {
		size = typ.size
	}
	if typ.isVariableLength && size < 2 {
		size = 2
	}

	v := Variable{
		id: newVarID(), env: env, conn: conn, cur: cur,
		typ: typ, objectType: objectType,
		allocatedElements: numElements, size: size, isArray: isArray,
	}
	v.elementSize = v.bytesForSize(size)
	if int64(numElements)*int64(v.elementSize) > math.MaxInt32 {
		return nil, errors.Errorf("%d elements of %d bytes: %w", numElements, v.elementSize, ErrArrayTooLarge)
	}
	var err error
	if v.buf, err = native.NewArrayBuffer(numElements, v.elementSize); err != nil {
		return nil, checkError(err, "newVariable")
	}
	if err = v.buf.SetActualElements(0); err != nil {
		v.buf.Free()
		return nil, checkError(err, "newVariable")
	}
	if !isArray {
		_ = v.buf.SetActualElements(numElements)
	}
	if ini, ok := typ.kind.(kindInitializer); ok {
		if err = ini.initialize(&v); err != nil {
			v.Close()
			return nil, err
		}
	}
	if logger := env.logger(ctx); debugEnabled(ctx, logger) {
		logger.Debug("newVariable", "var", v.id, "type", typ.name,
			"numElements", numElements, "size", size, "elementSize", v.elementSize, "isArray", isArray)
	}
	return &v, nil
}

// bytesForSize returns the slot width needed for size characters (text) or bytes.
func (v *Variable) bytesForSize(size int) int {
	switch {
	case v.typ.nativeType != native.NativeBytes || v.typ.oracleType == native.TypeNumber:
		return v.typ.size
	case v.typ.isCharData && v.typ != RowidVarType:
		return size * v.env.maxBytesPerChar(v.typ.isNChar())
	default:
		return size
	}
}

// Type returns the variable's type.
func (v *Variable) Type() *VarType { return v.typ }

// ObjectType returns the object type of an object variable, or nil.
func (v *Variable) ObjectType() *ObjectType { return v.objectType }

// AllocatedElements returns the number of slots.
func (v *Variable) AllocatedElements() int { return v.allocatedElements }

// ActualElements returns the number of populated elements of an array variable,
// and the number of slots for other variables.
func (v *Variable) ActualElements() int {
	if v.buf == nil {
		return 0
	}
	return v.buf.ActualElements()
}

// ElementSize returns the current slot width in bytes.
func (v *Variable) ElementSize() int { return v.elementSize }

// Size returns the current size: characters for text, bytes otherwise.
func (v *Variable) Size() int { return v.size }

// IsArray reports whether v is a PL/SQL table bind.
func (v *Variable) IsArray() bool { return v.isArray }

// Buffer returns the native slot storage.
func (v *Variable) Buffer() *native.ArrayBuffer { return v.buf }

func (v *Variable) String() string {
	if v == nil {
		return "<nil>"
	}
	arr := ""
	if v.isArray {
		arr = fmt.Sprintf(" array[%d/%d]", v.ActualElements(), v.allocatedElements)
	}
	return fmt.Sprintf("<Variable %s %s(%d)%s>", v.id, v.typ, v.size, arr)
}

func (v *Variable) logger() *slog.Logger {
	if v.env == nil {
		return nil
	}
	return v.env.params.Logger
}

func (v *Variable) checkPos(pos int) error {
	if v.closed || v.buf == nil {
		return errors.Errorf("%s: %w", v, ErrClosed)
	}
	if pos < 0 || pos >= v.allocatedElements {
		return errors.Errorf("position %d of %d: %w", pos, v.allocatedElements, ErrIndexOutOfRange)
	}
	return nil
}

// SetValue sets the value of the slot at pos.
// For array variables value must be a slice and pos 0: it replaces the whole array.
func (v *Variable) SetValue(pos int, value interface{}) error {
	if err := v.checkPos(pos); err != nil {
		return err
	}
	if v.isArray {
		if pos > 0 {
			return errors.Errorf("arrays of arrays are not supported: %w", ErrNotSupported)
		}
		values, ok := asList(value)
		if !ok && value != nil {
			return errors.Errorf("expected a list for %s, got %T: %w", v, value, ErrTypeMismatch)
		}
		return v.SetArrayValue(values)
	}
	return v.setSingleValue(pos, value)
}

func (v *Variable) setSingleValue(pos int, value interface{}) error {
	if v.InConverter != nil {
		var err error
		if value, err = v.InConverter(value); err != nil {
			return errors.Errorf("in converter of %s: %w", v, err)
		}
	}
	value, err := unwrapValuer(value)
	if err != nil {
		return err
	}
	if isNull(value) {
		v.releaseSlot(pos)
		return checkError(v.buf.SetNull(pos, true), "setValue")
	}
	if err := v.typ.kind.setValue(v, pos, value); err != nil {
		return errors.Errorf("set %s[%d]: %w", v.typ, pos, err)
	}
	if v.typ.nativeType.IsHandle() {
		return checkError(v.buf.SetNull(pos, false), "setValue")
	}
	return nil
}

// GetValue returns the value of the slot at pos (nil for null).
// For array variables it returns the populated elements as a []interface{}.
func (v *Variable) GetValue(pos int) (interface{}, error) {
	if err := v.checkPos(pos); err != nil {
		return nil, err
	}
	if v.isArray {
		return v.GetArrayValue(v.ActualElements())
	}
	return v.getSingleValue(pos)
}

func (v *Variable) getSingleValue(pos int) (interface{}, error) {
	if v.buf.IsNull(pos) {
		return nil, nil
	}
	if err := v.verifyFetch(pos); err != nil {
		return nil, err
	}
	value, err := v.typ.kind.getValue(v, pos)
	if err != nil {
		return nil, errors.Errorf("get %s[%d]: %w", v.typ, pos, err)
	}
	if v.OutConverter != nil {
		if value, err = v.OutConverter(value); err != nil {
			return nil, errors.Errorf("out converter of %s: %w", v, err)
		}
	}
	return value, nil
}

// SetArrayValue sets the elements of a PL/SQL table and its actual length.
func (v *Variable) SetArrayValue(values []interface{}) error {
	if !v.isArray {
		return errors.Errorf("%s: %w", v, ErrNotArray)
	}
	if v.closed || v.buf == nil {
		return errors.Errorf("%s: %w", v, ErrClosed)
	}
	if len(values) > v.allocatedElements {
		return errors.Errorf("%d elements into %d: %w", len(values), v.allocatedElements, ErrArrayTooLarge)
	}
	if len(values) == 0 {
		return checkError(v.buf.SetActualElements(0), "setArrayValue")
	}
	// the overwritten slots are restored when an element fails
	saved, err := native.NewArrayBuffer(len(values), v.elementSize)
	if err != nil {
		return checkError(err, "setArrayValue")
	}
	defer saved.Free()
	for i := range values {
		if err = saved.CopySlot(i, v.buf, i); err != nil {
			return checkError(err, "setArrayValue")
		}
	}
	for i, x := range values {
		if err = v.setSingleValue(i, x); err != nil {
			for j := 0; j <= i; j++ {
				_ = v.buf.CopySlot(j, saved, j)
			}
			return err
		}
	}
	return checkError(v.buf.SetActualElements(len(values)), "setArrayValue")
}

// GetArrayValue returns the first n elements.
func (v *Variable) GetArrayValue(n int) ([]interface{}, error) {
	if v.closed || v.buf == nil {
		return nil, errors.Errorf("%s: %w", v, ErrClosed)
	}
	if n < 0 || n > v.allocatedElements {
		return nil, errors.Errorf("%d elements of %d: %w", n, v.allocatedElements, ErrIndexOutOfRange)
	}
	values := make([]interface{}, n)
	for i := range values {
		var err error
		if values[i], err = v.getSingleValue(i); err != nil {
			return values[:i], err
		}
	}
	return values, nil
}

// Values returns the value of every populated slot.
func (v *Variable) Values() ([]interface{}, error) {
	return v.GetArrayValue(v.ActualElements())
}

// verifyFetch escalates a nonzero return code the client recorded for the slot (such as truncation).
func (v *Variable) verifyFetch(pos int) error {
	if code := v.buf.ReturnCode(pos); code != 0 {
		oe := NewOraErr(int(code), fmt.Sprintf("column at array pos %d fetched with error: %d", pos, code), "verifyFetch")
		oe.Offset = pos
		return oe
	}
	return nil
}

// Copy copies the slot srcPos of src into the slot dstPos of v. The variables must be of the same type.
func (v *Variable) Copy(src *Variable, srcPos, dstPos int) error {
	if src.typ != v.typ {
		return errors.Errorf("copy %s into %s: %w", src.typ, v.typ, ErrTypeMismatch)
	}
	if err := src.checkPos(srcPos); err != nil {
		return err
	}
	if err := v.checkPos(dstPos); err != nil {
		return err
	}
	if n := src.buf.Length(srcPos); n > v.elementSize {
		if !v.typ.isVariableLength {
			return errors.Errorf("%d bytes into %d: %w", n, v.elementSize, ErrValueTooLarge)
		}
		if err := v.resize(n); err != nil {
			return err
		}
	}
	v.releaseSlot(dstPos)
	return checkError(v.buf.CopySlot(dstPos, src.buf, srcPos), "copy")
}

// releaseSlot closes the temporary LOB owned by the slot, and puts back the slot's own locator.
func (v *Variable) releaseSlot(pos int) {
	lob, ok := v.tempLobs[pos]
	if !ok {
		return
	}
	delete(v.tempLobs, pos)
	_ = lob.Close()
	if pos < len(v.locators) {
		_ = v.buf.SetHandle(pos, v.locators[pos])
	}
}

// Close releases the slots and every handle the variable owns.
func (v *Variable) Close() error {
	if v == nil || v.closed {
		return nil
	}
	v.closed = true
	if fin, ok := v.typ.kind.(kindFinalizer); ok {
		fin.finalize(v)
	}
	if v.buf != nil {
		v.buf.Free()
	}
	v.binding = binding{}
	return nil
}

// resize grows the slots to at least elementSize bytes, keeping every slot's content.
//
// A bound variable is rebound to the new buffer; if that fails, the old buffer stays in place.
func (v *Variable) resize(elementSize int) error {
	if elementSize <= v.elementSize {
		return nil
	}
	if max := v.typ.MaxSize(); elementSize > max {
		return errors.Errorf("%d bytes is over the %d maximum of %s: %w", elementSize, max, v.typ, ErrValueTooLarge)
	}
	nb, err := native.NewArrayBuffer(v.allocatedElements, elementSize)
	if err != nil {
		return errors.Errorf("resize %s to %d: %w", v, elementSize, ErrArrayTooLarge)
	}
	for i := 0; i < v.allocatedElements; i++ {
		if err := nb.CopySlot(i, v.buf, i); err != nil {
			nb.Free()
			return checkError(err, "resize")
		}
	}
	if err := nb.SetActualElements(v.buf.ActualElements()); err != nil {
		nb.Free()
		return checkError(err, "resize")
	}

	logger := v.logger()
	if debugEnabled(context.Background(), logger) {
		logger.Debug("resize", "var", v.id, "from", v.elementSize, "to", elementSize, "bound", v.binding.state.String())
	}
	if v.binding.isBound() {
		v.binding.state = stateResized
		if err := v.attach(nb, elementSize); err != nil {
			v.binding.state = stateBound
			nb.Free()
			return err
		}
		v.binding.state = stateRebound
		if debugEnabled(context.Background(), logger) {
			logger.Debug("rebind", "var", v.id, "stmt", fmt.Sprintf("%p", v.binding.stmt), "name", v.binding.name, "pos", v.binding.pos)
		}
	}
	old := v.buf
	v.buf, v.elementSize = nb, elementSize
	if v.typ.isCharData && v.typ.nativeType == native.NativeBytes {
		mb := v.env.maxBytesPerChar(v.typ.isNChar())
		v.size = (elementSize + mb - 1) / mb
	} else {
		v.size = elementSize
	}
	old.Free()
	return nil
}

// isNull reports whether value is nil, a nil pointer or slice, or a zero time.Time.
func isNull(value interface{}) bool {
	switch x := value.(type) {
	case nil:
		return true
	case string, bool, int, int64, float64:
		return false
	case []byte:
		return x == nil
	case time.Time:
		return x.IsZero()
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// unwrapValuer returns the driver.Value of database/sql/driver.Valuer values
// (sql.NullString, sql.NullTime, ...). The types handled natively are kept.
func unwrapValuer(value interface{}) (interface{}, error) {
	switch value.(type) {
	case nil, Number, *Lob, *Object, *Cursor, *Variable:
		return value, nil
	}
	if _, ok := asTime(value); ok {
		return value, nil
	}
	vr, ok := value.(driver.Valuer)
	if !ok {
		return value, nil
	}
	if rv := reflect.ValueOf(vr); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return nil, nil
	}
	x, err := vr.Value()
	if err != nil {
		return nil, errors.Errorf("%T.Value: %w", value, err)
	}
	return x, nil
}

// asList returns the elements of any slice except []byte.
func asList(value interface{}) ([]interface{}, bool) {
	switch x := value.(type) {
	case nil, []byte, string:
		return nil, false
	case []interface{}:
		return x, true
	case []string:
		values := make([]interface{}, len(x))
		for i, s := range x {
			values[i] = s
		}
		return values, true
	case []int64:
		values := make([]interface{}, len(x))
		for i, n := range x {
			values[i] = n
		}
		return values, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	values := make([]interface{}, rv.Len())
	for i := range values {
		values[i] = rv.Index(i).Interface()
	}
	return values, true
}

func (s bindState) String() string {
	return strings.ToLower([...]string{"Unbound", "Bound", "Resized", "Rebound"}[s])
}
