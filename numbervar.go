// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
	errors "golang.org/x/xerrors"

	"github.com/oracle/python-cx-Oracle-sub001/native"
)

// numberTextSize is the slot width of NUMBERs fetched as text (TM9 format).
const numberTextSize = 172

// ErrOverflow is returned when a value does not fit into the representation of the variable.
var ErrOverflow = errors.New("numeric overflow")

type (
	integerKind     struct{}
	longIntegerKind struct{}
	decimalKind     struct{}
	floatKind       struct{}
)

func fromUnsigned[T constraints.Unsigned](u T) (int64, error) {
	if uint64(u) > math.MaxInt64 {
		return 0, errors.Errorf("%d: %w", u, ErrOverflow)
	}
	return int64(u), nil
}

func fromSigned[T constraints.Signed](i T) int64 { return int64(i) }

func fromFloat[T constraints.Float](f T) float64 { return float64(f) }

// asInt64 returns the int64 value of integer kinds, and of *big.Int values in range.
// Booleans are not integers.
func asInt64(value interface{}) (int64, bool, error) {
	switch x := value.(type) {
	case int:
		return fromSigned(x), true, nil
	case int8:
		return fromSigned(x), true, nil
	case int16:
		return fromSigned(x), true, nil
	case int32:
		return fromSigned(x), true, nil
	case int64:
		return x, true, nil
	case uint:
		i, err := fromUnsigned(x)
		return i, true, err
	case uint8:
		i, err := fromUnsigned(x)
		return i, true, err
	case uint16:
		i, err := fromUnsigned(x)
		return i, true, err
	case uint32:
		i, err := fromUnsigned(x)
		return i, true, err
	case uint64:
		i, err := fromUnsigned(x)
		return i, true, err
	case *big.Int:
		if !x.IsInt64() {
			return 0, true, errors.Errorf("%s: %w", x, ErrOverflow)
		}
		return x.Int64(), true, nil
	}
	return 0, false, nil
}

// isInteger reports whether value is of an integer kind (bool is not).
func isInteger(value interface{}) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, *big.Int:
		return true
	}
	return false
}

// asBigIntText returns the decimal text of any integer value.
func asBigIntText(value interface{}) (string, bool) {
	switch x := value.(type) {
	case *big.Int:
		return x.String(), true
	case uint:
		return strconv.FormatUint(uint64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	}
	if i, ok, err := asInt64(value); ok && err == nil {
		return strconv.FormatInt(i, 10), true
	}
	return "", false
}

func asFloat64(value interface{}) (float64, bool) {
	switch x := value.(type) {
	case float64:
		return x, true
	case float32:
		return fromFloat(x), true
	}
	return 0, false
}

func (integerKind) setValue(v *Variable, pos int, value interface{}) error {
	i, ok, err := asInt64(value)
	if !ok {
		return errors.Errorf("expected an integer, got %T: %w", value, ErrTypeMismatch)
	}
	if err != nil {
		return err
	}
	if v.typ.oracleType == native.TypeInteger && (i < math.MinInt32 || i > math.MaxInt32) {
		return errors.Errorf("%d is out of PLS_INTEGER range: %w", i, ErrOverflow)
	}
	var a [native.SizeInt64]byte
	native.PutInt64(a[:], i)
	return checkError(v.buf.SetBytes(pos, a[:]), "setInt64")
}

func (integerKind) getValue(v *Variable, pos int) (interface{}, error) {
	b, err := v.buf.Bytes(pos)
	if err != nil {
		return nil, checkError(err, "getInt64")
	}
	if len(b) < native.SizeInt64 {
		return nil, errors.Errorf("int64 slot of %d bytes: %w", len(b), ErrTypeMismatch)
	}
	return native.Int64(b), nil
}

func (longIntegerKind) setValue(v *Variable, pos int, value interface{}) error {
	s, ok := asBigIntText(value)
	if !ok {
		return errors.Errorf("expected an integer, got %T: %w", value, ErrTypeMismatch)
	}
	if len(s) > v.elementSize {
		return errors.Errorf("%d digits: %w", len(s), ErrOverflow)
	}
	return checkError(v.buf.SetBytes(pos, []byte(s)), "setLongInteger")
}

func (longIntegerKind) getValue(v *Variable, pos int) (interface{}, error) {
	b, err := v.buf.Bytes(pos)
	if err != nil {
		return nil, checkError(err, "getLongInteger")
	}
	return parseLongInteger(strings.TrimSpace(string(b)))
}

// parseLongInteger parses s as an int64, then as a *big.Int,
// and falls back to float64 for fractional or exponent forms.
func parseLongInteger(s string) (interface{}, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	if i, ok := new(big.Int).SetString(s, 10); ok {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.Errorf("%q: %w", s, err)
	}
	return f, nil
}

func (decimalKind) setValue(v *Variable, pos int, value interface{}) error {
	d, ok := value.(decimalDecompose)
	if !ok {
		return errors.Errorf("expected a decimal, got %T: %w", value, ErrTypeMismatch)
	}
	N, err := numberFromDecimal(d)
	if err != nil {
		return err
	}
	if len(N) > v.elementSize {
		return errors.Errorf("%d digits: %w", len(N), ErrOverflow)
	}
	return checkError(v.buf.SetBytes(pos, []byte(N)), "setDecimal")
}

func (decimalKind) getValue(v *Variable, pos int) (interface{}, error) {
	b, err := v.buf.Bytes(pos)
	if err != nil {
		return nil, checkError(err, "getDecimal")
	}
	return internNumberBytes(b), nil
}

// setValue accepts floats, and integers too (for float columns).
func (floatKind) setValue(v *Variable, pos int, value interface{}) error {
	f, ok := asFloat64(value)
	if !ok {
		i, isInt, err := asInt64(value)
		if !isInt {
			return errors.Errorf("expected a float, got %T: %w", value, ErrTypeMismatch)
		}
		if err != nil {
			return err
		}
		f = float64(i)
	}
	var a [native.SizeDouble]byte
	native.PutDouble(a[:], f)
	return checkError(v.buf.SetBytes(pos, a[:]), "setDouble")
}

func (floatKind) getValue(v *Variable, pos int) (interface{}, error) {
	b, err := v.buf.Bytes(pos)
	if err != nil {
		return nil, checkError(err, "getDouble")
	}
	if len(b) < native.SizeDouble {
		return nil, errors.Errorf("double slot of %d bytes: %w", len(b), ErrTypeMismatch)
	}
	return native.Double(b), nil
}
