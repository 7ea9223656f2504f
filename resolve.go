// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"database/sql/driver"
	"math/big"
	"reflect"
	"time"
	"unicode/utf8"

	knownpb "github.com/godror/knownpb/timestamppb"
	errors "golang.org/x/xerrors"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/oracle/python-cx-Oracle-sub001/native"
)

// TypeSpec is the outcome of type resolution: what a Variable is created with.
type TypeSpec struct {
	Type       *VarType
	ObjectType *ObjectType
	// Size is in characters for text types, in bytes otherwise; 0 means the type's default.
	Size int
	// NumElements is the capacity of an array.
	NumElements int
	IsArray     bool
}

// ArrayOf requests a PL/SQL table of Count elements of Type.
type ArrayOf struct {
	Type  interface{}
	Count int
}

var (
	typeOfTime       = reflect.TypeOf(time.Time{})
	typeOfDuration   = reflect.TypeOf(time.Duration(0))
	typeOfBytes      = reflect.TypeOf([]byte(nil))
	typeOfBigInt     = reflect.TypeOf((*big.Int)(nil))
	typeOfDecompose  = reflect.TypeOf((*decimalDecompose)(nil)).Elem()
	typeOfValuer     = reflect.TypeOf((*driver.Valuer)(nil)).Elem()
	varTypeByRequest = map[reflect.Type]*VarType{
		reflect.TypeOf(""):             StringVarType,
		reflect.TypeOf(false):          BooleanVarType,
		reflect.TypeOf(float64(0)):     FloatVarType,
		reflect.TypeOf(float32(0)):     FloatVarType,
		typeOfBytes:                    BinaryVarType,
		typeOfBigInt:                   LongIntegerVarType,
		reflect.TypeOf(Date{}):         DateVarType,
		typeOfTime:                     DateTimeVarType,
		typeOfDuration:                 IntervalVarType,
		reflect.TypeOf(IntervalYM{}):   IntervalYMVarType,
		reflect.TypeOf(Number("")):     DecimalVarType,
		reflect.TypeOf((*Cursor)(nil)): CursorVarType,
		reflect.TypeOf((*Lob)(nil)):    BlobVarType,
		reflect.TypeOf((*Object)(nil)): ObjectVarType,
	}
)

// VarTypeByRequest resolves an explicitly requested type:
//
//   - a *VarType is itself,
//   - a *ObjectType is an object variable of that type,
//   - a reflect.Type is looked up by the Go type of the values,
//   - a string is a VarType name,
//   - an int n is a varying string of n characters (LONG above MaxStringChars),
//   - ArrayOf{T, n} and []interface{}{T, n} are arrays of n elements of T.
func VarTypeByRequest(req interface{}) (TypeSpec, error) {
	switch x := req.(type) {
	case nil:
		return TypeSpec{}, errors.Errorf("nil type request: %w", ErrNotSupported)
	case *VarType:
		if x == nil {
			return TypeSpec{}, errors.Errorf("nil type request: %w", ErrNotSupported)
		}
		return TypeSpec{Type: x}, nil
	case *ObjectType:
		if x == nil {
			return TypeSpec{}, errors.Errorf("nil object type: %w", ErrNotSupported)
		}
		return TypeSpec{Type: ObjectVarType, ObjectType: x}, nil
	case reflect.Type:
		if t := varTypeByReflectType(x); t != nil {
			return TypeSpec{Type: t}, nil
		}
		return TypeSpec{}, errors.Errorf("Go type %v: %w", x, ErrNotSupported)
	case string:
		if t := VarTypeByName(x); t != nil {
			return TypeSpec{Type: t}, nil
		}
		return TypeSpec{}, errors.Errorf("type name %q: %w", x, ErrNotSupported)
	case int:
		if x > MaxStringChars {
			return TypeSpec{Type: LongStringVarType, Size: x}, nil
		}
		return TypeSpec{Type: StringVarType, Size: x}, nil
	case ArrayOf:
		return arrayRequest(x.Type, x.Count)
	case []interface{}:
		if len(x) == 2 {
			if n, ok := x[1].(int); ok {
				return arrayRequest(x[0], n)
			}
		}
	}
	return TypeSpec{}, errors.Errorf("type request %T: %w", req, ErrNotSupported)
}

func arrayRequest(req interface{}, count int) (TypeSpec, error) {
	spec, err := VarTypeByRequest(req)
	if err != nil {
		return spec, err
	}
	if spec.IsArray {
		return TypeSpec{}, errors.Errorf("arrays of arrays are not supported: %w", ErrNotSupported)
	}
	if !spec.Type.canBeInArray {
		return TypeSpec{}, errors.Errorf("%s cannot be in an array: %w", spec.Type, ErrNotSupported)
	}
	spec.IsArray, spec.NumElements = true, count
	return spec, nil
}

// varTypeByReflectType looks up t, then falls back to its kind for named types.
func varTypeByReflectType(t reflect.Type) *VarType {
	if vt := varTypeByRequest[t]; vt != nil {
		return vt
	}
	if t.Implements(typeOfDecompose) {
		return DecimalVarType
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if t == typeOfDuration {
			return IntervalVarType
		}
		return IntegerVarType
	case reflect.Float32, reflect.Float64:
		return FloatVarType
	case reflect.String:
		return StringVarType
	case reflect.Bool:
		return BooleanVarType
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return BinaryVarType
		}
	}
	return nil
}

// valueRule is one step of VarTypeByValue: it reports whether it matched.
type valueRule struct {
	name  string
	match func(value interface{}) (TypeSpec, bool, error)
}

// valueRules are tried in order. bool must come before the integers.
var valueRules []valueRule

func init() {
	varTypeByRequest[reflect.TypeOf((*timestamppb.Timestamp)(nil))] = DateTimeVarType
	varTypeByRequest[reflect.TypeOf((*knownpb.Timestamp)(nil))] = DateTimeVarType

	valueRules = []valueRule{
		{"null", func(value interface{}) (TypeSpec, bool, error) {
			if isNull(value) {
				return TypeSpec{Type: StringVarType, Size: 1}, true, nil
			}
			return TypeSpec{}, false, nil
		}},
		{"string", func(value interface{}) (TypeSpec, bool, error) {
			s, ok := value.(string)
			if !ok {
				return TypeSpec{}, false, nil
			}
			n := utf8.RuneCountInString(s)
			if n > MaxStringChars {
				return TypeSpec{Type: LongStringVarType, Size: n}, true, nil
			}
			return TypeSpec{Type: StringVarType, Size: n}, true, nil
		}},
		{"bool", func(value interface{}) (TypeSpec, bool, error) {
			_, ok := value.(bool)
			return TypeSpec{Type: BooleanVarType}, ok, nil
		}},
		{"integer", func(value interface{}) (TypeSpec, bool, error) {
			if _, ok := value.(*big.Int); ok {
				return TypeSpec{Type: LongIntegerVarType}, true, nil
			}
			_, ok, err := asInt64(value)
			if !ok {
				return TypeSpec{}, false, nil
			}
			if err != nil {
				return TypeSpec{Type: LongIntegerVarType}, true, nil
			}
			return TypeSpec{Type: IntegerVarType}, true, nil
		}},
		{"float", func(value interface{}) (TypeSpec, bool, error) {
			_, ok := asFloat64(value)
			return TypeSpec{Type: FloatVarType}, ok, nil
		}},
		{"binary", func(value interface{}) (TypeSpec, bool, error) {
			b, ok := value.([]byte)
			if !ok {
				return TypeSpec{}, false, nil
			}
			if len(b) > MaxBinaryBytes {
				return TypeSpec{Type: LongBinaryVarType, Size: len(b)}, true, nil
			}
			return TypeSpec{Type: BinaryVarType, Size: len(b)}, true, nil
		}},
		{"date", func(value interface{}) (TypeSpec, bool, error) {
			_, ok := value.(Date)
			return TypeSpec{Type: DateVarType}, ok, nil
		}},
		{"datetime", func(value interface{}) (TypeSpec, bool, error) {
			_, ok := asTime(value)
			return TypeSpec{Type: DateTimeVarType}, ok, nil
		}},
		{"duration", func(value interface{}) (TypeSpec, bool, error) {
			_, ok := value.(time.Duration)
			return TypeSpec{Type: IntervalVarType}, ok, nil
		}},
		{"intervalYM", func(value interface{}) (TypeSpec, bool, error) {
			_, ok := value.(IntervalYM)
			return TypeSpec{Type: IntervalYMVarType}, ok, nil
		}},
		{"cursor", func(value interface{}) (TypeSpec, bool, error) {
			_, ok := value.(*Cursor)
			return TypeSpec{Type: CursorVarType}, ok, nil
		}},
		{"decimal", func(value interface{}) (TypeSpec, bool, error) {
			_, ok := value.(decimalDecompose)
			return TypeSpec{Type: DecimalVarType}, ok, nil
		}},
		{"lob", func(value interface{}) (TypeSpec, bool, error) {
			lob, ok := value.(*Lob)
			if !ok {
				return TypeSpec{}, false, nil
			}
			switch lob.oracleType {
			case native.TypeClob:
				return TypeSpec{Type: ClobVarType}, true, nil
			case native.TypeBFile:
				return TypeSpec{Type: BFileVarType}, true, nil
			}
			return TypeSpec{Type: BlobVarType}, true, nil
		}},
		{"object", func(value interface{}) (TypeSpec, bool, error) {
			obj, ok := value.(*Object)
			if !ok {
				return TypeSpec{}, false, nil
			}
			return TypeSpec{Type: ObjectVarType, ObjectType: obj.objectType}, true, nil
		}},
		{"variable", func(value interface{}) (TypeSpec, bool, error) {
			v, ok := value.(*Variable)
			if !ok {
				return TypeSpec{}, false, nil
			}
			return TypeSpec{Type: v.typ, ObjectType: v.objectType, Size: v.size,
				NumElements: v.allocatedElements, IsArray: v.isArray}, true, nil
		}},
		{"valuer", func(value interface{}) (TypeSpec, bool, error) {
			if _, ok := value.(driver.Valuer); !ok {
				return TypeSpec{}, false, nil
			}
			x, err := unwrapValuer(value)
			if err != nil {
				return TypeSpec{}, true, err
			}
			if reflect.TypeOf(x) != nil && reflect.TypeOf(x).Implements(typeOfValuer) {
				return TypeSpec{}, true, errors.Errorf("%T.Value returned a Valuer: %w", value, ErrNotSupported)
			}
			spec, err := VarTypeByValue(x)
			return spec, true, err
		}},
		{"list", func(value interface{}) (TypeSpec, bool, error) {
			values, ok := asList(value)
			if !ok {
				return TypeSpec{}, false, nil
			}
			spec, err := listType(values)
			return spec, true, err
		}},
	}
}

// VarTypeByValue resolves the type of a Go value.
//
// nil resolves to a 1 character string; slices (except []byte) to arrays of
// their elements' type, and the elements must be of the same type.
func VarTypeByValue(value interface{}) (TypeSpec, error) {
	for _, r := range valueRules {
		spec, ok, err := r.match(value)
		if err != nil {
			return TypeSpec{}, errors.Errorf("%s: %w", r.name, err)
		}
		if ok {
			return spec, nil
		}
	}
	return TypeSpec{}, errors.Errorf("Go type %T: %w", value, ErrNotSupported)
}

// listType resolves the element type of values.
// An integer list with elements outside of the int64 range is a long-integer list,
// a string list has the size of its longest element.
func listType(values []interface{}) (TypeSpec, error) {
	var spec TypeSpec
	for i, x := range values {
		if isNull(x) {
			continue
		}
		if _, ok := asList(x); ok {
			return TypeSpec{}, errors.Errorf("arrays of arrays are not supported: %w", ErrNotSupported)
		}
		elt, err := VarTypeByValue(x)
		if err != nil {
			return TypeSpec{}, errors.Errorf("%d: %w", i, err)
		}
		if spec.Type == nil {
			spec = elt
			continue
		}
		if spec, err = mergeElementTypes(spec, elt); err != nil {
			return TypeSpec{}, errors.Errorf("%d: %w", i, err)
		}
	}
	if spec.Type == nil {
		spec, _, _ = valueRules[0].match(nil)
	}
	if !spec.Type.canBeInArray {
		return TypeSpec{}, errors.Errorf("%s cannot be in an array: %w", spec.Type, ErrNotSupported)
	}
	spec.IsArray, spec.NumElements = true, len(values)
	return spec, nil
}

func mergeElementTypes(a, b TypeSpec) (TypeSpec, error) {
	if a.Type == b.Type && a.ObjectType == b.ObjectType {
		if b.Size > a.Size {
			a.Size = b.Size
		}
		return a, nil
	}
	isInt := func(t *VarType) bool { return t == IntegerVarType || t == LongIntegerVarType }
	if isInt(a.Type) && isInt(b.Type) {
		return TypeSpec{Type: LongIntegerVarType}, nil
	}
	isStr := func(t *VarType) bool { return t == StringVarType || t == LongStringVarType }
	if isStr(a.Type) && isStr(b.Type) {
		a.Type = LongStringVarType
		if b.Size > a.Size {
			a.Size = b.Size
		}
		return a, nil
	}
	return TypeSpec{}, errors.Errorf("%s and %s elements in one list: %w", a.Type, b.Type, ErrTypeMismatch)
}

// RouteNumber returns the variable type of a NUMBER(precision, scale) column.
//
// Scale 0, and the unconstrained NUMBER (scale -127, precision 0), are integral:
// they are fetched as int64 when precision is within safeDigits, as text otherwise.
// Every other scale is fetched as float64.
func RouteNumber(precision int16, scale int8, safeDigits int) *VarType {
	if scale != 0 && !(scale == -127 && precision == 0) {
		return FloatVarType
	}
	if precision >= 1 && int(precision) <= safeDigits {
		return IntegerVarType
	}
	return LongIntegerVarType
}

// VarTypeByColumn resolves the type a query column (or object attribute) is fetched as.
// The ObjectType of object columns is not resolved here.
func VarTypeByColumn(env *Environment, info native.ColumnInfo) (TypeSpec, error) {
	if env == nil {
		env = DefaultEnvironment()
	}
	nchar := info.CharsetForm == native.CharsetNChar
	pick := func(normal, national *VarType) *VarType {
		if nchar {
			return national
		}
		return normal
	}
	spec := TypeSpec{Size: info.Size}
	switch info.OracleType {
	case native.TypeVarchar:
		spec.Type = pick(StringVarType, NCharVarType)
	case native.TypeChar:
		spec.Type = pick(FixedCharVarType, FixedNCharVarType)
	case native.TypeLong:
		spec.Type = LongStringVarType
	case native.TypeRowid:
		spec.Type, spec.Size = RowidVarType, 0
	case native.TypeRaw:
		spec.Type = BinaryVarType
	case native.TypeLongRaw:
		spec.Type = LongBinaryVarType
	case native.TypeNumber, native.TypeVarNum:
		spec.Type, spec.Size = RouteNumber(info.Precision, info.Scale, env.SafeDigits()), 0
	case native.TypeInteger:
		spec.Type, spec.Size = NativeIntVarType, 0
	case native.TypeFloat:
		spec.Type, spec.Size = FloatVarType, 0
	case native.TypeBinaryFloat, native.TypeBinaryDouble:
		spec.Type, spec.Size = NativeFloatVarType, 0
	case native.TypeDate:
		spec.Type, spec.Size = DateTimeVarType, 0
	case native.TypeTimestamp:
		spec.Type, spec.Size = TimestampVarType, 0
	case native.TypeTimestampTZ:
		spec.Type, spec.Size = TimestampTZVarType, 0
	case native.TypeTimestampLTZ:
		spec.Type, spec.Size = TimestampLTZVarType, 0
	case native.TypeIntervalDS:
		spec.Type, spec.Size = IntervalVarType, 0
	case native.TypeIntervalYM:
		spec.Type, spec.Size = IntervalYMVarType, 0
	case native.TypeBoolean:
		spec.Type, spec.Size = BooleanVarType, 0
	case native.TypeClob:
		spec.Type, spec.Size = pick(ClobVarType, NClobVarType), 0
	case native.TypeBlob:
		spec.Type, spec.Size = BlobVarType, 0
	case native.TypeBFile:
		spec.Type, spec.Size = BFileVarType, 0
	case native.TypeCursor:
		spec.Type, spec.Size = CursorVarType, 0
	case native.TypeObject, native.TypeNamedCollection:
		spec.Type, spec.Size = ObjectVarType, 0
	default:
		return TypeSpec{}, errors.Errorf("column %q of %s: %w", info.Name, info.OracleType, ErrNotSupported)
	}
	return spec, nil
}
