// Copyright 2019, 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"
	errors "golang.org/x/xerrors"

	"github.com/oracle/python-cx-Oracle-sub001/native"
	"github.com/oracle/python-cx-Oracle-sub001/nativetest"
)

type testTypes struct {
	Address, Person, Tags *native.ObjectTypeInfo
}

func newTestTypes() testTypes {
	addr := &native.ObjectTypeInfo{Schema: "TEST", Name: "ADDRESS", Attributes: []native.AttrInfo{
		{Name: "CITY", OracleType: native.TypeVarchar, Size: 30},
		{Name: "ZIP", OracleType: native.TypeNumber, Precision: 5},
	}}
	return testTypes{
		Address: addr,
		Person: &native.ObjectTypeInfo{Schema: "TEST", Name: "PERSON", Attributes: []native.AttrInfo{
			{Name: "NAME", OracleType: native.TypeVarchar, Size: 40},
			{Name: "BORN", OracleType: native.TypeDate},
			{Name: "SALARY", OracleType: native.TypeNumber, Precision: 10, Scale: 2},
			{Name: "ACTIVE", OracleType: native.TypeBoolean},
			{Name: "ADDR", OracleType: native.TypeObject, ObjectType: addr},
		}},
		Tags: &native.ObjectTypeInfo{Schema: "TEST", Name: "TAGS", IsCollection: true,
			Element: &native.AttrInfo{OracleType: native.TypeVarchar, Size: 20}},
	}
}

func newTestObjectConn(t testing.TB) (*Conn, *nativetest.Conn, testTypes) {
	t.Helper()
	env, _ := newTestEnv(t, nil)
	types := newTestTypes()
	nc := nativetest.NewConn(types.Address, types.Person, types.Tags)
	conn := NewConn(env, nc)
	t.Cleanup(func() { conn.Close() })
	return conn, nc, types
}

func TestGetObjectTypeOnce(t *testing.T) {
	conn, nc, _ := newTestObjectConn(t)
	grp, ctx := errgroup.WithContext(context.Background())
	const N = 16
	got := make([]*ObjectType, N)
	for i := 0; i < N; i++ {
		i := i
		grp.Go(func() error {
			var err error
			got[i], err = conn.GetObjectType(ctx, "test.person")
			return err
		})
	}
	if err := grp.Wait(); err != nil {
		t.Fatal(err)
	}
	for i, ot := range got {
		if ot != got[0] {
			t.Errorf("%d. got another type %p", i, ot)
		}
	}
	if n := nc.ObjectTypeLookups(); n != 1 {
		t.Errorf("%d lookups, wanted 1", n)
	}

	// attribute types are cached with their parent
	addr, err := conn.GetObjectType(context.Background(), "TEST.ADDRESS")
	if err != nil {
		t.Fatal(err)
	}
	if a, _ := got[0].Attribute("addr"); a.ObjectType != addr {
		t.Errorf("ADDR attribute is of %v, not of %v", a.ObjectType, addr)
	}
	if n := nc.ObjectTypeLookups(); n != 1 {
		t.Errorf("%d lookups, wanted 1", n)
	}

	_, err = conn.GetObjectType(context.Background(), "TEST.NO_SUCH_TYPE")
	if !errors.Is(err, &OraErr{Code: 4043}) {
		t.Errorf("got %v, wanted ORA-04043", err)
	}
}

func TestObjectType(t *testing.T) {
	conn, _, _ := newTestObjectConn(t)
	ot, err := conn.GetObjectType(context.Background(), "TEST.PERSON")
	if err != nil {
		t.Fatal(err)
	}
	if ot.FullName() != "TEST.PERSON" || ot.IsCollection || ot.Element != nil {
		t.Errorf("got %+v", ot)
	}
	want := map[string]*VarType{
		"NAME":   StringVarType,
		"BORN":   DateTimeVarType,
		"SALARY": FloatVarType,
		"ACTIVE": BooleanVarType,
		"ADDR":   ObjectVarType,
	}
	for _, a := range ot.Attributes {
		if a.VarType != want[a.Name] {
			t.Errorf("%s: got %s, wanted %s", a.Name, a.VarType, want[a.Name])
		}
	}
	if _, err = ot.Attribute("NOPE"); !errors.Is(err, ErrNotExist) {
		t.Errorf("got %v", err)
	}
}

func TestObjectAttributes(t *testing.T) {
	ctx := context.Background()
	conn, nc, _ := newTestObjectConn(t)
	personType, err := conn.GetObjectType(ctx, "TEST.PERSON")
	if err != nil {
		t.Fatal(err)
	}
	addrType, err := conn.GetObjectType(ctx, "TEST.ADDRESS")
	if err != nil {
		t.Fatal(err)
	}
	person, err := personType.NewObject(ctx)
	if err != nil {
		t.Fatal(err)
	}
	addr, err := addrType.NewObject(ctx)
	if err != nil {
		t.Fatal(err)
	}
	born := time.Date(1980, 5, 6, 0, 0, 0, 0, time.UTC)
	for _, kv := range []struct {
		O    *Object
		Name string
		V    interface{}
	}{
		{addr, "CITY", "Budapest"},
		{addr, "ZIP", 1111},
		{person, "NAME", "Kovács"},
		{person, "BORN", born},
		{person, "SALARY", 1234.5},
		{person, "ACTIVE", true},
		{person, "ADDR", addr},
	} {
		if err = kv.O.SetAttr(kv.Name, kv.V); err != nil {
			t.Fatalf("%s: %+v", kv.Name, err)
		}
	}
	if n := nc.LiveStrings(); n != 0 {
		t.Errorf("%d temporary strings are kept", n)
	}

	m, err := person.AsMap()
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(map[string]interface{}{
		"NAME":   "Kovács",
		"BORN":   born,
		"SALARY": 1234.5,
		"ACTIVE": true,
		"ADDR":   map[string]interface{}{"CITY": "Budapest", "ZIP": int64(1111)},
	}, m); d != "" {
		t.Error(d)
	}

	got, err := person.GetAttr("addr")
	if err != nil {
		t.Fatal(err)
	}
	if sub, ok := got.(*Object); !ok || sub.ObjectType() != addrType {
		t.Errorf("got %v", got)
	}

	for name, tC := range map[string]struct {
		Value interface{}
		Want  error
	}{
		"NAME": {Value: 12, Want: ErrTypeMismatch},
		"ADDR": {Value: person, Want: ErrTypeMismatch},
		"ZIP":  {Value: 1, Want: ErrNotExist},
		"BORN": {Value: "yesterday", Want: ErrTypeMismatch},
		"NOPE": {Value: 1, Want: ErrNotExist},
	} {
		if err = person.SetAttr(name, tC.Value); !errors.Is(err, tC.Want) {
			t.Errorf("%s: got %v, wanted %v", name, err, tC.Want)
		}
	}

	for _, born := range []interface{}{
		Date{Year: 70000, Month: 1, Day: 1},
		time.Date(75000, 1, 1, 0, 0, 0, 0, time.UTC),
	} {
		if err = person.SetAttr("BORN", born); !errors.Is(err, ErrOverflow) {
			t.Errorf("BORN=%v: got %v, wanted ErrOverflow", born, err)
		}
	}

	nc.FailNewString = &native.Error{Code: 21500, Fn: "OCIStringAssignText", Message: "internal error"}
	if err = person.SetAttr("NAME", "x"); !errors.Is(err, &OraErr{Code: 21500}) {
		t.Errorf("got %v", err)
	}
	nc.FailNewString = nil
	if n := nc.LiveStrings(); n != 0 {
		t.Errorf("%d temporary strings are kept", n)
	}

	cp, err := person.Copy()
	if err != nil {
		t.Fatal(err)
	}
	if err = cp.SetAttr("NAME", nil); err != nil {
		t.Fatal(err)
	}
	if v, _ := cp.GetAttr("NAME"); v != nil {
		t.Errorf("null attribute got %v", v)
	}
	if v, _ := person.GetAttr("NAME"); v != "Kovács" {
		t.Errorf("copy shares the attributes: %v", v)
	}
	if n := nc.LiveObjects(); n != 3 {
		t.Errorf("%d live objects", n)
	}
	for _, o := range []*Object{cp, addr, person} {
		if err = o.Close(); err != nil {
			t.Fatal(err)
		}
	}
	if n := nc.LiveObjects(); n != 0 {
		t.Errorf("%d live objects after close", n)
	}
	if _, err = person.GetAttr("NAME"); !errors.Is(err, ErrClosed) {
		t.Errorf("got %v", err)
	}
}

func TestCollection(t *testing.T) {
	ctx := context.Background()
	conn, nc, _ := newTestObjectConn(t)
	ot, err := conn.GetObjectType(ctx, "TAGS")
	if err != nil {
		t.Fatal(err)
	}
	if !ot.IsCollection || ot.Element == nil || ot.Element.VarType != StringVarType {
		t.Fatalf("got %+v", ot)
	}
	coll, err := ot.NewObject(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer coll.Close()
	if _, err = coll.First(); !errors.Is(err, ErrNotExist) {
		t.Errorf("first of empty: got %v", err)
	}
	if err = coll.Extend([]interface{}{"a", "b", "c"}); err != nil {
		t.Fatal(err)
	}
	if err = coll.Delete(1); err != nil {
		t.Fatal(err)
	}
	if n, _ := coll.Len(); n != 3 {
		t.Errorf("len %d", n)
	}
	if ok, _ := coll.Exists(1); ok {
		t.Error("deleted element exists")
	}
	if _, err = coll.Get(1); !errors.Is(err, ErrNotExist) {
		t.Errorf("get deleted: got %v", err)
	}
	if err = coll.Delete(1); !errors.Is(err, ErrNotExist) {
		t.Errorf("delete deleted: got %v", err)
	}

	var indexes []int
	for i, err := coll.First(); err == nil; i, err = coll.Next(i) {
		indexes = append(indexes, i)
	}
	if d := cmp.Diff([]int{0, 2}, indexes); d != "" {
		t.Error(d)
	}
	if i, err := coll.Last(); err != nil || i != 2 {
		t.Errorf("last: %d, %v", i, err)
	}
	if i, err := coll.Prev(2); err != nil || i != 0 {
		t.Errorf("prev of 2: %d, %v", i, err)
	}
	if _, err = coll.Prev(0); !errors.Is(err, ErrNotExist) {
		t.Errorf("prev of 0: got %v", err)
	}

	if err = coll.Set(0, "z"); err != nil {
		t.Fatal(err)
	}
	values, err := coll.AsSlice()
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]interface{}{"z", "c"}, values); d != "" {
		t.Error(d)
	}
	if err = coll.Trim(1); err != nil {
		t.Fatal(err)
	}
	if values, _ = coll.AsSlice(); !cmp.Equal(values, []interface{}{"z"}) {
		t.Errorf("after trim: %v", values)
	}

	if err = coll.Append(1); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("append int: got %v", err)
	}
	if _, err = coll.AsMap(); !errors.Is(err, ErrNotSupported) {
		t.Errorf("AsMap of a collection: got %v", err)
	}
	if n := nc.LiveStrings(); n != 0 {
		t.Errorf("%d temporary strings are kept", n)
	}

	person, err := conn.GetObjectType(ctx, "PERSON")
	if err != nil {
		t.Fatal(err)
	}
	obj, err := person.NewObject(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer obj.Close()
	if err = obj.Append("x"); !errors.Is(err, ErrNotCollection) {
		t.Errorf("append to an object: got %v", err)
	}
	if _, err = obj.Len(); !errors.Is(err, ErrNotCollection) {
		t.Errorf("len of an object: got %v", err)
	}
}

func TestObjectVariable(t *testing.T) {
	ctx := context.Background()
	conn, _, types := newTestObjectConn(t)
	cur, err := conn.NewCursor(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer cur.Close()
	ot, err := conn.GetObjectType(ctx, "TEST.ADDRESS")
	if err != nil {
		t.Fatal(err)
	}
	v, err := cur.Var(ctx, ot, 0, 2, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()
	if v.Type() != ObjectVarType || v.ObjectType() != ot {
		t.Fatalf("got %s", v)
	}
	if got, _ := v.GetValue(0); got != nil {
		t.Errorf("fresh slot: %v", got)
	}
	addr, err := ot.NewObject(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer addr.Close()
	if err = addr.SetAttr("CITY", "Pécs"); err != nil {
		t.Fatal(err)
	}
	spec, err := VarTypeByValue(addr)
	if err != nil || spec.Type != ObjectVarType || spec.ObjectType != ot {
		t.Errorf("got %+v, %+v", spec, err)
	}
	if err = v.SetValue(0, addr); err != nil {
		t.Fatal(err)
	}
	got, err := v.GetValue(0)
	if err != nil {
		t.Fatal(err)
	}
	view := got.(*Object)
	if city, _ := view.GetAttr("CITY"); city != "Pécs" {
		t.Errorf("got %v", city)
	}
	// a view does not release the instance
	view.Close()
	if city, _ := addr.GetAttr("CITY"); city != "Pécs" {
		t.Errorf("closing the view released the object: %v", city)
	}

	person, err := conn.GetObjectType(ctx, "TEST.PERSON")
	if err != nil {
		t.Fatal(err)
	}
	other, err := person.NewObject(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer other.Close()
	if err = v.SetValue(1, other); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("object of another type: got %v", err)
	}
	if err = v.SetValue(1, "x"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("string into an object variable: got %v", err)
	}
	if _, err = newVariable(ctx, conn.env, conn, nil, 1, ObjectVarType, 0, false, nil); !errors.Is(err, ErrNotSupported) {
		t.Errorf("object variable without type: got %v", err)
	}

	// fetch
	st := cur.Statement().(*nativetest.Stmt)
	fetched := nativetest.NewObject(types.Address)
	city := native.NewValue(native.NativeBytes)
	city.SetBytes([]byte("Szeged"))
	if err = fetched.SetAttr(&types.Address.Attributes[0], city); err != nil {
		t.Fatal(err)
	}
	st.SetResult(nativetest.Result{
		Columns: []native.ColumnInfo{{Name: "A", OracleType: native.TypeObject, ObjectType: types.Address}},
		Rows:    [][]interface{}{{fetched}, {nil}},
	})
	if err = cur.Execute(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if fv := cur.FetchVars()[0]; fv.ObjectType() != ot {
		t.Errorf("fetch variable of %v", fv.ObjectType())
	}
	if _, err = cur.Fetch(ctx); err != nil {
		t.Fatal(err)
	}
	row, err := cur.Row(0)
	if err != nil {
		t.Fatal(err)
	}
	if m, err := row[0].(*Object).AsMap(); err != nil || !cmp.Equal(m, map[string]interface{}{"CITY": "Szeged", "ZIP": nil}) {
		t.Errorf("got %v, %+v", m, err)
	}
	if row, err = cur.Row(1); err != nil || row[0] != nil {
		t.Errorf("null object: got %v, %+v", row, err)
	}
}

func TestObjectNumbers(t *testing.T) {
	for _, tC := range []struct {
		Type *VarType
		In   interface{}
		Want interface{}
	}{
		{IntegerVarType, 42, int64(42)},
		{FloatVarType, 0.25, 0.25},
		{DecimalVarType, Number("-1.05"), Number("-1.05")},
		{LongIntegerVarType, "123456789012345678901234567890", nil},
	} {
		in := tC.In
		if s, ok := in.(string); ok {
			in, _ = parseLongInteger(s)
		}
		n, err := hostToOCINum(in)
		if err != nil {
			t.Errorf("%v: %+v", tC.In, err)
			continue
		}
		got, err := numberToHost(tC.Type, n)
		if err != nil {
			t.Errorf("%v: %+v", tC.In, err)
			continue
		}
		want := tC.Want
		if want == nil {
			want = in
		}
		if d := cmp.Diff(want, got, cmpBigInt); d != "" {
			t.Errorf("%s(%v): %s", tC.Type, tC.In, d)
		}
	}
	if _, err := hostToOCINum("1"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("string: got %v", err)
	}
}
