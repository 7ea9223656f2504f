// Copyright 2017, 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"testing"

	errors "golang.org/x/xerrors"

	"github.com/oracle/python-cx-Oracle-sub001/native"
	"github.com/oracle/python-cx-Oracle-sub001/nativetest"
)

func TestClobVariable(t *testing.T) {
	ctx := context.Background()
	env, _ := newTestEnv(t, nil)
	cur, _, nc := newTestCursor(t, env)
	v, err := cur.Var(ctx, ClobVarType, 0, 2, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	const s = "árvíztűrő tükörfúrógép"
	if err = v.SetValue(0, s); err != nil {
		t.Fatal(err)
	}
	if n := nc.LiveTempLobs(); n != 1 {
		t.Errorf("%d temporary LOBs", n)
	}
	got, err := v.GetValue(0)
	if err != nil {
		t.Fatal(err)
	}
	lob, ok := got.(*Lob)
	if !ok || !lob.IsClob() {
		t.Fatalf("got %#v", got)
	}
	if size, _ := lob.Size(); size != int64(len(s)) {
		t.Errorf("size %d, wanted %d", size, len(s))
	}
	if text, err := lob.ReadString(); err != nil || text != s {
		t.Errorf("got %q, %+v", text, err)
	}
	// fetched locators belong to the variable
	if err = lob.Close(); err != nil {
		t.Fatal(err)
	}
	if n := nc.LiveTempLobs(); n != 1 {
		t.Errorf("closing the fetched Lob freed the temporary LOB (%d left)", n)
	}

	if err = v.SetValue(0, "second"); err != nil {
		t.Fatal(err)
	}
	if n := nc.LiveTempLobs(); n != 1 {
		t.Errorf("replaced temporary LOB is kept: %d", n)
	}
	if err = v.SetValue(0, nil); err != nil {
		t.Fatal(err)
	}
	if n := nc.LiveTempLobs(); n != 0 {
		t.Errorf("null kept the temporary LOB: %d", n)
	}
	if v.Buffer().Handle(0) != v.locators[0] {
		t.Error("slot's own locator is not put back")
	}
	if got, _ := v.GetValue(0); got != nil {
		t.Errorf("got %v", got)
	}

	if err = v.SetValue(0, ""); err != nil {
		t.Fatal(err)
	}
	if err = v.SetValue(1, []byte("x")); err != nil {
		t.Fatal(err)
	}
	if n := nc.LiveTempLobs(); n != 2 {
		t.Errorf("%d temporary LOBs", n)
	}
	if err = v.Close(); err != nil {
		t.Fatal(err)
	}
	if n := nc.LiveTempLobs(); n != 0 {
		t.Errorf("close kept %d temporary LOBs", n)
	}
}

func TestLobWriteFailure(t *testing.T) {
	ctx := context.Background()
	env, _ := newTestEnv(t, nil)
	cur, _, nc := newTestCursor(t, env)
	v, err := cur.Var(ctx, BlobVarType, 0, 1, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	nc.FailLobWrite = &native.Error{Code: 1691, Fn: "dpiLob_writeBytes", Message: "unable to extend lob segment"}
	err = v.SetValue(0, []byte("data"))
	if !errors.Is(err, &OraErr{Code: 1691}) {
		t.Fatalf("got %v, wanted ORA-01691", err)
	}
	if n := nc.LiveTempLobs(); n != 0 {
		t.Errorf("failed write left %d temporary LOBs", n)
	}
	if !v.Buffer().IsNull(0) {
		t.Error("failed write set the slot")
	}
}

func TestLobAccess(t *testing.T) {
	ctx := context.Background()
	nc := nativetest.NewConn()
	conn := NewConn(nil, nc)
	defer conn.Close()
	lob, err := conn.NewTempLob(ctx, BlobVarType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = lob.WriteAt([]byte("hello"), 0); err != nil {
		t.Fatal(err)
	}
	if _, err = lob.WriteAt([]byte("XY"), 3); err != nil {
		t.Fatal(err)
	}
	p := make([]byte, 10)
	n, err := lob.ReadAt(p[:2], 1)
	if err != nil || string(p[:n]) != "el" {
		t.Errorf("got %q, %+v", p[:n], err)
	}
	if n, err = lob.ReadAt(p, 0); err != io.EOF || string(p[:n]) != "helXY" {
		t.Errorf("got %q, %+v", p[:n], err)
	}
	if err = lob.Trim(2); err != nil {
		t.Fatal(err)
	}
	if b, err := lob.Read(); err != nil || string(b) != "he" {
		t.Errorf("got %q, %+v", b, err)
	}
	if _, err = lob.ReadString(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("BLOB as string: got %v", err)
	}

	// a bound Lob is shared, not owned by the variable
	cur, err := conn.NewCursor(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer cur.Close()
	spec, err := VarTypeByValue(lob)
	if err != nil || spec.Type != BlobVarType {
		t.Fatalf("got %+v, %+v", spec, err)
	}
	v, err := cur.NewVariableByValue(ctx, lob, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err = v.SetValue(0, lob); err != nil {
		t.Fatal(err)
	}
	got, _ := v.GetValue(0)
	if b, _ := got.(*Lob).Read(); string(b) != "he" {
		t.Errorf("got %q", b)
	}
	v.Close()
	if n := nc.LiveTempLobs(); n != 1 {
		t.Errorf("variable freed the caller's LOB (%d left)", n)
	}

	if err = lob.Close(); err != nil {
		t.Fatal(err)
	}
	if n := nc.LiveTempLobs(); n != 0 {
		t.Errorf("%d temporary LOBs after close", n)
	}
	if _, err = lob.ReadAt(p, 0); !errors.Is(err, ErrClosed) {
		t.Errorf("read after close: got %v", err)
	}

	for _, typ := range []*VarType{StringVarType, BFileVarType} {
		if _, err = conn.NewTempLob(ctx, typ); !errors.Is(err, ErrNotSupported) {
			t.Errorf("%s: got %v", typ, err)
		}
	}
}

func TestLobReader(t *testing.T) {
	ctx := context.Background()
	conn := NewConn(nil, nativetest.NewConn())
	defer conn.Close()
	lob, err := conn.NewTempLob(ctx, BlobVarType)
	if err != nil {
		t.Fatal(err)
	}
	defer lob.Close()
	want := make([]byte, 10007)
	rand.New(rand.NewSource(3)).Read(want)
	if _, err = lob.WriteAt(want, 0); err != nil {
		t.Fatal(err)
	}

	got, err := io.ReadAll(lob.NewReader())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %d bytes, wanted %d", len(got), len(want))
	}

	r := lob.NewReader()
	var buf bytes.Buffer
	p := make([]byte, 7)
	for {
		n, err := r.Read(p)
		buf.Write(p[:n])
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("small reads got %d bytes", buf.Len())
	}
	if n, err := r.Read(p); n != 0 || err != io.EOF {
		t.Errorf("read after EOF: %d, %v", n, err)
	}
}

func TestFetchLob(t *testing.T) {
	ctx := context.Background()
	env, _ := newTestEnv(t, nil)
	cur, st, _ := newTestCursor(t, env)
	cur.FetchArraySize = 4
	st.SetResult(nativetest.Result{
		Columns: []native.ColumnInfo{
			{Name: "C", OracleType: native.TypeClob},
			{Name: "B", OracleType: native.TypeBlob},
		},
		Rows: [][]interface{}{{"text", []byte{1, 2}}, {nil, nil}},
	})
	if err := cur.Execute(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if n, err := cur.Fetch(ctx); err != nil || n != 2 {
		t.Fatalf("fetched %d: %+v", n, err)
	}
	row, err := cur.Row(0)
	if err != nil {
		t.Fatal(err)
	}
	if s, err := row[0].(*Lob).ReadString(); err != nil || s != "text" {
		t.Errorf("CLOB: %q, %+v", s, err)
	}
	if b, err := row[1].(*Lob).Read(); err != nil || !bytes.Equal(b, []byte{1, 2}) {
		t.Errorf("BLOB: %v, %+v", b, err)
	}
	if row, err = cur.Row(1); err != nil || row[0] != nil || row[1] != nil {
		t.Errorf("null LOBs: %v, %+v", row, err)
	}
}

func TestBFile(t *testing.T) {
	ctx := context.Background()
	env, _ := newTestEnv(t, nil)
	cur, _, _ := newTestCursor(t, env)
	v, err := cur.Var(ctx, BFileVarType, 0, 1, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err = v.SetValue(0, "/etc/passwd"); !errors.Is(err, ErrNotSupported) {
		t.Errorf("got %v, wanted ErrNotSupported", err)
	}
	if _, err = newVariable(ctx, env, nil, nil, 1, ClobVarType, 0, false, nil); !errors.Is(err, ErrNotSupported) {
		t.Errorf("LOB variable without connection: got %v", err)
	}
}
