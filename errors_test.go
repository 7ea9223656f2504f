// Copyright 2017, 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"fmt"
	"io"
	"testing"

	errors "golang.org/x/xerrors"

	"github.com/oracle/python-cx-Oracle-sub001/native"
)

func TestClassifyCode(t *testing.T) {
	for code, want := range map[int]Category{
		1:     CategoryIntegrity,
		1400:  CategoryIntegrity,
		12899: CategoryIntegrity,
		28:    CategoryOperational,
		3113:  CategoryOperational,
		12541: CategoryOperational,
		12560: CategoryOperational,
		942:   CategoryDatabase,
		1406:  CategoryDatabase,
		0:     CategoryDatabase,
	} {
		if got := ClassifyCode(code); got != want {
			t.Errorf("%d: got %s, wanted %s", code, got, want)
		}
	}
}

func TestOraErr(t *testing.T) {
	for name, tC := range map[string]struct {
		Err  *OraErr
		Want string
	}{
		"at":       {Err: &OraErr{Code: 1406, Message: "fetched column value was truncated", At: "fetch"}, Want: "fetch: ORA-01406: fetched column value was truncated"},
		"noAt":     {Err: &OraErr{Code: 942, Message: "table or view does not exist"}, Want: "ORA-00942: table or view does not exist"},
		"prefixed": {Err: &OraErr{Code: 1, Message: "ORA-00001: unique constraint violated"}, Want: "ORA-00001: unique constraint violated"},
		"empty":    {Err: &OraErr{}, Want: ""},
		"nil":      {Err: nil, Want: ""},
	} {
		if got := tC.Err.Error(); got != tC.Want {
			t.Errorf("%s: got %q, wanted %q", name, got, tC.Want)
		}
	}
}

func TestCheckError(t *testing.T) {
	if err := checkError(nil, "x"); err != nil {
		t.Errorf("nil: got %v", err)
	}
	if err := checkError(io.EOF, "x"); err != io.EOF {
		t.Errorf("foreign error is changed: %v", err)
	}

	ne := &native.Error{Code: 1, Fn: "dpiStmt_execute", Message: "unique constraint violated", Offset: 3}
	err := fmt.Errorf("insert: %w", checkError(ne, "execute"))
	oe, ok := AsOraErr(err)
	if !ok {
		t.Fatalf("%v is not an OraErr", err)
	}
	if oe.At != "execute/dpiStmt_execute" || oe.Offset != 3 || oe.Category != CategoryIntegrity {
		t.Errorf("got %#v", oe)
	}
	if !IsIntegrity(err) || IsOperational(err) {
		t.Errorf("%v: integrity=%t operational=%t", err, IsIntegrity(err), IsOperational(err))
	}
	if !errors.Is(err, &OraErr{Code: 1}) {
		t.Error("does not match its code")
	}
	if errors.Is(err, &OraErr{Code: 2}) {
		t.Error("matches another code")
	}

	oe, _ = AsOraErr(checkError(&native.Error{Code: 3113, Message: "end-of-file on communication channel"}, ""))
	if oe == nil || oe.At != "" || !IsOperational(oe) {
		t.Errorf("got %#v", oe)
	}
	if _, ok = AsOraErr(ErrClosed); ok {
		t.Error("ErrClosed is an OraErr")
	}
}
