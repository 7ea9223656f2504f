// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"context"
	"fmt"

	errors "golang.org/x/xerrors"

	"github.com/oracle/python-cx-Oracle-sub001/native"
)

// bindState is the attachment of a variable's buffer to a statement.
//
//	unbound -> bound -> resized -> rebound
//
// resized means the statement still points to the released buffer.
type bindState uint8

const (
	stateUnbound bindState = iota
	stateBound
	stateResized
	stateRebound
)

type binding struct {
	stmt   native.Statement
	name   string
	pos    int
	state  bindState
	define bool
}

func (b binding) isBound() bool { return b.stmt != nil && b.state != stateUnbound }

// needsRebind reports whether the statement holds a pointer to a released buffer.
func (b binding) needsRebind() bool { return b.state == stateResized }

func (b binding) same(stmt native.Statement, name string, pos int, define bool) bool {
	return b.stmt == stmt && b.name == name && b.pos == pos && b.define == define
}

func (v *Variable) nativeBind(buf *native.ArrayBuffer, elementSize int) native.Bind {
	b := native.Bind{
		Buffer:      buf,
		ElementSize: elementSize,
		OracleType:  v.typ.oracleType,
		NativeType:  v.typ.nativeType,
		CharsetForm: v.typ.charsetForm,
	}
	if v.isArray {
		b.MaxArrayElements = v.allocatedElements
	}
	if v.objectType != nil {
		b.ObjectType = v.objectType.info
	}
	return b
}

// attach (re)issues the current binding against buf.
func (v *Variable) attach(buf *native.ArrayBuffer, elementSize int) error {
	b := v.binding
	nb := v.nativeBind(buf, elementSize)
	var err error
	switch {
	case b.define:
		err = b.stmt.DefineByPos(b.pos, nb)
	case b.name != "":
		err = b.stmt.BindByName(b.name, nb)
	default:
		err = b.stmt.BindByPos(b.pos, nb)
	}
	return checkError(err, "bind")
}

// Bind attaches the variable to the named (if name is not empty) or the 1-based positional
// placeholder of stmt.
//
// Binding again to the same placeholder is a no-op, unless the buffer has been replaced since.
func (v *Variable) Bind(ctx context.Context, stmt native.Statement, name string, pos int) error {
	return v.bind(ctx, stmt, name, pos, false)
}

// define attaches the variable to the 1-based query column pos of stmt.
func (v *Variable) define(ctx context.Context, stmt native.Statement, pos int) error {
	return v.bind(ctx, stmt, "", pos, true)
}

func (v *Variable) bind(ctx context.Context, stmt native.Statement, name string, pos int, define bool) error {
	if v.closed || v.buf == nil {
		return errors.Errorf("%s: %w", v, ErrClosed)
	}
	if stmt == nil {
		return errors.Errorf("bind %s: nil statement: %w", v, ErrClosed)
	}
	if name == "" && pos < 1 {
		return errors.Errorf("bind position %d (positions start at 1): %w", pos, ErrIndexOutOfRange)
	}
	if v.binding.isBound() && v.binding.same(stmt, name, pos, define) && !v.binding.needsRebind() {
		return nil
	}
	prev := v.binding
	v.binding = binding{stmt: stmt, name: name, pos: pos, define: define, state: prev.state}
	if err := v.attach(v.buf, v.elementSize); err != nil {
		v.binding = prev
		return err
	}
	if prev.needsRebind() && prev.same(stmt, name, pos, define) {
		v.binding.state = stateRebound
	} else {
		v.binding.state = stateBound
	}
	if logger := v.env.logger(ctx); debugEnabled(ctx, logger) {
		what := "bind"
		if define {
			what = "define"
		}
		logger.Debug(what, "var", v.id, "type", v.typ.name, "stmt", fmt.Sprintf("%p", stmt),
			"name", name, "pos", pos, "elementSize", v.elementSize, "isArray", v.isArray)
	}
	return nil
}
