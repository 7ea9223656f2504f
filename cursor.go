// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"context"
	"fmt"
	"sort"

	errors "golang.org/x/xerrors"

	"github.com/oracle/python-cx-Oracle-sub001/native"
)

// InputTypeHandler returns the variable a bind value is bound with,
// or nil to fall back to VarTypeByValue.
type InputTypeHandler func(cur *Cursor, value interface{}, numElements int) (*Variable, error)

// OutputTypeHandler returns the variable a query column is fetched into,
// or nil to fall back to VarTypeByColumn.
type OutputTypeHandler func(cur *Cursor, col native.ColumnInfo, numElements int) (*Variable, error)

// Cursor owns a statement and the variables bound to it or defined for it.
//
// A Cursor must not be used concurrently.
type Cursor struct {
	conn *Conn
	env  *Environment
	stmt native.Statement

	InputTypeHandler  InputTypeHandler
	OutputTypeHandler OutputTypeHandler

	bindVars  []*Variable
	bindNamed map[string]*Variable
	fetchVars []*Variable
	// owned are the variables the cursor created, or a type handler handed over.
	owned map[*Variable]struct{}

	// FetchArraySize is the number of rows fetched at once.
	FetchArraySize int
	// ArraySize is the number of elements of the bind variables.
	ArraySize int

	rowCount       int
	bufferRowCount int

	ownsStmt      bool
	isChild       bool
	setInputSizes bool
	closed        bool
}

func newCursor(conn *Conn, stmt native.Statement, ownsStmt bool) *Cursor {
	env := DefaultEnvironment()
	if conn != nil {
		env = conn.env
	}
	fas := env.params.FetchArraySize
	if fas < 1 {
		fas = DefaultFetchArraySize
	}
	return &Cursor{conn: conn, env: env, stmt: stmt, ownsStmt: ownsStmt,
		FetchArraySize: fas, ArraySize: 1}
}

// Statement returns the native statement.
func (cur *Cursor) Statement() native.Statement { return cur.stmt }

// Conn returns the connection of the cursor.
func (cur *Cursor) Conn() *Conn { return cur.conn }

// IsChild reports whether the cursor was created for a REF CURSOR slot.
func (cur *Cursor) IsChild() bool { return cur.isChild }

// RowCount returns the number of rows fetched so far.
func (cur *Cursor) RowCount() int { return cur.rowCount }

func (cur *Cursor) String() string {
	return fmt.Sprintf("<Cursor %p on %p>", cur, cur.stmt)
}

func (cur *Cursor) check() error {
	if cur == nil || cur.closed || cur.stmt == nil {
		return errors.Errorf("cursor: %w", ErrClosed)
	}
	return nil
}

func (cur *Cursor) inputTypeHandler() InputTypeHandler {
	if cur.InputTypeHandler != nil {
		return cur.InputTypeHandler
	}
	if cur.conn != nil {
		return cur.conn.InputTypeHandler
	}
	return nil
}

func (cur *Cursor) outputTypeHandler() OutputTypeHandler {
	if cur.OutputTypeHandler != nil {
		return cur.OutputTypeHandler
	}
	if cur.conn != nil {
		return cur.conn.OutputTypeHandler
	}
	return nil
}

func (cur *Cursor) newVariable(ctx context.Context, spec TypeSpec, numElements int) (*Variable, error) {
	if spec.IsArray && spec.NumElements > 0 {
		numElements = spec.NumElements
	}
	return newVariable(ctx, cur.env, cur.conn, cur, numElements, spec.Type, spec.Size, spec.IsArray, spec.ObjectType)
}

// Var returns a new variable of the requested type (see VarTypeByRequest).
// size 0 is the type's default, arraySize 0 is the cursor's ArraySize.
func (cur *Cursor) Var(ctx context.Context, req interface{}, size, arraySize int, inConverter, outConverter Converter) (*Variable, error) {
	if err := cur.check(); err != nil {
		return nil, err
	}
	spec, err := VarTypeByRequest(req)
	if err != nil {
		return nil, err
	}
	if size > 0 {
		spec.Size = size
	}
	if arraySize <= 0 {
		arraySize = cur.ArraySize
	}
	v, err := cur.newVariable(ctx, spec, arraySize)
	if err != nil {
		return nil, err
	}
	v.InConverter, v.OutConverter = inConverter, outConverter
	return v, nil
}

// ArrayVar returns a new PL/SQL table variable of the requested type.
// sizeOrValues is either the capacity (int), or the initial values (a slice), which also set the capacity.
func (cur *Cursor) ArrayVar(ctx context.Context, req interface{}, sizeOrValues interface{}, size int) (*Variable, error) {
	if err := cur.check(); err != nil {
		return nil, err
	}
	spec, err := VarTypeByRequest(req)
	if err != nil {
		return nil, err
	}
	if spec.IsArray {
		return nil, errors.Errorf("arrays of arrays are not supported: %w", ErrNotSupported)
	}
	if size > 0 {
		spec.Size = size
	}
	var values []interface{}
	numElements, ok := sizeOrValues.(int)
	if !ok {
		if values, ok = asList(sizeOrValues); !ok {
			return nil, errors.Errorf("expected a number of elements or a list, got %T: %w", sizeOrValues, ErrTypeMismatch)
		}
		numElements = len(values)
	}
	spec.IsArray, spec.NumElements = true, numElements
	v, err := cur.newVariable(ctx, spec, numElements)
	if err != nil {
		return nil, err
	}
	if values != nil {
		if err = v.SetArrayValue(values); err != nil {
			v.Close()
			return nil, err
		}
	}
	return v, nil
}

// NewVariableByValue returns a new variable fitting value, with numElements slots.
func (cur *Cursor) NewVariableByValue(ctx context.Context, value interface{}, numElements int) (*Variable, error) {
	if v, ok := value.(*Variable); ok {
		return v, nil
	}
	if handler := cur.inputTypeHandler(); handler != nil {
		if logger := cur.env.logger(ctx); debugEnabled(ctx, logger) {
			logger.Debug("inputTypeHandler", "type", fmt.Sprintf("%T", value), "numElements", numElements)
		}
		v, err := handler(cur, value, numElements)
		if err != nil {
			return nil, errors.Errorf("input type handler: %w", err)
		}
		if v != nil {
			return v, nil
		}
	}
	spec, err := VarTypeByValue(value)
	if err != nil {
		return nil, err
	}
	return cur.newVariable(ctx, spec, numElements)
}

// NewVariableByType returns a new variable of the requested type, with numElements slots.
func (cur *Cursor) NewVariableByType(ctx context.Context, req interface{}, numElements int) (*Variable, error) {
	spec, err := VarTypeByRequest(req)
	if err != nil {
		return nil, err
	}
	return cur.newVariable(ctx, spec, numElements)
}

// SetInputSizes pre-creates the positional bind variables by type request.
// A nil request leaves the position to be resolved by value.
func (cur *Cursor) SetInputSizes(ctx context.Context, reqs ...interface{}) error {
	if err := cur.check(); err != nil {
		return err
	}
	vars := make([]*Variable, len(reqs))
	for i, req := range reqs {
		if req == nil {
			continue
		}
		v, err := cur.NewVariableByType(ctx, req, cur.ArraySize)
		if err != nil {
			cur.closeOwned(vars)
			return errors.Errorf("%d: %w", i+1, err)
		}
		vars[i] = cur.adopt(v)
	}
	cur.closeOwned(cur.bindVars)
	cur.closeOwned(mapVars(cur.bindNamed))
	cur.bindVars, cur.bindNamed = vars, nil
	cur.setInputSizes = true
	return nil
}

// SetInputSizesNamed pre-creates the named bind variables by type request.
func (cur *Cursor) SetInputSizesNamed(ctx context.Context, reqs map[string]interface{}) error {
	if err := cur.check(); err != nil {
		return err
	}
	vars := make(map[string]*Variable, len(reqs))
	for _, name := range sortedKeys(reqs) {
		if reqs[name] == nil {
			continue
		}
		v, err := cur.NewVariableByType(ctx, reqs[name], cur.ArraySize)
		if err != nil {
			cur.closeOwned(mapVars(vars))
			return errors.Errorf("%s: %w", name, err)
		}
		vars[name] = cur.adopt(v)
	}
	cur.closeOwned(cur.bindVars)
	cur.closeOwned(mapVars(cur.bindNamed))
	cur.bindVars, cur.bindNamed = nil, vars
	cur.setInputSizes = true
	return nil
}

// Bind binds the values to the positional placeholders 1..len(args).
func (cur *Cursor) Bind(ctx context.Context, args ...interface{}) error {
	if err := cur.check(); err != nil {
		return err
	}
	if n := len(args); n > len(cur.bindVars) {
		cur.bindVars = append(cur.bindVars, make([]*Variable, n-len(cur.bindVars))...)
	}
	for i, value := range args {
		v, err := cur.bindValue(ctx, cur.bindVars[i], value)
		if err != nil {
			return errors.Errorf("bind %d: %w", i+1, err)
		}
		if v != cur.bindVars[i] {
			cur.release(cur.bindVars[i])
		}
		cur.bindVars[i] = v
		if err = v.Bind(ctx, cur.stmt, "", i+1); err != nil {
			return errors.Errorf("bind %d: %w", i+1, err)
		}
	}
	return nil
}

// BindNamed binds the values to the named placeholders.
func (cur *Cursor) BindNamed(ctx context.Context, args map[string]interface{}) error {
	if err := cur.check(); err != nil {
		return err
	}
	if cur.bindNamed == nil {
		cur.bindNamed = make(map[string]*Variable, len(args))
	}
	for _, name := range sortedKeys(args) {
		orig := cur.bindNamed[name]
		v, err := cur.bindValue(ctx, orig, args[name])
		if err != nil {
			return errors.Errorf("bind %s: %w", name, err)
		}
		if v != orig {
			cur.release(orig)
		}
		cur.bindNamed[name] = v
		if err = v.Bind(ctx, cur.stmt, name, 0); err != nil {
			return errors.Errorf("bind %s: %w", name, err)
		}
	}
	return nil
}

// adopt makes the cursor close v when it is replaced, or with the cursor.
func (cur *Cursor) adopt(v *Variable) *Variable {
	if cur.owned == nil {
		cur.owned = make(map[*Variable]struct{})
	}
	cur.owned[v] = struct{}{}
	return v
}

// owns reports whether v is closed by the cursor. Variables passed to Bind,
// or returned by Var, ArrayVar and NewVariableBy*, belong to the caller.
func (cur *Cursor) owns(v *Variable) bool {
	_, ok := cur.owned[v]
	return ok
}

// release closes v if the cursor owns it.
func (cur *Cursor) release(v *Variable) {
	if v == nil || !cur.owns(v) {
		return
	}
	delete(cur.owned, v)
	v.Close()
}

// bindValue returns the variable holding value: value itself if it is a *Variable,
// orig if the value fits into it, or a new variable.
func (cur *Cursor) bindValue(ctx context.Context, orig *Variable, value interface{}) (*Variable, error) {
	if v, ok := value.(*Variable); ok {
		return v, nil
	}
	numElements := cur.ArraySize
	if orig != nil {
		if cur.setInputSizes {
			return orig, orig.SetValue(0, value)
		}
		if fits(orig, value) {
			if err := orig.SetValue(0, value); err == nil {
				return orig, nil
			}
		}
		numElements = orig.allocatedElements
	}
	v, err := cur.NewVariableByValue(ctx, value, numElements)
	if err != nil {
		return nil, err
	}
	cur.adopt(v)
	if err = v.SetValue(0, value); err != nil {
		cur.release(v)
		return nil, err
	}
	return v, nil
}

// fits reports whether value resolves to the type of v (nil fits everything).
func fits(v *Variable, value interface{}) bool {
	if v.closed {
		return false
	}
	if isNull(value) {
		return !v.isArray
	}
	spec, err := VarTypeByValue(value)
	if err != nil || spec.Type != v.typ || spec.IsArray != v.isArray || spec.ObjectType != v.objectType {
		return false
	}
	return !spec.IsArray || spec.NumElements <= v.allocatedElements
}

// BindVars returns the positional bind variables.
func (cur *Cursor) BindVars() []*Variable { return append([]*Variable(nil), cur.bindVars...) }

// BindVarsNamed returns the named bind variables.
func (cur *Cursor) BindVarsNamed() map[string]*Variable {
	m := make(map[string]*Variable, len(cur.bindNamed))
	for k, v := range cur.bindNamed {
		m[k] = v
	}
	return m
}

// FetchVars returns the variables defined for the query columns.
func (cur *Cursor) FetchVars() []*Variable { return append([]*Variable(nil), cur.fetchVars...) }

// Execute the statement numIters times, and define the query columns, if any.
func (cur *Cursor) Execute(ctx context.Context, numIters int) error {
	if err := cur.check(); err != nil {
		return err
	}
	if numIters < 1 {
		numIters = 1
	}
	if err := cur.stmt.Execute(ctx, numIters); err != nil {
		return checkError(err, "execute")
	}
	cur.setInputSizes = false
	cur.rowCount, cur.bufferRowCount = 0, 0
	n, err := cur.stmt.NumColumns()
	if err != nil {
		return checkError(err, "numColumns")
	}
	if n > 0 && len(cur.fetchVars) == 0 {
		return cur.Define(ctx)
	}
	return nil
}

// Fetch fetches the next at most FetchArraySize rows into the defined variables,
// and returns the number of rows fetched (0 at the end).
func (cur *Cursor) Fetch(ctx context.Context) (int, error) {
	if err := cur.check(); err != nil {
		return 0, err
	}
	if len(cur.fetchVars) == 0 {
		if err := cur.Define(ctx); err != nil {
			return 0, err
		}
	}
	n, err := cur.stmt.Fetch(ctx, cur.FetchArraySize)
	if err != nil {
		return 0, checkError(err, "fetch")
	}
	cur.bufferRowCount = n
	cur.rowCount += n
	return n, nil
}

// Row returns the values of the i-th row of the last Fetch.
func (cur *Cursor) Row(i int) ([]interface{}, error) {
	if err := cur.check(); err != nil {
		return nil, err
	}
	if i < 0 || i >= cur.bufferRowCount {
		return nil, errors.Errorf("row %d of %d: %w", i, cur.bufferRowCount, ErrIndexOutOfRange)
	}
	row := make([]interface{}, len(cur.fetchVars))
	for j, v := range cur.fetchVars {
		var err error
		if row[j], err = v.GetValue(i); err != nil {
			return row, errors.Errorf("column %d: %w", j+1, err)
		}
	}
	return row, nil
}

// Close the variables created by the cursor, and the statement it owns.
func (cur *Cursor) Close() error {
	if cur == nil || cur.closed {
		return nil
	}
	cur.closed = true
	for v := range cur.owned {
		v.Close()
	}
	cur.owned = nil
	cur.bindVars, cur.bindNamed, cur.fetchVars = nil, nil, nil
	if cur.ownsStmt && cur.stmt != nil {
		return checkError(cur.stmt.Close(), "close")
	}
	return nil
}

// closeOwned closes those of vars the cursor owns.
func (cur *Cursor) closeOwned(vars []*Variable) {
	for _, v := range vars {
		cur.release(v)
	}
}

func mapVars(m map[string]*Variable) []*Variable {
	vars := make([]*Variable, 0, len(m))
	for _, k := range sortedKeys(m) {
		vars = append(vars, m[k])
	}
	return vars
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
