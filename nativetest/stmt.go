// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package nativetest

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/oracle/python-cx-Oracle-sub001/native"
)

var _ native.Statement = (*Stmt)(nil)

// BindCall records one BindByName, BindByPos or DefineByPos call.
type BindCall struct {
	Name   string
	Bind   native.Bind
	Pos    int
	Define bool
}

// Result is a query result a statement serves.
//
// Row values are in the representation of the column:
// string or []byte, int64, float64, bool, time.Time, native.IntervalDS,
// native.IntervalYM, string or []byte for LOBs, native.Object, and Result for REF CURSORs.
type Result struct {
	Columns []native.ColumnInfo
	Rows    [][]interface{}
}

// Stmt is an in-memory statement.
type Stmt struct {
	conn    *Conn
	binds   map[string]native.Bind
	defines map[int]native.Bind
	calls   []BindCall
	result  Result

	// FailBind, when set, is returned by the bind and define calls.
	FailBind error
	// ReturnCodes are recorded in the fetched slots, keyed by row and 1-based column.
	ReturnCodes map[[2]int]uint16
	// OnExecute is called by Execute, to play the server's part, such as setting OUT binds.
	OnExecute func(st *Stmt) error

	ID         ulid.ULID
	next       int
	executions int
	closed     bool
}

// NewStmt returns a statement which is not tied to a connection.
func NewStmt() *Stmt {
	return &Stmt{ID: ulid.Make(), binds: make(map[string]native.Bind), defines: make(map[int]native.Bind)}
}

func (st *Stmt) String() string { return "nativetest.Stmt(" + st.ID.String() + ")" }

// SetResult sets the rows the statement serves.
func (st *Stmt) SetResult(res Result) {
	st.result, st.next = res, 0
}

// Calls returns the bind and define calls so far.
func (st *Stmt) Calls() []BindCall { return append([]BindCall(nil), st.calls...) }

// Bound returns the last bind of the named placeholder.
func (st *Stmt) Bound(name string) (native.Bind, bool) {
	b, ok := st.binds[name]
	return b, ok
}

// BoundPos returns the last bind of the positional placeholder.
func (st *Stmt) BoundPos(pos int) (native.Bind, bool) {
	b, ok := st.binds["#"+strconv.Itoa(pos)]
	return b, ok
}

// Defined returns the define of the 1-based column.
func (st *Stmt) Defined(pos int) (native.Bind, bool) {
	b, ok := st.defines[pos]
	return b, ok
}

// Executions returns the number of successful Execute calls.
func (st *Stmt) Executions() int { return st.executions }

// Closed reports whether Close has been called.
func (st *Stmt) Closed() bool { return st.closed }

func (st *Stmt) check(fn string) error {
	if st.closed {
		return &native.Error{Code: 1001, Fn: fn, Message: "invalid cursor"}
	}
	return nil
}

func (st *Stmt) bind(key string, call BindCall) error {
	fn := "dpiStmt_bindByName"
	if call.Define {
		fn = "dpiStmt_define"
	} else if call.Name == "" {
		fn = "dpiStmt_bindByPos"
	}
	if err := st.check(fn); err != nil {
		return err
	}
	if st.FailBind != nil {
		return st.FailBind
	}
	if call.Bind.Buffer.Freed() {
		return &native.Error{Code: 22, Fn: fn, Message: "buffer already released"}
	}
	st.calls = append(st.calls, call)
	if call.Define {
		st.defines[call.Pos] = call.Bind
	} else {
		st.binds[key] = call.Bind
	}
	return nil
}

func (st *Stmt) BindByName(name string, b native.Bind) error {
	return st.bind(name, BindCall{Name: name, Bind: b})
}

func (st *Stmt) BindByPos(pos int, b native.Bind) error {
	return st.bind("#"+strconv.Itoa(pos), BindCall{Pos: pos, Bind: b})
}

func (st *Stmt) DefineByPos(pos int, b native.Bind) error {
	if pos < 1 || pos > len(st.result.Columns) {
		return &native.Error{Code: 1007, Fn: "dpiStmt_define", Message: fmt.Sprintf("variable %d not in select list", pos)}
	}
	return st.bind("", BindCall{Pos: pos, Bind: b, Define: true})
}

func (st *Stmt) NumColumns() (int, error) {
	if err := st.check("dpiStmt_getNumQueryColumns"); err != nil {
		return 0, err
	}
	return len(st.result.Columns), nil
}

func (st *Stmt) Column(pos int) (native.ColumnInfo, error) {
	if err := st.check("dpiStmt_getQueryInfo"); err != nil {
		return native.ColumnInfo{}, err
	}
	if pos < 1 || pos > len(st.result.Columns) {
		return native.ColumnInfo{}, &native.Error{Code: 1007, Fn: "dpiStmt_getQueryInfo", Message: fmt.Sprintf("variable %d not in select list", pos)}
	}
	return st.result.Columns[pos-1], nil
}

// Execute fails if any bound buffer has been released, then calls OnExecute.
func (st *Stmt) Execute(ctx context.Context, numIters int) error {
	if err := st.check("dpiStmt_execute"); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for k, b := range st.binds {
		if b.Buffer.Freed() {
			return &native.Error{Code: 22, Fn: "dpiStmt_execute", Message: "placeholder " + k + " is bound to a released buffer"}
		}
	}
	if st.OnExecute != nil {
		if err := st.OnExecute(st); err != nil {
			return err
		}
	}
	st.executions++
	st.next = 0
	return nil
}

// Fetch writes the next at most maxRows rows into the defined buffers.
func (st *Stmt) Fetch(ctx context.Context, maxRows int) (int, error) {
	if err := st.check("dpiStmt_fetchRows"); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	for j := range st.result.Columns {
		b, ok := st.defines[j+1]
		if !ok {
			return 0, &native.Error{Code: 1007, Fn: "dpiStmt_fetchRows", Message: fmt.Sprintf("column %d is not defined", j+1)}
		}
		if b.Buffer.Freed() {
			return 0, &native.Error{Code: 22, Fn: "dpiStmt_fetchRows", Message: fmt.Sprintf("column %d is defined with a released buffer", j+1)}
		}
		if n := b.Buffer.NumElements(); n < maxRows {
			maxRows = n
		}
	}
	n := 0
	for ; n < maxRows && st.next < len(st.result.Rows); n, st.next = n+1, st.next+1 {
		row := st.result.Rows[st.next]
		for j := range st.result.Columns {
			var value interface{}
			if j < len(row) {
				value = row[j]
			}
			b := st.defines[j+1]
			if err := Put(b, n, value); err != nil {
				return n, err
			}
			if code, ok := st.ReturnCodes[[2]int{st.next, j + 1}]; ok {
				_ = b.Buffer.SetReturnCode(n, code)
			}
		}
	}
	return n, nil
}

func (st *Stmt) Close() error {
	st.closed = true
	return nil
}

// Put writes value into the slot at pos of b, as the client does on fetch or for OUT binds.
// Text longer than the slot is truncated, with return code 1406.
func Put(b native.Bind, pos int, value interface{}) error {
	buf := b.Buffer
	if buf.Freed() {
		return native.ErrFreed
	}
	if err := buf.SetReturnCode(pos, 0); err != nil {
		return err
	}
	if value == nil {
		return buf.SetNull(pos, true)
	}
	mismatch := func() error {
		return &native.Error{Code: 932, Fn: "dpiVar_setValue",
			Message: fmt.Sprintf("inconsistent datatypes: expected %s got %T", b.NativeType, value)}
	}
	var p []byte
	var truncated bool
	switch b.NativeType {
	case native.NativeBytes:
		switch x := value.(type) {
		case string:
			p = []byte(x)
		case []byte:
			p = x
		case int64:
			p = strconv.AppendInt(nil, x, 10)
		case int:
			p = strconv.AppendInt(nil, int64(x), 10)
		case float64:
			p = strconv.AppendFloat(nil, x, 'g', -1, 64)
		default:
			return mismatch()
		}
		if len(p) > buf.ElementSize() {
			p, truncated = p[:buf.ElementSize()], true
		}
	case native.NativeInt64:
		var i int64
		switch x := value.(type) {
		case int64:
			i = x
		case int:
			i = int64(x)
		default:
			return mismatch()
		}
		p = make([]byte, native.SizeInt64)
		native.PutInt64(p, i)
	case native.NativeDouble:
		var f float64
		switch x := value.(type) {
		case float64:
			f = x
		case int64:
			f = float64(x)
		default:
			return mismatch()
		}
		p = make([]byte, native.SizeDouble)
		native.PutDouble(p, f)
	case native.NativeBoolean:
		v, ok := value.(bool)
		if !ok {
			return mismatch()
		}
		p = make([]byte, native.SizeBoolean)
		native.PutBool(p, v)
	case native.NativeTimestamp:
		t, ok := value.(time.Time)
		if !ok {
			return mismatch()
		}
		ts := native.TimestampFromTime(t)
		switch b.OracleType {
		case native.TypeDate:
			p = make([]byte, native.SizeDate)
			if err := native.PutDate(p, ts); err != nil {
				return err
			}
		case native.TypeTimestampTZ:
			p = make([]byte, native.SizeTimestampTZ)
			if err := native.PutTimestamp(p, ts, true); err != nil {
				return err
			}
		default:
			p = make([]byte, native.SizeTimestamp)
			if err := native.PutTimestamp(p, ts, false); err != nil {
				return err
			}
		}
	case native.NativeIntervalDS:
		iv, ok := value.(native.IntervalDS)
		if !ok {
			return mismatch()
		}
		p = make([]byte, native.SizeIntervalDS)
		native.PutIntervalDS(p, iv)
	case native.NativeIntervalYM:
		iv, ok := value.(native.IntervalYM)
		if !ok {
			return mismatch()
		}
		p = make([]byte, native.SizeIntervalYM)
		native.PutIntervalYM(p, iv)

	case native.NativeLob:
		lob, ok := buf.Handle(pos).(*Lob)
		if !ok {
			return &native.Error{Code: 22275, Fn: "dpiVar_setFromLob", Message: "invalid LOB locator specified"}
		}
		switch x := value.(type) {
		case string:
			lob.data = []byte(x)
		case []byte:
			lob.data = append([]byte(nil), x...)
		default:
			return mismatch()
		}
		return buf.SetNull(pos, false)
	case native.NativeObject:
		obj, ok := value.(native.Object)
		if !ok {
			return mismatch()
		}
		if err := buf.SetHandle(pos, obj); err != nil {
			return err
		}
		return buf.SetNull(pos, false)
	case native.NativeStmt:
		res, ok := value.(Result)
		if !ok {
			return mismatch()
		}
		child, ok := buf.Handle(pos).(*Stmt)
		if !ok {
			return &native.Error{Code: 1001, Fn: "dpiVar_setFromStmt", Message: "invalid cursor"}
		}
		child.SetResult(res)
		return buf.SetNull(pos, false)
	default:
		return mismatch()
	}
	if err := buf.SetBytes(pos, p); err != nil {
		return err
	}
	if truncated {
		return buf.SetReturnCode(pos, 1406)
	}
	return nil
}

// Get returns the raw bytes of the slot at pos of b, nil for null.
func Get(b native.Bind, pos int) ([]byte, error) {
	if b.Buffer.IsNull(pos) {
		return nil, nil
	}
	return b.Buffer.Bytes(pos)
}
