// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"context"

	errors "golang.org/x/xerrors"

	"github.com/oracle/python-cx-Oracle-sub001/native"
)

// Define creates a variable for every query column, through the output type handler
// when there is one, and defines it on the statement.
func (cur *Cursor) Define(ctx context.Context) error {
	if err := cur.check(); err != nil {
		return err
	}
	n, err := cur.stmt.NumColumns()
	if err != nil {
		return checkError(err, "numColumns")
	}
	cur.closeOwned(cur.fetchVars)
	cur.fetchVars = make([]*Variable, 0, n)
	for pos := 1; pos <= n; pos++ {
		col, err := cur.stmt.Column(pos)
		if err != nil {
			return checkError(err, "queryInfo")
		}
		v, err := cur.defineColumn(ctx, col)
		if err != nil {
			return errors.Errorf("column %d (%s): %w", pos, col.Name, err)
		}
		cur.fetchVars = append(cur.fetchVars, v)
		if err = v.define(ctx, cur.stmt, pos); err != nil {
			return errors.Errorf("define %d (%s): %w", pos, col.Name, err)
		}
	}
	return nil
}

func (cur *Cursor) defineColumn(ctx context.Context, col native.ColumnInfo) (*Variable, error) {
	if handler := cur.outputTypeHandler(); handler != nil {
		if logger := cur.env.logger(ctx); debugEnabled(ctx, logger) {
			logger.Debug("outputTypeHandler", "column", col.Name, "type", col.OracleType.String(),
				"precision", col.Precision, "scale", col.Scale, "numElements", cur.FetchArraySize)
		}
		v, err := handler(cur, col, cur.FetchArraySize)
		if err != nil {
			return nil, errors.Errorf("output type handler: %w", err)
		}
		if v != nil {
			cur.adopt(v)
			if v.allocatedElements < cur.FetchArraySize {
				cur.release(v)
				return nil, errors.Errorf("%s has %d elements, fetch array size is %d: %w",
					v, v.allocatedElements, cur.FetchArraySize, ErrArrayTooSmall)
			}
			return v, nil
		}
	}
	spec, err := VarTypeByColumn(cur.env, col)
	if err != nil {
		return nil, err
	}
	if spec.Type == ObjectVarType {
		if cur.conn == nil {
			return nil, errors.Errorf("object column without connection: %w", ErrNotSupported)
		}
		if spec.ObjectType, err = cur.conn.objectTypeFromInfo(col.ObjectType); err != nil {
			return nil, err
		}
	}
	v, err := newVariable(ctx, cur.env, cur.conn, cur, cur.FetchArraySize, spec.Type, spec.Size, false, spec.ObjectType)
	if err != nil {
		return nil, err
	}
	return cur.adopt(v), nil
}
