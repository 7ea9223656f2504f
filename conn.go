// Copyright 2019, 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	errors "golang.org/x/xerrors"

	"github.com/oracle/python-cx-Oracle-sub001/native"
)

// Conn is a connection of the native client, the factory of the handles
// (statements, LOBs, objects) variables need.
//
// A Conn must not be used concurrently, except for GetObjectType.
type Conn struct {
	env    *Environment
	native native.Conn

	// InputTypeHandler is consulted for cursors which have none.
	InputTypeHandler InputTypeHandler
	// OutputTypeHandler is consulted for cursors which have none.
	OutputTypeHandler OutputTypeHandler

	objTypes   sync.Map // FullName -> *ObjectType
	objTypesSF singleflight.Group

	mu     sync.Mutex
	closed bool
}

// NewConn wraps a native connection. A nil env means DefaultEnvironment.
func NewConn(env *Environment, nc native.Conn) *Conn {
	if env == nil {
		env = DefaultEnvironment()
	}
	return &Conn{env: env, native: nc}
}

// Environment returns the environment of the connection.
func (c *Conn) Environment() *Environment { return c.env }

// Native returns the wrapped native connection.
func (c *Conn) Native() native.Conn { return c.native }

func (c *Conn) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.native == nil {
		return errors.Errorf("connection: %w", ErrClosed)
	}
	return nil
}

// NewCursor allocates a new statement and returns a Cursor owning it.
func (c *Conn) NewCursor(ctx context.Context) (*Cursor, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	st, err := c.native.NewStatement(ctx)
	if err != nil {
		return nil, checkError(err, "newStatement")
	}
	return newCursor(c, st, true), nil
}

// newChildCursor returns a cursor for a REF CURSOR slot: it owns its statement,
// which is executed by the server, so it is ready to Define and Fetch.
func (c *Conn) newChildCursor(ctx context.Context) (*Cursor, error) {
	cur, err := c.NewCursor(ctx)
	if err != nil {
		return nil, err
	}
	cur.isChild = true
	return cur, nil
}

// GetObjectType returns the ObjectType of the name (SCHEMA.NAME or NAME).
//
// Types are cached on the connection, and concurrent lookups of the same name
// are collapsed into one.
func (c *Conn) GetObjectType(ctx context.Context, name string) (*ObjectType, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	key := strings.ToUpper(name)
	if ot, ok := c.objTypes.Load(key); ok {
		return ot.(*ObjectType), nil
	}
	x, err, shared := c.objTypesSF.Do(key, func() (interface{}, error) {
		if ot, ok := c.objTypes.Load(key); ok {
			return ot, nil
		}
		info, err := c.native.ObjectType(ctx, name)
		if err != nil {
			return nil, checkError(err, "getObjectType")
		}
		ot, err := c.objectTypeFromInfo(info)
		if err != nil {
			return nil, err
		}
		c.objTypes.Store(key, ot)
		return ot, nil
	})
	if logger := c.env.logger(ctx); debugEnabled(ctx, logger) {
		logger.Debug("getObjectType", "name", name, "shared", shared, "error", err)
	}
	if err != nil {
		return nil, errors.Errorf("%s: %w", name, err)
	}
	return x.(*ObjectType), nil
}

// objectTypeFromInfo returns the cached ObjectType of info, building it (and its sub-types) if needed.
func (c *Conn) objectTypeFromInfo(info *native.ObjectTypeInfo) (*ObjectType, error) {
	return c.buildObjectType(info, make(map[string]*ObjectType))
}

func (c *Conn) buildObjectType(info *native.ObjectTypeInfo, seen map[string]*ObjectType) (*ObjectType, error) {
	if info == nil {
		return nil, errors.Errorf("nil object type: %w", ErrNotSupported)
	}
	key := strings.ToUpper(info.FullName())
	if ot, ok := seen[key]; ok {
		return ot, nil
	}
	if ot, ok := c.objTypes.Load(key); ok {
		return ot.(*ObjectType), nil
	}
	ot := &ObjectType{conn: c, info: info,
		Schema: info.Schema, Name: info.Name, IsCollection: info.IsCollection,
		attrIndex: make(map[string]int, len(info.Attributes)),
	}
	seen[key] = ot
	ot.Attributes = make([]ObjectAttribute, len(info.Attributes))
	for i := range info.Attributes {
		a, err := c.newObjectAttribute(info.Attributes[i], seen)
		if err != nil {
			return nil, errors.Errorf("%s.%s: %w", ot.FullName(), info.Attributes[i].Name, err)
		}
		ot.Attributes[i] = a
		ot.attrIndex[strings.ToUpper(a.Name)] = i
	}
	if info.IsCollection {
		if info.Element == nil {
			return nil, errors.Errorf("collection %s without element type: %w", ot.FullName(), ErrNotSupported)
		}
		a, err := c.newObjectAttribute(*info.Element, seen)
		if err != nil {
			return nil, errors.Errorf("%s element: %w", ot.FullName(), err)
		}
		ot.Element = &a
	}
	c.objTypes.Store(key, ot)
	return ot, nil
}

func (c *Conn) newObjectAttribute(info native.AttrInfo, seen map[string]*ObjectType) (ObjectAttribute, error) {
	a := ObjectAttribute{info: info, Name: info.Name, OracleType: info.OracleType}
	if info.ObjectType != nil {
		sub, err := c.buildObjectType(info.ObjectType, seen)
		if err != nil {
			return a, err
		}
		a.ObjectType = sub
	}
	spec, err := VarTypeByColumn(c.env, native.ColumnInfo{
		Name: info.Name, OracleType: info.OracleType, Size: info.Size,
		Precision: info.Precision, Scale: info.Scale, CharsetForm: info.CharsetForm,
		ObjectType: info.ObjectType,
	})
	if err != nil {
		return a, err
	}
	a.VarType = spec.Type
	return a, nil
}

// Close the connection and the native connection.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.objTypes.Range(func(k, _ interface{}) bool { c.objTypes.Delete(k); return true })
	if c.native == nil {
		return nil
	}
	return checkError(c.native.Close(), "close")
}
