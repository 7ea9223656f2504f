// Copyright 2017, 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-logfmt/logfmt"
	"github.com/oklog/ulid/v2"
	"golang.org/x/exp/slog"
)

type logCtxKey struct{}

func getLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if lgr, ok := ctx.Value(logCtxKey{}).(*slog.Logger); ok {
			return lgr
		}
	}
	return nil
}

// ContextWithLogger returns a context with the given logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, logCtxKey{}, logger)
}

func debugEnabled(ctx context.Context, logger *slog.Logger) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	return logger != nil && logger.Enabled(ctx, slog.LevelDebug)
}

// newVarID returns a new, time ordered id for a variable's log lines.
func newVarID() ulid.ULID { return ulid.Make() }

// NewLogfmtHandler returns a slog.Handler writing logfmt records to w.
func NewLogfmtHandler(w io.Writer, level slog.Leveler) slog.Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &logfmtHandler{w: w, level: level, mu: new(sync.Mutex)}
}

type logfmtHandler struct {
	w      io.Writer
	level  slog.Leveler
	mu     *sync.Mutex
	prefix string
	attrs  []interface{}
}

func (h *logfmtHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *logfmtHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	enc := logfmt.NewEncoder(&buf)
	kv := make([]interface{}, 0, 6+len(h.attrs)+2*r.NumAttrs())
	if !r.Time.IsZero() {
		kv = append(kv, "time", r.Time.Format(time.RFC3339Nano))
	}
	kv = append(kv, "level", r.Level.String(), "msg", r.Message)
	kv = append(kv, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		kv = appendAttr(kv, h.prefix, a)
		return true
	})
	if err := enc.EncodeKeyvals(kv...); err != nil {
		return err
	}
	if err := enc.EndRecord(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func appendAttr(kv []interface{}, prefix string, a slog.Attr) []interface{} {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, g := range v.Group() {
			kv = appendAttr(kv, p, g)
		}
		return kv
	}
	if a.Key == "" {
		return kv
	}
	switch v.Kind() {
	case slog.KindTime:
		return append(kv, prefix+a.Key, v.Time().Format(time.RFC3339Nano))
	case slog.KindDuration:
		return append(kv, prefix+a.Key, v.Duration().String())
	case slog.KindAny:
		x := v.Any()
		switch x.(type) {
		case nil, error, fmt.Stringer, string, []byte:
		default:
			x = fmt.Sprintf("%v", x)
		}
		return append(kv, prefix+a.Key, x)
	default:
		return append(kv, prefix+a.Key, v.Any())
	}
}

func (h *logfmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append(make([]interface{}, 0, len(h.attrs)+2*len(attrs)), h.attrs...)
	for _, a := range attrs {
		h2.attrs = appendAttr(h2.attrs, h.prefix, a)
	}
	return &h2
}

func (h *logfmtHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.prefix += name + "."
	return &h2
}
