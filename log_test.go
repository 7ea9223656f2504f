// Copyright 2017, 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/go-logfmt/logfmt"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/exp/slog"
	errors "golang.org/x/xerrors"
)

func decodeLogfmt(t *testing.T, b []byte) []map[string]string {
	t.Helper()
	var records []map[string]string
	d := logfmt.NewDecoder(bytes.NewReader(b))
	for d.ScanRecord() {
		m := make(map[string]string)
		for d.ScanKeyval() {
			m[string(d.Key())] = string(d.Value())
		}
		delete(m, "time")
		records = append(records, m)
	}
	if err := d.Err(); err != nil {
		t.Fatalf("%s: %+v", b, err)
	}
	return records
}

func TestLogfmtHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewLogfmtHandler(&buf, slog.LevelInfo))
	logger.Debug("hidden")
	logger.With("id", 1).WithGroup("var").Info("resize",
		"size", 8, "took", 1500*time.Millisecond,
		slog.Group("buf", "elements", 3),
		"error", errors.New("bad thing"),
		"spec", struct{ A, B int }{1, 2},
	)
	logger.WithGroup("").Warn("plain", "", "skipped")

	if d := cmp.Diff([]map[string]string{
		{
			"level": "INFO", "msg": "resize", "id": "1",
			"var.size": "8", "var.took": "1.5s", "var.buf.elements": "3",
			"var.error": "bad thing", "var.spec": "{1 2}",
		},
		{"level": "WARN", "msg": "plain"},
	}, decodeLogfmt(t, buf.Bytes())); d != "" {
		t.Error(d)
	}
}

func TestContextWithLogger(t *testing.T) {
	var envBuf, ctxBuf bytes.Buffer
	envLogger := slog.New(NewLogfmtHandler(&envBuf, slog.LevelDebug))
	ctxLogger := slog.New(NewLogfmtHandler(&ctxBuf, nil))
	env, err := NewEnvironment(EnvParams{Logger: envLogger, SafeDigits: DefaultSafeDigits,
		MaxBytesPerChar: 4, NMaxBytesPerChar: 2, FetchArraySize: 1})
	if err != nil {
		t.Fatal(err)
	}
	if getLogger(context.Background()) != nil {
		t.Error("empty context has a logger")
	}
	if got := env.logger(context.Background()); got != envLogger {
		t.Errorf("got %p, wanted the environment's %p", got, envLogger)
	}
	ctx := ContextWithLogger(context.Background(), ctxLogger)
	if got := env.logger(ctx); got != ctxLogger {
		t.Errorf("got %p, wanted the context's %p", got, ctxLogger)
	}
	if !debugEnabled(context.Background(), envLogger) {
		t.Error("debug is not enabled on the environment's logger")
	}
	if debugEnabled(ctx, ctxLogger) || debugEnabled(ctx, nil) {
		t.Error("debug is enabled on an info logger")
	}
}
