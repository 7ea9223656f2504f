// Copyright 2019, 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-logfmt/logfmt"
	"golang.org/x/exp/slog"
	errors "golang.org/x/xerrors"
)

const (
	DefaultEncoding         = "AL32UTF8"
	DefaultNEncoding        = "AL16UTF16"
	DefaultMaxBytesPerChar  = 4
	DefaultNMaxBytesPerChar = 2
	// DefaultSafeDigits is the number of decimal digits that always fit into an int64.
	DefaultSafeDigits = 18
	// DefaultFetchArraySize is the number of rows fetched in one round trip.
	DefaultFetchArraySize = 100
)

// EnvParams holds the parameters of an Environment.
type EnvParams struct {
	// Logger is used when the context carries no logger.
	Logger *slog.Logger
	// Timezone is the zone of DATE and TIMESTAMP values. Defaults to time.Local.
	Timezone *time.Location
	// Encoding is the database character set name (AL32UTF8, WE8ISO8859P1, ...).
	Encoding string
	// NEncoding is the national character set name.
	NEncoding string
	// MaxBytesPerChar is the worst case byte length of one character in Encoding.
	MaxBytesPerChar int
	// NMaxBytesPerChar is the same for NEncoding.
	NMaxBytesPerChar int
	// SafeDigits is the largest NUMBER precision routed to int64 (scale 0 only).
	SafeDigits int
	// FetchArraySize is the default fetch array size of cursors.
	FetchArraySize int
}

// DefaultEnvParams returns the default parameters.
func DefaultEnvParams() EnvParams {
	return EnvParams{
		Encoding:         DefaultEncoding,
		NEncoding:        DefaultNEncoding,
		MaxBytesPerChar:  DefaultMaxBytesPerChar,
		NMaxBytesPerChar: DefaultNMaxBytesPerChar,
		SafeDigits:       DefaultSafeDigits,
		Timezone:         time.Local,
		FetchArraySize:   DefaultFetchArraySize,
	}
}

// String returns the logfmt representation of the parameters, ParseEnvParams reads it back.
func (P EnvParams) String() string {
	q := make(url.Values, 8)
	q.Set("encoding", P.Encoding)
	q.Set("nencoding", P.NEncoding)
	q.Set("maxBytesPerChar", strconv.Itoa(P.MaxBytesPerChar))
	q.Set("nmaxBytesPerChar", strconv.Itoa(P.NMaxBytesPerChar))
	q.Set("safeDigits", strconv.Itoa(P.SafeDigits))
	q.Set("fetchArraySize", strconv.Itoa(P.FetchArraySize))
	s := "local"
	if tz := P.Timezone; tz != nil && tz != time.Local {
		s = tz.String()
	}
	q.Set("timezone", s)

	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var buf strings.Builder
	enc := logfmt.NewEncoder(&buf)
	var firstErr error
	for _, k := range keys {
		if err := enc.EncodeKeyval(k, q.Get(k)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := enc.EndRecord(); err != nil && firstErr == nil {
		firstErr = err
	}
	if firstErr != nil {
		fmt.Fprintf(&buf, "\tERROR: %+v", firstErr)
	}
	return strings.TrimSpace(buf.String())
}

// ParseEnvParams parses a logfmt parameter block, such as
//
//	encoding=WE8ISO8859P1 safeDigits=9 timezone=Europe/Budapest
//
// Missing keys keep their defaults.
func ParseEnvParams(s string) (EnvParams, error) {
	P := DefaultEnvParams()
	q := make(url.Values)
	d := logfmt.NewDecoder(strings.NewReader(s))
	for d.ScanRecord() {
		for d.ScanKeyval() {
			q.Set(string(d.Key()), string(d.Value()))
		}
	}
	if err := d.Err(); err != nil {
		return P, errors.Errorf("parsing parameters %q: %w", s, err)
	}

	for _, task := range []struct {
		Dest *string
		Key  string
	}{
		{&P.Encoding, "encoding"},
		{&P.NEncoding, "nencoding"},
	} {
		if v := q.Get(task.Key); v != "" {
			*task.Dest = strings.ToUpper(v)
		}
	}
	for _, task := range []struct {
		Dest *int
		Key  string
	}{
		{&P.MaxBytesPerChar, "maxBytesPerChar"},
		{&P.NMaxBytesPerChar, "nmaxBytesPerChar"},
		{&P.SafeDigits, "safeDigits"},
		{&P.FetchArraySize, "fetchArraySize"},
		{&P.FetchArraySize, "arraysize"},
	} {
		s := q.Get(task.Key)
		if s == "" {
			continue
		}
		var err error
		if *task.Dest, err = strconv.Atoi(s); err != nil {
			return P, errors.Errorf("%s: %w", task.Key+"="+s, err)
		}
	}

	if tz := q.Get("timezone"); tz != "" {
		var err error
		if P.Timezone, err = resolveTimezone(tz); err != nil {
			return P, errors.Errorf("timezone=%s: %w", tz, err)
		}
	}
	return P, P.validate()
}

func (P EnvParams) validate() error {
	if P.MaxBytesPerChar < 1 || P.NMaxBytesPerChar < 1 {
		return errors.Errorf("bytes per char must be positive (got %d and %d)", P.MaxBytesPerChar, P.NMaxBytesPerChar)
	}
	// an int64 holds every 18 digit number, but not every 19 digit one
	if P.SafeDigits < 1 || P.SafeDigits > 18 {
		return errors.Errorf("safeDigits=%d must be between 1 and 18", P.SafeDigits)
	}
	if P.FetchArraySize < 1 {
		return errors.Errorf("fetchArraySize=%d must be positive", P.FetchArraySize)
	}
	return nil
}
