// Copyright 2020, 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package num_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/oracle/python-cx-Oracle-sub001/num"
)

func TestOCINumRoundTrip(t *testing.T) {
	for _, s := range []string{
		"0", "1", "-1", "5", "-5", "10", "99", "100", "123", "-123",
		"3.14", "-3.14", "0.05", "-0.05", "0.001", "1000000",
		"12345678901234567890", "-9223372036854775808", "9223372036854775807",
		"0.0000000001", "123.456", "1234567890123456789012345678901234567890",
	} {
		var n num.OCINum
		if err := n.SetString(s); err != nil {
			t.Errorf("SetString(%q): %+v", s, err)
			continue
		}
		if got := n.String(); got != s {
			t.Errorf("%q: got %q (% x)", s, got, []byte(n))
		}
	}
}

func TestOCINumEncoding(t *testing.T) {
	for s, want := range map[string][]byte{
		"0":   {0x80},
		"1":   {0xc1, 2},
		"5":   {0xc1, 6},
		"-5":  {0x3e, 96, 102},
		"100": {0xc2, 2},
		"123": {0xc2, 2, 24},
		"0.5": {0xc0, 51},
	} {
		var n num.OCINum
		if err := n.SetString(s); err != nil {
			t.Fatalf("%q: %+v", s, err)
		}
		if d := cmp.Diff(want, []byte(n)); d != "" {
			t.Errorf("%q: %s", s, d)
		}
	}
}

func TestOCINumNormalize(t *testing.T) {
	for in, want := range map[string]string{
		" 007 ":   "7",
		"+1.50":   "1.5",
		"-0":      "0",
		"1e3":     "1000",
		"1.25E-2": "0.0125",
		"":        "0",
	} {
		var n num.OCINum
		if err := n.SetString(in); err != nil {
			t.Fatalf("%q: %+v", in, err)
		}
		if got := n.String(); got != want {
			t.Errorf("%q: got %q, wanted %q", in, got, want)
		}
	}
}

func TestOCINumErrors(t *testing.T) {
	for in, want := range map[string]error{
		"1x":                    num.ErrBadCharacter,
		"-":                     num.ErrNoDigit,
		"1.2.3":                 num.ErrBadCharacter,
		strings.Repeat("7", 41): num.ErrTooLong,
	} {
		var n num.OCINum
		if err := n.SetString(in); !errors.Is(err, want) {
			t.Errorf("%q: got %v, wanted %v", in, err, want)
		}
	}
}

func TestOCINumInt64(t *testing.T) {
	var n num.OCINum
	if err := n.SetInt64(-42); err != nil {
		t.Fatal(err)
	}
	if i, err := n.Int64(); err != nil || i != -42 {
		t.Errorf("got %d, %v", i, err)
	}
	if err := n.SetFloat64(2.5); err != nil {
		t.Fatal(err)
	}
	if _, err := n.Int64(); err == nil {
		t.Error("2.5 as int64 should fail")
	}
	if f, err := n.Float64(); err != nil || f != 2.5 {
		t.Errorf("got %v, %v", f, err)
	}
}

func FuzzOCINum(f *testing.F) {
	for _, s := range []string{"0", "-1", "3.14", "0.001"} {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, s string) {
		var n num.OCINum
		if err := n.SetString(s); err != nil {
			return
		}
		var m num.OCINum
		if err := m.SetString(n.String()); err != nil {
			t.Fatalf("%q -> %q: %+v", s, n.String(), err)
		}
		if d := cmp.Diff([]byte(n), []byte(m)); d != "" {
			t.Errorf("%q: %s", s, d)
		}
	})
}
