// Copyright 2020, 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNumberDeCompose(t *testing.T) {
	p := make([]byte, 38)
	for i, s := range []string{
		"0",
		"1",
		"-2",
		"3.14",
		"-3.14",
		"1000",
		"3.456789",
		"0.01",
		"-0.09",
		"-0.89",
		"0.0000000001",
		"12345678901234567890123456789012345678",
	} {
		n := Number(s)

		form, negative, coefficient, exponent := n.Decompose(p[:0])
		if want := s[0] == '-'; want != negative {
			t.Errorf("%d. Decompose(%q) got negative=%t, wanted %t", i, s, negative, want)
		}
		var m Number
		if err := m.Compose(form, negative, coefficient, exponent); err != nil {
			t.Errorf("%d. cannot compose %c/%t/% x/%d from %q", i, form, negative, coefficient, exponent, s)
		}
		if string(m) != s {
			t.Errorf("%d. got %q wanted %q", i, m, s)
		}
	}
}

func TestNumberNormalize(t *testing.T) {
	for s, want := range map[string]Number{
		"1.50":    "1.5",
		"-0.0":    "0",
		"0010":    "10",
		"+3.1400": "3.14",
	} {
		got, err := Number(s).Normalize()
		if err != nil {
			t.Errorf("%q: %+v", s, err)
			continue
		}
		if got != want {
			t.Errorf("%q: got %q, wanted %q", s, got, want)
		}
	}
	if _, err := Number("1.2.3").Normalize(); err == nil {
		t.Error("1.2.3 accepted")
	}
}

func TestParseLongInteger(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	for s, want := range map[string]interface{}{
		"42":                             int64(42),
		"-9223372036854775808":           int64(-9223372036854775808),
		"123456789012345678901234567890": huge,
		"1.5":                            1.5,
		"1E+40":                          1e40,
	} {
		got, err := parseLongInteger(s)
		if err != nil {
			t.Errorf("%q: %+v", s, err)
			continue
		}
		if d := cmp.Diff(want, got, cmp.Comparer(func(a, b *big.Int) bool { return a.Cmp(b) == 0 })); d != "" {
			t.Errorf("%q: %s", s, d)
		}
	}
	if _, err := parseLongInteger("x"); err == nil {
		t.Error("x accepted")
	}
}
