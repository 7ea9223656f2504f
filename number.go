// Copyright 2020, 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"math/big"
	"strings"

	errors "golang.org/x/xerrors"

	"github.com/oracle/python-cx-Oracle-sub001/num"
)

// Number is a decimal number in its canonical text form, such as "-3.14".
type Number string

func (N Number) String() string { return string(N) }

// Normalize returns N without superfluous zeros, or an error when N is not a number.
func (N Number) Normalize() (Number, error) {
	var n num.OCINum
	if err := n.SetString(string(N)); err != nil {
		return N, errors.Errorf("%q: %w", string(N), err)
	}
	return Number(n.String()), nil
}

// Decompose returns the parts of the number, as database/sql's decimal interface expects.
func (N Number) Decompose(buf []byte) (form byte, negative bool, coefficient []byte, exponent int32) {
	s := strings.TrimSpace(string(N))
	if s != "" && (s[0] == '-' || s[0] == '+') {
		negative = s[0] == '-'
		s = s[1:]
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		exponent = -int32(len(s) - i - 1)
		s = s[:i] + s[i+1:]
	}
	var i big.Int
	if _, ok := i.SetString(s, 10); !ok {
		return 2, false, nil, 0
	}
	if i.Sign() == 0 {
		return 0, false, nil, 0
	}
	b := i.Bytes()
	if cap(buf) >= len(b) {
		coefficient = append(buf[:0], b...)
	} else {
		coefficient = b
	}
	return 0, negative, coefficient, exponent
}

// Compose sets the number from its parts. Infinity and NaN are not supported.
func (N *Number) Compose(form byte, negative bool, coefficient []byte, exponent int32) error {
	if form != 0 {
		return errors.Errorf("form %d: %w", form, ErrNotSupported)
	}
	var i big.Int
	i.SetBytes(coefficient)
	if i.Sign() == 0 {
		*N = "0"
		return nil
	}
	digits := i.Text(10)
	switch {
	case exponent > 0:
		digits += strings.Repeat("0", int(exponent))
	case exponent < 0:
		e := int(-exponent)
		if len(digits) <= e {
			digits = strings.Repeat("0", e-len(digits)+1) + digits
		}
		digits = digits[:len(digits)-e] + "." + digits[len(digits)-e:]
	}
	if negative {
		digits = "-" + digits
	}
	*N = Number(digits)
	return nil
}

var _ = decimal((*Number)(nil))

// decimal composes or decomposes a decimal value to and from individual parts.
// There are four parts: a boolean negative flag, a form byte with three possible states
// (finite=0, infinite=1, NaN=2), a base-2 big-endian integer
// coefficient (also known as a significand) as a []byte, and an int32 exponent.
// These are composed into a final value as "decimal = (neg) (form=finite) coefficient * 10 ^ exponent".
//
// See https://golang.org/issue/30870
type decimal interface {
	decimalDecompose
	decimalCompose
}

type decimalDecompose interface {
	// Decompose returns the internal decimal state in parts.
	// If the provided buf has sufficient capacity, buf may be returned as the coefficient with
	// the value set and length set as appropriate.
	Decompose(buf []byte) (form byte, negative bool, coefficient []byte, exponent int32)
}

type decimalCompose interface {
	// Compose sets the internal decimal value from parts. If the value cannot be
	// represented then an error should be returned.
	Compose(form byte, negative bool, coefficient []byte, exponent int32) error
}

// numberFromDecimal returns the text form of any decimal implementation.
func numberFromDecimal(d decimalDecompose) (Number, error) {
	if N, ok := d.(Number); ok {
		return N.Normalize()
	}
	if N, ok := d.(*Number); ok && N != nil {
		return N.Normalize()
	}
	var a [32]byte
	form, negative, coefficient, exponent := d.Decompose(a[:0])
	var N Number
	if err := N.Compose(form, negative, coefficient, exponent); err != nil {
		return "", err
	}
	return N.Normalize()
}
