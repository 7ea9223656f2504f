// Copyright 2020, 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

// Package num converts between decimal text and Oracle's internal NUMBER format.
package num

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// OCINum is a NUMBER in Oracle's internal format, at most 22 bytes.
//
// The first byte is the exponent, followed by 1 to 20 mantissa bytes.
// The high bit of the exponent byte is set for positive numbers; the lower 7 bits
// hold a base-100 exponent with an offset of 65 (all bits inverted for negative numbers).
//
// Each mantissa byte is a base-100 digit: for positive numbers digit+1,
// for negative numbers 101-digit. Negative numbers shorter than 20 mantissa
// bytes carry a terminating 102 byte. Zero is the single byte 0x80.
//
// So the number is sign * m1.m2m3... * 100^exponent.
type OCINum []byte

// MaxDigits is the number of decimal digits 20 mantissa bytes hold.
const MaxDigits = 40

var (
	ErrTooLong      = errors.New("input string too long")
	ErrNoDigit      = errors.New("no digit found")
	ErrBadCharacter = errors.New("bad character")
	ErrOutOfRange   = errors.New("exponent out of range")
)

var zero = OCINum{0x80}

// IsNull returns whether the underlying number is NULL.
func (num OCINum) IsNull() bool { return len(num) == 0 }

// IsZero reports whether num is zero.
func (num OCINum) IsZero() bool { return len(num) == 1 && num[0] == 0x80 }

// decode returns the sign, the base-10 digits (as ASCII, leading zeros possible)
// and the position of the decimal point relative to the start of digits.
func (num OCINum) decode(digits []byte) (negative bool, _ []byte, point int) {
	b, mant := num[0], num[1:]
	negative = b&0x80 == 0
	exp := int(b & 0x7f)
	if negative {
		exp = int(^b & 0x7f)
		if n := len(mant); n != 0 && mant[n-1] == 102 {
			mant = mant[:n-1]
		}
	}
	exp -= 65
	for _, m := range mant {
		d := m - 1
		if negative {
			d = 101 - m
		}
		digits = append(digits, '0'+d/10, '0'+d%10)
	}
	return negative, digits, (exp + 1) * 2
}

// Print the number into the given byte slice.
func (num OCINum) Print(buf []byte) []byte {
	res := buf[:0]
	if len(num) == 0 {
		return res
	}
	if num.IsZero() || len(num) < 2 {
		return append(res, '0')
	}
	dp := bytesPool.Get().(*[]byte)
	negative, digits, point := num.decode((*dp)[:0])
	if negative {
		res = append(res, '-')
	}
	switch {
	case point <= 0:
		res = append(res, '0', '.')
		for i := point; i < 0; i++ {
			res = append(res, '0')
		}
		res = append(res, digits...)
	case point >= len(digits):
		res = append(res, digits...)
		for i := len(digits); i < point; i++ {
			res = append(res, '0')
		}
	default:
		res = append(res, digits[:point]...)
		res = append(res, '.')
		res = append(res, digits[point:]...)
	}
	*dp = digits
	bytesPool.Put(dp)

	// leading zeros of the integer part
	start := 0
	if negative {
		start = 1
	}
	for len(res) > start+1 && res[start] == '0' && res[start+1] != '.' {
		res = append(res[:start], res[start+1:]...)
	}
	// trailing zeros of the fraction
	if bytes.IndexByte(res, '.') >= 0 {
		for res[len(res)-1] == '0' {
			res = res[:len(res)-1]
		}
		if res[len(res)-1] == '.' {
			res = res[:len(res)-1]
		}
	}
	return res
}

var bytesPool = sync.Pool{New: func() interface{} { z := make([]byte, 0, 48); return &z }}

// String returns the string representation of the number.
func (num OCINum) String() string {
	var a [48]byte
	return string(num.Print(a[:0]))
}

// SetString sets the OCINum to the number in s.
// Exponent notation (1.5e3) is accepted.
func (num *OCINum) SetString(s string) error {
	s = strings.TrimSpace(s)
	orig := s
	var negative bool
	if s != "" && (s[0] == '-' || s[0] == '+') {
		negative = s[0] == '-'
		s = s[1:]
	}
	exp10 := 0
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		e, err := strconv.Atoi(s[i+1:])
		if err != nil {
			return fmt.Errorf("exponent of %q: %w", orig, ErrBadCharacter)
		}
		exp10, s = e, s[:i]
	}

	// digits without the dot; point is the number of integer digits
	digits := make([]byte, 0, len(s))
	point := -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case '0' <= c && c <= '9':
			digits = append(digits, c)
		case c == '.' && point < 0:
			point = len(digits)
		default:
			return fmt.Errorf("%c in %q: %w", c, orig, ErrBadCharacter)
		}
	}
	if len(digits) == 0 {
		if s == "" && orig == "" {
			*num = append((*num)[:0], zero...)
			return nil
		}
		return fmt.Errorf("%s: %w", orig, ErrNoDigit)
	}
	if point < 0 {
		point = len(digits)
	}
	point += exp10

	for len(digits) != 0 && digits[0] == '0' {
		digits = digits[1:]
		point--
	}
	for len(digits) != 0 && digits[len(digits)-1] == '0' {
		digits = digits[:len(digits)-1]
	}
	if len(digits) == 0 {
		*num = append((*num)[:0], zero...)
		return nil
	}

	// align to base-100 pairs: the point must fall on a pair boundary
	if point%2 != 0 {
		digits = append([]byte{'0'}, digits...)
		point++
	}
	if len(digits)%2 != 0 {
		digits = append(digits, '0')
	}
	if len(digits) > MaxDigits {
		return fmt.Errorf("got %d significant digits, max %d (%q): %w", len(digits), MaxDigits, orig, ErrTooLong)
	}
	exp := point/2 - 1 + 65
	if exp < 0 || exp > 0x7f {
		return fmt.Errorf("%q: %w", orig, ErrOutOfRange)
	}

	n := len(digits) / 2
	res := (*num)[:0]
	if negative {
		res = append(res, byte(^exp&0x7f))
	} else {
		res = append(res, byte(exp|0x80))
	}
	for i := 0; i < len(digits); i += 2 {
		d := 10*(digits[i]-'0') + digits[i+1] - '0'
		if negative {
			res = append(res, 101-d)
		} else {
			res = append(res, d+1)
		}
	}
	if negative && n < 20 {
		res = append(res, 102)
	}
	*num = res
	return nil
}

// SetInt64 sets num to i.
func (num *OCINum) SetInt64(i int64) error {
	var a [24]byte
	return num.SetString(string(strconv.AppendInt(a[:0], i, 10)))
}

// SetFloat64 sets num to the shortest decimal representation of f.
func (num *OCINum) SetFloat64(f float64) error {
	var a [32]byte
	return num.SetString(string(strconv.AppendFloat(a[:0], f, 'g', -1, 64)))
}

// Int64 returns num as an int64, failing for fractions and out of range values.
func (num OCINum) Int64() (int64, error) {
	return strconv.ParseInt(num.String(), 10, 64)
}

// Float64 returns num as the nearest float64.
func (num OCINum) Float64() (float64, error) {
	return strconv.ParseFloat(num.String(), 64)
}
