// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/slog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	errors "golang.org/x/xerrors"
)

// Environment is what every variable shares: character sets, time zone, numeric routing and logging.
//
// An Environment is immutable after NewEnvironment and safe for concurrent use.
type Environment struct {
	enc, nenc encoding.Encoding
	params    EnvParams
}

// oracleCharsets maps Oracle character set names to their encodings. nil means UTF-8.
var oracleCharsets = map[string]encoding.Encoding{
	"AL32UTF8":      nil,
	"UTF8":          nil,
	"AL16UTF16":     unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"AL16UTF16LE":   unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"WE8ISO8859P1":  charmap.ISO8859_1,
	"WE8ISO8859P15": charmap.ISO8859_15,
	"EE8ISO8859P2":  charmap.ISO8859_2,
	"CL8ISO8859P5":  charmap.ISO8859_5,
	"WE8MSWIN1252":  charmap.Windows1252,
	"EE8MSWIN1250":  charmap.Windows1250,
	"CL8MSWIN1251":  charmap.Windows1251,
	"CL8KOI8R":      charmap.KOI8R,
	"ZHS16GBK":      simplifiedchinese.GBK,
	"ZHS32GB18030":  simplifiedchinese.GB18030,
	"ZHT16BIG5":     traditionalchinese.Big5,
	"JA16SJIS":      japanese.ShiftJIS,
	"JA16EUC":       japanese.EUCJP,
	"KO16KSC5601":   korean.EUCKR,
}

// lookupCharset returns the encoding of an Oracle (or IANA) character set name; nil for UTF-8.
func lookupCharset(name string) (encoding.Encoding, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if enc, ok := oracleCharsets[name]; ok {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, errors.Errorf("character set %q: %w", name, ErrNotSupported)
	}
	if enc == nil || enc == unicode.UTF8 {
		if n, _ := ianaindex.IANA.Name(unicode.UTF8); strings.EqualFold(n, name) {
			return nil, nil
		}
		return nil, errors.Errorf("character set %q: %w", name, ErrNotSupported)
	}
	return enc, nil
}

// NewEnvironment validates the parameters and resolves the character sets.
func NewEnvironment(P EnvParams) (*Environment, error) {
	if P.Timezone == nil {
		P.Timezone = time.Local
	}
	if P.Encoding == "" {
		P.Encoding = DefaultEncoding
	}
	if P.NEncoding == "" {
		P.NEncoding = DefaultNEncoding
	}
	if err := P.validate(); err != nil {
		return nil, err
	}
	env := Environment{params: P}
	var err error
	if env.enc, err = lookupCharset(P.Encoding); err != nil {
		return nil, err
	}
	if env.nenc, err = lookupCharset(P.NEncoding); err != nil {
		return nil, err
	}
	return &env, nil
}

var defaultEnv = sync.OnceValue(func() *Environment {
	env, err := NewEnvironment(DefaultEnvParams())
	if err != nil {
		panic(err)
	}
	return env
})

// DefaultEnvironment returns the Environment of DefaultEnvParams.
func DefaultEnvironment() *Environment { return defaultEnv() }

// Params returns a copy of the parameters.
func (env *Environment) Params() EnvParams { return env.params }

// Timezone returns the zone DATE and TIMESTAMP values are read in.
func (env *Environment) Timezone() *time.Location { return env.params.Timezone }

// SafeDigits returns the largest NUMBER precision routed to an int64.
func (env *Environment) SafeDigits() int { return env.params.SafeDigits }

func (env *Environment) encoding(nchar bool) encoding.Encoding {
	if nchar {
		return env.nenc
	}
	return env.enc
}

func (env *Environment) maxBytesPerChar(nchar bool) int {
	if nchar {
		return env.params.NMaxBytesPerChar
	}
	return env.params.MaxBytesPerChar
}

// decode converts bytes in the (national) character set to a string.
func (env *Environment) decode(b []byte, nchar bool) (string, error) {
	enc := env.encoding(nchar)
	if enc == nil {
		return string(b), nil
	}
	dp := bytesPool.Get().(*[]byte)
	defer bytesPool.Put(dp)
	out, err := transformAppend(enc.NewDecoder(), (*dp)[:0], b)
	*dp = out[:0]
	if err != nil {
		return "", errors.Errorf("decode from %s: %w", env.charsetName(nchar), err)
	}
	return string(out), nil
}

func (env *Environment) charsetName(nchar bool) string {
	if nchar {
		return env.params.NEncoding
	}
	return env.params.Encoding
}

func (env *Environment) logger(ctx context.Context) *slog.Logger {
	if lgr := getLogger(ctx); lgr != nil {
		return lgr
	}
	return env.params.Logger
}
