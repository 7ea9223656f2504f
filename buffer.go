// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"sync"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
	errors "golang.org/x/xerrors"
)

var bytesPool = sync.Pool{New: func() interface{} { z := make([]byte, 0, 1024); return &z }}

// buffer is the byte view of a text or binary value in the client's character set.
//
// The bytes are either borrowed from the value or encoded into a pooled slice;
// release must be called once, whichever way it was made.
type buffer struct {
	pooled   *[]byte
	ptr      []byte
	numChars int
}

// newBuffer returns the bytes of value, encoded into the (national) character set for strings.
func (env *Environment) newBuffer(value interface{}, nchar bool) (buffer, error) {
	switch x := value.(type) {
	case nil:
		return buffer{}, nil
	case []byte:
		return buffer{ptr: x, numChars: len(x)}, nil
	case string:
		n := utf8.RuneCountInString(x)
		enc := env.encoding(nchar)
		if enc == nil {
			return buffer{ptr: []byte(x), numChars: n}, nil
		}
		dp := bytesPool.Get().(*[]byte)
		out, err := transformAppend(encoding.ReplaceUnsupported(enc.NewEncoder()), (*dp)[:0], []byte(x))
		if err != nil {
			*dp = out[:0]
			bytesPool.Put(dp)
			return buffer{}, errors.Errorf("encode to %s: %w", env.charsetName(nchar), err)
		}
		*dp = out
		return buffer{ptr: out, numChars: n, pooled: dp}, nil
	default:
		return buffer{}, errors.Errorf("%T: %w", value, ErrTypeMismatch)
	}
}

func (b buffer) size() int { return len(b.ptr) }

func (b *buffer) release() {
	if b.pooled != nil {
		*b.pooled = (*b.pooled)[:0]
		bytesPool.Put(b.pooled)
		b.pooled = nil
	}
	b.ptr = nil
}

// transformAppend appends the result of t on src to dst, growing dst as needed.
func transformAppend(t transform.Transformer, dst, src []byte) ([]byte, error) {
	t.Reset()
	if cap(dst)-len(dst) < len(src) {
		nd := make([]byte, len(dst), len(dst)+2*len(src)+8)
		copy(nd, dst)
		dst = nd
	}
	for {
		nDst, nSrc, err := t.Transform(dst[len(dst):cap(dst)], src, true)
		dst = dst[:len(dst)+nDst]
		src = src[nSrc:]
		if err == nil {
			return dst, nil
		}
		if !errors.Is(err, transform.ErrShortDst) {
			return dst, err
		}
		nd := make([]byte, len(dst), 2*cap(dst)+len(src)+8)
		copy(nd, dst)
		dst = nd
	}
}
