// Copyright 2017, 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"fmt"
	"strings"

	errors "golang.org/x/xerrors"

	"github.com/oracle/python-cx-Oracle-sub001/native"
)

var (
	// ErrNotSupported is returned when no variable type serves a value, a requested type or a column.
	ErrNotSupported = errors.New("not supported")
	// ErrIndexOutOfRange is returned for a slot index beyond the allocated elements.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrArrayTooLarge is returned when an array does not fit into the allocated elements,
	// or the requested buffer exceeds the representable size.
	ErrArrayTooLarge = errors.New("array too large")
	// ErrArrayTooSmall is returned when an output variable has fewer elements than the fetch array size.
	ErrArrayTooSmall = errors.New("array too small")
	// ErrTypeMismatch is returned when a value is of the wrong type for the variable.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrValueTooLarge is returned when a value does not fit into a fixed width slot.
	ErrValueTooLarge = errors.New("value too large")
	// ErrNotArray is returned when array operations are used on a scalar variable.
	ErrNotArray = errors.New("not an array variable")
	// ErrClosed is returned on use after Close.
	ErrClosed = errors.New("closed")
)

// ErrNotCollection is returned when the Object is not a collection.
var ErrNotCollection = errors.New("not collection")

// ErrNotExist is returned when the collection's requested element does not exist.
var ErrNotExist = errors.New("not exist")

// Category classifies database errors.
type Category uint8

const (
	// CategoryDatabase is every error not classified otherwise.
	CategoryDatabase = Category(iota)
	// CategoryIntegrity is a constraint violation.
	CategoryIntegrity
	// CategoryOperational is a lost, killed or refused session, or a network problem.
	CategoryOperational
)

func (c Category) String() string {
	switch c {
	case CategoryIntegrity:
		return "IntegrityError"
	case CategoryOperational:
		return "OperationalError"
	default:
		return "DatabaseError"
	}
}

// OraErr is an error holding the ORA-01234 code and the message.
type OraErr struct {
	// At is the client function (or the variable operation) failing.
	At       string
	Message  string
	Code     int
	Offset   int
	Category Category
}

// NewOraErr returns an OraErr with the Category looked up by code.
func NewOraErr(code int, message, at string) *OraErr {
	return &OraErr{Code: code, Message: message, At: at, Category: ClassifyCode(code)}
}

func (oe *OraErr) Error() string {
	if oe == nil {
		return ""
	}
	msg := oe.Message
	if oe.Code == 0 && msg == "" {
		return ""
	}
	prefix := fmt.Sprintf("ORA-%05d: ", oe.Code)
	if !strings.HasPrefix(msg, prefix) {
		msg = prefix + msg
	}
	if oe.At != "" {
		return oe.At + ": " + msg
	}
	return msg
}

// Is makes errors.Is(err, &OraErr{Code: 1406}) match by code.
func (oe *OraErr) Is(target error) bool {
	var t *OraErr
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return t.Code == oe.Code
}

// integrity violations
var integrityCodes = map[int]struct{}{
	1:     {}, // unique constraint violated
	1400:  {}, // cannot insert NULL
	1407:  {}, // cannot update to NULL
	1438:  {}, // value larger than specified precision
	2290:  {}, // check constraint violated
	2291:  {}, // parent key not found
	2292:  {}, // child record found
	2299:  {}, // cannot validate - duplicate keys found
	12899: {}, // value too large for column
}

// ClassifyCode returns the Category of an ORA error code.
func ClassifyCode(code int) Category {
	if _, ok := integrityCodes[code]; ok {
		return CategoryIntegrity
	}
	switch code {
	case 22, // invalid session ID; access denied
		28,    // your session has been killed
		31,    // your session has been marked for kill
		45,    // your session has been terminated with no replay
		378,   // buffer pools cannot be created as specified
		602,   // internal programming exception
		603,   // ORACLE server session terminated by fatal error
		609,   // could not attach to incoming connection
		1012,  // not logged on
		1033,  // ORACLE initialization or shutdown in progress
		1034,  // ORACLE not available
		1041,  // internal error. hostdef extension doesn't exist
		1043,  // user side memory corruption
		1089,  // immediate shutdown or close in progress
		1090,  // shutdown in progress
		1092,  // ORACLE instance terminated. Disconnection forced
		2396,  // exceeded maximum idle time, please connect again
		3113,  // end-of-file on communication channel
		3114,  // not connected to ORACLE
		3122,  // attempt to close ORACLE-side window on user side
		3135,  // connection lost contact
		3136,  // inbound connection timed out
		12153, // TNS:not connected
		12170, // TNS:Connect timeout occurred
		12514, // TNS:listener does not currently know of service
		12528, // TNS:listener: all appropriate instances are blocking new connections
		12537, // TNS:connection closed
		12541, // TNS:no listener
		12545, // Connect failed because target host or object does not exist
		12547, // TNS:lost contact
		12570, // TNS:packet reader failure
		12583, // TNS:no reader
		27146, // post/wait initialization failed
		28511, // lost RPC connection
		28547, // connection to server failed, probable Oracle Net admin error
		56600: // an illegal OCI function call was issued
		return CategoryOperational
	}
	if 12500 <= code && code < 12600 {
		return CategoryOperational
	}
	return CategoryDatabase
}

// IsIntegrity reports whether err is (or wraps) an integrity violation.
func IsIntegrity(err error) bool {
	var oe *OraErr
	return errors.As(err, &oe) && oe.Category == CategoryIntegrity
}

// IsOperational reports whether err is (or wraps) an operational error.
func IsOperational(err error) bool {
	var oe *OraErr
	return errors.As(err, &oe) && oe.Category == CategoryOperational
}

// AsOraErr returns the underlying *OraErr and whether it was found.
func AsOraErr(err error) (*OraErr, bool) {
	if err == nil {
		return nil, false
	}
	var oe *OraErr
	if errors.As(err, &oe) {
		return oe, true
	}
	return nil, false
}

// checkError converts a client error into an *OraErr, leaving other errors alone.
func checkError(err error, at string) error {
	if err == nil {
		return nil
	}
	var ne *native.Error
	if !errors.As(err, &ne) {
		return err
	}
	fn := ne.Fn
	if at != "" {
		if fn != "" {
			fn = at + "/" + fn
		} else {
			fn = at
		}
	}
	oe := NewOraErr(ne.Code, ne.Message, fn)
	oe.Offset = ne.Offset
	return oe
}
