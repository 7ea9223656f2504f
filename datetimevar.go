// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"fmt"
	"time"

	knownpb "github.com/godror/knownpb/timestamppb"
	errors "golang.org/x/xerrors"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/oracle/python-cx-Oracle-sub001/native"
)

// Date is a calendar date without time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the date part of t.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight of the date in loc.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IntervalYM is an INTERVAL YEAR TO MONTH value.
type IntervalYM struct {
	Years, Months int
}

func (ym IntervalYM) String() string {
	sign := "+"
	y, m := ym.Years, ym.Months
	if y < 0 || m < 0 {
		sign, y, m = "-", -y, -m
	}
	return fmt.Sprintf("%s%02d-%02d", sign, y, m)
}

const (
	minDateYear, maxDateYear = -4712, 9999
	maxIntervalYears         = 999999999
)

// checkYear rejects the years the DATE layout cannot hold.
func checkYear(y int) error {
	if y < minDateYear || y > maxDateYear || y == 0 {
		return errors.Errorf("year %d is out of DATE range: %w", y, ErrOverflow)
	}
	return nil
}

// timestampOf breaks t down for the client.
func timestampOf(t time.Time) (native.Timestamp, error) {
	if err := checkYear(t.Year()); err != nil {
		return native.Timestamp{}, err
	}
	return native.TimestampFromTime(t), nil
}

// timestampOfDate is timestampOf for a Date; month and day are not normalized.
func timestampOfDate(d Date) (native.Timestamp, error) {
	if err := checkYear(d.Year); err != nil {
		return native.Timestamp{}, err
	}
	if d.Month < time.January || d.Month > time.December || d.Day < 1 || d.Day > 31 {
		return native.Timestamp{}, errors.Errorf("%s is not a date: %w", d, ErrOverflow)
	}
	return native.Timestamp{Year: int16(d.Year), Month: uint8(d.Month), Day: uint8(d.Day)}, nil
}

// intervalYMOf checks ym against the INTERVAL YEAR(9) TO MONTH range.
func intervalYMOf(ym IntervalYM) (native.IntervalYM, error) {
	if ym.Years < -maxIntervalYears || ym.Years > maxIntervalYears || ym.Months < -11 || ym.Months > 11 {
		return native.IntervalYM{}, errors.Errorf("interval %s: %w", ym, ErrOverflow)
	}
	return native.IntervalYM{Years: int32(ym.Years), Months: int32(ym.Months)}, nil
}

// asTime returns the time of time.Time and protobuf timestamp values.
func asTime(value interface{}) (time.Time, bool) {
	switch x := value.(type) {
	case time.Time:
		return x, true
	case *time.Time:
		if x == nil {
			return time.Time{}, true
		}
		return *x, true
	case *timestamppb.Timestamp:
		if x == nil {
			return time.Time{}, true
		}
		return x.AsTime(), true
	case *knownpb.Timestamp:
		if x == nil {
			return time.Time{}, true
		}
		return x.AsTimestamp().AsTime(), true
	}
	return time.Time{}, false
}

// dateKind is DATE, got as a Date, or as a time.Time withTime.
type dateKind struct {
	withTime bool
}

func (k dateKind) setValue(v *Variable, pos int, value interface{}) error {
	var ts native.Timestamp
	var err error
	if d, ok := value.(Date); ok {
		ts, err = timestampOfDate(d)
	} else if t, ok := asTime(value); ok {
		ts, err = timestampOf(t.In(v.env.Timezone()))
	} else {
		return errors.Errorf("expected a date, got %T: %w", value, ErrTypeMismatch)
	}
	if err != nil {
		return err
	}
	var a [native.SizeDate]byte
	if err := native.PutDate(a[:], ts); err != nil {
		return checkError(err, "setDate")
	}
	return checkError(v.buf.SetBytes(pos, a[:]), "setDate")
}

func (k dateKind) getValue(v *Variable, pos int) (interface{}, error) {
	b, err := v.buf.Bytes(pos)
	if err != nil {
		return nil, checkError(err, "getDate")
	}
	if len(b) < native.SizeDate {
		return nil, errors.Errorf("DATE slot of %d bytes: %w", len(b), ErrTypeMismatch)
	}
	ts := native.Date(b)
	if !k.withTime {
		return Date{Year: int(ts.Year), Month: time.Month(ts.Month), Day: int(ts.Day)}, nil
	}
	return ts.Time(v.env.Timezone(), false), nil
}

// timestampKind is TIMESTAMP, TIMESTAMP WITH TIME ZONE (withTZ) and
// TIMESTAMP WITH LOCAL TIME ZONE (local).
type timestampKind struct {
	withTZ, local bool
}

func (k timestampKind) setValue(v *Variable, pos int, value interface{}) error {
	var t time.Time
	if d, ok := value.(Date); ok {
		if _, err := timestampOfDate(d); err != nil {
			return err
		}
		t = d.Time(v.env.Timezone())
	} else if t, ok = asTime(value); !ok {
		return errors.Errorf("expected a time, got %T: %w", value, ErrTypeMismatch)
	}
	if !k.withTZ {
		t = t.In(v.env.Timezone())
	}
	ts, err := timestampOf(t)
	if err != nil {
		return err
	}
	var a [native.SizeTimestampTZ]byte
	n := native.SizeTimestamp
	if k.withTZ {
		n = native.SizeTimestampTZ
	}
	if err := native.PutTimestamp(a[:n], ts, k.withTZ); err != nil {
		return checkError(err, "setTimestamp")
	}
	return checkError(v.buf.SetBytes(pos, a[:n]), "setTimestamp")
}

func (k timestampKind) getValue(v *Variable, pos int) (interface{}, error) {
	b, err := v.buf.Bytes(pos)
	if err != nil {
		return nil, checkError(err, "getTimestamp")
	}
	if len(b) < native.SizeTimestamp {
		return nil, errors.Errorf("TIMESTAMP slot of %d bytes: %w", len(b), ErrTypeMismatch)
	}
	return native.GetTimestamp(b, k.withTZ).Time(v.env.Timezone(), k.withTZ), nil
}

type intervalKind struct{}

func durationToInterval(d time.Duration) native.IntervalDS {
	total, ns := int64(d/time.Second), int64(d%time.Second)
	rem := total % 86400
	return native.IntervalDS{
		Days:     int32(total / 86400),
		Hours:    int32(rem / 3600),
		Minutes:  int32(rem % 3600 / 60),
		Seconds:  int32(rem % 60),
		Fseconds: int32(ns),
	}
}

func intervalToDuration(iv native.IntervalDS) time.Duration {
	return time.Duration(iv.Days)*24*time.Hour +
		time.Duration(iv.Hours)*time.Hour +
		time.Duration(iv.Minutes)*time.Minute +
		time.Duration(iv.Seconds)*time.Second +
		time.Duration(iv.Fseconds)
}

func (intervalKind) setValue(v *Variable, pos int, value interface{}) error {
	d, ok := value.(time.Duration)
	if !ok {
		return errors.Errorf("expected a time.Duration, got %T: %w", value, ErrTypeMismatch)
	}
	var a [native.SizeIntervalDS]byte
	native.PutIntervalDS(a[:], durationToInterval(d))
	return checkError(v.buf.SetBytes(pos, a[:]), "setIntervalDS")
}

func (intervalKind) getValue(v *Variable, pos int) (interface{}, error) {
	b, err := v.buf.Bytes(pos)
	if err != nil {
		return nil, checkError(err, "getIntervalDS")
	}
	if len(b) < native.SizeIntervalDS {
		return nil, errors.Errorf("INTERVAL slot of %d bytes: %w", len(b), ErrTypeMismatch)
	}
	return intervalToDuration(native.GetIntervalDS(b)), nil
}

type intervalYMKind struct{}

func (intervalYMKind) setValue(v *Variable, pos int, value interface{}) error {
	ym, ok := value.(IntervalYM)
	if !ok {
		return errors.Errorf("expected an IntervalYM, got %T: %w", value, ErrTypeMismatch)
	}
	iv, err := intervalYMOf(ym)
	if err != nil {
		return err
	}
	var a [native.SizeIntervalYM]byte
	native.PutIntervalYM(a[:], iv)
	return checkError(v.buf.SetBytes(pos, a[:]), "setIntervalYM")
}

func (intervalYMKind) getValue(v *Variable, pos int) (interface{}, error) {
	b, err := v.buf.Bytes(pos)
	if err != nil {
		return nil, checkError(err, "getIntervalYM")
	}
	if len(b) < native.SizeIntervalYM {
		return nil, errors.Errorf("INTERVAL YEAR TO MONTH slot of %d bytes: %w", len(b), ErrTypeMismatch)
	}
	ym := native.GetIntervalYM(b)
	return IntervalYM{Years: int(ym.Years), Months: int(ym.Months)}, nil
}
