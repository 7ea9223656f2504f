// Copyright 2024 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package native

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Timestamp is the broken-down date/time layout the client exchanges.
type Timestamp struct {
	Year                         int16
	Month, Day                   uint8
	Hour, Minute, Second         uint8
	Fsecond                      uint32
	TZHourOffset, TZMinuteOffset int8
}

// TimestampFromTime breaks t down, keeping its zone offset.
func TimestampFromTime(t time.Time) Timestamp {
	_, off := t.Zone()
	return Timestamp{
		Year: int16(t.Year()), Month: uint8(t.Month()), Day: uint8(t.Day()),
		Hour: uint8(t.Hour()), Minute: uint8(t.Minute()), Second: uint8(t.Second()),
		Fsecond:      uint32(t.Nanosecond()),
		TZHourOffset: int8(off / 3600), TZMinuteOffset: int8((off % 3600) / 60),
	}
}

// Time assembles ts in loc, or in the offset ts carries when withTZ is set.
func (ts Timestamp) Time(loc *time.Location, withTZ bool) time.Time {
	if withTZ {
		off := int(ts.TZHourOffset)*3600 + int(ts.TZMinuteOffset)*60
		if loc == nil || !sameOffset(loc, ts, off) {
			loc = time.FixedZone(fmt.Sprintf("%+03d:%02d", ts.TZHourOffset, abs8(ts.TZMinuteOffset)), off)
		}
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(int(ts.Year), time.Month(ts.Month), int(ts.Day),
		int(ts.Hour), int(ts.Minute), int(ts.Second), int(ts.Fsecond), loc)
}

func sameOffset(loc *time.Location, ts Timestamp, off int) bool {
	_, o := time.Date(int(ts.Year), time.Month(ts.Month), int(ts.Day),
		int(ts.Hour), int(ts.Minute), int(ts.Second), 0, loc).Zone()
	return o == off
}

func abs8(i int8) int8 {
	if i < 0 {
		return -i
	}
	return i
}

// IntervalDS is the day to second interval layout.
type IntervalDS struct {
	Days, Hours, Minutes, Seconds, Fseconds int32
}

// IntervalYM is the year to month interval layout.
type IntervalYM struct {
	Years, Months int32
}

// PutInt64 encodes i into p (8 bytes, little endian).
func PutInt64(p []byte, i int64) { binary.LittleEndian.PutUint64(p, uint64(i)) }

// Int64 decodes an int64 slot.
func Int64(p []byte) int64 { return int64(binary.LittleEndian.Uint64(p)) }

// PutDouble encodes f into p (8 bytes, little endian IEEE 754).
func PutDouble(p []byte, f float64) { binary.LittleEndian.PutUint64(p, math.Float64bits(f)) }

// Double decodes a double slot.
func Double(p []byte) float64 { return math.Float64frombits(binary.LittleEndian.Uint64(p)) }

// PutBool encodes b into a single byte.
func PutBool(p []byte, b bool) {
	if b {
		p[0] = 1
	} else {
		p[0] = 0
	}
}

// Bool decodes a boolean slot.
func Bool(p []byte) bool { return p[0] != 0 }

// PutDate encodes the date part and seconds of ts in the 7 byte DATE layout:
// century+100, year+100, month, day, hour+1, minute+1, second+1.
func PutDate(p []byte, ts Timestamp) error {
	y := int(ts.Year)
	if y < -4712 || y > 9999 || y == 0 {
		return &Error{Code: 1841, Fn: "dpiData_setTimestamp",
			Message: fmt.Sprintf("(full) year must be between -4713 and +9999, and not be 0, got %d", y)}
	}
	c, yy := y/100, y%100
	if y < 0 {
		c, yy = -((-y)/100), -((-y) % 100)
	}
	p[0] = byte(c + 100)
	p[1] = byte(yy + 100)
	p[2], p[3] = ts.Month, ts.Day
	p[4], p[5], p[6] = ts.Hour+1, ts.Minute+1, ts.Second+1
	return nil
}

// Date decodes the 7 byte DATE layout.
func Date(p []byte) Timestamp {
	return Timestamp{
		Year:  int16((int(p[0])-100)*100 + int(p[1]) - 100),
		Month: p[2], Day: p[3],
		Hour: p[4] - 1, Minute: p[5] - 1, Second: p[6] - 1,
	}
}

// PutTimestamp encodes ts as DATE followed by big endian nanoseconds (11 bytes),
// and with withTZ the zone hour+20 and minute+60 (13 bytes).
func PutTimestamp(p []byte, ts Timestamp, withTZ bool) error {
	if err := PutDate(p, ts); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(p[7:11], ts.Fsecond)
	if withTZ {
		p[11] = byte(int(ts.TZHourOffset) + 20)
		p[12] = byte(int(ts.TZMinuteOffset) + 60)
	}
	return nil
}

// GetTimestamp decodes PutTimestamp's layout.
func GetTimestamp(p []byte, withTZ bool) Timestamp {
	ts := Date(p)
	ts.Fsecond = binary.BigEndian.Uint32(p[7:11])
	if withTZ && len(p) >= SizeTimestampTZ {
		ts.TZHourOffset = int8(int(p[11]) - 20)
		ts.TZMinuteOffset = int8(int(p[12]) - 60)
	}
	return ts
}

const intervalBias = 1 << 31

// PutIntervalDS encodes iv as days+2^31 (big endian), hours+60, minutes+60,
// seconds+60 and fractional nanoseconds+2^31 (big endian).
func PutIntervalDS(p []byte, iv IntervalDS) {
	binary.BigEndian.PutUint32(p[0:4], uint32(int64(iv.Days)+intervalBias))
	p[4] = byte(iv.Hours + 60)
	p[5] = byte(iv.Minutes + 60)
	p[6] = byte(iv.Seconds + 60)
	binary.BigEndian.PutUint32(p[7:11], uint32(int64(iv.Fseconds)+intervalBias))
}

// GetIntervalDS decodes PutIntervalDS's layout.
func GetIntervalDS(p []byte) IntervalDS {
	return IntervalDS{
		Days:     int32(int64(binary.BigEndian.Uint32(p[0:4])) - intervalBias),
		Hours:    int32(p[4]) - 60,
		Minutes:  int32(p[5]) - 60,
		Seconds:  int32(p[6]) - 60,
		Fseconds: int32(int64(binary.BigEndian.Uint32(p[7:11])) - intervalBias),
	}
}

// PutIntervalYM encodes iv as years+2^31 (big endian) and months+60.
func PutIntervalYM(p []byte, iv IntervalYM) {
	binary.BigEndian.PutUint32(p[0:4], uint32(int64(iv.Years)+intervalBias))
	p[4] = byte(iv.Months + 60)
}

// GetIntervalYM decodes PutIntervalYM's layout.
func GetIntervalYM(p []byte) IntervalYM {
	return IntervalYM{
		Years:  int32(int64(binary.BigEndian.Uint32(p[0:4])) - intervalBias),
		Months: int32(p[4]) - 60,
	}
}
