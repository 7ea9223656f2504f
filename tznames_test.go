// Copyright 2019, 2021 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"testing"
	"time"
	_ "time/tzdata"
)

func TestFindProperTZName(t *testing.T) {
	for in, want := range map[string]string{
		"Europe/Budapest":  "Europe/Budapest",
		"europe/budapest":  "Europe/Budapest",
		"EUROPE/BUDAPEST":  "Europe/Budapest",
		"america/new_york": "America/New_York",
		"etc/utc":          "Etc/UTC",
	} {
		tz, err := findProperTZName(in)
		if err != nil {
			t.Errorf("%q: %+v", in, err)
			continue
		}
		if tz.String() != want {
			t.Errorf("%q: got %s, wanted %s", in, tz, want)
		}
	}
	if tz, err := findProperTZName("Nowhere/Land"); err == nil {
		t.Errorf("got %s, wanted error", tz)
	}
}

func TestResolveTimezone(t *testing.T) {
	for in, want := range map[string]int{
		"UTC":             0,
		"+02:00":          2 * 3600,
		"europe/budapest": 3600,
	} {
		tz, err := resolveTimezone(in)
		if err != nil {
			t.Errorf("%q: %+v", in, err)
			continue
		}
		if _, off := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC).In(tz).Zone(); off != want {
			t.Errorf("%q: got offset %d, wanted %d", in, off, want)
		}
	}
	if tz, _ := resolveTimezone(" Local "); tz != time.Local {
		t.Errorf("got %v", tz)
	}
	if tz, _ := resolveTimezone("Z"); tz != time.UTC {
		t.Errorf("got %v", tz)
	}
}

func TestParseTZ(t *testing.T) {
	for s, want := range map[string]int{
		"Z":      0,
		"utc":    0,
		"+01:00": 3600,
		"-5":     -5 * 3600,
		"-05:30": -(5*3600 + 30*60),
		" 14 ":   14 * 3600,
	} {
		if got, err := parseTZ(s); err != nil || got != want {
			t.Errorf("%q: got %d, %v; wanted %d", s, got, err, want)
		}
	}
	for _, s := range []string{"", "15", "1:75", "01:x", "CET"} {
		if got, err := parseTZ(s); err == nil {
			t.Errorf("%q: wanted error, got %d", s, got)
		}
	}
}
