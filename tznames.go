// Copyright 2019, 2021 The Godror Authors
//
//
// SPDX-License-Identifier: UPL-1.0 OR Apache-2.0

package cxoracle

import (
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	errors "golang.org/x/xerrors"
)

var tzNames sync.Map // lowercase name -> *time.Location

// findProperTZName loads the named zone, ignoring the case of the name:
// "europe/budapest" is Europe/Budapest, "etc/utc" is Etc/UTC.
func findProperTZName(name string) (*time.Location, error) {
	key := strings.ToLower(name)
	if tz, ok := tzNames.Load(key); ok {
		return tz.(*time.Location), nil
	}
	tz, err := time.LoadLocation(name)
	if err != nil {
		for _, cand := range tzCandidates(key) {
			if cand == name {
				continue
			}
			var candErr error
			if tz, candErr = time.LoadLocation(cand); candErr == nil {
				err = nil
				break
			}
		}
	}
	if err != nil {
		return nil, errors.Errorf("%s: %w", name, err)
	}
	if tz == nil {
		tz = time.UTC
	}
	tzNames.Store(key, tz)
	return tz, nil
}

// tzCandidates returns the usual spellings of a lowercase zone name.
func tzCandidates(lc string) []string {
	// a Caser is stateful
	title := cases.Title(language.Und)
	parts := strings.Split(lc, "/")
	for i, p := range parts {
		words := strings.Split(p, "_")
		for j, w := range words {
			words[j] = title.String(w)
		}
		parts[i] = strings.Join(words, "_")
	}
	titled := strings.Join(parts, "/")
	cands := []string{titled}
	if i := strings.LastIndexByte(titled, '/'); i >= 0 {
		cands = append(cands, titled[:i+1]+strings.ToUpper(titled[i+1:]))
	}
	return cands
}

// resolveTimezone returns the location of a zone name ("Europe/Budapest"),
// "local" or a fixed offset ("+01:00", "-5", "UTC").
func resolveTimezone(s string) (*time.Location, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "local") {
		return time.Local, nil
	}
	if strings.Contains(s, "/") {
		return findProperTZName(s)
	}
	off, err := parseTZ(s)
	if err != nil {
		return nil, err
	}
	if off == 0 {
		return time.UTC, nil
	}
	return time.FixedZone(s, off), nil
}

// parseTZ parses a zone offset ("+01:00", "-5", "Z", "UTC") into seconds east of UTC.
func parseTZ(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, io.EOF
	}
	if s == "Z" || strings.EqualFold(s, "UTC") {
		return 0, nil
	}
	var minutes int64
	if i := strings.IndexByte(s, ':'); i >= 0 {
		var err error
		if minutes, err = strconv.ParseInt(s[i+1:], 10, 8); err != nil {
			return 0, errors.Errorf("%s: %w", s, err)
		}
		if minutes < 0 || minutes > 59 {
			return 0, errors.Errorf("%s: minutes out of range", s)
		}
		s = s[:i]
	}
	hours, err := strconv.ParseInt(s, 10, 8)
	if err != nil {
		return 0, errors.Errorf("%s: %w", s, err)
	}
	if hours < -14 || hours > 14 {
		return 0, errors.Errorf("%s: hours out of range", s)
	}
	off := int(hours)*3600 + int(minutes)*60
	if strings.HasPrefix(s, "-") {
		off = int(hours)*3600 - int(minutes)*60
	}
	return off, nil
}
