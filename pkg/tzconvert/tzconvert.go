// Package tzconvert parses naive timestamps, binds them to IANA timezones
// and converts between zones.
//
// Two fixed input layouts exist: Format A (LayoutA) for the convert source
// and the first datediff stamp, Format B (LayoutB) for the second datediff
// stamp. Everything renders with DisplayLayout.
package tzconvert

import (
	"time"
)

// UTCLabel is shown instead of a zone name when the current time is
// requested without one.
const UTCLabel = "GMT"

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now as the source of the current instant.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithZones shares a resolver between engines.
func WithZones(z *Zones) Option {
	return func(e *Engine) {
		e.zones = z
	}
}

// Engine evaluates the time queries. It holds no per-request state and is
// safe for concurrent use.
type Engine struct {
	zones *Zones
	now   func() time.Time
}

// New returns an Engine backed by the runtime clock and a fresh zone cache.
func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.zones == nil {
		e.zones = NewZones(1024)
	}
	return e
}

// Reading is the current instant expressed in a zone, with the label the
// caller should display for it.
type Reading struct {
	Time  time.Time
	Label string
}

// Formatted renders the reading's time with DisplayLayout.
func (r Reading) Formatted() string {
	return Display(r.Time)
}

// Now returns the current instant in zone. An empty zone means UTC,
// labeled UTCLabel; otherwise the label echoes zone as given.
func (e *Engine) Now(zone string) (Reading, error) {
	if zone == "" {
		return Reading{Time: e.now().In(time.UTC), Label: UTCLabel}, nil
	}
	loc, err := e.zones.Resolve("tz", zone)
	if err != nil {
		return Reading{}, err
	}
	return Reading{Time: e.now().In(loc), Label: zone}, nil
}

// ConvertRequest asks for Date (Format A, wall time in TZ) in TargetTZ.
type ConvertRequest struct {
	Date     string
	TZ       string
	TargetTZ string
}

// Convert localizes the request's date into its source zone and returns the
// same instant in the target zone.
func (e *Engine) Convert(req ConvertRequest) (time.Time, error) {
	src, err := e.zones.Resolve("date.tz", req.TZ)
	if err != nil {
		return time.Time{}, err
	}
	dst, err := e.zones.Resolve("target_tz", req.TargetTZ)
	if err != nil {
		return time.Time{}, err
	}
	naive, err := ParseA("date.date", req.Date)
	if err != nil {
		return time.Time{}, err
	}
	return Localize(naive, src).In(dst), nil
}

// DiffRequest pairs a Format A stamp with a Format B stamp, each in its own zone.
type DiffRequest struct {
	FirstDate  string
	FirstTZ    string
	SecondDate string
	SecondTZ   string
}

// Diff returns second minus first in whole seconds, truncated toward zero.
func (e *Engine) Diff(req DiffRequest) (int64, error) {
	firstLoc, err := e.zones.Resolve("first_tz", req.FirstTZ)
	if err != nil {
		return 0, err
	}
	secondLoc, err := e.zones.Resolve("second_tz", req.SecondTZ)
	if err != nil {
		return 0, err
	}
	firstNaive, err := ParseA("first_date", req.FirstDate)
	if err != nil {
		return 0, err
	}
	secondNaive, err := ParseB("second_date", req.SecondDate)
	if err != nil {
		return 0, err
	}

	return Seconds(Localize(firstNaive, firstLoc), Localize(secondNaive, secondLoc)), nil
}

// Seconds returns to minus from in whole seconds, truncated toward zero.
// It works on Unix seconds because time.Duration saturates past ~292 years.
func Seconds(from, to time.Time) int64 {
	secs := to.Unix() - from.Unix()
	nsec := to.Nanosecond() - from.Nanosecond()
	switch {
	case secs > 0 && nsec < 0:
		secs--
	case secs < 0 && nsec > 0:
		secs++
	}
	return secs
}
