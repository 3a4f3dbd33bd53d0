package tzconvert

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestParseA(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"evening", "12.20.2021 22:21:05", time.Date(2021, 12, 20, 22, 21, 5, 0, time.UTC), false},
		{"midnight", "01.01.2024 00:00:00", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"leap day", "02.29.2024 12:00:00", time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC), false},
		{"unpadded hour", "12.20.2021 9:21:05", time.Time{}, true},
		{"unpadded month", "1.20.2021 09:21:05", time.Time{}, true},
		{"dash separators", "12-20-2021 22:21:05", time.Time{}, true},
		{"day first", "20.12.2021 22:21:05", time.Time{}, true},
		{"no such day", "02.30.2021 10:00:00", time.Time{}, true},
		{"hour 24", "12.20.2021 24:00:00", time.Time{}, true},
		{"trailing space", "12.20.2021 22:21:05 ", time.Time{}, true},
		{"format B input", "12:30pm 2024-02-01", time.Time{}, true},
		{"year zero", "12.20.0000 22:21:05", time.Time{}, true},
		{"year one", "01.01.0001 00:00:00", time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"empty", "", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseA("date", tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedTimestamp) {
					t.Errorf("ParseA(%q) error = %v, want ErrMalformedTimestamp", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseA(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseA(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseB(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"half past noon", "12:30pm 2024-02-01", time.Date(2024, 2, 1, 12, 30, 0, 0, time.UTC), false},
		{"half past midnight", "12:30am 2024-02-01", time.Date(2024, 2, 1, 0, 30, 0, 0, time.UTC), false},
		{"evening", "09:05pm 2023-11-30", time.Date(2023, 11, 30, 21, 5, 0, 0, time.UTC), false},
		{"upper case marker", "09:05PM 2023-11-30", time.Date(2023, 11, 30, 21, 5, 0, 0, time.UTC), false},
		{"mixed case marker", "09:05Am 2023-11-30", time.Date(2023, 11, 30, 9, 5, 0, 0, time.UTC), false},
		{"missing marker", "12:30 2024-02-01", time.Time{}, true},
		{"unpadded hour", "9:05pm 2023-11-30", time.Time{}, true},
		{"hour zero", "00:30pm 2024-02-01", time.Time{}, true},
		{"hour 13", "13:30pm 2024-02-01", time.Time{}, true},
		{"bad marker", "12:30xm 2024-02-01", time.Time{}, true},
		{"slash date", "12:30pm 2024/02/01", time.Time{}, true},
		{"format A input", "12.20.2021 22:21:05", time.Time{}, true},
		{"year zero", "12:30pm 0000-02-01", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseB("date", tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedTimestamp) {
					t.Errorf("ParseB(%q) error = %v, want ErrMalformedTimestamp", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseB(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseB(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLocalize(t *testing.T) {
	tests := []struct {
		name    string
		zone    string
		wall    time.Time
		wantUTC time.Time
	}{
		{
			name:    "New York summer",
			zone:    "America/New_York",
			wall:    time.Date(2021, 7, 1, 12, 0, 0, 0, time.UTC),
			wantUTC: time.Date(2021, 7, 1, 16, 0, 0, 0, time.UTC),
		},
		{
			name:    "New York fall back picks standard time",
			zone:    "America/New_York",
			wall:    time.Date(2021, 11, 7, 1, 30, 0, 0, time.UTC),
			wantUTC: time.Date(2021, 11, 7, 6, 30, 0, 0, time.UTC),
		},
		{
			name:    "New York spring forward gap reads with the earlier offset",
			zone:    "America/New_York",
			wall:    time.Date(2021, 3, 14, 2, 30, 0, 0, time.UTC),
			wantUTC: time.Date(2021, 3, 14, 7, 30, 0, 0, time.UTC),
		},
		{
			name:    "Berlin fall back picks standard time",
			zone:    "Europe/Berlin",
			wall:    time.Date(2023, 10, 29, 2, 30, 0, 0, time.UTC),
			wantUTC: time.Date(2023, 10, 29, 1, 30, 0, 0, time.UTC),
		},
		{
			name:    "Berlin spring forward gap reads with the earlier offset",
			zone:    "Europe/Berlin",
			wall:    time.Date(2023, 3, 26, 2, 30, 0, 0, time.UTC),
			wantUTC: time.Date(2023, 3, 26, 1, 30, 0, 0, time.UTC),
		},
		{
			// Ramadan time (+00) is flagged as daylight saving here, so the
			// earlier side of this gap is not standard time.
			name:    "Casablanca gap after Ramadan reads with the earlier offset",
			zone:    "Africa/Casablanca",
			wall:    time.Date(2024, 4, 14, 2, 30, 0, 0, time.UTC),
			wantUTC: time.Date(2024, 4, 14, 2, 30, 0, 0, time.UTC),
		},
		{
			name:    "fixed offset zone",
			zone:    "EST",
			wall:    time.Date(2021, 12, 20, 22, 21, 5, 0, time.UTC),
			wantUTC: time.Date(2021, 12, 21, 3, 21, 5, 0, time.UTC),
		},
	}

	zones := NewZones(16)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := zones.Resolve("tz", tt.zone)
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.zone, err)
			}
			got := Localize(tt.wall, loc)
			if !got.Equal(tt.wantUTC) {
				t.Errorf("Localize(%v, %s) = %v, want %v", tt.wall, tt.zone, got.UTC(), tt.wantUTC)
			}
			if got.Location() != loc {
				t.Errorf("Localize returned location %v, want %v", got.Location(), loc)
			}
		})
	}
}

func TestConvert(t *testing.T) {
	e := New()
	tests := []struct {
		name string
		req  ConvertRequest
		want string
	}{
		{
			name: "EST to Moscow",
			req:  ConvertRequest{Date: "12.20.2021 22:21:05", TZ: "EST", TargetTZ: "Europe/Moscow"},
			want: "2021-12-21 06:21:05 MSK+0300",
		},
		{
			name: "New York summer to UTC",
			req:  ConvertRequest{Date: "07.01.2021 12:00:00", TZ: "America/New_York", TargetTZ: "UTC"},
			want: "2021-07-01 16:00:00 UTC+0000",
		},
		{
			name: "Tokyo to Los Angeles across the date line",
			req:  ConvertRequest{Date: "01.01.2024 08:00:00", TZ: "Asia/Tokyo", TargetTZ: "America/Los_Angeles"},
			want: "2023-12-31 15:00:00 PST-0800",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Convert(tt.req)
			if err != nil {
				t.Fatalf("Convert(%+v): %v", tt.req, err)
			}
			if Display(got) != tt.want {
				t.Errorf("Convert(%+v) = %q, want %q", tt.req, Display(got), tt.want)
			}
		})
	}
}

func TestConvertErrors(t *testing.T) {
	e := New()
	tests := []struct {
		name string
		req  ConvertRequest
		want error
	}{
		{"unknown source", ConvertRequest{Date: "12.20.2021 22:21:05", TZ: "Mars/Olympus", TargetTZ: "UTC"}, ErrUnknownTimezone},
		{"unknown target", ConvertRequest{Date: "12.20.2021 22:21:05", TZ: "UTC", TargetTZ: "Nowhere"}, ErrUnknownTimezone},
		{"local is not a zone", ConvertRequest{Date: "12.20.2021 22:21:05", TZ: "Local", TargetTZ: "UTC"}, ErrUnknownTimezone},
		{"empty target", ConvertRequest{Date: "12.20.2021 22:21:05", TZ: "UTC", TargetTZ: ""}, ErrUnknownTimezone},
		{"malformed date", ConvertRequest{Date: "2021-12-20 22:21:05", TZ: "UTC", TargetTZ: "EST"}, ErrMalformedTimestamp},
		{"zone checked before date", ConvertRequest{Date: "garbage", TZ: "Nowhere", TargetTZ: "EST"}, ErrUnknownTimezone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Convert(tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("Convert(%+v) error = %v, want %v", tt.req, err, tt.want)
			}
		})
	}
}

func TestConvertRoundTrip(t *testing.T) {
	e := New()
	zones := []string{"UTC", "EST", "Europe/Moscow", "America/New_York", "Asia/Kolkata", "Australia/Adelaide", "Pacific/Chatham"}
	dates := []string{"01.15.2022 03:04:05", "07.04.2023 18:00:00", "12.31.2024 23:59:59"}

	for _, a := range zones {
		for _, b := range zones {
			for _, d := range dates {
				there, err := e.Convert(ConvertRequest{Date: d, TZ: a, TargetTZ: b})
				if err != nil {
					t.Fatalf("Convert %s %s->%s: %v", d, a, b, err)
				}
				back, err := e.Convert(ConvertRequest{Date: there.Format(LayoutA), TZ: b, TargetTZ: a})
				if err != nil {
					t.Fatalf("Convert back %s %s->%s: %v", there.Format(LayoutA), b, a, err)
				}
				if got := back.Format(LayoutA); got != d {
					t.Errorf("round trip %s %s->%s->%s = %s", d, a, b, a, got)
				}
			}
		}
	}
}

func TestDiff(t *testing.T) {
	e := New()
	tests := []struct {
		name string
		req  DiffRequest
		want int64
	}{
		{
			name: "EST winter against Moscow",
			req:  DiffRequest{FirstDate: "12.06.2024 22:21:05", FirstTZ: "EST", SecondDate: "12:30pm 2024-02-01", SecondTZ: "Europe/Moscow"},
			want: -26761865,
		},
		{
			name: "same instant in two zones",
			req:  DiffRequest{FirstDate: "02.01.2024 09:30:00", FirstTZ: "UTC", SecondDate: "12:30pm 2024-02-01", SecondTZ: "Europe/Moscow"},
			want: 0,
		},
		{
			name: "one hour later",
			req:  DiffRequest{FirstDate: "02.01.2024 11:00:00", FirstTZ: "UTC", SecondDate: "12:00pm 2024-02-01", SecondTZ: "UTC"},
			want: 3600,
		},
		{
			name: "seconds of first stamp count",
			req:  DiffRequest{FirstDate: "02.01.2024 11:59:59", FirstTZ: "UTC", SecondDate: "12:00pm 2024-02-01", SecondTZ: "UTC"},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Diff(tt.req)
			if err != nil {
				t.Fatalf("Diff(%+v): %v", tt.req, err)
			}
			if got != tt.want {
				t.Errorf("Diff(%+v) = %d, want %d", tt.req, got, tt.want)
			}
		})
	}
}

func TestDiffAntisymmetric(t *testing.T) {
	e := New()
	pairs := []struct {
		a, aTZ string
		b, bTZ string
	}{
		{"03.10.2024 08:15:00", "America/New_York", "2024-07-22 17:45", "Asia/Tokyo"},
		{"11.03.2024 01:30:00", "America/Chicago", "2023-01-01 00:00", "Europe/London"},
		{"06.15.2020 12:00:00", "Australia/Sydney", "2020-06-15 12:00", "Australia/Sydney"},
	}

	for _, p := range pairs {
		aTime, err := time.Parse("01.02.2006 15:04:05", p.a)
		if err != nil {
			t.Fatal(err)
		}
		bTime, err := time.Parse("2006-01-02 15:04", p.b)
		if err != nil {
			t.Fatal(err)
		}

		forward, err := e.Diff(DiffRequest{
			FirstDate: p.a, FirstTZ: p.aTZ,
			SecondDate: bTime.Format(LayoutB), SecondTZ: p.bTZ,
		})
		if err != nil {
			t.Fatalf("forward diff: %v", err)
		}
		backward, err := e.Diff(DiffRequest{
			FirstDate: bTime.Format(LayoutA), FirstTZ: p.bTZ,
			SecondDate: aTime.Format(LayoutB), SecondTZ: p.aTZ,
		})
		if err != nil {
			t.Fatalf("backward diff: %v", err)
		}
		if forward != -backward {
			t.Errorf("diff(%s %s, %s %s) = %d, reverse = %d", p.a, p.aTZ, p.b, p.bTZ, forward, backward)
		}
	}
}

func TestDiffErrors(t *testing.T) {
	e := New()
	valid := DiffRequest{FirstDate: "12.06.2024 22:21:05", FirstTZ: "EST", SecondDate: "12:30pm 2024-02-01", SecondTZ: "Europe/Moscow"}

	tests := []struct {
		name   string
		mutate func(*DiffRequest)
		want   error
	}{
		{"unknown first zone", func(r *DiffRequest) { r.FirstTZ = "Atlantis" }, ErrUnknownTimezone},
		{"unknown second zone", func(r *DiffRequest) { r.SecondTZ = "Atlantis" }, ErrUnknownTimezone},
		{"first date in format B", func(r *DiffRequest) { r.FirstDate = "12:30pm 2024-02-01" }, ErrMalformedTimestamp},
		{"second date in format A", func(r *DiffRequest) { r.SecondDate = "12.06.2024 22:21:05" }, ErrMalformedTimestamp},
		{"second date missing marker", func(r *DiffRequest) { r.SecondDate = "12:30 2024-02-01" }, ErrMalformedTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := e.Diff(req)
			if !errors.Is(err, tt.want) {
				t.Errorf("Diff error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSecondsTruncatesTowardZero(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		from, to time.Time
		want     int64
	}{
		{"positive fraction", base, base.Add(2500 * time.Millisecond), 2},
		{"negative fraction", base, base.Add(-2500 * time.Millisecond), -2},
		{"under a second", base, base.Add(999 * time.Millisecond), 0},
		{"centuries", base, base.AddDate(-500, 0, 0), base.AddDate(-500, 0, 0).Unix() - base.Unix()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Seconds(tt.from, tt.to); got != tt.want {
				t.Errorf("Seconds() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNow(t *testing.T) {
	captured := time.Date(2024, 2, 1, 12, 30, 5, 0, time.UTC)
	e := New(WithClock(fixedClock(captured)))

	tests := []struct {
		zone      string
		wantLabel string
		wantTime  string
	}{
		{"", "GMT", "2024-02-01 12:30:05 UTC+0000"},
		{"Europe/Moscow", "Europe/Moscow", "2024-02-01 15:30:05 MSK+0300"},
		{"EST", "EST", "2024-02-01 07:30:05 EST-0500"},
		{"UTC", "UTC", "2024-02-01 12:30:05 UTC+0000"},
	}

	for _, tt := range tests {
		t.Run(tt.wantLabel, func(t *testing.T) {
			r, err := e.Now(tt.zone)
			if err != nil {
				t.Fatalf("Now(%q): %v", tt.zone, err)
			}
			if r.Label != tt.wantLabel {
				t.Errorf("Now(%q).Label = %q, want %q", tt.zone, r.Label, tt.wantLabel)
			}
			if r.Formatted() != tt.wantTime {
				t.Errorf("Now(%q).Formatted() = %q, want %q", tt.zone, r.Formatted(), tt.wantTime)
			}
		})
	}

	if _, err := e.Now("Not/AZone"); !errors.Is(err, ErrUnknownTimezone) {
		t.Errorf("Now(unknown) error = %v, want ErrUnknownTimezone", err)
	}
}

func TestZonesCache(t *testing.T) {
	z := NewZones(8)
	first, err := z.Resolve("tz", "Europe/Moscow")
	if err != nil {
		t.Fatal(err)
	}
	second, err := z.Resolve("tz", "Europe/Moscow")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("second Resolve did not return the cached location")
	}
	if _, err := z.Resolve("tz", "../etc/passwd"); !errors.Is(err, ErrUnknownTimezone) {
		t.Errorf("Resolve(path traversal) error = %v, want ErrUnknownTimezone", err)
	}
}

func TestZonesIgnoreCase(t *testing.T) {
	z := NewZones(8)
	z.sources = func() []fs.FS {
		return []fs.FS{fstest.MapFS{
			"Europe/Moscow":           {Data: []byte("TZif")},
			"America/Port-au-Prince":  {Data: []byte("TZif")},
			"EST":                     {Data: []byte("TZif")},
			"zone.tab":                {Data: []byte("# table")},
			"America/Argentina/Salta": {Data: []byte("TZif")},
		}}
	}

	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"europe/moscow", "Europe/Moscow", false},
		{"EUROPE/MOSCOW", "Europe/Moscow", false},
		{"america/port-au-prince", "America/Port-au-Prince", false},
		{"est", "EST", false},
		{"america/argentina/salta", "America/Argentina/Salta", false},
		{"ZONE.TAB", "", true},
		{"local", "", true},
		{"europe/atlantis", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := z.Resolve("tz", tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownTimezone) {
					t.Errorf("Resolve(%q) error = %v, want ErrUnknownTimezone", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.name, err)
			}
			if loc.String() != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.name, loc, tt.want)
			}
		})
	}
}

func TestNowKeepsCallerSpelling(t *testing.T) {
	zones := NewZones(8)
	zones.sources = func() []fs.FS {
		return []fs.FS{fstest.MapFS{"Europe/Moscow": {Data: []byte("TZif")}}}
	}
	e := New(WithZones(zones), WithClock(fixedClock(time.Date(2024, 2, 1, 12, 30, 5, 0, time.UTC))))

	r, err := e.Now("europe/moscow")
	if err != nil {
		t.Fatalf("Now: %v", err)
	}
	if r.Label != "europe/moscow" {
		t.Errorf("Label = %q, want the name as given", r.Label)
	}
	if got := r.Formatted(); got != "2024-02-01 15:30:05 MSK+0300" {
		t.Errorf("Formatted() = %q", got)
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind Kind
		is   error
	}{
		{MissingField("target_tz"), KindMissingField, ErrMissingField},
		{InvalidBody(errors.New("unexpected EOF")), KindInvalidBody, ErrInvalidBody},
		{&Error{Kind: KindUnknownTimezone, Value: "X"}, KindUnknownTimezone, ErrUnknownTimezone},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.kind {
			t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.kind)
		}
		if !errors.Is(tt.err, tt.is) {
			t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.is)
		}
		if errors.Is(tt.err, ErrMalformedTimestamp) {
			t.Errorf("errors.Is(%v, ErrMalformedTimestamp) = true", tt.err)
		}
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Error("KindOf(plain error) should be zero")
	}
}
