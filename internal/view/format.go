package view

import (
	"time"

	"golang.org/x/text/language"
)

// supportedLocales and localeLayouts are parallel: localeLayouts[i] renders
// supportedLocales[i] the way browsers print Date.toLocaleString.
var supportedLocales = []language.Tag{
	language.AmericanEnglish,
	language.BritishEnglish,
	language.German,
	language.French,
	language.Spanish,
	language.BrazilianPortuguese,
}

var localeLayouts = []string{
	"1/2/2006, 3:04:05 PM",
	"02/01/2006, 15:04:05",
	"2.1.2006, 15:04:05",
	"02/01/2006 15:04:05",
	"2/1/2006, 15:04:05",
	"02/01/2006, 15:04:05",
}

var localeMatcher = language.NewMatcher(supportedLocales)

// isoLayouts are tried in order. Zoned values keep their offset; values
// without a zone are read in the formatter's location, except date-only
// values which are UTC midnight.
var isoLayouts = []struct {
	layout string
	zone   zoneRule
}{
	{time.RFC3339Nano, zoneExplicit},
	{"2006-01-02T15:04:05.999999999", zoneLocal},
	{"2006-01-02T15:04", zoneLocal},
	{"2006-01-02", zoneUTC},
}

type zoneRule int

const (
	zoneExplicit zoneRule = iota
	zoneLocal
	zoneUTC
)

// DateFormatter renders ISO-8601 timestamps for one locale and time zone.
type DateFormatter struct {
	Locale language.Tag
	layout string
	loc    *time.Location
}

// NewDateFormatter resolves locale against the supported layouts (American
// English when nothing matches or locale is invalid). loc defaults to time.Local.
func NewDateFormatter(locale string, loc *time.Location) *DateFormatter {
	if loc == nil {
		loc = time.Local
	}
	idx := 0
	if tag, err := language.Parse(locale); err == nil {
		_, idx, _ = localeMatcher.Match(tag)
	}
	return &DateFormatter{Locale: supportedLocales[idx], layout: localeLayouts[idx], loc: loc}
}

// Format returns "" for "", the locale rendering for a parseable timestamp,
// and s unchanged otherwise.
func (f *DateFormatter) Format(s string) string {
	if s == "" {
		return ""
	}
	t, ok := f.parse(s)
	if !ok {
		return s
	}
	return t.In(f.loc).Format(f.layout)
}

func (f *DateFormatter) parse(s string) (time.Time, bool) {
	for _, l := range isoLayouts {
		var (
			t   time.Time
			err error
		)
		switch l.zone {
		case zoneExplicit:
			t, err = time.Parse(l.layout, s)
		case zoneLocal:
			t, err = time.ParseInLocation(l.layout, s, f.loc)
		case zoneUTC:
			t, err = time.ParseInLocation(l.layout, s, time.UTC)
		}
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
