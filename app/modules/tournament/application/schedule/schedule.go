// Package schedule parses human-entered tournament start times.
package schedule

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var compactTime = regexp.MustCompile(`\b(\d{1,2})(\d{2})(am|pm)\b`)

// Parser turns inputs like "tomorrow at 7pm" or an RFC 3339 timestamp into a UTC time.
type Parser struct {
	Zones map[string]string
	w     *when.Parser
}

// NewParser creates a Parser with the US zone abbreviations.
func NewParser() *Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{
		Zones: map[string]string{
			"UTC": "UTC",
			"PST": "America/Los_Angeles",
			"PDT": "America/Los_Angeles",
			"MST": "America/Denver",
			"MDT": "America/Denver",
			"CST": "America/Chicago",
			"CDT": "America/Chicago",
			"EST": "America/New_York",
			"EDT": "America/New_York",
		},
		w: w,
	}
}

// Location resolves a zone abbreviation or IANA name. Empty means UTC.
func (p *Parser) Location(zone string) (*time.Location, error) {
	if zone == "" {
		return time.UTC, nil
	}
	if name, ok := p.Zones[strings.ToUpper(zone)]; ok {
		zone = name
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q", zone)
	}
	return loc, nil
}

// ParseStart parses input relative to now in zone. The result must not be before now.
func (p *Parser) ParseStart(input, zone string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("start time is required")
	}
	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return checkFuture(t.UTC(), now)
	}

	loc, err := p.Location(zone)
	if err != nil {
		return time.Time{}, err
	}

	normalized := strings.ToLower(input)
	normalized = strings.ReplaceAll(normalized, "today ", "today at ")
	normalized = compactTime.ReplaceAllString(normalized, "$1:$2 $3")

	r, err := p.w.Parse(normalized, now.In(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse start time %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not recognize start time %q", input)
	}
	return checkFuture(r.Time.In(loc).Truncate(time.Minute).UTC(), now)
}

func checkFuture(t, now time.Time) (time.Time, error) {
	if t.Before(now.Truncate(time.Minute)) {
		return time.Time{}, fmt.Errorf("start time must be in the future (parsed: %s, now: %s)", t.Format(time.RFC3339), now.UTC().Format(time.RFC3339))
	}
	return t, nil
}
