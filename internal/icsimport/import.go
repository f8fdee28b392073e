// Package icsimport turns iCalendar feeds into plan items and base-calendar
// entries. Each VEVENT UID becomes one reusable item; recurrence rules are
// expanded into one calendar entry per occurrence inside the import horizon.
package icsimport

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/mohankv/timebox/internal/model"
)

var (
	ErrEmptyBody  = errors.New("icsimport: empty calendar body")
	ErrMissingUID = errors.New("icsimport: event is missing a UID")
)

const defaultMaxOccurrences = 1000

// Options bound the expansion. Horizon is measured forward from Now; events
// whose occurrences all fall outside [Now, Now+Horizon) contribute an item
// but no entries.
type Options struct {
	Now             time.Time
	Horizon         time.Duration
	MaxOccurrences  int
	DefaultPriority int
}

// Result is the import output. Items and Entries are ready to persist; the
// caller decides how to merge them with the existing graph. Truncated lists
// the UIDs whose expansion hit the occurrence cap.
type Result struct {
	Items     []model.Item
	Entries   []model.BaseCalendarEntry
	Truncated []string
}

// Import parses a single ICS payload and expands it over the horizon.
// Malformed events are skipped; a malformed calendar is an error.
func Import(body []byte, opts Options) (Result, error) {
	var out Result
	if len(body) == 0 {
		return out, ErrEmptyBody
	}
	if opts.Horizon <= 0 {
		opts.Horizon = 30 * 24 * time.Hour
	}
	if opts.MaxOccurrences <= 0 {
		opts.MaxOccurrences = defaultMaxOccurrences
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return out, fmt.Errorf("icsimport: parse calendar: %w", err)
	}

	seen := make(map[string]bool)
	for _, ve := range cal.Events() {
		item, starts, truncated, evErr := importEvent(ve, opts)
		if evErr != nil {
			// One bad VEVENT must not sink the feed.
			continue
		}
		if !seen[item.ID] {
			seen[item.ID] = true
			out.Items = append(out.Items, item)
		}
		if truncated {
			out.Truncated = append(out.Truncated, item.ID)
		}
		for _, start := range starts {
			out.Entries = append(out.Entries, model.BaseCalendarEntry{
				ID:     entryID(item.ID, start),
				ItemID: item.ID,
				Start:  start,
			})
		}
	}
	sort.Slice(out.Entries, func(i, j int) bool {
		if !out.Entries[i].Start.Equal(out.Entries[j].Start) {
			return out.Entries[i].Start.Before(out.Entries[j].Start)
		}
		return out.Entries[i].ID < out.Entries[j].ID
	})
	return out, nil
}

func importEvent(ve *ical.VEvent, opts Options) (model.Item, []time.Time, bool, error) {
	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return model.Item{}, nil, false, ErrMissingUID
	}
	uid := uidProp.Value

	start, err := ve.GetStartAt()
	if err != nil {
		return model.Item{}, nil, false, fmt.Errorf("icsimport: event %s: %w", uid, err)
	}
	end, err := ve.GetEndAt()
	if err != nil || end.Before(start) {
		// DTEND is optional; a missing or inverted end means zero duration.
		end = start
	}

	name := uid
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil && p.Value != "" {
		name = p.Value
	}

	item := model.Item{
		ID:       "ics:" + uid,
		Name:     name,
		Kind:     model.KindBasic,
		Duration: end.Sub(start),
		Priority: opts.DefaultPriority,
	}
	if vErr := item.Validate(); vErr != nil {
		return model.Item{}, nil, false, vErr
	}

	starts, truncated, expErr := occurrenceStarts(ve, start, opts)
	if expErr != nil {
		return model.Item{}, nil, false, expErr
	}
	return item, starts, truncated, nil
}

// occurrenceStarts expands the event's RRULE (with EXDATE exclusions) over
// [Now, Now+Horizon). A non-recurring event yields its single start if it
// falls inside the horizon.
func occurrenceStarts(ve *ical.VEvent, dtstart time.Time, opts Options) ([]time.Time, bool, error) {
	horizonEnd := opts.Now.Add(opts.Horizon)

	rruleProp := ve.GetProperty(ical.ComponentPropertyRrule)
	if rruleProp == nil || rruleProp.Value == "" {
		if dtstart.Before(opts.Now) || !dtstart.Before(horizonEnd) {
			return nil, false, nil
		}
		return []time.Time{dtstart.UTC()}, false, nil
	}

	r, err := rrule.StrToRRule(rruleProp.Value)
	if err != nil {
		return nil, false, fmt.Errorf("icsimport: parse rrule %q: %w", rruleProp.Value, err)
	}
	r.DTStart(dtstart)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range exDates(ve, dtstart.Location()) {
		set.ExDate(ex)
	}

	times := set.Between(opts.Now.In(dtstart.Location()), horizonEnd.In(dtstart.Location()), true)
	truncated := false
	if len(times) > opts.MaxOccurrences {
		times = times[:opts.MaxOccurrences]
		truncated = true
	}
	out := make([]time.Time, 0, len(times))
	for _, t := range times {
		out = append(out, t.UTC())
	}
	return out, truncated, nil
}

func exDates(ve *ical.VEvent, loc *time.Location) []time.Time {
	var out []time.Time
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part, loc); err == nil {
				out = append(out, t)
			}
		}
	}
	return out
}

func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, loc)
	}
	return time.ParseInLocation("20060102", v, loc)
}

// entryID is stable across re-imports so repeated feeds upsert rather than
// duplicate.
func entryID(itemID string, start time.Time) string {
	return itemID + "@" + start.UTC().Format(time.RFC3339)
}
