package goodreads

import (
	"strconv"
	"strings"

	"github.com/tzhuang/anobii-goodreads-sync/internal/logger"
	"github.com/tzhuang/anobii-goodreads-sync/internal/models"
)

// dateComponents maps the crawler's field suffixes to the date-picker
// bracket segments, in comparison order (year, month, day).
var dateComponents = []struct {
	entrySuffix string // crawler key suffix
	pickerName  string // bracketed segment in the form field name
}{
	{"aa", "year"},
	{"mm", "month"},
	{"gg", "day"},
}

// applyReadingDates diffs the entry's start and end date triples against
// the scraped form fields and mutates the fields in place.
//
// A component changes only when the new value is non-empty and differs from
// the current one; an empty new value with an already-empty current value
// removes the field from the payload instead of submitting a blank
// overwrite. Overwriting an existing start date is permitted only when the
// new triple is strictly earlier than the current one, component-wise over
// year, month and day; the data-entry error this tool exists to repair only
// ever recorded start dates too late. End-date overwrites are rejected
// unless guardEnd extends the same strictly-earlier rule to them.
func applyReadingDates(fields map[string]string, entry models.ProgressEntry, guardEnd bool, log *logger.Logger) error {
	for _, key := range []string{"start", "end"} {
		changed := false
		var previous, proposed []int

		for _, comp := range dateComponents {
			num := strings.TrimLeft(entryComponent(entry, key, comp.entrySuffix), "0")

			name, ok := findPickerField(fields, key, comp.pickerName)
			if !ok {
				continue
			}

			if fields[name] != "" {
				if v, err := strconv.Atoi(fields[name]); err == nil {
					previous = append(previous, v)
				}
			}
			if num != "" {
				if v, err := strconv.Atoi(num); err == nil {
					proposed = append(proposed, v)
				}
			}

			if num != "" {
				if fields[name] != num {
					if fields[name] != "" {
						changed = true
					}
					fields[name] = num
				}
			} else if fields[name] == "" {
				delete(fields, name)
			}
		}

		if !changed {
			continue
		}

		guarded := &GuardError{
			Field:    key,
			Previous: joinInts(previous),
			Proposed: joinInts(proposed),
		}

		allowed := false
		if len(previous) == 3 && len(proposed) == 3 && lexLess(proposed, previous) {
			allowed = key == "start" || (key == "end" && guardEnd)
		}

		if !allowed {
			log.Warn().
				Str("title", entry.Title).
				Str("field", key).
				Str("previous", guarded.Previous).
				Str("proposed", guarded.Proposed).
				Msg("Date change rejected by guard")
			return guarded
		}

		log.Warn().
			Str("title", entry.Title).
			Str("field", key).
			Str("previous", guarded.Previous).
			Str("proposed", guarded.Proposed).
			Msg("Moving date earlier")
	}

	return nil
}

// entryComponent returns the raw crawler value for one date component.
func entryComponent(entry models.ProgressEntry, key, suffix string) string {
	switch key + suffix {
	case "startaa":
		return entry.StartYear
	case "startmm":
		return entry.StartMonth
	case "startgg":
		return entry.StartDay
	case "endaa":
		return entry.EndYear
	case "endmm":
		return entry.EndMonth
	case "endgg":
		return entry.EndDay
	}
	return ""
}

// findPickerField locates the form field for one date component, e.g. the
// name containing readingSessionDatePicker, "[start]" and "[year]".
func findPickerField(fields map[string]string, key, component string) (string, bool) {
	for name := range fields {
		if strings.Contains(name, datePickerMarker) &&
			strings.Contains(name, "["+key+"]") &&
			strings.Contains(name, "["+component+"]") {
			return name, true
		}
	}
	return "", false
}

// lexLess compares two equal-length component slices lexicographically.
func lexLess(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, "-")
}
