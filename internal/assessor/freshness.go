package assessor

import (
	"strconv"
	"time"

	"github.com/x402resolve/oracle/internal/model"
	"github.com/x402resolve/oracle/internal/value"
)

// timestampFields lists the recognized field names, in lookup priority
// order, that the freshness scorer treats as the payload's age signal.
var timestampFields = []string{
	"timestamp", "created_at", "updated_at", "date", "time",
	"createdAt", "updatedAt", "datetime", "last_updated",
}

// timeLayouts are tried in order when a timestamp field holds a string.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// extractTimestamp looks for a recognized timestamp field on payload,
// recursing into the first element of a record container (data/results/
// exploits) when the top level doesn't carry one directly, mirroring the
// nested-lookup rule in the data model's ReceivedPayload definition.
func extractTimestamp(payload value.Value) (value.Value, bool) {
	if m, ok := payload.AsMap(); ok {
		_ = m
		for _, field := range timestampFields {
			if v, ok := payload.Get(field); ok && !v.IsNull() {
				return v, true
			}
		}
		for _, key := range recordContainerKeys {
			if container, ok := payload.Get(key); ok {
				if first, ok := container.Index(0); ok {
					if v, found := extractTimestamp(first); found {
						return v, true
					}
				}
			}
		}
		return value.Null, false
	}
	if first, ok := payload.Index(0); ok {
		return extractTimestamp(first)
	}
	return value.Null, false
}

// parseTimestamp converts a timestamp Value (string or number) into a
// time.Time. Numbers are treated as Unix timestamps in seconds.
func parseTimestamp(v value.Value) (time.Time, bool) {
	if s, ok := v.AsString(); ok {
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return time.Unix(int64(f), 0).UTC(), true
		}
		return time.Time{}, false
	}
	if n, ok := v.AsNumber(); ok {
		return time.Unix(int64(n), 0).UTC(), true
	}
	return time.Time{}, false
}

// computeFreshness implements the age-decay curve from the component
// design: linear decay to 0 within [0, max_age], continued linear decay to
// 0 at 2x max_age beyond that, 1.0 when no max_age criterion applies, and
// 0.5 with a recorded issue when no timestamp is discoverable at all.
func computeFreshness(payload value.Value, criteria model.QualityCriteria) (float64, []string) {
	if criteria.MaxAgeDays == nil {
		return 1.0, nil
	}
	maxAge := *criteria.MaxAgeDays
	if maxAge <= 0 {
		return 1.0, nil
	}

	raw, found := extractTimestamp(payload)
	if !found {
		return 0.5, []string{"no timestamp found for freshness validation"}
	}
	ts, ok := parseTimestamp(raw)
	if !ok {
		return 0.5, []string{"no timestamp found for freshness validation"}
	}

	ageDays := time.Since(ts).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}

	if ageDays <= maxAge {
		return clamp01(1 - ageDays/maxAge), nil
	}

	score := clamp01(1 - ageDays/(2*maxAge))
	issue := "stale data beyond max age"
	return score, []string{issue}
}
