package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// timestampLayouts are tried in order by ParseTimestamp. Layouts without a
// zone are read in local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses an RFC 3339 timestamp or an ISO 8601 one with no
// zone, such as "2025-11-03T10:00:00.123456". Snapshots written by older
// tools carry the zone-less form.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: not RFC 3339 or zone-less ISO 8601", s)
}

// timestampField decodes a JSON timestamp into *t. null leaves *t alone.
type timestampField struct{ t *time.Time }

func (f timestampField) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*f.t = t
	return nil
}

// optionalTimestampField decodes a nullable JSON timestamp into *t.
type optionalTimestampField struct{ t **time.Time }

func (f optionalTimestampField) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f.t = nil
		return nil
	}
	var parsed time.Time
	if err := (timestampField{&parsed}).UnmarshalJSON(data); err != nil {
		return err
	}
	*f.t = &parsed
	return nil
}

// UnmarshalJSON decodes a snapshot, accepting zone-less timestamps.
func (b *Backlog) UnmarshalJSON(data []byte) error {
	type plain Backlog
	aux := struct {
		*plain
		CreatedAt timestampField `json:"created_at"`
		UpdatedAt timestampField `json:"updated_at"`
	}{
		plain:     (*plain)(b),
		CreatedAt: timestampField{&b.CreatedAt},
		UpdatedAt: timestampField{&b.UpdatedAt},
	}
	return json.Unmarshal(data, &aux)
}

// UnmarshalJSON decodes a sprint record, accepting zone-less timestamps.
func (s *Sprint) UnmarshalJSON(data []byte) error {
	type plain Sprint
	aux := struct {
		*plain
		StartDate optionalTimestampField `json:"start_date"`
		EndDate   optionalTimestampField `json:"end_date"`
	}{
		plain:     (*plain)(s),
		StartDate: optionalTimestampField{&s.StartDate},
		EndDate:   optionalTimestampField{&s.EndDate},
	}
	return json.Unmarshal(data, &aux)
}
