package types

import "strings"

// Priority is the business priority tier of a work item.
type Priority string

// Priority tiers, highest first.
const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// legacyPriorities maps the tier names found in older snapshots to the
// canonical values.
var legacyPriorities = map[string]Priority{
	"alta":  PriorityHigh,
	"media": PriorityMedium,
	"baja":  PriorityLow,
}

// Rank returns the sort rank of the tier (High=0, Medium=1, Low=2) and -1
// for an unknown value.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return -1
	}
}

// Valid reports whether p is one of the known tiers.
func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p), nil
}

// UnmarshalText accepts the canonical tier names case-insensitively and the
// legacy names. Unknown values are kept verbatim so that validation can
// report them with the owning item.
func (p *Priority) UnmarshalText(text []byte) error {
	*p = ParsePriority(string(text))
	return nil
}

// ParsePriority canonicalizes s. The result is not Valid if s names no tier.
func ParsePriority(s string) Priority {
	trimmed := strings.TrimSpace(s)
	lower := strings.ToLower(trimmed)
	for _, known := range []Priority{PriorityHigh, PriorityMedium, PriorityLow} {
		if lower == strings.ToLower(string(known)) {
			return known
		}
	}
	if legacy, ok := legacyPriorities[lower]; ok {
		return legacy
	}
	return Priority(trimmed)
}
