package domain

import (
	"strings"

	"kojen-data/internal/dateutil"
)

// NaturalKey is the canonical duplicate-detection key for a record. Empty
// means the record's kind carries no uniqueness guard.
type NaturalKey string

// KeySpec names the fields that make up a kind's natural key, in order. The
// date component is always normalized to ISO before joining so the same day
// typed as 05/03/2024 and 2024-03-05 collides.
type KeySpec struct {
	Fields []string
}

// Guarded reports whether the spec enforces uniqueness at all.
func (k KeySpec) Guarded() bool { return len(k.Fields) > 0 }

// keySpecs is per-kind configuration rather than hard-coded logic: the earlier
// page scripts disagreed on date-only vs date+time keys, and keeping the
// definition in one table is what settles that.
var keySpecs = map[Kind]KeySpec{
	KindSteam:  {Fields: []string{"date"}},
	KindHourly: {Fields: []string{"date", "shift", "hour"}},
	// Maintenance, fault and shift-log entries may legitimately repeat within
	// a day, so they carry no natural key.
	KindMaintenance: {},
	KindFault:       {},
	KindShift:       {},
}

// KeySpecFor returns the configured natural-key spec for a kind.
func KeySpecFor(kind Kind) KeySpec { return keySpecs[kind] }

// KeyOf computes a record's natural key, or "" for unguarded kinds. A record
// whose date cannot be parsed has no usable key either: two broken rows must
// not collide on the shared sentinel and erase each other, so they fall back
// to ID-based identity.
func KeyOf(r Record) NaturalKey {
	spec := keySpecs[r.Kind()]
	if !spec.Guarded() {
		return ""
	}
	fields := r.Fields()
	parts := make([]string, 0, len(spec.Fields))
	for _, name := range spec.Fields {
		v := fields[name]
		switch name {
		case "date":
			v = dateutil.ISODate(v)
			if v == dateutil.InvalidDate {
				return ""
			}
		case "hour", "time":
			v = dateutil.TimeOnly(v)
		}
		parts = append(parts, v)
	}
	return NaturalKey(strings.Join(parts, "|"))
}
