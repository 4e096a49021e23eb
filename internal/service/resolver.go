// Package service owns the reconciliation engine and the per-kind record
// operations built on top of it.
package service

import (
	"fmt"
	"sort"
	"strings"

	"kojen-data/internal/dateutil"
	"kojen-data/internal/domain"
)

// DefaultWindow is how many records the merged view keeps for display. The
// cache and the remote store always hold the full set; windowing is view-only.
const DefaultWindow = 34

// metaFields are excluded from field-by-field update comparison: they describe
// the record's lifecycle or the submitter, not the observation payload. A
// different operator resubmitting identical values is still a no-op.
var metaFields = map[string]bool{
	"id":                true,
	"timestamp":         true,
	"updatedAt":         true,
	"editedBy":          true,
	"originalTimestamp": true,
	"originalOperator":  true,
	"changes":           true,
	"serverSort":        true,
	"recordedBy":        true,
	"operator":          true,
}

// Resolver merges locally cached records with freshly fetched remote rows and
// gates new submissions against natural-key collisions.
type Resolver struct {
	window int
}

func NewResolver(window int) *Resolver {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Resolver{window: window}
}

// CheckDuplicate returns a DuplicateError when the candidate's natural key
// collides with any existing record, nil otherwise. Kinds without a key spec
// never collide. The existing set is not modified.
func (r *Resolver) CheckDuplicate(candidate domain.Record, existing []domain.Record) *domain.DuplicateError {
	key := domain.KeyOf(candidate)
	if key == "" {
		return nil
	}
	for _, rec := range existing {
		if rec == nil || rec.Kind() != candidate.Kind() {
			continue
		}
		if domain.KeyOf(rec) == key && rec.RecordID() != candidate.RecordID() {
			return &domain.DuplicateError{Key: key, ExistingID: rec.RecordID()}
		}
	}
	return nil
}

// Merge folds the remote set into the local cache: a remote record replaces
// the local one sharing its identity (remote is authoritative once persisted)
// and is appended otherwise. The result is sorted most-recent-first. Neither
// input slice is mutated.
func (r *Resolver) Merge(local, remote []domain.Record) []domain.Record {
	merged := make([]domain.Record, len(local))
	copy(merged, local)

	for _, in := range remote {
		if in == nil {
			continue
		}
		idx := -1
		for i, have := range merged {
			if have != nil && sameRecord(have, in) {
				idx = i
				break
			}
		}
		if idx >= 0 {
			merged[idx] = in
		} else {
			merged = append(merged, in)
		}
	}

	r.SortDesc(merged)
	return merged
}

// sameRecord matches by natural key for guarded kinds and by ID otherwise.
func sameRecord(a, b domain.Record) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	ka, kb := domain.KeyOf(a), domain.KeyOf(b)
	if ka != "" && kb != "" {
		return ka == kb
	}
	return a.RecordID() != "" && a.RecordID() == b.RecordID()
}

// SortDesc orders records most-recent-first by sort token. The comparator is
// pure string comparison and never fails: records with unparseable dates carry
// the sort sentinel and sink to the end.
func (r *Resolver) SortDesc(records []domain.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return sortRank(records[i]) > sortRank(records[j])
	})
}

// sortRank remaps the invalid sentinel below every real key. The sentinel is
// lexicographically the largest date-time, which would float broken rows to
// the top of a descending view; ranking it as the empty string sinks them.
func sortRank(r domain.Record) string {
	t := sortToken(r)
	if t == dateutil.InvalidSortKey {
		return ""
	}
	return t
}

// sortToken prefers an explicit server-supplied ordering token over the
// locally derived key, so server-side formatting quirks cannot reorder rows
// the store already ordered.
func sortToken(r domain.Record) string {
	if r == nil {
		return ""
	}
	if s := r.GetMeta().ServerSort; s != "" {
		return s
	}
	return r.SortKey()
}

// Window truncates the view to the most recent N records. The input is
// returned as-is when it already fits; the underlying set is never mutated.
func (r *Resolver) Window(records []domain.Record) []domain.Record {
	if len(records) <= r.window {
		return records
	}
	out := make([]domain.Record, r.window)
	copy(out, records[:r.window])
	return out
}

// Diff lists the payload fields whose values differ between the stored record
// and the incoming revision, in deterministic order. An empty result means the
// update is a no-op and must not produce a write or provenance change.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

func Diff(stored, incoming domain.Record) []FieldChange {
	oldF, newF := stored.Fields(), incoming.Fields()

	names := make([]string, 0, len(newF))
	for name := range newF {
		if !metaFields[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var changes []FieldChange
	for _, name := range names {
		if oldF[name] != newF[name] {
			changes = append(changes, FieldChange{Field: name, Old: oldF[name], New: newF[name]})
		}
	}
	return changes
}

// ChangeSummary renders a diff for the sheet's changes column.
func ChangeSummary(changes []FieldChange) string {
	parts := make([]string, 0, len(changes))
	for _, c := range changes {
		parts = append(parts, fmt.Sprintf("%s: %s -> %s", c.Field, orDash(c.Old), orDash(c.New)))
	}
	return strings.Join(parts, "; ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
