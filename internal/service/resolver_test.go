package service

import (
	"fmt"
	"testing"

	"kojen-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func steam(id, date, clock string, amount float64) *domain.SteamRecord {
	return &domain.SteamRecord{
		Meta:   domain.Meta{ID: id, Timestamp: "05/03/2024 09:30"},
		Date:   date,
		Time:   clock,
		Amount: amount,
	}
}

func hourly(id, date string, shift domain.Shift, hour string, aktif float64) *domain.HourlyEnergyRecord {
	return &domain.HourlyEnergyRecord{
		Meta:  domain.Meta{ID: id, Timestamp: "05/03/2024 09:30"},
		Date:  date,
		Shift: shift,
		Hour:  hour,
		Aktif: aktif,
	}
}

func TestCheckDuplicate_SteamSameDateCollides(t *testing.T) {
	r := NewResolver(0)
	existing := []domain.Record{steam("100", "2024-03-05", "09:00", 10)}

	dup := r.CheckDuplicate(steam("200", "2024-03-05", "18:00", 12), existing)
	require.NotNil(t, dup)
	assert.Equal(t, "100", dup.ExistingID)
	// The existing set stays untouched.
	assert.Len(t, existing, 1)
}

func TestCheckDuplicate_DateShapesNormalizeBeforeCompare(t *testing.T) {
	r := NewResolver(0)
	existing := []domain.Record{steam("100", "05/03/2024", "09:00", 10)}
	dup := r.CheckDuplicate(steam("200", "2024-03-05", "10:00", 1), existing)
	require.NotNil(t, dup)
}

func TestCheckDuplicate_HourlyDistinctSlotAllowed(t *testing.T) {
	r := NewResolver(0)
	existing := []domain.Record{hourly("1", "2024-03-05", domain.ShiftDay, "09:00", 3)}

	assert.Nil(t, r.CheckDuplicate(hourly("2", "2024-03-05", domain.ShiftDay, "10:00", 3), existing))
	assert.Nil(t, r.CheckDuplicate(hourly("3", "2024-03-05", domain.ShiftNight, "09:00", 3), existing))
	assert.NotNil(t, r.CheckDuplicate(hourly("4", "2024-03-05", domain.ShiftDay, "09:00", 3), existing))
}

func TestCheckDuplicate_UnguardedKindNeverCollides(t *testing.T) {
	r := NewResolver(0)
	a := &domain.FaultRecord{Meta: domain.Meta{ID: "1"}, Date: "2024-03-05", Motor: "GM1", Status: "aktif"}
	b := &domain.FaultRecord{Meta: domain.Meta{ID: "2"}, Date: "2024-03-05", Motor: "GM1", Status: "aktif"}
	assert.Nil(t, r.CheckDuplicate(b, []domain.Record{a}))
}

func TestMerge_ReplacesByNaturalKeyNotDuplicates(t *testing.T) {
	r := NewResolver(0)
	local := []domain.Record{hourly("1", "2024-03-05", domain.ShiftDay, "09:00", 3.0)}
	remote := []domain.Record{hourly("1", "2024-03-05", domain.ShiftDay, "09:00", 3.5)}

	merged := r.Merge(local, remote)
	require.Len(t, merged, 1)
	assert.InDelta(t, 3.5, merged[0].(*domain.HourlyEnergyRecord).Aktif, 1e-9)
}

func TestMerge_AppendsUnknownKeys(t *testing.T) {
	r := NewResolver(0)
	local := []domain.Record{hourly("1", "2024-03-05", domain.ShiftDay, "09:00", 3)}
	remote := []domain.Record{hourly("2", "2024-03-05", domain.ShiftDay, "10:00", 4)}

	merged := r.Merge(local, remote)
	assert.Len(t, merged, 2)
}

func TestMerge_SortsDescendingAndInvalidSinks(t *testing.T) {
	r := NewResolver(0)
	bad := steam("3", "garbage-date", "", 1)
	merged := r.Merge(
		[]domain.Record{steam("1", "2024-03-04", "08:00", 1)},
		[]domain.Record{steam("2", "2024-03-05", "08:00", 1), bad},
	)
	require.Len(t, merged, 3)
	assert.Equal(t, "2", merged[0].RecordID())
	assert.Equal(t, "1", merged[1].RecordID())
	assert.Equal(t, "3", merged[2].RecordID())
}

func TestMerge_BrokenDatesKeepDistinctIdentities(t *testing.T) {
	r := NewResolver(0)
	// Two unparseable dates must not collide on the shared sentinel: each
	// broken row keeps its own identity and both survive the merge.
	local := []domain.Record{steam("1", "2024-03-05", "09:00", 1)}
	remote := []domain.Record{
		steam("2", "garbage", "09:00", 2),
		steam("3", "also bad", "10:00", 3),
	}

	merged := r.Merge(local, remote)
	require.Len(t, merged, 3)
	// Good row first, both broken rows at the bottom.
	assert.Equal(t, "1", merged[0].RecordID())
}

func TestMerge_PrefersServerSortToken(t *testing.T) {
	r := NewResolver(0)
	a := steam("1", "2024-03-04", "08:00", 1)
	b := steam("2", "2024-03-05", "08:00", 1)
	// Server says a is newer despite its older date.
	a.ServerSort = "2024-03-06 00:00"

	merged := r.Merge(nil, []domain.Record{a, b})
	assert.Equal(t, "1", merged[0].RecordID())
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	r := NewResolver(0)
	local := []domain.Record{steam("1", "2024-03-04", "08:00", 1)}
	remote := []domain.Record{steam("2", "2024-03-05", "08:00", 1)}
	_ = r.Merge(local, remote)
	assert.Len(t, local, 1)
	assert.Equal(t, "1", local[0].RecordID())
}

func TestWindow_TruncatesViewOnly(t *testing.T) {
	r := NewResolver(5)
	var records []domain.Record
	for i := 0; i < 10; i++ {
		records = append(records, steam(fmt.Sprintf("%d", i), fmt.Sprintf("2024-03-%02d", i+1), "08:00", 1))
	}
	r.SortDesc(records)

	view := r.Window(records)
	assert.Len(t, view, 5)
	assert.Len(t, records, 10)
	assert.Equal(t, "9", view[0].RecordID())
}

func TestDiff_NoOpAndChanges(t *testing.T) {
	stored := hourly("1", "2024-03-05", domain.ShiftDay, "09:00", 3.0)
	same := hourly("1", "2024-03-05", domain.ShiftDay, "09:00", 3.0)
	// Different provenance must not count as a change.
	same.UpdatedAt = "06/03/2024 10:00"
	assert.Empty(t, Diff(stored, same))

	revised := hourly("1", "2024-03-05", domain.ShiftDay, "09:00", 3.5)
	changes := Diff(stored, revised)
	require.Len(t, changes, 1)
	assert.Equal(t, "aktif", changes[0].Field)
	assert.Equal(t, "3", changes[0].Old)
	assert.Equal(t, "3.5", changes[0].New)

	assert.Equal(t, "aktif: 3 -> 3.5", ChangeSummary(changes))
}
