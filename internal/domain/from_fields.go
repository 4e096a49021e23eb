package domain

import (
	"strconv"
	"strings"
)

// FromFields rebuilds a typed record from the flat field view. It is the
// inverse of Record.Fields and is deliberately lenient: missing fields become
// zero values and malformed numbers parse to 0, so a partially populated
// spreadsheet row (hand-edited, or written by an older schema) always yields a
// usable record.
func FromFields(kind Kind, f map[string]string) Record {
	meta := Meta{
		ID:                f["id"],
		Timestamp:         f["timestamp"],
		UpdatedAt:         f["updatedAt"],
		EditedBy:          f["editedBy"],
		OriginalTimestamp: f["originalTimestamp"],
		OriginalOperator:  f["originalOperator"],
		Changes:           f["changes"],
		ServerSort:        f["serverSort"],
	}

	switch kind {
	case KindSteam:
		return &SteamRecord{
			Meta:       meta,
			Date:       f["date"],
			Time:       f["time"],
			Amount:     LenientFloat(f["amount"]),
			Notes:      f["notes"],
			RecordedBy: f["recordedBy"],
		}
	case KindHourly:
		return &HourlyEnergyRecord{
			Meta:         meta,
			Date:         f["date"],
			Shift:        Shift(f["shift"]),
			Hour:         f["hour"],
			Aktif:        LenientFloat(f["aktif"]),
			Reaktif:      LenientFloat(f["reaktif"]),
			AydemAktif:   LenientFloat(f["aydemAktif"]),
			AydemReaktif: LenientFloat(f["aydemReaktif"]),
			Operator:     f["operator"],
		}
	case KindMaintenance:
		return &MaintenanceRecord{
			Meta:        meta,
			Date:        f["date"],
			Motor:       f["motor"],
			Status:      f["status"],
			Priority:    f["priority"],
			Description: f["description"],
			Actions:     f["actions"],
			Personnel:   f["personnel"],
			EntryType:   f["entryType"],
		}
	case KindFault:
		return &FaultRecord{
			Meta:        meta,
			Date:        f["date"],
			Motor:       f["motor"],
			FaultType:   f["faultType"],
			Description: f["description"],
			Resolution:  f["resolution"],
			Personnel:   f["personnel"],
			Status:      f["status"],
		}
	case KindShift:
		return &ShiftRecord{
			Meta:      meta,
			Date:      f["date"],
			Shift:     Shift(f["shift"]),
			Personnel: f["personnel"],
			Tasks:     f["tasks"],
			Notes:     f["notes"],
		}
	}
	return nil
}

// LenientFloat parses a numeric cell the way the pages did: trim, accept a
// decimal comma, and treat anything unparseable (or empty) as 0.
func LenientFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
