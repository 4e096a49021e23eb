// Package domain holds the record model shared by the reconciliation engine,
// the spreadsheet mapper and the HTTP layer. One struct per record kind; the
// loose field-map view exists only at the mapping and diff boundaries.
package domain

import (
	"strconv"
	"strings"

	"kojen-data/internal/dateutil"
)

// Kind selects one of the plant's observation categories. The values double as
// the `module` selector on the wire to the spreadsheet web app.
type Kind string

const (
	KindSteam       Kind = "buhar"
	KindHourly      Kind = "saatlik"
	KindMaintenance Kind = "bakim"
	KindFault       Kind = "ariza"
	KindShift       Kind = "vardiya"
)

// AllKinds lists every kind the service manages.
var AllKinds = []Kind{KindSteam, KindHourly, KindMaintenance, KindFault, KindShift}

// Shift is the plant's three-shift rotation. Wire values are the Turkish terms
// the spreadsheet stores.
type Shift string

const (
	ShiftNight   Shift = "gece"   // 00:00 - 08:00
	ShiftDay     Shift = "gunduz" // 08:00 - 16:00
	ShiftEvening Shift = "aksam"  // 16:00 - 24:00
)

// ValidShift reports whether s is one of the three known shifts.
func ValidShift(s Shift) bool {
	return s == ShiftNight || s == ShiftDay || s == ShiftEvening
}

// ShiftHours returns the hour slots belonging to a shift, in order.
func ShiftHours(s Shift) []string {
	switch s {
	case ShiftNight:
		return []string{"00:00", "01:00", "02:00", "03:00", "04:00", "05:00", "06:00", "07:00"}
	case ShiftDay:
		return []string{"08:00", "09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00"}
	case ShiftEvening:
		return []string{"16:00", "17:00", "18:00", "19:00", "20:00", "21:00", "22:00", "23:00"}
	}
	return nil
}

// Meta carries identity and provenance shared by every record kind. Timestamp
// is the creation wall-clock in display format; the Original* pair preserves
// the first submission when a record is later revised.
type Meta struct {
	ID                string `json:"id"`
	Timestamp         string `json:"timestamp"`
	UpdatedAt         string `json:"updatedAt,omitempty"`
	EditedBy          string `json:"editedBy,omitempty"`
	OriginalTimestamp string `json:"originalTimestamp,omitempty"`
	OriginalOperator  string `json:"originalOperator,omitempty"`
	Changes           string `json:"changes,omitempty"`

	// ServerSort is an ordering token supplied by the remote store when
	// present. The resolver prefers it over the locally derived sort key.
	ServerSort string `json:"serverSort,omitempty"`
}

// Record is the common view the resolver and mapper work against. Concrete
// types are SteamRecord, HourlyEnergyRecord, MaintenanceRecord, FaultRecord
// and ShiftRecord.
type Record interface {
	Kind() Kind
	RecordID() string

	// GetMeta exposes the shared identity/provenance block for mutation by
	// the service layer. Promoted from the embedded Meta.
	GetMeta() *Meta

	// Fields returns the flat internal-field-name -> value view used for
	// outbound mapping and for field-by-field update comparison. Provenance
	// fields are included; mutating the map does not mutate the record.
	Fields() map[string]string

	// SortKey derives the composite "YYYY-MM-DD HH:mm" ordering token.
	SortKey() string
}

// SteamRecord is one steam production reading. At most one per calendar date.
type SteamRecord struct {
	Meta
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	Amount     float64 `json:"amount"`
	Notes      string  `json:"notes,omitempty"`
	RecordedBy string  `json:"recordedBy"`
}

func (r *SteamRecord) Kind() Kind { return KindSteam }
func (r *SteamRecord) RecordID() string { return r.ID }
func (r *SteamRecord) SortKey() string { return dateutil.SortKey(r.Date, r.Time) }

func (r *SteamRecord) Fields() map[string]string {
	f := r.Meta.fields()
	f["date"] = r.Date
	f["time"] = r.Time
	f["amount"] = formatAmount(r.Amount)
	f["notes"] = r.Notes
	f["recordedBy"] = r.RecordedBy
	return f
}

// HourlyEnergyRecord is one hour-slot energy reading within a shift. At most
// one per (date, shift, hour).
type HourlyEnergyRecord struct {
	Meta
	Date         string  `json:"date"`
	Shift        Shift   `json:"shift"`
	Hour         string  `json:"hour"`
	Aktif        float64 `json:"aktif"`
	Reaktif      float64 `json:"reaktif"`
	AydemAktif   float64 `json:"aydemAktif"`
	AydemReaktif float64 `json:"aydemReaktif"`
	Operator     string  `json:"operator"`
}

func (r *HourlyEnergyRecord) Kind() Kind { return KindHourly }
func (r *HourlyEnergyRecord) RecordID() string { return r.ID }
func (r *HourlyEnergyRecord) SortKey() string { return dateutil.SortKey(r.Date, r.Hour) }

func (r *HourlyEnergyRecord) Fields() map[string]string {
	f := r.Meta.fields()
	f["date"] = r.Date
	f["shift"] = string(r.Shift)
	f["hour"] = r.Hour
	f["aktif"] = formatAmount(r.Aktif)
	f["reaktif"] = formatAmount(r.Reaktif)
	f["aydemAktif"] = formatAmount(r.AydemAktif)
	f["aydemReaktif"] = formatAmount(r.AydemReaktif)
	f["operator"] = r.Operator
	return f
}

// MaintenanceRecord is one planned/ongoing/completed maintenance entry.
type MaintenanceRecord struct {
	Meta
	Date        string `json:"date"`
	Motor       string `json:"motor"`
	Status      string `json:"status"`
	Priority    string `json:"priority,omitempty"`
	Description string `json:"description"`
	Actions     string `json:"actions,omitempty"`
	Personnel   string `json:"personnel,omitempty"`
	EntryType   string `json:"entryType,omitempty"`
}

func (r *MaintenanceRecord) Kind() Kind { return KindMaintenance }
func (r *MaintenanceRecord) RecordID() string { return r.ID }
func (r *MaintenanceRecord) SortKey() string { return dateutil.SortKey(r.Date, "") }

func (r *MaintenanceRecord) Fields() map[string]string {
	f := r.Meta.fields()
	f["date"] = r.Date
	f["motor"] = r.Motor
	f["status"] = r.Status
	f["priority"] = r.Priority
	f["description"] = r.Description
	f["actions"] = r.Actions
	f["personnel"] = r.Personnel
	f["entryType"] = r.EntryType
	return f
}

// FaultRecord is one fault report. Status moves through aktif/devam/cozuldu.
type FaultRecord struct {
	Meta
	Date        string `json:"date"`
	Motor       string `json:"motor"`
	FaultType   string `json:"faultType"`
	Description string `json:"description"`
	Resolution  string `json:"resolution,omitempty"`
	Personnel   string `json:"personnel,omitempty"`
	Status      string `json:"status"`
}

func (r *FaultRecord) Kind() Kind { return KindFault }
func (r *FaultRecord) RecordID() string { return r.ID }
func (r *FaultRecord) SortKey() string { return dateutil.SortKey(r.Date, "") }

func (r *FaultRecord) Fields() map[string]string {
	f := r.Meta.fields()
	f["date"] = r.Date
	f["motor"] = r.Motor
	f["faultType"] = r.FaultType
	f["description"] = r.Description
	f["resolution"] = r.Resolution
	f["personnel"] = r.Personnel
	f["status"] = r.Status
	return f
}

// ShiftRecord is one end-of-shift log entry.
type ShiftRecord struct {
	Meta
	Date      string `json:"date"`
	Shift     Shift  `json:"shift"`
	Personnel string `json:"personnel"`
	Tasks     string `json:"tasks,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

func (r *ShiftRecord) Kind() Kind { return KindShift }
func (r *ShiftRecord) RecordID() string { return r.ID }
func (r *ShiftRecord) SortKey() string { return dateutil.SortKey(r.Date, "") }

func (r *ShiftRecord) Fields() map[string]string {
	f := r.Meta.fields()
	f["date"] = r.Date
	f["shift"] = string(r.Shift)
	f["personnel"] = r.Personnel
	f["tasks"] = r.Tasks
	f["notes"] = r.Notes
	return f
}

func (m *Meta) GetMeta() *Meta { return m }

func (m Meta) fields() map[string]string {
	return map[string]string{
		"id":                m.ID,
		"timestamp":         m.Timestamp,
		"updatedAt":         m.UpdatedAt,
		"editedBy":          m.EditedBy,
		"originalTimestamp": m.OriginalTimestamp,
		"originalOperator":  m.OriginalOperator,
		"changes":           m.Changes,
		"serverSort":        m.ServerSort,
	}
}

// formatAmount renders a measurement for the wire. Three decimals covers the
// finest granularity the forms accept (energy inputs step by 0.001); trailing
// zeros are trimmed so "12.5" stays "12.5".
func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
