// Package report aggregates the cached record sets into the dashboard summary
// and renders per-kind Excel exports.
package report

import (
	"sort"

	"kojen-data/internal/dateutil"
	"kojen-data/internal/domain"
)

// DailySteam is one date's steam production total.
type DailySteam struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// DailyEnergy is one date's summed energy readings across all shifts.
type DailyEnergy struct {
	Date         string  `json:"date"`
	Aktif        float64 `json:"aktif"`
	Reaktif      float64 `json:"reaktif"`
	AydemAktif   float64 `json:"aydemAktif"`
	AydemReaktif float64 `json:"aydemReaktif"`
	Readings     int     `json:"readings"`
}

// StatusCount buckets maintenance or fault entries by their status column.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Summary is the dashboard aggregate over every record kind.
type Summary struct {
	SteamCount          int           `json:"steamCount"`
	SteamTotal          float64       `json:"steamTotal"`
	SteamDaily          []DailySteam  `json:"steamDaily"`
	EnergyCount         int           `json:"energyCount"`
	EnergyTotalAktif    float64       `json:"energyTotalAktif"`
	EnergyDaily         []DailyEnergy `json:"energyDaily"`
	MaintenanceCount    int           `json:"maintenanceCount"`
	MaintenanceByStatus []StatusCount `json:"maintenanceByStatus"`
	FaultCount          int           `json:"faultCount"`
	FaultsByStatus      []StatusCount `json:"faultsByStatus"`
	OpenFaults          int           `json:"openFaults"`
	ShiftCount          int           `json:"shiftCount"`
}

// Build folds the per-kind record sets into one summary. Records with
// unparseable dates (sentinel-dated rows) count toward totals but are left out
// of the daily breakdowns.
func Build(sets map[domain.Kind][]domain.Record) *Summary {
	sum := &Summary{}

	steamDaily := map[string]float64{}
	for _, rec := range sets[domain.KindSteam] {
		sr, ok := rec.(*domain.SteamRecord)
		if !ok {
			continue
		}
		sum.SteamCount++
		sum.SteamTotal += sr.Amount
		if d := dateutil.ISODate(sr.Date); d != dateutil.InvalidDate {
			steamDaily[d] += sr.Amount
		}
	}
	for date, amount := range steamDaily {
		sum.SteamDaily = append(sum.SteamDaily, DailySteam{Date: date, Amount: amount})
	}
	sort.Slice(sum.SteamDaily, func(i, j int) bool {
		return sum.SteamDaily[i].Date > sum.SteamDaily[j].Date
	})

	energyDaily := map[string]*DailyEnergy{}
	for _, rec := range sets[domain.KindHourly] {
		hr, ok := rec.(*domain.HourlyEnergyRecord)
		if !ok {
			continue
		}
		sum.EnergyCount++
		sum.EnergyTotalAktif += hr.Aktif
		d := dateutil.ISODate(hr.Date)
		if d == dateutil.InvalidDate {
			continue
		}
		day := energyDaily[d]
		if day == nil {
			day = &DailyEnergy{Date: d}
			energyDaily[d] = day
		}
		day.Aktif += hr.Aktif
		day.Reaktif += hr.Reaktif
		day.AydemAktif += hr.AydemAktif
		day.AydemReaktif += hr.AydemReaktif
		day.Readings++
	}
	for _, day := range energyDaily {
		sum.EnergyDaily = append(sum.EnergyDaily, *day)
	}
	sort.Slice(sum.EnergyDaily, func(i, j int) bool {
		return sum.EnergyDaily[i].Date > sum.EnergyDaily[j].Date
	})

	maint := map[string]int{}
	for _, rec := range sets[domain.KindMaintenance] {
		mr, ok := rec.(*domain.MaintenanceRecord)
		if !ok {
			continue
		}
		sum.MaintenanceCount++
		maint[mr.Status]++
	}
	sum.MaintenanceByStatus = statusCounts(maint)

	faults := map[string]int{}
	for _, rec := range sets[domain.KindFault] {
		fr, ok := rec.(*domain.FaultRecord)
		if !ok {
			continue
		}
		sum.FaultCount++
		faults[fr.Status]++
		if fr.Status != "cozuldu" {
			sum.OpenFaults++
		}
	}
	sum.FaultsByStatus = statusCounts(faults)

	sum.ShiftCount = len(sets[domain.KindShift])
	return sum
}

func statusCounts(m map[string]int) []StatusCount {
	out := make([]StatusCount, 0, len(m))
	for status, count := range m {
		out = append(out, StatusCount{Status: status, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out
}
