package report

import (
	"testing"

	"kojen-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_SteamAndEnergyTotals(t *testing.T) {
	sets := map[domain.Kind][]domain.Record{
		domain.KindSteam: {
			&domain.SteamRecord{Date: "2024-03-05", Time: "09:00", Amount: 10},
			&domain.SteamRecord{Date: "2024-03-06", Time: "09:00", Amount: 12.5},
		},
		domain.KindHourly: {
			&domain.HourlyEnergyRecord{Date: "2024-03-05", Shift: domain.ShiftDay, Hour: "09:00", Aktif: 3, Reaktif: 1},
			&domain.HourlyEnergyRecord{Date: "2024-03-05", Shift: domain.ShiftDay, Hour: "10:00", Aktif: 4, Reaktif: 1.5},
			&domain.HourlyEnergyRecord{Date: "2024-03-06", Shift: domain.ShiftNight, Hour: "02:00", Aktif: 2},
		},
	}

	sum := Build(sets)

	assert.Equal(t, 2, sum.SteamCount)
	assert.InDelta(t, 22.5, sum.SteamTotal, 1e-9)
	require.Len(t, sum.SteamDaily, 2)
	// Daily breakdown is most-recent-first.
	assert.Equal(t, "2024-03-06", sum.SteamDaily[0].Date)

	assert.Equal(t, 3, sum.EnergyCount)
	assert.InDelta(t, 9, sum.EnergyTotalAktif, 1e-9)
	require.Len(t, sum.EnergyDaily, 2)
	assert.Equal(t, "2024-03-06", sum.EnergyDaily[0].Date)
	assert.Equal(t, 2, sum.EnergyDaily[1].Readings)
	assert.InDelta(t, 2.5, sum.EnergyDaily[1].Reaktif, 1e-9)
}

func TestBuild_StatusBucketsAndOpenFaults(t *testing.T) {
	sets := map[domain.Kind][]domain.Record{
		domain.KindMaintenance: {
			&domain.MaintenanceRecord{Date: "2024-03-05", Motor: "GM1", Status: "planlandi"},
			&domain.MaintenanceRecord{Date: "2024-03-05", Motor: "GM2", Status: "devam"},
			&domain.MaintenanceRecord{Date: "2024-03-06", Motor: "GM1", Status: "planlandi"},
		},
		domain.KindFault: {
			&domain.FaultRecord{Date: "2024-03-05", Motor: "GM1", FaultType: "mekanik", Status: "aktif"},
			&domain.FaultRecord{Date: "2024-03-05", Motor: "GM2", FaultType: "elektrik", Status: "cozuldu"},
		},
		domain.KindShift: {
			&domain.ShiftRecord{Date: "2024-03-05", Shift: domain.ShiftDay, Personnel: "ekip A"},
		},
	}

	sum := Build(sets)

	assert.Equal(t, 3, sum.MaintenanceCount)
	require.Len(t, sum.MaintenanceByStatus, 2)
	assert.Equal(t, StatusCount{Status: "devam", Count: 1}, sum.MaintenanceByStatus[0])
	assert.Equal(t, StatusCount{Status: "planlandi", Count: 2}, sum.MaintenanceByStatus[1])

	assert.Equal(t, 2, sum.FaultCount)
	assert.Equal(t, 1, sum.OpenFaults)
	assert.Equal(t, 1, sum.ShiftCount)
}

func TestBuild_SentinelDatesCountButStayOffDailyBreakdown(t *testing.T) {
	sets := map[domain.Kind][]domain.Record{
		domain.KindSteam: {
			&domain.SteamRecord{Date: "garbage", Time: "09:00", Amount: 5},
		},
	}
	sum := Build(sets)
	assert.Equal(t, 1, sum.SteamCount)
	assert.InDelta(t, 5, sum.SteamTotal, 1e-9)
	assert.Empty(t, sum.SteamDaily)
}

func TestExport_ProducesWorkbook(t *testing.T) {
	records := []domain.Record{
		&domain.SteamRecord{
			Meta:   domain.Meta{ID: "1", Timestamp: "05/03/2024 09:30"},
			Date:   "2024-03-05",
			Time:   "09:00",
			Amount: 12.5,
		},
	}
	data, err := Export(domain.KindSteam, records)
	require.NoError(t, err)
	// xlsx is a zip container.
	require.Greater(t, len(data), 4)
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}
