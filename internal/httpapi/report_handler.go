package httpapi

import (
	"net/http"

	"kojen-data/internal/dateutil"
	"kojen-data/internal/domain"
	"kojen-data/internal/report"

	"go.uber.org/zap"
)

// ReportHandler serves the dashboard summary built from the cached sets.
type ReportHandler struct {
	services map[domain.Kind]RecordOps
	logger   *zap.Logger
}

func NewReportHandler(services map[domain.Kind]RecordOps, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{services: services, logger: logger}
}

func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	start := dateutil.ISODate(r.URL.Query().Get("startDate"))
	end := dateutil.ISODate(r.URL.Query().Get("endDate"))

	sets := make(map[domain.Kind][]domain.Record, len(h.services))
	for kind, svc := range h.services {
		sets[kind] = filterByDate(svc.All(r.Context()), start, end)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    report.Build(sets),
	})
}

// filterByDate keeps records whose date falls in [start, end]. A missing bound
// (the sentinel, from an empty or malformed query value) leaves that side
// open; sentinel-dated records only survive an unbounded query.
func filterByDate(records []domain.Record, start, end string) []domain.Record {
	if start == dateutil.InvalidDate && end == dateutil.InvalidDate {
		return records
	}
	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		d := dateutil.ISODate(rec.Fields()["date"])
		if d == dateutil.InvalidDate {
			continue
		}
		if start != dateutil.InvalidDate && d < start {
			continue
		}
		if end != dateutil.InvalidDate && d > end {
			continue
		}
		out = append(out, rec)
	}
	return out
}
