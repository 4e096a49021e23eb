package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"kojen-data/internal/domain"
	"kojen-data/internal/report"
	"kojen-data/internal/service"

	"go.uber.org/zap"
)

// RecordOps is the slice of the record service the HTTP layer calls; an
// interface so handler tests can run without a spreadsheet or a cache.
type RecordOps interface {
	Submit(ctx context.Context, rec domain.Record) (*service.SubmitResult, error)
	SubmitBatch(ctx context.Context, records []domain.Record, editor string) (*service.BatchResult, error)
	Update(ctx context.Context, rec domain.Record, editor string) (*service.SubmitResult, error)
	Delete(ctx context.Context, id string) (*service.SubmitResult, error)
	Refresh(ctx context.Context, filters map[string]string) (*service.ListResult, error)
	List(ctx context.Context) *service.ListResult
	All(ctx context.Context) []domain.Record
}

// RecordHandler serves the per-kind record API under /api/v1/records/{module}.
type RecordHandler struct {
	services map[domain.Kind]RecordOps
	logger   *zap.Logger
}

func NewRecordHandler(services map[domain.Kind]RecordOps, logger *zap.Logger) *RecordHandler {
	return &RecordHandler{services: services, logger: logger}
}

func (h *RecordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/records/")
	parts := strings.SplitN(rest, "/", 2)

	svc, kind, ok := h.resolve(parts[0])
	if !ok {
		writeJSON(w, http.StatusNotFound, Fail(fmt.Sprintf("bilinmeyen modül: %s", parts[0])))
		return
	}

	sub := ""
	if len(parts) == 2 {
		sub = parts[1]
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.list(w, r, svc)
	case sub == "" && r.Method == http.MethodPost:
		h.submit(w, r, svc, kind)
	case sub == "" && r.Method == http.MethodPut:
		h.update(w, r, svc, kind)
	case sub == "batch" && r.Method == http.MethodPost:
		h.submitBatch(w, r, svc, kind)
	case sub == "export" && r.Method == http.MethodGet:
		h.export(w, r, svc, kind)
	case sub != "" && r.Method == http.MethodDelete:
		h.delete(w, r, svc, sub)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *RecordHandler) resolve(module string) (RecordOps, domain.Kind, bool) {
	kind := domain.Kind(module)
	svc, ok := h.services[kind]
	return svc, kind, ok
}

// list serves GET /{module}: a remote refresh merged over the cache by
// default, or the cached view alone with ?source=cache (the pages use it for
// instant redisplay before the background refresh lands).
func (h *RecordHandler) list(w http.ResponseWriter, r *http.Request, svc RecordOps) {
	if r.URL.Query().Get("source") == "cache" {
		writeJSON(w, http.StatusOK, svc.List(r.Context()))
		return
	}

	filters := map[string]string{}
	for _, name := range []string{"date", "shift", "hour", "startDate", "endDate"} {
		if v := r.URL.Query().Get(name); v != "" {
			filters[name] = v
		}
	}
	// limit is numeric on the wire; a malformed value is dropped rather than
	// forwarded for the web app to choke on.
	if n := parseInt(r.URL.Query().Get("limit"), 0); n > 0 {
		filters["limit"] = strconv.Itoa(n)
	}
	res, err := svc.Refresh(r.Context(), filters)
	if err != nil {
		h.logger.Error("refresh failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("kayıtlar getirilemedi"))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *RecordHandler) submit(w http.ResponseWriter, r *http.Request, svc RecordOps, kind domain.Kind) {
	var body map[string]any
	if err := readBodyJSON(r, 1<<20, &body); err != nil || body == nil {
		writeJSON(w, http.StatusOK, Fail("geçersiz istek gövdesi"))
		return
	}

	res, err := svc.Submit(r.Context(), recordFromJSON(kind, body))
	if err != nil {
		h.logger.Error("submit failed", zap.String("module", string(kind)), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("kayıt işlenemedi"))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *RecordHandler) submitBatch(w http.ResponseWriter, r *http.Request, svc RecordOps, kind domain.Kind) {
	var body struct {
		Editor  string           `json:"editor"`
		Records []map[string]any `json:"records"`
	}
	if err := readBodyJSON(r, 4<<20, &body); err != nil || len(body.Records) == 0 {
		writeJSON(w, http.StatusOK, Fail("geçersiz istek gövdesi"))
		return
	}

	records := make([]domain.Record, 0, len(body.Records))
	for _, m := range body.Records {
		records = append(records, recordFromJSON(kind, m))
	}

	res, err := svc.SubmitBatch(r.Context(), records, body.Editor)
	if err != nil {
		h.logger.Error("batch submit failed", zap.String("module", string(kind)), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("toplu kayıt işlenemedi"))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *RecordHandler) update(w http.ResponseWriter, r *http.Request, svc RecordOps, kind domain.Kind) {
	var body struct {
		Editor string         `json:"editor"`
		Record map[string]any `json:"record"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil || body.Record == nil {
		writeJSON(w, http.StatusOK, Fail("geçersiz istek gövdesi"))
		return
	}

	res, err := svc.Update(r.Context(), recordFromJSON(kind, body.Record), body.Editor)
	if err != nil {
		h.logger.Error("update failed", zap.String("module", string(kind)), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("güncelleme işlenemedi"))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *RecordHandler) delete(w http.ResponseWriter, r *http.Request, svc RecordOps, id string) {
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	res, err := svc.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("delete failed", zap.String("record_id", id), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("silme işlenemedi"))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *RecordHandler) export(w http.ResponseWriter, r *http.Request, svc RecordOps, kind domain.Kind) {
	data, err := report.Export(kind, svc.All(r.Context()))
	if err != nil {
		h.logger.Error("export failed", zap.String("module", string(kind)), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("dışa aktarma başarısız"))
		return
	}

	filename := fmt.Sprintf("%s.xlsx", string(kind))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// recordFromJSON turns a flat request body into a typed record. Values arrive
// as whatever JSON type the page sent; everything funnels through the lenient
// string view the rest of the pipeline already handles.
func recordFromJSON(kind domain.Kind, m map[string]any) domain.Record {
	fields := make(map[string]string, len(m))
	for k, v := range m {
		fields[k] = fieldString(v)
	}
	return domain.FromFields(kind, fields)
}

func fieldString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
