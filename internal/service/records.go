package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"kojen-data/internal/domain"
	"kojen-data/internal/mapper"
	"kojen-data/internal/sheets"
	"kojen-data/internal/store"

	"go.uber.org/zap"
)

// RemoteStore is the slice of the sheets client the service needs; an
// interface so tests can fake the spreadsheet side.
type RemoteStore interface {
	Save(ctx context.Context, kind domain.Kind, payload map[string]string) (*sheets.Envelope, error)
	Update(ctx context.Context, kind domain.Kind, id string, payload map[string]string) (*sheets.Envelope, error)
	Delete(ctx context.Context, kind domain.Kind, id string) (*sheets.Envelope, error)
	Get(ctx context.Context, kind domain.Kind, filters map[string]string) (*sheets.Envelope, error)
}

// SubmitResult is the structured outcome of a write operation. Business
// failures (validation, duplicates, lock contention, unreachable store) land
// here; only programming errors surface as Go errors.
type SubmitResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
	RecordID       string `json:"recordId,omitempty"`
	DuplicateFound bool   `json:"duplicateFound,omitempty"`
	ExistingID     string `json:"existingId,omitempty"`
	LockActive     bool   `json:"lockActive,omitempty"`
	LocalOnly      bool   `json:"localOnly,omitempty"`
	Skipped        bool   `json:"skipped,omitempty"`
}

// ListResult is the outcome of a read. Degraded marks a view served from the
// local cache because the remote fetch failed.
type ListResult struct {
	Success  bool            `json:"success"`
	Error    string          `json:"error,omitempty"`
	Records  []domain.Record `json:"data"`
	Count    int             `json:"count"`
	Degraded bool            `json:"degraded,omitempty"`
}

// BatchItem pairs one batch entry with its outcome.
type BatchItem struct {
	Hour   string       `json:"hour,omitempty"`
	Result SubmitResult `json:"result"`
}

// BatchResult summarizes a sequential batch submission.
type BatchResult struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message,omitempty"`
	SavedCount   int         `json:"savedCount"`
	SkippedCount int         `json:"skippedCount"`
	ErrorCount   int         `json:"errorCount"`
	Items        []BatchItem `json:"items"`
}

// RecordService runs the submit/refresh/update/delete flows for one record
// kind, with the resolver in the middle and the spreadsheet web app on the far
// side. All cache mutation happens here, only after a completed operation.
type RecordService struct {
	kind     domain.Kind
	remote   RemoteStore
	cache    store.KV
	resolver *Resolver
	logger   *zap.Logger

	// permits serializes write flows: one permit, taken for the whole of a
	// submit or a batch, so concurrent saves from one session cannot race the
	// store's advisory lock.
	permits chan struct{}

	batchDelay time.Duration
	now        func() time.Time
	newID      func() string
	sleep      func(ctx context.Context, d time.Duration)
}

// NewRecordService wires a service for one kind. window <= 0 and
// batchDelay < 0 select the defaults (34 records, 300ms).
func NewRecordService(kind domain.Kind, remote RemoteStore, cache store.KV, window int, batchDelay time.Duration, logger *zap.Logger) *RecordService {
	if batchDelay < 0 {
		batchDelay = 300 * time.Millisecond
	}
	s := &RecordService{
		kind:       kind,
		remote:     remote,
		cache:      cache,
		resolver:   NewResolver(window),
		logger:     logger,
		permits:    make(chan struct{}, 1),
		batchDelay: batchDelay,
		now:        time.Now,
		newID: func() string {
			return strconv.FormatInt(time.Now().UnixMilli(), 10)
		},
		sleep: func(ctx context.Context, d time.Duration) {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
			case <-t.C:
			}
		},
	}
	return s
}

func (s *RecordService) cacheKey() string {
	return "kojen:" + string(s.kind) + ":records"
}

// nowDisplay renders the wall clock in the display format the sheets store
// for the creation timestamp column.
func (s *RecordService) nowDisplay() string {
	return s.now().Format("02/01/2006 15:04:05")
}

// Submit validates a candidate, gates it against duplicates, persists it
// remotely and folds the confirmed record into the cache. A remote failure
// keeps the candidate cached so the operator's entry is not lost.
func (s *RecordService) Submit(ctx context.Context, rec domain.Record) (*SubmitResult, error) {
	s.acquire()
	defer s.release()
	return s.submitLocked(ctx, rec)
}

func (s *RecordService) acquire() { s.permits <- struct{}{} }
func (s *RecordService) release() { <-s.permits }

func (s *RecordService) submitLocked(ctx context.Context, rec domain.Record) (*SubmitResult, error) {
	if rec == nil || rec.Kind() != s.kind {
		return nil, fmt.Errorf("record kind mismatch: service=%s", s.kind)
	}

	if err := validate(rec); err != nil {
		return &SubmitResult{Success: false, Error: err.Error()}, nil
	}

	existing := s.loadSet(ctx)
	if dup := s.resolver.CheckDuplicate(rec, existing); dup != nil {
		return &SubmitResult{
			Success:        false,
			Error:          dup.Error(),
			DuplicateFound: true,
			ExistingID:     dup.ExistingID,
		}, nil
	}

	meta := rec.GetMeta()
	if meta.ID == "" {
		meta.ID = s.newID()
	}
	if meta.Timestamp == "" {
		meta.Timestamp = s.nowDisplay()
	}

	env, err := s.remote.Save(ctx, s.kind, payload(rec))
	switch {
	case err == nil && env.Success:
		s.saveSet(ctx, s.resolver.Merge(existing, []domain.Record{rec}))
		return &SubmitResult{Success: true, Message: env.Message, RecordID: meta.ID}, nil

	case err == nil && env.DuplicateFound:
		// The store saw a row this client had not fetched yet. Nothing is
		// cached; the advisory check simply ran against stale data.
		return &SubmitResult{
			Success:        false,
			Error:          env.Error,
			DuplicateFound: true,
		}, nil

	case errors.Is(err, domain.ErrLockContention):
		return &SubmitResult{
			Success:    false,
			Error:      "kayıt kilidi aktif, lütfen birazdan tekrar deneyin",
			LockActive: true,
		}, nil

	default:
		// Remote down or a non-success envelope: keep the entry locally so
		// nothing the operator typed is lost, and say so.
		s.saveSet(ctx, s.resolver.Merge(existing, []domain.Record{rec}))
		s.logger.Warn("remote save failed, record kept locally",
			zap.String("module", string(s.kind)),
			zap.String("record_id", meta.ID),
			zap.Error(err),
		)
		return &SubmitResult{
			Success:   true,
			LocalOnly: true,
			RecordID:  meta.ID,
			Message:   "kayıt yalnızca yerel olarak saklandı",
			Error:     remoteError(env, err),
		}, nil
	}
}

// SubmitBatch persists a whole shift's worth of entries one at a time, each
// awaited to completion, with a small delay between records so consecutive
// saves do not trip the store's 60-second advisory lock. No parallel
// submission, ever. Entries whose slot already holds a record become updates
// (or detected no-ops); entries with nothing filled in are skipped outright.
func (s *RecordService) SubmitBatch(ctx context.Context, records []domain.Record, editor string) (*BatchResult, error) {
	s.acquire()
	defer s.release()

	out := &BatchResult{Success: true}
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var res *SubmitResult
		var err error
		switch {
		case emptyEntry(rec):
			res = &SubmitResult{Success: true, Skipped: true, Message: "boş satır atlandı"}
		case findRecord(s.loadSet(ctx), rec) != nil:
			res, err = s.updateLocked(ctx, rec, editor)
		default:
			res, err = s.submitLocked(ctx, rec)
		}
		if err != nil {
			return nil, err
		}

		item := BatchItem{Result: *res}
		if hr, ok := rec.(*domain.HourlyEnergyRecord); ok {
			item.Hour = hr.Hour
		}
		out.Items = append(out.Items, item)

		switch {
		case res.Skipped:
			out.SkippedCount++
		case res.Success && !res.LocalOnly:
			out.SavedCount++
		default:
			out.ErrorCount++
		}

		// Delay only after an actual write, and not after the last one.
		if res.Success && !res.Skipped && i < len(records)-1 && s.batchDelay > 0 {
			s.sleep(ctx, s.batchDelay)
		}
	}

	out.Message = fmt.Sprintf("%d kayıt kaydedildi, %d atlandı, %d hatalı",
		out.SavedCount, out.SkippedCount, out.ErrorCount)
	return out, nil
}

// Update applies a revision to an existing record. Identical field values are
// a detected no-op: no write, no provenance change. A real change stamps
// updatedAt/editedBy, preserves the original submission metadata and records
// a change summary.
func (s *RecordService) Update(ctx context.Context, incoming domain.Record, editor string) (*SubmitResult, error) {
	s.acquire()
	defer s.release()
	return s.updateLocked(ctx, incoming, editor)
}

func (s *RecordService) updateLocked(ctx context.Context, incoming domain.Record, editor string) (*SubmitResult, error) {
	if incoming == nil || incoming.Kind() != s.kind {
		return nil, fmt.Errorf("record kind mismatch: service=%s", s.kind)
	}
	if err := validate(incoming); err != nil {
		return &SubmitResult{Success: false, Error: err.Error()}, nil
	}

	existing := s.loadSet(ctx)
	stored := findRecord(existing, incoming)
	if stored == nil {
		return &SubmitResult{Success: false, Error: domain.ErrNotFound.Error()}, nil
	}

	changes := Diff(stored, incoming)
	if len(changes) == 0 {
		return &SubmitResult{
			Success:  true,
			Skipped:  true,
			RecordID: stored.RecordID(),
			Message:  "değişiklik yok",
		}, nil
	}

	storedMeta := stored.GetMeta()
	meta := incoming.GetMeta()
	meta.ID = stored.RecordID()
	meta.Timestamp = storedMeta.Timestamp
	meta.UpdatedAt = s.nowDisplay()
	meta.EditedBy = editor
	meta.Changes = ChangeSummary(changes)
	if storedMeta.OriginalTimestamp != "" {
		meta.OriginalTimestamp = storedMeta.OriginalTimestamp
		meta.OriginalOperator = storedMeta.OriginalOperator
	} else {
		meta.OriginalTimestamp = storedMeta.Timestamp
		meta.OriginalOperator = operatorOf(stored.Fields())
	}

	env, err := s.remote.Update(ctx, s.kind, meta.ID, payload(incoming))
	switch {
	case err == nil && env.Success:
		s.saveSet(ctx, s.resolver.Merge(existing, []domain.Record{incoming}))
		return &SubmitResult{Success: true, Message: env.Message, RecordID: meta.ID}, nil

	case errors.Is(err, domain.ErrLockContention):
		return &SubmitResult{
			Success:    false,
			Error:      "kayıt kilidi aktif, lütfen birazdan tekrar deneyin",
			LockActive: true,
		}, nil

	default:
		s.saveSet(ctx, s.resolver.Merge(existing, []domain.Record{incoming}))
		s.logger.Warn("remote update failed, revision kept locally",
			zap.String("module", string(s.kind)),
			zap.String("record_id", meta.ID),
			zap.Error(err),
		)
		return &SubmitResult{
			Success:   true,
			LocalOnly: true,
			RecordID:  meta.ID,
			Message:   "güncelleme yalnızca yerel olarak saklandı",
			Error:     remoteError(env, err),
		}, nil
	}
}

// Delete removes a record remotely first; the cache entry goes only once the
// store confirms.
func (s *RecordService) Delete(ctx context.Context, id string) (*SubmitResult, error) {
	s.acquire()
	defer s.release()

	env, err := s.remote.Delete(ctx, s.kind, id)
	if err != nil || !env.Success {
		return &SubmitResult{Success: false, Error: remoteError(env, err), RecordID: id}, nil
	}

	existing := s.loadSet(ctx)
	kept := existing[:0:0]
	for _, rec := range existing {
		if rec.RecordID() != id {
			kept = append(kept, rec)
		}
	}
	s.saveSet(ctx, kept)
	return &SubmitResult{Success: true, Message: env.Message, RecordID: id}, nil
}

// Refresh fetches the remote set (optionally filtered), merges it over the
// cache and returns the windowed most-recent-first view. One malformed row
// never aborts the batch: it comes through with sentinel values and sinks to
// the bottom. When the fetch fails the cached view is returned, flagged
// degraded, rather than an empty one.
func (s *RecordService) Refresh(ctx context.Context, filters map[string]string) (*ListResult, error) {
	local := s.loadSet(ctx)

	env, err := s.remote.Get(ctx, s.kind, filters)
	if err != nil || !env.Success {
		s.logger.Warn("remote fetch failed, serving local view",
			zap.String("module", string(s.kind)),
			zap.Error(err),
		)
		s.resolver.SortDesc(local)
		view := s.resolver.Window(local)
		return &ListResult{
			Success:  true,
			Records:  view,
			Count:    len(view),
			Degraded: true,
			Error:    remoteError(env, err),
		}, nil
	}

	opts := mapper.Options{NewID: s.newID, Now: s.nowDisplay}
	remote := make([]domain.Record, 0, len(env.Data))
	for _, row := range env.Rows() {
		remote = append(remote, mapper.Inbound(s.kind, row, opts))
	}

	merged := s.resolver.Merge(local, remote)
	s.saveSet(ctx, merged)

	view := s.resolver.Window(merged)
	return &ListResult{Success: true, Records: view, Count: len(view)}, nil
}

// List serves the windowed view straight from the cache, without touching the
// remote store.
func (s *RecordService) List(ctx context.Context) *ListResult {
	records := s.loadSet(ctx)
	s.resolver.SortDesc(records)
	view := s.resolver.Window(records)
	return &ListResult{Success: true, Records: view, Count: len(view)}
}

// All returns the full cached set, unwindowed, for reporting and export.
func (s *RecordService) All(ctx context.Context) []domain.Record {
	records := s.loadSet(ctx)
	s.resolver.SortDesc(records)
	return records
}

// emptyEntry reports whether a batch row carries no measurements at all, the
// way untouched hour slots arrive from the shift table.
func emptyEntry(rec domain.Record) bool {
	hr, ok := rec.(*domain.HourlyEnergyRecord)
	if !ok {
		return false
	}
	return hr.Aktif == 0 && hr.Reaktif == 0 && hr.AydemAktif == 0 && hr.AydemReaktif == 0
}

// findRecord locates the stored counterpart of an incoming revision, by ID
// first and natural key second (the hourly page addresses rows by slot when
// the ID column predates the schema).
func findRecord(existing []domain.Record, incoming domain.Record) domain.Record {
	id := incoming.RecordID()
	for _, rec := range existing {
		if id != "" && rec.RecordID() == id {
			return rec
		}
	}
	key := domain.KeyOf(incoming)
	if key == "" {
		return nil
	}
	for _, rec := range existing {
		if domain.KeyOf(rec) == key {
			return rec
		}
	}
	return nil
}

// payload flattens a record for the wire, dropping empty values so the web
// app's own defaults apply.
func payload(rec domain.Record) map[string]string {
	fields := rec.Fields()
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if k == "serverSort" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func remoteError(env *sheets.Envelope, err error) string {
	if env != nil && env.Error != "" {
		return env.Error
	}
	if err != nil {
		return err.Error()
	}
	return domain.ErrRemoteUnavailable.Error()
}

// loadSet reads the cached record set. A miss or a broken cache degrades to
// empty; the cache is an accelerator, not the store.
func (s *RecordService) loadSet(ctx context.Context) []domain.Record {
	raw, err := s.cache.Get(ctx, s.cacheKey())
	if err != nil {
		if !errors.Is(err, store.ErrMiss) {
			s.logger.Warn("cache read failed", zap.String("module", string(s.kind)), zap.Error(err))
		}
		return nil
	}

	var flat []map[string]string
	if err := json.Unmarshal([]byte(raw), &flat); err != nil {
		s.logger.Warn("cache entry corrupt, dropping", zap.String("module", string(s.kind)), zap.Error(err))
		return nil
	}

	records := make([]domain.Record, 0, len(flat))
	for _, f := range flat {
		if rec := domain.FromFields(s.kind, f); rec != nil {
			records = append(records, rec)
		}
	}
	return records
}

func (s *RecordService) saveSet(ctx context.Context, records []domain.Record) {
	flat := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		flat = append(flat, rec.Fields())
	}
	raw, err := json.Marshal(flat)
	if err != nil {
		s.logger.Error("cache encode failed", zap.String("module", string(s.kind)), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(), string(raw), 0); err != nil {
		s.logger.Warn("cache write failed", zap.String("module", string(s.kind)), zap.Error(err))
	}
}
