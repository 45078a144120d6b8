// Package wallet is the application facade: it orchestrates uploads, sharing
// and listings, applying the access gate around the stores and absorbing
// ingestion-adapter failures so callers never see them.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/healthvault/internal/accessctl"
	"github.com/geocoder89/healthvault/internal/cache"
	"github.com/geocoder89/healthvault/internal/domain/grant"
	"github.com/geocoder89/healthvault/internal/domain/job"
	"github.com/geocoder89/healthvault/internal/domain/report"
	"github.com/geocoder89/healthvault/internal/domain/user"
	"github.com/geocoder89/healthvault/internal/domain/vital"
	"github.com/geocoder89/healthvault/internal/ingest"
	"github.com/geocoder89/healthvault/internal/jobs"
	"github.com/geocoder89/healthvault/internal/observability"
)

type UserStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type ReportStore interface {
	Create(ctx context.Context, req report.CreateReportRequest) (report.HealthReport, error)
	GetByID(ctx context.Context, id string) (report.HealthReport, error)
}

type VitalStore interface {
	Create(ctx context.Context, req vital.CreateVitalRequest) (vital.VitalRecord, error)
	ListByUser(ctx context.Context, userID string) ([]vital.VitalRecord, error)
}

type JobsEnqueuer interface {
	Create(ctx context.Context, req job.CreateRequest) (job.Job, error)
}

type ListingCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte)
	Delete(ctx context.Context, keys ...string)
}

type Service struct {
	users     UserStore
	reports   ReportStore
	vitals    VitalStore
	gate      *accessctl.Gate
	extractor ingest.Extractor
	jobsRepo  JobsEnqueuer // nil when no queue backend is configured
	listCache ListingCache // nil when redis is not configured
	prom      *observability.Prom
	log       *slog.Logger
}

func NewService(
	users UserStore,
	reports ReportStore,
	vitals VitalStore,
	gate *accessctl.Gate,
	extractor ingest.Extractor,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		users:     users,
		reports:   reports,
		vitals:    vitals,
		gate:      gate,
		extractor: extractor,
		log:       log,
	}
}

// WithJobs enables share-notification enqueueing.
func (s *Service) WithJobs(enqueuer JobsEnqueuer) *Service {
	s.jobsRepo = enqueuer
	return s
}

// WithCache enables the visible-report listing cache.
func (s *Service) WithCache(c ListingCache) *Service {
	s.listCache = c
	return s
}

// WithProm enables adapter latency metrics.
func (s *Service) WithProm(p *observability.Prom) *Service {
	s.prom = p
	return s
}

type UploadInput struct {
	FileBytes []byte
	MimeType  string
	FileName  string
	Title     string // optional; wins over the adapter's title
}

// UploadReport runs the uploaded document through the ingestion adapter,
// builds a report from the extraction (falling back to the file name, the
// current date and an empty vitals map when the adapter fails), persists it
// and appends one VitalRecord per extracted vital.
func (s *Service) UploadReport(ctx context.Context, userID string, in UploadInput) (report.HealthReport, error) {
	ext := s.extract(ctx, in)

	title := in.Title

	if title == "" {
		title = ext.Title
	}

	if title == "" {
		title = in.FileName
	}

	category := ext.Category

	if category == "" {
		category = "General"
	}

	rep, err := s.reports.Create(ctx, report.CreateReportRequest{
		OwnerID:         userID,
		Title:           title,
		Category:        category,
		Date:            ext.Date,
		FileBlob:        in.FileBytes,
		MimeType:        in.MimeType,
		ExtractedVitals: ext.Vitals,
	})

	if err != nil {
		return report.HealthReport{}, err
	}

	for kind, value := range ext.Vitals {
		_, err := s.vitals.Create(ctx, vital.CreateVitalRequest{
			UserID: userID,
			Date:   rep.Date,
			Kind:   kind,
			Value:  value,
		})

		if err != nil {
			return report.HealthReport{}, err
		}
	}

	s.invalidateListing(ctx, userID)

	return rep, nil
}

// extract calls the adapter and degrades to an empty extraction on any error,
// including deadline expiry. Adapter trouble must never fail an upload.
func (s *Service) extract(ctx context.Context, in UploadInput) ingest.Extraction {
	start := time.Now()

	ext, err := s.extractor.Extract(ctx, in.FileBytes, in.MimeType)

	if s.prom != nil {
		result := "ok"

		switch {
		case errors.Is(err, context.DeadlineExceeded):
			result = "timeout"
		case err != nil:
			result = "error"
		}

		s.prom.IngestDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		s.log.WarnContext(ctx, "ingest_adapter_failed", "err", err, "file", in.FileName)
		return ingest.Extraction{}
	}

	return ext
}

// ShareReport grants viewer access to one report. The viewer may be referenced
// by id or by email; exactly one must be supplied by the caller.
func (s *Service) ShareReport(ctx context.Context, ownerID, reportID, viewerID, viewerEmail string) (grant.AccessGrant, error) {
	if viewerID == "" {
		viewer, err := s.users.GetByEmail(ctx, viewerEmail)

		if err != nil {
			return grant.AccessGrant{}, err
		}

		viewerID = viewer.ID
	}

	g, err := s.gate.GrantShare(ctx, ownerID, reportID, viewerID)

	if err != nil {
		return grant.AccessGrant{}, err
	}

	s.enqueueShareNotification(ctx, g)
	s.invalidateListing(ctx, viewerID)

	return g, nil
}

// enqueueShareNotification is best effort: the grant is already durable, so a
// queue hiccup only costs the viewer a heads-up, not access.
func (s *Service) enqueueShareNotification(ctx context.Context, g grant.AccessGrant) {
	if s.jobsRepo == nil {
		return
	}

	viewer, err := s.users.GetByID(ctx, g.ViewerID)

	if err != nil {
		s.log.WarnContext(ctx, "share_notification_skipped", "err", err, "grant_id", g.ID)
		return
	}

	owner, err := s.users.GetByID(ctx, g.OwnerID)

	if err != nil {
		s.log.WarnContext(ctx, "share_notification_skipped", "err", err, "grant_id", g.ID)
		return
	}

	rep, err := s.reports.GetByID(ctx, g.ReportID)

	if err != nil {
		s.log.WarnContext(ctx, "share_notification_skipped", "err", err, "grant_id", g.ID)
		return
	}

	payload := jobs.ShareNotificationPayload{
		GrantID:     g.ID,
		ReportID:    g.ReportID,
		ReportTitle: rep.Title,
		OwnerName:   owner.Name,
		ViewerID:    viewer.ID,
		ViewerEmail: viewer.Email,
		GrantedAt:   g.GrantedAt,
	}

	raw, err := payload.JSON()

	if err != nil {
		s.log.WarnContext(ctx, "share_notification_skipped", "err", err, "grant_id", g.ID)
		return
	}

	key := "share:notify:" + g.ID

	_, err = s.jobsRepo.Create(ctx, job.CreateRequest{
		Type:           string(jobs.JobShareNotification),
		Payload:        raw,
		MaxAttempts:    5,
		IdempotencyKey: &key,
	})

	if err != nil {
		s.log.WarnContext(ctx, "share_notification_enqueue_failed", "err", err, "grant_id", g.ID)
	}
}

// ListReports returns every report visible to the user, serving from the
// listing cache when possible.
func (s *Service) ListReports(ctx context.Context, userID string) ([]report.HealthReport, error) {
	key := cache.VisibleReportsKey(userID)

	if s.listCache != nil {
		if b, ok := s.listCache.Get(ctx, key); ok {
			var cached []report.HealthReport

			if err := json.Unmarshal(b, &cached); err == nil {
				return cached, nil
			}
			// corrupt entry: fall through and overwrite
		}
	}

	visible, err := s.gate.ListVisible(ctx, userID)

	if err != nil {
		return nil, err
	}

	if s.listCache != nil {
		if b, err := json.Marshal(visible); err == nil {
			s.listCache.Set(ctx, key, b)
		}
	}

	return visible, nil
}

// GetReport fetches one report after an access check.
func (s *Service) GetReport(ctx context.Context, userID, reportID string) (report.HealthReport, error) {
	rep, err := s.reports.GetByID(ctx, reportID)

	if err != nil {
		return report.HealthReport{}, err
	}

	ok, err := s.gate.CanView(ctx, userID, rep)

	if err != nil {
		return report.HealthReport{}, err
	}

	if !ok {
		return report.HealthReport{}, accessctl.ErrForbidden
	}

	return rep, nil
}

func (s *Service) ListVitals(ctx context.Context, userID string) ([]vital.VitalRecord, error) {
	return s.vitals.ListByUser(ctx, userID)
}

func (s *Service) AddVital(ctx context.Context, userID string, kind vital.Kind, value float64, date time.Time) (vital.VitalRecord, error) {
	if !kind.IsValid() {
		return vital.VitalRecord{}, vital.ErrInvalidKind
	}

	return s.vitals.Create(ctx, vital.CreateVitalRequest{
		UserID: userID,
		Date:   date,
		Kind:   kind,
		Value:  value,
	})
}

func (s *Service) invalidateListing(ctx context.Context, userIDs ...string) {
	if s.listCache == nil {
		return
	}

	keys := make([]string, 0, len(userIDs))

	for _, id := range userIDs {
		keys = append(keys, cache.VisibleReportsKey(id))
	}

	s.listCache.Delete(ctx, keys...)
}
