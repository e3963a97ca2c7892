// Package quota enforces per-identity upload limits on top of the upload
// ledger. All admission decisions for one identity are serialized so that
// concurrent uploads can never both pass a nearly-exhausted quota.
package quota

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	apperrors "video-subtitler/internal/app/errors"
	"video-subtitler/internal/app/metrics"
	"video-subtitler/internal/app/model"
	"video-subtitler/internal/app/repository"
)

// DefaultActivityDebounce suppresses duplicate activity rows written within
// this window for the same identity.
const DefaultActivityDebounce = 5 * time.Second

// LimitsSource yields the effective limits for an identity at call time.
// Implementations must resolve per-identity overrides on every call so a
// changed override applies to the very next admission.
type LimitsSource interface {
	EffectiveLimits(identity string) model.Limits
}

// Ledger is the quota gatekeeper. Admission checks and the subsequent ledger
// insert happen under a per-identity mutex.
type Ledger struct {
	dao      repository.UploadDAO
	limits   LimitsSource
	logger   *slog.Logger
	debounce time.Duration
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(*Ledger)

// WithActivityDebounce overrides the duplicate-activity suppression window.
func WithActivityDebounce(d time.Duration) Option {
	return func(l *Ledger) { l.debounce = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// withClock is used by tests to control time.
func withClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func NewLedger(dao repository.UploadDAO, limits LimitsSource, opts ...Option) *Ledger {
	l := &Ledger{
		dao:      dao,
		limits:   limits,
		logger:   slog.Default(),
		debounce: DefaultActivityDebounce,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) identityLock(identity string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[identity]
	if !ok {
		m = &sync.Mutex{}
		l.locks[identity] = m
	}
	return m
}

// Admit validates rec against the identity's effective limits and, when every
// check passes, records the upload. ext is the file extension including the
// leading dot. Checks run in order: extension, file size, video count,
// duration; the first failure wins.
func (l *Ledger) Admit(rec model.UploadRecord, ext string) error {
	lock := l.identityLock(rec.Identity)
	lock.Lock()
	defer lock.Unlock()

	limits := l.limits.EffectiveLimits(rec.Identity)

	if !extensionAllowed(ext, limits.AllowedExtensions) {
		metrics.QuotaRejections.WithLabelValues("extension").Inc()
		return apperrors.Validation("file type %s is not supported, allowed: %s",
			ext, strings.Join(limits.AllowedExtensions, ", "))
	}
	if rec.SizeMB > limits.MaxFileSizeMB {
		metrics.QuotaRejections.WithLabelValues("size").Inc()
		return apperrors.Validation("file size %.1f MB exceeds the %.1f MB limit",
			rec.SizeMB, limits.MaxFileSizeMB)
	}

	videos, totalDuration, err := l.dao.Consumption(rec.Identity)
	if err != nil {
		return apperrors.Internal("read quota consumption", err)
	}
	if videos >= limits.MaxVideos {
		metrics.QuotaRejections.WithLabelValues("count").Inc()
		return apperrors.Validation("video limit reached: %d of %d videos used",
			videos, limits.MaxVideos)
	}
	// A failed probe leaves duration unknown (zero); the duration check is
	// skipped rather than failing the upload.
	maxDuration := limits.MaxDurationMinutes * 60
	if rec.DurationSeconds > 0 && totalDuration+rec.DurationSeconds > maxDuration {
		metrics.QuotaRejections.WithLabelValues("duration").Inc()
		return apperrors.Validation("duration quota exceeded: %.0fs used, %.0fs requested, %.0fs allowed",
			totalDuration, rec.DurationSeconds, maxDuration)
	}

	if err := l.dao.RecordUpload(rec); err != nil {
		return apperrors.Internal("record upload", err)
	}
	metrics.UploadsAdmitted.Inc()
	l.touchActivityLocked(rec.Identity, "upload")
	l.logger.Info("upload admitted",
		"identity", rec.Identity,
		"fileId", rec.FileID,
		"duration", rec.DurationSeconds,
		"sizeMB", rec.SizeMB)
	return nil
}

func extensionAllowed(ext string, allowed []string) bool {
	ext = strings.ToLower(ext)
	for _, a := range allowed {
		if strings.ToLower(a) == ext {
			return true
		}
	}
	return false
}

// Usage reports the identity's consumption against its effective limits.
// Remaining values never go below zero.
func (l *Ledger) Usage(identity string) (model.Usage, error) {
	limits := l.limits.EffectiveLimits(identity)
	videos, totalDuration, err := l.dao.Consumption(identity)
	if err != nil {
		return model.Usage{}, apperrors.Internal("read quota consumption", err)
	}
	usage := model.Usage{
		VideosCount:              videos,
		TotalDurationSeconds:     totalDuration,
		RemainingVideos:          max(limits.MaxVideos-videos, 0),
		RemainingDurationSeconds: max(limits.MaxDurationMinutes*60-totalDuration, 0),
		Limits:                   limits,
	}
	return usage, nil
}

// TouchActivity records an activity row unless one was written for this
// identity inside the debounce window.
func (l *Ledger) TouchActivity(identity, action string) {
	lock := l.identityLock(identity)
	lock.Lock()
	defer lock.Unlock()
	l.touchActivityLocked(identity, action)
}

func (l *Ledger) touchActivityLocked(identity, action string) {
	now := l.now()
	last, err := l.dao.LastActivity(identity)
	if err != nil {
		l.logger.Warn("activity lookup failed", "identity", identity, "error", err)
		return
	}
	if !last.IsZero() && now.Sub(last) < l.debounce {
		return
	}
	if err := l.dao.RecordActivity(identity, action, now); err != nil {
		l.logger.Warn("activity write failed", "identity", identity, "error", err)
	}
}

// Reset clears one identity's ledger rows.
func (l *Ledger) Reset(identity string) (int64, error) {
	lock := l.identityLock(identity)
	lock.Lock()
	defer lock.Unlock()

	removed, err := l.dao.Reset(identity)
	if err != nil {
		return 0, apperrors.Internal("reset quota", err)
	}
	l.logger.Info("quota reset", "identity", identity, "removed", removed)
	return removed, nil
}

// ResetAll clears the whole ledger.
func (l *Ledger) ResetAll() (int64, error) {
	removed, err := l.dao.ResetAll()
	if err != nil {
		return 0, apperrors.Internal("reset ledger", err)
	}
	l.logger.Info("ledger reset", "removed", removed)
	return removed, nil
}

// Stats aggregates consumption across all identities.
func (l *Ledger) Stats() (model.LedgerStats, error) {
	stats, err := l.dao.Stats()
	if err != nil {
		return model.LedgerStats{}, apperrors.Internal("read ledger stats", err)
	}
	return stats, nil
}
