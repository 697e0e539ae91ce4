// ABOUTME: Tracker materializes sessions from the ledger and submits new ones.
// ABOUTME: Every failure is caught here and turned into a Status notification.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/rehab/internal/codec"
	"github.com/harperreed/rehab/internal/fhe"
	"github.com/harperreed/rehab/internal/index"
	"github.com/harperreed/rehab/internal/models"
	"github.com/harperreed/rehab/internal/view"
)

// Gateway is the ledger surface the tracker consumes.
type Gateway interface {
	index.Backend
	IsAvailable(ctx context.Context) (bool, error)
}

// Draft is a session as entered by the user, before encryption.
type Draft struct {
	ExerciseType   string
	Duration       int
	Intensity      models.Intensity
	Metrics        string
	TherapistNotes string
}

// Validate checks the fields a submission needs.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.ExerciseType) == "" || strings.TrimSpace(d.Metrics) == "" {
		return ErrInvalidDraft
	}
	if d.Duration < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDraft, models.ErrNegativeDuration)
	}
	if !models.IsValidIntensity(string(d.Intensity)) {
		return fmt.Errorf("%w: %w", ErrInvalidDraft, models.ErrInvalidIntensity)
	}
	return nil
}

// Tracker is the session-level entry point for refresh and submit.
type Tracker struct {
	gw        Gateway
	idx       *index.Manager
	encryptor fhe.Encryptor
	scorer    fhe.Scorer
	now       func() time.Time
	notify    func(Status)
	log       *log.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithEncryptor sets the metrics encryption capability.
func WithEncryptor(e fhe.Encryptor) Option {
	return func(t *Tracker) { t.encryptor = e }
}

// WithScorer sets the progress score capability.
func WithScorer(s fhe.Scorer) Option {
	return func(t *Tracker) { t.scorer = s }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithNotifier receives pending notifications while an operation runs.
func WithNotifier(fn func(Status)) Option {
	return func(t *Tracker) { t.notify = fn }
}

// WithLogger sets the tracker logger.
func WithLogger(l *log.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

// New returns a Tracker over gw using the placeholder FHE capabilities.
func New(gw Gateway, opts ...Option) *Tracker {
	t := &Tracker{
		gw:        gw,
		idx:       index.NewManager(gw),
		encryptor: fhe.Placeholder{},
		scorer:    fhe.RandomScorer{},
		now:       time.Now,
		notify:    func(Status) {},
		log:       log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// CheckAvailability runs the capability probe and reports the outcome.
func (t *Tracker) CheckAvailability(ctx context.Context) Status {
	ok, err := t.gw.IsAvailable(ctx)
	if err != nil {
		t.log.Warn("availability check failed", "err", err)
		return failure(MsgCheckFailed, err)
	}
	if !ok {
		return failure(MsgUnavailable, ErrUnavailable)
	}
	return success(MsgAvailable)
}

// Refresh rebuilds the snapshot from the ledger. On failure the previous
// snapshot is returned unchanged alongside an error status.
func (t *Tracker) Refresh(ctx context.Context, prev *view.Snapshot) (*view.Snapshot, Status) {
	if prev == nil {
		prev = view.Empty()
	}

	snap, err := t.Materialize(ctx)
	if err != nil {
		t.log.Error("refresh failed", "err", err)
		return prev, refreshFailure(err)
	}
	return snap, Status{}
}

// Materialize reads the index and every record it names. Unreadable or
// malformed records are logged and skipped; only an unavailable backend,
// a failed index read, or cancellation abort the whole operation.
func (t *Tracker) Materialize(ctx context.Context) (*view.Snapshot, error) {
	sessions, skipped, err := t.collect(ctx)
	if err != nil {
		return nil, err
	}
	return view.NewSnapshot(sessions, t.now(), skipped), nil
}

// collect loads the indexed sessions in index order, without sorting.
func (t *Tracker) collect(ctx context.Context) ([]models.Session, int, error) {
	ok, err := t.gw.IsAvailable(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if !ok {
		return nil, 0, ErrUnavailable
	}

	ids, err := t.idx.ListIdentifiers(ctx)
	if err != nil {
		if !codec.IsDecodeError(err) {
			return nil, 0, err
		}
		t.log.Warn("index unreadable, showing no sessions", "key", index.Key, "err", err)
	}

	sessions := make([]models.Session, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	skipped := 0

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		sess, err := t.load(ctx, id)
		if err != nil {
			skipped++
			if errors.Is(err, codec.ErrAbsent) {
				t.log.Debug("indexed session missing", "id", id)
			} else {
				t.log.Warn("skipping session", "id", id, "err", err)
			}
			continue
		}
		sessions = append(sessions, sess)
	}

	return sessions, skipped, nil
}

func (t *Tracker) load(ctx context.Context, id string) (models.Session, error) {
	data, err := t.gw.GetData(ctx, index.RecordKey(id))
	if err != nil {
		return models.Session{}, err
	}
	return codec.Decode(id, data)
}

// Submit encrypts and stores a new session, then appends it to the index.
// The returned session is nil unless the status is a success.
func (t *Tracker) Submit(ctx context.Context, d Draft) (*models.Session, Status) {
	if err := d.Validate(); err != nil {
		return nil, submitFailure(err)
	}

	t.notify(Status{Level: LevelPending, Message: MsgEncrypting})

	sess, err := t.build(ctx, d)
	if err != nil {
		t.log.Error("build session failed", "err", err)
		return nil, submitFailure(err)
	}

	if err := t.store(ctx, *sess); err != nil {
		t.log.Error("submit failed", "id", sess.ID, "err", err)
		return nil, submitFailure(err)
	}

	t.log.Info("session submitted", "id", sess.ID, "exercise", sess.ExerciseType)
	return sess, success(MsgSubmitted)
}

func (t *Tracker) build(ctx context.Context, d Draft) (*models.Session, error) {
	sess := models.NewSession(strings.TrimSpace(d.ExerciseType), d.Duration, d.Intensity, t.now()).
		WithNotes(d.TherapistNotes)

	ct, err := t.encryptor.Encrypt(ctx, fhe.Metrics{
		Metrics:   d.Metrics,
		Intensity: d.Intensity,
		Duration:  d.Duration,
	})
	if err != nil {
		return nil, fmt.Errorf("encrypt metrics: %w", err)
	}
	sess.EncryptedMetrics = ct

	score, err := t.scorer.Score(ctx, *sess)
	if err != nil {
		return nil, fmt.Errorf("score progress: %w", err)
	}
	sess.WithProgressScore(score)

	return sess, nil
}

// store writes the record, then appends its ID to the index.
func (t *Tracker) store(ctx context.Context, sess models.Session) error {
	data, err := codec.Encode(sess)
	if err != nil {
		return err
	}
	if err := t.gw.SetData(ctx, index.RecordKey(sess.ID), data); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := t.idx.AppendIdentifier(ctx, sess.ID); err != nil {
		return fmt.Errorf("update index: %w", err)
	}
	return nil
}
