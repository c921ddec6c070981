package reconciler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BearBump/ParcelBox/internal/broker/messages"
	"github.com/BearBump/ParcelBox/internal/emailparse"
	"github.com/BearBump/ParcelBox/internal/integrations/courier"
	"github.com/BearBump/ParcelBox/internal/integrations/mailbox"
	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/pkg/errors"
)

type Store interface {
	Upsert(ctx context.Context, p *models.Parcel) error
	Get(ctx context.Context, trackingNumber string) (*models.Parcel, error)
	ListAll(ctx context.Context) ([]*models.Parcel, error)
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

// Reconciler — цикл сверки: вычитывает почту, заводит новые посылки
// и опрашивает курьерские API по устаревшим записям.
type Reconciler struct {
	store    Store
	mailbox  mailbox.Client
	registry *courier.Registry
	producer Producer
	rl       RateLimiter

	topic string

	checkInterval      time.Duration
	staleness          time.Duration
	errorCooldown      time.Duration
	maxEmails          int
	searchQuery        string
	rateLimitPerMinute int64

	triggerCh chan struct{}

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	startedAtUnixNano   int64
	lastCycleUnixNano   atomic.Int64
	lastTriggerUnixNano atomic.Int64
	totalCycles         atomic.Int64
	totalNewParcels     atomic.Int64
	totalRefreshed      atomic.Int64
	totalErrors         atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(store Store, mb mailbox.Client, registry *courier.Registry) *Reconciler {
	return &Reconciler{
		store: store, mailbox: mb, registry: registry,
		topic:              "parcel.updated",
		checkInterval:      15 * time.Minute,
		staleness:          time.Hour,
		errorCooldown:      time.Minute,
		maxEmails:          50,
		searchQuery:        mailbox.DefaultSearchQuery,
		rateLimitPerMinute: 60,
		triggerCh:          make(chan struct{}, 1),
		startedAtUnixNano:  time.Now().UTC().UnixNano(),
	}
}

func (r *Reconciler) WithSettings(checkInterval, staleness, errorCooldown time.Duration, maxEmails int) *Reconciler {
	if checkInterval > 0 {
		r.checkInterval = checkInterval
	}
	if staleness > 0 {
		r.staleness = staleness
	}
	if errorCooldown > 0 {
		r.errorCooldown = errorCooldown
	}
	if maxEmails > 0 {
		r.maxEmails = maxEmails
	}
	return r
}

func (r *Reconciler) WithSearchQuery(query string) *Reconciler {
	if query != "" {
		r.searchQuery = query
	}
	return r
}

func (r *Reconciler) WithProducer(p Producer, topic string) *Reconciler {
	r.producer = p
	if topic != "" {
		r.topic = topic
	}
	return r
}

func (r *Reconciler) WithRateLimiter(rl RateLimiter, perMinute int64) *Reconciler {
	r.rl = rl
	if perMinute > 0 {
		r.rateLimitPerMinute = perMinute
	}
	return r
}

// Trigger forces an immediate reconcile cycle (best-effort, non-blocking).
func (r *Reconciler) Trigger() {
	r.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case r.triggerCh <- struct{}{}:
	default:
	}
}

type Stats struct {
	StartedAt       time.Time  `json:"startedAt"`
	LastCycleAt     *time.Time `json:"lastCycleAt,omitempty"`
	LastTriggerAt   *time.Time `json:"lastTriggerAt,omitempty"`
	TotalCycles     int64      `json:"totalCycles"`
	TotalNewParcels int64      `json:"totalNewParcels"`
	TotalRefreshed  int64      `json:"totalRefreshed"`
	TotalErrors     int64      `json:"totalErrors"`
	LastError       string     `json:"lastError,omitempty"`
}

func (r *Reconciler) Stats() Stats {
	st := Stats{
		StartedAt:       time.Unix(0, r.startedAtUnixNano).UTC(),
		TotalCycles:     r.totalCycles.Load(),
		TotalNewParcels: r.totalNewParcels.Load(),
		TotalRefreshed:  r.totalRefreshed.Load(),
		TotalErrors:     r.totalErrors.Load(),
	}
	if n := r.lastCycleUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastCycleAt = &t
	}
	if n := r.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	r.lastErrorMu.Lock()
	st.LastError = r.lastError
	r.lastErrorMu.Unlock()
	return st
}

// Run крутит цикл сверки до отмены контекста. Первый цикл выполняется сразу,
// после ошибки следующая попытка через errorCooldown вместо checkInterval.
func (r *Reconciler) Run(ctx context.Context) error {
	t := time.NewTimer(0)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		case <-r.triggerCh:
			if !t.Stop() {
				select {
				case <-t.C:
				default:
				}
			}
		}

		delay := r.checkInterval
		if err := r.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.totalErrors.Add(1)
			r.lastErrorMu.Lock()
			r.lastError = err.Error()
			r.lastErrorMu.Unlock()
			slog.Error("reconcile cycle", "error", err.Error())
			delay = r.errorCooldown
		}
		t.Reset(delay)
	}
}

// RunCycle выполняет одну полную сверку: почта, затем курьерские API.
func (r *Reconciler) RunCycle(ctx context.Context) error {
	now := time.Now().UTC()
	r.lastCycleUnixNano.Store(now.UnixNano())
	r.totalCycles.Add(1)

	created, err := r.IngestOnce(ctx)
	r.totalNewParcels.Add(int64(created))
	if err != nil {
		return err
	}

	return r.RefreshOnce(ctx)
}

// IngestOnce вычитывает почту и заводит посылки по новым трек-номерам.
// Недоступность почты не считается ошибкой цикла: свежесть статусов важнее.
func (r *Reconciler) IngestOnce(ctx context.Context) (int, error) {
	emails, err := r.mailbox.Search(ctx, r.searchQuery, r.maxEmails)
	if err != nil {
		slog.Warn("mailbox search failed", "error", err.Error())
		return 0, nil
	}

	created := 0
	for _, em := range emails {
		for _, cand := range emailparse.Parse(em.Subject, em.Body) {
			existing, err := r.store.Get(ctx, cand.TrackingNumber)
			if err != nil {
				return created, errors.Wrap(err, "get parcel")
			}
			if existing != nil {
				continue
			}

			now := time.Now().UTC()
			p := &models.Parcel{
				TrackingNumber: cand.TrackingNumber,
				Courier:        cand.Courier,
				Company:        cand.Company,
				Status:         models.ParcelStatusPending,
				LastUpdated:    now,
				CreatedAt:      now,
			}
			if em.Subject != "" {
				subject := em.Subject
				p.EmailSubject = &subject
			}

			if err := r.store.Upsert(ctx, p); err != nil {
				return created, errors.Wrap(err, "insert parcel")
			}
			created++
			slog.Info("new parcel",
				"tracking_number", p.TrackingNumber, "courier", p.Courier, "company", p.Company)
		}
	}
	return created, nil
}

// RefreshOnce опрашивает курьерские API по всем посылкам, чей статус устарел.
func (r *Reconciler) RefreshOnce(ctx context.Context) error {
	parcels, err := r.store.ListAll(ctx)
	if err != nil {
		return errors.Wrap(err, "list parcels")
	}

	now := time.Now().UTC()
	for _, p := range parcels {
		if now.Sub(p.LastUpdated) < r.staleness {
			continue
		}
		if err := r.refreshOne(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reconciler) refreshOne(ctx context.Context, p *models.Parcel) error {
	now := time.Now().UTC()

	if r.rl != nil && r.rateLimitPerMinute > 0 {
		minuteKey := fmt.Sprintf("rl:courier:%s:%s", p.Courier, now.Format("200601021504"))
		allowed, n, err := r.rl.Allow(ctx, minuteKey, r.rateLimitPerMinute, 70*time.Second)
		if err != nil {
			return err
		}
		if !allowed {
			// Слишком много запросов в минуту: подождём немного, чтобы разгрузить источник.
			slog.Warn("rate limit exceeded", "courier", p.Courier, "count", n)
			time.Sleep(500 * time.Millisecond)
		}
	}

	tracker := r.registry.Get(p.TrackingNumber, p.Company)
	res, err := tracker.Track(ctx, p.TrackingNumber)
	if err != nil {
		// Источник недоступен: фиксируем "unknown" вместо провала всего цикла.
		slog.Warn("courier track failed", "tracking_number", p.TrackingNumber, "error", err.Error())
		res = courier.Result{Status: models.ParcelStatusUnknown}
	}

	if res.Status == p.Status && eqETA(res.ETA, p.ETA) {
		return nil
	}

	prev := p.Status
	p.Status = res.Status
	p.ETA = res.ETA
	p.LastUpdated = time.Now().UTC()
	if err := r.store.Upsert(ctx, p); err != nil {
		return errors.Wrap(err, "update parcel")
	}
	r.totalRefreshed.Add(1)
	slog.Info("parcel status changed",
		"tracking_number", p.TrackingNumber, "status", p.Status, "previous", prev)

	r.publishUpdated(ctx, p, prev)
	return nil
}

func (r *Reconciler) publishUpdated(ctx context.Context, p *models.Parcel, prevStatus string) {
	if r.producer == nil {
		return
	}
	msg := messages.ParcelUpdated{
		TrackingNumber: p.TrackingNumber,
		Courier:        p.Courier,
		Company:        p.Company,
		Status:         p.Status,
		ETA:            p.ETA,
		PreviousStatus: prevStatus,
		CheckedAt:      p.LastUpdated,
	}
	b, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal parcel updated", "error", err.Error())
		return
	}
	if err := r.producer.Publish(ctx, r.topic, []byte(p.TrackingNumber), b); err != nil {
		// Брокер не обязателен для сверки: ошибку публикации не превращаем в ошибку цикла.
		slog.Error("publish parcel updated", "tracking_number", p.TrackingNumber, "error", err.Error())
		r.totalErrors.Add(1)
	}
}

// Start запускает Run в фоне.
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return errors.New("reconciler already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		if err := r.Run(runCtx); err != nil && err != context.Canceled {
			slog.Error("reconciler stopped", "error", err.Error())
		}
	}()
	return nil
}

// Stop останавливает фоновый цикл и дожидается его завершения.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	cancel()
	r.wg.Wait()
}

func eqETA(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
