// Package monitor polls the analytics API and notifies the admin about new visits.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"contentbot/internal/domain"
	"contentbot/internal/repository"
	"contentbot/internal/service"

	"github.com/looplab/fsm"
	"go.uber.org/zap"
)

// Poller states and events
const (
	StateStopped = "stopped"
	StateRunning = "running"

	eventStart = "start"
	eventStop  = "stop"
)

const (
	// DefaultInterval is the time between two checks
	DefaultInterval = 5 * time.Minute
	// DefaultErrorThreshold is how many failed checks are tolerated before the admin is warned
	DefaultErrorThreshold = 5
)

// Notifier delivers a Markdown message to the admin
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// CompanyResolver maps an access code to a company name
type CompanyResolver interface {
	ResolveCompany(ctx context.Context, code string) (string, error)
}

// Config tunes the poller
type Config struct {
	Interval       time.Duration
	MaxNotified    int
	ErrorThreshold int
}

// Status is a snapshot of the poller
type Status struct {
	State               string
	Interval            time.Duration
	LastCheck           time.Time
	LastSuccessfulCheck time.Time
	LastError           string
	ErrorCount          int
	Notified            int
	Remembered          int
	Checking            bool
}

// Running reports whether the poller is started
func (s Status) Running() bool {
	return s.State == StateRunning
}

// CheckResult summarizes one check
type CheckResult struct {
	Fetched   int
	New       int
	Notified  int
	Anonymous int
	Dropped   int
	Failed    int
}

// Poller periodically fetches visits and notifies about each new one exactly once
type Poller struct {
	source    repository.VisitSource
	notifier  Notifier
	companies CompanyResolver
	logger    *zap.Logger
	now       func() time.Time

	interval       time.Duration
	errorThreshold int

	mu       sync.Mutex
	machine  *fsm.FSM
	cancel   context.CancelFunc
	loopDone chan struct{}

	// checkMu serializes checks; a held lock means a check is in flight
	checkMu sync.Mutex

	stateMu             sync.Mutex
	lastCheck           time.Time
	lastSuccessfulCheck time.Time
	lastError           string
	errorCount          int
	notifiedTotal       int
	checking            bool

	notified *NotifiedSet
}

// NewPoller creates a stopped poller
func NewPoller(source repository.VisitSource, notifier Notifier, companies CompanyResolver, cfg Config, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.ErrorThreshold <= 0 {
		cfg.ErrorThreshold = DefaultErrorThreshold
	}

	p := &Poller{
		source:         source,
		notifier:       notifier,
		companies:      companies,
		logger:         logger,
		now:            time.Now,
		interval:       cfg.Interval,
		errorThreshold: cfg.ErrorThreshold,
		notified:       NewNotifiedSet(cfg.MaxNotified),
	}
	p.machine = fsm.NewFSM(
		StateStopped,
		fsm.Events{
			{Name: eventStart, Src: []string{StateStopped}, Dst: StateRunning},
			{Name: eventStop, Src: []string{StateRunning}, Dst: StateStopped},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				p.logger.Info("Visit monitor state changed",
					zap.String("from", e.Src),
					zap.String("to", e.Dst),
				)
			},
		},
	)
	return p
}

// Start begins polling: one check right away, then one per interval.
// Starting a running poller does nothing.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.machine.Can(eventStart) {
		return nil
	}
	if err := p.machine.Event(ctx, eventStart); err != nil {
		return fmt.Errorf("start monitor: %w", err)
	}

	p.stateMu.Lock()
	if p.lastSuccessfulCheck.IsZero() {
		p.lastSuccessfulCheck = p.now().Add(-p.interval)
	}
	p.stateMu.Unlock()

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.loopDone = make(chan struct{})
	go p.loop(loopCtx, ctx, p.loopDone)
	return nil
}

// Stop prevents further checks. A check already running is allowed to finish.
// Stopping a stopped poller does nothing.
func (p *Poller) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.machine.Can(eventStop) {
		return nil
	}
	p.cancel()
	if err := p.machine.Event(context.Background(), eventStop); err != nil {
		return fmt.Errorf("stop monitor: %w", err)
	}
	return nil
}

// Wait blocks until the polling goroutine has exited
func (p *Poller) Wait() {
	p.mu.Lock()
	done := p.loopDone
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Run starts the poller and stops it when ctx is cancelled
func (p *Poller) Run(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	if err := p.Stop(); err != nil {
		return err
	}
	p.Wait()
	return nil
}

// Running reports whether the poller is started
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.machine.Is(StateRunning)
}

// Status returns a snapshot of the poller
func (p *Poller) Status() Status {
	p.mu.Lock()
	current := p.machine.Current()
	p.mu.Unlock()

	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	return Status{
		State:               current,
		Interval:            p.interval,
		LastCheck:           p.lastCheck,
		LastSuccessfulCheck: p.lastSuccessfulCheck,
		LastError:           p.lastError,
		ErrorCount:          p.errorCount,
		Notified:            p.notifiedTotal,
		Remembered:          p.notified.Len(),
		Checking:            p.checking,
	}
}

// CheckNow runs one check immediately. It fails with ErrCheckInProgress when a check is running.
func (p *Poller) CheckNow(ctx context.Context) (CheckResult, error) {
	if !p.checkMu.TryLock() {
		return CheckResult{}, domain.ErrCheckInProgress
	}
	defer p.checkMu.Unlock()
	return p.check(ctx)
}

func (p *Poller) loop(ctx, checkCtx context.Context, done chan struct{}) {
	defer close(done)

	p.tick(checkCtx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Visit monitor loop stopped")
			return
		case <-ticker.C:
			p.tick(checkCtx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if !p.checkMu.TryLock() {
		p.logger.Debug("Previous visit check still running, skipping tick")
		return
	}
	defer p.checkMu.Unlock()

	if _, err := p.check(ctx); err != nil {
		p.logger.Error("Visit check failed", zap.Error(err))
	}
}

// check must be called with checkMu held
func (p *Poller) check(ctx context.Context) (CheckResult, error) {
	checkStart := p.now()

	p.stateMu.Lock()
	since := p.lastSuccessfulCheck
	if since.IsZero() {
		since = checkStart.Add(-p.interval)
	}
	p.lastCheck = checkStart
	p.checking = true
	p.stateMu.Unlock()

	defer func() {
		p.stateMu.Lock()
		p.checking = false
		p.stateMu.Unlock()
	}()

	visits, err := p.source.GetRecentVisits(ctx, since, checkStart)
	if err != nil {
		p.recordFailure(ctx, err)
		return CheckResult{}, err
	}

	p.stateMu.Lock()
	p.lastSuccessfulCheck = checkStart
	p.lastError = ""
	p.stateMu.Unlock()

	result := p.Process(ctx, visits)
	p.logger.Info("Visit check completed",
		zap.Int("fetched", result.Fetched),
		zap.Int("new", result.New),
		zap.Int("notified", result.Notified),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// Process notifies about visits not seen before. Each id is marked before its
// notification is attempted, so a failed send is never retried.
func (p *Poller) Process(ctx context.Context, visits []domain.Visit) CheckResult {
	result := CheckResult{Fetched: len(visits)}

	for _, v := range visits {
		id := string(v.ID)
		if id == "" || !p.notified.Add(id) {
			continue
		}
		result.New++

		text, ok := p.describe(ctx, v)
		if !ok {
			result.Dropped++
			continue
		}
		if text.anonymous {
			result.Anonymous++
		}

		if err := p.notifier.Notify(ctx, text.body); err != nil {
			result.Failed++
			p.logger.Warn("Failed to send visit notification",
				zap.String("visit_id", id),
				zap.Error(err),
			)
			continue
		}
		result.Notified++
	}

	if n := p.notified.Trim(); n > 0 {
		p.logger.Debug("Forgot oldest visit ids", zap.Int("count", n))
	}

	p.stateMu.Lock()
	p.notifiedTotal += result.Notified
	p.stateMu.Unlock()
	return result
}

type notification struct {
	body      string
	anonymous bool
}

func (p *Poller) describe(ctx context.Context, v domain.Visit) (notification, bool) {
	pages := v.Pages()
	code, source, found := ExtractAccessCode(v)
	if !found {
		if len(pages) == 0 {
			return notification{}, false
		}
		return notification{body: FormatAnonymousVisit(v, pages), anonymous: true}, true
	}

	company := service.UnknownCompany
	if p.companies != nil {
		name, err := p.companies.ResolveCompany(ctx, code)
		if err != nil {
			p.logger.Warn("Failed to resolve company", zap.String("code", code), zap.Error(err))
		} else if name != "" {
			company = name
		}
	}

	p.logger.Debug("Access code found", zap.String("visit_id", string(v.ID)), zap.String("source", source))
	return notification{body: FormatVisit(v, code, company, pages)}, true
}

func (p *Poller) recordFailure(ctx context.Context, err error) {
	p.stateMu.Lock()
	p.errorCount++
	p.lastError = err.Error()
	count := p.errorCount
	escalate := count > p.errorThreshold
	if escalate {
		p.errorCount = 0
	}
	p.stateMu.Unlock()

	if !escalate {
		return
	}

	p.logger.Error("Visit monitor keeps failing, warning admin", zap.Int("errors", count), zap.Error(err))
	if nerr := p.notifier.Notify(ctx, FormatErrorWarning(count, err)); nerr != nil {
		p.logger.Warn("Failed to send monitor warning", zap.Error(nerr))
	}
}
