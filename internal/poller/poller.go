package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"culligan/internal/ayla"
)

// Authenticator re-establishes the session after the provider rejects the token
type Authenticator interface {
	Authenticate(ctx context.Context) error
}

// Publisher receives one snapshot per device per cycle
type Publisher interface {
	Publish(ctx context.Context, snapshot Snapshot) error
}

// Snapshot is the state of one device as read in one cycle
type Snapshot struct {
	Device     ayla.Device     `json:"device"`
	Properties []ayla.Property `json:"properties"`
	PolledAt   time.Time       `json:"polled_at"`
}

// Status summarizes the most recent cycle
type Status struct {
	LastPollAt time.Time `json:"last_poll_at"`
	Devices    int       `json:"devices"`
	Published  int       `json:"published"`
	LastError  string    `json:"last_error,omitempty"`
}

// DefaultInterval replaces a non-positive interval passed to New
const DefaultInterval = time.Minute

// Poller periodically reads every device and hands snapshots to a Publisher
type Poller struct {
	api      ayla.DeviceAPI
	auth     Authenticator
	pub      Publisher
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.RWMutex
	status Status
}

// New creates a new poller. An interval <= 0 falls back to DefaultInterval.
func New(api ayla.DeviceAPI, auth Authenticator, pub Publisher, interval time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		logger.Warn("Non-positive poll interval, using default", "interval", interval, "default", DefaultInterval)
		interval = DefaultInterval
	}
	return &Poller{
		api:      api,
		auth:     auth,
		pub:      pub,
		interval: interval,
		stopChan: make(chan struct{}),
		logger:   logger.With("component", "poller"),
		now:      time.Now,
	}
}

// Start polls once, then on every tick until Stop is called. It blocks.
func (p *Poller) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-p.stopChan
		cancel()
	}()

	p.logger.Info("Poller started", "interval", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Poll(ctx)

	for {
		select {
		case <-ticker.C:
			p.Poll(ctx)
		case <-p.stopChan:
			p.logger.Info("Poller stopped")
			return
		}
	}
}

// Stop stops the poller and cancels an in-flight cycle. It is safe to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
	})
}

// Status returns the outcome of the most recent cycle
func (p *Poller) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Poll performs one cycle. A rejected token ends the cycle and triggers one
// re-authentication; other per-device failures are logged and skipped.
func (p *Poller) Poll(ctx context.Context) error {
	status := Status{LastPollAt: p.now()}
	err := p.poll(ctx, &status)
	if err != nil {
		status.LastError = err.Error()
	}

	p.mu.Lock()
	p.status = status
	p.mu.Unlock()

	return err
}

func (p *Poller) poll(ctx context.Context, status *Status) error {
	devices, err := p.api.ListDevices(ctx)
	if err != nil {
		return p.handleError(ctx, "Failed to list devices", err)
	}
	status.Devices = len(devices)

	p.logger.Debug("Poller tick", "devices", len(devices))

	for _, device := range devices {
		properties, err := p.api.GetProperties(ctx, device.DSN)
		if err != nil {
			if ayla.IsAuthError(err) || errors.Is(err, ayla.ErrNotAuthenticated) {
				return p.handleError(ctx, "Failed to read properties", err)
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Error("Failed to read properties", "dsn", device.DSN, "error", err)
			continue
		}

		snapshot := Snapshot{
			Device:     device,
			Properties: properties,
			PolledAt:   p.now(),
		}
		if err := p.pub.Publish(ctx, snapshot); err != nil {
			p.logger.Error("Failed to publish snapshot", "dsn", device.DSN, "error", err)
			continue
		}
		status.Published++
	}

	return nil
}

// handleError logs a cycle-ending failure and re-authenticates when the token was rejected
func (p *Poller) handleError(ctx context.Context, msg string, err error) error {
	if !ayla.IsAuthError(err) && !errors.Is(err, ayla.ErrNotAuthenticated) {
		p.logger.Error(msg, "error", err)
		return err
	}

	p.logger.Warn(msg+", re-authenticating", "error", err)
	if authErr := p.auth.Authenticate(ctx); authErr != nil {
		p.logger.Error("Re-authentication failed", "error", authErr)
		return errors.Join(err, authErr)
	}

	p.logger.Info("Re-authenticated, resuming on next tick")
	return err
}
