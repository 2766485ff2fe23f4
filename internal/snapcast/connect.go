package snapcast

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

// ConnectionSupervisor owns the reconnect loop to one Snapcast server,
// exponential backoff with jitter (spec §5, base 500ms / cap 30s / ±25%
// jitter — the same shape the teacher's streams.Supervisor hand-rolls, but
// expressed here through the pack's cenkalti/backoff).
type ConnectionSupervisor struct {
	addr    string
	timeout time.Duration

	reconciler *Reconciler
	errs       ErrorReporter

	mu      chan struct{} // 1-buffered mutex guarding client swap
	current *Client
}

// ErrorReporter records connect-loop failures to GlobalStore.LastError
// (spec §7). Implemented by whatever owns the GlobalStore at wiring time.
type ErrorReporter interface {
	ReportError(component string, err *model.AppError)
}

// NewConnectionSupervisor builds a supervisor for one Snapcast server
// address (SERVICES_SNAPCAST_HOST:PORT).
func NewConnectionSupervisor(addr string, timeout time.Duration, reconciler *Reconciler, errs ErrorReporter) *ConnectionSupervisor {
	mu := make(chan struct{}, 1)
	mu <- struct{}{}
	return &ConnectionSupervisor{addr: addr, timeout: timeout, reconciler: reconciler, errs: errs, mu: mu}
}

// Run connects, re-syncs on every (re)connect, pumps notifications into the
// reconciler, and backs off/retries on disconnect, until ctx is cancelled.
func (s *ConnectionSupervisor) Run(ctx context.Context) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.RandomizationFactor = 0.25
	b.MaxElapsedTime = 0 // retry forever

	for {
		if ctx.Err() != nil {
			return
		}

		client, err := Dial(ctx, s.addr, s.timeout)
		if err != nil {
			s.reportError(fmt.Errorf("connect: %w", err))
			if !s.sleep(ctx, b.NextBackOff()) {
				return
			}
			continue
		}

		b.Reset()
		s.setCurrent(client)
		slog.Info("snapcast: connected", "addr", s.addr)

		if err := s.seed(ctx, client); err != nil {
			s.reportError(fmt.Errorf("seed sync: %w", err))
		}

		s.pump(ctx, client)
		s.setCurrent(nil)

		if ctx.Err() != nil {
			return
		}
		slog.Warn("snapcast: disconnected, reconnecting", "addr", s.addr)
		if !s.sleep(ctx, b.NextBackOff()) {
			return
		}
	}
}

func (s *ConnectionSupervisor) seed(ctx context.Context, c *Client) error {
	var st Status
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := c.Call(callCtx, MethodGetStatus, nil, &st); err != nil {
		return err
	}
	s.reconciler.Sync(ctx, st)
	return nil
}

// pump drains notifications until the connection closes or ctx is done.
func (s *ConnectionSupervisor) pump(ctx context.Context, c *Client) {
	for {
		select {
		case n, ok := <-c.Notifications():
			if !ok {
				return
			}
			if n.Method == NotifyServerUpdate || n.Method == NotifyStreamUpdate {
				if err := s.seed(ctx, c); err != nil {
					s.reportError(fmt.Errorf("re-seed sync: %w", err))
				}
				continue
			}
			s.reconciler.HandleNotification(n)
		case <-ctx.Done():
			c.Close()
			return
		}
	}
}

func (s *ConnectionSupervisor) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *ConnectionSupervisor) reportError(err error) {
	slog.Error("snapcast connect loop", "err", err)
	if s.errs != nil {
		s.errs.ReportError("snapcast", model.UpstreamUnavailable(err.Error()))
	}
}

func (s *ConnectionSupervisor) setCurrent(c *Client) {
	<-s.mu
	s.current = c
	s.mu <- struct{}{}
	s.reconciler.Adapter().Rebind(c)
}

// Current returns the live client, or nil while disconnected.
func (s *ConnectionSupervisor) Current() *Client {
	<-s.mu
	defer func() { s.mu <- struct{}{} }()
	return s.current
}
