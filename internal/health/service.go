// Package health tracks the reachability of the upstream services.
package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Pinger is an upstream service that can be probed.
type Pinger interface {
	Name() string
	IsConfigured() bool
	Ping(ctx context.Context) error
}

// Service holds the latest probe result of every registered service.
// All state is in-memory and resets on application restart.
type Service struct {
	pingers []Pinger
	items   map[string]*HealthItem
	mu      sync.RWMutex
	logger  zerolog.Logger
	now     func() time.Time
}

// NewService creates a new health service.
func NewService(logger zerolog.Logger, pingers ...Pinger) *Service {
	s := &Service{
		items:  make(map[string]*HealthItem),
		logger: logger.With().Str("component", "health").Logger(),
		now:    time.Now,
	}
	for _, p := range pingers {
		s.Register(p)
	}
	return s
}

// Register adds a service to health tracking with unknown status.
func (s *Service) Register(p Pinger) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[p.Name()]; !exists {
		s.pingers = append(s.pingers, p)
	}
	s.items[p.Name()] = &HealthItem{
		Name:       p.Name(),
		Configured: p.IsConfigured(),
		Status:     StatusUnknown,
	}
}

// CheckAll probes every configured service in parallel and records the
// results. It returns the probe errors joined, or nil when all succeeded.
func (s *Service) CheckAll(ctx context.Context) error {
	s.mu.RLock()
	pingers := append([]Pinger(nil), s.pingers...)
	s.mu.RUnlock()

	errs := make([]error, len(pingers))
	var g errgroup.Group
	for i, p := range pingers {
		if !p.IsConfigured() {
			continue
		}
		g.Go(func() error {
			errs[i] = p.Ping(ctx)
			return nil
		})
	}
	_ = g.Wait()

	var failed []error
	for i, p := range pingers {
		if !p.IsConfigured() {
			continue
		}
		if errs[i] != nil {
			failed = append(failed, fmt.Errorf("%s: %w", p.Name(), errs[i]))
			s.SetError(p.Name(), errs[i].Error())
			continue
		}
		s.SetOK(p.Name())
	}
	return errors.Join(failed...)
}

// SetOK marks a service as healthy.
func (s *Service) SetOK(name string) {
	s.setStatus(name, StatusOK, "")
}

// SetError marks a service as unhealthy.
func (s *Service) SetError(name, message string) {
	s.setStatus(name, StatusError, message)
}

func (s *Service) setStatus(name string, status HealthStatus, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[name]
	if !ok {
		return
	}

	if item.Status != status {
		event := s.logger.Info()
		if status == StatusError {
			event = s.logger.Warn()
		}
		event.Str("service", name).
			Str("from", string(item.Status)).
			Str("to", string(status)).
			Str("message", message).
			Msg("Upstream health changed")
	}

	now := s.now().UTC()
	item.Status = status
	item.Message = message
	item.CheckedAt = &now
}

// GetAll returns every tracked service in registration order.
func (s *Service) GetAll() []HealthItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]HealthItem, 0, len(s.pingers))
	for _, p := range s.pingers {
		items = append(items, *s.items[p.Name()])
	}
	return items
}

// Get returns the state of one service.
func (s *Service) Get(name string) (HealthItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[name]
	if !ok {
		return HealthItem{}, false
	}
	return *item, true
}
