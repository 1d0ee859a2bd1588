package simulation

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// Scheduler runs the demo-mode timer. At most one timer is active per
// scheduler; Start and Stop are idempotent and report whether they
// changed anything.
type Scheduler struct {
	service  *Service
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

// NewScheduler creates a stopped scheduler ticking at the given
// interval.
func NewScheduler(service *Service, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Scheduler{
		service:  service,
		interval: interval,
	}
}

// Start begins the recurring tick. Returns false when a timer is
// already active.
func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return false
	}

	s.stop = make(chan struct{})
	go s.run(s.stop)

	slog.Info("demo mode started", "interval", s.interval)
	return true
}

// Stop cancels the active timer. Returns false when no timer is
// running.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop == nil {
		return false
	}

	close(s.stop)
	s.stop = nil

	slog.Info("demo mode stopped")
	return true
}

// IsRunning reports whether the timer is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

func (s *Scheduler) run(stop <-chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-stop:
			return
		}
	}
}

// tick creates one random synthetic incident. Errors are logged; the
// timer keeps running.
func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	template := Catalog[rand.Intn(len(Catalog))]
	incident, err := s.service.simulate(ctx, template)
	if err != nil {
		slog.Error("demo tick failed", "template", template.Type, "error", err)
		return
	}

	slog.Info("demo incident created", "incident_id", incident.ID, "template", template.Type)
	recordSimulatedIncident(template.Type)
}
