package recap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ms-tombola/internal/logger"
)

// Publisher pushes a finished recap to the notification channel.
type Publisher interface {
	PublishDailyRecap(r Recap) error
}

// Scheduler fires the daily recap once per day at a fixed hour and
// re-arms for the next day immediately after each run, whether the run
// succeeded or not.
type Scheduler struct {
	Service *Service
	Notify  Publisher
	Logger  *logger.Logger
	Hour    int

	mu    sync.Mutex
	timer *time.Timer
	stop  chan struct{}
	wg    sync.WaitGroup
}

func NewScheduler(svc *Service, notify Publisher, log *logger.Logger, hour int) *Scheduler {
	return &Scheduler{
		Service: svc,
		Notify:  notify,
		Logger:  log,
		Hour:    hour,
		stop:    make(chan struct{}),
	}
}

// NextRun returns the next firing instant strictly after now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	target := time.Date(now.Year(), now.Month(), now.Day(), s.Hour, 0, 0, 0, now.Location())
	if !now.Before(target) {
		target = target.AddDate(0, 0, 1)
	}
	return target
}

// Start launches the scheduler goroutine.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.NextRun(time.Now())
	s.timer = time.NewTimer(time.Until(next))
	s.wg.Add(1)
	go s.run()

	s.Logger.Info("RECAP", fmt.Sprintf("next daily recap at %s", next.Format(time.RFC1123)))
}

// Stop halts the scheduler and waits for a running recap to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		close(s.stop)
		s.wg.Wait()
	}
}

func (s *Scheduler) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.timer.C:
			s.RunOnce()
			next := s.NextRun(time.Now())
			s.timer.Reset(time.Until(next))
			s.Logger.Info("RECAP", fmt.Sprintf("next daily recap at %s", next.Format(time.RFC1123)))
		case <-s.stop:
			return
		}
	}
}

// RunOnce produces and publishes today's recap. Failures are logged and
// swallowed so the schedule keeps its cadence.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	r, err := s.Service.DailyRecap(ctx, time.Now())
	if err != nil {
		s.Logger.Error("RECAP", fmt.Sprintf("daily recap failed: %v", err))
		return
	}

	if r.Empty() {
		s.Logger.Info("RECAP", "no sales recorded today")
	} else {
		s.Logger.Info("RECAP", fmt.Sprintf("daily recap: %d tickets across %d sales", r.TotalTickets, r.SaleCount))
	}

	if s.Notify != nil {
		if err := s.Notify.PublishDailyRecap(*r); err != nil {
			s.Logger.Error("RECAP", fmt.Sprintf("failed to publish recap: %v", err))
		}
	}
}
