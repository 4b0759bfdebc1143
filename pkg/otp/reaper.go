package otp

import (
	"context"
	"time"

	"github.com/bpmonitor/idvault/pkg/logger"
)

// Start launches the reaper. It runs until ctx is done or Close is called.
// Calling Start more than once has no effect.
func (s *Service) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go s.reapLoop(ctx)
	})
}

// Close stops the reaper and waits for it to exit. Safe to call more than
// once and without Start.
func (s *Service) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	started := true
	s.startOnce.Do(func() { started = false })
	if started {
		<-s.done
	}
	return nil
}

func (s *Service) reapLoop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("expired otp state removed", logger.Count(n))
			}
		}
	}
}

// Sweep removes expired challenges and verifications and returns how many
// entries it deleted. Keys are snapshotted first; each entry is then
// re-checked under the lock against its own timestamps, so entries issued or
// replaced while the sweep runs are kept.
func (s *Service) Sweep() int {
	s.mu.Lock()
	challengeKeys := make([]string, 0, len(s.challenges))
	for k := range s.challenges {
		challengeKeys = append(challengeKeys, k)
	}
	verifiedKeys := make([]string, 0, len(s.verified))
	for k := range s.verified {
		verifiedKeys = append(verifiedKeys, k)
	}
	s.mu.Unlock()

	removed := 0
	for _, k := range challengeKeys {
		s.mu.Lock()
		if ch, ok := s.challenges[k]; ok && ch.expired(s.now()) {
			delete(s.challenges, k)
			removed++
		}
		s.mu.Unlock()
	}
	for _, k := range verifiedKeys {
		s.mu.Lock()
		if exp, ok := s.verified[k]; ok && !s.now().Before(exp) {
			delete(s.verified, k)
			removed++
		}
		s.mu.Unlock()
	}
	return removed
}
