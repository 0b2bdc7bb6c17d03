package dialog

import (
	"context"
	"sync"
)

// Answer is one scripted reply to Confirm or Prompt.
type Answer struct {
	Confirm bool
	Value   string
	Cancel  bool
}

// Scripted replays canned answers and records everything shown. Once the
// script runs out, Confirm answers no and Prompt cancels.
type Scripted struct {
	mu      sync.Mutex
	answers []Answer
	alerts  []string
	asked   []string
}

// NewScripted returns a Scripted dialog that will give answers in order.
func NewScripted(answers ...Answer) *Scripted {
	return &Scripted{answers: answers}
}

func (s *Scripted) Alert(_ context.Context, msg string) error {
	s.mu.Lock()
	s.alerts = append(s.alerts, msg)
	s.mu.Unlock()
	return nil
}

func (s *Scripted) Confirm(_ context.Context, msg string) (bool, error) {
	answer, ok := s.next(msg)
	if !ok {
		return false, nil
	}
	return answer.Confirm, nil
}

func (s *Scripted) Prompt(_ context.Context, msg, def string) (string, bool, error) {
	answer, ok := s.next(msg)
	if !ok || answer.Cancel {
		return "", false, nil
	}
	if answer.Value == "" {
		return def, true, nil
	}
	return answer.Value, true, nil
}

// Alerts returns the messages passed to Alert so far.
func (s *Scripted) Alerts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.alerts...)
}

// LastAlert returns the most recent alert, or "".
func (s *Scripted) LastAlert() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.alerts) == 0 {
		return ""
	}
	return s.alerts[len(s.alerts)-1]
}

// Asked returns the questions passed to Confirm and Prompt so far.
func (s *Scripted) Asked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.asked...)
}

func (s *Scripted) next(msg string) (Answer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asked = append(s.asked, msg)
	if len(s.answers) == 0 {
		return Answer{}, false
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, true
}
