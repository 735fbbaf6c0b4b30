package store

import (
	"context"
	"sort"
	"sync"

	"sms-relay/internal/model"
)

// Memory is a mutex-guarded in-process Store, used for local development
// (STORE_DRIVER=memory) and as the test double for the services.
type Memory struct {
	mu   sync.Mutex
	subs map[string]model.Subscriber
}

func NewMemory() *Memory {
	return &Memory{subs: map[string]model.Subscriber{}}
}

func (s *Memory) Create(_ context.Context, sub model.Subscriber) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[sub.PhoneNumber]; ok {
		return false, nil
	}
	s.subs[sub.PhoneNumber] = sub
	return true, nil
}

func (s *Memory) Delete(_ context.Context, phoneNumber string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[phoneNumber]; !ok {
		return false, nil
	}
	delete(s.subs, phoneNumber)
	return true, nil
}

func (s *Memory) Exists(_ context.Context, phoneNumber string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.subs[phoneNumber]
	return ok, nil
}

func (s *Memory) All(_ context.Context) ([]model.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PhoneNumber < out[j].PhoneNumber })
	return out, nil
}

func (s *Memory) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs), nil
}
