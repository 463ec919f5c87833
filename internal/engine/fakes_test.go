package engine_test

import (
	"context"
	"errors"
	"sync"

	"github.com/ykvlv/health-reminders/internal/domain"
	"github.com/ykvlv/health-reminders/internal/engine"
)

var _ engine.Store = (*fakeStore)(nil)

type fakeStore struct {
	mu     sync.Mutex
	values map[string]string
	fail   bool
	writes int

	// failOn makes only the n-th write attempt fail (1-based); 0 disables it.
	failOn   int
	attempts int
}

func newFakeStore(values map[string]string) *fakeStore {
	if values == nil {
		values = map[string]string{}
	}
	return &fakeStore{values: values}
}

func (s *fakeStore) ReadAllMatching(_ context.Context, prefix string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]string{}
	for k, v := range s.values {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out[k] = v
		}
	}
	return out, nil
}

func (s *fakeStore) Write(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.fail || s.attempts == s.failOn {
		return errors.New("disk full")
	}
	s.writes++
	s.values[key] = value
	return nil
}

func (s *fakeStore) get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

type gatewayCall struct {
	Action string
	ID     int
	At     domain.TimeSpec
}

var _ engine.Gateway = (*fakeGateway)(nil)

// fakeGateway mimics a device alarm queue: Schedule replaces, Cancel removes.
type fakeGateway struct {
	mu         sync.Mutex
	permission domain.Permission
	onRequest  domain.Permission
	requests   int
	failAll    bool
	calls      []gatewayCall
	scheduled  map[int]domain.Alert
	displays   []string
}

func newFakeGateway(p domain.Permission) *fakeGateway {
	return &fakeGateway{permission: p, onRequest: p, scheduled: map[int]domain.Alert{}}
}

func (g *fakeGateway) CheckPermission(context.Context) (domain.Permission, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.permission, nil
}

func (g *fakeGateway) RequestPermission(context.Context) (domain.Permission, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests++
	g.permission = g.onRequest
	return g.permission, nil
}

func (g *fakeGateway) RegisterDisplayChannel(_ context.Context, ch domain.DisplayChannel) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.displays = append(g.displays, ch.ID)
	return nil
}

func (g *fakeGateway) Schedule(_ context.Context, a domain.Alert) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failAll {
		return errors.New("unsupported platform")
	}
	g.calls = append(g.calls, gatewayCall{Action: "schedule", ID: a.ID, At: a.At})
	g.scheduled[a.ID] = a
	return nil
}

func (g *fakeGateway) Cancel(_ context.Context, id int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failAll {
		return errors.New("unsupported platform")
	}
	g.calls = append(g.calls, gatewayCall{Action: "cancel", ID: id})
	delete(g.scheduled, id)
	return nil
}

func (g *fakeGateway) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = nil
}

func (g *fakeGateway) snapshotCalls() []gatewayCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]gatewayCall(nil), g.calls...)
}

func (g *fakeGateway) count(action string, id int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c.Action == action && c.ID == id {
			n++
		}
	}
	return n
}

func (g *fakeGateway) countAction(action string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c.Action == action {
			n++
		}
	}
	return n
}

func (g *fakeGateway) scheduledAt(id int) (domain.TimeSpec, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.scheduled[id]
	return a.At, ok
}

func (g *fakeGateway) scheduledIDs() map[int]domain.Alert {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[int]domain.Alert, len(g.scheduled))
	for k, v := range g.scheduled {
		out[k] = v
	}
	return out
}
