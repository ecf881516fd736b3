package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/queue"
	"github.com/iliyamo/event-registration/internal/repository"
)

// memStore honours the same compare-and-set contract as the MySQL
// repositories: every guarded write either applies fully or returns
// repository.ErrStale.
type memStore struct {
	mu     sync.Mutex
	events map[uint64]model.Event
	regs   map[uint64]model.Registration
	nextID uint64

	// hooks run after a read, outside the lock, to inject interleavings
	afterEventRead func()
	reserveErr     error
	reserveCalls   int
}

func newMemStore() *memStore {
	return &memStore{events: map[uint64]model.Event{}, regs: map[uint64]model.Registration{}}
}

func (m *memStore) put(e model.Event) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.ID = m.nextID
	m.events[e.ID] = e
	return e.ID
}

func (m *memStore) event(id uint64) model.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[id]
}

func (m *memStore) registrationCount(eventID uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.regs {
		if r.EventID == eventID {
			n++
		}
	}
	return n
}

func (m *memStore) Create(_ context.Context, e *model.Event) error {
	e.OccupiedSeats = 0
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt
	e.ID = m.put(*e)
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uint64) (model.Event, error) {
	m.mu.Lock()
	e, ok := m.events[id]
	m.mu.Unlock()
	if !ok {
		return model.Event{}, repository.ErrNotFound
	}
	if m.afterEventRead != nil {
		m.afterEventRead()
	}
	return e, nil
}

func (m *memStore) List(_ context.Context, f repository.EventFilter) ([]model.Event, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Event
	for _, e := range m.events {
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if f.Q != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(f.Q)) {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (m *memStore) Update(_ context.Context, e *model.Event, expectedVersion uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.events[e.ID]
	if !ok || cur.Version != expectedVersion || cur.OccupiedSeats > e.TotalSeats {
		return repository.ErrStale
	}
	next := *e
	next.OccupiedSeats = cur.OccupiedSeats
	next.Version = expectedVersion + 1
	m.events[e.ID] = next
	e.Version = next.Version
	return nil
}

func (m *memStore) SetTotalSeats(_ context.Context, id uint64, total uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.events[id]
	if !ok || cur.OccupiedSeats > total {
		return repository.ErrStale
	}
	cur.TotalSeats = total
	cur.Version++
	m.events[id] = cur
	return nil
}

func (m *memStore) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return repository.ErrNotFound
	}
	for _, r := range m.regs {
		if r.EventID == id {
			return repository.ErrConflict
		}
	}
	delete(m.events, id)
	return nil
}

// memRegs is the registration side of memStore.
type memRegs struct{ *memStore }

func (r memRegs) Reserve(_ context.Context, reg *model.Registration) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reserveCalls++
	if r.reserveErr != nil {
		return 0, r.reserveErr
	}
	ev, ok := r.events[reg.EventID]
	if !ok || ev.Status != model.EventPublished || ev.OccupiedSeats >= ev.TotalSeats {
		return 0, repository.ErrStale
	}
	ev.OccupiedSeats++
	r.events[ev.ID] = ev

	r.nextID++
	reg.ID = r.nextID
	reg.Status = model.RegistrationPending
	reg.CreatedAt = time.Now().UTC()
	reg.UpdatedAt = reg.CreatedAt
	r.regs[reg.ID] = *reg
	return ev.OccupiedSeats, nil
}

func (r memRegs) GetByID(_ context.Context, id uint64) (model.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.regs[id]
	if !ok {
		return model.Registration{}, repository.ErrNotFound
	}
	return g, nil
}

func (r memRegs) List(_ context.Context, f repository.RegistrationFilter) ([]model.Registration, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Registration
	for _, g := range r.regs {
		if f.EventID != 0 && g.EventID != f.EventID {
			continue
		}
		if f.Status != "" && g.Status != f.Status {
			continue
		}
		out = append(out, g)
	}
	return out, int64(len(out)), nil
}

func (r memRegs) TransitionStatus(_ context.Context, id uint64, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.regs[id]
	if !ok || g.Status != from {
		return repository.ErrStale
	}
	g.Status = to
	r.regs[id] = g
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.RegistrationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.RegistrationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
