package slot

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore holds slots in-process behind a single mutex, giving the same
// check-and-set semantics as the Postgres store. Unit tests run the engine
// against it without a database.
type MemoryStore struct {
	mu     sync.Mutex
	slots  map[uuid.UUID]*Slot
	booked map[uuid.UUID]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		slots:  make(map[uuid.UUID]*Slot),
		booked: make(map[uuid.UUID]bool),
	}
}

// MarkBooked toggles the active-booking flag a real deployment derives from
// the bookings table.
func (m *MemoryStore) MarkBooked(id uuid.UUID, booked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.booked[id] = booked
}

func (m *MemoryStore) Claim(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[id]
	if !ok {
		return ErrSlotNotFound
	}
	if s.IsBlockedByAdmin {
		return ErrSlotBlocked
	}
	if !s.IsAvailable {
		return ErrAlreadyClaimed
	}

	s.IsAvailable = false
	s.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) Release(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[id]
	if !ok {
		return ErrSlotNotFound
	}

	s.IsAvailable = true
	s.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) SetAdminBlock(ctx context.Context, id uuid.UUID, blocked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[id]
	if !ok {
		return ErrSlotNotFound
	}

	s.IsBlockedByAdmin = blocked
	s.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}

	cp := *s
	return &cp, nil
}

func (m *MemoryStore) Following(ctx context.Context, serviceID uuid.UUID, date, afterStart string) (*Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var next *Slot
	for _, s := range m.slots {
		if s.ServiceID != serviceID || s.Date != date {
			continue
		}
		if s.StartTime <= afterStart {
			continue
		}
		if next == nil || s.StartTime < next.StartTime {
			next = s
		}
	}
	if next == nil {
		return nil, ErrSlotNotFound
	}

	cp := *next
	return &cp, nil
}

func (m *MemoryStore) ListForDate(ctx context.Context, serviceID uuid.UUID, date string) ([]DateSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []DateSlot
	for _, s := range m.slots {
		if s.ServiceID != serviceID || s.Date != date {
			continue
		}
		result = append(result, DateSlot{Slot: *s, Booked: m.booked[s.ID]})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime < result[j].StartTime
	})

	return result, nil
}

func (m *MemoryStore) Insert(ctx context.Context, slots []Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range slots {
		cp := slots[i]
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = time.Now()
		}
		cp.UpdatedAt = cp.CreatedAt
		m.slots[cp.ID] = &cp
	}
	return nil
}

func (m *MemoryStore) DeleteIfUnbooked(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[id]
	if !ok {
		return false, nil
	}
	if !s.IsAvailable || m.booked[id] {
		return false, nil
	}

	delete(m.slots, id)
	delete(m.booked, id)
	return true, nil
}
