// README: Booking store over the realtime database tree.
package booking

import (
	"context"
	"sort"
	"time"

	"luba/internal/rtdb"
	"luba/internal/types"
)

const bookingsPath = "bookings"

type Store struct {
	db      rtdb.Database
	timeout time.Duration
}

func NewStore(db rtdb.Database, timeout time.Duration) *Store {
	return &Store{db: db, timeout: timeout}
}

func (s *Store) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Booking, error) {
	var b *Booking
	if err := s.db.Get(ctx, bookingsPath+"/"+string(id), &b); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound
	}
	b.ID = id
	return b, nil
}

func (s *Store) List(ctx context.Context) ([]Booking, error) {
	var nodes map[string]Booking
	if err := s.db.Get(ctx, bookingsPath, &nodes); err != nil {
		return nil, err
	}
	return sortedBookings(nodes), nil
}

func (s *Store) ListByStatus(ctx context.Context, status Status) ([]Booking, error) {
	var nodes map[string]Booking
	if err := s.db.GetByChildValue(ctx, bookingsPath, "status", string(status), &nodes); err != nil {
		return nil, err
	}
	return sortedBookings(nodes), nil
}

// UpdateStatus transitions a booking inside a store transaction: the write
// succeeds only if the record still permits the transition at commit time.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, to Status, at time.Time) (*Booking, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	var out *Booking
	err := s.db.Transaction(ctx, bookingsPath+"/"+string(id), func(decode func(v any) error) (any, error) {
		var b *Booking
		if err := decode(&b); err != nil {
			return nil, err
		}
		if b == nil {
			return nil, ErrNotFound
		}
		if !CanTransition(b.Status, to) {
			return nil, ErrInvalidState
		}
		b.Status = to
		b.UpdatedAt = at.UTC().Format(time.RFC3339)
		b.ID = id
		out = b
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func sortedBookings(nodes map[string]Booking) []Booking {
	out := make([]Booking, 0, len(nodes))
	for id, b := range nodes {
		b.ID = types.ID(id)
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}
