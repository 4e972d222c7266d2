package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Action selects the direction of a quantity adjustment.
type Action string

const (
	// ActionIncrease adds one unit to the line.
	ActionIncrease Action = "increase"
	// ActionDecrease removes one unit; reaching zero removes the line.
	ActionDecrease Action = "decrease"
)

// ErrInvalidInput indicates the caller supplied invalid input.
var ErrInvalidInput = errors.New("cart service: invalid input")

// ErrUnavailable indicates the persistence backend cannot fulfil the request.
var ErrUnavailable = errors.New("cart service: unavailable")

// Store persists the full line sequence under a per-session key, wholesale on
// every write. A key that has never been written loads as an empty sequence.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, raw []byte) error
}

// ServiceDeps wires the persistence and logging dependencies.
type ServiceDeps struct {
	Store  Store
	Logger *zap.Logger
}

// Service owns cart mutations. All operations load the persisted sequence,
// sanitize it, apply the mutation, and persist the result in full. Reads
// never mutate the persisted value.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService constructs a Service enforcing dependency validation.
func NewService(deps ServiceDeps) (*Service, error) {
	if deps.Store == nil {
		return nil, errors.New("cart service: store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: deps.Store, logger: logger}, nil
}

// Get returns the sanitized cart for the given key. Corrupt or absent
// persisted state yields an empty cart rather than an error.
func (s *Service) Get(ctx context.Context, key string) ([]Line, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrInvalidInput
	}
	return s.load(ctx, key)
}

// Add appends a new line with quantity 1, or increments the quantity of the
// existing line with the same id. The stored name and price snapshots of an
// existing line are kept (first add wins).
func (s *Service) Add(ctx context.Context, key string, id int64, name string, price float64) ([]Line, error) {
	key = strings.TrimSpace(key)
	if key == "" || id <= 0 {
		return nil, ErrInvalidInput
	}
	if price < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", ErrInvalidInput)
	}

	lines, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}

	if idx := indexOf(lines, id); idx >= 0 {
		lines[idx].Quantity++
	} else {
		lines = append(lines, Line{ID: id, Name: strings.TrimSpace(name), Price: price, Quantity: 1})
	}

	return s.persist(ctx, key, lines)
}

// AdjustQuantity applies a one-unit increase or decrease to the line with the
// given id. A resulting quantity of zero or below removes the line entirely.
// An unknown id is a no-op and returns the cart unchanged.
func (s *Service) AdjustQuantity(ctx context.Context, key string, id int64, action Action) ([]Line, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrInvalidInput
	}
	if action != ActionIncrease && action != ActionDecrease {
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, action)
	}

	lines, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}

	idx := indexOf(lines, id)
	if idx < 0 {
		return lines, nil
	}

	if action == ActionIncrease {
		lines[idx].Quantity++
	} else {
		lines[idx].Quantity--
	}
	if lines[idx].Quantity <= 0 {
		lines = append(lines[:idx], lines[idx+1:]...)
	}

	return s.persist(ctx, key, lines)
}

// Remove deletes the line with the given id, preserving the relative order of
// the rest. An unknown id is a no-op and returns the cart unchanged.
func (s *Service) Remove(ctx context.Context, key string, id int64) ([]Line, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrInvalidInput
	}

	lines, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}

	idx := indexOf(lines, id)
	if idx < 0 {
		return lines, nil
	}
	lines = append(lines[:idx], lines[idx+1:]...)

	return s.persist(ctx, key, lines)
}

func (s *Service) load(ctx context.Context, key string) ([]Line, error) {
	raw, err := s.store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCartNotStored) {
			return []Line{}, nil
		}
		s.logger.Error("cart load failed", zap.String("key", key), zap.Error(err))
		return nil, ErrUnavailable
	}
	return Sanitize(UnmarshalLines(raw)), nil
}

func (s *Service) persist(ctx context.Context, key string, lines []Line) ([]Line, error) {
	raw, err := MarshalLines(lines)
	if err != nil {
		return nil, ErrUnavailable
	}
	if err := s.store.Save(ctx, key, raw); err != nil {
		s.logger.Error("cart save failed", zap.String("key", key), zap.Error(err))
		return nil, ErrUnavailable
	}
	return lines, nil
}

// ErrCartNotStored is returned by stores when no value exists under the key.
var ErrCartNotStored = errors.New("cart store: not found")

func indexOf(lines []Line, id int64) int {
	for i, l := range lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}
