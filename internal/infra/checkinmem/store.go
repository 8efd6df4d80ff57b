package checkinmem

import (
	"context"
	"fmt"
	"sync"

	"github.com/roshannn-07/fairpass/internal/domain"
)

var _ domain.CheckInRepository = (*Store)(nil)

type Store struct {
	mu      sync.Mutex
	records map[string]domain.CheckIn
}

func New() *Store {
	return &Store{records: make(map[string]domain.CheckIn)}
}

func (s *Store) Record(ctx context.Context, checkIn domain.CheckIn) (domain.CheckIn, error) {
	if err := ctx.Err(); err != nil {
		return domain.CheckIn{}, err
	}
	key := recordKey(checkIn.EventID, checkIn.AssetID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.records[key]; ok {
		return domain.CheckIn{}, fmt.Errorf("%w: at %s", domain.ErrAlreadyCheckedIn, existing.CheckedInAt.Format("15:04:05"))
	}
	s.records[key] = checkIn
	return checkIn, nil
}

func (s *Store) Get(ctx context.Context, eventID domain.EventID, assetID uint64) (domain.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[recordKey(eventID, assetID)]
	if !ok {
		return domain.CheckIn{}, domain.ErrNotFound
	}
	return rec, nil
}

func recordKey(eventID domain.EventID, assetID uint64) string {
	return fmt.Sprintf("%t|%s|%d", eventID.IsNumeric(), eventID.String(), assetID)
}
