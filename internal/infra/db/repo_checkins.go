package db

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/roshannn-07/fairpass/internal/domain"
)

var _ domain.CheckInRepository = (*CheckInRepository)(nil)

type CheckInRepository struct {
	db *gorm.DB
}

func NewCheckInRepository(db *gorm.DB) *CheckInRepository {
	return &CheckInRepository{db: db}
}

func (r *CheckInRepository) Record(ctx context.Context, checkIn domain.CheckIn) (domain.CheckIn, error) {
	if r.db == nil {
		return domain.CheckIn{}, errDBUnavailable
	}
	model, err := toCheckInModel(checkIn)
	if err != nil {
		return domain.CheckIn{}, err
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model)
	if res.Error != nil {
		return domain.CheckIn{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.CheckIn{}, domain.ErrAlreadyCheckedIn
	}
	return checkIn, nil
}

func (r *CheckInRepository) Get(ctx context.Context, eventID domain.EventID, assetID uint64) (domain.CheckIn, error) {
	if r.db == nil {
		return domain.CheckIn{}, errDBUnavailable
	}
	if assetID > math.MaxInt64 {
		return domain.CheckIn{}, domain.ErrNotFound
	}
	var model CheckInModel
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND event_id_numeric = ? AND asset_id = ?", eventID.String(), eventID.IsNumeric(), int64(assetID)).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.CheckIn{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.CheckIn{}, err
	}
	return fromCheckInModel(model)
}

func toCheckInModel(c domain.CheckIn) (CheckInModel, error) {
	if c.ID == "" || c.EventID.IsZero() || c.AssetID == 0 {
		return CheckInModel{}, fmt.Errorf("%w: check-in id, event id and asset id are required", domain.ErrInvalidArgument)
	}
	if c.AssetID > math.MaxInt64 {
		return CheckInModel{}, fmt.Errorf("%w: asset id out of range", domain.ErrInvalidArgument)
	}
	return CheckInModel{
		ID:             c.ID,
		EventID:        c.EventID.String(),
		EventIDNumeric: c.EventID.IsNumeric(),
		AssetID:        int64(c.AssetID),
		HolderAddress:  c.HolderAddress,
		Gate:           c.Gate,
		CheckedInAt:    c.CheckedInAt.UTC(),
	}, nil
}

func fromCheckInModel(m CheckInModel) (domain.CheckIn, error) {
	eventID := domain.EventIDFromString(m.EventID)
	if m.EventIDNumeric {
		n, err := strconv.ParseInt(m.EventID, 10, 64)
		if err != nil {
			return domain.CheckIn{}, fmt.Errorf("stored event id %q: %w", m.EventID, err)
		}
		eventID = domain.EventIDFromInt(n)
	}
	return domain.CheckIn{
		ID:            m.ID,
		EventID:       eventID,
		AssetID:       uint64(m.AssetID),
		HolderAddress: m.HolderAddress,
		Gate:          m.Gate,
		CheckedInAt:   m.CheckedInAt.UTC(),
	}, nil
}
