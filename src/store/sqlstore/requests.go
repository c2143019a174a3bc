package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/halalbiye/halalbiye-server/src/models"
	"github.com/halalbiye/halalbiye-server/src/store"
	"gorm.io/gorm"
)

// RequestStore implements store.RequestStore on the requests table.
type RequestStore struct {
	db *gorm.DB
}

var _ store.RequestStore = (*RequestStore)(nil)

func validIDs(ids ...string) error {
	for _, id := range ids {
		if !models.ValidID(id) {
			return store.ErrInvalidID
		}
	}
	return nil
}

func (s *RequestStore) Create(ctx context.Context, r *models.ConnectionRequest) error {
	if err := validIDs(r.FromUser, r.ToUser); err != nil {
		return err
	}

	ts := now()
	rec := requestRecord{
		ID:        models.NewID(),
		FromUser:  r.FromUser,
		ToUser:    r.ToUser,
		Status:    r.Status,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if rec.Status == "" {
		rec.Status = models.RequestStatusPending
	}

	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("create request: %w", store.ErrDuplicate)
		}
		return fmt.Errorf("create request: %w", err)
	}

	*r = *rec.toModel()
	return nil
}

func (s *RequestStore) GetByID(ctx context.Context, id string) (*models.ConnectionRequest, error) {
	if err := validIDs(id); err != nil {
		return nil, err
	}
	return s.first(s.db.WithContext(ctx).Where("id = ?", id))
}

func (s *RequestStore) FindByPair(ctx context.Context, fromUser, toUser string) (*models.ConnectionRequest, error) {
	if err := validIDs(fromUser, toUser); err != nil {
		return nil, err
	}
	return s.first(s.db.WithContext(ctx).Where("from_user = ? AND to_user = ?", fromUser, toUser))
}

func (s *RequestStore) first(q *gorm.DB) (*models.ConnectionRequest, error) {
	var rec requestRecord
	if err := q.First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find request: %w", err)
	}
	return rec.toModel(), nil
}

func (s *RequestStore) ListIncoming(ctx context.Context, userID string) ([]models.ConnectionRequest, error) {
	return s.find(s.db.WithContext(ctx).Where("to_user = ?", userID))
}

func (s *RequestStore) ListOutgoing(ctx context.Context, userID string) ([]models.ConnectionRequest, error) {
	return s.find(s.db.WithContext(ctx).Where("from_user = ?", userID))
}

func (s *RequestStore) ListInvolving(ctx context.Context, userID string) ([]models.ConnectionRequest, error) {
	return s.find(s.db.WithContext(ctx).Where("from_user = ? OR to_user = ?", userID, userID))
}

func (s *RequestStore) find(q *gorm.DB) ([]models.ConnectionRequest, error) {
	var recs []requestRecord
	if err := q.Order("created_at DESC").Order("id DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	out := make([]models.ConnectionRequest, 0, len(recs))
	for _, r := range recs {
		out = append(out, *r.toModel())
	}
	return out, nil
}

func (s *RequestStore) TransitionFromPending(ctx context.Context, id, toUser string, status models.RequestStatus) (*models.ConnectionRequest, error) {
	if err := validIDs(id, toUser); err != nil {
		return nil, err
	}

	var rec requestRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&requestRecord{}).
			Where("id = ? AND to_user = ? AND status = ?", id, toUser, models.RequestStatusPending).
			Updates(map[string]any{"status": status, "updated_at": now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrConflictingUpdate
		}
		return tx.Where("id = ?", id).First(&rec).Error
	})
	if err != nil {
		if errors.Is(err, store.ErrConflictingUpdate) {
			return nil, err
		}
		return nil, fmt.Errorf("transition request: %w", err)
	}
	return rec.toModel(), nil
}
