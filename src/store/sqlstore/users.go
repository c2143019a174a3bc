package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/halalbiye/halalbiye-server/src/models"
	"github.com/halalbiye/halalbiye-server/src/store"
	"gorm.io/gorm"
)

// UserStore implements store.UserStore on the users table.
type UserStore struct {
	db *gorm.DB
}

var _ store.UserStore = (*UserStore)(nil)

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	ts := now()
	rec := userRecord{
		ID:        models.NewID(),
		Email:     u.Email,
		Password:  u.Password,
		Profile:   u.Profile,
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("create user %q: %w", u.Email, store.ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}

	u.ID = rec.ID
	u.CreatedAt = ts
	u.UpdatedAt = ts
	return nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.first(s.db.WithContext(ctx).Where("email = ?", email))
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	if !models.ValidID(id) {
		return nil, store.ErrInvalidID
	}
	return s.first(s.db.WithContext(ctx).Where("id = ?", id))
}

func (s *UserStore) first(q *gorm.DB) (*models.User, error) {
	var rec userRecord
	if err := q.First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return rec.toModel(), nil
}

func (s *UserStore) Summaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	out := make(map[string]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var recs []userRecord
	err := s.db.WithContext(ctx).
		Omit("password").
		Where("id IN ?", ids).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("find summaries: %w", err)
	}

	for _, r := range recs {
		out[r.ID] = r.toModel().Summary()
	}
	return out, nil
}

func (s *UserStore) UpdateProfile(ctx context.Context, email string, patch models.Profile) (*models.User, error) {
	var rec userRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		values := patch.Values()
		values["updated_at"] = now()

		res := tx.Model(&userRecord{}).Where("email = ?", email).Updates(values)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return tx.Where("email = ?", email).First(&rec).Error
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return rec.toModel(), nil
}

func (s *UserStore) query(ctx context.Context, q models.UserQuery) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&userRecord{})
	if values := q.Match.Values(); len(values) > 0 {
		tx = tx.Where(values)
	}
	if q.ExcludeEmail != "" {
		tx = tx.Where("email <> ?", q.ExcludeEmail)
	}
	return tx
}

func (s *UserStore) List(ctx context.Context, q models.UserQuery) ([]models.User, error) {
	tx := s.query(ctx, q).Order("created_at ASC").Order("id ASC")
	if q.Skip > 0 {
		tx = tx.Offset(int(q.Skip))
	}
	if q.Limit > 0 {
		tx = tx.Limit(int(q.Limit))
	}

	var recs []userRecord
	if err := tx.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]models.User, 0, len(recs))
	for _, r := range recs {
		users = append(users, *r.toModel())
	}
	return users, nil
}

func (s *UserStore) Count(ctx context.Context, q models.UserQuery) (int64, error) {
	var n int64
	if err := s.query(ctx, q).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
