package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/halalbiye/halalbiye-server/src/models"
	"github.com/halalbiye/halalbiye-server/src/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type userRecord struct {
	ID             string `gorm:"primaryKey;size:24"`
	Email          string `gorm:"uniqueIndex:uniq_email;not null"`
	Password       string `gorm:"not null"`
	models.Profile `gorm:"embedded"`
	CreatedAt      time.Time `gorm:"index:created_asc"`
	UpdatedAt      time.Time
}

func (userRecord) TableName() string { return "users" }

func (r userRecord) toModel() *models.User {
	return &models.User{
		ID:        r.ID,
		Email:     r.Email,
		Password:  r.Password,
		Profile:   r.Profile,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type requestRecord struct {
	ID        string               `gorm:"primaryKey;size:24"`
	FromUser  string               `gorm:"size:24;not null;uniqueIndex:uniq_from_to,priority:1"`
	ToUser    string               `gorm:"size:24;not null;uniqueIndex:uniq_from_to,priority:2;index:to_created_desc,priority:1"`
	Status    models.RequestStatus `gorm:"size:20;not null;default:'pending'"`
	CreatedAt time.Time            `gorm:"index:to_created_desc,priority:2"`
	UpdatedAt time.Time
}

func (requestRecord) TableName() string { return "requests" }

func (r requestRecord) toModel() *models.ConnectionRequest {
	return &models.ConnectionRequest{
		ID:        r.ID,
		FromUser:  r.FromUser,
		ToUser:    r.ToUser,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Store is the embedded SQL backend. It owns the gorm handle and closes it on Close.
type Store struct {
	db       *gorm.DB
	users    *UserStore
	requests *RequestStore
	log      *zap.Logger
}

var _ store.Backend = (*Store)(nil)

// New migrates the schema on db and returns the store.
func New(db *gorm.DB, log *zap.Logger) (*Store, error) {
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	log.Info("database migration completed")

	return &Store{
		db:       db,
		users:    &UserStore{db: db},
		requests: &RequestStore{db: db},
		log:      log,
	}, nil
}

// AutoMigrate creates or updates the tables and indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&userRecord{}, &requestRecord{}); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

func (s *Store) Users() store.UserStore       { return s.users }
func (s *Store) Requests() store.RequestStore { return s.requests }

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func now() time.Time {
	return time.Now().UTC()
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
