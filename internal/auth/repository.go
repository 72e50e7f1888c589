package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the persistence collaborator of the account service. Unique
// indexes on username and email are expected to be enforced by the store.
type Repository interface {
	FindByUsernameOrEmail(ctx context.Context, username, email string) ([]Account, error)
	FindByLoginIdentifier(ctx context.Context, identifier string) ([]Account, error)
	CreateAccount(ctx context.Context, account *Account) error
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate, at time.Time) (*Account, error)
	GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByUsernameOrEmail(ctx context.Context, username, email string) ([]Account, error) {
	var accounts []Account
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		Order("created_at").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repository) FindByLoginIdentifier(ctx context.Context, identifier string) ([]Account, error) {
	var accounts []Account
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, NormalizeEmail(identifier)).
		Order("created_at").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repository) CreateAccount(ctx context.Context, account *Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrAccountExists
		}
		return err
	}
	return nil
}

func (r *repository) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate, at time.Time) (*Account, error) {
	cols := update.columns()
	cols["updated_at"] = at

	var account Account
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Account{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAccountNotFound
		}
		return tx.Where("id = ?", id).First(&account).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *repository) GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	var account Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// isUniqueViolation covers both gorm's translated error and a raw
// PostgreSQL 23505 when error translation is off.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	type sqlStateError interface{ SQLState() string }
	var pgErr sqlStateError
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
