package dao

import (
	"context"
	"errors"
	"fmt"

	"account-hub/pkg/core/account/model"
	"account-hub/pkg/core/account/repository/dao"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrAccountNotFound  = dao.ErrAccountNotFound
	ErrDuplicateEntry   = dao.ErrDuplicateEntry
	ErrDatabaseInternal = dao.ErrDatabaseInternal
)

type GormAccountRepository struct {
	db *gorm.DB
}

var _ dao.AccountRepository = (*GormAccountRepository)(nil)

func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// Lookup by either unique key; username is compared in its normalised form
func (r *GormAccountRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("username = ?", model.NormalizeUsername(username)).
		Or("email = ?", email).
		First(&account).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrAccountNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: account lookup failed", wrapGormError(err))
	default:
		return &account, nil
	}
}

// Create new account with transaction
func (r *GormAccountRepository) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(account).Error; err != nil {
			if isDuplicateError(err) {
				return ErrDuplicateEntry
			}
			return fmt.Errorf("%w: account creation failed", wrapGormError(err))
		}
		return nil
	})
}

func (r *GormAccountRepository) FindByID(ctx context.Context, id int64, omit ...string) (*model.Account, error) {
	var account model.Account
	q := r.db.WithContext(ctx)
	if len(omit) > 0 {
		q = q.Omit(omit...)
	}
	err := q.Where("id = ?", id).First(&account).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrAccountNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: account query failed", wrapGormError(err))
	default:
		return &account, nil
	}
}

// Error handling utils
func isDuplicateError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func wrapGormError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAccountNotFound
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062:
			return ErrDuplicateEntry
		case 1045, 1048, 1044, 1049, 1146: // Common MySQL operation errors
			return ErrDatabaseInternal
		}
	}

	if errors.Is(err, gorm.ErrInvalidDB) ||
		errors.Is(err, gorm.ErrInvalidTransaction) ||
		errors.Is(err, gorm.ErrUnsupportedRelation) {
		return ErrDatabaseInternal
	}

	return err // Return original error if no specific mapping
}
