package dao

import (
	"context"
	"errors"

	"account-hub/pkg/core/account/model"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateEntry   = errors.New("duplicate account entry")
	ErrDatabaseInternal = errors.New("database internal error")
)

type AccountRepository interface {
	// FindByUsernameOrEmail returns any account matching either key, or ErrAccountNotFound.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.Account, error)
	// Create inserts the account and fills in its generated ID.
	Create(ctx context.Context, account *model.Account) error
	// FindByID loads an account without the given columns.
	FindByID(ctx context.Context, id int64, omit ...string) (*model.Account, error)
}
