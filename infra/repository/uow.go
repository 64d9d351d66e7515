// Package repository wires the GORM repositories into a unit of work.
package repository

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"gorm.io/gorm"

	infraaccount "github.com/corebank/platform/infra/repository/account"
	infraadminaction "github.com/corebank/platform/infra/repository/adminaction"
	infratransaction "github.com/corebank/platform/infra/repository/transaction"
	infrauser "github.com/corebank/platform/infra/repository/user"
	"github.com/corebank/platform/pkg/repository"
)

// UoW provides the transaction boundary and repository access in one
// abstraction. All repositories obtained inside Do share the transaction's DB
// session, so their mutations commit or roll back together, and row locks
// taken through them are held until Do returns.
type UoW struct {
	db           *gorm.DB
	tx           *gorm.DB
	lockTimeout  time.Duration
	repoRegistry map[reflect.Type]func(*gorm.DB) any
}

// NewUoW creates a new UoW for the given *gorm.DB. lockTimeout bounds how long
// a unit of work may wait for an exclusive row lock; zero disables the bound.
func NewUoW(db *gorm.DB, lockTimeout time.Duration) *UoW {
	return &UoW{
		db:          db,
		lockTimeout: lockTimeout,
		repoRegistry: map[reflect.Type]func(*gorm.DB) any{
			reflect.TypeOf((*repository.AccountRepository)(nil)).Elem():     func(db *gorm.DB) any { return infraaccount.New(db) },
			reflect.TypeOf((*repository.TransactionRepository)(nil)).Elem(): func(db *gorm.DB) any { return infratransaction.New(db) },
			reflect.TypeOf((*repository.UserRepository)(nil)).Elem():        func(db *gorm.DB) any { return infrauser.New(db) },
			reflect.TypeOf((*repository.AdminActionRepository)(nil)).Elem(): func(db *gorm.DB) any { return infraadminaction.New(db) },
		},
	}
}

// Do runs the given function inside one database transaction. Any error
// returned by fn rolls back every mutation made through the provided UoW.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if u.lockTimeout > 0 {
			// SET does not take bind parameters; the value is an integer we format ourselves.
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", u.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		txnUow := &UoW{
			db:           u.db,
			tx:           tx,
			lockTimeout:  u.lockTimeout,
			repoRegistry: u.repoRegistry,
		}
		return fn(txnUow)
	})
}

// GetRepository provides type-safe access to repositories bound to the
// current transaction session.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	constructor, ok := u.repoRegistry[repoType]
	if !ok {
		return nil, fmt.Errorf("unsupported repository type: %v", repoType)
	}
	return constructor(u.session()), nil
}

// AccountRepository implements repository.UnitOfWork.
func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	repo, err := u.GetRepository(reflect.TypeOf((*repository.AccountRepository)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	return repo.(repository.AccountRepository), nil
}

// TransactionRepository implements repository.UnitOfWork.
func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	repo, err := u.GetRepository(reflect.TypeOf((*repository.TransactionRepository)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	return repo.(repository.TransactionRepository), nil
}

// UserRepository implements repository.UnitOfWork.
func (u *UoW) UserRepository() (repository.UserRepository, error) {
	repo, err := u.GetRepository(reflect.TypeOf((*repository.UserRepository)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	return repo.(repository.UserRepository), nil
}

// AdminActionRepository implements repository.UnitOfWork.
func (u *UoW) AdminActionRepository() (repository.AdminActionRepository, error) {
	repo, err := u.GetRepository(reflect.TypeOf((*repository.AdminActionRepository)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	return repo.(repository.AdminActionRepository), nil
}

// session returns the transaction session when inside Do, the base session otherwise.
func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}
