package repository

import (
	"context"
	"reflect"
)

// UnitOfWork is the transaction boundary for all persistence work.
//
// Do runs the given function inside a single all-or-nothing unit of work: if
// the function returns an error, every mutation made through the repositories
// obtained from the provided UnitOfWork is discarded. Row locks acquired via
// AccountRepository.GetForUpdate are held until Do returns.
//
// GetRepository provides type-safe access to repositories bound to the current
// transaction session, guaranteeing all repository operations within a unit of
// work share one DB session. The typed accessor methods are conveniences over
// the same registry.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	// GetRepository returns a repository of the requested interface type,
	// bound to the current transaction session.
	// Example:
	//   repoAny, err := uow.GetRepository(reflect.TypeOf((*AccountRepository)(nil)).Elem())
	//   repo := repoAny.(AccountRepository)
	GetRepository(repoType reflect.Type) (any, error)

	AccountRepository() (AccountRepository, error)
	TransactionRepository() (TransactionRepository, error)
	UserRepository() (UserRepository, error)
	AdminActionRepository() (AdminActionRepository, error)
}
