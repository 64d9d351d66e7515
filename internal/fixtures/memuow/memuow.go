// Package memuow provides an in-memory repository.UnitOfWork for service
// tests. It reproduces the semantics the services rely on: exclusive
// per-account locks held for the duration of Do, staged writes that only
// become visible on commit, and conditional balance updates that report zero
// matched rows when the stored balance moved.
package memuow

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank/platform/pkg/domain"
	"github.com/corebank/platform/pkg/domain/account"
	"github.com/corebank/platform/pkg/domain/admin"
	"github.com/corebank/platform/pkg/domain/transaction"
	"github.com/corebank/platform/pkg/domain/user"
	"github.com/corebank/platform/pkg/repository"
)

// Store holds the shared state behind every UoW handed to a test.
type Store struct {
	mu           sync.Mutex
	accounts     map[uuid.UUID]*account.Account
	numberIndex  map[string]uuid.UUID
	users        map[uuid.UUID]*user.User
	transactions map[uuid.UUID]*transaction.Transaction
	references   map[string]bool
	actions      []*admin.Action
	rowLocks     map[uuid.UUID]*sync.Mutex

	// FailBalanceUpdate, when set, forces UpdateBalance to report zero matched
	// rows for accounts it returns true for. It simulates losing the optimistic
	// double-check mid-operation.
	FailBalanceUpdate func(id uuid.UUID) bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:     make(map[uuid.UUID]*account.Account),
		numberIndex:  make(map[string]uuid.UUID),
		users:        make(map[uuid.UUID]*user.User),
		transactions: make(map[uuid.UUID]*transaction.Transaction),
		references:   make(map[string]bool),
		rowLocks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// UoW returns a repository.UnitOfWork backed by the store.
func (s *Store) UoW() repository.UnitOfWork {
	return &UoW{store: s}
}

// SeedUser inserts a user directly, bypassing any unit of work.
func (s *Store) SeedUser(u *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
}

// SeedAccount inserts an account directly, bypassing any unit of work.
func (s *Store) SeedAccount(a *account.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.accounts[a.ID] = &cp
	s.numberIndex[a.Number] = a.ID
	if _, ok := s.rowLocks[a.ID]; !ok {
		s.rowLocks[a.ID] = &sync.Mutex{}
	}
}

// Account returns a copy of the stored account.
func (s *Store) Account(id uuid.UUID) *account.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

// Transactions returns copies of all committed ledger records.
func (s *Store) Transactions() []*transaction.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*transaction.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Actions returns copies of all committed audit entries.
func (s *Store) Actions() []*admin.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*admin.Action, 0, len(s.actions))
	for _, a := range s.actions {
		cp := *a
		out = append(out, &cp)
	}
	return out
}

// session is the per-Do staging area. Staged entities are only merged into the
// store when Do's function returns nil.
type session struct {
	store   *Store
	locked  map[uuid.UUID]bool
	lockSeq []*sync.Mutex

	accounts        map[uuid.UUID]*account.Account
	newAccounts     []uuid.UUID
	newUsers        []*user.User
	newTransactions []*transaction.Transaction
	newActions      []*admin.Action
}

// UoW implements repository.UnitOfWork over a Store.
type UoW struct {
	store   *Store
	session *session
}

// Do implements repository.UnitOfWork. A nested Do joins the current session.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.session != nil {
		return fn(u)
	}
	s := &session{
		store:    u.store,
		locked:   make(map[uuid.UUID]bool),
		accounts: make(map[uuid.UUID]*account.Account),
	}
	tx := &UoW{store: u.store, session: s}
	err := fn(tx)
	if err == nil {
		s.commit()
	}
	s.releaseLocks()
	return err
}

// GetRepository implements repository.UnitOfWork.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	switch repoType {
	case reflect.TypeOf((*repository.AccountRepository)(nil)).Elem():
		return &accountRepo{u}, nil
	case reflect.TypeOf((*repository.TransactionRepository)(nil)).Elem():
		return &transactionRepo{u}, nil
	case reflect.TypeOf((*repository.UserRepository)(nil)).Elem():
		return &userRepo{u}, nil
	case reflect.TypeOf((*repository.AdminActionRepository)(nil)).Elem():
		return &adminActionRepo{u}, nil
	}
	return nil, fmt.Errorf("unknown repository type %v", repoType)
}

// AccountRepository implements repository.UnitOfWork.
func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	return &accountRepo{u}, nil
}

// TransactionRepository implements repository.UnitOfWork.
func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return &transactionRepo{u}, nil
}

// UserRepository implements repository.UnitOfWork.
func (u *UoW) UserRepository() (repository.UserRepository, error) {
	return &userRepo{u}, nil
}

// AdminActionRepository implements repository.UnitOfWork.
func (u *UoW) AdminActionRepository() (repository.AdminActionRepository, error) {
	return &adminActionRepo{u}, nil
}

func (u *UoW) mustSession() *session {
	if u.session == nil {
		panic("repository used outside Do")
	}
	return u.session
}

func (s *session) commit() {
	st := s.store
	st.mu.Lock()
	defer st.mu.Unlock()
	for id, a := range s.accounts {
		cp := *a
		st.accounts[id] = &cp
	}
	for _, id := range s.newAccounts {
		if a, ok := st.accounts[id]; ok {
			st.numberIndex[a.Number] = id
			if _, exists := st.rowLocks[id]; !exists {
				st.rowLocks[id] = &sync.Mutex{}
			}
		}
	}
	for _, u := range s.newUsers {
		cp := *u
		st.users[u.ID] = &cp
	}
	for _, t := range s.newTransactions {
		cp := *t
		st.transactions[t.ID] = &cp
		st.references[t.Reference] = true
	}
	for _, a := range s.newActions {
		cp := *a
		st.actions = append(st.actions, &cp)
	}
}

func (s *session) releaseLocks() {
	// Unlock in reverse acquisition order.
	for i := len(s.lockSeq) - 1; i >= 0; i-- {
		s.lockSeq[i].Unlock()
	}
	s.lockSeq = nil
	s.locked = make(map[uuid.UUID]bool)
}

// stagedAccount returns the session's working copy of an account, loading it
// from the store on first touch.
func (s *session) stagedAccount(id uuid.UUID) (*account.Account, bool) {
	if a, ok := s.accounts[id]; ok {
		return a, true
	}
	s.store.mu.Lock()
	stored, ok := s.store.accounts[id]
	if ok {
		cp := *stored
		s.accounts[id] = &cp
	}
	s.store.mu.Unlock()
	if !ok {
		return nil, false
	}
	return s.accounts[id], true
}

type accountRepo struct{ u *UoW }

func (r *accountRepo) Create(_ context.Context, a *account.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s := r.u.mustSession()
	cp := *a
	s.accounts[a.ID] = &cp
	s.newAccounts = append(s.newAccounts, a.ID)
	return nil
}

func (r *accountRepo) Get(_ context.Context, id uuid.UUID) (*account.Account, error) {
	s := r.u.mustSession()
	a, ok := s.stagedAccount(id)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *accountRepo) GetByNumber(ctx context.Context, number string) (*account.Account, error) {
	s := r.u.mustSession()
	s.store.mu.Lock()
	id, ok := s.store.numberIndex[number]
	s.store.mu.Unlock()
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return r.Get(ctx, id)
}

func (r *accountRepo) GetForUpdate(_ context.Context, number string) (*account.Account, error) {
	s := r.u.mustSession()
	s.store.mu.Lock()
	id, ok := s.store.numberIndex[number]
	var lock *sync.Mutex
	if ok {
		lock = s.store.rowLocks[id]
	}
	s.store.mu.Unlock()
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if !s.locked[id] {
		lock.Lock()
		s.locked[id] = true
		s.lockSeq = append(s.lockSeq, lock)
	}
	a, ok := s.stagedAccount(id)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *accountRepo) UpdateBalance(
	_ context.Context,
	id uuid.UUID,
	expected, delta decimal.Decimal,
) (int64, error) {
	s := r.u.mustSession()
	if s.store.FailBalanceUpdate != nil && s.store.FailBalanceUpdate(id) {
		return 0, nil
	}
	a, ok := s.stagedAccount(id)
	if !ok {
		return 0, nil
	}
	if !a.Balance.Equal(expected) {
		return 0, nil
	}
	a.Balance = a.Balance.Add(delta)
	a.UpdatedAt = time.Now()
	return 1, nil
}

func (r *accountRepo) UpdateStatus(_ context.Context, id uuid.UUID, status account.Status) error {
	s := r.u.mustSession()
	a, ok := s.stagedAccount(id)
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	return nil
}

func (r *accountRepo) ExistsByNumber(_ context.Context, number string) (bool, error) {
	s := r.u.mustSession()
	s.store.mu.Lock()
	_, ok := s.store.numberIndex[number]
	s.store.mu.Unlock()
	if ok {
		return true, nil
	}
	for _, a := range s.accounts {
		if a.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *accountRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*account.Account, error) {
	s := r.u.mustSession()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	var out []*account.Account
	for _, a := range s.store.accounts {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *accountRepo) ListByStatus(
	_ context.Context,
	status account.Status,
	limit int,
) ([]*account.Account, error) {
	s := r.u.mustSession()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	var out []*account.Account
	for _, a := range s.store.accounts {
		if a.Status == status {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return clip(out, limit), nil
}

func (r *accountRepo) CountByStatus(_ context.Context) (map[account.Status]int64, error) {
	s := r.u.mustSession()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	out := make(map[account.Status]int64)
	for _, a := range s.store.accounts {
		out[a.Status]++
	}
	return out, nil
}

func (r *accountRepo) TotalBalance(
	_ context.Context,
	statuses ...account.Status,
) (decimal.Decimal, error) {
	s := r.u.mustSession()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	total := decimal.Zero
	for _, a := range s.store.accounts {
		for _, st := range statuses {
			if a.Status == st {
				total = total.Add(a.Balance)
				break
			}
		}
	}
	return total, nil
}

type transactionRepo struct{ u *UoW }

func (r *transactionRepo) Create(_ context.Context, t *transaction.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s := r.u.mustSession()
	cp := *t
	s.newTransactions = append(s.newTransactions, &cp)
	return nil
}

func (r *transactionRepo) Get(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	s := r.u.mustSession()
	for _, t := range s.newTransactions {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	t, ok := s.store.transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *transactionRepo) ExistsByReference(_ context.Context, reference string) (bool, error) {
	s := r.u.mustSession()
	for _, t := range s.newTransactions {
		if t.Reference == reference {
			return true, nil
		}
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return s.store.references[reference], nil
}

func (r *transactionRepo) ListByAccount(
	_ context.Context,
	accountID uuid.UUID,
	limit int,
) ([]*transaction.Transaction, error) {
	s := r.u.mustSession()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	var out []*transaction.Transaction
	for _, t := range s.store.transactions {
		refsAccount := (t.SenderAccountID != nil && *t.SenderAccountID == accountID) ||
			(t.ReceiverAccountID != nil && *t.ReceiverAccountID == accountID)
		if refsAccount {
			cp := *t
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return clip(out, limit), nil
}

func (r *transactionRepo) ListRecent(_ context.Context, limit int) ([]*transaction.Transaction, error) {
	s := r.u.mustSession()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	out := make([]*transaction.Transaction, 0, len(s.store.transactions))
	for _, t := range s.store.transactions {
		cp := *t
		out = append(out, &cp)
	}
	sortNewestFirst(out)
	return clip(out, limit), nil
}

func (r *transactionRepo) ListHighValue(
	_ context.Context,
	min decimal.Decimal,
	since time.Time,
	limit int,
) ([]*transaction.Transaction, error) {
	s := r.u.mustSession()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	var out []*transaction.Transaction
	for _, t := range s.store.transactions {
		if t.Amount.GreaterThanOrEqual(min) && !t.CreatedAt.Before(since) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return clip(out, limit), nil
}

func (r *transactionRepo) CountSince(_ context.Context, since time.Time) (int64, error) {
	s := r.u.mustSession()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	var n int64
	for _, t := range s.store.transactions {
		if !t.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *transactionRepo) VolumeSince(_ context.Context, since time.Time) (decimal.Decimal, error) {
	s := r.u.mustSession()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	total := decimal.Zero
	for _, t := range s.store.transactions {
		if !t.CreatedAt.Before(since) {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

type userRepo struct{ u *UoW }

func (r *userRepo) Create(_ context.Context, u *user.User) error {
	s := r.u.mustSession()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for _, existing := range s.store.users {
		if strings.EqualFold(existing.Username, u.Username) ||
			strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrAlreadyExists
		}
	}
	cp := *u
	s.newUsers = append(s.newUsers, &cp)
	return nil
}

func (r *userRepo) Get(_ context.Context, id uuid.UUID) (*user.User, error) {
	s := r.u.mustSession()
	for _, u := range s.newUsers {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	u, ok := s.store.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	s := r.u.mustSession()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for _, u := range s.store.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s := r.u.mustSession()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for _, u := range s.store.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepo) Count(_ context.Context) (int64, error) {
	s := r.u.mustSession()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return int64(len(s.store.users)), nil
}

type adminActionRepo struct{ u *UoW }

func (r *adminActionRepo) Create(_ context.Context, a *admin.Action) error {
	s := r.u.mustSession()
	cp := *a
	s.newActions = append(s.newActions, &cp)
	return nil
}

func (r *adminActionRepo) ListRecent(_ context.Context, limit int) ([]*admin.Action, error) {
	s := r.u.mustSession()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	out := make([]*admin.Action, 0, len(s.store.actions))
	for _, a := range s.store.actions {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return clip(out, limit), nil
}

func sortNewestFirst(ts []*transaction.Transaction) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].CreatedAt.After(ts[j].CreatedAt) })
}

func clip[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
