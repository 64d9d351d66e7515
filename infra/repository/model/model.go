// Package model holds the GORM persistence models. Domain entities are mapped
// to and from these in the repository implementations.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents a user record in the database.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username  string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Password  string    `gorm:"type:varchar(128);not null"`
	IsAdmin   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// Account represents a bank account record in the database. The check
// constraint backs the domain invariant that a balance is never negative at rest.
type Account struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AccountNumber string          `gorm:"type:varchar(12);uniqueIndex;not null"`
	AccountType   string          `gorm:"type:varchar(10);not null;default:'savings'"`
	Status        string          `gorm:"type:varchar(10);not null;default:'pending';index"`
	Balance       decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0;check:balance >= 0"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	User          *User           `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "bank_accounts"
}

// Transaction represents a persisted ledger record. Account references are
// RESTRICT, not cascade: ledger rows are append-only and must outlive the
// accounts they reference, so deleting an account with history fails.
type Transaction struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Reference            string          `gorm:"type:varchar(25);uniqueIndex;not null"`
	TransactionType      string          `gorm:"type:varchar(10);not null;index"`
	Amount               decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Description          string          `gorm:"type:text"`
	SenderAccountID      *uuid.UUID      `gorm:"type:uuid;index:idx_transactions_sender_created,priority:1"`
	SenderAccount        *Account        `gorm:"foreignKey:SenderAccountID;constraint:OnDelete:RESTRICT"`
	ReceiverAccountID    *uuid.UUID      `gorm:"type:uuid;index:idx_transactions_receiver_created,priority:1"`
	ReceiverAccount      *Account        `gorm:"foreignKey:ReceiverAccountID;constraint:OnDelete:RESTRICT"`
	SenderBalanceAfter   *decimal.Decimal `gorm:"type:numeric(15,2)"`
	ReceiverBalanceAfter *decimal.Decimal `gorm:"type:numeric(15,2)"`
	CreatedAt            time.Time        `gorm:"index;index:idx_transactions_sender_created,priority:2;index:idx_transactions_receiver_created,priority:2"`
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string {
	return "transactions"
}

// AdminAction represents one back-office audit trail entry.
type AdminAction struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ActionType      string     `gorm:"type:varchar(20);not null;index"`
	Description     string     `gorm:"type:text;not null"`
	Reason          string     `gorm:"type:text"`
	AdminUserID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	AdminUser       *User      `gorm:"foreignKey:AdminUserID"`
	TargetAccountID *uuid.UUID `gorm:"type:uuid;index"`
	TargetAccount   *Account   `gorm:"foreignKey:TargetAccountID;constraint:OnDelete:RESTRICT"`
	CreatedAt       time.Time  `gorm:"index"`
}

// TableName specifies the table name for the AdminAction model.
func (AdminAction) TableName() string {
	return "admin_actions"
}
