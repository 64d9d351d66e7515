package transaction

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGenerateReference_Format(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	format := regexp.MustCompile(`^TXN20260314092653[A-Z0-9]{4}$`)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, format, GenerateReference(now))
	}
}

func TestValidate_TypeShape(t *testing.T) {
	sender := uuid.New()
	receiver := uuid.New()
	one := decimal.NewFromInt(1)

	tests := []struct {
		name    string
		txn     Transaction
		wantErr error
	}{
		{
			"valid deposit",
			Transaction{Type: TypeDeposit, Amount: one, ReceiverAccountID: &receiver},
			nil,
		},
		{
			"deposit with sender",
			Transaction{Type: TypeDeposit, Amount: one, SenderAccountID: &sender, ReceiverAccountID: &receiver},
			ErrDepositShape,
		},
		{
			"deposit without receiver",
			Transaction{Type: TypeDeposit, Amount: one},
			ErrDepositShape,
		},
		{
			"valid withdrawal",
			Transaction{Type: TypeWithdrawal, Amount: one, SenderAccountID: &sender},
			nil,
		},
		{
			"withdrawal with receiver",
			Transaction{Type: TypeWithdrawal, Amount: one, SenderAccountID: &sender, ReceiverAccountID: &receiver},
			ErrWithdrawalShape,
		},
		{
			"valid transfer",
			Transaction{Type: TypeTransfer, Amount: one, SenderAccountID: &sender, ReceiverAccountID: &receiver},
			nil,
		},
		{
			"transfer to self",
			Transaction{Type: TypeTransfer, Amount: one, SenderAccountID: &sender, ReceiverAccountID: &sender},
			ErrTransferShape,
		},
		{
			"transfer missing receiver",
			Transaction{Type: TypeTransfer, Amount: one, SenderAccountID: &sender},
			ErrTransferShape,
		},
		{
			"zero amount",
			Transaction{Type: TypeDeposit, Amount: decimal.Zero, ReceiverAccountID: &receiver},
			ErrAmountNotPositive,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txn.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestDisplayAmountFor(t *testing.T) {
	sender := uuid.New()
	receiver := uuid.New()
	txn := Transaction{
		Type:              TypeTransfer,
		Amount:            decimal.NewFromInt(30),
		SenderAccountID:   &sender,
		ReceiverAccountID: &receiver,
	}

	assert.True(t, txn.DisplayAmountFor(sender).Equal(decimal.NewFromInt(-30)))
	assert.True(t, txn.DisplayAmountFor(receiver).Equal(decimal.NewFromInt(30)))
	assert.True(t, txn.DisplayAmountFor(uuid.New()).IsZero())
}
