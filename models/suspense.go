package models

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type NewSuspense struct {
	TransactionId  int              `json:"transactionId" binding:"required"`
	CashAccountId  int              `json:"cashAccountId" binding:"required"`
	SuspenceAmount *decimal.Decimal `json:"suspenceAmount"`
}

// planSuspense returns the advance to hand out; it defaults to the requested amount.
func planSuspense(t *Transaction, input *NewSuspense, balance decimal.Decimal) (decimal.Decimal, error) {
	if t.Type != TransactionTypeSuspencePayment {
		return decimal.Zero, utils.InvalidInput("only suspence_payment transactions can be advanced")
	}
	if !CanTransition(t.Status, TransactionStatusSuspense) {
		return decimal.Zero, fmt.Errorf("%w: %s -> %s", utils.ErrInvalidTransition, t.Status, TransactionStatusSuspense)
	}
	if err := t.checkCashAccount(input.CashAccountId); err != nil {
		return decimal.Zero, err
	}
	advance := t.Amount
	if input.SuspenceAmount != nil {
		advance = *input.SuspenceAmount
	}
	if !advance.IsPositive() {
		return decimal.Zero, utils.InvalidInput("suspenceAmount must be greater than zero")
	}
	if balance.LessThan(advance) {
		return decimal.Zero, fmt.Errorf("%w: balance %s, required %s", utils.ErrInsufficientBalance, balance.StringFixed(2), advance.StringFixed(2))
	}
	return advance, nil
}

// MoveToSuspense hands out a cash advance for an approved suspence_payment.
// The PCPV serial is stamped here and kept when the advance is settled.
func MoveToSuspense(ctx context.Context, input *NewSuspense) (_ *Transaction, err error) {
	ctx, span := startSpan(ctx, "MoveToSuspense",
		attribute.Int("transaction.id", input.TransactionId),
		attribute.Int("cash_account.id", input.CashAccountId))
	defer func() { endSpan(span, err) }()

	unlock := lockCashAccount(ctx, input.CashAccountId)
	defer unlock()

	return changeStatus(ctx, input.TransactionId, HistoryActionSuspend, "Advanced Transaction to Suspense", func(tx *gorm.DB, transaction *Transaction) error {
		account, err := utils.FetchModelForUpdate[CashAccount](tx, input.CashAccountId)
		if err != nil {
			return err
		}
		advance, err := planSuspense(transaction, input, account.Balance)
		if err != nil {
			return err
		}
		if _, err := transaction.ensureSerial(tx); err != nil {
			return err
		}
		if err := adjustCashBalance(tx, account, advance.Neg()); err != nil {
			return err
		}
		transaction.SuspenceAmount = advance
		transaction.CashAccountId = &account.ID
		return transaction.transitionTo(TransactionStatusSuspense)
	})
}
