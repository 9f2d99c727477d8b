package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type NewCashPayment struct {
	TransactionId    int              `json:"transactionId" binding:"required"`
	CashAccountId    int              `json:"cashAccountId" binding:"required"`
	Type             TransactionType  `json:"type" binding:"required"`
	ReturnAmount     *decimal.Decimal `json:"returnAmount"`
	ReceiptReference string           `json:"receiptReference"`
	// older clients send the misspelt key
	ReceptReference string `json:"recept_reference"`
}

func (input *NewCashPayment) reference() string {
	if ref := strings.TrimSpace(input.ReceiptReference); ref != "" {
		return ref
	}
	return strings.TrimSpace(input.ReceptReference)
}

// cashSettlement is the outcome of paying a transaction in cash.
type cashSettlement struct {
	BalanceDelta decimal.Decimal
	AmountUsed   decimal.Decimal
	ReturnAmount decimal.Decimal
}

// planCashPayment checks the transaction against the payment input and works out
// the balance movement. It does not touch the database.
func planCashPayment(t *Transaction, input *NewCashPayment, balance decimal.Decimal) (*cashSettlement, error) {
	if input.Type != t.Type {
		return nil, utils.InvalidInput("payment type %q does not match transaction type %q", input.Type, t.Type)
	}
	if err := t.checkCashAccount(input.CashAccountId); err != nil {
		return nil, err
	}

	switch input.Type {
	case TransactionTypeReceiptPayment:
		if t.Status != TransactionStatusApproved {
			return nil, fmt.Errorf("%w: %s transaction cannot be paid", utils.ErrInvalidTransition, t.Status)
		}
		if balance.LessThan(t.Amount) {
			return nil, fmt.Errorf("%w: balance %s, required %s", utils.ErrInsufficientBalance, balance.StringFixed(2), t.Amount.StringFixed(2))
		}
		return &cashSettlement{
			BalanceDelta: t.Amount.Neg(),
			AmountUsed:   t.Amount,
			ReturnAmount: decimal.Zero,
		}, nil

	case TransactionTypeSuspencePayment:
		if t.Status != TransactionStatusSuspense {
			return nil, fmt.Errorf("%w: %s transaction cannot be settled", utils.ErrInvalidTransition, t.Status)
		}
		if input.ReturnAmount == nil {
			return nil, fmt.Errorf("%w: returnAmount", utils.ErrMissingFields)
		}
		returnAmount := *input.ReturnAmount
		if returnAmount.IsNegative() || returnAmount.GreaterThan(t.SuspenceAmount) {
			return nil, utils.InvalidInput("returnAmount must be between 0 and %s", t.SuspenceAmount.StringFixed(2))
		}
		return &cashSettlement{
			BalanceDelta: returnAmount,
			AmountUsed:   t.SuspenceAmount.Sub(returnAmount),
			ReturnAmount: returnAmount,
		}, nil
	}

	return nil, utils.InvalidInput("%q transactions are paid by check", input.Type)
}

// PayCash settles an approved receipt payment or a suspense advance against a cash account.
func PayCash(ctx context.Context, input *NewCashPayment) (_ *Transaction, err error) {
	userId, _, err := utils.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "PayCash",
		attribute.Int("transaction.id", input.TransactionId),
		attribute.Int("cash_account.id", input.CashAccountId),
		attribute.String("transaction.type", string(input.Type)))
	defer func() { endSpan(span, err) }()

	unlock := lockCashAccount(ctx, input.CashAccountId)
	defer unlock()

	return changeStatus(ctx, input.TransactionId, HistoryActionPay, "Paid Transaction by Cash", func(tx *gorm.DB, transaction *Transaction) error {
		account, err := utils.FetchModelForUpdate[CashAccount](tx, input.CashAccountId)
		if err != nil {
			return err
		}
		settlement, err := planCashPayment(transaction, input, account.Balance)
		if err != nil {
			return err
		}
		if _, err := transaction.ensureSerial(tx); err != nil {
			return err
		}
		if err := adjustCashBalance(tx, account, settlement.BalanceDelta); err != nil {
			return err
		}

		transaction.AmountUsed = settlement.AmountUsed
		transaction.ReturnAmount = settlement.ReturnAmount
		transaction.CashAccountId = &account.ID
		if ref := input.reference(); ref != "" {
			transaction.ReceiptReference = ref
		}
		return transaction.markPaid(userId, time.Now().UTC())
	})
}
