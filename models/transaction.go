package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/config"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is a disbursement request moving through
// requested -> approved|rejected -> paid|suspense -> paid.
type Transaction struct {
	ID               int               `gorm:"primary_key" json:"id"`
	Type             TransactionType   `gorm:"size:20;not null;index" json:"type"`
	Status           TransactionStatus `gorm:"size:20;not null;index" json:"status"`
	Description      string            `gorm:"type:text" json:"description"`
	Amount           decimal.Decimal   `gorm:"type:decimal(20,4);not null" json:"amount"`
	SuspenceAmount   decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"suspenceAmount"`
	ReturnAmount     decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"returnAmount"`
	AmountUsed       decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"amountUsed"`
	RequestedBy      int               `gorm:"index;not null" json:"requestedBy"`
	ApprovedBy       *int              `json:"approvedBy"`
	ApprovedAt       *time.Time        `json:"approvedAt"`
	RejectedBy       *int              `json:"rejectedBy"`
	RejectedReason   string            `gorm:"type:text" json:"rejectedReason"`
	RejectedAt       *time.Time        `json:"rejectedAt"`
	PaidBy           *int              `json:"paidBy"`
	PaidAt           *time.Time        `json:"paidAt"`
	CashAccountId    *int              `gorm:"index" json:"cashAccountId"`
	CheckRequestId   *int              `gorm:"index" json:"checkRequestId"`
	ReceiptReference string            `gorm:"size:255" json:"receiptReference"`
	SerialNumber     *int64            `gorm:"uniqueIndex:idx_transaction_voucher_serial,priority:2" json:"serialNumber"`
	VoucherType      *VoucherType      `gorm:"size:10;uniqueIndex:idx_transaction_voucher_serial,priority:1" json:"voucherType"`
	CreatedAt        time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewTransaction struct {
	Type          TransactionType `json:"type" binding:"required"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	CashAccountId *int            `json:"cashAccountId"`
}

type TransactionFilter struct {
	Status      TransactionStatus `form:"status"`
	Type        TransactionType   `form:"type"`
	RequestedBy int               `form:"requestedBy"`
	FromDate    string            `form:"from"`
	ToDate      string            `form:"to"`
	After       string            `form:"after"`
	Limit       int               `form:"limit"`
}

var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	TransactionStatusRequested: {TransactionStatusApproved, TransactionStatusRejected},
	TransactionStatusApproved:  {TransactionStatusRejected, TransactionStatusPaid, TransactionStatusSuspense},
	TransactionStatusSuspense:  {TransactionStatusPaid},
}

// CanTransition reports whether a transaction may move from one status to another.
// paid and rejected have no outgoing edges.
func CanTransition(from, to TransactionStatus) bool {
	for _, next := range transactionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (t *Transaction) transitionTo(to TransactionStatus) error {
	if !CanTransition(t.Status, to) {
		return fmt.Errorf("%w: %s -> %s", utils.ErrInvalidTransition, t.Status, to)
	}
	t.Status = to
	return nil
}

func (t *Transaction) approve(userId int, at time.Time) error {
	if err := t.transitionTo(TransactionStatusApproved); err != nil {
		return err
	}
	t.ApprovedBy = &userId
	t.ApprovedAt = &at
	return nil
}

func (t *Transaction) reject(userId int, reason string, at time.Time) error {
	if err := t.transitionTo(TransactionStatusRejected); err != nil {
		return err
	}
	t.RejectedBy = &userId
	t.RejectedReason = reason
	t.RejectedAt = &at
	return nil
}

func (t *Transaction) markPaid(userId int, at time.Time) error {
	if err := t.transitionTo(TransactionStatusPaid); err != nil {
		return err
	}
	t.PaidBy = &userId
	t.PaidAt = &at
	return nil
}

func (t *Transaction) HasSerial() bool {
	return t.SerialNumber != nil
}

// checkCashAccount refuses to move money through an account other than the one
// the transaction is already bound to (named at request time or debited by an advance).
func (t *Transaction) checkCashAccount(accountId int) error {
	if t.CashAccountId != nil && *t.CashAccountId > 0 && *t.CashAccountId != accountId {
		return utils.InvalidInput("transaction is bound to cash account %d, got %d", *t.CashAccountId, accountId)
	}
	return nil
}

// deletable reports whether the row can be removed: only requests that never
// moved money and never received a voucher number or check.
func (t *Transaction) deletable() error {
	if t.Status != TransactionStatusRequested && t.Status != TransactionStatusRejected {
		return fmt.Errorf("%w: cannot delete a %s transaction", utils.ErrInvalidTransition, t.Status)
	}
	if t.HasSerial() || t.CheckRequestId != nil {
		return fmt.Errorf("%w: transaction %s is kept for the voucher series", utils.ErrInvalidTransition, t.VoucherNumber())
	}
	return nil
}

// assignSerial stamps the voucher serial. A stamped serial is never replaced.
func (t *Transaction) assignSerial(voucherType VoucherType, serial int64) error {
	if t.HasSerial() {
		return utils.ErrAlreadySerialized
	}
	t.SerialNumber = &serial
	t.VoucherType = &voucherType
	return nil
}

// VoucherNumber renders the stamped serial, e.g. PCPV-000042; empty before payment.
func (t *Transaction) VoucherNumber() string {
	if t.SerialNumber == nil || t.VoucherType == nil {
		return ""
	}
	return FormatSerial(*t.VoucherType, *t.SerialNumber)
}

// ensureSerial allocates from the counter matching the payment path unless already stamped.
func (t *Transaction) ensureSerial(tx *gorm.DB) (bool, error) {
	if t.HasSerial() {
		return false, nil
	}
	voucherType := t.Type.VoucherType()
	serial, err := AllocateSerial(tx, voucherType)
	if err != nil {
		return false, err
	}
	return true, t.assignSerial(voucherType, serial)
}

// validate input for both create & update. (id = 0 for create)
func (input *NewTransaction) validate(ctx context.Context, id int) error {
	if !input.Type.IsValid() {
		return utils.InvalidInput("invalid transaction type %q", input.Type)
	}
	if !input.Amount.IsPositive() {
		return utils.InvalidInput("amount must be greater than zero")
	}
	if input.CashAccountId != nil && *input.CashAccountId > 0 {
		if err := utils.ValidateResourceId[CashAccount](ctx, *input.CashAccountId); err != nil {
			return err
		}
	}
	return nil
}

func CreateTransaction(ctx context.Context, input *NewTransaction) (*Transaction, error) {
	userId, _, err := utils.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	transaction := Transaction{
		Type:          input.Type,
		Status:        TransactionStatusRequested,
		Description:   strings.TrimSpace(input.Description),
		Amount:        input.Amount,
		RequestedBy:   userId,
		CashAccountId: input.CashAccountId,
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&transaction).Error; err != nil {
			return err
		}
		return createHistory(tx, HistoryActionCreate, transaction.ID, ReferenceTypeTransaction, nil, &transaction, "Created Transaction")
	})
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

// UpdateTransaction edits a request before anyone has acted on it.
func UpdateTransaction(ctx context.Context, id int, input *NewTransaction) (*Transaction, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	var result *Transaction
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transaction, err := utils.FetchModelForUpdate[Transaction](tx, id)
		if err != nil {
			return err
		}
		if transaction.Status != TransactionStatusRequested {
			return fmt.Errorf("%w: only requested transactions can be edited", utils.ErrInvalidTransition)
		}
		before := *transaction

		err = tx.Model(transaction).Updates(map[string]interface{}{
			"Type":          input.Type,
			"Description":   strings.TrimSpace(input.Description),
			"Amount":        input.Amount,
			"CashAccountId": input.CashAccountId,
		}).Error
		if err != nil {
			return err
		}
		if err := createHistory(tx, HistoryActionUpdate, id, ReferenceTypeTransaction, &before, transaction, "Updated Transaction"); err != nil {
			return err
		}
		result = transaction
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// changeStatus locks the row, applies fn and records history in one db transaction,
// then publishes the change once committed.
func changeStatus(ctx context.Context, id int, actionType string, description string,
	fn func(tx *gorm.DB, transaction *Transaction) error) (*Transaction, error) {

	var (
		result *Transaction
		from   TransactionStatus
	)
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transaction, err := utils.FetchModelForUpdate[Transaction](tx, id)
		if err != nil {
			return err
		}
		before := *transaction
		from = transaction.Status

		if err := fn(tx, transaction); err != nil {
			return err
		}
		if err := tx.Save(transaction).Error; err != nil {
			return err
		}
		if err := createHistory(tx, actionType, id, ReferenceTypeTransaction, &before, transaction, description); err != nil {
			return err
		}
		result = transaction
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.VoucherType != nil && result.SerialNumber != nil {
		cacheSerial(*result.VoucherType, *result.SerialNumber)
	}
	publishStatusChanged(ctx, result, from)
	return result, nil
}

func ApproveTransaction(ctx context.Context, id int) (*Transaction, error) {
	userId, _, err := utils.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return changeStatus(ctx, id, HistoryActionApprove, "Approved Transaction", func(tx *gorm.DB, transaction *Transaction) error {
		return transaction.approve(userId, time.Now().UTC())
	})
}

func RejectTransaction(ctx context.Context, id int, reason string) (*Transaction, error) {
	userId, _, err := utils.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, utils.InvalidInput("rejection reason is required")
	}
	return changeStatus(ctx, id, HistoryActionReject, "Rejected Transaction", func(tx *gorm.DB, transaction *Transaction) error {
		if transaction.CheckRequestId != nil {
			return fmt.Errorf("%w: reject the prepared check instead", utils.ErrInvalidTransition)
		}
		return transaction.reject(userId, reason, time.Now().UTC())
	})
}

// DeleteTransaction removes requests that never moved money.
func DeleteTransaction(ctx context.Context, id int) (*Transaction, error) {
	var result *Transaction
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transaction, err := utils.FetchModelForUpdate[Transaction](tx, id)
		if err != nil {
			return err
		}
		if err := transaction.deletable(); err != nil {
			return err
		}
		if err := tx.Delete(transaction).Error; err != nil {
			return err
		}
		if err := createHistory(tx, HistoryActionDelete, id, ReferenceTypeTransaction, transaction, nil, "Deleted Transaction"); err != nil {
			return err
		}
		result = transaction
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func GetTransaction(ctx context.Context, id int) (*Transaction, error) {
	return utils.FetchModel[Transaction](ctx, id)
}

func ListTransactions(ctx context.Context, filter *TransactionFilter) (*Page[Transaction], error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Transaction{})

	if filter != nil {
		if filter.Status != "" {
			if !filter.Status.IsValid() {
				return nil, utils.InvalidInput("invalid status %q", filter.Status)
			}
			dbCtx = dbCtx.Where("status = ?", filter.Status)
		}
		if filter.Type != "" {
			if !filter.Type.IsValid() {
				return nil, utils.InvalidInput("invalid type %q", filter.Type)
			}
			dbCtx = dbCtx.Where("type = ?", filter.Type)
		}
		if filter.RequestedBy > 0 {
			dbCtx = dbCtx.Where("requested_by = ?", filter.RequestedBy)
		}
		var err error
		if dbCtx, err = whereDateRange(dbCtx, "created_at", filter.FromDate, filter.ToDate); err != nil {
			return nil, err
		}
	} else {
		filter = &TransactionFilter{}
	}

	return paginate(dbCtx, filter.After, filter.Limit, func(t *Transaction) int { return t.ID })
}

// whereDateRange filters column by inclusive calendar dates (YYYY-MM-DD) in the configured timezone.
func whereDateRange(dbCtx *gorm.DB, column string, from string, to string) (*gorm.DB, error) {
	loc, err := time.LoadLocation(config.Timezone())
	if err != nil {
		loc = time.UTC
	}
	if from != "" {
		fromDate, err := utils.ParseDate(from)
		if err != nil {
			return nil, utils.InvalidInput("invalid from date %q", from)
		}
		start := time.Date(fromDate.Year(), fromDate.Month(), fromDate.Day(), 0, 0, 0, 0, loc)
		dbCtx = dbCtx.Where(column+" >= ?", start.UTC())
	}
	if to != "" {
		toDate, err := utils.ParseDate(to)
		if err != nil {
			return nil, utils.InvalidInput("invalid to date %q", to)
		}
		end := time.Date(toDate.Year(), toDate.Month(), toDate.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
		dbCtx = dbCtx.Where(column+" < ?", end.UTC())
	}
	return dbCtx, nil
}
