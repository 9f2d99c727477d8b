package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/config"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// CheckRequest is the check issued for a check_payment transaction.
type CheckRequest struct {
	ID             int             `gorm:"primary_key" json:"id"`
	CheckNumber    string          `gorm:"size:50;not null;uniqueIndex" json:"checkNumber"`
	Bank           string          `gorm:"size:100;not null" json:"bank"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Payee          string          `gorm:"size:255" json:"payee"`
	Status         CheckStatus     `gorm:"size:20;not null;index" json:"status"`
	TransactionId  int             `gorm:"not null;uniqueIndex" json:"transactionId"`
	PreparedBy     int             `gorm:"not null" json:"preparedBy"`
	PaidBy         *int            `json:"paidBy"`
	PaidAt         *time.Time      `json:"paidAt"`
	RejectedReason string          `gorm:"type:text" json:"rejectedReason"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewCheckRequest struct {
	TransactionId int    `json:"transactionId" binding:"required"`
	CheckNumber   string `json:"checkNumber" binding:"required"`
	Bank          string `json:"bank" binding:"required"`
	Payee         string `json:"payee"`
}

type CheckDecision struct {
	TransactionId int    `json:"transactionId" binding:"required"`
	Reason        string `json:"reason"`
}

type CheckRequestFilter struct {
	Status CheckStatus `form:"status"`
	Bank   string      `form:"bank"`
	After  string      `form:"after"`
	Limit  int         `form:"limit"`
}

func (input *NewCheckRequest) validate(ctx context.Context) error {
	input.CheckNumber = strings.TrimSpace(input.CheckNumber)
	input.Bank = strings.TrimSpace(input.Bank)
	if input.CheckNumber == "" || input.Bank == "" {
		return utils.ErrMissingFields
	}
	return utils.ValidateUnique[CheckRequest](ctx, "check_number", input.CheckNumber, 0)
}

// PrepareCheck issues a check for an approved check_payment transaction and stamps its CPV serial.
func PrepareCheck(ctx context.Context, input *NewCheckRequest) (_ *CheckRequest, err error) {
	userId, _, err := utils.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "PrepareCheck", attribute.Int("transaction.id", input.TransactionId))
	defer func() { endSpan(span, err) }()

	var check CheckRequest
	_, err = changeStatus(ctx, input.TransactionId, HistoryActionCheck, "Prepared Check", func(tx *gorm.DB, transaction *Transaction) error {
		if transaction.Type != TransactionTypeCheckPayment {
			return utils.InvalidInput("only check_payment transactions are paid by check")
		}
		if transaction.Status != TransactionStatusApproved {
			return fmt.Errorf("%w: %s transaction cannot be prepared", utils.ErrInvalidTransition, transaction.Status)
		}
		if transaction.CheckRequestId != nil {
			return fmt.Errorf("%w: check already prepared", utils.ErrDuplicate)
		}
		if _, err := transaction.ensureSerial(tx); err != nil {
			return err
		}

		check = CheckRequest{
			CheckNumber:   input.CheckNumber,
			Bank:          input.Bank,
			Amount:        transaction.Amount,
			Payee:         strings.TrimSpace(input.Payee),
			Status:        CheckStatusPrepared,
			TransactionId: transaction.ID,
			PreparedBy:    userId,
		}
		if err := tx.Create(&check).Error; err != nil {
			return err
		}
		transaction.CheckRequestId = &check.ID
		return createHistory(tx, HistoryActionCreate, check.ID, ReferenceTypeCheckRequest, nil, &check, "Prepared Check "+check.CheckNumber)
	})
	if err != nil {
		return nil, err
	}
	return &check, nil
}

// checkDecision locks the prepared check of a transaction and applies fn to both.
func checkDecision(ctx context.Context, transactionId int, actionType string, description string,
	fn func(transaction *Transaction, check *CheckRequest) error) (*CheckRequest, error) {

	var check *CheckRequest
	_, err := changeStatus(ctx, transactionId, actionType, description, func(tx *gorm.DB, transaction *Transaction) error {
		if transaction.CheckRequestId == nil {
			return fmt.Errorf("%w: no check prepared for transaction %d", utils.ErrorRecordNotFound, transaction.ID)
		}
		var err error
		check, err = utils.FetchModelForUpdate[CheckRequest](tx, *transaction.CheckRequestId)
		if err != nil {
			return err
		}
		if check.Status != CheckStatusPrepared {
			return fmt.Errorf("%w: check is already %s", utils.ErrInvalidTransition, check.Status)
		}
		before := *check
		if err := fn(transaction, check); err != nil {
			return err
		}
		if err := tx.Save(check).Error; err != nil {
			return err
		}
		return createHistory(tx, actionType, check.ID, ReferenceTypeCheckRequest, &before, check, description)
	})
	if err != nil {
		return nil, err
	}
	return check, nil
}

// ConfirmCheckPayment marks the check cashed and the transaction paid.
func ConfirmCheckPayment(ctx context.Context, input *CheckDecision) (*CheckRequest, error) {
	userId, _, err := utils.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return checkDecision(ctx, input.TransactionId, HistoryActionPay, "Paid Check", func(transaction *Transaction, check *CheckRequest) error {
		now := time.Now().UTC()
		if err := transaction.markPaid(userId, now); err != nil {
			return err
		}
		transaction.AmountUsed = transaction.Amount
		check.Status = CheckStatusPaid
		check.PaidBy = &userId
		check.PaidAt = &now
		return nil
	})
}

// RejectCheck voids a prepared check and rejects its transaction.
func RejectCheck(ctx context.Context, input *CheckDecision) (*CheckRequest, error) {
	userId, _, err := utils.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, utils.InvalidInput("rejection reason is required")
	}
	return checkDecision(ctx, input.TransactionId, HistoryActionReject, "Rejected Check", func(transaction *Transaction, check *CheckRequest) error {
		if err := transaction.reject(userId, reason, time.Now().UTC()); err != nil {
			return err
		}
		check.Status = CheckStatusRejected
		check.RejectedReason = reason
		return nil
	})
}

func GetCheckRequest(ctx context.Context, id int) (*CheckRequest, error) {
	return utils.FetchModel[CheckRequest](ctx, id)
}

func ListCheckRequests(ctx context.Context, filter *CheckRequestFilter) (*Page[CheckRequest], error) {
	if filter == nil {
		filter = &CheckRequestFilter{}
	}
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&CheckRequest{})
	if filter.Status != "" {
		dbCtx = dbCtx.Where("status = ?", filter.Status)
	}
	if bank := strings.TrimSpace(filter.Bank); bank != "" {
		dbCtx = dbCtx.Where("bank = ?", bank)
	}
	return paginate(dbCtx, filter.After, filter.Limit, func(c *CheckRequest) int { return c.ID })
}
