package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/config"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"github.com/bsm/redislock"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CashAccount struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Name        string          `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Balance     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"balance"`
	Description string          `gorm:"type:text" json:"description"`
	IsActive    *bool           `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewCashAccount struct {
	Name           string          `json:"name" binding:"required"`
	Description    string          `json:"description"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
}

type CashTopUp struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

const cashAccountLockTTL = 10 * time.Second

func (input *NewCashAccount) validate(ctx context.Context, id int) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return utils.ErrMissingFields
	}
	if input.OpeningBalance.IsNegative() {
		return utils.InvalidInput("opening balance cannot be negative")
	}
	return utils.ValidateUnique[CashAccount](ctx, "name", input.Name, id)
}

func CreateCashAccount(ctx context.Context, input *NewCashAccount) (*CashAccount, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}
	account := CashAccount{
		Name:        input.Name,
		Description: input.Description,
		Balance:     input.OpeningBalance,
		IsActive:    utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&account).Error; err != nil {
			return err
		}
		return createHistory(tx, HistoryActionCreate, account.ID, ReferenceTypeCashAccount, nil, &account, "Created Cash Account")
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateCashAccount edits name and description. Balance only moves through payments and top-ups.
func UpdateCashAccount(ctx context.Context, id int, input *NewCashAccount) (*CashAccount, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}
	account, err := utils.FetchModel[CashAccount](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(account).Updates(map[string]interface{}{
		"Name":        input.Name,
		"Description": input.Description,
	}).Error
	if err != nil {
		return nil, err
	}
	return account, nil
}

func ToggleActiveCashAccount(ctx context.Context, id int, isActive bool) (*CashAccount, error) {
	return ToggleActiveModel[CashAccount](ctx, id, isActive)
}

func DeleteCashAccount(ctx context.Context, id int) (*CashAccount, error) {
	account, err := utils.FetchModel[CashAccount](ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := utils.ResourceCountWhere[Transaction](ctx, "cash_account_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.InvalidInput("cash account is used by %d transaction(s)", count)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

func GetCashAccount(ctx context.Context, id int) (*CashAccount, error) {
	return utils.FetchModel[CashAccount](ctx, id)
}

func ListCashAccounts(ctx context.Context, isActive *bool) ([]*CashAccount, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if isActive != nil {
		dbCtx = dbCtx.Where("is_active = ?", *isActive)
	}
	var results []*CashAccount
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func TopUpCashAccount(ctx context.Context, id int, input *CashTopUp) (*CashAccount, error) {
	if !input.Amount.IsPositive() {
		return nil, utils.InvalidInput("amount must be greater than zero")
	}

	unlock := lockCashAccount(ctx, id)
	defer unlock()

	var result *CashAccount
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := utils.FetchModelForUpdate[CashAccount](tx, id)
		if err != nil {
			return err
		}
		before := *account
		if err := adjustCashBalance(tx, account, input.Amount); err != nil {
			return err
		}
		description := "Topped Up Cash Account"
		if note := strings.TrimSpace(input.Note); note != "" {
			description += ": " + note
		}
		if err := createHistory(tx, HistoryActionTopUp, id, ReferenceTypeCashAccount, &before, account, description); err != nil {
			return err
		}
		result = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// adjustCashBalance applies delta with a single SQL expression. account must be
// row-locked by the caller; it is refreshed with the resulting balance.
func adjustCashBalance(tx *gorm.DB, account *CashAccount, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	if account.IsActive != nil && !*account.IsActive {
		return utils.InvalidInput("cash account %q is inactive", account.Name)
	}
	query := tx.Model(&CashAccount{}).Where("id = ?", account.ID)
	if delta.IsNegative() {
		query = query.Where("balance >= ?", delta.Neg())
	}
	result := query.UpdateColumn("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s has %s", utils.ErrInsufficientBalance, account.Name, account.Balance.StringFixed(2))
	}
	account.Balance = account.Balance.Add(delta)
	return nil
}

// lockCashAccount takes a short redis lock around balance mutations. The DB row
// lock is authoritative; when redis is down or the lock is busy we proceed.
func lockCashAccount(ctx context.Context, id int) func() {
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}
	}
	key := fmt.Sprintf("lock:CashAccount:%d", id)
	lock, err := locker.Obtain(ctx, key, cashAccountLockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 30),
	})
	if err != nil {
		if !errors.Is(err, redislock.ErrNotObtained) {
			config.GetLogger().WithField("key", key).WithError(err).Warn("cash account lock unavailable")
		}
		return func() {}
	}
	return func() {
		_ = lock.Release(context.WithoutCancel(ctx))
	}
}
