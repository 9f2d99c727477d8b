package models

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/config"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const counterRowId = 1

// Counter is a single row holding the last issued voucher serial per type.
type Counter struct {
	ID        int       `gorm:"primary_key" json:"-"`
	Cpv       int64     `gorm:"not null;default:0" json:"cpv"`
	Pcpv      int64     `gorm:"not null;default:0" json:"pcpv"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (c *Counter) valueFor(voucherType VoucherType) int64 {
	if voucherType == VoucherTypeCPV {
		return c.Cpv
	}
	return c.Pcpv
}

func counterCacheKey(voucherType VoucherType) string {
	return "Counter:" + string(voucherType)
}

// FormatSerial renders a voucher number such as PCPV-000042.
func FormatSerial(voucherType VoucherType, serial int64) string {
	return fmt.Sprintf("%s-%06d", voucherType.Prefix(), serial)
}

func ensureCounter(tx *gorm.DB) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&Counter{ID: counterRowId}).Error
}

// AllocateSerial increments the counter for voucherType and returns the new value.
// Must run inside the caller's transaction: the UPDATE holds the row lock until
// commit, so concurrent payments never observe the same value.
func AllocateSerial(tx *gorm.DB, voucherType VoucherType) (int64, error) {
	if err := ensureCounter(tx); err != nil {
		return 0, err
	}
	column := voucherType.counterColumn()
	err := tx.Model(&Counter{}).
		Where("id = ?", counterRowId).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error
	if err != nil {
		return 0, err
	}

	var counter Counter
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&counter, counterRowId).Error; err != nil {
		return 0, err
	}
	return counter.valueFor(voucherType), nil
}

// cacheSerial mirrors the last committed serial to redis for display.
func cacheSerial(voucherType VoucherType, serial int64) {
	if err := config.SetRedisValue(counterCacheKey(voucherType), strconv.FormatInt(serial, 10), 0); err != nil {
		config.GetLogger().WithField("voucher_type", voucherType).WithError(err).Warn("failed to cache counter")
	}
}

func GetCounter(ctx context.Context) (*Counter, error) {
	db := config.GetDB()
	var counter Counter
	err := db.WithContext(ctx).First(&counter, counterRowId).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Counter{ID: counterRowId}, nil
		}
		return nil, err
	}
	return &counter, nil
}
