package models

import (
	"context"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/config"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VehicleTransaction is a maintenance expense against a vehicle.
type VehicleTransaction struct {
	ID          int                 `gorm:"primary_key" json:"id"`
	VehicleId   int                 `gorm:"index;not null" json:"vehicleId"`
	Date        time.Time           `gorm:"type:date;index;not null" json:"date"`
	Category    MaintenanceCategory `gorm:"size:20;not null" json:"category"`
	Description string              `gorm:"type:text" json:"description"`
	Cost        decimal.Decimal     `gorm:"type:decimal(20,4);not null" json:"cost"`
	Odometer    decimal.Decimal     `gorm:"type:decimal(20,2);default:0" json:"odometer"`
	Vendor      string              `gorm:"size:100" json:"vendor"`
	CreatedBy   int                 `gorm:"not null" json:"createdBy"`
	CreatedAt   time.Time           `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time           `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewVehicleTransaction struct {
	VehicleId   int                 `json:"vehicleId" binding:"required"`
	Date        string              `json:"date" binding:"required"`
	Category    MaintenanceCategory `json:"category" binding:"required"`
	Description string              `json:"description"`
	Cost        decimal.Decimal     `json:"cost"`
	Odometer    decimal.Decimal     `json:"odometer"`
	Vendor      string              `json:"vendor"`
}

func (input *NewVehicleTransaction) validate(ctx context.Context) (time.Time, error) {
	date, err := utils.ParseDate(input.Date)
	if err != nil {
		return time.Time{}, utils.InvalidInput("invalid date %q", input.Date)
	}
	if !input.Category.IsValid() {
		return time.Time{}, utils.InvalidInput("invalid category %q", input.Category)
	}
	if input.Cost.IsNegative() {
		return time.Time{}, utils.InvalidInput("cost cannot be negative")
	}
	if err := utils.ValidateResourceId[Vehicle](ctx, input.VehicleId); err != nil {
		return time.Time{}, err
	}
	return date, nil
}

// odometer is optional on maintenance; a zero reading leaves the vehicle untouched.
func (input *NewVehicleTransaction) recordOdometer(tx *gorm.DB) error {
	if input.Odometer.IsZero() {
		return nil
	}
	return advanceOdometer(tx, input.VehicleId, input.Odometer)
}

func CreateVehicleTransaction(ctx context.Context, input *NewVehicleTransaction) (*VehicleTransaction, error) {
	userId, _, err := utils.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	date, err := input.validate(ctx)
	if err != nil {
		return nil, err
	}

	maintenance := VehicleTransaction{
		VehicleId:   input.VehicleId,
		Date:        date,
		Category:    input.Category,
		Description: strings.TrimSpace(input.Description),
		Cost:        input.Cost,
		Odometer:    input.Odometer,
		Vendor:      strings.TrimSpace(input.Vendor),
		CreatedBy:   userId,
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := input.recordOdometer(tx); err != nil {
			return err
		}
		return tx.Create(&maintenance).Error
	})
	if err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisItem[Vehicle](input.VehicleId)
	return &maintenance, nil
}

func UpdateVehicleTransaction(ctx context.Context, id int, input *NewVehicleTransaction) (*VehicleTransaction, error) {
	date, err := input.validate(ctx)
	if err != nil {
		return nil, err
	}

	var result *VehicleTransaction
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		maintenance, err := utils.FetchModelForUpdate[VehicleTransaction](tx, id)
		if err != nil {
			return err
		}
		if maintenance.VehicleId != input.VehicleId {
			return utils.InvalidInput("vehicle of a maintenance record cannot change")
		}
		if !input.Odometer.Equal(maintenance.Odometer) {
			if err := input.recordOdometer(tx); err != nil {
				return err
			}
		}
		err = tx.Model(maintenance).Updates(map[string]interface{}{
			"Date":        date,
			"Category":    input.Category,
			"Description": strings.TrimSpace(input.Description),
			"Cost":        input.Cost,
			"Odometer":    input.Odometer,
			"Vendor":      strings.TrimSpace(input.Vendor),
		}).Error
		result = maintenance
		return err
	})
	if err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisItem[Vehicle](input.VehicleId)
	return result, nil
}

func DeleteVehicleTransaction(ctx context.Context, id int) (*VehicleTransaction, error) {
	maintenance, err := utils.FetchModel[VehicleTransaction](ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(maintenance).Error; err != nil {
		return nil, err
	}
	return maintenance, nil
}

func GetVehicleTransaction(ctx context.Context, id int) (*VehicleTransaction, error) {
	return utils.FetchModel[VehicleTransaction](ctx, id)
}

func ListVehicleTransactions(ctx context.Context, filter *FleetFilter, category MaintenanceCategory) (*Page[VehicleTransaction], error) {
	if filter == nil {
		filter = &FleetFilter{}
	}
	db := config.GetDB()
	dbCtx, err := applyFleetFilter(db.WithContext(ctx).Model(&VehicleTransaction{}), filter)
	if err != nil {
		return nil, err
	}
	if category != "" {
		dbCtx = dbCtx.Where("category = ?", category)
	}
	return paginate(dbCtx, filter.After, filter.Limit, func(v *VehicleTransaction) int { return v.ID })
}
