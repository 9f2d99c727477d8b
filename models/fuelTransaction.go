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

type FuelTransaction struct {
	ID            int             `gorm:"primary_key" json:"id"`
	VehicleId     int             `gorm:"index;not null" json:"vehicleId"`
	Date          time.Time       `gorm:"type:date;index;not null" json:"date"`
	Liters        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"liters"`
	PricePerLiter decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"pricePerLiter"`
	TotalCost     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"totalCost"`
	Odometer      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"odometer"`
	Station       string          `gorm:"size:100" json:"station"`
	CashAccountId *int            `gorm:"index" json:"cashAccountId"`
	CreatedBy     int             `gorm:"not null" json:"createdBy"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewFuelTransaction struct {
	VehicleId     int             `json:"vehicleId" binding:"required"`
	Date          string          `json:"date" binding:"required"`
	Liters        decimal.Decimal `json:"liters"`
	PricePerLiter decimal.Decimal `json:"pricePerLiter"`
	Odometer      decimal.Decimal `json:"odometer"`
	Station       string          `json:"station"`
	CashAccountId *int            `json:"cashAccountId"`
}

type FleetFilter struct {
	VehicleId int    `form:"vehicleId"`
	FromDate  string `form:"from"`
	ToDate    string `form:"to"`
	After     string `form:"after"`
	Limit     int    `form:"limit"`
}

// FuelCost is liters times price, rounded to the stored scale.
func FuelCost(liters decimal.Decimal, pricePerLiter decimal.Decimal) decimal.Decimal {
	return liters.Mul(pricePerLiter).Round(4)
}

func (input *NewFuelTransaction) validate(ctx context.Context) (time.Time, error) {
	date, err := utils.ParseDate(input.Date)
	if err != nil {
		return time.Time{}, utils.InvalidInput("invalid date %q", input.Date)
	}
	if !input.Liters.IsPositive() {
		return time.Time{}, utils.InvalidInput("liters must be greater than zero")
	}
	if input.PricePerLiter.IsNegative() {
		return time.Time{}, utils.InvalidInput("pricePerLiter cannot be negative")
	}
	if input.CashAccountId != nil && *input.CashAccountId > 0 {
		if err := utils.ValidateResourceId[CashAccount](ctx, *input.CashAccountId); err != nil {
			return time.Time{}, err
		}
	}
	return date, nil
}

// advanceOdometer moves the vehicle reading forward; a lower reading is rejected.
func advanceOdometer(tx *gorm.DB, vehicleId int, reading decimal.Decimal) error {
	vehicle, err := utils.FetchModelForUpdate[Vehicle](tx, vehicleId)
	if err != nil {
		return err
	}
	if reading.LessThan(vehicle.Odometer) {
		return utils.InvalidInput("odometer %s is below the vehicle's last reading %s", reading.String(), vehicle.Odometer.String())
	}
	if reading.Equal(vehicle.Odometer) {
		return nil
	}
	return tx.Model(vehicle).UpdateColumn("Odometer", reading).Error
}

func CreateFuelTransaction(ctx context.Context, input *NewFuelTransaction) (*FuelTransaction, error) {
	userId, _, err := utils.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	date, err := input.validate(ctx)
	if err != nil {
		return nil, err
	}

	fuel := FuelTransaction{
		VehicleId:     input.VehicleId,
		Date:          date,
		Liters:        input.Liters,
		PricePerLiter: input.PricePerLiter,
		TotalCost:     FuelCost(input.Liters, input.PricePerLiter),
		Odometer:      input.Odometer,
		Station:       strings.TrimSpace(input.Station),
		CashAccountId: input.CashAccountId,
		CreatedBy:     userId,
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := advanceOdometer(tx, input.VehicleId, input.Odometer); err != nil {
			return err
		}
		return tx.Create(&fuel).Error
	})
	if err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisItem[Vehicle](input.VehicleId)
	return &fuel, nil
}

func UpdateFuelTransaction(ctx context.Context, id int, input *NewFuelTransaction) (*FuelTransaction, error) {
	date, err := input.validate(ctx)
	if err != nil {
		return nil, err
	}

	var result *FuelTransaction
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fuel, err := utils.FetchModelForUpdate[FuelTransaction](tx, id)
		if err != nil {
			return err
		}
		if fuel.VehicleId != input.VehicleId {
			return utils.InvalidInput("vehicle of a fuel transaction cannot change")
		}
		if !input.Odometer.Equal(fuel.Odometer) {
			if err := advanceOdometer(tx, input.VehicleId, input.Odometer); err != nil {
				return err
			}
		}
		err = tx.Model(fuel).Updates(map[string]interface{}{
			"Date":          date,
			"Liters":        input.Liters,
			"PricePerLiter": input.PricePerLiter,
			"TotalCost":     FuelCost(input.Liters, input.PricePerLiter),
			"Odometer":      input.Odometer,
			"Station":       strings.TrimSpace(input.Station),
			"CashAccountId": input.CashAccountId,
		}).Error
		result = fuel
		return err
	})
	if err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisItem[Vehicle](input.VehicleId)
	return result, nil
}

func DeleteFuelTransaction(ctx context.Context, id int) (*FuelTransaction, error) {
	fuel, err := utils.FetchModel[FuelTransaction](ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(fuel).Error; err != nil {
		return nil, err
	}
	return fuel, nil
}

func GetFuelTransaction(ctx context.Context, id int) (*FuelTransaction, error) {
	return utils.FetchModel[FuelTransaction](ctx, id)
}

func applyFleetFilter(dbCtx *gorm.DB, filter *FleetFilter) (*gorm.DB, error) {
	if filter.VehicleId > 0 {
		dbCtx = dbCtx.Where("vehicle_id = ?", filter.VehicleId)
	}
	if filter.FromDate != "" {
		from, err := utils.ParseDate(filter.FromDate)
		if err != nil {
			return nil, utils.InvalidInput("invalid from date %q", filter.FromDate)
		}
		dbCtx = dbCtx.Where("date >= ?", from)
	}
	if filter.ToDate != "" {
		to, err := utils.ParseDate(filter.ToDate)
		if err != nil {
			return nil, utils.InvalidInput("invalid to date %q", filter.ToDate)
		}
		dbCtx = dbCtx.Where("date <= ?", to)
	}
	return dbCtx, nil
}

func ListFuelTransactions(ctx context.Context, filter *FleetFilter) (*Page[FuelTransaction], error) {
	if filter == nil {
		filter = &FleetFilter{}
	}
	db := config.GetDB()
	dbCtx, err := applyFleetFilter(db.WithContext(ctx).Model(&FuelTransaction{}), filter)
	if err != nil {
		return nil, err
	}
	return paginate(dbCtx, filter.After, filter.Limit, func(f *FuelTransaction) int { return f.ID })
}
