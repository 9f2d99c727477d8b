package models

import (
	"context"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/config"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"github.com/shopspring/decimal"
)

type Vehicle struct {
	ID          int             `gorm:"primary_key" json:"id"`
	PlateNumber string          `gorm:"size:30;not null;uniqueIndex" json:"plateNumber"`
	Model       string          `gorm:"size:100" json:"model"`
	DriverName  string          `gorm:"size:100" json:"driverName"`
	DriverPhone string          `gorm:"size:20" json:"driverPhone"`
	Odometer    decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"odometer"`
	IsActive    *bool           `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewVehicle struct {
	PlateNumber string          `json:"plateNumber" binding:"required"`
	Model       string          `json:"model"`
	DriverName  string          `json:"driverName"`
	DriverPhone string          `json:"driverPhone"`
	Odometer    decimal.Decimal `json:"odometer"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewVehicle) validate(ctx context.Context, id int) error {
	input.PlateNumber = strings.ToUpper(strings.TrimSpace(input.PlateNumber))
	if input.PlateNumber == "" {
		return utils.ErrMissingFields
	}
	if input.Odometer.IsNegative() {
		return utils.InvalidInput("odometer cannot be negative")
	}
	if input.DriverPhone != "" {
		phone, err := utils.NormalizePhoneNumber(input.DriverPhone, config.DefaultPhoneRegion())
		if err != nil {
			return utils.InvalidInput("invalid driver phone number")
		}
		input.DriverPhone = phone
	}
	return utils.ValidateUnique[Vehicle](ctx, "plate_number", input.PlateNumber, id)
}

func CreateVehicle(ctx context.Context, input *NewVehicle) (*Vehicle, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}
	vehicle := Vehicle{
		PlateNumber: input.PlateNumber,
		Model:       input.Model,
		DriverName:  input.DriverName,
		DriverPhone: input.DriverPhone,
		Odometer:    input.Odometer,
		IsActive:    utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// UpdateVehicle never winds the odometer back.
func UpdateVehicle(ctx context.Context, id int, input *NewVehicle) (*Vehicle, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}
	vehicle, err := utils.FetchModel[Vehicle](ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Odometer.LessThan(vehicle.Odometer) {
		return nil, utils.InvalidInput("odometer cannot go below %s", vehicle.Odometer.String())
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(vehicle).Updates(map[string]interface{}{
		"PlateNumber": input.PlateNumber,
		"Model":       input.Model,
		"DriverName":  input.DriverName,
		"DriverPhone": input.DriverPhone,
		"Odometer":    input.Odometer,
	}).Error
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisItem[Vehicle](id); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func ToggleActiveVehicle(ctx context.Context, id int, isActive bool) (*Vehicle, error) {
	return ToggleActiveModel[Vehicle](ctx, id, isActive)
}

func DeleteVehicle(ctx context.Context, id int) (*Vehicle, error) {
	vehicle, err := utils.FetchModel[Vehicle](ctx, id)
	if err != nil {
		return nil, err
	}
	fuelCount, err := utils.ResourceCountWhere[FuelTransaction](ctx, "vehicle_id = ?", id)
	if err != nil {
		return nil, err
	}
	maintenanceCount, err := utils.ResourceCountWhere[VehicleTransaction](ctx, "vehicle_id = ?", id)
	if err != nil {
		return nil, err
	}
	if fuelCount+maintenanceCount > 0 {
		return nil, utils.InvalidInput("vehicle has recorded transactions; deactivate it instead")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(vehicle).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisItem[Vehicle](id); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func GetVehicle(ctx context.Context, id int) (*Vehicle, error) {
	return GetResource[Vehicle](ctx, id)
}

func ListVehicles(ctx context.Context, isActive *bool) ([]*Vehicle, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if isActive != nil {
		dbCtx = dbCtx.Where("is_active = ?", *isActive)
	}
	var results []*Vehicle
	if err := dbCtx.Order("plate_number").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
