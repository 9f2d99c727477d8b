package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/config"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Stock is the current quantity of a product held in a warehouse.
type Stock struct {
	ID          int             `gorm:"primary_key" json:"id"`
	ProductId   int             `gorm:"not null;uniqueIndex:idx_stock_product_warehouse" json:"productId"`
	WarehouseId int             `gorm:"not null;uniqueIndex:idx_stock_product_warehouse;index" json:"warehouseId"`
	Quantity    decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"quantity"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewStock struct {
	ProductId   int             `json:"productId" binding:"required"`
	WarehouseId int             `json:"warehouseId" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
}

type StockAdjustment struct {
	ProductId   int             `json:"productId" binding:"required"`
	WarehouseId int             `json:"warehouseId" binding:"required"`
	Delta       decimal.Decimal `json:"delta"`
	Reason      string          `json:"reason"`
}

type StockFilter struct {
	ProductId   int `form:"productId"`
	WarehouseId int `form:"warehouseId"`
}

// applyStockDelta returns the new quantity; stock never goes below zero.
func applyStockDelta(current decimal.Decimal, delta decimal.Decimal) (decimal.Decimal, error) {
	next := current.Add(delta)
	if next.IsNegative() {
		return current, utils.InvalidInput("insufficient stock: have %s, change %s", current.String(), delta.String())
	}
	return next, nil
}

func validateStockPair(ctx context.Context, productId int, warehouseId int) error {
	if err := utils.ValidateResourceId[Product](ctx, productId); err != nil {
		return errors.Join(err, errors.New("product not found"))
	}
	if err := utils.ValidateResourceId[Warehouse](ctx, warehouseId); err != nil {
		return errors.Join(err, errors.New("warehouse not found"))
	}
	return nil
}

// lockStock returns the row for the pair, creating it at zero if missing, locked for update.
func lockStock(tx *gorm.DB, productId int, warehouseId int) (*Stock, error) {
	seed := Stock{ProductId: productId, WarehouseId: warehouseId, Quantity: decimal.Zero}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, err
	}
	var stock Stock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND warehouse_id = ?", productId, warehouseId).
		Take(&stock).Error
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

// SetStock overwrites the quantity of a product in a warehouse.
func SetStock(ctx context.Context, input *NewStock) (*Stock, error) {
	if input.Quantity.IsNegative() {
		return nil, utils.InvalidInput("quantity cannot be negative")
	}
	if err := validateStockPair(ctx, input.ProductId, input.WarehouseId); err != nil {
		return nil, err
	}

	var result *Stock
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stock, err := lockStock(tx, input.ProductId, input.WarehouseId)
		if err != nil {
			return err
		}
		before := *stock
		if err := tx.Model(stock).UpdateColumn("Quantity", input.Quantity).Error; err != nil {
			return err
		}
		stock.Quantity = input.Quantity
		if err := createHistory(tx, HistoryActionUpdate, stock.ID, ReferenceTypeStock, &before, stock, "Set Stock"); err != nil {
			return err
		}
		result = stock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AdjustStock adds delta (negative to remove) to the current quantity.
func AdjustStock(ctx context.Context, input *StockAdjustment) (*Stock, error) {
	if input.Delta.IsZero() {
		return nil, utils.InvalidInput("delta cannot be zero")
	}
	if err := validateStockPair(ctx, input.ProductId, input.WarehouseId); err != nil {
		return nil, err
	}

	var result *Stock
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stock, err := lockStock(tx, input.ProductId, input.WarehouseId)
		if err != nil {
			return err
		}
		before := *stock
		next, err := applyStockDelta(stock.Quantity, input.Delta)
		if err != nil {
			return err
		}
		if err := tx.Model(stock).UpdateColumn("Quantity", next).Error; err != nil {
			return err
		}
		stock.Quantity = next

		description := "Adjusted Stock"
		if reason := strings.TrimSpace(input.Reason); reason != "" {
			description += ": " + reason
		}
		if err := createHistory(tx, HistoryActionAdjust, stock.ID, ReferenceTypeStock, &before, stock, description); err != nil {
			return err
		}
		result = stock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func ListStocks(ctx context.Context, filter *StockFilter) ([]*Stock, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if filter != nil {
		if filter.ProductId > 0 {
			dbCtx = dbCtx.Where("product_id = ?", filter.ProductId)
		}
		if filter.WarehouseId > 0 {
			dbCtx = dbCtx.Where("warehouse_id = ?", filter.WarehouseId)
		}
	}
	var results []*Stock
	if err := dbCtx.Order("warehouse_id, product_id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
