package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/config"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockSnapshot is the quantity a warehouse held of a product at the end of a day.
type StockSnapshot struct {
	ID           int             `gorm:"primary_key" json:"id"`
	ProductId    int             `gorm:"not null;uniqueIndex:idx_snapshot_product_warehouse_date" json:"productId"`
	WarehouseId  int             `gorm:"not null;uniqueIndex:idx_snapshot_product_warehouse_date" json:"warehouseId"`
	SnapshotDate time.Time       `gorm:"type:date;not null;index;uniqueIndex:idx_snapshot_product_warehouse_date" json:"snapshotDate"`
	Quantity     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"quantity"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

type StockSnapshotFilter struct {
	Date        string `form:"date"`
	ProductId   int    `form:"productId"`
	WarehouseId int    `form:"warehouseId"`
}

const snapshotBatchSize = 500

// buildSnapshots copies current stock rows into snapshots for date.
func buildSnapshots(stocks []*Stock, date time.Time) []StockSnapshot {
	snapshots := make([]StockSnapshot, 0, len(stocks))
	for _, s := range stocks {
		snapshots = append(snapshots, StockSnapshot{
			ProductId:    s.ProductId,
			WarehouseId:  s.WarehouseId,
			SnapshotDate: date,
			Quantity:     s.Quantity,
		})
	}
	return snapshots
}

// TakeStockSnapshot records every Stock quantity under date. Running it again for
// the same date overwrites the quantities instead of adding rows.
func TakeStockSnapshot(ctx context.Context, date time.Time) (count int, err error) {
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	ctx, span := startSpan(ctx, "TakeStockSnapshot", attribute.String("snapshot.date", date.Format("2006-01-02")))
	defer func() { endSpan(span, err) }()

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stocks []*Stock
		if err := tx.Order("id").Find(&stocks).Error; err != nil {
			return err
		}
		snapshots := buildSnapshots(stocks, date)
		if len(snapshots) == 0 {
			return nil
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "warehouse_id"}, {Name: "snapshot_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).CreateInBatches(&snapshots, snapshotBatchSize).Error
		if err != nil {
			return err
		}
		count = len(snapshots)
		return nil
	})
	if err != nil {
		return 0, err
	}
	config.GetLogger().WithField("date", date.Format("2006-01-02")).WithField("rows", count).Info("stock snapshot taken")
	return count, nil
}

// SnapshotToday snapshots the current calendar day in the configured timezone.
func SnapshotToday(ctx context.Context) (int, error) {
	today, err := utils.ConvertToDate(time.Now(), config.Timezone())
	if err != nil {
		return 0, err
	}
	return TakeStockSnapshot(ctx, today)
}

func ListStockSnapshots(ctx context.Context, filter *StockSnapshotFilter) ([]*StockSnapshot, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if filter != nil {
		if filter.Date != "" {
			date, err := utils.ParseDate(filter.Date)
			if err != nil {
				return nil, utils.InvalidInput("invalid date %q", filter.Date)
			}
			dbCtx = dbCtx.Where("snapshot_date = ?", date)
		}
		if filter.ProductId > 0 {
			dbCtx = dbCtx.Where("product_id = ?", filter.ProductId)
		}
		if filter.WarehouseId > 0 {
			dbCtx = dbCtx.Where("warehouse_id = ?", filter.WarehouseId)
		}
	}
	var results []*StockSnapshot
	if err := dbCtx.Order("snapshot_date DESC, warehouse_id, product_id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
