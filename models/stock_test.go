package models

import (
	"errors"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"github.com/shopspring/decimal"
)

func TestApplyStockDelta(t *testing.T) {
	next, err := applyStockDelta(dec("10"), dec("-4.5"))
	if err != nil || !next.Equal(dec("5.5")) {
		t.Fatalf("got %s, %v", next, err)
	}
	next, err = applyStockDelta(dec("10"), dec("-10"))
	if err != nil || !next.IsZero() {
		t.Fatalf("draining to zero: got %s, %v", next, err)
	}
	next, err = applyStockDelta(dec("10"), dec("-10.0001"))
	if !errors.Is(err, utils.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !next.Equal(dec("10")) {
		t.Fatalf("failed delta must leave quantity unchanged, got %s", next)
	}
}

func TestBuildSnapshots(t *testing.T) {
	date := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	stocks := []*Stock{
		{ID: 1, ProductId: 1, WarehouseId: 1, Quantity: dec("3")},
		{ID: 2, ProductId: 2, WarehouseId: 1, Quantity: decimal.Zero},
		{ID: 3, ProductId: 1, WarehouseId: 2, Quantity: dec("7.25")},
	}
	snapshots := buildSnapshots(stocks, date)
	if len(snapshots) != len(stocks) {
		t.Fatalf("got %d snapshots", len(snapshots))
	}
	for i, s := range snapshots {
		if s.ID != 0 {
			t.Errorf("snapshot %d carries stock id %d", i, s.ID)
		}
		if s.ProductId != stocks[i].ProductId || s.WarehouseId != stocks[i].WarehouseId || !s.Quantity.Equal(stocks[i].Quantity) {
			t.Errorf("snapshot %d = %+v, stock %+v", i, s, stocks[i])
		}
		if !s.SnapshotDate.Equal(date) {
			t.Errorf("snapshot %d date = %s", i, s.SnapshotDate)
		}
	}
	if got := buildSnapshots(nil, date); len(got) != 0 {
		t.Fatalf("empty stock produced %d snapshots", len(got))
	}
}

func TestFuelCost(t *testing.T) {
	if got := FuelCost(dec("42.5"), dec("2350")); !got.Equal(dec("99875")) {
		t.Fatalf("FuelCost = %s", got)
	}
	if got := FuelCost(dec("1.33333"), dec("1.5")); !got.Equal(dec("2")) {
		t.Fatalf("FuelCost rounding = %s", got)
	}
}
