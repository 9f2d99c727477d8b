package models

import (
	"bitbucket.org/mmdatafocus/finops_backend/config"
)

func MigrateTable() error {
	db := config.GetDB()

	err := db.AutoMigrate(
		&CashAccount{}, &CheckRequest{}, &Counter{},
		&FuelTransaction{},
		&History{},
		&Product{},
		&Stock{}, &StockSnapshot{},
		&Transaction{},
		&User{},
		&Vehicle{}, &VehicleTransaction{},
		&Warehouse{},
	)
	if err != nil {
		return err
	}
	return ensureCounter(db)
}
