// stock-snapshot takes the stock snapshot for one day and exits. It is safe to rerun:
// an existing snapshot for the same day is overwritten.
//
// Usage:
//
//	go run ./cmd/stock-snapshot              # today, in TIMEZONE
//	go run ./cmd/stock-snapshot -date 2024-05-31
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/config"
	"bitbucket.org/mmdatafocus/finops_backend/models"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
)

func main() {
	date := flag.String("date", "", "snapshot date (YYYY-MM-DD); defaults to today")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized. Set DB_* env vars.")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var (
		count int
		err   error
	)
	if *date == "" {
		count, err = models.SnapshotToday(ctx)
	} else {
		var day time.Time
		day, err = utils.ParseDate(*date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -date %q: %v\n", *date, err)
			os.Exit(2)
		}
		count, err = models.TakeStockSnapshot(ctx, day)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "snapshot failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("snapshot rows written: %d\n", count)
}
