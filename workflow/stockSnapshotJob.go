package workflow

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/config"
	"bitbucket.org/mmdatafocus/finops_backend/models"
	"github.com/jasonlvhit/gocron"
	"github.com/sirupsen/logrus"
)

const snapshotTimeout = 5 * time.Minute

// StockSnapshotJob takes the end-of-day stock snapshot once a day.
type StockSnapshotJob struct {
	at        string
	scheduler *gocron.Scheduler
	stopped   chan bool
}

func NewStockSnapshotJob(at string) *StockSnapshotJob {
	return &StockSnapshotJob{at: at}
}

// Start schedules the job. The At clock follows the process local time (TZ).
func (j *StockSnapshotJob) Start() {
	j.scheduler = gocron.NewScheduler()
	j.scheduler.Every(1).Day().At(j.at).Do(runStockSnapshot)
	j.stopped = j.scheduler.Start()
	config.GetLogger().WithFields(logrus.Fields{
		"field": "StockSnapshotJob",
		"at":    j.at,
	}).Info("stock snapshot job scheduled")
}

func (j *StockSnapshotJob) Stop() {
	if j.scheduler == nil {
		return
	}
	j.scheduler.Clear()
	j.stopped <- true
	j.scheduler = nil
}

func runStockSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	if _, err := models.SnapshotToday(ctx); err != nil {
		config.LogError(config.GetLogger(), "StockSnapshotJob", "runStockSnapshot", "daily snapshot", nil, err)
	}
}
