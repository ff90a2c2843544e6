package daemons

import (
	"github.com/jasonlvhit/gocron"

	"github.com/perpex/perpex/jobs/cron"
)

type Worker interface {
	Start()
}

type CronJob struct{}

func NewCronJob() *CronJob {
	return &CronJob{}
}

func (c *CronJob) Start() {
	gocron.Every(1).Day().At("00:00").Do(cron.ReleaseCommissions)

	<-gocron.Start()
}
