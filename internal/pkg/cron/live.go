package cron

import (
	"context"
	"time"
)

const PublishLiveJobName = "publish_live_attendance"

// LivePublisher pushes a fresh attendance snapshot to every live subscriber.
type LivePublisher interface {
	PublishLive(ctx context.Context) error
}

type LiveJobs struct {
	publisher LivePublisher
}

func NewLiveJobs(publisher LivePublisher) *LiveJobs {
	return &LiveJobs{publisher: publisher}
}

func (j *LiveJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) error {
	return scheduler.AddJob(PublishLiveJobName, interval, j.publisher.PublishLive)
}
