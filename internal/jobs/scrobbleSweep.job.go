package jobs

import (
	"context"

	"soundtrace/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

// ScrobbleSweepJob re-drives scrobbles whose bus messages never went out.
// Registered only under the requeue retry policy.
type ScrobbleSweepJob struct {
	scrobbleService *services.ScrobbleService
	log             logger.Logger
	schedule        services.Schedule
}

func NewScrobbleSweepJob(
	scrobbleService *services.ScrobbleService,
	schedule services.Schedule,
) *ScrobbleSweepJob {
	log := logger.New("scrobbleSweepJob")
	log.Info("Creating new scrobble sweep job", "schedule", schedule)

	return &ScrobbleSweepJob{
		scrobbleService: scrobbleService,
		log:             log,
		schedule:        schedule,
	}
}

func (j *ScrobbleSweepJob) Name() string {
	return "ScrobbleSweep"
}

func (j *ScrobbleSweepJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	published, err := j.scrobbleService.RepublishPending(ctx)
	if err != nil {
		return log.Err("scrobble sweep failed", err)
	}

	if published > 0 {
		log.Info("Scrobble sweep completed", "published", published)
	}
	return nil
}

func (j *ScrobbleSweepJob) Schedule() services.Schedule {
	return j.schedule
}
