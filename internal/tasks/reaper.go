package tasks

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/couchsync/couchsync/internal/core"
)

// Reaper periodically deletes rooms that were created but never joined.
// A freshly created room has no members until the creator's websocket join
// lands, so rooms only become eligible after the grace window (ttl).
type Reaper struct {
	coord *core.SessionCoordinator
	ttl   time.Duration
	cron  *cron.Cron
}

func NewReaper(coord *core.SessionCoordinator, ttl time.Duration) *Reaper {
	return &Reaper{
		coord: coord,
		ttl:   ttl,
		cron:  cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// Start schedules the sweep under the given cron spec and returns once the
// schedule is registered.
func (r *Reaper) Start(spec string) error {
	if _, err := r.cron.AddFunc(spec, r.sweep); err != nil {
		return err
	}
	r.cron.Start()
	log.Info().Str("module", "tasks.reaper").Str("spec", spec).Dur("ttl", r.ttl).Msg("reaper started")
	return nil
}

func (r *Reaper) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Reaper) sweep() {
	r.coord.ReapIdle(r.ttl)
}
