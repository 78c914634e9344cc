// Package poll drives the fixed-interval progress poll: read the shared
// batch state and the server's job status, normalize, aggregate, and hand a
// display snapshot to whoever renders it.
package poll

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"artassist/internal/model"
	"artassist/internal/progress"
	"artassist/internal/sdapi"
)

// DefaultInterval between polls. The server's own UI polls at a similar
// rate; faster adds no information, the signal is too noisy.
const DefaultInterval = 3 * time.Second

// Display is what one poll produced for rendering.
type Display struct {
	Active  bool
	Task    model.Task
	Percent int    // 0-99 while running, 100 just-completed, 0 idle
	Label   string // "(i/N) P%" while running, "" otherwise
}

// Poller combines the shared batch state and the server's job status into a
// Display once per tick.
type Poller struct {
	api   sdapi.API
	state *progress.BatchState
	norm  progress.Normalizer
}

// New returns a Poller. firstPollGuard <= 0 selects the default guard.
func New(api sdapi.API, state *progress.BatchState, firstPollGuard float64) *Poller {
	return &Poller{
		api:   api,
		state: state,
		norm:  progress.NewNormalizer(firstPollGuard),
	}
}

// Poll performs one tick. While a batch is active it queries the status
// endpoint and folds the reading into the batch state; a failed status query
// just re-renders the last accepted value, the next tick corrects it.
func (p *Poller) Poll(ctx context.Context) Display {
	snap := p.state.Snapshot()
	if snap.Task == model.TaskNone {
		return Display{
			Percent: progress.DisplayPercent(false, snap.LastPercent),
		}
	}

	accepted := snap.LastPercent
	if resp, err := p.api.Progress(ctx); err != nil {
		log.WithError(err).Debug("progress poll failed")
	} else {
		ip := p.norm.ImageProgress(snap.Task, snap.ImageIndex == 0, snap.ExpectedStages, progress.Sample{
			Fraction:   resp.Progress,
			StageIndex: resp.State.JobNo,
			StageCount: resp.State.JobCount,
		})
		accepted = p.state.Observe(ip)
	}

	pct := progress.DisplayPercent(true, accepted)
	return Display{
		Active:  true,
		Task:    snap.Task,
		Percent: pct,
		Label:   progress.Label(snap.ImageIndex, snap.TotalImages, pct),
	}
}

// Run polls on a fixed interval until ctx is cancelled, invoking fn with
// each snapshot. Used by the headless commands; the panel calls Poll from
// its own tick instead.
func (p *Poller) Run(ctx context.Context, interval time.Duration, fn func(Display)) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn(p.Poll(ctx))
		}
	}
}
