package pulse

import (
	"context"
	"sync"

	"architecta/internal/models"
)

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
)

// Tracker holds the live pulse for one consumer. Each fetch cycle is tagged
// with a generation; results from a cycle that has been superseded by an
// owner change or a refresh are discarded.
type Tracker struct {
	agg      *Aggregator
	onChange func(models.PulseSummary)

	mu      sync.Mutex
	owner   string
	gen     uint64
	summary models.PulseSummary

	wg sync.WaitGroup
}

// NewTracker returns an idle tracker. onChange, if non-nil, receives every
// summary change in order. It runs with the tracker locked and must not
// call back into the tracker.
func NewTracker(agg *Aggregator, onChange func(models.PulseSummary)) *Tracker {
	return &Tracker{agg: agg, onChange: onChange}
}

// SetOwner switches the tracker to ownerID. The summary is reset to zero;
// with a non-empty owner a new cycle starts. Setting the current owner
// again is a no-op.
func (t *Tracker) SetOwner(ctx context.Context, ownerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ownerID == t.owner {
		return
	}
	t.owner = ownerID
	t.gen++
	t.summary = models.PulseSummary{}
	if ownerID == "" {
		t.notifyLocked()
		return
	}
	t.startLocked(ctx)
}

// Refresh starts a new cycle for the current owner, keeping the current
// values until fresh ones arrive.
func (t *Tracker) Refresh(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.owner == "" {
		return
	}
	t.gen++
	t.startLocked(ctx)
}

// Watch follows the identity provider until ctx is done or the channel
// closes. Identities still resolving authentication are skipped.
func (t *Tracker) Watch(ctx context.Context, identities <-chan Identity) {
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-identities:
			if !ok {
				return
			}
			if id.Loading {
				continue
			}
			t.SetOwner(ctx, id.OwnerID)
		}
	}
}

func (t *Tracker) Snapshot() models.PulseSummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.summary
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case t.owner == "":
		return StateIdle
	case t.summary.IsLoading:
		return StateLoading
	default:
		return StateReady
	}
}

// Wait blocks until every started cycle has finished.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

func (t *Tracker) startLocked(ctx context.Context) {
	gen, owner := t.gen, t.owner
	t.summary.IsLoading = true
	t.notifyLocked()

	t.wg.Add(1)
	go t.run(ctx, gen, owner)
}

func (t *Tracker) run(ctx context.Context, gen uint64, ownerID string) {
	defer t.wg.Done()

	t.agg.Collect(ctx, ownerID, func(u Update) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if gen != t.gen {
			return
		}
		u(&t.summary)
		t.notifyLocked()
	})

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		return
	}
	t.summary.IsLoading = false
	t.notifyLocked()
}

func (t *Tracker) notifyLocked() {
	if t.onChange != nil {
		t.onChange(t.summary)
	}
}
