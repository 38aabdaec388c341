package actions

import (
	"fmt"
	"sort"
)

// TickBuilder accumulates intents into ticks. Each Queue call produces its
// own tick; QueueSync places all of its intents in a single tick.
//
// TickBuilder is not safe for concurrent use. Session guards its builder.
type TickBuilder struct {
	ticks []Tick
}

// NewTickBuilder creates an empty builder.
func NewTickBuilder() *TickBuilder {
	return &TickBuilder{}
}

// Queue appends intent as its own tick.
func (b *TickBuilder) Queue(intent Intent) error {
	return b.QueueSync(intent)
}

// QueueSync appends intents as one synchronized tick. Two intents for the
// same device are rejected with an *InvalidIntentError and nothing from the
// call is queued.
func (b *TickBuilder) QueueSync(intents ...Intent) error {
	if len(intents) == 0 {
		return nil
	}

	tick := make(Tick, 0, len(intents))
	var seen [numDevices]bool
	for _, in := range intents {
		if err := in.Validate(); err != nil {
			return err
		}
		if seen[in.Device] {
			return &InvalidIntentError{
				Tick:   len(b.ticks),
				Device: in.Device,
				Reason: fmt.Sprintf("more than one %v action in one tick", in.Device),
			}
		}
		seen[in.Device] = true
		tick = append(tick, Action{Intent: in})
	}

	// Sources are dispatched in a fixed order within a tick.
	sort.SliceStable(tick, func(i, j int) bool {
		return tick[i].Device < tick[j].Device
	})

	b.ticks = append(b.ticks, tick)
	return nil
}

// Len returns the number of queued ticks.
func (b *TickBuilder) Len() int {
	return len(b.ticks)
}

// Build returns the queued ticks as a batch and empties the builder.
func (b *TickBuilder) Build(releaseAfter bool) *Batch {
	batch := &Batch{
		Ticks:        b.ticks,
		ReleaseAfter: releaseAfter,
	}
	b.ticks = nil
	return batch
}

// Reset discards all queued ticks.
func (b *TickBuilder) Reset() {
	b.ticks = nil
}
