package world

import (
	"time"

	"go.uber.org/zap"
)

// decayInterval is the granularity of decay processing. Remaining durations
// only tick down when an interval has accumulated, so a single tick never
// scans the schedule more than once.
const decayInterval = 250 * time.Millisecond

// decayScheduler tracks actively decaying items. Items enter when the move
// engine sees a duration, leave on expiry or removal.
type decayScheduler struct {
	acc   time.Duration
	items []*Item
}

func newDecayScheduler() *decayScheduler {
	return &decayScheduler{}
}

func (d *decayScheduler) schedule(item *Item) {
	d.items = append(d.items, item)
}

func (d *decayScheduler) remove(item *Item) bool {
	for i, existing := range d.items {
		if existing == item {
			d.items = append(d.items[:i], d.items[i+1:]...)
			return true
		}
	}
	return false
}

// startDecay activates an item's decay clock. Items whose clock already ran
// out transform immediately.
func (g *Game) startDecay(item *Item) {
	if item == nil || item.DecayState() == DecayActive {
		return
	}
	it := item.Type()
	if it.Duration <= 0 && it.DecayTo == 0 {
		return
	}
	if it.DecayTo < 0 && it.Duration <= 0 {
		return
	}
	if item.Duration() <= 0 {
		g.internalDecayItem(item)
		return
	}
	item.SetDecayState(DecayActive)
	item.IncRef()
	g.decay.schedule(item)
}

// stopDecay halts an item's clock, keeping the remaining duration.
func (g *Game) stopDecay(item *Item) {
	if item == nil {
		return
	}
	if item.DecayState() == DecayActive && g.decay.remove(item) {
		item.DecRef()
	}
	item.SetDecayState(DecayNone)
}

// CheckDecay advances the decay clocks. Called once per tick by the decay
// system.
func (g *Game) CheckDecay(dt time.Duration) {
	d := g.decay
	d.acc += dt
	if d.acc < decayInterval {
		return
	}
	elapsed := d.acc
	d.acc = 0

	// Detach the current batch first. A transform below schedules its
	// successor onto the fresh list, so a chain advances one link per
	// interval instead of collapsing in a single sweep.
	batch := d.items
	d.items = nil

	for _, item := range batch {
		if item.DecayState() != DecayActive || item.Parent() == nil {
			item.DecRef()
			continue
		}
		remaining := item.Duration() - elapsed
		if remaining > 0 {
			item.SetDuration(remaining)
			d.items = append(d.items, item)
			continue
		}
		item.SetDuration(0)
		item.SetDecayState(DecayNone)
		item.DecRef()
		g.internalDecayItem(item)
	}
}

// internalDecayItem runs one step of an item's decay chain: transform into
// the successor type, or vanish.
func (g *Game) internalDecayItem(item *Item) {
	decayTo := item.Type().DecayTo
	if decayTo <= 0 {
		if ret := g.internalRemoveItem(item, 0, false, 0); !ret.OK() {
			g.log.Warn("decayed item could not be removed",
				zap.Uint16("item", item.ID()),
				zap.Stringer("pos", item.MapPosition()),
				zap.String("ret", ret.Message()))
		}
		return
	}
	g.TransformItem(item, uint16(decayTo))
}
