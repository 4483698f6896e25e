package world

import (
	"time"

	"github.com/otgo/server/internal/data"
)

// StackMax is the hard per-object stack cap for stackable items.
const StackMax = 100

// DecayState is the tri-state decaying flag guarding double registration.
type DecayState int

const (
	DecayNone DecayState = iota
	DecayPending
	DecayActive
)

// itemAttributes is the lazily allocated non-default attribute blob.
// Most items never carry one.
type itemAttributes struct {
	name       string
	article    string
	text       string
	writer     string
	writtenAt  time.Time
	actionID   uint16
	uniqueID   uint16
	duration   time.Duration // remaining decay time
	custom     map[string]string
}

// Item is a thing instance. Its subtype field is interpreted entirely
// through the ItemType: stack count, charge count, or fluid kind.
type Item struct {
	parent  Cylinder
	it      *data.ItemType
	subType uint16
	attrs   *itemAttributes
	refs    int32
	decay   DecayState

	// Specialized variant back-pointers, set by the factory. At most one
	// chain is non-nil. They let code holding the embedded *Item recover
	// the cylinder variant without reflection.
	container *Container
	depot     *DepotLocker
	mailbox   *Mailbox
	door      *Door
	bed       *BedItem
	teleport  *TeleportItem
}

// ItemFactory builds item instances keyed by type id, selecting the logical
// subclass from the template table.
type ItemFactory struct {
	types *data.ItemTypeTable
}

// NewItemFactory wraps an item template table.
func NewItemFactory(types *data.ItemTypeTable) *ItemFactory {
	return &ItemFactory{types: types}
}

// Types exposes the underlying template table.
func (f *ItemFactory) Types() *data.ItemTypeTable { return f.types }

// New creates an item of the given type id, or nil for unknown ids.
// subType is the initial count/charges/fluid value; 0 picks the default.
func (f *ItemFactory) New(id uint16, subType uint16) *Item {
	it := f.types.Get(id)
	if it == nil {
		return nil
	}
	base := Item{it: it, refs: 1}
	switch {
	case it.Stackable:
		if subType == 0 {
			subType = 1
		}
		if subType > StackMax {
			subType = StackMax
		}
		base.subType = subType
	case it.Charges > 0:
		if subType == 0 {
			subType = uint16(it.Charges)
		}
		base.subType = subType
	default:
		base.subType = subType
	}

	switch it.Kind {
	case data.KindContainer:
		c := &Container{Item: base, capacity: it.ContainerSize}
		c.Item.container = c
		return &c.Item
	case data.KindDepot:
		d := &DepotLocker{Container: Container{Item: base, capacity: it.ContainerSize}}
		d.Item.container = &d.Container
		d.Item.depot = d
		return &d.Item
	case data.KindMailbox:
		m := &Mailbox{Item: base}
		m.Item.mailbox = m
		return &m.Item
	case data.KindDoor:
		d := &Door{Item: base}
		d.Item.door = d
		return &d.Item
	case data.KindBed:
		b := &BedItem{Item: base}
		b.Item.bed = b
		return &b.Item
	case data.KindTeleport:
		t := &TeleportItem{Item: base}
		t.Item.teleport = t
		return &t.Item
	default:
		i := base
		return &i
	}
}

// ── Thing implementation ────────────────────────────────────────────

func (i *Item) Parent() Cylinder     { return i.parent }
func (i *Item) SetParent(c Cylinder) { i.parent = c }
func (i *Item) AsItem() *Item        { return i }
func (i *Item) AsCreature() Creature { return nil }

// MapPosition resolves through the parent chain to the holding tile, or the
// NoPos sentinel for detached items.
func (i *Item) MapPosition() Position {
	if i.parent == nil {
		return Position{X: NoPos}
	}
	return i.parent.MapPosition()
}

// ── Variant accessors ───────────────────────────────────────────────

// Container returns the item as a container (depots and lockers included),
// or nil.
func (i *Item) Container() *Container { return i.container }

// Depot returns the item as a depot locker, or nil.
func (i *Item) Depot() *DepotLocker { return i.depot }

// Mailbox returns the item as a mailbox, or nil.
func (i *Item) Mailbox() *Mailbox { return i.mailbox }

// Door returns the item as a house door, or nil.
func (i *Item) Door() *Door { return i.door }

// Bed returns the item as a bed part, or nil.
func (i *Item) Bed() *BedItem { return i.bed }

// Teleport returns the item as a teleporter, or nil.
func (i *Item) Teleport() *TeleportItem { return i.teleport }

// Cylinder returns the cylinder variant backing this item, or nil for items
// that cannot hold things.
func (i *Item) Cylinder() Cylinder {
	switch {
	case i.depot != nil:
		return i.depot
	case i.container != nil:
		return i.container
	case i.mailbox != nil:
		return i.mailbox
	}
	return nil
}

// ── Template and subtype access ─────────────────────────────────────

// Type returns the immutable item template.
func (i *Item) Type() *data.ItemType { return i.it }

// ID returns the template id.
func (i *Item) ID() uint16 { return i.it.ID }

// Name returns the attribute override name or the template name.
func (i *Item) Name() string {
	if i.attrs != nil && i.attrs.name != "" {
		return i.attrs.name
	}
	return i.it.Name
}

// IsStackable reports whether the item stacks.
func (i *Item) IsStackable() bool { return i.it.Stackable }

// Count returns the stack count (1 for non-stackables).
func (i *Item) Count() uint32 {
	if i.it.Stackable {
		return uint32(i.subType)
	}
	return 1
}

// SetCount sets the stack count, clamped to [1, StackMax].
func (i *Item) SetCount(n uint32) {
	if !i.it.Stackable {
		return
	}
	if n < 1 {
		n = 1
	}
	if n > StackMax {
		n = StackMax
	}
	i.subType = uint16(n)
}

// Charges returns the remaining charges for charged items.
func (i *Item) Charges() uint32 {
	if i.it.Charges > 0 {
		return uint32(i.subType)
	}
	return 0
}

// SubType returns the raw subtype field.
func (i *Item) SubType() uint16 { return i.subType }

// SetSubType overwrites the raw subtype field (persistence only).
func (i *Item) SetSubType(v uint16) { i.subType = v }

// Weight returns the total weight: unit weight times stack count.
func (i *Item) Weight() uint32 {
	return i.it.Weight * i.Count()
}

// IsMoveable reports whether the move engine may relocate the item.
// Unique-id bearing items are pinned even when the template is moveable.
func (i *Item) IsMoveable() bool {
	if !i.it.Moveable {
		return false
	}
	return i.UniqueID() == 0
}

// IsBlocking reports whether the item blocks creatures.
func (i *Item) IsBlocking() bool { return i.it.BlockSolid }

// IsAlwaysOnTop reports whether the item renders in the top partition.
func (i *Item) IsAlwaysOnTop() bool { return i.it.AlwaysOnTop }

// TopOrder returns the ordering rank within the top partition.
func (i *Item) TopOrder() int { return i.it.TopOrder }

// IsGroundTile reports whether the item may serve as tile ground.
func (i *Item) IsGroundTile() bool { return i.it.IsGroundTile }

// CanMergeWith reports whether other could merge into this stack.
func (i *Item) CanMergeWith(other *Item) bool {
	return i.it.Stackable && other != nil && other.it == i.it
}

// ── Attributes ──────────────────────────────────────────────────────

func (i *Item) ensureAttrs() *itemAttributes {
	if i.attrs == nil {
		i.attrs = &itemAttributes{}
	}
	return i.attrs
}

// HasAttributes reports whether a non-default attribute blob exists.
func (i *Item) HasAttributes() bool { return i.attrs != nil }

// ActionID returns the scripted action id, 0 if unset.
func (i *Item) ActionID() uint16 {
	if i.attrs == nil {
		return 0
	}
	return i.attrs.actionID
}

// SetActionID sets the scripted action id.
func (i *Item) SetActionID(v uint16) { i.ensureAttrs().actionID = v }

// UniqueID returns the map-unique id, 0 if unset.
func (i *Item) UniqueID() uint16 {
	if i.attrs == nil {
		return 0
	}
	return i.attrs.uniqueID
}

// SetUniqueID pins the item with a map-unique id.
func (i *Item) SetUniqueID(v uint16) { i.ensureAttrs().uniqueID = v }

// Text returns the written text.
func (i *Item) Text() string {
	if i.attrs == nil {
		return ""
	}
	return i.attrs.text
}

// SetText stores written text (mail labels, books, signs).
func (i *Item) SetText(s string) { i.ensureAttrs().text = s }

// Writer returns the name of whoever wrote the text.
func (i *Item) Writer() string {
	if i.attrs == nil {
		return ""
	}
	return i.attrs.writer
}

// SetWriter records the text author and timestamp.
func (i *Item) SetWriter(name string) {
	a := i.ensureAttrs()
	a.writer = name
	a.writtenAt = time.Now()
}

// WrittenAt returns when the text was written.
func (i *Item) WrittenAt() time.Time {
	if i.attrs == nil {
		return time.Time{}
	}
	return i.attrs.writtenAt
}

// SetName overrides the display name.
func (i *Item) SetName(name string) { i.ensureAttrs().name = name }

// CustomAttr returns a custom key-value attribute.
func (i *Item) CustomAttr(key string) (string, bool) {
	if i.attrs == nil || i.attrs.custom == nil {
		return "", false
	}
	v, ok := i.attrs.custom[key]
	return v, ok
}

// SetCustomAttr stores a custom key-value attribute.
func (i *Item) SetCustomAttr(key, value string) {
	a := i.ensureAttrs()
	if a.custom == nil {
		a.custom = make(map[string]string, 2)
	}
	a.custom[key] = value
}

// ── Decay ───────────────────────────────────────────────────────────

// Duration returns the remaining decay time. Items that never started
// decaying report the template duration.
func (i *Item) Duration() time.Duration {
	if i.attrs != nil && i.attrs.duration > 0 {
		return i.attrs.duration
	}
	if i.it.Duration > 0 {
		return time.Duration(i.it.Duration) * time.Second
	}
	return 0
}

// SetDuration overwrites the remaining decay time.
func (i *Item) SetDuration(d time.Duration) { i.ensureAttrs().duration = d }

// RemainingDuration returns the instance decay clock, and false for items
// still on the template default (the clock never ran).
func (i *Item) RemainingDuration() (time.Duration, bool) {
	if i.attrs != nil && i.attrs.duration > 0 {
		return i.attrs.duration, true
	}
	return 0, false
}

// DecayState returns the tri-state decaying flag.
func (i *Item) DecayState() DecayState { return i.decay }

// SetDecayState transitions the decaying flag.
func (i *Item) SetDecayState(s DecayState) { i.decay = s }

// ── Reference counting ──────────────────────────────────────────────

// IncRef takes a reference for the duration of a re-entrant operation.
func (i *Item) IncRef() { i.refs++ }

// DecRef drops a reference. The garbage collector reclaims memory; the
// count exists so the release queue can tell when an object is still held
// by an in-flight operation.
func (i *Item) DecRef() {
	if i.refs > 0 {
		i.refs--
	}
}

// RefCount returns the live reference count.
func (i *Item) RefCount() int32 { return i.refs }

// inheritAttributes copies the attribute blob from another item. Used when
// a transform replaces the instance but the written text, action id and
// decay clock must survive.
func (i *Item) inheritAttributes(from *Item) {
	if from.attrs == nil {
		return
	}
	a := *from.attrs
	if from.attrs.custom != nil {
		a.custom = make(map[string]string, len(from.attrs.custom))
		for k, v := range from.attrs.custom {
			a.custom[k] = v
		}
	}
	i.attrs = &a
}

// ── Cloning ─────────────────────────────────────────────────────────

// CloneWithCount creates a detached copy carrying the given count. Used by
// the move engine's split path so in-flight references to the original
// object stay valid.
func (i *Item) CloneWithCount(f *ItemFactory, count uint32) *Item {
	clone := f.New(i.it.ID, 0)
	if clone == nil {
		return nil
	}
	if i.it.Stackable {
		clone.SetCount(count)
	} else {
		clone.subType = i.subType
	}
	if i.attrs != nil {
		a := *i.attrs
		if i.attrs.custom != nil {
			a.custom = make(map[string]string, len(i.attrs.custom))
			for k, v := range i.attrs.custom {
				a.custom[k] = v
			}
		}
		// Unique ids never survive a split.
		a.uniqueID = 0
		clone.attrs = &a
	}
	return clone
}
