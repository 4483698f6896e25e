package world

import "strings"

// Mailbox is a cylinder that never stores anything: accepting an item means
// delivering it. The actual delivery is a nested transactional move run by
// the game engine; if it cannot succeed the item never leaves its source.
type Mailbox struct {
	Item
}

// CanSend reports whether the item is mailable: a written letter, or a
// parcel (container) carrying a labelled child.
func (m *Mailbox) CanSend(item *Item) bool {
	return m.recipientLabel(item) != ""
}

// recipientLabel extracts the "name\ntown" label from a letter's own text
// or from the first labelled child of a parcel.
func (m *Mailbox) recipientLabel(item *Item) string {
	if item.Type().CanWriteText || item.Type().CanReadText {
		return item.Text()
	}
	if sub := item.Container(); sub != nil {
		for _, child := range sub.Items() {
			if child.Text() != "" && (child.Type().CanWriteText || child.Type().CanReadText) {
				return child.Text()
			}
		}
	}
	return ""
}

// ParseLabel splits a mail label into recipient name and town name.
// The town part is optional; empty strings mean the label is unusable.
func ParseLabel(label string) (name, town string) {
	parts := strings.SplitN(label, "\n", 2)
	name = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		town = strings.TrimSpace(parts[1])
	}
	return name, town
}

// Recipient resolves the label for an item offered to this mailbox.
func (m *Mailbox) Recipient(item *Item) (name, town string, ok bool) {
	label := m.recipientLabel(item)
	if label == "" {
		return "", "", false
	}
	name, town = ParseLabel(label)
	return name, town, name != ""
}

// ── Cylinder implementation ─────────────────────────────────────────

func (m *Mailbox) QueryAdd(index int, thing Thing, count uint32, flags CylinderFlags, actor Creature) ReturnValue {
	item := thing.AsItem()
	if item == nil {
		return RetNotPossible
	}
	if !m.CanSend(item) {
		return RetNotPossible
	}
	return RetNoError
}

func (m *Mailbox) QueryMaxCount(index int, thing Thing, count uint32, flags CylinderFlags) (ReturnValue, uint32) {
	return RetNoError, count
}

// QueryRemove always fails: nothing ever rests inside a mailbox.
func (m *Mailbox) QueryRemove(thing Thing, count uint32, flags CylinderFlags, actor Creature) ReturnValue {
	return RetNotPossible
}

func (m *Mailbox) QueryDestination(index *int, thing Thing, flags CylinderFlags) (Cylinder, *Item) {
	return m, nil
}

// AddThing is a no-op; the engine intercepts mailbox destinations and runs
// delivery instead of a physical add.
func (m *Mailbox) AddThing(index int, thing Thing)                      {}
func (m *Mailbox) UpdateThing(thing Thing, itemID uint16, count uint32) {}
func (m *Mailbox) ReplaceThing(index int, thing Thing)                  {}
func (m *Mailbox) RemoveThing(thing Thing, count uint32)                {}

func (m *Mailbox) ThingIndex(thing Thing) int       { return -1 }
func (m *Mailbox) ThingByIndex(index int) Thing     { return nil }
func (m *Mailbox) ThingCount() int                  { return 0 }
func (m *Mailbox) ItemTypeCount(uint16, int) uint32 { return 0 }

func (m *Mailbox) PostAddNotify(thing Thing, oldParent Cylinder, index int) {}
func (m *Mailbox) PostRemoveNotify(thing Thing, newParent Cylinder, index int, completeRemoval bool) {
}
func (m *Mailbox) InternalAddThing(index int, thing Thing) {}
