package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLabel(t *testing.T) {
	name, town := ParseLabel("Bob\nRookhaven")
	assert.Equal(t, "Bob", name)
	assert.Equal(t, "Rookhaven", town)

	name, town = ParseLabel("  Bob  ")
	assert.Equal(t, "Bob", name)
	assert.Empty(t, town)

	name, town = ParseLabel("Bob\n  Rookhaven  \nignored")
	assert.Equal(t, "Bob", name)
	assert.Equal(t, "Rookhaven  \nignored", town, "only the first break splits")

	name, _ = ParseLabel("")
	assert.Empty(t, name)
}

func TestMailboxCanSend(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	mb := newItem(t, g, idMailbox, 0).Mailbox()

	letter := newItem(t, g, idLabel, 0)
	assert.False(t, mb.CanSend(letter), "blank letter")

	letter.SetText("Bob")
	assert.True(t, mb.CanSend(letter))

	parcel := newItem(t, g, idParcel, 0)
	assert.False(t, mb.CanSend(parcel), "empty parcel")

	label := newItem(t, g, idLabel, 0)
	label.SetText("Bob\nRookhaven")
	parcel.Container().InternalAddThing(IndexWherever, label)
	assert.True(t, mb.CanSend(parcel), "parcel with a labelled child")

	name, town, ok := mb.Recipient(parcel)
	assert.True(t, ok)
	assert.Equal(t, "Bob", name)
	assert.Equal(t, "Rookhaven", town)

	sword := newItem(t, g, idSword, 0)
	assert.False(t, mb.CanSend(sword))
}

func TestMailboxStoresNothing(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	mb := newItem(t, g, idMailbox, 0).Mailbox()

	letter := newItem(t, g, idLabel, 0)
	letter.SetText("Bob")

	assert.True(t, mb.QueryAdd(0, letter, 1, 0, nil).OK())
	assert.Equal(t, RetNotPossible, mb.QueryRemove(letter, 1, 0, nil))
	assert.Zero(t, mb.ThingCount())

	mb.AddThing(0, letter)
	assert.Zero(t, mb.ThingCount(), "adds never land physically")
}
