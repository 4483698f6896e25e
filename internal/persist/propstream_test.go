package persist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otgo/server/internal/data"
	"github.com/otgo/server/internal/world"
)

func newTestFactory() *world.ItemFactory {
	table := data.NewItemTypeTable()
	for _, it := range []*data.ItemType{
		{ID: 2148, Name: "gold coin", Stackable: true, Pickupable: true, Moveable: true, Weight: 10},
		{ID: 2597, Name: "label", CanReadText: true, CanWriteText: true, Pickupable: true, Moveable: true, Weight: 10},
		{ID: 2050, Name: "torch", Pickupable: true, Moveable: true, Duration: 600, DecayTo: 2051, Weight: 500},
		{ID: 1387, Name: "teleporter", Kind: data.KindTeleport},
		{ID: 1209, Name: "door", Kind: data.KindDoor},
		{ID: 2610, Name: "bed", Kind: data.KindBed},
	} {
		it.SlotPosition = data.SlotPosWherever
		table.Register(it)
	}
	return world.NewItemFactory(table)
}

func reload(t *testing.T, f *world.ItemFactory, item *world.Item) *world.Item {
	t.Helper()
	blob := EncodeItemAttributes(item)
	fresh := f.New(item.ID(), 0)
	require.NotNil(t, fresh)
	require.NoError(t, DecodeItemAttributes(fresh, blob))
	return fresh
}

func TestAttributeRoundTrip(t *testing.T) {
	f := newTestFactory()

	label := f.New(2597, 0)
	label.SetText("Bob\nRookhaven")
	label.SetWriter("Ada")
	label.SetActionID(4100)
	label.SetUniqueID(9001)

	got := reload(t, f, label)
	assert.Equal(t, "Bob\nRookhaven", got.Text())
	assert.Equal(t, "Ada", got.Writer())
	assert.Equal(t, uint16(4100), got.ActionID())
	assert.Equal(t, uint16(9001), got.UniqueID())
}

func TestStackCountRoundTrip(t *testing.T) {
	f := newTestFactory()

	gold := f.New(2148, 50)
	got := reload(t, f, gold)
	assert.Equal(t, uint32(50), got.Count())
}

func TestDecayResumesPending(t *testing.T) {
	f := newTestFactory()

	torch := f.New(2050, 0)
	torch.SetDuration(400 * time.Second)
	torch.SetDecayState(world.DecayActive)

	got := reload(t, f, torch)
	assert.Equal(t, 400*time.Second, got.Duration())
	assert.Equal(t, world.DecayPending, got.DecayState(), "the clock restarts once the item lands")
}

func TestTeleportDestinationRoundTrip(t *testing.T) {
	f := newTestFactory()

	tp := f.New(1387, 0)
	tp.Teleport().SetDestination(world.Position{X: 1024, Y: 768, Z: 9})

	got := reload(t, f, tp)
	require.NotNil(t, got.Teleport())
	assert.Equal(t, world.Position{X: 1024, Y: 768, Z: 9}, got.Teleport().Destination())
}

func TestDoorAndBedRoundTrip(t *testing.T) {
	f := newTestFactory()

	door := f.New(1209, 0)
	door.Door().SetDoorID(3)
	got := reload(t, f, door)
	require.NotNil(t, got.Door())
	assert.Equal(t, uint8(3), got.Door().DoorID())

	bed := f.New(2610, 0)
	bed.Bed().Occupy(777)
	got = reload(t, f, bed)
	require.NotNil(t, got.Bed())
	assert.Equal(t, uint32(777), got.Bed().SleeperGUID())
}

func TestPlainItemEncodesEndTagOnly(t *testing.T) {
	f := newTestFactory()

	torch := f.New(2050, 0)
	assert.Equal(t, []byte{0x00}, EncodeItemAttributes(torch))
}

func TestStoppedDecayKeepsRemainingTime(t *testing.T) {
	f := newTestFactory()

	// A torch put out halfway keeps its clock even though no decay is
	// registered at save time.
	torch := f.New(2050, 0)
	torch.SetDuration(250 * time.Second)

	got := reload(t, f, torch)
	assert.Equal(t, 250*time.Second, got.Duration())
	assert.Equal(t, world.DecayNone, got.DecayState())
}

func TestFreshlyLitItemEncodesTemplateClock(t *testing.T) {
	f := newTestFactory()

	// Lit but never swept: the instance clock has not been written yet, so
	// the template duration stands in.
	torch := f.New(2050, 0)
	torch.SetDecayState(world.DecayActive)

	got := reload(t, f, torch)
	assert.Equal(t, 600*time.Second, got.Duration())
	assert.Equal(t, world.DecayPending, got.DecayState())
}

func TestDecodeRejectsUnknownTag(t *testing.T) {
	f := newTestFactory()

	item := f.New(2148, 0)
	err := DecodeItemAttributes(item, []byte{0xFE, 0x00})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tag")
}

func TestDecodeRejectsMissingEndTag(t *testing.T) {
	f := newTestFactory()

	item := f.New(2148, 0)
	blob := EncodeItemAttributes(item)
	err := DecodeItemAttributes(item, blob[:len(blob)-1])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing end tag")
}
