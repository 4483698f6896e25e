package system

import (
	"time"

	"github.com/otgo/server/internal/core/event"
	coresys "github.com/otgo/server/internal/core/system"
	"github.com/otgo/server/internal/net"
	"github.com/otgo/server/internal/net/packet"
	"github.com/otgo/server/internal/world"
)

// BroadcastSystem turns world events into client updates for everyone in
// viewport range, then flushes session buffers. Phase 4 (Output).
type BroadcastSystem struct {
	game     *world.Game
	sessions map[uint32]*net.Session // keyed by player id
}

func NewBroadcastSystem(g *world.Game, bus *event.Bus) *BroadcastSystem {
	s := &BroadcastSystem{
		game:     g,
		sessions: make(map[uint32]*net.Session),
	}

	event.Subscribe(bus, func(ev world.ItemAddedEvent) {
		if tile, ok := ev.To.(*world.Tile); ok {
			s.broadcast(ev.Pos, packet.TileAddThing(ev.Pos, tile.ThingIndex(ev.Item), ev.Item))
		}
	})
	event.Subscribe(bus, func(ev world.ItemRemovedEvent) {
		if _, ok := ev.From.(*world.Tile); ok {
			if tile := s.game.Map().TileAt(ev.Pos); tile != nil {
				s.broadcast(ev.Pos, packet.TileDescription(tile))
			}
		}
	})
	event.Subscribe(bus, func(ev world.ItemMovedEvent) {
		if fromTile, ok := ev.From.(*world.Tile); ok {
			s.broadcast(ev.FromPos, packet.TileDescription(fromTile))
		}
		if toTile, ok := ev.To.(*world.Tile); ok {
			s.broadcast(ev.ToPos, packet.TileDescription(toTile))
		}
	})
	event.Subscribe(bus, func(ev world.ItemTransformedEvent) {
		if tile := s.game.Map().TileAt(ev.Pos); tile != nil {
			if idx := tile.ThingIndex(ev.New); idx >= 0 {
				s.broadcast(ev.Pos, packet.TileTransform(ev.Pos, idx, ev.New))
			}
		}
	})
	event.Subscribe(bus, func(ev world.CreatureMovedEvent) {
		msg := packet.CreatureMove(ev.Creature, ev.FromPos, ev.ToPos)
		s.broadcast(ev.FromPos, msg)
		if !ev.FromPos.InRange(ev.ToPos, world.MaxViewportX, world.MaxViewportY, 0) || ev.Teleport {
			s.broadcast(ev.ToPos, msg)
		}
	})
	event.Subscribe(bus, func(ev world.CreaturePlacedEvent) {
		if tile := ev.Creature.Tile(); tile != nil {
			s.broadcast(ev.Pos, packet.TileAddThing(ev.Pos, tile.ThingIndex(ev.Creature), ev.Creature))
		}
	})
	event.Subscribe(bus, func(ev world.CreatureRemovedEvent) {
		if tile := s.game.Map().TileAt(ev.Pos); tile != nil {
			s.broadcast(ev.Pos, packet.TileDescription(tile))
		}
	})
	return s
}

// AttachSession binds a session to an online player.
func (s *BroadcastSystem) AttachSession(playerID uint32, sess *net.Session) {
	s.sessions[playerID] = sess
}

// DetachSession unbinds a player's session.
func (s *BroadcastSystem) DetachSession(playerID uint32) {
	delete(s.sessions, playerID)
}

func (s *BroadcastSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *BroadcastSystem) Update(_ time.Duration) {
	for id, sess := range s.sessions {
		if sess.IsClosed() {
			delete(s.sessions, id)
			continue
		}
		sess.FlushOutput()
	}
}

func (s *BroadcastSystem) broadcast(pos world.Position, data []byte) {
	for _, c := range s.game.Map().GetSpectators(pos, true, true, 0, 0) {
		p := c.AsPlayer()
		if p == nil {
			continue
		}
		if sess, ok := s.sessions[p.ID()]; ok {
			sess.Send(data)
		}
	}
}
