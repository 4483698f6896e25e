package system

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	coresys "github.com/otgo/server/internal/core/system"
	"github.com/otgo/server/internal/net"
	"github.com/otgo/server/internal/net/packet"
	"github.com/otgo/server/internal/persist"
	"github.com/otgo/server/internal/world"
)

// equipHook is the scripted equip pre-check installed on logged-in
// players.
type equipHook interface {
	OnEquip(p *world.Player, item *world.Item, slot int) world.ReturnValue
	OnDeEquip(p *world.Player, item *world.Item, slot int) world.ReturnValue
}

// InputSystem drains session queues and translates client messages into
// game operations. Phase 0 (Input).
type InputSystem struct {
	server     *net.Server
	game       *world.Game
	playerRepo *persist.PlayerRepo
	broadcast  *BroadcastSystem
	hook       equipHook
	log        *zap.Logger

	maxPerTick int
	nextGUID   uint32

	sessions map[uint64]*net.Session // all live sessions
	players  map[uint64]uint32       // session id -> player id
}

func NewInputSystem(server *net.Server, g *world.Game, playerRepo *persist.PlayerRepo, broadcast *BroadcastSystem, hook equipHook, maxGUID uint32, maxPerTick int, log *zap.Logger) *InputSystem {
	return &InputSystem{
		server:     server,
		game:       g,
		playerRepo: playerRepo,
		broadcast:  broadcast,
		hook:       hook,
		log:        log,
		maxPerTick: maxPerTick,
		nextGUID:   maxGUID,
		sessions:   make(map[uint64]*net.Session),
		players:    make(map[uint64]uint32),
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	s.acceptNew()
	s.reapDead()

	for _, sess := range s.sessions {
		for n := 0; n < s.maxPerTick; n++ {
			var raw []byte
			select {
			case raw = <-sess.InQueue:
			default:
			}
			if raw == nil {
				break
			}
			s.handle(sess, raw)
		}
	}
}

func (s *InputSystem) acceptNew() {
	for {
		select {
		case sess := <-s.server.NewSessions():
			s.sessions[sess.ID] = sess
		default:
			return
		}
	}
}

func (s *InputSystem) reapDead() {
	for {
		select {
		case id := <-s.server.DeadSessions():
			s.dropSession(id)
			continue
		default:
		}
		break
	}
	for id, sess := range s.sessions {
		if sess.IsClosed() {
			s.dropSession(id)
		}
	}
}

func (s *InputSystem) dropSession(id uint64) {
	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	if pid, bound := s.players[id]; bound {
		if p := s.game.PlayerByID(pid); p != nil {
			s.savePlayer(p)
			s.game.RemoveCreature(p)
		}
		s.broadcast.DetachSession(pid)
		delete(s.players, id)
	}
	sess.Close()
	delete(s.sessions, id)
}

func (s *InputSystem) handle(sess *net.Session, raw []byte) {
	r := packet.NewReader(raw)
	op, err := r.ReadByte()
	if err != nil {
		return
	}

	if _, loggedIn := s.players[sess.ID]; !loggedIn {
		if op == packet.OpLogin {
			s.handleLogin(sess, r)
		}
		return
	}

	switch op {
	case packet.OpLogout:
		s.dropSession(sess.ID)
	case packet.OpWalk:
		s.handleWalk(sess, r)
	case packet.OpTurn:
		s.handleTurn(sess, r)
	case packet.OpMoveItem:
		s.handleMoveItem(sess, r)
	default:
		s.log.Debug("unknown opcode", zap.Uint8("op", op))
	}
}

func (s *InputSystem) handleLogin(sess *net.Session, r *packet.Reader) {
	name, err := r.ReadString()
	if err != nil || name == "" {
		sess.Close()
		return
	}
	if s.game.PlayerByName(name) != nil {
		sess.Close()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, pos, err := s.loadOrCreate(ctx, name)
	if err != nil {
		s.log.Error("login failed", zap.String("name", name), zap.Error(err))
		sess.Close()
		return
	}
	p.SetEquipHook(s.hook)

	if ret := s.game.AddPlayer(p, pos); !ret.OK() {
		s.log.Warn("login placement failed",
			zap.String("name", name), zap.String("reason", ret.Message()))
		sess.Close()
		return
	}

	sess.PlayerID = p.ID()
	s.players[sess.ID] = p.ID()
	s.broadcast.AttachSession(p.ID(), sess)

	if tile := p.Tile(); tile != nil {
		sess.Send(packet.TileDescription(tile))
	}
	s.log.Info("player logged in",
		zap.String("name", name), zap.Uint32("guid", p.GUID()))
}

func (s *InputSystem) loadOrCreate(ctx context.Context, name string) (*world.Player, world.Position, error) {
	row, err := s.playerRepo.LoadPlayer(ctx, name)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.createPlayer(name)
	}
	if err != nil {
		return nil, world.Position{}, err
	}

	p := world.NewPlayer(s.game.NextCreatureID(), row.GUID, row.Name)
	p.SetLevel(row.Level)
	p.SetCapacity(row.Capacity)
	p.SetTownID(row.TownID)
	p.SetDirection(world.Direction(row.Dir))

	if err := s.playerRepo.LoadInventory(ctx, p, s.game.Factory()); err != nil {
		return nil, world.Position{}, err
	}
	if err := s.playerRepo.LoadDepots(ctx, p, s.game.Factory(), s.game.Config().MaxDepotItems); err != nil {
		return nil, world.Position{}, err
	}
	return p, world.Position{X: row.PosX, Y: row.PosY, Z: row.PosZ}, nil
}

func (s *InputSystem) createPlayer(name string) (*world.Player, world.Position, error) {
	towns := s.game.Towns().All()
	if len(towns) == 0 {
		return nil, world.Position{}, errors.New("no towns loaded")
	}
	home := towns[0]
	for _, t := range towns {
		if t.ID < home.ID {
			home = t
		}
	}

	s.nextGUID++
	p := world.NewPlayer(s.game.NextCreatureID(), s.nextGUID, name)
	p.SetTownID(home.ID)
	p.MarkDirty()
	return p, home.TemplePos, nil
}

func (s *InputSystem) savePlayer(p *world.Player) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.playerRepo.SavePlayer(ctx, p); err != nil {
		s.log.Error("logout save failed", zap.String("name", p.Name()), zap.Error(err))
		return
	}
	p.ClearDirty()
}

func (s *InputSystem) handleWalk(sess *net.Session, r *packet.Reader) {
	dirByte, err := r.ReadByte()
	if err != nil || dirByte > uint8(world.NorthEast) {
		return
	}
	p := s.game.PlayerByID(s.players[sess.ID])
	if p == nil {
		return
	}
	if ret := s.game.MoveCreature(p, world.Direction(dirByte), 0); !ret.OK() {
		sess.Send(textMessage(ret.Message()))
	}
}

func (s *InputSystem) handleTurn(sess *net.Session, r *packet.Reader) {
	dirByte, err := r.ReadByte()
	if err != nil || dirByte > uint8(world.NorthEast) {
		return
	}
	if p := s.game.PlayerByID(s.players[sess.ID]); p != nil {
		s.game.Turn(p, world.Direction(dirByte))
	}
}

// handleMoveItem moves a thing between map positions. Inventory moves
// use negative coordinates on the wire; only tile-to-tile is wired here.
func (s *InputSystem) handleMoveItem(sess *net.Session, r *packet.Reader) {
	from, err := readPosition(r)
	if err != nil {
		return
	}
	index, err := r.ReadByte()
	if err != nil {
		return
	}
	to, err := readPosition(r)
	if err != nil {
		return
	}
	count, err := r.ReadByte()
	if err != nil {
		return
	}

	p := s.game.PlayerByID(s.players[sess.ID])
	if p == nil {
		return
	}
	fromTile := s.game.Map().TileAt(from)
	toTile := s.game.Map().TileAt(to)
	if fromTile == nil || toTile == nil {
		return
	}
	thing := fromTile.ThingByIndex(int(index))
	if thing == nil {
		return
	}
	item := thing.AsItem()
	if item == nil {
		return
	}
	if !p.MapPosition().InRange(from, 1, 1, 0) {
		sess.Send(textMessage(world.RetTooFarAway.Message()))
		return
	}

	if ret := s.game.MoveItem(p, item, uint32(count), toTile, world.IndexWherever); !ret.OK() {
		sess.Send(textMessage(ret.Message()))
	}
}

func readPosition(r *packet.Reader) (world.Position, error) {
	x, err := r.ReadU16()
	if err != nil {
		return world.Position{}, err
	}
	y, err := r.ReadU16()
	if err != nil {
		return world.Position{}, err
	}
	z, err := r.ReadByte()
	if err != nil {
		return world.Position{}, err
	}
	return world.Position{X: x, Y: y, Z: z}, nil
}

func textMessage(msg string) []byte {
	w := packet.NewWriterWithOpcode(packet.OpTextMessage)
	w.WriteString(msg)
	return w.Bytes()
}
