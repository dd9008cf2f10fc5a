package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/yola1107/kratos/v2/log"

	"minigame/internal/biz/catalog"
	"minigame/internal/biz/player"
	"minigame/internal/biz/stats"
	"minigame/internal/conf"
	"minigame/pkg/codes"
)

// Manager 对局登记处: id -> 对局, 竞技场占用表
type Manager struct {
	repo     Repo
	sessions sync.Map // int64 -> *Session
	arenas   sync.Map // arenaID -> int64
	nextID   int64
}

func NewManager(repo Repo) *Manager {
	return &Manager{repo: repo}
}

func (m *Manager) Get(id int64) (*Session, bool) {
	v, ok := m.sessions.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// ByArena 竞技场上正在进行的对局
func (m *Manager) ByArena(arenaID string) (*Session, bool) {
	v, ok := m.arenas.Load(arenaID)
	if !ok {
		return nil, false
	}
	return m.Get(v.(int64))
}

func (m *Manager) ArenaBusy(arenaID string) bool {
	_, ok := m.arenas.Load(arenaID)
	return ok
}

func (m *Manager) Count() int {
	n := 0
	m.sessions.Range(func(_, _ any) bool { n++; return true })
	return n
}

func (m *Manager) Range(f func(s *Session) bool) {
	m.sessions.Range(func(_, v any) bool { return f(v.(*Session)) })
}

// KickAll 运营终止: 中止全部在局, 返回中止数
func (m *Manager) KickAll(reason string) int {
	n := 0
	m.Range(func(s *Session) bool {
		s.Abort(reason)
		n++
		return true
	})
	return n
}

// Launch 在给定竞技场开一局。逐人扣费入场, 付不起的被剔除并随
// rejected 返回给排队层保留; 全员都进不了场时整局作废。
func (m *Manager) Launch(arena *catalog.Arena, game *conf.Game, global *conf.Global, teams []*player.Team) (*Session, []*player.Player, error) {
	if m.ArenaBusy(arena.ID) {
		return nil, nil, codes.ErrArenaBusy
	}

	id := atomic.AddInt64(&m.nextID, 1)
	s := &Session{
		id:      id,
		repo:    m.repo,
		mgr:     m,
		flog:    newSessLog(m.repo.GetSessionLogDir(), id),
		game:    game,
		global:  global,
		arena:   arena,
		world:   m.repo.World(),
		placer:  m.repo.Placer(),
		rules:   rulesFor(game.Key),
		state:   StActive,
		tickers: make(map[string]*ticker),
	}

	if game.Blueprint != "" {
		if err := s.placer.PlaceStructure(game.Blueprint, arena.SpawnFor(0), 1); err != nil {
			log.Errorf("session %d: place %q on %s: %v", id, game.Blueprint, arena.ID, err)
			return nil, nil, codes.ErrFail
		}
		s.placed = true
	}

	var rejected []*player.Player
	now := time.Now()
	for i, t := range teams {
		for _, p := range append([]*player.Player(nil), t.Players...) {
			if !p.HasTokens(game.TokenCost, now) {
				t.Remove(p.ID())
				rejected = append(rejected, p)
				s.world.Message(p.ID(), "You can no longer afford to play.")
				continue
			}
			s.joinPlayer(p, t, i, now)
		}
	}

	total := 0
	var kept []*player.Team
	for _, t := range teams {
		if t.Size() > 0 {
			kept = append(kept, t)
			total += t.Size()
		}
	}
	if total == 0 {
		if s.placed {
			s.placer.UndoLastPlacement()
		}
		s.flog.Close()
		return nil, rejected, codes.ErrFail
	}

	s.teams = kept
	s.startingPlayers = total
	s.remaining = total
	s.record = stats.NewGameRecord(stats.Config{
		GameKey:        game.Key,
		PrimaryScore:   game.PrimaryScore,
		ScoreAggregate: game.ScoreAggregate,
		RatingConstant: global.RatingConstant,
		StartingRating: global.StartingRating,
	}, kept, log.GetLogger())

	m.sessions.Store(id, s)
	m.arenas.Store(arena.ID, id)

	for _, p := range s.Players() {
		s.rules.OnJoin(s, p)
	}
	s.flog.launch(game.Key, arena.ID, len(kept), total)
	log.Infof("session %d: %s launched on %s, %d teams %d players", id, game.Key, arena.ID, len(kept), total)
	return s, rejected, nil
}

func (m *Manager) remove(s *Session) {
	m.sessions.Delete(s.id)
	m.arenas.Delete(s.arena.ID)
}
