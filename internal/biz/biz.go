package biz

import (
	"context"
	"errors"
	"time"

	"github.com/google/wire"
	"github.com/yola1107/kratos/v2/library/work"
	"github.com/yola1107/kratos/v2/log"

	"minigame/internal/biz/catalog"
	"minigame/internal/biz/lobby"
	"minigame/internal/biz/player"
	"minigame/internal/biz/session"
	"minigame/internal/biz/stats"
	"minigame/internal/biz/world"
	"minigame/internal/conf"
	"minigame/pkg/codes"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(NewUsecase)

// 组合根同时充当各子域的仓储实现
var (
	_ lobby.Repo   = (*Usecase)(nil)
	_ session.Repo = (*Usecase)(nil)
)

var defaultPendingNum = 10000

// DataRepo is a data repo.
type DataRepo interface {
	LoadProfile(ctx context.Context, uid int64) (*player.Profile, error)
	SaveProfile(ctx context.Context, p *player.Profile) error
	SaveGameRecord(rec *stats.GameRecord) error
}

// Usecase 大厅组合根: 玩家注册表 + 区域目录 + 排队协调器 + 对局登记处。
// 全部大厅状态只在工作循环上读写, 服务层通过 PostAndWait 进出。
type Usecase struct {
	repo DataRepo
	log  *log.Helper

	bc *conf.Bootstrap
	ws work.IWorkStore

	wops   world.Ops
	placer world.Placer

	pm  *player.Manager
	sm  *session.Manager
	cat *catalog.Catalog

	groups map[string]*lobby.Group // groupKey -> 协调器
	zones  map[string]*lobby.Group // zoneID -> 协调器
	arenas map[string]*lobby.Group // arenaID -> 协调器
}

// NewUsecase new a hall usecase.
func NewUsecase(repo DataRepo, logger log.Logger, bc *conf.Bootstrap) (*Usecase, func(), error) {
	uc := &Usecase{
		repo:   repo,
		log:    log.NewHelper(logger),
		bc:     bc,
		wops:   world.NewNop(),
		placer: world.NewNopPlacer(),
		pm:     player.NewManager(),
		groups: make(map[string]*lobby.Group),
		zones:  make(map[string]*lobby.Group),
		arenas: make(map[string]*lobby.Group),
	}

	ctx, cancel := context.WithCancel(context.Background())
	uc.ws = work.NewWorkStore(ctx, defaultPendingNum)
	uc.sm = session.NewManager(uc)

	uc.cat = catalog.Discover(bc.Hall, logger)
	for _, cg := range uc.cat.Groups() {
		game := bc.Hall.Game(cg.GameKey)
		g := lobby.NewGroup(uc, game, cg)
		uc.groups[cg.Key()] = g
		uc.arenas[cg.Arena.ID] = g
		for _, z := range cg.Zones {
			uc.zones[z.ID] = g
		}
	}

	cleanup := func() {
		log.NewHelper(logger).Info("closing the hall resources")
		cancel()
		uc.ws.Stop()
	}
	return uc, cleanup, errors.Join(uc.ws.Start())
}

// SetWorldAdapter 接入真实世界适配器 (传送/背包/结构), 缺省为空实现
func (uc *Usecase) SetWorldAdapter(ops world.Ops, placer world.Placer) {
	if ops != nil {
		uc.wops = ops
	}
	if placer != nil {
		uc.placer = placer
	}
}

/*
	lobby.Repo / session.Repo
*/

func (uc *Usecase) GetLoop() work.Loop       { return uc.ws }
func (uc *Usecase) GetTimer() work.Scheduler { return uc.ws }
func (uc *Usecase) GetGlobal() *conf.Global  { return uc.bc.Hall.Global }
func (uc *Usecase) World() world.Ops         { return uc.wops }
func (uc *Usecase) Placer() world.Placer     { return uc.placer }

func (uc *Usecase) GetSessionLogDir() string {
	if uc.bc.Log == nil {
		return ""
	}
	return uc.bc.Log.SessionDir
}

func (uc *Usecase) ArenaBusy(arenaID string) bool {
	return uc.sm.ArenaBusy(arenaID)
}

func (uc *Usecase) Launch(arena *catalog.Arena, game *conf.Game, teams []*player.Team) ([]*player.Player, error) {
	_, rejected, err := uc.sm.Launch(arena, game, uc.bc.Hall.Global, teams)
	return rejected, err
}

func (uc *Usecase) SaveProfile(p *player.Profile) {
	if err := uc.repo.SaveProfile(context.Background(), p); err != nil {
		uc.log.Errorf("save profile %d: %v", p.UID, err)
	}
}

func (uc *Usecase) SaveRecord(rec *stats.GameRecord) {
	if err := uc.repo.SaveGameRecord(rec); err != nil {
		uc.log.Errorf("save record %s: %v", rec.GameKey(), err)
	}
}

// OnSessionClosed 对局落幕, 竞技场空出, 整理该分组的排队定时器
func (uc *Usecase) OnSessionClosed(sessionID int64, arenaID string) {
	uc.log.Infof("session %d on %s closed", sessionID, arenaID)
	if g, ok := uc.arenas[arenaID]; ok {
		g.NotifyPlayerChange()
	}
}

/*
	玩家进出 (服务层入口, 都经由工作循环)
*/

// JoinZone 玩家进入排队区。对应竞技场有在局且允许中途加入时直接进局。
func (uc *Usecase) JoinZone(ctx context.Context, uid int64, name, zoneID string) error {
	_, err := uc.ws.PostAndWait(func() ([]byte, error) {
		return nil, uc.joinZone(uid, name, zoneID)
	})
	return err
}

func (uc *Usecase) joinZone(uid int64, name, zoneID string) error {
	g, ok := uc.zones[zoneID]
	if !ok {
		return codes.ErrZoneNotFound
	}
	p, err := uc.loadPlayer(uid, name)
	if err != nil {
		return err
	}
	if p.InSession() {
		return codes.ErrAlreadyInSession
	}
	if p.Queued() {
		return codes.ErrAlreadyQueued
	}

	_, zone, err := uc.cat.ZoneGroup(zoneID)
	if err != nil {
		return codes.ErrZoneNotFound
	}
	if s, live := uc.sm.ByArena(g.Arena().ID); live && s.State() == session.StActive {
		// 进不了在局 (不允许/满员/没位置) 就照常排队等下一局
		if err := s.AddLatePlayer(p, zone.Team); err == nil {
			return nil
		}
	}
	return g.Join(p, zoneID)
}

// LeaveZone 玩家离开排队区
func (uc *Usecase) LeaveZone(ctx context.Context, uid int64) error {
	_, err := uc.ws.PostAndWait(func() ([]byte, error) {
		p := uc.pm.Get(uid)
		if p == nil || !p.Queued() {
			return nil, codes.ErrNotQueued
		}
		g, ok := uc.zones[p.ZoneID()]
		if !ok {
			p.LeaveZone()
			return nil, nil
		}
		return nil, g.Leave(uid)
	})
	return err
}

// QuitSession 玩家主动退出在局 (出局处理, 不退费)
func (uc *Usecase) QuitSession(ctx context.Context, uid int64) error {
	_, err := uc.ws.PostAndWait(func() ([]byte, error) {
		p := uc.pm.Get(uid)
		if p == nil || !p.InSession() {
			return nil, codes.ErrSessionNotFound
		}
		s, ok := uc.sm.Get(p.SessionID())
		if !ok {
			p.LeaveSession()
			return nil, nil
		}
		return nil, s.KickPlayer(uid, "quit")
	})
	return err
}

// loadPlayer 取在线玩家, 没有就从存档拉, 首次见面发放见面礼
func (uc *Usecase) loadPlayer(uid int64, name string) (*player.Player, error) {
	if p := uc.pm.Get(uid); p != nil {
		return p, nil
	}
	profile, err := uc.repo.LoadProfile(context.Background(), uid)
	if err != nil {
		uc.log.Errorf("load profile %d: %v", uid, err)
		return nil, codes.ErrFail
	}
	if profile == nil {
		profile = &player.Profile{
			UID:      uid,
			Name:     name,
			Tokens:   uc.bc.Hall.Global.FirstJoinTokens,
			JoinedAt: time.Now().Unix(),
		}
		uc.SaveProfile(profile)
		uc.log.Infof("first join: %d %s, granted %d tokens", uid, name, profile.Tokens)
	}
	if name != "" {
		profile.Name = name
	}
	return uc.pm.GetOrCreate(profile), nil
}
