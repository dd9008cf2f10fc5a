package lobby

import (
	"fmt"
	"time"

	"github.com/yola1107/kratos/v2/log"

	"minigame/internal/biz/catalog"
	"minigame/internal/biz/player"
	"minigame/internal/conf"
	"minigame/pkg/codes"
)

// countdown 开局倒计时的存活状态
type countdown struct {
	taskID    int64
	remaining int64
}

// Group 一个竞技场分组的排队协调器: 管辖若干排队区,
// 凑人/倒计时/超时强开都由它裁决。所有修改都在工作循环上执行。
type Group struct {
	repo Repo
	game *conf.Game
	grp  *catalog.Group

	queues []*Queue

	countdown  *countdown
	queueTimer int64 // 排队超时定时器, 0 表示未挂
	queueStart time.Time
}

func NewGroup(repo Repo, game *conf.Game, grp *catalog.Group) *Group {
	g := &Group{repo: repo, game: game, grp: grp}
	for _, z := range grp.Zones {
		g.queues = append(g.queues, newQueue(z))
	}
	return g
}

func (g *Group) Key() string           { return g.grp.Key() }
func (g *Group) GameKey() string       { return g.game.Key }
func (g *Group) Arena() *catalog.Arena { return g.grp.Arena }
func (g *Group) QueueStart() time.Time { return g.queueStart }

func (g *Group) queue(zoneID string) *Queue {
	for _, q := range g.queues {
		if q.ZoneID() == zoneID {
			return q
		}
	}
	return nil
}

// TotalPlayers 分组内候场总人数
func (g *Group) TotalPlayers() int {
	n := 0
	for _, q := range g.queues {
		n += q.Size()
	}
	return n
}

// AllPlayers 全部候场玩家, 区内有序
func (g *Group) AllPlayers() []*player.Player {
	var out []*player.Player
	for _, q := range g.queues {
		out = append(out, q.players...)
	}
	return out
}

func (g *Group) allUIDs() []int64 {
	var out []int64
	for _, q := range g.queues {
		for _, p := range q.players {
			out = append(out, p.ID())
		}
	}
	return out
}

/*
	入队 / 离队
*/

// Join 玩家进入排队区。满员/付不起入场费的挡在门外。
func (g *Group) Join(p *player.Player, zoneID string) error {
	q := g.queue(zoneID)
	if q == nil {
		return codes.ErrZoneNotFound
	}
	if q.contains(p.ID()) {
		return codes.ErrAlreadyQueued
	}
	if !p.HasTokens(g.game.TokenCost, time.Now()) {
		return codes.ErrInsufficientToken
	}
	if g.zoneCap() > 0 && q.Size() >= g.zoneCap() {
		return codes.ErrZoneFull
	}
	if g.TotalPlayers() >= g.game.MaxPlayers() {
		return codes.ErrZoneFull
	}

	q.add(p)
	if g.game.LobbyMessage != "" {
		g.repo.World().Message(p.ID(), g.game.LobbyMessage)
	}
	log.Debugf("lobby %s: %s queued at %s (%d/%d)", g.Key(), p.Name(), zoneID, g.TotalPlayers(), g.game.RequiredPlayers())
	g.NotifyPlayerChange()

	// 满员立即尝试开局
	if g.TotalPlayers() >= g.game.MaxPlayers() {
		g.AttemptStart(true, true, false)
	}
	return nil
}

// zoneCap 单区容量; 非重组模式下一区即一队
func (g *Group) zoneCap() int {
	if g.game.TeamRebalanced || g.game.MaxTeamSize <= 0 {
		return 0
	}
	return int(g.game.MaxTeamSize)
}

// Leave 玩家离开排队区
func (g *Group) Leave(uid int64) error {
	for _, q := range g.queues {
		if p := q.remove(uid); p != nil {
			g.NotifyPlayerChange()
			return nil
		}
	}
	return codes.ErrNotQueued
}

// NotifyPlayerChange 人数变动后的定时器整理:
// 有人且未挂排队超时 → 挂上; 清零 → 全部熄灭。
func (g *Group) NotifyPlayerChange() {
	if g.TotalPlayers() == 0 {
		g.cancelCountdown()
		g.cancelQueueTimer()
		return
	}
	if g.queueTimer == 0 {
		g.RestartQueue()
	}
}

/*
	开局裁决
*/

// AttemptStart 尝试开局。
// allowDelay: 允许先走开局倒计时; failSilently: 凑不齐人时不播报;
// force: 不足满员也开 (倒计时到点和排队超时都走强开)。
// 返回是否已开局或已进入倒计时。
func (g *Group) AttemptStart(allowDelay, failSilently, force bool) bool {
	if g.repo.ArenaBusy(g.grp.Arena.ID) {
		g.RestartQueue()
		return false
	}
	if !g.game.TeamRebalanced {
		for _, q := range g.queues {
			if q.Size() < int(g.game.MinTeamSize) {
				return false
			}
		}
	}
	total := g.TotalPlayers()
	if total < g.game.RequiredPlayers() {
		if !failSilently {
			g.repo.World().Broadcast(g.allUIDs(),
				fmt.Sprintf("Not enough players to start %s. Waiting for more...", g.game.DisplayName))
		}
		g.RestartQueue()
		return false
	}
	if !force && total < g.game.MaxPlayers() {
		return false
	}
	if allowDelay && g.game.LobbyDelay > 0 && g.countdown == nil {
		g.startCountdown()
		return true
	}

	teams, retained := g.formTeams()
	rejected, err := g.repo.Launch(g.grp.Arena, g.game, teams)
	if err != nil {
		log.Warnf("lobby %s: launch failed: %v", g.Key(), err)
		g.RestartQueue()
		return false
	}

	retain := make(map[int64]bool, len(retained)+len(rejected))
	for _, p := range retained {
		retain[p.ID()] = true
	}
	for _, p := range rejected {
		retain[p.ID()] = true
	}
	g.clearQueues(retain)
	g.cancelCountdown()
	g.cancelQueueTimer()
	if g.TotalPlayers() > 0 {
		g.RestartQueue()
	}
	return true
}

func (g *Group) clearQueues(retain map[int64]bool) {
	for _, q := range g.queues {
		zone := q.zone
		q.clear(retain, func(p *player.Player) {
			g.repo.World().Message(p.ID(), "You were not placed on a team.")
			if zone.HasExit {
				g.repo.World().Teleport(p.ID(), zone.Exit)
			}
		})
	}
}

/*
	倒计时 / 排队超时
*/

func (g *Group) startCountdown() {
	g.cancelCountdown()
	cd := &countdown{remaining: g.game.LobbyDelay}
	g.countdown = cd
	cd.taskID = g.repo.GetTimer().Forever(time.Second, func() {
		g.repo.GetLoop().Post(func() { g.tickCountdown(cd) })
	})
	g.repo.World().Broadcast(g.allUIDs(), fmt.Sprintf("Game starting in %d...", cd.remaining))
}

func (g *Group) tickCountdown(cd *countdown) {
	if g.countdown != cd {
		return
	}
	cd.remaining--
	if cd.remaining <= 0 {
		g.cancelCountdown()
		g.AttemptStart(false, false, true)
		return
	}
	g.repo.World().Broadcast(g.allUIDs(), fmt.Sprintf("Game starting in %d...", cd.remaining))
}

func (g *Group) cancelCountdown() {
	if g.countdown == nil {
		return
	}
	g.repo.GetTimer().Cancel(g.countdown.taskID)
	g.countdown = nil
}

// RestartQueue 重挂排队超时定时器。maxWaitTime<0 关闭超时强开;
// 0 表示下个滴答立即试开, 否则按周期反复尝试, 开局成功后熄灭。
func (g *Group) RestartQueue() {
	if g.game.MaxWaitTime < 0 {
		return
	}
	g.cancelQueueTimer()
	g.queueStart = time.Now()

	var id int64
	if g.game.MaxWaitTime == 0 {
		id = g.repo.GetTimer().Once(time.Second, func() {
			g.repo.GetLoop().Post(func() {
				if g.queueTimer != id {
					return
				}
				g.queueTimer = 0
				g.AttemptStart(true, false, true)
			})
		})
	} else {
		id = g.repo.GetTimer().Forever(time.Duration(g.game.MaxWaitTime)*time.Second, func() {
			g.repo.GetLoop().Post(func() {
				if g.queueTimer != id {
					return
				}
				// 开局成功且没被重挂才熄灭 (留场玩家会换上新定时器)
				if g.AttemptStart(true, false, true) && g.queueTimer == id {
					g.cancelQueueTimer()
				}
			})
		})
	}
	g.queueTimer = id
}

func (g *Group) cancelQueueTimer() {
	if g.queueTimer == 0 {
		return
	}
	g.repo.GetTimer().Cancel(g.queueTimer)
	g.queueTimer = 0
}
