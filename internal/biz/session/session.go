package session

import (
	"time"

	"github.com/samber/lo"
	"github.com/yola1107/kratos/v2/log"

	"minigame/internal/biz/catalog"
	"minigame/internal/biz/player"
	"minigame/internal/biz/stats"
	"minigame/internal/biz/world"
	"minigame/internal/conf"
	"minigame/pkg/codes"
)

type State int32

const (
	StActive  State = iota // 对局进行中
	StClosing              // 结算中
	StClosed               // 已落幕, 场地已释放
)

// Session 一局比赛: 占用一个竞技场, 承载若干队伍,
// 玩家入场即扣费存包, 离场即还包退场。所有修改都在工作循环上执行。
type Session struct {
	id   int64
	repo Repo
	mgr  *Manager
	flog *sessLog

	game   *conf.Game
	global *conf.Global
	arena  *catalog.Arena
	world  world.Ops
	placer world.Placer
	rules  Rules

	teams  []*player.Team
	record *stats.GameRecord

	startingPlayers int // 开局人数, 奖券计算基数
	remaining       int

	state   State
	closed  bool // 只允许落幕一次
	aborted bool
	placed  bool // 已放置场地结构, 落幕时撤销

	tickers map[string]*ticker
}

func (s *Session) ID() int64                 { return s.id }
func (s *Session) GameKey() string           { return s.game.Key }
func (s *Session) ArenaID() string           { return s.arena.ID }
func (s *Session) State() State              { return s.state }
func (s *Session) Teams() []*player.Team     { return s.teams }
func (s *Session) Record() *stats.GameRecord { return s.record }
func (s *Session) Remaining() int            { return s.remaining }

// Players 当前仍在场的全部玩家
func (s *Session) Players() []*player.Player {
	return lo.FlatMap(s.teams, func(t *player.Team, _ int) []*player.Player { return t.Players })
}

// PlayerUIDs 在场玩家的 uid 列表, 广播用
func (s *Session) PlayerUIDs() []int64 {
	return lo.FlatMap(s.teams, func(t *player.Team, _ int) []int64 { return t.UIDs() })
}

// Team 按队名查找
func (s *Session) Team(name string) *player.Team {
	for _, t := range s.teams {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func (s *Session) activeTeams() int {
	n := 0
	for _, t := range s.teams {
		if t.Size() > 0 {
			n++
		}
	}
	return n
}

func (s *Session) lastActiveTeam() *player.Team {
	for _, t := range s.teams {
		if t.Size() > 0 {
			return t
		}
	}
	return nil
}

/*
	入场 / 出局
*/

// joinPlayer 扣费, 存包, 传送进场。调用方已做完资格检查。
func (s *Session) joinPlayer(p *player.Player, team *player.Team, teamIdx int, now time.Time) {
	charged := p.TakeTokens(s.game.TokenCost, now)
	kit := s.world.SnapshotInventory(p.ID())
	s.world.ClearInventory(p.ID())
	p.EnterSession(s.id, team.Name, charged, kit)
	s.world.Teleport(p.ID(), s.arena.SpawnFor(teamIdx))
	if s.game.LaunchMessage != "" {
		s.world.Message(p.ID(), s.game.LaunchMessage)
	}
	s.flog.join(p, team.Name, charged)
}

// AddLatePlayer 中途加入。teamName 为空时进人数最少的队。
func (s *Session) AddLatePlayer(p *player.Player, teamName string) error {
	if s.closed || s.state != StActive {
		return codes.ErrSessionClosed
	}
	if !s.game.LateJoinAllowed {
		return codes.ErrLateJoinDisabled
	}

	var team *player.Team
	teamIdx := 0
	if teamName != "" {
		for i, t := range s.teams {
			if t.Name == teamName {
				team, teamIdx = t, i
				break
			}
		}
		if team == nil {
			return codes.ErrTeamNotFound
		}
	} else {
		for i, t := range s.teams {
			if team == nil || t.Size() < team.Size() {
				team, teamIdx = t, i
			}
		}
	}
	if s.game.MaxTeamSize > 0 && team.Size() >= int(s.game.MaxTeamSize) {
		return codes.ErrSessionFull
	}
	now := time.Now()
	if !p.HasTokens(s.game.TokenCost, now) {
		return codes.ErrInsufficientToken
	}

	team.Add(p)
	s.record.AddPlayer(p, team.Name)
	s.remaining++
	s.joinPlayer(p, team, teamIdx, now)
	s.rules.OnJoin(s, p)
	log.Infof("session %d: late join %s -> %s", s.id, p.Name(), team.Name)
	return nil
}

// KickPlayer 玩家出局 (淘汰/退出/掉线)。
// 出局后在场队伍不足两支时直接终局, 幸存队伍为胜方。
func (s *Session) KickPlayer(uid int64, reason string) error {
	var team *player.Team
	var target *player.Player
	for _, t := range s.teams {
		for _, p := range t.Players {
			if p.ID() == uid {
				team, target = t, p
				break
			}
		}
	}
	if target == nil {
		return codes.ErrPlayerNotFound
	}

	s.remaining--
	bonus := s.rules.LoserBonus(s, target)
	team.Remove(uid)
	s.flog.kick(target, reason)
	s.leavePlayer(target, bonus)

	if !s.closed && s.activeTeams() < 2 {
		if last := s.lastActiveTeam(); last != nil {
			s.End(last)
		} else {
			s.teardown()
		}
	}
	return nil
}

// leavePlayer 还包, 传送出场, 落账
func (s *Session) leavePlayer(p *player.Player, tickets int64) {
	if tickets > 0 {
		tickets = p.AwardTickets(tickets)
	}
	kit := p.LeaveSession()
	s.world.RestoreInventory(p.ID(), kit)
	if s.arena.HasExit {
		s.world.Teleport(p.ID(), s.arena.Exit)
	}
	s.repo.SaveProfile(p.Profile())
	s.flog.leave(p, tickets)
}

/*
	回合与终局
*/

// SaveRoundWin 记录回合胜方并推进回合, 规则钩子可在此判定终局
func (s *Session) SaveRoundWin(team *player.Team) {
	if s.closed {
		return
	}
	s.record.SaveRoundWin(team)
	s.flog.round(s.record.RoundIndex(), team.Name)
	s.rules.OnRoundAdvance(s)
	if winner, over := s.rules.GameOver(s); over {
		s.End(winner)
	}
}

// End 终局: 设置胜方并落幕
func (s *Session) End(winner *player.Team) {
	if s.closed {
		return
	}
	if winner != nil {
		s.record.SetGameWinner(winner)
	}
	s.teardown()
}

// EndRanked 多层名次终局 (第0位为最高名次)
func (s *Session) EndRanked(ranks []*player.Team) {
	if s.closed {
		return
	}
	s.record.SetTeamRanks(ranks)
	s.teardown()
}

// Abort 异常中止: 退还入场费, 不产生任何战绩
func (s *Session) Abort(reason string) {
	if s.closed {
		return
	}
	log.Errorf("session %d (%s@%s) aborted: %s", s.id, s.game.Key, s.arena.ID, reason)
	s.world.Broadcast(s.PlayerUIDs(), reason)
	s.aborted = true
	s.teardown()
}

// teardown 落幕通道, 全部终局路径在此汇合。只执行一次。
func (s *Session) teardown() {
	if s.closed {
		log.Errorf("session %d: teardown called twice", s.id)
		return
	}
	s.closed = true
	s.state = StClosing
	s.stopAllTimers()

	var tickets int64
	if !s.aborted {
		s.record.Finalize()
		tickets = s.ticketsAwarded()
	}
	winner := s.record.Winner()

	for _, t := range s.teams {
		players := append([]*player.Player(nil), t.Players...)
		t.Players = nil
		for _, p := range players {
			award := int64(0)
			switch {
			case s.aborted:
				p.RefundTokens(p.Charged())
			case t.Name == winner:
				award = int64(float64(tickets) * s.global.TicketMultiplier)
			default:
				award = s.rules.LoserBonus(s, p)
			}
			s.leavePlayer(p, award)
		}
	}
	s.remaining = 0

	if !s.aborted {
		s.repo.SaveRecord(s.record)
	}
	if s.placed {
		s.placer.UndoLastPlacement()
	}
	s.flog.finish(winner, s.aborted)
	s.state = StClosed
	s.close()
}

// close 释放场地, 注销登记, 收口日志
func (s *Session) close() {
	if err := s.flog.Close(); err != nil {
		log.Warnf("session %d: close log: %v", s.id, err)
	}
	s.mgr.remove(s)
	s.repo.OnSessionClosed(s.id, s.arena.ID)
}

// ticketsAwarded 胜方每人的奖券基数:
// 配置了固定奖励用固定值, 否则按 开局人数*入场费*兑换比 折算
func (s *Session) ticketsAwarded() int64 {
	if s.game.TicketReward >= 0 {
		return s.game.TicketReward
	}
	return int64(float64(s.startingPlayers) * float64(s.game.TokenCost) * s.global.TicketTokenRatio)
}
