package stats

import (
	"math"
	"time"

	"github.com/yola1107/kratos/v2/log"

	"minigame/internal/biz/player"
)

// NotApplicable 未产生胜者时的占位值
const NotApplicable = "n/a"

// PlayerResult 整局范围内某玩家的归属与积分变动
type PlayerResult struct {
	UID          int64
	Name         string
	StartingTeam string
	CurrentTeam  string
	RatingDelta  float64
}

// Config 结算所需的游戏类型参数
type Config struct {
	GameKey        string
	PrimaryScore   string // 空表示积分模式
	ScoreAggregate bool
	RatingConstant float64
	StartingRating float64
}

// GameRecord 一局比赛的完整台账: 回合序列 + 每玩家结果 + 胜者。
// 胜者只允许设置一次, Finalize 只允许执行一次, 重复调用记错误日志后忽略。
type GameRecord struct {
	log *log.Helper

	cfg     Config
	teams   []*player.Team
	rounds  []*RoundRecord
	current *RoundRecord

	players map[int64]*PlayerResult
	roster  map[int64]*player.Player // 全部参赛者, 含中途被踢者
	order   []int64

	winner    string
	teamRanks []*player.Team // 多层名次结果, 单胜者模式下为 nil
	finalized bool
	start     time.Time
}

func NewGameRecord(cfg Config, teams []*player.Team, logger log.Logger) *GameRecord {
	r := &GameRecord{
		log:     log.NewHelper(logger),
		cfg:     cfg,
		teams:   teams,
		current: newRoundRecord(),
		players: make(map[int64]*PlayerResult),
		roster:  make(map[int64]*player.Player),
		winner:  NotApplicable,
		start:   time.Now(),
	}
	for _, t := range teams {
		for _, p := range t.Players {
			r.players[p.ID()] = &PlayerResult{
				UID:          p.ID(),
				Name:         p.Name(),
				StartingTeam: t.Name,
				CurrentTeam:  t.Name,
			}
			r.roster[p.ID()] = p
			r.order = append(r.order, p.ID())
		}
	}
	return r
}

// AddPlayer registers a late joiner into the ledger.
func (r *GameRecord) AddPlayer(p *player.Player, teamName string) {
	if _, ok := r.players[p.ID()]; ok {
		return
	}
	r.players[p.ID()] = &PlayerResult{
		UID:          p.ID(),
		Name:         p.Name(),
		StartingTeam: teamName,
		CurrentTeam:  teamName,
	}
	r.roster[p.ID()] = p
	r.order = append(r.order, p.ID())
}

func (r *GameRecord) GameKey() string { return r.cfg.GameKey }
func (r *GameRecord) Winner() string  { return r.winner }
func (r *GameRecord) RoundIndex() int { return len(r.rounds) }

func (r *GameRecord) Rounds() []*RoundRecord {
	return r.rounds
}

func (r *GameRecord) Results() []*PlayerResult {
	out := make([]*PlayerResult, 0, len(r.order))
	for _, uid := range r.order {
		out = append(out, r.players[uid])
	}
	return out
}

/*
	事件写入
*/

// Set 覆盖写玩家事件 (只关心最后一次的值)
func (r *GameRecord) Set(p *player.Player, event string, v any) {
	r.playerRound(p).Set(event, v)
}

// Increment 累加玩家事件 (关心发生次数/累计量)
func (r *GameRecord) Increment(p *player.Player, event string, v any) {
	r.playerRound(p).Add(event, v)
}

// SetGame 覆盖写回合级事件
func (r *GameRecord) SetGame(event string, v any) {
	r.current.Set(event, v)
}

// IncrementGame 累加回合级事件
func (r *GameRecord) IncrementGame(event string, v any) {
	r.current.Add(event, v)
}

func (r *GameRecord) playerRound(p *player.Player) *PlayerRound {
	team := NotApplicable
	if res, ok := r.players[p.ID()]; ok {
		team = res.CurrentTeam
	}
	return r.current.Player(p.ID(), p.Name(), team)
}

// ChangeTeam 玩家中途换队
func (r *GameRecord) ChangeTeam(p *player.Player, teamName string) {
	r.playerRound(p).Set("team_swap", teamName)
	if res, ok := r.players[p.ID()]; ok {
		res.CurrentTeam = teamName
	}
}

/*
	回合与胜者
*/

// SaveRoundWin 记录回合胜者并推进到下一回合
func (r *GameRecord) SaveRoundWin(team *player.Team) {
	r.current.teamWon(team.Name)
	r.NextRound()
}

func (r *GameRecord) NextRound() {
	r.current.end()
	r.rounds = append(r.rounds, r.current)
	r.current = newRoundRecord()
}

// SetGameWinner 设置整局胜者, 重复设置是逻辑错误, 记日志后忽略
func (r *GameRecord) SetGameWinner(team *player.Team) {
	if r.winner != NotApplicable {
		r.log.Errorf("game record %s: winner set twice (%s, then %s)", r.cfg.GameKey, r.winner, team.Name)
		return
	}
	r.winner = team.Name
}

// SetTeamRanks 设置多层名次结果 (第0位为最高名次)
func (r *GameRecord) SetTeamRanks(ranks []*player.Team) {
	r.teamRanks = ranks
}

/*
	结算
*/

// Finalize 关账: 收尾当前回合, 传播主成绩或计算积分变动。
// 至多执行一次; 再次调用记日志后空返回。
func (r *GameRecord) Finalize() {
	if r.finalized {
		r.log.Errorf("game record %s: finalize called twice", r.cfg.GameKey)
		return
	}
	r.finalized = true

	r.current.Set("length_total", time.Since(r.start))
	r.NextRound()

	if !r.ratingMode() {
		r.propagatePrimaryScore()
		return
	}
	if r.winner == NotApplicable && r.teamRanks == nil {
		return
	}
	r.applyRatings()
}

func (r *GameRecord) ratingMode() bool {
	return r.cfg.PrimaryScore == "" || r.cfg.PrimaryScore == "elo"
}

// propagatePrimaryScore 把每回合的主成绩写回玩家档案:
// 非聚合模式取历史最大值, 聚合模式累加。
func (r *GameRecord) propagatePrimaryScore() {
	for _, round := range r.rounds {
		for _, pr := range round.Players() {
			score, ok := pr.Float(r.cfg.PrimaryScore)
			if !ok {
				continue
			}
			p := r.findPlayer(pr.UID)
			if p == nil {
				continue
			}
			if r.cfg.ScoreAggregate {
				p.AddRating(r.cfg.GameKey, score, 0)
			} else if p.Rating(r.cfg.GameKey, 0) < score {
				p.SetRating(r.cfg.GameKey, score)
			}
		}
	}
}

func (r *GameRecord) findPlayer(uid int64) *player.Player {
	return r.roster[uid]
}

// applyRatings 积分结算。
// 单胜者: 胜队按对数曲线得到的胜率乘系数加分, 其余对称扣分。
// 多层名次: 上半区每层与其下所有层对比加分, 下半区每层与其上所有层对比扣分,
// 各乘位置相关倍率; 奇数层数时中间层不变动。
func (r *GameRecord) applyRatings() {
	if r.teamRanks == nil {
		delta, ok := r.pairDelta(r.teams, r.winner)
		if !ok {
			return
		}
		for _, res := range r.players {
			d := -delta
			if res.CurrentTeam == r.winner {
				d = delta
			}
			r.commitDelta(res, d)
		}
		return
	}

	n := len(r.teamRanks)
	for i := 0; i < n/2; i++ {
		tier := r.teamRanks[i]
		delta, ok := r.pairDelta(r.teamRanks[i:], tier.Name)
		if !ok {
			continue
		}
		mult := float64(n) / 2 / float64(i+1)
		r.commitTier(tier.Name, delta*mult)
	}
	loserIdx := n/2 + n%2 // 奇数时跳过中间层
	for i := loserIdx; i < n; i++ {
		tier := r.teamRanks[i]
		delta, ok := r.pairDelta(r.teamRanks[:i+1], tier.Name)
		if !ok {
			continue
		}
		mult := float64(-n) / 2 / float64(n-i)
		r.commitTier(tier.Name, delta*mult)
	}
}

// pairDelta 以 own 方对阵池中其余队伍, 返回 K * 胜率。
// 任一侧人数为零 (单队局/未设胜者) 时返回 ok=false, 跳过积分计算。
func (r *GameRecord) pairDelta(pool []*player.Team, own string) (float64, bool) {
	var ownTotal, otherTotal float64
	var ownPop, otherPop int
	for _, t := range pool {
		if t.Name == own {
			ownTotal += t.AvgRating * float64(t.OriginalSize)
			ownPop += t.OriginalSize
		} else {
			otherTotal += t.AvgRating * float64(t.OriginalSize)
			otherPop += t.OriginalSize
		}
	}
	if ownPop == 0 || otherPop == 0 {
		return 0, false
	}
	ownAvg := ownTotal / float64(ownPop)
	otherAvg := otherTotal / float64(otherPop)
	winProbability := 1.0 / (1.0 + math.Pow(10, (otherAvg-ownAvg)/400))
	return r.cfg.RatingConstant * winProbability, true
}

func (r *GameRecord) commitTier(team string, delta float64) {
	for _, res := range r.players {
		if res.CurrentTeam == team {
			r.commitDelta(res, delta)
		}
	}
}

func (r *GameRecord) commitDelta(res *PlayerResult, delta float64) {
	res.RatingDelta = delta
	if p := r.findPlayer(res.UID); p != nil {
		p.AddRating(r.cfg.GameKey, delta, r.cfg.StartingRating)
	}
}
