package player

import (
	"fmt"
	"time"

	"minigame/internal/biz/world"
)

// Profile 玩家的持久化账本: 代币/奖券余额, 累计计数, 通行证与各游戏积分
type Profile struct {
	UID           int64              `json:"uid"`
	Name          string             `json:"name"`
	Tokens        int64              `json:"tokens"`
	Tickets       int64              `json:"tickets"`
	TokensSpent   int64              `json:"tokensSpent"`
	TicketsEarned int64              `json:"ticketsEarned"`
	SessionCount  int32              `json:"sessionCount"`
	PassExpiry    int64              `json:"passExpiry"` // unix 秒, 在此之前通行证有效
	JoinedAt      int64              `json:"joinedAt"`
	Ratings       map[string]float64 `json:"ratings"` // gameKey -> 积分/最高分
}

// Player 在线玩家实体。仅在工作循环上读写, 不加锁。
type Player struct {
	profile *Profile

	sessionID int64  // 0 表示不在对局中
	zoneID    string // "" 表示不在排队区
	teamName  string

	kit      []world.Item // 入场时的背包快照
	kitSaved bool
	charged  int64 // 本局实际扣除的代币, 退款时使用
}

func New(profile *Profile) *Player {
	if profile.Ratings == nil {
		profile.Ratings = make(map[string]float64)
	}
	return &Player{profile: profile}
}

func (p *Player) ID() int64         { return p.profile.UID }
func (p *Player) Name() string      { return p.profile.Name }
func (p *Player) Profile() *Profile { return p.profile }

func (p *Player) Desc() string {
	return fmt.Sprintf("[%d %s tokens=%d tickets=%d session=%d zone=%q]",
		p.profile.UID, p.profile.Name, p.profile.Tokens, p.profile.Tickets, p.sessionID, p.zoneID)
}

/*
	经济账本
*/

func (p *Player) Tokens() int64  { return p.profile.Tokens }
func (p *Player) Tickets() int64 { return p.profile.Tickets }

// PassActive 通行证是否仍在有效期内
func (p *Player) PassActive(now time.Time) bool {
	return p.profile.PassExpiry > now.Unix()
}

func (p *Player) SetPassExpiry(at time.Time) { p.profile.PassExpiry = at.Unix() }

// HasTokens 余额是否足以支付入场费; 有通行证时永远为真
func (p *Player) HasTokens(amt int64, now time.Time) bool {
	return p.PassActive(now) || p.profile.Tokens > amt
}

// TakeTokens 扣除入场费, 返回实际扣除数。通行证有效时免单。
func (p *Player) TakeTokens(amt int64, now time.Time) int64 {
	if amt <= 0 || p.PassActive(now) {
		return 0
	}
	p.profile.Tokens -= amt
	p.profile.TokensSpent += amt
	return amt
}

// RefundTokens 返还入场费
func (p *Player) RefundTokens(amt int64) {
	if amt <= 0 {
		return
	}
	p.profile.Tokens += amt
	p.profile.TokensSpent -= amt
}

func (p *Player) SetTokens(amt int64)  { p.profile.Tokens = amt }
func (p *Player) SetTickets(amt int64) { p.profile.Tickets = amt }

// AwardTickets 发放奖券, 返回实际到账数 (调用方先乘好全局倍率)
func (p *Player) AwardTickets(amt int64) int64 {
	if amt <= 0 {
		return 0
	}
	p.profile.Tickets += amt
	p.profile.TicketsEarned += amt
	return amt
}

/*
	各游戏积分 (积分模式的 elo, 或主成绩模式的最高分)
*/

// Rating 读取积分, 不存在时落缺省值
func (p *Player) Rating(gameKey string, def float64) float64 {
	if v, ok := p.profile.Ratings[gameKey]; ok {
		return v
	}
	p.profile.Ratings[gameKey] = def
	return def
}

func (p *Player) SetRating(gameKey string, v float64) {
	p.profile.Ratings[gameKey] = v
}

func (p *Player) AddRating(gameKey string, delta float64, def float64) {
	p.profile.Ratings[gameKey] = p.Rating(gameKey, def) + delta
}

/*
	对局/排队占位
*/

func (p *Player) SessionID() int64 { return p.sessionID }
func (p *Player) ZoneID() string   { return p.zoneID }
func (p *Player) TeamName() string { return p.teamName }

func (p *Player) InSession() bool { return p.sessionID != 0 }
func (p *Player) Queued() bool    { return p.zoneID != "" }

func (p *Player) EnterSession(sessionID int64, team string, charged int64, kit []world.Item) {
	p.sessionID = sessionID
	p.teamName = team
	p.charged = charged
	p.kit = kit
	p.kitSaved = true
	p.profile.SessionCount++
}

func (p *Player) SetTeamName(team string) { p.teamName = team }

func (p *Player) Charged() int64 { return p.charged }

// LeaveSession 清除对局占位, 返回入场时的背包快照
func (p *Player) LeaveSession() []world.Item {
	kit := p.kit
	p.sessionID = 0
	p.teamName = ""
	p.charged = 0
	p.kit = nil
	p.kitSaved = false
	return kit
}

func (p *Player) EnterZone(zoneID string) { p.zoneID = zoneID }
func (p *Player) LeaveZone()              { p.zoneID = "" }
