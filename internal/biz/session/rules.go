package session

import (
	"sync"

	"minigame/internal/biz/player"
)

// Rules 按游戏类型挂接的规则钩子。对局核心不内置任何玩法,
// 具体玩法通过注册工厂接入; 未注册的游戏类型走空实现。
type Rules interface {
	// OnJoin 玩家入场后
	OnJoin(s *Session, p *player.Player)
	// OnRoundAdvance 回合推进后
	OnRoundAdvance(s *Session)
	// GameOver 是否已分出胜负
	GameOver(s *Session) (winner *player.Team, over bool)
	// LoserBonus 败方离场时的安慰奖券
	LoserBonus(s *Session, p *player.Player) int64
}

var (
	rulesMu      sync.RWMutex
	rulesFactory = make(map[string]func() Rules)
)

// RegisterRules 注册某游戏类型的规则工厂, 重复注册以后者为准
func RegisterRules(gameKey string, f func() Rules) {
	rulesMu.Lock()
	defer rulesMu.Unlock()
	rulesFactory[gameKey] = f
}

func rulesFor(gameKey string) Rules {
	rulesMu.RLock()
	f, ok := rulesFactory[gameKey]
	rulesMu.RUnlock()
	if !ok {
		return nopRules{}
	}
	return f()
}

type nopRules struct{}

func (nopRules) OnJoin(*Session, *player.Player)           {}
func (nopRules) OnRoundAdvance(*Session)                   {}
func (nopRules) GameOver(*Session) (*player.Team, bool)    { return nil, false }
func (nopRules) LoserBonus(*Session, *player.Player) int64 { return 0 }
