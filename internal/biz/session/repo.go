package session

import (
	"github.com/yola1107/kratos/v2/library/work"

	"minigame/internal/biz/player"
	"minigame/internal/biz/stats"
	"minigame/internal/biz/world"
	"minigame/internal/conf"
)

// Repo 抽象接口
type Repo interface {
	GetLoop() work.Loop
	GetTimer() work.Scheduler
	GetGlobal() *conf.Global
	GetSessionLogDir() string

	World() world.Ops
	Placer() world.Placer

	SaveProfile(p *player.Profile)
	SaveRecord(rec *stats.GameRecord)

	// OnSessionClosed 对局落幕后回调 (竞技场已释放, 排队可重启)
	OnSessionClosed(sessionID int64, arenaID string)
}
