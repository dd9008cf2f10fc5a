package lobby

import (
	"github.com/yola1107/kratos/v2/library/work"

	"minigame/internal/biz/catalog"
	"minigame/internal/biz/player"
	"minigame/internal/biz/world"
	"minigame/internal/conf"
)

// Repo 抽象接口
type Repo interface {
	GetLoop() work.Loop
	GetTimer() work.Scheduler
	GetGlobal() *conf.Global

	World() world.Ops

	// ArenaBusy 竞技场是否有在局
	ArenaBusy(arenaID string) bool
	// Launch 把成队玩家送入对局, 返回未能入场需回队保留的玩家
	Launch(arena *catalog.Arena, game *conf.Game, teams []*player.Team) (rejected []*player.Player, err error)
}
