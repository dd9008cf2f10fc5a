package conf

import (
	"fmt"
	"strings"

	"github.com/yola1107/kratos/v2/config"
	"github.com/yola1107/kratos/v2/config/file"
	"github.com/yola1107/kratos/v2/library/log/zap"
	"github.com/yola1107/kratos/v2/log"
)

const Name = "minigame"
const Version = "v0.0.1"

// Bootstrap 进程启动配置
type Bootstrap struct {
	Server *Server `json:"server"`
	Data   *Data   `json:"data"`
	Log    *Log    `json:"log"`
	Hall   *Hall   `json:"hall"`
}

type Server struct {
	HTTP *HTTP `json:"http"`
}

type HTTP struct {
	Network string `json:"network"`
	Addr    string `json:"addr"`
	Timeout int64  `json:"timeout"` // seconds
}

type Data struct {
	Redis *Redis `json:"redis"`
}

type Redis struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int32  `json:"db"`
}

type Log struct {
	Level      string `json:"level"`
	Directory  string `json:"directory"`
	SessionDir string `json:"sessionDir"` // 每局独立日志目录
}

// Hall 大厅配置: 全局经济参数 + 游戏类型表 + 区域表
type Hall struct {
	Global  *Global   `json:"global"`
	Games   []*Game   `json:"games"`
	Regions []*Region `json:"regions"`
}

type Global struct {
	StartingRating   float64 `json:"startingRating"`   // 新玩家初始积分
	RatingConstant   float64 `json:"ratingConstant"`   // 积分转移系数 K
	TicketTokenRatio float64 `json:"ticketTokenRatio"` // 默认奖券与投入代币的兑换比
	TicketMultiplier float64 `json:"ticketMultiplier"` // 奖券发放的全局倍率
	FirstJoinTokens  int64   `json:"firstJoinTokens"`  // 首次登录赠送代币
	PassName         string  `json:"passName"`         // 通行证名称
}

// Game 单个游戏类型的配置项（配置表驱动，不使用硬编码枚举）
type Game struct {
	Key         string `json:"key"`
	DisplayName string `json:"displayName"`

	TokenCost    int64 `json:"tokenCost"`
	TicketReward int64 `json:"ticketReward"` // <0 表示按 startingPlayers*tokenCost*ratio 计算

	MinTeams    int32 `json:"minTeams"`
	MaxTeams    int32 `json:"maxTeams"`
	MinTeamSize int32 `json:"minTeamSize"`
	MaxTeamSize int32 `json:"maxTeamSize"` // <=0 表示不限人数

	MaxWaitTime int64 `json:"maxWaitTime"` // 秒; <0 关闭排队超时自动开局
	LobbyDelay  int64 `json:"lobbyDelay"`  // 开局倒计时秒数; 0 表示立即开局

	LateJoinAllowed bool `json:"lateJoinAllowed"`
	TeamRebalanced  bool `json:"teamRebalanced"`
	RankBalanced    bool `json:"rankBalanced"`
	EqualTeamSize   bool `json:"equalTeamSize"`

	PrimaryScore   string `json:"primaryScore"` // 空或 "elo" 表示积分模式
	ScoreAggregate bool   `json:"scoreAggregate"`

	Blueprint     string `json:"blueprint"` // 开局时放置的结构蓝图, 可为空
	LobbyMessage  string `json:"lobbyMessage"`
	LaunchMessage string `json:"launchMessage"`
}

// RequiredPlayers 开局所需的最小总人数
func (g *Game) RequiredPlayers() int {
	return int(g.MinTeams) * int(g.MinTeamSize)
}

// MaxPlayers 满员人数; MaxTeamSize<=0 时无上限
func (g *Game) MaxPlayers() int {
	if g.MaxTeamSize <= 0 {
		return int(^uint(0) >> 1)
	}
	return int(g.MaxTeams) * int(g.MaxTeamSize)
}

// RatingMode 是否以积分作为主成绩
func (g *Game) RatingMode() bool {
	return g.PrimaryScore == "" || strings.EqualFold(g.PrimaryScore, "elo")
}

// Region 世界区域的元数据项, 用于竞技场/排队区的发现
type Region struct {
	ID      string   `json:"id"`
	Game    string   `json:"game"`    // 游戏Key; 设置了 Queue 的为排队区, 否则为竞技场
	Queue   bool     `json:"queue"`   // true 表示排队区
	GroupID string   `json:"groupId"` // 同一竞技场实例下的排队区分组
	Team    string   `json:"team"`    // 排队区绑定的队名, 可为空
	Exit    string   `json:"exit"`    // "x=?,y=?,z=?" 离场传送点, 可为空
	Spawns  []string `json:"spawns"`  // 竞技场出生点, 按队伍顺序
}

func (h *Hall) Game(key string) *Game {
	for _, g := range h.Games {
		if g != nil && g.Key == key {
			return g
		}
	}
	return nil
}

// LoadConfig 加载配置
func LoadConfig(flagconf string) (config.Config, *Bootstrap) {
	c := config.New(
		config.WithSource(
			file.NewSource(flagconf),
		),
	)

	if err := c.Load(); err != nil {
		panic(err)
	}

	var bc Bootstrap
	if err := c.Scan(&bc); err != nil {
		panic(fmt.Errorf("bootstrap config invalid: %w", err))
	}
	if err := Validate(&bc); err != nil {
		panic(fmt.Errorf("bootstrap config invalid: %w", err))
	}

	return c, &bc
}

// Validate 启动前的基本校验; 区域表的问题在发现阶段告警跳过, 不在这里拦截
func Validate(bc *Bootstrap) error {
	if bc.Server == nil || bc.Server.HTTP == nil {
		return fmt.Errorf("server.http missing")
	}
	if bc.Data == nil || bc.Data.Redis == nil {
		return fmt.Errorf("data.redis missing")
	}
	if bc.Hall == nil || bc.Hall.Global == nil {
		return fmt.Errorf("hall.global missing")
	}
	seen := map[string]bool{}
	for _, g := range bc.Hall.Games {
		if g.Key == "" {
			return fmt.Errorf("hall.games entry without key")
		}
		if seen[g.Key] {
			return fmt.Errorf("hall.games duplicate key %q", g.Key)
		}
		seen[g.Key] = true
		if g.MinTeams <= 0 || g.MaxTeams < g.MinTeams || g.MinTeamSize <= 0 {
			return fmt.Errorf("hall.games[%s] team bounds invalid", g.Key)
		}
	}
	return nil
}

// WatchConfig 监听配置变更
func WatchConfig(c config.Config, bc *Bootstrap, logger *zap.Logger) error {
	if err := c.Watch("log", func(_ string, val config.Value) {
		nc := &Log{}
		if err := val.Scan(nc); err != nil {
			log.Errorf("[config] scan log failed: %v", err)
			return
		}
		if nc.Level != "" && nc.Level != logger.GetLevel() {
			logger.SetLevel(nc.Level)
		}
		bc.Log = nc
	}); err != nil {
		return fmt.Errorf("watch log failed: %w", err)
	}

	if err := c.Watch("hall", func(_ string, val config.Value) {
		nc := &Hall{}
		if err := val.Scan(nc); err != nil {
			log.Errorf("[config] scan hall failed: %v", err)
			return
		}
		log.Warnf("[config] hall updated: games=%d regions=%d", len(nc.Games), len(nc.Regions))
		*bc.Hall = *nc
	}); err != nil {
		return fmt.Errorf("watch hall failed: %w", err)
	}
	return nil
}
