package session

import (
	"fmt"

	"github.com/yola1107/kratos/v2/library/log/file"

	"minigame/internal/biz/player"
)

// sessLog 每局独立的落盘日志
type sessLog struct {
	logger *file.Log
}

func newSessLog(dir string, sessionID int64) *sessLog {
	if dir == "" {
		return &sessLog{}
	}
	return &sessLog{logger: file.NewFileLog(fmt.Sprintf("%s/session_%d.log", dir, sessionID))}
}

func (l *sessLog) Close() error {
	if l.logger == nil {
		return nil
	}
	return l.logger.Sync()
}

func (l *sessLog) write(msg string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.WriteLog(msg, args...)
}

func (l *sessLog) launch(gameKey, arenaID string, teams int, players int) {
	l.write("[开局] 游戏:%s 场地:%s 队伍(%d) 人数(%d)", gameKey, arenaID, teams, players)
}

func (l *sessLog) join(p *player.Player, team string, charged int64) {
	l.write("[入场] 玩家:%+v 队伍:%s 扣费(%d)", p.Desc(), team, charged)
}

func (l *sessLog) kick(p *player.Player, reason string) {
	l.write("[出局] 玩家:%+v 原因:%s", p.Desc(), reason)
}

func (l *sessLog) leave(p *player.Player, tickets int64) {
	l.write("[离场] 玩家:%+v 奖券(%d)", p.Desc(), tickets)
}

func (l *sessLog) round(idx int, winner string) {
	l.write("[回合] 第%d回合结束 胜方:%s", idx, winner)
}

func (l *sessLog) finish(winner string, aborted bool) {
	l.write("[终局] 胜方:%s 中止(%v)", winner, aborted)
}
