package stats

import (
	"time"
)

// PlayerRound 单回合内某玩家的事件台账
type PlayerRound struct {
	*Record
	UID  int64
	Name string
	Team string
}

// RoundRecord 单回合台账: 回合级字段 + 每玩家字段
type RoundRecord struct {
	*Record
	start   time.Time
	players map[int64]*PlayerRound
	order   []int64
}

func newRoundRecord() *RoundRecord {
	return &RoundRecord{
		Record:  NewRecord(),
		start:   time.Now(),
		players: make(map[int64]*PlayerRound),
	}
}

// Player returns the per-player ledger for this round, creating it lazily.
func (r *RoundRecord) Player(uid int64, name, team string) *PlayerRound {
	if pr, ok := r.players[uid]; ok {
		return pr
	}
	pr := &PlayerRound{Record: NewRecord(), UID: uid, Name: name, Team: team}
	r.players[uid] = pr
	r.order = append(r.order, uid)
	return pr
}

func (r *RoundRecord) Players() []*PlayerRound {
	out := make([]*PlayerRound, 0, len(r.order))
	for _, uid := range r.order {
		out = append(out, r.players[uid])
	}
	return out
}

func (r *RoundRecord) teamWon(team string) {
	r.Set("winning_team", team)
}

func (r *RoundRecord) end() {
	r.Set("length", time.Since(r.start))
}
