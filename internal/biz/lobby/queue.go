package lobby

import (
	"minigame/internal/biz/catalog"
	"minigame/internal/biz/player"
)

// Queue 单个排队区的候场序列, 按入队顺序保留
type Queue struct {
	zone    *catalog.Zone
	players []*player.Player
}

func newQueue(zone *catalog.Zone) *Queue {
	return &Queue{zone: zone}
}

func (q *Queue) ZoneID() string { return q.zone.ID }
func (q *Queue) Size() int      { return len(q.players) }

func (q *Queue) Players() []*player.Player {
	return append([]*player.Player(nil), q.players...)
}

func (q *Queue) contains(uid int64) bool {
	for _, p := range q.players {
		if p.ID() == uid {
			return true
		}
	}
	return false
}

func (q *Queue) add(p *player.Player) {
	q.players = append(q.players, p)
	p.EnterZone(q.zone.ID)
}

func (q *Queue) remove(uid int64) *player.Player {
	for i, p := range q.players {
		if p.ID() == uid {
			q.players = append(q.players[:i], q.players[i+1:]...)
			p.LeaveZone()
			return p
		}
	}
	return nil
}

// clear 清空候场序列。retain 中的玩家留队, 已入局的只解除排队占位,
// 其余被撤出的传送离场。
func (q *Queue) clear(retain map[int64]bool, evict func(p *player.Player)) {
	var kept []*player.Player
	for _, p := range q.players {
		if retain[p.ID()] {
			kept = append(kept, p)
			continue
		}
		p.LeaveZone()
		if !p.InSession() {
			evict(p)
		}
	}
	q.players = kept
}
