package player

// Team 组队快照。OriginalSize 与 AvgRating 在成队时固定,
// 之后只有 Players 会因踢人而缩小。
type Team struct {
	Name         string
	Players      []*Player
	OriginalSize int
	AvgRating    float64
}

// NewTeam snapshots size and average incoming rating at formation time.
func NewTeam(name string, players []*Player, gameKey string, defRating float64) *Team {
	total := 0.0
	for _, p := range players {
		total += p.Rating(gameKey, defRating)
	}
	avg := 0.0
	if len(players) > 0 {
		avg = total / float64(len(players))
	}
	return &Team{
		Name:         name,
		Players:      players,
		OriginalSize: len(players),
		AvgRating:    avg,
	}
}

func (t *Team) Size() int { return len(t.Players) }

func (t *Team) Contains(uid int64) bool {
	for _, p := range t.Players {
		if p.ID() == uid {
			return true
		}
	}
	return false
}

// Remove 从队伍移除玩家, 返回是否命中
func (t *Team) Remove(uid int64) bool {
	for i, p := range t.Players {
		if p.ID() == uid {
			t.Players = append(t.Players[:i], t.Players[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Team) Add(p *Player) {
	t.Players = append(t.Players, p)
}

func (t *Team) UIDs() []int64 {
	out := make([]int64, 0, len(t.Players))
	for _, p := range t.Players {
		out = append(out, p.ID())
	}
	return out
}
