package lobby

import (
	"math/rand"
	"sort"

	"minigame/internal/biz/player"
)

// formTeams 把候场玩家切成参赛队伍。
// 非重组模式: 一个排队区整体成一队。
// 重组模式: 全组混池, 人不够就减队伍数; 可选等人数裁剪与按积分配平。
// 返回队伍与未被选中需留队的玩家。
func (g *Group) formTeams() ([]*player.Team, []*player.Player) {
	def := 0.0
	if g.game.RatingMode() {
		def = g.repo.GetGlobal().StartingRating
	}

	if !g.game.TeamRebalanced {
		var teams []*player.Team
		for _, q := range g.queues {
			if q.Size() == 0 {
				continue
			}
			name := q.zone.Team
			if name == "" {
				name = q.zone.ID
			}
			teams = append(teams, player.NewTeam(name, q.Players(), g.game.Key, def))
		}
		return teams, nil
	}

	pool := g.AllPlayers()
	var retained []*player.Player

	amtTeams := int(g.game.MaxTeams)
	teamSize := len(pool) / amtTeams
	for teamSize < int(g.game.MinTeamSize) && amtTeams > 1 {
		amtTeams--
		teamSize = len(pool) / amtTeams
	}

	if g.game.EqualTeamSize {
		// 从队尾裁到能整除为止
		for len(pool)%teamSize != 0 {
			retained = append(retained, pool[len(pool)-1])
			pool = pool[:len(pool)-1]
		}
		amtTeams = len(pool) / teamSize
	} else if extra := len(pool) - amtTeams*teamSize; extra > 0 {
		retained = append(retained, pool[len(pool)-extra:]...)
		pool = pool[:len(pool)-extra]
	}

	if g.game.RankBalanced {
		pool = rankBalance(pool, g.game.Key, def)
	} else {
		rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	}

	teams := make([]*player.Team, 0, amtTeams)
	for i := 0; i < amtTeams; i++ {
		members := pool[i*teamSize : (i+1)*teamSize]
		teams = append(teams, player.NewTeam(members[0].Name(), members, g.game.Key, def))
	}
	return teams, retained
}

// rankBalance 按积分升序后前后交错重排, 切块后各队强弱大致相当
func rankBalance(pool []*player.Player, gameKey string, def float64) []*player.Player {
	sorted := append([]*player.Player(nil), pool...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rating(gameKey, def) < sorted[j].Rating(gameKey, def)
	})

	n := len(sorted)
	out := make([]*player.Player, 0, n)
	for i := 0; i < n; i += 2 {
		out = append(out, sorted[i])
	}
	end := n - 1
	if n%2 != 0 {
		end = n - 2
	}
	for i := end; i > 0; i -= 2 {
		out = append(out, sorted[i])
	}
	return out
}
