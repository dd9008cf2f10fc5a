package catalog

import (
	"fmt"
	"sort"

	"github.com/yola1107/kratos/v2/log"

	"minigame/internal/biz/world"
	"minigame/internal/conf"
)

// Arena 竞技场区域: 一局比赛的举办地
type Arena struct {
	ID      string
	GameKey string
	GroupID string
	Spawns  []world.Point // 按队伍顺序
	Exit    world.Point
	HasExit bool
}

// SpawnFor 第 i 支队伍的出生点, 不足时取模复用
func (a *Arena) SpawnFor(i int) world.Point {
	if len(a.Spawns) == 0 {
		return world.Point{}
	}
	return a.Spawns[i%len(a.Spawns)]
}

// Zone 排队区域: 玩家候场的位置, 归属某个竞技场分组
type Zone struct {
	ID      string
	GameKey string
	GroupID string
	Team    string // 非重组模式下本区整体成队的队名, 可为空
	Exit    world.Point
	HasExit bool
}

// Group 一个竞技场与喂给它的全部排队区
type Group struct {
	GameKey string
	GroupID string
	Arena   *Arena
	Zones   []*Zone
}

func (g *Group) Key() string { return g.GameKey + "/" + g.GroupID }

// Catalog 从区域表发现的大厅布局。构建后只读。
type Catalog struct {
	groups  map[string]*Group // gameKey/groupID
	byZone  map[string]*Group
	byArena map[string]*Group
	order   []string
}

// Discover 扫描区域表, 组装竞技场分组。
// 单条区域的问题 (未知游戏/缺分组/重复/坐标非法) 告警跳过, 不中断启动。
func Discover(hall *conf.Hall, logger log.Logger) *Catalog {
	lg := log.NewHelper(logger)
	c := &Catalog{
		groups:  make(map[string]*Group),
		byZone:  make(map[string]*Group),
		byArena: make(map[string]*Group),
	}

	arenas := make(map[string]*Arena)
	var zones []*Zone
	for _, r := range hall.Regions {
		if r == nil || r.ID == "" {
			continue
		}
		if hall.Game(r.Game) == nil {
			lg.Warnf("region %s: unknown game %q, skipped", r.ID, r.Game)
			continue
		}
		if r.GroupID == "" {
			lg.Warnf("region %s: no group id, skipped", r.ID)
			continue
		}
		key := r.Game + "/" + r.GroupID

		if r.Queue {
			z := &Zone{ID: r.ID, GameKey: r.Game, GroupID: r.GroupID, Team: r.Team}
			if r.Exit != "" {
				pt, err := world.ParsePoint(r.Exit)
				if err != nil {
					lg.Warnf("region %s: bad exit %q, skipped", r.ID, r.Exit)
					continue
				}
				z.Exit, z.HasExit = pt, true
			}
			zones = append(zones, z)
			continue
		}

		a := &Arena{ID: r.ID, GameKey: r.Game, GroupID: r.GroupID}
		if r.Exit != "" {
			pt, err := world.ParsePoint(r.Exit)
			if err != nil {
				lg.Warnf("region %s: bad exit %q, skipped", r.ID, r.Exit)
				continue
			}
			a.Exit, a.HasExit = pt, true
		}
		ok := true
		for _, s := range r.Spawns {
			pt, err := world.ParsePoint(s)
			if err != nil {
				lg.Warnf("region %s: bad spawn %q, skipped", r.ID, s)
				ok = false
				break
			}
			a.Spawns = append(a.Spawns, pt)
		}
		if !ok {
			continue
		}
		if prev, dup := arenas[key]; dup {
			lg.Warnf("region %s: group %s already has arena %s, skipped", r.ID, key, prev.ID)
			continue
		}
		arenas[key] = a
	}

	for _, z := range zones {
		key := z.GameKey + "/" + z.GroupID
		a, ok := arenas[key]
		if !ok {
			lg.Warnf("zone %s: group %s has no arena, skipped", z.ID, key)
			continue
		}
		g, ok := c.groups[key]
		if !ok {
			g = &Group{GameKey: z.GameKey, GroupID: z.GroupID, Arena: a}
			c.groups[key] = g
			c.byArena[a.ID] = g
			c.order = append(c.order, key)
		}
		if _, dup := c.byZone[z.ID]; dup {
			lg.Warnf("zone %s: duplicate id, skipped", z.ID)
			continue
		}
		g.Zones = append(g.Zones, z)
		c.byZone[z.ID] = g
	}

	for key, a := range arenas {
		if _, ok := c.groups[key]; !ok {
			lg.Warnf("arena %s: group %s has no queue zones, idle", a.ID, key)
		}
	}
	sort.Strings(c.order)
	lg.Infof("catalog: %d groups discovered", len(c.groups))
	return c
}

// Groups 全部分组, 按键名排序
func (c *Catalog) Groups() []*Group {
	out := make([]*Group, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.groups[key])
	}
	return out
}

func (c *Catalog) Group(gameKey, groupID string) *Group {
	return c.groups[gameKey+"/"+groupID]
}

// ZoneGroup 按排队区 ID 定位分组与区域
func (c *Catalog) ZoneGroup(zoneID string) (*Group, *Zone, error) {
	g, ok := c.byZone[zoneID]
	if !ok {
		return nil, nil, fmt.Errorf("zone %q not found", zoneID)
	}
	for _, z := range g.Zones {
		if z.ID == zoneID {
			return g, z, nil
		}
	}
	return nil, nil, fmt.Errorf("zone %q not found", zoneID)
}

// ArenaGroup 按竞技场 ID 定位分组
func (c *Catalog) ArenaGroup(arenaID string) (*Group, bool) {
	g, ok := c.byArena[arenaID]
	return g, ok
}
