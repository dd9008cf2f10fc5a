package lobby

import (
	"fmt"
	"testing"
	"time"

	"github.com/yola1107/kratos/v2/library/work"

	"minigame/internal/biz/catalog"
	"minigame/internal/biz/player"
	"minigame/internal/biz/world"
	"minigame/internal/conf"
	"minigame/pkg/codes"
)

type syncLoop struct{ work.Loop }

func (syncLoop) Post(f func()) { f() }

type fakeTimer struct {
	work.Scheduler
	nextID int64
	tasks  map[int64]func()
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{tasks: make(map[int64]func())}
}

func (t *fakeTimer) Once(_ time.Duration, f func()) int64 {
	t.nextID++
	t.tasks[t.nextID] = f
	return t.nextID
}

func (t *fakeTimer) Forever(_ time.Duration, f func()) int64 {
	t.nextID++
	t.tasks[t.nextID] = f
	return t.nextID
}

func (t *fakeTimer) Cancel(id int64) { delete(t.tasks, id) }

func (t *fakeTimer) fire(id int64) {
	if f, ok := t.tasks[id]; ok {
		f()
	}
}

type launchCall struct {
	arena *catalog.Arena
	teams []*player.Team
}

type fakeRepo struct {
	timer  *fakeTimer
	global *conf.Global

	busy     bool
	launches []launchCall
	rejectUI map[int64]bool // 模拟入场扣费失败
}

func newLobbyRepo() *fakeRepo {
	return &fakeRepo{
		timer:    newFakeTimer(),
		global:   &conf.Global{StartingRating: 1000, RatingConstant: 30},
		rejectUI: map[int64]bool{},
	}
}

func (r *fakeRepo) GetLoop() work.Loop       { return syncLoop{} }
func (r *fakeRepo) GetTimer() work.Scheduler { return r.timer }
func (r *fakeRepo) GetGlobal() *conf.Global  { return r.global }
func (r *fakeRepo) World() world.Ops         { return world.NewNop() }
func (r *fakeRepo) ArenaBusy(string) bool    { return r.busy }

func (r *fakeRepo) Launch(arena *catalog.Arena, game *conf.Game, teams []*player.Team) ([]*player.Player, error) {
	var rejected []*player.Player
	sid := int64(len(r.launches) + 1)
	for _, t := range teams {
		for _, p := range append([]*player.Player(nil), t.Players...) {
			if r.rejectUI[p.ID()] {
				t.Remove(p.ID())
				rejected = append(rejected, p)
				continue
			}
			p.EnterSession(sid, t.Name, game.TokenCost, nil)
		}
	}
	r.launches = append(r.launches, launchCall{arena: arena, teams: teams})
	return rejected, nil
}

func rebalancedGame() *conf.Game {
	return &conf.Game{
		Key: "spleef", DisplayName: "Spleef",
		TokenCost: 10,
		MinTeams:  2, MaxTeams: 2,
		MinTeamSize: 1, MaxTeamSize: 8,
		MaxWaitTime:    30,
		TeamRebalanced: true,
	}
}

func zonedGroup(game string, zones ...string) *catalog.Group {
	g := &catalog.Group{
		GameKey: game, GroupID: "a",
		Arena: &catalog.Arena{ID: game + "-a", GameKey: game},
	}
	for _, z := range zones {
		g.Zones = append(g.Zones, &catalog.Zone{ID: z, GameKey: game, GroupID: "a", Team: z})
	}
	return g
}

func queuedPlayer(uid int64, rating float64) *player.Player {
	return player.New(&player.Profile{
		UID: uid, Name: fmt.Sprintf("p%d", uid), Tokens: 100,
		Ratings: map[string]float64{"spleef": rating},
	})
}

func TestJoinGates(t *testing.T) {
	repo := newLobbyRepo()
	game := rebalancedGame()
	g := NewGroup(repo, game, zonedGroup("spleef", "q1"))

	p := queuedPlayer(1, 1000)
	if err := g.Join(p, "nosuch"); err != codes.ErrZoneNotFound {
		t.Fatalf("err = %v, want ErrZoneNotFound", err)
	}
	if err := g.Join(p, "q1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if !p.Queued() || p.ZoneID() != "q1" {
		t.Fatalf("player not queued: %s", p.ZoneID())
	}
	if err := g.Join(p, "q1"); err != codes.ErrAlreadyQueued {
		t.Fatalf("err = %v, want ErrAlreadyQueued", err)
	}

	broke := player.New(&player.Profile{UID: 2, Name: "broke", Tokens: 10}) // 需要 > 10
	if err := g.Join(broke, "q1"); err != codes.ErrInsufficientToken {
		t.Fatalf("err = %v, want ErrInsufficientToken", err)
	}
}

func TestJoinArmsQueueTimerLeaveDisarms(t *testing.T) {
	repo := newLobbyRepo()
	g := NewGroup(repo, rebalancedGame(), zonedGroup("spleef", "q1"))

	p := queuedPlayer(1, 1000)
	if err := g.Join(p, "q1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if g.queueTimer == 0 {
		t.Fatal("queue timer should be armed on first join")
	}
	if err := g.Leave(p.ID()); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if g.queueTimer != 0 {
		t.Fatal("queue timer should be cancelled when empty")
	}
	if err := g.Leave(p.ID()); err != codes.ErrNotQueued {
		t.Fatalf("err = %v, want ErrNotQueued", err)
	}
}

func TestQueueTimeoutForcesStart(t *testing.T) {
	repo := newLobbyRepo()
	game := rebalancedGame()
	game.MinTeamSize = 2 // 需要 4 人满足, 满员 16
	g := NewGroup(repo, game, zonedGroup("spleef", "q1"))

	for uid := int64(1); uid <= 4; uid++ {
		if err := g.Join(queuedPlayer(uid, 1000), "q1"); err != nil {
			t.Fatalf("join %d: %v", uid, err)
		}
	}
	// 不满员不立即开, 等排队超时强开
	if len(repo.launches) != 0 {
		t.Fatal("should not start before timeout")
	}
	repo.timer.fire(g.queueTimer)
	if len(repo.launches) != 1 {
		t.Fatalf("launches = %d, want 1", len(repo.launches))
	}
	if g.TotalPlayers() != 0 {
		t.Fatalf("queue not cleared: %d", g.TotalPlayers())
	}
	if g.queueTimer != 0 {
		t.Fatal("queue timer should be cancelled after start")
	}
}

func TestFullQueueStartsImmediately(t *testing.T) {
	repo := newLobbyRepo()
	game := rebalancedGame()
	game.MaxTeamSize = 1 // 满员 = 2
	g := NewGroup(repo, game, zonedGroup("spleef", "q1"))

	if err := g.Join(queuedPlayer(1, 1000), "q1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := g.Join(queuedPlayer(2, 1000), "q1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if len(repo.launches) != 1 {
		t.Fatalf("launches = %d, want 1", len(repo.launches))
	}
}

func TestCountdownThenStart(t *testing.T) {
	repo := newLobbyRepo()
	game := rebalancedGame()
	game.MaxTeamSize = 1 // 满员 = 2
	game.LobbyDelay = 3
	g := NewGroup(repo, game, zonedGroup("spleef", "q1"))

	g.Join(queuedPlayer(1, 1000), "q1")
	g.Join(queuedPlayer(2, 1000), "q1")

	if g.countdown == nil {
		t.Fatal("countdown should be live")
	}
	if len(repo.launches) != 0 {
		t.Fatal("must not start before countdown ends")
	}
	id := g.countdown.taskID
	repo.timer.fire(id) // 2
	repo.timer.fire(id) // 1
	repo.timer.fire(id) // 0 -> 强开
	if len(repo.launches) != 1 {
		t.Fatalf("launches = %d, want 1", len(repo.launches))
	}
	if g.countdown != nil {
		t.Fatal("countdown should be cleared")
	}
}

func TestCountdownCancelledWhenEmpty(t *testing.T) {
	repo := newLobbyRepo()
	game := rebalancedGame()
	game.MaxTeamSize = 1
	game.LobbyDelay = 10
	g := NewGroup(repo, game, zonedGroup("spleef", "q1"))

	a := queuedPlayer(1, 1000)
	b := queuedPlayer(2, 1000)
	g.Join(a, "q1")
	g.Join(b, "q1")
	if g.countdown == nil {
		t.Fatal("countdown should be live")
	}
	g.Leave(a.ID())
	g.Leave(b.ID())
	if g.countdown != nil {
		t.Fatal("countdown should die with the queue")
	}
}

func TestBusyArenaRearmsQueue(t *testing.T) {
	repo := newLobbyRepo()
	repo.busy = true
	game := rebalancedGame()
	game.MaxTeamSize = 1
	g := NewGroup(repo, game, zonedGroup("spleef", "q1"))

	g.Join(queuedPlayer(1, 1000), "q1")
	g.Join(queuedPlayer(2, 1000), "q1")
	if len(repo.launches) != 0 {
		t.Fatal("must not launch on busy arena")
	}
	if g.queueTimer == 0 {
		t.Fatal("queue timer should be re-armed")
	}
	if g.TotalPlayers() != 2 {
		t.Fatalf("players dropped: %d", g.TotalPlayers())
	}
}

func TestRejectedPlayersStayQueued(t *testing.T) {
	repo := newLobbyRepo()
	repo.rejectUI[2] = true
	game := rebalancedGame()
	game.MaxTeamSize = 1
	g := NewGroup(repo, game, zonedGroup("spleef", "q1"))

	g.Join(queuedPlayer(1, 1000), "q1")
	g.Join(queuedPlayer(2, 1000), "q1")
	if len(repo.launches) != 1 {
		t.Fatalf("launches = %d", len(repo.launches))
	}
	if g.TotalPlayers() != 1 {
		t.Fatalf("retained = %d, want 1", g.TotalPlayers())
	}
	if g.AllPlayers()[0].ID() != 2 {
		t.Fatal("wrong player retained")
	}
	if g.queueTimer == 0 {
		t.Fatal("queue timer should be re-armed for the retained player")
	}
}

func TestNonRebalancedZoneMinimum(t *testing.T) {
	repo := newLobbyRepo()
	game := rebalancedGame()
	game.TeamRebalanced = false
	game.MinTeamSize = 2
	game.MaxTeamSize = 2
	g := NewGroup(repo, game, zonedGroup("spleef", "red", "blue"))

	g.Join(queuedPlayer(1, 1000), "red")
	g.Join(queuedPlayer(2, 1000), "red")
	g.Join(queuedPlayer(3, 1000), "blue")
	// blue 区只有 1 人, 不到每队下限
	if got := g.AttemptStart(false, true, true); got {
		t.Fatal("must not start with a short zone")
	}

	g.Join(queuedPlayer(4, 1000), "blue")
	if len(repo.launches) != 1 {
		t.Fatalf("launches = %d, want 1", len(repo.launches))
	}
	teams := repo.launches[0].teams
	if len(teams) != 2 || teams[0].Name != "red" || teams[1].Name != "blue" {
		t.Fatalf("teams = %+v", teams)
	}
}

func TestZoneCapacityNonRebalanced(t *testing.T) {
	repo := newLobbyRepo()
	game := rebalancedGame()
	game.TeamRebalanced = false
	game.MinTeamSize = 1
	game.MaxTeamSize = 1
	game.LobbyDelay = 60 // 挡住自动开局, 只验容量
	g := NewGroup(repo, game, zonedGroup("spleef", "red", "blue"))

	if err := g.Join(queuedPlayer(1, 1000), "red"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := g.Join(queuedPlayer(2, 1000), "red"); err != codes.ErrZoneFull {
		t.Fatalf("err = %v, want ErrZoneFull", err)
	}
}
