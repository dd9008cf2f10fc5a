package stats

import (
	"io"
	"math"
	"testing"

	"github.com/yola1107/kratos/v2/log"

	"minigame/internal/biz/player"
)

func newTestPlayer(uid int64, name string, rating float64) *player.Player {
	return player.New(&player.Profile{
		UID:     uid,
		Name:    name,
		Ratings: map[string]float64{"spleef": rating},
	})
}

func newTestRecord(teams ...*player.Team) *GameRecord {
	cfg := Config{
		GameKey:        "spleef",
		RatingConstant: 30,
		StartingRating: 1000,
	}
	return NewGameRecord(cfg, teams, log.NewStdLogger(io.Discard))
}

func closeTo(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRatingEqualTeamsSymmetric(t *testing.T) {
	red := player.NewTeam("red", []*player.Player{
		newTestPlayer(1, "a", 1000), newTestPlayer(2, "b", 1000),
	}, "spleef", 1000)
	blue := player.NewTeam("blue", []*player.Player{
		newTestPlayer(3, "c", 1000), newTestPlayer(4, "d", 1000),
	}, "spleef", 1000)

	r := newTestRecord(red, blue)
	r.SetGameWinner(red)
	r.Finalize()

	// 均分 1000 对 1000, 胜率 0.5, K=30 → ±15
	for _, p := range red.Players {
		if got := p.Rating("spleef", 0); !closeTo(got, 1015) {
			t.Fatalf("winner rating = %v, want 1015", got)
		}
	}
	for _, p := range blue.Players {
		if got := p.Rating("spleef", 0); !closeTo(got, 985) {
			t.Fatalf("loser rating = %v, want 985", got)
		}
	}
}

func TestRatingZeroSumPerPlayer(t *testing.T) {
	red := player.NewTeam("red", []*player.Player{
		newTestPlayer(1, "a", 1200), newTestPlayer(2, "b", 1100),
	}, "spleef", 1000)
	blue := player.NewTeam("blue", []*player.Player{
		newTestPlayer(3, "c", 900), newTestPlayer(4, "d", 950),
	}, "spleef", 1000)

	r := newTestRecord(red, blue)
	r.SetGameWinner(red)
	r.Finalize()

	var winnerDelta, loserDelta float64
	for _, res := range r.Results() {
		if res.CurrentTeam == "red" {
			winnerDelta = res.RatingDelta
		} else {
			loserDelta = res.RatingDelta
		}
	}
	// 胜率高的一方获胜, 变动大于均势的 15
	if winnerDelta <= 15 {
		t.Fatalf("favorite winner delta = %v, want > 15", winnerDelta)
	}
	if !closeTo(winnerDelta+loserDelta, 0) {
		t.Fatalf("deltas not symmetric: %v vs %v", winnerDelta, loserDelta)
	}
}

func TestWinnerSetTwiceKeepsFirst(t *testing.T) {
	red := player.NewTeam("red", []*player.Player{newTestPlayer(1, "a", 1000)}, "spleef", 1000)
	blue := player.NewTeam("blue", []*player.Player{newTestPlayer(2, "b", 1000)}, "spleef", 1000)

	r := newTestRecord(red, blue)
	r.SetGameWinner(red)
	r.SetGameWinner(blue)
	if r.Winner() != "red" {
		t.Fatalf("winner = %q, want red", r.Winner())
	}
}

func TestFinalizeTwiceAppliesOnce(t *testing.T) {
	red := player.NewTeam("red", []*player.Player{newTestPlayer(1, "a", 1000)}, "spleef", 1000)
	blue := player.NewTeam("blue", []*player.Player{newTestPlayer(2, "b", 1000)}, "spleef", 1000)

	r := newTestRecord(red, blue)
	r.SetGameWinner(red)
	r.Finalize()
	r.Finalize()

	if got := red.Players[0].Rating("spleef", 0); !closeTo(got, 1015) {
		t.Fatalf("rating = %v, want 1015", got)
	}
}

func TestFinalizeWithoutWinnerSkipsRatings(t *testing.T) {
	red := player.NewTeam("red", []*player.Player{newTestPlayer(1, "a", 1000)}, "spleef", 1000)
	blue := player.NewTeam("blue", []*player.Player{newTestPlayer(2, "b", 1000)}, "spleef", 1000)

	r := newTestRecord(red, blue)
	r.Finalize()

	for _, res := range r.Results() {
		if res.RatingDelta != 0 {
			t.Fatalf("unexpected delta %v for %s", res.RatingDelta, res.Name)
		}
	}
}

func TestRankedTiersEqualRatings(t *testing.T) {
	teams := make([]*player.Team, 4)
	names := []string{"first", "second", "third", "fourth"}
	for i, name := range names {
		teams[i] = player.NewTeam(name, []*player.Player{
			newTestPlayer(int64(i+1), name, 1000),
		}, "spleef", 1000)
	}

	r := newTestRecord(teams...)
	r.SetTeamRanks(teams)
	r.Finalize()

	// 全员 1000, 每层基础变动 15; 倍率 2,1 / -1,-2
	want := []float64{30, 15, -15, -30}
	for i, tier := range teams {
		got := tier.Players[0].Rating("spleef", 0) - 1000
		if !closeTo(got, want[i]) {
			t.Fatalf("tier %s delta = %v, want %v", tier.Name, got, want[i])
		}
	}
}

func TestRankedOddTierMiddleUnchanged(t *testing.T) {
	teams := make([]*player.Team, 3)
	names := []string{"first", "second", "third"}
	for i, name := range names {
		teams[i] = player.NewTeam(name, []*player.Player{
			newTestPlayer(int64(i+1), name, 1000),
		}, "spleef", 1000)
	}

	r := newTestRecord(teams...)
	r.SetTeamRanks(teams)
	r.Finalize()

	if got := teams[1].Players[0].Rating("spleef", 0); !closeTo(got, 1000) {
		t.Fatalf("middle tier moved: %v", got)
	}
	if got := teams[0].Players[0].Rating("spleef", 0); got <= 1000 {
		t.Fatalf("top tier delta = %v, want gain", got-1000)
	}
	if got := teams[2].Players[0].Rating("spleef", 0); got >= 1000 {
		t.Fatalf("bottom tier delta = %v, want loss", got-1000)
	}
}

func TestPrimaryScoreMax(t *testing.T) {
	p := newTestPlayer(1, "a", 0)
	p.SetRating("race", 40)
	team := player.NewTeam("solo", []*player.Player{p}, "race", 0)

	r := NewGameRecord(Config{
		GameKey:      "race",
		PrimaryScore: "laps",
	}, []*player.Team{team}, log.NewStdLogger(io.Discard))

	r.Set(p, "laps", 25)
	r.NextRound()
	r.Set(p, "laps", 60)
	r.Finalize()

	// 非聚合模式只保留历史最大值
	if got := p.Rating("race", 0); !closeTo(got, 60) {
		t.Fatalf("rating = %v, want 60", got)
	}
}

func TestPrimaryScoreAggregate(t *testing.T) {
	p := newTestPlayer(1, "a", 0)
	team := player.NewTeam("solo", []*player.Player{p}, "mining", 0)

	r := NewGameRecord(Config{
		GameKey:        "mining",
		PrimaryScore:   "blocks",
		ScoreAggregate: true,
	}, []*player.Team{team}, log.NewStdLogger(io.Discard))

	r.Increment(p, "blocks", 10)
	r.NextRound()
	r.Increment(p, "blocks", 7)
	r.Finalize()

	if got := p.Rating("mining", 0); !closeTo(got, 17) {
		t.Fatalf("rating = %v, want 17", got)
	}
}

func TestRoundLedger(t *testing.T) {
	red := player.NewTeam("red", []*player.Player{newTestPlayer(1, "a", 1000)}, "spleef", 1000)
	blue := player.NewTeam("blue", []*player.Player{newTestPlayer(2, "b", 1000)}, "spleef", 1000)

	r := newTestRecord(red, blue)
	r.Increment(red.Players[0], "kills", 2)
	r.SaveRoundWin(red)
	if r.RoundIndex() != 1 {
		t.Fatalf("round index = %d", r.RoundIndex())
	}
	r.SetGameWinner(red)
	r.Finalize()

	rounds := r.Rounds()
	if len(rounds) != 2 {
		t.Fatalf("rounds = %d, want 2", len(rounds))
	}
	if v, _ := rounds[0].Get("winning_team"); v != "red" {
		t.Fatalf("winning_team = %v", v)
	}
	if _, ok := rounds[0].Get("length"); !ok {
		t.Fatal("round length missing")
	}
	if _, ok := rounds[1].Get("length_total"); !ok {
		t.Fatal("length_total missing")
	}
	pr := rounds[0].Players()
	if len(pr) != 1 || pr[0].Team != "red" {
		t.Fatalf("player rounds = %+v", pr)
	}
	if v, _ := pr[0].Get("kills"); v != int64(2) {
		t.Fatalf("kills = %v", v)
	}
}

func TestKickedPlayerStillLoses(t *testing.T) {
	kicked := newTestPlayer(3, "quitter", 1000)
	red := player.NewTeam("red", []*player.Player{newTestPlayer(1, "a", 1000)}, "spleef", 1000)
	blue := player.NewTeam("blue", []*player.Player{newTestPlayer(2, "b", 1000), kicked}, "spleef", 1000)

	r := newTestRecord(red, blue)
	blue.Remove(kicked.ID())
	r.SetGameWinner(red)
	r.Finalize()

	if got := kicked.Rating("spleef", 0); got >= 1000 {
		t.Fatalf("kicked player rating = %v, want loss", got)
	}
}
