package player

import (
	"testing"
	"time"

	"minigame/internal/biz/world"
)

func TestTokensAndPass(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	p := New(&Profile{UID: 1, Name: "a", Tokens: 30})

	if !p.HasTokens(10, now) {
		t.Fatal("30 tokens should cover a 10 token fee")
	}
	if got := p.TakeTokens(10, now); got != 10 {
		t.Fatalf("TakeTokens = %d, want 10", got)
	}
	if p.Tokens() != 20 || p.Profile().TokensSpent != 10 {
		t.Fatalf("tokens=%d spent=%d after charge", p.Tokens(), p.Profile().TokensSpent)
	}

	p.RefundTokens(10)
	if p.Tokens() != 30 || p.Profile().TokensSpent != 0 {
		t.Fatalf("tokens=%d spent=%d after refund", p.Tokens(), p.Profile().TokensSpent)
	}

	// 通行证有效期内免扣费
	p.SetPassExpiry(now.Add(time.Hour))
	if !p.PassActive(now) {
		t.Fatal("pass should be active")
	}
	if got := p.TakeTokens(10, now); got != 0 {
		t.Fatalf("pass holder charged %d", got)
	}
	if !p.HasTokens(1_000_000, now) {
		t.Fatal("pass holder should always afford entry")
	}

	if p.PassActive(now.Add(2 * time.Hour)) {
		t.Fatal("pass should have expired")
	}
}

func TestAwardTickets(t *testing.T) {
	p := New(&Profile{UID: 1})
	if got := p.AwardTickets(0); got != 0 {
		t.Fatalf("AwardTickets(0) = %d", got)
	}
	p.AwardTickets(7)
	p.AwardTickets(3)
	if p.Tickets() != 10 || p.Profile().TicketsEarned != 10 {
		t.Fatalf("tickets=%d earned=%d", p.Tickets(), p.Profile().TicketsEarned)
	}
}

func TestRatingDefaults(t *testing.T) {
	p := New(&Profile{UID: 1})
	if got := p.Rating("spleef", 1000); got != 1000 {
		t.Fatalf("Rating default = %v", got)
	}
	p.AddRating("spleef", -25, 1000)
	if got := p.Rating("spleef", 1000); got != 975 {
		t.Fatalf("Rating after delta = %v", got)
	}
	// 缺省值只在首次读取时落盘
	if got := p.Rating("spleef", 500); got != 975 {
		t.Fatalf("Rating ignored stored value, got %v", got)
	}
}

func TestSessionOccupancy(t *testing.T) {
	p := New(&Profile{UID: 1})
	kit := []world.Item{{Kind: "shovel", Count: 1}}

	p.EnterSession(42, "red", 10, kit)
	if !p.InSession() || p.SessionID() != 42 || p.TeamName() != "red" || p.Charged() != 10 {
		t.Fatalf("occupancy not recorded: %s", p.Desc())
	}
	if p.Profile().SessionCount != 1 {
		t.Fatalf("SessionCount = %d", p.Profile().SessionCount)
	}

	got := p.LeaveSession()
	if len(got) != 1 || got[0].Kind != "shovel" {
		t.Fatalf("kit not returned: %v", got)
	}
	if p.InSession() || p.Charged() != 0 || p.TeamName() != "" {
		t.Fatalf("occupancy not cleared: %s", p.Desc())
	}

	p.EnterZone("spleef-a1-q")
	if !p.Queued() || p.ZoneID() != "spleef-a1-q" {
		t.Fatal("zone occupancy not recorded")
	}
	p.LeaveZone()
	if p.Queued() {
		t.Fatal("zone occupancy not cleared")
	}
}

func TestTeamSnapshot(t *testing.T) {
	a := New(&Profile{UID: 1, Ratings: map[string]float64{"spleef": 1200}})
	b := New(&Profile{UID: 2, Ratings: map[string]float64{"spleef": 800}})
	tm := NewTeam("red", []*Player{a, b}, "spleef", 1000)

	if tm.OriginalSize != 2 || tm.AvgRating != 1000 {
		t.Fatalf("snapshot size=%d avg=%v", tm.OriginalSize, tm.AvgRating)
	}
	if !tm.Remove(1) || tm.Remove(1) {
		t.Fatal("Remove should hit once")
	}
	// 快照不随踢人变化
	if tm.Size() != 1 || tm.OriginalSize != 2 || tm.AvgRating != 1000 {
		t.Fatalf("snapshot changed after remove: size=%d orig=%d avg=%v", tm.Size(), tm.OriginalSize, tm.AvgRating)
	}
}

func TestManagerRegistry(t *testing.T) {
	m := NewManager()
	p := m.GetOrCreate(&Profile{UID: 7, Name: "a"})
	if again := m.GetOrCreate(&Profile{UID: 7, Name: "b"}); again != p {
		t.Fatal("GetOrCreate should return the registered player")
	}
	if m.Get(8) != nil {
		t.Fatal("unknown uid should be nil")
	}
	if m.Count() != 1 {
		t.Fatalf("Count = %d", m.Count())
	}
	m.Remove(7)
	if m.Get(7) != nil || m.Count() != 0 {
		t.Fatal("Remove did not unregister")
	}
}
