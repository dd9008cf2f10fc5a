package biz

import (
	"context"
	"encoding/json"

	"minigame/internal/biz/session"
	"minigame/pkg/codes"
)

// 运营台账字段
const (
	FieldTokens  = "tokens"
	FieldTickets = "tickets"
)

// PlayerView 玩家档案的运营视图
type PlayerView struct {
	UID          int64              `json:"uid"`
	Name         string             `json:"name"`
	Tokens       int64              `json:"tokens"`
	Tickets      int64              `json:"tickets"`
	SessionCount int32              `json:"sessionCount"`
	Ratings      map[string]float64 `json:"ratings"`
	SessionID    int64              `json:"sessionId,omitempty"`
	ZoneID       string             `json:"zoneId,omitempty"`
}

// SessionView 在局的运营视图
type SessionView struct {
	ID      int64              `json:"id"`
	GameKey string             `json:"gameKey"`
	ArenaID string             `json:"arenaId"`
	Round   int                `json:"round"`
	Teams   map[string][]int64 `json:"teams"`
}

// GroupView 排队分组的运营视图
type GroupView struct {
	Key     string `json:"key"`
	GameKey string `json:"gameKey"`
	ArenaID string `json:"arenaId"`
	Queued  int    `json:"queued"`
	Busy    bool   `json:"busy"`
}

// EndAllSessions 运营终止全部在局, 返回中止数
func (uc *Usecase) EndAllSessions(ctx context.Context, reason string) (int, error) {
	out, err := uc.ws.PostAndWait(func() ([]byte, error) {
		if reason == "" {
			reason = "All games have been ended by an operator."
		}
		n := uc.sm.KickAll(reason)
		uc.log.Warnf("operator ended %d sessions: %s", n, reason)
		return json.Marshal(n)
	})
	if err != nil {
		return 0, err
	}
	var n int
	_ = json.Unmarshal(out, &n)
	return n, nil
}

// AdjustBalance 设置/增减玩家的代币或奖券, 返回调整后的值
func (uc *Usecase) AdjustBalance(ctx context.Context, uid int64, field string, value int64, relative bool) (int64, error) {
	out, err := uc.ws.PostAndWait(func() ([]byte, error) {
		p, err := uc.loadPlayer(uid, "")
		if err != nil {
			return nil, err
		}
		var cur int64
		switch field {
		case FieldTokens:
			cur = p.Tokens()
			if relative {
				value += cur
			}
			p.SetTokens(value)
		case FieldTickets:
			cur = p.Tickets()
			if relative {
				value += cur
			}
			p.SetTickets(value)
		default:
			return nil, codes.ErrBadField
		}
		uc.SaveProfile(p.Profile())
		uc.log.Infof("balance adjust: %d %s %d -> %d", uid, field, cur, value)
		return json.Marshal(value)
	})
	if err != nil {
		return 0, err
	}
	var v int64
	_ = json.Unmarshal(out, &v)
	return v, nil
}

// CheckBalance 查询玩家的代币或奖券
func (uc *Usecase) CheckBalance(ctx context.Context, uid int64, field string) (int64, error) {
	out, err := uc.ws.PostAndWait(func() ([]byte, error) {
		p, err := uc.loadPlayer(uid, "")
		if err != nil {
			return nil, err
		}
		switch field {
		case FieldTokens:
			return json.Marshal(p.Tokens())
		case FieldTickets:
			return json.Marshal(p.Tickets())
		}
		return nil, codes.ErrBadField
	})
	if err != nil {
		return 0, err
	}
	var v int64
	_ = json.Unmarshal(out, &v)
	return v, nil
}

// InspectPlayer 玩家档案与占位快照
func (uc *Usecase) InspectPlayer(ctx context.Context, uid int64) (*PlayerView, error) {
	out, err := uc.ws.PostAndWait(func() ([]byte, error) {
		p, err := uc.loadPlayer(uid, "")
		if err != nil {
			return nil, err
		}
		pr := p.Profile()
		return json.Marshal(&PlayerView{
			UID:          pr.UID,
			Name:         pr.Name,
			Tokens:       pr.Tokens,
			Tickets:      pr.Tickets,
			SessionCount: pr.SessionCount,
			Ratings:      pr.Ratings,
			SessionID:    p.SessionID(),
			ZoneID:       p.ZoneID(),
		})
	})
	if err != nil {
		return nil, err
	}
	v := &PlayerView{}
	if err := json.Unmarshal(out, v); err != nil {
		return nil, err
	}
	return v, nil
}

// ListSessions 全部在局快照
func (uc *Usecase) ListSessions(ctx context.Context) ([]*SessionView, error) {
	out, err := uc.ws.PostAndWait(func() ([]byte, error) {
		var views []*SessionView
		uc.sm.Range(func(s *session.Session) bool {
			v := &SessionView{
				ID:      s.ID(),
				GameKey: s.GameKey(),
				ArenaID: s.ArenaID(),
				Round:   s.Record().RoundIndex(),
				Teams:   make(map[string][]int64),
			}
			for _, t := range s.Teams() {
				v.Teams[t.Name] = t.UIDs()
			}
			views = append(views, v)
			return true
		})
		return json.Marshal(views)
	})
	if err != nil {
		return nil, err
	}
	var views []*SessionView
	if err := json.Unmarshal(out, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// ListGroups 全部排队分组快照
func (uc *Usecase) ListGroups(ctx context.Context) ([]*GroupView, error) {
	out, err := uc.ws.PostAndWait(func() ([]byte, error) {
		var views []*GroupView
		for _, cg := range uc.cat.Groups() {
			g := uc.groups[cg.Key()]
			views = append(views, &GroupView{
				Key:     cg.Key(),
				GameKey: cg.GameKey,
				ArenaID: cg.Arena.ID,
				Queued:  g.TotalPlayers(),
				Busy:    uc.sm.ArenaBusy(cg.Arena.ID),
			})
		}
		return json.Marshal(views)
	})
	if err != nil {
		return nil, err
	}
	var views []*GroupView
	if err := json.Unmarshal(out, &views); err != nil {
		return nil, err
	}
	return views, nil
}
