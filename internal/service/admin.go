package service

import (
	"github.com/yola1107/kratos/v2/library/xgo"
	"github.com/yola1107/kratos/v2/transport/http"

	"minigame/pkg/codes"
)

type EndAllRequest struct {
	Reason string `json:"reason"`
}

type EndAllReply struct {
	Ended int `json:"ended"`
}

type BalanceRequest struct {
	UID      int64  `json:"uid"`
	Field    string `json:"field"` // tokens | tickets
	Value    int64  `json:"value"`
	Relative bool   `json:"relative"`
}

type BalanceReply struct {
	UID   int64  `json:"uid"`
	Field string `json:"field"`
	Value int64  `json:"value"`
}

// EndAllSessions 运营终止全部在局
func (s *Service) EndAllSessions(ctx http.Context) error {
	req := &EndAllRequest{}
	if err := ctx.Bind(req); err != nil {
		return err
	}
	n, err := s.uc.EndAllSessions(ctx, req.Reason)
	if err != nil {
		return err
	}
	s.log.WithContext(ctx).Warnf("operator end-all: %d sessions", n)
	return ctx.Result(200, &EndAllReply{Ended: n})
}

// AdjustBalance 设置/增减玩家余额
func (s *Service) AdjustBalance(ctx http.Context) error {
	req := &BalanceRequest{}
	if err := ctx.Bind(req); err != nil {
		return err
	}
	if req.UID == 0 {
		return codes.ErrBadField
	}
	v, err := s.uc.AdjustBalance(ctx, req.UID, req.Field, req.Value, req.Relative)
	if err != nil {
		return err
	}
	return ctx.Result(200, &BalanceReply{UID: req.UID, Field: req.Field, Value: v})
}

// CheckBalance 查询玩家余额 (?uid=&field=)
func (s *Service) CheckBalance(ctx http.Context) error {
	q := ctx.Query()
	uid := xgo.StrToInt64(q.Get("uid"))
	if uid == 0 {
		return codes.ErrBadField
	}
	v, err := s.uc.CheckBalance(ctx, uid, q.Get("field"))
	if err != nil {
		return err
	}
	return ctx.Result(200, &BalanceReply{UID: uid, Field: q.Get("field"), Value: v})
}

// InspectPlayer 玩家档案 (?uid=)
func (s *Service) InspectPlayer(ctx http.Context) error {
	uid := xgo.StrToInt64(ctx.Query().Get("uid"))
	if uid == 0 {
		return codes.ErrBadField
	}
	view, err := s.uc.InspectPlayer(ctx, uid)
	if err != nil {
		return err
	}
	return ctx.Result(200, view)
}
