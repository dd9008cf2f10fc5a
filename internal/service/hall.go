package service

import (
	"github.com/yola1107/kratos/v2/transport/http"

	"minigame/pkg/codes"
)

type JoinZoneRequest struct {
	UID    int64  `json:"uid"`
	Name   string `json:"name"`
	ZoneID string `json:"zoneId"`
}

type PlayerRequest struct {
	UID int64 `json:"uid"`
}

type OKReply struct {
	OK bool `json:"ok"`
}

// JoinZone 玩家进入排队区 (有在局且允许时直接进局)
func (s *Service) JoinZone(ctx http.Context) error {
	req := &JoinZoneRequest{}
	if err := ctx.Bind(req); err != nil {
		return err
	}
	if req.UID == 0 || req.ZoneID == "" {
		return codes.ErrBadField
	}
	if err := s.uc.JoinZone(ctx, req.UID, req.Name, req.ZoneID); err != nil {
		return err
	}
	return ctx.Result(200, &OKReply{OK: true})
}

// LeaveZone 玩家离开排队区
func (s *Service) LeaveZone(ctx http.Context) error {
	req := &PlayerRequest{}
	if err := ctx.Bind(req); err != nil {
		return err
	}
	if err := s.uc.LeaveZone(ctx, req.UID); err != nil {
		return err
	}
	return ctx.Result(200, &OKReply{OK: true})
}

// QuitSession 玩家主动退出在局
func (s *Service) QuitSession(ctx http.Context) error {
	req := &PlayerRequest{}
	if err := ctx.Bind(req); err != nil {
		return err
	}
	if err := s.uc.QuitSession(ctx, req.UID); err != nil {
		return err
	}
	return ctx.Result(200, &OKReply{OK: true})
}

// ListSessions 在局列表
func (s *Service) ListSessions(ctx http.Context) error {
	views, err := s.uc.ListSessions(ctx)
	if err != nil {
		return err
	}
	return ctx.Result(200, views)
}

// ListGroups 排队分组列表
func (s *Service) ListGroups(ctx http.Context) error {
	views, err := s.uc.ListGroups(ctx)
	if err != nil {
		return err
	}
	return ctx.Result(200, views)
}
