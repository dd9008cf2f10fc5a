package service

import (
	"github.com/google/wire"
	"github.com/yola1107/kratos/v2/log"
	"github.com/yola1107/kratos/v2/transport/http"

	"minigame/internal/biz"
)

// ProviderSet is service providers.
var ProviderSet = wire.NewSet(NewService)

// Service 大厅对外的 HTTP 面: 区域进出 + 运营操作
type Service struct {
	log *log.Helper
	uc  *biz.Usecase
}

// NewService new a service.
func NewService(uc *biz.Usecase, logger log.Logger) *Service {
	return &Service{uc: uc, log: log.NewHelper(logger)}
}

// RegisterRoutes 挂载路由
func (s *Service) RegisterRoutes(srv *http.Server) {
	r := srv.Route("/v1")

	r.POST("/zone/join", s.JoinZone)
	r.POST("/zone/leave", s.LeaveZone)
	r.POST("/session/quit", s.QuitSession)

	r.GET("/sessions", s.ListSessions)
	r.GET("/groups", s.ListGroups)

	r.POST("/admin/sessions/end", s.EndAllSessions)
	r.POST("/admin/balance", s.AdjustBalance)
	r.GET("/admin/balance", s.CheckBalance)
	r.GET("/admin/player", s.InspectPlayer)
}
