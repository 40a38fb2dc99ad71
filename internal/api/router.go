package api

import (
	"OsuMatchView/internal/config"
	"OsuMatchView/internal/interfaces"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter 注册中间件与路由
func NewRouter(cfg *config.Config, logger *logrus.Logger, source interfaces.MatchSource) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(logger))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "OPTIONS"}
	corsCfg.ExposeHeaders = []string{requestIDHeader}
	if len(cfg.Server.AllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Server.AllowOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))

	// 仅 debug 模式注册 pprof，方便调试和监测性能问题
	if cfg.Server.Mode == gin.DebugMode {
		pprof.Register(r)
	}

	matchHandler := NewMatchHandler(source, logger, cfg.Display.NewestFirst)
	r.GET("/api/getMatch", matchHandler.GetMatch)
	r.GET("/api/matches", matchHandler.GetMatch)

	return r
}
