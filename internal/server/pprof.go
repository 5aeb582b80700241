package server

import (
	"net/http"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewPprofServer builds the profiling server. It should only be reachable
// internally or via SSH tunnel.
func NewPprofServer(addr string, logger *zap.Logger) *http.Server {
	pprofRouter := gin.New()
	pprofRouter.Use(gin.Recovery())
	pprof.Register(pprofRouter)

	logger.Info("pprof server configured", zap.String("addr", addr))
	return &http.Server{
		Addr:    addr,
		Handler: pprofRouter,
	}
}
