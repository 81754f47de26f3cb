// Package https_server 提供 HTTP/HTTPS 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件和路由
package https_server

import (
	"fmt"
	"net/http"
	"time"

	"equb_server/internal/config"
	"equb_server/internal/handler"
	"equb_server/internal/infrastructure/logger"
	"equb_server/internal/infrastructure/middleware"
	"equb_server/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init 创建 Gin 引擎并注册中间件与路由
// 配置顺序：
//  1. 创建空白 Gin 引擎
//  2. 注册日志和恢复中间件
//  3. 可选的 HTTPS 重定向
//  4. 配置 CORS 跨域规则
//  5. 注册业务路由
func Init(conf *config.Config, handlers *handler.Handlers) *gin.Engine {
	if conf.MainConfig.Mode != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))

	if conf.TLSConfig.Enable {
		engine.Use(middleware.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // 生产环境应指定具体域名
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	router.NewRouter(handlers).RegisterRoutes(engine)

	return engine
}

// NewServer 包装为 http.Server，便于优雅关闭
func NewServer(conf *config.Config, engine *gin.Engine) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
