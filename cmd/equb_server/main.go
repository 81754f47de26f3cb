package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"equb_server/internal/config"
	dao "equb_server/internal/dao/mysql"
	myredis "equb_server/internal/dao/redis"
	"equb_server/internal/handler"
	"equb_server/internal/https_server"
	"equb_server/internal/infrastructure/gateway"
	"equb_server/internal/infrastructure/logger"
	"equb_server/internal/infrastructure/mq"
	"equb_server/internal/service"
	"equb_server/pkg/util/jwt"
	"equb_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()
	zap.L().Info("日志初始化成功")

	// 3. 参数校验翻译器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("init validator trans failed", zap.Error(err))
	}

	// 4. 雪花节点，用于交易流水号
	snowflake.Init(conf.SnowflakeConfig.MachineID)

	// 5. 初始化数据库
	repos, db, err := dao.Init(&conf.MysqlConfig)
	if err != nil {
		zap.L().Fatal("数据库初始化失败", zap.Error(err))
	}
	zap.L().Info("数据库初始化成功")

	// 6. 初始化 Redis
	cache, err := myredis.Init(&conf.RedisConfig)
	if err != nil {
		zap.L().Fatal("Redis 初始化失败", zap.Error(err))
	}
	zap.L().Info("Redis 初始化成功")

	// 7. 初始化 JWT
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)

	// 8. 事件代理与支付网关
	broker := mq.NewBroker(&conf.KafkaConfig)
	gw := gateway.New(&conf.GatewayConfig)

	// 9. 依赖注入
	svc := service.NewServices(repos, cache, broker, gw, conf)
	svc.Rotation.Register(broker)
	handlers := handler.NewHandlers(svc)

	ctx, cancel := context.WithCancel(context.Background())
	go broker.Start(ctx)

	// 10. 启动 HTTP 服务
	engine := https_server.Init(conf, handlers)
	srv := https_server.NewServer(conf, engine)
	go func() {
		zap.L().Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("http shutdown", zap.Error(err))
	}

	cancel()
	if err := broker.Close(); err != nil {
		zap.L().Error("broker close", zap.Error(err))
	}
	if err := cache.Close(); err != nil {
		zap.L().Error("redis close", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	zap.L().Info("服务器已关闭")
}
