package main

import (
	"log"

	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/config"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/database"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/gateway"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/ledger"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/logger"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/monitor"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/router"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/settlement"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/store"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/syncer"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/task"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志器
	level := logger.ParseLogLevel(cfg.Log.GetLevel())
	var appLogger *logger.Logger
	var err error
	if cfg.Log.GetOutput() == "file" && cfg.Log.GetFile() != "" {
		appLogger, err = logger.NewWithFileRotation(level, cfg.Log.GetFile())
	} else {
		appLogger, err = logger.New(level)
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.SetDefaultLogger(appLogger)
	defer appLogger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化账本客户端
	ledgerClient, err := ledger.Init(cfg.Ledger)
	if err != nil {
		logger.Fatal("Failed to initialize ledger client: %v", err)
	}
	defer ledgerClient.Close()

	// 组装同步组件
	facade := gateway.NewFacade(ledgerClient)
	calculator := settlement.NewCalculator(facade.InvestmentGateway, cfg.Platform.FeeBasisPoints, settlement.IdentityVotingPower{})
	projectionStore := store.NewGormStore(db)
	orchestrator := syncer.New(facade, projectionStore, calculator, cfg.Sync)

	// 启动事件监控
	eventMonitor := monitor.NewEventMonitor(ledgerClient, orchestrator)
	if err := eventMonitor.Start(); err != nil {
		logger.Error("Failed to start event monitor: %v", err)
	}
	defer eventMonitor.Stop()

	// 启动后台任务
	taskManager := task.Start(projectionStore, facade.InvestmentGateway, cfg)
	defer taskManager.Stop()

	// 按配置开启定时同步
	if cfg.Sync.AutoStart {
		if err := orchestrator.StartAutoSync(cfg.Sync.IntervalMinutes); err != nil {
			logger.Error("Failed to start auto sync: %v", err)
		}
	}
	defer orchestrator.StopAutoSync()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, orchestrator, cfg)

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
