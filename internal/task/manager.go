package task

import (
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/config"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/logger"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/settlement"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/store"
	"github.com/go-co-op/gocron/v2"
)

// Manager 后台任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	store     store.ProjectionStore
	querier   settlement.FeeQuerier
	config    *config.Config
}

// NewManager 创建任务管理器
func NewManager(st store.ProjectionStore, querier settlement.FeeQuerier, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler: s,
		store:     st,
		querier:   querier,
		config:    cfg,
	}
}

// Start 启动任务管理器
func Start(st store.ProjectionStore, querier settlement.FeeQuerier, cfg *config.Config) *Manager {
	manager := NewManager(st, querier, cfg)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	// 注册手续费复核任务
	m.RegisterFeeReconcileJob()
}

// RegisterFeeReconcileJob 注册手续费复核任务
func (m *Manager) RegisterFeeReconcileJob() {
	job := NewFeeReconcileJob(m.store, m.querier, m.config)

	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
