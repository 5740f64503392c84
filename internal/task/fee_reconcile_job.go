package task

import (
	"time"

	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/config"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/logger"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/settlement"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/store"
	"github.com/go-co-op/gocron/v2"
)

// reconcileBatchLimit 单轮复核的记录上限
const reconcileBatchLimit = 100

// FeeReconcileJob 手续费复核任务
//
// 同步时账本不可达的投资记录带 fee_fallback 标记，本任务在账本
// 恢复后用账本自身的费率重新核对并清除标记。
type FeeReconcileJob struct {
	store   store.ProjectionStore
	querier settlement.FeeQuerier
	config  *config.Config
}

// NewFeeReconcileJob 创建手续费复核任务
func NewFeeReconcileJob(st store.ProjectionStore, querier settlement.FeeQuerier, cfg *config.Config) *FeeReconcileJob {
	return &FeeReconcileJob{
		store:   st,
		querier: querier,
		config:  cfg,
	}
}

// GetName 获取任务名称
func (j *FeeReconcileJob) GetName() string {
	return "investment_fee_reconciler"
}

// GetSchedule 获取调度配置
func (j *FeeReconcileJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Sync.ReconcileSec) * time.Second)
}

// Execute 执行任务
func (j *FeeReconcileJob) Execute() {
	investments, err := j.store.ListFallbackFeeInvestments(reconcileBatchLimit)
	if err != nil {
		logger.Error("Failed to fetch fallback fee investments: %v", err)
		return
	}
	if len(investments) == 0 {
		return
	}

	logger.Info("Starting fee reconciliation for %d investments", len(investments))
	reconciled := 0

	for _, investment := range investments {
		fee, err := j.querier.CalculatePlatformFee(investment.GrossAmount)
		if err != nil {
			// 账本仍不可达，整批留到下一轮
			logger.Warn("Ledger fee query still failing, deferring reconciliation: %v", err)
			return
		}

		if fee < 0 || fee > investment.GrossAmount {
			logger.Error("Ledger returned invalid fee %d for investment %d (gross: %d)",
				fee, investment.LedgerId, investment.GrossAmount)
			continue
		}

		if fee != investment.PlatformFee {
			logger.Warn("Fallback fee diverged for investment %d: local=%d, ledger=%d",
				investment.LedgerId, investment.PlatformFee, fee)
		}

		updates := map[string]interface{}{
			"platform_fee": fee,
			"net_amount":   investment.GrossAmount - fee,
			"fee_fallback": false,
		}
		if err := j.store.PatchInvestment(investment.LedgerId, updates); err != nil {
			logger.Error("Failed to reconcile fee for investment %d: %v", investment.LedgerId, err)
			continue
		}
		reconciled++
	}

	logger.Info("Fee reconciliation completed. Reconciled %d investments", reconciled)
}
