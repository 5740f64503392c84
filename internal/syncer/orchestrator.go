package syncer

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/config"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/gateway"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/logger"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/mapper"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/model"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/settlement"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/store"
	"github.com/go-co-op/gocron/v2"
)

// Gateway 同步所需的账本读取能力
type Gateway interface {
	GetCampaignCount() (int64, error)
	GetCampaign(id int64) (*gateway.CampaignRecord, error)
	GetInvestmentCount() (int64, error)
	GetInvestment(id int64) (*gateway.InvestmentRecord, error)
	GetMilestoneCount(campaignId int64) (int64, error)
	GetMilestone(campaignId, index int64) (*gateway.MilestoneRecord, error)
	GetProposalCount() (int64, error)
	GetProposal(id int64) (*gateway.ProposalRecord, error)
}

// Options 本次同步覆盖的实体类型
type Options struct {
	Campaigns   bool `json:"campaigns"`
	Investments bool `json:"investments"`
	Milestones  bool `json:"milestones"`
	Governance  bool `json:"governance"`
}

// DefaultOptions 默认同步全部实体类型
func DefaultOptions() Options {
	return Options{Campaigns: true, Investments: true, Milestones: true, Governance: true}
}

// Orchestrator 同步编排器
//
// 单飞控制：running 标志用CAS翻转，并发触发只有一个通过，
// 其余直接返回当前状态快照。批次内串行处理，账本限流，
// 并发拉取会打乱回执确认与批次记账的顺序。
type Orchestrator struct {
	gateway    Gateway
	store      store.ProjectionStore
	calculator *settlement.Calculator

	batchSize  int
	batchDelay time.Duration

	running atomic.Bool
	mu      sync.Mutex // 保护 status
	status  SyncStatus

	schedMu   sync.Mutex
	scheduler gocron.Scheduler
}

// New 创建同步编排器
func New(gw Gateway, st store.ProjectionStore, calc *settlement.Calculator, cfg config.SyncConfig) *Orchestrator {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Orchestrator{
		gateway:    gw,
		store:      st,
		calculator: calc,
		batchSize:  batchSize,
		batchDelay: time.Duration(cfg.BatchDelayMs) * time.Millisecond,
		status:     SyncStatus{Errors: []string{}},
	}
}

// TriggerSync 触发一次完整同步
//
// 已有同步在运行时不排队、不报错，直接返回运行中的状态快照。
func (o *Orchestrator) TriggerSync(opts Options) SyncStatus {
	if !o.running.CompareAndSwap(false, true) {
		logger.Info("Sync already running, returning current status")
		return o.GetSyncStatus()
	}

	o.run(opts)
	return o.GetSyncStatus()
}

// run 执行一次同步，按固定顺序遍历实体类型
func (o *Orchestrator) run(opts Options) {
	started := time.Now()
	logger.Info("Starting ledger sync (campaigns=%v, investments=%v, milestones=%v, governance=%v)",
		opts.Campaigns, opts.Investments, opts.Milestones, opts.Governance)

	o.beginRun()

	completed := false
	defer func() {
		if r := recover(); r != nil {
			o.appendError(fmt.Sprintf("sync aborted: %v", r))
			logger.Error("Ledger sync aborted: %v", r)
		}
		o.finishRun(completed)
		o.running.Store(false)
	}()

	// 固定顺序：活动 -> 投资 -> 里程碑 -> 治理。
	// 同一轮内后同步的实体可以依赖先同步实体的投影行。
	if opts.Campaigns {
		o.syncCampaigns()
	}
	if opts.Investments {
		o.syncInvestments()
	}
	if opts.Milestones {
		o.syncMilestones()
	}
	if opts.Governance {
		o.syncProposals()
	}
	completed = true

	status := o.GetSyncStatus()
	logger.Info("Ledger sync finished in %s (campaigns=%d, investments=%d, milestones=%d, proposals=%d, errors=%d)",
		time.Since(started), status.CampaignsSynced, status.InvestmentsSynced,
		status.MilestonesSynced, status.ProposalsSynced, len(status.Errors))
}

// beginRun 进入运行态，清空上一轮的错误与计数
func (o *Orchestrator) beginRun() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.IsRunning = true
	o.status.Errors = []string{}
	o.status.CampaignsSynced = 0
	o.status.InvestmentsSynced = 0
	o.status.MilestonesSynced = 0
	o.status.ProposalsSynced = 0
}

// finishRun 退出运行态；只有跑完全部实体类型才推进 lastSyncTime
func (o *Orchestrator) finishRun(completed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.IsRunning = false
	if completed {
		now := time.Now()
		o.status.LastSyncTime = &now
	}
}

// appendError 记录单条失败，不中断当前批次
func (o *Orchestrator) appendError(msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.Errors = append(o.status.Errors, msg)
}

// walk 批量遍历账本ID 1..total，单条失败记录后继续
func (o *Orchestrator) walk(entityType string, total int64, syncOne func(id int64) error) int {
	synced := 0
	for start := int64(1); start <= total; start += int64(o.batchSize) {
		end := start + int64(o.batchSize) - 1
		if end > total {
			end = total
		}

		for id := start; id <= end; id++ {
			if err := syncOne(id); err != nil {
				o.appendError(fmt.Sprintf("%s %d: %v", entityType, id, err))
				logger.Warn("Failed to sync %s %d: %v", entityType, id, err)
				continue
			}
			synced++
		}

		// 批次间限速，避免打爆账本节点
		if end < total && o.batchDelay > 0 {
			time.Sleep(o.batchDelay)
		}
	}
	return synced
}

// syncCampaigns 同步全部活动
func (o *Orchestrator) syncCampaigns() {
	total, err := o.gateway.GetCampaignCount()
	if err != nil {
		o.appendError(fmt.Sprintf("campaign count: %v", err))
		return
	}

	synced := o.walk("campaign", total, func(id int64) error {
		record, err := o.gateway.GetCampaign(id)
		if err != nil {
			return err
		}
		return o.applyCampaign(record)
	})

	o.mu.Lock()
	o.status.CampaignsSynced = synced
	o.mu.Unlock()
}

// SyncSingleCampaign 按需刷新单个活动的投影
func (o *Orchestrator) SyncSingleCampaign(ledgerId int64) error {
	record, err := o.gateway.GetCampaign(ledgerId)
	if err != nil {
		return fmt.Errorf("failed to fetch campaign %d from ledger: %w", ledgerId, err)
	}
	return o.applyCampaign(record)
}

// applyCampaign 写入活动投影
//
// 已有本地行时只补账本派生字段；本地录入的描述类字段（长描述、
// 图片、行业标签）归创建接口所有，同步永远不覆盖。
func (o *Orchestrator) applyCampaign(record *gateway.CampaignRecord) error {
	status := mapper.MapCampaignStatus(record.StatusCode)
	category := mapper.MapCategory(record.CategoryCode)

	existing, err := o.store.FindCampaignByLedgerID(record.LedgerID)
	if errors.Is(err, store.ErrNotFound) {
		campaign := &model.CampaignModel{
			LedgerId:       record.LedgerID,
			Title:          record.Title,
			Description:    record.Description,
			Industry:       model.DefaultIndustry,
			Stage:          model.DefaultStage,
			CreatorAddress: record.CreatorAddress,
			Category:       category,
			TargetAmount:   record.TargetAmount,
			RaisedAmount:   record.RaisedAmount,
			Deadline:       record.Deadline,
			Status:         status,
			MilestoneCount: int(record.MilestoneCount),
		}
		return o.store.CreateCampaign(campaign)
	}
	if err != nil {
		return err
	}

	// 募资额正常只增不减，退款类状态之外的回落告警但照常写入，
	// 账本是权威数据源，不能因本地预期拒绝账本状态
	if record.RaisedAmount < existing.RaisedAmount && !refundRelated(status) {
		logger.Warn("Campaign %d raised amount decreased from %d to %d (status: %s)",
			record.LedgerID, existing.RaisedAmount, record.RaisedAmount, status)
	}

	updates := map[string]interface{}{
		"raised_amount":   record.RaisedAmount,
		"status":          status,
		"milestone_count": int(record.MilestoneCount),
	}
	return o.store.PatchCampaign(record.LedgerID, updates)
}

// refundRelated 募资额回落属正常路径的状态
func refundRelated(status model.CampaignStatus) bool {
	switch status {
	case model.CampaignStatusCancelled, model.CampaignStatusFailed, model.CampaignStatusExpired:
		return true
	default:
		return false
	}
}

// syncInvestments 同步全部投资记录并重算结算字段
func (o *Orchestrator) syncInvestments() {
	total, err := o.gateway.GetInvestmentCount()
	if err != nil {
		o.appendError(fmt.Sprintf("investment count: %v", err))
		return
	}

	synced := o.walk("investment", total, o.syncInvestment)

	o.mu.Lock()
	o.status.InvestmentsSynced = synced
	o.mu.Unlock()
}

// syncInvestment 同步单条投资记录
func (o *Orchestrator) syncInvestment(id int64) error {
	record, err := o.gateway.GetInvestment(id)
	if err != nil {
		return err
	}

	feeResult, err := o.calculator.PlatformFee(record.GrossAmount)
	if err != nil {
		return err
	}
	netAmount, err := o.calculator.NetAmount(record.GrossAmount, feeResult.Fee)
	if err != nil {
		return err
	}

	investment := &model.InvestmentModel{
		LedgerId:         record.LedgerID,
		CampaignLedgerId: record.CampaignLedgerID,
		InvestorAddress:  record.InvestorAddress,
		GrossAmount:      record.GrossAmount,
		PlatformFee:      feeResult.Fee,
		NetAmount:        netAmount,
		VotingPower:      o.calculator.VotingPower(record.GrossAmount),
		FeeFallback:      feeResult.Fallback,
		Status:           mapper.MapInvestmentStatus(record.StatusCode),
		ObservedAt:       record.ObservedAt,
	}
	return o.store.UpsertInvestment(investment)
}

// syncMilestones 同步已投影活动的全部里程碑
func (o *Orchestrator) syncMilestones() {
	campaignIds, err := o.store.ListCampaignLedgerIDs()
	if err != nil {
		o.appendError(fmt.Sprintf("milestone campaigns: %v", err))
		return
	}

	synced := 0
	for _, campaignId := range campaignIds {
		count, err := o.gateway.GetMilestoneCount(campaignId)
		if err != nil {
			o.appendError(fmt.Sprintf("milestone %d: %v", campaignId, err))
			continue
		}

		for index := int64(0); index < count; index++ {
			if err := o.syncMilestone(campaignId, index); err != nil {
				o.appendError(fmt.Sprintf("milestone %d/%d: %v", campaignId, index, err))
				continue
			}
			synced++

			if (index+1)%int64(o.batchSize) == 0 && o.batchDelay > 0 {
				time.Sleep(o.batchDelay)
			}
		}
	}

	o.mu.Lock()
	o.status.MilestonesSynced = synced
	o.mu.Unlock()
}

// syncMilestone 同步单个里程碑
func (o *Orchestrator) syncMilestone(campaignId, index int64) error {
	record, err := o.gateway.GetMilestone(campaignId, index)
	if err != nil {
		return err
	}

	milestone := &model.MilestoneModel{
		CampaignLedgerId: record.CampaignLedgerID,
		MilestoneIndex:   record.Index,
		Title:            record.Title,
		TargetAmount:     record.TargetAmount,
		Status:           mapper.MapMilestoneStatus(record.StatusCode),
		VotesFor:         record.VotesFor,
		VotesAgainst:     record.VotesAgainst,
		VotingDeadline:   record.VotingDeadline,
		Executed:         record.Executed,
	}
	return o.store.UpsertMilestone(milestone)
}

// syncProposals 同步全部治理提案
func (o *Orchestrator) syncProposals() {
	total, err := o.gateway.GetProposalCount()
	if err != nil {
		o.appendError(fmt.Sprintf("proposal count: %v", err))
		return
	}

	synced := o.walk("proposal", total, func(id int64) error {
		record, err := o.gateway.GetProposal(id)
		if err != nil {
			return err
		}
		proposal := &model.ProposalModel{
			LedgerId:         record.LedgerID,
			CampaignLedgerId: record.CampaignLedgerID,
			ProposerAddress:  record.ProposerAddress,
			Title:            record.Title,
			VotesFor:         record.VotesFor,
			VotesAgainst:     record.VotesAgainst,
			VotingDeadline:   record.VotingDeadline,
			Status:           mapper.MapProposalStatus(record.StatusCode),
			Executed:         record.Executed,
		}
		return o.store.UpsertProposal(proposal)
	})

	o.mu.Lock()
	o.status.ProposalsSynced = synced
	o.mu.Unlock()
}

// GetSyncStatus 获取状态快照
func (o *Orchestrator) GetSyncStatus() SyncStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status.snapshot()
}

// ResetSyncStatus 清空错误与计数；运行中不可重置
func (o *Orchestrator) ResetSyncStatus() bool {
	if o.running.Load() {
		logger.Warn("Cannot reset sync status while sync is running")
		return false
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = SyncStatus{Errors: []string{}}
	return true
}

// StartAutoSync 安装定时同步；已安装时告警并保持原定时器
func (o *Orchestrator) StartAutoSync(intervalMinutes int) error {
	o.schedMu.Lock()
	defer o.schedMu.Unlock()

	if o.scheduler != nil {
		logger.Warn("Auto sync already started, ignoring start request")
		return nil
	}
	if intervalMinutes <= 0 {
		return fmt.Errorf("invalid auto sync interval: %d minutes", intervalMinutes)
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(time.Duration(intervalMinutes)*time.Minute),
		gocron.NewTask(func() {
			o.TriggerSync(DefaultOptions())
		}),
		gocron.WithName("ledger_sync"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to register auto sync job: %w", err)
	}

	s.Start()
	o.scheduler = s
	logger.Info("Auto sync started (interval: %d minutes)", intervalMinutes)
	return nil
}

// StopAutoSync 取消定时同步；只取消后续调度，不打断进行中的运行
func (o *Orchestrator) StopAutoSync() {
	o.schedMu.Lock()
	defer o.schedMu.Unlock()

	if o.scheduler == nil {
		return
	}
	if err := o.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown auto sync scheduler: %v", err)
	}
	o.scheduler = nil
	logger.Info("Auto sync stopped")
}

// AutoSyncEnabled 定时同步是否已安装
func (o *Orchestrator) AutoSyncEnabled() bool {
	o.schedMu.Lock()
	defer o.schedMu.Unlock()
	return o.scheduler != nil
}
