package syncer

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/config"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/gateway"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/model"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/settlement"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway 可编程的账本门面，ID从1开始连续编号
type fakeGateway struct {
	campaigns   map[int64]*gateway.CampaignRecord
	investments map[int64]*gateway.InvestmentRecord
	milestones  map[int64][]*gateway.MilestoneRecord
	proposals   map[int64]*gateway.ProposalRecord

	failCampaigns map[int64]error

	countEntered chan struct{} // 非nil时，进入 GetCampaignCount 发信号
	countGate    chan struct{} // 非nil时，GetCampaignCount 阻塞直到关闭

	mu         sync.Mutex
	countCalls int
}

func (g *fakeGateway) GetCampaignCount() (int64, error) {
	g.mu.Lock()
	g.countCalls++
	g.mu.Unlock()

	if g.countEntered != nil {
		g.countEntered <- struct{}{}
	}
	if g.countGate != nil {
		<-g.countGate
	}
	return int64(len(g.campaigns)), nil
}

func (g *fakeGateway) GetCampaign(id int64) (*gateway.CampaignRecord, error) {
	if err, ok := g.failCampaigns[id]; ok {
		return nil, err
	}
	record, ok := g.campaigns[id]
	if !ok {
		return nil, fmt.Errorf("campaign %d not found", id)
	}
	return record, nil
}

func (g *fakeGateway) GetInvestmentCount() (int64, error) {
	return int64(len(g.investments)), nil
}

func (g *fakeGateway) GetInvestment(id int64) (*gateway.InvestmentRecord, error) {
	record, ok := g.investments[id]
	if !ok {
		return nil, fmt.Errorf("investment %d not found", id)
	}
	return record, nil
}

func (g *fakeGateway) GetMilestoneCount(campaignId int64) (int64, error) {
	return int64(len(g.milestones[campaignId])), nil
}

func (g *fakeGateway) GetMilestone(campaignId, index int64) (*gateway.MilestoneRecord, error) {
	records := g.milestones[campaignId]
	if index < 0 || index >= int64(len(records)) {
		return nil, fmt.Errorf("milestone %d/%d not found", campaignId, index)
	}
	return records[index], nil
}

func (g *fakeGateway) GetProposalCount() (int64, error) {
	return int64(len(g.proposals)), nil
}

func (g *fakeGateway) GetProposal(id int64) (*gateway.ProposalRecord, error) {
	record, ok := g.proposals[id]
	if !ok {
		return nil, fmt.Errorf("proposal %d not found", id)
	}
	return record, nil
}

// memStore 内存投影存储
type memStore struct {
	mu          sync.Mutex
	campaigns   map[int64]*model.CampaignModel
	investments map[int64]*model.InvestmentModel
	milestones  map[string]*model.MilestoneModel
	proposals   map[int64]*model.ProposalModel
}

func newMemStore() *memStore {
	return &memStore{
		campaigns:   make(map[int64]*model.CampaignModel),
		investments: make(map[int64]*model.InvestmentModel),
		milestones:  make(map[string]*model.MilestoneModel),
		proposals:   make(map[int64]*model.ProposalModel),
	}
}

func (s *memStore) FindCampaignByLedgerID(ledgerId int64) (*model.CampaignModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	campaign, ok := s.campaigns[ledgerId]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *campaign
	return &copied, nil
}

func (s *memStore) CreateCampaign(campaign *model.CampaignModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *campaign
	s.campaigns[campaign.LedgerId] = &copied
	return nil
}

func (s *memStore) PatchCampaign(ledgerId int64, updates map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	campaign, ok := s.campaigns[ledgerId]
	if !ok {
		return store.ErrNotFound
	}
	if v, ok := updates["raised_amount"]; ok {
		campaign.RaisedAmount = v.(int64)
	}
	if v, ok := updates["status"]; ok {
		campaign.Status = v.(model.CampaignStatus)
	}
	if v, ok := updates["milestone_count"]; ok {
		campaign.MilestoneCount = v.(int)
	}
	return nil
}

func (s *memStore) ListCampaignLedgerIDs() ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.campaigns))
	for id := range s.campaigns {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *memStore) UpsertInvestment(investment *model.InvestmentModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *investment
	s.investments[investment.LedgerId] = &copied
	return nil
}

func (s *memStore) PatchInvestment(ledgerId int64, updates map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	investment, ok := s.investments[ledgerId]
	if !ok {
		return store.ErrNotFound
	}
	if v, ok := updates["platform_fee"]; ok {
		investment.PlatformFee = v.(int64)
	}
	if v, ok := updates["net_amount"]; ok {
		investment.NetAmount = v.(int64)
	}
	if v, ok := updates["fee_fallback"]; ok {
		investment.FeeFallback = v.(bool)
	}
	return nil
}

func (s *memStore) ListFallbackFeeInvestments(limit int) ([]model.InvestmentModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.InvestmentModel
	for _, investment := range s.investments {
		if investment.FeeFallback && len(result) < limit {
			result = append(result, *investment)
		}
	}
	return result, nil
}

func (s *memStore) UpsertMilestone(milestone *model.MilestoneModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%d/%d", milestone.CampaignLedgerId, milestone.MilestoneIndex)
	copied := *milestone
	s.milestones[key] = &copied
	return nil
}

func (s *memStore) UpsertProposal(proposal *model.ProposalModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *proposal
	s.proposals[proposal.LedgerId] = &copied
	return nil
}

// ledgerFee 可编程的账本费率查询
type ledgerFee struct {
	err error
}

func (f *ledgerFee) CalculatePlatformFee(grossAmount int64) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return grossAmount * 250 / 10000, nil
}

func campaignRecord(id int64) *gateway.CampaignRecord {
	return &gateway.CampaignRecord{
		LedgerID:       id,
		CreatorAddress: fmt.Sprintf("0x%040d", id),
		Title:          fmt.Sprintf("Campaign %d", id),
		Description:    "ledger description",
		TargetAmount:   1000000,
		RaisedAmount:   id * 100,
		Deadline:       time.Now().Add(time.Hour * 24).UTC(),
		StatusCode:     1,
		CategoryCode:   0,
		MilestoneCount: 0,
	}
}

func newTestOrchestrator(gw Gateway, st store.ProjectionStore, querier settlement.FeeQuerier) *Orchestrator {
	calc := settlement.NewCalculator(querier, 250, nil)
	return New(gw, st, calc, config.SyncConfig{BatchSize: 10, BatchDelayMs: 0})
}

func TestTriggerSyncFullPass(t *testing.T) {
	gw := &fakeGateway{
		campaigns: map[int64]*gateway.CampaignRecord{
			1: campaignRecord(1),
			2: campaignRecord(2),
			3: campaignRecord(3),
		},
		investments: map[int64]*gateway.InvestmentRecord{
			1: {LedgerID: 1, CampaignLedgerID: 1, InvestorAddress: "0xaa", GrossAmount: 100000, StatusCode: 1},
			2: {LedgerID: 2, CampaignLedgerID: 2, InvestorAddress: "0xbb", GrossAmount: 50000, StatusCode: 0},
		},
		milestones: map[int64][]*gateway.MilestoneRecord{
			1: {
				{CampaignLedgerID: 1, Index: 0, Title: "MVP", TargetAmount: 500000, StatusCode: 3},
				{CampaignLedgerID: 1, Index: 1, Title: "Launch", TargetAmount: 500000, StatusCode: 0},
			},
		},
		proposals: map[int64]*gateway.ProposalRecord{
			1: {LedgerID: 1, CampaignLedgerID: 1, ProposerAddress: "0xcc", Title: "Extend deadline", StatusCode: 0},
		},
	}
	st := newMemStore()
	o := newTestOrchestrator(gw, st, &ledgerFee{})

	status := o.TriggerSync(DefaultOptions())

	assert.False(t, status.IsRunning)
	assert.Equal(t, 3, status.CampaignsSynced)
	assert.Equal(t, 2, status.InvestmentsSynced)
	assert.Equal(t, 2, status.MilestonesSynced)
	assert.Equal(t, 1, status.ProposalsSynced)
	assert.Empty(t, status.Errors)
	require.NotNil(t, status.LastSyncTime)

	// 投影写入与结算字段
	campaign, err := st.FindCampaignByLedgerID(2)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusActive, campaign.Status)
	assert.Equal(t, model.CategoryTechnology, campaign.Category)
	assert.Equal(t, model.DefaultIndustry, campaign.Industry)
	assert.Equal(t, model.DefaultStage, campaign.Stage)

	investment := st.investments[1]
	require.NotNil(t, investment)
	assert.Equal(t, int64(2500), investment.PlatformFee)
	assert.Equal(t, int64(97500), investment.NetAmount)
	assert.Equal(t, investment.GrossAmount, investment.PlatformFee+investment.NetAmount)
	assert.Equal(t, int64(100000), investment.VotingPower)
	assert.False(t, investment.FeeFallback)
	assert.Equal(t, model.InvestmentStatusConfirmed, investment.Status)

	milestone := st.milestones["1/1"]
	require.NotNil(t, milestone)
	assert.Equal(t, model.MilestoneStatusPending, milestone.Status)

	proposal := st.proposals[1]
	require.NotNil(t, proposal)
	assert.Equal(t, model.ProposalStatusActive, proposal.Status)
}

func TestTriggerSyncIsolatesPerRecordFailures(t *testing.T) {
	campaigns := make(map[int64]*gateway.CampaignRecord)
	for id := int64(1); id <= 10; id++ {
		campaigns[id] = campaignRecord(id)
	}
	gw := &fakeGateway{
		campaigns:     campaigns,
		failCampaigns: map[int64]error{5: errors.New("ledger timeout")},
	}
	st := newMemStore()
	o := newTestOrchestrator(gw, st, &ledgerFee{})

	status := o.TriggerSync(Options{Campaigns: true})

	assert.Equal(t, 9, status.CampaignsSynced)
	require.Len(t, status.Errors, 1)
	assert.Contains(t, status.Errors[0], "campaign 5:")
	assert.Contains(t, status.Errors[0], "ledger timeout")

	// 单条失败不阻止整轮完成
	assert.NotNil(t, status.LastSyncTime)
	_, err := st.FindCampaignByLedgerID(5)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.FindCampaignByLedgerID(6)
	assert.NoError(t, err)
}

func TestTriggerSyncSingleFlight(t *testing.T) {
	gw := &fakeGateway{
		campaigns:    map[int64]*gateway.CampaignRecord{1: campaignRecord(1)},
		countEntered: make(chan struct{}, 1),
		countGate:    make(chan struct{}),
	}
	st := newMemStore()
	o := newTestOrchestrator(gw, st, &ledgerFee{})

	done := make(chan SyncStatus, 1)
	go func() {
		done <- o.TriggerSync(Options{Campaigns: true})
	}()

	// 等第一轮进入同步后再并发触发
	<-gw.countEntered

	status := o.TriggerSync(Options{Campaigns: true})
	assert.True(t, status.IsRunning, "concurrent trigger must observe the running pass instead of starting a second one")

	close(gw.countGate)
	first := <-done

	assert.Equal(t, 1, first.CampaignsSynced)
	gw.mu.Lock()
	calls := gw.countCalls
	gw.mu.Unlock()
	assert.Equal(t, 1, calls, "second trigger must not reach the ledger")

	// 运行结束后可以再次触发
	gw.countGate = nil
	gw.countEntered = nil
	again := o.TriggerSync(Options{Campaigns: true})
	assert.False(t, again.IsRunning)
	assert.Equal(t, 1, again.CampaignsSynced)
}

func TestSyncSingleCampaignCreatesProjection(t *testing.T) {
	record := campaignRecord(42)
	record.MilestoneCount = 2
	gw := &fakeGateway{campaigns: map[int64]*gateway.CampaignRecord{42: record}}
	st := newMemStore()
	o := newTestOrchestrator(gw, st, &ledgerFee{})

	require.NoError(t, o.SyncSingleCampaign(42))

	campaign, err := st.FindCampaignByLedgerID(42)
	require.NoError(t, err)
	assert.Equal(t, "Campaign 42", campaign.Title)
	assert.Equal(t, model.CampaignStatusActive, campaign.Status)
	assert.Equal(t, 2, campaign.MilestoneCount)
	assert.Equal(t, model.DefaultIndustry, campaign.Industry)
	assert.Equal(t, model.DefaultStage, campaign.Stage)
}

func TestSyncSingleCampaignPreservesLocalFields(t *testing.T) {
	st := newMemStore()
	require.NoError(t, st.CreateCampaign(&model.CampaignModel{
		LedgerId:    7,
		Title:       "Locally curated title",
		Description: "hand-written pitch",
		Industry:    "fintech",
		Stage:       "series-a",
		Status:      model.CampaignStatusDraft,
	}))

	record := campaignRecord(7)
	record.Title = "Ledger title"
	record.Description = "ledger description"
	record.RaisedAmount = 500
	record.StatusCode = 2
	record.MilestoneCount = 3
	gw := &fakeGateway{campaigns: map[int64]*gateway.CampaignRecord{7: record}}
	o := newTestOrchestrator(gw, st, &ledgerFee{})

	require.NoError(t, o.SyncSingleCampaign(7))

	campaign, err := st.FindCampaignByLedgerID(7)
	require.NoError(t, err)

	// 账本派生字段已刷新
	assert.Equal(t, int64(500), campaign.RaisedAmount)
	assert.Equal(t, model.CampaignStatusFunded, campaign.Status)
	assert.Equal(t, 3, campaign.MilestoneCount)

	// 本地录入字段不被同步覆盖
	assert.Equal(t, "Locally curated title", campaign.Title)
	assert.Equal(t, "hand-written pitch", campaign.Description)
	assert.Equal(t, "fintech", campaign.Industry)
	assert.Equal(t, "series-a", campaign.Stage)
}

func TestSyncSingleCampaignNotFound(t *testing.T) {
	gw := &fakeGateway{campaigns: map[int64]*gateway.CampaignRecord{}}
	o := newTestOrchestrator(gw, newMemStore(), &ledgerFee{})

	err := o.SyncSingleCampaign(99)
	assert.Error(t, err)
}

func TestSyncInvestmentFallbackFee(t *testing.T) {
	gw := &fakeGateway{
		investments: map[int64]*gateway.InvestmentRecord{
			1: {LedgerID: 1, CampaignLedgerID: 1, InvestorAddress: "0xaa", GrossAmount: 100000, StatusCode: 1},
		},
	}
	st := newMemStore()
	o := newTestOrchestrator(gw, st, &ledgerFee{err: errors.New("connection refused")})

	status := o.TriggerSync(Options{Investments: true})

	assert.Equal(t, 1, status.InvestmentsSynced)
	investment := st.investments[1]
	require.NotNil(t, investment)
	assert.True(t, investment.FeeFallback, "locally computed fee must be flagged for reconciliation")
	assert.Equal(t, int64(2500), investment.PlatformFee)
	assert.Equal(t, int64(97500), investment.NetAmount)
}

func TestTriggerSyncEntityCountFailureDoesNotAbortOtherTypes(t *testing.T) {
	gw := &fakeGateway{
		campaigns: map[int64]*gateway.CampaignRecord{1: campaignRecord(1)},
	}
	st := newMemStore()

	// 投资门面整体失败
	o := newTestOrchestrator(&failingInvestmentGateway{fakeGateway: gw}, st, &ledgerFee{})

	status := o.TriggerSync(DefaultOptions())

	assert.Equal(t, 1, status.CampaignsSynced)
	assert.Equal(t, 0, status.InvestmentsSynced)
	require.Len(t, status.Errors, 1)
	assert.Contains(t, status.Errors[0], "investment count:")
	assert.NotNil(t, status.LastSyncTime)
}

type failingInvestmentGateway struct {
	*fakeGateway
}

func (g *failingInvestmentGateway) GetInvestmentCount() (int64, error) {
	return 0, errors.New("contract not deployed")
}

func TestResetSyncStatus(t *testing.T) {
	gw := &fakeGateway{
		campaigns:     map[int64]*gateway.CampaignRecord{1: campaignRecord(1)},
		failCampaigns: map[int64]error{1: errors.New("boom")},
	}
	o := newTestOrchestrator(gw, newMemStore(), &ledgerFee{})

	status := o.TriggerSync(Options{Campaigns: true})
	require.Len(t, status.Errors, 1)
	require.NotNil(t, status.LastSyncTime)

	assert.True(t, o.ResetSyncStatus())

	status = o.GetSyncStatus()
	assert.Empty(t, status.Errors)
	assert.Nil(t, status.LastSyncTime)
	assert.Equal(t, 0, status.CampaignsSynced)
}

func TestResetSyncStatusRejectedWhileRunning(t *testing.T) {
	gw := &fakeGateway{
		campaigns:    map[int64]*gateway.CampaignRecord{1: campaignRecord(1)},
		countEntered: make(chan struct{}, 1),
		countGate:    make(chan struct{}),
	}
	o := newTestOrchestrator(gw, newMemStore(), &ledgerFee{})

	done := make(chan SyncStatus, 1)
	go func() {
		done <- o.TriggerSync(Options{Campaigns: true})
	}()
	<-gw.countEntered

	assert.False(t, o.ResetSyncStatus())

	close(gw.countGate)
	<-done
	assert.True(t, o.ResetSyncStatus())
}

// snapshot 复制全部投影内容，供前后对比
func (s *memStore) snapshot() (map[int64]model.CampaignModel, map[int64]model.InvestmentModel, map[string]model.MilestoneModel, map[int64]model.ProposalModel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	campaigns := make(map[int64]model.CampaignModel, len(s.campaigns))
	for id, c := range s.campaigns {
		campaigns[id] = *c
	}
	investments := make(map[int64]model.InvestmentModel, len(s.investments))
	for id, i := range s.investments {
		investments[id] = *i
	}
	milestones := make(map[string]model.MilestoneModel, len(s.milestones))
	for key, m := range s.milestones {
		milestones[key] = *m
	}
	proposals := make(map[int64]model.ProposalModel, len(s.proposals))
	for id, p := range s.proposals {
		proposals[id] = *p
	}
	return campaigns, investments, milestones, proposals
}

func TestTriggerSyncTwiceProducesNoDiff(t *testing.T) {
	gw := &fakeGateway{
		campaigns: map[int64]*gateway.CampaignRecord{
			1: campaignRecord(1),
			2: campaignRecord(2),
		},
		investments: map[int64]*gateway.InvestmentRecord{
			1: {LedgerID: 1, CampaignLedgerID: 1, InvestorAddress: "0xaa", GrossAmount: 100000, StatusCode: 1},
		},
		milestones: map[int64][]*gateway.MilestoneRecord{
			1: {{CampaignLedgerID: 1, Index: 0, Title: "MVP", TargetAmount: 500000, StatusCode: 0}},
		},
		proposals: map[int64]*gateway.ProposalRecord{
			1: {LedgerID: 1, CampaignLedgerID: 1, ProposerAddress: "0xcc", Title: "Extend deadline", StatusCode: 0},
		},
	}
	st := newMemStore()
	o := newTestOrchestrator(gw, st, &ledgerFee{})

	first := o.TriggerSync(DefaultOptions())
	require.Empty(t, first.Errors)
	campaigns, investments, milestones, proposals := st.snapshot()

	// 账本数据未变，重跑一轮不产生任何投影差异
	second := o.TriggerSync(DefaultOptions())
	require.Empty(t, second.Errors)
	assert.Equal(t, first.CampaignsSynced, second.CampaignsSynced)
	assert.Equal(t, first.InvestmentsSynced, second.InvestmentsSynced)
	assert.Equal(t, first.MilestonesSynced, second.MilestonesSynced)
	assert.Equal(t, first.ProposalsSynced, second.ProposalsSynced)

	campaigns2, investments2, milestones2, proposals2 := st.snapshot()
	assert.Equal(t, campaigns, campaigns2)
	assert.Equal(t, investments, investments2)
	assert.Equal(t, milestones, milestones2)
	assert.Equal(t, proposals, proposals2)

	// 没有重复行
	assert.Len(t, campaigns2, 2)
	assert.Len(t, investments2, 1)
	assert.Len(t, milestones2, 1)
	assert.Len(t, proposals2, 1)
}

func TestApplyCampaignAppliesRaisedAmountDecrease(t *testing.T) {
	st := newMemStore()
	require.NoError(t, st.CreateCampaign(&model.CampaignModel{
		LedgerId:     8,
		Title:        "Campaign 8",
		RaisedAmount: 1000,
		Status:       model.CampaignStatusActive,
	}))

	record := campaignRecord(8)
	record.RaisedAmount = 400
	gw := &fakeGateway{campaigns: map[int64]*gateway.CampaignRecord{8: record}}
	o := newTestOrchestrator(gw, st, &ledgerFee{})

	// 回落只告警，账本状态照常写入
	require.NoError(t, o.SyncSingleCampaign(8))

	campaign, err := st.FindCampaignByLedgerID(8)
	require.NoError(t, err)
	assert.Equal(t, int64(400), campaign.RaisedAmount)
}

func TestStatusSnapshotIsDetached(t *testing.T) {
	gw := &fakeGateway{
		campaigns:     map[int64]*gateway.CampaignRecord{1: campaignRecord(1)},
		failCampaigns: map[int64]error{1: errors.New("boom")},
	}
	o := newTestOrchestrator(gw, newMemStore(), &ledgerFee{})

	status := o.TriggerSync(Options{Campaigns: true})
	require.Len(t, status.Errors, 1)

	// 修改快照不影响编排器内部状态
	status.Errors[0] = "mutated"
	assert.Contains(t, o.GetSyncStatus().Errors[0], "campaign 1:")
}
