package gateway

import (
	"fmt"

	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/ledger"
)

// MilestoneGateway 里程碑合约门面
type MilestoneGateway struct {
	caller Caller
}

// NewMilestoneGateway 创建里程碑门面
func NewMilestoneGateway(caller Caller) *MilestoneGateway {
	return &MilestoneGateway{caller: caller}
}

// GetMilestoneCount 获取活动的里程碑数量
func (g *MilestoneGateway) GetMilestoneCount(campaignId int64) (int64, error) {
	result := g.caller.Query(ContractMilestone, "getMilestoneCount", []ledger.Param{ledger.Int64(campaignId)})
	if !result.Success {
		return 0, fmt.Errorf("failed to query milestone count for campaign %d: %s", campaignId, result.Error)
	}
	return decodeInt64(result.Data, 0)
}

// GetMilestone 获取单个里程碑记录
func (g *MilestoneGateway) GetMilestone(campaignId, index int64) (*MilestoneRecord, error) {
	result := g.caller.Query(ContractMilestone, "getMilestone",
		[]ledger.Param{ledger.Int64(campaignId), ledger.Int64(index)})
	if !result.Success {
		return nil, fmt.Errorf("failed to query milestone %d of campaign %d: %s", index, campaignId, result.Error)
	}

	// 账本返回顺序: title, targetAmount, status, votesFor, votesAgainst,
	// votingDeadline, executed
	title, err := decodeString(result.Data, 0)
	if err != nil {
		return nil, fmt.Errorf("milestone %d/%d: %w", campaignId, index, err)
	}
	target, err := decodeInt64(result.Data, 1)
	if err != nil {
		return nil, fmt.Errorf("milestone %d/%d: %w", campaignId, index, err)
	}
	status, err := decodeCode(result.Data, 2)
	if err != nil {
		return nil, fmt.Errorf("milestone %d/%d: %w", campaignId, index, err)
	}
	votesFor, err := decodeInt64(result.Data, 3)
	if err != nil {
		return nil, fmt.Errorf("milestone %d/%d: %w", campaignId, index, err)
	}
	votesAgainst, err := decodeInt64(result.Data, 4)
	if err != nil {
		return nil, fmt.Errorf("milestone %d/%d: %w", campaignId, index, err)
	}
	votingDeadline, err := decodeTime(result.Data, 5)
	if err != nil {
		return nil, fmt.Errorf("milestone %d/%d: %w", campaignId, index, err)
	}
	executed, err := decodeBool(result.Data, 6)
	if err != nil {
		return nil, fmt.Errorf("milestone %d/%d: %w", campaignId, index, err)
	}

	return &MilestoneRecord{
		CampaignLedgerID: campaignId,
		Index:            index,
		Title:            title,
		TargetAmount:     target,
		StatusCode:       status,
		VotesFor:         votesFor,
		VotesAgainst:     votesAgainst,
		VotingDeadline:   votingDeadline,
		Executed:         executed,
	}, nil
}
