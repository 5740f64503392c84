package gateway

import (
	"fmt"

	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/ledger"
)

// CampaignGateway 募资活动合约门面
type CampaignGateway struct {
	caller Caller
}

// NewCampaignGateway 创建募资活动门面
func NewCampaignGateway(caller Caller) *CampaignGateway {
	return &CampaignGateway{caller: caller}
}

// GetCampaignCount 获取账本上的活动总数
func (g *CampaignGateway) GetCampaignCount() (int64, error) {
	result := g.caller.Query(ContractCampaign, "getCampaignCount", nil)
	if !result.Success {
		return 0, fmt.Errorf("failed to query campaign count: %s", result.Error)
	}
	return decodeInt64(result.Data, 0)
}

// GetCampaign 获取单个活动记录
func (g *CampaignGateway) GetCampaign(id int64) (*CampaignRecord, error) {
	result := g.caller.Query(ContractCampaign, "getCampaign", []ledger.Param{ledger.Int64(id)})
	if !result.Success {
		return nil, fmt.Errorf("failed to query campaign %d: %s", id, result.Error)
	}
	return decodeCampaign(id, result.Data)
}

// decodeCampaign 解码活动记录
//
// 账本返回顺序: creator, title, description, targetAmount, raisedAmount,
// deadline, status, category, milestoneCount
func decodeCampaign(id int64, data []interface{}) (*CampaignRecord, error) {
	creator, err := decodeAddress(data, 0)
	if err != nil {
		return nil, fmt.Errorf("campaign %d: %w", id, err)
	}
	title, err := decodeString(data, 1)
	if err != nil {
		return nil, fmt.Errorf("campaign %d: %w", id, err)
	}
	description, err := decodeString(data, 2)
	if err != nil {
		return nil, fmt.Errorf("campaign %d: %w", id, err)
	}
	target, err := decodeInt64(data, 3)
	if err != nil {
		return nil, fmt.Errorf("campaign %d: %w", id, err)
	}
	raised, err := decodeInt64(data, 4)
	if err != nil {
		return nil, fmt.Errorf("campaign %d: %w", id, err)
	}
	deadline, err := decodeTime(data, 5)
	if err != nil {
		return nil, fmt.Errorf("campaign %d: %w", id, err)
	}
	status, err := decodeCode(data, 6)
	if err != nil {
		return nil, fmt.Errorf("campaign %d: %w", id, err)
	}
	category, err := decodeCode(data, 7)
	if err != nil {
		return nil, fmt.Errorf("campaign %d: %w", id, err)
	}
	milestoneCount, err := decodeInt64(data, 8)
	if err != nil {
		return nil, fmt.Errorf("campaign %d: %w", id, err)
	}

	return &CampaignRecord{
		LedgerID:       id,
		CreatorAddress: creator,
		Title:          title,
		Description:    description,
		TargetAmount:   target,
		RaisedAmount:   raised,
		Deadline:       deadline,
		StatusCode:     status,
		CategoryCode:   category,
		MilestoneCount: milestoneCount,
	}, nil
}
