package gateway

import (
	"fmt"

	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
)

// InvestmentGateway 投资合约门面
type InvestmentGateway struct {
	caller Caller
}

// NewInvestmentGateway 创建投资门面
func NewInvestmentGateway(caller Caller) *InvestmentGateway {
	return &InvestmentGateway{caller: caller}
}

// GetInvestmentCount 获取账本上的投资记录总数
func (g *InvestmentGateway) GetInvestmentCount() (int64, error) {
	result := g.caller.Query(ContractInvestment, "getInvestmentCount", nil)
	if !result.Success {
		return 0, fmt.Errorf("failed to query investment count: %s", result.Error)
	}
	return decodeInt64(result.Data, 0)
}

// GetInvestment 获取单条投资记录
func (g *InvestmentGateway) GetInvestment(id int64) (*InvestmentRecord, error) {
	result := g.caller.Query(ContractInvestment, "getInvestment", []ledger.Param{ledger.Int64(id)})
	if !result.Success {
		return nil, fmt.Errorf("failed to query investment %d: %s", id, result.Error)
	}

	// 账本返回顺序: campaignId, investor, amount, status, timestamp
	campaignId, err := decodeInt64(result.Data, 0)
	if err != nil {
		return nil, fmt.Errorf("investment %d: %w", id, err)
	}
	investor, err := decodeAddress(result.Data, 1)
	if err != nil {
		return nil, fmt.Errorf("investment %d: %w", id, err)
	}
	amount, err := decodeInt64(result.Data, 2)
	if err != nil {
		return nil, fmt.Errorf("investment %d: %w", id, err)
	}
	status, err := decodeCode(result.Data, 3)
	if err != nil {
		return nil, fmt.Errorf("investment %d: %w", id, err)
	}
	observedAt, err := decodeTime(result.Data, 4)
	if err != nil {
		return nil, fmt.Errorf("investment %d: %w", id, err)
	}

	return &InvestmentRecord{
		LedgerID:         id,
		CampaignLedgerID: campaignId,
		InvestorAddress:  investor,
		GrossAmount:      amount,
		StatusCode:       status,
		ObservedAt:       observedAt,
	}, nil
}

// GetInvestorsForCampaign 获取活动的投资人地址列表
func (g *InvestmentGateway) GetInvestorsForCampaign(campaignId int64) ([]string, error) {
	result := g.caller.Query(ContractInvestment, "getInvestorsForCampaign", []ledger.Param{ledger.Int64(campaignId)})
	if !result.Success {
		return nil, fmt.Errorf("failed to query investors for campaign %d: %s", campaignId, result.Error)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("investors for campaign %d: empty result", campaignId)
	}

	raw, ok := result.Data[0].([]common.Address)
	if !ok {
		return nil, fmt.Errorf("investors for campaign %d: unexpected type %T", campaignId, result.Data[0])
	}

	investors := make([]string, 0, len(raw))
	for _, addr := range raw {
		investors = append(investors, addr.Hex())
	}
	return investors, nil
}

// CalculatePlatformFee 查询账本自身的手续费计算结果
func (g *InvestmentGateway) CalculatePlatformFee(grossAmount int64) (int64, error) {
	result := g.caller.Query(ContractInvestment, "calculatePlatformFee", []ledger.Param{ledger.Int64(grossAmount)})
	if !result.Success {
		return 0, fmt.Errorf("failed to query platform fee for %d: %s", grossAmount, result.Error)
	}
	return decodeInt64(result.Data, 0)
}
