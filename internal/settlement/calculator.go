package settlement

import (
	"fmt"

	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/logger"
)

// FeeQuerier 账本手续费查询能力
type FeeQuerier interface {
	CalculatePlatformFee(grossAmount int64) (int64, error)
}

// FeeResult 手续费计算结果
//
// Fallback=true 表示账本查询失败、手续费由本地公式兜底计算，
// 复核任务据此在账本恢复后重新核对。
type FeeResult struct {
	Fee      int64 `json:"fee"`
	Fallback bool  `json:"fallback"`
}

// VotingPowerStrategy 投票权重策略
//
// 当前为1:1恒等策略；治理加权上线时换实现即可，调用方不感知。
type VotingPowerStrategy interface {
	Name() string
	Power(investmentAmount int64) int64
}

// IdentityVotingPower 恒等投票权重
type IdentityVotingPower struct{}

// Name 策略名称
func (IdentityVotingPower) Name() string {
	return "identity"
}

// Power 投票权重等于投资金额
func (IdentityVotingPower) Power(investmentAmount int64) int64 {
	return investmentAmount
}

// Calculator 结算计算器
//
// 手续费优先取账本自身的费率计算结果，本地基点公式只在账本
// 不可达时兜底；两条路径在正常费率配置下结果一致。
type Calculator struct {
	querier     FeeQuerier
	basisPoints int64
	strategy    VotingPowerStrategy
}

// NewCalculator 创建结算计算器
func NewCalculator(querier FeeQuerier, feeBasisPoints int64, strategy VotingPowerStrategy) *Calculator {
	if strategy == nil {
		strategy = IdentityVotingPower{}
	}
	return &Calculator{
		querier:     querier,
		basisPoints: feeBasisPoints,
		strategy:    strategy,
	}
}

// PlatformFee 计算平台手续费
func (c *Calculator) PlatformFee(grossAmount int64) (FeeResult, error) {
	if grossAmount < 0 {
		return FeeResult{}, fmt.Errorf("gross amount must not be negative: %d", grossAmount)
	}

	if c.querier != nil {
		fee, err := c.querier.CalculatePlatformFee(grossAmount)
		if err == nil {
			if fee < 0 || fee > grossAmount {
				return FeeResult{}, fmt.Errorf("ledger returned invalid fee %d for gross amount %d", fee, grossAmount)
			}
			return FeeResult{Fee: fee, Fallback: false}, nil
		}
		logger.Warn("Ledger fee query failed, using local formula: %v", err)
	}

	return FeeResult{Fee: c.localFee(grossAmount), Fallback: true}, nil
}

// localFee 本地基点公式: floor(gross * bps / 10000)
func (c *Calculator) localFee(grossAmount int64) int64 {
	return grossAmount * c.basisPoints / 10000
}

// NetAmount 计算净投资额，手续费超过总额时拒绝而非截断
func (c *Calculator) NetAmount(grossAmount, fee int64) (int64, error) {
	if fee < 0 {
		return 0, fmt.Errorf("fee must not be negative: %d", fee)
	}
	if fee > grossAmount {
		return 0, fmt.Errorf("fee %d exceeds gross amount %d", fee, grossAmount)
	}
	return grossAmount - fee, nil
}

// VotingPower 按当前策略计算投票权重
func (c *Calculator) VotingPower(investmentAmount int64) int64 {
	return c.strategy.Power(investmentAmount)
}

// StrategyName 当前投票权重策略名称
func (c *Calculator) StrategyName() string {
	return c.strategy.Name()
}
