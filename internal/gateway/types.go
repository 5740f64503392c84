package gateway

import (
	"fmt"
	"math/big"
	"time"

	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
)

// 各业务域在配置中的合约键名
const (
	ContractCampaign   = "campaign"
	ContractInvestment = "investment"
	ContractMilestone  = "milestone"
	ContractGovernance = "governance"
)

// Caller 账本调用能力
type Caller interface {
	Query(contractName, function string, params []ledger.Param) ledger.QueryResult
	Execute(contractName, function string, params []ledger.Param, gas uint64) ledger.ExecuteResult
}

// CampaignRecord 账本侧募资活动记录
//
// 状态/类别保留账本原始整数码，由 mapper 统一转换成领域枚举。
type CampaignRecord struct {
	LedgerID       int64
	CreatorAddress string
	Title          string
	Description    string
	TargetAmount   int64
	RaisedAmount   int64
	Deadline       time.Time
	StatusCode     int
	CategoryCode   int
	MilestoneCount int64
}

// InvestmentRecord 账本侧投资记录
type InvestmentRecord struct {
	LedgerID         int64
	CampaignLedgerID int64
	InvestorAddress  string
	GrossAmount      int64
	StatusCode       int
	ObservedAt       time.Time
}

// MilestoneRecord 账本侧里程碑记录
type MilestoneRecord struct {
	CampaignLedgerID int64
	Index            int64
	Title            string
	TargetAmount     int64
	StatusCode       int
	VotesFor         int64
	VotesAgainst     int64
	VotingDeadline   time.Time
	Executed         bool
}

// ProposalRecord 账本侧治理提案记录
type ProposalRecord struct {
	LedgerID         int64
	CampaignLedgerID int64
	ProposerAddress  string
	Title            string
	VotesFor         int64
	VotesAgainst     int64
	VotingDeadline   time.Time
	StatusCode       int
	Executed         bool
}

// decodeInt64 从查询结果取整数
func decodeInt64(data []interface{}, idx int) (int64, error) {
	if idx >= len(data) {
		return 0, fmt.Errorf("missing field at index %d", idx)
	}
	switch v := data[idx].(type) {
	case *big.Int:
		// uint256 解包为 *big.Int，超出 int64 范围时拒绝而非静默截断
		if !v.IsInt64() {
			return 0, fmt.Errorf("integer field at index %d overflows int64: %s", idx, v.String())
		}
		return v.Int64(), nil
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("unexpected type %T for integer field at index %d", data[idx], idx)
	}
}

// decodeCode 从查询结果取状态/类别码
func decodeCode(data []interface{}, idx int) (int, error) {
	v, err := decodeInt64(data, idx)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// decodeString 从查询结果取字符串
func decodeString(data []interface{}, idx int) (string, error) {
	if idx >= len(data) {
		return "", fmt.Errorf("missing field at index %d", idx)
	}
	s, ok := data[idx].(string)
	if !ok {
		return "", fmt.Errorf("unexpected type %T for string field at index %d", data[idx], idx)
	}
	return s, nil
}

// decodeAddress 从查询结果取地址
func decodeAddress(data []interface{}, idx int) (string, error) {
	if idx >= len(data) {
		return "", fmt.Errorf("missing field at index %d", idx)
	}
	switch v := data[idx].(type) {
	case common.Address:
		return v.Hex(), nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("unexpected type %T for address field at index %d", data[idx], idx)
	}
}

// decodeBool 从查询结果取布尔值
func decodeBool(data []interface{}, idx int) (bool, error) {
	if idx >= len(data) {
		return false, fmt.Errorf("missing field at index %d", idx)
	}
	b, ok := data[idx].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected type %T for bool field at index %d", data[idx], idx)
	}
	return b, nil
}

// decodeTime 从查询结果取Unix时间戳
func decodeTime(data []interface{}, idx int) (time.Time, error) {
	sec, err := decodeInt64(data, idx)
	if err != nil {
		return time.Time{}, err
	}
	if sec == 0 {
		return time.Time{}, nil
	}
	return time.Unix(sec, 0).UTC(), nil
}
