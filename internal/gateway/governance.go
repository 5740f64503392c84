package gateway

import (
	"fmt"

	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/ledger"
)

// GovernanceGateway 治理合约门面
type GovernanceGateway struct {
	caller Caller
}

// NewGovernanceGateway 创建治理门面
func NewGovernanceGateway(caller Caller) *GovernanceGateway {
	return &GovernanceGateway{caller: caller}
}

// GetProposalCount 获取账本上的提案总数
func (g *GovernanceGateway) GetProposalCount() (int64, error) {
	result := g.caller.Query(ContractGovernance, "getProposalCount", nil)
	if !result.Success {
		return 0, fmt.Errorf("failed to query proposal count: %s", result.Error)
	}
	return decodeInt64(result.Data, 0)
}

// GetProposal 获取单个提案记录
func (g *GovernanceGateway) GetProposal(id int64) (*ProposalRecord, error) {
	result := g.caller.Query(ContractGovernance, "getProposal", []ledger.Param{ledger.Int64(id)})
	if !result.Success {
		return nil, fmt.Errorf("failed to query proposal %d: %s", id, result.Error)
	}

	// 账本返回顺序: campaignId, proposer, title, votesFor, votesAgainst,
	// votingDeadline, status, executed
	campaignId, err := decodeInt64(result.Data, 0)
	if err != nil {
		return nil, fmt.Errorf("proposal %d: %w", id, err)
	}
	proposer, err := decodeAddress(result.Data, 1)
	if err != nil {
		return nil, fmt.Errorf("proposal %d: %w", id, err)
	}
	title, err := decodeString(result.Data, 2)
	if err != nil {
		return nil, fmt.Errorf("proposal %d: %w", id, err)
	}
	votesFor, err := decodeInt64(result.Data, 3)
	if err != nil {
		return nil, fmt.Errorf("proposal %d: %w", id, err)
	}
	votesAgainst, err := decodeInt64(result.Data, 4)
	if err != nil {
		return nil, fmt.Errorf("proposal %d: %w", id, err)
	}
	votingDeadline, err := decodeTime(result.Data, 5)
	if err != nil {
		return nil, fmt.Errorf("proposal %d: %w", id, err)
	}
	status, err := decodeCode(result.Data, 6)
	if err != nil {
		return nil, fmt.Errorf("proposal %d: %w", id, err)
	}
	executed, err := decodeBool(result.Data, 7)
	if err != nil {
		return nil, fmt.Errorf("proposal %d: %w", id, err)
	}

	return &ProposalRecord{
		LedgerID:         id,
		CampaignLedgerID: campaignId,
		ProposerAddress:  proposer,
		Title:            title,
		VotesFor:         votesFor,
		VotesAgainst:     votesAgainst,
		VotingDeadline:   votingDeadline,
		StatusCode:       status,
		Executed:         executed,
	}, nil
}
