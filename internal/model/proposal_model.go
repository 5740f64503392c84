package model

import (
	"time"
)

// ProposalModel 治理提案投影
type ProposalModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	LedgerId         int64          `json:"ledger_id" gorm:"uniqueIndex;not null"`
	CampaignLedgerId int64          `json:"campaign_ledger_id" gorm:"index"`
	Title            string         `json:"title"`
	ProposerAddress  string         `json:"proposer_address"`
	VotesFor         int64          `json:"votes_for" gorm:"default:0"`
	VotesAgainst     int64          `json:"votes_against" gorm:"default:0"`
	VotingDeadline   time.Time      `json:"voting_deadline"`
	Status           ProposalStatus `json:"status" gorm:"default:'active'"`
	Executed         bool           `json:"executed" gorm:"default:false"`
}

// ProposalStatus 提案状态
type ProposalStatus string

const (
	ProposalStatusActive   ProposalStatus = "active"   // 投票中
	ProposalStatusPassed   ProposalStatus = "passed"   // 已通过
	ProposalStatusRejected ProposalStatus = "rejected" // 已否决
	ProposalStatusExecuted ProposalStatus = "executed" // 已执行
	ProposalStatusExpired  ProposalStatus = "expired"  // 已过期
)

// TableName 自定义表名
func (ProposalModel) TableName() string {
	return "proposal"
}
