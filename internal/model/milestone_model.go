package model

import (
	"time"
)

// MilestoneModel 里程碑投影
type MilestoneModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignLedgerId int64           `json:"campaign_ledger_id" gorm:"uniqueIndex:idx_campaign_milestone;not null"`
	MilestoneIndex   int64           `json:"milestone_index" gorm:"uniqueIndex:idx_campaign_milestone;not null"`
	Title            string          `json:"title"`
	TargetAmount     int64           `json:"target_amount" gorm:"default:0"`
	Status           MilestoneStatus `json:"status" gorm:"default:'pending'"`
	VotesFor         int64           `json:"votes_for" gorm:"default:0"`
	VotesAgainst     int64           `json:"votes_against" gorm:"default:0"`
	VotingDeadline   time.Time       `json:"voting_deadline"`
	Executed         bool            `json:"executed" gorm:"default:false"`
}

// MilestoneStatus 里程碑状态
type MilestoneStatus string

const (
	MilestoneStatusPending   MilestoneStatus = "pending"   // 待提交
	MilestoneStatusSubmitted MilestoneStatus = "submitted" // 已提交
	MilestoneStatusVoting    MilestoneStatus = "voting"    // 投票中
	MilestoneStatusApproved  MilestoneStatus = "approved"  // 已通过
	MilestoneStatusRejected  MilestoneStatus = "rejected"  // 已否决
	MilestoneStatusExecuted  MilestoneStatus = "executed"  // 已执行
)

// TableName 自定义表名
func (MilestoneModel) TableName() string {
	return "milestone"
}
