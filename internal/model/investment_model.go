package model

import (
	"time"
)

// InvestmentModel 投资记录投影
//
// 标准不变式：NetAmount + PlatformFee == GrossAmount，每次写入前校验。
// FeeFallback 标记手续费是否由本地公式兜底计算，供复核任务重新核对。
type InvestmentModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	LedgerId         int64            `json:"ledger_id" gorm:"uniqueIndex;not null"`
	CampaignLedgerId int64            `json:"campaign_ledger_id" gorm:"index;not null"`
	InvestorAddress  string           `json:"investor_address" gorm:"not null"`
	GrossAmount      int64            `json:"gross_amount" gorm:"not null"`
	PlatformFee      int64            `json:"platform_fee" gorm:"default:0"`
	NetAmount        int64            `json:"net_amount" gorm:"default:0"`
	VotingPower      int64            `json:"voting_power" gorm:"default:0"`
	FeeFallback      bool             `json:"fee_fallback" gorm:"default:false"`
	Status           InvestmentStatus `json:"status" gorm:"default:'pending'"`
	ObservedAt       time.Time        `json:"observed_at"`
}

// InvestmentStatus 投资状态
type InvestmentStatus string

const (
	InvestmentStatusPending   InvestmentStatus = "pending"   // 待确认
	InvestmentStatusConfirmed InvestmentStatus = "confirmed" // 已确认
	InvestmentStatusFailed    InvestmentStatus = "failed"    // 失败
	InvestmentStatusRefunded  InvestmentStatus = "refunded"  // 已退款
)

// TableName 自定义表名
func (InvestmentModel) TableName() string {
	return "investment"
}
