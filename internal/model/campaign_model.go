package model

import (
	"time"
)

// CampaignModel 募资活动投影
//
// 账本是权威数据源，同步任务只负责账本派生字段（raised_amount、status、
// milestone_count、updated_at）；描述类字段由本地创建接口写入，同步不覆盖。
type CampaignModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 账本标识
	LedgerId int64 `json:"ledger_id" gorm:"uniqueIndex;not null"`

	// 基本信息（本地维护）
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	ImageURL    string `json:"image_url"`
	Industry    string `json:"industry"`
	Stage       string `json:"stage"`

	// 账本派生信息
	CreatorAddress string         `json:"creator_address" gorm:"not null"`
	Category       Category       `json:"category"`
	TargetAmount   int64          `json:"target_amount" gorm:"not null"`
	RaisedAmount   int64          `json:"raised_amount" gorm:"default:0"`
	Deadline       time.Time      `json:"deadline"`
	Status         CampaignStatus `json:"status" gorm:"default:'draft'"`
	MilestoneCount int            `json:"milestone_count" gorm:"default:0"`
}

// CampaignStatus 活动状态
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"     // 草稿
	CampaignStatusActive    CampaignStatus = "active"    // 募资中
	CampaignStatusFunded    CampaignStatus = "funded"    // 已达标
	CampaignStatusCompleted CampaignStatus = "completed" // 已完成
	CampaignStatusCancelled CampaignStatus = "cancelled" // 已取消
	CampaignStatusFailed    CampaignStatus = "failed"    // 失败
	CampaignStatusExpired   CampaignStatus = "expired"   // 已过期
)

// Category 活动类别
type Category string

const (
	CategoryTechnology  Category = "technology"  // 科技
	CategoryHealthcare  Category = "healthcare"  // 医疗健康
	CategoryFinance     Category = "finance"     // 金融
	CategoryEducation   Category = "education"   // 教育
	CategoryEnergy      Category = "energy"      // 能源
	CategoryAgriculture Category = "agriculture" // 农业
	CategoryRetail      Category = "retail"      // 零售
	CategoryOther       Category = "other"       // 其他
)

// 本地创建时的占位默认值，等待创建者补充
const (
	DefaultIndustry = "unspecified"
	DefaultStage    = "seed"
)

// TableName 自定义表名
func (CampaignModel) TableName() string {
	return "campaign"
}
