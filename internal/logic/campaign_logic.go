package logic

import (
	"errors"
	"fmt"

	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/model"
	"gorm.io/gorm"
)

// CampaignLogic 活动业务逻辑
//
// 负责本地录入的字段（描述、图片、行业、阶段）；账本派生字段
// 由同步任务在下一轮对账时补齐。
type CampaignLogic struct {
	db *gorm.DB
}

// NewCampaignLogic 创建活动业务逻辑
func NewCampaignLogic(db *gorm.DB) *CampaignLogic {
	return &CampaignLogic{db: db}
}

// CreateCampaign 创建活动投影（本地写入，待同步对账）
func (l *CampaignLogic) CreateCampaign(campaign *model.CampaignModel) error {
	// 验证活动数据
	if err := l.validateCampaign(campaign); err != nil {
		return err
	}

	// 设置默认值
	campaign.Status = model.CampaignStatusDraft
	campaign.RaisedAmount = 0
	if campaign.Industry == "" {
		campaign.Industry = model.DefaultIndustry
	}
	if campaign.Stage == "" {
		campaign.Stage = model.DefaultStage
	}
	if campaign.Category == "" {
		campaign.Category = model.CategoryOther
	}

	if err := l.db.Create(campaign).Error; err != nil {
		return fmt.Errorf("创建活动失败: %w", err)
	}
	return nil
}

// GetCampaigns 获取活动列表
func (l *CampaignLogic) GetCampaigns(status, category string, page, pageSize int) ([]model.CampaignModel, int64, error) {
	query := l.db.Model(&model.CampaignModel{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取活动列表失败: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	var campaigns []model.CampaignModel
	if err := query.Order("ledger_id asc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&campaigns).Error; err != nil {
		return nil, 0, fmt.Errorf("获取活动列表失败: %w", err)
	}

	return campaigns, total, nil
}

// GetCampaign 按账本ID获取活动详情
func (l *CampaignLogic) GetCampaign(ledgerId int64) (*model.CampaignModel, error) {
	var campaign model.CampaignModel
	if err := l.db.Where("ledger_id = ?", ledgerId).First(&campaign).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("活动不存在")
		}
		return nil, fmt.Errorf("获取活动详情失败: %w", err)
	}
	return &campaign, nil
}

// UpdateCampaign 更新活动的本地维护字段
func (l *CampaignLogic) UpdateCampaign(ledgerId int64, updates map[string]interface{}) error {
	result := l.db.Model(&model.CampaignModel{}).
		Where("ledger_id = ?", ledgerId).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("更新活动失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("活动不存在")
	}
	return nil
}

// GetCampaignInvestments 获取活动的投资记录
func (l *CampaignLogic) GetCampaignInvestments(ledgerId int64, page, pageSize int) ([]model.InvestmentModel, int64, error) {
	query := l.db.Model(&model.InvestmentModel{}).Where("campaign_ledger_id = ?", ledgerId)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取投资记录失败: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var investments []model.InvestmentModel
	if err := query.Order("ledger_id asc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&investments).Error; err != nil {
		return nil, 0, fmt.Errorf("获取投资记录失败: %w", err)
	}

	return investments, total, nil
}

// GetCampaignMilestones 获取活动的里程碑列表
func (l *CampaignLogic) GetCampaignMilestones(ledgerId int64) ([]model.MilestoneModel, error) {
	var milestones []model.MilestoneModel
	if err := l.db.Where("campaign_ledger_id = ?", ledgerId).
		Order("milestone_index asc").
		Find(&milestones).Error; err != nil {
		return nil, fmt.Errorf("获取里程碑列表失败: %w", err)
	}
	return milestones, nil
}

// GetAllCampaignStats 获取全部活动的统计信息
func (l *CampaignLogic) GetAllCampaignStats() (map[string]interface{}, error) {
	var totalCampaigns int64
	l.db.Model(&model.CampaignModel{}).Count(&totalCampaigns)

	statusCounts := make(map[string]int64)
	for _, status := range []model.CampaignStatus{
		model.CampaignStatusDraft,
		model.CampaignStatusActive,
		model.CampaignStatusFunded,
		model.CampaignStatusCompleted,
		model.CampaignStatusCancelled,
		model.CampaignStatusFailed,
		model.CampaignStatusExpired,
	} {
		var count int64
		l.db.Model(&model.CampaignModel{}).
			Where("status = ?", status).
			Count(&count)
		statusCounts[string(status)] = count
	}

	// 统计总募资额
	var totalRaised int64
	l.db.Model(&model.CampaignModel{}).
		Select("COALESCE(SUM(raised_amount), 0)").
		Scan(&totalRaised)

	// 统计投资人数量（去重）
	var totalInvestors int64
	l.db.Model(&model.InvestmentModel{}).
		Distinct("investor_address").
		Count(&totalInvestors)

	return map[string]interface{}{
		"totalCampaigns": totalCampaigns,
		"statusCounts":   statusCounts,
		"totalRaised":    fmt.Sprintf("%d", totalRaised),
		"totalInvestors": totalInvestors,
	}, nil
}

// validateCampaign 验证活动数据
func (l *CampaignLogic) validateCampaign(campaign *model.CampaignModel) error {
	if campaign.LedgerId <= 0 {
		return errors.New("账本ID必须大于0")
	}
	if campaign.Title == "" {
		return errors.New("活动标题不能为空")
	}
	if campaign.TargetAmount <= 0 {
		return errors.New("目标金额必须大于0")
	}
	if campaign.CreatorAddress == "" {
		return errors.New("创建者地址不能为空")
	}
	return nil
}
