package store

import (
	"errors"
	"fmt"

	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/model"
	"gorm.io/gorm"
)

// GormStore 基于 gorm 的投影存储实现
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建投影存储
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// FindCampaignByLedgerID 按账本ID查找活动
func (s *GormStore) FindCampaignByLedgerID(ledgerId int64) (*model.CampaignModel, error) {
	var campaign model.CampaignModel
	if err := s.db.Where("ledger_id = ?", ledgerId).First(&campaign).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find campaign %d: %w", ledgerId, err)
	}
	return &campaign, nil
}

// CreateCampaign 创建活动投影
func (s *GormStore) CreateCampaign(campaign *model.CampaignModel) error {
	if err := s.db.Create(campaign).Error; err != nil {
		return fmt.Errorf("failed to create campaign %d: %w", campaign.LedgerId, err)
	}
	return nil
}

// PatchCampaign 更新活动的指定字段
func (s *GormStore) PatchCampaign(ledgerId int64, updates map[string]interface{}) error {
	result := s.db.Model(&model.CampaignModel{}).
		Where("ledger_id = ?", ledgerId).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to patch campaign %d: %w", ledgerId, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCampaignLedgerIDs 获取所有活动的账本ID（升序）
func (s *GormStore) ListCampaignLedgerIDs() ([]int64, error) {
	var ids []int64
	if err := s.db.Model(&model.CampaignModel{}).
		Order("ledger_id asc").
		Pluck("ledger_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list campaign ledger ids: %w", err)
	}
	return ids, nil
}

// UpsertInvestment 按账本ID幂等写入投资记录
func (s *GormStore) UpsertInvestment(investment *model.InvestmentModel) error {
	var existing model.InvestmentModel
	err := s.db.Where("ledger_id = ?", investment.LedgerId).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.Create(investment).Error; err != nil {
			return fmt.Errorf("failed to create investment %d: %w", investment.LedgerId, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find investment %d: %w", investment.LedgerId, err)
	}

	updates := map[string]interface{}{
		"campaign_ledger_id": investment.CampaignLedgerId,
		"investor_address":   investment.InvestorAddress,
		"gross_amount":       investment.GrossAmount,
		"platform_fee":       investment.PlatformFee,
		"net_amount":         investment.NetAmount,
		"voting_power":       investment.VotingPower,
		"fee_fallback":       investment.FeeFallback,
		"status":             investment.Status,
		"observed_at":        investment.ObservedAt,
	}
	if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update investment %d: %w", investment.LedgerId, err)
	}
	return nil
}

// PatchInvestment 更新投资记录的指定字段
func (s *GormStore) PatchInvestment(ledgerId int64, updates map[string]interface{}) error {
	result := s.db.Model(&model.InvestmentModel{}).
		Where("ledger_id = ?", ledgerId).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to patch investment %d: %w", ledgerId, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFallbackFeeInvestments 获取手续费由本地公式兜底计算的投资记录
func (s *GormStore) ListFallbackFeeInvestments(limit int) ([]model.InvestmentModel, error) {
	var investments []model.InvestmentModel
	if err := s.db.Where("fee_fallback = ?", true).
		Order("ledger_id asc").
		Limit(limit).
		Find(&investments).Error; err != nil {
		return nil, fmt.Errorf("failed to list fallback fee investments: %w", err)
	}
	return investments, nil
}

// UpsertMilestone 按(活动ID, 序号)幂等写入里程碑
func (s *GormStore) UpsertMilestone(milestone *model.MilestoneModel) error {
	var existing model.MilestoneModel
	err := s.db.Where("campaign_ledger_id = ? AND milestone_index = ?",
		milestone.CampaignLedgerId, milestone.MilestoneIndex).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.Create(milestone).Error; err != nil {
			return fmt.Errorf("failed to create milestone %d/%d: %w",
				milestone.CampaignLedgerId, milestone.MilestoneIndex, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find milestone %d/%d: %w",
			milestone.CampaignLedgerId, milestone.MilestoneIndex, err)
	}

	updates := map[string]interface{}{
		"title":           milestone.Title,
		"target_amount":   milestone.TargetAmount,
		"status":          milestone.Status,
		"votes_for":       milestone.VotesFor,
		"votes_against":   milestone.VotesAgainst,
		"voting_deadline": milestone.VotingDeadline,
		"executed":        milestone.Executed,
	}
	if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update milestone %d/%d: %w",
			milestone.CampaignLedgerId, milestone.MilestoneIndex, err)
	}
	return nil
}

// UpsertProposal 按账本ID幂等写入提案
func (s *GormStore) UpsertProposal(proposal *model.ProposalModel) error {
	var existing model.ProposalModel
	err := s.db.Where("ledger_id = ?", proposal.LedgerId).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.Create(proposal).Error; err != nil {
			return fmt.Errorf("failed to create proposal %d: %w", proposal.LedgerId, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find proposal %d: %w", proposal.LedgerId, err)
	}

	updates := map[string]interface{}{
		"campaign_ledger_id": proposal.CampaignLedgerId,
		"proposer_address":   proposal.ProposerAddress,
		"title":              proposal.Title,
		"votes_for":          proposal.VotesFor,
		"votes_against":      proposal.VotesAgainst,
		"voting_deadline":    proposal.VotingDeadline,
		"status":             proposal.Status,
		"executed":           proposal.Executed,
	}
	if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update proposal %d: %w", proposal.LedgerId, err)
	}
	return nil
}
