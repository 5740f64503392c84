package mapper

import (
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/model"
)

// 账本状态码到领域枚举的映射。
//
// 所有函数都是全函数：未识别的码落入默认分支，绝不报错，
// 账本新增状态码时同步不会因此中断。

// MapCampaignStatus 映射活动状态码，未知码默认 active
func MapCampaignStatus(code int) model.CampaignStatus {
	switch code {
	case 0:
		return model.CampaignStatusDraft
	case 1:
		return model.CampaignStatusActive
	case 2:
		return model.CampaignStatusFunded
	case 3:
		return model.CampaignStatusCompleted
	case 4:
		return model.CampaignStatusCancelled
	case 5:
		return model.CampaignStatusFailed
	case 6:
		return model.CampaignStatusExpired
	default:
		return model.CampaignStatusActive
	}
}

// MapCategory 映射活动类别码，未知码默认 other
func MapCategory(code int) model.Category {
	switch code {
	case 0:
		return model.CategoryTechnology
	case 1:
		return model.CategoryHealthcare
	case 2:
		return model.CategoryFinance
	case 3:
		return model.CategoryEducation
	case 4:
		return model.CategoryEnergy
	case 5:
		return model.CategoryAgriculture
	case 6:
		return model.CategoryRetail
	default:
		return model.CategoryOther
	}
}

// MapInvestmentStatus 映射投资状态码，未知码默认 pending
func MapInvestmentStatus(code int) model.InvestmentStatus {
	switch code {
	case 0:
		return model.InvestmentStatusPending
	case 1:
		return model.InvestmentStatusConfirmed
	case 2:
		return model.InvestmentStatusFailed
	case 3:
		return model.InvestmentStatusRefunded
	default:
		return model.InvestmentStatusPending
	}
}

// MapMilestoneStatus 映射里程碑状态码，未知码默认 pending
func MapMilestoneStatus(code int) model.MilestoneStatus {
	switch code {
	case 0:
		return model.MilestoneStatusPending
	case 1:
		return model.MilestoneStatusSubmitted
	case 2:
		return model.MilestoneStatusVoting
	case 3:
		return model.MilestoneStatusApproved
	case 4:
		return model.MilestoneStatusRejected
	case 5:
		return model.MilestoneStatusExecuted
	default:
		return model.MilestoneStatusPending
	}
}

// MapProposalStatus 映射提案状态码，未知码默认 active
func MapProposalStatus(code int) model.ProposalStatus {
	switch code {
	case 0:
		return model.ProposalStatusActive
	case 1:
		return model.ProposalStatusPassed
	case 2:
		return model.ProposalStatusRejected
	case 3:
		return model.ProposalStatusExecuted
	case 4:
		return model.ProposalStatusExpired
	default:
		return model.ProposalStatusActive
	}
}
