package store

import (
	"errors"

	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/model"
)

// ErrNotFound 投影记录不存在
var ErrNotFound = errors.New("projection record not found")

// ProjectionStore 投影存储能力
//
// 同步任务只写账本派生字段；描述类字段归本地创建接口所有，
// 按字段划分写入方，避免同步覆盖本地录入的内容。
type ProjectionStore interface {
	// 活动
	FindCampaignByLedgerID(ledgerId int64) (*model.CampaignModel, error)
	CreateCampaign(campaign *model.CampaignModel) error
	PatchCampaign(ledgerId int64, updates map[string]interface{}) error
	ListCampaignLedgerIDs() ([]int64, error)

	// 投资
	UpsertInvestment(investment *model.InvestmentModel) error
	PatchInvestment(ledgerId int64, updates map[string]interface{}) error
	ListFallbackFeeInvestments(limit int) ([]model.InvestmentModel, error)

	// 里程碑
	UpsertMilestone(milestone *model.MilestoneModel) error

	// 治理提案
	UpsertProposal(proposal *model.ProposalModel) error
}
