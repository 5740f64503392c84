package mapper

import (
	"testing"

	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestMapCampaignStatus(t *testing.T) {
	tests := []struct {
		name string
		code int
		want model.CampaignStatus
	}{
		{"draft", 0, model.CampaignStatusDraft},
		{"active", 1, model.CampaignStatusActive},
		{"funded", 2, model.CampaignStatusFunded},
		{"completed", 3, model.CampaignStatusCompleted},
		{"cancelled", 4, model.CampaignStatusCancelled},
		{"failed", 5, model.CampaignStatusFailed},
		{"expired", 6, model.CampaignStatusExpired},
		{"unknown code defaults to active", 99, model.CampaignStatusActive},
		{"negative code defaults to active", -1, model.CampaignStatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapCampaignStatus(tt.code))
		})
	}
}

func TestMapCategory(t *testing.T) {
	tests := []struct {
		name string
		code int
		want model.Category
	}{
		{"technology", 0, model.CategoryTechnology},
		{"healthcare", 1, model.CategoryHealthcare},
		{"finance", 2, model.CategoryFinance},
		{"education", 3, model.CategoryEducation},
		{"energy", 4, model.CategoryEnergy},
		{"agriculture", 5, model.CategoryAgriculture},
		{"retail", 6, model.CategoryRetail},
		{"unknown code defaults to other", 7, model.CategoryOther},
		{"negative code defaults to other", -5, model.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapCategory(tt.code))
		})
	}
}

func TestMapInvestmentStatus(t *testing.T) {
	tests := []struct {
		name string
		code int
		want model.InvestmentStatus
	}{
		{"pending", 0, model.InvestmentStatusPending},
		{"confirmed", 1, model.InvestmentStatusConfirmed},
		{"failed", 2, model.InvestmentStatusFailed},
		{"refunded", 3, model.InvestmentStatusRefunded},
		{"unknown code defaults to pending", 42, model.InvestmentStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapInvestmentStatus(tt.code))
		})
	}
}

func TestMapMilestoneStatus(t *testing.T) {
	tests := []struct {
		name string
		code int
		want model.MilestoneStatus
	}{
		{"pending", 0, model.MilestoneStatusPending},
		{"submitted", 1, model.MilestoneStatusSubmitted},
		{"voting", 2, model.MilestoneStatusVoting},
		{"approved", 3, model.MilestoneStatusApproved},
		{"rejected", 4, model.MilestoneStatusRejected},
		{"executed", 5, model.MilestoneStatusExecuted},
		{"unknown code defaults to pending", 100, model.MilestoneStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapMilestoneStatus(tt.code))
		})
	}
}

func TestMapProposalStatus(t *testing.T) {
	tests := []struct {
		name string
		code int
		want model.ProposalStatus
	}{
		{"active", 0, model.ProposalStatusActive},
		{"passed", 1, model.ProposalStatusPassed},
		{"rejected", 2, model.ProposalStatusRejected},
		{"executed", 3, model.ProposalStatusExecuted},
		{"expired", 4, model.ProposalStatusExpired},
		{"unknown code defaults to active", 9, model.ProposalStatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapProposalStatus(tt.code))
		})
	}
}
