package syncer

import (
	"time"
)

// SyncStatus 同步运行状态
//
// 由编排器独占持有，外部只能通过 GetSyncStatus 拿到快照。
type SyncStatus struct {
	IsRunning         bool       `json:"is_running"`
	LastSyncTime      *time.Time `json:"last_sync_time,omitempty"`
	CampaignsSynced   int        `json:"campaigns_synced"`
	InvestmentsSynced int        `json:"investments_synced"`
	MilestonesSynced  int        `json:"milestones_synced"`
	ProposalsSynced   int        `json:"proposals_synced"`
	Errors            []string   `json:"errors"`
}

// snapshot 复制一份状态，错误列表深拷贝
func (s *SyncStatus) snapshot() SyncStatus {
	copied := *s
	copied.Errors = make([]string, len(s.Errors))
	copy(copied.Errors, s.Errors)
	if s.LastSyncTime != nil {
		t := *s.LastSyncTime
		copied.LastSyncTime = &t
	}
	return copied
}
