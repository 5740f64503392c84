package handler

import (
	"net/http"
	"strconv"

	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/config"
	"github.com/TheSoftNode/FUNDFLOW-HEDERA-sub001/internal/syncer"
	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	orchestrator *syncer.Orchestrator
	config       *config.Config
}

func NewSyncHandler(orchestrator *syncer.Orchestrator, cfg *config.Config) *SyncHandler {
	return &SyncHandler{
		orchestrator: orchestrator,
		config:       cfg,
	}
}

// TriggerSync 手动触发账本同步
//
// 同步过程中的账本/数据库错误记录在返回的 errors 列表里，
// 不改变响应状态码；若已有同步在运行则直接返回当前状态。
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	var body struct {
		Campaigns   *bool `json:"campaigns"`
		Investments *bool `json:"investments"`
		Milestones  *bool `json:"milestones"`
		Governance  *bool `json:"governance"`
	}

	// 请求体可为空，默认同步全部实体
	opts := syncer.DefaultOptions()
	if err := c.ShouldBindJSON(&body); err == nil {
		if body.Campaigns != nil {
			opts.Campaigns = *body.Campaigns
		}
		if body.Investments != nil {
			opts.Investments = *body.Investments
		}
		if body.Milestones != nil {
			opts.Milestones = *body.Milestones
		}
		if body.Governance != nil {
			opts.Governance = *body.Governance
		}
	}

	status := h.orchestrator.TriggerSync(opts)
	SuccessResponse(c, http.StatusOK, "同步已执行", status)
}

// GetSyncStatus 获取同步状态
func (h *SyncHandler) GetSyncStatus(c *gin.Context) {
	status := h.orchestrator.GetSyncStatus()
	SuccessResponse(c, http.StatusOK, "ok", status)
}

// ResetSyncStatus 重置同步状态
func (h *SyncHandler) ResetSyncStatus(c *gin.Context) {
	if !h.orchestrator.ResetSyncStatus() {
		ErrorResponse(c, http.StatusConflict, "同步正在运行，无法重置")
		return
	}
	SuccessResponse(c, http.StatusOK, "同步状态已重置", nil)
}

// SyncCampaign 同步单个活动
func (h *SyncHandler) SyncCampaign(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	if err := h.orchestrator.SyncSingleCampaign(id); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "活动同步成功", gin.H{"campaign_id": id})
}

// StartAutoSync 开启自动同步
func (h *SyncHandler) StartAutoSync(c *gin.Context) {
	var body struct {
		IntervalMinutes int `json:"interval_minutes"`
	}

	interval := h.config.Sync.IntervalMinutes
	if err := c.ShouldBindJSON(&body); err == nil && body.IntervalMinutes > 0 {
		interval = body.IntervalMinutes
	}

	if err := h.orchestrator.StartAutoSync(interval); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "自动同步已开启", gin.H{"interval_minutes": interval})
}

// StopAutoSync 停止自动同步
func (h *SyncHandler) StopAutoSync(c *gin.Context) {
	h.orchestrator.StopAutoSync()
	SuccessResponse(c, http.StatusOK, "自动同步已停止", nil)
}
