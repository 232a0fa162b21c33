package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/civicpulse/civicpulse/middleware"
	"github.com/civicpulse/civicpulse/models"
	"github.com/civicpulse/civicpulse/utils"
)

const statsCachePrefix = "cache:stats:"

// StatsController provides platform statistics: complaint counts broken down
// by status and category, plus community and traffic counters.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate statistics for the platform.
func (s *StatsController) GetStats(ctx *gin.Context) {
	cacheKey := statsCachePrefix + "overview"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	}

	var userCount, complaintCount, communityCount int64
	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		userCount = 0
	}
	if err := s.db.Model(&models.Complaint{}).Count(&complaintCount).Error; err != nil {
		complaintCount = 0
	}
	if err := s.db.Model(&models.Community{}).Count(&communityCount).Error; err != nil {
		communityCount = 0
	}

	byStatus := map[string]int64{}
	for _, st := range models.ComplaintStatuses {
		var n int64
		if err := s.db.Model(&models.Complaint{}).Where("status = ?", st).Count(&n).Error; err != nil {
			n = 0
		}
		byStatus[string(st)] = n
	}

	byCategory := map[string]int64{}
	for _, cat := range models.ComplaintCategories {
		var n int64
		if err := s.db.Model(&models.Complaint{}).Where("category = ?", cat).Count(&n).Error; err != nil {
			n = 0
		}
		byCategory[string(cat)] = n
	}

	payload := gin.H{
		"user_count":      userCount,
		"complaint_count": complaintCount,
		"community_count": communityCount,
		"by_status":       byStatus,
		"by_category":     byCategory,
		"requests_today":  middleware.RequestsToday(),
	}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 5*time.Minute)
	utils.Success(ctx, payload)
}

// GetComplaintStats returns engagement figures for a single complaint.
func (s *StatsController) GetComplaintStats(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40025, "invalid complaint id")
		return
	}

	var complaint models.Complaint
	if err := s.db.First(&complaint, id).Error; err != nil {
		utils.LedgerError(ctx, 40420, err)
		return
	}

	var commentCount int64
	if err := s.db.Model(&models.Comment{}).Where("complaint_id = ?", id).Count(&commentCount).Error; err != nil {
		commentCount = 0
	}

	utils.Success(ctx, gin.H{
		"complaint_id":       complaint.ID,
		"status":             complaint.Status,
		"up_count":           complaint.Upvotes.Count(),
		"down_count":         complaint.Downvotes.Count(),
		"comment_count":      commentCount,
		"status_transitions": len(complaint.StatusHistory),
	})
}
