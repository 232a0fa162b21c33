package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/civicpulse/civicpulse/engagement"
	"github.com/civicpulse/civicpulse/models"
	"github.com/civicpulse/civicpulse/notify"
	"github.com/civicpulse/civicpulse/utils"
)

const complaintCachePrefix = "cache:complaints:"

// ComplaintController handles civic complaint lifecycle and voting.
type ComplaintController struct {
	db  *gorm.DB
	bus *notify.Bus
}

// NewComplaintController creates a new ComplaintController instance.
func NewComplaintController(db *gorm.DB, bus *notify.Bus) *ComplaintController {
	return &ComplaintController{db: db, bus: bus}
}

// Create files a new complaint for the authenticated user.
func (cc *ComplaintController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Title       string   `json:"title" binding:"required,max=255"`
		Description string   `json:"description" binding:"required"`
		Category    string   `json:"category" binding:"required"`
		Priority    string   `json:"priority"`
		Latitude    float64  `json:"latitude"`
		Longitude   float64  `json:"longitude"`
		Address     string   `json:"address" binding:"max=512"`
		ImageURLs   []string `json:"image_urls"`
		CommunityID *uint    `json:"community_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	category := models.ComplaintCategory(req.Category)
	if !category.Valid() {
		utils.Error(ctx, http.StatusBadRequest, 40021, "unknown category")
		return
	}
	priority := models.PriorityMedium
	if req.Priority != "" {
		priority = models.ComplaintPriority(req.Priority)
		if !priority.Valid() {
			utils.Error(ctx, http.StatusBadRequest, 40022, "unknown priority")
			return
		}
	}

	if req.CommunityID != nil {
		var community models.Community
		if err := cc.db.First(&community, *req.CommunityID).Error; err != nil {
			utils.Error(ctx, http.StatusNotFound, 40422, "community not found")
			return
		}
		if !community.AllowComplaintSharing {
			utils.Error(ctx, http.StatusForbidden, 40320, "community does not accept complaint sharing")
			return
		}
	}

	complaint := models.Complaint{
		Title:       utils.SanitizeStrict(req.Title),
		Description: utils.Sanitize(req.Description),
		Category:    category,
		Status:      models.StatusSubmitted,
		Priority:    priority,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     utils.SanitizeStrict(req.Address),
		ImageURLs:   models.StringList(req.ImageURLs),
		SubmitterID: userID,
		CommunityID: req.CommunityID,
	}
	if err := cc.db.Create(&complaint).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create complaint")
		return
	}
	cc.markImagesAttached(req.ImageURLs)

	utils.InvalidateByPrefix(complaintCachePrefix)
	cc.bus.Publish(notify.ComplaintCreated, complaint.ID, userID, gin.H{"category": complaint.Category})
	utils.Success(ctx, gin.H{"complaint": complaint})
}

// List returns complaints with optional status, category, priority, submitter,
// community, and bounding-box filters. Unauthenticated list pages are cached.
func (cc *ComplaintController) List(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	cacheKey := complaintCachePrefix + "list:" + ctx.Request.URL.RawQuery
	if _, authed := getUserID(ctx); !authed {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
			return
		}
	}

	query := cc.db.Model(&models.Complaint{})
	if s := ctx.Query("status"); s != "" {
		if !models.ComplaintStatus(s).Valid() {
			utils.Error(ctx, http.StatusBadRequest, 40023, "unknown status filter")
			return
		}
		query = query.Where("status = ?", s)
	}
	if c := ctx.Query("category"); c != "" {
		if !models.ComplaintCategory(c).Valid() {
			utils.Error(ctx, http.StatusBadRequest, 40021, "unknown category")
			return
		}
		query = query.Where("category = ?", c)
	}
	if p := ctx.Query("priority"); p != "" {
		if !models.ComplaintPriority(p).Valid() {
			utils.Error(ctx, http.StatusBadRequest, 40022, "unknown priority")
			return
		}
		query = query.Where("priority = ?", p)
	}
	if sub := ctx.Query("submitter_id"); sub != "" {
		if id, err := strconv.ParseUint(sub, 10, 64); err == nil {
			query = query.Where("submitter_id = ?", id)
		}
	}
	if com := ctx.Query("community_id"); com != "" {
		if id, err := strconv.ParseUint(com, 10, 64); err == nil {
			query = query.Where("community_id = ?", id)
		}
	}

	// "near" filtering uses a degree bounding box around lat/lng. Coarse but
	// index friendly; precise distance ranking is left to the client.
	if latStr, lngStr := ctx.Query("lat"), ctx.Query("lng"); latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			utils.Error(ctx, http.StatusBadRequest, 40024, "invalid coordinates")
			return
		}
		radiusKm := 5.0
		if r, err := strconv.ParseFloat(ctx.Query("radius_km"), 64); err == nil && r > 0 && r <= 100 {
			radiusKm = r
		}
		latDelta := radiusKm / 111.0
		lngDelta := radiusKm / 85.0
		query = query.
			Where("latitude BETWEEN ? AND ?", lat-latDelta, lat+latDelta).
			Where("longitude BETWEEN ? AND ?", lng-lngDelta, lng+lngDelta)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count complaints")
		return
	}

	sort := "created_at DESC"
	if ctx.Query("sort") == "votes" {
		sort = "updated_at DESC"
	}

	var complaints []models.Complaint
	if err := query.Preload("Submitter").
		Order(sort).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&complaints).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list complaints")
		return
	}

	userID, _ := getUserID(ctx)
	items := make([]gin.H, 0, len(complaints))
	for i := range complaints {
		items = append(items, complaintView(&complaints[i], userID))
	}

	payload := gin.H{"complaints": items, "pagination": paginationPayload(page, pageSize, total)}
	if userID == 0 {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 5*time.Minute)
	}
	utils.Success(ctx, payload)
}

// Get returns a single complaint with history and resolution.
func (cc *ComplaintController) Get(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40025, "invalid complaint id")
		return
	}

	var complaint models.Complaint
	if err := cc.db.Preload("Submitter").First(&complaint, id).Error; err != nil {
		utils.LedgerError(ctx, 40420, err)
		return
	}

	userID, _ := getUserID(ctx)
	utils.Success(ctx, gin.H{"complaint": complaintView(&complaint, userID)})
}

// Update edits a complaint's descriptive fields. Only the submitter may edit,
// and only while the complaint is still in the submitted state.
func (cc *ComplaintController) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40025, "invalid complaint id")
		return
	}

	var req struct {
		Title       string   `json:"title" binding:"omitempty,max=255"`
		Description string   `json:"description"`
		Category    string   `json:"category"`
		Priority    string   `json:"priority"`
		Address     string   `json:"address" binding:"omitempty,max=512"`
		ImageURLs   []string `json:"image_urls"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	err := cc.db.Transaction(func(tx *gorm.DB) error {
		var complaint models.Complaint
		if err := lockForUpdate(tx, &complaint, id); err != nil {
			return err
		}
		if complaint.SubmitterID != userID && !isElevated(ctx) {
			return fmt.Errorf("%w: only the submitter may edit", engagement.ErrDenied)
		}
		if complaint.Status != models.StatusSubmitted {
			return fmt.Errorf("%w: complaint is already %s", engagement.ErrInvalidState, complaint.Status)
		}

		if req.Title != "" {
			complaint.Title = utils.SanitizeStrict(req.Title)
		}
		if req.Description != "" {
			complaint.Description = utils.Sanitize(req.Description)
		}
		if req.Category != "" {
			category := models.ComplaintCategory(req.Category)
			if !category.Valid() {
				return fmt.Errorf("%w: unknown category %q", engagement.ErrInvalidState, req.Category)
			}
			complaint.Category = category
		}
		if req.Priority != "" {
			priority := models.ComplaintPriority(req.Priority)
			if !priority.Valid() {
				return fmt.Errorf("%w: unknown priority %q", engagement.ErrInvalidState, req.Priority)
			}
			complaint.Priority = priority
		}
		if req.Address != "" {
			complaint.Address = utils.SanitizeStrict(req.Address)
		}
		if req.ImageURLs != nil {
			complaint.ImageURLs = models.StringList(req.ImageURLs)
		}
		return tx.Save(&complaint).Error
	})
	if err != nil {
		utils.LedgerError(ctx, 50023, err)
		return
	}
	cc.markImagesAttached(req.ImageURLs)

	utils.InvalidateByPrefix(complaintCachePrefix)
	var updated models.Complaint
	cc.db.Preload("Submitter").First(&updated, id)
	utils.Success(ctx, gin.H{"complaint": complaintView(&updated, userID)})
}

// UpdateStatus moves a complaint through the municipal workflow, recording the
// transition in the append-only status log. Moderator or admin role required.
func (cc *ComplaintController) UpdateStatus(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !isElevated(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40321, "moderator role required")
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40025, "invalid complaint id")
		return
	}

	var req struct {
		Status  string `json:"status" binding:"required"`
		Comment string `json:"comment" binding:"max=1000"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	var complaint models.Complaint
	err := cc.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx, &complaint, id); err != nil {
			return err
		}
		if err := complaint.ChangeStatus(models.ComplaintStatus(req.Status), userID, utils.SanitizeStrict(req.Comment)); err != nil {
			return err
		}
		return tx.Save(&complaint).Error
	})
	if err != nil {
		utils.LedgerError(ctx, 50024, err)
		return
	}

	utils.InvalidateByPrefix(complaintCachePrefix)
	cc.bus.Publish(notify.ComplaintStatusChanged, complaint.ID, userID, gin.H{"status": complaint.Status})
	utils.Success(ctx, gin.H{
		"complaint_id":   complaint.ID,
		"status":         complaint.Status,
		"status_history": complaint.StatusHistory,
		"resolution":     complaint.ResolutionOrNil(),
	})
}

// Assign sets or clears the assignee. Admin role required.
func (cc *ComplaintController) Assign(ctx *gin.Context) {
	_, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40323, "admin role required")
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40025, "invalid complaint id")
		return
	}

	var req struct {
		AssigneeID *uint `json:"assignee_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	if req.AssigneeID != nil {
		var assignee models.User
		if err := cc.db.First(&assignee, *req.AssigneeID).Error; err != nil {
			utils.Error(ctx, http.StatusNotFound, 40410, "assignee not found")
			return
		}
		if !assignee.Elevated() {
			utils.Error(ctx, http.StatusBadRequest, 40026, "assignee must hold a moderator or admin role")
			return
		}
	}

	var complaint models.Complaint
	err := cc.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx, &complaint, id); err != nil {
			return err
		}
		complaint.AssigneeID = req.AssigneeID
		return tx.Save(&complaint).Error
	})
	if err != nil {
		utils.LedgerError(ctx, 50025, err)
		return
	}

	utils.InvalidateByPrefix(complaintCachePrefix)
	utils.Success(ctx, gin.H{"complaint_id": complaint.ID, "assignee_id": complaint.AssigneeID})
}

// Vote toggles the caller's up or down vote. A repeat of the current vote
// removes it; the opposite direction switches it. The whole read-modify-write
// runs under a row lock so concurrent toggles serialize.
func (cc *ComplaintController) Vote(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40025, "invalid complaint id")
		return
	}

	var req struct {
		VoteType string `json:"vote_type" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	dir, err := engagement.ParseVoteState(req.VoteType)
	if err != nil {
		utils.LedgerError(ctx, 40027, err)
		return
	}

	var result engagement.VoteResult
	err = cc.db.Transaction(func(tx *gorm.DB) error {
		var complaint models.Complaint
		if err := lockForUpdate(tx, &complaint, id); err != nil {
			return err
		}
		r, err := engagement.ToggleVote(&complaint.Upvotes, &complaint.Downvotes, userID, dir)
		if err != nil {
			return err
		}
		result = r
		return tx.Model(&complaint).Updates(map[string]interface{}{
			"upvotes":   complaint.Upvotes,
			"downvotes": complaint.Downvotes,
		}).Error
	})
	if err != nil {
		utils.LedgerError(ctx, 50026, err)
		return
	}

	utils.InvalidateByPrefix(complaintCachePrefix)
	cc.bus.Publish(notify.ComplaintVoted, id, userID, result)
	utils.Success(ctx, gin.H{
		"complaint_id": id,
		"up_count":     result.UpCount,
		"down_count":   result.DownCount,
		"user_state":   result.UserState,
	})
}

// Delete removes a complaint. Submitter or elevated role only.
func (cc *ComplaintController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40025, "invalid complaint id")
		return
	}

	var complaint models.Complaint
	if err := cc.db.First(&complaint, id).Error; err != nil {
		utils.LedgerError(ctx, 40420, err)
		return
	}
	if complaint.SubmitterID != userID && !isElevated(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40322, "only the submitter may delete")
		return
	}

	if err := cc.db.Delete(&complaint).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to delete complaint")
		return
	}

	utils.InvalidateByPrefix(complaintCachePrefix)
	utils.Success(ctx, gin.H{"deleted": true, "complaint_id": id})
}

// markImagesAttached flags uploaded files referenced by a complaint so the
// orphan sweeper keeps them.
func (cc *ComplaintController) markImagesAttached(urls []string) {
	if len(urls) == 0 {
		return
	}
	if err := cc.db.Model(&models.UploadedFile{}).
		Where("url IN ?", urls).
		Update("attached", true).Error; err != nil {
		utils.Sugar.Warnf("complaint: mark uploads attached failed: %v", err)
	}
}

// complaintView shapes a complaint for API responses, adding vote counts and
// the caller's own vote state.
func complaintView(c *models.Complaint, userID uint) gin.H {
	view := gin.H{
		"id":             c.ID,
		"title":          c.Title,
		"description":    c.Description,
		"category":       c.Category,
		"status":         c.Status,
		"priority":       c.Priority,
		"latitude":       c.Latitude,
		"longitude":      c.Longitude,
		"address":        c.Address,
		"image_urls":     c.ImageURLs,
		"submitter_id":   c.SubmitterID,
		"assignee_id":    c.AssigneeID,
		"community_id":   c.CommunityID,
		"up_count":       c.Upvotes.Count(),
		"down_count":     c.Downvotes.Count(),
		"comment_count":  len(c.CommentIDs),
		"status_history": c.StatusHistory,
		"resolution":     c.ResolutionOrNil(),
		"created_at":     c.CreatedAt,
		"updated_at":     c.UpdatedAt,
	}
	if c.Submitter.ID != 0 {
		view["submitter"] = gin.H{"id": c.Submitter.ID, "username": c.Submitter.Username, "avatar_url": c.Submitter.AvatarURL}
	}
	if userID != 0 {
		view["user_vote"] = c.VoteState(userID)
	}
	return view
}
