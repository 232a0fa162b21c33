package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/civicpulse/civicpulse/engagement"
	"github.com/civicpulse/civicpulse/models"
	"github.com/civicpulse/civicpulse/notify"
	"github.com/civicpulse/civicpulse/utils"
)

const communityCachePrefix = "cache:communities:"

// CommunityController handles community lifecycle and membership.
type CommunityController struct {
	db  *gorm.DB
	bus *notify.Bus
}

// NewCommunityController creates a new CommunityController instance.
func NewCommunityController(db *gorm.DB, bus *notify.Bus) *CommunityController {
	return &CommunityController{db: db, bus: bus}
}

// Create founds a community. The creator is enrolled as its first member with
// the admin role and can never leave or be removed.
func (co *CommunityController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Name        string                    `json:"name" binding:"required,min=3,max=50"`
		Description string                    `json:"description" binding:"max=2000"`
		Category    string                    `json:"category" binding:"max=32"`
		Settings    *models.CommunitySettings `json:"settings"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	name := utils.SanitizeStrict(req.Name)
	slug := utils.Slugify(name)
	if slug == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "name yields an empty slug")
		return
	}
	var clash models.Community
	if err := co.db.Where("slug = ?", slug).First(&clash).Error; err == nil {
		slug = utils.UniqueSlug(name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to check slug")
		return
	}

	community := models.Community{
		Name:        name,
		Slug:        slug,
		Description: utils.Sanitize(req.Description),
		Category:    utils.SanitizeStrict(req.Category),
		CreatorID:   userID,
	}
	settings := models.DefaultCommunitySettings
	if req.Settings != nil {
		settings = *req.Settings
	}
	community.ApplySettings(settings)
	if err := community.Members.Add(userID, engagement.RoleAdmin); err != nil {
		utils.LedgerError(ctx, 50041, err)
		return
	}

	err := co.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&community).Error; err != nil {
			return err
		}
		var user models.User
		if err := lockForUpdate(tx, &user, userID); err != nil {
			return err
		}
		user.CommunityIDs.Append(community.ID)
		return tx.Model(&user).Update("community_ids", user.CommunityIDs).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to create community")
		return
	}

	utils.InvalidateByPrefix(communityCachePrefix)
	utils.Success(ctx, gin.H{"community": community})
}

// Get returns a community by numeric id or slug.
func (co *CommunityController) Get(ctx *gin.Context) {
	community, err := co.findByIDOrSlug(ctx.Param("id"))
	if err != nil {
		utils.LedgerError(ctx, 40440, err)
		return
	}

	userID, _ := getUserID(ctx)
	if community.IsPrivate && !community.IsMember(userID) && !isElevated(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40340, "community is private")
		return
	}
	utils.Success(ctx, gin.H{"community": communityView(community, userID)})
}

// List returns public communities, newest first.
func (co *CommunityController) List(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	cacheKey := communityCachePrefix + "list:" + ctx.Request.URL.RawQuery
	if _, authed := getUserID(ctx); !authed {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
			return
		}
	}

	query := co.db.Model(&models.Community{}).Where("is_private = ?", false)
	if c := ctx.Query("category"); c != "" {
		query = query.Where("category = ?", c)
	}
	if q := ctx.Query("q"); q != "" {
		query = query.Where("name LIKE ?", "%"+q+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to count communities")
		return
	}

	var communities []models.Community
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&communities).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to list communities")
		return
	}

	userID, _ := getUserID(ctx)
	items := make([]gin.H, 0, len(communities))
	for i := range communities {
		items = append(items, communityView(&communities[i], userID))
	}

	payload := gin.H{"communities": items, "pagination": paginationPayload(page, pageSize, total)}
	if userID == 0 {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 0)
	}
	utils.Success(ctx, payload)
}

// Join enrolls the caller as a member. Joining twice is a conflict, and the
// member list plus the user's community mirror commit in one transaction.
func (co *CommunityController) Join(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid community id")
		return
	}

	var memberCount int
	err := co.db.Transaction(func(tx *gorm.DB) error {
		var community models.Community
		if err := lockForUpdate(tx, &community, id); err != nil {
			return err
		}
		if community.IsPrivate || community.RequireApproval {
			return fmt.Errorf("%w: community does not accept direct joins", engagement.ErrDenied)
		}
		if err := community.AddMember(userID); err != nil {
			return err
		}
		if err := tx.Model(&community).Update("members", community.Members).Error; err != nil {
			return err
		}
		memberCount = community.Members.Count()

		var user models.User
		if err := lockForUpdate(tx, &user, userID); err != nil {
			return err
		}
		user.CommunityIDs.Append(community.ID)
		return tx.Model(&user).Update("community_ids", user.CommunityIDs).Error
	})
	if err != nil {
		utils.LedgerError(ctx, 50045, err)
		return
	}

	utils.InvalidateByPrefix(communityCachePrefix)
	co.bus.Publish(notify.MemberJoined, id, userID, nil)
	utils.Success(ctx, gin.H{"community_id": id, "member_count": memberCount, "joined": true})
}

// Leave removes the caller's membership. The creator can never leave.
func (co *CommunityController) Leave(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid community id")
		return
	}

	var memberCount int
	err := co.db.Transaction(func(tx *gorm.DB) error {
		var community models.Community
		if err := lockForUpdate(tx, &community, id); err != nil {
			return err
		}
		if err := community.RemoveMember(userID); err != nil {
			return err
		}
		if err := tx.Model(&community).Updates(map[string]interface{}{
			"members":       community.Members,
			"moderator_ids": community.ModeratorIDs,
		}).Error; err != nil {
			return err
		}
		memberCount = community.Members.Count()

		var user models.User
		if err := lockForUpdate(tx, &user, userID); err != nil {
			return err
		}
		user.CommunityIDs.Drop(community.ID)
		return tx.Model(&user).Update("community_ids", user.CommunityIDs).Error
	})
	if err != nil {
		utils.LedgerError(ctx, 50046, err)
		return
	}

	utils.InvalidateByPrefix(communityCachePrefix)
	co.bus.Publish(notify.MemberLeft, id, userID, nil)
	utils.Success(ctx, gin.H{"community_id": id, "member_count": memberCount, "left": true})
}

// Members returns the community's member records.
func (co *CommunityController) Members(ctx *gin.Context) {
	community, err := co.findByIDOrSlug(ctx.Param("id"))
	if err != nil {
		utils.LedgerError(ctx, 40440, err)
		return
	}

	userID, _ := getUserID(ctx)
	if community.IsPrivate && !community.IsMember(userID) && !isElevated(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40340, "community is private")
		return
	}
	utils.Success(ctx, gin.H{
		"community_id": community.ID,
		"members":      community.Members,
		"member_count": community.Members.Count(),
	})
}

// Promote changes a member's role. Creator or a member holding the admin role
// only; the creator's own record is immutable.
func (co *CommunityController) Promote(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid community id")
		return
	}

	var req struct {
		UserID uint   `json:"user_id" binding:"required"`
		Role   string `json:"role" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}
	role := engagement.Role(req.Role)
	if role != engagement.RoleMember && role != engagement.RoleModerator && role != engagement.RoleAdmin {
		utils.Error(ctx, http.StatusBadRequest, 40043, "unknown role")
		return
	}

	err := co.db.Transaction(func(tx *gorm.DB) error {
		var community models.Community
		if err := lockForUpdate(tx, &community, id); err != nil {
			return err
		}
		memberRole, _ := community.Members.RoleOf(userID)
		if userID != community.CreatorID && memberRole != engagement.RoleAdmin && !isAdmin(ctx) {
			return fmt.Errorf("%w: creator or admin rights required", engagement.ErrDenied)
		}
		if req.UserID == community.CreatorID {
			return engagement.ErrCreatorImmutable
		}
		if err := community.Members.SetRole(req.UserID, role); err != nil {
			return err
		}
		if role == engagement.RoleModerator || role == engagement.RoleAdmin {
			community.ModeratorIDs.Append(req.UserID)
		} else {
			community.ModeratorIDs.Drop(req.UserID)
		}
		return tx.Model(&community).Updates(map[string]interface{}{
			"members":       community.Members,
			"moderator_ids": community.ModeratorIDs,
		}).Error
	})
	if err != nil {
		utils.LedgerError(ctx, 50047, err)
		return
	}

	utils.InvalidateByPrefix(communityCachePrefix)
	utils.Success(ctx, gin.H{"community_id": id, "user_id": req.UserID, "role": role})
}

// UpdateSettings overwrites the community's flags. Creator or moderator only.
func (co *CommunityController) UpdateSettings(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid community id")
		return
	}

	var req models.CommunitySettings
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	var community models.Community
	err := co.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx, &community, id); err != nil {
			return err
		}
		if !community.IsModerator(userID) {
			return fmt.Errorf("%w: moderator rights required", engagement.ErrDenied)
		}
		community.ApplySettings(req)
		return tx.Save(&community).Error
	})
	if err != nil {
		utils.LedgerError(ctx, 50048, err)
		return
	}

	utils.InvalidateByPrefix(communityCachePrefix)
	utils.Success(ctx, gin.H{"community_id": id, "settings": community.Settings()})
}

func (co *CommunityController) findByIDOrSlug(ref string) (*models.Community, error) {
	var community models.Community
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil && id > 0 {
		if err := co.db.Preload("Creator").First(&community, id).Error; err != nil {
			return nil, err
		}
		return &community, nil
	}
	if err := co.db.Preload("Creator").Where("slug = ?", ref).First(&community).Error; err != nil {
		return nil, err
	}
	return &community, nil
}

// communityView shapes a community for API responses.
func communityView(c *models.Community, userID uint) gin.H {
	view := gin.H{
		"id":           c.ID,
		"name":         c.Name,
		"slug":         c.Slug,
		"description":  c.Description,
		"category":     c.Category,
		"creator_id":   c.CreatorID,
		"member_count": c.Members.Count(),
		"post_count":   len(c.PostIDs),
		"settings":     c.Settings(),
		"created_at":   c.CreatedAt,
	}
	if c.Creator.ID != 0 {
		view["creator"] = gin.H{"id": c.Creator.ID, "username": c.Creator.Username, "avatar_url": c.Creator.AvatarURL}
	}
	if userID != 0 {
		view["is_member"] = c.IsMember(userID)
		if role, ok := c.Members.RoleOf(userID); ok {
			view["member_role"] = role
		}
	}
	return view
}
