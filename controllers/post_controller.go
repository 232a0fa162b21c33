package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/civicpulse/civicpulse/config"
	"github.com/civicpulse/civicpulse/engagement"
	"github.com/civicpulse/civicpulse/models"
	"github.com/civicpulse/civicpulse/notify"
	"github.com/civicpulse/civicpulse/utils"
)

// PostController handles community discussion posts.
type PostController struct {
	db  *gorm.DB
	bus *notify.Bus
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB, bus *notify.Bus) *PostController {
	return &PostController{db: db, bus: bus}
}

// Create publishes a post inside a community. The author must be a member and
// the community must allow posts; a linked complaint must exist.
func (pc *PostController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Title             string `json:"title" binding:"required,max=255"`
		Content           string `json:"content" binding:"required"`
		Type              string `json:"type"`
		CommunityID       uint   `json:"community_id" binding:"required"`
		LinkedComplaintID *uint  `json:"linked_complaint_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	postType := models.PostDiscussion
	if req.Type != "" {
		postType = models.PostType(req.Type)
		if !postType.Valid() {
			utils.Error(ctx, http.StatusBadRequest, 40051, "unknown post type")
			return
		}
	}

	if req.LinkedComplaintID != nil {
		var complaint models.Complaint
		if err := pc.db.First(&complaint, *req.LinkedComplaintID).Error; err != nil {
			utils.Error(ctx, http.StatusNotFound, 40420, "linked complaint not found")
			return
		}
	}

	post := models.CommunityPost{
		Title:             utils.SanitizeStrict(req.Title),
		Content:           utils.Sanitize(req.Content),
		Type:              postType,
		AuthorID:          userID,
		CommunityID:       req.CommunityID,
		LinkedComplaintID: req.LinkedComplaintID,
	}

	err := pc.db.Transaction(func(tx *gorm.DB) error {
		var community models.Community
		if err := lockForUpdate(tx, &community, req.CommunityID); err != nil {
			return err
		}
		if !community.AllowPosts {
			return fmt.Errorf("%w: community does not allow posts", engagement.ErrInvalidState)
		}
		if !community.IsMember(userID) {
			return fmt.Errorf("%w: membership required to post", engagement.ErrDenied)
		}
		if postType == models.PostAnnouncement && !community.IsModerator(userID) {
			return fmt.Errorf("%w: announcements require moderator rights", engagement.ErrDenied)
		}
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		community.PostIDs.Append(post.ID)
		return tx.Model(&community).Update("post_ids", community.PostIDs).Error
	})
	if err != nil {
		utils.LedgerError(ctx, 50050, err)
		return
	}

	utils.InvalidateByPrefix(communityCachePrefix)
	pc.bus.Publish(notify.PostCreated, post.ID, userID, gin.H{"community_id": post.CommunityID})
	utils.Success(ctx, gin.H{"post": post})
}

// Get returns a post and records the caller's deduplicated view.
func (pc *PostController) Get(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid post id")
		return
	}

	userID, _ := getUserID(ctx)

	var post models.CommunityPost
	if userID != 0 {
		err := pc.db.Transaction(func(tx *gorm.DB) error {
			if err := lockForUpdate(tx, &post, id); err != nil {
				return err
			}
			if engagement.MarkViewed(&post.Views, userID) {
				return tx.Model(&post).Update("views", post.Views).Error
			}
			return nil
		})
		if err != nil {
			utils.LedgerError(ctx, 40450, err)
			return
		}
		pc.db.Preload("Author").First(&post, id)
	} else if err := pc.db.Preload("Author").First(&post, id).Error; err != nil {
		utils.LedgerError(ctx, 40450, err)
		return
	}

	utils.Success(ctx, gin.H{"post": postView(&post, userID)})
}

// List returns a community's posts, pinned first then newest.
func (pc *PostController) List(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	communityID := ctx.Query("community_id")
	if communityID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40053, "community_id required")
		return
	}

	query := pc.db.Model(&models.CommunityPost{}).Where("community_id = ?", communityID)
	if t := ctx.Query("type"); t != "" {
		if !models.PostType(t).Valid() {
			utils.Error(ctx, http.StatusBadRequest, 40051, "unknown post type")
			return
		}
		query = query.Where("type = ?", t)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to count posts")
		return
	}

	var posts []models.CommunityPost
	if err := query.Preload("Author").
		Order("pinned DESC, created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to list posts")
		return
	}

	userID, _ := getUserID(ctx)
	items := make([]gin.H, 0, len(posts))
	for i := range posts {
		items = append(items, postView(&posts[i], userID))
	}
	utils.Success(ctx, gin.H{"posts": items, "pagination": paginationPayload(page, pageSize, total)})
}

// Edit replaces a post's title and content within the edit window, logging
// the pre-change values. Author only; locked posts reject edits.
func (pc *PostController) Edit(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid post id")
		return
	}

	var req struct {
		Title   string `json:"title" binding:"required,max=255"`
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	window := time.Duration(config.Get().EditWindowHours) * time.Hour
	var post models.CommunityPost
	err := pc.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx, &post, id); err != nil {
			return err
		}
		if post.AuthorID != userID {
			return fmt.Errorf("%w: only the author may edit", engagement.ErrDenied)
		}
		if err := post.Edit(utils.SanitizeStrict(req.Title), utils.Sanitize(req.Content), time.Now(), window); err != nil {
			return err
		}
		return tx.Save(&post).Error
	})
	if err != nil {
		utils.LedgerError(ctx, 50053, err)
		return
	}

	utils.Success(ctx, gin.H{"post": postView(&post, userID)})
}

// Like toggles the caller's like on a post.
func (pc *PostController) Like(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid post id")
		return
	}

	var result engagement.LikeResult
	err := pc.db.Transaction(func(tx *gorm.DB) error {
		var post models.CommunityPost
		if err := lockForUpdate(tx, &post, id); err != nil {
			return err
		}
		result = engagement.ToggleLike(&post.Likes, userID)
		return tx.Model(&post).Update("likes", post.Likes).Error
	})
	if err != nil {
		utils.LedgerError(ctx, 50054, err)
		return
	}

	pc.bus.Publish(notify.PostLiked, id, userID, result)
	utils.Success(ctx, gin.H{"post_id": id, "like_count": result.LikeCount, "has_liked": result.HasLiked})
}

// Pin toggles the pinned flag. Community moderator only.
func (pc *PostController) Pin(ctx *gin.Context) {
	pc.toggleFlag(ctx, "pinned")
}

// Lock toggles the locked flag, freezing edits and new comments. Community
// moderator only.
func (pc *PostController) Lock(ctx *gin.Context) {
	pc.toggleFlag(ctx, "locked")
}

func (pc *PostController) toggleFlag(ctx *gin.Context, flag string) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid post id")
		return
	}

	var newValue bool
	err := pc.db.Transaction(func(tx *gorm.DB) error {
		var post models.CommunityPost
		if err := lockForUpdate(tx, &post, id); err != nil {
			return err
		}
		var community models.Community
		if err := tx.First(&community, post.CommunityID).Error; err != nil {
			return err
		}
		if !community.IsModerator(userID) && !isElevated(ctx) {
			return fmt.Errorf("%w: moderator rights required", engagement.ErrDenied)
		}
		switch flag {
		case "pinned":
			newValue = !post.Pinned
		case "locked":
			newValue = !post.Locked
		}
		return tx.Model(&post).Update(flag, newValue).Error
	})
	if err != nil {
		utils.LedgerError(ctx, 50055, err)
		return
	}

	utils.Success(ctx, gin.H{"post_id": id, flag: newValue})
}

// Delete removes a post and the community's reference to it. Author or
// community moderator only.
func (pc *PostController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid post id")
		return
	}

	err := pc.db.Transaction(func(tx *gorm.DB) error {
		var post models.CommunityPost
		if err := lockForUpdate(tx, &post, id); err != nil {
			return err
		}
		var community models.Community
		if err := lockForUpdate(tx, &community, post.CommunityID); err != nil {
			return err
		}
		if post.AuthorID != userID && !community.IsModerator(userID) && !isElevated(ctx) {
			return fmt.Errorf("%w: only the author may delete", engagement.ErrDenied)
		}
		if err := tx.Delete(&post).Error; err != nil {
			return err
		}
		community.PostIDs.Drop(post.ID)
		return tx.Model(&community).Update("post_ids", community.PostIDs).Error
	})
	if err != nil {
		utils.LedgerError(ctx, 50056, err)
		return
	}

	utils.InvalidateByPrefix(communityCachePrefix)
	utils.Success(ctx, gin.H{"deleted": true, "post_id": id})
}

// postView shapes a post for API responses.
func postView(p *models.CommunityPost, userID uint) gin.H {
	view := gin.H{
		"id":                  p.ID,
		"title":               p.Title,
		"content":             p.Content,
		"type":                p.Type,
		"author_id":           p.AuthorID,
		"community_id":        p.CommunityID,
		"linked_complaint_id": p.LinkedComplaintID,
		"like_count":          p.Likes.Count(),
		"view_count":          p.Views.Count(),
		"comment_count":       len(p.CommentIDs),
		"pinned":              p.Pinned,
		"locked":              p.Locked,
		"edited":              p.Edited,
		"created_at":          p.CreatedAt,
		"updated_at":          p.UpdatedAt,
	}
	if p.Edited {
		view["edit_history"] = p.EditHistory
	}
	if p.Author.ID != 0 {
		view["author"] = gin.H{"id": p.Author.ID, "username": p.Author.Username, "avatar_url": p.Author.AvatarURL}
	}
	if userID != 0 {
		view["has_liked"] = p.Likes.Has(userID)
	}
	return view
}
