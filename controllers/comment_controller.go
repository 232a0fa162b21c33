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

// CommentController handles threaded comments on complaints and posts.
type CommentController struct {
	db  *gorm.DB
	bus *notify.Bus
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB, bus *notify.Bus) *CommentController {
	return &CommentController{db: db, bus: bus}
}

// Create posts a comment under a complaint or a community post, optionally as
// a reply to another comment in the same context. The parent entity's
// reference list is updated in the same transaction.
func (cm *CommentController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Content         string `json:"content" binding:"required,max=500"`
		ComplaintID     *uint  `json:"complaint_id"`
		PostID          *uint  `json:"post_id"`
		ParentCommentID *uint  `json:"parent_comment_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	comment := models.Comment{
		Content:         utils.Sanitize(req.Content),
		AuthorID:        userID,
		ComplaintID:     req.ComplaintID,
		PostID:          req.PostID,
		ParentCommentID: req.ParentCommentID,
	}
	if err := comment.ValidateParentContext(); err != nil {
		utils.LedgerError(ctx, 40031, err)
		return
	}

	err := cm.db.Transaction(func(tx *gorm.DB) error {
		if req.ParentCommentID != nil {
			var parent models.Comment
			if err := lockForUpdate(tx, &parent, *req.ParentCommentID); err != nil {
				return err
			}
			if parent.Deleted {
				return fmt.Errorf("%w: cannot reply to a deleted comment", engagement.ErrInvalidState)
			}
			if !sameContext(&parent, req.ComplaintID, req.PostID) {
				return fmt.Errorf("%w: reply must share the parent's context", engagement.ErrInvalidState)
			}
			if err := tx.Create(&comment).Error; err != nil {
				return err
			}
			parent.ReplyIDs.Append(comment.ID)
			if err := tx.Model(&parent).Update("reply_ids", parent.ReplyIDs).Error; err != nil {
				return err
			}
		} else if err := tx.Create(&comment).Error; err != nil {
			return err
		}

		switch {
		case req.ComplaintID != nil:
			var complaint models.Complaint
			if err := lockForUpdate(tx, &complaint, *req.ComplaintID); err != nil {
				return err
			}
			complaint.CommentIDs.Append(comment.ID)
			return tx.Model(&complaint).Update("comment_ids", complaint.CommentIDs).Error
		case req.PostID != nil:
			var post models.CommunityPost
			if err := lockForUpdate(tx, &post, *req.PostID); err != nil {
				return err
			}
			if post.Locked {
				return fmt.Errorf("%w: post is locked", engagement.ErrInvalidState)
			}
			post.CommentIDs.Append(comment.ID)
			return tx.Model(&post).Update("comment_ids", post.CommentIDs).Error
		}
		return nil
	})
	if err != nil {
		utils.LedgerError(ctx, 50030, err)
		return
	}

	utils.InvalidateByPrefix(complaintCachePrefix)
	cm.bus.Publish(notify.CommentCreated, comment.ID, userID, gin.H{
		"complaint_id": comment.ComplaintID,
		"post_id":      comment.PostID,
	})
	utils.Success(ctx, gin.H{"comment": comment})
}

// List returns comments for a complaint or a post, oldest first. Deleted
// comments are excluded by default; pass include_deleted=true to receive
// tombstones in place so threads keep their shape.
func (cm *CommentController) List(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := cm.db.Model(&models.Comment{})
	switch {
	case ctx.Query("complaint_id") != "":
		query = query.Where("complaint_id = ?", ctx.Query("complaint_id"))
	case ctx.Query("post_id") != "":
		query = query.Where("post_id = ?", ctx.Query("post_id"))
	default:
		utils.Error(ctx, http.StatusBadRequest, 40032, "complaint_id or post_id required")
		return
	}
	if ctx.Query("include_deleted") != "true" {
		query = query.Where("deleted = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to count comments")
		return
	}

	var comments []models.Comment
	if err := query.Preload("Author").
		Order("created_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to list comments")
		return
	}

	userID, _ := getUserID(ctx)
	items := make([]gin.H, 0, len(comments))
	for i := range comments {
		items = append(items, commentView(&comments[i], userID))
	}
	utils.Success(ctx, gin.H{"comments": items, "pagination": paginationPayload(page, pageSize, total)})
}

// Get returns a single comment by id. Deleted comments stay fetchable as
// tombstones.
func (cm *CommentController) Get(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid comment id")
		return
	}

	var comment models.Comment
	if err := cm.db.Preload("Author").First(&comment, id).Error; err != nil {
		utils.LedgerError(ctx, 40430, err)
		return
	}

	userID, _ := getUserID(ctx)
	utils.Success(ctx, gin.H{"comment": commentView(&comment, userID)})
}

// Edit replaces a comment's content within the edit window, logging the
// previous value. Author only.
func (cm *CommentController) Edit(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid comment id")
		return
	}

	var req struct {
		Content string `json:"content" binding:"required,max=500"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	window := time.Duration(config.Get().EditWindowHours) * time.Hour
	var comment models.Comment
	err := cm.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx, &comment, id); err != nil {
			return err
		}
		if comment.AuthorID != userID {
			return fmt.Errorf("%w: only the author may edit", engagement.ErrDenied)
		}
		if err := comment.Edit(utils.Sanitize(req.Content), time.Now(), window); err != nil {
			return err
		}
		return tx.Save(&comment).Error
	})
	if err != nil {
		utils.LedgerError(ctx, 50033, err)
		return
	}

	utils.Success(ctx, gin.H{"comment": commentView(&comment, userID)})
}

// Like toggles the caller's like on a comment.
func (cm *CommentController) Like(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid comment id")
		return
	}

	var result engagement.LikeResult
	err := cm.db.Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := lockForUpdate(tx, &comment, id); err != nil {
			return err
		}
		if comment.Deleted {
			return fmt.Errorf("%w: comment is deleted", engagement.ErrInvalidState)
		}
		result = engagement.ToggleLike(&comment.Likes, userID)
		return tx.Model(&comment).Update("likes", comment.Likes).Error
	})
	if err != nil {
		utils.LedgerError(ctx, 50034, err)
		return
	}

	cm.bus.Publish(notify.CommentLiked, id, userID, result)
	utils.Success(ctx, gin.H{
		"comment_id": id,
		"like_count": result.LikeCount,
		"has_liked":  result.HasLiked,
	})
}

// Delete tombstones a comment. Author or elevated role only. Replies and the
// parent's reference to the comment stay intact.
func (cm *CommentController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid comment id")
		return
	}

	var comment models.Comment
	err := cm.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx, &comment, id); err != nil {
			return err
		}
		if comment.AuthorID != userID && !isElevated(ctx) {
			return fmt.Errorf("%w: only the author may delete", engagement.ErrDenied)
		}
		if err := comment.SoftDelete(time.Now()); err != nil {
			return err
		}
		return tx.Save(&comment).Error
	})
	if err != nil {
		utils.LedgerError(ctx, 50035, err)
		return
	}

	cm.bus.Publish(notify.CommentDeleted, id, userID, nil)
	utils.Success(ctx, gin.H{"deleted": true, "comment_id": id})
}

// sameContext reports whether a reply targets the same complaint or post as
// its parent comment.
func sameContext(parent *models.Comment, complaintID, postID *uint) bool {
	switch {
	case complaintID != nil:
		return parent.ComplaintID != nil && *parent.ComplaintID == *complaintID
	case postID != nil:
		return parent.PostID != nil && *parent.PostID == *postID
	}
	return false
}

// commentView shapes a comment for API responses.
func commentView(c *models.Comment, userID uint) gin.H {
	view := gin.H{
		"id":                c.ID,
		"content":           c.Content,
		"author_id":         c.AuthorID,
		"complaint_id":      c.ComplaintID,
		"post_id":           c.PostID,
		"parent_comment_id": c.ParentCommentID,
		"reply_ids":         c.ReplyIDs,
		"like_count":        c.Likes.Count(),
		"deleted":           c.Deleted,
		"edited":            c.Edited,
		"created_at":        c.CreatedAt,
		"updated_at":        c.UpdatedAt,
	}
	if c.Edited && !c.Deleted {
		view["edit_history"] = c.EditHistory
	}
	if c.Author.ID != 0 {
		view["author"] = gin.H{"id": c.Author.ID, "username": c.Author.Username, "avatar_url": c.Author.AvatarURL}
	}
	if userID != 0 {
		view["has_liked"] = c.Likes.Has(userID)
	}
	return view
}
