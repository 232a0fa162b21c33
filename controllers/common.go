package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/civicpulse/civicpulse/middleware"
	"github.com/civicpulse/civicpulse/models"
)

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func paginationPayload(page, pageSize int, total int64) gin.H {
	return gin.H{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

// isElevated reports whether the caller holds a platform moderator or admin
// role per the JWT claims.
func isElevated(ctx *gin.Context) bool {
	roleVal, exists := ctx.Get(middleware.ContextRoleKey)
	if !exists {
		return false
	}
	role, _ := roleVal.(string)
	return role == string(models.UserRoleModerator) || role == string(models.UserRoleAdmin)
}

func isAdmin(ctx *gin.Context) bool {
	roleVal, exists := ctx.Get(middleware.ContextRoleKey)
	if !exists {
		return false
	}
	role, _ := roleVal.(string)
	return role == string(models.UserRoleAdmin)
}

// lockForUpdate re-reads the entity row inside a transaction holding a row
// lock, making the read-modify-write on engagement columns atomic per entity.
func lockForUpdate(tx *gorm.DB, dest interface{}, id uint) error {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(dest, id).Error
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
