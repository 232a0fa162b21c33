package controllers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/civicpulse/civicpulse/config"
	"github.com/civicpulse/civicpulse/models"
	"github.com/civicpulse/civicpulse/utils"
)

// UploadController stores complaint photos on local disk and tracks them for
// the orphan sweeper.
type UploadController struct {
	db *gorm.DB
}

// NewUploadController creates a new UploadController instance.
func NewUploadController(db *gorm.DB) *UploadController {
	return &UploadController{db: db}
}

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadImage accepts a single image, saves it under a date-partitioned
// directory with a random name, and records it so unattached files expire.
func (u *UploadController) UploadImage(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "no file uploaded")
		return
	}
	defer file.Close()

	cfg := config.Get()
	maxSize := int64(cfg.UploadMaxMB) * 1024 * 1024
	if header.Size > 0 && header.Size > maxSize {
		utils.Error(ctx, http.StatusBadRequest, 40061, fmt.Sprintf("file size exceeds %dMB", cfg.UploadMaxMB))
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		utils.Error(ctx, http.StatusBadRequest, 40062, "unsupported image type")
		return
	}

	now := time.Now()
	baseDir := filepath.Join(cfg.UploadDir, now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to create upload directory")
		return
	}

	name := uuid.New().String() + ext
	dstPath := filepath.Join(baseDir, name)

	out, err := os.Create(dstPath)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to save file")
		return
	}
	defer out.Close()

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil {
		_ = os.Remove(dstPath)
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to write file")
		return
	}
	if written > maxSize {
		_ = os.Remove(dstPath)
		utils.Error(ctx, http.StatusBadRequest, 40061, fmt.Sprintf("file size exceeds %dMB", cfg.UploadMaxMB))
		return
	}

	relURL := "/static/uploads/" + now.Format("2006/01/02") + "/" + name

	record := models.UploadedFile{
		FilePath: dstPath,
		URL:      relURL,
		UserID:   userID,
		ExpireAt: now.Add(time.Duration(cfg.UploadTTLMinutes) * time.Minute),
	}
	if err := u.db.Create(&record).Error; err != nil {
		utils.Sugar.Warnf("upload: record insert failed for %s: %v", dstPath, err)
	}

	utils.Success(ctx, gin.H{"url": relURL, "size": written})
}
