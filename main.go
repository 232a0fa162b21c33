package main

import (
	"time"

	"github.com/civicpulse/civicpulse/config"
	"github.com/civicpulse/civicpulse/models"
	"github.com/civicpulse/civicpulse/notify"
	"github.com/civicpulse/civicpulse/routes"
	"github.com/civicpulse/civicpulse/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Complaint{},
		&models.Comment{},
		&models.Community{},
		&models.CommunityPost{},
		&models.UploadedFile{},
	)

	bus := notify.NewBus(utils.GetRedis(), utils.Sugar)

	r := routes.SetupRouter(db, bus)

	// Start background cleanup for expired uploads (best-effort)
	utils.StartUploadCleaner(5 * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
