package main

import (
	"time"

	"github.com/waveline/waveline/config"
	"github.com/waveline/waveline/routes"
	"github.com/waveline/waveline/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase()

	r := routes.SetupRouter(db)

	// Replaced avatars are deleted in the background, after their successors
	// are durably stored.
	utils.StartStaleFileSweeper(db, cfg.UploadDir, time.Duration(cfg.SweepIntervalMinutes)*time.Minute)

	utils.Sugar.Infof("starting server on port %s", cfg.AppPort)
	if err := utils.RunServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
