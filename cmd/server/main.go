package main

import (
	"github.com/rs/zerolog/log"

	"github.com/rebertiger/student-chat/internal/config"
	"github.com/rebertiger/student-chat/internal/db"
	clog "github.com/rebertiger/student-chat/internal/log"
	"github.com/rebertiger/student-chat/internal/server"
	"github.com/rebertiger/student-chat/internal/upload"
	"github.com/rebertiger/student-chat/internal/ws"
)

func main() {
	cfg := config.Load()
	clog.Init(cfg.Env)
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	gdb, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	uploads, err := upload.NewStore(cfg.UploadDir, cfg.MaxUploadMB)
	if err != nil {
		log.Fatal().Err(err).Msg("upload store")
	}

	hub := ws.NewHub()
	r := server.SetupRouter(cfg, gdb, hub, uploads)
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server run")
	}
}
