package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/api"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/app"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/app/maintenance"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/realtime"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/services"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/store"
)

// runtimeStack bundles long-lived components used by the HTTP server.
type runtimeStack struct {
	Store   *store.SessionStore
	Hub     *realtime.Hub
	Cleaner *maintenance.Cleaner
	Router  *gin.Engine
}

// bootstrapRuntime initialises the store, hub, services, and the HTTP router.
func bootstrapRuntime(cfg *app.Config) (*runtimeStack, error) {
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	sessions := store.New()
	hub := realtime.NewHub()

	lifecycle, err := services.NewLifecycleService(sessions, hub,
		services.WithCodeLength(cfg.Classroom.JoinCodeLength),
		services.WithDefaultMaxParticipants(cfg.Classroom.DefaultMaxParticipants),
	)
	if err != nil {
		return nil, fmt.Errorf("initialise lifecycle service: %w", err)
	}

	presence, err := services.NewPresenceService(sessions, hub)
	if err != nil {
		return nil, fmt.Errorf("initialise presence service: %w", err)
	}

	chat, err := services.NewChatService(sessions, hub)
	if err != nil {
		return nil, fmt.Errorf("initialise chat service: %w", err)
	}
	chat.WithHistoryCap(cfg.Classroom.ChatHistoryLimit)

	polls, err := services.NewPollService(sessions, hub)
	if err != nil {
		return nil, fmt.Errorf("initialise poll service: %w", err)
	}

	cleaner := maintenance.NewCleaner(sessions,
		maintenance.WithRetention(cfg.Classroom.Retention),
		maintenance.WithSchedule(cfg.Classroom.CleanupSchedule),
	)
	if err := cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	router, err := api.NewRouter(cfg, api.Services{
		Store:     sessions,
		Hub:       hub,
		Lifecycle: lifecycle,
		Presence:  presence,
		Chat:      chat,
		Polls:     polls,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	return &runtimeStack{
		Store:   sessions,
		Hub:     hub,
		Cleaner: cleaner,
		Router:  router,
	}, nil
}
