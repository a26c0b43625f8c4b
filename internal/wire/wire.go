// Package wire provides dependency injection for the fieldloop application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"sync"

	"github.com/example/fieldloop/internal/adapters/sqlite"
	"github.com/example/fieldloop/internal/app"
	"github.com/example/fieldloop/internal/db"
	"github.com/example/fieldloop/internal/ports/primary"
)

var (
	sopService         primary.SopService
	observationService primary.ObservationService
	linkerService      primary.LinkerService
	confidenceService  primary.ConfidenceService
	trainingService    primary.TrainingService
	callbackService    primary.CallbackService
	activityService    primary.ActivityService
	once               sync.Once
)

// SopService returns the singleton SopService instance.
func SopService() primary.SopService {
	once.Do(initServices)
	return sopService
}

// ObservationService returns the singleton ObservationService instance.
func ObservationService() primary.ObservationService {
	once.Do(initServices)
	return observationService
}

// LinkerService returns the singleton LinkerService instance.
func LinkerService() primary.LinkerService {
	once.Do(initServices)
	return linkerService
}

// ConfidenceService returns the singleton ConfidenceService instance.
func ConfidenceService() primary.ConfidenceService {
	once.Do(initServices)
	return confidenceService
}

// TrainingService returns the singleton TrainingService instance.
func TrainingService() primary.TrainingService {
	once.Do(initServices)
	return trainingService
}

// CallbackService returns the singleton CallbackService instance.
func CallbackService() primary.CallbackService {
	once.Do(initServices)
	return callbackService
}

// ActivityService returns the singleton ActivityService instance.
func ActivityService() primary.ActivityService {
	once.Do(initServices)
	return activityService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	// Get database connection
	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	sopRepo := sqlite.NewSopRepository(database)
	checklistRepo := sqlite.NewChecklistRepository(database)
	pendingRepo := sqlite.NewPendingBatchRepository(database)
	obsRepo := sqlite.NewObservationRepository(database)
	knowledgeRepo := sqlite.NewKnowledgeRepository(database)
	linkRepo := sqlite.NewLinkRepository(database)
	eventRepo := sqlite.NewConfidenceEventRepository(database)
	challengeRepo := sqlite.NewChallengeRepository(database)
	trainingRepo := sqlite.NewTrainingRepository(database)
	projectRepo := sqlite.NewProjectRepository(database)
	activityRepo := sqlite.NewActivityRepository(database)
	activityLog := sqlite.NewActivityLoggerAdapter(activityRepo)

	// Create services (primary ports implementation). The confidence service
	// comes first so the linker can hand it scoring events, and the linker
	// comes before the observation service so confirmations auto-link.
	confidenceService = app.NewConfidenceService(knowledgeRepo, eventRepo, challengeRepo, activityLog)
	linkerService = app.NewLinkerService(obsRepo, knowledgeRepo, linkRepo, confidenceService, nil)
	sopService = app.NewSopService(sopRepo, checklistRepo, activityLog)
	observationService = app.NewObservationService(sopRepo, checklistRepo, pendingRepo, obsRepo, trainingRepo, linkerService, activityLog)
	trainingService = app.NewTrainingService(trainingRepo, sopRepo, activityLog)
	callbackService = app.NewCallbackService(projectRepo, obsRepo, activityLog)
	activityService = app.NewActivityService(activityRepo)
}
