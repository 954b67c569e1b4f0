package main

import (
	"log"
	"os"

	"greetbot-backend/config"
	"greetbot-backend/controllers"
	"greetbot-backend/models"
	"greetbot-backend/routes"
	"greetbot-backend/services"
	"greetbot-backend/storage"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	cfgPath := os.Getenv("EVENT_CONFIG")
	if cfgPath == "" {
		cfgPath = "event.yaml"
	}
	eventCfg, err := config.LoadEventConfig(cfgPath)
	if err != nil {
		logger.Fatal("invalid event configuration", zap.Error(err))
	}

	if err := config.ConnectDB(); err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	if err := config.DB.AutoMigrate(
		&models.Participant{},
		&models.NotificationLog{},
		&models.AdminUser{},
	); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	seedAdmin(logger)

	store := storage.NewGormStore(config.DB)
	clock := services.NewDayClock(eventCfg)
	claims := services.NewClaimService(store, clock, eventCfg, logger)
	filter := services.NewEligibilityFilter(clock)
	notifier := services.NewTwilioNotifier(config.DB, logger)

	sweeps := services.NewSweepService(store, filter, notifier, logger)
	if err := sweeps.StartScheduler(eventCfg); err != nil {
		logger.Fatal("failed to start reminder scheduler", zap.Error(err))
	}
	defer sweeps.Stop()

	pc := controllers.NewParticipantController(claims, clock, notifier, logger)
	ac := controllers.NewAdminController(sweeps, store, clock)
	r := routes.SetupRouter(logger, pc, ac)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("listening", zap.String("port", port), zap.Int("event_days", eventCfg.TotalDays))
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// seedAdmin creates the admin account from the environment once. Without
// credentials the admin API stays unreachable but the bot still runs.
func seedAdmin(logger *zap.Logger) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		logger.Warn("admin credentials not configured, admin API disabled")
		return
	}

	var existing models.AdminUser
	if err := config.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return
	}

	admin := models.AdminUser{Email: email, Password: password, IsActive: true}
	if err := config.DB.Create(&admin).Error; err != nil {
		logger.Error("failed to seed admin user", zap.Error(err))
	}
}
