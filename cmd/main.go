// cmd/main.go

package main

import (
	"context"
	"net/http"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/sendgrid/sendgrid-go"
	twilio "github.com/twilio/twilio-go"

	"github.com/surepeps/negotiation-service/internal/app"
	"github.com/surepeps/negotiation-service/internal/config"
	"github.com/surepeps/negotiation-service/internal/constants"
	"github.com/surepeps/negotiation-service/internal/controllers"
	"github.com/surepeps/negotiation-service/internal/middleware"
	"github.com/surepeps/negotiation-service/internal/repositories"
	"github.com/surepeps/negotiation-service/internal/routes"
	"github.com/surepeps/negotiation-service/internal/services"
	"github.com/surepeps/negotiation-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()
	defer cfg.Close()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize negotiation-service:", err)
	}
	defer application.Close()

	negRepo := repositories.NewNegotiationRepository(application.DB)
	propRepo := repositories.NewPropertyRepository(application.DB)
	userRepo := repositories.NewUserRepository(application.DB, cfg.DBEncryptionKey)
	docRepo := repositories.NewLOIDocumentRepository(application.DB)

	twClient := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	sgClient := sendgrid.NewSendClient(cfg.SendGridAPIKey)

	notifier := services.NewNotificationService(
		sgClient,
		twClient,
		cfg.LDFlag_SendgridFromEmail,
		cfg.LDFlag_TwilioFromPhone,
		cfg.LDFlag_SendgridSandboxMode,
		cfg.AppUrl,
	)
	scheduleService := services.NewScheduleService(propRepo)
	negService := services.NewNegotiationService(negRepo, propRepo, userRepo, scheduleService, notifier)
	uploadService := services.NewUploadService(docRepo, cfg.UploadDir, cfg.AppUrl)
	expiryService := services.NewExpiryService(negRepo, propRepo, userRepo, notifier)

	if cfg.LDFlag_SeedDbWithTestData {
		if err := app.SeedAllTestData(
			context.Background(),
			application.DB,
			cfg.DBEncryptionKey,
		); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		} else {
			utils.Logger.Info("Seeded test data successfully")
		}
	}

	negController := controllers.NewNegotiationController(negService, scheduleService)
	docsController := controllers.NewDocumentsController(uploadService, negService)
	healthController := controllers.NewHealthController(application)

	router := mux.NewRouter()

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))

	secured.HandleFunc(routes.NegotiationsSlots, negController.AvailableSlotsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.NegotiationsBase, negController.ListNegotiationsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.NegotiationsGet, negController.GetNegotiationHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.NegotiationsAccept, negController.AcceptOfferHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.NegotiationsCounter, negController.CounterOfferHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.NegotiationsAction, negController.ActionHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.NegotiationsDateTime, negController.DateTimeHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.NegotiationsReopen, negController.ReopenHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.DocumentsLOI, docsController.UploadLOIHandler).Methods(http.MethodPost)

	c := cron.New()
	_, sweepErr := c.AddFunc(constants.ExpirySweepCronSpec, func() {
		if e := expiryService.RunExpirySweep(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Expiry sweep failed")
		}
	})
	if sweepErr != nil {
		utils.Logger.WithError(sweepErr).Fatal("Failed to schedule expiry sweep cron")
	}
	c.Start()

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Platform", "X-Device-ID", "ngrok-skip-browser-warning"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("negotiation-service failed to start:", err)
	}
}
