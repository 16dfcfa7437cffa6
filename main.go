package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/itsNitinkumar/Skillarious-Backend/config"
	"github.com/itsNitinkumar/Skillarious-Backend/database"
	paymentsapi "github.com/itsNitinkumar/Skillarious-Backend/internal/api/payments"
	routes "github.com/itsNitinkumar/Skillarious-Backend/internal/app/http"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/events"
	razorpayclient "github.com/itsNitinkumar/Skillarious-Backend/internal/infra/razorpay"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/infra/redislock"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/interfaces"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/repository"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/service"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/telemetry"
)

func main() {
	config.LoadEnv()

	if err := telemetry.Init("payment-settlement"); err != nil {
		panic(err)
	}
	defer telemetry.Shutdown()

	database.InitDB()

	gateway := razorpayclient.NewClient(config.RAZORPAY_KEY_ID, config.RAZORPAY_KEY_SECRET)
	repo := repository.NewPaymentRepository(database.DB)

	// Optional collaborators. Settlement correctness rests on the storage
	// constraints; the lock and the event stream are additive.
	var locker interfaces.SettlementLocker
	if config.REDIS_URL != "" {
		locker = redislock.New(redis.NewClient(&redis.Options{Addr: config.REDIS_URL}))
	}

	var publisher interfaces.EventPublisher
	if config.KAFKA_BROKERS != "" {
		kp := events.NewKafkaPublisher(config.KAFKA_BROKERS)
		defer kp.Close()
		publisher = kp
	}

	svc := service.NewPaymentService(repo, gateway, locker, publisher, config.RAZORPAY_KEY_SECRET)
	handler := paymentsapi.NewHandler(svc)

	if config.APP_ENV == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(telemetry.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, handler)

	srv := &http.Server{
		Addr:    ":" + config.PORT,
		Handler: r,
	}

	go func() {
		telemetry.Logger.Info("Payment settlement service starting", zap.String("port", config.PORT))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	telemetry.Logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		telemetry.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	telemetry.Logger.Info("Server exited")
}
