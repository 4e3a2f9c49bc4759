package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"terminbook/internal/database"
	"terminbook/internal/middleware"
	"terminbook/internal/modules/admin"
	"terminbook/internal/modules/booking"
	"terminbook/internal/modules/live"
	"terminbook/internal/modules/verify"
	jwtsvc "terminbook/internal/pkg/jwt"
	"terminbook/internal/repository"
	"terminbook/internal/schedule"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is empty")
	}
	codePepper := os.Getenv("OTP_CODE_PEPPER")
	if codePepper == "" {
		log.Fatal("OTP_CODE_PEPPER is empty")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	reservationRepo := repository.NewReservationRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	adminJWT := jwtsvc.New(secret, 24*time.Hour)
	identityJWT := jwtsvc.New(secret, 30*time.Minute)

	hub := live.NewHub()
	defer hub.Close()

	sender := verify.NewDevConsoleSender(os.Getenv("SMS_DEV_CONSOLE") == "true")
	verifyService := verify.NewService(
		challengeRepo,
		sender,
		identityJWT,
		codePepper,
		5*time.Minute,
		time.Minute,
	)
	verifyHandler := verify.NewHandler(verifyService)

	bookingService := booking.NewService(reservationRepo, verifyService, schedule.Default(), hub)
	bookingHandler := booking.NewHandler(bookingService)

	adminService := admin.NewService(adminRepo, reservationRepo, adminJWT, hub)
	adminHandler := admin.NewHandler(adminService)

	liveHandler := live.NewHandler(hub)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		bookingHandler.RegisterRoutes(v1)
		verifyHandler.RegisterRoutes(v1)
		liveHandler.RegisterRoutes(v1)
		adminHandler.RegisterPublicRoutes(v1)

		// protected (admin endpoints)
		protected := v1.Group("/")
		protected.Use(middleware.AdminAuth(adminJWT))
		{
			adminHandler.RegisterRoutes(protected)
		}
	}

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
