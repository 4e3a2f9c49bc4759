package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"terminbook/internal/database"
	"terminbook/internal/domain"
	"terminbook/internal/repository"
	"terminbook/internal/schedule"
)

// Seeds the admin account and a handful of demo reservations.
func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	ctx := context.Background()
	adminRepo := repository.NewAdminRepository(db)

	if _, err := adminRepo.GetByEmail(ctx, adminEmail); err == nil {
		log.Printf("admin %s already exists, skipping", adminEmail)
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if hashErr != nil {
			log.Fatalf("hash admin password: %v", hashErr)
		}
		if createErr := adminRepo.Create(ctx, &domain.Admin{
			Email:        adminEmail,
			PasswordHash: string(hash),
		}); createErr != nil {
			log.Fatalf("create admin: %v", createErr)
		}
		log.Printf("created admin %s", adminEmail)
	} else {
		log.Fatalf("lookup admin: %v", err)
	}

	if os.Getenv("SEED_DEMO_BOOKINGS") != "true" {
		return
	}

	reservationRepo := repository.NewReservationRepository(db)
	cal := schedule.Default()
	days := cal.NextBookableDays(2, time.Now())
	slots, err := cal.Slots()
	if err != nil {
		log.Fatalf("generate slots: %v", err)
	}

	demo := []domain.Reservation{
		{Date: days[0].Format(domain.DateLayout), Time: slots[0], PhoneNumber: "+4915112345678", PhoneLastFour: "5678"},
		{Date: days[0].Format(domain.DateLayout), Time: slots[4], PhoneNumber: "+4915187654321", PhoneLastFour: "4321", Confirmed: true},
		{Date: days[1].Format(domain.DateLayout), Time: slots[2], PhoneNumber: "+4369912345678", PhoneLastFour: "5678"},
	}

	created := 0
	for i := range demo {
		if err := reservationRepo.Create(ctx, &demo[i]); err != nil {
			if repository.IsSlotConflict(err) {
				continue
			}
			log.Fatalf("seed reservation: %v", err)
		}
		created++
	}

	log.Printf("seed completed: demo reservations created=%d", created)
}
