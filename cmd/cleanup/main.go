package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"terminbook/internal/database"
	"terminbook/internal/domain"
	"terminbook/internal/repository"
)

// Maintenance job, meant to run from cron: drops consumed/expired OTP
// challenges and reservations whose date is far in the past.
func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	ctx := context.Background()

	challenges, err := repository.NewChallengeRepository(db).DeleteStale(ctx)
	if err != nil {
		log.Fatalf("cleanup otp challenges failed: %v", err)
	}

	// Reservations are kept 90 days past their slot for the admin views.
	cutoff := time.Now().AddDate(0, 0, -90).Format(domain.DateLayout)
	res := db.WithContext(ctx).Where("date < ?", cutoff).Delete(&domain.Reservation{})
	if res.Error != nil {
		log.Fatalf("cleanup reservations failed: %v", res.Error)
	}

	log.Printf("cleanup completed: otp_challenges=%d reservations=%d", challenges, res.RowsAffected)
}
