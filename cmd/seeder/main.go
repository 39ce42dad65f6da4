package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/pulsekit/smsdash/internal/auth"
	"github.com/pulsekit/smsdash/internal/config"
	"github.com/pulsekit/smsdash/internal/db"
	"github.com/pulsekit/smsdash/internal/model"
	"github.com/pulsekit/smsdash/internal/repository"
)

// Seeds a local database with an approved admin, a pending user, demo
// customers, and a draft campaign.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on OS environment")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DSN())
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn); err != nil {
		log.Fatal(err)
	}

	profiles := &repository.ProfileRepository{DB: conn}
	customers := &repository.CustomerRepository{DB: conn}
	campaigns := &repository.CampaignRepository{DB: conn}
	invites := &repository.InviteRepository{DB: conn}

	adminHash, err := auth.HashPassword("admin-password")
	if err != nil {
		log.Fatal(err)
	}
	admin := &model.UserProfile{
		UserID:       uuid.NewString(),
		Email:        "admin@example.com",
		PasswordHash: adminHash,
		Role:         model.RoleAdmin,
		Status:       model.StatusApproved,
	}
	if err := profiles.Create(ctx, admin); err != nil {
		log.Fatal(err)
	}
	now := time.Now().UTC()
	if _, err := profiles.BatchUpdate(ctx, []string{admin.UserID}, repository.ProfileChanges{ApprovedAt: &now}); err != nil {
		log.Fatal(err)
	}

	userHash, err := auth.HashPassword("user-password")
	if err != nil {
		log.Fatal(err)
	}
	pending := &model.UserProfile{
		UserID:       uuid.NewString(),
		Email:        "pending@example.com",
		PasswordHash: userHash,
		Role:         model.RoleUser,
		Status:       model.StatusPending,
	}
	if err := profiles.Create(ctx, pending); err != nil {
		log.Fatal(err)
	}

	invite := &model.InviteCode{
		Code:      uuid.NewString(),
		ExpiresAt: now.Add(7 * 24 * time.Hour),
		CreatedBy: admin.UserID,
	}
	if err := invites.Create(ctx, invite); err != nil {
		log.Fatal(err)
	}
	fmt.Println("invite code:", invite.Code)

	demo := []model.Customer{
		{Phone: "+15550100001", FirstName: "Alice", LastName: "Smith", Company: "Smith Bakery", Active: true},
		{Phone: "+15550100002", FirstName: "Bob", LastName: "Jones", Company: "Jones Autos", Active: true},
		{Phone: "+15550100003", FirstName: "Carol", LastName: "Chen", Email: "carol@example.com", Active: true},
	}
	for i := range demo {
		demo[i].UserID = admin.UserID
		if err := customers.Create(ctx, &demo[i]); err != nil {
			log.Fatal(err)
		}
	}

	campaign := &model.Campaign{
		UserID:      admin.UserID,
		Name:        "Welcome blast",
		MessageBody: "Hi {first_name}, thanks for joining {company}!",
	}
	if err := campaigns.Create(ctx, campaign); err != nil {
		log.Fatal(err)
	}

	fmt.Println("database seeding completed successfully")
}
