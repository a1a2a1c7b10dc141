// server/internal/database/seeder.go
package database

import (
	"context"
	"log"
	"time"

	"bill-delivery-api-server/config"
	"bill-delivery-api-server/internal/auth"
	"bill-delivery-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SeedAdmin makes sure one admin account exists so a fresh database can
// be logged into. Credentials come from config; nothing happens when
// they are unset or the account already exists.
func SeedAdmin(db *mongo.Database, cfg config.Config) error {
	if cfg.Seed.AdminEmail == "" || cfg.Seed.AdminPassword == "" {
		log.Println("Seed admin credentials not configured. Seeding skipped.")
		return nil
	}

	userCollection := db.Collection("users")

	count, err := userCollection.CountDocuments(context.Background(), bson.M{"email": cfg.Seed.AdminEmail})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Println("Admin already exists. Seeding skipped.")
		return nil
	}

	log.Println("Admin not found. Seeding...")
	hashedPassword, err := auth.HashPassword(cfg.Seed.AdminPassword)
	if err != nil {
		return err
	}

	now := time.Now()
	admin := models.User{
		Email:     cfg.Seed.AdminEmail,
		Password:  hashedPassword,
		FullName:  "System Admin",
		Role:      models.RoleAdmin,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = userCollection.InsertOne(context.Background(), admin)
	if err != nil {
		return err
	}

	log.Println("Admin seeded successfully.")
	return nil
}
