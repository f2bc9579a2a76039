package main

import (
	"context"
	"log"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/core/model"
	"marketplace/internal/core/repository"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Seeds the demo users and products. Wipes both collections first.
func main() {
	_ = godotenv.Load()

	mongoConfig := config.NewMongoConfig()
	db, err := config.ConnectMongoDB(mongoConfig)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Collection("users").Drop(ctx); err != nil {
		log.Fatalf("Failed to drop users: %v", err)
	}
	if err := db.Collection("products").Drop(ctx); err != nil {
		log.Fatalf("Failed to drop products: %v", err)
	}

	userRepo := repository.NewMongoUserRepository(db)
	productRepo := repository.NewMongoProductRepository(db)

	alice := model.NewUser("alice@example.com", mustHash("password"), "Alice")
	bob := model.NewUser("bob@example.com", mustHash("password"), "Bob")
	admin := model.NewUser("admin@example.com", mustHash("adminpass"), "Admin")
	admin.Role = model.RoleAdmin

	for _, user := range []*model.User{alice, bob, admin} {
		if err := userRepo.Create(user); err != nil {
			log.Fatalf("Failed to seed user %s: %v", user.Email, err)
		}
	}

	iphone := model.NewProduct("iPhone 12", 350, alice.ID)
	iphone.Description = "Good condition"
	iphone.Category = "electronics"

	bike := model.NewProduct("Mountain Bike", 500, bob.ID)
	bike.Description = "Almost new"
	bike.Category = "sports"

	camera := model.NewProduct("Vintage Camera", 120, alice.ID)
	camera.Description = "Collector item"
	camera.Category = "photography"

	for _, product := range []*model.Product{iphone, bike, camera} {
		if err := productRepo.Create(product); err != nil {
			log.Fatalf("Failed to seed product %s: %v", product.Title, err)
		}
	}

	log.Printf("Seeded 3 users and 3 products into %s", mongoConfig.Database)
}

func mustHash(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	return string(hash)
}
