// Command seed populates the database with demo users, posts, products and
// engagement for local development.
package main

import (
	"flag"
	"log"

	"vesti/internal/config"
	"vesti/internal/database"
	"vesti/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	numProducts := flag.Int("products", 40, "Number of catalogue products to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Store plaintext passwords (dev speedup)")
	flag.Parse()

	log.Printf("seeding %d users, %d posts, %d products (clean=%v)",
		*numUsers, *numPosts, *numProducts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		NumProducts: *numProducts,
		ShouldClean: *shouldClean,
		SkipBcrypt:  *skipBcrypt,
	})
	if err := s.Run(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("seeding complete")
}
