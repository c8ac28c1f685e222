package main

import (
	"context"
	"log"

	"github.com/Chasekung/Finance-Club/config"
	"github.com/Chasekung/Finance-Club/db"
	"github.com/Chasekung/Finance-Club/domain/content"
	"github.com/Chasekung/Finance-Club/domain/user"
	"github.com/Chasekung/Finance-Club/pkg/logger"
	"github.com/spf13/viper"
)

func main() {
	config.InitConfig()
	logger.Init(logger.Config{Level: logger.LevelInfo, Environment: viper.GetString("ENVIRONMENT")})

	conn, err := config.NewDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	if err := db.Migrate(conn, "postgres"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()

	// Seed users
	seedUsers := []struct {
		Username string
		Password string
		FullName string
		IsAdmin  bool
	}{
		{Username: "admin", Password: "admin-change-me", FullName: "Club Admin", IsAdmin: true},
		{Username: "member1", Password: "password1", FullName: "Jordan Lee", IsAdmin: false},
		{Username: "member2", Password: "password2", FullName: "Sam Rivera", IsAdmin: false},
	}

	for _, u := range seedUsers {
		id, err := user.Create(ctx, conn, u.Username, u.Password, u.FullName, u.IsAdmin)
		if err != nil {
			log.Fatalf("Failed to seed user %s: %v", u.Username, err)
		}
		log.Printf("Seeded user: %s (%s)", u.Username, id)
	}

	// Seed content for both verticals
	pagesDir := viper.GetString("PAGES_DIR")
	if pagesDir == "" {
		pagesDir = "pages"
	}

	seedItems := map[content.Vertical][]content.CreateContentRequest{
		content.CorporateFinance: {
			{
				Section:     "News",
				ItemName:    "Q1 Market Recap",
				LinkType:    content.LinkTypeExternal,
				ExternalURL: "https://example.com/q1-recap",
			},
			{
				Section:             "Challenges",
				ItemName:            "Accounting Workshop",
				LinkType:            content.LinkTypeInternal,
				InternalURL:         "accounting-workshop",
				IncludeInstructions: true,
				InstructionsContent: "Work through the provided balance sheet and find the three errors.",
				IncludeTeams:        true,
				TeamsContent:        `[{"name":"Alpha","members":"Jordan, Sam"},{"name":"Beta","members":"Riley, Casey"}]`,
				IncludeLeaderboard:  true,
				LeaderboardContent:  `[{"teamName":"Alpha","score":12},{"teamName":"Beta","score":9}]`,
			},
		},
		content.PersonalFinance: {
			{
				Section:     "News",
				ItemName:    "Budgeting Basics",
				LinkType:    content.LinkTypeExternal,
				ExternalURL: "https://example.com/budgeting",
			},
		},
	}

	appLog := logger.Get()
	for vertical, items := range seedItems {
		svc := content.NewService(conn, vertical, pagesDir, appLog)
		for _, item := range items {
			created, err := svc.Create(ctx, item)
			if err != nil {
				log.Fatalf("Failed to seed content %q: %v", item.ItemName, err)
			}
			log.Printf("Seeded content: %s (%s)", created.ItemName, created.ID)
		}
	}
}
