package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Chasekung/Finance-Club/config"
	"github.com/Chasekung/Finance-Club/db"
	"github.com/Chasekung/Finance-Club/domain/content"
	"github.com/Chasekung/Finance-Club/pkg/apperrors"
	"github.com/Chasekung/Finance-Club/pkg/logger"
	"github.com/Chasekung/Finance-Club/routes"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/main.go [server|migrate|regen_pages]")
		os.Exit(1)
	}

	config.InitConfig()

	logger.Init(logger.Config{
		Level:       logger.Level(viper.GetString("LOG_LEVEL")),
		Environment: viper.GetString("ENVIRONMENT"),
		ServiceName: "finance-club",
		Version:     viper.GetString("VERSION"),
	})
	log := logger.Get()

	conn, err := config.NewDB()
	if err != nil {
		log.Fatal("Failed to connect to database", err)
	}
	defer conn.Close()

	if err := db.Migrate(conn, "postgres"); err != nil {
		log.Fatal("Failed to run migrations", err)
	}

	switch os.Args[1] {
	case "server":
		startServer(conn, log)
	case "migrate":
		// Migrations already ran above; nothing else to do.
		log.Info("Migrations applied")
	case "regen_pages":
		regenPages(conn, log)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func startServer(conn *sqlx.DB, log logger.Logger) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler(log)

	e.Use(logger.RequestLoggerMiddleware(log))
	e.Use(logger.RecoveryMiddleware(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders:    []string{echo.HeaderContentLength},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	routes.RegisterRoutes(e, routes.Deps{
		DB:       conn,
		Log:      log,
		PagesDir: pagesDir(),
	})

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server stopped", err)
	}
}

// regenPages rebuilds every internal item's generated page for the
// requested vertical (or both), resynchronizing artifacts with the store.
func regenPages(conn *sqlx.DB, log logger.Logger) {
	verticals := []content.Vertical{content.CorporateFinance, content.PersonalFinance}
	if len(os.Args) > 2 && os.Args[2] != "all" {
		switch os.Args[2] {
		case content.CorporateFinance.Name:
			verticals = []content.Vertical{content.CorporateFinance}
		case content.PersonalFinance.Name:
			verticals = []content.Vertical{content.PersonalFinance}
		default:
			fmt.Printf("Unknown vertical: %s\n", os.Args[2])
			os.Exit(1)
		}
	}

	ctx := context.Background()
	for _, v := range verticals {
		svc := content.NewService(conn, v, pagesDir(), log)
		count, err := svc.RegenerateAll(ctx)
		if err != nil {
			log.Fatal("Failed to regenerate pages", err, logger.Vertical(v.Name))
		}
		log.Info("Pages regenerated", logger.Vertical(v.Name), logger.Int("count", count))
	}
}

func pagesDir() string {
	dir := viper.GetString("PAGES_DIR")
	if dir == "" {
		dir = "pages"
	}
	return dir
}
