package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"platinummotors/internal/cache"
	"platinummotors/internal/config"
	"platinummotors/internal/database"
	"platinummotors/internal/images"
	"platinummotors/internal/scraper"
	"platinummotors/internal/sync"
)

func main() {
	fmt.Println("🚗 Platinum Motors Sync Tool")
	fmt.Println("============================")

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/sync/main.go <command> [args]")
		fmt.Println("Commands:")
		fmt.Println("  run           - Run a full Autotrader sync now")
		fmt.Println("  import-json   - Import cars from a JSON export")
		fmt.Println("  status        - Show inventory and last sync status")
		os.Exit(1)
	}

	command := os.Args[1]
	cfg := config.Load()

	db, err := database.NewDatabase(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	switch command {
	case "run":
		runSync(cfg, db)
	case "import-json":
		jsonPath := "./data/cars.json"
		if len(os.Args) >= 3 {
			jsonPath = os.Args[2]
		}
		if err := db.ImportCarsFromJSON(jsonPath); err != nil {
			log.Fatal("Import failed:", err)
		}
	case "status":
		showStatus(db)
	default:
		log.Fatal("Unknown command:", command)
	}
}

func runSync(cfg *config.Config, db *database.Database) {
	autotrader := scraper.New(cfg.DealerURL, cfg.ChromeBin, cfg.NavigationTimeout, cfg.SettleWait)
	store, err := images.NewDiskStore(cfg.ImageDir, cfg.ImageBaseURL)
	if err != nil {
		log.Fatal("Failed to create image store:", err)
	}
	relocator := images.NewRelocator(store, cfg.RelocateWorkers)
	orchestrator := sync.NewOrchestrator(autotrader, relocator, db, cfg.SyncMarkMissing)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	report, err := orchestrator.Run(ctx)
	if err != nil {
		log.Fatal("Sync failed to start:", err)
	}

	if err := cache.SaveReport(report); err != nil {
		log.Printf("Warning: failed to persist sync report: %v", err)
	}

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))

	if !report.Success {
		os.Exit(1)
	}
}

func showStatus(db *database.Database) {
	fmt.Println("Inventory Status Report")
	fmt.Println("=======================")

	cars, err := db.GetAllCars()
	if err != nil {
		log.Fatal("Failed to load cars:", err)
	}

	available := 0
	synced := 0
	for _, car := range cars {
		if car.IsAvailable {
			available++
		}
		if car.SyncSource == "autotrader" {
			synced++
		}
	}

	fmt.Printf("📋 Total cars: %d\n", len(cars))
	fmt.Printf("✅ Available: %d\n", available)
	fmt.Printf("🔄 From Autotrader: %d\n", synced)

	if age, err := cache.ReportAge(); err == nil {
		fmt.Printf("🕐 Last sync report: %v ago\n", age.Round(time.Minute))
	} else {
		fmt.Println("🕐 No sync report found")
	}
}
