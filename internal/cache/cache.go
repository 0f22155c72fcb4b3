package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"platinummotors/internal/models"
)

type ReportCache struct {
	Data      *models.SyncReport `json:"data"`
	Timestamp time.Time          `json:"timestamp"`
}

const (
	CacheFileName = "sync_report_cache.json"
	CacheExpiry   = 7 * 24 * time.Hour
)

// LoadReport loads the last persisted sync report if it exists and is not
// stale. Used to seed the status endpoint across restarts.
func LoadReport() (*models.SyncReport, bool) {
	file, err := os.Open(CacheFileName)
	if err != nil {
		fmt.Println("📁 No sync report cache found")
		return nil, false
	}
	defer file.Close()

	var cache ReportCache
	if err := json.NewDecoder(file).Decode(&cache); err != nil {
		fmt.Printf("❌ Error reading sync report cache: %v\n", err)
		return nil, false
	}

	if cache.Data == nil || time.Since(cache.Timestamp) > CacheExpiry {
		return nil, false
	}

	fmt.Printf("✅ Loaded last sync report (%v old)\n", time.Since(cache.Timestamp).Round(time.Minute))
	return cache.Data, true
}

// SaveReport persists a sync report to the cache file
func SaveReport(report *models.SyncReport) error {
	cache := ReportCache{
		Data:      report,
		Timestamp: time.Now(),
	}

	file, err := os.Create(CacheFileName)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %v", err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(cache); err != nil {
		return fmt.Errorf("failed to encode cache: %v", err)
	}

	return nil
}

// ReportAge returns the age of the cached report
func ReportAge() (time.Duration, error) {
	file, err := os.Open(CacheFileName)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var cache ReportCache
	if err := json.NewDecoder(file).Decode(&cache); err != nil {
		return 0, err
	}

	return time.Since(cache.Timestamp), nil
}
