package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"platinummotors/internal/models"
	"platinummotors/internal/scraper"
	"platinummotors/internal/validation"
)

// State tracks where a sync run currently is. Exposed verbatim on the
// status endpoint.
type State string

const (
	StateIdle         State = "idle"
	StateInitializing State = "initializing"
	StateScraping     State = "scraping"
	StateProcessing   State = "processing"
	StateFinalizing   State = "finalizing"
	StateCompleted    State = "completed"
	StateFailed       State = "failed"
)

// ErrSyncInProgress is returned when a run is requested while another run
// holds the single-flight lock.
var ErrSyncInProgress = fmt.Errorf("sync already in progress")

// Scraper is the subset of the Autotrader scraper the orchestrator drives
type Scraper interface {
	Open() (scraper.Session, error)
	Close(sess scraper.Session)
	ScrapeAll(sess scraper.Session) ([]*models.AutotraderListing, []error)
}

// Relocator copies listing images onto storage we control and returns the
// rewritten URLs in display order
type Relocator interface {
	Relocate(ctx context.Context, externalID string, sourceURLs []string) ([]string, []error)
}

// Store is the subset of the database the sync pipeline writes through
type Store interface {
	UpsertCar(car *models.Car) (bool, error)
	MarkMissingUnavailable(syncSource string, presentIDs []string) (int, error)
}

// Status is the snapshot served by the sync status endpoint
type Status struct {
	State      State              `json:"state"`
	Running    bool               `json:"running"`
	LastReport *models.SyncReport `json:"lastReport,omitempty"`
}

// Orchestrator runs the scrape-relocate-upsert pipeline as a single-flight
// job. Concurrent triggers are rejected, never queued.
type Orchestrator struct {
	scraper     Scraper
	relocator   Relocator
	store       Store
	markMissing bool

	runMu sync.Mutex // held for the duration of a run

	mu         sync.Mutex // guards state and lastReport
	state      State
	lastReport *models.SyncReport
}

func NewOrchestrator(s Scraper, r Relocator, store Store, markMissing bool) *Orchestrator {
	return &Orchestrator{
		scraper:     s,
		relocator:   r,
		store:       store,
		markMissing: markMissing,
		state:       StateIdle,
	}
}

// SeedReport installs a previously persisted report so the status endpoint
// has history across restarts. No-op once a run has completed.
func (o *Orchestrator) SeedReport(report *models.SyncReport) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.lastReport == nil {
		o.lastReport = report
	}
}

// Status returns the current run state and the last completed report
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()

	state := o.state
	return Status{
		State:      state,
		Running:    state != StateIdle && state != StateCompleted && state != StateFailed,
		LastReport: o.lastReport,
	}
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

func (o *Orchestrator) finish(report *models.SyncReport) {
	report.FinishedAt = time.Now()

	o.mu.Lock()
	if report.Success {
		o.state = StateCompleted
	} else {
		o.state = StateFailed
	}
	o.lastReport = report
	o.mu.Unlock()
}

// failReason labels a run-fatal error by its category so a navigation
// timeout is never reported as a missing browser session.
func failReason(err error) string {
	if scraper.IsNavigationTimeout(err) {
		return fmt.Sprintf("navigation timeout: %v", err)
	}
	return fmt.Sprintf("browser session unavailable: %v", err)
}

// Run executes one full sync and returns its report. If another run is in
// flight it returns ErrSyncInProgress immediately.
func (o *Orchestrator) Run(ctx context.Context) (*models.SyncReport, error) {
	if !o.runMu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer o.runMu.Unlock()

	report := &models.SyncReport{StartedAt: time.Now()}

	o.setState(StateInitializing)
	fmt.Println("🚀 Starting Autotrader sync...")

	sess, err := o.scraper.Open()
	if err != nil {
		report.Reason = failReason(err)
		fmt.Printf("❌ Sync failed: %s\n", report.Reason)
		o.finish(report)
		return report, nil
	}
	// Teardown is guaranteed on every exit path, including panics inside
	// extraction code.
	defer o.scraper.Close(sess)

	o.setState(StateScraping)
	listings, scrapeErrs := o.scraper.ScrapeAll(sess)

	for _, serr := range scrapeErrs {
		if scraper.IsSessionUnavailable(serr) || scraper.IsNavigationTimeout(serr) {
			report.Reason = failReason(serr)
			fmt.Printf("❌ Sync failed: %s\n", report.Reason)
			o.finish(report)
			return report, nil
		}
		report.Errors = append(report.Errors, models.SyncError{Message: serr.Error()})
	}

	fmt.Printf("📋 Scraped %d listings from dealer page\n", len(listings))

	o.setState(StateProcessing)
	presentIDs := make([]string, 0, len(listings))

	for _, listing := range listings {
		if err := ctx.Err(); err != nil {
			report.Reason = fmt.Sprintf("sync cancelled: %v", err)
			fmt.Printf("❌ Sync failed: %s\n", report.Reason)
			o.finish(report)
			return report, nil
		}

		// Listing ids feed image paths and SQL parameters; anything that
		// is not URL-safe stops here.
		if err := validation.ValidateExternalID(listing.AutotraderID); err != nil {
			report.Errors = append(report.Errors, models.SyncError{
				AutotraderID: listing.AutotraderID,
				Message:      err.Error(),
			})
			continue
		}

		car := listing.ToCar()

		// Image failures degrade the listing, they never fail the run.
		// A car with no relocated images is still stored.
		relocated, imgErrs := o.relocator.Relocate(ctx, listing.AutotraderID, listing.Images)
		for _, ierr := range imgErrs {
			report.Errors = append(report.Errors, models.SyncError{
				AutotraderID: listing.AutotraderID,
				Message:      fmt.Sprintf("image: %v", ierr),
			})
		}
		car.Images = relocated

		created, err := o.store.UpsertCar(car)
		if err != nil {
			report.Errors = append(report.Errors, models.SyncError{
				AutotraderID: listing.AutotraderID,
				Message:      err.Error(),
			})
			continue
		}

		presentIDs = append(presentIDs, listing.AutotraderID)
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}

	o.setState(StateFinalizing)

	if o.markMissing && len(presentIDs) > 0 {
		marked, err := o.store.MarkMissingUnavailable(models.SyncSourceAutotrader, presentIDs)
		if err != nil {
			report.Errors = append(report.Errors, models.SyncError{Message: err.Error()})
		} else {
			report.Unavailable = marked
		}
	}

	report.Total = report.Created + report.Updated
	report.Success = true
	o.finish(report)

	fmt.Printf("✅ Sync complete: %d created, %d updated, %d errors\n",
		report.Created, report.Updated, len(report.Errors))

	return report, nil
}
