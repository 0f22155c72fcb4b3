package models

import "time"

// Sync sources for inventory records. Autotrader is the only feed wired up
// today; manually created stock uses SyncSourceManual.
const (
	SyncSourceAutotrader = "autotrader"
	SyncSourceManual     = "manual"
)

// Car represents a vehicle in the persistent inventory
type Car struct {
	ID           int       `json:"id"`
	AutotraderID string    `json:"autotraderId,omitempty"`
	SyncSource   string    `json:"syncSource"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Price        int       `json:"price"`
	Mileage      int       `json:"mileage"`
	FuelType     string    `json:"fuelType,omitempty"`
	Transmission string    `json:"transmission,omitempty"`
	BodyType     string    `json:"bodyType,omitempty"`
	EngineSize   string    `json:"engineSize,omitempty"`
	Color        string    `json:"color,omitempty"`
	Doors        int       `json:"doors,omitempty"`
	Description  string    `json:"description,omitempty"`
	Features     []string  `json:"features,omitempty"`
	Images       []string  `json:"images,omitempty"`
	ListingURL   string    `json:"listingUrl,omitempty"`
	Registration string    `json:"registration,omitempty"` // Admin-only, stripped from public reads
	IsAvailable  bool      `json:"isAvailable"`
	LastSyncedAt time.Time `json:"lastSyncedAt,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicCar is the response shape for unauthenticated reads. It carries the
// same fields as Car minus registration, which never leaves the admin path.
type PublicCar struct {
	ID           int       `json:"id"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Price        int       `json:"price"`
	Mileage      int       `json:"mileage"`
	FuelType     string    `json:"fuelType,omitempty"`
	Transmission string    `json:"transmission,omitempty"`
	BodyType     string    `json:"bodyType,omitempty"`
	EngineSize   string    `json:"engineSize,omitempty"`
	Color        string    `json:"color,omitempty"`
	Doors        int       `json:"doors,omitempty"`
	Description  string    `json:"description,omitempty"`
	Features     []string  `json:"features,omitempty"`
	Images       []string  `json:"images,omitempty"`
	ListingURL   string    `json:"listingUrl,omitempty"`
	IsAvailable  bool      `json:"isAvailable"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ToPublic converts a Car to the public response shape
func (c *Car) ToPublic() *PublicCar {
	return &PublicCar{
		ID:           c.ID,
		Make:         c.Make,
		Model:        c.Model,
		Year:         c.Year,
		Price:        c.Price,
		Mileage:      c.Mileage,
		FuelType:     c.FuelType,
		Transmission: c.Transmission,
		BodyType:     c.BodyType,
		EngineSize:   c.EngineSize,
		Color:        c.Color,
		Doors:        c.Doors,
		Description:  c.Description,
		Features:     c.Features,
		Images:       c.Images,
		ListingURL:   c.ListingURL,
		IsAvailable:  c.IsAvailable,
		CreatedAt:    c.CreatedAt,
	}
}

// AutotraderListing is the transient record produced by one scrape run,
// before image relocation and persistence
type AutotraderListing struct {
	AutotraderID string   `json:"autotraderId"`
	Make         string   `json:"make"`
	Model        string   `json:"model"`
	Year         int      `json:"year"`
	Price        int      `json:"price"`
	Mileage      int      `json:"mileage"`
	FuelType     string   `json:"fuelType,omitempty"`
	Transmission string   `json:"transmission,omitempty"`
	BodyType     string   `json:"bodyType,omitempty"`
	EngineSize   string   `json:"engineSize,omitempty"`
	Color        string   `json:"color,omitempty"`
	Doors        int      `json:"doors,omitempty"`
	Description  string   `json:"description,omitempty"`
	Features     []string `json:"features,omitempty"`
	Images       []string `json:"images"` // Display order, index 0 is the hero image
	ListingURL   string   `json:"listingUrl"`
}

// ToCar maps a scraped listing onto an inventory record. Registration is
// never populated here; it is writable only through the admin path.
func (l *AutotraderListing) ToCar() *Car {
	return &Car{
		AutotraderID: l.AutotraderID,
		SyncSource:   SyncSourceAutotrader,
		Make:         l.Make,
		Model:        l.Model,
		Year:         l.Year,
		Price:        l.Price,
		Mileage:      l.Mileage,
		FuelType:     l.FuelType,
		Transmission: l.Transmission,
		BodyType:     l.BodyType,
		EngineSize:   l.EngineSize,
		Color:        l.Color,
		Doors:        l.Doors,
		Description:  l.Description,
		Features:     l.Features,
		Images:       l.Images,
		ListingURL:   l.ListingURL,
		IsAvailable:  true,
		LastSyncedAt: time.Now(),
	}
}

// CarFilters holds the optional public search filters
type CarFilters struct {
	Make       string
	MinPrice   int
	MaxPrice   int
	MinMileage int
	MaxMileage int
}

// SyncError records one recovered per-listing failure during a sync run
type SyncError struct {
	AutotraderID string `json:"autotraderId"`
	Message      string `json:"message"`
}

// SyncReport is the aggregate result of one sync run
type SyncReport struct {
	Success     bool        `json:"success"`
	Created     int         `json:"created"`
	Updated     int         `json:"updated"`
	Unavailable int         `json:"unavailable,omitempty"` // Rows soft-removed by stale reconciliation
	Total       int         `json:"total"`
	Errors      []SyncError `json:"errors,omitempty"`
	Reason      string      `json:"reason,omitempty"` // Populated on run-level failure
	StartedAt   time.Time   `json:"startedAt"`
	FinishedAt  time.Time   `json:"finishedAt"`
}
