package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"platinummotors/internal/database"
	"platinummotors/internal/models"
	"platinummotors/internal/scraper"
	"platinummotors/internal/sync"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	root := filepath.Join(cwd, "..", "..")
	if err := os.Chdir(root); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestRouter(t *testing.T, db *database.Database) *gin.Engine {
	t.Helper()

	authHandler := NewAuthHandler(db)
	carHandler := NewCarHandler(db)
	reviewHandler := NewReviewHandler(db)
	enquiryHandler := NewEnquiryHandler(db, "", "")

	r := gin.New()
	r.Use(authHandler.AuthMiddleware())

	api := r.Group("/api")
	api.GET("/cars", carHandler.GetCars)
	api.GET("/cars/:id", carHandler.GetCar)
	api.GET("/reviews", reviewHandler.GetReviews)
	api.POST("/reviews", reviewHandler.SubmitReview)
	api.POST("/enquiry", enquiryHandler.SubmitEnquiry)
	api.POST("/auth/login", authHandler.Login)

	admin := api.Group("/admin")
	admin.Use(authHandler.RequireAuth())
	admin.GET("/cars", carHandler.GetAllCars)
	admin.POST("/cars", carHandler.CreateCar)
	admin.PUT("/reviews/:id", reviewHandler.ModerateReview)

	return r
}

func seedAdmin(t *testing.T, db *database.Database) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if _, err := db.EnsureAdminUser("admin", string(hash)); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
}

func seedCar(t *testing.T, db *database.Database) *models.Car {
	t.Helper()
	car := &models.Car{
		AutotraderID: "100",
		SyncSource:   models.SyncSourceAutotrader,
		Make:         "Mercedes-Benz",
		Model:        "S-Class",
		Year:         2022,
		Price:        54999,
		Registration: "LP22 ABC",
		IsAvailable:  true,
	}
	if err := db.CreateCar(car); err != nil {
		t.Fatalf("seed car: %v", err)
	}
	return car
}

func doJSON(r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, r http.Handler) string {
	t.Helper()
	rec := doJSON(r, http.MethodPost, "/api/auth/login", "", models.LoginRequest{
		Username: "admin", Password: "hunter22",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.SessionToken == "" {
		t.Fatal("expected session token")
	}
	return resp.SessionToken
}

func TestPublicCarsOmitRegistration(t *testing.T) {
	db := newTestDB(t)
	seedCar(t, db)
	r := newTestRouter(t, db)

	rec := doJSON(r, http.MethodGet, "/api/cars", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if bytes.Contains(rec.Body.Bytes(), []byte("LP22")) {
		t.Fatal("registration leaked into public listing response")
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("registration")) {
		t.Fatal("registration key present in public response")
	}

	var cars []models.PublicCar
	if err := json.Unmarshal(rec.Body.Bytes(), &cars); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cars) != 1 || cars[0].Make != "Mercedes-Benz" {
		t.Fatalf("unexpected cars: %+v", cars)
	}
}

func TestPublicCarDetailOmitsRegistration(t *testing.T) {
	db := newTestDB(t)
	car := seedCar(t, db)
	r := newTestRouter(t, db)

	rec := doJSON(r, http.MethodGet, "/api/cars/"+itoa(car.ID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("LP22")) {
		t.Fatal("registration leaked into public detail response")
	}
}

func TestAdminEndpointsRequireAuth(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	rec := doJSON(r, http.MethodGet, "/api/admin/cars", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	// Malformed token, rejected before any database lookup
	rec = doJSON(r, http.MethodGet, "/api/admin/cars", "not-a-real-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed token, got %d", rec.Code)
	}

	// Well-formed but unknown token
	rec = doJSON(r, http.MethodGet, "/api/admin/cars", strings.Repeat("a", 64), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown token, got %d", rec.Code)
	}
}

func TestAdminCarsIncludeRegistration(t *testing.T) {
	db := newTestDB(t)
	seedAdmin(t, db)
	seedCar(t, db)
	r := newTestRouter(t, db)

	token := login(t, r)
	rec := doJSON(r, http.MethodGet, "/api/admin/cars", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("LP22 ABC")) {
		t.Fatal("admin response should include registration")
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	db := newTestDB(t)
	seedAdmin(t, db)
	r := newTestRouter(t, db)

	rec := doJSON(r, http.MethodPost, "/api/auth/login", "", models.LoginRequest{
		Username: "admin", Password: "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestReviewSubmissionAndModeration(t *testing.T) {
	db := newTestDB(t)
	seedAdmin(t, db)
	r := newTestRouter(t, db)

	rec := doJSON(r, http.MethodPost, "/api/reviews", "", models.ReviewRequest{
		Name: "Sam", Rating: 5, Comment: "Great <script>alert(1)</script> service",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("<script>")) {
		t.Fatal("comment was not sanitized")
	}

	var review models.Review
	json.Unmarshal(rec.Body.Bytes(), &review)

	// Pending reviews are invisible publicly
	rec = doJSON(r, http.MethodGet, "/api/reviews", "", nil)
	if rec.Body.String() != "[]" {
		t.Fatalf("pending review visible publicly: %s", rec.Body.String())
	}

	token := login(t, r)
	rec = doJSON(r, http.MethodPut, "/api/admin/reviews/"+itoa(review.ID), token, ModerationRequest{
		Status: models.ReviewStatusApproved,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("moderation failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(r, http.MethodGet, "/api/reviews", "", nil)
	if !bytes.Contains(rec.Body.Bytes(), []byte("Sam")) {
		t.Fatalf("approved review missing: %s", rec.Body.String())
	}
}

func TestEnquiryValidation(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	rec := doJSON(r, http.MethodPost, "/api/enquiry", "", models.EnquiryRequest{
		Name: "Sam", Email: "not-an-email", Message: "Hi",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad email, got %d", rec.Code)
	}

	rec = doJSON(r, http.MethodPost, "/api/enquiry", "", models.EnquiryRequest{
		Name: "Sam", Email: "sam@example.com", Message: "Is the S-Class still available?",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
}

type stubSession struct{}

func (stubSession) WaitStable(d time.Duration)                 {}
func (stubSession) Elements(sel string) ([]scraper.Element, error) { return nil, nil }
func (stubSession) Eval(js string) (string, error)             { return "", nil }
func (stubSession) Close() error                               { return nil }

type stubScraper struct {
	listings []*models.AutotraderListing
	started  chan struct{}
	gate     chan struct{}
}

func (s *stubScraper) Open() (scraper.Session, error) {
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	return stubSession{}, nil
}

func (s *stubScraper) Close(sess scraper.Session) {}

func (s *stubScraper) ScrapeAll(sess scraper.Session) ([]*models.AutotraderListing, []error) {
	return s.listings, nil
}

type passthroughRelocator struct{}

func (passthroughRelocator) Relocate(ctx context.Context, externalID string, sourceURLs []string) ([]string, []error) {
	return sourceURLs, nil
}

func newSyncRouter(t *testing.T, db *database.Database, sc sync.Scraper) *gin.Engine {
	t.Helper()
	o := sync.NewOrchestrator(sc, passthroughRelocator{}, db, false)
	h := NewSyncHandler(o, "", "")

	r := gin.New()
	r.POST("/api/admin/autotrader/sync", h.TriggerSync)
	r.GET("/api/admin/autotrader/sync/status", h.GetSyncStatus)
	return r
}

func TestTriggerSyncReturnsCompletedReport(t *testing.T) {
	db := newTestDB(t)
	t.Chdir(t.TempDir()) // keep the report cache file out of the repo

	sc := &stubScraper{listings: []*models.AutotraderListing{{
		AutotraderID: "100",
		Make:         "Mercedes-Benz",
		Model:        "S-Class",
		Year:         2022,
		Price:        54999,
	}}}
	r := newSyncRouter(t, db, sc)

	rec := doJSON(r, http.MethodPost, "/api/admin/autotrader/sync", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	for _, key := range []string{`"success"`, `"created"`, `"updated"`, `"total"`} {
		if !strings.Contains(rec.Body.String(), key) {
			t.Fatalf("response missing %s: %s", key, rec.Body.String())
		}
	}

	var report models.SyncReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !report.Success || report.Created != 1 || report.Total != 1 {
		t.Fatalf("report: %+v", report)
	}

	// The stored car is immediately queryable
	cars, err := db.GetAvailableCars(models.CarFilters{})
	if err != nil || len(cars) != 1 {
		t.Fatalf("cars after sync: %v %v", cars, err)
	}
}

func TestTriggerSyncRejectsConcurrentRun(t *testing.T) {
	db := newTestDB(t)
	t.Chdir(t.TempDir())

	sc := &stubScraper{
		started: make(chan struct{}, 1),
		gate:    make(chan struct{}),
	}
	r := newSyncRouter(t, db, sc)

	done := make(chan struct{})
	go func() {
		defer close(done)
		doJSON(r, http.MethodPost, "/api/admin/autotrader/sync", "", nil)
	}()
	<-sc.started // first run now holds the single-flight lock

	rec := doJSON(r, http.MethodPost, "/api/admin/autotrader/sync", "", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	close(sc.gate)
	<-done
}

func TestLoginRejectsMalformedUsername(t *testing.T) {
	db := newTestDB(t)
	seedAdmin(t, db)
	r := newTestRouter(t, db)

	rec := doJSON(r, http.MethodPost, "/api/auth/login", "", models.LoginRequest{
		Username: "x", Password: "hunter22",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
