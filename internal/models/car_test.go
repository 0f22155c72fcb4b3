package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestToPublicStripsAdminFields(t *testing.T) {
	car := &Car{
		ID:           1,
		AutotraderID: "100",
		SyncSource:   SyncSourceAutotrader,
		Make:         "Mercedes-Benz",
		Model:        "S-Class",
		Year:         2022,
		Price:        54999,
		Registration: "LP22 ABC",
		IsAvailable:  true,
		LastSyncedAt: time.Now(),
	}

	data, err := json.Marshal(car.ToPublic())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	body := string(data)
	for _, leaked := range []string{"LP22", "registration", "autotraderId", "syncSource", "lastSyncedAt"} {
		if strings.Contains(body, leaked) {
			t.Errorf("public shape leaked %q: %s", leaked, body)
		}
	}
	if !strings.Contains(body, "Mercedes-Benz") {
		t.Fatalf("public shape missing data: %s", body)
	}
}

func TestListingToCar(t *testing.T) {
	listing := &AutotraderListing{
		AutotraderID: "100",
		Make:         "Porsche",
		Model:        "911 Carrera",
		Year:         2019,
		Price:        89500,
		Mileage:      12000,
		Images:       []string{"/images/cars/100/0.jpg"},
	}

	car := listing.ToCar()
	if car.SyncSource != SyncSourceAutotrader {
		t.Fatalf("SyncSource = %q", car.SyncSource)
	}
	if !car.IsAvailable {
		t.Fatal("scraped cars must be available")
	}
	if car.Registration != "" {
		t.Fatal("sync must never populate registration")
	}
	if car.LastSyncedAt.IsZero() {
		t.Fatal("LastSyncedAt must be set")
	}
	if car.Make != "Porsche" || car.Price != 89500 {
		t.Fatalf("fields not mapped: %+v", car)
	}
}

func TestUserPasswordHashNeverMarshalled(t *testing.T) {
	user := &User{Username: "admin", PasswordHash: "secret-hash"}
	data, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "secret-hash") {
		t.Fatal("password hash leaked into JSON")
	}
}
