package scraper

import (
	"reflect"
	"testing"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"£54,999", 54999},
		{"£1,250,000", 1250000},
		{"54999", 54999},
		{"£54,999 ono", 54999},
		{"Call for price", 0},
		{"POA", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := ParsePrice(tt.input); got != tt.want {
			t.Errorf("ParsePrice(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParseMileage(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"2,500 miles", 2500},
		{"12000 Miles", 12000},
		{"850 mile", 850},
		{"Delivery mileage", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := ParseMileage(tt.input); got != tt.want {
			t.Errorf("ParseMileage(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParseTitle(t *testing.T) {
	year, make, model, ok := ParseTitle("2022 Mercedes-Benz S-Class S580")
	if !ok {
		t.Fatal("expected title to parse")
	}
	if year != 2022 || make != "Mercedes-Benz" || model != "S-Class S580" {
		t.Fatalf("got %d %q %q", year, make, model)
	}

	bad := []string{
		"Mercedes-Benz S-Class", // no year
		"1900 Ford Model T",     // year below range
		"9999 Fake Car",         // year above range
		"2022",                  // nothing after year
		"",
	}
	for _, title := range bad {
		if _, _, _, ok := ParseTitle(title); ok {
			t.Errorf("ParseTitle(%q) unexpectedly parsed", title)
		}
	}
}

func TestExternalIDExtraction(t *testing.T) {
	if got := ExternalIDFromElementID("listing-202406123456"); got != "202406123456" {
		t.Fatalf("ExternalIDFromElementID = %q", got)
	}
	if got := ExternalIDFromElementID("card-1"); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}

	if got := ExternalIDFromHref("/car-details/202406123456?sort=price"); got != "202406123456" {
		t.Fatalf("ExternalIDFromHref = %q", got)
	}
	if got := ExternalIDFromHref("https://www.autotrader.co.uk/car-details/abc123"); got != "abc123" {
		t.Fatalf("ExternalIDFromHref absolute = %q", got)
	}
	if got := ExternalIDFromHref("/dealers/london"); got != "" {
		t.Fatalf("expected empty id for non-detail link, got %q", got)
	}
}

func TestResolveURL(t *testing.T) {
	origin := "https://www.autotrader.co.uk"

	tests := []struct {
		input string
		want  string
	}{
		{"https://m.atcdn.co.uk/a/media.jpg", "https://m.atcdn.co.uk/a/media.jpg"},
		{"//m.atcdn.co.uk/a/media.jpg", "https://m.atcdn.co.uk/a/media.jpg"},
		{"/images/media.jpg", "https://www.autotrader.co.uk/images/media.jpg"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ResolveURL(tt.input, origin); got != tt.want {
			t.Errorf("ResolveURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeImageURLs(t *testing.T) {
	origin := "https://www.autotrader.co.uk"

	srcs := []string{
		"https://m.autotrader.co.uk/a/first.jpg?w=480",
		"https://m.autotrader.co.uk/a/first.jpg?w=1024", // dup after query strip
		"//m.autotrader.co.uk/a/second.jpg",
		"https://cdn.example.com/placeholder.png",
		"https://cdn.example.com/site-logo.svg",
		"https://othercdn.example.com/unrelated.jpg", // wrong brand
		"",
		"/a/third.jpg",
	}

	got := NormalizeImageURLs(srcs, origin)
	want := []string{
		"https://m.autotrader.co.uk/a/first.jpg",
		"https://m.autotrader.co.uk/a/second.jpg",
		"https://www.autotrader.co.uk/a/third.jpg",
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeImageURLs = %v, want %v", got, want)
	}
}

func TestOriginBrand(t *testing.T) {
	if got := originBrand("https://www.autotrader.co.uk"); got != "autotrader" {
		t.Fatalf("originBrand = %q", got)
	}
	if got := originBrand("not a url %%%"); got != "" {
		t.Fatalf("expected empty brand, got %q", got)
	}
}
