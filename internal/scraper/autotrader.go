package scraper

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"platinummotors/internal/models"
)

// Autotrader renders listing cards client-side and reshuffles its markup
// without notice, so element selection runs through an ordered strategy
// cascade: the scraper commits to the first strategy whose selector yields
// at least one candidate and never falls through to a later one in the same
// run. Adding or reordering strategies is a data change.
type strategy struct {
	name     string
	selector string
	extract  func(el Element, index int) (*models.AutotraderListing, error)
}

// AutotraderScraper crawls one dealer inventory page per run.
type AutotraderScraper struct {
	driver     Driver
	dealerURL  string
	origin     string
	navTimeout time.Duration
	settleWait time.Duration
	strategies []strategy
}

// New creates a scraper for the given dealer page backed by a headless
// Chromium driver.
func New(dealerURL, chromeBin string, navTimeout, settleWait time.Duration) *AutotraderScraper {
	return NewWithDriver(NewRodDriver(chromeBin), dealerURL, navTimeout, settleWait)
}

// NewWithDriver creates a scraper with an injected driver. Tests use this
// with a fake.
func NewWithDriver(driver Driver, dealerURL string, navTimeout, settleWait time.Duration) *AutotraderScraper {
	s := &AutotraderScraper{
		driver:     driver,
		dealerURL:  dealerURL,
		origin:     originOf(dealerURL),
		navTimeout: navTimeout,
		settleWait: settleWait,
	}
	s.strategies = []strategy{
		{"testid-listing-card", `li[data-testid="listing-card"]`, s.extractCard},
		{"testid-search-listing", `[data-testid="search-listing"], [data-testid="advert-card"]`, s.extractCard},
		{"class-listing-card", `.search-listing, .at-listing-card, [class*="listing-card"], [class*="advert-card"]`, s.extractCard},
		{"generic-article", `article, [role="article"], .listing, [class*="listing"]`, s.extractCard},
	}
	return s
}

// Open starts a browser session and navigates to the dealer page. The
// returned session must be passed to Close on every exit path.
func (s *AutotraderScraper) Open() (Session, error) {
	fmt.Printf("🌐 Navigating to %s...\n", s.dealerURL)
	return s.driver.Open(s.dealerURL, s.navTimeout)
}

// Close tears down the session. Safe to call with a nil session.
func (s *AutotraderScraper) Close(sess Session) {
	if sess == nil {
		return
	}
	if err := sess.Close(); err != nil {
		fmt.Printf("⚠️  Error closing browser session: %v\n", err)
	}
}

// ScrapeAll extracts every listing visible on the open page. Per-element
// extraction failures are recorded and skipped; they never abort the scrape.
// An empty result with no errors means the page loaded but had no listings.
func (s *AutotraderScraper) ScrapeAll(sess Session) ([]*models.AutotraderListing, []error) {
	s.dismissCookieBanner(sess)
	sess.WaitStable(s.settleWait)

	var listings []*models.AutotraderListing
	var errs []error

	for _, strat := range s.strategies {
		elements, err := sess.Elements(strat.selector)
		if err != nil || len(elements) == 0 {
			continue
		}
		fmt.Printf("📋 Strategy %q matched %d elements\n", strat.name, len(elements))

		seen := make(map[string]bool)
		for i, el := range elements {
			listing, err := s.extractSafe(strat, el, i)
			if err != nil {
				fmt.Printf("  ⚠️  Skipping element %d: %v\n", i, err)
				errs = append(errs, fmt.Errorf("element %d: %w", i, err))
				continue
			}
			if listing == nil || seen[listing.AutotraderID] {
				continue
			}
			seen[listing.AutotraderID] = true
			listings = append(listings, listing)
		}

		// Committed to this strategy; later, more generic ones are never tried
		break
	}

	if len(listings) == 0 {
		fmt.Println("🔗 No listings from structural strategies, harvesting detail links...")
		fallback, fallbackErrs := s.harvestDetailLinks(sess)
		listings = append(listings, fallback...)
		errs = append(errs, fallbackErrs...)
	}

	fmt.Printf("🏁 Scrape finished: %d listings, %d skipped elements\n", len(listings), len(errs))
	return listings, errs
}

// extractSafe isolates one element's extraction so a panic inside rod or a
// parsing rule only costs that element.
func (s *AutotraderScraper) extractSafe(strat strategy, el Element, index int) (listing *models.AutotraderListing, err error) {
	defer func() {
		if r := recover(); r != nil {
			listing = nil
			err = fmt.Errorf("extraction panic: %v", r)
		}
	}()
	return strat.extract(el, index)
}

// Ordered title selectors, most specific first
var titleSelectors = []string{
	`h3[data-testid="listing-card-title"]`,
	"h3",
	"h2",
}

var priceSelectors = []string{
	`div[data-testid="listing-card-price"]`,
	`[class*="price"]`,
}

// extractCard pulls one listing out of a card element. A card
// with no parseable "<year> <make> <model>" title or no resolvable external
// id is discarded without error.
func (s *AutotraderScraper) extractCard(el Element, index int) (*models.AutotraderListing, error) {
	title := firstText(el, titleSelectors)
	if title == "" {
		return nil, nil
	}

	year, make, model, ok := ParseTitle(title)
	if !ok {
		return nil, nil
	}

	// External id: explicit element id attribute first, detail link second
	externalID := ""
	if id, found := el.Attribute("id"); found {
		externalID = ExternalIDFromElementID(id)
	}
	href := firstAttr(el, `a[data-testid="listing-card-link"], a[href*="/car-details/"]`, "href")
	if externalID == "" {
		externalID = ExternalIDFromHref(href)
	}
	if externalID == "" {
		return nil, nil
	}

	listing := &models.AutotraderListing{
		AutotraderID: externalID,
		Make:         make,
		Model:        model,
		Year:         year,
		Price:        ParsePrice(firstText(el, priceSelectors)),
		ListingURL:   s.listingURL(href, externalID),
	}

	// Feature list order on the card: mileage, fuel type, transmission
	if features, err := el.Elements(`ul[data-testid="vehicle-features"] li`); err == nil {
		if len(features) > 0 {
			if text, err := features[0].Text(); err == nil {
				listing.Mileage = ParseMileage(text)
			}
		}
		if len(features) > 1 {
			if text, err := features[1].Text(); err == nil {
				listing.FuelType = strings.TrimSpace(text)
			}
		}
		if len(features) > 2 {
			if text, err := features[2].Text(); err == nil {
				listing.Transmission = strings.TrimSpace(text)
			}
		}
	}

	listing.Description = firstText(el, []string{`p[data-testid="listing-card-description"]`})
	listing.Images = s.extractImages(el)

	return listing, nil
}

// extractImages collects image sources in DOM order. Lazy-loaded cards stash
// the real URL in data-src before the browser swaps it in.
func (s *AutotraderScraper) extractImages(el Element) []string {
	imgs, err := el.Elements(`img[data-testid="listing-card-image"]`)
	if err != nil || len(imgs) == 0 {
		imgs, err = el.Elements("img")
		if err != nil {
			return nil
		}
	}

	var srcs []string
	for _, img := range imgs {
		srcs = append(srcs, firstAttrOf(img, "data-src", "data-lazy-src", "src"))
	}

	return NormalizeImageURLs(srcs, s.origin)
}

const maxFallbackLinks = 20

const detailLinksJS = `() => JSON.stringify(
	Array.from(document.querySelectorAll('a[href*="/car-details/"]')).map(a => ({
		href: a.getAttribute('href') || '',
		text: (a.textContent || '').trim(),
	}))
)`

// harvestDetailLinks is the last-resort strategy: scan anchors pointing at
// per-listing detail pages and parse "<year> <make> <model>" out of the link
// text. It yields partial records (price 0, mileage 0, no images); no
// enrichment is attempted here.
func (s *AutotraderScraper) harvestDetailLinks(sess Session) ([]*models.AutotraderListing, []error) {
	raw, err := sess.Eval(detailLinksJS)
	if err != nil {
		return nil, []error{fmt.Errorf("detail link harvest: %w", err)}
	}

	var anchors []struct {
		Href string `json:"href"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(raw), &anchors); err != nil {
		return nil, []error{fmt.Errorf("detail link harvest: %w", err)}
	}

	var listings []*models.AutotraderListing
	seen := make(map[string]bool)

	for _, anchor := range anchors {
		if len(listings) >= maxFallbackLinks {
			break
		}

		externalID := ExternalIDFromHref(anchor.Href)
		if externalID == "" || seen[externalID] {
			continue
		}

		year, make, model, ok := ParseTitle(anchor.Text)
		if !ok {
			continue
		}

		seen[externalID] = true
		listings = append(listings, &models.AutotraderListing{
			AutotraderID: externalID,
			Make:         make,
			Model:        model,
			Year:         year,
			Price:        0,
			Mileage:      0,
			Images:       []string{},
			ListingURL:   ResolveURL(anchor.Href, s.origin),
		})
	}

	return listings, nil
}

const cookieBannerJS = `() => {
	const btn = document.querySelector('button#onetrust-accept-btn-handler');
	if (btn) { btn.click(); return 'accepted'; }
	return 'absent';
}`

func (s *AutotraderScraper) dismissCookieBanner(sess Session) {
	result, err := sess.Eval(cookieBannerJS)
	if err != nil {
		return // banner handling is best-effort
	}
	if result == "accepted" {
		fmt.Println("🍪 Accepted cookie banner")
	}
}

func (s *AutotraderScraper) listingURL(href, externalID string) string {
	if href != "" {
		return ResolveURL(href, s.origin)
	}
	return s.origin + "/car-details/" + externalID
}

// firstText returns the first non-empty text among the given sub-selectors
func firstText(el Element, selectors []string) string {
	for _, selector := range selectors {
		children, err := el.Elements(selector)
		if err != nil || len(children) == 0 {
			continue
		}
		text, err := children[0].Text()
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
	}
	return ""
}

// firstAttr returns the named attribute of the first element matching
// selector, or ""
func firstAttr(el Element, selector, name string) string {
	children, err := el.Elements(selector)
	if err != nil || len(children) == 0 {
		return ""
	}
	val, _ := children[0].Attribute(name)
	return val
}

// firstAttrOf returns the first present, non-empty attribute among names
func firstAttrOf(el Element, names ...string) string {
	for _, name := range names {
		if val, found := el.Attribute(name); found && val != "" {
			return val
		}
	}
	return ""
}

func originOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "https://www.autotrader.co.uk"
	}
	return u.Scheme + "://" + u.Host
}
