package scraper

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Field normalization is deliberately best-effort: every parser returns a
// zero value on unrecognizable input instead of an error, so one mangled
// card never aborts a scrape.

var (
	titleRegex       = regexp.MustCompile(`(\d{4})\s+(\S+)\s+(.+)`)
	detailLinkRegex  = regexp.MustCompile(`/car-details/([^/?]+)`)
	mileageUnitRegex = regexp.MustCompile(`(?i)miles?`)
)

// ParsePrice converts price text like "£54,999" to an integer. Unparseable
// text ("Call for price", "POA") yields 0.
func ParsePrice(text string) int {
	cleaned := strings.NewReplacer("£", "", "$", "", "€", "", ",", "", " ", "").Replace(text)
	return leadingInt(strings.TrimSpace(cleaned))
}

// ParseMileage converts mileage text like "2,500 miles" to an integer,
// returning 0 when no leading number is present.
func ParseMileage(text string) int {
	cleaned := strings.ReplaceAll(text, ",", "")
	cleaned = mileageUnitRegex.ReplaceAllString(cleaned, "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	return leadingInt(strings.TrimSpace(cleaned))
}

// leadingInt parses the run of digits at the start of s, mirroring how a
// lenient integer parse treats trailing junk. Returns 0 if s does not start
// with a digit.
func leadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// ParseTitle splits listing titles of the shape "<year> <make> <model>",
// e.g. "2022 Mercedes-Benz S-Class". ok is false when the shape does not
// match or the year is outside the plausible range [1980, next year].
func ParseTitle(title string) (year int, make, model string, ok bool) {
	matches := titleRegex.FindStringSubmatch(strings.TrimSpace(title))
	if len(matches) < 4 {
		return 0, "", "", false
	}

	year, err := strconv.Atoi(matches[1])
	if err != nil || year < 1980 || year > time.Now().Year()+1 {
		return 0, "", "", false
	}

	make = strings.TrimSpace(matches[2])
	model = strings.TrimSpace(matches[3])
	if make == "" || model == "" {
		return 0, "", "", false
	}

	return year, make, model, true
}

// ExternalIDFromElementID extracts the listing id from a card's DOM id
// attribute, e.g. "listing-202406123456" -> "202406123456".
func ExternalIDFromElementID(id string) string {
	if strings.Contains(id, "listing-") {
		return strings.Replace(id, "listing-", "", 1)
	}
	return ""
}

// ExternalIDFromHref extracts the listing id from a detail-page link path,
// e.g. "/car-details/202406123456?sort=price" -> "202406123456".
func ExternalIDFromHref(href string) string {
	matches := detailLinkRegex.FindStringSubmatch(href)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}

// ResolveURL makes href absolute against the source site's origin. It
// handles protocol-relative ("//...") and site-relative ("/...") forms.
func ResolveURL(href, origin string) string {
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	default:
		return origin + href
	}
}

// CleanImageURL strips the query string, which Autotrader uses only for
// image sizing.
func CleanImageURL(src string) string {
	if idx := strings.Index(src, "?"); idx >= 0 {
		return src[:idx]
	}
	return src
}

// isPlaceholderImage rejects assets that are recognizably not vehicle
// photos.
func isPlaceholderImage(src string) bool {
	for _, marker := range []string{"placeholder", "logo", "icon"} {
		if strings.Contains(src, marker) {
			return true
		}
	}
	return false
}

// NormalizeImageURLs resolves, cleans, filters, and deduplicates raw image
// sources while preserving first-seen order. Only URLs carrying the source
// site's brand (e.g. "autotrader") survive, matching the origin the page
// was scraped from.
func NormalizeImageURLs(srcs []string, origin string) []string {
	brand := originBrand(origin)

	seen := make(map[string]bool)
	var images []string
	for _, src := range srcs {
		if src == "" || isPlaceholderImage(src) {
			continue
		}

		cleaned := CleanImageURL(ResolveURL(src, origin))
		if cleaned == "" || seen[cleaned] {
			continue
		}
		if brand != "" && !strings.Contains(cleaned, brand) {
			continue
		}

		seen[cleaned] = true
		images = append(images, cleaned)
	}

	return images
}

// originBrand extracts the second-level domain label from an origin, e.g.
// "https://www.autotrader.co.uk" -> "autotrader". Used as the substring
// check for keeping only the source site's own image CDN URLs.
func originBrand(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if idx := strings.Index(host, "."); idx > 0 {
		return host[:idx]
	}
	return host
}
