// Package imaging filters and persists offer images. The classifier decides
// whether an HTML-referenced image is a real product photo or tracking
// infrastructure; MIME-attached images bypass it since they were deliberately
// embedded as message parts.
package imaging

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultMinDimension is the smallest declared width/height that still counts
// as a real image.
const DefaultMinDimension = 50

// trackingPixelPatterns are URL fragments that mark tracking pixels, beacons
// and analytics endpoints.
var trackingPixelPatterns = []string{
	"s.gif", "spacer.gif", "pixel.gif", "blank.gif", "track.gif",
	"1x1.gif", "1x1.png", "beacon.gif", "clear.gif", "transparent.gif",
	"tracking", "analytics", "metric", "mailtrack", "emailtrack",
	"on.jsp", "track.jsp", "open.jsp", "click.jsp",
	"track.php", "open.php", "click.php",
	"track.aspx", "open.aspx",
	"/on/", "/track/", "/open/", "/click/",
}

// trackingExtensions are script endpoints masquerading as images.
var trackingExtensions = []string{".jsp", ".php", ".aspx", ".cgi", ".pl"}

// trackingDomains are known marketing, analytics and ESP hosts.
var trackingDomains = []string{
	"doubleclick", "googleadservices", "google-analytics",
	"facebook.com/tr", "amazon-adsystem", "list-manage.com/track",
	"constantcontact", "mailchimp", "sendgrid", "hubspot",
	"salesforce", "marketo", "eloqua",
}

// trackingParams are query-parameter prefixes attached by tracking links.
var trackingParams = []string{"utm_", "mc_", "ml_", "et_", "fbclid"}

// Classifier decides KEEP or DISCARD for HTML-referenced images.
type Classifier struct {
	minDimension int
	logger       zerolog.Logger
}

// NewClassifier returns a classifier with the given minimum declared
// dimension. Values below 1 fall back to the default.
func NewClassifier(minDimension int, logger zerolog.Logger) *Classifier {
	if minDimension < 1 {
		minDimension = DefaultMinDimension
	}
	return &Classifier{minDimension: minDimension, logger: logger}
}

// IsTrackingPixel reports whether an image reference should be discarded.
// Each check is sufficient alone; absence of all checks means KEEP. attrs
// carries the img tag attributes (width, height) when the reference came from
// HTML markup.
func (c *Classifier) IsTrackingPixel(imgURL string, attrs map[string]string) bool {
	urlLower := strings.ToLower(imgURL)

	for _, pattern := range trackingPixelPatterns {
		if strings.Contains(urlLower, pattern) {
			return true
		}
	}

	if parsed, err := url.Parse(imgURL); err == nil {
		path := strings.ToLower(parsed.Path)
		for _, ext := range trackingExtensions {
			if strings.HasSuffix(path, ext) {
				c.logger.Debug().Str("path", path).Msg("Blocked tracking script")
				return true
			}
		}
	}

	if c.undersized(attrs) {
		return true
	}

	for _, domain := range trackingDomains {
		if strings.Contains(urlLower, domain) {
			return true
		}
	}

	for _, param := range trackingParams {
		if strings.Contains(urlLower, param) {
			return true
		}
	}

	return false
}

// undersized reports whether both declared dimensions parse and fall below
// the minimum. Absent or unparseable dimensions count as large enough.
func (c *Classifier) undersized(attrs map[string]string) bool {
	return c.dimension(attrs["width"]) < c.minDimension &&
		c.dimension(attrs["height"]) < c.minDimension
}

func (c *Classifier) dimension(raw string) int {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "px")
	if raw == "" {
		return c.minDimension // treat unknown as large enough
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return c.minDimension
	}
	return n
}
