package scraper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/use-agent/mapscout/models"
)

// ExtractFields reads the best-effort field values for one place from
// its detail view.
//
// Name, address, website and phone degrade independently to "" when the
// underlying region is missing; they never fail. The review count and
// average are absent (nil) when their regions do not exist; when the
// regions exist but their content does not parse, the whole record is a
// per-record failure and the collector drops it.
func ExtractFields(entry Entry, view DetailView) (models.PlaceRecord, error) {
	rec := models.PlaceRecord{
		Name:        entry.Label(),
		Address:     view.Text(selAddress),
		Website:     view.Text(selWebsite),
		PhoneNumber: view.Text(selPhone),
	}

	if view.Has(selReviewCount) {
		count, err := parseReviewCount(view.Text(selReviewCount))
		if err != nil {
			return rec, err
		}
		rec.ReviewsCount = &count
	}

	if view.Has(selRating) {
		label, _ := view.Attr(selRating, "aria-label")
		avg, err := parseRating(label)
		if err != nil {
			return rec, err
		}
		rec.ReviewsAverage = &avg
	}

	return rec, nil
}

// parseReviewCount parses texts like "1,234 reviews": leading token,
// thousands separators stripped.
func parseReviewCount(text string) (int, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, models.NewScrapeError(models.ErrCodeParse, "empty review count text", nil)
	}
	n, err := strconv.Atoi(strings.ReplaceAll(fields[0], ",", ""))
	if err != nil {
		return 0, models.NewScrapeError(models.ErrCodeParse,
			fmt.Sprintf("review count %q is not a number", fields[0]), err)
	}
	return n, nil
}

// parseRating parses accessible labels like "4,5 stars": leading token
// with the locale decimal comma normalised to a period.
func parseRating(label string) (float64, error) {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return 0, models.NewScrapeError(models.ErrCodeParse, "empty rating label", nil)
	}
	avg, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", "."), 64)
	if err != nil {
		return 0, models.NewScrapeError(models.ErrCodeParse,
			fmt.Sprintf("rating %q is not a number", fields[0]), err)
	}
	return avg, nil
}
