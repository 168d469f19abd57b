package scraper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/use-agent/mapscout/models"
)

// coordMarker precedes the "<lat>,<lng>,<zoom>" segment in a place
// detail URL, e.g. ".../maps/place/Foo/@12.34,-56.78,15z/...".
const coordMarker = "/@"

// ParseCoordinates extracts the latitude/longitude pair encoded in a
// place-detail URL. Failures are typed parse errors; callers treat them
// as per-record failures, never fatal to the batch.
func ParseCoordinates(rawURL string) (lat, lng float64, err error) {
	_, rest, found := strings.Cut(rawURL, coordMarker)
	if !found {
		return 0, 0, models.NewScrapeError(models.ErrCodeParse,
			fmt.Sprintf("no %q coordinate marker in URL", coordMarker), nil)
	}

	segment, _, _ := strings.Cut(rest, "/")
	parts := strings.Split(segment, ",")
	if len(parts) < 2 {
		return 0, 0, models.NewScrapeError(models.ErrCodeParse,
			fmt.Sprintf("coordinate segment %q has fewer than two components", segment), nil)
	}

	lat, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, models.NewScrapeError(models.ErrCodeParse, "invalid latitude", err)
	}
	lng, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, models.NewScrapeError(models.ErrCodeParse, "invalid longitude", err)
	}
	return lat, lng, nil
}
