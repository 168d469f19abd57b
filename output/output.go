package output

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/use-agent/mapscout/models"
)

// Sink accepts one finished record batch per query. File sinks derive
// their filename from the query via BatchName; other sinks (storage,
// in-memory) use the query text directly.
type Sink interface {
	Write(query string, batch models.RecordBatch) error
}

// header lists the flattened record columns, one per PlaceRecord field.
var header = []string{
	"name", "address", "website", "phone_number",
	"reviews_count", "reviews_average", "latitude", "longitude",
}

// BatchName derives a deterministic file stem from the query text.
// Runs of non-alphanumeric characters collapse into single underscores,
// so "coffee  shops, berlin" and "coffee shops berlin" map to the same
// name.
func BatchName(query string) string {
	var b strings.Builder
	b.WriteString("google_maps_data_")

	pending := false
	wrote := false
	for _, r := range query {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && wrote {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			wrote = true
			pending = false
		} else {
			pending = true
		}
	}
	return b.String()
}

// row flattens one record; absent optional fields become empty cells.
func row(rec models.PlaceRecord) []string {
	return []string{
		rec.Name,
		rec.Address,
		rec.Website,
		rec.PhoneNumber,
		intCell(rec.ReviewsCount),
		floatCell(rec.ReviewsAverage, 1),
		floatCell(rec.Latitude, 6),
		floatCell(rec.Longitude, 6),
	}
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatCell(v *float64, prec int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir %s: %w", dir, err)
	}
	return nil
}
