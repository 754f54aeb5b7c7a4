package review

import (
	"math"
	"strconv"
	"strings"
)

// publishedPrefix precedes the "<date>, <time>" portion of the published
// field as rendered on the page.
const publishedPrefix = "Published on "

// widthCutset is the set of characters trimmed from both ends of a
// rating-bar width string such as "width:80%;".
const widthCutset = "width:; %"

// StarsFromWidth converts a CSS-width rating bar string into a star count
// in [0,5]. The percentage is scaled to five stars and rounded half to
// even, matching the data already collected by earlier runs. Anything
// that does not parse as a number yields 0.
func StarsFromWidth(raw string) int {
	trimmed := strings.Trim(raw, widthCutset)
	pct, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0
	}
	stars := int(math.RoundToEven(pct / 100 * 5))
	if stars < 0 {
		return 0
	}
	if stars > 5 {
		return 5
	}
	return stars
}

// SplitPublished splits a raw "Published on <date>, <time>" string into
// its date and time parts, cutting on the first ", ". Input without the
// separator yields the sentinel pair.
func SplitPublished(raw string) (date, tm string) {
	clean := strings.TrimPrefix(raw, publishedPrefix)
	date, tm, ok := strings.Cut(clean, ", ")
	if !ok {
		return NoDate, NoTime
	}
	return date, tm
}

// CleanCompany strips the site's leading "na " marker from a company
// name. The check is deliberately for the lowercase literal only; the
// page renders the marker lowercase and the historical data was cleaned
// exactly this way.
func CleanCompany(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "na ") {
		return trimmed[len("na "):]
	}
	return trimmed
}
