package scraper

// CSS selectors for the Google Maps layout this scraper targets.
// These track the live site and are the first thing to check when
// extraction starts coming back empty.
const (
	selSearchInput = "#searchboxinput"
	selPlaceLink   = `a[href*="https://www.google.com/maps/place"]`

	selAddress = `button[data-item-id="address"] div[class*="fontBodyMedium"]`
	selWebsite = `a[data-item-id="authority"] div[class*="fontBodyMedium"]`
	selPhone   = `button[data-item-id^="phone:tel:"] div[class*="fontBodyMedium"]`

	selReviewCount = `button[jsaction="pane.reviewChart.moreReviews"] span`
	selRating      = `div[jsaction="pane.reviewChart.moreReviews"] div[role="img"]`
)
