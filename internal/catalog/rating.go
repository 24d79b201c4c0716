package catalog

import "math"

// hash folds a string into a signed 32-bit value, matching the classic
// Java-style s[0]*31^(n-1) + ... accumulation so ratings stay stable for a
// given product id across releases.
func hash(s string) int32 {
	var h int32
	for _, r := range s {
		h = int32(r) + ((h << 5) - h)
	}
	return h
}

// Rating derives a deterministic display rating in [3.5, 4.9] from the
// product identifier. Ratings are synthesized, not user-submitted; the same
// id always yields the same value.
func Rating(id string) float64 {
	normalized := math.Abs(float64(hash(id)%15))/10 + 3.5
	return math.Round(normalized*10) / 10
}

// ReviewCount derives a deterministic review count from the product title.
func ReviewCount(title string) int {
	return int(Rating(title)*10) + 5
}
