package review

import "github.com/shopspring/decimal"

// Summary aggregates the ratings of one place
type Summary struct {
	PlaceID   string
	Count     int64
	RatingSum int64
}

// AverageRating returns the mean rating rounded half-up to one decimal place,
// or zero when the place has no reviews.
func (s Summary) AverageRating() decimal.Decimal {
	if s.Count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(s.RatingSum).
		DivRound(decimal.NewFromInt(s.Count), 4).
		Round(1)
}
