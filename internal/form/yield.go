package form

import (
	"regexp"

	"github.com/shopspring/decimal"

	"bmr-backend/internal/bmr"
)

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

var hundred = decimal.NewFromInt(100)

// readQty reads the number in free text such as "42 Set".
func readQty(s string) (decimal.Decimal, bool) {
	digits := nonNumeric.ReplaceAllString(s, "")
	if digits == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ComputeYield returns (packed + testing) / batch as a percentage with two
// decimals. It reports false when the yield cannot be computed: the batch
// size is missing or not positive, or the packed quantity cannot be read.
// An empty testing quantity counts as zero.
func ComputeYield(batchSize, packedQty, testingQty string) (string, bool) {
	batch, ok := readQty(batchSize)
	if !ok || !batch.IsPositive() {
		return "", false
	}
	packed, ok := readQty(packedQty)
	if !ok {
		return "", false
	}
	testing := decimal.Zero
	if testingQty != "" {
		if testing, ok = readQty(testingQty); !ok {
			testing = decimal.Zero
		}
	}
	pct := packed.Add(testing).Mul(hundred).Div(batch)
	return pct.StringFixed(2) + "%", true
}

// RecomputeYield sets or clears finalPacking.actualYield on rec.
func RecomputeYield(rec *bmr.Record) {
	y, ok := ComputeYield(rec.BatchSize, rec.FinalPacking.FinalPackedQty, rec.FinalPacking.TestingQty)
	if !ok {
		y = ""
	}
	rec.FinalPacking.ActualYield = y
}
