package cart

// ForestDaysYear1 are the days-played values of year one on which the cart
// stands in the forest (every Friday and Sunday).
var ForestDaysYear1 = [...]int{
	5, 7, 19, 21, 26, 28, 33, 35, 40, 42, 47, 49, 54, 56, 61,
	63, 68, 70, 75, 77, 82, 84, 89, 91, 96, 98, 103, 105, 110, 112,
}

// DayCountUpTo is the number of leading cart days on or before cutoff.
func DayCountUpTo(cutoff int) int {
	n := 0
	for n < len(ForestDaysYear1) && ForestDaysYear1[n] <= cutoff {
		n++
	}
	return n
}
