package search

import (
	"strconv"
	"strings"
)

// FormatMask lists the labels of the set bits of mask, lowest bit first,
// separated by ", ". Bits without a label print as "bitN"; an empty mask
// prints "-".
func FormatMask(mask uint64, labels []string) string {
	if mask == 0 {
		return "-"
	}
	var b strings.Builder
	for i := 0; i < 64; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		if i < len(labels) {
			b.WriteString(labels[i])
		} else {
			b.WriteString("bit")
			b.WriteString(strconv.Itoa(i))
		}
	}
	return b.String()
}

// WeatherLabels name the bits of the weather scorer's mask.
var WeatherLabels = []string{"early2ndRain", "lateSpringRain", "earlyGreenRain", "summerRain>=5"}
