package dsp

// Monstercat spreads every bar into its neighbours with a falloff of factor
// per bar, keeping the larger value:
//
//	bins[i] = max over j of bins[j] / factor^|i-j|
//
// factor must be > 1. Two sweeps give the same result as comparing every
// pair.
//
// https://github.com/karlstav/cava/blob/master/cava.c#L157
func Monstercat(bins []float64, factor float64) {
	if len(bins) < 2 || factor <= 1 {
		return
	}

	carry := bins[0]
	for i := 1; i < len(bins); i++ {
		if carry /= factor; carry > bins[i] {
			bins[i] = carry
		} else {
			carry = bins[i]
		}
	}

	carry = bins[len(bins)-1]
	for i := len(bins) - 2; i >= 0; i-- {
		if carry /= factor; carry > bins[i] {
			bins[i] = carry
		} else {
			carry = bins[i]
		}
	}
}
