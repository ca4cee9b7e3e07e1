// Package labels decides which elements display a text label.
//
// Large graphs become unreadable when every element is labeled, so only a
// configurable fraction (the density) is shown. The choice is a deterministic
// function of the element ID: a 32-bit polynomial rolling hash folded into
// [0, 1). The same ID always yields the same decision for a given density,
// across redraws and across reloads of the same dataset, so labels never
// flicker.
package labels

// Show reports whether the element with the given ID should be labeled at
// the given density. Density 1 (or more) labels everything, 0 (or less)
// labels nothing.
func Show(id string, density float64) bool {
	if density >= 1 {
		return true
	}
	if density <= 0 {
		return false
	}
	return Bucket(id) < density
}

// Bucket folds the ID's hash into one of 100 buckets in [0, 1).
func Bucket(id string) float64 {
	h := int64(Hash(id))
	if h < 0 {
		h = -h
	}
	return float64(h%100) / 100
}

// Hash is the 32-bit polynomial rolling hash h = h*31 + c over the ID's
// UTF-16 code units, wrapping on overflow. It matches the hash browsers
// compute for the same string, so server and client agree on label choice.
func Hash(id string) int32 {
	var h int32
	for _, r := range id {
		if r >= 0x10000 {
			hi, lo := surrogates(r)
			h = h*31 + int32(hi)
			h = h*31 + int32(lo)
			continue
		}
		h = h*31 + int32(r)
	}
	return h
}

func surrogates(r rune) (hi, lo uint16) {
	r -= 0x10000
	return uint16(0xD800 + (r>>10)&0x3FF), uint16(0xDC00 + r&0x3FF)
}
