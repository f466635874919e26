package scheme

// shortnameAlphabetSize is the number of symbols available for derived
// scheme shortnames: the 54 consecutive code points starting at 'A'
// ('A'..'Z', some punctuation, 'a'..'v').
const shortnameAlphabetSize = 54

// DeriveShortname maps a scheme name to a single-character shortname.
// The formula is fixed so that every implementation agrees on the result:
// sum the Unicode code points of the name, subtract 'A' (65), reduce
// modulo 54 (non-negative), and add 'A' back. The function is pure and
// independent of any iteration order or platform byte representation.
func DeriveShortname(name string) rune {
	sum := int64(0)
	for _, r := range name {
		sum += int64(r)
	}
	s := (sum - 'A') % shortnameAlphabetSize
	if s < 0 {
		s += shortnameAlphabetSize
	}
	return rune(s + 'A')
}
