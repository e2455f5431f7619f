// Package identity canonicalizes phone strings to digit-only identity keys.
//
// The key is the sole matching rule for listing ownership: two phone strings
// are the same identity iff their digit-only projections are equal. Leading
// country-code digits are NOT stripped, so "+1 9873312399" and "9873312399"
// are different identities.
package identity

// MinPlausibleDigits is the minimum digit count for a phone to be accepted
// by the show/update/add flows.
const MinPlausibleDigits = 6

// Normalize strips every non-digit character. Empty input yields "".
func Normalize(phone string) string {
	out := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		c := phone[i]
		if c >= '0' && c <= '9' {
			out = append(out, c)
		}
	}
	return string(out)
}

// IsPlausible reports whether the phone normalizes to at least
// MinPlausibleDigits digits.
func IsPlausible(phone string) bool {
	return len(Normalize(phone)) >= MinPlausibleDigits
}
