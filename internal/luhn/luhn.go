// Package luhn implements the Luhn (mod 10) checksum used by payment card
// numbers and other numeric identifiers.
//
// The functions are pure and safe for concurrent use.
package luhn

// Digits returns the decimal digits of s in order as values 0-9.
// Every other character (spaces, dashes, letters) is ignored.
func Digits(s string) []int {
	out := make([]int, 0, len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			out = append(out, int(c-'0'))
		}
	}
	return out
}

// Valid reports whether the digits of s pass the Luhn check.
// Non-digit characters are ignored. Fewer than two digits is never valid.
//
// Starting from the rightmost digit, every second digit is doubled and 9 is
// subtracted when the result exceeds 9; the number is valid when the sum of
// all values is a multiple of 10. A run of zeros is valid.
func Valid(s string) bool {
	digits := Digits(s)
	if len(digits) < 2 {
		return false
	}

	sum := 0
	for i := range digits {
		d := digits[len(digits)-1-i]
		if i%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum%10 == 0
}

// AllZero reports whether s contains at least one digit and every digit is 0.
// Such sequences pass Valid but are rarely real card numbers.
func AllZero(s string) bool {
	digits := Digits(s)
	if len(digits) == 0 {
		return false
	}
	for _, d := range digits {
		if d != 0 {
			return false
		}
	}
	return true
}
