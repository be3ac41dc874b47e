package validation

import "strings"

// Digits returns s with every non-digit removed.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsCPF reports whether s is a CPF with valid check digits. The usual mask
// (111.444.777-35) is accepted; any other character makes it invalid.
// Sequences of a single repeated digit pass the checksum but are rejected.
func IsCPF(s string) bool {
	for _, r := range s {
		if !(r >= '0' && r <= '9') && r != '.' && r != '-' && r != ' ' {
			return false
		}
	}
	d := Digits(s)
	if len(d) != 11 {
		return false
	}
	if strings.Count(d, d[:1]) == 11 {
		return false
	}
	return checkDigit(d[:9], 10) == d[9] && checkDigit(d[:10], 11) == d[10]
}

func checkDigit(digits string, weight int) byte {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (weight - i)
	}
	rest := sum % 11
	if rest < 2 {
		return '0'
	}
	return byte('0' + 11 - rest)
}

// IsCEP reports whether s holds exactly 8 digits once the mask is removed.
func IsCEP(s string) bool {
	for _, r := range s {
		if !(r >= '0' && r <= '9') && r != '-' && r != '.' && r != ' ' {
			return false
		}
	}
	return len(Digits(s)) == 8
}

// FormatCPF renders 11 digits as 000.000.000-00; other input is returned as is.
func FormatCPF(s string) string {
	d := Digits(s)
	if len(d) != 11 {
		return s
	}
	return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
}
