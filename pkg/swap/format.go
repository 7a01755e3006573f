package swap

import (
	"fmt"
	"math/big"
	"strings"
)

// FormatUnits converts a base-unit integer string into a human-readable
// decimal string under the given decimal count. The conversion is exact:
// ParseUnits(FormatUnits(x, d), d) == x for every valid x.
func FormatUnits(raw string, decimals int) (string, error) {
	raw = strings.TrimSpace(raw)
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return "", fmt.Errorf("invalid base-unit amount %q", raw)
	}
	if decimals < 0 {
		return "", fmt.Errorf("invalid decimals %d", decimals)
	}

	neg := v.Sign() < 0
	abs := new(big.Int).Abs(v)

	digits := abs.String()
	if decimals == 0 {
		if neg {
			return "-" + digits, nil
		}
		return digits, nil
	}

	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}
	split := len(digits) - decimals
	whole, frac := digits[:split], digits[split:]
	frac = strings.TrimRight(frac, "0")

	out := whole
	if frac != "" {
		out = whole + "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out, nil
}

// ParseUnits converts a human-readable decimal string into a base-unit
// integer string. It fails if the value has more fractional digits than the
// token allows; amounts are never rounded mid-pipeline.
func ParseUnits(s string, decimals int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty amount")
	}
	if decimals < 0 {
		return "", fmt.Errorf("invalid decimals %d", decimals)
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	whole, frac := s, ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		whole, frac = s[:idx], s[idx+1:]
	}
	if whole == "" && frac == "" {
		return "", fmt.Errorf("invalid amount %q", s)
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > decimals {
		return "", fmt.Errorf("amount %q has more than %d decimal places", s, decimals)
	}
	frac += strings.Repeat("0", decimals-len(frac))

	v, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return "", fmt.Errorf("invalid amount %q", s)
	}
	if neg {
		v.Neg(v)
	}
	return v.String(), nil
}

// ValidBaseUnits reports whether s is a positive base-unit integer string.
func ValidBaseUnits(s string) bool {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	return ok && v.Sign() > 0
}
