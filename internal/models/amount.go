package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a money value as delivered by the upstream ticketing API. The API
// sends numeric fields sometimes as JSON numbers and sometimes as quoted
// strings, so the raw text is kept as-is and parsed only when arithmetic is
// actually needed. That way bad master data surfaces as a parse error at
// pricing time instead of being silently read as zero.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*a = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*a = Amount(str)
		return nil
	}
	*a = Amount(s)
	return nil
}

// Float64 parses the amount. Rejects anything that is not a finite number.
func (a Amount) Float64() (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(a)), 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q is not numeric", string(a))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("amount %q is not finite", string(a))
	}
	return v, nil
}

// AmountFromFloat renders a float into the upstream wire form.
func AmountFromFloat(v float64) Amount {
	return Amount(strconv.FormatFloat(v, 'f', -1, 64))
}

// Quantity is a cart quantity as typed by a buyer. Malformed input is a
// transient UI state, not a fault, so unmarshalling never fails: anything that
// is not a whole number decodes to -1 and is excluded from totals downstream.
type Quantity int

func (q *Quantity) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	s = strings.Trim(s, `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		*q = -1
		return nil
	}
	*q = Quantity(n)
	return nil
}
