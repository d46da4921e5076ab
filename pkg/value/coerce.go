package value

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the only accepted textual form for date and timestamp
// filter input: YYYY-MM-DD.
const DateFormat = "2006-01-02"

// InvalidValueError is returned when raw filter input cannot be
// coerced to the declared column type. The caller should re-prompt or
// reject, never default the value.
type InvalidValueError struct {
	Raw          string
	DeclaredType string
	Reason       string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q for type %s: %s", e.Raw, e.DeclaredType, e.Reason)
}

// Coerce converts raw textual input into a typed value according to
// the declared column type:
//   - numeric types parse as int64, or float64 when a decimal point is
//     present.
//   - date and timestamp types require the canonical YYYY-MM-DD form
//     and are validated by actually parsing the date, so
//     calendar-invalid input like 2024-02-30 is rejected.
//   - everything else is opaque text, returned verbatim.
func Coerce(raw string, declaredType string) (any, error) {
	switch TypeKind(declaredType) {
	case KindNumeric:
		if strings.Contains(raw, ".") {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, &InvalidValueError{Raw: raw, DeclaredType: declaredType, Reason: "not a valid number"}
			}
			return f, nil
		}
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, &InvalidValueError{Raw: raw, DeclaredType: declaredType, Reason: "not a valid number"}
		}
		return i, nil
	case KindDate, KindTimestamp:
		if len(raw) != 10 || raw[4] != '-' || raw[7] != '-' {
			return nil, &InvalidValueError{Raw: raw, DeclaredType: declaredType, Reason: "date must be in YYYY-MM-DD format"}
		}
		if _, err := time.Parse(DateFormat, raw); err != nil {
			return nil, &InvalidValueError{Raw: raw, DeclaredType: declaredType, Reason: "not a valid calendar date"}
		}
		// Keep the canonical string: it is bound through the dialect's
		// date-construction function, not as a native date.
		return raw, nil
	default:
		return raw, nil
	}
}
