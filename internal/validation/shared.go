package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(msgs, "; ")
}

// checkDate validates a YYYY-MM-DD date string into the errors map.
func checkDate(errors map[string]string, field, value string, required bool) {
	if strings.TrimSpace(value) == "" {
		if required {
			errors[field] = field + " is required"
		}
		return
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		errors[field] = err.Error()
	}
}

// checkDecimal validates an optional decimal string into the errors map.
func checkDecimal(errors map[string]string, field, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if _, err := decimal.NewFromString(value); err != nil {
		errors[field] = fmt.Sprintf("invalid decimal: %s", value)
	}
}
