package vault

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"promptvault/internal/domain/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// normalizeText trims s and turns blank values into nil.
func normalizeText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// optionalLength limits the length of a present models.OptionalString.
func optionalLength(max int) validation.RuleFunc {
	return func(value any) error {
		opt, ok := value.(models.OptionalString)
		if !ok || !opt.Present || opt.Value == nil {
			return nil
		}
		if utf8.RuneCountInString(*opt.Value) > max {
			return fmt.Errorf("the length must be no more than %d", max)
		}
		return nil
	}
}
