package api

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"filmorate/internal/domain"

	"github.com/go-playground/validator/v10"
)

// EarliestReleaseDate дата первого киносеанса, раньше нее фильм выйти не мог
var EarliestReleaseDate = time.Date(1895, time.December, 28, 0, 0, 0, 0, time.UTC)

// NewValidator создает валидатор с тегами предметной области:
// notblank, nospaces, notfuture, releasedate.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	custom := map[string]validator.Func{
		"notblank": func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		},
		"nospaces": func(fl validator.FieldLevel) bool {
			return strings.IndexFunc(fl.Field().String(), unicode.IsSpace) < 0
		},
		"notfuture": func(fl validator.FieldLevel) bool {
			d, err := time.Parse(domain.DateLayout, fl.Field().String())
			return err == nil && !d.After(time.Now().UTC())
		},
		"releasedate": func(fl validator.FieldLevel) bool {
			d, err := time.Parse(domain.DateLayout, fl.Field().String())
			return err == nil && !d.Before(EarliestReleaseDate)
		},
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register validation %q: %v", tag, err))
		}
	}
	return v
}
