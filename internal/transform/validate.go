package transform

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"ultramdmemo/internal/apperr"
)

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validateNotBlank); err != nil {
		panic(err)
	}
	return v
}

func validateNotBlank(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return strings.TrimSpace(s) != ""
}

// validateRequest maps validator failures onto apperr codes. An oversized
// text wins over every other failure.
func validateRequest(req Request) error {
	err := requestValidator.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.NewInvalidRequest(err.Error())
	}

	var first error
	for _, fe := range verrs {
		switch {
		case fe.Field() == "Text" && fe.Tag() == "max":
			return apperr.NewInputTooLarge(MaxInputChars, utf8.RuneCountInString(req.Text))
		case fe.Field() == "Text" && fe.Tag() == "notblank":
			first = firstErr(first, apperr.NewInvalidRequest("input text is empty"))
		default:
			first = firstErr(first, apperr.NewInvalidRequest(
				fmt.Sprintf("invalid %s %q", strings.ToLower(fe.Field()), fmt.Sprint(fe.Value())),
			))
		}
	}
	return first
}

func firstErr(cur, next error) error {
	if cur != nil {
		return cur
	}
	return next
}

var requiredMarkers = []string{"# ", "## サマリー", "## 要点", "## 詳細", "## 不明点"}

// checkSections returns one warning per required marker missing from
// markdown. Never fatal.
func checkSections(markdown string) []string {
	warnings := make([]string, 0)
	for _, marker := range requiredMarkers {
		if !strings.Contains(markdown, marker) {
			warnings = append(warnings, "必須セクションが見つかりません: "+strings.TrimLeft(marker, "# "))
		}
	}
	return warnings
}
