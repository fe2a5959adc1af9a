package core

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "{0} is required"

	emailShapeTag   = "emailshape"
	emailShapeText  = "{0} is invalid"
	emailShapeRegex = regexp.MustCompile(`\S+@\S+\.\S+`)

	// intrange=MIN:MAX on a string field holding an integer
	intRangeTag  = "intrange"
	intRangeText = "{0} must be between {1}"

	requiredTag  = "required"
	requiredText = "{0} is required"
)

// NewTranslator returns the english translator used for validation messages.
func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterCustomTranslation(validate, translator, notBlankTag, notBlankText)

	_ = validate.RegisterValidation(emailShapeTag, emailShapeValidation)
	RegisterCustomTranslation(validate, translator, emailShapeTag, emailShapeText)

	_ = validate.RegisterValidation(intRangeTag, intRangeValidation)
	_ = validate.RegisterTranslation(
		intRangeTag, translator,
		func(t ut.Translator) error { return t.Add(intRangeTag, intRangeText, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(intRangeTag, fe.Field(), strings.Replace(fe.Param(), ":", "-", 1))
			return s
		},
	)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// TranslateErrors maps validation errors to {field: message}.
func TranslateErrors(errs validator.ValidationErrors, translator ut.Translator) map[string]string {
	fldErrs := make(map[string]string, len(errs))
	for _, vErr := range errs {
		fldErrs[vErr.Field()] = vErr.Translate(translator)
	}
	return fldErrs
}

// ParseIntRange parses a "MIN:MAX" param.
func ParseIntRange(param string) (min, max int, ok bool) {
	parts := strings.SplitN(param, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	var err error
	if min, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, false
	}
	if max, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, false
	}
	return min, max, true
}

// Custom Global Validators

// notBlankValidation rejects whitespace-only strings.
func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// emailShapeValidation only checks for a basic local@domain.tld shape.
func emailShapeValidation(fl validator.FieldLevel) bool {
	return IsEmailShaped(fl.Field().String())
}

// IsEmailShaped reports whether s looks like local@domain.tld.
func IsEmailShaped(s string) bool {
	return emailShapeRegex.MatchString(s)
}

// intRangeValidation checks that a string holds an integer within [MIN, MAX].
func intRangeValidation(fl validator.FieldLevel) bool {
	min, max, ok := ParseIntRange(fl.Param())
	if !ok {
		return false
	}
	n, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
	if err != nil {
		return false
	}
	return n >= min && n <= max
}
