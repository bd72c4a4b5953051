// Package validation builds the shared validator with English messages and
// JSON (or query form) field names, plus the custom tags used by the enquiry forms.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	pincodeTag   = "pincode"
	pincodeText  = "{0} must be a 6 digit pincode"
	pincodeRegex = regexp.MustCompile(`^[0-9]{6}$`)

	mobileTag   = "mobile"
	mobileText  = "{0} must be a 10 digit mobile number"
	mobileRegex = regexp.MustCompile(`^[0-9]{10}$`)

	simpleEmailTag   = "simple_email"
	simpleEmailText  = "{0} must be a valid email address"
	simpleEmailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	requiredText = "{0} is required"
)

// Validator pairs a validator instance with its translator.
type Validator struct {
	*validator.Validate
	translator ut.Translator
}

// New returns a validator with English translations and custom tags registered.
func New() *Validator {
	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(pincodeTag, regexValidation(pincodeRegex))
	_ = validate.RegisterValidation(mobileTag, regexValidation(mobileRegex))
	_ = validate.RegisterValidation(simpleEmailTag, regexValidation(simpleEmailRegex))

	registerTranslation(validate, translator, pincodeTag, pincodeText, false)
	registerTranslation(validate, translator, mobileTag, mobileText, false)
	registerTranslation(validate, translator, simpleEmailTag, simpleEmailText, false)
	registerTranslation(validate, translator, "required", requiredText, true)

	return &Validator{Validate: validate, translator: translator}
}

// IsPincode reports whether value is a 6 digit pincode.
func IsPincode(value string) bool {
	return pincodeRegex.MatchString(value)
}

// IsEmail applies the simple email pattern used by the enquiry form.
func IsEmail(value string) bool {
	return simpleEmailRegex.MatchString(value)
}

// IsMobile reports whether value is a 10 digit mobile number.
func IsMobile(value string) bool {
	return mobileRegex.MatchString(value)
}

// FieldErrors converts a validation error into per-field messages keyed by
// JSON field name. Non-validation errors yield nil.
func (v *Validator) FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Translate(v.translator)
	}
	return fields
}

func regexValidation(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func registerTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override bool) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}
