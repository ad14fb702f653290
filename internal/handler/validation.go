package handler

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/es"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	es_translations "github.com/go-playground/validator/v10/translations/es"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notification-preferences/internal/apperror"
	"github.com/iliyamo/notification-preferences/internal/utils"
)

// pwbytesTag limits a password to what bcrypt can hash.
const pwbytesTag = "pwbytes"

var pwbytesMessages = map[string]string{
	"en": "{0} must be at most {1} bytes long",
	"fr": "{0} doit faire au maximum {1} octets",
	"es": "{0} debe tener como máximo {1} bytes",
}

// Validator checks request DTOs and reports field errors in the request
// locale.  Locales without a translation table get English messages.
type Validator struct {
	v   *validator.Validate
	uni *ut.UniversalTranslator
}

// NewValidator builds a validator with en, fr and es messages.  Field names
// in messages are taken from the json (or form) tag.
func NewValidator() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	if err := v.RegisterValidation(pwbytesTag, func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= utils.MaxPasswordBytes
	}); err != nil {
		return nil, err
	}

	enLoc := en.New()
	uni := ut.New(enLoc, enLoc, fr.New(), es.New())

	register := map[string]func(*validator.Validate, ut.Translator) error{
		"en": en_translations.RegisterDefaultTranslations,
		"fr": fr_translations.RegisterDefaultTranslations,
		"es": es_translations.RegisterDefaultTranslations,
	}
	for loc, fn := range register {
		trans, _ := uni.GetTranslator(loc)
		if err := fn(v, trans); err != nil {
			return nil, err
		}
		if err := registerPwbytes(v, trans, pwbytesMessages[loc]); err != nil {
			return nil, err
		}
	}
	return &Validator{v: v, uni: uni}, nil
}

// Check validates req and returns an apperror.Validation listing every
// failing field, or nil.
func (cv *Validator) Check(locale string, req any) error {
	err := cv.v.Struct(req)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperror.Validation("Invalid request")
	}

	trans := cv.translator(locale)
	details := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apperror.FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: fe.Translate(trans),
		})
	}
	return apperror.Validation("Request validation failed", details...)
}

// translator picks the table for locale, then for its language part
// ("fr-ca" -> "fr"), then English.
func (cv *Validator) translator(locale string) ut.Translator {
	lang, _, _ := strings.Cut(locale, "-")
	trans, _ := cv.uni.FindTranslator(locale, lang)
	return trans
}

func registerPwbytes(v *validator.Validate, trans ut.Translator, text string) error {
	return v.RegisterTranslation(pwbytesTag, trans,
		func(t ut.Translator) error {
			return t.Add(pwbytesTag, text, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(pwbytesTag, fe.Field(), strconv.Itoa(utils.MaxPasswordBytes))
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form", "param"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// bind decodes the request into req and validates it in the request locale.
// Undecodable bodies are reported as validation errors.
func bind(c echo.Context, cv *Validator, locale string, req any) error {
	if err := c.Bind(req); err != nil {
		return apperror.Validation("Invalid request body", apperror.FieldError{
			Field:   "body",
			Tag:     "decode",
			Message: "request body could not be decoded",
		})
	}
	return cv.Check(locale, req)
}
