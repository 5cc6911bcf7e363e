package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	goens "github.com/wealdtech/go-ens/v3"
)

const (
	// TagEnsName validates a normalisable name under .eth
	TagEnsName = "ensname"

	ethSuffix = ".eth"
)

// IsEnsName reports whether name is a normalisable .eth name with a non-empty label
func IsEnsName(name string) bool {
	normalised, err := goens.NormaliseDomain(name)
	if err != nil {
		return false
	}
	if !strings.HasSuffix(normalised, ethSuffix) || len(normalised) == len(ethSuffix) {
		return false
	}
	for _, label := range strings.Split(normalised, ".") {
		if label == "" {
			return false
		}
	}
	return true
}

func NewCustomValidator(v *validator.Validate) echo.Validator {
	_ = v.RegisterValidation(TagEnsName, func(fl validator.FieldLevel) bool {
		return IsEnsName(fl.Field().String())
	})
	return &CustomValidator{v}
}

type CustomValidator struct {
	validator *validator.Validate
}

func (v *CustomValidator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return err
	}
	return nil
}
