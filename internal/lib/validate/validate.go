// Package validate builds the request validator shared by HTTP handlers.
package validate

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator"
)

var phoneRe = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// New returns a validator that reports fields by their JSON names and knows
// the "phone" tag.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	return v
}
