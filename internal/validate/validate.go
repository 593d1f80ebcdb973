// Package validate wraps go-playground/validator to produce the
// field-keyed error maps the API returns under "validationErrors".
// Field names come from json tags, and every violated field is reported
// together rather than stopping at the first failure.
package validate

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var v = newValidator()

func newValidator() *validator.Validate {
	vd := validator.New()

	// Report client-facing json field names instead of Go struct fields.
	vd.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(vd, "password", strongPassword)
	mustRegister(vd, "objectid", objectID)
	return vd
}

func mustRegister(vd *validator.Validate, tag string, fn validator.Func) {
	if err := vd.RegisterValidation(tag, fn); err != nil {
		panic("validate: register rule " + tag + ": " + err.Error())
	}
}

// strongPassword requires at least one letter, one digit and one of the
// accepted special characters, with nothing outside those classes.
func strongPassword(fl validator.FieldLevel) bool {
	var hasLetter, hasDigit, hasSpecial bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune("!@#$%^&*", r):
			hasSpecial = true
		default:
			return false
		}
	}
	return hasLetter && hasDigit && hasSpecial
}

// objectID accepts 24-char hex document ids.
func objectID(fl validator.FieldLevel) bool {
	_, err := primitive.ObjectIDFromHex(fl.Field().String())
	return err == nil
}

// Struct validates a request DTO and returns a field -> message map, or
// nil when the value is valid.
func Struct(s any) map[string]string {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"body": "Incomplete fields. Please provide requested details."}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe.Field(), fe.Tag())
		}
	}
	return out
}

// message maps a violated field/rule pair to the messages the API has
// always used.
func message(field, tag string) string {
	switch field {
	case "username":
		switch tag {
		case "required":
			return "Name is required!"
		case "min":
			return "Name is too short!"
		case "max":
			return "Name is too long!"
		}
	case "email":
		switch tag {
		case "required":
			return "Email is required"
		case "email":
			return "Invalid email!"
		}
	case "password":
		switch tag {
		case "required":
			return "Password is required"
		case "min":
			return "Password is too short!"
		case "password":
			return "Password is weak!"
		}
	case "token":
		return "Token is required!"
	case "userId":
		return "Invalid userId!"
	}
	return "Invalid " + field + "!"
}
