package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
)

// Init configures the global validator used by Gin's binding.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		register(v)
	}
}

// New returns a standalone validator with the same rules as Init.
func New() *validator.Validate {
	v := validator.New()
	register(v)
	return v
}

func register(v *validator.Validate) {
	// Use JSON tag names in errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return entity.IsCategory(fl.Field().String())
	})
	v.RegisterAlias("pwd", "min=6")      // password minimum length
	v.RegisterAlias("fullname", "min=3") // contributor display name
	v.RegisterAlias("about", "min=3")
	v.RegisterAlias("tokenstr", "min=5") // emailed tokens
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fieldName(fe)] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

// fieldName keeps the index for dive errors, e.g. tags[1].
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "required_if":
		return "is required if " + param
	case "required_without":
		return "is required when " + param + " is not present"
	case "email":
		return "must be a valid email"
	case "url", "http_url":
		return "must be a valid URL"
	case "alphanum":
		return "must contain alphanumeric characters only"
	case "uuid":
		return "must be a valid UUID"
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", param)
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + param + " item(s)"
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		if fe.Kind() == reflect.Slice {
			return "must contain at most " + param + " item(s)"
		}
		return "must be at most " + param + " characters long"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "unique":
		return "must contain unique items"
	case "category":
		return "must be one of: " + strings.Join(entity.Categories, ", ")
	case "pwd":
		return "must be at least 6 characters long"
	case "fullname", "about":
		return "must be at least 3 characters long"
	case "tokenstr":
		return "must be at least 5 characters long"
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
