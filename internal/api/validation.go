package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	registerOnce    sync.Once
)

// RegisterValidators installs the custom binding validators on gin's engine
// and reports fields by their json name.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			name := fl.Field().String()
			return usernamePattern.MatchString(name) && !strings.EqualFold(name, "me")
		})
	})
}

// fieldError is the JSON body of a rejected request field
type fieldError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// respondBindError turns a ShouldBindJSON failure into a 400 naming the field
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := topLevelField(fe.Namespace())
		c.JSON(http.StatusBadRequest, fieldError{Error: validationMessage(fe), Field: field})
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := strings.SplitN(typeErr.Field, ".", 2)[0]
		c.JSON(http.StatusBadRequest, fieldError{Error: fmt.Sprintf("%s has an invalid type", field), Field: field})
		return
	}

	c.JSON(http.StatusBadRequest, fieldError{Error: "invalid request body"})
}

// topLevelField maps "RecipeRequest.ingredients[0].id" to "ingredients"
func topLevelField(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	field := parts[0]
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	return field
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must have at most %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must have length %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex colour like #E26C2D", field)
	case "slug":
		return fmt.Sprintf("%s may contain only letters, numbers, hyphens and underscores", field)
	case "username":
		return fmt.Sprintf("%s may contain only letters, numbers and @/./+/-/_", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
