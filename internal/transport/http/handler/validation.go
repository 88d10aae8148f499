package handler

import (
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
	moroccanPhone = regexp.MustCompile(`^(?:\+212|0)([5-7]\d{8})$`)
	cinNumber     = regexp.MustCompile(`^[A-Z]{2,3}\d{5,6}$`)

	registerOnce sync.Once
)

// registerValidators installs the custom rules on gin's validator and makes
// field errors report JSON names.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic("gin binding engine is not go-playground/validator")
		}

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})

		must(v.RegisterValidation("phone_ma", func(fl validator.FieldLevel) bool {
			return moroccanPhone.MatchString(fl.Field().String())
		}))
		must(v.RegisterValidation("cin", func(fl validator.FieldLevel) bool {
			return cinNumber.MatchString(fl.Field().String())
		}))
	})
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

type fieldError struct {
	Field       string   `json:"field"`
	Constraints []string `json:"constraints"`
}

// bindJSON decodes the body into req and writes a 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		respondError(c, http.StatusBadRequest, errInvalidBody)
		return false
	}

	var fields []fieldError
	index := map[string]int{}
	for _, fe := range verrs {
		i, seen := index[fe.Field()]
		if !seen {
			i = len(fields)
			index[fe.Field()] = i
			fields = append(fields, fieldError{Field: fe.Field()})
		}
		fields[i].Constraints = append(fields[i].Constraints, constraintMessage(fe))
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"statusCode": http.StatusBadRequest,
		"message":    errValidationFailed,
		"errors":     fields,
	})
	return false
}

func constraintMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " should not be empty"
	case "email":
		return field + " must be an email"
	case "min":
		return fmt.Sprintf("%s must be longer than or equal to %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be shorter than or equal to %s characters", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters long", field, fe.Param())
	case "numeric":
		return field + " must contain only numbers"
	case "uuid":
		return field + " must be a valid id"
	case "phone_ma":
		return "Invalid phone number format"
	case "cin":
		return "Invalid CIN number format"
	case "eqfield":
		return "Password and confirm password do not match"
	default:
		return fmt.Sprintf("%s failed on %s", field, fe.Tag())
	}
}
