package server

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// registerValidators installs the custom binding rules on gin's validator.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"form", "json"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return field.Name
		})
		_ = v.RegisterValidation("period_month", func(fl validator.FieldLevel) bool {
			month := fl.Field().Int()
			return month >= 1 && month <= 12
		})
	})
}

// periodQuery is the year/month pair accepted by summary endpoints.
type periodQuery struct {
	Year  int `form:"year" binding:"required,gte=1900,lte=9999"`
	Month int `form:"month" binding:"required,period_month"`
}

func bindQuery(c *gin.Context, dst any) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return bindingError(err)
	}
	return nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return bindingError(err)
	}
	return nil
}

func bindingError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return invalidRequestError()
	}

	out := &ValidationErrors{}
	for _, fe := range fieldErrs {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fe.Field(),
			Code:    "invalid_" + fe.Field(),
			Message: validationTagMessage(fe.Tag()),
		})
	}
	return out
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "period_month":
		return "must be between 1 and 12"
	case "gte", "lte":
		return "is out of range"
	default:
		return "invalid value"
	}
}
