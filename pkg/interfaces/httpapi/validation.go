package httpapi

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/vsinha/restock/pkg/domain/calendar"
)

var registerOnce sync.Once

// registerValidators adds the custom binding tags used by the request DTOs
// to gin's validator. It must run before the first request is bound.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("calendar_date", func(fl validator.FieldLevel) bool {
			_, err := calendar.Parse(fl.Field().String())
			return err == nil
		})
	})
}

// describeBindError flattens validator errors into "field: tag" pairs
func describeBindError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
