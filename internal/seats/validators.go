package seats

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the `timeslot` binding tag to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("timeslot", func(fl validator.FieldLevel) bool {
				_, err := ParseTimeSlot(fl.Field().String())
				return err == nil
			})
		}
	})
}
