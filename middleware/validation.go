package middleware

import (
	"fmt"

	"github.com/EltunLTN/autoparts-api/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom binding tags used by request structs.
//
//	condition: NEW or USED, empty allowed
//	orderstatus: one of the order status names, any case
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || models.Condition(s).Valid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("orderstatus", func(fl validator.FieldLevel) bool {
		_, err := models.ParseOrderStatus(fl.Field().String())
		return err == nil
	})
}
