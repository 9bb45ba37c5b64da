package controllers

import (
	"github.com/Mghendi-Pato/pointofsale-sub000/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("userrole", func(fl validator.FieldLevel) bool {
			return models.IsValidRole(fl.Field().String())
		})
		_ = v.RegisterValidation("phonestatus", func(fl validator.FieldLevel) bool {
			return models.IsValidPhoneStatus(fl.Field().String())
		})
	}
}
