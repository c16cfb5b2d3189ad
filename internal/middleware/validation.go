package middleware

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/lecturetable/internal/app/models/dto"
)

var validate = validator.New()

// ValidatedBodyKey is the context key ValidateRequest stores the body under.
const ValidatedBodyKey = "validatedBody"

// ValidateRequest binds the JSON body into a fresh value of obj's type,
// validates it and stores it in the context under ValidatedBodyKey.
func ValidateRequest(obj interface{}) gin.HandlerFunc {
	typ := reflect.TypeOf(obj)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	return func(c *gin.Context) {
		body := reflect.New(typ).Interface()

		if err := c.ShouldBindJSON(body); err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format")
			errorDetail = errorDetail.WithDetails(err.Error())
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}

		if err := validate.Struct(body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
			return
		}

		c.Set(ValidatedBodyKey, body)
		c.Next()
	}
}

// BindQuery binds query parameters into obj and validates it. On failure the
// error response is written and false is returned.
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid query parameters").WithDetails(err.Error())
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return false
	}
	if err := validate.Struct(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}
