package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const DefaultMaxImageBytes = 5 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return v
}

// validateStruct runs tag validation and folds the result into a ValidationError.
func validateStruct(req any) *ValidationError {
	verr := &ValidationError{}

	err := validate.Struct(req)
	if err == nil {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add("request", err.Error())
		return verr
	}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fieldMessage(fe))
	}
	return verr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}

// validateImage checks an optional upload and returns the file extension to store it with.
func validateImage(img *ImageUpload, maxBytes int64, verr *ValidationError) string {
	if img == nil {
		return ""
	}
	if len(img.Data) == 0 {
		verr.Add("image", "is empty")
		return ""
	}
	if int64(len(img.Data)) > maxBytes {
		verr.Add("image", fmt.Sprintf("must be at most %d bytes", maxBytes))
		return ""
	}

	mime := mimetype.Detect(img.Data)
	if !strings.HasPrefix(mime.String(), "image/") {
		verr.Add("image", "must be an image")
		return ""
	}
	return mime.Extension()
}
