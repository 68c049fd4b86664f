package validator

import (
	"errors"
	"fmt"
	"locmaroc/pkg/logger"
	"locmaroc/pkg/model"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details flattens the errors into the error envelope details.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// ValidateRequest checks the creation body and returns the parsed range.
func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) (time.Time, time.Time, error) {
	if err := v.validateStruct(req); err != nil {
		return time.Time{}, time.Time{}, err
	}

	start, err := model.ParseDate(req.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, ValidationErrors{{Field: "start_date", Message: err.Error()}}
	}
	end, err := model.ParseDate(req.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, ValidationErrors{{Field: "end_date", Message: err.Error()}}
	}

	if err := ValidateRange(start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func (v *BookingValidator) ValidateTransition(req *model.TransitionRequest) error {
	return v.validateStruct(req)
}

func (v *BookingValidator) ValidateMessage(req *model.MessageRequest) error {
	req.Message = strings.TrimSpace(req.Message)
	return v.validateStruct(req)
}

// ValidateRange requires end to be strictly after start.
func ValidateRange(start, end time.Time) error {
	if !end.After(start) {
		return ValidationErrors{{Field: "end_date", Message: "end_date must be after start_date"}}
	}
	return nil
}

func (v *BookingValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
