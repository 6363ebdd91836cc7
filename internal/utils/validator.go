package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidationErrorDetail describes one rejected request field.
type ValidationErrorDetail struct {
	Field    string      `json:"field"`
	Message  string      `json:"message"`
	Expected string      `json:"expected"`
	Received interface{} `json:"received"`
}

type ValidationErrorData struct {
	Errors        []ValidationErrorDetail `json:"errors"`
	Documentation string                  `json:"documentation"`
}

const DocumentationLink = "https://localhost:8080/docs/plugins"

// BindAndValidate binds the JSON body into obj. On failure it writes a 400
// envelope listing every rejected field and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	c.JSON(http.StatusBadRequest, Response{
		Status:  http.StatusBadRequest,
		Message: "Invalid request parameters",
		Data: ValidationErrorData{
			Errors:        DescribeBindError(err),
			Documentation: DocumentationLink,
		},
	})
	return false
}

// DescribeBindError turns a binding error into per-field details.
func DescribeBindError(err error) []ValidationErrorDetail {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make([]ValidationErrorDetail, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, describeFieldError(fe))
		}
		return details
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []ValidationErrorDetail{{
			Field:    typeErr.Field,
			Message:  fmt.Sprintf("Field '%s' has invalid type", typeErr.Field),
			Expected: typeErr.Type.String(),
			Received: typeErr.Value,
		}}
	}

	return []ValidationErrorDetail{{
		Field:    "body",
		Message:  "Malformed JSON or invalid request body",
		Expected: "valid JSON",
		Received: "invalid",
	}}
}

func describeFieldError(fe validator.FieldError) ValidationErrorDetail {
	detail := ValidationErrorDetail{
		Field:    fe.Field(),
		Message:  fmt.Sprintf("Field '%s' failed on the '%s' rule", fe.Field(), fe.Tag()),
		Expected: fe.Tag(),
		Received: fe.Value(),
	}

	switch fe.Tag() {
	case "required":
		detail.Message = fmt.Sprintf("Field '%s' is required", fe.Field())
		detail.Expected = "not null"
	case "oneof":
		detail.Message = fmt.Sprintf("Field '%s' must be one of [%s]", fe.Field(), fe.Param())
		detail.Expected = fe.Param()
	case "max":
		detail.Message = fmt.Sprintf("Field '%s' must be at most %s long", fe.Field(), fe.Param())
		detail.Expected = "max " + fe.Param()
	default:
		if fe.Param() != "" {
			detail.Expected = fe.Tag() + "=" + fe.Param()
		}
	}
	return detail
}
