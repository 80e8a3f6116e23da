package messages

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"slackbridge/internal/apperr"
)

type sendRequest struct {
	Channel     string          `json:"channel" validate:"required"`
	Text        string          `json:"text" validate:"required"`
	Blocks      json.RawMessage `json:"blocks,omitempty"`
	Attachments json.RawMessage `json:"attachments,omitempty"`
	ThreadTS    string          `json:"threadTs,omitempty"`
}

type scheduleRequest struct {
	Channel      string          `json:"channel" validate:"required"`
	Text         string          `json:"text" validate:"required"`
	ScheduleTime string          `json:"scheduleTime" validate:"required"`
	Blocks       json.RawMessage `json:"blocks,omitempty"`
	Attachments  json.RawMessage `json:"attachments,omitempty"`
}

type editRequest struct {
	Channel     string          `json:"channel" validate:"required"`
	Timestamp   string          `json:"timestamp" validate:"required"`
	Text        string          `json:"text" validate:"required"`
	Blocks      json.RawMessage `json:"blocks,omitempty"`
	Attachments json.RawMessage `json:"attachments,omitempty"`
}

// validate checks payloads against their struct tags. Field names in
// error messages use the json tag so they match what the caller sent.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkPayload runs struct validation and converts the first failure into
// a client-facing VALIDATION_ERROR.
func checkPayload(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return apperr.Wrap(apperr.CodeValidation, err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return apperr.New(apperr.CodeValidation, fmt.Sprintf("%q is required", fe.Field()))
	default:
		return apperr.New(apperr.CodeValidation, fmt.Sprintf("%q is invalid", fe.Field()))
	}
}
