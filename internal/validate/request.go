package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/Maheshwaran1303/todo-backend-redrf/internal/model"
	"github.com/go-playground/validator/v10"
)

const (
	MsgRequired      = "This field is required."
	MsgInvalidEmail  = "Enter a valid email address."
	MsgUsernameTaken = "A user with that username already exists."
	msgUsernameChars = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = val.RegisterValidation("usernamechars", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	return val
}

// Registration validates a sign-up payload. Field rules and password strength
// run first; the confirmation check only runs once every field is valid.
func Registration(req model.RegisterRequest) error {
	errs := structErrors(req)

	if req.Password != "" {
		for _, msg := range Password(req.Password, req.Username, req.Email) {
			errs.Add("password", msg)
		}
	}
	if !errs.Empty() {
		return errs
	}

	if req.Password != req.Password2 {
		return Single("password", MsgPasswordMismatch)
	}
	return nil
}

// Todo validates a create or full-replace payload.
func Todo(req model.TodoRequest) error {
	return structErrors(req).Err()
}

// TodoPatch validates only the fields present in a partial update.
func TodoPatch(req model.TodoPatchRequest) error {
	errs := &Errors{}
	if req.Title != nil {
		varErrors(errs, "title", *req.Title, "required,max=200")
	}
	if req.Description != nil {
		varErrors(errs, "description", *req.Description, "max=2000")
	}
	return errs.Err()
}

func structErrors(s any) *Errors {
	errs := &Errors{}
	err := v.Struct(s)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("non_field_errors", err.Error())
		return errs
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func varErrors(errs *Errors, field string, value any, tag string) {
	err := v.Var(value, tag)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add(field, err.Error())
		return
	}
	for _, fe := range verrs {
		errs.Add(field, message(fe))
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "email":
		return MsgInvalidEmail
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "usernamechars":
		return msgUsernameChars
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}
