package mutate

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(fieldName)
		v.RegisterStructValidation(validateStatusChange, UpdateStatus{})
		validate = v
	})
	return validate
}

// fieldName reports struct fields by their form name: the json tag when set,
// otherwise the Go name in lower camel case (AssignmentID -> assignmentId).
func fieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name != "" && name != "-" {
		return name
	}
	name = f.Name
	if strings.HasSuffix(name, "ID") {
		name = strings.TrimSuffix(name, "ID") + "Id"
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func validateStatusChange(sl validator.StructLevel) {
	a := sl.Current().Interface().(UpdateStatus)
	switch a.ChangeType {
	case ChangeLeave:
		if a.IsActive {
			sl.ReportError(a.IsActive, "isActive", "IsActive", "leave", "")
		}
	case ChangeReturn:
		if !a.IsActive {
			sl.ReportError(a.IsActive, "isActive", "IsActive", "return", "")
		}
	}
}

// Validate checks an action before submission and returns inline messages
// keyed by field. An empty result means the action may be sent.
func Validate(a Action) FieldErrors {
	out := FieldErrors{}
	if err := validatorInstance().Struct(a); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			out["_"] = err.Error()
			return out
		}
		for _, fe := range verrs {
			if _, dup := out[fe.Field()]; dup {
				continue
			}
			out[fe.Field()] = message(fe)
		}
	}
	switch a := a.(type) {
	case UpdateTask:
		validateTaskFields(a.Fields, out)
	case UpdateMember:
		validateMemberFields(a.Fields, out)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		if strings.HasSuffix(fe.Field(), "Id") {
			return "must be selected"
		}
		return "must be greater than " + fe.Param()
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return "must not be empty"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "leave":
		return "must be false when leaving"
	case "return":
		return "must be true when returning"
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}

func validateTaskFields(fields map[string]any, out FieldErrors) {
	for k, v := range fields {
		if k == "title" || k == "description" {
			s, ok := v.(string)
			if !ok {
				out[k] = "must be text"
			} else if k == "title" && strings.TrimSpace(s) == "" {
				out[k] = "is required"
			}
			continue
		}
		allowed, ok := taskFieldValues[k]
		if !ok {
			out[k] = "is not an editable task field"
			continue
		}
		s := fmt.Sprint(v)
		if !slices.Contains(allowed, s) {
			out[k] = "must be one of " + strings.Join(allowed, ", ")
		}
	}
}

func validateMemberFields(fields map[string]any, out FieldErrors) {
	for k, v := range fields {
		if !memberFields[k] {
			out[k] = "is not an editable member field"
			continue
		}
		s, ok := v.(string)
		if !ok {
			out[k] = "must be text"
			continue
		}
		switch k {
		case "firstName", "lastName":
			if strings.TrimSpace(s) == "" {
				out[k] = "is required"
			}
		case "email":
			if err := validatorInstance().Var(s, "required,email"); err != nil {
				out[k] = "must be a valid email address"
			}
		}
	}
}
