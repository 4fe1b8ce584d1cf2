package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var taskStatuses = map[string]struct{}{
	"pending":     {},
	"in_progress": {},
	"completed":   {},
}

func init() {
	// Initialize validation
	validate = validator.New(validator.WithRequiredStructEnabled())
	if err := Register(validate); err != nil {
		panic(err)
	}
}

func GetValidator() *validator.Validate {
	return validate
}

// Register installs the project's custom rules on v.
// The HTTP layer calls it on gin's binding engine so request structs can use them.
func Register(v *validator.Validate) error {
	return v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		_, ok := taskStatuses[fl.Field().String()]
		return ok
	})
}
