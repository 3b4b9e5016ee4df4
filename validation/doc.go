// Package validation provides input validation for authkit configuration.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Struct tag validation is
// what Config.Validate uses; the programmatic Validator serves custom checks
// that tags cannot express.
//
// # Struct Tag Validation
//
//	type Settings struct {
//	    Key     string `validate:"required,securitykey"`
//	    BaseURL string `validate:"required,url"`
//	}
//	err := validation.Validate(settings)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("client_id", cfg.ClientID).OneOf("backend", cfg.Backend, []string{"cookie", "redis"})
//	err := v.Validate()
package validation
