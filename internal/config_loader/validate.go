package config_loader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError is one failed constraint with its config path.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors aggregates every failed constraint so operators can fix
// a config file in one pass.
type ValidationErrors struct {
	Errors []ValidationError
}

func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(ve.Errors))
	for i, e := range ve.Errors {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("validation failed with %d error(s):\n  - %s", len(ve.Errors), strings.Join(msgs, "\n  - "))
}

func (ve *ValidationErrors) add(path, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Path: path, Message: message})
}

func (ve *ValidationErrors) hasErrors() bool {
	return len(ve.Errors) > 0
}

// validate runs the struct-tag constraints plus the cross-field checks the
// tags cannot express.
func validate(config *Config) error {
	errs := &ValidationErrors{}

	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(config); err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return err
		}
		for _, fe := range fieldErrors {
			errs.add(fe.Namespace(), fmt.Sprintf("failed %q constraint (value: %v)", fe.Tag(), fe.Value()))
		}
	}

	if _, err := config.HTTP.Client.ParseDefaultTimeout(); config.HTTP.Client.DefaultTimeout != "" && err != nil {
		errs.add("http.client.default_timeout", err.Error())
	}

	// route cryptograms must decode, and every service they reference
	// must resolve
	for name, vhost := range config.Virtualhosts {
		for path, route := range vhost.Routes {
			c, err := route.ParseCryptogram()
			if err != nil {
				errs.add(fmt.Sprintf("virtualhosts.%s.routes.%s.cryptogram", name, path), err.Error())
				continue
			}
			for i, step := range c.Steps {
				if step.Service == nil || step.Method == nil {
					continue
				}
				if _, _, err := config.Services.Resolve(*step.Service, *step.Method); err != nil {
					errs.add(
						fmt.Sprintf("virtualhosts.%s.routes.%s.cryptogram.steps[%d]", name, path, i),
						err.Error(),
					)
				}
			}
		}
	}

	if errs.hasErrors() {
		return errs
	}
	return nil
}
