package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks the configuration against the struct tags plus the rules
// tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return validateCustomRules(cfg)
}

func validateCustomRules(cfg *Config) error {
	if cfg.Archive.Enabled {
		if cfg.Archive.Target == "s3" && cfg.Archive.S3 == nil {
			return fmt.Errorf("archive target s3 requires an archive.s3 section")
		}
	}
	if cfg.Server.AcceptBurst > 0 && cfg.Server.AcceptRate == 0 {
		return fmt.Errorf("server.accept_burst requires server.accept_rate")
	}
	return nil
}

func formatValidationError(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	for _, fieldErr := range errs {
		return fmt.Errorf("invalid value for %s (rule %s)", fieldErr.Namespace(), fieldErr.Tag())
	}
	return err
}
