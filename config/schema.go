package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// CoreConfig is the validated settings record for the host application.
// Unrecognized keys are preserved in Extra but not type-checked.
type CoreConfig struct {
	AppName     string `mapstructure:"app_name"     yaml:"app_name"     validate:"required"`
	Version     string `mapstructure:"version"      yaml:"version"`
	Environment string `mapstructure:"environment"  yaml:"environment"  validate:"oneof=development staging production"`
	Debug       bool   `mapstructure:"debug"        yaml:"debug"`

	APIHost string `mapstructure:"api_host" yaml:"api_host"`
	APIPort int    `mapstructure:"api_port" yaml:"api_port" validate:"gte=1,lte=65535"`

	DatabaseURL      string `mapstructure:"database_url"       yaml:"database_url"`
	DatabasePoolSize int    `mapstructure:"database_pool_size" yaml:"database_pool_size" validate:"gte=1"`

	CacheURL        string `mapstructure:"cache_url"         yaml:"cache_url"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" yaml:"cache_ttl_seconds" validate:"gte=0"`

	QueueURL     string `mapstructure:"queue_url"     yaml:"queue_url"`
	QueueWorkers int    `mapstructure:"queue_workers" yaml:"queue_workers" validate:"gte=1"`

	PluginDir            string `mapstructure:"plugin_dir"             yaml:"plugin_dir"`
	PluginTimeoutSeconds int    `mapstructure:"plugin_timeout_seconds" yaml:"plugin_timeout_seconds" validate:"gte=1"`

	LogLevel  string `mapstructure:"log_level"  yaml:"log_level"  validate:"oneof=DEBUG INFO WARNING ERROR CRITICAL"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Extra holds unrecognized keys from the merged mapping.
	Extra map[string]any `mapstructure:",remain" yaml:",inline"`
}

// defaultCoreConfig returns a CoreConfig populated with field defaults.
// Keys absent from the merged mapping keep these values.
func defaultCoreConfig() CoreConfig {
	return CoreConfig{
		AppName:              "core",
		Version:              "0.1.0",
		Environment:          "development",
		APIHost:              "0.0.0.0",
		APIPort:              8000,
		DatabasePoolSize:     10,
		CacheTTLSeconds:      300,
		QueueWorkers:         4,
		PluginDir:            "plugins",
		PluginTimeoutSeconds: 30,
		LogLevel:             "INFO",
		LogFormat:            "json",
	}
}

// coreValidator checks the range and enum constraints declared on
// CoreConfig tags. Field names are reported by their mapstructure key.
var coreValidator = newCoreValidator()

func newCoreValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateCore decodes a merged mapping into a CoreConfig, applying
// defaults and weak type coercion, then checks the declared constraints.
// All violations are aggregated into a single ValidationErrors. The input
// mapping is not mutated.
func validateCore(merged map[string]any) (*CoreConfig, error) {
	cfg := defaultCoreConfig()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("build config decoder: %w", err)
	}

	if err := decoder.Decode(merged); err != nil {
		return nil, ValidationErrors{{Message: err.Error()}}
	}

	if err := coreValidator.Struct(&cfg); err != nil {
		return nil, translateFieldErrors(err)
	}

	return &cfg, nil
}

// translateFieldErrors converts validator field errors into the package
// error taxonomy, one entry per violated constraint.
func translateFieldErrors(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Message: err.Error()}}
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Path:    fe.Field(),
			Message: constraintMessage(fe),
		})
	}
	return out
}

func constraintMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("must be >= %s, got %v", fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("must be <= %s, got %v", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}
