// Package validation validates configuration structs and user input with
// go-playground/validator, reporting failures as *errors.AppError.
//
//	type Config struct {
//	    AppID  string `mapstructure:"app_id" validate:"required"`
//	    UXMode string `mapstructure:"ux_mode" validate:"oneof=popup redirect"`
//	}
//	err := validation.Validate(cfg)
package validation
