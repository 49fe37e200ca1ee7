package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/lncensor/lncensor/adversary"
	"github.com/lncensor/lncensor/simulation"
	"github.com/lncensor/lncensor/topology"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	mustRegister("graphsource", func(s string) error {
		_, err := topology.ParseSource(s)
		return err
	})
	mustRegister("asstrategy", func(s string) error {
		_, err := adversary.ParseStrategy(s)
		return err
	})
	mustRegister("dropstrategy", func(s string) error {
		_, err := simulation.ParseDropStrategy(s)
		return err
	})
}

func mustRegister(tag string, parse func(string) error) {
	err := validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return parse(fl.Field().String()) == nil
	})
	if err != nil {
		panic(err)
	}
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return errors.Wrap(err, "validate config")
	}

	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, formatFieldError(e))
	}

	return errors.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "gt", "gte", "lte":
		return e.Field() + " must be " + e.Tag() + " " + e.Param()
	case "oneof":
		return e.Field() + " must be one of " + e.Param()
	}

	return fmt.Sprintf("%s has invalid value %q", e.Field(), fmt.Sprint(e.Value()))
}
