// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

// ValidationError maps form fields to the message shown next to them.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has a message.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Get returns the message of field or "".
func (e *ValidationError) Get(field string) string {
	if e == nil {
		return ""
	}
	return e.Fields[field]
}

func (e *ValidationError) errOrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// AsValidation returns the ValidationError wrapped in err, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// decoder is shared because it caches struct metadata and is safe for
// concurrent use.
var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their form name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("schema"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}()

// decodeForm fills dst from posted values. Malformed values become field
// errors.
func decodeForm(dst any, form url.Values) error {
	err := decoder.Decode(dst, form)
	if err == nil {
		return nil
	}
	ve := &ValidationError{}
	var multi schema.MultiError
	if errors.As(err, &multi) {
		for field := range multi {
			ve.Add(field, "Valor inválido.")
		}
		return ve
	}
	ve.Add("form", "Formulário inválido.")
	return ve
}

// check runs the struct's validate tags and converts failures into a
// ValidationError with user-facing messages.
func check(v any) *ValidationError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	ve := &ValidationError{}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		ve.Add("form", "Formulário inválido.")
		return ve
	}
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), message(fe))
	}
	return ve
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Campo obrigatório."
	case "max":
		return fmt.Sprintf("Use no máximo %s caracteres.", fe.Param())
	case "min":
		return fmt.Sprintf("Use pelo menos %s caracteres.", fe.Param())
	case "email":
		return "Informe um e-mail válido."
	case "url", "http_url":
		return "Informe um endereço começando com http:// ou https://."
	default:
		return "Valor inválido."
	}
}
