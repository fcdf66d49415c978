package dto

import (
	"html"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	safeStringRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)

	// Hedera entity ids are shard.realm.num triples, e.g. "0.0.12345".
	hederaIDRe = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+$`)

	hexRe = regexp.MustCompile(`^(0x)?[0-9a-fA-F]+$`)
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("safe_id", validateSafeID)
		_ = v.RegisterValidation("hedera_id", validateHederaID)
		_ = v.RegisterValidation("hex_bytecode", validateHexBytecode)
	}
}

// validateSafeID allows alphanumeric, underscore, dash, and dot.
func validateSafeID(fl validator.FieldLevel) bool {
	return safeStringRe.MatchString(fl.Field().String())
}

// validateHederaID accepts shard.realm.num account/token/contract ids.
func validateHederaID(fl validator.FieldLevel) bool {
	return hederaIDRe.MatchString(fl.Field().String())
}

// validateHexBytecode accepts non-empty hex with an even digit count, with
// or without a 0x prefix.
func validateHexBytecode(fl validator.FieldLevel) bool {
	s := strings.TrimPrefix(fl.Field().String(), "0x")
	return len(s) > 0 && len(s)%2 == 0 && hexRe.MatchString(s)
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				s := sanitize(elem.String())
				elem.SetString(s)
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
