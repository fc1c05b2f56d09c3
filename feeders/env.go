// Package feeders provides configuration feeders that populate config
// structs from YAML, TOML and JSON files, .env files and environment
// variables.
package feeders

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/golobby/cast"
)

var durationType = reflect.TypeOf(time.Duration(0))

// EnvFeeder populates struct fields tagged `env:"NAME"` from environment
// variables. Names are upper-cased and joined with underscores:
// Prefix, then the section key (FeedKey only), then the tag.
//
//	NewEnvFeeder("FIB").FeedKey("cache", &cfg) // reads FIB_CACHE_ENGINE for `env:"ENGINE"`
type EnvFeeder struct {
	Prefix string

	lookup func(name string) (string, bool)
	logger interface {
		Debug(msg string, args ...any)
	}
}

// NewEnvFeeder creates a new EnvFeeder using prefix for every variable name
func NewEnvFeeder(prefix string) *EnvFeeder {
	return &EnvFeeder{Prefix: prefix, lookup: os.LookupEnv}
}

// SetVerboseDebug logs every variable lookup through logger. Pass nil to disable.
func (f *EnvFeeder) SetVerboseDebug(logger interface{ Debug(msg string, args ...any) }) {
	f.logger = logger
}

// Feed populates target using only the feeder prefix
func (f *EnvFeeder) Feed(target any) error {
	return f.feed(f.Prefix, target)
}

// FeedKey populates target using the feeder prefix followed by key
func (f *EnvFeeder) FeedKey(key string, target any) error {
	return f.feed(joinEnvName(f.Prefix, key), target)
}

func (f *EnvFeeder) feed(prefix string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w, got %T", ErrInvalidStructure, target)
	}
	return f.processStructFields(rv.Elem(), prefix)
}

func (f *EnvFeeder) processStructFields(rv reflect.Value, prefix string) error {
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		fieldType := rv.Type().Field(i)

		if err := f.processField(field, &fieldType, prefix); err != nil {
			return fmt.Errorf("error in field '%s': %w", fieldType.Name, err)
		}
	}
	return nil
}

func (f *EnvFeeder) processField(field reflect.Value, fieldType *reflect.StructField, prefix string) error {
	envTag, hasTag := fieldType.Tag.Lookup("env")

	switch {
	case field.Kind() == reflect.Struct:
		// Nested structs extend the prefix with their own env tag, if any
		if hasTag {
			prefix = joinEnvName(prefix, envTag)
		}
		return f.processStructFields(field, prefix)
	case field.Kind() == reflect.Ptr && !field.IsNil() && field.Elem().Kind() == reflect.Struct:
		if hasTag {
			prefix = joinEnvName(prefix, envTag)
		}
		return f.processStructFields(field.Elem(), prefix)
	case hasTag:
		return f.setFieldFromEnv(field, joinEnvName(prefix, envTag))
	}
	return nil
}

func (f *EnvFeeder) setFieldFromEnv(field reflect.Value, envName string) error {
	lookup := f.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	envValue, ok := lookup(envName)
	if f.logger != nil {
		f.logger.Debug("EnvFeeder: looking up environment variable", "envName", envName, "found", ok)
	}
	if !ok || envValue == "" {
		return nil
	}
	if !field.CanSet() {
		return ErrFieldCannotBeSet
	}
	return setFieldValue(field, envValue)
}

// setFieldValue converts and sets a field value
func setFieldValue(field reflect.Value, strValue string) error {
	if field.Kind() == reflect.Ptr {
		value, err := convert(strValue, field.Type().Elem())
		if err != nil {
			return err
		}
		ptr := reflect.New(field.Type().Elem())
		ptr.Elem().Set(value)
		field.Set(ptr)
		return nil
	}

	if field.Kind() == reflect.Slice {
		parts := strings.Split(strValue, ",")
		slice := reflect.MakeSlice(field.Type(), 0, len(parts))
		for _, part := range parts {
			elem, err := convert(strings.TrimSpace(part), field.Type().Elem())
			if err != nil {
				return err
			}
			slice = reflect.Append(slice, elem)
		}
		field.Set(slice)
		return nil
	}

	value, err := convert(strValue, field.Type())
	if err != nil {
		return err
	}
	field.Set(value)
	return nil
}

func convert(s string, typ reflect.Type) (reflect.Value, error) {
	if typ == durationType {
		d, err := time.ParseDuration(s)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot convert value to type %v: %w", typ, err)
		}
		return reflect.ValueOf(d), nil
	}

	switch typ.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
	default:
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnsupportedType, typ)
	}

	converted, err := cast.FromType(s, typ)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("cannot convert value to type %v: %w", typ, err)
	}
	return reflect.ValueOf(converted).Convert(typ), nil
}

func joinEnvName(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, strings.ToUpper(p))
		}
	}
	return strings.Join(nonEmpty, "_")
}
