package config

import (
	"encoding/json"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// StringToStructHookFunc decodes a JSON object string into a struct or
// struct pointer field. Env values arrive as strings, so a whole section
// such as the webhook block can be set from one variable.
func StringToStructHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			return data, nil
		}
		raw := data.(string)
		if raw == "" {
			return map[string]interface{}{}, nil
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return data, nil
		}
		return m, nil
	}
}

// StringToSliceWithBracketHookFunc decodes a JSON array string into a slice
// field, e.g. webhook items given as `[{"url":"..."}]`. Anything that is not
// a JSON array is passed through unchanged.
func StringToSliceWithBracketHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Kind, t reflect.Kind, data interface{}) (interface{}, error) {
		if f != reflect.String || t != reflect.Slice {
			return data, nil
		}
		raw := data.(string)
		if raw == "" {
			return []interface{}{}, nil
		}
		var items []interface{}
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return data, nil
		}
		return items, nil
	}
}

func decoderConfig() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		StringToStructHookFunc(),
		StringToSliceWithBracketHookFunc(),
	))
}
