package blogapi

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/openkcm/blog-client/internal/posts"
)

var (
	stringSliceType = reflect.TypeFor[[]string]()
	timeType        = reflect.TypeFor[time.Time]()
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	time.DateTime,
	time.DateOnly,
}

// decode unmarshals a JSON body and maps it onto out. Loosely typed fields
// are normalized on the way: tags may arrive as a list, a JSON encoded list
// or a comma separated string, dates as strings, numbers as strings.
func decode(body []byte, out any) error {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("unmarshaling json: %w", err)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			tagsHook,
			timeHook,
		),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}

	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}

	return nil
}

func tagsHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != stringSliceType {
		return data, nil
	}

	switch v := data.(type) {
	case nil:
		return []string{}, nil
	case string:
		return posts.SplitTags(v), nil
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}

		return posts.SplitTags(strings.Join(parts, ",")), nil
	default:
		return data, nil
	}
}

func timeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	raw, ok := data.(string)
	if to != timeType || !ok {
		return data, nil
	}

	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return nil, fmt.Errorf("parsing time %q", s)
}
