package store

import (
	"encoding/json"
	"fmt"
)

// marshalFieldNames encodes a model's ordered field names as a JSON array.
func marshalFieldNames(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	data, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("marshal field names: %w", err)
	}
	return string(data), nil
}

// unmarshalFieldNames decodes a JSON array of field names.
func unmarshalFieldNames(data string) ([]string, error) {
	var names []string
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, fmt.Errorf("unmarshal field names: %w", err)
	}
	return names, nil
}
