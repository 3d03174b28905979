package backend

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

// envelope is the backend's response wrapper {success, data, message}.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

var nullJSON = []byte("null")

// unwrap decodes the envelope and, when out is non-nil, its data into out.
// A body that is not an envelope is decoded into out as a whole.
func unwrap(body []byte, out any) (string, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return "", nil
	}

	var env envelope
	if body[0] == '{' {
		if err := json.Unmarshal(body, &env); err != nil {
			return "", fmt.Errorf("%w: %v", ErrDecode, err)
		}
	}
	if env.Success != nil && !*env.Success {
		return env.Message, ErrRejected
	}
	if out == nil {
		return env.Message, nil
	}

	data := env.Data
	if env.Success == nil && len(env.Data) == 0 {
		data = body
	}
	if len(data) == 0 || bytes.Equal(data, nullJSON) {
		return env.Message, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return env.Message, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return env.Message, nil
}

// errorMessage extracts the message of an error body, envelope or not.
func errorMessage(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return ""
	}
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// pageOf accepts {content, totalElements}, a bare array, or null.
type pageOf[T any] domain.Page[T]

func (p *pageOf[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, nullJSON):
		p.Content = []T{}
		p.TotalElements = 0
		return nil
	case b[0] == '[':
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		p.Content = items
		p.TotalElements = int64(len(items))
		return nil
	}

	var obj struct {
		Content       []T   `json:"content"`
		TotalElements int64 `json:"totalElements"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	if obj.Content == nil {
		obj.Content = []T{}
	}
	p.Content = obj.Content
	p.TotalElements = obj.TotalElements
	return nil
}
