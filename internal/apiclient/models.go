package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Text decodes any JSON scalar into its display string. The backend is not
// consistent about numbers versus numeric strings.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '{', '[':
		*t = ""
	default:
		*t = Text(data)
	}
	return nil
}

func (t Text) String() string { return string(t) }

// Party is a nested user reference that may arrive populated or as a bare id.
type Party struct {
	ID    string
	Name  string
	Email string
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Party) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = Party{}
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &p.ID)
	}
	var obj struct {
		ID    string `json:"_id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*p = Party{ID: obj.ID, Name: obj.Name, Email: obj.Email}
	return nil
}

// Label is the best human readable name for the party.
func (p Party) Label() string {
	switch {
	case p.Name != "":
		return p.Name
	case p.Email != "":
		return p.Email
	default:
		return p.ID
	}
}

// Product is the subset of a catalogue entry the console lists.
type Product struct {
	ID          string     `json:"_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       Text       `json:"price"`
	Stock       Text       `json:"stock"`
	Category    Categories `json:"category"`
	Images      []string   `json:"images"`
}

// Order is the subset of an order the console lists.
type Order struct {
	ID          string `json:"_id"`
	User        Party  `json:"user"`
	TotalAmount Text   `json:"totalAmount"`
	Status      string `json:"status"`
	CreatedAt   Text   `json:"createdAt"`
}

// Subscription is the subset of a subscription the console lists.
type Subscription struct {
	ID        string `json:"_id"`
	User      Party  `json:"user"`
	Product   Party  `json:"product"`
	Frequency string `json:"frequency"`
	Status    string `json:"status"`
	NextDate  Text   `json:"nextDeliveryDate"`
}

// User is the subset of an account the console lists.
type User struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
}

// DecodeList decodes a list response that is either a bare array or an
// object wrapping exactly one array, such as {"products":[...]}.
func DecodeList[T any](raw json.RawMessage, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	if raw[0] == '[' {
		return Decode[[]T](raw, nil)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	var found json.RawMessage
	for _, v := range wrapper {
		v = bytes.TrimSpace(v)
		if len(v) > 0 && v[0] == '[' {
			if found != nil {
				return nil, fmt.Errorf("failed to decode response: ambiguous list wrapper")
			}
			found = v
		}
	}
	if found == nil {
		return nil, fmt.Errorf("failed to decode response: no list found")
	}
	return Decode[[]T](found, nil)
}

// Stat is one labelled dashboard figure.
type Stat struct {
	Key   string
	Value string
}

// FlattenStats turns a stats object into sorted key/value figures; nested
// objects contribute dotted keys. An empty body yields no figures.
func FlattenStats(raw json.RawMessage, err error) ([]Stat, error) {
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return []Stat{}, nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	var out []Stat
	flatten("", obj, &out)
	sortStats(out)
	return out, nil
}

func flatten(prefix string, obj map[string]any, out *[]Stat) {
	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case []any:
			*out = append(*out, Stat{Key: key, Value: strconv.Itoa(len(val))})
		case nil:
			*out = append(*out, Stat{Key: key, Value: "-"})
		case float64:
			*out = append(*out, Stat{Key: key, Value: strconv.FormatFloat(val, 'f', -1, 64)})
		default:
			*out = append(*out, Stat{Key: key, Value: fmt.Sprint(val)})
		}
	}
}
