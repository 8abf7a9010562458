package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Date is a timestamp that accepts both RFC 3339 and plain "YYYY-MM-DD"
// values in JSON (admin forms submit date inputs without a time component)
// and is stored as a regular BSON datetime.
type Date struct {
	time.Time
}

// ParseDate parses a date string in RFC 3339 or "YYYY-MM-DD" form.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Date{Time: t.UTC()}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return Date{Time: t.UTC()}, nil
	}
	return Date{}, fmt.Errorf("invalid date %q: expected RFC 3339 or YYYY-MM-DD", s)
}

// NewDate wraps a time.Time as a Date.
func NewDate(t time.Time) Date {
	return Date{Time: t.UTC()}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.UTC().Format(time.RFC3339))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(d.Time)
}

func (d *Date) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bson.TypeNull {
		*d = Date{}
		return nil
	}
	var parsed time.Time
	if err := bson.UnmarshalValue(t, data, &parsed); err != nil {
		return err
	}
	d.Time = parsed
	return nil
}
