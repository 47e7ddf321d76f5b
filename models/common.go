package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const timeFormat = "2006-01-02 15:04:05"

// LocalTime is stored as a datetime column and rendered in a flat format.
type LocalTime time.Time

func NewLocalTime(t time.Time) LocalTime {
	return LocalTime(t.UTC())
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", time.Time(t).Format(timeFormat))), nil
}

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("invalid time %q", string(data))
	}
	parsed, err := time.Parse(timeFormat, string(data[1:len(data)-1]))
	if err != nil {
		return err
	}
	*t = LocalTime(parsed)
	return nil
}

func (t LocalTime) Value() (driver.Value, error) {
	return time.Time(t), nil
}

func (t *LocalTime) Scan(v interface{}) error {
	switch value := v.(type) {
	case time.Time:
		*t = LocalTime(value)
		return nil
	case []byte:
		parsed, err := time.Parse(timeFormat, string(value))
		if err != nil {
			return err
		}
		*t = LocalTime(parsed)
		return nil
	case string:
		parsed, err := time.Parse(timeFormat, value)
		if err != nil {
			return err
		}
		*t = LocalTime(parsed)
		return nil
	}
	return fmt.Errorf("cannot scan %T into LocalTime", v)
}

func (t LocalTime) Time() time.Time {
	return time.Time(t)
}
