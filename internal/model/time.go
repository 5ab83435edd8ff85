package model

import (
	"fmt"
	"strings"
	"time"
)

// LocalTime 以 "YYYY-MM-DD HH:MM:SS" 格式序列化时间，文件索引的日期字段使用同一格式。
type LocalTime time.Time

// LocalTimeFormat 对应 Elasticsearch 映射中的 "yyyy-MM-dd HH:mm:ss"。
const LocalTimeFormat = "2006-01-02 15:04:05"

// MarshalJSON implements the json.Marshaler interface.
func (t LocalTime) MarshalJSON() ([]byte, error) {
	formatted := fmt.Sprintf("\"%s\"", time.Time(t).Format(LocalTimeFormat))
	return []byte(formatted), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *LocalTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*t = LocalTime{}
		return nil
	}
	parsed, err := time.ParseInLocation(LocalTimeFormat, s, time.Local)
	if err != nil {
		return err
	}
	*t = LocalTime(parsed)
	return nil
}

func (t LocalTime) String() string {
	return time.Time(t).Format(LocalTimeFormat)
}
