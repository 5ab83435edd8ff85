package upload

import "time"

// Policy 是进程级的上传限制，启动后只读。各项 <= 0 表示不限制。
type Policy struct {
	MaxFields    int
	MaxFileBytes int64
	MaxFiles     int
	ReadTimeout  time.Duration
}
