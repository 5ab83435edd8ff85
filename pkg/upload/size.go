package upload

import "fmt"

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// FormatSize 把字节数格式化为二进制前缀的可读标签，如 "0 Bytes"、"512 B"、"2.30 MB"。
func FormatSize(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	value, i := float64(n), 0
	for value >= 1024 && i < len(sizeUnits)-1 {
		value /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", value, sizeUnits[i])
}
