package upload

import (
	"fmt"
	"path"
	"strings"
	"sync"
	"time"
)

// Category 是按扩展名得到的粗粒度文件分类。
type Category string

const (
	CategoryImage    Category = "image"
	CategoryDocument Category = "document"
	CategoryMusic    Category = "music"
	CategoryVideo    Category = "video"
	CategoryOther    Category = "other"
)

var extensionTable = buildExtensionTable(map[Category]string{
	CategoryImage:    "bmp dib pcp dif wmf gif jpg tif eps psd cdr iff tga pcd mpt png jpeg",
	CategoryDocument: "txt doc pdf ppt pps xlsx xls docx",
	CategoryMusic:    "mp3 wav wma mpa ram ra aac aif m4a",
	CategoryVideo:    "avi mpg mpe mpeg asf wmv mov qt rm mp4 flv m4v webm ogv ogg",
})

func buildExtensionTable(groups map[Category]string) map[string]Category {
	table := make(map[string]Category)
	for category, exts := range groups {
		for _, ext := range strings.Fields(exts) {
			table[ext] = category
		}
	}
	return table
}

// Classify 按扩展名查表分类，大小写不敏感，可带或不带前导点。未知扩展名归为 other。
func Classify(ext string) Category {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if c, ok := extensionTable[ext]; ok {
		return c
	}
	return CategoryOther
}

const (
	stampLayout  = "20060102150405"
	bucketLayout = "2006-01-02"
)

// Assignment 是为一个上传文件分配的存储身份。
type Assignment struct {
	OriginalName string
	StoredName   string
	Extension    string
	Category     Category
	DateBucket   string
	At           time.Time
}

// Key 返回 <dateBucket>/<category>/<storedName>。
func (a Assignment) Key() string {
	return path.Join(a.DateBucket, string(a.Category), a.StoredName)
}

// Namer 生成 <stem>-<YYYYMMDDHHMMSS>-<NNNN><ext> 形式的文件名。
// NNNN 在同一秒内单调递增，跨秒归零。
type Namer struct {
	now func() time.Time

	mu     sync.Mutex
	second int64
	seq    int
}

// NewNamer 创建 Namer，clock 为 nil 时使用 time.Now。
func NewNamer(clock func() time.Time) *Namer {
	if clock == nil {
		clock = time.Now
	}
	return &Namer{now: clock}
}

// Rename 返回 originalName 对应的存储文件名。
func (n *Namer) Rename(originalName string) string {
	return n.Assign(originalName).StoredName
}

// Assign 用同一个时间戳生成文件名、分类和日期分区。
func (n *Namer) Assign(originalName string) Assignment {
	at := n.now()
	seq := n.next(at)

	base := baseName(originalName)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem = "file"
	}

	return Assignment{
		OriginalName: originalName,
		StoredName:   fmt.Sprintf("%s-%s-%04d%s", stem, at.Format(stampLayout), seq, ext),
		Extension:    strings.TrimPrefix(ext, "."),
		Category:     Classify(ext),
		DateBucket:   at.Format(bucketLayout),
		At:           at,
	}
}

func (n *Namer) next(at time.Time) int {
	sec := at.Unix()
	n.mu.Lock()
	defer n.mu.Unlock()
	if sec != n.second {
		n.second = sec
		n.seq = 0
	}
	n.seq++
	return n.seq
}

// baseName 去掉客户端可能带上的目录部分（含 Windows 路径）。
func baseName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}
