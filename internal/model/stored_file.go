package model

// StoredFile 是一个成功落盘的上传文件的描述，创建后不再修改。
type StoredFile struct {
	OriginalName string    `json:"originalName"`
	StoredName   string    `json:"storedName"`
	StoragePath  string    `json:"storagePath"`
	TypeCategory string    `json:"typeCategory"`
	Size         int64     `json:"size"`
	SizeLabel    string    `json:"sizeLabel"`
	DateBucket   string    `json:"dateBucket"`
	MimeType     string    `json:"mimeType,omitempty"`
	UploadedAt   LocalTime `json:"uploadedAt"`
}

// Key 返回文件在存储后端中的 key。
func (f *StoredFile) Key() string {
	return f.DateBucket + "/" + f.TypeCategory + "/" + f.StoredName
}

// UploadDailyStat 是某一天某一类文件的上传统计。
type UploadDailyStat struct {
	TypeCategory string `json:"typeCategory"`
	Count        int64  `json:"count"`
	Bytes        int64  `json:"bytes"`
	SizeLabel    string `json:"sizeLabel"`
}
