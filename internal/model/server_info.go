package model

// ServerInfo 是服务监控接口返回的主机快照。百分比与容量均保留两位小数。
type ServerInfo struct {
	CPU      CPUInfo    `json:"cpu"`
	Mem      MemInfo    `json:"mem"`
	Sys      SysInfo    `json:"sys"`
	SysFiles []DiskInfo `json:"sysFiles"`
}

type CPUInfo struct {
	CPUNum int     `json:"cpuNum"`
	Total  float64 `json:"total"` // 累计 CPU 时间（秒）
	Sys    string  `json:"sys"`
	Used   string  `json:"used"`
	Wait   string  `json:"wait"`
	Free   string  `json:"free"`
}

// MemInfo 的容量单位是 GB。
type MemInfo struct {
	Total string `json:"total"`
	Used  string `json:"used"`
	Free  string `json:"free"`
	Usage string `json:"usage"`
}

type SysInfo struct {
	ComputerName string `json:"computerName"`
	ComputerIP   string `json:"computerIp"`
	UserDir      string `json:"userDir"`
	OSName       string `json:"osName"`
	OSArch       string `json:"osArch"`
}

type DiskInfo struct {
	DirName  string `json:"dirName"`
	TypeName string `json:"typeName"`
	Total    string `json:"total"`
	Used     string `json:"used"`
	Free     string `json:"free"`
	Usage    string `json:"usage"`
}
