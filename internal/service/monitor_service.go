package service

import (
	"context"
	"fmt"

	"dome-admin-go/internal/model"
	"dome-admin-go/pkg/sysinfo"

	"go.uber.org/zap"
)

// HostCollector 读取主机指标，由 sysinfo.Collector 实现。
type HostCollector interface {
	CPU(ctx context.Context) (sysinfo.CPUTimes, error)
	Memory(ctx context.Context) (sysinfo.Memory, error)
	Host(ctx context.Context) (sysinfo.Host, error)
	Disks(ctx context.Context) ([]sysinfo.Disk, error)
}

// MonitorService 提供服务器运行状态。
type MonitorService interface {
	ServerInfo(ctx context.Context) (*model.ServerInfo, error)
}

type monitorService struct {
	collector HostCollector
	logger    *zap.SugaredLogger
}

// NewMonitorService 创建 MonitorService。
func NewMonitorService(collector HostCollector, logger *zap.SugaredLogger) MonitorService {
	return &monitorService{collector: collector, logger: logger}
}

// ServerInfo 汇总 CPU、内存、系统与磁盘信息。磁盘读取失败时只记录日志，返回空列表。
func (s *monitorService) ServerInfo(ctx context.Context) (*model.ServerInfo, error) {
	cpu, err := s.collector.CPU(ctx)
	if err != nil {
		return nil, err
	}
	mem, err := s.collector.Memory(ctx)
	if err != nil {
		return nil, err
	}
	host, err := s.collector.Host(ctx)
	if err != nil {
		return nil, err
	}

	disks, err := s.collector.Disks(ctx)
	if err != nil {
		s.logger.Warnw("读取磁盘信息失败", "error", err)
		disks = nil
	}

	info := &model.ServerInfo{
		CPU: cpuInfo(cpu),
		Mem: model.MemInfo{
			Total: gigabytes(mem.Total),
			Used:  gigabytes(mem.Total - mem.Available),
			Free:  gigabytes(mem.Available),
			Usage: percent(float64(mem.Total-mem.Available), float64(mem.Total)),
		},
		Sys: model.SysInfo{
			ComputerName: host.Hostname,
			ComputerIP:   host.IP,
			UserDir:      host.WorkDir,
			OSName:       host.OS,
			OSArch:       host.Arch,
		},
		SysFiles: make([]model.DiskInfo, 0, len(disks)),
	}
	for _, d := range disks {
		info.SysFiles = append(info.SysFiles, model.DiskInfo{
			DirName:  d.Mountpoint,
			TypeName: d.Fstype,
			Total:    gigabytes(d.Total) + "GB",
			Used:     gigabytes(d.Used) + "GB",
			Free:     gigabytes(d.Free) + "GB",
			Usage:    percent(float64(d.Used), float64(d.Total)),
		})
	}
	return info, nil
}

func cpuInfo(t sysinfo.CPUTimes) model.CPUInfo {
	total := t.User + t.System + t.Idle + t.Iowait
	return model.CPUInfo{
		CPUNum: t.Num,
		Total:  total,
		Sys:    percent(t.System, total),
		Used:   percent(t.User, total),
		Wait:   percent(t.Iowait, total),
		Free:   percent(t.Idle, total),
	}
}

func percent(part, total float64) string {
	if total <= 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", part/total*100)
}

func gigabytes(n uint64) string {
	return fmt.Sprintf("%.2f", float64(n)/(1<<30))
}
