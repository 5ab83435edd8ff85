// Package sysinfo 读取主机的 CPU、内存、系统与磁盘信息。
package sysinfo

import (
	"context"
	"fmt"
	"net/netip"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
)

// CPUTimes 是开机以来所有核心累计的 CPU 时间（秒）。
type CPUTimes struct {
	Num    int
	User   float64
	System float64
	Idle   float64
	Iowait float64
}

// Memory 是物理内存的字节数。
type Memory struct {
	Total     uint64
	Available uint64
}

// Host 是主机的基本信息。
type Host struct {
	Hostname string
	IP       string
	WorkDir  string
	OS       string
	Arch     string
}

// Disk 是一个挂载点的容量。
type Disk struct {
	Mountpoint string
	Fstype     string
	Total      uint64
	Used       uint64
	Free       uint64
}

// Collector 通过 gopsutil 读取主机信息。
type Collector struct{}

// NewCollector 创建 Collector。
func NewCollector() *Collector { return &Collector{} }

// CPU 返回所有核心合计的 CPU 时间。
func (c *Collector) CPU(ctx context.Context) (CPUTimes, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return CPUTimes{}, fmt.Errorf("读取 CPU 时间失败: %w", err)
	}
	n, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return CPUTimes{}, fmt.Errorf("读取 CPU 核心数失败: %w", err)
	}

	out := CPUTimes{Num: n}
	for _, t := range times {
		out.User += t.User + t.Nice
		out.System += t.System + t.Irq + t.Softirq
		out.Idle += t.Idle
		out.Iowait += t.Iowait
	}
	return out, nil
}

// Memory 返回物理内存总量与可用量。
func (c *Collector) Memory(ctx context.Context) (Memory, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Memory{}, fmt.Errorf("读取内存信息失败: %w", err)
	}
	return Memory{Total: vm.Total, Available: vm.Available}, nil
}

// Host 返回主机名、对外 IPv4 地址、工作目录与系统信息。
func (c *Collector) Host(ctx context.Context) (Host, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return Host{}, fmt.Errorf("读取主机信息失败: %w", err)
	}
	wd, _ := os.Getwd()
	arch := info.KernelArch
	if arch == "" {
		arch = runtime.GOARCH
	}
	return Host{
		Hostname: info.Hostname,
		IP:       c.externalIPv4(ctx),
		WorkDir:  wd,
		OS:       info.OS,
		Arch:     arch,
	}, nil
}

// externalIPv4 返回第一个非回环的 IPv4 地址，没有时返回空串。
func (c *Collector) externalIPv4(ctx context.Context) string {
	ifaces, err := net.InterfacesWithContext(ctx)
	if err != nil {
		return ""
	}
	for _, iface := range ifaces {
		if slices.Contains(iface.Flags, "loopback") {
			continue
		}
		for _, a := range iface.Addrs {
			prefix, err := netip.ParsePrefix(a.Addr)
			if err != nil {
				continue
			}
			if ip := prefix.Addr(); ip.Is4() && !ip.IsLoopback() {
				return ip.String()
			}
		}
	}
	return ""
}

// 这些伪文件系统不计入磁盘列表。
var virtualFstypes = []string{"devtmpfs", "tmpfs", "none", "overlay", "squashfs", "proc", "sysfs"}

var virtualMounts = []string{"/dev", "/sys", "/proc"}

// Disks 返回物理分区的容量，跳过伪文件系统。
func (c *Collector) Disks(ctx context.Context) ([]Disk, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("读取磁盘分区失败: %w", err)
	}

	disks := make([]Disk, 0, len(parts))
	for _, p := range parts {
		if skipPartition(p.Fstype, p.Device, p.Mountpoint) {
			continue
		}
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil || usage.Total == 0 {
			continue
		}
		disks = append(disks, Disk{
			Mountpoint: p.Mountpoint,
			Fstype:     p.Fstype,
			Total:      usage.Total,
			Used:       usage.Used,
			Free:       usage.Free,
		})
	}
	return disks, nil
}

func skipPartition(fstype, device, mountpoint string) bool {
	for _, v := range virtualFstypes {
		if strings.HasPrefix(fstype, v) || strings.HasPrefix(device, v) {
			return true
		}
	}
	return slices.Contains(virtualMounts, mountpoint)
}
