package sysinfo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkipPartition(t *testing.T) {
	tests := []struct {
		fstype, device, mountpoint string
		want                       bool
	}{
		{"ext4", "/dev/sda1", "/", false},
		{"xfs", "/dev/nvme0n1p2", "/data", false},
		{"tmpfs", "tmpfs", "/run", true},
		{"devtmpfs", "udev", "/dev", true},
		{"ext4", "none", "/mnt/x", true},
		{"proc", "proc", "/proc", true},
	}
	for _, tt := range tests {
		t.Run(tt.device+tt.mountpoint, func(t *testing.T) {
			assert.Equal(t, tt.want, skipPartition(tt.fstype, tt.device, tt.mountpoint))
		})
	}
}

func TestCollectorReadsLocalHost(t *testing.T) {
	c := NewCollector()
	ctx := context.Background()

	cpuTimes, err := c.CPU(ctx)
	require.NoError(t, err)
	assert.Positive(t, cpuTimes.Num)

	m, err := c.Memory(ctx)
	require.NoError(t, err)
	assert.Positive(t, m.Total)
	assert.LessOrEqual(t, m.Available, m.Total)

	h, err := c.Host(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, h.OS)
	assert.NotEmpty(t, h.Arch)
}
