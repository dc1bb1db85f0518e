package shell

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/Gaurav-Gosain/termdesk/internal/config"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

type sysInfo struct {
	cpu, mem float64
	ok       bool
}

type sysInfoMsg struct {
	CPU float64
	Mem float64
	Err error
}

// sampleSysInfo reads host CPU and memory usage after delay.
func sampleSysInfo(delay time.Duration) tea.Cmd {
	read := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		var msg sysInfoMsg
		pct, err := cpu.PercentWithContext(ctx, 0, false)
		if err != nil {
			msg.Err = err
			return msg
		}
		if len(pct) > 0 {
			msg.CPU = pct[0]
		}
		vm, err := mem.VirtualMemoryWithContext(ctx)
		if err != nil {
			msg.Err = err
			return msg
		}
		msg.Mem = vm.UsedPercent
		return msg
	}
	if delay <= 0 {
		return read
	}
	return tea.Tick(delay, func(time.Time) tea.Msg { return read() })
}

func (m *Model) handleSysInfo(msg sysInfoMsg) tea.Cmd {
	if msg.Err != nil {
		if m.sys.ok {
			m.logger.Debug("system info unavailable", "err", msg.Err)
		}
		m.sys = sysInfo{}
	} else {
		m.sys = sysInfo{cpu: msg.CPU, mem: msg.Mem, ok: true}
	}
	if !m.sysInfo {
		return nil
	}
	return sampleSysInfo(config.SysInfoInterval)
}
