package bus_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/altairemu/dcdd/bus"
)

// recordingDisk records every controller call it receives.
type recordingDisk struct {
	calls []string
}

func (d *recordingDisk) Select(drive uint8)     { d.record("select %02X", drive) }
func (d *recordingDisk) Status() uint8          { d.record("status"); return 0xA5 }
func (d *recordingDisk) Function(control uint8) { d.record("function %02X", control) }
func (d *recordingDisk) SectorPosition() uint8  { d.record("sector"); return 0xC0 }
func (d *recordingDisk) Write(data uint8)       { d.record("write %02X", data) }
func (d *recordingDisk) Read() uint8            { d.record("read"); return 0x42 }

func (d *recordingDisk) record(format string, args ...any) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

// recordingBus records every fallback port operation.
type recordingBus struct {
	calls []string
}

func (b *recordingBus) In(port uint8) uint8 {
	b.calls = append(b.calls, fmt.Sprintf("in %02X", port))
	return 0x99
}

func (b *recordingBus) Out(port uint8, data uint8) {
	b.calls = append(b.calls, fmt.Sprintf("out %02X %02X", port, data))
}

func TestDiskPortRouting(t *testing.T) {
	disk := &recordingDisk{}
	adapter := bus.NewAdapter(disk, nil)

	adapter.Out(0x08, 0x02)
	adapter.Out(0x09, 0x04)
	adapter.Out(0x0A, 0x55)
	assert.EqualValues(t, 0xA5, adapter.In(0x08))
	assert.EqualValues(t, 0xC0, adapter.In(0x09))
	assert.EqualValues(t, 0x42, adapter.In(0x0A))

	assert.Equal(
		t,
		[]string{"select 02", "function 04", "write 55", "status", "sector", "read"},
		disk.calls,
		"port operations routed to the wrong controller calls")
}

func TestUnclaimedPortsDelegate(t *testing.T) {
	disk := &recordingDisk{}
	fallback := &recordingBus{}
	adapter := bus.NewAdapter(disk, fallback)

	assert.EqualValues(t, 0x99, adapter.In(0x10))
	adapter.Out(0x18, 0x7F)

	assert.Equal(t, []string{"in 10", "out 18 7F"}, fallback.calls)
	assert.Empty(t, disk.calls, "non-disk port leaked into the controller")
}

func TestUnclaimedPortsWithoutFallback(t *testing.T) {
	disk := &recordingDisk{}
	adapter := bus.NewAdapter(disk, nil)

	assert.Zero(t, adapter.In(0x10), "empty bus slot must read 0x00")
	adapter.Out(0x18, 0x7F) // must not panic
	assert.Empty(t, disk.calls)
}
