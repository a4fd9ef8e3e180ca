package bus_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altairemu/dcdd"
	"github.com/altairemu/dcdd/bus"
	"github.com/altairemu/dcdd/controller"
	"github.com/altairemu/dcdd/image"
	"github.com/altairemu/dcdd/machine"
	dcddtest "github.com/altairemu/dcdd/testing"
)

// Reproduces the disk boot sequence against a real controller, driving the
// bus exactly the way the boot ROM does: select drive 0, load the head, poll
// the head-loaded status line, wait for sector-true, then stream the first
// sector into memory at 0x0000.
//
// The boot image's first sector is a single HLT opcode followed by zeros, so
// a successful boot leaves 0x76 at address 0 and zeros behind it.
func TestBootSequence(t *testing.T) {
	ctl := controller.New(zerolog.Nop())
	bootImage := dcddtest.CreateBootImage([]byte{0x76}, t)
	require.NoError(t, ctl.Load(0, image.NewMemory(bootImage)))

	var mem machine.Memory
	mem.LoadBootROM(machine.BootROMAddress)

	adapter := bus.NewAdapter(ctl, nil)

	// OUT 08h: select drive 0.
	adapter.Out(dcdd.PortDriveStatus, 0x00)

	// OUT 09h: head load.
	adapter.Out(dcdd.PortFunction, dcdd.ControlHeadLoad)

	// IN 08h / ANI 04h: spin until the head reports loaded (active-low).
	var status uint8
	for polls := 0; ; polls++ {
		require.Less(t, polls, 16, "head never reported loaded")
		status = adapter.In(dcdd.PortDriveStatus)
		if status&uint8(dcdd.StatusHeadLoaded) == 0 {
			break
		}
	}
	// Freshly loaded drive with the head down: write disabled, head loaded,
	// at track 0, data available.
	assert.EqualValues(t, 0x21, status)

	// IN 09h / ANI 01h: spin until sector-true.
	var position uint8
	for polls := 0; ; polls++ {
		require.Less(t, polls, 2*dcdd.SectorsPerTrack, "sector start never came around")
		position = adapter.In(dcdd.PortFunction)
		if position&0x01 == 0 {
			break
		}
	}
	assert.EqualValues(t, 0xC0, position, "boot must start streaming at sector 0")

	// The MOV M,A / INX H / DCR B loop: 137 bytes from port 0Ah to 0x0000.
	address := uint16(0x0000)
	for i := 0; i < dcdd.SectorSize; i++ {
		mem.Write8(address, adapter.In(dcdd.PortData))
		address++
	}

	assert.EqualValues(t, 0x76, mem.Read8(0x0000), "HLT opcode must land at 0x0000")
	for addr := uint16(0x0001); addr < uint16(dcdd.SectorSize); addr++ {
		require.Zerof(t, mem.Read8(addr), "address %#04x should be zero", addr)
	}

	// The boot ROM itself is still intact up at 0xFF00.
	assert.EqualValues(t, 0x31, mem.Read8(machine.BootROMAddress))
}
