package machine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altairemu/dcdd/machine"
)

func TestMemoryReadWrite8(t *testing.T) {
	var mem machine.Memory

	assert.Zero(t, mem.Read8(0x1234), "fresh RAM must read zero")

	mem.Write8(0x1234, 0xAB)
	assert.EqualValues(t, 0xAB, mem.Read8(0x1234))
	assert.Zero(t, mem.Read8(0x1233), "neighboring cell modified")
	assert.Zero(t, mem.Read8(0x1235), "neighboring cell modified")
}

func TestMemoryReadWrite16LittleEndian(t *testing.T) {
	var mem machine.Memory

	mem.Write16(0x2000, 0xBEEF)
	assert.EqualValues(t, 0xEF, mem.Read8(0x2000), "low byte first")
	assert.EqualValues(t, 0xBE, mem.Read8(0x2001), "high byte second")
	assert.EqualValues(t, 0xBEEF, mem.Read16(0x2000))
}

func TestMemoryWrapAtTop(t *testing.T) {
	var mem machine.Memory

	mem.Write16(0xFFFF, 0x1234)
	assert.EqualValues(t, 0x34, mem.Read8(0xFFFF))
	assert.EqualValues(t, 0x12, mem.Read8(0x0000), "high byte must wrap to 0x0000")
}

func TestLoadBootROMCanonicalAddress(t *testing.T) {
	var mem machine.Memory
	mem.LoadBootROM(machine.BootROMAddress)

	rom := machine.BootROM()
	got := mem.Bytes(machine.BootROMAddress, len(rom))
	assert.Equal(t, rom, got, "ROM at 0xFF00 must match the assembled blob exactly")

	// Spot-check the first instructions: LXI SP / MVI A,0 / OUT 08h.
	require.EqualValues(t, 0x31, mem.Read8(0xFF00))
	require.EqualValues(t, 0xD3, mem.Read8(0xFF05))
	require.EqualValues(t, 0x08, mem.Read8(0xFF06))

	// The three jump targets point back into the ROM page.
	assert.EqualValues(t, 0xFF0B, mem.Read16(0xFF10))
	assert.EqualValues(t, 0xFF17, mem.Read16(0xFF1C))
	assert.EqualValues(t, 0xFF1E, mem.Read16(0xFF24))
}

func TestLoadBootROMRelocated(t *testing.T) {
	var mem machine.Memory
	mem.LoadBootROM(0xD000)

	// Opcodes are unchanged...
	assert.EqualValues(t, 0x31, mem.Read8(0xD000))
	assert.EqualValues(t, 0xC3, mem.Read8(0xD026), "final JMP opcode moved")

	// ...but the polling-loop targets follow the load address.
	assert.EqualValues(t, 0xD00B, mem.Read16(0xD010))
	assert.EqualValues(t, 0xD017, mem.Read16(0xD01C))
	assert.EqualValues(t, 0xD01E, mem.Read16(0xD024))

	// The boot sector destination stays at 0x0000 no matter where the ROM is.
	assert.EqualValues(t, 0x0000, mem.Read16(0xD027))
}
