// Package machine holds the emulated Altair's main memory and the disk boot
// ROM that bootstraps CP/M-style software off drive 0.
package machine

// MemorySize is the full 8080 address space.
const MemorySize = 64 * 1024

// Memory is the Altair's 64 KiB of RAM. The zero value is all-zeros RAM,
// ready to use. Word accesses are little-endian, matching the 8080.
type Memory struct {
	cells [MemorySize]byte
}

// Read8 returns the byte at `address`.
func (m *Memory) Read8(address uint16) uint8 {
	return m.cells[address]
}

// Write8 stores `value` at `address`.
func (m *Memory) Write8(address uint16, value uint8) {
	m.cells[address] = value
}

// Read16 returns the little-endian word at `address`. The high byte wraps
// around the top of the address space, as the 8080 does.
func (m *Memory) Read16(address uint16) uint16 {
	return uint16(m.cells[address]) | uint16(m.cells[address+1])<<8
}

// Write16 stores `value` at `address` as a little-endian word.
func (m *Memory) Write16(address uint16, value uint16) {
	m.cells[address] = uint8(value)
	m.cells[address+1] = uint8(value >> 8)
}

// LoadBytes copies a blob into memory starting at `address`, wrapping at the
// top of the address space.
func (m *Memory) LoadBytes(address uint16, data []byte) {
	for i, b := range data {
		m.cells[address+uint16(i)] = b
	}
}

// Bytes returns a copy of the region [address, address+length). Wraps at the
// top of the address space.
func (m *Memory) Bytes(address uint16, length int) []byte {
	out := make([]byte, length)
	for i := range out {
		out[i] = m.cells[address+uint16(i)]
	}
	return out
}
