package machine

// BootROMAddress is the canonical home of the disk boot ROM, in the top page
// of memory where it can't be overwritten by the sector it loads.
const BootROMAddress = uint16(0xFF00)

// bootROM is the 8080 disk boot program, assembled for 0xFF00. It selects
// drive 0, loads the head, polls status bit 2 until the head reports loaded,
// waits on port 0x09 bit 0 for the start of a sector, streams the first 137
// bytes from port 0x0A into 0x0000..0x0088, and jumps to 0x0000.
var bootROM = []byte{
	0x31, 0x00, 0x00, // LXI SP,0000h   set stack pointer
	0x3E, 0x00, //       MVI A,00h      select drive 0
	0xD3, 0x08, //       OUT 08h
	0x3E, 0x04, //       MVI A,04h      head load
	0xD3, 0x09, //       OUT 09h
	0xDB, 0x08, //       IN 08h         read drive status
	0xE6, 0x04, //       ANI 04h        head loaded yet? (active-low)
	0xC2, 0x0B, 0xFF, // JNZ FF0Bh      spin until bit drops
	0x06, 0x89, //       MVI B,89h      137 bytes per sector
	0x21, 0x00, 0x00, // LXI H,0000h    destination
	0xDB, 0x09, //       IN 09h         sector position
	0xE6, 0x01, //       ANI 01h        at sector start?
	0xC2, 0x17, 0xFF, // JNZ FF17h      spin until sector-true
	0xDB, 0x0A, //       IN 0Ah         read data byte
	0x77,             //       MOV M,A
	0x23,             //       INX H
	0x05,             //       DCR B
	0xC2, 0x1E, 0xFF, // JNZ FF1Eh      loop for the whole sector
	0xC3, 0x00, 0x00, // JMP 0000h      run what we loaded
}

// bootROMJumps lists the three absolute jump targets inside the ROM: the
// offset of each little-endian target operand and the in-page offset it must
// point at.
var bootROMJumps = []struct {
	operandOffset uint16
	pageOffset    uint16
}{
	{16, 0x0B}, // JNZ head-load poll
	{28, 0x17}, // JNZ sector-true poll
	{36, 0x1E}, // JNZ read loop
}

// BootROM returns a copy of the boot program as assembled for
// [BootROMAddress].
func BootROM() []byte {
	out := make([]byte, len(bootROM))
	copy(out, bootROM)
	return out
}

// BootROMSize is the length of the boot program in bytes.
func BootROMSize() int {
	return len(bootROM)
}

// LoadBootROM places the boot program at `address` and fixes up its three
// absolute jump targets so the polling loops stay inside the relocated copy.
// The canonical address is [BootROMAddress]; the program always streams the
// boot sector to 0x0000 and jumps there regardless of where it runs from.
func (m *Memory) LoadBootROM(address uint16) {
	m.LoadBytes(address, bootROM)
	for _, jump := range bootROMJumps {
		m.Write16(address+jump.operandOffset, address+jump.pageOffset)
	}
}
