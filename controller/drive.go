package controller

import (
	"github.com/rs/zerolog"

	"github.com/altairemu/dcdd"
	"github.com/altairemu/dcdd/patchpool"
)

// sectorBufferSize is the sector window plus two bytes of overrun tolerance.
// The write pointer clamps at the last tolerance byte, never past it.
const sectorBufferSize = dcdd.SectorSize + 2

// endOfTrack is the transient sector value after the head has advanced past
// sector 31; the next position read wraps it to 0.
const endOfTrack = dcdd.SectorsPerTrack

// Drive is one of the four 88-DCDD drives. All mutation happens through the
// owning [Controller]'s port operations on the CPU goroutine.
type Drive struct {
	track  uint8
	sector uint8
	// status is the active-low register read from port 0x08. Only assert and
	// deassert touch it.
	status uint8
	// imagePosition is the byte offset of the current sector window in the
	// image.
	imagePosition  uint32
	sectorBuffer   [sectorBufferSize]byte
	sectorPointer  uint8
	writeCounter   uint8
	haveSectorData bool
	sectorDirty    bool
	patches        patchpool.HashTable
	loaded         bool
	image          dcdd.ImageSource

	pool *patchpool.Pool
	log  zerolog.Logger
}

// assert makes the condition TRUE on the wire: active-low, so the bit clears.
func (drive *Drive) assert(flag dcdd.StatusFlag) {
	drive.status &^= uint8(flag)
}

// deassert makes the condition FALSE on the wire: the bit sets.
func (drive *Drive) deassert(flag dcdd.StatusFlag) {
	drive.status |= uint8(flag)
}

// reset puts the drive into the hardware power-on state. Patches are the
// caller's problem; reset does not touch the pool.
func (drive *Drive) reset() {
	drive.track = 0
	drive.sector = 0
	drive.status = dcdd.StatusDefault
	drive.imagePosition = 0
	drive.sectorPointer = 0
	drive.writeCounter = 0
	drive.haveSectorData = false
	drive.sectorDirty = false
	drive.loaded = false
	drive.image = nil
	drive.patches.Reset()
}

// attach binds a new image and reflects the initial mechanical state in the
// status register: head at track 0, not moving, sector true.
func (drive *Drive) attach(img dcdd.ImageSource) {
	drive.pool.Clear(&drive.patches)
	drive.reset()

	drive.image = img
	drive.loaded = true
	drive.assert(dcdd.StatusMoveHead)
	drive.assert(dcdd.StatusTrack0)
	drive.assert(dcdd.StatusSector)
}

// flushSector moves a dirty sector buffer into the patch store. On pool
// exhaustion the write is lost; the pool has already logged that once. The
// buffer is invalidated either way.
func (drive *Drive) flushSector() {
	if !drive.sectorDirty {
		return
	}

	sectorIndex := dcdd.SectorIndexForOffset(drive.imagePosition)
	slot, ok := drive.pool.GetOrCreate(&drive.patches, sectorIndex)
	if ok {
		copy(drive.pool.Data(slot), drive.sectorBuffer[:dcdd.SectorSize])
	}

	drive.sectorDirty = false
	drive.haveSectorData = false
	drive.sectorPointer = 0
}

// seekToTrack repositions the window at sector 0 of the current track,
// flushing any pending write first.
func (drive *Drive) seekToTrack() {
	if !drive.loaded {
		return
	}

	drive.flushSector()

	drive.imagePosition = uint32(drive.track) * dcdd.TrackSize
	drive.haveSectorData = false
	drive.sectorPointer = 0
	drive.sector = 0
}

// controlFunction dispatches a byte written to port 0x09. Bits apply in a
// fixed order: step in, step out, head load, head unload, write enable. The
// interrupt and head-current bits are accepted without effect.
func (drive *Drive) controlFunction(control uint8) {
	if !drive.loaded {
		return
	}

	if control&dcdd.ControlStepIn != 0 {
		if drive.track < dcdd.TotalTracks-1 {
			drive.track++
		}
		if drive.track != 0 {
			drive.deassert(dcdd.StatusTrack0)
		}
		drive.seekToTrack()
	}

	if control&dcdd.ControlStepOut != 0 {
		if drive.track > 0 {
			drive.track--
		}
		if drive.track == 0 {
			drive.assert(dcdd.StatusTrack0)
		}
		drive.seekToTrack()
	}

	if control&dcdd.ControlHeadLoad != 0 {
		drive.assert(dcdd.StatusHeadLoaded)
		drive.assert(dcdd.StatusNRDA)
	}

	if control&dcdd.ControlHeadUnload != 0 {
		drive.deassert(dcdd.StatusHeadLoaded)
	}

	if control&dcdd.ControlWriteEnable != 0 {
		drive.assert(dcdd.StatusENWD)
		drive.writeCounter = 0
	}
}

// sectorPosition implements the port 0x09 read: flush, reposition the window
// at the current sector, and return the packed position byte
//
//	1 1 s4 s3 s2 s1 s0 T
//
// where T=0 means the window sits at the start of a sector. Repositioning
// zeroes the window pointer, so the byte always reports sector-true; software
// polls this bit and streams as soon as it sees it low. The sector number
// post-increments, wrapping to 0 after sector 31.
func (drive *Drive) sectorPosition() uint8 {
	if !drive.loaded {
		return 0xC0
	}

	if drive.sector == endOfTrack {
		drive.sector = 0
	}

	drive.flushSector()

	drive.imagePosition = uint32(drive.track)*dcdd.TrackSize +
		uint32(drive.sector)*dcdd.SectorSize
	drive.sectorPointer = 0
	drive.haveSectorData = false

	position := uint8(0xC0)
	position |= drive.sector << 1
	if drive.sectorPointer != 0 {
		position |= 0x01
	}

	drive.sector++
	return position
}

// writeByte accepts one data byte from port 0x0A. The pointer tolerates two
// bytes of overrun and then sticks at the last buffer cell. After the 137th
// byte of a write sequence the sector flushes to the patch store and write
// enable disarms itself. Bytes that arrive while write enable is disarmed are
// dropped.
func (drive *Drive) writeByte(data uint8) {
	if !drive.loaded {
		return
	}

	// ENWD is active-low: a set bit means write enable is not armed.
	if drive.status&uint8(dcdd.StatusENWD) != 0 {
		return
	}

	if drive.sectorPointer >= sectorBufferSize {
		drive.sectorPointer = sectorBufferSize - 1
	}

	drive.sectorBuffer[drive.sectorPointer] = data
	drive.sectorPointer++
	drive.sectorDirty = true
	drive.haveSectorData = true

	drive.writeCounter++
	if drive.writeCounter == dcdd.SectorSize {
		drive.flushSector()
		drive.writeCounter = 0
		drive.deassert(dcdd.StatusENWD)
	}
}

// readByte returns one data byte on port 0x0A. The first read after a
// reposition fills the window from the image and overlays the sector's patch
// if one exists. The pointer only streams forward; positioning is the job of
// the port 0x09 read, not this path.
func (drive *Drive) readByte() uint8 {
	if !drive.loaded {
		return 0x00
	}

	if !drive.haveSectorData {
		drive.fillSectorBuffer()
	}

	if drive.sectorPointer >= sectorBufferSize {
		drive.sectorPointer = sectorBufferSize - 1
	}

	data := drive.sectorBuffer[drive.sectorPointer]
	drive.sectorPointer++
	return data
}

// fillSectorBuffer loads the current window from the image and applies the
// drive's patch for that sector, if any. Image errors degrade to a zeroed
// window: the CPU has no way to hear about them.
func (drive *Drive) fillSectorBuffer() {
	drive.sectorPointer = 0
	drive.sectorBuffer = [sectorBufferSize]byte{}

	err := drive.image.ReadSector(drive.imagePosition, drive.sectorBuffer[:dcdd.SectorSize])
	if err != nil {
		drive.log.Warn().
			Err(err).
			Uint32("offset", drive.imagePosition).
			Msg("image read failed; returning zeroed sector")
	}
	drive.haveSectorData = true

	sectorIndex := dcdd.SectorIndexForOffset(drive.imagePosition)
	if slot, found := drive.pool.Find(&drive.patches, sectorIndex); found {
		copy(drive.sectorBuffer[:dcdd.SectorSize], drive.pool.Data(slot))
	}
}

// Track returns the current head position.
func (drive *Drive) Track() uint8 {
	return drive.track
}

// Loaded reports whether an image is attached.
func (drive *Drive) Loaded() bool {
	return drive.loaded
}
