// Package controller implements the 88-DCDD disk controller state machine:
// four drives, a shared copy-on-write patch pool, and the port-level
// operations the 8080 drives through IN/OUT on ports 0x08-0x0A.
//
// Everything here is synchronous and single-threaded by design. Each port
// operation is a plain function call that runs to completion inside the CPU's
// instruction loop; there are no goroutines, callbacks, or locks. Port
// operations never return errors either - the 8080 has no channel to receive
// one, so failures degrade exactly the way the hardware would: reads of an
// empty drive return fixed bytes, lost writes vanish, and the status register
// is the only feedback.
package controller

import (
	"github.com/rs/zerolog"

	"github.com/altairemu/dcdd"
	"github.com/altairemu/dcdd/errors"
	"github.com/altairemu/dcdd/patchpool"
)

// Controller owns the four drives and the patch pool they share, and routes
// every port operation to the currently selected drive.
type Controller struct {
	drives  [dcdd.MaxDrives]Drive
	current uint8
	pool    *patchpool.Pool
	log     zerolog.Logger
}

// New creates a controller with all drives empty and drive 0 selected. Each
// controller owns its own patch pool, so independent controllers can coexist
// (unit tests rely on this).
func New(log zerolog.Logger) *Controller {
	ctl := &Controller{
		pool: patchpool.New(log),
		log:  log,
	}
	for i := range ctl.drives {
		ctl.drives[i].pool = ctl.pool
		ctl.drives[i].log = log.With().Int("drive", i).Logger()
		ctl.drives[i].reset()
	}
	return ctl
}

// Load attaches an image to a drive. Any patches the drive accumulated
// against its previous image are discarded, positional state resets, and the
// status register reflects a ready drive at track 0. Errors surface here,
// before the drive commits to the new image; the port surface itself never
// fails.
func (ctl *Controller) Load(drive uint8, img dcdd.ImageSource) error {
	if drive >= dcdd.MaxDrives {
		return errors.ErrArgumentOutOfRange.WithMessage("drive number out of range")
	}
	if img == nil {
		return errors.ErrNoImage
	}

	size := img.Size()
	if size > dcdd.TotalDiskSize {
		ctl.log.Warn().
			Uint8("drive", drive).
			Uint32("size", size).
			Msg("image larger than an 88-DCDD diskette; excess is unreachable")
	} else if size%dcdd.SectorSize != 0 {
		ctl.log.Warn().
			Uint8("drive", drive).
			Uint32("size", size).
			Msg("image is not a whole number of sectors")
	}

	ctl.drives[drive].attach(img)
	ctl.log.Debug().
		Uint8("drive", drive).
		Uint32("size", size).
		Msg("disk image loaded")
	return nil
}

// Unload detaches a drive's image and drops its patches. A drive with no
// image behaves like an empty drive bay: status reads the reset value, data
// reads return 0x00, position reads return 0xC0, writes disappear.
func (ctl *Controller) Unload(drive uint8) {
	if drive >= dcdd.MaxDrives {
		return
	}
	ctl.pool.Clear(&ctl.drives[drive].patches)
	ctl.drives[drive].reset()
}

// Select handles OUT 0x08: the low four bits pick the drive, and anything
// outside the four real drives falls back to drive 0.
func (ctl *Controller) Select(drive uint8) {
	selected := drive & dcdd.DriveSelectMask
	if selected >= dcdd.MaxDrives {
		selected = 0
	}
	ctl.current = selected
}

// Status handles IN 0x08: the selected drive's active-low status register.
func (ctl *Controller) Status() uint8 {
	return ctl.drives[ctl.current].status
}

// Function handles OUT 0x09: step, head, and write-enable control bits.
func (ctl *Controller) Function(control uint8) {
	ctl.drives[ctl.current].controlFunction(control)
}

// SectorPosition handles IN 0x09: reposition at the next sector and return
// the packed position byte.
func (ctl *Controller) SectorPosition() uint8 {
	return ctl.drives[ctl.current].sectorPosition()
}

// Write handles OUT 0x0A: one data byte into the sector window.
func (ctl *Controller) Write(data uint8) {
	ctl.drives[ctl.current].writeByte(data)
}

// Read handles IN 0x0A: one data byte out of the sector window.
func (ctl *Controller) Read() uint8 {
	return ctl.drives[ctl.current].readByte()
}

// SelectedDrive returns the index of the currently selected drive.
func (ctl *Controller) SelectedDrive() uint8 {
	return ctl.current
}

// Drive returns the drive at `index` for inspection. It panics on a bad
// index; this accessor is for hosts and tests, not the port surface.
func (ctl *Controller) Drive(index uint8) *Drive {
	if index >= dcdd.MaxDrives {
		panic(errors.ErrArgumentOutOfRange)
	}
	return &ctl.drives[index]
}

// PatchStats returns how many patch slots are live and the arena capacity.
func (ctl *Controller) PatchStats() (used, capacity int) {
	return ctl.pool.Used(), ctl.pool.Capacity()
}

// AuditPool cross-checks the patch arena against every drive's hash table.
// Test support; a healthy controller always passes.
func (ctl *Controller) AuditPool() error {
	tables := make([]*patchpool.HashTable, dcdd.MaxDrives)
	for i := range ctl.drives {
		tables[i] = &ctl.drives[i].patches
	}
	return ctl.pool.Audit(tables...)
}
