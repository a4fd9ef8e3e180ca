// Package bus exposes the disk controller to the emulated 8080 through the
// machine's port-mapped I/O surface. The CPU core calls In/Out for every IN
// and OUT instruction; the adapter claims the three 88-DCDD ports and hands
// everything else to the surrounding emulator.
package bus

import (
	"github.com/altairemu/dcdd"
)

// PortBus is the contract between the CPU core and any port-mapped device:
// one call per IN instruction, one per OUT. Calls are synchronous and totally
// ordered by the CPU's instruction sequence.
type PortBus interface {
	In(port uint8) uint8
	Out(port uint8, data uint8)
}

// DiskPorts is what the adapter needs from the disk controller. The
// controller package's Controller satisfies it.
type DiskPorts interface {
	Select(drive uint8)
	Status() uint8
	Function(control uint8)
	SectorPosition() uint8
	Write(data uint8)
	Read() uint8
}

// Adapter routes ports 0x08-0x0A to the disk controller and delegates every
// other port to a fallback bus. With a nil fallback, unclaimed IN reads
// return 0x00 and unclaimed OUT writes disappear, which is what an empty bus
// slot does.
type Adapter struct {
	disk     DiskPorts
	fallback PortBus
}

// NewAdapter wires a controller onto the bus. `fallback` may be nil.
func NewAdapter(disk DiskPorts, fallback PortBus) *Adapter {
	return &Adapter{disk: disk, fallback: fallback}
}

// In dispatches an IN instruction.
func (a *Adapter) In(port uint8) uint8 {
	switch port {
	case dcdd.PortDriveStatus:
		return a.disk.Status()
	case dcdd.PortFunction:
		return a.disk.SectorPosition()
	case dcdd.PortData:
		return a.disk.Read()
	default:
		if a.fallback != nil {
			return a.fallback.In(port)
		}
		return 0x00
	}
}

// Out dispatches an OUT instruction.
func (a *Adapter) Out(port uint8, data uint8) {
	switch port {
	case dcdd.PortDriveStatus:
		a.disk.Select(data)
	case dcdd.PortFunction:
		a.disk.Function(data)
	case dcdd.PortData:
		a.disk.Write(data)
	default:
		if a.fallback != nil {
			a.fallback.Out(port, data)
		}
	}
}
