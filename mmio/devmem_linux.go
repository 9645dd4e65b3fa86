//go:build linux

package mmio

import (
	"encoding/binary"
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

const memFile = "/dev/mem"

// DevMem is a register region mapped from physical memory via /dev/mem.
type DevMem struct {
	buf  mmap.MMap
	base uintptr // offset of the region inside the mapping
	size int
}

// MapDevMem maps size bytes of registers at physAddr. Since the mapping has
// to start at a page boundary, the physical address is rounded down to the
// nearest page and the remainder kept as an offset into the mapping.
func MapDevMem(physAddr uintptr, size int) (*DevMem, error) {
	f, err := os.OpenFile(memFile, os.O_RDWR|os.O_SYNC, os.ModePerm)
	if err != nil {
		return nil, fmt.Errorf("couldn't open %s: %v", memFile, err)
	}

	pageSize := uintptr(os.Getpagesize())
	mapAddr := physAddr &^ (pageSize - 1)
	mapSize := size + int(physAddr-mapAddr)
	mm, err := mmap.MapRegion(f, mapSize, mmap.RDWR, 0, int64(mapAddr))
	f.Close() // Ignore error
	if err != nil {
		return nil, fmt.Errorf("couldn't map region (%v, %v): %v", physAddr, size, err)
	}

	return &DevMem{buf: mm, base: physAddr - mapAddr, size: size}, nil
}

func (d *DevMem) ReadRegister(off uint32) uint32 {
	i := d.base + uintptr(off)
	return binary.LittleEndian.Uint32(d.buf[i : i+4])
}

func (d *DevMem) WriteRegister(off uint32, v uint32) {
	i := d.base + uintptr(off)
	binary.LittleEndian.PutUint32(d.buf[i:i+4], v)
}

// Close unmaps the region. The DevMem must not be used afterwards.
func (d *DevMem) Close() error {
	return d.buf.Unmap()
}
