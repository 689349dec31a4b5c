//go:build darwin

package mmap

import (
	"os"
	"syscall"
	"unsafe"
)

const madvSequential = 2

func mapFile(f *os.File, size int) ([]byte, bool, error) {
	data, err := syscall.Mmap(int(f.Fd()), 0, size, syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, false, err
	}
	// advisory only
	_, _, _ = syscall.Syscall(syscall.SYS_MADVISE, uintptr(unsafe.Pointer(&data[0])), uintptr(len(data)), madvSequential)
	return data, true, nil
}

func munmap(b []byte) error {
	return syscall.Munmap(b)
}
