//go:build windows

package diskspace

import (
	"golang.org/x/sys/windows"
)

func statfs(path string) (Stats, error) {
	dir, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return Stats{}, err
	}

	var freeToCaller, total, totalFree uint64
	if err := windows.GetDiskFreeSpaceEx(dir, &freeToCaller, &total, &totalFree); err != nil {
		return Stats{}, err
	}

	return Stats{Blocks: total, BlockSize: 1}, nil
}
