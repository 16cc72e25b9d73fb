package sdutils

import (
	"github.com/ZenLiuCN/fn"
	"github.com/spf13/afero"
)

// MountPath is where a FAT32 formatted sd card is mounted.
const MountPath = "fs:/vol/external01/"

// probeDir reports whether path can be opened as a directory.
func probeDir(fs afero.Fs, path string) bool {
	f, err := fs.Open(path)
	if err != nil {
		return false
	}
	defer fn.IgnoreClose(f)
	info, err := f.Stat()
	return err == nil && info.IsDir()
}
