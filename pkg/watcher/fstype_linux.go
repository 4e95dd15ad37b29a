//go:build linux

package watcher

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Superblock magic numbers from statfs(2).
const (
	nfsSuperMagic  = 0x6969
	smbSuperMagic  = 0x517b
	smb2SuperMagic = 0xfe534d42
	cifsMagic      = 0xff534d42
	fuseSuperMagic = 0x65735546
)

func detectFilesystemType(path string) FilesystemType {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		// The file may not exist yet; its directory decides.
		if err := unix.Statfs(filepath.Dir(path), &st); err != nil {
			return FSTypeUnknown
		}
	}
	switch uint32(st.Type) {
	case nfsSuperMagic:
		return FSTypeNFS
	case smbSuperMagic, smb2SuperMagic, cifsMagic:
		return FSTypeSMB
	case fuseSuperMagic:
		return FSTypeFUSE
	default:
		return FSTypeLocal
	}
}
