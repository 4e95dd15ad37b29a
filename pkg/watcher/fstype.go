package watcher

// FilesystemType is a coarse classification of the filesystem holding the
// walkthrough. Network filesystems rarely deliver inotify events for writes
// made on other hosts, so the watcher polls on them.
type FilesystemType int

const (
	FSTypeUnknown FilesystemType = iota
	FSTypeLocal
	FSTypeNFS
	FSTypeSMB
	FSTypeFUSE
)

func (t FilesystemType) String() string {
	switch t {
	case FSTypeLocal:
		return "local"
	case FSTypeNFS:
		return "nfs"
	case FSTypeSMB:
		return "smb"
	case FSTypeFUSE:
		return "fuse"
	default:
		return "unknown"
	}
}

// detectFilesystemTypeFunc is swapped in tests.
var detectFilesystemTypeFunc = detectFilesystemType

// DetectFilesystemType classifies the filesystem containing path.
func DetectFilesystemType(path string) FilesystemType {
	if path == "" {
		return FSTypeUnknown
	}
	return detectFilesystemTypeFunc(path)
}

func isRemoteFilesystem(t FilesystemType) bool {
	switch t {
	case FSTypeNFS, FSTypeSMB, FSTypeFUSE:
		return true
	default:
		return false
	}
}
