package importer

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Disk reports file-system information via statfs.
type Disk struct{}

// AvailableSpace returns the bytes available to unprivileged users at path.
// If path does not exist, the nearest existing ancestor is probed instead.
func (Disk) AvailableSpace(path string) (int64, error) {
	probe := path
	for {
		if _, err := os.Stat(probe); err == nil {
			break
		}
		parent := filepath.Dir(probe)
		if parent == probe {
			return 0, fmt.Errorf("no existing ancestor for %s", path)
		}
		probe = parent
	}

	var st unix.Statfs_t
	if err := unix.Statfs(probe, &st); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", probe, err)
	}
	return int64(st.Bavail) * st.Bsize, nil
}
