//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-ps"
)

// DetectPeers returns the PIDs of other running processes with the given
// executable name. The current process is never included.
func DetectPeers(executable string) ([]int, error) {
	processList, err := ps.Processes()
	if err != nil {
		return nil, err
	}

	thisProcessID := os.Getpid()

	var peers []int

	for _, process := range processList {
		processID := process.Pid()
		if processID == thisProcessID {
			continue
		}

		if process.Executable() != executable {
			continue
		}

		peers = append(peers, processID)
	}

	return peers, nil
}

// ExecutableName returns the base name of the running binary.
func ExecutableName() string {
	path, err := os.Executable()
	if err != nil {
		return filepath.Base(os.Args[0])
	}

	return filepath.Base(path)
}
