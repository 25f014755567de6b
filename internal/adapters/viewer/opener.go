package viewer

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"mediasweep/internal/ports"
)

// ViewerEnvVar names the program used instead of the system default
const ViewerEnvVar = "MEDIASWEEP_VIEWER"

// PathResolver maps storage-relative paths to filesystem paths
type PathResolver interface {
	Abs(file string) (string, error)
}

// Opener implements ports.FileViewer
type Opener struct {
	paths  PathResolver
	viewer string
}

// Ensure Opener implements ports.FileViewer
var _ ports.FileViewer = (*Opener)(nil)

// NewOpener creates an opener for files under the storage root
func NewOpener(paths PathResolver) *Opener {
	return &Opener{
		paths:  paths,
		viewer: os.Getenv(ViewerEnvVar),
	}
}

// OpenFile shows a stored file without waiting for the viewer to exit
func (o *Opener) OpenFile(file string) error {
	cmd, err := o.Command(file)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start viewer: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Command returns the exec.Cmd that shows a stored file
func (o *Opener) Command(file string) (*exec.Cmd, error) {
	abs, err := o.paths.Abs(file)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", file, err)
	}

	if o.viewer != "" {
		return exec.Command(o.viewer, abs), nil
	}

	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", abs), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", abs), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", "", abs), nil
	default:
		return nil, fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}
