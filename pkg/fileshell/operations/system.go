package operations

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"runtime"
	"strconv"

	"github.com/shirou/gopsutil/v4/cpu"

	"github.com/arthur-debert/fileshell/pkg/fileshell/core"
)

// CPU describes one logical processor.
type CPU struct {
	Model string
	MHz   float64
}

// SystemInfo reports platform metadata.
type SystemInfo interface {
	EOL() string
	CPUs(ctx context.Context) ([]CPU, error)
	HomeDir() (string, error)
	Username() (string, error)
	Architecture() string
}

// HostSystem reads metadata from the running machine.
type HostSystem struct{}

// EOL implements SystemInfo
func (HostSystem) EOL() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// CPUs implements SystemInfo. When the processor table is unavailable the
// logical CPU count is reported with an unknown model.
func (HostSystem) CPUs(ctx context.Context) ([]CPU, error) {
	n := runtime.NumCPU()
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil || len(infos) == 0 {
		cpus := make([]CPU, n)
		for i := range cpus {
			cpus[i] = CPU{Model: "unknown"}
		}
		return cpus, nil
	}

	cpus := make([]CPU, 0, n)
	for _, info := range infos {
		cpus = append(cpus, CPU{Model: info.ModelName, MHz: info.Mhz})
	}
	// Some platforms report one entry per package rather than per core.
	for len(cpus) < n {
		cpus = append(cpus, cpus[len(cpus)-1])
	}
	return cpus, nil
}

// HomeDir implements SystemInfo
func (HostSystem) HomeDir() (string, error) {
	return os.UserHomeDir()
}

// Username implements SystemInfo
func (HostSystem) Username() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// Architecture implements SystemInfo
func (HostSystem) Architecture() string {
	return runtime.GOARCH
}

// OSHandler prints platform metadata selected by a flag.
type OSHandler struct {
	baseHandler
}

// NewOSHandler creates the os handler.
func NewOSHandler() *OSHandler {
	return &OSHandler{newBaseHandler(core.CommandOS, 1)}
}

var osFlags = map[string]bool{
	"--EOL":          true,
	"--cpus":         true,
	"--homedir":      true,
	"--username":     true,
	"--architecture": true,
}

// Prepare validates the flag.
func (h *OSHandler) Prepare(env *Env, args []string) (Job, error) {
	flag := args[0]
	if !osFlags[flag] {
		return nil, core.InvalidInput(h.command.String(), "unknown flag "+flag)
	}
	sys := env.System
	if sys == nil {
		sys = HostSystem{}
	}

	return func(ctx context.Context) error {
		switch flag {
		case "--EOL":
			env.Println(strconv.Quote(sys.EOL()))
		case "--cpus":
			cpus, err := sys.CPUs(ctx)
			if err != nil {
				return h.fail("", err)
			}
			env.Printf("Overall amount of CPUs: %d\n", len(cpus))
			for i, c := range cpus {
				env.Printf("CPU %d: %s (%s GHz)\n", i+1, c.Model, formatGHz(c.MHz))
			}
		case "--homedir":
			home, err := sys.HomeDir()
			if err != nil {
				return h.fail("", err)
			}
			env.Println(home)
		case "--username":
			name, err := sys.Username()
			if err != nil {
				return h.fail("", err)
			}
			env.Println(name)
		case "--architecture":
			env.Println(sys.Architecture())
		}
		return nil
	}, nil
}

func formatGHz(mhz float64) string {
	return fmt.Sprintf("%.2f", mhz/1000)
}
