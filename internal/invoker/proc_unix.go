//go:build !windows

package invoker

import (
	"os/exec"
	"syscall"
)

// setProcGroup places the child in its own process group so a cancel
// reaches the CLI and any plugin children it forked.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killProcGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
