package registry

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// sshTimeout bounds the out-of-core systemctl round trip (spec §4.7.1).
const sshTimeout = 30 * time.Second

// ManagerStatus is the reply to a process-control RPC.
type ManagerStatus struct {
	ManagerID string
	Running   bool
	Error     string
}

// SystemctlCommand runs `ssh <host> sudo systemctl <action> <service>`
// for managerID, per the host/service mapping loaded from config. This
// is deliberately out of core: no retries, no algorithmic content, just
// a timed shell-out with captured output.
func (g *GlobalRegistry) SystemctlCommand(managerID, action string) ManagerStatus {
	host, ok := g.hosts.hostFor(managerID)
	if !ok {
		return ManagerStatus{ManagerID: managerID, Running: false, Error: fmt.Sprintf("unknown manager: %s", managerID)}
	}
	mgrCfg := host.Managers[managerID]
	service := mgrCfg.Service
	if service == "" {
		service = managerID
	}

	ctx, cancel := context.WithTimeout(context.Background(), sshTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ssh", host.SSH, fmt.Sprintf("sudo systemctl %s %s", action, service))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			g.log.Error("systemctl command timed out", "manager", managerID, "action", action)
			return ManagerStatus{ManagerID: managerID, Running: false, Error: "SSH timeout"}
		}
		msg := stderr.String()
		if msg == "" {
			msg = err.Error()
		}
		g.log.Error("systemctl command failed", "manager", managerID, "action", action, "error", msg)
		return ManagerStatus{ManagerID: managerID, Running: false, Error: msg}
	}
	g.log.Info("systemctl command succeeded", "manager", managerID, "action", action)
	return ManagerStatus{ManagerID: managerID, Running: action != "stop"}
}
