package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

// ManagerConfig names the systemd service a given manager ID runs as.
type ManagerConfig struct {
	Service string `json:"service"`
}

// Host is one entry in the process-control config: an SSH destination
// and the managers that live on it.
type Host struct {
	SSH      string                   `json:"ssh"`
	Managers map[string]ManagerConfig `json:"managers"`
}

// HostConfig is the top-level shape of the optional config file:
// {"hosts": {host_id: {"ssh": "...", "managers": {...}}}}.
type HostConfig struct {
	Hosts map[string]Host `json:"hosts"`
}

// LoadConfig reads and parses path. An empty path returns a zero
// HostConfig with no error — process-control RPCs for any manager will
// then fail with "unknown manager", matching the original's behavior of
// warning and continuing when no config is present.
func LoadConfig(path string) (HostConfig, error) {
	if path == "" {
		return HostConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return HostConfig{}, fmt.Errorf("registry: reading config %q: %w", path, err)
	}
	var cfg HostConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return HostConfig{}, fmt.Errorf("registry: parsing config %q: %w", path, err)
	}
	return cfg, nil
}

func (h HostConfig) hostFor(managerID string) (Host, bool) {
	for _, host := range h.Hosts {
		if _, ok := host.Managers[managerID]; ok {
			return host, true
		}
	}
	return Host{}, false
}
