// Package docker starts and stops containers for the integration tests.
package docker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"os/exec"
)

// Container represents the info about a running container.
type Container struct {
	Id       string
	HostPort string
	Name     string
}

// StartContainer runs a container off the image with a published port and
// returns where it is reachable.
func StartContainer(image string, name string, port string, dockerArgs []string, imageArgs []string) (Container, error) {
	args := []string{"run", "-P", "-d", "--name", name}
	args = append(args, dockerArgs...)
	args = append(args, image)
	args = append(args, imageArgs...)

	var output bytes.Buffer
	command := exec.Command("docker", args...)
	command.Stdout = &output
	if err := command.Run(); err != nil {
		return Container{}, fmt.Errorf("start container for image %s: %w", image, err)
	}

	id := output.String()[:12]

	host, boundPort, err := extractHostPort(id, port)
	if err != nil {
		return Container{}, fmt.Errorf("extract host/port: %w", err)
	}

	return Container{
		Id:       id,
		HostPort: net.JoinHostPort(host, boundPort),
		Name:     name,
	}, nil
}

// Stop stops the container and removes it as well.
func (c Container) Stop() error {
	if err := exec.Command("docker", "stop", c.Id).Run(); err != nil {
		return fmt.Errorf("stopping container %s: %w", c.Id, err)
	}

	if err := exec.Command("docker", "rm", c.Id).Run(); err != nil {
		return fmt.Errorf("removing container %s: %w", c.Id, err)
	}
	return nil
}

// DumpLogs returns the combined stdout and stderr logs of the container.
func (c Container) DumpLogs() []byte {
	logs, err := exec.Command("docker", "logs", c.Id).CombinedOutput()
	if err != nil {
		return nil
	}
	return logs
}

func extractHostPort(id string, port string) (ip string, boundPort string, err error) {
	template := fmt.Sprintf("[{{range $k,$v := (index .NetworkSettings.Ports \"%s/tcp\")}}{{json $v}}{{end}}]", port)

	var output bytes.Buffer
	command := exec.Command("docker", "inspect", "-f", template, id)
	command.Stdout = &output
	if err := command.Run(); err != nil {
		return "", "", fmt.Errorf("inspect container %s: %w", id, err)
	}

	// Got  [{"HostIp":"0.0.0.0","HostPort":"49190"}{"HostIp":"::","HostPort":"49190"}]
	// Need [{"HostIp":"0.0.0.0","HostPort":"49190"},{"HostIp":"::","HostPort":"49190"}]
	data := bytes.ReplaceAll(output.Bytes(), []byte("}{"), []byte("},{"))

	var results []struct {
		HostIp   string
		HostPort string
	}
	if err := json.Unmarshal(data, &results); err != nil {
		return "", "", fmt.Errorf("unmarshal data: %w", err)
	}

	for _, result := range results {
		if result.HostIp != "::" {
			if result.HostIp == "" {
				return "localhost", result.HostPort, nil
			}
			return result.HostIp, result.HostPort, nil
		}
	}
	return "", "", fmt.Errorf("could not locate ip/port for container %s", id)
}
