package platform

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// commandFunc runs a system tool and returns its standard output.
type commandFunc func(name string, args ...string) ([]byte, error)

// runLocalCommand runs a system tool with a short timeout.
func runLocalCommand(name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", name, err)
	}
	return out, nil
}
