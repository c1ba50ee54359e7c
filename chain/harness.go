// Package chain manages the lifecycle of an ephemeral execution environment
// and the signing client bound to it. Exactly one environment process exists
// per harness, and Stop must run on every exit path so no process is leaked.
package chain

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
)

// ErrChainUnavailable means the spawned environment never answered its RPC
// endpoint within the readiness timeout. Distinct from a spawn failure: the
// process started but the endpoint stayed dark.
var ErrChainUnavailable = errors.New("execution environment did not become ready")

const (
	DefaultPort         = 3030
	defaultReadyTimeout = 15 * time.Second
	readyPollInterval   = 100 * time.Millisecond
)

// Harness spawns and tears down one anvil instance. Port is injectable so
// concurrent runs can isolate themselves; two harnesses sharing a port are
// unsafe.
type Harness struct {
	AnvilPath    string
	Port         int
	ReadyTimeout time.Duration

	cmd *exec.Cmd
}

func NewHarness(anvilPath string, port int) *Harness {
	if anvilPath == "" {
		anvilPath = "anvil"
	}
	if port == 0 {
		port = DefaultPort
	}
	return &Harness{
		AnvilPath:    anvilPath,
		Port:         port,
		ReadyTimeout: defaultReadyTimeout,
	}
}

// Endpoint is the local RPC address the spawned environment listens on.
func (h *Harness) Endpoint() string {
	return fmt.Sprintf("http://127.0.0.1:%d", h.Port)
}

// Start spawns the environment and polls its RPC endpoint until it answers,
// bounded by ReadyTimeout. On readiness failure the process is torn down
// before returning.
func (h *Harness) Start(ctx context.Context) error {
	if h.cmd != nil {
		return errors.New("harness already started")
	}
	cmd := exec.Command(h.AnvilPath, "--port", strconv.Itoa(h.Port), "--silent")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn %s: %w", h.AnvilPath, err)
	}
	h.cmd = cmd
	log.Info("Spawned execution environment", "pid", cmd.Process.Pid, "endpoint", h.Endpoint())

	if err := h.awaitReady(ctx); err != nil {
		h.Stop()
		return err
	}
	return nil
}

func (h *Harness) awaitReady(ctx context.Context) error {
	timeout := h.ReadyTimeout
	if timeout == 0 {
		timeout = defaultReadyTimeout
	}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if h.probe(ctx) {
			return nil
		}
		time.Sleep(readyPollInterval)
	}
	return fmt.Errorf("%w: no response from %s within %s", ErrChainUnavailable, h.Endpoint(), timeout)
}

func (h *Harness) probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	client, err := ethclient.DialContext(probeCtx, h.Endpoint())
	if err != nil {
		return false
	}
	defer client.Close()
	_, err = client.ChainID(probeCtx)
	return err == nil
}

// Stop terminates the environment process unconditionally. Safe to call
// multiple times and on a harness that never started.
func (h *Harness) Stop() {
	if h.cmd == nil || h.cmd.Process == nil {
		return
	}
	log.Info("Stopping execution environment", "pid", h.cmd.Process.Pid)
	_ = h.cmd.Process.Kill()
	_ = h.cmd.Wait()
	h.cmd = nil
}
