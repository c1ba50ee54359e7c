package proving

import (
	"fmt"
	"sync"

	"github.com/consensys/gnark/frontend"
	"github.com/ethereum/go-ethereum/log"

	"github.com/base-org/evm-verifier-harness/circuits"
)

type cachedSetup struct {
	Compiled *CompiledCircuit
	Protocol *ProtocolDescription
}

// SetupCache memoizes Setup and protocol compilation per
// (parameters, circuit, instance count) triple, so the description is
// compiled exactly once however many runs share the cache.
type SetupCache struct {
	lock   sync.Mutex
	locks  map[string]*sync.Mutex
	loaded map[string]*cachedSetup
}

func NewSetupCache() *SetupCache {
	return &SetupCache{
		loaded: make(map[string]*cachedSetup),
		locks:  make(map[string]*sync.Mutex),
	}
}

func (c *SetupCache) Load(params Parameters, cm *circuits.Metadata, circuit frontend.Circuit) (*CompiledCircuit, *ProtocolDescription, error) {
	key := fmt.Sprintf("%s/%d/k%d", cm.Id, cm.NbInstances, params.K)

	c.lock.Lock()
	if c.locks[key] == nil {
		c.locks[key] = new(sync.Mutex)
	}
	c.lock.Unlock()

	c.locks[key].Lock()
	defer c.locks[key].Unlock()

	if s, ok := c.loaded[key]; ok {
		return s.Compiled, s.Protocol, nil
	}

	log.Info("Setting up circuit", "key", key)
	compiled, err := Setup(params, cm, circuit)
	if err != nil {
		return nil, nil, err
	}
	protocol, err := CompileProtocol(compiled.Vk, cm.NbInstances)
	if err != nil {
		return nil, nil, err
	}
	c.loaded[key] = &cachedSetup{Compiled: compiled, Protocol: protocol}
	return compiled, protocol, nil
}
