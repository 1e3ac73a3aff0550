package consul

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/modexport/settings"
)

// ConsulStore keeps settings in the Consul KV store below a key prefix.
// Each value is stored as "<kind>:<raw>" under "<prefix>/<scope>/<key>".
type ConsulStore struct {
	mu     sync.RWMutex
	client *api.Client
	kv     *api.KV

	config *ConsulStoreConfig
}

type ConsulStoreConfig struct {
	// Address of the Consul server (default: "127.0.0.1:8500")
	Address string

	// Token for Consul ACL authentication (optional)
	Token string

	// Datacenter to use (optional)
	Datacenter string

	// Prefix for all keys (default: "modexport")
	Prefix string
}

func NewConsulStore(config *ConsulStoreConfig) (*ConsulStore, error) {
	if config == nil {
		config = &ConsulStoreConfig{}
	}

	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}

	config.Prefix = strings.Trim(config.Prefix, "/")
	if config.Prefix == "" {
		config.Prefix = "modexport"
	}

	clientConfig := api.DefaultConfig()
	clientConfig.Address = config.Address
	if config.Token != "" {
		clientConfig.Token = config.Token
	}
	if config.Datacenter != "" {
		clientConfig.Datacenter = config.Datacenter
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}

	return &ConsulStore{
		client: client,
		kv:     client.KV(),
		config: config,
	}, nil
}

// Returns the identifier name defined for this store
func (*ConsulStore) Name() string {
	return "consul"
}

// Open verifies that the agent is reachable.
func (cs *ConsulStore) Open(ctx context.Context) error {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	if _, err := cs.client.Status().Leader(); err != nil {
		return fmt.Errorf("failed to reach consul at '%s': %w", cs.config.Address, err)
	}

	return nil
}

// Close is a no-op, the consul client holds no connections of its own.
func (cs *ConsulStore) Close(ctx context.Context) error {
	return nil
}

func (cs *ConsulStore) Get(ctx context.Context, scope, key string) (settings.Value, bool, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	pair, _, err := cs.kv.Get(cs.key(scope, key), (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return settings.Value{}, false, err
	}
	if pair == nil {
		return settings.Value{}, false, nil
	}

	value, err := settings.Decode(string(pair.Value))
	if err != nil {
		return settings.Value{}, false, err
	}

	return value, true, nil
}

func (cs *ConsulStore) Set(ctx context.Context, scope, key string, value settings.Value) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	pair := &api.KVPair{
		Key:   cs.key(scope, key),
		Value: []byte(value.Encode()),
	}

	_, err := cs.kv.Put(pair, (&api.WriteOptions{}).WithContext(ctx))
	return err
}

func (cs *ConsulStore) Delete(ctx context.Context, scope, key string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	_, err := cs.kv.Delete(cs.key(scope, key), (&api.WriteOptions{}).WithContext(ctx))
	return err
}

func (cs *ConsulStore) List(ctx context.Context, scope string) (map[string]settings.Value, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	prefix := path.Join(cs.config.Prefix, scope) + "/"
	pairs, _, err := cs.kv.List(prefix, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}

	result := make(map[string]settings.Value, len(pairs))
	for _, pair := range pairs {
		key := strings.TrimPrefix(pair.Key, prefix)
		if key == "" || strings.Contains(key, "/") {
			continue
		}

		value, err := settings.Decode(string(pair.Value))
		if err != nil {
			return nil, err
		}
		result[key] = value
	}

	return result, nil
}

func (cs *ConsulStore) key(scope, key string) string {
	return path.Join(cs.config.Prefix, scope, key)
}
