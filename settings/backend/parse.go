// Package backend selects a settings store implementation from an address.
package backend

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mwantia/modexport/data"
	"github.com/mwantia/modexport/settings"
	"github.com/mwantia/modexport/settings/backend/consul"
	"github.com/mwantia/modexport/settings/backend/memory"
	"github.com/mwantia/modexport/settings/backend/postgres"
	"github.com/mwantia/modexport/settings/backend/sqlite"
)

// Parse creates the store described by address. The store still has to be opened.
//
//	:memory:
//	sqlite://<path>
//	postgres://<user>:<pass>@<host>:<port>/<db>
//	consul://<host>:<port>/<prefix>?token=<token>&dc=<datacenter>
func Parse(address string) (settings.Store, error) {
	// Format address
	address = strings.TrimSpace(address)
	// Quick check to identify if we work with a possibly valid address
	if !strings.Contains(address, ":") {
		return nil, fmt.Errorf("failed to parse address '%s': %w", address, data.ErrMalformedAddress)
	}
	// Special 'direct no address declarations'
	switch address {
	case ":memory:":
		return memory.NewMemoryStore(), nil
	}
	// Protocol-based parsing
	switch {
	case strings.HasPrefix(address, "sqlite://"):
		return parseSqliteAddress(strings.TrimPrefix(address, "sqlite://"))
	case strings.HasPrefix(address, "postgres://"), strings.HasPrefix(address, "postgresql://"):
		return postgres.NewPostgresStore(address)
	case strings.HasPrefix(address, "psql://"):
		return postgres.NewPostgresStore("postgres://" + strings.TrimPrefix(address, "psql://"))
	case strings.HasPrefix(address, "consul://"):
		return parseConsulAddress(address)
	}

	return nil, fmt.Errorf("failed to parse address '%s': %w", address, data.ErrUnknownBackend)
}

func parseSqliteAddress(path string) (settings.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("failed to parse address: %w: missing sqlite path", data.ErrMalformedAddress)
	}

	return sqlite.NewSQLiteStore(path)
}

func parseConsulAddress(address string) (settings.Store, error) {
	u, err := url.Parse(address)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("failed to parse address '%s': %w", address, data.ErrMalformedAddress)
	}

	query := u.Query()
	return consul.NewConsulStore(&consul.ConsulStoreConfig{
		Address:    u.Host,
		Token:      query.Get("token"),
		Datacenter: query.Get("dc"),
		Prefix:     u.Path,
	})
}
