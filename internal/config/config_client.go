package config

import (
	"fmt"
	"time"
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// AuthSalt is the domain-separation salt fed into the auth-hash
	// derivation. Must match the server's value.
	AuthSalt string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the vault server base URL.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
}

// ClientLocal contains local state store settings for the client.
type ClientLocal struct {
	// Path is the SQLite file holding the encrypted vault blob and the
	// persisted sync state.
	Path string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// Local holds local state store settings.
	Local ClientLocal
}

// ClientSync contains client sync-runtime settings.
type ClientSync struct {
	// Interval defines how often the background sync job runs.
	Interval time.Duration
	// Retention is the trash retention window. Zero selects the default.
	Retention time.Duration
	// MaxMergeRetries bounds consecutive fetch-merge-retry cycles within
	// one sync attempt.
	MaxMergeRetries int
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level client settings.
	App ClientApp
	// Adapter contains client transport addresses and timeouts.
	Adapter ClientAdapter
	// Storage contains client storage settings.
	Storage ClientStorage
	// Sync contains sync-runtime settings.
	Sync ClientSync
}

// GetClientConfig builds and validates a client-specific config view from
// the merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, and validates the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			AuthSalt: cfg.App.AuthSalt,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			Local: ClientLocal{
				Path: cfg.Storage.Local.Path,
			},
		},
		Sync: ClientSync{
			Interval:        cfg.Sync.Interval,
			Retention:       cfg.Sync.Retention,
			MaxMergeRetries: cfg.Sync.MaxMergeRetries,
		},
	}

	return clientCfg, clientCfg.validate()
}
