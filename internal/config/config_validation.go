// SPDX-License-Identifier: Apache-2.0

package config

// validate checks that the final merged [StructuredConfig] satisfies the
// invariants the server runtime needs at startup. Client-only fields are
// validated separately by [ClientConfig.validate] — a pure server process
// legitimately runs without adapter or sync settings.
func (cfg *StructuredConfig) validate() error {
	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.Local.Path == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Sync.Interval == 0 {
		return ErrInvalidSyncConfigs
	}

	if cfg.App.AuthSalt == "" {
		return ErrInvalidAppConfigs
	}

	return nil
}
