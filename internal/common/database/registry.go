// internal/common/database/registry.go
package database

import (
	"context"
	"fmt"

	"contract-query-workers/internal/common/config"
	apperrors "contract-query-workers/internal/common/errors"
	"contract-query-workers/pkg/registry"
)

// LoadColumnRegistry builds the column registry from the configured source.
// pg is only consulted for the postgres source.
func LoadColumnRegistry(ctx context.Context, cfg config.RegistryConfig, pg *PostgresClient) (*registry.Registry, error) {
	switch cfg.Source {
	case "", config.RegistrySourceEmbedded:
		return registry.Default(), nil
	case config.RegistrySourceFile:
		reg, err := registry.LoadRegistry(cfg.Path)
		if err != nil {
			return nil, apperrors.NewRegistryLoadFailedError(cfg.Path, err)
		}
		return reg, nil
	case config.RegistrySourcePostgres:
		if pg == nil {
			return nil, apperrors.NewRegistryLoadFailedError("postgres", fmt.Errorf("no postgres connection"))
		}
		reg, err := registry.LoadPostgres(ctx, pg.DB)
		if err != nil {
			return nil, apperrors.NewRegistryLoadFailedError("postgres", err)
		}
		return reg, nil
	}
	return nil, apperrors.NewRegistryLoadFailedError(cfg.Source, fmt.Errorf("unknown registry source"))
}

// LoadSpellDictionary returns the built-in dictionary, merged with the
// configured file when one is set.
func LoadSpellDictionary(cfg config.RegistryConfig) (*registry.Dictionary, error) {
	if cfg.DictionaryPath == "" {
		return registry.DefaultDictionary(), nil
	}
	dict, err := registry.LoadDictionary(cfg.DictionaryPath)
	if err != nil {
		return nil, apperrors.NewRegistryLoadFailedError(cfg.DictionaryPath, err)
	}
	return dict, nil
}
