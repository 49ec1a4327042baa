package operations

import (
	"context"
	"fmt"
	"os"

	"github.com/kebairia/repobak/internal/backup"
	"github.com/kebairia/repobak/internal/config"
	"github.com/kebairia/repobak/internal/logger"
	"github.com/kebairia/repobak/internal/provider"
	"github.com/kebairia/repobak/internal/storage"
	"github.com/kebairia/repobak/internal/vault"
)

// OperationManager wires configuration, provider, filesystem and logger for
// the backup, list and verify operations.
type OperationManager struct {
	cfg      config.Config
	provider backup.Provider
	fs       *storage.FS
	log      logger.Logger
	cwd      string
}

// ManagerOption overrides a dependency of the OperationManager.
type ManagerOption func(*OperationManager)

// WithProvider injects a provider instead of building one from the config.
func WithProvider(p backup.Provider) ManagerOption {
	return func(om *OperationManager) {
		om.provider = p
	}
}

// WithFilesystem overrides the filesystem archives are written to.
func WithFilesystem(fs *storage.FS) ManagerOption {
	return func(om *OperationManager) {
		om.fs = fs
	}
}

// WithLogger overrides the logger.
func WithLogger(log logger.Logger) ManagerOption {
	return func(om *OperationManager) {
		om.log = log
	}
}

// WithWorkingDir overrides the directory the default destination is
// derived from.
func WithWorkingDir(dir string) ManagerOption {
	return func(om *OperationManager) {
		om.cwd = dir
	}
}

// NewOperationManager validates cfg and builds the provider for its site,
// reading the token from Vault when configured.
func NewOperationManager(ctx context.Context, cfg config.Config, opts ...ManagerOption) (*OperationManager, error) {
	om := &OperationManager{
		cfg: cfg,
		log: logger.Global(),
	}
	for _, opt := range opts {
		opt(om)
	}
	if om.fs == nil {
		om.fs = storage.NewOS()
	}
	if om.cwd == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		om.cwd = cwd
	}

	if err := om.cfg.Validate(provider.Supported); err != nil {
		return nil, err
	}

	if om.provider == nil {
		token, err := om.resolveToken(ctx)
		if err != nil {
			return nil, err
		}
		p, err := provider.New(om.cfg.Site,
			provider.WithToken(token),
			provider.WithFilesystem(om.fs),
			provider.WithLogger(om.log),
		)
		if err != nil {
			return nil, err
		}
		om.provider = p
	}

	return om, nil
}

// resolveToken returns the configured token, or the one stored in Vault.
func (om *OperationManager) resolveToken(ctx context.Context) (string, error) {
	if !om.cfg.UseVault() {
		return om.cfg.Token, nil
	}

	vaultClient, err := vault.NewClient(ctx,
		vault.WithAddress(om.cfg.Vault.Address),
		vault.WithAppRole(om.cfg.Vault.RoleID, om.cfg.Vault.ApproleName),
	)
	if err != nil {
		return "", fmt.Errorf("vault client init: %w", err)
	}
	token, err := vaultClient.GetProviderToken(ctx, om.cfg.Vault.TokenPath)
	if err != nil {
		return "", fmt.Errorf("read token from vault: %w", err)
	}
	om.log.Debug("provider token read from vault", "path", om.cfg.Vault.TokenPath)
	return token, nil
}

// Destination returns the directory archives are written to.
func (om *OperationManager) Destination() string {
	return backup.ResolveDestination(om.cfg.Backup.OutputDirectory, om.cfg.Account, om.cwd)
}

func (om *OperationManager) filterOptions() backup.FilterOptions {
	return backup.FilterOptions{
		PrivateOnly:     om.cfg.Backup.PrivateOnly,
		IncludeArchived: om.cfg.Backup.IncludeArchived,
	}
}
