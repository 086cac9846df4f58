package cli

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/klauern/snippetsync/internal/backup"
	"github.com/klauern/snippetsync/internal/config"
	"github.com/klauern/snippetsync/internal/logging"
	"github.com/klauern/snippetsync/internal/model"
	"github.com/klauern/snippetsync/internal/scope"
	"github.com/klauern/snippetsync/internal/sync"
	"github.com/klauern/snippetsync/internal/util"
)

// environment carries the configuration resolved by the root command to the
// subcommands.
type environment struct {
	cfg     *config.Config
	cfgPath string
}

// roots resolves the store roots from flags, config and OS detection.
func (e *environment) roots() (model.Roots, error) {
	roots, err := e.cfg.Roots()
	if err != nil {
		return model.Roots{}, err
	}
	logging.Debug("resolved store roots",
		slog.String(model.VSCode.String(), roots.VSCode),
		slog.String(model.Nvim.String(), roots.Nvim),
	)
	return roots, nil
}

// translator returns the built-in scope tables extended by the overlay file.
func (e *environment) translator() (*scope.Translator, error) {
	tr, err := scope.Load(util.ExpandPath(e.cfg.Scopes.OverlayPath, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to load scope overlay: %w", err)
	}
	return tr, nil
}

// backups returns the backup manager for the configured location.
func (e *environment) backups() *backup.Manager {
	location := util.ExpandPath(e.cfg.Backup.Location, "")
	if location == "" {
		location = util.SnippetsyncBackupsPath()
	}
	return backup.New(location)
}

// backupsEnabled reports whether forced overwrites should be backed up.
func (e *environment) backupsEnabled() bool {
	return e.cfg.Backup.Enabled && e.cfg.Sync.AutoBackup
}

// syncRequest holds the per-invocation switches of a sync.
type syncRequest struct {
	force      bool
	dryRun     bool
	skipBackup bool
	noManifest bool
	progress   sync.ProgressFunc
}

// engine builds a sync engine for the configured stores.
func (e *environment) engine(req syncRequest) (*sync.Engine, error) {
	roots, err := e.roots()
	if err != nil {
		return nil, err
	}
	tr, err := e.translator()
	if err != nil {
		return nil, err
	}

	opts := sync.Options{
		Extension:     e.cfg.Extension(),
		Force:         req.force || e.cfg.Sync.ForceVSCode,
		DryRun:        req.dryRun,
		WriteManifest: e.cfg.Sync.WriteManifest && !req.noManifest,
		Translator:    tr,
		Progress:      req.progress,
		RunID:         uuid.NewString(),
	}
	if e.backupsEnabled() && !req.skipBackup {
		opts.Backups = e.backups()
	}
	return sync.New(roots, opts), nil
}
