// Package app wires configuration, logging, the REST client and object storage into
// a ready controller, and boots the local emulator.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"annoctl/internal/backend"
	"annoctl/internal/config"
	"annoctl/internal/controller"
	"annoctl/internal/db"
	"annoctl/internal/domain"
	"annoctl/internal/emulator"
	"annoctl/internal/logging"
	"annoctl/internal/migrate"
	"annoctl/internal/storage"
)

// Options override values from the config file. Empty fields keep the file's value.
type Options struct {
	ConfigPath   string
	Token        string
	MainEndpoint string
	LogLevel     string
	LogFormat    string
}

// LoadEnv reads KEY=VALUE files into the environment. Missing files are skipped and
// variables already set win.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// LoadConfig resolves the effective config. A missing file is fine as long as the
// overrides supply a token.
func LoadConfig(opts Options) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.Path("")
	}
	cfg, err := config.LoadOptional(path)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Token != "" {
		cfg.Token = config.Token(opts.Token)
	}
	if opts.MainEndpoint != "" {
		cfg.MainEndpoint = opts.MainEndpoint
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, &domain.PreconditionError{Message: err.Error()}
	}
	return cfg, nil
}

func NewLogger(cfg *config.Config, format string, w io.Writer) *slog.Logger {
	return logging.New(cfg.LogLevel, format, w)
}

// NewController builds a controller talking to cfg.MainEndpoint. Extra options are
// applied after the defaults, so tests can swap the object store.
func NewController(cfg *config.Config, log *slog.Logger, extra ...controller.Option) (*controller.Controller, error) {
	client := backend.New(cfg.MainEndpoint, cfg.Token.String(), cfg.SSLVerify)
	opts := []controller.Option{
		controller.WithLogger(log),
		controller.WithStoreFactory(storage.S3Factory(cfg.StorageEndpoint)),
	}
	return controller.New(client, cfg.Token, append(opts, extra...)...)
}

type EmulatorOptions struct {
	Addr       string
	Dir        string
	BasePath   string
	Bucket     string
	ImageLimit int
	JWTSecret  string
}

// Emulator is an opened emulator database plus the handler serving it.
type Emulator struct {
	Handler http.Handler
	Blobs   *storage.Memory
	conn    *sql.DB
}

func (e *Emulator) Close() error { return e.conn.Close() }

// OpenEmulator opens and migrates the emulator database under opts.Dir. Blobs live in
// memory and are lost on exit.
func OpenEmulator(opts EmulatorOptions, log *slog.Logger) (*Emulator, error) {
	conn, err := db.Open(db.Config{Dir: opts.Dir})
	if err != nil {
		return nil, err
	}
	if err := migrate.Migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate %s: %w", db.Path(opts.Dir), err)
	}
	blobs := storage.NewMemory()
	handler, err := emulator.New(emulator.Config{
		Store:      emulator.Store{DB: conn},
		Blobs:      blobs,
		BasePath:   opts.BasePath,
		Bucket:     opts.Bucket,
		ImageLimit: opts.ImageLimit,
		Auth:       emulator.AuthConfig{JWTSecret: opts.JWTSecret},
		Logger:     log,
	})
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Emulator{Handler: handler, Blobs: blobs, conn: conn}, nil
}

// ServeEmulator listens on opts.Addr until ctx is done.
func ServeEmulator(ctx context.Context, opts EmulatorOptions, log *slog.Logger) error {
	emu, err := OpenEmulator(opts, log)
	if err != nil {
		return err
	}
	defer emu.Close()

	srv := &http.Server{Addr: opts.Addr, Handler: emu.Handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	log.Info("emulator listening", "addr", opts.Addr, "db", db.Path(opts.Dir))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
