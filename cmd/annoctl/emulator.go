package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"annoctl/internal/app"
	"annoctl/internal/emulator"
	"annoctl/internal/logging"
)

func emulatorCmd() *cobra.Command {
	emu := &cobra.Command{Use: "emulator", Short: "Run a local stand-in for the platform"}
	emu.AddCommand(emulatorServeCmd())
	return emu
}

func emulatorServeCmd() *cobra.Command {
	var opts app.EmulatorOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the platform API and object storage locally",
		Long: `Serve the platform API under --base-path and object storage under /storage.
Point the CLI at it with --main-endpoint http://<addr>/api/v1. Any token of the form
<secret>=<team_id> is accepted and its team is created on first use.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.JWTSecret == "" {
				opts.JWTSecret = viper.GetString("emulator_jwt_secret")
			}
			log := logging.New(viper.GetString("log_level"), viper.GetString("log_format"), os.Stderr)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.ServeEmulator(ctx, opts, log)
		},
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", "127.0.0.1:8765", "listen address")
	cmd.Flags().StringVar(&opts.Dir, "dir", ".annoctl-emulator", "directory holding the emulator database")
	cmd.Flags().StringVar(&opts.BasePath, "base-path", emulator.DefaultBasePath, "API base path")
	cmd.Flags().StringVar(&opts.Bucket, "bucket", emulator.DefaultBucket, "bucket named in upload credentials")
	cmd.Flags().IntVar(&opts.ImageLimit, "image-limit", emulator.DefaultImageLimit, "images allowed per folder")
	cmd.Flags().StringVar(&opts.JWTSecret, "jwt-secret", "", "verify HS256 tokens with this secret (env ANNOCTL_EMULATOR_JWT_SECRET)")
	return cmd
}
