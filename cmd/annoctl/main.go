package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"annoctl/internal/app"
	annotatesdk "annoctl/sdk/go"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "annoctl",
	Short: "Annotation platform CLI",
	Long: `annoctl manages projects, folders, images, annotations and team members on the
annotation platform.

Projects and folders are addressed by name. A path "project/folder" targets a folder,
a bare "project" targets its root folder. Names must be unique within their scope;
an ambiguous name is an error.

Run 'annoctl init' once to store the team token, or set ANNOCTL_TOKEN.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	if err := app.LoadEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}
	viper.SetEnvPrefix("ANNOCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.annoctl/config.yml)")
	flags.String("token", "", "team token (overrides the config file)")
	flags.String("main-endpoint", "", "platform API endpoint (overrides the config file)")
	flags.Bool("json", false, "output JSON")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")
	for _, name := range []string{"config", "token", "main-endpoint", "json", "log-level", "log-format"} {
		_ = viper.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}
}

func registerCommands() {
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(createProjectCmd())
	rootCmd.AddCommand(createFolderCmd())
	rootCmd.AddCommand(uploadImagesCmd())
	rootCmd.AddCommand(attachURLsCmd("attach-image-urls", "Attach image URLs listed in a CSV"))
	rootCmd.AddCommand(attachURLsCmd("attach-video-urls", "Attach video URLs listed in a CSV"))
	rootCmd.AddCommand(uploadAnnotationsCmd("upload-annotations", false))
	rootCmd.AddCommand(uploadAnnotationsCmd("upload-preannotations", true))
	rootCmd.AddCommand(exportProjectCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(folderCmd())
	rootCmd.AddCommand(imageCmd())
	rootCmd.AddCommand(classCmd())
	rootCmd.AddCommand(teamCmd())
	rootCmd.AddCommand(emulatorCmd())
}

func options() app.Options {
	return app.Options{
		ConfigPath:   viper.GetString("config"),
		Token:        viper.GetString("token"),
		MainEndpoint: viper.GetString("main_endpoint"),
		LogLevel:     viper.GetString("log_level"),
		LogFormat:    viper.GetString("log_format"),
	}
}

// withClient builds a fresh SDK client for one command run.
func withClient(ctx context.Context, fn func(context.Context, *annotatesdk.Client) error) error {
	s, err := annotatesdk.FromConfig(options())
	if err != nil {
		return err
	}
	return fn(ctx, s)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
