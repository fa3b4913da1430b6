package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"annoctl/internal/config"
	"annoctl/internal/domain"
	"annoctl/internal/repository"
	"annoctl/internal/usecase"
	annotatesdk "annoctl/sdk/go"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Store the team token in the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := viper.GetString("config")
			if path == "" {
				path = config.Path("")
			}
			return runInit(repository.NewConfigRepository(path), path, viper.GetString("token"), force, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing token without asking")
	return cmd
}

func runInit(repo *repository.ConfigRepository, path, token string, force bool, in io.Reader, out io.Writer) error {
	existing, err := repo.GetOne("token")
	if err != nil {
		return err
	}
	reader := bufio.NewReader(in)
	if existing != nil && !force {
		fmt.Fprintf(out, "File %s exists. Do you want to overwrite? [y/n] : ", path)
		answer, _ := reader.ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			return nil
		}
	}
	if token == "" {
		fmt.Fprint(out, "Input the team token: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read token: %w", err)
		}
		token = strings.TrimSpace(line)
	}
	if _, err := config.Token(token).TeamID(); err != nil {
		return err
	}
	if _, err := repo.Insert(repository.ConfigEntry{Key: "token", Value: token}); err != nil {
		return err
	}
	if existing != nil {
		fmt.Fprintln(out, "Configuration file successfully updated.")
	} else {
		fmt.Fprintln(out, "Configuration file successfully created.")
	}
	return nil
}

func createProjectCmd() *cobra.Command {
	var name, description, projectType string
	cmd := &cobra.Command{
		Use:   "create-project",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := domain.ParseProjectType(projectType)
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				p, err := s.CreateProject(ctx, name, description, t)
				if err != nil {
					return err
				}
				return printProject(p)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().StringVar(&description, "description", "", "project description")
	cmd.Flags().StringVar(&projectType, "type", "Vector", "project type")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func createFolderCmd() *cobra.Command {
	var project, name string
	cmd := &cobra.Command{
		Use:   "create-folder",
		Short: "Create a folder in a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				f, err := s.CreateFolder(ctx, project, name)
				if err != nil {
					return err
				}
				if f.Name != name {
					fmt.Fprintf(cmd.ErrOrStderr(), "folder %q exists, created %q\n", name, f.Name)
				}
				return printFolders([]domain.Folder{f})
			})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "project name")
	cmd.Flags().StringVar(&name, "name", "", "folder name")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func uploadImagesCmd() *cobra.Command {
	var project, folder, extensions, exclude, status, quality string
	var recursive bool
	cmd := &cobra.Command{
		Use:   "upload-images",
		Short: "Upload the images of a local folder",
		Long:  "Upload images from a local folder. Extensions default to " + strings.Join(annotatesdk.DefaultImageExtensions, ",") + ".",
		RunE: func(cmd *cobra.Command, args []string) error {
			folderOpts := annotatesdk.FolderOptions{
				Extensions: splitList(extensions),
				Exclude:    splitList(exclude),
				Recursive:  recursive,
			}
			opts, err := uploadOptions(status, quality)
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				res, err := s.UploadImagesFromFolder(ctx, project, folder, folderOpts, opts)
				if perr := printAttach(res); perr != nil {
					return perr
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "project or project/folder")
	cmd.Flags().StringVar(&folder, "folder", "", "local folder with images")
	cmd.Flags().StringVar(&extensions, "extensions", "", "comma separated extensions")
	cmd.Flags().StringVar(&exclude, "exclude-file-patterns", "", "comma separated substrings of file names to skip")
	cmd.Flags().BoolVar(&recursive, "recursive-subfolders", false, "scan subfolders too")
	cmd.Flags().StringVar(&status, "set-annotation-status", "", "annotation status of the uploaded images")
	cmd.Flags().StringVar(&quality, "image-quality-in-editor", "", "project editor image quality: compressed or original")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("folder")
	return cmd
}

// uploadOptions parses the status and quality flag values; empty values keep the defaults.
func uploadOptions(status, quality string) (domain.UploadOptions, error) {
	var opts domain.UploadOptions
	if status != "" {
		st, err := domain.ParseAnnotationStatus(status)
		if err != nil {
			return opts, err
		}
		opts.AnnotationStatus = st
	}
	if quality != "" {
		q, err := domain.ParseImageQuality(quality)
		if err != nil {
			return opts, err
		}
		opts.ImageQuality = q
	}
	return opts, nil
}

func attachURLsCmd(use, short string) *cobra.Command {
	var project, attachments, status string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  short + `. The CSV needs a header with a "url" column and may have a "name" column; rows without a name get a random one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := uploadOptions(status, "")
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				res, err := s.AttachURLs(ctx, project, attachments, opts.AnnotationStatus)
				if perr := printAttach(res); perr != nil {
					return perr
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "project or project/folder")
	cmd.Flags().StringVar(&attachments, "attachments", "", "CSV file with url and name columns")
	cmd.Flags().StringVar(&status, "annotation-status", "", "annotation status of the attached items")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("attachments")
	return cmd
}

func uploadAnnotationsCmd(use string, pre bool) *cobra.Command {
	var project, folder string
	short := "Upload annotations from a local folder"
	if pre {
		short = "Upload pre-annotations from a local folder"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  short + `. A file "<image>___objects.json" or "<image>.json" annotates <image>.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				res, err := s.UploadAnnotationsFromFolder(ctx, project, folder, pre)
				if perr := printAnnotationUpload(res); perr != nil {
					return perr
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "project or project/folder")
	cmd.Flags().StringVar(&folder, "folder", "", "local folder with annotation JSON files")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("folder")
	return cmd
}

func exportProjectCmd() *cobra.Command {
	var project, statuses string
	var opts usecase.ExportOptions
	cmd := &cobra.Command{
		Use:   "export-project",
		Short: "Prepare an export of a project or one of its folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, title := range splitList(statuses) {
				st, err := domain.ParseAnnotationStatus(title)
				if err != nil {
					return err
				}
				opts.AnnotationStatuses = append(opts.AnnotationStatuses, st)
			}
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				export, err := s.PrepareExport(ctx, project, opts)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(export)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Prepared export %s\n", export.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "project or project/folder")
	cmd.Flags().StringVar(&statuses, "annotation-statuses", "", "comma separated annotation statuses (default all)")
	cmd.Flags().BoolVar(&opts.IncludeFuse, "include-fuse", false, "include fused images")
	cmd.Flags().BoolVar(&opts.OnlyPinned, "only-pinned", false, "export pinned images only")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}
