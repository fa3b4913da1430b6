package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"annoctl/internal/domain"
	"annoctl/internal/usecase"
	annotatesdk "annoctl/sdk/go"
)

func projectCmd() *cobra.Command {
	prj := &cobra.Command{Use: "project", Short: "Manage projects"}
	prj.AddCommand(projectListCmd())
	prj.AddCommand(projectShowCmd())
	prj.AddCommand(projectRenameCmd())
	prj.AddCommand(projectDeleteCmd())
	prj.AddCommand(projectCloneCmd())
	return prj
}

func projectListCmd() *cobra.Command {
	var name string
	var exact bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				items, err := s.SearchProjects(ctx, name, exact)
				if err != nil {
					return err
				}
				return printProjects(items)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name filter")
	cmd.Flags().BoolVar(&exact, "exact", false, "match the name exactly")
	return cmd
}

func metadataFlags(cmd *cobra.Command, opts *usecase.MetadataOptions) {
	cmd.Flags().BoolVar(&opts.Settings, "settings", false, "include settings")
	cmd.Flags().BoolVar(&opts.Workflow, "workflow", false, "include workflow")
	cmd.Flags().BoolVar(&opts.AnnotationClasses, "classes", false, "include annotation classes")
	cmd.Flags().BoolVar(&opts.Contributors, "contributors", false, "include contributors")
}

func projectShowCmd() *cobra.Command {
	var opts usecase.MetadataOptions
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show project metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				md, err := s.GetProjectMetadata(ctx, args[0], opts)
				if err != nil {
					return err
				}
				return printJSON(md)
			})
		},
	}
	metadataFlags(cmd, &opts)
	return cmd
}

func projectRenameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <name> <new-name>",
		Short: "Rename a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				p, err := s.RenameProject(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return printProject(p)
			})
		},
	}
	return cmd
}

func projectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				if err := s.DeleteProject(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", args[0])
				return nil
			})
		},
	}
}

func projectCloneCmd() *cobra.Command {
	var description string
	var opts usecase.MetadataOptions
	cmd := &cobra.Command{
		Use:   "clone <source> <name>",
		Short: "Clone a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				p, err := s.CloneProject(ctx, args[0], domain.Project{Name: args[1], Description: description}, opts)
				if err != nil {
					return err
				}
				return printProject(p)
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "description of the clone")
	metadataFlags(cmd, &opts)
	return cmd
}

func folderCmd() *cobra.Command {
	f := &cobra.Command{Use: "folder", Short: "Manage folders"}
	f.AddCommand(folderListCmd())
	f.AddCommand(folderRenameCmd())
	f.AddCommand(folderDeleteCmd())
	return f
}

func folderListCmd() *cobra.Command {
	var name string
	var includeRoot bool
	cmd := &cobra.Command{
		Use:   "list <project>",
		Short: "List folders of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				items, err := s.SearchFolders(ctx, args[0], name, includeRoot)
				if err != nil {
					return err
				}
				return printFolders(items)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name filter")
	cmd.Flags().BoolVar(&includeRoot, "include-root", false, "list the root folder too")
	return cmd
}

func folderRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <project/folder> <new-name>",
		Short: "Rename a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				f, err := s.RenameFolder(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return printFolders([]domain.Folder{f})
			})
		},
	}
}

func folderDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project> <folder>...",
		Short: "Delete folders",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				deleted, err := s.DeleteFolders(ctx, args[0], args[1:])
				for _, name := range deleted {
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted folder %s\n", name)
				}
				return err
			})
		},
	}
}

func imageCmd() *cobra.Command {
	img := &cobra.Command{Use: "image", Short: "Manage images"}
	img.AddCommand(imageListCmd())
	img.AddCommand(imageShowCmd())
	img.AddCommand(imageSetStatusCmd())
	img.AddCommand(imagePinCmd())
	img.AddCommand(imageDownloadCmd())
	img.AddCommand(imageCopyAnnotationsCmd())
	return img
}

func imageListCmd() *cobra.Command {
	var prefix, status string
	cmd := &cobra.Command{
		Use:   "list <project[/folder]>",
		Short: "List images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := usecase.ImageFilter{NamePrefix: prefix}
			if status != "" {
				st, err := domain.ParseAnnotationStatus(status)
				if err != nil {
					return err
				}
				filter.Status = st
			}
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				items, err := s.SearchImages(ctx, args[0], filter)
				if err != nil {
					return err
				}
				return printImages(items)
			})
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "image name prefix")
	cmd.Flags().StringVar(&status, "status", "", "annotation status")
	return cmd
}

func imageShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <project[/folder]> <image>",
		Short: "Show image metadata",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				img, err := s.GetImageMetadata(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return printImages([]domain.Image{img})
			})
		},
	}
}

func imageSetStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <project[/folder]> <image> <status>",
		Short: "Set an image's annotation status",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := domain.ParseAnnotationStatus(args[2])
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				img, err := s.SetImageAnnotationStatus(ctx, args[0], args[1], st)
				if err != nil {
					return err
				}
				return printImages([]domain.Image{img})
			})
		},
	}
}

func imagePinCmd() *cobra.Command {
	var unpin bool
	cmd := &cobra.Command{
		Use:   "pin <project[/folder]> <image>",
		Short: "Pin or unpin an image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				img, err := s.PinImage(ctx, args[0], args[1], !unpin)
				if err != nil {
					return err
				}
				return printImages([]domain.Image{img})
			})
		},
	}
	cmd.Flags().BoolVar(&unpin, "unpin", false, "unpin instead")
	return cmd
}

func imageDownloadCmd() *cobra.Command {
	var dir, variant, fromURL string
	cmd := &cobra.Command{
		Use:   "download [<project[/folder]> <image>]",
		Short: "Download an image",
		Args: func(cmd *cobra.Command, args []string) error {
			if fromURL != "" {
				return cobra.MaximumNArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				var written string
				var err error
				if fromURL != "" {
					name := ""
					if len(args) == 1 {
						name = args[0]
					}
					written, err = s.DownloadImageFromPublicURL(ctx, fromURL, name, dir)
				} else {
					written, err = s.DownloadImage(ctx, args[0], args[1], dir, domain.ImageVariant(variant))
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), written)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "target directory")
	cmd.Flags().StringVar(&variant, "variant", string(domain.VariantOriginal), "original or lores")
	cmd.Flags().StringVar(&fromURL, "url", "", "download from a public URL instead")
	return cmd
}

func imageCopyAnnotationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy-annotations <from project[/folder]> <image> <to project[/folder]> [<image>]",
		Short: "Copy an image's annotations, creating missing classes in the target project",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[1]
			if len(args) == 4 {
				target = args[3]
			}
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				img, err := s.CopyImageAnnotationClasses(ctx, args[0], args[1], args[2], target)
				if err != nil {
					return err
				}
				return printImages([]domain.Image{img})
			})
		},
	}
}

func classCmd() *cobra.Command {
	c := &cobra.Command{Use: "class", Short: "Manage annotation classes"}
	c.AddCommand(classListCmd())
	c.AddCommand(classCreateCmd())
	return c
}

func classListCmd() *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "list <project>",
		Short: "List annotation classes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				items, err := s.SearchAnnotationClasses(ctx, args[0], prefix)
				if err != nil {
					return err
				}
				return printClasses(items)
			})
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "class name prefix")
	return cmd
}

func classCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <project> <classes.json>",
		Short: "Create annotation classes from a JSON array; existing names are skipped",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			var classes []domain.AnnotationClass
			if err := json.Unmarshal(data, &classes); err != nil {
				return fmt.Errorf("parse %s: %w", args[1], err)
			}
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				created, err := s.CreateAnnotationClasses(ctx, args[0], classes)
				if err != nil {
					return err
				}
				return printClasses(created)
			})
		},
	}
}

func teamCmd() *cobra.Command {
	t := &cobra.Command{Use: "team", Short: "Manage the team"}
	t.AddCommand(teamShowCmd())
	t.AddCommand(teamInviteCmd())
	t.AddCommand(teamUninviteCmd())
	t.AddCommand(teamContributorsCmd())
	return t
}

func teamShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the team with members and pending invitations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				team, err := s.GetTeam(ctx)
				if err != nil {
					return err
				}
				return printTeam(team)
			})
		},
	}
}

func teamInviteCmd() *cobra.Command {
	var admin bool
	cmd := &cobra.Command{
		Use:   "invite <email>",
		Short: "Invite a contributor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				inv, err := s.InviteContributor(ctx, args[0], admin)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(inv)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Invited %s as %s\n", inv.Email, inv.Role)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "invite as admin instead of annotator")
	return cmd
}

func teamUninviteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninvite <email>",
		Short: "Delete a pending invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				if err := s.DeleteContributorInvitation(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted invitation for %s\n", args[0])
				return nil
			})
		},
	}
}

func teamContributorsCmd() *cobra.Command {
	var filter usecase.ContributorFilter
	cmd := &cobra.Command{
		Use:   "contributors",
		Short: "Search team contributors",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, s *annotatesdk.Client) error {
				users, err := s.SearchTeamContributors(ctx, filter)
				if err != nil {
					return err
				}
				return printUsers(users)
			})
		},
	}
	cmd.Flags().StringVar(&filter.Email, "email", "", "email filter")
	cmd.Flags().StringVar(&filter.FirstName, "first-name", "", "first name filter")
	cmd.Flags().StringVar(&filter.LastName, "last-name", "", "last name filter")
	return cmd
}
