package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/viper"

	"annoctl/internal/domain"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, header ...any) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row(header))
	return tw
}

// render prints v as JSON when --json is set and as a table built by fill otherwise.
func render(v any, header []any, fill func(table.Writer)) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	tw := newTable(os.Stdout, header...)
	fill(tw)
	tw.Render()
	return nil
}

func printProjects(items []domain.Project) error {
	return render(items, []any{"ID", "Name", "Type", "Description"}, func(tw table.Writer) {
		for _, p := range items {
			tw.AppendRow(table.Row{p.ID, p.Name, p.Type, p.Description})
		}
	})
}

func printProject(p domain.Project) error {
	return printProjects([]domain.Project{p})
}

func printFolders(items []domain.Folder) error {
	return render(items, []any{"ID", "Name", "Project"}, func(tw table.Writer) {
		for _, f := range items {
			tw.AppendRow(table.Row{f.ID, f.Name, f.ProjectID})
		}
	})
}

func printImages(items []domain.Image) error {
	return render(items, []any{"ID", "Name", "Status", "Pinned", "Path"}, func(tw table.Writer) {
		for _, img := range items {
			tw.AppendRow(table.Row{img.ID, img.Name, img.AnnotationStatus, img.IsPinned, img.Path})
		}
	})
}

func printClasses(items []domain.AnnotationClass) error {
	return render(items, []any{"ID", "Name", "Color", "Attribute groups"}, func(tw table.Writer) {
		for _, c := range items {
			tw.AppendRow(table.Row{c.ID, c.Name, c.Color, len(c.AttributeGroups)})
		}
	})
}

func printUsers(items []domain.User) error {
	return render(items, []any{"ID", "Email", "First name", "Last name", "Role"}, func(tw table.Writer) {
		for _, u := range items {
			tw.AppendRow(table.Row{u.ID, u.Email, u.FirstName, u.LastName, u.Role})
		}
	})
}

func printTeam(team domain.Team) error {
	if viper.GetBool("json") {
		return printJSON(team)
	}
	fmt.Printf("Team %d %s\n", team.ID, team.Name)
	if err := printUsers(team.Users); err != nil {
		return err
	}
	if len(team.PendingInvitations) == 0 {
		return nil
	}
	fmt.Println("Pending invitations")
	tw := newTable(os.Stdout, "Email", "Role")
	for _, inv := range team.PendingInvitations {
		tw.AppendRow(table.Row{inv.Email, inv.Role})
	}
	tw.Render()
	return nil
}

// printAttach lists every item that was not registered and sums up the rest.
func printAttach(res domain.AttachResult) error {
	if viper.GetBool("json") {
		return printJSON(res)
	}
	skipped := 0
	tw := newTable(os.Stdout, "Name", "Outcome", "Reason")
	for _, it := range res.Items {
		if it.Outcome == domain.OutcomeUploaded {
			continue
		}
		skipped++
		tw.AppendRow(table.Row{it.Name, it.Outcome, it.Reason})
	}
	if skipped > 0 {
		tw.Render()
	}
	fmt.Printf("%d uploaded, %d duplicate, %d failed\n", len(res.Uploaded()), len(res.Duplicates()), len(res.Failed()))
	return nil
}

func printAnnotationUpload(res domain.AnnotationUploadResult) error {
	if viper.GetBool("json") {
		return printJSON(res)
	}
	for _, name := range res.MissingImages {
		fmt.Printf("missing image: %s\n", name)
	}
	for _, name := range res.Failed {
		fmt.Printf("failed: %s\n", name)
	}
	fmt.Printf("%d uploaded, %d missing images, %d failed\n", len(res.Uploaded), len(res.MissingImages), len(res.Failed))
	return nil
}
