package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	openml "github.com/Crozal/openml-go"
	"github.com/Crozal/openml-go/internal/config"
)

func newCacheCmd(cfgPath, verbosity *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the local object cache",
	}

	cmd.AddCommand(cacheListCmd(cfgPath, verbosity))
	cmd.AddCommand(cacheClearCmd(cfgPath, verbosity))

	return cmd
}

func cacheListCmd(cfgPath, verbosity *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached objects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, *cfgPath, *verbosity, func(client *openml.Client, cfg config.Config) error {
				objects, err := client.CachedObjects(cmd.Context())
				if err != nil {
					return err
				}

				if len(objects) == 0 {
					fmt.Println("Cache is empty.")
					return nil
				}

				headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a78bfa"))
				mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))

				fmt.Printf("%s  %s  %s  %s  %s\n",
					headerStyle.Render(padRight("KIND", 6)),
					headerStyle.Render(padRight("ID", 8)),
					headerStyle.Render(padRight("FILES", 5)),
					headerStyle.Render(padRight("SIZE", 10)),
					headerStyle.Render("FETCHED"),
				)
				for _, o := range objects {
					fmt.Printf("%s  %s  %s  %s  %s\n",
						padRight(o.Kind, 6),
						padRight(fmt.Sprintf("%d", o.ID), 8),
						padRight(fmt.Sprintf("%d", o.Files), 5),
						padRight(humanSize(o.Size), 10),
						mutedStyle.Render(o.FetchedAt.Format("2006-01-02 15:04")),
					)
				}
				return nil
			})
		},
	}
}

func cacheClearCmd(cfgPath, verbosity *string) *cobra.Command {
	var kind string
	var id int64
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached objects",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id >= 0 && kind == "" {
				return fmt.Errorf("--id requires --kind")
			}
			return withClient(cmd, *cfgPath, *verbosity, func(client *openml.Client, cfg config.Config) error {
				scope := "all cached objects"
				if kind != "" {
					scope = "cached " + kind + "s"
				}
				if id >= 0 {
					scope = fmt.Sprintf("%s %d", kind, id)
				}

				if !force {
					confirm := false
					err := huh.NewConfirm().
						Title(fmt.Sprintf("Remove %s?", scope)).
						Description("Cache directory: " + cfg.CacheDir).
						Affirmative("Remove").
						Negative("Cancel").
						Value(&confirm).
						Run()
					if err != nil {
						return err
					}
					if !confirm {
						fmt.Println("Cancelled")
						return nil
					}
				}

				removed, err := client.ClearCache(cmd.Context(), kind, id)
				if err != nil {
					return err
				}
				fmt.Printf("Removed %d cached object(s)\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Only clear objects of this kind (e.g. flow)")
	cmd.Flags().Int64Var(&id, "id", -1, "Only clear the object with this id (requires --kind)")
	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")

	return cmd
}

func padRight(s string, width int) string {
	for len(s) < width {
		s += " "
	}
	return s
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
