package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	openml "github.com/Crozal/openml-go"
	"github.com/Crozal/openml-go/flow"
	"github.com/Crozal/openml-go/internal/config"
	"github.com/Crozal/openml-go/internal/render"
)

func newFlowCmd(cfgPath, verbosity *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "flow",
		Short:   "Retrieve and inspect OpenML flows",
		Aliases: []string{"flows"},
	}

	cmd.AddCommand(getFlowCmd(cfgPath, verbosity))
	cmd.AddCommand(showFlowCmd(cfgPath, verbosity))
	cmd.AddCommand(flowVersionCmd(cfgPath, verbosity))

	return cmd
}

func parseFlowID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid flow id %q: expected a number", arg)
	}
	return id, nil
}

func getOpts(cacheOnly bool) []openml.GetOption {
	if cacheOnly {
		return []openml.GetOption{openml.CacheOnly()}
	}
	return nil
}

func getFlowCmd(cfgPath, verbosity *string) *cobra.Command {
	var cacheOnly bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch a flow into the local cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseFlowID(args[0])
			if err != nil {
				return err
			}
			return withClient(cmd, *cfgPath, *verbosity, func(client *openml.Client, _ config.Config) error {
				f, err := client.GetFlow(cmd.Context(), id, getOpts(cacheOnly)...)
				if err != nil {
					return err
				}

				if jsonOutput {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(f)
				}

				fmt.Printf("flow %d: %s (version %s)\n", f.ID, f.Name, f.Version)
				if f.SourcePath != "" {
					fmt.Printf("source: %s\n", f.SourcePath)
				}
				if f.BinaryPath != "" {
					fmt.Printf("binary: %s\n", f.BinaryPath)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&cacheOnly, "cache-only", false, "Fail instead of fetching when not cached")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func showFlowCmd(cfgPath, verbosity *string) *cobra.Command {
	var cacheOnly bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a flow's metadata, parameters and component tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseFlowID(args[0])
			if err != nil {
				return err
			}
			return withClient(cmd, *cfgPath, *verbosity, func(client *openml.Client, _ config.Config) error {
				f, err := client.GetFlow(cmd.Context(), id, getOpts(cacheOnly)...)
				if err != nil {
					return err
				}

				fmt.Println()
				fmt.Print(render.Summary(f))

				if desc := render.Description(f, render.Width()); desc != "" {
					fmt.Println()
					fmt.Print(desc)
				}

				if params := render.Parameters(f); params != "" {
					fmt.Println("\nParameters:")
					fmt.Print(params)
				}

				if tree := render.ComponentTree(f); tree != "" {
					fmt.Println("\nComponents:")
					fmt.Println(tree)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&cacheOnly, "cache-only", false, "Fail instead of fetching when not cached")

	return cmd
}

func flowVersionCmd(cfgPath, verbosity *string) *cobra.Command {
	var cacheOnly bool

	cmd := &cobra.Command{
		Use:   "version <id>",
		Short: "Print the revision number from a flow's external version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseFlowID(args[0])
			if err != nil {
				return err
			}
			return withClient(cmd, *cfgPath, *verbosity, func(client *openml.Client, _ config.Config) error {
				f, err := client.GetFlow(cmd.Context(), id, getOpts(cacheOnly)...)
				if err != nil {
					return err
				}
				v, err := flow.ExternalVersionNumber(f)
				if err != nil {
					return err
				}
				fmt.Println(v)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&cacheOnly, "cache-only", false, "Fail instead of fetching when not cached")

	return cmd
}
