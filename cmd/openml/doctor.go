package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	openml "github.com/Crozal/openml-go"
	"github.com/Crozal/openml-go/internal/config"
	"github.com/Crozal/openml-go/internal/paths"
	"github.com/Crozal/openml-go/internal/version"
)

func newDoctorCmd(cfgPath, verbosity *string) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, cache and server connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath, *verbosity)
			if err != nil {
				cfg = config.Default()
			}

			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
			okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
			warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
			errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
			labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(20)

			check := func(name string, ok bool, msg string) {
				status := okStyle.Render("OK")
				if !ok {
					status = errStyle.Render("FAIL")
				}
				fmt.Printf("  %s %s %s\n", labelStyle.Render(name), status, msg)
			}

			warn := func(name string, msg string) {
				fmt.Printf("  %s %s %s\n", labelStyle.Render(name), warnStyle.Render("WARN"), msg)
			}

			fmt.Println()
			fmt.Println(headerStyle.Render("  OpenML Doctor"))
			fmt.Println(headerStyle.Render("  " + strings.Repeat("-", 40)))
			fmt.Println()

			fmt.Println(headerStyle.Render("  System"))
			fmt.Printf("  %s %s\n", labelStyle.Render("Version:"), version.Version)
			fmt.Printf("  %s %s\n", labelStyle.Render("Go Version:"), runtime.Version())
			fmt.Printf("  %s %s/%s\n", labelStyle.Render("Platform:"), runtime.GOOS, runtime.GOARCH)
			fmt.Println()

			fmt.Println(headerStyle.Render("  Configuration"))
			if fileExists(*cfgPath) {
				check("Config File:", true, *cfgPath)
			} else {
				warn("Config File:", *cfgPath+" (using defaults)")
			}
			if cfg.APIKey != "" {
				check("API Key:", true, "configured")
			} else {
				warn("API Key:", "not set (public reads only)")
			}
			fmt.Println()

			fmt.Println(headerStyle.Render("  Cache"))
			check("Cache Directory:", dirExists(cfg.CacheDir), cfg.CacheDir)
			if fileExists(paths.IndexFile(cfg.CacheDir)) {
				check("Index Database:", true, paths.IndexFile(cfg.CacheDir))
			} else {
				warn("Index Database:", "not created yet")
			}
			fmt.Println()

			fmt.Println(headerStyle.Render("  Server"))
			client, err := openml.New(cmd.Context(),
				openml.WithServer(cfg.Server),
				openml.WithAPIKey(cfg.APIKey),
				openml.WithCacheDir(cfg.CacheDir),
			)
			if err != nil {
				check("Connection:", false, err.Error())
				return nil
			}
			defer client.Close()

			check("Connection:", client.Available(cmd.Context()), cfg.Server)
			fmt.Println()

			return nil
		},
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
