package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/yxbh/bdpl/internal/settings"
	"github.com/yxbh/bdpl/pkg/bdpl"
)

var version = "dev"

var (
	flagPath              string
	flagFilterShort       bool
	flagFilterShortValue  int
	flagScanIGStreams     bool
	flagMaxIGPacketsValue int
	flagWorkers           int
	flagOutput            string
)

var rootCmd = &cobra.Command{
	Use:           "bdpl --path <bdmv-dir>",
	Short:         "Infer episode boundaries from a Blu-ray BDMV directory tree.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runScan(cmd)
	},
}

var updateCmd = &cobra.Command{
	Use:                   "update",
	Short:                 "Update bdpl to the latest version",
	Long:                  "Update bdpl to the latest version (release builds only).",
	RunE:                  func(cmd *cobra.Command, _ []string) error { return runSelfUpdate(cmd.Context()) },
	DisableFlagsInUseLine: true,
}

var versionCmd = &cobra.Command{
	Use:                   "version",
	Short:                 "Print bdpl version information",
	RunE:                  func(cmd *cobra.Command, _ []string) error { fmt.Fprintln(cmd.OutOrStdout(), version); return nil },
	DisableFlagsInUseLine: true,
}

func init() {
	rootCmd.Flags().StringVarP(&flagPath, "path", "p", "", "path to the disc's BDMV directory (or an ancestor containing it)")
	rootCmd.Flags().BoolVarP(&flagFilterShort, "filter-short", "y", true, "exclude playlists shorter than --filter-short-value from duration clustering")
	rootCmd.Flags().IntVarP(&flagFilterShortValue, "filter-short-value", "v", 180, "seconds below which a playlist is excluded from duration clustering")
	rootCmd.Flags().BoolVar(&flagScanIGStreams, "scan-ig-streams", false, "additionally scan menu streams for IG chapter/button hints")
	rootCmd.Flags().IntVar(&flagMaxIGPacketsValue, "max-ig-packets", 200000, "cap on MPEG-TS packets scanned per candidate menu stream")
	rootCmd.Flags().IntVarP(&flagWorkers, "workers", "w", 0, "worker count setting (files are parsed sequentially; this value is not used)")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "write the report to this file instead of stdout")

	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func runScan(cmd *cobra.Command) error {
	if flagPath == "" {
		return errors.New("--path is required")
	}

	cfg := settings.Default()
	cfg.FilterShortPlaylists = flagFilterShort
	cfg.FilterShortPlaylistsVal = flagFilterShortValue
	cfg.ScanIGStreams = flagScanIGStreams
	cfg.MaxIGPacketsPerFile = flagMaxIGPacketsValue
	cfg.WorkerCount = flagWorkers

	res, err := bdpl.Run(cmd.Context(), bdpl.Options{Path: flagPath, Settings: cfg})
	if err != nil {
		return fmt.Errorf("scanning %s: %w", flagPath, err)
	}

	if flagOutput == "" {
		fmt.Fprint(cmd.OutOrStdout(), res.Report)
		return nil
	}
	return os.WriteFile(flagOutput, []byte(res.Report), 0o644)
}

func runSelfUpdate(ctx context.Context) error {
	if version == "" || version == "dev" {
		return errors.New("self-update is only available in release builds")
	}

	if _, err := semver.ParseTolerant(version); err != nil {
		return fmt.Errorf("could not parse version: %w", err)
	}

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug("yxbh/bdpl"))
	if err != nil {
		return fmt.Errorf("error occurred while detecting version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest version for yxbh/bdpl/%s could not be found from github repository", version)
	}

	if latest.LessOrEqual(version) {
		fmt.Printf("Current binary is the latest version: %s\n", version)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}

	fmt.Printf("Successfully updated to version: %s\n", latest.Version())
	return nil
}
