// Package main is the entry point for the clonehero2beatsaber CLI
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/james-see/clonehero2beatsaber/pkg/api"
	"github.com/james-see/clonehero2beatsaber/pkg/audio"
	"github.com/james-see/clonehero2beatsaber/pkg/config"
	"github.com/james-see/clonehero2beatsaber/pkg/converter"
	"github.com/james-see/clonehero2beatsaber/pkg/extractor"
	"github.com/james-see/clonehero2beatsaber/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string
	outputDir  string
	workers    int
	serverPort int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clonehero2beatsaber",
	Short: "Convert Clone Hero song archives to Beat Saber maps",
	Long: `clonehero2beatsaber converts Clone Hero song packages (notes.mid +
song.ini + audio + cover art, zipped) into Beat Saber maps (info.dat plus one
difficulty .dat per mapped difficulty).

Audio is transcoded with ffmpeg; install it for songs whose audio is not
already in the target format.

Examples:
  clonehero2beatsaber convert song.zip
  clonehero2beatsaber batch ./downloads -j 4
  clonehero2beatsaber tui
  clonehero2beatsaber serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var convertCmd = &cobra.Command{
	Use:   "convert <song.zip>...",
	Short: "Convert one or more song archives",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runConvert,
}

var batchCmd = &cobra.Command{
	Use:   "batch <directory>",
	Short: "Convert every song archive in a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatch,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "Path to config file")

	convertCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (overrides config)")
	batchCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (overrides config)")
	batchCmd.Flags().IntVarP(&workers, "workers", "j", runtime.NumCPU(), "Number of concurrent conversions")

	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadSetup() (*config.Config, *converter.Converter, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if outputDir != "" {
		cfg.OutputDirectory = outputDir
	}

	conv, err := converter.New(converter.Options{
		OutputDir:       cfg.OutputDirectory,
		DifficultyTable: cfg.DifficultyTable(),
		AudioFormat:     cfg.AudioTargetFormat,
	})
	if err != nil {
		return nil, nil, err
	}

	if !audio.FFmpegAvailable() {
		log.Warn("ffmpeg not found in PATH; only audio already in the target format can be used")
	}
	return cfg, conv, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runConvert(cmd *cobra.Command, args []string) error {
	_, conv, err := loadSetup()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	ex := extractor.New("", nil)
	summary := conv.BatchConvert(ctx, ex, args, 1)
	printSummary(summary)
	if summary.Failed.Load() > 0 {
		return fmt.Errorf("%d of %d songs failed", summary.Failed.Load(), len(args))
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	_, conv, err := loadSetup()
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(args[0])
	if err != nil {
		return err
	}
	var archives []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".zip") {
			archives = append(archives, filepath.Join(args[0], e.Name()))
		}
	}
	if len(archives) == 0 {
		return fmt.Errorf("no .zip archives found in %s", args[0])
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("Converting %d archives with %d workers...\n", len(archives), workers)
	ex := extractor.New("", nil)
	summary := conv.BatchConvert(ctx, ex, archives, workers)
	printSummary(summary)
	if summary.Failed.Load() > 0 {
		return fmt.Errorf("%d of %d songs failed", summary.Failed.Load(), len(archives))
	}
	return nil
}

func printSummary(summary *converter.BatchSummary) {
	for _, res := range summary.Results() {
		fmt.Printf("✓ %s → %s (%d notes, difficulties: %s)\n",
			res.SongName, res.OutputDir, res.NoteCount, strings.Join(res.Difficulties, ", "))
		for _, w := range res.Diagnostics.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
	}

	errs := summary.Errors()
	paths := make([]string, 0, len(errs))
	for p := range errs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		fmt.Printf("✗ %s: %v\n", p, errs[p])
	}

	fmt.Printf("\nConverted: %d  Failed: %d  Dropped notes: %d unmapped, %d duplicate onsets, %d unmatched releases\n",
		summary.Converted.Load(), summary.Failed.Load(),
		summary.UnmappedNotes.Load(), summary.DuplicateOnsets.Load(), summary.UnmatchedReleases.Load())
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return tui.Run(cfg)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort, cfg)
}
