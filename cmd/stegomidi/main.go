// Package main is the entry point for the stegomidi CLI
package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/james-see/stegomidi/pkg/api"
	"github.com/james-see/stegomidi/pkg/converter"
	"github.com/james-see/stegomidi/pkg/converter/schemes"
	"github.com/james-see/stegomidi/pkg/corrupt"
	"github.com/james-see/stegomidi/pkg/prompt"
	"github.com/james-see/stegomidi/pkg/stego"
	"github.com/james-see/stegomidi/pkg/tui"
	"github.com/james-see/stegomidi/pkg/workspace"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	schemeName string
	workdir    string
	interval   int
	verbose    bool

	outputFile string
	inputFile  string
	text       string
	title      string
	saveText   bool
	seed       int64
	encodeAll  bool
	serverPort int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stegomidi",
	Short: "Hide text inside MIDI melodies",
	Long: `stegomidi hides UTF-8 text in the pitches, velocities and durations of
a generated MIDI melody, and recovers it again. Every 20 notes a keyframe
with a CRC-8 checksum lets the decoder detect damaged blocks.

Examples:
  stegomidi encode --text "Hello" --title greeting
  echo -e "Hello\ngreeting" | stegomidi encode
  stegomidi decode greeting_timeshift
  stegomidi corrupt mid/greeting_timeshift.mid --seed 1
  stegomidi tui
  stegomidi serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Hide text in a new MIDI file",
	Long: `Encodes text into a MIDI file saved as mid/<title>_timeshift.mid.
Without --text or --file the text is read from stdin: piped input uses the
last non-blank line as the title, a terminal prompts for both.`,
	Args: cobra.NoArgs,
	RunE: runEncode,
}

var decodeCmd = &cobra.Command{
	Use:   "decode <file>",
	Short: "Recover the text hidden in a MIDI file",
	Long:  `Decodes a MIDI file given by path or by name inside mid/ and reports every sync check.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDecode,
}

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Encode a .txt into .mid or decode a .mid into text",
	Long:  `Detects the direction from the input and output file extensions.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var corruptCmd = &cobra.Command{
	Use:   "corrupt <file>",
	Short: "Shift one random note to test the sync checks",
	Args:  cobra.ExactArgs(1),
	RunE:  runCorrupt,
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Move caches, logs and old outputs into archive/",
	Args:  cobra.NoArgs,
	RunE:  runCleanup,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print the events of a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "List the built-in sample texts",
	Args:  cobra.NoArgs,
	RunE:  runSamples,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the MIDI files saved in mid/",
	Args:  cobra.NoArgs,
	RunE:  runList,
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
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&schemeName, "scheme", "s", schemes.AdaptiveID, "Encoding scheme (adaptive, legacy)")
	rootCmd.PersistentFlags().StringVarP(&workdir, "workdir", "w", "", "Workspace root (default $"+workspace.EnvWorkdir+" or .)")
	rootCmd.PersistentFlags().IntVar(&interval, "interval", stego.DefaultConfig().KeyframeInterval, "Data notes per keyframe")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every encode/decode step")

	// encode command
	encodeCmd.Flags().StringVarP(&text, "text", "t", "", "Text to hide")
	encodeCmd.Flags().StringVarP(&inputFile, "file", "f", "", "Read the text from a file")
	encodeCmd.Flags().StringVar(&title, "title", "", "Title for the MIDI file")
	encodeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path (default mid/<title>_timeshift.mid)")

	// decode command
	decodeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the recovered text to a file")
	decodeCmd.Flags().BoolVar(&saveText, "save", false, "Save the recovered text under artifacts/")

	// convert command
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	_ = convertCmd.MarkFlagRequired("output")

	// corrupt command
	corruptCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (default: time based)")

	// samples command
	samplesCmd.Flags().BoolVar(&encodeAll, "encode", false, "Encode every sample into mid/")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	// Add commands
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(corruptCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(samplesCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: verbose})
	logger.SetLevel(log.WarnLevel)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func codecConfig() stego.Config {
	cfg := stego.DefaultConfig()
	cfg.KeyframeInterval = interval
	cfg.Logger = newLogger()
	return cfg
}

func getConverter() (*converter.Converter, error) {
	scheme, err := schemes.Lookup(schemeName, codecConfig())
	if err != nil {
		return nil, err
	}
	return converter.New(scheme), nil
}

func getWorkspace() *workspace.Workspace {
	return workspace.New(workdir)
}

func readEncodeInput() (prompt.Input, error) {
	switch {
	case text != "":
		return prompt.Input{Text: text, Title: title}, nil
	case inputFile != "":
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return prompt.Input{}, fmt.Errorf("failed to read input file: %w", err)
		}
		return prompt.Input{Text: string(data), Title: title}, nil
	}

	in, err := prompt.Read(os.Stdin, os.Stdout)
	if err != nil {
		return prompt.Input{}, err
	}
	if title != "" {
		in.Title = title
	}
	return in, nil
}

func runEncode(cmd *cobra.Command, args []string) error {
	in, err := readEncodeInput()
	if err != nil {
		return err
	}

	conv, err := getConverter()
	if err != nil {
		return err
	}

	res, err := conv.EncodeText(in.Text, in.Title)
	if err != nil {
		return err
	}

	output := outputFile
	if output != "" {
		if err := os.WriteFile(output, res.Data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
	} else {
		output, err = getWorkspace().SaveArtifact(in.Title, res.Data)
		if err != nil {
			return err
		}
	}

	fmt.Printf("Encoded %d bytes into %d events (%d sync markers)\n", len(in.Text), res.Events, res.Markers)
	fmt.Printf("Saved: %s\n", output)
	return nil
}

func runDecode(cmd *cobra.Command, args []string) error {
	ws := getWorkspace()
	path, err := ws.Resolve(args[0])
	if err != nil {
		return err
	}

	conv, err := getConverter()
	if err != nil {
		return err
	}

	res, err := conv.DecodeFile(path)
	if err != nil {
		return err
	}

	for _, c := range res.Syncs {
		status := "OK"
		switch {
		case c.Malformed:
			status = "MALFORMED"
		case !c.Match:
			status = "MISMATCH"
		}
		fmt.Printf("[SYNC %s] %s actual=%02X\n", status, c.Text, c.Actual)
	}
	if n := len(res.Skipped()); n > 0 {
		fmt.Printf("Skipped %d notes\n", n)
	}
	if res.Truncated() {
		fmt.Printf("Carrier declares %d bytes, recovered %d\n", res.DeclaredLength, len(res.Payload))
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, res.Payload, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Printf("Saved: %s\n", outputFile)
	}
	if saveText {
		saved, err := ws.SaveDecoded(path, res.Text)
		if err != nil {
			return err
		}
		fmt.Printf("Saved: %s\n", saved)
	}

	fmt.Println("Decoded text:")
	fmt.Println(res.Text)

	if len(res.Mismatches()) > 0 {
		return fmt.Errorf("%d of %d blocks failed the checksum", len(res.Mismatches()), len(res.Syncs))
	}
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	conv, err := getConverter()
	if err != nil {
		return err
	}

	fmt.Printf("Converting %s -> %s\n", input, outputFile)
	if err := conv.ConvertFile(input, outputFile); err != nil {
		return err
	}
	fmt.Println("Conversion complete!")
	return nil
}

func runCorrupt(cmd *cobra.Command, args []string) error {
	path, err := getWorkspace().Resolve(args[0])
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed("seed") {
		seed = time.Now().UnixNano()
	}

	output, change, err := corrupt.File(converter.NewMIDIConverter(), path, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}

	fmt.Printf("Corrupted %s\n", change)
	fmt.Printf("Saved: %s\n", output)
	return nil
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ws := getWorkspace()
	moved, err := ws.Archive()
	if err != nil {
		return err
	}
	fmt.Printf("Moved %d entries to %s\n", moved, ws.ArchiveDir())
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	path, err := getWorkspace().Resolve(args[0])
	if err != nil {
		return err
	}

	seq, err := converter.NewMIDIConverter().ReadSequenceFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d events, %d notes, %d markers\n", path, len(seq), len(seq.NoteStarts()), len(seq.Markers()))
	for i, ev := range seq {
		line := ev.String()
		if ev.IsNoteStart() {
			if n, ok := stego.NoteForKey(ev.Key); ok {
				line += " (" + n.String() + ")"
			}
		}
		fmt.Printf("%5d  %s\n", i, line)
	}
	return nil
}

func runSamples(cmd *cobra.Command, args []string) error {
	if !encodeAll {
		for i, s := range converter.SampleTexts {
			fmt.Printf("%d: %s\n", i+1, s)
		}
		return nil
	}

	conv, err := getConverter()
	if err != nil {
		return err
	}
	ws := getWorkspace()
	for i, s := range converter.SampleTexts {
		res, err := conv.EncodeText(s, "")
		if err != nil {
			return err
		}
		path, err := ws.SaveArtifact(fmt.Sprintf("sample_%02d", i+1), res.Data)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%d bytes)\n", path, len(s))
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	entries, err := getWorkspace().List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No MIDI files in mid/")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%-40s %8d  %s\n", e.Name, e.Size, e.ModTime.Format(time.DateTime))
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg := codecConfig()
	// stderr logging would tear the alternate screen
	cfg.Logger = nil
	scheme, err := schemes.Lookup(schemeName, cfg)
	if err != nil {
		return err
	}

	ws := getWorkspace()
	if err := ws.Ensure(); err != nil {
		return err
	}
	return tui.Run(ws, converter.New(scheme))
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort, workdir, schemeName, codecConfig())
}
