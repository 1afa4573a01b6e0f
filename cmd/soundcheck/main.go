package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/soundcheck/internal/analysis"
	"github.com/linuxmatters/soundcheck/internal/audio"
	"github.com/linuxmatters/soundcheck/internal/cli"
	"github.com/linuxmatters/soundcheck/internal/logging"
	"github.com/linuxmatters/soundcheck/internal/mains"
	"github.com/linuxmatters/soundcheck/internal/ui"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface
type CLI struct {
	Version bool     `short:"v" help:"Show version information"`
	Deep    bool     `short:"d" help:"Run the full assessment (reverb, silence, clipping, stereo)"`
	Logs    bool     `help:"Write a detailed assessment report next to each input file"`
	Plain   bool     `help:"Print results to stdout instead of the interactive display"`
	Files   []string `arg:"" name:"files" help:"WAV files to assess" type:"existingfile" optional:""`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("soundcheck"),
		kong.Description("Podcast recording quality assessment"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	// Validate input
	if len(cliArgs.Files) == 0 {
		cli.PrintError("No input files specified")
		ctx.PrintUsage(false)
		os.Exit(1)
	}

	depth := analysis.DepthBase
	if cliArgs.Deep {
		depth = analysis.DepthDeep
	}

	if cliArgs.Plain {
		os.Exit(runPlain(cliArgs, depth))
	}

	// One token for the whole run; quitting the UI cancels the engine.
	token := analysis.NewToken()

	model := ui.NewModel(cliArgs.Files, token.Cancel)
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Assess files in the background, feeding the UI through p.Send
	go func() {
		mainsHz := mains.Hz()

		for i, inputPath := range cliArgs.Files {
			if token.Cancelled() {
				return
			}

			fileStartTime := time.Now()
			p.Send(ui.FileStartMsg{
				FileIndex: i,
				FileName:  inputPath,
			})

			rec, err := audio.ReadWAVFile(inputPath)
			if err != nil {
				p.Send(ui.FileCompleteMsg{FileIndex: i, Error: err})
				continue
			}

			result, err := analysis.Analyze(rec, analysis.Options{
				Depth: depth,
				Token: token,
				Progress: func(message string, fraction float64) {
					p.Send(ui.ProgressMsg{
						FileIndex: i,
						Stage:     message,
						Fraction:  fraction,
					})
				},
			})
			if err != nil {
				if analysis.IsCancelled(err) {
					return
				}
				p.Send(ui.FileCompleteMsg{FileIndex: i, Error: err})
				continue
			}

			reportPath := ""
			if cliArgs.Logs {
				reportPath, err = logging.GenerateReport(logging.ReportData{
					InputPath: inputPath,
					StartTime: fileStartTime,
					EndTime:   time.Now(),
					Result:    result,
					MainsHz:   mainsHz,
				})
				if err != nil {
					p.Send(ui.FileCompleteMsg{FileIndex: i, Error: err})
					continue
				}
			}

			p.Send(ui.FileCompleteMsg{
				FileIndex:  i,
				Result:     result,
				ReportPath: reportPath,
			})
		}

		p.Send(ui.AllCompleteMsg{})
	}()

	if _, err := p.Run(); err != nil {
		cli.PrintError(fmt.Sprintf("UI error: %v", err))
		os.Exit(1)
	}
}

// runPlain assesses each file sequentially and prints the results to
// stdout. Returns the process exit code.
func runPlain(cliArgs *CLI, depth analysis.Depth) int {
	mainsHz := mains.Hz()
	failed := 0

	for _, inputPath := range cliArgs.Files {
		startTime := time.Now()

		rec, err := audio.ReadWAVFile(inputPath)
		if err != nil {
			cli.PrintError(fmt.Sprintf("%s: %v", inputPath, err))
			failed++
			continue
		}

		result, err := analysis.Analyze(rec, analysis.Options{Depth: depth})
		if err != nil {
			cli.PrintError(fmt.Sprintf("%s: %v", inputPath, err))
			failed++
			continue
		}

		logging.DisplayAnalysisResults(os.Stdout, inputPath, result, mainsHz)

		if cliArgs.Logs {
			reportPath, err := logging.GenerateReport(logging.ReportData{
				InputPath: inputPath,
				StartTime: startTime,
				EndTime:   time.Now(),
				Result:    result,
				MainsHz:   mainsHz,
			})
			if err != nil {
				cli.PrintError(fmt.Sprintf("%s: %v", inputPath, err))
				failed++
				continue
			}
			fmt.Printf("Report written to %s\n\n", reportPath)
		}
	}

	if failed > 0 {
		return 1
	}
	return 0
}
