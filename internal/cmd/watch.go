package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/KHET-1/meowlogger/internal/engine"
	"github.com/KHET-1/meowlogger/internal/model"
	"github.com/KHET-1/meowlogger/internal/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Watch log files for new entries",
	Long: `Watch one or more files or directories and stream enriched entries to
the terminal in real time. Directories are scanned recursively for *.log
files at startup. Supports colorized output and JSON mode.

Examples:
  meowlogger watch /var/log/app.log
  meowlogger watch /var/log
  meowlogger watch app.log server.log --output json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nmeowlogger shutting down...")
		cancel()
	}()

	eng := engine.New(viper.GetDuration("poll_interval"))

	for _, path := range args {
		if err := eng.Watch(path); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
	if eng.FileCount() == 0 {
		return fmt.Errorf("no watchable files among: %v", args)
	}
	fmt.Fprintf(os.Stderr, "meowlogger watching %d file(s)\n", eng.FileCount())

	var renderer output.Renderer
	switch strings.ToLower(outputFmt) {
	case "json":
		renderer = output.NewJSONRenderer()
	default:
		renderer = output.NewTextRenderer()
	}

	levelSet := make(map[string]bool)
	if levelFilter != "" {
		for _, l := range strings.Split(levelFilter, ",") {
			levelSet[strings.ToUpper(strings.TrimSpace(l))] = true
		}
	}

	entries := eng.Subscribe()
	eng.Start()
	defer eng.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-entries:
			if !ok {
				return nil
			}
			if shouldShow(e, levelSet) {
				if err := renderer.Render(e); err != nil {
					log.Printf("render error: %v", err)
				}
			}
		}
	}
}

// shouldShow returns true if the entry passes the level filter.
func shouldShow(e model.Entry, levelSet map[string]bool) bool {
	if len(levelSet) == 0 {
		return true
	}
	return levelSet[e.Level]
}
