package cmd

import (
	"fmt"
	"os"

	"github.com/KHET-1/meowlogger/internal/engine"
	"github.com/KHET-1/meowlogger/internal/server"
	"github.com/KHET-1/meowlogger/internal/storage"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve [paths...]",
	Short: "Run the ingestion engine with the HTTP API",
	Long: `Start the engine with the configured storage backend and expose the
HTTP API: /api/logs, /api/stats, /api/watch, /api/clear, /healthz, and a
WebSocket entry stream on /ws. Paths given as arguments are watched from
startup; more can be added through POST /api/watch.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	eng := engine.New(viper.GetDuration("poll_interval"))

	switch viper.GetString("storage.backend") {
	case "file":
		eng.SetStorage(storage.NewFile(
			viper.GetString("storage.path"),
			viper.GetInt64("storage.max_size"),
			viper.GetInt("storage.backups"),
		))
	case "memory", "":
		eng.SetStorage(storage.NewMemory(viper.GetInt("memory.capacity")))
	default:
		return fmt.Errorf("unknown storage backend: %s", viper.GetString("storage.backend"))
	}

	for _, path := range args {
		if err := eng.Watch(path); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	// Pick up poll_interval changes without a restart.
	viper.OnConfigChange(func(in fsnotify.Event) {
		if d := viper.GetDuration("poll_interval"); d > 0 {
			eng.SetPollInterval(d)
		}
	})
	viper.WatchConfig()

	eng.Start()
	defer eng.Stop()

	port := viper.GetString("server.port")
	fmt.Fprintf(os.Stderr, "meowlogger serving on :%s (watching %d file(s))\n", port, eng.FileCount())

	return server.New(eng, port).Start()
}
