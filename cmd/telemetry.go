package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/fulcrum/internal/telemetry"
)

// defaultTelemetryPath is read when neither --file nor telemetry_path is set.
var defaultTelemetryPath = filepath.Join(".fulcrum", "telemetry.jsonl")

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "View JSONL telemetry events recorded by analyze runs",
	Long: `Reads and formats the JSONL telemetry file written by "fulcrum analyze --telemetry".

Without --file, reads telemetry_path from the config, then .fulcrum/telemetry.jsonl.
With --run, prints only the events of one run.
With --follow (-f), watches the file for new events (like tail -f).`,
	Args: cobra.NoArgs,
	RunE: runTelemetry,
}

func init() {
	telemetryCmd.Flags().String("file", "", "telemetry file to read")
	telemetryCmd.Flags().String("run", "", "only show events for this run ID")
	telemetryCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	rootCmd.AddCommand(telemetryCmd)
}

func runTelemetry(cmd *cobra.Command, _ []string) error {
	file, _ := cmd.Flags().GetString("file")
	runID, _ := cmd.Flags().GetString("run")
	follow, _ := cmd.Flags().GetBool("follow")

	path := resolveTelemetryPath(file)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer f.Close()

	w := cmd.OutOrStdout()
	er := &eventReader{r: bufio.NewReader(f), runID: runID}
	if err := er.drain(w); err != nil {
		return fmt.Errorf("telemetry: read %s: %w", path, err)
	}
	if !follow {
		if line := strings.TrimSpace(er.partial); line != "" {
			printEvent(w, line, runID)
		}
		return nil
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return tailFollow(ctx, w, er, path)
}

// resolveTelemetryPath prefers the explicit flag, then the configured path.
func resolveTelemetryPath(file string) string {
	if file != "" {
		return file
	}
	if p := viper.GetString("telemetry_path"); p != "" {
		return p
	}
	return defaultTelemetryPath
}

// eventReader prints complete JSONL lines from r. An unterminated trailing
// line is held in partial until its newline arrives.
type eventReader struct {
	r       *bufio.Reader
	partial string
	runID   string
}

func (er *eventReader) drain(w io.Writer) error {
	for {
		chunk, err := er.r.ReadString('\n')
		er.partial += chunk
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if line := strings.TrimSpace(er.partial); line != "" {
			printEvent(w, line, er.runID)
		}
		er.partial = ""
	}
}

// tailFollow watches the file using fsnotify and prints new events until the
// context is cancelled or the watcher closes.
func tailFollow(ctx context.Context, w io.Writer, er *eventReader, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("telemetry: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("telemetry: watch %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == 0 {
				continue
			}
			if err := er.drain(w); err != nil {
				return fmt.Errorf("telemetry: read %s: %w", path, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("telemetry: watch %s: %w", path, err)
		}
	}
}

// printEvent decodes a JSONL line and prints a human-readable representation.
// Events from runs other than runID are skipped when runID is set.
func printEvent(w io.Writer, line, runID string) {
	var evt telemetry.Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		fmt.Fprintf(w, "??? %s\n", line)
		return
	}
	if runID != "" && evt.RunID != runID {
		return
	}

	ts := evt.Timestamp.Format(time.TimeOnly)
	parts := []string{fmt.Sprintf("[%s]", ts), evt.Kind}

	if evt.RunID != "" {
		parts = append(parts, fmt.Sprintf("run=%s", evt.RunID))
	}
	if evt.Data != nil {
		if m, ok := evt.Data.(map[string]any); ok {
			parts = append(parts, formatDataMap(m))
		} else {
			data, _ := json.Marshal(evt.Data)
			parts = append(parts, string(data))
		}
	}

	fmt.Fprintln(w, strings.Join(parts, " "))
}

// formatDataMap formats a data map as key=value pairs sorted by key.
func formatDataMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, m[k])
	}
	return b.String()
}
