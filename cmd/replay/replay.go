package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/panjf2000/ants/v2"
	"github.com/ryanreadbooks/tokkistream/stream"
	"github.com/ryanreadbooks/tokkistream/transport"

	"github.com/spf13/cobra"
)

var (
	outputJSON bool
	chunkSize  int
	strict     bool
	workers    int
)

var ReplayCmd = &cobra.Command{
	Use:   "replay <glob>...",
	Short: "Decode captured streams.",
	Long:  "Decode captured stream files matching the given doublestar globs and print their events.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReplay(cmd.Context(), cmd.OutOrStdout(), args)
	},
}

func init() {
	ReplayCmd.Flags().BoolVar(&outputJSON, "json", false, "Print one JSON object per event.")
	ReplayCmd.Flags().IntVar(&chunkSize, "chunk", 0, "Feed the decoder N bytes at a time, 0 for the default.")
	ReplayCmd.Flags().BoolVar(&strict, "strict", false, "Report unknown event types as errors.")
	ReplayCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Number of files decoded concurrently.")
}

type replayOptions struct {
	chunkSize int
	workers   int
	decoder   []stream.Option
}

type fileResult struct {
	Path      string
	Events    []stream.Event
	Message   stream.Message
	Completed bool
	Err       error
}

// jsonEvent is one line of --json output
type jsonEvent struct {
	File  string       `json:"file"`
	Event stream.Event `json:"event"`
	Kind  string       `json:"kind,omitempty"`
}

func runReplay(ctx context.Context, w io.Writer, patterns []string) error {
	files, err := expandGlobs(patterns)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files match %s", strings.Join(patterns, " "))
	}

	opts := replayOptions{chunkSize: chunkSize, workers: workers}
	if strict {
		opts.decoder = append(opts.decoder, stream.WithStrictTypes())
	}

	results, err := replayFiles(ctx, files, opts)
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(w, results)
	}
	printText(w, results)
	return nil
}

// expandGlobs returns the sorted, deduplicated files matched by patterns.
func expandGlobs(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		files = append(files, matches...)
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

// replayFiles decodes every file on a worker pool. Results keep the order of
// files.
func replayFiles(ctx context.Context, files []string, opts replayOptions) ([]fileResult, error) {
	pool, err := ants.NewPool(max(opts.workers, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]fileResult, len(files))
	var wg sync.WaitGroup
	for i, path := range files {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			results[i] = replayFile(ctx, path, opts)
		})
		if err != nil {
			wg.Done()
			results[i] = fileResult{Path: path, Err: err}
		}
	}
	wg.Wait()

	return results, nil
}

func replayFile(ctx context.Context, path string, opts replayOptions) fileResult {
	res := fileResult{Path: path}

	tr := &transport.ReaderTransport{
		Source: func(context.Context, *transport.Request) (io.ReadCloser, error) {
			return os.Open(path)
		},
		ChunkSize: opts.chunkSize,
		Options:   opts.decoder,
	}

	st, err := tr.Open(ctx, &transport.Request{})
	if err != nil {
		res.Err = err
		return res
	}

	for ev := range st.Events {
		res.Events = append(res.Events, ev)
	}
	res.Message = st.Message()
	res.Completed = st.Completed()

	slog.Debug("[replay] decoded", "file", path, "events", len(res.Events), "completed", res.Completed)
	return res
}

func printText(w io.Writer, results []fileResult) {
	for _, res := range results {
		fmt.Fprintf(w, "== %s\n", res.Path)
		if res.Err != nil {
			fmt.Fprintf(w, "  failed: %v\n", res.Err)
			continue
		}

		for _, ev := range res.Events {
			fmt.Fprintf(w, "  %s\n", formatEvent(ev))
		}

		status := "completed"
		if !res.Completed {
			status = "not completed"
		}
		fmt.Fprintf(w, "  -- %s, %d events, %d tool calls, %d content bytes\n",
			status, len(res.Events), len(res.Message.ToolCalls), len(res.Message.Content))
	}
}

func formatEvent(ev stream.Event) string {
	switch ev.Type {
	case stream.EventThinking, stream.EventContent:
		return fmt.Sprintf("%-11s %q", ev.Type, ev.Text)
	case stream.EventToolCall:
		return fmt.Sprintf("%-11s %s %s", ev.Type, ev.ToolName, ev.Arguments)
	case stream.EventToolResult:
		if !ev.Success {
			return fmt.Sprintf("%-11s %s failed: %s", ev.Type, ev.ToolName, ev.Error)
		}
		return fmt.Sprintf("%-11s %s %s", ev.Type, ev.ToolName, ev.Result)
	case stream.EventError:
		return fmt.Sprintf("%-11s [%s] %s", ev.Type, ev.Kind, ev.Message())
	}
	return ev.Type.String()
}

func printJSON(w io.Writer, results []fileResult) error {
	enc := json.NewEncoder(w)
	for _, res := range results {
		if res.Err != nil {
			slog.Warn("[replay] failed to decode file", "file", res.Path, "error", res.Err)
			continue
		}

		for _, ev := range res.Events {
			line := jsonEvent{File: res.Path, Event: ev}
			if ev.IsError() {
				line.Kind = ev.Kind.String()
			}
			if err := enc.Encode(line); err != nil {
				return fmt.Errorf("failed to write event: %w", err)
			}
		}
	}
	return nil
}
