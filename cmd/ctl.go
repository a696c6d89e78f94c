package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wastewise-india/sortline/api"
	"github.com/wastewise-india/sortline/sim"
)

// LineClient drives a running `sortline serve` over HTTP.
type LineClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewLineClient creates a client for the server at baseURL.
func NewLineClient(baseURL string) *LineClient {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &LineClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Command posts to /api/line/<name> and returns the resulting snapshot.
func (c *LineClient) Command(ctx context.Context, name string) (sim.Snapshot, error) {
	return c.do(ctx, http.MethodPost, "/api/line/"+name)
}

// Snapshot fetches the latest snapshot.
func (c *LineClient) Snapshot(ctx context.Context) (sim.Snapshot, error) {
	return c.do(ctx, http.MethodGet, "/api/line/snapshot")
}

func (c *LineClient) do(ctx context.Context, method, path string) (sim.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return sim.Snapshot{}, fmt.Errorf("request creation error: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return sim.Snapshot{}, fmt.Errorf("HTTP error: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return sim.Snapshot{}, fmt.Errorf("read error: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := &api.APIError{Status: resp.StatusCode}
		if json.Unmarshal(body, apiErr) != nil || apiErr.Code == "" {
			return sim.Snapshot{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
		}
		return sim.Snapshot{}, apiErr
	}

	var snap sim.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return sim.Snapshot{}, fmt.Errorf("JSON parse error: %w", err)
	}
	return snap, nil
}

// printSnapshot writes a short human-readable view of snap.
func printSnapshot(w io.Writer, snap sim.Snapshot) {
	state := "paused"
	if snap.Running {
		state = "running"
	}
	fmt.Fprintf(w, "Session %s (%s)\n", snap.SessionID, state)
	fmt.Fprintf(w, "In Flight            : %d primary, %d inspection\n", len(snap.PrimaryItems), len(snap.InspectionItems))
	snap.Stats.Fprint(w, snap.Clock)
	for _, ev := range snap.Events {
		fmt.Fprintf(w, "  [%6.1fs] %s\n", float64(ev.Clock)/1000, ev.Message)
	}
}

var ctlAddr string

var ctlCmd = &cobra.Command{
	Use:       "ctl start|stop|reset|step|snapshot",
	Short:     "Control a running `sortline serve`",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"start", "stop", "reset", "step", "snapshot"},
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		client := NewLineClient(ctlAddr)

		var (
			snap sim.Snapshot
			err  error
		)
		if args[0] == "snapshot" {
			snap, err = client.Snapshot(cmd.Context())
		} else {
			snap, err = client.Command(cmd.Context(), args[0])
		}
		if err != nil {
			logrus.Fatalf("%s failed: %v", args[0], err)
		}
		printSnapshot(os.Stdout, snap)
	},
}

func init() {
	ctlCmd.Flags().StringVar(&ctlAddr, "addr", "localhost:8080", "Address of the running server")

	rootCmd.AddCommand(ctlCmd)
}
