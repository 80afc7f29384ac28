package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	urfave "github.com/urfave/cli/v3"

	"github.com/okian/rallyboard/internal/domain/types"
	"github.com/okian/rallyboard/pkg/logger"
)

const (
	defaultBaseURL = "http://localhost:9080"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

const (
	urlFlag     = "url"
	timeoutFlag = "timeout"
)

func (a *app) verifyCmd() *urfave.Command {
	return &urfave.Command{
		Name:      "verify",
		Usage:     "Check a running server's leaderboard is sorted and, given FILE, matches it",
		ArgsUsage: "[FILE|-]",
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:  urlFlag,
				Usage: "Base URL of a running leaderboard server",
				Value: defaultBaseURL,
			},
			&urfave.DurationFlag{
				Name:  timeoutFlag,
				Usage: "HTTP request timeout",
				Value: defaultTimeout,
			},
		},
		Action: a.verify,
	}
}

func (a *app) verify(ctx context.Context, cmd *urfave.Command) error {
	if err := a.setup(cmd); err != nil {
		return err
	}

	client := newHTTPClient(cmd.Duration(timeoutFlag))
	remote, err := client.leaderboard(ctx, cmd.String(urlFlag))
	if err != nil {
		return err
	}
	a.log.Debug(ctx, "fetched leaderboard", logger.Int("entries", len(remote)))

	if err := checkSorted(remote); err != nil {
		return err
	}

	if cmd.Args().Len() == 0 {
		_, err = fmt.Fprintf(a.out, "ok: %d entries, sorted\n", len(remote))
		return err
	}

	board, err := a.load(ctx, cmd)
	if err != nil {
		return err
	}
	local := types.FromRankedSlice(board.Entries)
	if diff := cmp.Diff(comparedRows(local), comparedRows(remote)); diff != "" {
		return fmt.Errorf("%w (-local +remote):\n%s", ErrMismatch, diff)
	}
	_, err = fmt.Fprintf(a.out, "ok: %d entries match %s\n", len(remote), board.Source)
	return err
}

// checkSorted verifies ranks run 1..n and scores never increase.
func checkSorted(rows []types.Entry) error {
	for i, r := range rows {
		if r.Rank != i+1 {
			return fmt.Errorf("%w: row %d has rank %d", ErrUnsorted, i+1, r.Rank)
		}
		if i > 0 && r.Score > rows[i-1].Score {
			return fmt.Errorf("%w: %s (%v) ranked below %s (%v)",
				ErrUnsorted, r.Name, r.Score, rows[i-1].Name, rows[i-1].Score)
		}
	}
	return nil
}

// comparedEntry is the part of a row both sides must agree on. Tier is
// left out because the server may use a different layout.
type comparedEntry struct {
	Rank    int
	Name    string
	Score   float64
	Partner string
}

func comparedRows(rows []types.Entry) []comparedEntry {
	out := make([]comparedEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, comparedEntry{Rank: r.Rank, Name: r.Name, Score: r.Score, Partner: r.Partner})
	}
	return out
}

// httpClient wraps http.Client with a timeout.
type httpClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *httpClient {
	return &httpClient{client: &http.Client{Timeout: timeout}}
}

// leaderboard fetches every ranked row from base.
func (c *httpClient) leaderboard(ctx context.Context, base string) ([]types.Entry, error) {
	url := strings.TrimRight(base, "/") + "/leaderboard"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: %s: %s", ErrUnexpectedStatus, resp.Status, strings.TrimSpace(string(body)))
	}

	var rows []types.Entry
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decoding leaderboard: %w", err)
	}
	return rows, nil
}
