package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
)

// addrFlag points the check and status commands at a running daemon.
func addrFlag(dest *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "addr",
		Usage:       "address of the running daemon",
		Value:       "127.0.0.1:8080",
		Sources:     cli.EnvVars("COMMITWATCH_LISTEN_ADDR"),
		Destination: dest,
	}
}

func cmdCheck() *cli.Command {
	var addr string

	return &cli.Command{
		Name:  "check",
		Usage: "trigger an immediate check cycle on the running daemon",
		Flags: []cli.Flag{addrFlag(&addr)},
		Action: func(ctx context.Context, c *cli.Command) error {
			if _, err := callDaemon(ctx, http.MethodPost, addr, "/api/v1/check"); err != nil {
				return fmt.Errorf("check failed: %w", err)
			}
			fmt.Fprintln(c.Writer, "repository check complete")
			return nil
		},
	}
}

func cmdStatus() *cli.Command {
	var addr string

	return &cli.Command{
		Name:  "status",
		Usage: "show tracking status for each configured repository",
		Flags: []cli.Flag{addrFlag(&addr)},
		Action: func(ctx context.Context, c *cli.Command) error {
			body, err := callDaemon(ctx, http.MethodGet, addr, "/api/v1/status")
			if err != nil {
				return fmt.Errorf("status failed: %w", err)
			}

			var statuses []struct {
				Repository string `json:"repository"`
				Branch     string `json:"branch"`
				SHA        string `json:"sha"`
				Date       string `json:"date"`
				HasData    bool   `json:"has_data"`
			}
			if err := json.Unmarshal(body, &statuses); err != nil {
				return fmt.Errorf("decoding status response: %w", err)
			}

			if len(statuses) == 0 {
				fmt.Fprintln(c.Writer, "no repositories configured")
				return nil
			}

			for _, s := range statuses {
				fmt.Fprintf(c.Writer, "%s@%s\n", s.Repository, s.Branch)
				if s.HasData {
					sha := s.SHA
					if len(sha) > 7 {
						sha = sha[:7]
					}
					fmt.Fprintf(c.Writer, "  commit: %s\n", sha)
					fmt.Fprintf(c.Writer, "  date:   %s\n", s.Date)
				} else {
					fmt.Fprintln(c.Writer, "  no data yet")
				}
			}
			return nil
		},
	}
}

// callDaemon performs one API request against the running daemon and returns
// the response body, turning non-2xx responses into errors carrying the
// server's error message.
func callDaemon(ctx context.Context, method, addr, path string) ([]byte, error) {
	client := &http.Client{Timeout: 5 * time.Minute}

	url := "http://" + addr + path
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("%s", apiErr.Error)
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
