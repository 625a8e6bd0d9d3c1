package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ma3bridge/lib/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the console link and channel values of a running bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			if baseURL == "" {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				baseURL = apiURL(cfg.API.Bind)
			}

			status, err := fetchStatus(baseURL)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Setting", "Value"},
				[][]string{
					{"Console", fmt.Sprintf("%s:%d", status.IP, status.Port)},
					{"Local port", strconv.Itoa(status.LocalPort)},
					{"Prefix", status.Prefix},
				},
			))

			rows := make([][]string, len(status.CurrentValues))
			for i, v := range status.CurrentValues {
				rows[i] = []string{strconv.Itoa(i + 1), strconv.Itoa(v), bar(v)}
			}
			fmt.Fprintln(out, renderTable([]string{"Fader", "Value", "Level"}, rows, 1, 2))
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "", "Bridge base URL (default derived from api.bind)")
	return cmd
}

// apiURL turns a listen address into a URL a local client can reach.
func apiURL(bind string) string {
	if strings.HasPrefix(bind, ":") {
		bind = "127.0.0.1" + bind
	}
	if strings.HasPrefix(bind, "0.0.0.0:") {
		bind = "127.0.0.1" + strings.TrimPrefix(bind, "0.0.0.0")
	}
	return "http://" + bind
}

func fetchStatus(baseURL string) (*api.ConfigResponse, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(strings.TrimRight(baseURL, "/") + "/api/config")
	if err != nil {
		return nil, fmt.Errorf("query bridge: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query bridge: unexpected status %s", resp.Status)
	}
	var status api.ConfigResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode bridge status: %w", err)
	}
	return &status, nil
}

func bar(v int) string {
	n := min(max(v, 0), 100) / 5
	return strings.Repeat("█", n) + strings.Repeat("·", 20-n)
}
