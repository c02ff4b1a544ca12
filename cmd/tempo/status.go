package main

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/15mga/tempo/tracker"
	"github.com/15mga/tempo/util"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tracked tasks and deferred calls of a running tempo",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConf()
		if err != nil {
			return err
		}
		status, err := fetchStatus(cmd.Context(), conf.Admin.Addr)
		if err != nil {
			return err
		}
		return renderStatus(cmd.OutOrStdout(), status)
	},
}

func statusUrl(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimRight(addr, "/") + "/status"
	}
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr + "/status"
}

func fetchStatus(ctx context.Context, addr string) (*tracker.Status, *util.Err) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	url := statusUrl(addr)
	req, e := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if e != nil {
		return nil, util.WrapErr(util.EcParamsErr, e)
	}
	res, e := http.DefaultClient.Do(req)
	if e != nil {
		return nil, util.NewErr(util.EcConnectErr, util.M{
			"url":   url,
			"error": e.Error(),
		})
	}
	defer res.Body.Close()
	data, e := io.ReadAll(res.Body)
	if e != nil {
		return nil, util.WrapErr(util.EcIo, e)
	}
	if res.StatusCode != http.StatusOK {
		return nil, util.NewErr(util.EcServiceErr, util.M{
			"url":    url,
			"status": res.StatusCode,
			"body":   string(data),
		})
	}
	var status tracker.Status
	if err := util.JsonUnmarshal(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func renderStatus(w io.Writer, status *tracker.Status) error {
	table := tablewriter.NewWriter(w)
	table.Header("Kind", "Id", "Remaining")
	for _, id := range status.Tasks {
		if err := table.Append("task", id, "-"); err != nil {
			return err
		}
	}
	for _, call := range status.Calls {
		remaining := strconv.FormatFloat(call.Remaining, 'f', 3, 64) + "s"
		if err := table.Append("call", call.Id, remaining); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	state := "disabled"
	if status.Enabled {
		state = "enabled"
	}
	_, err := io.WriteString(w, "driver "+state+", "+strconv.Itoa(len(status.Tasks))+" tasks, "+
		strconv.Itoa(len(status.Calls))+" calls\n")
	return err
}
