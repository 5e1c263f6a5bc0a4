package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/nazorat-backend/internal/reports"
	"github.com/angelmondragon/nazorat-backend/internal/statistics"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	"github.com/angelmondragon/nazorat-backend/pkg/types"
)

const dateLayout = "2006-01-02"

type exportFlags struct {
	from    string
	to      string
	topicID uint64
	format  string
	outDir  string
}

func (f *exportFlags) bind(cmd *cobra.Command, withFilter bool) {
	if withFilter {
		cmd.Flags().StringVar(&f.from, "from", "", "first day included, YYYY-MM-DD")
		cmd.Flags().StringVar(&f.to, "to", "", "last day included, YYYY-MM-DD")
		cmd.Flags().Uint64Var(&f.topicID, "topic", 0, "restrict to one topic id")
		cmd.Flags().StringVar(&f.format, "format", string(enums.ReportFormatWord), "word or excel")
	}
	cmd.Flags().StringVar(&f.outDir, "out", ".", "directory the file is written to")
}

func (f *exportFlags) filter(loc *time.Location) (statistics.Filter, error) {
	var out statistics.Filter
	parse := func(name, value string) (*time.Time, error) {
		if value == "" {
			return nil, nil
		}
		t, err := time.ParseInLocation(dateLayout, value, loc)
		if err != nil {
			return nil, fmt.Errorf("--%s must be YYYY-MM-DD: %w", name, err)
		}
		return &t, nil
	}
	var err error
	if out.From, err = parse("from", f.from); err != nil {
		return out, err
	}
	if out.To, err = parse("to", f.to); err != nil {
		return out, err
	}
	if f.topicID != 0 {
		id := f.topicID
		out.TopicID = &id
	}
	return out, nil
}

func newExportCmd(rt *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render reports to files without going through the api",
	}
	cmd.AddCommand(newExportStatsCmd(rt), newExportWorkerCmd(rt), newExportProtocolCmd(rt))
	return cmd
}

func newExportStatsCmd(rt *cliState) *cobra.Command {
	flags := &exportFlags{}
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Export overall statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := enums.ParseReportFormat(flags.format)
			if err != nil {
				return err
			}
			filter, err := flags.filter(rt.app.Config.Reports.Location())
			if err != nil {
				return err
			}
			res, err := rt.app.Statistics.Aggregate(cmd.Context(), filter)
			if err != nil {
				return err
			}
			art, err := rt.app.Reports.RenderStatistics(cmd.Context(), res, format)
			if err != nil {
				return err
			}
			return writeArtifact(cmd, flags.outDir, art)
		},
	}
	flags.bind(cmd, true)
	return cmd
}

func newExportWorkerCmd(rt *cliState) *cobra.Command {
	flags := &exportFlags{}
	cmd := &cobra.Command{
		Use:   "worker <user-id>",
		Short: "Export one worker's requests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workerID, err := parseID(args[0])
			if err != nil {
				return err
			}
			format, err := enums.ParseReportFormat(flags.format)
			if err != nil {
				return err
			}
			filter, err := flags.filter(rt.app.Config.Reports.Location())
			if err != nil {
				return err
			}
			rep, err := rt.app.Statistics.WorkerReport(cmd.Context(), workerID, filter)
			if err != nil {
				return err
			}
			art, err := rt.app.Reports.RenderWorkerStatistics(cmd.Context(), rep, format)
			if err != nil {
				return err
			}
			return writeArtifact(cmd, flags.outDir, art)
		},
	}
	flags.bind(cmd, true)
	return cmd
}

func newExportProtocolCmd(rt *cliState) *cobra.Command {
	flags := &exportFlags{}
	cmd := &cobra.Command{
		Use:   "protocol <request-id>",
		Short: "Export the protocol document of one request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			detail, err := rt.app.Requests.Get(cmd.Context(), types.Actor{Role: enums.UserRoleAdmin}, id)
			if err != nil {
				return err
			}
			mediaPath := ""
			if detail.MediaFilename != nil {
				if p, err := rt.app.Media.Path(*detail.MediaFilename); err == nil {
					mediaPath = p
				}
			}
			art, err := rt.app.Reports.RenderProtocol(cmd.Context(), detail, mediaPath)
			if err != nil {
				return err
			}
			return writeArtifact(cmd, flags.outDir, art)
		},
	}
	flags.bind(cmd, false)
	return cmd
}

func parseID(value string) (uint64, error) {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}

func writeArtifact(cmd *cobra.Command, dir string, art *reports.Artifact) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, art.Filename)
	if err := os.WriteFile(path, art.Body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
