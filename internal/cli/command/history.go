package command

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/calliope-space/telemhist/internal/core/codec"
	"github.com/calliope-space/telemhist/internal/core/domain"
	"github.com/calliope-space/telemhist/internal/server/linkserver"
)

// HistoryCommand returns the history retrieval command.
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Fetch historic telemetry records, most recent first",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of records",
				Value:   10,
			},
			&cli.UintFlag{
				Name:  "before-slot",
				Usage: "Start paging before this slot (0 = newest)",
			},
			&cli.UintFlag{
				Name:  "before-time",
				Usage: "Start paging before this timestamp (unix seconds, 0 = newest)",
			},
		},
		Action: historyFetch,
	}
}

func historyFetch(c *cli.Context) error {
	limit := c.Uint("limit")
	beforeSlot := c.Uint("before-slot")
	beforeTime := c.Uint("before-time")
	if limit > 65535 || beforeSlot > 65535 {
		return errors.New("limit and before-slot must fit in 16 bits")
	}

	client, err := dial(c)
	if err != nil {
		return err
	}
	defer client.Close()

	req := make([]byte, 9)
	req[0] = linkserver.SubserviceGetHistory
	binary.BigEndian.PutUint16(req[1:3], uint16(limit))
	binary.BigEndian.PutUint16(req[3:5], uint16(beforeSlot))
	binary.BigEndian.PutUint32(req[5:9], uint32(beforeTime))
	if err := client.Send(req); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	frames, err := client.ReceiveStream(int(limit), 0)
	if err != nil && len(frames) == 0 {
		return fmt.Errorf("read response: %w", err)
	}

	records := make([]*domain.Snapshot, 0, len(frames))
	for _, frame := range frames {
		if len(frame) < 2 || frame[0] != linkserver.SubserviceGetHistory {
			return errors.New("malformed history response frame")
		}
		if frame[1] != linkserver.StatusOK {
			return errors.New("server aborted the history page")
		}
		snap, err := codec.DecodeSnapshot(frame[2:])
		if err != nil {
			return fmt.Errorf("decode record: %w", err)
		}
		records = append(records, snap)
	}

	if c.String("output") == "json" {
		return json.NewEncoder(os.Stdout).Encode(records)
	}
	return printTable(records)
}

func printTable(records []*domain.Snapshot) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tBATT mV\tBATT mA\tCPU dC\tRSSI\tMODE")
	for _, r := range records {
		ts := time.Unix(int64(r.TimeOrder.Timestamp), 0).UTC().Format(time.RFC3339)
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t0x%02X\n",
			ts,
			r.EPS.BatteryVoltage,
			r.EPS.BatteryCurrent,
			r.OBC.CPUTemp,
			r.UHF.RSSI,
			r.OBC.ModeFlags)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("%d record(s)\n", len(records))
	return nil
}
