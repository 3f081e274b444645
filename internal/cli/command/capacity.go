package command

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/calliope-space/telemhist/internal/server/linkserver"
)

// CapacityCommand returns the capacity subcommand group.
func CapacityCommand() *cli.Command {
	return &cli.Command{
		Name:  "capacity",
		Usage: "Record log capacity management",
		Subcommands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "Show the configured slot capacity",
				Action: capacityGet,
			},
			{
				Name:      "set",
				Usage:     "Change the slot capacity (resets the log)",
				ArgsUsage: "SLOTS",
				Action:    capacitySet,
			},
		},
	}
}

func capacityGet(c *cli.Context) error {
	client, err := dial(c)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Send([]byte{linkserver.SubserviceGetCapacity}); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	resp, err := client.Receive()
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(resp) != 4 || resp[0] != linkserver.SubserviceGetCapacity {
		return errors.New("malformed capacity response")
	}
	if resp[1] != linkserver.StatusOK {
		return errors.New("server rejected capacity request")
	}

	capacity := binary.BigEndian.Uint16(resp[2:])
	if c.String("output") == "json" {
		fmt.Printf("{\"capacity\": %d}\n", capacity)
	} else {
		fmt.Printf("capacity: %d slots\n", capacity)
	}
	return nil
}

func capacitySet(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("usage: capacity set SLOTS")
	}

	var capacity uint16
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &capacity); err != nil {
		return fmt.Errorf("invalid capacity %q: %w", c.Args().First(), err)
	}
	if capacity < 1 {
		return errors.New("capacity must be at least 1")
	}

	client, err := dial(c)
	if err != nil {
		return err
	}
	defer client.Close()

	req := make([]byte, 3)
	req[0] = linkserver.SubserviceSetCapacity
	binary.BigEndian.PutUint16(req[1:], capacity)
	if err := client.Send(req); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	resp, err := client.Receive()
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(resp) != 2 || resp[0] != linkserver.SubserviceSetCapacity {
		return errors.New("malformed capacity response")
	}
	if resp[1] != linkserver.StatusOK {
		return errors.New("server rejected capacity change")
	}

	fmt.Printf("capacity set to %d slots\n", capacity)
	return nil
}
