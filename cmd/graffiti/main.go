// Copyright 2024 The graffiti Authors
// This file is part of the graffiti library.
//
// The graffiti library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The graffiti library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the graffiti library. If not, see <http://www.gnu.org/licenses/>.

// graffiti is a command line client for shared publication channels backed
// by a swarm-style chunk node: write and read payloads under a consensus
// topic, follow a resource live, and mine resource ids into a target
// neighbourhood.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/anythread/graffiti/chunk"
	"github.com/anythread/graffiti/client"
	"github.com/anythread/graffiti/graffiti"
)

var (
	gatewayFlag = &cli.StringFlag{
		Name:  "gateway",
		Usage: "HTTP API endpoint of the node",
		Value: client.DefaultGateway,
	}
	consensusFlag = &cli.StringFlag{
		Name:  "consensus-id",
		Usage: "consensus identifier string scoping the channel",
		Value: graffiti.DefaultConsensusID,
	}
	resourceFlag = &cli.StringFlag{
		Name:  "resource",
		Usage: "resource id within the channel (hashed unless exactly 32 bytes)",
		Value: graffiti.DefaultResourceID,
	}
	postageFlag = &cli.StringFlag{
		Name:  "postage",
		Usage: "postage batch id attached to uploads, hex",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "log verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: 3,
	}
	targetFlag = &cli.StringFlag{
		Name:     "target",
		Usage:    "target address to mine towards, 32 byte hex",
		Required: true,
	}
	depthFlag = &cli.IntFlag{
		Name:  "depth",
		Usage: "neighbourhood depth in bits",
		Value: 8,
	}
)

func main() {
	app := &cli.App{
		Name:  "graffiti",
		Usage: "publish to and follow shared single-owner chunk channels",
		Flags: []cli.Flag{gatewayFlag, consensusFlag, resourceFlag, postageFlag, verbosityFlag},
		Before: func(c *cli.Context) error {
			log.Root().SetHandler(log.LvlFilterHandler(
				log.Lvl(c.Int(verbosityFlag.Name)),
				log.StreamHandler(os.Stderr, log.TerminalFormat(false)),
			))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "write",
				Usage:     "publish a payload under the resource",
				ArgsUsage: "<payload>",
				Action:    write,
			},
			{
				Name:   "read",
				Usage:  "fetch the current payload of the resource",
				Action: read,
			},
			{
				Name:   "listen",
				Usage:  "follow the resource live until interrupted",
				Action: listen,
			},
			{
				Name:   "mine",
				Usage:  "search for a resource id publishing into a target neighbourhood",
				Flags:  []cli.Flag{targetFlag, depthFlag},
				Action: mine,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newChannel(c *cli.Context) (*graffiti.Channel, error) {
	return graffiti.New(c.String(gatewayFlag.Name), &graffiti.Options{
		ConsensusID:    c.String(consensusFlag.Name),
		PostageBatchID: c.String(postageFlag.Name),
		// the CLI exchanges raw strings, no payload shape is enforced
		Validator: graffiti.ValidatorFunc(func([]byte) error { return nil }),
	})
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func write(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one payload argument")
	}
	ch, err := newChannel(c)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	s, err := ch.Write(ctx, []byte(c.Args().First()), &graffiti.WriteOptions{
		ResourceID: []byte(c.String(resourceFlag.Name)),
	})
	if err != nil {
		return err
	}
	fmt.Println(s.Addr().Hex())
	return nil
}

func read(c *cli.Context) error {
	ch, err := newChannel(c)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	p, err := ch.Read(ctx, []byte(c.String(resourceFlag.Name)))
	if err != nil {
		return err
	}
	fmt.Println(p.String())
	return nil
}

type printHandler struct{}

func (printHandler) OnMessage(p *graffiti.Payload) {
	fmt.Println(p.String())
}

func (printHandler) OnError(err error) {
	log.Warn("subscription message dropped", "err", err)
}

func listen(c *cli.Context) error {
	ch, err := newChannel(c)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	sub, err := ch.Subscribe(ctx, printHandler{}, []byte(c.String(resourceFlag.Name)))
	if err != nil {
		return err
	}
	<-ctx.Done()
	if err := sub.Close(); err != nil {
		return err
	}
	<-sub.Done()
	return nil
}

func mine(c *cli.Context) error {
	ch, err := newChannel(c)
	if err != nil {
		return err
	}
	target, err := chunk.ParseHex(c.String(targetFlag.Name))
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	res, err := ch.Mine(ctx, target, c.Int(depthFlag.Name))
	if err != nil {
		return err
	}
	fmt.Printf("resource: %x\naddress:  %s\n", res.ResourceID, res.Address.Hex())
	return nil
}
