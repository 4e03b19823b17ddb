// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"

	"code.hybscloud.com/sockio"
	"code.hybscloud.com/sockio/netsock"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type serveFlags struct {
	Port    uint16
	Payload string
	Count   int
}

func newServeCommand(f *flags) *cobra.Command {
	sf := new(serveFlags)
	command := &cobra.Command{
		Use:   "serve",
		Short: "Write a payload to every incoming connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(f, sf)
		},
	}
	command.Flags().Uint16VarP(&sf.Port, "port", "p", 12345, "Set the listening port.")
	command.Flags().StringVar(&sf.Payload, "payload", "test", "Set the bytes written to each connection.")
	command.Flags().IntVarP(&sf.Count, "count", "n", 0, "Stop after this many connections, 0 for no limit.")
	return command
}

func serve(f *flags, sf *serveFlags) error {
	loop, err := netsock.NewLoop()
	if err != nil {
		return err
	}
	defer loop.Close()

	ln := sockio.NewListener(loop.Listener())
	defer ln.Close()
	if err := ln.AddPort(sf.Port); err != nil {
		return err
	}
	logrus.WithField("port", sf.Port).Info("listening")

	ctx, stop := signalContext()
	defer stop()

	payload := []byte(sf.Payload)
	served := 0
	for c, err := range ln.Conns(ctx, loop) {
		if err != nil {
			logrus.WithError(err).Warn("accept failed")
			continue
		}
		served++
		handle(ctx, f, loop, c, payload)
		if sf.Count > 0 && served >= sf.Count {
			break
		}
	}
	logrus.WithField("served", served).Info("stopped")
	return nil
}

func handle(ctx context.Context, f *flags, loop *netsock.Loop, c *sockio.Conn, payload []byte) {
	defer c.Close()
	log := logrus.WithFields(connFields(c))
	log.Info("accepted")

	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()
	n, err := sockio.WriteAll(ctx, loop, c, payload)
	if err != nil {
		log.WithError(err).WithField("written", n).Warn("write failed")
		return
	}
	log.WithField("written", n).Debug("payload sent")
}
