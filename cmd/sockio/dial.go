// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"net"

	"code.hybscloud.com/sockio"
	"code.hybscloud.com/sockio/netsock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type dialFlags struct {
	Addr  string
	Count int
}

func newDialCommand(f *flags) *cobra.Command {
	df := new(dialFlags)
	command := &cobra.Command{
		Use:   "dial",
		Short: "Connect and read a fixed number of bytes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return dial(cmd, f, df)
		},
	}
	command.Flags().StringVarP(&df.Addr, "addr", "a", "127.0.0.1:12345", "Set the server address as ip:port.")
	command.Flags().IntVarP(&df.Count, "count", "n", 4, "Set how many bytes to read.")
	return command
}

func dial(cmd *cobra.Command, f *flags, df *dialFlags) error {
	host, port, err := net.SplitHostPort(df.Addr)
	if err != nil {
		return errors.Wrap(err, "parse address")
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return errors.Errorf("address %q is not an IP literal", host)
	}
	target, err := net.ResolveTCPAddr("tcp", net.JoinHostPort(ip.String(), port))
	if err != nil {
		return errors.Wrap(err, "parse address")
	}

	loop, err := netsock.NewLoop()
	if err != nil {
		return err
	}
	defer loop.Close()

	ctx, stop := signalContext()
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	c, err := sockio.NewClient(loop.Dialer()).Dial(ctx, loop, target)
	if err != nil {
		return err
	}
	defer c.Close()
	log := logrus.WithFields(connFields(c))
	log.Info("connected")

	buf := make([]byte, df.Count)
	n, err := sockio.ReadFull(ctx, loop, c, buf)
	if err != nil {
		log.WithError(err).WithField("read", n).Warn("read failed")
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", buf[:n])
	return nil
}
