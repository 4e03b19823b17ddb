// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command sockio serves a fixed payload to every incoming TCP connection
// and dials such a server, driving both sides on one epoll loop.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"code.hybscloud.com/sockio"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type flags struct {
	LogLevel string
	Timeout  time.Duration
}

func main() {
	f := new(flags)

	command := &cobra.Command{
		Use:   "sockio",
		Short: "readiness socket demo",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(f.LogLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	command.PersistentFlags().StringVar(&f.LogLevel, "log-level", "info", "Set the log level.")
	command.PersistentFlags().DurationVar(&f.Timeout, "timeout", 5*time.Second, "Set the per-connection I/O timeout.")

	command.AddCommand(newServeCommand(f), newDialCommand(f))

	if err := command.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// connFields describes c for structured logging. Address query failures
// are logged in place of the address.
func connFields(c *sockio.Conn) logrus.Fields {
	fields := logrus.Fields{"serial": c.Serial()}
	if a, err := c.LocalAddr(); err == nil {
		fields["local"] = a
	} else {
		fields["local"] = err
	}
	if a, err := c.RemoteAddr(); err == nil {
		fields["remote"] = a
	} else {
		fields["remote"] = err
	}
	return fields
}
