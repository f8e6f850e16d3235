// testclient is the demo event socket client: it connects, asks the
// switch for its status, and prints the reply body.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/guregu/null.v3"

	"github.com/eventsocket/esl"
	"github.com/eventsocket/esl/config"
)

func main() {
	var (
		host       string
		port       int
		user       string
		password   string
		timeoutMS  int
		configPath string
	)

	cmd := &cobra.Command{
		Use:           "testclient",
		Short:         "Connect to an event socket and print `api status`",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.NewClient()
			if configPath != "" {
				f, err := config.Open(configPath)
				if err != nil {
					return err
				}
				cfg = cfg.Apply(config.FromFile(f))
			}
			env, err := config.FromEnv()
			if err != nil {
				return err
			}
			cfg = cfg.Apply(env)
			cfg = cfg.Apply(flagOverrides(cmd, host, port, user, password, timeoutMS))

			conn, err := esl.ConnectTimeout(
				cfg.Host.String,
				uint16(cfg.Port.Int64),
				cfg.User.String,
				cfg.Password.String,
				cfg.TimeoutDuration(),
			)
			if err != nil {
				return fmt.Errorf("connect %s:%d: %w", cfg.Host.String, cfg.Port.Int64, err)
			}
			defer conn.Close()

			if err := conn.SendRecv("api status\n\n"); err != nil {
				return fmt.Errorf("send command: %w", err)
			}

			switch {
			case conn.LastSREvent != nil && conn.LastSREvent.Body != "":
				fmt.Println(conn.LastSREvent.Body)
			case conn.LastSRReply != "":
				// unlikely for api commands, but other commands only
				// carry a reply line
				fmt.Println(conn.LastSRReply)
			default:
				return fmt.Errorf("no reply received")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "localhost", "server host")
	cmd.Flags().IntVar(&port, "port", 8021, "event socket port")
	cmd.Flags().StringVar(&user, "user", "", "optional user for userauth")
	cmd.Flags().StringVar(&password, "password", "ClueCon", "server password")
	cmd.Flags().IntVar(&timeoutMS, "timeout", 0, "handshake timeout in milliseconds (0 = none)")
	cmd.Flags().StringVar(&configPath, "config", "", "optional [client] config file")

	if err := cmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flagOverrides turns only the flags the user actually set into a
// config overlay, so defaults do not clobber file or env settings.
func flagOverrides(cmd *cobra.Command, host string, port int, user, password string, timeoutMS int) config.Client {
	var c config.Client
	if cmd.Flags().Changed("host") {
		c.Host = null.StringFrom(host)
	}
	if cmd.Flags().Changed("port") {
		c.Port = null.IntFrom(int64(port))
	}
	if cmd.Flags().Changed("user") {
		c.User = null.StringFrom(user)
	}
	if cmd.Flags().Changed("password") {
		c.Password = null.StringFrom(password)
	}
	if cmd.Flags().Changed("timeout") {
		c.Timeout = null.IntFrom(int64(timeoutMS))
	}
	return c
}
