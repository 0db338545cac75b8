package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/marketwire/internal/observability"
	"github.com/danmuck/marketwire/internal/protocol"
	"github.com/danmuck/marketwire/internal/protocol/frame"
	"github.com/danmuck/marketwire/internal/protocol/nasdaq/itch50"
	"github.com/danmuck/marketwire/internal/protocol/nasdaq/qbbo21"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var errUnknownProtocol = errors.New("itchctl: unknown protocol")

type dumpOptions struct {
	protocol    string
	limit       int
	skipUnknown bool
}

func dumpCmd() *cobra.Command {
	opts := dumpOptions{protocol: "itch50"}

	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Decode a length-prefixed NASDAQ capture file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			n, err := dump(f, cmd.OutOrStdout(), opts)
			log.Info().Str("file", args[0]).Int("messages", n).Msg("dump finished")
			return err
		},
	}
	cmd.Flags().StringVarP(&opts.protocol, "protocol", "p", opts.protocol, "itch50 or qbbo21")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "stop after this many messages, 0 for all")
	cmd.Flags().BoolVar(&opts.skipUnknown, "skip-unknown", false, "skip unrecognized message types")

	return cmd
}

type messageParser interface {
	Parse([]byte) error
}

// dump prints each message of r and returns how many were printed.
func dump(r io.Reader, out io.Writer, opts dumpOptions) (int, error) {
	printed := 0
	name := strings.ToLower(strings.TrimSpace(opts.protocol))
	var parser messageParser
	switch name {
	case "itch50":
		parser = itch50.NewParser(itch50.HandlerFunc(func(m itch50.Message) error {
			observability.RecordDecoded(name, m.Type())
			printed++
			_, err := fmt.Fprintf(out, "%c %T %+v\n", m.Type(), m, m)
			return err
		}))
	case "qbbo21":
		parser = qbbo21.NewParser(qbbo21.HandlerFunc(func(m qbbo21.Message) error {
			observability.RecordDecoded(name, m.Type())
			printed++
			_, err := fmt.Fprintf(out, "%c %T %+v\n", m.Type(), m, m)
			return err
		}))
	default:
		return 0, fmt.Errorf("%w: %q", errUnknownProtocol, opts.protocol)
	}

	s := frame.NewScanner(r, frame.DefaultLimits())
	for s.Scan() {
		if opts.limit > 0 && printed >= opts.limit {
			return printed, nil
		}
		if err := parser.Parse(s.Message()); err != nil {
			var unknown *protocol.UnrecognizedMessageTypeError
			if opts.skipUnknown && errors.As(err, &unknown) {
				log.Debug().Int("message", s.Count()).Str("type", string(rune(unknown.Type))).Msg("skipped")
				continue
			}
			return printed, fmt.Errorf("message %d: %w", s.Count(), err)
		}
	}
	return printed, s.Err()
}
