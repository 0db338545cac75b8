package main

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/danmuck/marketwire/internal/protocol/session"
)

// drive runs the receive loop of sess alongside a keep-alive ticker until ctx
// is done, the peer goes away, or a handler fails. The session is closed on
// return. A context cancellation or clean end of stream is not an error.
func drive(ctx context.Context, sess *session.Session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tick := sess.Config().HeartbeatInterval / 2
	if tick <= 0 {
		tick = 500 * time.Millisecond
	}

	keepAliveErr := make(chan error, 1)
	go func() {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := sess.KeepAlive(); err != nil {
					keepAliveErr <- err
					_ = sess.Close()
					return
				}
			}
		}
	}()
	go func() {
		<-ctx.Done()
		_ = sess.Close()
	}()

	var err error
	for err == nil {
		_, err = sess.Receive()
	}
	_ = sess.Close()

	select {
	case kerr := <-keepAliveErr:
		return kerr
	default:
	}
	if errors.Is(err, session.ErrSessionClosed) && ctx.Err() != nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
