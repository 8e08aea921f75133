// Command rxwscat connects to a websocket endpoint, prints every inbound message and sends every
// line read from stdin as a text message. EOF or an interrupt closes the connection gracefully.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/sonirico/rxws"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level := zapcore.InfoLevel
	if cfg.Debug {
		level = zapcore.DebugLevel
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	zlog, err := zcfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zlog.Sugar(), os.Stdin, os.Stdout); err != nil {
		zlog.Error("rxwscat terminated", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, zlog *zap.SugaredLogger, in io.Reader, out io.Writer) error {
	log := rxws.NewZapLogger(zlog)

	opts := []rxws.Option{
		rxws.WithURL(cfg.URL),
		rxws.WithLogger(log),
		rxws.WithTransport(rxws.NewWebsocketTransport(nil, log,
			rxws.WithPingInterval(cfg.PingInterval),
			rxws.WithDialTimeout(cfg.DialTimeout),
		)),
	}
	for key, value := range cfg.Headers {
		opts = append(opts, rxws.WithHeader(key, value))
	}
	if cfg.Trim {
		opts = append(opts, rxws.WithReceiveInterceptor(rxws.TrimSpaceInterceptor()))
	}
	if form, ok := normForms[cfg.Normalize]; ok {
		opts = append(opts, rxws.WithReceiveInterceptor(rxws.NormalizeInterceptor(form)))
	}

	client, err := rxws.New(opts...)
	if err != nil {
		return err
	}

	messages := client.Listen()
	defer messages.Close()

	if _, err := client.Connect(ctx); err != nil {
		return errors.Wrap(err, "cannot connect")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			m, err := messages.Next(gctx)
			if errors.Is(err, rxws.ErrStreamCompleted) || errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				return err
			}
			if m.IsBinary() {
				fmt.Fprintf(out, "<binary %d bytes>\n", len(m.Bytes()))
				continue
			}
			fmt.Fprintln(out, m.Text())
		}
	})

	g.Go(func() error {
		lines := make(chan string)
		go func() {
			defer close(lines)
			scanner := bufio.NewScanner(in)
			for scanner.Scan() {
				select {
				case lines <- scanner.Text():
				case <-gctx.Done():
					return
				}
			}
		}()

		for {
			select {
			case <-gctx.Done():
				return disconnect(client, cfg)
			case line, ok := <-lines:
				if !ok {
					return disconnect(client, cfg)
				}
				if _, err := client.Send(gctx, rxws.Text(line)); err != nil {
					return err
				}
			}
		}
	})

	return g.Wait()
}

func disconnect(client *rxws.Client, cfg config) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.CloseTimeout)
	defer cancel()

	_, err := client.Disconnect(ctx, rxws.CloseNormal, "bye")
	if errors.Is(err, rxws.ErrNoConnection) || errors.Is(err, rxws.ErrStreamCompleted) {
		return nil
	}
	return err
}
