package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/skycoin/skycoin/src/util/logging"
	"github.com/spf13/cobra"

	"github.com/skycoin/notify"
	"github.com/skycoin/notify/cmdutil"
)

// Push errors.
var (
	ErrUndelivered = errors.New("lines were not delivered")
	ErrNoSink      = errors.New("neither --addr nor --webhook is set")
)

var (
	addr        = notify.DefaultAddr
	webhook     = ""
	backoff     = notify.DefaultNotifierBackoff
	dialTimeout = notify.DefaultDialTimeout
	logLvl      = "warn"

	device bool
	kind   = string(notify.KindInfo)
	info   notify.DeviceInfo
)

func init() {
	RootCmd.Flags().StringVarP(&addr, "addr", "a", addr, "address of the notify-server (empty disables)")
	RootCmd.Flags().StringVarP(&webhook, "webhook", "w", webhook, "also POST every line to this URL")
	RootCmd.Flags().DurationVar(&backoff, "backoff", backoff, "pause after a failed push, lines are dropped meanwhile")
	RootCmd.Flags().DurationVar(&dialTimeout, "dial-timeout", dialTimeout, "timeout of each push")
	RootCmd.Flags().StringVar(&logLvl, "log-level", logLvl, "logging level")

	RootCmd.Flags().BoolVarP(&device, "device", "d", device, "push a device event built from the flags below")
	RootCmd.Flags().StringVar(&kind, "kind", kind, "device event kind: attach, detach, info")
	RootCmd.Flags().StringVar(&info.Type, "type", notify.DeviceUnknown, "device type: Android, iOS, Unknown")
	RootCmd.Flags().StringVar(&info.UID, "uid", "", "device unique id")
	RootCmd.Flags().StringVar(&info.Manufacturer, "manufacturer", "", "device manufacturer")
	RootCmd.Flags().StringVar(&info.Model, "model", "", "device model")
	RootCmd.Flags().StringVar(&info.OSVersion, "os-version", "", "device os version")
	RootCmd.Flags().StringVar(&info.Transport, "transport", "", "device transport, e.g. usb")
}

// RootCmd is the notify-push command.
var RootCmd = &cobra.Command{
	Use:   "notify-push [lines...]",
	Short: "Pushes events to a notify-server",
	Long: "Pushes each argument as one event line, or each line of stdin when no arguments are given.\n" +
		"With --device, a single JSON device event is pushed instead.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.SetOutputTo(cmd.ErrOrStderr())
		log := logging.MustGetLogger("notify-push")
		lvl, err := logging.LevelFromString(logLvl)
		if err != nil {
			return err
		}
		logging.SetLevel(lvl)

		ctx, cancel := cmdutil.SignalContext(context.Background(), log)
		defer cancel()

		var evt *notify.DeviceEvent
		if device {
			evt = &notify.DeviceEvent{Kind: notify.EventKind(kind), Device: info}
		}
		return push(ctx, log, cmd.InOrStdin(), args, evt)
	},
}

func push(ctx context.Context, log logrus.FieldLogger, stdin io.Reader, args []string, evt *notify.DeviceEvent) error {
	if addr == "" && webhook == "" {
		return ErrNoSink
	}

	opts := []notify.NotifierOption{
		notify.WithBackoff(backoff),
		notify.WithDialTimeout(dialTimeout),
		notify.WithLogger(log),
	}
	if webhook != "" {
		opts = append(opts, notify.WithWebhook(webhook))
	}
	n := notify.NewNotifier(addr, opts...)

	errCh := make(chan error, 1)
	go func() { errCh <- n.Serve(ctx) }()

	var total int
	pushErr := func() error {
		switch {
		case evt != nil:
			total++
			return n.PushDeviceEvent(evt)
		case len(args) > 0:
			for _, line := range args {
				if line, ok := notify.StripLine(line); ok {
					total++
					if err := n.PushContext(ctx, line); err != nil {
						return err
					}
				}
			}
			return nil
		default:
			return notify.ReadLines(stdin, false, func(raw string) error {
				line, ok := notify.StripLine(raw)
				if !ok {
					return nil
				}
				total++
				return n.PushContext(ctx, line)
			})
		}
	}()

	if err := n.Close(); err != nil {
		log.WithError(err).Warn("Failed to close notifier.")
	}
	if err := <-errCh; err != nil {
		return err
	}
	if pushErr != nil {
		return pushErr
	}

	stats := n.Stats()
	log.WithField("sent", stats.Sent).
		WithField("failed", stats.Failed).
		WithField("dropped", stats.Dropped).
		WithField("webhook_sent", stats.WebhookSent).
		WithField("webhook_failed", stats.WebhookFailed).
		WithField("webhook_dropped", stats.WebhookDropped).
		Info("Done.")
	if addr != "" && int(stats.Sent) < total {
		return fmt.Errorf("%w: %d of %d", ErrUndelivered, total-int(stats.Sent), total)
	}
	if webhook != "" && int(stats.WebhookSent) < total {
		return fmt.Errorf("%w to webhook: %d of %d", ErrUndelivered, total-int(stats.WebhookSent), total)
	}
	return nil
}

// Execute executes root CLI command.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
