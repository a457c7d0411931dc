package cmdutil

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	logrussyslog "github.com/sirupsen/logrus/hooks/syslog"
	"github.com/skycoin/skycoin/src/util/logging"
	"github.com/spf13/cobra"

	"github.com/skycoin/notify/discord"
)

const discordLimit = time.Minute

// ServiceFlags are the logging and metrics flags shared by service binaries.
type ServiceFlags struct {
	MetricsAddr string
	SyslogAddr  string
	SyslogNet   string
	SyslogLvl   SyslogLvl
	LogLvl      string
	Tag         string
}

// Init registers the flags on rootCmd.
func (sf *ServiceFlags) Init(rootCmd *cobra.Command, defaultTag string) {
	sf.SyslogLvl = LvlInfo

	rootCmd.Flags().StringVarP(&sf.MetricsAddr, "metrics", "m", "",
		"address to serve metrics API from (disabled if empty)")
	rootCmd.Flags().StringVar(&sf.SyslogAddr, "syslog", "",
		"syslog server address. E.g. localhost:514")
	rootCmd.Flags().StringVar(&sf.SyslogNet, "syslog-net", "udp",
		"network in which to dial to syslog server")
	rootCmd.Flags().Var(&sf.SyslogLvl, "syslog-lvl",
		"minimum priority sent to syslog")
	rootCmd.Flags().StringVar(&sf.LogLvl, "log-level", "info",
		"logging level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&sf.Tag, "tag", defaultTag,
		"logging tag")
}

// Logger sends log output to stderr, sets the global logging level, attaches
// the configured hooks and returns the logger tagged with sf.Tag.
// Stdout is left to the binary's own output.
func (sf *ServiceFlags) Logger() logrus.FieldLogger {
	logging.SetOutputTo(os.Stderr)
	log := logging.MustGetLogger(sf.Tag)

	lvl, err := logging.LevelFromString(sf.LogLvl)
	CatchWithLog(log, "invalid log level", err)
	logging.SetLevel(lvl)

	if sf.SyslogAddr != "" {
		hook, err := logrussyslog.NewSyslogHook(sf.SyslogNet, sf.SyslogAddr, sf.SyslogLvl.Priority(), sf.Tag)
		if err != nil {
			log.WithError(err).WithField("addr", sf.SyslogAddr).Fatal("Unable to connect to syslog daemon.")
		}
		logging.AddHook(hook)
	}

	if url := discord.GetWebhookURLFromEnv(); url != "" {
		logging.AddHook(discord.NewHook(sf.Tag, url, discord.WithLimit(discordLimit)))
	}

	return log
}
