package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/skycoin/skycoin/src/util/logging"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/skycoin/notify"
	"github.com/skycoin/notify/cmdutil"
	"github.com/skycoin/notify/metricsutil"
	"github.com/skycoin/notify/servermetrics"
)

const (
	rootCmdName      = "notify-server"
	defaultEnvPrefix = "NOTIFY"
)

var log = logging.MustGetLogger("notify-server:init")

// srvLog is built from the service flags before anything is logged.
var srvLog logrus.FieldLogger = log

var (
	// persistent flags (with viper references)
	addr          = notify.DefaultAddr
	label         = notify.DefaultLabel
	readTimeout   = time.Duration(0)
	dropPartial   = false
	proxyProtocol = false

	// persistent flags (without viper references)
	envPrefix = defaultEnvPrefix

	// root command flags (without viper references)
	sf        cmdutil.ServiceFlags
	confStdin = false
	confPath  = ""
)

func init() {
	RootCmd.PersistentFlags().StringVarP(&addr, "addr", "a", addr,
		"address to listen for events on")
	RootCmd.PersistentFlags().StringVar(&label, "label", label,
		"prefix of every printed event")
	RootCmd.PersistentFlags().DurationVar(&readTimeout, "read-timeout", readTimeout,
		"disconnect clients that send nothing for this long (0 disables)")
	RootCmd.PersistentFlags().BoolVar(&dropPartial, "drop-partial", dropPartial,
		"discard a final line that is not newline-terminated")
	RootCmd.PersistentFlags().BoolVar(&proxyProtocol, "proxy-protocol", proxyProtocol,
		"expect a PROXY protocol header on every connection")

	cmdutil.Catch(viper.BindPFlags(RootCmd.PersistentFlags()))

	RootCmd.PersistentFlags().StringVar(&envPrefix, "envprefix", envPrefix,
		"env prefix")

	sf.Init(RootCmd, "notify_srv")
	RootCmd.Flags().BoolVar(&confStdin, "confstdin", confStdin,
		"config will be read from stdin if set")
	RootCmd.Flags().StringVar(&confPath, "confpath", confPath,
		"config path")
}

// prepareVariables sources variables in the following precedence order: flags, env, config, default.
//
// Panics are called via `cmdutil.Catch` or `cmdutil.CatchWithMsg`.
// These are recovered in a defer statement where the help message is printed.
func prepareVariables(cmd *cobra.Command, _ []string) {
	defer func() {
		if r := recover(); r != nil {
			cmd.PrintErrln("Error:", r)
			fmt.Print("Help:\n  ")
			if err := cmd.Help(); err != nil {
				panic(err)
			}
			os.Exit(1)
		}
	}()

	srvLog = sf.Logger()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cmd.Name() == rootCmdName {
		viper.SetConfigType("json")
		if confStdin {
			v := make(map[string]interface{})
			buf := new(bytes.Buffer)
			cmdutil.CatchWithMsg("flag 'confstdin' is set, but config read from stdin is invalid",
				json.NewDecoder(os.Stdin).Decode(&v),
				json.NewEncoder(buf).Encode(v),
				viper.ReadConfig(buf))
		} else if confPath != "" {
			viper.SetConfigFile(confPath)
			cmdutil.CatchWithMsg("flag 'confpath' is set, but we failed to read config from specified path",
				viper.ReadInConfig())
		}
	}

	addr = viper.GetString("addr")
	label = viper.GetString("label")
	readTimeout = cast.ToDuration(viper.Get("read-timeout"))
	dropPartial = viper.GetBool("drop-partial")
	proxyProtocol = viper.GetBool("proxy-protocol")

	if readTimeout < 0 {
		cmdutil.Catch(fmt.Errorf("value 'read-timeout' cannot be negative: %s", readTimeout))
	}

	pLog := logrus.FieldLogger(log)
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if v := viper.Get(flag.Name); v != nil {
			pLog = pLog.WithField(flag.Name, v)
		}
	})
	pLog.Debug("Init complete.")
}

func serverConfig() *notify.Config {
	return &notify.Config{
		Addr:          addr,
		Label:         label,
		ReadTimeout:   readTimeout,
		DropPartial:   dropPartial,
		ProxyProtocol: proxyProtocol,
	}
}

// RootCmd is the notify-server command.
var RootCmd = &cobra.Command{
	Use:    rootCmdName,
	Short:  "Prints newline-delimited events sent over TCP",
	Long:   "Listens on a TCP address, serves one connection at a time and prints every non-blank line it receives.",
	PreRun: prepareVariables,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, cancel := cmdutil.SignalContext(context.Background(), srvLog)
		defer cancel()

		if err := runServer(ctx, srvLog); err != nil {
			srvLog.WithError(err).Fatal("Listener stopped.")
		}
	},
}

// runServer serves the configured listener until ctx is done.
// A bind failure is fatal before the ready message is printed.
func runServer(ctx context.Context, log logrus.FieldLogger) error {
	var m servermetrics.Metrics
	if sf.MetricsAddr == "" {
		m = servermetrics.NewEmpty()
	} else {
		m = servermetrics.NewVictoriaMetrics()
	}
	metricsutil.ServeHTTPMetrics(log, sf.MetricsAddr)

	conf := serverConfig()
	lis, err := notify.Listen(conf)
	cmdutil.CatchWithLog(log, "failed to listen", err)

	srv := notify.NewServer(conf, m)
	srv.SetLogger(log)

	return srv.Serve(ctx, lis)
}

// Execute executes root CLI command.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
