package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var unsafe = false

func init() {
	confgenCmd.Flags().BoolVar(&unsafe, "unsafe", unsafe,
		"will unsafely write config if set")

	RootCmd.AddCommand(confgenCmd)
}

var confgenCmd = &cobra.Command{
	Use:    "confgen [config.json]",
	Short:  "generates config file",
	Args:   cobra.MaximumNArgs(1),
	PreRun: prepareVariables,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "./config.json"
		if len(args) > 0 {
			path = args[0]
		}

		viper.SetConfigType("json")
		log.WithField("path", path).Info("Writing config.")
		if unsafe {
			return viper.WriteConfigAs(path)
		}
		return viper.SafeWriteConfigAs(path)
	},
}
