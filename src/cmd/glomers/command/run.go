package command

import (
	"strings"

	"github.com/cbhcbhcbh/dist-sys/src/app/broadcast"
	"github.com/cbhcbhcbh/dist-sys/src/app/echo"
	"github.com/cbhcbhcbh/dist-sys/src/app/uniqueids"
	"github.com/cbhcbhcbh/dist-sys/src/config"
	"github.com/cbhcbhcbh/dist-sys/src/message"
	"github.com/cbhcbhcbh/dist-sys/src/node"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewEchoCmd returns the command that runs an echo node
func NewEchoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "echo",
		Short:   "Run an echo node",
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode[echo.Config, echo.Payload](
				echo.Config{Logger: handlerLogger("echo")},
				echo.New,
				echo.Schema,
			)
		},
	}
	AddRunFlags(cmd)
	return cmd
}

// NewUniqueIDsCmd returns the command that runs a unique-ids node
func NewUniqueIDsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "unique-ids",
		Short:   "Run a unique-ids node",
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode[uniqueids.Config, uniqueids.Payload](
				uniqueids.Config{
					Strategy: _config.IDStrategy,
					Logger:   handlerLogger("unique-ids"),
				},
				uniqueids.New,
				uniqueids.Schema,
			)
		},
	}
	AddRunFlags(cmd)
	cmd.Flags().String("id-strategy", _config.IDStrategy, "counter, uuid")
	return cmd
}

// NewBroadcastCmd returns the command that runs a broadcast node
func NewBroadcastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "broadcast",
		Short:   "Run a broadcast node",
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode[broadcast.Config, broadcast.Payload](
				broadcast.Config{Logger: handlerLogger("broadcast")},
				broadcast.New,
				broadcast.Schema,
			)
		},
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runNode[C any, P message.Variant](
	handlerConf C,
	construct node.Constructor[C, P],
	schema message.Schema[P],
) error {

	conf := &node.Config{
		ErrorPolicy: node.FailFast,
		Logger:      _config.Logger(),
	}

	return node.NewNode[C, P](conf, handlerConf, construct, schema).Run(stdin, stdout)
}

func handlerLogger(name string) *logrus.Entry {
	return _config.Logger().WithField("prefix", name)
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

// AddRunFlags adds the flags shared by every workload command
func AddRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("datadir", _config.DataDir, "Directory of the optional glomers.toml")
	cmd.Flags().String("log", _config.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("log-file", _config.LogFile, "Also write logs to this file")
	cmd.Flags().Int("log-max-size", _config.LogMaxSize, "Size in megabytes at which the log file is rotated")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	configFile, err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	logger := _config.Logger()

	if configFile != "" {
		logger.Debugf("Using config file: %s", configFile)
	} else {
		logger.Debugf("No config file found in: %s", _config.DataDir)
	}

	logger.WithFields(logrus.Fields{
		"DataDir":    _config.DataDir,
		"LogLevel":   _config.LogLevel,
		"LogFile":    _config.LogFile,
		"LogMaxSize": _config.LogMaxSize,
		"IDStrategy": _config.IDStrategy,
		"Command":    cmd.Name(),
	}).Debug("RUN")

	return nil
}

// Bind all flags and read the config into viper. It returns the path of the
// config file, if one was found. The logger is not created before the config
// is final, since its level and file depend on it.
func bindFlagsLoadViper(cmd *cobra.Command) (string, error) {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return "", err
	}

	// GLOMERS_LOG_FILE sets log-file, etc.
	viper.SetEnvPrefix("GLOMERS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// first unmarshal to read from CLI flags and environment
	if err := viper.Unmarshal(_config); err != nil {
		return "", err
	}

	// look for config file in [datadir]/glomers.toml (.json, .yaml also work)
	viper.SetConfigName(config.DefaultConfigFile) // name of config file (without extension)
	viper.AddConfigPath(_config.DataDir)          // search root directory

	configFile := ""

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		configFile = viper.ConfigFileUsed()
	} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		return "", err
	}

	// second unmarshal to read from config file
	if err := viper.Unmarshal(_config); err != nil {
		return "", err
	}

	return configFile, nil
}
