package util

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lodisdb/lodis/lib/db"
	"github.com/lodisdb/lodis/lib/db/engines/rowan"
	"github.com/lodisdb/lodis/lib/logging"
	"github.com/lodisdb/lodis/lib/store"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("lodis")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// SetupStoreFlags adds the common store flags to a command
func SetupStoreFlags(cmd *cobra.Command) {
	key := "databases"
	cmd.PersistentFlags().Int(key, store.DefaultNumDatabases, WrapString("Number of databases the store holds (selectable with SELECT)"))

	key = "shards"
	cmd.PersistentFlags().Int(key, 0, WrapString("Number of shards per database (0 = number of CPUs)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "info", WrapString("Log level (debug, info, warn, error)"))
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// --------------------------------------------------------------------------
// Store construction
// --------------------------------------------------------------------------

// StoreConfig holds the store parameters read from viper
type StoreConfig struct {
	Databases int
	Shards    int
	LogLevel  string
}

// GetStoreConfig reads the store configuration from viper
func GetStoreConfig() StoreConfig {
	return StoreConfig{
		Databases: viper.GetInt("databases"),
		Shards:    viper.GetInt("shards"),
		LogLevel:  viper.GetString("log-level"),
	}
}

// NewStore initializes logging and builds an in-process store from the
// current configuration.
func NewStore() (*store.Store, error) {
	conf := GetStoreConfig()

	if err := logging.InitLoggers(conf.LogLevel); err != nil {
		return nil, err
	}

	return store.New(func() db.Keyspace {
		return rowan.New(&rowan.Options{NumShards: conf.Shards})
	}, conf.Databases), nil
}
