package cmd

import (
	"errors"
	"log"

	"github.com/talentscout/assistant/internal/interview"
	"github.com/talentscout/assistant/internal/store"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "talentscout"
)

type Config struct {
	Data         *store.Config       `mapstructure:"data"`
	Conversation *ConversationConfig `mapstructure:"conversation"`
	AI           *AIConfig           `mapstructure:"ai"`
}

type ConversationConfig struct {
	ExitKeywords []string `mapstructure:"exit-keywords"`
	MinQuestions int      `mapstructure:"min-questions"`
	MaxQuestions int      `mapstructure:"max-questions"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "talentscout is a screening assistant that interviews tech candidates and stores anonymized results",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is talentscout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// A local .env may carry GEMINI_API_KEY and data settings.
	_ = godotenv.Load()

	bindEnv := map[string]string{
		"data.dir":            "DATA_DIR",
		"data.salt":           "DATA_SALT",
		"data.retention-days": "DATA_RETENTION_DAYS",
		"ai.gemini.model":     "GEMINI_MODEL",
	}
	for key, env := range bindEnv {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// Built-in defaults cover a missing config file, but a file parsed with
	// error must stop us.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Data == nil {
		config.Data = &store.Config{}
	}
	if config.Conversation == nil {
		config.Conversation = &ConversationConfig{}
	}

	return &config, nil
}

// conversationConfig maps the file layout onto the interview package config.
func conversationConfig(config *Config) interview.Config {
	return interview.Config{
		ExitKeywords: config.Conversation.ExitKeywords,
		MinQuestions: config.Conversation.MinQuestions,
		MaxQuestions: config.Conversation.MaxQuestions,
	}
}
