package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/talentscout/assistant/internal/ai"
	"github.com/talentscout/assistant/internal/ai/gemini"
	"github.com/talentscout/assistant/internal/interview"
	"github.com/talentscout/assistant/internal/logger"
	"github.com/talentscout/assistant/internal/secrets"
	"github.com/talentscout/assistant/internal/store"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const exitInput = "exit"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive candidate screening session",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// run drives one screening conversation from greeting to closing.
func run() {
	ctx := context.Background()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	zlog.Info("starting talentscout", zap.String("version", version))

	privacyStore, err := newStore(config, zlog)
	if err != nil {
		zlog.Fatal("building privacy store", zap.Error(err))
	}

	// Expired records are purged before any new one is collected.
	if removed := privacyStore.Sweep(config.Data.Retention()); removed > 0 {
		zlog.Info("retention sweep removed expired records", zap.Int("count", removed))
	}

	generator, err := newGenerator(ctx, config.AI, zlog)
	if err != nil {
		zlog.Fatal(
			"building text generator",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY or the ai.gemini.api-key-file key in the configuration file"),
		)
	}

	manager := interview.NewManager(conversationConfig(config), generator, privacyStore, zlog)

	sessionID, greeting := manager.StartSession(ctx)
	fmt.Println(greeting)

	prompt := promptui.Prompt{Label: "you"}

	for {
		input, err := prompt.Run()
		if err != nil {
			// ^C or ^D still persists whatever was collected.
			zlog.Debug("input aborted", zap.Error(err))
			input = exitInput
		}

		reply, done, err := manager.ProcessInput(ctx, sessionID, input)
		if reply != "" {
			fmt.Println(reply)
		}

		if err != nil {
			if errors.Is(err, interview.ErrSessionNotFound) {
				zlog.Fatal("session lost", zap.Error(err))
			}
			// The session is over but its record is not persisted; this is
			// reported rather than silently swallowed.
			zlog.Error("session ended without record persisted", zap.Error(err))
		}

		if done {
			return
		}
	}
}

func newStore(config *Config, zlog *zap.Logger) (*store.PrivacyStore, error) {
	auditLog := store.NewAuditLog(config.Data.AuditLogPath())

	return store.New(*config.Data, auditLog, zlog)
}

func newGenerator(ctx context.Context, config *AIConfig, zlog *zap.Logger) (ai.Generator, error) {
	if config == nil {
		config = &AIConfig{}
	}

	provider := strings.TrimSpace(strings.ToLower(config.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}

	geminiCfg := config.Gemini
	if geminiCfg == nil {
		geminiCfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: geminiCfg.APIKey,
		File:  geminiCfg.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	genLogger := logger.WithGeneratorFields(zlog, "gemini", geminiCfg.Model)

	return gemini.New(ctx, apiKey, geminiCfg.Model, geminiCfg.MaxRetries, genLogger)
}
