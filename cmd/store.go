package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/talentscout/assistant/internal/logger"
	"github.com/talentscout/assistant/internal/store"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Administer stored candidate records",
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored records without any PII",
	Run: func(_ *cobra.Command, _ []string) {
		privacyStore, zlog := mustStore()

		summaries := privacyStore.ListAll()
		pretty, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			zlog.Fatal("rendering summaries", zap.Error(err))
		}

		fmt.Println(string(pretty))
		zlog.Info("listed records", zap.Int("count", len(summaries)))
	},
}

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all stored records as json or csv",
	Run: func(cmd *cobra.Command, _ []string) {
		privacyStore, zlog := mustStore()

		format := cmd.Flag("format").Value.String()
		out, err := privacyStore.Export(format)
		if err != nil {
			zlog.Fatal("exporting records", zap.Error(err))
		}

		fmt.Println(out)
	},
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete <anonymous-id>",
	Short: "Delete a record (GDPR erasure request)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		privacyStore, zlog := mustStore()
		id := args[0]

		if cmd.Flag("yes").Value.String() != "true" {
			confirm := promptui.Prompt{
				Label:     fmt.Sprintf("Delete record %s", id),
				IsConfirm: true,
			}
			if _, err := confirm.Run(); err != nil {
				zlog.Info("delete aborted", zap.String("record_id", id))
				return
			}
		}

		if !privacyStore.Delete(id) {
			zlog.Warn("no record found", zap.String("record_id", id))
			return
		}

		zlog.Info("record deleted", zap.String("record_id", id))
	},
}

var storeSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete records older than the retention window",
	Run: func(cmd *cobra.Command, _ []string) {
		privacyStore, zlog := mustStore()

		days := viper.GetInt("sweep-days")
		removed := privacyStore.Sweep(days)
		zlog.Info("retention sweep finished",
			zap.Int("max_age_days", days),
			zap.Int("removed", removed),
		)
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeListCmd, storeExportCmd, storeDeleteCmd, storeSweepCmd)

	storeExportCmd.Flags().StringP("format", "f", "json", "export format: json or csv")
	storeDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	storeSweepCmd.Flags().Int("days", store.DefaultRetentionDays, "delete records older than this many days")

	viper.BindPFlag("sweep-days", storeSweepCmd.Flags().Lookup("days"))
}

// mustStore builds the logger and privacy store or exits.
func mustStore() (*store.PrivacyStore, *zap.Logger) {
	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	privacyStore, err := newStore(config, zlog)
	if err != nil {
		zlog.Fatal("building privacy store", zap.Error(err))
	}

	return privacyStore, zlog
}
