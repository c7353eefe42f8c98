package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/T-Bhaskar/ebook-v2/internal/store"
	"github.com/T-Bhaskar/ebook-v2/pkg/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the saved reader settings",
	Long: `Show or change the reader settings saved in the application data directory.

Examples:
  ebook-v2 settings show
  ebook-v2 settings set pdfBackground=dark pdfTextColor=white fontSize=1.8
  ebook-v2 settings reset`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved settings as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return printSettings(loadSettings(cfg))
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set key=value...",
	Short: "Change one or more settings",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateSettings(func(settings.ReaderSettings) settings.ReaderSettings {
			return settings.Defaults()
		})
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsResetCmd)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	patch, err := parseAssignments(args)
	if err != nil {
		return err
	}
	return updateSettings(func(s settings.ReaderSettings) settings.ReaderSettings {
		next, _ := s.Apply(patch)
		return next
	})
}

// parseAssignments turns key=value pairs into a settings patch. Values are
// read as JSON when possible, so numbers and booleans keep their type.
func parseAssignments(args []string) (map[string]any, error) {
	patch := make(map[string]any, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid setting '%s' (expected key=value)", arg)
		}
		var val any
		if err := json.Unmarshal([]byte(raw), &val); err != nil {
			val = raw
		}
		patch[key] = val
	}
	return patch, nil
}

func updateSettings(change func(settings.ReaderSettings) settings.ReaderSettings) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	current, err := settings.Load(st)
	if err != nil {
		cfg.Logger.Warn("saved settings were unreadable, starting from defaults", "error", err)
	}
	next := change(current)
	if err := settings.Save(st, next); err != nil {
		return err
	}
	return printSettings(next)
}

func printSettings(s settings.ReaderSettings) error {
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
