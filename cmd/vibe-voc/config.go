package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-voc/internal/mutation"
)

// setting is a key vibe-voc reads from ~/.vibe-voc.yaml.
type setting struct {
	key   string
	usage string
	// parse validates a command-line value and returns the form written
	// to the config file.
	parse func(string) (any, error)
}

var settings = []setting{
	{"region", "Gene prefix for hotspot positions (e.g. S:)", parseRegion},
	{"high_risk", "High-risk mutation codes, comma-separated", parseHighRisk},
	{"signatures_file", "YAML file with VOC signatures and high-risk mutations", parseSignaturesFile},
	{"delimiter", "Input delimiter: auto, ';', ',', or tab", parseDelimiterSetting},
	{"verbose", "Enable debug logging (true/false)", parseBoolSetting},
}

func lookupSetting(key string) (setting, bool) {
	for _, s := range settings {
		if s.key == key {
			return s, true
		}
	}
	return setting{}, false
}

func settingKeys() string {
	keys := make([]string, len(settings))
	for i, s := range settings {
		keys[i] = s.key
	}
	return strings.Join(keys, ", ")
}

func settingsHelp() string {
	var b strings.Builder
	for _, s := range settings {
		fmt.Fprintf(&b, "  %-16s %s\n", s.key, s.usage)
	}
	return b.String()
}

func parseRegion(v string) (any, error) {
	if v == "" {
		return nil, errors.New("region must not be empty")
	}
	return v, nil
}

func parseHighRisk(v string) (any, error) {
	codes := splitCodes(v)
	if len(codes) == 0 {
		return nil, errors.New("high_risk needs at least one mutation code")
	}
	return codes, nil
}

func parseSignaturesFile(v string) (any, error) {
	path, err := filepath.Abs(v)
	if err != nil {
		return nil, err
	}
	if _, err := mutation.LoadProfile(path); err != nil {
		return nil, err
	}
	return path, nil
}

func parseDelimiterSetting(v string) (any, error) {
	if _, err := parseDelimiter(v); err != nil {
		return nil, err
	}
	return v, nil
}

func parseBoolSetting(v string) (any, error) {
	switch strings.ToLower(v) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("invalid boolean %q", v)
	}
	return b, nil
}

// splitCodes splits a comma-separated code list, dropping blanks.
func splitCodes(s string) []string {
	var codes []string
	for _, c := range strings.Split(s, mutation.Delimiter) {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

// highRiskCodes returns the high_risk override, empty when unset. The
// flag and config lists arrive as slices; env vars and hand-written
// config files give a comma-separated string.
func highRiskCodes() []string {
	var raw []string
	switch v := viper.Get("high_risk").(type) {
	case nil:
	case string:
		raw = []string{v}
	case []string:
		raw = v
	case []any:
		for _, x := range v {
			raw = append(raw, fmt.Sprint(x))
		}
	default:
		raw = []string{fmt.Sprint(v)}
	}

	var codes []string
	for _, r := range raw {
		codes = append(codes, splitCodes(r)...)
	}
	return codes
}

// configFilePath returns the file `config set` writes to.
func configFilePath() (string, error) {
	if f := viper.ConfigFileUsed(); f != "" {
		return f, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".vibe-voc.yaml"), nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-voc configuration",
		Long: `Show, get, or set configuration values. Config is stored in ~/.vibe-voc.yaml.

Keys:
` + settingsHelp(),
		Example: `  vibe-voc config                                      # show effective settings
  vibe-voc config set high_risk S:N501Y,S:E484K,S:L452R  # override the high-risk set
  vibe-voc config set signatures_file ~/voc-2022.yaml    # use custom signatures
  vibe-voc config get region                             # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd, args[0])
		},
	}
}

// effectiveValue returns the value commands will use for key.
func effectiveValue(key string) any {
	if key == "high_risk" {
		if codes := highRiskCodes(); len(codes) > 0 {
			return codes
		}
		return mutation.DefaultHighRisk()
	}
	return viper.Get(key)
}

func runConfigShow(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	if f := viper.ConfigFileUsed(); f != "" {
		fmt.Fprintf(out, "# Config file: %s\n", f)
	} else {
		fmt.Fprintln(out, "# No config file. Set values with 'vibe-voc config set'.")
	}

	values := make(map[string]any, len(settings))
	for _, s := range settings {
		values[s.key] = effectiveValue(s.key)
	}
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(out, string(data))
	return nil
}

func runConfigSet(cmd *cobra.Command, key, value string) error {
	s, ok := lookupSetting(key)
	if !ok {
		return newUsageError("unknown config key %q (known keys: %s)", key, settingKeys())
	}
	v, err := s.parse(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}

	cfgFile, err := configFilePath()
	if err != nil {
		return err
	}
	if err := writeSetting(cfgFile, key, v); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, formatValue(v), cfgFile)
	return nil
}

// writeSetting updates one key of the YAML config file, keeping the
// others. Values from flags and env are never written.
func writeSetting(path, key string, value any) error {
	values := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if values == nil {
			values = map[string]any{}
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("read config: %w", err)
	}

	values[key] = value
	out, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, key string) error {
	if _, ok := lookupSetting(key); !ok {
		return newUsageError("unknown config key %q (known keys: %s)", key, settingKeys())
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatValue(effectiveValue(key)))
	return nil
}

func formatValue(v any) string {
	if codes, ok := v.([]string); ok {
		return strings.Join(codes, mutation.Delimiter)
	}
	return fmt.Sprint(v)
}
