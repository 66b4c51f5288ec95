package contract

import (
	"fmt"
	"maps"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/queuewait/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 2
	MaxPrecision     = 4
	DefaultTimer     = 10 * time.Second
	DefaultMomentum  = 0.1
	DefaultRate      = 0.3
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// TrainConfig holds the settings of the train command.
type TrainConfig struct {
	Loop       bool
	Logging    bool
	LogErrRate uint32
	Halt       schema.HaltRule
	Momentum   float64
	Rate       float64
	Iterations int // 0 = no limit when looping
	Params     map[string]any
}

// NewModelConfig holds the settings of the new command.
type NewModelConfig struct {
	Layers []int
	Path   string
	Force  bool
}

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	DataDir    string
	ModelPaths []string
	Workers    int
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	Verbose    bool

	Position uint16
	Length   uint16

	Train TrainConfig
	New   NewModelConfig

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually from positional args, so no tag
	DataDirStr string
	ModelArgs  []string
	LayersStr  string

	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile       string `mapstructure:"output-file"`
	Workers          int    `mapstructure:"workers"`
	Precision        int    `mapstructure:"precision"`
	Output           string `mapstructure:"output"`
	Width            int    `mapstructure:"width"`
	Verbose          bool   `mapstructure:"verbose"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Color            string `mapstructure:"color"`

	// --- Fields from trainCmd.Flags() ---
	Loop       bool    `mapstructure:"loop"`
	Logging    bool    `mapstructure:"logging"`
	LogErrRate int     `mapstructure:"logging-err-rate"`
	Timer      string  `mapstructure:"timer"`
	Epochs     int     `mapstructure:"epochs"`
	MSE        float64 `mapstructure:"mse"`
	Momentum   float64 `mapstructure:"momentum"`
	Rate       float64 `mapstructure:"rate"`
	Iterations int     `mapstructure:"iterations"`

	// --- Fields from newCmd.Flags() ---
	Path  string `mapstructure:"path"`
	Dir   string `mapstructure:"dir"`
	Force bool   `mapstructure:"force"`

	// --- Fields from estimateCmd.Flags() ---
	Position int      `mapstructure:"position"`
	Length   int      `mapstructure:"length"`
	Model    []string `mapstructure:"model"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.ModelPaths = slices.Clone(c.ModelPaths)
	clone.New.Layers = slices.Clone(c.New.Layers)
	clone.Train.Params = maps.Clone(c.Train.Params)
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := resolveDataPaths(cfg, input); err != nil {
		return err
	}
	if err := processTrainInputs(cfg, input); err != nil {
		return err
	}
	if err := processEstimateInputs(cfg, input); err != nil {
		return err
	}
	if err := processNewModelInputs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// Both stores on one SQLite file would drop each other's tables on clear
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	return nil
}

// resolveDataPaths makes the data directory and model paths absolute.
func resolveDataPaths(cfg *Config, input *ConfigRawInput) error {
	cfg.DataDir = ""
	if input.DataDirStr != "" {
		abs, err := filepath.Abs(input.DataDirStr)
		if err != nil {
			return err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("data directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("data directory %s is not a directory", abs)
		}
		cfg.DataDir = abs
	}

	models := input.ModelArgs
	if len(models) == 0 {
		models = input.Model
	}
	cfg.ModelPaths = nil
	for _, m := range models {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		abs, err := filepath.Abs(m)
		if err != nil {
			return err
		}
		cfg.ModelPaths = append(cfg.ModelPaths, abs)
	}
	return nil
}

// processTrainInputs resolves the halt rule and the training knobs.
func processTrainInputs(cfg *Config, input *ConfigRawInput) error {
	halt, err := ResolveHaltRule(input.Timer, input.Epochs, input.MSE)
	if err != nil {
		return err
	}

	if input.LogErrRate < 0 {
		return fmt.Errorf("logging-err-rate cannot be negative (received %d)", input.LogErrRate)
	}
	if input.Iterations < 0 {
		return fmt.Errorf("iterations cannot be negative (received %d)", input.Iterations)
	}
	if input.Rate <= 0 {
		return fmt.Errorf("rate must be greater than 0 (received %g)", input.Rate)
	}
	if input.Momentum < 0 || input.Momentum >= 1 {
		return fmt.Errorf("momentum must be in [0, 1) (received %g)", input.Momentum)
	}

	cfg.Train = TrainConfig{
		Loop:       input.Loop && halt.Kind != schema.HaltMSE,
		Logging:    input.Logging,
		LogErrRate: uint32(input.LogErrRate),
		Halt:       halt,
		Momentum:   input.Momentum,
		Rate:       input.Rate,
		Iterations: input.Iterations,
	}
	cfg.Train.Params = map[string]any{
		"halt":       halt.String(),
		"momentum":   cfg.Train.Momentum,
		"rate":       cfg.Train.Rate,
		"loop":       cfg.Train.Loop,
		"iterations": cfg.Train.Iterations,
	}
	return nil
}

// ResolveHaltRule picks the single halting rule among timer, epochs and mse.
// Zero values mean "not given"; with nothing given the default timer applies.
func ResolveHaltRule(timer string, epochs int, mse float64) (schema.HaltRule, error) {
	given := 0
	rule := schema.HaltRule{Kind: schema.HaltTimer, Timer: DefaultTimer}

	if timer != "" {
		d, err := ParseTimer(timer)
		if err != nil {
			return schema.HaltRule{}, err
		}
		rule = schema.HaltRule{Kind: schema.HaltTimer, Timer: d}
		given++
	}
	if epochs != 0 {
		if epochs < 0 || int64(epochs) > math.MaxUint32 {
			return schema.HaltRule{}, fmt.Errorf("epochs must be a positive 32-bit count (received %d)", epochs)
		}
		rule = schema.HaltRule{Kind: schema.HaltEpochs, Epochs: uint32(epochs)}
		given++
	}
	if mse != 0 {
		if mse < 0 || math.IsNaN(mse) {
			return schema.HaltRule{}, fmt.Errorf("mse must be greater than 0 (received %g)", mse)
		}
		rule = schema.HaltRule{Kind: schema.HaltMSE, MSE: mse}
		given++
	}
	if given > 1 {
		return schema.HaltRule{}, fmt.Errorf("only one of --timer, --epochs, --mse can be given")
	}
	return rule, nil
}

// ParseTimer accepts a Go duration ("90s", "2m") or a plain number of seconds.
func ParseTimer(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseUint(s, 10, 32); err == nil {
		if secs == 0 {
			return 0, fmt.Errorf("timer must be greater than 0")
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timer '%s': expected seconds or a duration like 90s", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timer must be greater than 0")
	}
	return d, nil
}

// processEstimateInputs validates the queue snapshot used by estimate.
func processEstimateInputs(cfg *Config, input *ConfigRawInput) error {
	if input.Position < 0 || input.Position > math.MaxUint16 {
		return fmt.Errorf("position must be between 0 and %d (received %d)", math.MaxUint16, input.Position)
	}
	if input.Length < 0 || input.Length > math.MaxUint16 {
		return fmt.Errorf("length must be between 0 and %d (received %d)", math.MaxUint16, input.Length)
	}
	cfg.Position = uint16(input.Position)
	cfg.Length = uint16(input.Length)
	return nil
}

// processNewModelInputs validates the layer layout and resolves where the model goes.
func processNewModelInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.New = NewModelConfig{Force: input.Force}
	if input.LayersStr == "" {
		return nil
	}

	layers, err := ValidateLayers(input.LayersStr)
	if err != nil {
		return err
	}
	cfg.New.Layers = layers

	switch {
	case input.Path != "" && input.Dir != "":
		return fmt.Errorf("only one of --path and --dir can be given")
	case input.Path != "":
		cfg.New.Path = input.Path
	case input.Dir != "":
		cfg.New.Path = filepath.Join(input.Dir, schema.FormatLayers(layers)+".json")
	default:
		return fmt.Errorf("one of --path or --dir is required")
	}
	return nil
}

// ValidateLayers parses a layer layout and checks it fits the feature vector.
func ValidateLayers(spec string) ([]int, error) {
	layers, err := schema.ParseLayers(spec)
	if err != nil {
		return nil, err
	}
	if layers[0] != schema.FeatureCount {
		return nil, fmt.Errorf("input layer must have %d neurons (received %d)", schema.FeatureCount, layers[0])
	}
	if last := layers[len(layers)-1]; last != schema.TargetCount {
		return nil, fmt.Errorf("output layer must have %d neuron (received %d)", schema.TargetCount, last)
	}
	return layers, nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// RevalidateStat applies the arguments of a stat request made outside the CLI.
func RevalidateStat(cfg *Config, dataDir string, models []string) error {
	if strings.TrimSpace(dataDir) == "" {
		return fmt.Errorf("data_dir is required")
	}
	return resolveDataPaths(cfg, &ConfigRawInput{DataDirStr: dataDir, ModelArgs: models})
}

// RevalidateEstimate applies the arguments of an estimate request made outside the CLI.
func RevalidateEstimate(cfg *Config, position, length int, models []string) error {
	if err := processEstimateInputs(cfg, &ConfigRawInput{Position: position, Length: length}); err != nil {
		return err
	}
	return resolveDataPaths(cfg, &ConfigRawInput{ModelArgs: models})
}
