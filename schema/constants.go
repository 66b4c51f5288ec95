package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string

	// HaltKind represents the stopping condition of a training pass.
	HaltKind string
)

// Field is a semantic column of an observation log.
type Field int

// All semantic columns an observation log can carry.
const (
	TimeField Field = iota
	PositionField
	LengthField
)

// String returns the canonical column name.
func (f Field) String() string {
	switch f {
	case TimeField:
		return "time"
	case PositionField:
		return "position"
	case LengthField:
		return "length"
	default:
		return "unknown"
	}
}

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	YAMLOut    OutputMode = "yaml"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All halting rules supported.
const (
	HaltEpochs HaltKind = "epochs"
	HaltTimer  HaltKind = "timer" // default
	HaltMSE    HaltKind = "mse"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	YAMLOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// Model and feature constants.
const (
	FeatureCount  = 10  // Inputs per training example
	TargetCount   = 1   // Outputs per training example
	BaselineModel = "baseline"
)
