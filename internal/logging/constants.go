package logging

// Standardized field names for structured logging.
const (
	FieldFile        = "file_path"
	FieldRunID       = "run_id"
	FieldLine        = "line"
	FieldFingerprint = "fingerprint"
	FieldCategory    = "category"
	FieldType        = "type"
	FieldAmount      = "amount"
	FieldKeyword     = "keyword"
	FieldStrategy    = "strategy"
	FieldReason      = "reason"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldCount       = "count"
	FieldDriver      = "driver"
)

// TimestampFormat is the layout of the timestamp prefix of text log lines.
const TimestampFormat = "2006-01-02 15:04:05"
