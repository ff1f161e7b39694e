package logging

// Field names shared by all log output so entries can be filtered by key.
const (
	FieldFile       = "file"
	FieldStoredFile = "stored_file"
	FieldParser     = "parser"
	FieldBank       = "bank"
	FieldJobID      = "job_id"
	FieldRow        = "row"
	FieldCategory   = "category"
	FieldReason     = "reason"
	FieldOperation  = "operation"
	FieldStatus     = "status"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldSessionID  = "session_id"
	FieldModel      = "model"
	FieldInputFile  = "input_file"
	FieldOutputFile = "output_file"
	FieldDatabase   = "database"
	FieldRemoteAddr = "remote_addr"
)
