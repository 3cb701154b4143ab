package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldErrorType = "error_type"
	FieldDuration  = "duration_ms"
	FieldBillID    = "bill_id"
	FieldBillType  = "bill_type"
	FieldDate      = "date"
	FieldCategory  = "category"
	FieldAmount    = "amount"
	FieldRows      = "rows"
	FieldCount     = "count"
	FieldStartDate = "start_date"
	FieldEndDate   = "end_date"
	FieldDriver    = "driver"
	FieldEventID   = "event_id"
	FieldEventKind = "event_kind"
	FieldSheetsRef = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentMetrics = "metrics"
)

// Operations defines standard operation names
const (
	OpInit           = "init"
	OpEnsureSchema   = "ensure_schema"
	OpInsert         = "insert"
	OpUpdate         = "update"
	OpDelete         = "delete"
	OpGet            = "get"
	OpList           = "list"
	OpTotals         = "totals"
	OpCategoryTotals = "category_totals"
	OpPublish        = "publish"
	OpConsume        = "consume"
	OpExport         = "export"
	OpShutdown       = "shutdown"
	OpStartup        = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation     = "validation_error"
	ErrorTypeConfiguration  = "configuration_error"
	ErrorTypeNotInitialized = "not_initialized_error"
	ErrorTypeConstraint     = "constraint_error"
	ErrorTypeNotFound       = "not_found_error"
	ErrorTypeDatabase       = "database_error"
	ErrorTypeNetwork        = "network_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds the error category
func (f LogFields) WithErrorType(kind string) LogFields {
	f[FieldErrorType] = kind
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithBillID adds the bill identity
func (f LogFields) WithBillID(id int64) LogFields {
	f[FieldBillID] = id
	return f
}

// WithBill adds bill-related fields
func (f LogFields) WithBill(date, billType, category string, amount float64) LogFields {
	f[FieldDate] = date
	f[FieldBillType] = billType
	f[FieldCategory] = category
	f[FieldAmount] = amount
	return f
}

// WithRange adds date range fields, skipping unbounded sides
func (f LogFields) WithRange(start, end string) LogFields {
	if start != "" {
		f[FieldStartDate] = start
	}
	if end != "" {
		f[FieldEndDate] = end
	}
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
