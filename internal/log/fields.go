package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldUserID      = "user_id"
	FieldCategory    = "category"
	FieldAmount      = "amount"
	FieldPeriod      = "period"
	FieldLimitID     = "limit_id"
	FieldGoalID      = "goal_id"
	FieldTransaction = "transaction_id"
	FieldProvider    = "provider"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLedger   = "ledger"
	ComponentReports  = "reports"
	ComponentGoals    = "goals"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentNotifier = "notifier"
	ComponentQuotes   = "quotes"
	ComponentCache    = "cache"
	ComponentAuth     = "auth"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpDeposit  = "deposit"
	OpEvaluate = "evaluate"
	OpFetch    = "fetch"
	OpNotify   = "notify"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
