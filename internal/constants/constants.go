package constants

import "time"

const (
	ScheduledActionsCronSpec    = "@every 1m"
	ScheduledActionsJobTimeout  = 50 * time.Second
	ScheduledActionsBatchSize   = 50
	DefaultListLimit            = 50
	MaxListLimit                = 500
	MaxExportRows               = 10000
	ServerShutdownTimeout       = 15 * time.Second
	ScheduledActionSystemReason = "product changed while the action was running"
	ExportFileDateLayout        = "20060102-150405"
)

// A RUNNING action older than ScheduledActionStaleAfter was claimed by a
// runner that never recorded its outcome.
const (
	ScheduledActionStaleAfter      = 10 * time.Minute
	ScheduledActionOutcomeTimeout  = 10 * time.Second
	ScheduledActionAbandonedReason = "runner stopped before recording the outcome; check the product before rescheduling"
)
