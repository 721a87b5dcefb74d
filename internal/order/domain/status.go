package domain

import "strings"

// providerStatuses maps the panels' free-text status vocabulary onto ours.
// Anything absent from the table is treated as still processing rather than
// rejected; panels add spellings without notice.
var providerStatuses = map[string]string{
	"pending":     StatusPending,
	"queued":      StatusPending,
	"processing":  StatusProcessing,
	"in progress": StatusInProgress,
	"inprogress":  StatusInProgress,
	"partial":     StatusPartial,
	"completed":   StatusCompleted,
	"complete":    StatusCompleted,
	"canceled":    StatusCanceled,
	"cancelled":   StatusCanceled,
	"refunded":    StatusRefunded,
	"error":       StatusError,
	"fail":        StatusError,
	"failed":      StatusError,
}

// MapProviderStatus normalizes a provider status string to a local status.
func MapProviderStatus(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if status, ok := providerStatuses[key]; ok {
		return status
	}
	return StatusProcessing
}
