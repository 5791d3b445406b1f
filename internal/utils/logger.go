package utils

import (
	"log"
	"strings"
)

// LogEvent prints standardized log line with module/action/request_id.
// Avoid logging sensitive payload; message should be summarized.
func LogEvent(requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	log.Printf("[%s] action=%s request_id=%s msg=%s", strings.ToUpper(module), action, req, message)
}

// LogWarn marks recoverable anomalies (skipped template, safety bound) that
// should stand out in the log stream without failing the batch.
func LogWarn(module, action, message string) {
	log.Printf("[%s] WARN action=%s msg=%s", strings.ToUpper(module), action, message)
}
