// api/audit/model.go
package audit

import (
	"time"
)

// OperationRecord is one completed resource operation as written to the audit
// index, success or failure alike.
type OperationRecord struct {
	Timestamp        time.Time `json:"timestamp"`
	RequestingEntity string    `json:"requesting_entity"`
	Operation        string    `json:"operation"`
	TargetPath       string    `json:"target_path"`
	StatusCode       int       `json:"status_code"`
	LatencyMillis    int64     `json:"latency_millis"`
}
