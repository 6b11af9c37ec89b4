package service

import (
	"encoding/json"
	"log"
	"time"
)

// logEvent emits one structured JSON log line for service-level events
// (best-effort side calls, compensating cleanup failures).
func logEvent(fields map[string]any) {
	fields["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	if _, ok := fields["level"]; !ok {
		fields["level"] = "info"
	}
	b, err := json.Marshal(fields)
	if err != nil {
		log.Printf("failed to marshal service log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
