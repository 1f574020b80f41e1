// Package logging emits one-JSON-object-per-line log entries, matching the request
// logger's output shape so the whole service logs a single stream format.
package logging

import (
	"encoding/json"
	"log"
	"time"
)

// Info logs an informational entry with optional fields.
func Info(msg string, fields map[string]any) {
	logJSON("info", msg, fields)
}

// Error logs an error entry with optional fields.
func Error(msg string, fields map[string]any) {
	logJSON("error", msg, fields)
}

func logJSON(level, msg string, fields map[string]any) {
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": level,
		"msg":   msg,
	}
	for k, v := range fields {
		entry[k] = v
	}

	b, err := json.Marshal(entry)
	if err != nil {
		log.Printf("failed to marshal log entry: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
