package logging

import (
	"log"
	"time"
)

// LogLoad logs a source file read into memory.
func LogLoad(component, path string, rows int, duration time.Duration) {
	log.Printf("[%s] loaded %s rows=%d duration=%dms",
		component, path, rows, duration.Milliseconds())
}

// LogSkipped logs rows or records dropped for a recoverable reason.
func LogSkipped(component, reason string, count int) {
	if count == 0 {
		return
	}
	log.Printf("[%s] skipped %d %s", component, count, reason)
}

// LogError logs an error from an operation.
func LogError(component, operation string, err error) {
	log.Printf("[%s] %s error: %v", component, operation, err)
}

// LogFallback logs a degraded result that replaced a failed step.
func LogFallback(component, subject, strategy string, err error) {
	if err != nil {
		log.Printf("[%s] %s fell back to %s: %v", component, subject, strategy, err)
		return
	}
	log.Printf("[%s] %s fell back to %s", component, subject, strategy)
}

// LogTransform logs a transformation of records.
func LogTransform(component string, inputCount, outputCount int, duration time.Duration) {
	log.Printf("[%s] transformed %d -> %d records in %dms",
		component, inputCount, outputCount, duration.Milliseconds())
}

// LogUpsert logs database write operations.
func LogUpsert(component string, count int, duration time.Duration) {
	log.Printf("[%s] upserted %d records in %dms",
		component, count, duration.Milliseconds())
}

// LogWarning logs a degraded request that still produced a result.
func LogWarning(component, msg string) {
	log.Printf("[%s] warning: %s", component, msg)
}
