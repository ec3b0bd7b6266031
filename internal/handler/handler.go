// Package handler is the HTTP edge of the application.
//
// Handlers receive payloads that the shared pipeline (base.go) has already
// bound, stamped with the caller and validated, call the service layer,
// and leave response shaping to the pipeline.
package handler
