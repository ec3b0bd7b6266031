// Package service contains the business logic.
//
// It sits between the handler and repository layers: it receives
// validated payloads, enforces ownership and parent rules, and maps
// repository sentinels to API errors.
package service
