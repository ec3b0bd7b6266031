// Package repository handles all interactions with the database.
//
// It contains the ORM queries used to fetch, persist, or update data,
// abstracting persistence away from the service layer. Every page and
// task query is scoped by the owning author.
package repository
