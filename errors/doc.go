// Package errors provides the application error taxonomy.
//
// Every failure that reaches the chat user is an *AppError whose Message is
// user-safe; tool output and upstream bodies travel in Details and Cause.
// Codes double as metric labels and drive retry decisions.
package errors
