// Package v1 provides user-sync business logic for API version 1.
//
// Error Handling:
// This package defines sentinel errors for the failures handlers need to
// distinguish. They are wrapped with context using fmt.Errorf("%w") when
// returned from business logic methods.
//
// Example Usage:
//
//	if user == nil {
//	    return nil, fmt.Errorf("update user %q: %w", clerkID, ErrUserNotFound)
//	}
//
// Error Checking (in handlers):
//
//	switch {
//	case errors.Is(err, logicv1.ErrUserNotFound):
//	    c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
//	}
package v1

import "errors"

// Sentinel errors for user-sync operations.
var (
	// ErrUserNotFound indicates no user matches the given provider id.
	// Expected under normal operation, not exceptional.
	// HTTP Status: 404 Not Found
	ErrUserNotFound = errors.New("user not found")

	// ErrPersistence indicates the data store rejected a write for a
	// reason other than the pre-checked uniqueness conflict. The wrapping
	// error carries the store's message for diagnostics.
	// HTTP Status: 500 Internal Server Error
	ErrPersistence = errors.New("persistence failure")
)
