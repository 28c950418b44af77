// Package firestore implements the repositories on Cloud Firestore.
package firestore

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	sessionsCollection = "sessions"
	progressCollection = "progress"
	usersCollection    = "users"
)

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
