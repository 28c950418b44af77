package config

import (
	"context"
	"errors"
	"os"

	"cloud.google.com/go/firestore"
)

// InitFirestore opens a Firestore client for FIRESTORE_PROJECT, falling back
// to GCP_PROJECT. FIRESTORE_EMULATOR_HOST is honoured by the client library.
func InitFirestore(ctx context.Context) (*firestore.Client, error) {
	project := os.Getenv("FIRESTORE_PROJECT")
	if project == "" {
		project = os.Getenv("GCP_PROJECT")
	}
	if project == "" {
		return nil, errors.New("FIRESTORE_PROJECT (or GCP_PROJECT) environment variable is not set")
	}
	return firestore.NewClient(ctx, project)
}
