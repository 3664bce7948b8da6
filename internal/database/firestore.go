package database

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// OpenFirestore connects to Firestore. When emulatorHost is set the client
// library routes traffic to the emulator and credentials are skipped.
func OpenFirestore(ctx context.Context, projectID, emulatorHost string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if emulatorHost != "" {
		opts = append(opts, option.WithoutAuthentication())
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return client, nil
}
