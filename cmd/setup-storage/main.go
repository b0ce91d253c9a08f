// Command setup-storage provisions the profile-pictures bucket.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ElStudioBarberia/course-service/internal/config"
	"github.com/ElStudioBarberia/course-service/internal/storage"
	"github.com/ElStudioBarberia/course-service/internal/storage/minio"
)

func main() {
	cfg, err := config.LoadStorageConfig()
	if err != nil {
		log.Printf("storage configuration missing: %v", err)
		os.Exit(1)
	}

	client, err := minio.NewClient(*cfg)
	if err != nil {
		log.Printf("failed to connect to object storage: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()

	created, err := client.EnsureBucket(ctx, storage.BucketProfilePictures, storage.ProfilePicturesPolicy)
	if err != nil {
		log.Printf("failed to provision bucket %s: %v", storage.BucketProfilePictures, err)
		os.Exit(1)
	}

	if created {
		fmt.Printf("bucket %s created\n", storage.BucketProfilePictures)
	} else {
		fmt.Printf("bucket %s already exists\n", storage.BucketProfilePictures)
	}
}
