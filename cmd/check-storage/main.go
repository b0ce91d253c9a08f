// Command check-storage lists the existing buckets and reports which of the
// well-known buckets are missing.
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

	buckets, err := client.ListBuckets(context.Background())
	if err != nil {
		log.Printf("failed to list buckets: %v", err)
		os.Exit(1)
	}

	existing := make(map[string]bool, len(buckets))
	fmt.Println("existing buckets:")
	for _, b := range buckets {
		existing[b] = true
		fmt.Printf("  - %s\n", b)
	}

	wellKnown := []string{
		storage.BucketProfilePictures,
		storage.BucketCursos,
		storage.BucketVideos,
		storage.BucketMateriales,
		storage.BucketCourseMaterials,
	}

	missing := false
	for _, b := range wellKnown {
		if !existing[b] {
			fmt.Printf("missing: %s\n", b)
			missing = true
		}
	}
	if !missing {
		fmt.Println("all well-known buckets present")
	}
}
