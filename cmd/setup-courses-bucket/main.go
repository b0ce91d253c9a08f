// Command setup-courses-bucket provisions the consolidated cursos bucket
// that holds cover images, videos and PDF materials.
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

	created, err := client.EnsureBucket(ctx, storage.BucketCursos, storage.CursosPolicy)
	if err != nil {
		log.Printf("failed to provision bucket %s: %v", storage.BucketCursos, err)
		os.Exit(1)
	}

	if created {
		fmt.Printf("bucket %s created\n", storage.BucketCursos)
	} else {
		fmt.Printf("bucket %s already exists\n", storage.BucketCursos)
	}

	fmt.Println("allowed types:", storage.CursosPolicy.AllowedMIMETypes)
	fmt.Printf("size limit: %d MB\n", storage.CursosPolicy.MaxObjectSize/(1024*1024))
}
