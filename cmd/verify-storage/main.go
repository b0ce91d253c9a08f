// Command verify-storage runs an end-to-end smoke test against the cursos
// bucket: upload a small object, print its public URL and remove it.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

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

	content := "storage verification probe"
	path := storage.NewObjectName("probe.txt")

	err = client.Upload(ctx, storage.BucketCursos, path, strings.NewReader(content), int64(len(content)), storage.UploadOptions{
		ContentType: "text/plain",
		Upsert:      true,
	})
	if err != nil {
		log.Printf("upload failed: %v", err)
		os.Exit(1)
	}
	fmt.Printf("uploaded %s\n", path)
	fmt.Printf("public url: %s\n", client.PublicURL(storage.BucketCursos, path))

	if err := client.Remove(ctx, storage.BucketCursos, path); err != nil {
		log.Printf("cleanup failed: %v", err)
		os.Exit(1)
	}
	fmt.Println("removed probe object, storage is working")
}
