// Package deploy publishes a static export to an S3 bucket.
//
// The publisher walks the export directory, uploads each file with a
// detected content type, and optionally prunes remote objects that no
// longer exist locally. Uploads talk to S3 through a narrow interface,
// so tests run against an in-memory fake.
//
// # Usage
//
//	publisher, err := deploy.NewFromProject(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := publisher.Publish(ctx, cfg.OutputPath())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Uploaded %d files\n", result.Uploaded)
package deploy
