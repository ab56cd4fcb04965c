// Package archive stores per-session size timelines.
//
// A Timeline collects every size change a session observed. When the
// session ends the server hands it to a Store: DiskStore writes JSON files
// to a directory, S3Store writes objects to a bucket.
//
//	store, err := archive.NewDiskStore("timelines")
//	srv := server.New(&server.Config{Archive: store})
package archive
