// Package resource provides loaders that fetch raw configuration text for a
// reloader, plus small combinators to turn that text into typed values.
//
// A Supplier is a blocking function returning a value or an error. File,
// S3Loader, CachingS3Loader and RedisLoader are suppliers for the usual
// places flag configuration lives. AndThen chains a parser onto a supplier
// and AsyncLoader runs the result on its own goroutine so it can be handed to
// reload.New:
//
//	client, err := resource.NewS3Client(ctx, resource.S3Config{Region: "eu-west-1"})
//	if err != nil {
//	    return err
//	}
//	loc, _ := resource.ParseS3Location("s3://configs/flags.yaml")
//	s3 := resource.NewCachingS3Loader(client, loc)
//
//	loader := resource.AsyncLoader(resource.AndThen(s3.Supplier(), flagconfig.ParseYAML))
//	r := reload.New(loader, flagconfig.Empty())
//
// WatchFile complements periodic reloading for local files: it calls a
// function, usually the reloader's Trigger, shortly after the file changes.
package resource
