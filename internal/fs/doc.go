// Package fs abstracts the file operations behind blobstore.LocalStore's
// write path so that tests can inject I/O failures.
//
// Production code uses [Default], which forwards to the os package. Tests
// wrap it in a [FaultyFS]:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.SetFault(fs.Fault{FailOnSync: true})
//	// inject ffs into the store under test
//
// The interfaces take no context.Context: local file operations are not
// interruptible at the syscall level. Remote stores use blobstore.Blob.
package fs
