// Package scanner discovers image files on disk and turns them into image
// records ready for ingestion.
//
// A Scanner walks a directory tree, filters by a case-insensitive extension
// allow-list, and for each match streams the file through a content hash and
// probes its pixel dimensions. Records are produced lazily through an
// iter.Seq so callers control pacing and can stop early.
package scanner
