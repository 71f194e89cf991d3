// Package audiostore manages the flat directory of converted audio files.
//
// Files are named by a millisecond timestamp ID plus extension and live for
// at most one download or one sweep interval. Store hands out IDs, resolves
// paths, and validates client-supplied IDs so a request can never name a file
// outside the directory. CleanStale and Janitor remove files nobody fetched.
package audiostore
