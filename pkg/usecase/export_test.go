package usecase

// Export unexported functions for testing
var (
	DroppedFilesForTest        = droppedFiles
	CheckRevisionForTest       = checkRevision
	RemoteCommitMetaKeyForTest = remoteCommitMetaKey
	NotFoundForTest            = notFound
	ConflictForTest            = conflict
)
