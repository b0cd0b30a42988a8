package common

// File permissions used for everything the tool writes
const (
	// FilePermissionSecure is used for files that may hold credentials
	FilePermissionSecure = 0600

	// FilePermissionNormal is used for rendered SQL and other outputs
	FilePermissionNormal = 0644

	// DirPermissionNormal is used for output directories
	DirPermissionNormal = 0755
)
