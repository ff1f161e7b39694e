package models

// File permissions used when creating data directories and exports.
const (
	PermissionDirectory  = 0750
	PermissionDataFile   = 0600
	PermissionExportFile = 0644
)

// CategoryUncategorized is the name reported for transactions without a category.
const CategoryUncategorized = "Uncategorized"
