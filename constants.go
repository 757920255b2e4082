package tagxml

// Struct tag
const (
	// StructTag is the struct tag key marking a field for export.
	// Format: `tagxml:"[exportName][,type=T]"`. A present tag, even an empty one,
	// annotates the field; "-" opts the field out explicitly.
	StructTag = "tagxml"

	// TagOptionType is the tag option pinning the declared scalar type.
	TagOptionType = "type"

	tagSkip = "-"
)

// Document format
const (
	// Extension is appended to base names on write and required on read.
	Extension = ".xml"

	// TypeAttribute is the only attribute allowed on an entry tag.
	TypeAttribute = "type"
)

// Environment variable names read by the command line tool
const (
	EnvStore      = "TAGXML_STORE"
	EnvDir        = "TAGXML_DIR"
	EnvLogLevel   = "TAGXML_LOG_LEVEL"
	EnvS3Bucket   = "TAGXML_S3_BUCKET"
	EnvS3Prefix   = "TAGXML_S3_PREFIX"
	EnvSQLitePath = "TAGXML_SQLITE_PATH"
	EnvVaultMount = "TAGXML_VAULT_MOUNT"
)

// Default values
const (
	DefaultDir        = "."
	DefaultSQLitePath = "tagxml.db"
	DefaultVaultMount = "secret"
)
