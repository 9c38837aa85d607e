package importer

const (
	Version = "v0.1.0"

	// MigrationTable is the golang-migrate version table of the importer schema.
	MigrationTable = "importer_schema_migrations"
)
