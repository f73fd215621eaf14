package datasetdb

import (
	"github.com/BurntSushi/migration"
	"github.com/cyclopcam/dbh"
	"github.com/cyclopcam/logs"
)

func Migrations(log logs.Log) []migration.Migrator {
	migs := []migration.Migrator{}
	idx := 0

	migs = append(migs, dbh.MakeMigrationFromSQL(log, &idx,
		`
		CREATE TABLE dataset(
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			media_type TEXT NOT NULL,
			sample_collection_name TEXT NOT NULL,
			persistent BOOLEAN NOT NULL DEFAULT 0,
			info TEXT,
			sample_fields TEXT,
			frame_fields TEXT,
			version TEXT NOT NULL,
			created_at INT NOT NULL
		);
		CREATE UNIQUE INDEX idx_dataset_name ON dataset (name);

		CREATE TABLE sample(
			id INTEGER PRIMARY KEY,
			dataset_id INT NOT NULL,
			file_id TEXT NOT NULL,
			filepath TEXT NOT NULL,
			metadata TEXT,
			labels TEXT,
			frame_labels TEXT,
			created_at INT NOT NULL
		);
		CREATE INDEX idx_sample_dataset_id ON sample (dataset_id);
	`))

	migs = append(migs, dbh.MakeMigrationFromSQL(log, &idx,
		`
		ALTER TABLE dataset ADD COLUMN default_targets TEXT;
		ALTER TABLE dataset ADD COLUMN label_targets TEXT;
	`))

	// Collection names were not unique before this migration, so rename any duplicates
	// before adding the index.
	migs = append(migs, dbh.MakeMigrationFromFunc(log, &idx, func(tx migration.LimitedTx) error {
		if _, err := tx.Exec(`
			UPDATE dataset SET sample_collection_name = 'samples.' || name
			WHERE sample_collection_name = '' OR sample_collection_name IN (
				SELECT sample_collection_name FROM dataset GROUP BY sample_collection_name HAVING COUNT(*) > 1
			)`); err != nil {
			return err
		}
		_, err := tx.Exec("CREATE UNIQUE INDEX idx_dataset_sample_collection_name ON dataset (sample_collection_name)")
		return err
	}))

	return migs
}
