package database

import (
	"database/sql"
	"log"
	"sync"

	"github.com/herdsync/herdsync/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database connection error ❌: %v", err)
		return nil, err
	}
	err = createProfileTable(db)
	if err != nil {
		return nil, err
	}
	err = createFarmTable(db)
	if err != nil {
		return nil, err
	}
	err = createBullTable(db)
	if err != nil {
		return nil, err
	}
	err = createFemaleTable(db)
	if err != nil {
		return nil, err
	}
	err = createStagingTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// createProfileTable creates a PostgreSQL table for the Profile struct
func createProfileTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id SERIAL PRIMARY KEY,
			profile_id TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			name TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	log.Println(err)
	return err
}

// createFarmTable creates a PostgreSQL table for the Farm struct
func createFarmTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS farms (
			id SERIAL PRIMARY KEY,
			farm_id TEXT NOT NULL UNIQUE,
			owner_id TEXT NOT NULL REFERENCES profiles(profile_id),
			name TEXT,
			raw_id TEXT UNIQUE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	log.Println(err)
	return err
}

// createBullTable creates a PostgreSQL table for sire genetic records
func createBullTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bulls (
			id SERIAL PRIMARY KEY,
			farm_id TEXT NOT NULL REFERENCES farms(farm_id),
			naab_code TEXT NOT NULL,
			name TEXT,
			registration TEXT,
			birth_date TIMESTAMP,
			ptam DOUBLE PRECISION,
			ptaf DOUBLE PRECISION,
			ptap DOUBLE PRECISION,
			fat_pct DOUBLE PRECISION,
			protein_pct DOUBLE PRECISION,
			scs DOUBLE PRECISION,
			pl DOUBLE PRECISION,
			dpr DOUBLE PRECISION,
			tpi DOUBLE PRECISION,
			nm DOUBLE PRECISION,
			beta_casein TEXT,
			kappa_casein TEXT,
			import_batch_id TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE (farm_id, naab_code)
		)
	`)
	log.Println(err)
	return err
}

// createFemaleTable creates a PostgreSQL table for cow and heifer records
func createFemaleTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS females (
			id SERIAL PRIMARY KEY,
			farm_id TEXT NOT NULL REFERENCES farms(farm_id),
			identifier TEXT NOT NULL,
			name TEXT,
			registration TEXT,
			birth_date TIMESTAMP,
			sire_naab TEXT,
			mgs_naab TEXT,
			ptam DOUBLE PRECISION,
			ptaf DOUBLE PRECISION,
			ptap DOUBLE PRECISION,
			scs DOUBLE PRECISION,
			dpr DOUBLE PRECISION,
			tpi DOUBLE PRECISION,
			nm DOUBLE PRECISION,
			beta_casein TEXT,
			import_batch_id TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE (farm_id, identifier)
		)
	`)
	log.Println(err)
	return err
}

// createStagingTable creates a PostgreSQL table for rows awaiting promotion
func createStagingTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS staging_rows (
			id SERIAL PRIMARY KEY,
			row_id TEXT NOT NULL UNIQUE,
			batch_id TEXT NOT NULL,
			entity TEXT NOT NULL CHECK (entity IN ('profiles', 'farms', 'females')),
			uploaded_by TEXT,
			row_number INTEGER,
			raw_data JSONB,
			mapped_data JSONB,
			valid BOOLEAN NOT NULL DEFAULT TRUE,
			errors JSONB,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			imported_at TIMESTAMP
		)
	`)
	log.Println(err)
	return err
}
