package server

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dekarrin/scriptlint/server/dao"
	"github.com/dekarrin/scriptlint/server/dao/inmem"
	"github.com/dekarrin/scriptlint/server/dao/sqlite"
)

// DBType is the type of a Database connection.
type DBType string

func (dbt DBType) String() string {
	return string(dbt)
}

const (
	DatabaseNone     DBType = "none"
	DatabaseSQLite   DBType = "sqlite"
	DatabaseInMemory DBType = "inmem"
)

const (
	MaxSecretSize = 64
	MinSecretSize = 32
)

// ParseDBType parses a string found in a connection string into a DBType.
func ParseDBType(s string) (DBType, error) {
	sLower := strings.ToLower(s)

	switch sLower {
	case DatabaseSQLite.String():
		return DatabaseSQLite, nil
	case DatabaseInMemory.String():
		return DatabaseInMemory, nil
	default:
		return DatabaseNone, fmt.Errorf("DB type not one of 'sqlite' or 'inmem': %q", s)
	}
}

// Database contains configuration settings for connecting to a persistence
// layer.
type Database struct {
	// Type is the type of database the config refers to. It also determines
	// which of its other fields are valid.
	Type DBType

	// DataDir is the path on disk to a directory to use to store data in.
	// This is only applicable for certain DB types: SQLite.
	DataDir string
}

// ParseDBConnString parses a "DRIVER[:PARAMS]" connection string into a
// Database config. An empty string selects the in-memory store.
func ParseDBConnString(s string) (Database, error) {
	if s == "" {
		return Database{Type: DatabaseInMemory}, nil
	}

	driver, params, _ := strings.Cut(s, ":")
	dbType, err := ParseDBType(driver)
	if err != nil {
		return Database{}, err
	}

	db := Database{Type: dbType}
	if dbType == DatabaseSQLite {
		if params == "" {
			return Database{}, fmt.Errorf("sqlite DB needs a data directory, like sqlite:path/to/db_dir")
		}
		db.DataDir = params
	}
	return db, nil
}

// Connect performs all logic needed to connect to the configured DB and
// initialize the store for use.
func (db Database) Connect() (dao.Store, error) {
	switch db.Type {
	case DatabaseInMemory:
		return inmem.NewDatastore(), nil
	case DatabaseSQLite:
		err := os.MkdirAll(db.DataDir, 0770)
		if err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}

		store, err := sqlite.NewDatastore(db.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite: %w", err)
		}

		return store, nil
	case DatabaseNone:
		return nil, fmt.Errorf("cannot connect to 'none' DB")
	default:
		return nil, fmt.Errorf("unknown database type: %q", db.Type.String())
	}
}

// Config holds every setting the server needs to run.
type Config struct {
	// Address is the address to listen on, in ADDRESS:PORT form.
	Address string

	// TokenSecret is the secret used for signing tokens. It must be between
	// MinSecretSize and MaxSecretSize bytes.
	TokenSecret []byte

	// UnauthDelay is how long the server will pause before responding with
	// an HTTP-401, HTTP-403, or HTTP-500.
	UnauthDelay time.Duration

	// DB is the config for the persistence store.
	DB Database
}

// Validate checks that conf is complete enough to start a server with.
func (conf Config) Validate() error {
	if len(conf.TokenSecret) < MinSecretSize {
		return fmt.Errorf("token secret must be at least %d bytes, got %d", MinSecretSize, len(conf.TokenSecret))
	}
	if len(conf.TokenSecret) > MaxSecretSize {
		return fmt.Errorf("token secret must be at most %d bytes, got %d", MaxSecretSize, len(conf.TokenSecret))
	}
	if conf.DB.Type == DatabaseNone || conf.DB.Type == "" {
		return fmt.Errorf("no database configured")
	}
	return nil
}

type marshaledConfig struct {
	Listen        string `toml:"listen"`
	TokenSecret   string `toml:"token-secret"`
	UnauthDelayMS int    `toml:"unauth-delay-ms"`
	DB            struct {
		Type    string `toml:"type"`
		DataDir string `toml:"data-dir"`
	} `toml:"database"`
}

// LoadConfig reads server configuration from a TOML file at path. Settings
// absent from the file keep their zero values; callers apply defaults and
// flag overrides afterward.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading %q: %w", path, err)
	}

	var mc marshaledConfig
	if _, err := toml.Decode(string(data), &mc); err != nil {
		return Config{}, fmt.Errorf("parsing %q: %w", path, err)
	}

	conf := Config{
		Address:     mc.Listen,
		TokenSecret: []byte(mc.TokenSecret),
		UnauthDelay: time.Duration(mc.UnauthDelayMS) * time.Millisecond,
	}

	if mc.DB.Type != "" {
		dbType, err := ParseDBType(mc.DB.Type)
		if err != nil {
			return Config{}, err
		}
		conf.DB = Database{Type: dbType, DataDir: mc.DB.DataDir}
	}

	return conf, nil
}
