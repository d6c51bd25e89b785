package main

import (
	"context"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/jerryola1/evergreen/domain"
	"github.com/jerryola1/evergreen/storage"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}
	log.Info("provision starting")

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	businesses, err := importCSVFiles(dataDir)
	if err != nil {
		log.Fatalf("import: %v", err)
	}
	if len(businesses) == 0 {
		log.Fatalf("no business CSVs found under %s", dataDir)
	}
	log.Infof("imported %d businesses from %s", len(businesses), dataDir)

	ctx := context.Background()

	backend := os.Getenv("LEADS_BACKEND")
	if backend == "" {
		backend = "table"
	}
	switch backend {
	case "table":
		seedTable(ctx, businesses)
	case "mongo":
		seedMongo(ctx, businesses)
	default:
		log.Fatalf("unsupported LEADS_BACKEND %q for provisioning", backend)
	}

	log.Info("provision complete")
}

func seedTable(ctx context.Context, businesses []domain.Business) {
	connStr := os.Getenv("STORAGE_CONNECTION_STRING")
	table := os.Getenv("TABLE_NAME")
	if connStr == "" || table == "" {
		log.Fatal("STORAGE_CONNECTION_STRING and TABLE_NAME must be set")
	}

	store, err := storage.NewTableStore(connStr, table)
	if err != nil {
		log.Fatalf("table store: %v", err)
	}
	if err := store.EnsureTable(ctx); err != nil {
		log.Fatalf("create table: %v", err)
	}
	if err := store.Seed(ctx, businesses); err != nil {
		log.Fatalf("seed table: %v", err)
	}
	log.Infof("seeded %d businesses into table %s", len(businesses), table)
}

func seedMongo(ctx context.Context, businesses []domain.Business) {
	uri := os.Getenv("MONGO_URI")
	db := os.Getenv("MONGO_DATABASE")
	coll := os.Getenv("MONGO_COLLECTION")
	if uri == "" || db == "" || coll == "" {
		log.Fatal("MONGO_URI, MONGO_DATABASE and MONGO_COLLECTION must be set")
	}

	store, err := storage.NewMongoStore(ctx, uri, db, coll)
	if err != nil {
		log.Fatalf("mongo store: %v", err)
	}
	defer func() {
		if err := store.Close(ctx); err != nil {
			log.Warnf("close mongo: %v", err)
		}
	}()

	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatalf("ensure indexes: %v", err)
	}
	if err := store.Seed(ctx, businesses); err != nil {
		log.Fatalf("seed collection: %v", err)
	}
	log.Infof("seeded %d businesses into %s.%s", len(businesses), db, coll)
}
