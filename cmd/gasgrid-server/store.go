package main

import (
	"fmt"

	"github.com/mitchelldurbincs/gasgrid/internal/config"
	"github.com/mitchelldurbincs/gasgrid/internal/store"
	"github.com/mitchelldurbincs/gasgrid/internal/store/memory"
	"github.com/mitchelldurbincs/gasgrid/internal/store/postgres"
	"github.com/mitchelldurbincs/gasgrid/internal/store/sqlite"
)

// openStore opens the backend named by the configured driver
func openStore(c config.StoreConfig) (store.Store, error) {
	switch c.Driver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverSQLite:
		return sqlite.Open(c.SQLitePath)
	case config.DriverPostgres:
		return postgres.Open(c.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", c.Driver)
	}
}
