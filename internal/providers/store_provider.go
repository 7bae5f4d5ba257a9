package providers

import (
	"qrd/internal/store"
	"qrd/internal/structures"
)

func NewStoreProvider(conf *structures.Config, logger Logger) (store.Store, error) {
	st, err := store.Open(conf.Storage.DBPath)
	if err != nil {
		return nil, err
	}
	logger.Infof(TypeApp, "Opened database at %s", conf.Storage.DBPath)
	return st, nil
}
