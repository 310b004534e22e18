package memory

import (
	"testing"

	"github.com/mitchelldurbincs/gasgrid/internal/store"
	"github.com/mitchelldurbincs/gasgrid/internal/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}
