package content

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/louisbranch/landstalker-bingo/internal/services/bingo/domain"
)

// LandstalkerCatalogID identifies the embedded Landstalker catalog.
const LandstalkerCatalogID = "landstalker-v1"

//go:embed data/landstalker.v1.json
var landstalkerCatalogJSON []byte

var (
	loadLandstalkerOnce sync.Once
	landstalkerCatalog  *domain.Catalog
	landstalkerLoadErr  error
)

// Landstalker returns the embedded Landstalker catalog.
//
// The document is decoded and validated once; every caller shares the same
// immutable catalog.
func Landstalker() (*domain.Catalog, error) {
	loadLandstalkerOnce.Do(func() {
		catalog, err := Decode(landstalkerCatalogJSON, FormatJSON)
		if err != nil {
			landstalkerLoadErr = fmt.Errorf("decode embedded landstalker catalog: %w", err)
			return
		}
		landstalkerCatalog = catalog
	})
	return landstalkerCatalog, landstalkerLoadErr
}

