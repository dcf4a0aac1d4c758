package interfaces

import (
	"github.com/goliatone/go-folio/pkg/storage"
)

// StorageProvider is the artifact store contract the generator writes
// rendered output through. It aliases pkg/storage.Provider so wiring
// code can depend on this package alone; implementations should
// satisfy storage.Provider (and its optional mix-ins) directly.
type StorageProvider = storage.Provider
