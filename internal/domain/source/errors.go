package source

import "errors"

var (
	ErrSourceNotFound    = errors.New("source not found")
	ErrSourceNameExists  = errors.New("source with this name already exists")
	ErrSyncInProgress    = errors.New("a sync run is already in progress for this source")
	ErrNoTransport       = errors.New("source has neither a URL nor an uploaded file")
	ErrImportLogNotFound = errors.New("import log not found")
)
