package analysis

import "errors"

// ErrUnknownDataset is returned for a primary dataset name that is not recognised.
var ErrUnknownDataset = errors.New("unknown primary dataset")
