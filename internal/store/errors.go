package store

import "github.com/metaneutrons/snapdog2-sub015/internal/model"

var errNoSuchEntity = model.NotFound("no such entity")
