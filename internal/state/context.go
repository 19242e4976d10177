// internal/state/context.go
package state

import (
	"go-td-core/internal/config"
	"go-td-core/internal/defs"

	"go.uber.org/zap"
	"golang.org/x/image/font"
)

// Context is what every screen needs to build a new match.
type Context struct {
	Settings config.Settings
	Catalog  *defs.Catalog
	Logger   *zap.Logger
	Face     font.Face
	Title    font.Face
}
