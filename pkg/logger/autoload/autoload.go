// Package autoload initializes the global logger from the environment
// as a side effect of being imported.
package autoload

import (
	configx "github.com/tanpawarit/shopmate-assistant/pkg/config"
	logx "github.com/tanpawarit/shopmate-assistant/pkg/logger"
)

func init() {
	cfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*cfg)
}
