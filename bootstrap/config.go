package bootstrap

import (
	"github.com/souadELmaazouzi/audio-processing-and-ui/config"
)

// Config is the constraint for application configuration types. A struct
// embedding config.ServiceConfig gets GetServiceConfig by promotion and
// only has to provide ApplyDefaults and Validate.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
