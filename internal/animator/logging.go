package animator

import "echo-transcript/internal/logger"

var log = logger.Named("animator")
