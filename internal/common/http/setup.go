package http

import (
	"net/http"

	"github.com/AlibekovAA/smalltalk-feed/internal/common/constants"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/httpmetrics"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/logger"
)

func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	collector := httpmetrics.New()
	recovery := RecoveryMiddleware(log)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)

	return SecurityHeadersMiddleware(CORSMiddleware(TraceIDMiddleware(recovery(maxRequestSize(collector.Wrap(handler))))))
}
