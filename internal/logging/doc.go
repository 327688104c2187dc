// Package logging provides the structured zap logger shared by every
// component: CDP transport, browser session, registry, and the WebSocket
// gateway all log through a *Logger tagged with the fields relevant to
// their call site (token, session id, socket id).
//
// Example usage:
//
//	logger := logging.NewDefault()
//	sessionLog := logger.With(zap.String("token", token))
//	sessionLog.Info("session attached", zap.String("target_id", targetID))
package logging
